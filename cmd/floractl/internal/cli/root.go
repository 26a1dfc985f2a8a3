// Package cli implements floractl, the administration commands for a Flora
// data store.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/flora/internal/app"
	"github.com/MrJamesThe3rd/flora/internal/config"
)

// RootOptions holds the configuration and global flags shared by every command.
type RootOptions struct {
	Config *config.Config

	DataFile string
	Backend  string
}

// NewRootCommand creates the floractl command tree on top of cfg.
func NewRootCommand(cfg *config.Config) *cobra.Command {
	opts := &RootOptions{Config: cfg}

	cmd := &cobra.Command{
		Use:           "floractl",
		Short:         "Administer the Flora data store",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			if opts.DataFile != "" {
				opts.Config.Storage.DataFile = opts.DataFile
			}

			if opts.Backend != "" {
				switch b := config.Backend(opts.Backend); b {
				case config.BackendFile, config.BackendPostgres:
					opts.Config.Storage.Backend = b
				default:
					return fmt.Errorf("invalid backend %q: must be file or postgres", opts.Backend)
				}
			}

			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.DataFile, "data", "", "data file of the file backend (default from DATA_FILE)")
	cmd.PersistentFlags().StringVar(&opts.Backend, "backend", "", "storage backend (file|postgres)")

	cmd.AddCommand(NewSeedCommand(opts))
	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewDumpCommand(opts))
	cmd.AddCommand(NewImportCommand(opts))
	cmd.AddCommand(NewPDFCommand(opts))
	cmd.AddCommand(NewEmailCommand(opts))

	return cmd
}

// open builds the services on the configured backend. The caller closes the app.
func (o *RootOptions) open(ctx context.Context) (*app.App, error) {
	a, err := app.New(ctx, o.Config)
	if err != nil {
		return nil, fmt.Errorf("opening %s storage: %w", o.Config.Storage.Backend, err)
	}

	return a, nil
}
