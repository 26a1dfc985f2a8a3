package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/flora/internal/database"
	"github.com/MrJamesThe3rd/flora/internal/storage"
	"github.com/MrJamesThe3rd/flora/internal/storage/file"
	"github.com/MrJamesThe3rd/flora/internal/storage/postgres"
)

// document is implemented by both storage backends.
type document interface {
	ReadAll(ctx context.Context) (storage.AppData, error)
	WriteAll(ctx context.Context, data storage.AppData) error
}

// readDocument parses a JSON document of collections, rejecting unknown names.
func readDocument(path string) (storage.AppData, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec := json.NewDecoder(f)
	dec.UseNumber()

	var data storage.AppData
	if err := dec.Decode(&data); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	for c := range data {
		if !c.Valid() {
			return nil, fmt.Errorf("%s: unknown collection %q", path, c)
		}
	}

	return data, nil
}

func NewSeedCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "seed <document.json>",
		Short: "Replace collections with the ones in a JSON document",
		Long: `Seed loads a JSON document shaped like the data file and replaces every
collection it names in the configured backend. Collections the document does
not name are left as they are.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			incoming, err := readDocument(args[0])
			if err != nil {
				return err
			}

			a, err := opts.open(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			doc, ok := a.Repo.(document)
			if !ok {
				return fmt.Errorf("%s backend cannot be seeded", opts.Config.Storage.Backend)
			}

			current, err := doc.ReadAll(ctx)
			if err != nil {
				return err
			}

			for _, c := range storage.Collections {
				records, ok := incoming[c]
				if !ok {
					continue
				}

				if records == nil {
					records = []storage.Record{}
				}

				current[c] = records
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %d records\n", c, len(records))
			}

			return doc.WriteAll(ctx, current)
		},
	}
}

func NewMigrateCommand(opts *RootOptions) *cobra.Command {
	var from string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Copy the JSON data file into PostgreSQL",
		Long: `Migrate reads every collection from the JSON data file and writes it into
the records table of the configured database. Each collection is replaced as
a whole, so running it twice gives the same result.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg := opts.Config

			if from == "" {
				from = cfg.Storage.DataFile
			}

			data, err := file.New(from).ReadAll(ctx)
			if err != nil {
				return err
			}

			db, err := database.New(ctx, cfg.ConnectionString(), cfg.Server.Timeout)
			if err != nil {
				return err
			}
			defer db.Close()

			store := postgres.New(db)
			if err := store.EnsureSchema(ctx); err != nil {
				return err
			}

			if err := store.WriteAll(ctx, data); err != nil {
				return err
			}

			for _, c := range storage.Collections {
				if records, ok := data[c]; ok {
					fmt.Fprintf(cmd.OutOrStdout(), "%s: %d records\n", c, len(records))
				}
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "data file to migrate (default: the configured data file)")

	return cmd
}

func NewDumpCommand(opts *RootOptions) *cobra.Command {
	var collections string

	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Print collections as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			var selected []storage.Collection

			for name := range strings.SplitSeq(collections, ",") {
				if name = strings.TrimSpace(name); name != "" {
					selected = append(selected, storage.Collection(name))
				}
			}

			a, err := opts.open(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			props, err := a.Loader.Load(ctx, selected...)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")

			return enc.Encode(props.Collections)
		},
	}

	cmd.Flags().StringVar(&collections, "collections", "", "comma separated collections to print (default: all)")

	return cmd
}
