package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/flora/internal/export"
	"github.com/MrJamesThe3rd/flora/internal/mail"
	"github.com/MrJamesThe3rd/flora/internal/storage"
)

func NewImportCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import <collection> <file.csv>",
		Short: "Add the rows of a CSV export to a collection",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			c := storage.Collection(args[0])
			if !c.Valid() {
				return fmt.Errorf("unknown collection %q", args[0])
			}

			f, err := os.Open(args[1])
			if err != nil {
				return err
			}
			defer f.Close()

			a, err := opts.open(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			res, err := a.Importer.Import(ctx, c, f)
			if len(res.IDs) > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "imported %d %s (%d rows skipped)\n", len(res.IDs), c, res.Skipped)
			}

			return err
		},
	}
}

func NewPDFCommand(opts *RootOptions) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "pdf <invoice-id>",
		Short: "Render an invoice to a PDF file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			a, err := opts.open(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			f, err := a.Export.PDF(ctx, args[0])
			if err != nil {
				return err
			}

			path := output
			if path == "" {
				path = f.Name
			} else if info, err := os.Stat(path); err == nil && info.IsDir() {
				path = filepath.Join(path, f.Name)
			}

			if err := os.WriteFile(path, f.Content, 0o644); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), path)

			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "file or directory to write (default: invoice-<number>.pdf)")

	return cmd
}

func NewEmailCommand(opts *RootOptions) *cobra.Command {
	var (
		to      []string
		cc      []string
		subject string
		note    string
	)

	cmd := &cobra.Command{
		Use:   "email <invoice-id>",
		Short: "Send an invoice PDF by email",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			if len(to) == 0 {
				return errors.New("at least one --to recipient is required")
			}

			a, err := opts.open(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			req := export.EmailRequest{Subject: subject, Note: note}
			for _, addr := range to {
				req.To = append(req.To, mail.Address{Email: addr})
			}

			for _, addr := range cc {
				req.CC = append(req.CC, mail.Address{Email: addr})
			}

			res, err := a.Export.Email(ctx, args[0], req)
			if err != nil {
				return err
			}

			if !res.Success {
				return fmt.Errorf("email not sent: %s", res.Error)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "sent (status %d)\n", res.StatusCode)

			return nil
		},
	}

	cmd.Flags().StringSliceVar(&to, "to", nil, "recipient address, repeatable")
	cmd.Flags().StringSliceVar(&cc, "cc", nil, "copy address, repeatable")
	cmd.Flags().StringVar(&subject, "subject", "", "subject line (default: Invoice <number>)")
	cmd.Flags().StringVar(&note, "note", "", "paragraph added to the message body")

	return cmd
}
