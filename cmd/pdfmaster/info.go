package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/novvoo/go-pdfmaster/pkg/document"
)

func newInfoCmd(a *app) *cobra.Command {
	var (
		asJSON   bool
		password string
	)
	cmd := &cobra.Command{
		Use:   "info [flags] <PDF-file> ...",
		Short: "Print size, page count and metadata of PDF files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := a.documentOptions()
			if password != "" {
				opts = append(opts, document.WithPassword(password))
			}

			summaries := make([]document.Summary, 0, len(args))
			for _, path := range args {
				doc, err := document.Open(cmd.Context(), path, opts...)
				if err != nil {
					return fmt.Errorf("opening %s: %w", path, err)
				}
				summaries = append(summaries, doc.Summary())
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(summaries)
			}
			for i, s := range summaries {
				if i > 0 {
					fmt.Fprintln(out)
				}
				fmt.Fprintf(out, "%-16s%s\n", "Name:", s.Name)
				fmt.Fprintf(out, "%-16s%s\n", "File size:", s.SizeLabel)
				fmt.Fprintf(out, "%-16s%d\n", "Pages:", s.Pages)
				if s.Title != "" {
					fmt.Fprintf(out, "%-16s%s\n", "Title:", s.Title)
				}
				if s.Author != "" {
					fmt.Fprintf(out, "%-16s%s\n", "Author:", s.Author)
				}
				if s.Version != "" {
					fmt.Fprintf(out, "%-16s%s\n", "PDF version:", s.Version)
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	cmd.Flags().StringVar(&password, "upw", "", "user password")
	return cmd
}
