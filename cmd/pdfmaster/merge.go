package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/novvoo/go-pdfmaster/pkg/document"
	"github.com/novvoo/go-pdfmaster/pkg/pageops"
)

func newMergeCmd(a *app) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "merge [flags] <PDF-file-1> <PDF-file-2> ... <PDF-file-n>",
		Short: "Merge PDF files into one document, in argument order",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) < pageops.MinMergeFiles {
				return pageops.ErrTooFewFiles
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			docs := make([]*document.Document, 0, len(args))
			total := 0
			for _, path := range args {
				doc, err := document.Open(ctx, path, a.documentOptions()...)
				if err != nil {
					return fmt.Errorf("opening %s: %w", path, err)
				}
				docs = append(docs, doc)
				total += doc.Pages
			}

			if output == "" {
				output = pageops.MergedName(time.Now())
			}
			engine := pageops.New(pageops.WithLogger(a.logger))
			err := writeOutput(output, func(w io.Writer) error {
				return engine.Merge(ctx, w, docs)
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Merged %d files (%d pages) into %s\n", len(docs), total, output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default pdf_master_merged_<ms>.pdf)")
	return cmd
}
