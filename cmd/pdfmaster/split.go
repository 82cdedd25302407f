package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/novvoo/go-pdfmaster/pkg/document"
	"github.com/novvoo/go-pdfmaster/pkg/pageops"
)

func newSplitCmd(a *app) *cobra.Command {
	var (
		pages  string
		all    bool
		output string
		dir    string
	)
	cmd := &cobra.Command{
		Use:   "split [flags] <PDF-file>",
		Short: "Extract selected pages, or every page as its own document",
		Long: `In range mode (--pages) the selected pages are copied, in ascending
order, into one document. With --all every page becomes its own document;
the pages are packed into a ZIP archive, or written into a directory with
--dir.`,
		Example: `  pdfmaster split report.pdf --pages 1,3-5
  pdfmaster split report.pdf --all -o pages.zip
  pdfmaster split report.pdf --all --dir pages/`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if all == (pages != "") {
				return errors.New("give exactly one of --pages or --all")
			}
			if dir != "" && !all {
				return errors.New("--dir only applies to --all")
			}

			ctx := cmd.Context()
			doc, err := document.Open(ctx, args[0], a.documentOptions()...)
			if err != nil {
				return fmt.Errorf("opening %s: %w", args[0], err)
			}
			engine := pageops.New(
				pageops.WithLogger(a.logger),
				pageops.WithWorkers(a.cfg.Thumbnail.Workers))
			out := cmd.OutOrStdout()

			switch {
			case !all:
				selected, err := pageops.ParsePages(pages, doc.Pages)
				if err != nil {
					return err
				}
				if output == "" {
					output = pageops.SelectionName(doc.Name)
				}
				err = writeOutput(output, func(w io.Writer) error {
					return engine.Extract(ctx, w, doc, selected)
				})
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Extracted %d of %d pages into %s\n", len(selected), doc.Pages, output)

			case dir != "":
				parts, err := engine.Burst(ctx, doc)
				if err != nil {
					return err
				}
				if err := os.MkdirAll(dir, 0o755); err != nil {
					return err
				}
				for _, p := range parts {
					if err := os.WriteFile(filepath.Join(dir, p.Name), p.Data, 0o644); err != nil {
						return err
					}
				}
				fmt.Fprintf(out, "Extracted %d pages into %s\n", len(parts), dir)

			default:
				if output == "" {
					output = pageops.ArchiveName(doc.Name)
				}
				err := writeOutput(output, func(w io.Writer) error {
					return engine.BurstArchive(ctx, w, doc)
				})
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Extracted %d pages into %s\n", doc.Pages, output)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&pages, "pages", "p", "", "pages to extract, e.g. 1,3-5")
	cmd.Flags().BoolVarP(&all, "all", "a", false, "extract every page as its own document")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file")
	cmd.Flags().StringVarP(&dir, "dir", "d", "", "with --all, write page files into this directory instead of a ZIP")
	return cmd
}
