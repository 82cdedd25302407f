package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/novvoo/go-pdfmaster/pkg/document"
	"github.com/novvoo/go-pdfmaster/pkg/thumbnail"
)

func newThumbnailsCmd(a *app) *cobra.Command {
	var (
		dir      string
		prefix   string
		scale    float64
		maxWidth int
	)
	cmd := &cobra.Command{
		Use:   "thumbnails [flags] <PDF-file>",
		Short: "Render every page of a PDF file to PNG thumbnails",
		Long: `Writes <dir>/<prefix>-<page>.png for every page. Pages that cannot be
rendered get a placeholder image and a warning.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := document.Open(cmd.Context(), args[0], a.documentOptions()...)
			if err != nil {
				return fmt.Errorf("opening %s: %w", args[0], err)
			}
			if !cmd.Flags().Changed("scale") {
				scale = a.cfg.Thumbnail.Scale
			}
			if !cmd.Flags().Changed("max-width") {
				maxWidth = a.cfg.Thumbnail.MaxWidth
			}
			if prefix == "" {
				prefix = strings.TrimSuffix(doc.Name, filepath.Ext(doc.Name))
			}
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return err
			}

			r := thumbnail.NewRenderer(nil,
				thumbnail.WithScale(scale),
				thumbnail.WithMaxWidth(maxWidth),
				thumbnail.WithCacheSize(0),
				thumbnail.WithWorkers(a.cfg.Thumbnail.Workers),
				thumbnail.WithLogger(a.logger))

			type output struct {
				page int
				name string
			}
			var (
				mu      sync.Mutex
				written []output
			)
			err = r.RenderAll(cmd.Context(), doc, func(th *thumbnail.Thumbnail) error {
				name := filepath.Join(dir, fmt.Sprintf("%s-%d.png", prefix, th.Page))
				if err := os.WriteFile(name, th.PNG, 0o644); err != nil {
					return err
				}
				if th.Placeholder {
					name += " (placeholder)"
				}
				mu.Lock()
				written = append(written, output{th.Page, name})
				mu.Unlock()
				return nil
			})
			if err != nil {
				return err
			}

			sort.Slice(written, func(i, j int) bool { return written[i].page < written[j].page })
			for _, o := range written {
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", o.name)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&dir, "dir", "d", ".", "output directory")
	cmd.Flags().StringVar(&prefix, "prefix", "", "file name prefix (default: input name without extension)")
	cmd.Flags().Float64Var(&scale, "scale", thumbnail.DefaultScale, "pixels per PDF point")
	cmd.Flags().IntVar(&maxWidth, "max-width", 0, "down-scale thumbnails wider than this many pixels (0 = off)")
	return cmd
}
