package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/novvoo/go-pdfmaster/internal/config"
	"github.com/novvoo/go-pdfmaster/internal/server"
)

func newServeCmd(a *app) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the merge and split pages over HTTP",
		Long: `Starts the web UI and its JSON API. When --config names a file, changes
to it are picked up while running; the log level applies at once, other
settings on the next start.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.cfg
			if addr != "" {
				cfg.Server.Addr = addr
			}
			srv, err := server.New(cfg, server.WithLogger(a.logger), server.WithLevel(a.level))
			if err != nil {
				return err
			}

			g, ctx := errgroup.WithContext(cmd.Context())
			g.Go(func() error { return srv.ListenAndServe(ctx) })
			if a.configPath != "" {
				g.Go(func() error {
					return config.Watch(ctx, a.configPath, func(next *config.Config, err error) {
						if err != nil {
							a.logger.Warn("config reload failed", zap.Error(err))
							return
						}
						if addr != "" {
							next.Server.Addr = addr
						}
						srv.Reload(next)
					})
				})
			}
			return g.Wait()
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address, overrides server.addr")
	return cmd
}
