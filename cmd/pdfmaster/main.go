// pdfmaster - merge and split PDF files from the command line or a browser
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/novvoo/go-pdfmaster/internal/config"
	"github.com/novvoo/go-pdfmaster/internal/logging"
	"github.com/novvoo/go-pdfmaster/pkg/document"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "0.1.0"

// app carries what the subcommands share once flags are parsed.
type app struct {
	configPath string
	verbose    bool

	cfg    *config.Config
	logger *zap.Logger
	level  zap.AtomicLevel
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "pdfmaster",
		Short: "Merge and split PDF files",
		Long: `pdfmaster combines PDF files into one document and pulls pages out of
a document, either from the command line or through a small web UI
started with "pdfmaster serve".`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "path to the YAML configuration file")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "V", false, "log debug output")

	root.AddCommand(
		newMergeCmd(a),
		newSplitCmd(a),
		newInfoCmd(a),
		newThumbnailsCmd(a),
		newServeCmd(a),
		newVersionCmd(),
	)
	return root
}

// setup loads the configuration and builds the logger. One-shot commands only
// log warnings unless --verbose is given.
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	switch {
	case a.verbose:
		cfg.Logging.Level = "debug"
	case cmd.Name() != "serve":
		cfg.Logging.Level = "warn"
	}
	if cmd.Name() != "serve" {
		cfg.Logging.Format = "console"
	}

	logger, level, err := logging.New(cfg.Logging)
	if err != nil {
		return err
	}
	a.cfg, a.logger, a.level = cfg, logger, level
	return nil
}

func (a *app) documentOptions() []document.Option {
	return []document.Option{
		document.WithMaxSize(a.cfg.Limits.MaxFileBytes),
		document.WithLogger(a.logger),
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
