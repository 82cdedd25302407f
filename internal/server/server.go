// Package server serves the merge and split page flows over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"net"
	"net/http"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/net/netutil"
	"golang.org/x/sync/errgroup"

	"github.com/novvoo/go-pdfmaster/internal/config"
	"github.com/novvoo/go-pdfmaster/internal/logging"
	"github.com/novvoo/go-pdfmaster/pkg/document"
	"github.com/novvoo/go-pdfmaster/pkg/pageops"
	"github.com/novvoo/go-pdfmaster/pkg/thumbnail"
	"github.com/novvoo/go-pdfmaster/pkg/workspace"
)

// Server holds the sessions and the engines behind the HTTP API.
type Server struct {
	logger *zap.Logger
	level  *zap.AtomicLevel

	mu  sync.RWMutex
	cfg *config.Config

	store    *workspace.Store
	engine   *pageops.Engine
	renderer *thumbnail.Renderer
	views    *template.Template
	handler  http.Handler
}

// Option configures a Server.
type Option func(*options)

type options struct {
	logger *zap.Logger
	level  *zap.AtomicLevel
	raster thumbnail.Rasterizer
	store  []workspace.StoreOption
}

// WithLogger sets the server logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithLevel lets configuration reloads change the level of the logger.
func WithLevel(level zap.AtomicLevel) Option {
	return func(o *options) { o.level = &level }
}

// WithRasterizer replaces the MuPDF page rasterizer.
func WithRasterizer(r thumbnail.Rasterizer) Option {
	return func(o *options) { o.raster = r }
}

// WithStoreOptions passes options to the session store.
func WithStoreOptions(opts ...workspace.StoreOption) Option {
	return func(o *options) { o.store = append(o.store, opts...) }
}

// New creates a server from cfg.
func New(cfg *config.Config, opts ...Option) (*Server, error) {
	o := options{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}

	views, err := parseViews()
	if err != nil {
		return nil, err
	}

	s := &Server{
		logger: o.logger,
		level:  o.level,
		cfg:    cfg,
		store: workspace.NewStore(cfg.GetSessionTTL(),
			append([]workspace.StoreOption{workspace.WithStoreLogger(o.logger)}, o.store...)...),
		engine: pageops.New(
			pageops.WithLogger(o.logger),
			pageops.WithWorkers(cfg.Thumbnail.Workers)),
		renderer: thumbnail.NewRenderer(o.raster,
			thumbnail.WithScale(cfg.Thumbnail.Scale),
			thumbnail.WithMaxWidth(cfg.Thumbnail.MaxWidth),
			thumbnail.WithCacheSize(cfg.Thumbnail.CacheEntries),
			thumbnail.WithWorkers(cfg.Thumbnail.Workers),
			thumbnail.WithLogger(o.logger)),
		views: views,
	}
	s.handler = s.logRequests(s.routes())
	return s, nil
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler { return s.handler }

// Store returns the session store.
func (s *Server) Store() *workspace.Store { return s.store }

func (s *Server) config() *config.Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

func (s *Server) documentOptions() []document.Option {
	return []document.Option{
		document.WithMaxSize(s.config().Limits.MaxFileBytes),
		document.WithLogger(s.logger),
	}
}

// Reload applies a changed configuration. Only the log level and the size
// limits take effect without a restart.
func (s *Server) Reload(cfg *config.Config) {
	s.mu.Lock()
	old := s.cfg
	s.cfg = cfg
	s.mu.Unlock()

	if s.level != nil && cfg.Logging.Level != old.Logging.Level {
		if err := logging.SetLevel(*s.level, cfg.Logging.Level); err != nil {
			s.logger.Warn("ignoring log level", zap.Error(err))
		} else {
			s.logger.Info("log level changed", zap.String("level", cfg.Logging.Level))
		}
	}
	if cfg.Server != old.Server || cfg.Thumbnail != old.Thumbnail || cfg.Session != old.Session {
		s.logger.Warn("server, thumbnail and session settings apply after restart")
	}
}

// ListenAndServe listens on the configured address and serves until ctx is
// done.
func (s *Server) ListenAndServe(ctx context.Context) error {
	cfg := s.config()
	ln, err := net.Listen("tcp", cfg.Server.Addr)
	if err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if cfg.Server.MaxConnections > 0 {
		ln = netutil.LimitListener(ln, cfg.Server.MaxConnections)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done, then shuts down gracefully. The
// session janitor runs for the same lifetime.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	cfg := s.config()
	srv := &http.Server{
		Handler:      s.handler,
		ReadTimeout:  cfg.GetReadTimeout(),
		WriteTimeout: cfg.GetWriteTimeout(),
		ErrorLog:     zap.NewStdLog(s.logger.Named("http")),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("listening", zap.String("addr", ln.Addr().String()))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.GetShutdownTimeout())
		defer cancel()
		s.logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		s.store.Run(gctx, cfg.GetSweepInterval())
		return nil
	})
	return g.Wait()
}
