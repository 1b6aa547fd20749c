package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/specialistvlad/passgrid/internal/config"
	"github.com/specialistvlad/passgrid/internal/ctxlog"
	"github.com/specialistvlad/passgrid/internal/jobgraph"
	"github.com/specialistvlad/passgrid/internal/objectstore"
	"github.com/specialistvlad/passgrid/internal/versions"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW    io.Writer
	logger  *slog.Logger
	config  *Config
	loader  config.Loader
	metrics *metrics
	now     func() time.Time

	// Injected collaborators; nil means "build from the site file".
	submitter jobgraph.Submitter
	versions  versions.Store
	store     objectstore.Store

	httpServer *http.Server
}

// Option customizes an App.
type Option func(*App)

// WithSubmitter replaces the farm submitter chosen from the site file.
func WithSubmitter(s jobgraph.Submitter) Option {
	return func(a *App) { a.submitter = s }
}

// WithVersionStore replaces the version store chosen from the site file.
func WithVersionStore(s versions.Store) Option {
	return func(a *App) { a.versions = s }
}

// WithObjectStore replaces the artifact store chosen from the site file.
func WithObjectStore(s objectstore.Store) Option {
	return func(a *App) { a.store = s }
}

// WithClock sets the time source used for submission stamps and manifest
// dates.
func WithClock(now func() time.Time) Option {
	return func(a *App) { a.now = now }
}

// NewApp is the constructor for the main application. It returns an App
// with its own isolated logger and metrics registry.
func NewApp(outW io.Writer, cfg *Config, loader config.Loader, opts ...Option) *App {
	a := &App{
		outW:    outW,
		logger:  newLogger(cfg.LogLevel, cfg.LogFormat, outW),
		config:  cfg,
		loader:  loader,
		metrics: newMetrics(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	a.logger.Debug("Logger configured successfully.")
	return a
}

// Run executes the configured command.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.", "command", a.config.Command)

	if a.config.HealthcheckPort > 0 {
		a.startHealthcheckServer(ctx, a.config.HealthcheckPort)
		defer a.closeHealthcheckServer(ctx)
	}

	var err error
	switch a.config.Command {
	case CommandSubmit:
		_, err = a.Submit(ctx)
	case CommandResolve:
		_, err = a.Resolve(ctx)
	default:
		err = fmt.Errorf("unknown command %q", a.config.Command)
	}
	if err != nil {
		a.logger.Error("Command failed.", "command", a.config.Command, "error", err)
		return err
	}

	a.logger.Debug("App.Run method finished.")
	return nil
}
