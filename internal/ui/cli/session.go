package cli

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"layerguard/internal/core/app"
	"layerguard/internal/core/config"
	"layerguard/internal/data/history"
	"layerguard/internal/data/vcs"
	"layerguard/internal/shared/observability"
	"layerguard/internal/shared/version"
)

// session holds what the root command sets up before a subcommand runs.
type session struct {
	settings  config.Settings
	closeLogs func()
	tracer    *observability.TracerProvider
}

func (s *session) setup(cmd *cobra.Command) error {
	flags := cmd.Flags()
	settingsFile, _ := flags.GetString("settings")
	settings, err := config.LoadSettings(flags, settingsFile)
	if err != nil {
		return usageError(err)
	}
	if verbose, _ := flags.GetBool("verbose"); verbose {
		settings.LogLevel = "debug"
	}
	s.settings = settings

	uiMode, _ := flags.GetBool("ui")
	s.closeLogs = configureLogging(cmd.ErrOrStderr(), uiMode, settings.LogLevel)

	tracer, err := observability.InitTracing(cmd.Context(), observability.TracingConfig{
		ServiceName:    "layerguard",
		ServiceVersion: version.Version,
		OTLPEndpoint:   settings.OTLPEndpoint,
	})
	if err != nil {
		slog.Warn("tracing disabled", "endpoint", settings.OTLPEndpoint, "error", err)
		tracer = nil
	}
	s.tracer = tracer
	return nil
}

func (s *session) teardown(ctx context.Context) {
	if s.tracer != nil {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		if err := s.tracer.Shutdown(ctx); err != nil {
			slog.Warn("failed to flush traces", "error", err)
		}
		cancel()
	}
	if s.closeLogs != nil {
		s.closeLogs()
	}
}

// service builds a check service for root. With withHistory the run store is
// opened and must be released with the returned cleanup.
func (s *session) service(root string, withHistory bool) (*app.Service, func(), error) {
	opts := app.Options{
		Workers: s.settings.Workers,
		Changes: vcs.New(),
		Logger:  slog.Default(),
	}
	cleanup := func() {}
	if withHistory {
		store, err := history.Open(s.historyPath(root))
		if err != nil {
			return nil, cleanup, err
		}
		opts.Store = store
		cleanup = func() {
			if err := store.Close(); err != nil {
				slog.Warn("failed to close history store", "path", store.Path(), "error", err)
			}
		}
	}
	return app.NewService(opts), cleanup, nil
}

func (s *session) historyPath(root string) string {
	path := s.settings.HistoryPath
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(root, filepath.FromSlash(path))
}

// projectRoot resolves the optional [path] argument to an absolute directory.
func projectRoot(args []string) (string, error) {
	root := "."
	if len(args) > 0 && args[0] != "" {
		root = args[0]
	}
	return filepath.Abs(root)
}
