package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"layerguard/internal/core/app"
	"layerguard/internal/core/watcher"
	"layerguard/internal/engine/walker"
	"layerguard/internal/ui/report"
	"layerguard/internal/ui/tui"
)

func newWatchCmd(s *session) *cobra.Command {
	var (
		uiMode bool
		record bool
	)

	cmd := &cobra.Command{
		Use:   "watch [path]",
		Short: "Re-check the project whenever sources or the architecture document change",
		Args:  usageArgs(cobra.MaximumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := projectRoot(args)
			if err != nil {
				return err
			}
			format, err := report.ParseFormat(s.settings.Format)
			if err != nil {
				return usageError(err)
			}

			svc, cleanup, err := s.service(root, record)
			if err != nil {
				return err
			}
			defer cleanup()

			cfg, err := svc.LoadConfig(root, s.settings.Config)
			if err != nil {
				return err
			}
			filter, err := walker.New(cfg.Exclude)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if addr := s.settings.MetricsAddr; addr != "" {
				srv := NewObservabilityServer(addr)
				if err := srv.Start(ctx); err != nil {
					return fmt.Errorf("start metrics server on %s: %w", addr, err)
				}
				defer func() {
					stopCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
					defer cancel()
					_ = srv.Stop(stopCtx)
				}()
			}

			req := app.CheckRequest{Root: root, ConfigPath: s.settings.Config, Record: record}
			if uiMode {
				return s.watchUI(ctx, svc, req, filter)
			}
			return s.watchText(ctx, cmd.OutOrStdout(), svc, req, filter, format)
		},
	}

	cmd.Flags().String("format", "text", "Output format for each re-check: text, pretty, json or sarif")
	cmd.Flags().BoolVar(&uiMode, "ui", false, "Show results in an interactive terminal UI")
	cmd.Flags().BoolVar(&record, "record", false, "Save a summary of every re-check to the history database")
	cmd.Flags().String("metrics-addr", "", "Serve Prometheus metrics and /health on this address, e.g. :9090")
	cmd.Flags().Duration("debounce", watcher.DefaultDebounce, "Quiet period before a change triggers a re-check")
	return cmd
}

func (s *session) startWatcher(root string, filter watcher.Filter, onChange func([]string)) (*watcher.Watcher, error) {
	w, err := watcher.NewWatcher(root, s.settings.Debounce, filter, onChange)
	if err != nil {
		return nil, err
	}
	w.SetLogger(slog.Default())
	if err := w.Watch(); err != nil {
		_ = w.Close()
		return nil, err
	}
	return w, nil
}

func (s *session) watchText(ctx context.Context, out io.Writer, svc *app.Service, req app.CheckRequest, filter watcher.Filter, format report.Format) error {
	recheck := func(changed []string) {
		if len(changed) > 0 {
			fmt.Fprintf(out, "\nChanged: %s\n", strings.Join(changed, ", "))
		}
		result, err := svc.Check(ctx, req)
		if err != nil {
			slog.Error("check failed", "path", req.Root, "error", err)
			return
		}
		if err := report.Render(out, format, result); err != nil {
			slog.Error("failed to render report", "error", err)
		}
	}

	recheck(nil)
	w, err := s.startWatcher(req.Root, filter, recheck)
	if err != nil {
		return err
	}
	defer w.Close()

	slog.Info("watching for changes", "path", req.Root)
	<-ctx.Done()
	return nil
}

func (s *session) watchUI(ctx context.Context, svc *app.Service, req app.CheckRequest, filter watcher.Filter) error {
	var program *tui.Program
	recheck := func(changed []string) {
		result, err := svc.Check(ctx, req)
		program.Send(tui.ReportMsg{Report: result, Err: err, Changed: changed})
	}
	program = tui.NewProgram(req.Root, func() { recheck(nil) })

	w, err := s.startWatcher(req.Root, filter, recheck)
	if err != nil {
		return err
	}
	defer w.Close()

	go recheck(nil)
	go func() {
		<-ctx.Done()
		program.Quit()
	}()
	return program.Run()
}
