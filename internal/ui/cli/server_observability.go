package cli

import (
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"layerguard/internal/shared/version"
)

type healthStatus struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// ObservabilityServer exposes Prometheus metrics and a liveness probe while
// watch mode runs.
type ObservabilityServer struct {
	addr   string
	server *http.Server
}

func NewObservabilityServer(addr string) *ObservabilityServer {
	return &ObservabilityServer{addr: addr}
}

func observabilityHandler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(healthStatus{Status: "up", Version: version.Version})
	})
	return mux
}

// Start binds the listener synchronously so address errors surface to the
// caller, then serves in the background.
func (s *ObservabilityServer) Start(ctx context.Context) error {
	ln, err := (&net.ListenConfig{}).Listen(ctx, "tcp", s.addr)
	if err != nil {
		return err
	}
	s.server = &http.Server{
		Handler:           observabilityHandler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	slog.Info("observability server starting", "addr", ln.Addr().String())

	go func() {
		if err := s.server.Serve(ln); err != nil && err != http.ErrServerClosed {
			slog.Error("observability server failed", "error", err)
		}
	}()
	return nil
}

func (s *ObservabilityServer) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
