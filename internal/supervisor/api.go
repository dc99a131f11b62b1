package supervisor

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Server is the part of *http.Server the API service drives.
type Server interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
}

// APIService keeps the HTTP API listening while the tree runs it. When the
// tree stops, in-flight requests get up to drain to finish.
type APIService struct {
	srv   Server
	drain time.Duration
	log   *zap.SugaredLogger
}

func NewAPIService(srv Server, drain time.Duration, log *zap.SugaredLogger) *APIService {
	if drain <= 0 {
		drain = 10 * time.Second
	}
	return &APIService{srv: srv, drain: drain, log: log.With("component", "api")}
}

// Serve implements suture.Service. A listener that dies on its own is
// returned as an error so the tree restarts it.
func (s *APIService) Serve(ctx context.Context) error {
	stopped := make(chan error, 1)
	go func() { stopped <- s.srv.ListenAndServe() }()

	select {
	case err := <-stopped:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("api listener stopped: %w", err)
	case <-ctx.Done():
	}

	drainCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.drain)
	defer cancel()

	if err := s.srv.Shutdown(drainCtx); err != nil {
		return fmt.Errorf("api drain: %w", err)
	}
	if err := <-stopped; err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.log.Warnw("api listener exited uncleanly", "error", err)
	}

	s.log.Debugw("api drained")
	return ctx.Err()
}

func (s *APIService) String() string {
	return "api"
}
