package supervisor

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Sweeper removes expired records.
type Sweeper interface {
	Sweep(ctx context.Context) error
}

// SweeperService calls Sweep on a fixed interval. A failed sweep is logged
// and retried on the next tick; it never restarts the service.
type SweeperService struct {
	sweeper  Sweeper
	interval time.Duration
	log      *zap.SugaredLogger
}

func NewSweeperService(sweeper Sweeper, interval time.Duration, log *zap.SugaredLogger) *SweeperService {
	if interval <= 0 {
		interval = time.Minute
	}
	return &SweeperService{sweeper: sweeper, interval: interval, log: log.With("component", "sweeper")}
}

// Serve implements suture.Service.
func (s *SweeperService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := s.sweeper.Sweep(ctx); err != nil && ctx.Err() == nil {
				s.log.Warnw("sweep failed", "error", err)
			}
		}
	}
}

func (s *SweeperService) String() string {
	return "sweeper"
}
