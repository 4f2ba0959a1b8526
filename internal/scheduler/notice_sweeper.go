package scheduler

import (
	"context"
	"time"

	"github.com/mkodama/tubemark/internal/logger"
	"github.com/mkodama/tubemark/internal/notify"
)

// DefaultSweepInterval is used when no interval is configured.
const DefaultSweepInterval = time.Minute

// NoticeSweeper periodically drops expired transient notices so the
// center does not grow across a long-lived session.
type NoticeSweeper struct {
	center   *notify.Center
	logger   logger.Logger
	interval time.Duration
	stopCh   chan struct{}
}

// NewNoticeSweeper creates a new notice sweeper.
func NewNoticeSweeper(center *notify.Center, log logger.Logger, interval time.Duration) *NoticeSweeper {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}

	return &NoticeSweeper{
		center:   center,
		logger:   log,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the periodic sweep.
func (ns *NoticeSweeper) Start(ctx context.Context) error {
	ticker := time.NewTicker(ns.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if removed := ns.center.Sweep(); removed > 0 {
					ns.logger.Debug("swept expired notices",
						logger.Int("removed", removed))
				}
			case <-ns.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the sweeper.
func (ns *NoticeSweeper) Stop() {
	close(ns.stopCh)
}
