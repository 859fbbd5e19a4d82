package worker

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ViewRefresher re-derives cached tab views whose calendar day has passed.
type ViewRefresher interface {
	Refresh(ctx context.Context) (int, error)
}

// Refresher keeps tab views current across midnight so a task due tomorrow
// moves into the Day tab without a manual reload.
type Refresher struct {
	views    ViewRefresher
	logger   *zap.Logger
	interval time.Duration
	wg       sync.WaitGroup
	stop     chan struct{}
	once     sync.Once
}

func NewRefresher(views ViewRefresher, logger *zap.Logger, interval time.Duration) *Refresher {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Refresher{
		views:    views,
		logger:   logger,
		interval: interval,
		stop:     make(chan struct{}),
	}
}

func (r *Refresher) Start(ctx context.Context) {
	r.logger.Info("Starting view refresher", zap.Duration("interval", r.interval))

	r.wg.Add(1)
	go r.run(ctx)
}

// Stop waits for the running refresh, if any, to finish. It is safe to call twice.
func (r *Refresher) Stop() {
	r.once.Do(func() {
		r.logger.Info("Stopping view refresher...")
		close(r.stop)
		r.wg.Wait()
		r.logger.Info("View refresher stopped")
	})
}

func (r *Refresher) run(ctx context.Context) {
	defer r.wg.Done()

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.stop:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := r.views.Refresh(ctx)
			if err != nil {
				r.logger.Error("refresh error", zap.Int("refreshed", n), zap.Error(err))
				continue
			}
			if n > 0 {
				r.logger.Debug("views refreshed", zap.Int("refreshed", n))
			}
		}
	}
}
