// internal/app/system/workers/auditretention.go
package workers

import (
	"context"
	"sync"
	"time"

	"github.com/dalemusser/assistcenter/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// Pruner deletes audit events older than a cutoff. *audit.Store satisfies it.
type Pruner interface {
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// AuditRetention is a background worker that trims the audit trail to a
// fixed age.
type AuditRetention struct {
	events    Pruner
	log       *zap.Logger
	interval  time.Duration
	retention time.Duration
	now       func() time.Time
	stopCh    chan struct{}
	wg        sync.WaitGroup
}

// NewAuditRetention creates a new audit retention worker.
//
// Parameters:
//   - events: the audit event store
//   - logger: zap logger for logging
//   - interval: how often to prune (e.g., 1 hour)
//   - retention: how long events are kept (e.g., 90 days)
func NewAuditRetention(events Pruner, logger *zap.Logger, interval, retention time.Duration) *AuditRetention {
	return &AuditRetention{
		events:    events,
		log:       logger,
		interval:  interval,
		retention: retention,
		now:       time.Now,
		stopCh:    make(chan struct{}),
	}
}

// Start begins the background prune loop.
func (w *AuditRetention) Start() {
	w.wg.Add(1)
	go w.run()
	w.log.Info("audit retention worker started",
		zap.Duration("interval", w.interval),
		zap.Duration("retention", w.retention))
}

// Stop signals the worker to stop and waits for it to finish.
func (w *AuditRetention) Stop() {
	close(w.stopCh)
	w.wg.Wait()
	w.log.Info("audit retention worker stopped")
}

func (w *AuditRetention) run() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.prune()
		}
	}
}

func (w *AuditRetention) prune() {
	ctx, cancel := context.WithTimeout(context.Background(), timeouts.Batch())
	defer cancel()

	count, err := w.events.DeleteBefore(ctx, w.now().Add(-w.retention))
	if err != nil {
		w.log.Error("failed to prune audit events", zap.Error(err))
		return
	}

	if count > 0 {
		w.log.Info("pruned audit events", zap.Int64("count", count))
	}
}
