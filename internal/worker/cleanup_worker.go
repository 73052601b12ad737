package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/rajivgeraev/swapplace-api/internal/metrics"
)

// NotificationPurger удаляет скрытые уведомления старше before
type NotificationPurger interface {
	Purge(ctx context.Context, before time.Time) (int64, error)
}

// NotificationCleanupWorker периодически удаляет скрытые уведомления
type NotificationCleanupWorker struct {
	purger    NotificationPurger
	metrics   *metrics.Metrics
	logger    *zap.Logger
	interval  time.Duration
	retention time.Duration
	now       func() time.Time
}

func NewNotificationCleanupWorker(purger NotificationPurger, m *metrics.Metrics, logger *zap.Logger, interval, retention time.Duration) *NotificationCleanupWorker {
	return &NotificationCleanupWorker{
		purger:    purger,
		metrics:   m,
		logger:    logger,
		interval:  interval,
		retention: retention,
		now:       time.Now,
	}
}

// Start блокируется до отмены ctx
func (w *NotificationCleanupWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Info("Воркер очистки уведомлений запущен", zap.Duration("interval", w.interval))

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Воркер очистки уведомлений остановлен")
			return
		case <-ticker.C:
			w.RunOnce(ctx)
		}
	}
}

// RunOnce удаляет скрытые уведомления, созданные раньше now - retention
func (w *NotificationCleanupWorker) RunOnce(ctx context.Context) int64 {
	before := w.now().Add(-w.retention)

	purged, err := w.purger.Purge(ctx, before)
	if err != nil {
		w.logger.Error("Ошибка очистки уведомлений", zap.Error(err))
		return 0
	}

	w.metrics.NotificationsPurged(purged)
	return purged
}
