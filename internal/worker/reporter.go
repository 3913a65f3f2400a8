package worker

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/BuzzLyutic/task-tracker-api/internal/model"
)

// StatsSource - источник статистики, обычно *service.TaskService
type StatsSource interface {
	Stats(ctx context.Context) (model.Stats, error)
}

// Reporter периодически пишет в лог статистику задач. Только читает, ничего не меняет.
type Reporter struct {
	source   StatsSource
	logger   *zap.Logger
	interval time.Duration
	wg       sync.WaitGroup
	stop     chan struct{}
	once     sync.Once
}

func NewReporter(source StatsSource, logger *zap.Logger, interval time.Duration) *Reporter {
	return &Reporter{
		source:   source,
		logger:   logger,
		interval: interval,
		stop:     make(chan struct{}),
	}
}

func (r *Reporter) Start(ctx context.Context) {
	r.logger.Info("Starting stats reporter", zap.Duration("interval", r.interval))

	r.wg.Add(1)
	go r.run(ctx)
}

// Stop можно вызывать повторно
func (r *Reporter) Stop() {
	r.once.Do(func() {
		r.logger.Info("Stopping stats reporter...")
		close(r.stop)
	})
	r.wg.Wait()
}

func (r *Reporter) run(ctx context.Context) {
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
			if err := r.report(ctx); err != nil {
				r.logger.Error("stats report failed", zap.Error(err))
			}
		}
	}
}

func (r *Reporter) report(ctx context.Context) error {
	stats, err := r.source.Stats(ctx)
	if err != nil {
		return err
	}

	fields := []zap.Field{
		zap.Int("total", stats.Total),
		zap.Int("overdue", stats.Overdue),
		zap.Any("by_status", stats.ByStatus),
		zap.Any("by_priority", stats.ByPriority),
	}
	if stats.Overdue > 0 {
		r.logger.Warn("Overdue tasks present", fields...)
		return nil
	}
	r.logger.Info("Task stats", fields...)
	return nil
}
