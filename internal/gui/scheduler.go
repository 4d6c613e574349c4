package gui

import (
	"context"
	"time"

	"finance-viewer/internal/logger"

	"fyne.io/fyne/v2"
)

// Scheduler runs recurring callbacks on the fyne main goroutine. Each armed
// callback gets its own ticker goroutine that stops when the callback returns
// false or the context is cancelled.
type Scheduler struct {
	ctx    context.Context
	logger logger.Logger
}

func NewScheduler(ctx context.Context, log logger.Logger) *Scheduler {
	if log == nil {
		log = logger.Nop()
	}
	return &Scheduler{ctx: ctx, logger: log}
}

func (s *Scheduler) Every(interval time.Duration, tick func() bool) {
	s.logger.Debug("Scheduler", "timer armed", map[string]interface{}{
		"interval_ms": interval.Milliseconds(),
	})

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				more := true
				fyne.DoAndWait(func() {
					more = tick()
				})
				if !more {
					s.logger.Debug("Scheduler", "timer disarmed", nil)
					return
				}
			}
		}
	}()
}
