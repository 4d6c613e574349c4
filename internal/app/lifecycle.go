package app

import (
	"context"
	"sync"
	"time"

	"finance-viewer/internal/events"
	"finance-viewer/internal/gui"
	"finance-viewer/internal/logger"
	"finance-viewer/internal/timing"
)

const poolDrainTimeout = 5 * time.Second

type Lifecycle struct {
	cancel     context.CancelFunc
	pool       *events.Pool
	guiManager *gui.Manager
	timings    *timing.Tracker
	logger     logger.Logger
	once       sync.Once
}

func NewLifecycle(cancel context.CancelFunc, pool *events.Pool, gm *gui.Manager, timings *timing.Tracker, log logger.Logger) *Lifecycle {
	return &Lifecycle{
		cancel:     cancel,
		pool:       pool,
		guiManager: gm,
		timings:    timings,
		logger:     log,
	}
}

// Shutdown may be called from the window close handler and from the signal
// handler; only the first call does anything.
func (l *Lifecycle) Shutdown() {
	l.once.Do(l.shutdown)
}

func (l *Lifecycle) shutdown() {
	l.logger.Info("Lifecycle", "shutdown sequence initiated", nil)

	// In-flight requests see a cancelled context and fail fast.
	l.cancel()

	if l.pool != nil {
		ctx, cancel := context.WithTimeout(context.Background(), poolDrainTimeout)
		defer cancel()
		if err := l.pool.Shutdown(ctx); err != nil {
			l.logger.Warning("Lifecycle", "worker pool did not drain", map[string]interface{}{
				"error": err.Error(),
			})
		} else {
			l.logger.Debug("Lifecycle", "worker pool drained", nil)
		}
	}

	if l.guiManager != nil {
		l.guiManager.Shutdown()
		l.logger.Debug("Lifecycle", "GUI manager shutdown completed", nil)
	}

	if l.timings != nil {
		l.logger.Info("Lifecycle", "timing summary", l.timings.Summary())
	}

	l.logger.Info("Lifecycle", "shutdown sequence completed", nil)
}
