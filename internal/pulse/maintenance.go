package pulse

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// startMaintenance periodically purges poll results and finished tasks
// older than the retention period.
func (m *Module) startMaintenance() {
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		ticker := time.NewTicker(m.cfg.MaintenanceInterval)
		defer ticker.Stop()

		for {
			select {
			case <-m.ctx.Done():
				return
			case <-ticker.C:
				m.runMaintenance()
			}
		}
	}()
}

func (m *Module) runMaintenance() {
	if m.store == nil {
		return
	}
	ctx, cancel := context.WithTimeout(m.ctx, 30*time.Second)
	defer cancel()

	cutoff := time.Now().UTC().Add(-m.cfg.RetentionPeriod)

	if n, err := m.store.DeleteOldResults(ctx, cutoff); err != nil {
		m.logger.Warn("failed to delete old results", zap.Error(err))
	} else if n > 0 {
		m.logger.Info("purged old poll results", zap.Int64("count", n))
	}

	if n, err := m.store.DeleteOldTasks(ctx, cutoff); err != nil {
		m.logger.Warn("failed to delete old tasks", zap.Error(err))
	} else if n > 0 {
		m.logger.Info("purged old execute tasks", zap.Int64("count", n))
	}
}
