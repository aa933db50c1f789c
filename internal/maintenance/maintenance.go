package maintenance

import (
	"context"
	"fmt"
	"time"

	"github.com/adhocore/gronx"

	"civchat/pkg/config"
	"civchat/pkg/logger"
	"civchat/pkg/presence"
	"civchat/pkg/store"
)

// Start starts the maintenance scheduler if enabled. Each tick sweeps
// expired typing signals from the in-memory tracker (nil when the redis
// backend handles expiry itself) and logs store statistics for operators.
// Returns a cancel func.
func Start(ctx context.Context, cfg *config.Config, sweeper *presence.Memory) (context.CancelFunc, error) {
	if !cfg.Maintenance.Enabled {
		logger.Info("maintenance_disabled")
		return func() {}, nil
	}

	// map empty cron to default every minute
	cronExpr := cfg.Maintenance.Cron
	if cronExpr == "" {
		cronExpr = "* * * * *"
	}
	if !gronx.IsValid(cronExpr) {
		logger.Error("maintenance_invalid_cron", "cron", cfg.Maintenance.Cron)
		return nil, fmt.Errorf("invalid maintenance cron expression: %s", cfg.Maintenance.Cron)
	}

	logger.Info("maintenance_enabled", "cron", cronExpr)
	ctx2, cancel := context.WithCancel(ctx)
	go runScheduler(ctx2, cronExpr, sweeper)
	return cancel, nil
}

// runScheduler uses gronx to compute the next tick for the configured cron
// expression and sleeps until that time. This yields sharper scheduling and
// supports full cron syntax.
func runScheduler(ctx context.Context, cronExpr string, sweeper *presence.Memory) {
	for {
		select {
		case <-ctx.Done():
			logger.Info("maintenance_scheduler_stopping")
			return
		default:
		}

		now := time.Now().UTC()
		next, err := gronx.NextTickAfter(cronExpr, now, false)
		if err != nil {
			logger.Error("maintenance_nexttick_failed", "cron", cronExpr, "error", err)
			select {
			case <-time.After(30 * time.Second):
			case <-ctx.Done():
				logger.Info("maintenance_scheduler_stopping")
				return
			}
			continue
		}

		select {
		case <-time.After(time.Until(next)):
			runOnce(sweeper)
		case <-ctx.Done():
			logger.Info("maintenance_scheduler_stopping")
			return
		}
	}
}

// runOnce performs one maintenance pass.
func runOnce(sweeper *presence.Memory) {
	start := time.Now()
	evicted := 0
	if sweeper != nil {
		evicted = sweeper.Sweep()
	}
	st := store.GetStats()
	logger.Info("maintenance_run_complete",
		"evicted_typing_signals", evicted,
		"disk_bytes", st.DiskBytes,
		"last_message_id", st.LastMessageID,
		"duration_ms", time.Since(start).Milliseconds(),
	)
}
