// Package snapshotjob periodically sweeps the durable snapshot, counting
// records and surfacing entries that no longer parse. The sweep is
// read-only; it exists so a long-running process notices snapshot rot
// without waiting for the next restart's hydration.
package snapshotjob

import (
	"context"
	"fmt"
	"time"

	"github.com/adhocore/gronx"

	"chatcore/pkg/config"
	"chatcore/pkg/logger"
	"chatcore/pkg/store"
	"chatcore/pkg/telemetry"
)

// Start starts the sweep scheduler if enabled. Returns a cancel func.
func Start(ctx context.Context, cfg *config.Config) (context.CancelFunc, error) {
	if !cfg.Snapshot.Enabled {
		logger.Info("snapshot_sweep_disabled")
		return func() {}, nil
	}

	// default: hourly on the hour
	cronExpr := cfg.Snapshot.Cron
	if cronExpr == "" {
		cronExpr = "0 * * * *"
	}
	if !gronx.IsValid(cronExpr) {
		logger.Error("snapshot_sweep_invalid_cron", "cron", cfg.Snapshot.Cron)
		return nil, fmt.Errorf("invalid snapshot sweep cron expression: %s", cfg.Snapshot.Cron)
	}

	logger.Info("snapshot_sweep_enabled", "cron", cronExpr)
	ctx2, cancel := context.WithCancel(ctx)
	go runScheduler(ctx2, cronExpr)
	return cancel, nil
}

// runScheduler computes the next tick for the configured cron expression
// and sleeps until that time, which supports full cron syntax.
func runScheduler(ctx context.Context, cronExpr string) {
	for {
		select {
		case <-ctx.Done():
			logger.Info("snapshot_sweep_stopping")
			return
		default:
		}

		now := time.Now().UTC()
		next, err := gronx.NextTickAfter(cronExpr, now, false)
		if err != nil {
			logger.Error("snapshot_sweep_nexttick_failed", "cron", cronExpr, "error", err)
			select {
			case <-time.After(30 * time.Second):
			case <-ctx.Done():
				logger.Info("snapshot_sweep_stopping")
				return
			}
			continue
		}

		select {
		case <-time.After(time.Until(next)):
			runOnce()
		case <-ctx.Done():
			logger.Info("snapshot_sweep_stopping")
			return
		}
	}
}

// RunImmediate triggers a single sweep, for tests and admin triggers.
func RunImmediate() error {
	if !store.Ready() {
		return fmt.Errorf("snapshot store not opened")
	}
	runOnce()
	return nil
}

func runOnce() {
	start := time.Now()
	st, err := store.Scan()
	if err != nil {
		logger.Error("snapshot_sweep_failed", "error", err)
		return
	}
	telemetry.SetChats(st.Chats)
	logger.Info("snapshot_sweep_done",
		"chats", st.Chats, "messages", st.Messages, "users", st.Users,
		"elapsed_ms", time.Since(start).Milliseconds())
}
