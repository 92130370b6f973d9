package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/civicdesk/issue-service/internal/service"
)

// SweepWorker periodically runs the escalation and notification sweeps.
// It is optional: deployments that trigger sweeps through cron or the
// HTTP endpoints simply never start it.
type SweepWorker struct {
	escalation   *service.EscalationService
	notification *service.NotificationService
	interval     time.Duration
	logger       *zap.Logger
}

// NewSweepWorker builds the worker. A non-positive interval disables it.
func NewSweepWorker(escalation *service.EscalationService, notification *service.NotificationService, interval time.Duration, logger *zap.Logger) *SweepWorker {
	if interval <= 0 {
		return nil
	}
	return &SweepWorker{
		escalation:   escalation,
		notification: notification,
		interval:     interval,
		logger:       logger,
	}
}

// Start runs both sweeps on the configured interval until ctx is
// cancelled. Sweep errors are logged and the schedule continues; one bad
// pass must not stop future passes.
func (w *SweepWorker) Start(ctx context.Context) {
	if w == nil {
		return
	}
	go func() {
		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				w.runOnce(ctx)
			}
		}
	}()
}

func (w *SweepWorker) runOnce(ctx context.Context) {
	if result, err := w.escalation.RunSweep(ctx); err != nil {
		w.logger.Error("escalation sweep failed", zap.Error(err))
	} else if result.Count > 0 {
		w.logger.Info("escalation sweep", zap.Int("escalated", result.Count))
	}

	if result, err := w.notification.RunSweep(ctx); err != nil {
		w.logger.Error("notification sweep failed", zap.Error(err))
	} else if result.Count > 0 {
		w.logger.Info("notification sweep", zap.Int("notified", result.Count))
	}
}

// StartAlertWorker registers the alert event handlers.
func StartAlertWorker(alertService *service.AlertService) {
	if alertService == nil {
		return
	}
	alertService.RegisterHandlers()
}
