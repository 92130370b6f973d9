package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/civicdesk/issue-service/internal/config"
	"github.com/civicdesk/issue-service/internal/events"
)

// AlertService fans domain events out to external channels. Email and
// webhook delivery are stubs; the events and logging are real.
type AlertService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.AlertConfig
}

// NewAlertService creates the service.
func NewAlertService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.AlertConfig) *AlertService {
	return &AlertService{
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to events.
func (a *AlertService) RegisterHandlers() {
	if a.dispatcher == nil {
		return
	}
	a.dispatcher.Subscribe(events.EventIssueCreated, a.handleIssueCreated)
	a.dispatcher.Subscribe(events.EventIssueAssigned, a.handleIssueAssigned)
	a.dispatcher.Subscribe(events.EventIssueStatusChanged, a.handleStatusChanged)
	a.dispatcher.Subscribe(events.EventIssueEscalated, a.handleIssueEscalated)
	a.dispatcher.Subscribe(events.EventSLANotification, a.handleSLANotification)
}

func (a *AlertService) handleIssueCreated(ctx context.Context, event events.Event) error {
	a.logger.Info("IssueCreated", zap.String("issue_id", event.IssueID), zap.Any("payload", event.Payload))
	a.sendEmailStub(ctx, event)
	a.sendWebhookStub(ctx, event)
	return nil
}

func (a *AlertService) handleIssueAssigned(ctx context.Context, event events.Event) error {
	a.logger.Info("IssueAssigned", zap.String("issue_id", event.IssueID), zap.Any("payload", event.Payload))
	a.sendWebhookStub(ctx, event)
	return nil
}

func (a *AlertService) handleStatusChanged(ctx context.Context, event events.Event) error {
	a.logger.Info("IssueStatusChanged", zap.String("issue_id", event.IssueID), zap.Any("payload", event.Payload))
	a.sendWebhookStub(ctx, event)
	return nil
}

func (a *AlertService) handleIssueEscalated(ctx context.Context, event events.Event) error {
	a.logger.Warn("IssueEscalated", zap.String("issue_id", event.IssueID), zap.Any("payload", event.Payload))
	a.sendEmailStub(ctx, event)
	a.sendWebhookStub(ctx, event)
	return nil
}

func (a *AlertService) handleSLANotification(ctx context.Context, event events.Event) error {
	a.logger.Info("SLANotification", zap.String("issue_id", event.IssueID), zap.Any("payload", event.Payload))
	a.sendEmailStub(ctx, event)
	return nil
}

func (a *AlertService) sendEmailStub(_ context.Context, event events.Event) {
	if strings.TrimSpace(a.cfg.EmailFrom) == "" {
		return
	}
	a.logger.Debug("sendEmailStub",
		zap.String("from", a.cfg.EmailFrom),
		zap.String("issue_id", event.IssueID),
		zap.String("event_type", string(event.Type)))
}

func (a *AlertService) sendWebhookStub(_ context.Context, event events.Event) {
	if strings.TrimSpace(a.cfg.WebhookURL) == "" {
		return
	}
	a.logger.Debug("sendWebhookStub",
		zap.String("url", a.cfg.WebhookURL),
		zap.String("issue_id", event.IssueID),
		zap.String("event_type", string(event.Type)))
}
