package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/civic-report/internal/config"
	"github.com/spec-kit/civic-report/internal/events"
)

// NotificationService handles emitting notifications for domain events.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventIssueSubmitted, n.handleIssueSubmitted)
	n.dispatcher.Subscribe(events.EventIssueStatusChanged, n.handleIssueStatusChanged)
	n.dispatcher.Subscribe(events.EventAccountRoleChanged, n.handleAccountRoleChanged)
	n.dispatcher.Subscribe(events.EventAccountDeleted, n.handleAccountDeleted)
}

func (n *NotificationService) handleIssueSubmitted(ctx context.Context, event events.Event) error {
	n.logger.Info("IssueSubmitted", zap.String("issue_id", event.SubjectID), zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleIssueStatusChanged(ctx context.Context, event events.Event) error {
	n.logger.Info("IssueStatusChanged", zap.String("issue_id", event.SubjectID), zap.Any("payload", event.Payload))
	// reporters hear about progress on their own issues
	if payload, ok := event.Payload.(events.IssueStatusChangedPayload); ok && payload.ReporterID != nil {
		n.sendEmailNotificationStub(ctx, event)
	}
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleAccountRoleChanged(ctx context.Context, event events.Event) error {
	n.logger.Info("AccountRoleChanged", zap.String("account_id", event.SubjectID), zap.Any("payload", event.Payload))
	n.sendEmailNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleAccountDeleted(_ context.Context, event events.Event) error {
	n.logger.Info("AccountDeleted", zap.String("account_id", event.SubjectID))
	return nil
}

func (n *NotificationService) sendEmailNotificationStub(_ context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" {
		return
	}
	n.logger.Debug("sendEmailNotificationStub",
		zap.String("from", n.cfg.EmailFrom),
		zap.String("subject_id", event.SubjectID),
		zap.String("event_type", string(event.Type)))
}

func (n *NotificationService) sendWebhookNotificationStub(_ context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookNotificationStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("subject_id", event.SubjectID),
		zap.String("event_type", string(event.Type)))
}
