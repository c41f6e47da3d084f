package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/admin-service/internal/config"
	"github.com/spec-kit/admin-service/internal/events"
)

// NotificationService handles emitting notifications for account events.
// Delivery is a stub: events are logged with enough detail for a mail
// relay to be attached later.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
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
	n.dispatcher.Subscribe(events.EventUserRegistered, n.handleUserRegistered)
	n.dispatcher.Subscribe(events.EventPasswordResetRequested, n.handlePasswordResetRequested)
	n.dispatcher.Subscribe(events.EventEmailVerificationRequested, n.handleEmailVerificationRequested)
	n.dispatcher.Subscribe(events.EventUserActivationChanged, n.handleActivationChanged)
}

func (n *NotificationService) handleUserRegistered(ctx context.Context, event events.Event) error {
	n.logger.Info("UserRegistered", zap.String("user_id", event.UserID), zap.Any("payload", event.Payload))
	n.sendEmailNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handlePasswordResetRequested(ctx context.Context, event events.Event) error {
	n.logger.Info("PasswordResetRequested", zap.String("user_id", event.UserID))
	n.sendEmailNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleEmailVerificationRequested(ctx context.Context, event events.Event) error {
	n.logger.Info("EmailVerificationRequested", zap.String("user_id", event.UserID))
	n.sendEmailNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleActivationChanged(ctx context.Context, event events.Event) error {
	n.logger.Info("UserActivationChanged", zap.String("user_id", event.UserID), zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) sendEmailNotificationStub(ctx context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" {
		return
	}
	n.logger.Debug("sendEmailNotificationStub",
		zap.String("from", n.cfg.EmailFrom),
		zap.String("user_id", event.UserID),
		zap.String("event_type", string(event.Type)))
}

func (n *NotificationService) sendWebhookNotificationStub(ctx context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookNotificationStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("user_id", event.UserID),
		zap.String("event_type", string(event.Type)))
}
