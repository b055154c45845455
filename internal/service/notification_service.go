package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/queue-info-api/internal/config"
	"github.com/spec-kit/queue-info-api/internal/events"
)

// NotificationService delivers account emails in response to domain events.
// Delivery is fire-and-forget: failures are logged, never retried, and never
// surfaced to the flow that published the event.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.SMTPConfig
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.SMTPConfig) *NotificationService {
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
	n.dispatcher.Subscribe(events.EventPasswordResetRequested, n.handlePasswordResetRequested)
	n.dispatcher.Subscribe(events.EventPasswordChanged, n.handlePasswordChanged)
	n.dispatcher.Subscribe(events.EventUserRegistered, n.handleUserRegistered)
}

func (n *NotificationService) handlePasswordResetRequested(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.PasswordResetRequestedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload for %s", event.Type)
	}

	// The token rides only in the message body. Log lines carry the address,
	// never the token.
	n.logger.Info("password recovery requested", zap.String("email", payload.Email))

	subject := fmt.Sprintf("%s - Password recovery", n.cfg.FromName)
	body := fmt.Sprintf("Use this token to reset your password: %s", payload.ResetToken)
	n.sendEmailStub(ctx, payload.Email, subject, body)
	return nil
}

func (n *NotificationService) handlePasswordChanged(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.PasswordChangedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload for %s", event.Type)
	}
	n.logger.Info("password changed", zap.Int64("user_id", event.UserID))

	subject := fmt.Sprintf("%s - Password changed", n.cfg.FromName)
	n.sendEmailStub(ctx, payload.Email, subject, "Your password has been updated.")
	return nil
}

func (n *NotificationService) handleUserRegistered(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.UserRegisteredPayload)
	if !ok {
		return fmt.Errorf("unexpected payload for %s", event.Type)
	}
	n.logger.Info("user registered", zap.Int64("user_id", event.UserID))

	subject := fmt.Sprintf("%s - Welcome", n.cfg.FromName)
	n.sendEmailStub(ctx, payload.Email, subject, "Your account has been created.")
	return nil
}

func (n *NotificationService) sendEmailStub(_ context.Context, to, subject, _ string) {
	if !n.cfg.Enabled {
		n.logger.Debug("email delivery disabled; skipping", zap.String("subject", subject))
		return
	}
	n.logger.Debug("sendEmailStub",
		zap.String("from", n.cfg.FromEmail),
		zap.String("to", to),
		zap.String("subject", subject))
}
