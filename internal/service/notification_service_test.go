package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spec-kit/queue-info-api/internal/config"
	"github.com/spec-kit/queue-info-api/internal/events"
)

func TestNotificationService_ResetTokenNeverLogged(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zap.DebugLevel)
	logger := zap.New(core)

	dispatcher := events.NewInMemoryDispatcher()
	svc := NewNotificationService(dispatcher, logger, config.SMTPConfig{
		FromEmail: "noreply@example.com",
		FromName:  "queue-info-api",
		Enabled:   true,
	})
	svc.RegisterHandlers()

	const token = "reset-token-must-stay-out-of-logs"
	err := dispatcher.Publish(context.Background(), events.Event{
		Type:      events.EventPasswordResetRequested,
		UserID:    7,
		Timestamp: time.Now(),
		Payload: events.PasswordResetRequestedPayload{
			Email:      "user@example.com",
			ResetToken: token,
		},
	})
	require.NoError(t, err)
	require.NotZero(t, logs.Len(), "expected log output for reset request")

	for _, entry := range logs.All() {
		require.NotContains(t, entry.Message, token)
		for _, field := range entry.Context {
			require.False(t, strings.Contains(field.String, token),
				"log field %q contains the reset token", field.Key)
		}
	}
}

func TestNotificationService_IgnoresBadPayload(t *testing.T) {
	t.Parallel()

	dispatcher := events.NewInMemoryDispatcher()
	svc := NewNotificationService(dispatcher, zap.NewNop(), config.SMTPConfig{})
	svc.RegisterHandlers()

	// Handler errors are swallowed by the dispatcher; this must not panic.
	err := dispatcher.Publish(context.Background(), events.Event{
		Type:    events.EventPasswordResetRequested,
		Payload: "not the expected payload type",
	})
	require.NoError(t, err)
}
