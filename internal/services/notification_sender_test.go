package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"rental-workflow/internal/entities"
)

func TestMockNotificationSender_LogsInsteadOfSending(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	sender := NewMockNotificationSender(zap.New(core))

	err := sender.Send(context.Background(), entities.Notification{
		ID: "n1", RecipientID: "pool:FINANZAS", OrderNumber: "ORD-1", Type: TemplateBillingRequired,
	})
	assert.NoError(t, err)
	if assert.Equal(t, 1, logs.Len()) {
		fields := logs.All()[0].ContextMap()
		assert.Equal(t, "pool:FINANZAS", fields["кому"])
		assert.Equal(t, "ORD-1", fields["заявка"])
	}
}
