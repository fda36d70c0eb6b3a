package services

import (
	"context"

	"go.uber.org/zap"

	"rental-workflow/internal/entities"
)

// NotificationSenderInterface - доставка готового уведомления получателю.
type NotificationSenderInterface interface {
	Send(ctx context.Context, n entities.Notification) error
}

// mockNotificationSender - реализация-заглушка, которая пишет в лог
// вместо реальной отправки. Реальный канал (почта, push) подключается снаружи.
type mockNotificationSender struct {
	logger *zap.Logger
}

// NewMockNotificationSender - конструктор для отправителя-заглушки.
func NewMockNotificationSender(logger *zap.Logger) NotificationSenderInterface {
	return &mockNotificationSender{logger: logger}
}

// Send имитирует отправку уведомления.
func (s *mockNotificationSender) Send(_ context.Context, n entities.Notification) error {
	s.logger.Info("!!! ИМИТАЦИЯ ОТПРАВКИ УВЕДОМЛЕНИЯ !!!",
		zap.String("кому", n.RecipientID),
		zap.String("роль", n.RecipientRole),
		zap.String("заявка", n.OrderNumber),
		zap.String("тип", n.Type),
		zap.String("заголовок", n.Title),
		zap.String("приоритет", string(n.Priority)),
	)
	return nil
}
