package listeners

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"rental-workflow/internal/events"
	"rental-workflow/internal/services"
	"rental-workflow/pkg/eventbus"
)

// NotificationListener доставляет уведомления, сгенерированные переходом.
// Сбой доставки только логируется: переход к этому моменту уже записан.
type NotificationListener struct {
	sender services.NotificationSenderInterface
	logger *zap.Logger
}

func NewNotificationListener(sender services.NotificationSenderInterface, logger *zap.Logger) *NotificationListener {
	return &NotificationListener{sender: sender, logger: logger}
}

func (l *NotificationListener) Register(bus *eventbus.Bus) {
	bus.Subscribe(events.OrderStatusChanged, l.handleOrderStatusChanged)
	l.logger.Info("NotificationListener подписан на событие", zap.String("event", events.OrderStatusChanged))
}

func (l *NotificationListener) handleOrderStatusChanged(ctx context.Context, event eventbus.Event) error {
	e, ok := event.(events.OrderStatusChangedEvent)
	if !ok {
		return fmt.Errorf("неожиданный тип события: %T", event)
	}

	var errs []error
	sent := 0
	for _, n := range e.Notifications {
		if err := l.sender.Send(ctx, n); err != nil {
			l.logger.Error("Не удалось доставить уведомление",
				zap.String("notificationID", n.ID),
				zap.String("recipient", n.RecipientID),
				zap.Error(err),
			)
			errs = append(errs, err)
			continue
		}
		sent++
	}

	l.logger.Debug("Уведомления по переходу доставлены",
		zap.String("orderID", e.History.OrderID),
		zap.Int("sent", sent),
		zap.Int("failed", len(errs)),
	)
	return errors.Join(errs...)
}
