package events

import (
	"rental-workflow/internal/entities"
)

const OrderStatusChanged = "order.status.changed"

// OrderStatusChangedEvent - публикуется после того, как переход полностью записан
// (история, аудит). Слушатели не могут повлиять на результат перехода.
type OrderStatusChangedEvent struct {
	History       entities.StateChangeHistory
	Notifications []entities.Notification
	Actor         entities.User
}

// Name - реализуем интерфейс eventbus.Event
func (e OrderStatusChangedEvent) Name() string {
	return OrderStatusChanged
}
