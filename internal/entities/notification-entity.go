package entities

import (
	"time"

	"github.com/aarondl/null/v8"
)

type NotificationPriority string

const (
	PriorityLow    NotificationPriority = "low"
	PriorityMedium NotificationPriority = "medium"
	PriorityHigh   NotificationPriority = "high"
)

// Notification - уведомление, сгенерированное переходом. Прочтение и удаление
// обрабатывает подсистема уведомлений, здесь только генерация.
type Notification struct {
	ID            string               `json:"id"`
	OrderID       string               `json:"order_id"`
	OrderNumber   string               `json:"order_number"`
	Type          string               `json:"type"`
	Title         string               `json:"title"`
	Message       string               `json:"message"`
	RecipientID   string               `json:"recipient_id"`
	RecipientRole string               `json:"recipient_role"`
	SentAt        time.Time            `json:"sent_at"`
	Read          bool                 `json:"read"`
	Priority      NotificationPriority `json:"priority"`
	Link          null.String          `json:"link"`
}
