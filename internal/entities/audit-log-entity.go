package entities

import (
	"time"

	"github.com/aarondl/null/v8"
)

// Типы сущностей в журнале аудита
const (
	AuditEntityOrder = "order"
)

// Действия, которые пишутся в журнал
const (
	AuditActionStatusChange = "STATUS_CHANGE"
	AuditActionOrderAction  = "ORDER_ACTION"
)

// AuditLogEntry - неизменяемая запись журнала. Sequence растет строго монотонно
// и задает порядок записей, даже если Timestamp совпадает.
type AuditLogEntry struct {
	ID         string      `json:"id"`
	Sequence   uint64      `json:"sequence"`
	Timestamp  time.Time   `json:"timestamp"`
	UserID     string      `json:"user_id"`
	UserRole   string      `json:"user_role"`
	Action     string      `json:"action"`
	EntityType string      `json:"entity_type"`
	EntityID   string      `json:"entity_id"`
	OldValue   null.String `json:"old_value"`
	NewValue   null.String `json:"new_value"`
	Details    string      `json:"details"`

	// Order заполняется только для событий смены статуса заявки.
	Order *OrderAuditFields `json:"order,omitempty"`
}

type OrderAuditFields struct {
	OrderNumber  string      `json:"order_number"`
	CustomerName string      `json:"customer_name"`
	OldStatus    string      `json:"old_status"`
	NewStatus    string      `json:"new_status"`
	Reason       null.String `json:"reason"`
}
