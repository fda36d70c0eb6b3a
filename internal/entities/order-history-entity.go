package entities

import (
	"time"

	"github.com/aarondl/null/v8"
)

// StateChangeHistory - запись о смене статуса. Создается один раз на каждый
// успешный переход и больше не меняется.
type StateChangeHistory struct {
	ID            string            `json:"id"`
	OrderID       string            `json:"order_id"`
	OrderNumber   string            `json:"order_number"`
	FromStatus    string            `json:"from_status"`
	ToStatus      string            `json:"to_status"`
	ChangedBy     string            `json:"changed_by"`
	ChangedByName string            `json:"changed_by_name"`
	ChangedByRole string            `json:"changed_by_role"`
	ChangedAt     time.Time         `json:"changed_at"`
	Reason        null.String       `json:"reason"`
	Notes         null.String       `json:"notes"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}
