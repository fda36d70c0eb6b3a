package dto

import (
	"github.com/aarondl/null/v8"

	"rental-workflow/internal/entities"
)

// ExecuteActionDTO - действие в схеме матрицы (ACCEPT_ORDER, START_SURGERY ...).
type ExecuteActionDTO struct {
	OrderID     string         `json:"order_id" validate:"required"`
	OrderNumber string         `json:"order_number" validate:"required,max=64"`
	Status      string         `json:"status" validate:"required"`
	Action      string         `json:"action" validate:"required"`
	ActorRole   string         `json:"actor_role" validate:"required"`
	Actor       *entities.User `json:"-" validate:"-"`
	Notes       null.String    `json:"notes" validate:"omitempty,max=2000"`
}

type ActionResult struct {
	Action     string                 `json:"action"`
	FromStatus string                 `json:"from_status"`
	ToStatus   string                 `json:"to_status"`
	AuditEntry entities.AuditLogEntry `json:"audit_entry"`
}
