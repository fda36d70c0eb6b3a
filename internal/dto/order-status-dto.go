package dto

import (
	"github.com/aarondl/null/v8"

	"rental-workflow/internal/entities"
)

// ChangeOrderStatusDTO - запрос на смену статуса в операционной схеме.
type ChangeOrderStatusDTO struct {
	OrderID      string            `json:"order_id" validate:"required"`
	OrderNumber  string            `json:"order_number" validate:"required,max=64"`
	CustomerName string            `json:"customer_name" validate:"omitempty,max=255"`
	FromStatus   string            `json:"from_status" validate:"required,wf_status"`
	ToStatus     string            `json:"to_status" validate:"required,wf_status"`
	Actor        *entities.User    `json:"-" validate:"-"`
	Reason       null.String       `json:"reason" validate:"omitempty,max=500"`
	Notes        null.String       `json:"notes" validate:"omitempty,max=2000"`
	Metadata     map[string]string `json:"metadata,omitempty"`

	// Variables - дополнительные значения для шаблонов уведомлений (hospital, surgeryDate и т.д.).
	Variables map[string]string `json:"variables,omitempty"`
}

// StatusChangeResult - ответ оркестратора. При Success=false ничего не записано.
type StatusChangeResult struct {
	Success       bool                         `json:"success"`
	StateChange   *entities.StateChangeHistory `json:"state_change,omitempty"`
	Notifications []entities.Notification      `json:"notifications"`
	Error         string                       `json:"error,omitempty"`
	Errors        []string                     `json:"errors,omitempty"`
	Warnings      []string                     `json:"warnings,omitempty"`
}

// AvailableTransitionDTO - переход, который можно предложить пользователю в UI.
type AvailableTransitionDTO struct {
	ToStatus         string   `json:"to_status"`
	Label            string   `json:"label"`
	Class            string   `json:"class"`
	RequiresReason   bool     `json:"requires_reason"`
	RequiresApproval bool     `json:"requires_approval"`
	NextSteps        []string `json:"next_steps"`
}
