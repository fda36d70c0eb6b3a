package entities

import (
	"time"

	"rental-workflow/pkg/types"
)

// Order - заявка на аренду хирургического оборудования.
// Ядро читает и пишет только Status, остальное - контекст для шаблонов и аудита.
type Order struct {
	ID           string     `json:"id"`
	Number       string     `json:"number"`
	Status       string     `json:"status"`
	CustomerName string     `json:"customer_name"`
	PatientName  string     `json:"patient_name"`
	Hospital     string     `json:"hospital"`
	SurgeryDate  *time.Time `json:"surgery_date,omitempty"`

	types.BaseEntity
}
