// Файл: internal/statuses/canonical.go
package statuses

// Canonical - нормализованный статус для отображения (бейджи, подписи, календарь).
// Не участвует в проверке прав: у матрицы действий и у таблицы переходов свои перечисления.
type Canonical string

const (
	Created              Canonical = "created"
	Pending              Canonical = "pending"
	PendingAcceptance    Canonical = "pending_acceptance"
	Accepted             Canonical = "accepted"
	Approved             Canonical = "approved"
	Rejected             Canonical = "rejected"
	Cancelled            Canonical = "cancelled"
	OnHold               Canonical = "on_hold"
	DoctorConfirmation   Canonical = "doctor_confirmation"
	DoctorConfirmed      Canonical = "doctor_confirmed"
	TechnicianAssignment Canonical = "technician_assignment"
	TechnicianAssigned   Canonical = "technician_assigned"
	TechnicianConfirmed  Canonical = "technician_confirmed"
	InPreparation        Canonical = "in_preparation"
	EquipmentReady       Canonical = "equipment_ready"
	InTransit            Canonical = "in_transit"
	Delivered            Canonical = "delivered"
	SurgeryScheduled     Canonical = "surgery_scheduled"
	SurgeryInProgress    Canonical = "surgery_in_progress"
	SurgeryCompleted     Canonical = "surgery_completed"
	EquipmentReturn      Canonical = "equipment_return"
	EquipmentReturned    Canonical = "equipment_returned"
	FinalApproval        Canonical = "final_approval"
	Completed            Canonical = "completed"
	Billed               Canonical = "billed"
)

// Default - статус для пустых и нераспознанных значений.
const Default = Created

var all = []Canonical{
	Created, Pending, PendingAcceptance, Accepted, Approved, Rejected, Cancelled, OnHold,
	DoctorConfirmation, DoctorConfirmed,
	TechnicianAssignment, TechnicianAssigned, TechnicianConfirmed,
	InPreparation, EquipmentReady, InTransit, Delivered,
	SurgeryScheduled, SurgeryInProgress, SurgeryCompleted,
	EquipmentReturn, EquipmentReturned, FinalApproval,
	Completed, Billed,
}

// All возвращает полный закрытый набор в стабильном порядке.
func All() []Canonical {
	out := make([]Canonical, len(all))
	copy(out, all)
	return out
}

func (c Canonical) String() string { return string(c) }

// IsFinal - статусы-исходы заявки (для отображения). Можно ли выйти из
// такого статуса, решает таблица переходов: rejected, например, переоткрывается.
func (c Canonical) IsFinal() bool {
	switch c {
	case Completed, Billed, Rejected, Cancelled:
		return true
	}
	return false
}

var labels = map[Canonical]string{
	Created:              "Creada",
	Pending:              "Pendiente",
	PendingAcceptance:    "Pendiente de aceptación",
	Accepted:             "Aceptada",
	Approved:             "Aprobada",
	Rejected:             "Rechazada",
	Cancelled:            "Cancelada",
	OnHold:               "En espera",
	DoctorConfirmation:   "Pendiente de confirmación médica",
	DoctorConfirmed:      "Confirmada por el médico",
	TechnicianAssignment: "Pendiente de asignar técnico",
	TechnicianAssigned:   "Técnico asignado",
	TechnicianConfirmed:  "Técnico confirmado",
	InPreparation:        "En preparación",
	EquipmentReady:       "Equipo listo",
	InTransit:            "En tránsito",
	Delivered:            "Entregada",
	SurgeryScheduled:     "Cirugía programada",
	SurgeryInProgress:    "Cirugía en curso",
	SurgeryCompleted:     "Cirugía finalizada",
	EquipmentReturn:      "Devolución de equipo",
	EquipmentReturned:    "Equipo devuelto",
	FinalApproval:        "Pendiente de aprobación final",
	Completed:            "Completada",
	Billed:               "Facturada",
}

var classes = map[Canonical]string{
	Created:              "status-neutral",
	Pending:              "status-warning",
	PendingAcceptance:    "status-warning",
	Accepted:             "status-info",
	Approved:             "status-info",
	Rejected:             "status-danger",
	Cancelled:            "status-muted",
	OnHold:               "status-muted",
	DoctorConfirmation:   "status-warning",
	DoctorConfirmed:      "status-info",
	TechnicianAssignment: "status-warning",
	TechnicianAssigned:   "status-info",
	TechnicianConfirmed:  "status-info",
	InPreparation:        "status-progress",
	EquipmentReady:       "status-progress",
	InTransit:            "status-progress",
	Delivered:            "status-progress",
	SurgeryScheduled:     "status-primary",
	SurgeryInProgress:    "status-primary",
	SurgeryCompleted:     "status-primary",
	EquipmentReturn:      "status-progress",
	EquipmentReturned:    "status-progress",
	FinalApproval:        "status-warning",
	Completed:            "status-success",
	Billed:               "status-success",
}
