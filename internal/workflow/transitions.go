// Файл: internal/workflow/transitions.go
package workflow

import (
	"strings"

	"rental-workflow/internal/authz"
	apperrors "rental-workflow/pkg/errors"
)

// Status - статус заявки в операционной схеме (7 крупных этапов).
type Status string

const (
	StatusPending       Status = "pending"
	StatusApproved      Status = "approved"
	StatusRejected      Status = "rejected"
	StatusInPreparation Status = "in_preparation"
	StatusInTransit     Status = "in_transit"
	StatusCompleted     Status = "completed"
	StatusBilled        Status = "billed"
)

func Statuses() []Status {
	return []Status{
		StatusPending,
		StatusApproved,
		StatusRejected,
		StatusInPreparation,
		StatusInTransit,
		StatusCompleted,
		StatusBilled,
	}
}

func (s Status) String() string { return string(s) }

func (s Status) IsValid() bool {
	for _, v := range Statuses() {
		if v == s {
			return true
		}
	}
	return false
}

// IsTerminal - rejected может быть переоткрыт, поэтому терминальный только billed.
func (s Status) IsTerminal() bool {
	return s == StatusBilled
}

func ParseStatus(raw string) (Status, error) {
	s := Status(strings.ToLower(strings.TrimSpace(raw)))
	if !s.IsValid() {
		return "", apperrors.NewInvalidInputError("estado operativo desconocido: %q", raw)
	}
	return s, nil
}

// Transition - разрешенное ребро графа статусов.
type Transition struct {
	From              Status       `json:"from"`
	To                Status       `json:"to"`
	AllowedRoles      []authz.Role `json:"allowedRoles"`
	RequiresReason    bool         `json:"requiresReason"`
	RequiresApproval  bool         `json:"requiresApproval"`
	NextSteps         []string     `json:"nextSteps"`
	AutoNotifications bool         `json:"autoNotifications"`
}

// Allows - входит ли роль в список допущенных.
func (t Transition) Allows(role authz.Role) bool {
	for _, r := range t.AllowedRoles {
		if r == role {
			return true
		}
	}
	return false
}

var transitionsTable = []Transition{
	{
		From:              StatusPending,
		To:                StatusApproved,
		AllowedRoles:      []authz.Role{authz.RoleOperationsManager, authz.RoleAdmin},
		NextSteps:         []string{"Confirmar la cirugía con el médico", "Asignar técnico"},
		AutoNotifications: true,
	},
	{
		From:              StatusPending,
		To:                StatusRejected,
		AllowedRoles:      []authz.Role{authz.RoleOperationsManager, authz.RoleAdmin},
		RequiresReason:    true,
		NextSteps:         []string{"Informar al cliente el motivo del rechazo"},
		AutoNotifications: true,
	},
	{
		From:              StatusApproved,
		To:                StatusInPreparation,
		AllowedRoles:      []authz.Role{authz.RoleWarehouseLead, authz.RoleTechnician, authz.RoleOperationsManager, authz.RoleAdmin},
		NextSteps:         []string{"Preparar y esterilizar el instrumental", "Verificar el inventario del kit"},
		AutoNotifications: true,
	},
	{
		From:              StatusApproved,
		To:                StatusRejected,
		AllowedRoles:      []authz.Role{authz.RoleOperationsManager, authz.RoleAdmin},
		RequiresReason:    true,
		NextSteps:         []string{"Liberar el equipo reservado"},
		AutoNotifications: true,
	},
	{
		From:              StatusInPreparation,
		To:                StatusInTransit,
		AllowedRoles:      []authz.Role{authz.RoleWarehouseLead, authz.RoleTechnician, authz.RoleAdmin},
		NextSteps:         []string{"Entregar el equipo en el hospital", "Confirmar la recepción con el técnico"},
		AutoNotifications: true,
	},
	{
		From:              StatusInTransit,
		To:                StatusCompleted,
		AllowedRoles:      []authz.Role{authz.RoleTechnician, authz.RoleWarehouseLead, authz.RoleOperationsManager, authz.RoleAdmin},
		NextSteps:         []string{"Registrar la devolución del equipo", "Generar la factura"},
		AutoNotifications: true,
	},
	{
		From:              StatusCompleted,
		To:                StatusBilled,
		AllowedRoles:      []authz.Role{authz.RoleFinance, authz.RoleAdmin},
		RequiresApproval:  true,
		NextSteps:         []string{"Enviar la factura al cliente"},
		AutoNotifications: true,
	},
	{
		From:             StatusRejected,
		To:               StatusPending,
		AllowedRoles:     []authz.Role{authz.RoleOperationsManager, authz.RoleAdmin},
		RequiresReason:   true,
		RequiresApproval: true,
		NextSteps:        []string{"Revisar la solicitud reabierta"},
		// Переоткрытие: уведомления не рассылаются автоматически
		AutoNotifications: false,
	},
}

// DefaultTransitions возвращает копию таблицы переходов по умолчанию.
func DefaultTransitions() []Transition {
	return cloneTransitions(transitionsTable)
}

func cloneTransitions(in []Transition) []Transition {
	out := make([]Transition, len(in))
	for i, t := range in {
		t.AllowedRoles = append([]authz.Role(nil), t.AllowedRoles...)
		t.NextSteps = append([]string(nil), t.NextSteps...)
		out[i] = t
	}
	return out
}
