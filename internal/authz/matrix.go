// Файл: internal/authz/matrix.go
package authz

import (
	"strings"

	apperrors "rental-workflow/pkg/errors"
)

// ActionStatus - статус заявки в схеме действий (12 этапов аренды).
// Отдельное перечисление: с workflow.Status напрямую не сравнивается.
type ActionStatus string

const (
	StatusPendingAcceptance             ActionStatus = "PENDING_ACCEPTANCE"
	StatusPendingDoctorConfirmation     ActionStatus = "PENDING_DOCTOR_CONFIRMATION"
	StatusPendingTechnicianAssignment   ActionStatus = "PENDING_TECHNICIAN_ASSIGNMENT"
	StatusPendingTechnicianConfirmation ActionStatus = "PENDING_TECHNICIAN_CONFIRMATION"
	StatusPreparingEquipment            ActionStatus = "PREPARING_EQUIPMENT"
	StatusSurgeryPending                ActionStatus = "SURGERY_PENDING"
	StatusSurgeryInProgress             ActionStatus = "SURGERY_IN_PROGRESS"
	StatusEquipmentReturn               ActionStatus = "EQUIPMENT_RETURN"
	StatusPendingFinalApproval          ActionStatus = "PENDING_FINAL_APPROVAL"
	StatusCompleted                     ActionStatus = "COMPLETED"
	StatusRejected                      ActionStatus = "REJECTED"
	StatusCancelled                     ActionStatus = "CANCELLED"
)

func ActionStatuses() []ActionStatus {
	return []ActionStatus{
		StatusPendingAcceptance,
		StatusPendingDoctorConfirmation,
		StatusPendingTechnicianAssignment,
		StatusPendingTechnicianConfirmation,
		StatusPreparingEquipment,
		StatusSurgeryPending,
		StatusSurgeryInProgress,
		StatusEquipmentReturn,
		StatusPendingFinalApproval,
		StatusCompleted,
		StatusRejected,
		StatusCancelled,
	}
}

// IsTerminal - из этих статусов никаких действий нет.
func (s ActionStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusRejected || s == StatusCancelled
}

func ParseActionStatus(raw string) (ActionStatus, error) {
	candidate := ActionStatus(strings.ToUpper(strings.TrimSpace(raw)))
	for _, s := range ActionStatuses() {
		if s == candidate {
			return s, nil
		}
	}
	return "", apperrors.NewInvalidInputError("estado desconocido en el flujo de acciones: %q", raw)
}

// Action - действие пользователя над заявкой.
type Action string

const (
	ActionAcceptOrder       Action = "ACCEPT_ORDER"
	ActionRejectOrder       Action = "REJECT_ORDER"
	ActionConfirmDoctor     Action = "CONFIRM_DOCTOR"
	ActionAssignTechnician  Action = "ASSIGN_TECHNICIAN"
	ActionConfirmAssignment Action = "CONFIRM_ASSIGNMENT"
	ActionPrepareEquipment  Action = "PREPARE_EQUIPMENT"
	ActionStartSurgery      Action = "START_SURGERY"
	ActionCompleteSurgery   Action = "COMPLETE_SURGERY"
	ActionReturnEquipment   Action = "RETURN_EQUIPMENT"
	ActionFinalApproval     Action = "FINAL_APPROVAL"
	ActionCancelOrder       Action = "CANCEL_ORDER"
)

func Actions() []Action {
	return []Action{
		ActionAcceptOrder, ActionRejectOrder, ActionConfirmDoctor, ActionAssignTechnician,
		ActionConfirmAssignment, ActionPrepareEquipment, ActionStartSurgery, ActionCompleteSurgery,
		ActionReturnEquipment, ActionFinalApproval, ActionCancelOrder,
	}
}

func ParseAction(raw string) (Action, error) {
	candidate := Action(strings.ToUpper(strings.TrimSpace(raw)))
	for _, a := range Actions() {
		if a == candidate {
			return a, nil
		}
	}
	return "", apperrors.NewInvalidInputError("acción desconocida: %q", raw)
}

// MatrixEntry - строка матрицы: какие действия доступны роли в статусе
// и в какой статус переходит заявка после любого из них.
//
// Одна результирующая позиция на пару (статус, роль) - упрощение исходной
// модели: например REJECT_ORDER тоже ведет в PENDING_DOCTOR_CONFIRMATION.
// Поведение сохранено намеренно, см. DESIGN.md.
type MatrixEntry struct {
	Status          ActionStatus
	Role            ActionRole
	Actions         []Action
	ResultingStatus ActionStatus
}

var permissionMatrix = []MatrixEntry{
	{
		Status:          StatusPendingAcceptance,
		Role:            ActionRoleOperations,
		Actions:         []Action{ActionAcceptOrder, ActionRejectOrder},
		ResultingStatus: StatusPendingDoctorConfirmation,
	},
	{
		Status:          StatusPendingDoctorConfirmation,
		Role:            ActionRoleCommercial,
		Actions:         []Action{ActionConfirmDoctor, ActionCancelOrder},
		ResultingStatus: StatusPendingTechnicianAssignment,
	},
	{
		Status:          StatusPendingTechnicianAssignment,
		Role:            ActionRoleOperations,
		Actions:         []Action{ActionAssignTechnician, ActionCancelOrder},
		ResultingStatus: StatusPendingTechnicianConfirmation,
	},
	{
		Status:          StatusPendingTechnicianConfirmation,
		Role:            ActionRoleTechnician,
		Actions:         []Action{ActionConfirmAssignment},
		ResultingStatus: StatusPreparingEquipment,
	},
	{
		Status:          StatusPreparingEquipment,
		Role:            ActionRoleWarehouseLead,
		Actions:         []Action{ActionPrepareEquipment},
		ResultingStatus: StatusSurgeryPending,
	},
	{
		Status:          StatusSurgeryPending,
		Role:            ActionRoleTechnician,
		Actions:         []Action{ActionStartSurgery},
		ResultingStatus: StatusSurgeryInProgress,
	},
	{
		Status:          StatusSurgeryInProgress,
		Role:            ActionRoleTechnician,
		Actions:         []Action{ActionCompleteSurgery},
		ResultingStatus: StatusEquipmentReturn,
	},
	{
		Status:          StatusEquipmentReturn,
		Role:            ActionRoleWarehouseLead,
		Actions:         []Action{ActionReturnEquipment},
		ResultingStatus: StatusPendingFinalApproval,
	},
	{
		Status:          StatusPendingFinalApproval,
		Role:            ActionRoleOperations,
		Actions:         []Action{ActionFinalApproval},
		ResultingStatus: StatusCompleted,
	},
}

// Matrix возвращает копию матрицы (для проверок согласованности и отчетов).
func Matrix() []MatrixEntry {
	out := make([]MatrixEntry, len(permissionMatrix))
	for i, e := range permissionMatrix {
		e.Actions = append([]Action(nil), e.Actions...)
		out[i] = e
	}
	return out
}

func findEntry(status ActionStatus, role ActionRole) (MatrixEntry, bool) {
	if status.IsTerminal() {
		return MatrixEntry{}, false
	}
	for _, e := range permissionMatrix {
		if e.Status == status && e.Role == role {
			return e, true
		}
	}
	return MatrixEntry{}, false
}

// AvailableActions - доступные роли действия в статусе.
// Нет строки в матрице - пустой список, не ошибка.
func AvailableActions(status ActionStatus, role ActionRole) []Action {
	e, ok := findEntry(status, role)
	if !ok {
		return []Action{}
	}
	return append([]Action{}, e.Actions...)
}

// ResultingStatus - статус после любого действия роли в этом статусе.
func ResultingStatus(status ActionStatus, role ActionRole) (ActionStatus, bool) {
	e, ok := findEntry(status, role)
	if !ok {
		return "", false
	}
	return e.ResultingStatus, true
}

// IsActionAllowed - входит ли действие в список доступных.
func IsActionAllowed(status ActionStatus, role ActionRole, action Action) bool {
	for _, a := range AvailableActions(status, role) {
		if a == action {
			return true
		}
	}
	return false
}
