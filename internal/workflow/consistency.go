// Файл: internal/workflow/consistency.go
package workflow

import (
	"fmt"

	"rental-workflow/internal/authz"
)

// SchemeMapping - явное (и возможно неполное) соответствие между схемой действий
// и операционной схемой. Какая из схем главная, не решено: проверка только
// сообщает о расхождениях, ничего не выбирая.
type SchemeMapping struct {
	Statuses map[authz.ActionStatus]Status
	Roles    map[authz.ActionRole]authz.Role
}

// DefaultSchemeMapping - соответствие, согласованное для текущих таблиц.
func DefaultSchemeMapping() SchemeMapping {
	return SchemeMapping{
		Statuses: map[authz.ActionStatus]Status{
			authz.StatusPendingAcceptance:             StatusPending,
			authz.StatusPendingDoctorConfirmation:     StatusApproved,
			authz.StatusPendingTechnicianAssignment:   StatusApproved,
			authz.StatusPendingTechnicianConfirmation: StatusApproved,
			authz.StatusPreparingEquipment:            StatusInPreparation,
			authz.StatusSurgeryPending:                StatusInTransit,
			authz.StatusSurgeryInProgress:             StatusInTransit,
			authz.StatusEquipmentReturn:               StatusInTransit,
			authz.StatusPendingFinalApproval:          StatusCompleted,
			authz.StatusCompleted:                     StatusCompleted,
			authz.StatusRejected:                      StatusRejected,
			authz.StatusCancelled:                     StatusRejected,
		},
		Roles: map[authz.ActionRole]authz.Role{
			authz.ActionRoleOperations:    authz.RoleOperationsManager,
			authz.ActionRoleCommercial:    authz.RoleAccountManager,
			authz.ActionRoleTechnician:    authz.RoleTechnician,
			authz.ActionRoleWarehouseLead: authz.RoleWarehouseLead,
		},
	}
}

const (
	ConflictMissingEdge  = "missing_edge"
	ConflictRoleMismatch = "role_mismatch"
)

type Conflict struct {
	Kind        string
	Entry       authz.MatrixEntry
	From        Status
	To          Status
	MappedRole  authz.Role
	Description string
}

type ConsistencyReport struct {
	Conflicts []Conflict
	// Unmapped - строки матрицы, которые нельзя сравнить без решения владельцев продукта.
	Unmapped []string
}

func (r ConsistencyReport) OK() bool {
	return len(r.Conflicts) == 0
}

// CheckConsistency сравнивает каждую строку матрицы действий с таблицей переходов.
// Шаги внутри одного крупного статуса (from == to после маппинга) пропускаются.
func CheckConsistency(matrix []authz.MatrixEntry, v *Validator, mapping SchemeMapping) ConsistencyReport {
	report := ConsistencyReport{Conflicts: []Conflict{}, Unmapped: []string{}}

	for _, e := range matrix {
		from, okFrom := mapping.Statuses[e.Status]
		to, okTo := mapping.Statuses[e.ResultingStatus]
		role, okRole := mapping.Roles[e.Role]
		if !okFrom || !okTo || !okRole {
			report.Unmapped = append(report.Unmapped,
				fmt.Sprintf("%s/%s -> %s", e.Status, e.Role, e.ResultingStatus))
			continue
		}
		if from == to {
			continue
		}

		t, found := v.Find(from, to)
		switch {
		case !found:
			report.Conflicts = append(report.Conflicts, Conflict{
				Kind: ConflictMissingEdge, Entry: e, From: from, To: to, MappedRole: role,
				Description: fmt.Sprintf("%s/%s: нет перехода %s -> %s", e.Status, e.Role, from, to),
			})
		case !t.Allows(role):
			report.Conflicts = append(report.Conflicts, Conflict{
				Kind: ConflictRoleMismatch, Entry: e, From: from, To: to, MappedRole: role,
				Description: fmt.Sprintf("%s/%s: роль %s не допущена к переходу %s -> %s", e.Status, e.Role, role, from, to),
			})
		}
	}

	return report
}
