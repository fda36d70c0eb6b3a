package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rental-workflow/internal/authz"
)

// Таблицы по умолчанию не должны расходиться. Если тест упал - это вопрос к
// владельцам продукта, а не повод молча поправить одну из таблиц.
func TestCheckConsistency_DefaultTablesAgree(t *testing.T) {
	report := CheckConsistency(authz.Matrix(), DefaultValidator(), DefaultSchemeMapping())

	for _, c := range report.Conflicts {
		t.Errorf("конфликт схем: %s", c.Description)
	}
	assert.True(t, report.OK())
	assert.Empty(t, report.Unmapped)
}

func TestCheckConsistency_DetectsRoleMismatch(t *testing.T) {
	table := DefaultTransitions()
	for i := range table {
		if table[i].From == StatusPending && table[i].To == StatusApproved {
			table[i].AllowedRoles = []authz.Role{authz.RoleAdmin}
		}
	}

	report := CheckConsistency(authz.Matrix(), NewValidator(table), DefaultSchemeMapping())

	require.Len(t, report.Conflicts, 1)
	c := report.Conflicts[0]
	assert.Equal(t, ConflictRoleMismatch, c.Kind)
	assert.Equal(t, authz.StatusPendingAcceptance, c.Entry.Status)
	assert.Equal(t, authz.RoleOperationsManager, c.MappedRole)
}

func TestCheckConsistency_DetectsMissingEdge(t *testing.T) {
	var table []Transition
	for _, tr := range DefaultTransitions() {
		if tr.From == StatusInTransit && tr.To == StatusCompleted {
			continue
		}
		table = append(table, tr)
	}

	report := CheckConsistency(authz.Matrix(), NewValidator(table), DefaultSchemeMapping())

	require.Len(t, report.Conflicts, 1)
	assert.Equal(t, ConflictMissingEdge, report.Conflicts[0].Kind)
	assert.Equal(t, authz.StatusEquipmentReturn, report.Conflicts[0].Entry.Status)
}

func TestCheckConsistency_ReportsUnmappedEntries(t *testing.T) {
	mapping := DefaultSchemeMapping()
	delete(mapping.Roles, authz.ActionRoleCommercial)

	report := CheckConsistency(authz.Matrix(), DefaultValidator(), mapping)

	assert.True(t, report.OK())
	require.Len(t, report.Unmapped, 1)
	assert.Contains(t, report.Unmapped[0], string(authz.StatusPendingDoctorConfirmation))
}
