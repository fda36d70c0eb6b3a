package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"rental-workflow/internal/authz"
	"rental-workflow/internal/entities"
	"rental-workflow/internal/workflow"
)

func newTestNotificationService(engine TemplateEngine, dir RecipientDirectory) *NotificationService {
	s := NewNotificationService(engine, dir, zap.NewNop())
	s.now = func() time.Time { return time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC) }
	return s
}

func TestPlanNotifications(t *testing.T) {
	cases := []struct {
		from, to workflow.Status
		want     []NotificationPlan
	}{
		{workflow.StatusPending, workflow.StatusApproved, []NotificationPlan{{authz.RoleAccountManager, TemplateApproval}}},
		{workflow.StatusApproved, workflow.StatusRejected, []NotificationPlan{{authz.RoleAccountManager, TemplateRejection}}},
		{workflow.StatusApproved, workflow.StatusInPreparation, []NotificationPlan{{authz.RoleWarehouseLead, TemplatePreparation}}},
		{workflow.StatusInPreparation, workflow.StatusInTransit, []NotificationPlan{
			{authz.RoleAccountManager, TemplateDispatch},
			{authz.RoleTechnician, TemplateAssignment},
		}},
		{workflow.StatusInTransit, workflow.StatusCompleted, []NotificationPlan{
			{authz.RoleAccountManager, TemplateCompletion},
			{authz.RoleFinance, TemplateBillingRequired},
		}},
		{workflow.StatusCompleted, workflow.StatusBilled, []NotificationPlan{{authz.RoleAccountManager, TemplateBilled}}},
		{workflow.StatusRejected, workflow.StatusPending, []NotificationPlan{{authz.RoleOperationsManager, TemplateReopened}}},
	}

	for _, c := range cases {
		assert.Equal(t, c.want, PlanNotifications(c.from, c.to), "%s -> %s", c.from, c.to)
	}

	empty := PlanNotifications(workflow.StatusBilled, workflow.StatusPending)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestNotificationService_Generate(t *testing.T) {
	s := newTestNotificationService(NewPlaceholderEngine(DefaultNotificationTemplates(), MissingLeaveLiteral), nil)

	n, err := s.Generate("o-1", "ORD-1", TemplateApproval, "u-9", authz.RoleAccountManager, map[string]string{
		"customerName": "Clínica Norte",
		"changedBy":    "Luis",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, n.ID)
	assert.Equal(t, "o-1", n.OrderID)
	assert.Equal(t, TemplateApproval, n.Type)
	assert.Equal(t, "Orden ORD-1 aprobada", n.Title)
	assert.Contains(t, n.Message, "Clínica Norte")
	assert.Equal(t, "u-9", n.RecipientID)
	assert.Equal(t, "Gerente Comercial", n.RecipientRole)
	assert.Equal(t, entities.PriorityHigh, n.Priority)
	assert.False(t, n.Read)
	assert.Equal(t, "/ordenes/ORD-1", n.Link.String)
	assert.Equal(t, 2026, n.SentAt.Year())
}

func TestNotificationService_OrderNumberAlwaysAvailable(t *testing.T) {
	engine := NewPlaceholderEngine(map[string]NotificationTemplate{
		"only_number": {Title: "{orderNumber}", Message: "{orderNumber}"},
	}, MissingReject)
	s := newTestNotificationService(engine, nil)

	n, err := s.Generate("o-1", "ORD-42", "only_number", "u", authz.RoleFinance, map[string]string{"orderNumber": "spoofed"})
	require.NoError(t, err)
	assert.Equal(t, "ORD-42", n.Title)
}

func TestNotificationService_NotifyTransition_PendingToApproved(t *testing.T) {
	s := newTestNotificationService(NewPlaceholderEngine(DefaultNotificationTemplates(), MissingLeaveLiteral), nil)

	got, err := s.NotifyTransition(context.Background(), workflow.StatusPending, workflow.StatusApproved, "o-1", "ORD-1", nil)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Gerente Comercial", got[0].RecipientRole)
	assert.Equal(t, "pool:GERENTE_COMERCIAL", got[0].RecipientID)
	assert.Equal(t, TemplateApproval, got[0].Type)
}

type staticDirectory map[authz.Role][]string

func (d staticDirectory) Resolve(_ context.Context, role authz.Role) ([]string, error) {
	ids, ok := d[role]
	if !ok {
		return nil, errors.New("directorio no disponible")
	}
	return ids, nil
}

func TestNotificationService_NotifyTransition_FansOutAndFailsAtomically(t *testing.T) {
	engine := NewPlaceholderEngine(DefaultNotificationTemplates(), MissingLeaveLiteral)

	dir := staticDirectory{
		authz.RoleAccountManager: {"u-1", "u-2"},
		authz.RoleFinance:        {"u-3"},
	}
	s := newTestNotificationService(engine, dir)
	got, err := s.NotifyTransition(context.Background(), workflow.StatusInTransit, workflow.StatusCompleted, "o-1", "ORD-1", nil)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"u-1", "u-2", "u-3"}, []string{got[0].RecipientID, got[1].RecipientID, got[2].RecipientID})

	// техника в справочнике нет - весь набор отменяется
	got, err = s.NotifyTransition(context.Background(), workflow.StatusInPreparation, workflow.StatusInTransit, "o-1", "ORD-1", nil)
	assert.Error(t, err)
	assert.Nil(t, got)
}
