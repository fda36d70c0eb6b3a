package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aarondl/null/v8"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"

	"rental-workflow/internal/authz"
	"rental-workflow/internal/dto"
	"rental-workflow/internal/entities"
	"rental-workflow/internal/events"
	"rental-workflow/internal/metrics"
	"rental-workflow/internal/repositories"
	"rental-workflow/internal/workflow"
	apperrors "rental-workflow/pkg/errors"
	"rental-workflow/pkg/eventbus"
	"rental-workflow/pkg/validation"
)

// OrderStatusTestSuite собирает оркестратор на реальных зависимостях в памяти.
type OrderStatusTestSuite struct {
	suite.Suite

	Service   *OrderStatusService
	History   repositories.OrderHistoryRepositoryInterface
	Audit     *AuditService
	Bus       *eventbus.Bus
	Metrics   *metrics.WorkflowMetrics
	Published []events.OrderStatusChangedEvent

	mu sync.Mutex
}

func (s *OrderStatusTestSuite) SetupTest() {
	logger := zap.NewNop()
	s.Metrics = metrics.NewWorkflowMetrics(prometheus.NewRegistry())
	s.History = repositories.NewOrderHistoryRepository()
	s.Audit = NewAuditService(nil, 0, 0, s.Metrics, logger)
	s.Bus = eventbus.New(logger)
	s.Published = nil

	s.Bus.Subscribe(events.OrderStatusChanged, func(_ context.Context, e eventbus.Event) error {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.Published = append(s.Published, e.(events.OrderStatusChangedEvent))
		return nil
	})

	s.Service = s.newService(NewPlaceholderEngine(DefaultNotificationTemplates(), MissingLeaveLiteral), workflow.DefaultValidator())
}

func (s *OrderStatusTestSuite) newService(engine TemplateEngine, v *workflow.Validator) *OrderStatusService {
	logger := zap.NewNop()
	return NewOrderStatusService(
		v,
		authz.NewGatekeeper(logger),
		validation.New(),
		s.History,
		NewNotificationService(engine, nil, logger),
		s.Audit,
		s.Bus,
		s.Metrics,
		logger,
	)
}

func (s *OrderStatusTestSuite) request(from, to workflow.Status, actor *entities.User) dto.ChangeOrderStatusDTO {
	return dto.ChangeOrderStatusDTO{
		OrderID:      "order-1",
		OrderNumber:  "ORD-2026-001",
		CustomerName: "Clínica Norte",
		FromStatus:   from.String(),
		ToStatus:     to.String(),
		Actor:        actor,
	}
}

func operationsManager() *entities.User {
	return &entities.User{ID: "u-ops", Name: "Luis Pérez", Role: "Gerente Operativo"}
}

// assertNothingRecorded - при неуспехе не должно остаться никаких следов.
func (s *OrderStatusTestSuite) assertNothingRecorded(result dto.StatusChangeResult) {
	s.False(result.Success)
	s.NotEmpty(result.Error)
	s.Nil(result.StateChange)
	s.Empty(result.Notifications)

	n, err := s.History.CountByOrderID(context.Background(), "order-1")
	s.Require().NoError(err)
	s.Zero(n)
	s.Zero(s.Audit.Len())

	s.Bus.Wait()
	s.Empty(s.Published)
}

func (s *OrderStatusTestSuite) TestApproveProducesOneApprovalNotification() {
	result := s.Service.ChangeOrderStatus(context.Background(),
		s.request(workflow.StatusPending, workflow.StatusApproved, operationsManager()))

	s.Require().True(result.Success, result.Error)
	s.Empty(result.Error)

	s.Require().Len(result.Notifications, 1)
	n := result.Notifications[0]
	s.Equal(TemplateApproval, n.Type)
	s.Equal(authz.RoleAccountManager.String(), n.RecipientRole)
	s.Equal("order-1", n.OrderID)
	s.Contains(n.Title, "ORD-2026-001")
	s.Contains(n.Message, "Luis Pérez")

	s.Require().NotNil(result.StateChange)
	s.Equal("pending", result.StateChange.FromStatus)
	s.Equal("approved", result.StateChange.ToStatus)
	s.Equal("u-ops", result.StateChange.ChangedBy)
	s.Equal("Gerente Operativo", result.StateChange.ChangedByRole)
	s.NotEmpty(result.StateChange.ID)

	stored, err := s.History.FindByOrderID(context.Background(), "order-1", 0, 0)
	s.Require().NoError(err)
	s.Require().Len(stored, 1)
	s.Equal(result.StateChange.ID, stored[0].ID)

	audit := s.Audit.Query(AuditFilter{EntityID: "order-1"})
	s.Require().Len(audit, 1)
	s.Equal(entities.AuditActionStatusChange, audit[0].Action)
	s.Equal("u-ops", audit[0].UserID)

	s.Bus.Wait()
	s.Require().Len(s.Published, 1)
	s.Equal(result.StateChange.ID, s.Published[0].History.ID)
	s.Len(s.Published[0].Notifications, 1)

	s.Equal(1.0, testutil.ToFloat64(s.Metrics.TransitionsTotal.WithLabelValues("pending", "approved", resultSuccess)))
	s.Equal(1.0, testutil.ToFloat64(s.Metrics.NotificationsGeneratedTotal.WithLabelValues(TemplateApproval, "GERENTE_COMERCIAL")))
}

func (s *OrderStatusTestSuite) TestTechnicianCannotApprove() {
	tech := &entities.User{ID: "u-tech", Role: "Técnico"}
	result := s.Service.ChangeOrderStatus(context.Background(),
		s.request(workflow.StatusPending, workflow.StatusApproved, tech))

	s.assertNothingRecorded(result)
	s.Require().Len(result.Errors, 1)
	s.Contains(result.Error, "Técnico")
}

func (s *OrderStatusTestSuite) TestErrorsAreJoined() {
	// rejected -> pending требует причину; у врача нет прав
	doctor := &entities.User{ID: "u-doc", Role: "Médico"}
	result := s.Service.ChangeOrderStatus(context.Background(),
		s.request(workflow.StatusRejected, workflow.StatusPending, doctor))

	s.assertNothingRecorded(result)
	s.Require().Len(result.Errors, 2)
	s.Equal(strings.Join(result.Errors, "; "), result.Error)
}

func (s *OrderStatusTestSuite) TestReasonRequiredAndAccepted() {
	req := s.request(workflow.StatusPending, workflow.StatusRejected, operationsManager())
	req.Reason = null.StringFrom("   ")
	result := s.Service.ChangeOrderStatus(context.Background(), req)
	s.assertNothingRecorded(result)
	s.Contains(result.Error, "motivo")

	req.Reason = null.StringFrom("Sin disponibilidad de equipo")
	result = s.Service.ChangeOrderStatus(context.Background(), req)
	s.Require().True(result.Success, result.Error)
	s.Equal("Sin disponibilidad de equipo", result.StateChange.Reason.String)
	s.Require().Len(result.Notifications, 1)
	s.Contains(result.Notifications[0].Message, "Sin disponibilidad de equipo")
}

func (s *OrderStatusTestSuite) TestUnauthenticated() {
	result := s.Service.ChangeOrderStatus(context.Background(),
		s.request(workflow.StatusPending, workflow.StatusApproved, nil))
	s.assertNothingRecorded(result)
	s.Equal(apperrors.ErrNotAuthenticated.Error(), result.Error)

	result = s.Service.ChangeOrderStatus(context.Background(),
		s.request(workflow.StatusPending, workflow.StatusApproved, &entities.User{Role: "Gerente Operativo"}))
	s.assertNothingRecorded(result)
}

func (s *OrderStatusTestSuite) TestInvalidRequest() {
	req := s.request(workflow.StatusPending, "archived", operationsManager())
	req.OrderNumber = ""

	result := s.Service.ChangeOrderStatus(context.Background(), req)
	s.assertNothingRecorded(result)
	s.Len(result.Errors, 2)
}

func (s *OrderStatusTestSuite) TestPermissionGate() {
	// явный список прав важнее роли
	noRights := &entities.User{ID: "u-ops", Role: "Gerente Operativo", Permissions: []string{authz.OrdersView}}
	result := s.Service.ChangeOrderStatus(context.Background(),
		s.request(workflow.StatusPending, workflow.StatusApproved, noRights))
	s.assertNothingRecorded(result)
	s.Equal(apperrors.ErrForbidden.Error(), result.Error)

	wildcard := &entities.User{ID: "u-ops", Role: "Gerente Operativo", Permissions: []string{authz.Wildcard}}
	result = s.Service.ChangeOrderStatus(context.Background(),
		s.request(workflow.StatusPending, workflow.StatusApproved, wildcard))
	s.True(result.Success, result.Error)
}

func (s *OrderStatusTestSuite) TestUnmappedRoleFailsLoudly() {
	result := s.Service.ChangeOrderStatus(context.Background(),
		s.request(workflow.StatusPending, workflow.StatusApproved, &entities.User{ID: "u-x", Role: "Becario"}))
	s.assertNothingRecorded(result)
	s.Contains(result.Error, "Becario")
}

func (s *OrderStatusTestSuite) TestTemplateFailureRecordsNothing() {
	strict := NewPlaceholderEngine(map[string]NotificationTemplate{
		TemplateApproval: {Title: "{orderNumber}", Message: "Cirugía en {hospital}"},
	}, MissingReject)
	svc := s.newService(strict, workflow.DefaultValidator())

	result := svc.ChangeOrderStatus(context.Background(),
		s.request(workflow.StatusPending, workflow.StatusApproved, operationsManager()))

	s.assertNothingRecorded(result)
	s.Contains(result.Error, "hospital")
}

func (s *OrderStatusTestSuite) TestUnknownTemplateRecordsNothing() {
	empty := NewPlaceholderEngine(map[string]NotificationTemplate{}, MissingLeaveLiteral)
	svc := s.newService(empty, workflow.DefaultValidator())

	result := svc.ChangeOrderStatus(context.Background(),
		s.request(workflow.StatusPending, workflow.StatusApproved, operationsManager()))

	s.assertNothingRecorded(result)
}

func (s *OrderStatusTestSuite) TestReopenWithoutAutoNotifications() {
	req := s.request(workflow.StatusRejected, workflow.StatusPending, operationsManager())
	req.Reason = null.StringFrom("El cliente confirmó nueva fecha")

	result := s.Service.ChangeOrderStatus(context.Background(), req)
	s.Require().True(result.Success, result.Error)
	s.NotNil(result.Notifications)
	s.Empty(result.Notifications)
}

func (s *OrderStatusTestSuite) TestWarningsAreReturned() {
	finance := &entities.User{ID: "u-fin", Role: "Finanzas"}
	result := s.Service.ChangeOrderStatus(context.Background(),
		s.request(workflow.StatusCompleted, workflow.StatusBilled, finance))

	s.Require().True(result.Success, result.Error)
	s.Len(result.Warnings, 2)
}

func (s *OrderStatusTestSuite) TestHistoryFailureRecordsNothingElse() {
	first := s.Service.ChangeOrderStatus(context.Background(),
		s.request(workflow.StatusPending, workflow.StatusApproved, operationsManager()))
	s.Require().True(first.Success)

	broken := NewOrderStatusService(
		workflow.DefaultValidator(),
		authz.NewGatekeeper(zap.NewNop()),
		validation.New(),
		failingHistory{},
		NewNotificationService(NewPlaceholderEngine(DefaultNotificationTemplates(), MissingLeaveLiteral), nil, zap.NewNop()),
		s.Audit,
		s.Bus,
		s.Metrics,
		zap.NewNop(),
	)
	result := broken.ChangeOrderStatus(context.Background(),
		s.request(workflow.StatusApproved, workflow.StatusInPreparation, operationsManager()))

	s.False(result.Success)
	s.Empty(result.Notifications)
	s.Equal(1, s.Audit.Len())
	s.Bus.Wait()
	s.Len(s.Published, 1)

	// уведомления сгенерированы, но переход не зафиксирован: счетчик не растет
	s.Equal(1, testutil.CollectAndCount(s.Metrics.NotificationsGeneratedTotal))
	s.Zero(testutil.ToFloat64(s.Metrics.NotificationsGeneratedTotal.WithLabelValues(TemplatePreparation, "JEFE_ALMACEN")))
	s.Equal(1.0, testutil.ToFloat64(s.Metrics.TransitionsTotal.WithLabelValues("approved", "in_preparation", resultFailed)))
}

func (s *OrderStatusTestSuite) TestMetricLabelsStayBounded() {
	for _, to := range []string{"archived", "ARCHIVED-2", "x' OR 1=1"} {
		req := s.request(workflow.StatusPending, workflow.Status(to), operationsManager())
		req.FromStatus = "legacy_" + to
		s.assertNothingRecorded(s.Service.ChangeOrderStatus(context.Background(), req))
	}

	s.Equal(1, testutil.CollectAndCount(s.Metrics.TransitionsTotal))
	s.Equal(3.0, testutil.ToFloat64(s.Metrics.TransitionsTotal.WithLabelValues(metricUnknown, metricUnknown, resultInvalid)))
}

func (s *OrderStatusTestSuite) TestGetAvailableTransitions() {
	got, err := s.Service.GetAvailableTransitions(context.Background(), "pending", operationsManager())
	s.Require().NoError(err)
	s.Require().Len(got, 2)
	s.Equal("approved", got[0].ToStatus)
	s.Equal("Aprobada", got[0].Label)
	s.Equal("rejected", got[1].ToStatus)
	s.True(got[1].RequiresReason)

	_, err = s.Service.GetAvailableTransitions(context.Background(), "pending", nil)
	s.ErrorIs(err, apperrors.ErrNotAuthenticated)

	_, err = s.Service.GetAvailableTransitions(context.Background(), "archived", operationsManager())
	var invalid *apperrors.InvalidInputError
	s.True(errors.As(err, &invalid))

	viewer := &entities.User{ID: "u", Role: "Gerente Operativo", Permissions: []string{authz.OrdersView}}
	got, err = s.Service.GetAvailableTransitions(context.Background(), "pending", viewer)
	s.NoError(err)
	s.Empty(got)
}

func TestOrderStatusSuite(t *testing.T) {
	suite.Run(t, new(OrderStatusTestSuite))
}

type failingHistory struct{}

func (failingHistory) Create(context.Context, entities.StateChangeHistory) error {
	return errors.New("storage unavailable")
}

func (failingHistory) FindByOrderID(context.Context, string, int, int) ([]entities.StateChangeHistory, error) {
	return nil, nil
}

func (failingHistory) CountByOrderID(context.Context, string) (int, error) { return 0, nil }

func TestApplyStatusChange(t *testing.T) {
	changedAt := time.Date(2026, 5, 4, 9, 30, 0, 0, time.UTC)
	order := &entities.Order{ID: "o1", Number: "ORD-1", Status: "pending"}
	change := &entities.StateChangeHistory{ID: "h1", OrderID: "o1", FromStatus: "pending", ToStatus: "approved", ChangedAt: changedAt}

	require.NoError(t, ApplyStatusChange(order, change))
	assert.Equal(t, "approved", order.Status)
	require.NotNil(t, order.UpdatedAt)
	assert.Equal(t, changedAt, *order.UpdatedAt)

	// повторное применение: заявка уже не в исходном статусе
	assert.Error(t, ApplyStatusChange(order, change))

	other := &entities.Order{ID: "o2", Status: "pending"}
	assert.Error(t, ApplyStatusChange(other, change))
	assert.ErrorIs(t, ApplyStatusChange(nil, change), apperrors.ErrBadRequest)
}
