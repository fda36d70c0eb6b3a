// Файл: internal/services/order_status_service.go
package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"rental-workflow/internal/authz"
	"rental-workflow/internal/dto"
	"rental-workflow/internal/entities"
	"rental-workflow/internal/events"
	"rental-workflow/internal/metrics"
	"rental-workflow/internal/repositories"
	"rental-workflow/internal/statuses"
	"rental-workflow/internal/workflow"
	apperrors "rental-workflow/pkg/errors"
	"rental-workflow/pkg/eventbus"
	"rental-workflow/pkg/validation"
)

// Результаты для метрики order_status_transitions_total
const (
	resultSuccess         = "success"
	resultUnauthenticated = "unauthenticated"
	resultInvalid         = "invalid"
	resultForbidden       = "forbidden"
	resultRejected        = "rejected"
	resultFailed          = "failed"

	metricUnknown = "unknown"
)

type OrderStatusServiceInterface interface {
	ChangeOrderStatus(ctx context.Context, req dto.ChangeOrderStatusDTO) dto.StatusChangeResult
	GetAvailableTransitions(ctx context.Context, fromStatus string, actor *entities.User) ([]dto.AvailableTransitionDTO, error)
}

type OrderStatusService struct {
	validator     *workflow.Validator
	gatekeeper    *authz.Gatekeeper
	dtoValidator  *validation.CustomValidator
	historyRepo   repositories.OrderHistoryRepositoryInterface
	notifications NotificationServiceInterface
	audit         AuditServiceInterface
	bus           *eventbus.Bus
	metrics       *metrics.WorkflowMetrics
	logger        *zap.Logger
	now           func() time.Time
}

// NewOrderStatusService - bus может быть nil, тогда событие о переходе не публикуется.
func NewOrderStatusService(
	validator *workflow.Validator,
	gatekeeper *authz.Gatekeeper,
	dtoValidator *validation.CustomValidator,
	historyRepo repositories.OrderHistoryRepositoryInterface,
	notifications NotificationServiceInterface,
	audit AuditServiceInterface,
	bus *eventbus.Bus,
	metrics *metrics.WorkflowMetrics,
	logger *zap.Logger,
) *OrderStatusService {
	return &OrderStatusService{
		validator:     validator,
		gatekeeper:    gatekeeper,
		dtoValidator:  dtoValidator,
		historyRepo:   historyRepo,
		notifications: notifications,
		audit:         audit,
		bus:           bus,
		metrics:       metrics,
		logger:        logger,
		now:           time.Now,
	}
}

// ChangeOrderStatus проводит заявку через переход. Либо записывается все
// (история, аудит, уведомления), либо ничего: при Success=false побочных
// эффектов нет.
func (s *OrderStatusService) ChangeOrderStatus(ctx context.Context, req dto.ChangeOrderStatusDTO) dto.StatusChangeResult {
	logger := s.logger.With(
		zap.String("orderID", req.OrderID),
		zap.String("from", req.FromStatus),
		zap.String("to", req.ToStatus),
	)

	// Шаг 0: кто меняет и имеет ли право
	if req.Actor == nil || strings.TrimSpace(req.Actor.ID) == "" {
		s.count(req, resultUnauthenticated)
		return failure(apperrors.ErrNotAuthenticated.Error())
	}
	actor := *req.Actor

	if err := s.dtoValidator.Validate(req); err != nil {
		s.count(req, resultInvalid)
		return failure(validation.Messages(err)...)
	}

	role, err := authz.ParseRole(actor.Role)
	if err != nil {
		logger.Warn("Роль пользователя не распознана", zap.String("userID", actor.ID), zap.Error(err))
		s.count(req, resultForbidden)
		return failure(err.Error())
	}
	if !s.gatekeeper.Can(role, actor.Permissions, authz.OrdersChangeStatus) {
		s.count(req, resultForbidden)
		return failure(apperrors.ErrForbidden.Error())
	}

	// DTO уже проверен правилом wf_status, ошибок тут быть не может
	from, _ := workflow.ParseStatus(req.FromStatus)
	to, _ := workflow.ParseStatus(req.ToStatus)

	// Шаг 1-2: правила перехода. Согласование подтверждает вызывающая сторона.
	hasReason := req.Reason.Valid && strings.TrimSpace(req.Reason.String) != ""
	check := s.validator.ValidateStateTransition(from, to, role, true, hasReason)
	warnings := warningMessages(check.Warnings)
	if !check.IsValid {
		s.count(req, resultRejected)
		result := failure(check.ErrorMessages()...)
		result.Warnings = warnings
		logger.Info("Переход отклонен", zap.Strings("errors", result.Errors))
		return result
	}

	// Шаг 3: запись истории
	changedAt := s.now()
	history := entities.StateChangeHistory{
		ID:            uuid.NewString(),
		OrderID:       req.OrderID,
		OrderNumber:   req.OrderNumber,
		FromStatus:    from.String(),
		ToStatus:      to.String(),
		ChangedBy:     actor.ID,
		ChangedByName: actor.Name,
		ChangedByRole: role.String(),
		ChangedAt:     changedAt,
		Reason:        req.Reason,
		Notes:         req.Notes,
		Metadata:      req.Metadata,
	}

	// Шаг 4: уведомления генерируются до записи, чтобы сбой шаблона ничего не оставил
	notifications := []entities.Notification{}
	if t, ok := s.validator.Find(from, to); ok && t.AutoNotifications {
		notifications, err = s.notifications.NotifyTransition(ctx, from, to, req.OrderID, req.OrderNumber, templateVars(req, actor))
		if err != nil {
			s.count(req, resultFailed)
			logger.Error("Не удалось сгенерировать уведомления, переход не записан", zap.Error(err))
			return failure(err.Error())
		}
	}

	// Шаг 5: фиксация
	if err := s.historyRepo.Create(ctx, history); err != nil {
		s.count(req, resultFailed)
		logger.Error("Не удалось сохранить историю перехода", zap.Error(err))
		return failure(err.Error())
	}

	s.audit.RecordStatusChange(ctx, actor, StatusChangeAudit{
		OrderID:      req.OrderID,
		OrderNumber:  req.OrderNumber,
		CustomerName: req.CustomerName,
		OldStatus:    from.String(),
		NewStatus:    to.String(),
		Reason:       req.Reason,
	})
	s.count(req, resultSuccess)
	s.countNotifications(notifications)

	if s.bus != nil {
		s.bus.Publish(ctx, events.OrderStatusChangedEvent{
			History:       history,
			Notifications: notifications,
			Actor:         actor,
		})
	}

	logger.Info("Статус заявки изменен",
		zap.String("historyID", history.ID),
		zap.String("actor", actor.ID),
		zap.Int("notifications", len(notifications)),
	)

	// Шаг 6
	return dto.StatusChangeResult{
		Success:       true,
		StateChange:   &history,
		Notifications: notifications,
		Warnings:      warnings,
	}
}

// GetAvailableTransitions - переходы, которые можно предложить пользователю в UI.
func (s *OrderStatusService) GetAvailableTransitions(ctx context.Context, fromStatus string, actor *entities.User) ([]dto.AvailableTransitionDTO, error) {
	if actor == nil || actor.ID == "" {
		return nil, apperrors.ErrNotAuthenticated
	}
	role, err := authz.ParseRole(actor.Role)
	if err != nil {
		return nil, err
	}
	if !s.gatekeeper.Can(role, actor.Permissions, authz.OrdersChangeStatus) {
		return []dto.AvailableTransitionDTO{}, nil
	}
	from, err := workflow.ParseStatus(fromStatus)
	if err != nil {
		return nil, err
	}

	out := []dto.AvailableTransitionDTO{}
	for _, t := range s.validator.GetAvailableTransitions(from, role) {
		out = append(out, dto.AvailableTransitionDTO{
			ToStatus:         t.To.String(),
			Label:            statuses.Label(t.To.String()),
			Class:            statuses.Class(t.To.String()),
			RequiresReason:   t.RequiresReason,
			RequiresApproval: t.RequiresApproval,
			NextSteps:        t.NextSteps,
		})
	}
	return out, nil
}

// ApplyStatusChange переносит успешный переход на сущность заявки.
// Заявка должна быть та же и в том же статусе, что и в записи истории.
func ApplyStatusChange(order *entities.Order, change *entities.StateChangeHistory) error {
	if order == nil || change == nil {
		return apperrors.ErrBadRequest
	}
	if order.ID != change.OrderID {
		return apperrors.NewInvalidInputError("el cambio %s no pertenece a la orden %s", change.ID, order.ID)
	}
	if order.Status != change.FromStatus {
		return apperrors.NewInvalidInputError("la orden %s está en «%s», no en «%s»",
			order.Number, statuses.Label(order.Status), statuses.Label(change.FromStatus))
	}

	changedAt := change.ChangedAt
	order.Status = change.ToStatus
	order.UpdatedAt = &changedAt
	return nil
}

func (s *OrderStatusService) count(req dto.ChangeOrderStatusDTO, result string) {
	s.metrics.TransitionsTotal.WithLabelValues(statusLabel(req.FromStatus), statusLabel(req.ToStatus), result).Inc()
}

// countNotifications вызывается только после фиксации перехода.
func (s *OrderStatusService) countNotifications(notifications []entities.Notification) {
	for _, n := range notifications {
		role := metricUnknown
		if r, err := authz.ParseRole(n.RecipientRole); err == nil {
			role = r.Code()
		}
		s.metrics.NotificationsGeneratedTotal.WithLabelValues(n.Type, role).Inc()
	}
}

// statusLabel - метка метрики только из закрытого набора статусов.
func statusLabel(raw string) string {
	st, err := workflow.ParseStatus(raw)
	if err != nil {
		return metricUnknown
	}
	return st.String()
}

func failure(messages ...string) dto.StatusChangeResult {
	return dto.StatusChangeResult{
		Success:       false,
		Notifications: []entities.Notification{},
		Error:         strings.Join(messages, "; "),
		Errors:        messages,
	}
}

func warningMessages(warnings []workflow.Warning) []string {
	if len(warnings) == 0 {
		return nil
	}
	out := make([]string, 0, len(warnings))
	for _, w := range warnings {
		out = append(out, w.Message)
	}
	return out
}

// templateVars - переменные для шаблонов. Значения из запроса не перекрывают
// данные самой заявки.
func templateVars(req dto.ChangeOrderStatusDTO, actor entities.User) map[string]string {
	vars := make(map[string]string, len(req.Variables)+8)
	for k, v := range req.Variables {
		vars[k] = v
	}

	changedBy := actor.Name
	if changedBy == "" {
		changedBy = actor.ID
	}
	vars["orderNumber"] = req.OrderNumber
	vars["orderId"] = req.OrderID
	vars["customerName"] = req.CustomerName
	vars["fromStatus"] = statuses.Label(req.FromStatus)
	vars["toStatus"] = statuses.Label(req.ToStatus)
	vars["changedBy"] = changedBy
	if req.Reason.Valid {
		vars["reason"] = req.Reason.String
	}
	if req.Notes.Valid {
		vars["notes"] = req.Notes.String
	}
	return vars
}
