package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/aarondl/null/v8"
	"go.uber.org/zap"

	"rental-workflow/internal/authz"
	"rental-workflow/internal/dto"
	"rental-workflow/internal/entities"
	"rental-workflow/internal/metrics"
	"rental-workflow/internal/statuses"
	apperrors "rental-workflow/pkg/errors"
	"rental-workflow/pkg/validation"
)

type OrderActionServiceInterface interface {
	ExecuteAction(ctx context.Context, req dto.ExecuteActionDTO) (dto.ActionResult, error)
	AvailableActions(status, role string) ([]authz.Action, error)
}

// OrderActionService - сценарий "действие над заявкой" по матрице разрешений.
// Журнал аудита общий с оркестратором переходов.
type OrderActionService struct {
	gatekeeper   *authz.Gatekeeper
	dtoValidator *validation.CustomValidator
	audit        AuditServiceInterface
	metrics      *metrics.WorkflowMetrics
	logger       *zap.Logger
}

func NewOrderActionService(
	gatekeeper *authz.Gatekeeper,
	dtoValidator *validation.CustomValidator,
	audit AuditServiceInterface,
	metrics *metrics.WorkflowMetrics,
	logger *zap.Logger,
) *OrderActionService {
	return &OrderActionService{
		gatekeeper:   gatekeeper,
		dtoValidator: dtoValidator,
		audit:        audit,
		metrics:      metrics,
		logger:       logger,
	}
}

func (s *OrderActionService) AvailableActions(status, role string) ([]authz.Action, error) {
	st, err := authz.ParseActionStatus(status)
	if err != nil {
		return nil, err
	}
	r, err := authz.ParseActionRole(role)
	if err != nil {
		return nil, err
	}
	return authz.AvailableActions(st, r), nil
}

func (s *OrderActionService) ExecuteAction(ctx context.Context, req dto.ExecuteActionDTO) (dto.ActionResult, error) {
	if req.Actor == nil || strings.TrimSpace(req.Actor.ID) == "" {
		s.count(req.Action, resultUnauthenticated)
		return dto.ActionResult{}, apperrors.ErrNotAuthenticated
	}
	actor := *req.Actor

	if err := s.dtoValidator.Validate(req); err != nil {
		s.count(req.Action, resultInvalid)
		return dto.ActionResult{}, apperrors.NewInvalidInputError("%s", strings.Join(validation.Messages(err), "; "))
	}

	// Общее право на действия проверяется по организационной роли пользователя
	orgRole, err := authz.ParseRole(actor.Role)
	if err != nil {
		s.count(req.Action, resultForbidden)
		return dto.ActionResult{}, err
	}
	if !s.gatekeeper.Can(orgRole, actor.Permissions, authz.OrdersActions) {
		s.count(req.Action, resultForbidden)
		return dto.ActionResult{}, apperrors.ErrForbidden
	}

	status, err := authz.ParseActionStatus(req.Status)
	if err != nil {
		s.count(req.Action, resultInvalid)
		return dto.ActionResult{}, err
	}
	role, err := authz.ParseActionRole(req.ActorRole)
	if err != nil {
		s.count(req.Action, resultInvalid)
		return dto.ActionResult{}, err
	}
	action, err := authz.ParseAction(req.Action)
	if err != nil {
		s.count(req.Action, resultInvalid)
		return dto.ActionResult{}, err
	}

	if !authz.IsActionAllowed(status, role, action) {
		s.count(string(action), resultRejected)
		s.logger.Info("Действие не разрешено матрицей",
			zap.String("orderID", req.OrderID),
			zap.String("status", string(status)),
			zap.String("role", string(role)),
			zap.String("action", string(action)),
		)
		return dto.ActionResult{}, fmt.Errorf("%w: %s en %s para %s", apperrors.ErrActionNotAllowed, action, status, role)
	}
	next, _ := authz.ResultingStatus(status, role)

	details := fmt.Sprintf("Acción %s: «%s» → «%s»", action, statuses.Label(string(status)), statuses.Label(string(next)))
	if req.Notes.Valid && req.Notes.String != "" {
		details += ". Notas: " + req.Notes.String
	}

	entry := s.audit.Record(ctx, entities.AuditLogEntry{
		UserID:     actor.ID,
		UserRole:   string(role),
		Action:     entities.AuditActionOrderAction,
		EntityType: entities.AuditEntityOrder,
		EntityID:   req.OrderID,
		OldValue:   null.StringFrom(string(status)),
		NewValue:   null.StringFrom(string(next)),
		Details:    details,
	})
	s.count(string(action), resultSuccess)

	return dto.ActionResult{
		Action:     string(action),
		FromStatus: string(status),
		ToStatus:   string(next),
		AuditEntry: entry,
	}, nil
}

func (s *OrderActionService) count(raw, result string) {
	label := metricUnknown
	if action, err := authz.ParseAction(raw); err == nil {
		label = string(action)
	}
	s.metrics.ActionsTotal.WithLabelValues(label, result).Inc()
}
