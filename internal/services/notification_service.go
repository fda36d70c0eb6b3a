// Файл: internal/services/notification_service.go
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/aarondl/null/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"rental-workflow/internal/authz"
	"rental-workflow/internal/entities"
	"rental-workflow/internal/workflow"
)

// NotificationPlan - кому и по какому шаблону сообщить о переходе.
type NotificationPlan struct {
	Role     authz.Role
	Template string
}

type notificationRule struct {
	from, to workflow.Status
	plans    []NotificationPlan
}

// Таблица решений: порядок строк = порядок уведомлений в результате.
var notificationRules = []notificationRule{
	{workflow.StatusPending, workflow.StatusApproved, []NotificationPlan{
		{authz.RoleAccountManager, TemplateApproval},
	}},
	{workflow.StatusPending, workflow.StatusRejected, []NotificationPlan{
		{authz.RoleAccountManager, TemplateRejection},
	}},
	{workflow.StatusApproved, workflow.StatusRejected, []NotificationPlan{
		{authz.RoleAccountManager, TemplateRejection},
	}},
	{workflow.StatusApproved, workflow.StatusInPreparation, []NotificationPlan{
		{authz.RoleWarehouseLead, TemplatePreparation},
	}},
	{workflow.StatusInPreparation, workflow.StatusInTransit, []NotificationPlan{
		{authz.RoleAccountManager, TemplateDispatch},
	}},
	{workflow.StatusInTransit, workflow.StatusCompleted, []NotificationPlan{
		{authz.RoleAccountManager, TemplateCompletion},
		{authz.RoleFinance, TemplateBillingRequired},
	}},
	{workflow.StatusCompleted, workflow.StatusBilled, []NotificationPlan{
		{authz.RoleAccountManager, TemplateBilled},
	}},
	{workflow.StatusRejected, workflow.StatusPending, []NotificationPlan{
		{authz.RoleOperationsManager, TemplateReopened},
	}},
}

// PlanNotifications - план уведомлений для перехода. Любой переход в in_transit
// дополнительно уведомляет техника о назначении.
func PlanNotifications(from, to workflow.Status) []NotificationPlan {
	plans := []NotificationPlan{}
	for _, r := range notificationRules {
		if r.from == from && r.to == to {
			plans = append(plans, r.plans...)
		}
	}
	if to == workflow.StatusInTransit {
		plans = append(plans, NotificationPlan{Role: authz.RoleTechnician, Template: TemplateAssignment})
	}
	return plans
}

// RecipientDirectory определяет конкретных получателей для роли.
type RecipientDirectory interface {
	Resolve(ctx context.Context, role authz.Role) ([]string, error)
}

// RolePoolDirectory - один общий получатель на роль ("pool:GERENTE_COMERCIAL").
// Подходит, пока нет справочника пользователей.
type RolePoolDirectory struct{}

func (RolePoolDirectory) Resolve(_ context.Context, role authz.Role) ([]string, error) {
	return []string{"pool:" + role.Code()}, nil
}

type NotificationServiceInterface interface {
	Generate(orderID, orderNumber, templateKey, recipientID string, recipientRole authz.Role, vars map[string]string) (entities.Notification, error)
	NotifyTransition(ctx context.Context, from, to workflow.Status, orderID, orderNumber string, vars map[string]string) ([]entities.Notification, error)
}

type NotificationService struct {
	engine    TemplateEngine
	directory RecipientDirectory
	logger    *zap.Logger
	now       func() time.Time
}

func NewNotificationService(
	engine TemplateEngine,
	directory RecipientDirectory,
	logger *zap.Logger,
) *NotificationService {
	if directory == nil {
		directory = RolePoolDirectory{}
	}
	return &NotificationService{
		engine:    engine,
		directory: directory,
		logger:    logger,
		now:       time.Now,
	}
}

// Generate рендерит один шаблон для одного получателя. orderNumber доступен
// шаблону всегда, даже если его нет в vars.
func (s *NotificationService) Generate(orderID, orderNumber, templateKey, recipientID string, recipientRole authz.Role, vars map[string]string) (entities.Notification, error) {
	merged := make(map[string]string, len(vars)+1)
	for k, v := range vars {
		merged[k] = v
	}
	merged["orderNumber"] = orderNumber

	rendered, err := s.engine.Render(templateKey, merged)
	if err != nil {
		return entities.Notification{}, err
	}

	n := entities.Notification{
		ID:            uuid.NewString(),
		OrderID:       orderID,
		OrderNumber:   orderNumber,
		Type:          templateKey,
		Title:         rendered.Title,
		Message:       rendered.Message,
		RecipientID:   recipientID,
		RecipientRole: recipientRole.String(),
		SentAt:        s.now(),
		Read:          false,
		Priority:      rendered.Priority,
	}
	if rendered.Link != "" {
		n.Link = null.StringFrom(rendered.Link)
	}
	return n, nil
}

// NotifyTransition строит все уведомления перехода. Первая же ошибка отменяет весь
// набор: частично сгенерированные уведомления не возвращаются.
func (s *NotificationService) NotifyTransition(ctx context.Context, from, to workflow.Status, orderID, orderNumber string, vars map[string]string) ([]entities.Notification, error) {
	notifications := []entities.Notification{}

	for _, plan := range PlanNotifications(from, to) {
		recipients, err := s.directory.Resolve(ctx, plan.Role)
		if err != nil {
			return nil, fmt.Errorf("no se pudieron resolver los destinatarios de %s: %w", plan.Role, err)
		}
		for _, recipientID := range recipients {
			n, err := s.Generate(orderID, orderNumber, plan.Template, recipientID, plan.Role, vars)
			if err != nil {
				s.logger.Warn("Не удалось сгенерировать уведомление",
					zap.String("orderNumber", orderNumber),
					zap.String("template", plan.Template),
					zap.Error(err),
				)
				return nil, err
			}
			notifications = append(notifications, n)
		}
	}

	return notifications, nil
}
