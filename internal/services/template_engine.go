// Файл: internal/services/template_engine.go
package services

import (
	"fmt"
	"io"
	"strings"

	"github.com/valyala/fasttemplate"

	"rental-workflow/internal/entities"
	apperrors "rental-workflow/pkg/errors"
)

// MissingVariablePolicy - что делать с плейсхолдером, для которого нет значения.
type MissingVariablePolicy int

const (
	// MissingLeaveLiteral оставляет `{name}` в тексте как есть.
	MissingLeaveLiteral MissingVariablePolicy = iota
	// MissingReject возвращает *MissingVariableError.
	MissingReject
)

// NotificationTemplate - исходный текст шаблона с плейсхолдерами `{name}`.
type NotificationTemplate struct {
	Title    string
	Message  string
	Link     string
	Priority entities.NotificationPriority
}

// Rendered - шаблон после подстановки переменных.
type Rendered struct {
	Title    string
	Message  string
	Link     string
	Priority entities.NotificationPriority
}

// TemplateEngine - все, что нужно генератору уведомлений от шаблонизатора.
type TemplateEngine interface {
	Render(key string, vars map[string]string) (Rendered, error)
}

// PlaceholderEngine подставляет `{name}` через fasttemplate.
// Политика отсутствующих переменных выбирается один раз при создании.
type PlaceholderEngine struct {
	templates map[string]NotificationTemplate
	policy    MissingVariablePolicy
}

func NewPlaceholderEngine(templates map[string]NotificationTemplate, policy MissingVariablePolicy) *PlaceholderEngine {
	copied := make(map[string]NotificationTemplate, len(templates))
	for k, v := range templates {
		copied[k] = v
	}
	return &PlaceholderEngine{templates: copied, policy: policy}
}

func (e *PlaceholderEngine) Render(key string, vars map[string]string) (Rendered, error) {
	tpl, ok := e.templates[key]
	if !ok {
		return Rendered{}, fmt.Errorf("%w: %s", apperrors.ErrUnknownTemplate, key)
	}

	title, err := e.renderText(key, tpl.Title, vars)
	if err != nil {
		return Rendered{}, err
	}
	message, err := e.renderText(key, tpl.Message, vars)
	if err != nil {
		return Rendered{}, err
	}
	link, err := e.renderText(key, tpl.Link, vars)
	if err != nil {
		return Rendered{}, err
	}

	return Rendered{Title: title, Message: message, Link: link, Priority: tpl.Priority}, nil
}

func (e *PlaceholderEngine) renderText(key, text string, vars map[string]string) (string, error) {
	if text == "" {
		return "", nil
	}
	t, err := fasttemplate.NewTemplate(text, "{", "}")
	if err != nil {
		return "", fmt.Errorf("plantilla %q mal formada: %w", key, err)
	}

	var sb strings.Builder
	_, err = t.ExecuteFunc(&sb, func(w io.Writer, tag string) (int, error) {
		if v, ok := vars[tag]; ok {
			return w.Write([]byte(v))
		}
		if e.policy == MissingReject {
			return 0, &apperrors.MissingVariableError{Template: key, Variable: tag}
		}
		return w.Write([]byte("{" + tag + "}"))
	})
	if err != nil {
		return "", err
	}
	return sb.String(), nil
}

// Ключи шаблонов уведомлений
const (
	TemplateApproval        = "approval"
	TemplateRejection       = "rejection"
	TemplatePreparation     = "preparation"
	TemplateDispatch        = "dispatch"
	TemplateAssignment      = "assignment"
	TemplateCompletion      = "completion"
	TemplateBillingRequired = "billing_required"
	TemplateBilled          = "billed"
	TemplateReopened        = "reopened"
)

// DefaultNotificationTemplates - тексты по умолчанию. Переменные, которые
// оркестратор передает всегда: orderNumber, orderId, customerName, fromStatus,
// toStatus, changedBy. reason и notes - только если они заданы.
func DefaultNotificationTemplates() map[string]NotificationTemplate {
	return map[string]NotificationTemplate{
		TemplateApproval: {
			Title:    "Orden {orderNumber} aprobada",
			Message:  "La orden {orderNumber} de {customerName} fue aprobada por {changedBy}. Coordine la confirmación con el médico.",
			Link:     "/ordenes/{orderNumber}",
			Priority: entities.PriorityHigh,
		},
		TemplateRejection: {
			Title:    "Orden {orderNumber} rechazada",
			Message:  "La orden {orderNumber} de {customerName} fue rechazada. Motivo: {reason}",
			Link:     "/ordenes/{orderNumber}",
			Priority: entities.PriorityHigh,
		},
		TemplatePreparation: {
			Title:    "Preparar equipo: orden {orderNumber}",
			Message:  "La orden {orderNumber} pasó a «{toStatus}». Prepare y verifique el instrumental.",
			Link:     "/ordenes/{orderNumber}",
			Priority: entities.PriorityMedium,
		},
		TemplateDispatch: {
			Title:    "Orden {orderNumber} en tránsito",
			Message:  "El equipo de la orden {orderNumber} salió hacia el hospital.",
			Link:     "/ordenes/{orderNumber}",
			Priority: entities.PriorityMedium,
		},
		TemplateAssignment: {
			Title:    "Asignación: orden {orderNumber}",
			Message:  "Tiene asignada la recepción del equipo y la asistencia en cirugía de la orden {orderNumber}.",
			Link:     "/ordenes/{orderNumber}",
			Priority: entities.PriorityHigh,
		},
		TemplateCompletion: {
			Title:    "Orden {orderNumber} completada",
			Message:  "La orden {orderNumber} de {customerName} fue completada.",
			Link:     "/ordenes/{orderNumber}",
			Priority: entities.PriorityMedium,
		},
		TemplateBillingRequired: {
			Title:    "Facturación pendiente: orden {orderNumber}",
			Message:  "La orden {orderNumber} de {customerName} está lista para facturar.",
			Link:     "/ordenes/{orderNumber}",
			Priority: entities.PriorityHigh,
		},
		TemplateBilled: {
			Title:    "Orden {orderNumber} facturada",
			Message:  "La orden {orderNumber} fue facturada.",
			Link:     "/ordenes/{orderNumber}",
			Priority: entities.PriorityLow,
		},
		TemplateReopened: {
			Title:    "Orden {orderNumber} reabierta",
			Message:  "La orden {orderNumber} volvió a «{toStatus}». Motivo: {reason}",
			Link:     "/ordenes/{orderNumber}",
			Priority: entities.PriorityMedium,
		},
	}
}
