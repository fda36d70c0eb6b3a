package workflow

import (
	"errors"
	"fmt"
	"strings"

	"rental-workflow/internal/authz"
	"rental-workflow/internal/statuses"
)

// Коды ошибок валидации перехода
const (
	CodeNoSuchTransition  = "NO_SUCH_TRANSITION"
	CodeRoleNotAuthorized = "ROLE_NOT_AUTHORIZED"
	CodeApprovalRequired  = "APPROVAL_REQUIRED"
	CodeReasonRequired    = "REASON_REQUIRED"
)

// Коды предупреждений
const (
	WarnNotesRecommended = "NOTES_RECOMMENDED"
	WarnTerminalStatus   = "TERMINAL_STATUS"
)

// TransitionError - одно невыполненное условие перехода. Текст уходит в UI как есть.
type TransitionError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *TransitionError) Error() string { return e.Message }

// Warning не блокирует переход.
type Warning struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationResult struct {
	IsValid          bool               `json:"isValid"`
	Errors           []*TransitionError `json:"errors"`
	Warnings         []Warning          `json:"warnings"`
	RequiresApproval bool               `json:"requiresApproval"`
	RequiresReason   bool               `json:"requiresReason"`
	AllowedRoles     []authz.Role       `json:"allowedRoles"`
	NextSteps        []string           `json:"nextSteps"`
}

// ErrorMessages - тексты ошибок в порядке проверки.
func (r ValidationResult) ErrorMessages() []string {
	out := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		out = append(out, e.Message)
	}
	return out
}

// Err собирает все ошибки в одну (errors.Join), nil если переход допустим.
func (r ValidationResult) Err() error {
	if len(r.Errors) == 0 {
		return nil
	}
	errs := make([]error, 0, len(r.Errors))
	for _, e := range r.Errors {
		errs = append(errs, e)
	}
	return errors.Join(errs...)
}

// Validator проверяет переходы по таблице. Таблица неизменяема после создания.
type Validator struct {
	table []Transition
}

func NewValidator(table []Transition) *Validator {
	return &Validator{table: cloneTransitions(table)}
}

var defaultValidator = NewValidator(transitionsTable)

// DefaultValidator - валидатор над таблицей переходов по умолчанию.
func DefaultValidator() *Validator {
	return defaultValidator
}

// Transitions - копия таблицы.
func (v *Validator) Transitions() []Transition {
	return cloneTransitions(v.table)
}

// Find ищет ребро from -> to.
func (v *Validator) Find(from, to Status) (Transition, bool) {
	for _, t := range v.table {
		if t.From == from && t.To == to {
			return cloneTransitions([]Transition{t})[0], true
		}
	}
	return Transition{}, false
}

// GetAvailableTransitions - ребра из статуса, доступные роли, в порядке таблицы.
func (v *Validator) GetAvailableTransitions(from Status, role authz.Role) []Transition {
	var out []Transition
	for _, t := range v.table {
		if t.From == from && t.Allows(role) {
			out = append(out, t)
		}
	}
	return cloneTransitions(out)
}

// ValidateStateTransition проверяет все условия сразу и копит ошибки,
// чтобы UI мог показать пользователю все сразу.
func (v *Validator) ValidateStateTransition(from, to Status, role authz.Role, hasApproval, hasReason bool) ValidationResult {
	result := ValidationResult{
		Errors:       []*TransitionError{},
		Warnings:     []Warning{},
		AllowedRoles: []authz.Role{},
		NextSteps:    []string{},
	}

	t, ok := v.Find(from, to)
	if !ok {
		result.Errors = append(result.Errors, &TransitionError{
			Code:    CodeNoSuchTransition,
			Message: fmt.Sprintf("No existe una transición de «%s» a «%s»", statuses.Label(string(from)), statuses.Label(string(to))),
		})
		return result
	}

	result.RequiresApproval = t.RequiresApproval
	result.RequiresReason = t.RequiresReason
	result.AllowedRoles = t.AllowedRoles
	result.NextSteps = t.NextSteps

	if !t.Allows(role) {
		result.Errors = append(result.Errors, &TransitionError{
			Code: CodeRoleNotAuthorized,
			Message: fmt.Sprintf("El rol «%s» no está autorizado para cambiar de «%s» a «%s». Roles permitidos: %s",
				role, statuses.Label(string(from)), statuses.Label(string(to)), joinRoles(t.AllowedRoles)),
		})
	}
	if t.RequiresApproval && !hasApproval {
		result.Errors = append(result.Errors, &TransitionError{
			Code:    CodeApprovalRequired,
			Message: "Esta transición requiere una aprobación previa",
		})
	}
	if t.RequiresReason && !hasReason {
		result.Errors = append(result.Errors, &TransitionError{
			Code:    CodeReasonRequired,
			Message: "Esta transición requiere indicar un motivo",
		})
	}

	if to.IsTerminal() {
		result.Warnings = append(result.Warnings, Warning{
			Code:    WarnTerminalStatus,
			Message: fmt.Sprintf("La orden quedará en el estado final «%s»", statuses.Label(string(to))),
		})
	}
	if !t.RequiresReason && !hasReason && (to == StatusCompleted || to == StatusBilled) {
		result.Warnings = append(result.Warnings, Warning{
			Code:    WarnNotesRecommended,
			Message: "Se recomienda agregar notas al cerrar la orden",
		})
	}

	result.IsValid = len(result.Errors) == 0
	return result
}

func joinRoles(roles []authz.Role) string {
	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = r.String()
	}
	return strings.Join(names, ", ")
}

// GetAvailableTransitions - по таблице по умолчанию.
func GetAvailableTransitions(from Status, role authz.Role) []Transition {
	return defaultValidator.GetAvailableTransitions(from, role)
}

// ValidateStateTransition - по таблице по умолчанию.
func ValidateStateTransition(from, to Status, role authz.Role, hasApproval, hasReason bool) ValidationResult {
	return defaultValidator.ValidateStateTransition(from, to, role, hasApproval, hasReason)
}
