package validation

import (
	"github.com/go-playground/validator/v10"

	"rental-workflow/internal/workflow"
)

// registerRules регистрирует теги, которые мы используем в struct tags
func registerRules(v *validator.Validate) error {
	if err := v.RegisterValidation("wf_status", isWorkflowStatus); err != nil {
		return err
	}
	return nil
}

// isWorkflowStatus - значение из операционной схемы (pending, approved, ...)
func isWorkflowStatus(fl validator.FieldLevel) bool {
	_, err := workflow.ParseStatus(fl.Field().String())
	return err == nil
}
