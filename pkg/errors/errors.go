package errors

import "fmt"

var (
	// Авторизация
	ErrNotAuthenticated = fmt.Errorf("usuario no autenticado")
	ErrForbidden        = fmt.Errorf("acceso denegado")

	// Переходы и действия
	ErrActionNotAllowed = fmt.Errorf("acción no permitida para el estado y rol actuales")
	ErrUnknownStatus    = fmt.Errorf("estado desconocido")

	// Уведомления
	ErrUnknownTemplate = fmt.Errorf("plantilla de notificación desconocida")

	// Аудит
	ErrUnsupportedExportFormat = fmt.Errorf("formato de exportación no soportado")

	// Общие
	ErrNotFound   = fmt.Errorf("registro no encontrado")
	ErrBadRequest = fmt.Errorf("solicitud inválida")
)

// Кастомные типы ошибок
type InvalidInputError struct {
	Message string
}

func (e *InvalidInputError) Error() string { return e.Message }

func NewInvalidInputError(format string, args ...interface{}) error {
	return &InvalidInputError{Message: fmt.Sprintf(format, args...)}
}

// UnmappedRoleError - строка роли не соответствует ни одной известной роли.
// Вместо тихого значения по умолчанию вызывающий получает эту ошибку.
type UnmappedRoleError struct {
	Raw    string
	Scheme string
}

func (e *UnmappedRoleError) Error() string {
	return fmt.Sprintf("rol no mapeado (%s): %q", e.Scheme, e.Raw)
}

// MissingVariableError - в шаблоне остался плейсхолдер без значения.
type MissingVariableError struct {
	Template string
	Variable string
}

func (e *MissingVariableError) Error() string {
	return fmt.Sprintf("plantilla %q: falta la variable {%s}", e.Template, e.Variable)
}
