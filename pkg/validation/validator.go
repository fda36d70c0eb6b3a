package validation

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// CustomValidator - обертка над go-playground/validator с нашими правилами.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate проверяет структуру по тегам `validate`.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

// New создает и настраивает валидатор
func New() *CustomValidator {
	v := validator.New()

	// 1. Подключаем поддержку null-типов (из файла types_adapter.go)
	registerNullTypes(v)

	// 2. Регистрируем кастомные правила (из файла rules.go)
	// Если правило не зарегистрировалось - паникуем, сервис не должен стартовать
	if err := registerRules(v); err != nil {
		panic("ошибка регистрации валидаторов: " + err.Error())
	}

	return &CustomValidator{validator: v}
}

// Messages превращает ошибку валидации в список строк для ответа.
func Messages(err error) []string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		if err == nil {
			return nil
		}
		return []string{err.Error()}
	}

	out := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			out = append(out, fmt.Sprintf("El campo «%s» es obligatorio", fe.Field()))
		case "max":
			out = append(out, fmt.Sprintf("El campo «%s» supera la longitud máxima de %s", fe.Field(), fe.Param()))
		case "wf_status":
			out = append(out, fmt.Sprintf("El campo «%s» contiene un estado desconocido: %v", fe.Field(), fe.Value()))
		default:
			out = append(out, fmt.Sprintf("El campo «%s» no es válido (%s)", fe.Field(), fe.Tag()))
		}
	}
	return out
}
