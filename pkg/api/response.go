package api

import (
	"github.com/labstack/echo/v4"
)

type Response[T any] struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Body    T      `json:"body,omitempty"`
}

// SuccessOne - для возврата одного объекта
func SuccessOne[T any](c echo.Context, code int, message string, data T) error {
	return c.JSON(code, Response[T]{
		Status:  true,
		Message: message,
		Body:    data,
	})
}

// Failure - ответ с телом, но status=false (например, отчет с найденными конфликтами).
func Failure[T any](c echo.Context, code int, message string, data T) error {
	return c.JSON(code, Response[T]{
		Status:  false,
		Message: message,
		Body:    data,
	})
}

// ErrorResponse - только текст ошибки, без технических деталей.
func ErrorResponse(c echo.Context, code int, err error) error {
	return c.JSON(code, Response[any]{
		Status:  false,
		Message: err.Error(),
	})
}
