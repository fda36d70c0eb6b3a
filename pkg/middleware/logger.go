// pkg/middleware/logger.go

package middleware

import (
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// RequestLogger - мидлвэр: кладет логгер в контекст запроса и пишет строку
// о каждом обработанном запросе.
func RequestLogger(logger *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set("logger", logger)

			start := time.Now()
			err := next(c)
			if err != nil {
				// отдаем ошибку echo, чтобы статус ответа был уже выставлен
				c.Error(err)
			}

			logger.Debug("HTTP запрос",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Int("status", c.Response().Status),
				zap.Duration("latency", time.Since(start)),
			)
			return nil
		}
	}
}
