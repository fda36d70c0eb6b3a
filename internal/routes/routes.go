package routes

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"rental-workflow/internal/controllers"
	"rental-workflow/internal/services"
	"rental-workflow/internal/workflow"
	"rental-workflow/pkg/middleware"
)

// InitRouter регистрирует служебные маршруты. Доменного HTTP API у ядра нет.
func InitRouter(
	e *echo.Echo,
	gatherer prometheus.Gatherer,
	audit services.AuditServiceInterface,
	validator *workflow.Validator,
	logger *zap.Logger,
) {
	logger.Info("InitRouter: регистрация служебных маршрутов")

	e.Use(middleware.RequestLogger(logger))
	opsCtrl := controllers.NewOpsController(audit, validator, logger)

	e.GET("/healthz", opsCtrl.Health)
	e.GET("/ops/consistency", opsCtrl.Consistency)
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	logger.Info("InitRouter: маршруты зарегистрированы")
}
