// Файл: internal/core/core.go
package core

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"rental-workflow/internal/authz"
	"rental-workflow/internal/listeners"
	"rental-workflow/internal/metrics"
	"rental-workflow/internal/repositories"
	"rental-workflow/internal/services"
	"rental-workflow/internal/workflow"
	"rental-workflow/pkg/config"
	"rental-workflow/pkg/eventbus"
	"rental-workflow/pkg/validation"
)

// Core - все сервисы ядра, собранные один раз при старте процесса.
// Хост получает их отсюда, глобального состояния нет. Доменного транспорта у
// ядра нет: OrderStatus, OrderActions и OrderHistory вызывает приложение-хост.
type Core struct {
	Validator *workflow.Validator
	Metrics   *metrics.WorkflowMetrics
	Bus       *eventbus.Bus

	Audit         *services.AuditService
	Notifications *services.NotificationService
	OrderStatus   *services.OrderStatusService
	OrderActions  *services.OrderActionService
	OrderHistory  services.OrderHistoryServiceInterface

	logger *zap.Logger
}

// Options - зависимости, которые хост может подменить. Пустые поля заполняются
// значениями по умолчанию.
type Options struct {
	Mirror    repositories.AuditMirrorRepositoryInterface
	Directory services.RecipientDirectory
	Engine    services.TemplateEngine
	Sender    services.NotificationSenderInterface
	Registry  prometheus.Registerer
}

func New(cfg config.AuditConfig, opts Options, logger *zap.Logger) *Core {
	if opts.Directory == nil {
		opts.Directory = services.RolePoolDirectory{}
	}
	if opts.Engine == nil {
		opts.Engine = services.NewPlaceholderEngine(services.DefaultNotificationTemplates(), services.MissingLeaveLiteral)
	}
	if opts.Sender == nil {
		opts.Sender = services.NewMockNotificationSender(logger)
	}

	validator := workflow.DefaultValidator()
	m := metrics.NewWorkflowMetrics(opts.Registry)
	bus := eventbus.New(logger)
	listeners.NewNotificationListener(opts.Sender, logger).Register(bus)

	gatekeeper := authz.NewGatekeeper(logger)
	dtoValidator := validation.New()
	historyRepo := repositories.NewOrderHistoryRepository()

	audit := services.NewAuditService(opts.Mirror, cfg.MaxEntries, cfg.MirrorSize, m, logger)
	notifications := services.NewNotificationService(opts.Engine, opts.Directory, logger)

	return &Core{
		Validator:     validator,
		Metrics:       m,
		Bus:           bus,
		Audit:         audit,
		Notifications: notifications,
		OrderStatus:   services.NewOrderStatusService(validator, gatekeeper, dtoValidator, historyRepo, notifications, audit, bus, m, logger),
		OrderActions:  services.NewOrderActionService(gatekeeper, dtoValidator, audit, m, logger),
		OrderHistory:  services.NewOrderHistoryService(historyRepo, logger),
		logger:        logger,
	}
}

// Start проверяет согласованность схем и восстанавливает журнал аудита из зеркала.
// Недоступное зеркало не мешает старту.
func (c *Core) Start(ctx context.Context) workflow.ConsistencyReport {
	report := workflow.CheckConsistency(authz.Matrix(), c.Validator, workflow.DefaultSchemeMapping())
	for _, conflict := range report.Conflicts {
		c.logger.Error("Конфликт схем авторизации",
			zap.String("kind", conflict.Kind),
			zap.String("details", conflict.Description),
		)
	}
	if len(report.Unmapped) > 0 {
		c.logger.Info("Строки матрицы без соответствия в операционной схеме", zap.Strings("entries", report.Unmapped))
	}

	if n, err := c.Audit.Restore(ctx); err != nil {
		c.logger.Warn("Журнал аудита не восстановлен", zap.Error(err))
	} else if n > 0 {
		c.logger.Info("Журнал аудита восстановлен", zap.Int("entries", n))
	}
	return report
}

// Shutdown дожидается обработчиков событий, но не дольше, чем живет ctx.
func (c *Core) Shutdown(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		c.Bus.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		c.logger.Warn("Не все обработчики событий завершились до таймаута")
		return ctx.Err()
	}
}
