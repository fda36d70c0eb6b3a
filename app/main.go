// Файл: main.go

package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/go-redis/redis/v8"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"rental-workflow/internal/core"
	"rental-workflow/internal/repositories"
	"rental-workflow/internal/routes"
	"rental-workflow/pkg/api"
	"rental-workflow/pkg/config"
	applogger "rental-workflow/pkg/logger"
)

func main() {
	// 1. Конфиг и логгер
	cfg := config.New()
	logger := applogger.NewLogger(cfg.Log)
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 2. Метрики в собственном реестре
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	// 3. Redis - необязательное зеркало журнала аудита
	var mirror repositories.AuditMirrorRepositoryInterface
	var redisClient *redis.Client
	if cfg.Redis.Address != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if _, err := redisClient.Ping(ctx).Result(); err != nil {
			// Без Redis работаем в памяти, сервис из-за этого не падает
			logger.Warn("не удалось подключиться к Redis, журнал аудита только в памяти",
				zap.Error(err), zap.String("address", cfg.Redis.Address))
		}
		mirror = repositories.NewRedisAuditMirrorRepository(redisClient, cfg.Audit.MirrorKey, logger)
	} else {
		logger.Info("REDIS_ADDRESS не задан, журнал аудита только в памяти")
	}

	// 4. Ядро
	app := core.New(cfg.Audit, core.Options{Mirror: mirror, Registry: registry}, logger)
	app.Start(ctx)

	// 5. Служебный HTTP-сервер
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		DisableStackAll: true,
		StackSize:       1 << 10,
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			logger.Error("!!! ОБНАРУЖЕНА ПАНИКА (PANIC) !!!",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Error(err),
				zap.String("stack", string(stack)),
			)
			if !c.Response().Committed {
				_ = api.ErrorResponse(c, http.StatusInternalServerError, errors.New("Error interno del servidor"))
			}
			return err
		},
	}))
	routes.InitRouter(e, registry, app.Audit, app.Validator, logger)

	go func() {
		logger.Info("🚀 Служебный сервер запущен", zap.String("port", cfg.Server.Port))
		if err := e.Start(":" + cfg.Server.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Ошибка запуска сервера", zap.Error(err))
		}
	}()

	// 6. Остановка
	<-ctx.Done()
	logger.Info("Получен сигнал остановки")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("Ошибка остановки сервера", zap.Error(err))
	}
	_ = app.Shutdown(shutdownCtx)

	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			logger.Error("Ошибка закрытия Redis", zap.Error(err))
		}
	}
	logger.Info("Сервис остановлен")
}
