package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"rental-workflow/internal/authz"
	"rental-workflow/internal/services"
	"rental-workflow/internal/workflow"
	"rental-workflow/pkg/api"
)

// OpsController - служебные эндпоинты процесса: здоровье и согласованность схем.
type OpsController struct {
	audit     services.AuditServiceInterface
	validator *workflow.Validator
	logger    *zap.Logger
}

func NewOpsController(audit services.AuditServiceInterface, validator *workflow.Validator, logger *zap.Logger) *OpsController {
	return &OpsController{audit: audit, validator: validator, logger: logger}
}

type healthResponse struct {
	Status              string `json:"status"`
	AuditEntries        int    `json:"audit_entries"`
	AuditMirrorDegraded bool   `json:"audit_mirror_degraded"`
}

// Health всегда отвечает 200: без зеркала аудита ядро продолжает работать,
// деградация видна в поле status.
func (ctrl *OpsController) Health(c echo.Context) error {
	resp := healthResponse{
		Status:              "ok",
		AuditEntries:        ctrl.audit.Len(),
		AuditMirrorDegraded: ctrl.audit.Degraded(),
	}
	if resp.AuditMirrorDegraded {
		resp.Status = "degraded"
	}
	return api.SuccessOne(c, http.StatusOK, resp.Status, resp)
}

// Consistency - отчет о расхождениях между матрицей действий и таблицей переходов.
func (ctrl *OpsController) Consistency(c echo.Context) error {
	report := workflow.CheckConsistency(authz.Matrix(), ctrl.validator, workflow.DefaultSchemeMapping())
	if !report.OK() {
		ctrl.logger.Warn("Схемы авторизации расходятся", zap.Int("conflicts", len(report.Conflicts)))
		return api.Failure(c, http.StatusConflict, "Las tablas de autorización no coinciden", report)
	}
	return api.SuccessOne(c, http.StatusOK, "Las tablas de autorización coinciden", report)
}
