package authz

import (
	"go.uber.org/zap"
)

// Gatekeeper проверяет права актора перед запуском сценария.
type Gatekeeper struct {
	logger *zap.Logger
}

func NewGatekeeper(logger *zap.Logger) *Gatekeeper {
	return &Gatekeeper{logger: logger}
}

// Can - есть ли у роли (или у явного списка прав) указанный пермишен.
func (g *Gatekeeper) Can(role Role, explicit []string, permission string) bool {
	perms := EffectivePermissions(role, explicit)

	// Этап 1: Wildcard открывает всё
	if perms[Wildcard] {
		return true
	}

	// Этап 2: Обычная проверка
	if perms[permission] {
		return true
	}

	g.logger.Debug("Gatekeeper: доступ запрещен",
		zap.String("role", role.Code()),
		zap.String("permission", permission),
		zap.Int("explicitPermissions", len(explicit)),
	)
	return false
}
