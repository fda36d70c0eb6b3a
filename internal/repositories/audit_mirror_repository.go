package repositories

import (
	"context"

	"rental-workflow/internal/entities"
)

// AuditMirrorRepositoryInterface - постоянное зеркало последних записей аудита.
// Основной журнал живет в памяти, зеркало нужно только чтобы пережить рестарт.
type AuditMirrorRepositoryInterface interface {
	// Push добавляет запись и оставляет в зеркале только keep последних.
	Push(ctx context.Context, entry entities.AuditLogEntry, keep int) error
	// Recent возвращает до limit последних записей, от старых к новым.
	Recent(ctx context.Context, limit int) ([]entities.AuditLogEntry, error)
}
