package repositories

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"rental-workflow/internal/entities"
)

// RedisAuditMirrorRepository - зеркало журнала аудита на Redis.
// Записи лежат в списке от новых к старым (LPUSH), хвост срезается LTRIM.
type RedisAuditMirrorRepository struct {
	client *redis.Client
	key    string
	logger *zap.Logger
}

// NewRedisAuditMirrorRepository - конструктор для репозитория.
// Он возвращает объект, который соответствует AuditMirrorRepositoryInterface.
func NewRedisAuditMirrorRepository(client *redis.Client, key string, logger *zap.Logger) AuditMirrorRepositoryInterface {
	return &RedisAuditMirrorRepository{client: client, key: key, logger: logger}
}

// Push кладет запись в начало списка и обрезает список одной транзакцией.
func (r *RedisAuditMirrorRepository) Push(ctx context.Context, entry entities.AuditLogEntry, keep int) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("не удалось сериализовать запись аудита: %w", err)
	}
	if keep <= 0 {
		keep = 1
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LPush(ctx, r.key, data)
		pipe.LTrim(ctx, r.key, 0, int64(keep-1))
		return nil
	})
	return err
}

// Recent читает последние записи. Битые элементы пропускаются с предупреждением,
// чтобы одна испорченная строка не мешала восстановлению остальных.
func (r *RedisAuditMirrorRepository) Recent(ctx context.Context, limit int) ([]entities.AuditLogEntry, error) {
	if limit <= 0 {
		return []entities.AuditLogEntry{}, nil
	}

	raw, err := r.client.LRange(ctx, r.key, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]entities.AuditLogEntry, 0, len(raw))
	// В списке новые записи идут первыми, отдаем в хронологическом порядке
	for i := len(raw) - 1; i >= 0; i-- {
		var e entities.AuditLogEntry
		if err := json.Unmarshal([]byte(raw[i]), &e); err != nil {
			r.logger.Warn("Пропущена поврежденная запись в зеркале аудита",
				zap.String("key", r.key),
				zap.Error(err),
			)
			continue
		}
		entries = append(entries, e)
	}
	return entries, nil
}
