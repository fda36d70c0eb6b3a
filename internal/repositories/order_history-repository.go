package repositories

import (
	"context"
	"sync"

	"rental-workflow/internal/entities"
	apperrors "rental-workflow/pkg/errors"
)

type OrderHistoryRepositoryInterface interface {
	Create(ctx context.Context, history entities.StateChangeHistory) error
	FindByOrderID(ctx context.Context, orderID string, limit, offset int) ([]entities.StateChangeHistory, error)
	CountByOrderID(ctx context.Context, orderID string) (int, error)
}

// OrderHistoryRepository - история переходов в памяти процесса. Только добавление:
// записи не меняются и не удаляются, порядок внутри заявки - порядок вставки.
type OrderHistoryRepository struct {
	mu      sync.RWMutex
	byOrder map[string][]entities.StateChangeHistory
	ids     map[string]struct{}
}

func NewOrderHistoryRepository() OrderHistoryRepositoryInterface {
	return &OrderHistoryRepository{
		byOrder: make(map[string][]entities.StateChangeHistory),
		ids:     make(map[string]struct{}),
	}
}

func (r *OrderHistoryRepository) Create(ctx context.Context, history entities.StateChangeHistory) error {
	if history.ID == "" || history.OrderID == "" {
		return apperrors.NewInvalidInputError("registro de historial sin id o sin orden")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.ids[history.ID]; exists {
		return apperrors.NewInvalidInputError("el registro de historial %s ya existe", history.ID)
	}
	history.Metadata = cloneMetadata(history.Metadata)
	r.byOrder[history.OrderID] = append(r.byOrder[history.OrderID], history)
	r.ids[history.ID] = struct{}{}
	return nil
}

// FindByOrderID - записи заявки в порядке добавления. limit <= 0 означает "все".
func (r *OrderHistoryRepository) FindByOrderID(ctx context.Context, orderID string, limit, offset int) ([]entities.StateChangeHistory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := r.byOrder[orderID]
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return []entities.StateChangeHistory{}, nil
	}
	end := len(items)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}

	out := make([]entities.StateChangeHistory, 0, end-offset)
	for _, h := range items[offset:end] {
		h.Metadata = cloneMetadata(h.Metadata)
		out = append(out, h)
	}
	return out, nil
}

func (r *OrderHistoryRepository) CountByOrderID(ctx context.Context, orderID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byOrder[orderID]), nil
}

func cloneMetadata(in map[string]string) map[string]string {
	if in == nil {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
