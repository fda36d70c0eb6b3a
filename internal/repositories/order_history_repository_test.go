package repositories

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rental-workflow/internal/entities"
	apperrors "rental-workflow/pkg/errors"
)

func historyRecord(id, orderID string) entities.StateChangeHistory {
	return entities.StateChangeHistory{ID: id, OrderID: orderID, FromStatus: "pending", ToStatus: "approved"}
}

func TestOrderHistoryRepository_InsertionOrderAndPaging(t *testing.T) {
	repo := NewOrderHistoryRepository()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, repo.Create(ctx, historyRecord(fmt.Sprintf("h%d", i), "o1")))
	}
	require.NoError(t, repo.Create(ctx, historyRecord("other", "o2")))

	all, err := repo.FindByOrderID(ctx, "o1", 0, 0)
	require.NoError(t, err)
	require.Len(t, all, 5)
	assert.Equal(t, "h0", all[0].ID)
	assert.Equal(t, "h4", all[4].ID)

	page, err := repo.FindByOrderID(ctx, "o1", 2, 1)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "h1", page[0].ID)
	assert.Equal(t, "h2", page[1].ID)

	empty, err := repo.FindByOrderID(ctx, "o1", 10, 50)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	n, err := repo.CountByOrderID(ctx, "o1")
	require.NoError(t, err)
	assert.Equal(t, 5, n)
}

func TestOrderHistoryRepository_RejectsDuplicatesAndEmptyIDs(t *testing.T) {
	repo := NewOrderHistoryRepository()
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, historyRecord("h1", "o1")))

	var invalid *apperrors.InvalidInputError
	assert.True(t, errors.As(repo.Create(ctx, historyRecord("h1", "o1")), &invalid))
	assert.True(t, errors.As(repo.Create(ctx, historyRecord("", "o1")), &invalid))
}

func TestOrderHistoryRepository_RecordsAreImmutable(t *testing.T) {
	repo := NewOrderHistoryRepository()
	ctx := context.Background()

	rec := historyRecord("h1", "o1")
	rec.Metadata = map[string]string{"source": "ui"}
	require.NoError(t, repo.Create(ctx, rec))
	rec.Metadata["source"] = "changed"

	got, err := repo.FindByOrderID(ctx, "o1", 0, 0)
	require.NoError(t, err)
	got[0].Metadata["source"] = "changed again"

	again, _ := repo.FindByOrderID(ctx, "o1", 0, 0)
	assert.Equal(t, "ui", again[0].Metadata["source"])
}

func TestOrderHistoryRepository_ConcurrentAppends(t *testing.T) {
	repo := NewOrderHistoryRepository()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = repo.Create(ctx, historyRecord(fmt.Sprintf("h%d", i), "o1"))
		}(i)
	}
	wg.Wait()

	n, _ := repo.CountByOrderID(ctx, "o1")
	assert.Equal(t, 50, n)
}
