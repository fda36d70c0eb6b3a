package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/aarondl/null/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"rental-workflow/internal/entities"
	"rental-workflow/internal/repositories"
)

func TestOrderHistoryService_GetTimeline(t *testing.T) {
	repo := repositories.NewOrderHistoryRepository()
	ctx := context.Background()
	at := time.Date(2026, 4, 2, 8, 15, 0, 0, time.UTC)

	require.NoError(t, repo.Create(ctx, entities.StateChangeHistory{
		ID: "h1", OrderID: "o1", FromStatus: "pending", ToStatus: "approved",
		ChangedBy: "u1", ChangedByName: "Luis Pérez", ChangedByRole: "Gerente Operativo", ChangedAt: at,
	}))
	// старый код статуса из другой схемы тоже должен подписываться
	require.NoError(t, repo.Create(ctx, entities.StateChangeHistory{
		ID: "h2", OrderID: "o1", FromStatus: "in_transit", ToStatus: "closed",
		ChangedBy: "u2", ChangedAt: at.Add(time.Hour),
		Reason: null.StringFrom("Cirugía realizada"), Notes: null.StringFrom("Equipo devuelto"),
	}))

	svc := NewOrderHistoryService(repo, zap.NewNop())
	timeline, err := svc.GetTimeline(ctx, "o1", "", "")
	require.NoError(t, err)
	require.Len(t, timeline, 2)

	first := timeline[0]
	assert.Equal(t, []string{"Estado: «Pendiente» → «Aprobada»"}, first.Lines)
	assert.Equal(t, "status-info", first.Class)
	assert.Equal(t, "Luis Pérez", first.Actor.Name)
	assert.Equal(t, "02.04.2026 / 08:15", first.CreatedAt)

	second := timeline[1]
	assert.Equal(t, []string{
		"Estado: «En tránsito» → «Completada»",
		"Motivo: Cirugía realizada",
		"Notas: Equipo devuelto",
		"Estado de cierre",
	}, second.Lines)
	assert.Equal(t, "Usuario desconocido", second.Actor.Name)
}

func TestOrderHistoryService_Paging(t *testing.T) {
	repo := repositories.NewOrderHistoryRepository()
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		require.NoError(t, repo.Create(ctx, entities.StateChangeHistory{
			ID: fmt.Sprintf("h%d", i), OrderID: "o1", FromStatus: "pending", ToStatus: "approved",
		}))
	}
	svc := NewOrderHistoryService(repo, zap.NewNop())

	page, err := svc.GetTimeline(ctx, "o1", "2", "3")
	require.NoError(t, err)
	assert.Len(t, page, 2)

	// мусор в параметрах - значения по умолчанию
	all, err := svc.GetTimeline(ctx, "o1", "abc", "-4")
	require.NoError(t, err)
	assert.Len(t, all, 5)

	none, err := svc.GetTimeline(ctx, "missing", "", "")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}
