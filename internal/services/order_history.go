package services

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"rental-workflow/internal/dto"
	"rental-workflow/internal/entities"
	"rental-workflow/internal/repositories"
	"rental-workflow/internal/statuses"
)

const maxTimelineLimit = 200

type OrderHistoryServiceInterface interface {
	GetTimeline(ctx context.Context, orderID string, limitStr, offsetStr string) ([]dto.TimelineEventDTO, error)
}

type OrderHistoryService struct {
	repo   repositories.OrderHistoryRepositoryInterface
	logger *zap.Logger
}

func NewOrderHistoryService(repo repositories.OrderHistoryRepositoryInterface, logger *zap.Logger) OrderHistoryServiceInterface {
	return &OrderHistoryService{repo: repo, logger: logger}
}

// GetTimeline - история заявки для UI: одно событие на переход, подписи статусов
// через нормализатор, поэтому старые коды тоже отображаются по-человечески.
func (s *OrderHistoryService) GetTimeline(ctx context.Context, orderID string, limitStr, offsetStr string) ([]dto.TimelineEventDTO, error) {
	limit, _ := strconv.Atoi(limitStr)
	if limit <= 0 || limit > maxTimelineLimit {
		limit = maxTimelineLimit
	}
	offset, _ := strconv.Atoi(offsetStr)
	if offset < 0 {
		offset = 0
	}

	history, err := s.repo.FindByOrderID(ctx, orderID, limit, offset)
	if err != nil || len(history) == 0 {
		return []dto.TimelineEventDTO{}, err
	}

	timeline := make([]dto.TimelineEventDTO, 0, len(history))
	for _, h := range history {
		timeline = append(timeline, buildTimelineEvent(h))
	}

	s.logger.Debug("Таймлайн сформирован", zap.Int("events", len(timeline)), zap.String("orderID", orderID))
	return timeline, nil
}

func buildTimelineEvent(h entities.StateChangeHistory) dto.TimelineEventDTO {
	lines := []string{
		fmt.Sprintf("Estado: «%s» → «%s»", statuses.Label(h.FromStatus), statuses.Label(h.ToStatus)),
	}
	if h.Reason.Valid && h.Reason.String != "" {
		lines = append(lines, "Motivo: "+h.Reason.String)
	}
	if h.Notes.Valid && h.Notes.String != "" {
		lines = append(lines, "Notas: "+h.Notes.String)
	}
	if statuses.Normalize(h.ToStatus).IsFinal() {
		lines = append(lines, "Estado de cierre")
	}

	name := h.ChangedByName
	if name == "" {
		name = "Usuario desconocido"
	}

	return dto.TimelineEventDTO{
		Class: statuses.Class(h.ToStatus),
		Lines: lines,
		Actor: dto.ShortUserDTO{
			ID:   h.ChangedBy,
			Name: name,
			Role: h.ChangedByRole,
		},
		CreatedAt: h.ChangedAt.Format("02.01.2006 / 15:04"),
	}
}
