// Файл: internal/services/audit_service.go
package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aarondl/null/v8"
	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"rental-workflow/internal/entities"
	"rental-workflow/internal/metrics"
	"rental-workflow/internal/repositories"
	"rental-workflow/internal/statuses"
	apperrors "rental-workflow/pkg/errors"
)

const (
	DefaultAuditMaxEntries = 1000
	DefaultAuditMirrorSize = 100

	ExportFormatJSON = "json"
	ExportFormatCSV  = "csv"
)

var auditCSVHeader = []string{
	"id", "sequence", "timestamp", "user_id", "user_role", "action",
	"entity_type", "entity_id", "old_value", "new_value", "details",
}

// AuditFilter - необязательные фильтры, объединяются через AND.
type AuditFilter struct {
	EntityType string
	EntityID   string
	UserID     string
	Action     string
	From       null.Time
	To         null.Time
}

// StatusChangeAudit - данные заявки для записи о смене статуса.
type StatusChangeAudit struct {
	OrderID      string
	OrderNumber  string
	CustomerName string
	OldStatus    string
	NewStatus    string
	Reason       null.String
}

type AuditServiceInterface interface {
	Record(ctx context.Context, entry entities.AuditLogEntry) entities.AuditLogEntry
	RecordStatusChange(ctx context.Context, actor entities.User, change StatusChangeAudit) entities.AuditLogEntry
	Query(filter AuditFilter) []entities.AuditLogEntry
	Export(format string) ([]byte, error)
	ExportXLSX(w io.Writer) error
	Restore(ctx context.Context) (int, error)
	Degraded() bool
	Len() int
}

// AuditService - журнал аудита в памяти с ограничением по размеру и
// постоянным зеркалом последних записей. Ошибки зеркала не пробрасываются.
type AuditService struct {
	mu sync.RWMutex

	// mirrorMu держится от выдачи номера до записи в зеркало: порядок
	// записей в Redis совпадает с порядком номеров.
	mirrorMu   sync.Mutex
	entries    []entities.AuditLogEntry
	sequence   uint64
	maxEntries int
	mirrorSize int

	mirror   repositories.AuditMirrorRepositoryInterface
	degraded atomic.Bool
	metrics  *metrics.WorkflowMetrics
	logger   *zap.Logger
	now      func() time.Time
}

// NewAuditService - mirror может быть nil, тогда журнал живет только в памяти.
func NewAuditService(
	mirror repositories.AuditMirrorRepositoryInterface,
	maxEntries, mirrorSize int,
	metrics *metrics.WorkflowMetrics,
	logger *zap.Logger,
) *AuditService {
	if maxEntries <= 0 {
		maxEntries = DefaultAuditMaxEntries
	}
	if mirrorSize <= 0 {
		mirrorSize = DefaultAuditMirrorSize
	}
	return &AuditService{
		entries:    make([]entities.AuditLogEntry, 0, maxEntries),
		maxEntries: maxEntries,
		mirrorSize: mirrorSize,
		mirror:     mirror,
		metrics:    metrics,
		logger:     logger,
		now:        time.Now,
	}
}

// Record назначает ID, порядковый номер и время, добавляет запись и
// вытесняет самые старые, если журнал переполнен.
func (s *AuditService) Record(ctx context.Context, entry entities.AuditLogEntry) entities.AuditLogEntry {
	s.mirrorMu.Lock()
	defer s.mirrorMu.Unlock()

	s.mu.Lock()
	s.sequence++
	entry.ID = uuid.NewString()
	entry.Sequence = s.sequence
	entry.Timestamp = s.now()

	s.entries = append(s.entries, entry)
	evicted := 0
	if over := len(s.entries) - s.maxEntries; over > 0 {
		evicted = over
		// копируем хвост, чтобы не держать старый массив
		s.entries = append(make([]entities.AuditLogEntry, 0, s.maxEntries), s.entries[over:]...)
	}
	s.mu.Unlock()

	s.metrics.AuditEntriesTotal.Inc()
	if evicted > 0 {
		s.metrics.AuditEvictedTotal.Add(float64(evicted))
	}

	s.pushToMirror(ctx, entry)
	return entry
}

func (s *AuditService) pushToMirror(ctx context.Context, entry entities.AuditLogEntry) {
	if s.mirror == nil {
		return
	}
	if err := s.mirror.Push(ctx, entry, s.mirrorSize); err != nil {
		if !s.degraded.Swap(true) {
			s.logger.Warn("Зеркало аудита недоступно, журнал работает только в памяти", zap.Error(err))
		} else {
			s.logger.Debug("Повторная ошибка зеркала аудита", zap.Error(err))
		}
		s.metrics.AuditMirrorFailureTotal.Inc()
		return
	}
	if s.degraded.Swap(false) {
		s.logger.Info("Зеркало аудита снова доступно")
	}
}

// RecordStatusChange - специализированная запись о смене статуса заявки.
func (s *AuditService) RecordStatusChange(ctx context.Context, actor entities.User, change StatusChangeAudit) entities.AuditLogEntry {
	details := fmt.Sprintf("Estado: «%s» → «%s»", statuses.Label(change.OldStatus), statuses.Label(change.NewStatus))
	if change.Reason.Valid {
		details += ". Motivo: " + change.Reason.String
	}

	return s.Record(ctx, entities.AuditLogEntry{
		UserID:     actor.ID,
		UserRole:   actor.Role,
		Action:     entities.AuditActionStatusChange,
		EntityType: entities.AuditEntityOrder,
		EntityID:   change.OrderID,
		OldValue:   null.StringFrom(change.OldStatus),
		NewValue:   null.StringFrom(change.NewStatus),
		Details:    details,
		Order: &entities.OrderAuditFields{
			OrderNumber:  change.OrderNumber,
			CustomerName: change.CustomerName,
			OldStatus:    change.OldStatus,
			NewStatus:    change.NewStatus,
			Reason:       change.Reason,
		},
	})
}

// Query возвращает записи в порядке добавления.
func (s *AuditService) Query(filter AuditFilter) []entities.AuditLogEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []entities.AuditLogEntry{}
	for _, e := range s.entries {
		if filter.EntityType != "" && e.EntityType != filter.EntityType {
			continue
		}
		if filter.EntityID != "" && e.EntityID != filter.EntityID {
			continue
		}
		if filter.UserID != "" && e.UserID != filter.UserID {
			continue
		}
		if filter.Action != "" && e.Action != filter.Action {
			continue
		}
		if filter.From.Valid && e.Timestamp.Before(filter.From.Time) {
			continue
		}
		if filter.To.Valid && e.Timestamp.After(filter.To.Time) {
			continue
		}
		out = append(out, e)
	}
	return out
}

func (s *AuditService) snapshot() []entities.AuditLogEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]entities.AuditLogEntry{}, s.entries...)
}

// Export выгружает весь журнал в json (массив) или csv.
func (s *AuditService) Export(format string) ([]byte, error) {
	entries := s.snapshot()

	switch strings.ToLower(strings.TrimSpace(format)) {
	case ExportFormatJSON:
		return json.MarshalIndent(entries, "", "  ")
	case ExportFormatCSV:
		var buf bytes.Buffer
		w := csv.NewWriter(&buf)
		if err := w.Write(auditCSVHeader); err != nil {
			return nil, err
		}
		for _, e := range entries {
			if err := w.Write(auditRow(e)); err != nil {
				return nil, err
			}
		}
		w.Flush()
		if err := w.Error(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("%w: %q", apperrors.ErrUnsupportedExportFormat, format)
	}
}

func auditRow(e entities.AuditLogEntry) []string {
	return []string{
		e.ID,
		strconv.FormatUint(e.Sequence, 10),
		e.Timestamp.Format(time.RFC3339Nano),
		e.UserID,
		e.UserRole,
		e.Action,
		e.EntityType,
		e.EntityID,
		e.OldValue.String,
		e.NewValue.String,
		e.Details,
	}
}

// ExportXLSX пишет журнал в книгу Excel с одним листом.
func (s *AuditService) ExportXLSX(w io.Writer) error {
	entries := s.snapshot()

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Auditoria"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return err
	}

	header := make([]interface{}, len(auditCSVHeader))
	for i, h := range auditCSVHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	lastCol, _ := excelize.ColumnNumberToName(len(auditCSVHeader))
	if err := f.SetCellStyle(sheet, "A1", lastCol+"1", headerStyle); err != nil {
		return err
	}

	for i, e := range entries {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := auditRow(e)
		values := make([]interface{}, len(row))
		for j, v := range row {
			values[j] = v
		}
		values[1] = e.Sequence
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return err
		}
	}

	if err := f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return err
	}

	return f.Write(w)
}

// Restore загружает последние записи из зеркала при старте процесса.
// Вызывается до первой записи: если журнал уже не пуст, ничего не делает.
func (s *AuditService) Restore(ctx context.Context) (int, error) {
	if s.mirror == nil {
		return 0, nil
	}
	restored, err := s.mirror.Recent(ctx, s.mirrorSize)
	if err != nil {
		s.degraded.Store(true)
		s.metrics.AuditMirrorFailureTotal.Inc()
		return 0, fmt.Errorf("no se pudo leer el espejo de auditoría: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.entries) > 0 {
		s.logger.Warn("Журнал аудита уже содержит записи, восстановление пропущено", zap.Int("entries", len(s.entries)))
		return 0, nil
	}

	sort.SliceStable(restored, func(i, j int) bool { return restored[i].Sequence < restored[j].Sequence })
	if over := len(restored) - s.maxEntries; over > 0 {
		restored = restored[over:]
	}
	s.entries = append(s.entries, restored...)
	for _, e := range restored {
		if e.Sequence > s.sequence {
			s.sequence = e.Sequence
		}
	}

	s.logger.Info("Журнал аудита восстановлен из зеркала", zap.Int("restored", len(restored)))
	return len(restored), nil
}

// Degraded - true, если последняя запись в зеркало не удалась.
func (s *AuditService) Degraded() bool {
	return s.degraded.Load()
}

func (s *AuditService) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
