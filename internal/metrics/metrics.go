package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// WorkflowMetrics содержит метрики ядра переходов статусов
type WorkflowMetrics struct {
	// Попытки смены статуса: result = success / rejected / invalid / unauthenticated / forbidden / failed
	TransitionsTotal *prometheus.CounterVec

	// Действия по матрице (схема действий)
	ActionsTotal *prometheus.CounterVec

	// Сгенерированные уведомления по шаблонам
	NotificationsGeneratedTotal *prometheus.CounterVec

	// Аудит
	AuditEntriesTotal       prometheus.Counter
	AuditEvictedTotal       prometheus.Counter
	AuditMirrorFailureTotal prometheus.Counter
}

// NewWorkflowMetrics создает метрики и регистрирует их в переданном реестре.
// В тестах передаем prometheus.NewRegistry(), чтобы не конфликтовать с глобальным.
func NewWorkflowMetrics(reg prometheus.Registerer) *WorkflowMetrics {
	m := &WorkflowMetrics{
		TransitionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "order_status_transitions_total",
				Help: "Количество попыток смены статуса заявки",
			},
			[]string{"from", "to", "result"},
		),
		ActionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "order_actions_total",
				Help: "Количество действий по матрице разрешений",
			},
			[]string{"action", "result"},
		),
		NotificationsGeneratedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "order_notifications_generated_total",
				Help: "Количество сгенерированных уведомлений",
			},
			[]string{"template", "recipient_role"},
		),
		AuditEntriesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "audit_entries_total",
			Help: "Количество записей, добавленных в журнал аудита",
		}),
		AuditEvictedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "audit_entries_evicted_total",
			Help: "Количество старых записей, вытесненных из журнала",
		}),
		AuditMirrorFailureTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "audit_mirror_failures_total",
			Help: "Ошибки записи в постоянное зеркало журнала аудита",
		}),
	}

	if reg != nil {
		reg.MustRegister(
			m.TransitionsTotal,
			m.ActionsTotal,
			m.NotificationsGeneratedTotal,
			m.AuditEntriesTotal,
			m.AuditEvictedTotal,
			m.AuditMirrorFailureTotal,
		)
	}

	return m
}
