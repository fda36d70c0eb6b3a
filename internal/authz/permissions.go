// internal/authz/permissions.go
package authz

// --- СПИСОК ВСЕХ ПЕРМИШЕНОВ В СИСТЕМЕ ---

const (
	// Глобальный: дает доступ ко всему
	Wildcard = "*"

	// Заявки (Orders)
	OrdersView         = "orders:view"
	OrdersChangeStatus = "orders:status:change"
	OrdersActions      = "orders:actions:execute"

	// Журнал аудита
	AuditView   = "audit:view"
	AuditExport = "audit:export"

	// Уведомления
	NotificationsView = "notifications:view"
)

// RolePermissions - набор прав по умолчанию, если у пользователя нет явного списка.
var RolePermissions = map[Role][]string{
	RoleAdmin: {Wildcard},
	RoleOperationsManager: {
		OrdersView, OrdersChangeStatus, OrdersActions,
		AuditView, AuditExport, NotificationsView,
	},
	RoleAccountManager: {
		OrdersView, OrdersChangeStatus, OrdersActions, NotificationsView,
	},
	RoleDoctor: {
		OrdersView, OrdersChangeStatus, NotificationsView,
	},
	RoleTechnician: {
		OrdersView, OrdersChangeStatus, OrdersActions, NotificationsView,
	},
	RoleWarehouseLead: {
		OrdersView, OrdersChangeStatus, OrdersActions, NotificationsView,
	},
	RoleFinance: {
		OrdersView, OrdersChangeStatus, AuditView, AuditExport, NotificationsView,
	},
}

// EffectivePermissions собирает итоговый набор прав: явный список пользователя
// важнее роли; если он пуст, берем права роли.
func EffectivePermissions(role Role, explicit []string) map[string]bool {
	source := explicit
	if len(source) == 0 {
		source = RolePermissions[role]
	}

	perms := make(map[string]bool, len(source))
	for _, p := range source {
		perms[p] = true
	}
	return perms
}
