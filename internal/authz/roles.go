// Файл: internal/authz/roles.go
package authz

import (
	"strings"

	apperrors "rental-workflow/pkg/errors"
)

// Role - организационная роль пользователя (операционная схема, таблица переходов).
// Значения совпадают с тем, что хранится в профиле пользователя.
type Role string

const (
	RoleOperationsManager Role = "Gerente Operativo"
	RoleAccountManager    Role = "Gerente Comercial"
	RoleDoctor            Role = "Médico"
	RoleTechnician        Role = "Técnico"
	RoleWarehouseLead     Role = "Jefe de Almacén"
	RoleFinance           Role = "Finanzas"
	RoleAdmin             Role = "Administrador"
)

var roleCodes = map[Role]string{
	RoleOperationsManager: "GERENTE_OPERATIVO",
	RoleAccountManager:    "GERENTE_COMERCIAL",
	RoleDoctor:            "MEDICO",
	RoleTechnician:        "TECNICO",
	RoleWarehouseLead:     "JEFE_ALMACEN",
	RoleFinance:           "FINANZAS",
	RoleAdmin:             "ADMINISTRADOR",
}

// Roles возвращает все организационные роли.
func Roles() []Role {
	return []Role{
		RoleOperationsManager,
		RoleAccountManager,
		RoleDoctor,
		RoleTechnician,
		RoleWarehouseLead,
		RoleFinance,
		RoleAdmin,
	}
}

func (r Role) String() string { return string(r) }

// Code - ASCII-код роли для ключей, логов и идентификаторов пулов.
func (r Role) Code() string {
	return roleCodes[r]
}

func (r Role) IsValid() bool {
	_, ok := roleCodes[r]
	return ok
}

// roleAliases - все написания ролей, встречавшиеся в клиентах и старых данных.
// Ключ в нижнем регистре.
var roleAliases = map[string]Role{
	"gerente operativo":  RoleOperationsManager,
	"gerente_operativo":  RoleOperationsManager,
	"operations_manager": RoleOperationsManager,
	"gestor_operaciones": RoleOperationsManager,
	"operaciones":        RoleOperationsManager,

	"gerente comercial": RoleAccountManager,
	"gerente_comercial": RoleAccountManager,
	"account_manager":   RoleAccountManager,
	"gestor_comercial":  RoleAccountManager,
	"comercial":         RoleAccountManager,

	"médico": RoleDoctor,
	"medico": RoleDoctor,
	"doctor": RoleDoctor,

	"técnico":    RoleTechnician,
	"tecnico":    RoleTechnician,
	"technician": RoleTechnician,

	"jefe de almacén": RoleWarehouseLead,
	"jefe de almacen": RoleWarehouseLead,
	"jefe_almacen":    RoleWarehouseLead,
	"warehouse_lead":  RoleWarehouseLead,
	"almacen":         RoleWarehouseLead,

	"finanzas": RoleFinance,
	"finance":  RoleFinance,

	"administrador": RoleAdmin,
	"admin":         RoleAdmin,
}

// ParseRole - единственное место, где строка превращается в Role.
// Неизвестная строка - это ошибка, а не роль по умолчанию.
func ParseRole(raw string) (Role, error) {
	key := strings.ToLower(strings.TrimSpace(raw))
	if r, ok := roleAliases[key]; ok {
		return r, nil
	}
	return "", &apperrors.UnmappedRoleError{Raw: raw, Scheme: "operativo"}
}

// ActionRole - роль в схеме действий (матрица разрешений).
type ActionRole string

const (
	ActionRoleOperations    ActionRole = "GESTOR_OPERACIONES"
	ActionRoleCommercial    ActionRole = "GESTOR_COMERCIAL"
	ActionRoleTechnician    ActionRole = "TECNICO"
	ActionRoleWarehouseLead ActionRole = "JEFE_ALMACEN"
)

func ActionRoles() []ActionRole {
	return []ActionRole{ActionRoleOperations, ActionRoleCommercial, ActionRoleTechnician, ActionRoleWarehouseLead}
}

// ParseActionRole принимает только точные коды схемы действий (регистр не важен).
func ParseActionRole(raw string) (ActionRole, error) {
	candidate := ActionRole(strings.ToUpper(strings.TrimSpace(raw)))
	for _, r := range ActionRoles() {
		if r == candidate {
			return r, nil
		}
	}
	return "", &apperrors.UnmappedRoleError{Raw: raw, Scheme: "acciones"}
}
