// Файл: internal/entities/user-entity.go
package entities

// User - текущий пользователь, как его передает вызывающая сторона.
// Role хранится сырой строкой, в authz.Role ее переводит authz.ParseRole.
type User struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions,omitempty"`
}
