package types

import "time"

// BaseEntity - временные метки, которые ведет слой хранения хоста.
type BaseEntity struct {
	CreatedAt *time.Time `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
}
