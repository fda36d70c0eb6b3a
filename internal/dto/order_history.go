package dto

type ShortUserDTO struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role string `json:"role"`
}

type TimelineEventDTO struct {
	Class     string       `json:"class"` // CSS-класс бейджа нового статуса
	Lines     []string     `json:"lines"` // Несколько строк текста для одного события
	Actor     ShortUserDTO `json:"actor"`
	CreatedAt string       `json:"created_at"`
}
