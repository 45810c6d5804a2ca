package models

import "maps"

type User struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

func (u User) Clone() User {
	u.Attributes = maps.Clone(u.Attributes)
	return u
}

// UserDraft - данные нового пользователя из формы.
// Attributes передаются как есть, без проверки.
type UserDraft struct {
	Name       string         `json:"name"`
	Attributes map[string]any `json:"attributes,omitempty"`
}
