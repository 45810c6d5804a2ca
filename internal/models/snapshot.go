package models

import "time"

// Snapshot - согласованный срез состояния: все задачи (без фильтра),
// пользователи и активный фильтр.
type Snapshot struct {
	Tasks   []Task    `json:"tasks"`
	Users   []User    `json:"users"`
	Filter  Filter    `json:"filter"`
	TakenAt time.Time `json:"takenAt"`
}
