package models

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidArgument помечает нарушение контракта вызывающей стороной.
var ErrInvalidArgument = errors.New("недопустимый аргумент")

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Priorities - допустимые приоритеты в порядке отображения
var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh}

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

func ParsePriority(s string) (Priority, error) {
	p := Priority(strings.ToLower(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", fmt.Errorf("%w: неизвестный приоритет %q", ErrInvalidArgument, s)
	}
	return p, nil
}

// Filter определяет, какие задачи видны в списке
type Filter string

const (
	FilterAll    Filter = "all"
	FilterLow    Filter = Filter(PriorityLow)
	FilterMedium Filter = Filter(PriorityMedium)
	FilterHigh   Filter = Filter(PriorityHigh)
)

func (f Filter) Valid() bool {
	return f == FilterAll || Priority(f).Valid()
}

func ParseFilter(s string) (Filter, error) {
	f := Filter(strings.ToLower(strings.TrimSpace(s)))
	if !f.Valid() {
		return "", fmt.Errorf("%w: неизвестный фильтр %q", ErrInvalidArgument, s)
	}
	return f, nil
}

type Task struct {
	ID          string   `json:"id" yaml:"id"`
	Title       string   `json:"title" yaml:"title"`
	Description string   `json:"description" yaml:"description"`
	DueDate     string   `json:"dueDate" yaml:"due_date"`
	Priority    Priority `json:"priority" yaml:"priority"`
	IsCompleted bool     `json:"isCompleted" yaml:"is_completed"`
	AssignedTo  *string  `json:"assignedTo" yaml:"assigned_to,omitempty"`
}

// Clone возвращает копию, не разделяющую память с t
func (t Task) Clone() Task {
	if t.AssignedTo != nil {
		id := *t.AssignedTo
		t.AssignedTo = &id
	}
	return t
}

// IsAssignedTo reports whether the task references userID.
func (t Task) IsAssignedTo(userID string) bool {
	return t.AssignedTo != nil && *t.AssignedTo == userID
}

// TaskDraft - данные новой задачи до присвоения ID
type TaskDraft struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	DueDate     string   `json:"dueDate"`
	Priority    Priority `json:"priority"`
	AssignedTo  *string  `json:"assignedTo"`
}

// TaskPatch описывает частичное редактирование задачи: nil-поля не меняются.
type TaskPatch struct {
	Title         *string   `json:"title,omitempty"`
	Description   *string   `json:"description,omitempty"`
	DueDate       *string   `json:"dueDate,omitempty"`
	Priority      *Priority `json:"priority,omitempty"`
	AssignedTo    *string   `json:"assignedTo,omitempty"`
	ClearAssignee bool      `json:"clearAssignee,omitempty"`
}

// NormalizeAssignee: пустая ссылка означает "не назначено"
func NormalizeAssignee(id *string) *string {
	if id == nil || *id == "" {
		return nil
	}
	v := *id
	return &v
}
