package manager

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"taskboard/internal/models"
)

// IDFunc генерирует идентификаторы новых задач и пользователей.
type IDFunc func() string

// NewID - генератор по умолчанию: UUID в нижнем регистре.
func NewID() string {
	return strings.ToLower(uuid.NewString())
}

// TaskManager хранит задачи и текущий фильтр по приоритету.
// Сам по себе не синхронизирован: конкурентный доступ идёт через Workspace.
// Нулевое значение готово к использованию.
type TaskManager struct {
	tasks  []models.Task
	filter models.Filter
	newID  IDFunc
}

func NewTaskManager(seed []models.Task, newID IDFunc) *TaskManager {
	tm := &TaskManager{
		tasks:  make([]models.Task, 0, len(seed)),
		filter: models.FilterAll,
		newID:  newID,
	}
	for _, task := range seed {
		tm.tasks = append(tm.tasks, task.Clone())
	}
	return tm
}

func (tm *TaskManager) id() string {
	if tm.newID == nil {
		return NewID()
	}
	return tm.newID()
}

// AddTask создаёт задачу из черновика и добавляет её в конец списка.
// Черновик не проверяется - валидация формы делается выше.
func (tm *TaskManager) AddTask(draft models.TaskDraft) models.Task {
	task := models.Task{
		ID:          tm.id(),
		Title:       draft.Title,
		Description: draft.Description,
		DueDate:     draft.DueDate,
		Priority:    draft.Priority,
		IsCompleted: false,
		AssignedTo:  models.NormalizeAssignee(draft.AssignedTo),
	}

	tm.tasks = append(tm.tasks, task)

	addTaskCount.Inc()
	taskTitleLength.Observe(float64(len(draft.Title)))

	return task.Clone()
}

func (tm *TaskManager) indexOf(id string) int {
	for i := range tm.tasks {
		if tm.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

// DeleteTask удаляет задачу. Неизвестный id - не ошибка, просто false.
func (tm *TaskManager) DeleteTask(id string) bool {
	i := tm.indexOf(id)
	if i < 0 {
		taskOperationCount.WithLabelValues("delete", outcome(false)).Inc()
		return false
	}

	tm.tasks = append(tm.tasks[:i], tm.tasks[i+1:]...)
	taskOperationCount.WithLabelValues("delete", outcome(true)).Inc()
	return true
}

func (tm *TaskManager) ToggleComplete(id string) bool {
	i := tm.indexOf(id)
	if i < 0 {
		taskOperationCount.WithLabelValues("toggle", outcome(false)).Inc()
		return false
	}

	tm.tasks[i].IsCompleted = !tm.tasks[i].IsCompleted
	taskOperationCount.WithLabelValues("toggle", outcome(true)).Inc()
	return true
}

// UpdateTask применяет ненулевые поля patch. Существование назначенного
// пользователя не проверяется.
func (tm *TaskManager) UpdateTask(id string, patch models.TaskPatch) (models.Task, bool) {
	i := tm.indexOf(id)
	if i < 0 {
		taskOperationCount.WithLabelValues("update", outcome(false)).Inc()
		return models.Task{}, false
	}

	task := &tm.tasks[i]
	if patch.Title != nil {
		task.Title = *patch.Title
	}
	if patch.Description != nil {
		task.Description = *patch.Description
	}
	if patch.DueDate != nil {
		task.DueDate = *patch.DueDate
	}
	if patch.Priority != nil {
		task.Priority = *patch.Priority
	}
	switch {
	case patch.ClearAssignee:
		task.AssignedTo = nil
	case patch.AssignedTo != nil:
		task.AssignedTo = models.NormalizeAssignee(patch.AssignedTo)
	}

	taskOperationCount.WithLabelValues("update", outcome(true)).Inc()
	return task.Clone(), true
}

func (tm *TaskManager) SetFilter(f models.Filter) error {
	if !f.Valid() {
		taskOperationCount.WithLabelValues("filter", "error").Inc()
		return fmt.Errorf("%w: неизвестный фильтр %q", models.ErrInvalidArgument, f)
	}
	tm.filter = f
	taskOperationCount.WithLabelValues("filter", outcome(true)).Inc()
	return nil
}

func (tm *TaskManager) Filter() models.Filter {
	if tm.filter == "" {
		return models.FilterAll
	}
	return tm.filter
}

// ClearAssignee снимает назначение userID со всех задач и возвращает
// число изменённых задач. Вызывается только из Workspace.RemoveUser.
func (tm *TaskManager) ClearAssignee(userID string) int {
	cleared := 0
	for i := range tm.tasks {
		if tm.tasks[i].IsAssignedTo(userID) {
			tm.tasks[i].AssignedTo = nil
			cleared++
		}
	}
	assigneesCleared.Add(float64(cleared))
	return cleared
}

func (tm *TaskManager) GetTask(id string) (models.Task, bool) {
	i := tm.indexOf(id)
	if i < 0 {
		return models.Task{}, false
	}
	return tm.tasks[i].Clone(), true
}

// AllTasks возвращает все задачи без учёта фильтра.
func (tm *TaskManager) AllTasks() []models.Task {
	return SelectTasks(tm.tasks, models.FilterAll)
}

// VisibleTasks - задачи, видимые при текущем фильтре.
func (tm *TaskManager) VisibleTasks() []models.Task {
	return SelectTasks(tm.tasks, tm.Filter())
}

// SelectTasks отбирает задачи по фильтру, сохраняя порядок добавления.
// Результат - копии: изменение их не затрагивает исходный срез.
func SelectTasks(tasks []models.Task, f models.Filter) []models.Task {
	out := make([]models.Task, 0, len(tasks))
	for _, task := range tasks {
		if f != models.FilterAll && f != "" && task.Priority != models.Priority(f) {
			continue
		}
		out = append(out, task.Clone())
	}
	return out
}
