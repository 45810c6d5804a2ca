package manager

import (
	"context"
	"sync"
	"time"

	"taskboard/internal/logger"
	"taskboard/internal/models"
)

// Workspace объединяет задачи и пользователей под одним мьютексом.
// Все команды UI идут через него, поэтому удаление пользователя и
// очистка ссылок на него в задачах выглядят для читателя как один шаг.
type Workspace struct {
	mu    sync.RWMutex
	tasks *TaskManager
	users *UserManager
	now   func() time.Time
}

type Option func(*workspaceOptions)

type workspaceOptions struct {
	seed  []models.Task
	newID IDFunc
	now   func() time.Time
}

// WithSeed заменяет стандартный начальный список задач.
func WithSeed(tasks []models.Task) Option {
	return func(o *workspaceOptions) { o.seed = tasks }
}

func WithIDFunc(f IDFunc) Option {
	return func(o *workspaceOptions) { o.newID = f }
}

func WithClock(now func() time.Time) Option {
	return func(o *workspaceOptions) { o.now = now }
}

func NewWorkspace(opts ...Option) *Workspace {
	o := workspaceOptions{
		seed:  DefaultSeedTasks(),
		newID: NewID,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}

	return &Workspace{
		tasks: NewTaskManager(o.seed, o.newID),
		users: NewUserManager(o.newID),
		now:   o.now,
	}
}

func (w *Workspace) AddTask(ctx context.Context, draft models.TaskDraft) models.Task {
	w.mu.Lock()
	defer w.mu.Unlock()

	task := w.tasks.AddTask(draft)
	logger.Info(ctx, "Задача добавлена", "taskID", task.ID, "priority", task.Priority)
	return task
}

func (w *Workspace) RemoveTask(ctx context.Context, id string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	removed := w.tasks.DeleteTask(id)
	logger.Debug(ctx, "Удаление задачи", "taskID", id, "removed", removed)
	return removed
}

// ToggleTaskComplete возвращает задачу в том состоянии, в которое её
// перевёл именно этот вызов.
func (w *Workspace) ToggleTaskComplete(ctx context.Context, id string) (models.Task, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.tasks.ToggleComplete(id) {
		logger.Debug(ctx, "Переключение статуса задачи", "taskID", id, "toggled", false)
		return models.Task{}, false
	}
	task, _ := w.tasks.GetTask(id)
	logger.Debug(ctx, "Переключение статуса задачи", "taskID", id, "toggled", true, "completed", task.IsCompleted)
	return task, true
}

func (w *Workspace) UpdateTask(ctx context.Context, id string, patch models.TaskPatch) (models.Task, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	task, ok := w.tasks.UpdateTask(id, patch)
	logger.Debug(ctx, "Редактирование задачи", "taskID", id, "updated", ok)
	return task, ok
}

func (w *Workspace) SetTaskFilter(ctx context.Context, f models.Filter) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.tasks.SetFilter(f); err != nil {
		logger.Warn(ctx, "Отклонён фильтр", "filter", f)
		return err
	}
	return nil
}

func (w *Workspace) AddUser(ctx context.Context, draft models.UserDraft) models.User {
	w.mu.Lock()
	defer w.mu.Unlock()

	user := w.users.AddUser(draft)
	logger.Info(ctx, "Пользователь создан", "userID", user.ID, "name", user.Name)
	return user
}

// RemoveUser удаляет пользователя и в том же критическом участке снимает
// его со всех задач. ClearAssignee вызывается ровно один раз на вызов,
// даже если пользователя уже нет: операция идемпотентна.
func (w *Workspace) RemoveUser(ctx context.Context, id string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	removed := w.users.RemoveUser(id)
	cleared := w.tasks.ClearAssignee(id)

	removeUserCount.WithLabelValues(outcome(removed)).Inc()
	logger.Info(ctx, "Удаление пользователя", "userID", id, "removed", removed, "tasksUnassigned", cleared)
	return removed
}

func (w *Workspace) VisibleTasks() []models.Task {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.tasks.VisibleTasks()
}

func (w *Workspace) Task(id string) (models.Task, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.tasks.GetTask(id)
}

func (w *Workspace) AllUsers() []models.User {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.users.AllUsers()
}

func (w *Workspace) CurrentFilter() models.Filter {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.tasks.Filter()
}

// Snapshot снимает состояние под одной блокировкой чтения.
func (w *Workspace) Snapshot() models.Snapshot {
	w.mu.RLock()
	defer w.mu.RUnlock()

	return models.Snapshot{
		Tasks:   w.tasks.AllTasks(),
		Users:   w.users.AllUsers(),
		Filter:  w.tasks.Filter(),
		TakenAt: w.now(),
	}
}
