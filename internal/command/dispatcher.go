// Package command разбирает текстовые команды (из консоли или Telegram)
// и выполняет их над Workspace.
package command

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"taskboard/internal/logger"
	"taskboard/internal/manager"
	"taskboard/internal/models"
	"taskboard/internal/render"
)

// ErrUsage - команда не распознана или вызвана с неверными аргументами.
var ErrUsage = errors.New("usage")

var commandDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "taskboard_command_duration_seconds",
		Help:    "Duration of text commands in seconds",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"command"},
)

type handler func(ctx context.Context, args []string) (string, error)

type Dispatcher struct {
	ws       *manager.Workspace
	opts     render.Options
	handlers map[string]handler
	export   ExportFunc
}

func NewDispatcher(ws *manager.Workspace, opts render.Options) *Dispatcher {
	d := &Dispatcher{ws: ws, opts: opts}
	d.handlers = map[string]handler{
		"add":     d.addTask,
		"done":    d.toggleTask,
		"toggle":  d.toggleTask,
		"delete":  d.deleteTask,
		"edit":    d.editTask,
		"filter":  d.setFilter,
		"list":    d.listTasks,
		"adduser": d.addUser,
		"rmuser":  d.removeUser,
		"users":   d.listUsers,
		"export":  d.exportSnapshot,
		"help":    d.help,
		"start":   d.help,
	}
	return d
}

// Exec выполняет одну строку. Пустая строка - пустой ответ без ошибки.
func (d *Dispatcher) Exec(ctx context.Context, line string) (string, error) {
	args, err := splitArgs(line)
	if err != nil {
		return "", err
	}
	if len(args) == 0 {
		return "", nil
	}

	name := commandName(args[0])
	h, ok := d.handlers[name]
	if !ok {
		return "", fmt.Errorf("%w: unknown command %q, try help", ErrUsage, args[0])
	}

	start := time.Now()
	defer func() {
		commandDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
	}()

	ctx = logger.WithFields(ctx, "command", name)
	out, err := h(ctx, args[1:])
	if err != nil {
		logger.Debug(ctx, "Команда завершилась ошибкой", "error", err)
	}
	return out, err
}

// commandName убирает "/" и суффикс "@botname" у команд Telegram.
func commandName(word string) string {
	word = strings.TrimPrefix(word, "/")
	if i := strings.IndexByte(word, '@'); i >= 0 {
		word = word[:i]
	}
	return strings.ToLower(word)
}

func (d *Dispatcher) addTask(ctx context.Context, args []string) (string, error) {
	words, kv := splitKeyValues(args)
	if len(words) == 0 {
		return "", fmt.Errorf("%w: add <title> [desc=..] [due=..] [priority=low|medium|high] [assignee=<user-id>]", ErrUsage)
	}
	if err := checkKeys(kv, "desc", "due", "priority", "assignee"); err != nil {
		return "", err
	}

	draft := models.TaskDraft{
		Title:       strings.Join(words, " "),
		Description: kv["desc"],
		DueDate:     kv["due"],
		Priority:    models.PriorityMedium,
	}
	if p, ok := kv["priority"]; ok {
		priority, err := models.ParsePriority(p)
		if err != nil {
			return "", err
		}
		draft.Priority = priority
	}
	if a, ok := kv["assignee"]; ok {
		draft.AssignedTo = &a
	}

	task := d.ws.AddTask(ctx, draft)
	return fmt.Sprintf("Added task %s", task.ID), nil
}

func (d *Dispatcher) toggleTask(ctx context.Context, args []string) (string, error) {
	if len(args) != 1 {
		return "", fmt.Errorf("%w: done <task-id>", ErrUsage)
	}
	task, ok := d.ws.ToggleTaskComplete(ctx, args[0])
	if !ok {
		return fmt.Sprintf("Task %s not found", args[0]), nil
	}
	status := "pending"
	if task.IsCompleted {
		status = "completed"
	}
	return fmt.Sprintf("Task %s marked as %s", task.ID, status), nil
}

func (d *Dispatcher) deleteTask(ctx context.Context, args []string) (string, error) {
	if len(args) != 1 {
		return "", fmt.Errorf("%w: delete <task-id>", ErrUsage)
	}
	if !d.ws.RemoveTask(ctx, args[0]) {
		return fmt.Sprintf("Task %s not found", args[0]), nil
	}
	return fmt.Sprintf("Task %s deleted", args[0]), nil
}

func (d *Dispatcher) editTask(ctx context.Context, args []string) (string, error) {
	if len(args) < 2 {
		return "", fmt.Errorf("%w: edit <task-id> [title=..] [desc=..] [due=..] [priority=..] [assignee=<user-id>|assignee=]", ErrUsage)
	}
	words, kv := splitKeyValues(args[1:])
	if len(words) > 0 {
		return "", fmt.Errorf("%w: unexpected argument %q, use key=value", ErrUsage, words[0])
	}
	if err := checkKeys(kv, "title", "desc", "due", "priority", "assignee"); err != nil {
		return "", err
	}

	var patch models.TaskPatch
	if v, ok := kv["title"]; ok {
		patch.Title = &v
	}
	if v, ok := kv["desc"]; ok {
		patch.Description = &v
	}
	if v, ok := kv["due"]; ok {
		patch.DueDate = &v
	}
	if v, ok := kv["priority"]; ok {
		p, err := models.ParsePriority(v)
		if err != nil {
			return "", err
		}
		patch.Priority = &p
	}
	if v, ok := kv["assignee"]; ok {
		if v == "" {
			patch.ClearAssignee = true
		} else {
			patch.AssignedTo = &v
		}
	}

	if _, ok := d.ws.UpdateTask(ctx, args[0], patch); !ok {
		return fmt.Sprintf("Task %s not found", args[0]), nil
	}
	return fmt.Sprintf("Task %s updated", args[0]), nil
}

func (d *Dispatcher) setFilter(ctx context.Context, args []string) (string, error) {
	if len(args) == 0 {
		return fmt.Sprintf("Filter: %s", d.ws.CurrentFilter()), nil
	}
	f, err := models.ParseFilter(args[0])
	if err != nil {
		return "", err
	}
	if err := d.ws.SetTaskFilter(ctx, f); err != nil {
		return "", err
	}
	return fmt.Sprintf("Filter set to %s", f), nil
}

func (d *Dispatcher) listTasks(_ context.Context, _ []string) (string, error) {
	tasks := d.ws.VisibleTasks()
	if len(tasks) == 0 {
		return "No tasks found", nil
	}

	var buf bytes.Buffer
	if err := render.Tasks(&buf, tasks, d.ws.AllUsers(), d.opts); err != nil {
		return "", err
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}

func (d *Dispatcher) addUser(ctx context.Context, args []string) (string, error) {
	words, kv := splitKeyValues(args)
	if len(words) == 0 {
		return "", fmt.Errorf("%w: adduser <name> [key=value ...]", ErrUsage)
	}

	draft := models.UserDraft{Name: strings.Join(words, " ")}
	if len(kv) > 0 {
		draft.Attributes = make(map[string]any, len(kv))
		for k, v := range kv {
			draft.Attributes[k] = v
		}
	}

	user := d.ws.AddUser(ctx, draft)
	return fmt.Sprintf("Added user %s (%s)", user.Name, user.ID), nil
}

func (d *Dispatcher) removeUser(ctx context.Context, args []string) (string, error) {
	if len(args) != 1 {
		return "", fmt.Errorf("%w: rmuser <user-id>", ErrUsage)
	}
	if !d.ws.RemoveUser(ctx, args[0]) {
		return fmt.Sprintf("User %s not found", args[0]), nil
	}
	return fmt.Sprintf("User %s removed", args[0]), nil
}

func (d *Dispatcher) listUsers(_ context.Context, _ []string) (string, error) {
	users := d.ws.AllUsers()
	if len(users) == 0 {
		return "No users found", nil
	}

	var buf bytes.Buffer
	if err := render.Users(&buf, users, d.opts); err != nil {
		return "", err
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}

func (d *Dispatcher) help(_ context.Context, _ []string) (string, error) {
	return Usage, nil
}

const Usage = `Commands:
  add <title> [desc=..] [due=..] [priority=low|medium|high] [assignee=<user-id>]
  done <task-id>                     Toggle completion
  delete <task-id>                   Delete task
  edit <task-id> key=value ...       Edit title, desc, due, priority, assignee (empty clears)
  filter [all|low|medium|high]       Show or set the priority filter
  list                               List visible tasks
  adduser <name> [key=value ...]     Add user
  rmuser <user-id>                   Remove user and unassign their tasks
  users                              List users
  export [path]                      Write a snapshot to SQLite
  help                               Show this help

Values with spaces go in quotes: desc="two words". Escape quotes with \".
Quote ; & | < > ( ) and apostrophes too.`

func checkKeys(kv map[string]string, allowed ...string) error {
	var unknown []string
	for k := range kv {
		if !slices.Contains(allowed, k) {
			unknown = append(unknown, k)
		}
	}
	if len(unknown) > 0 {
		slices.Sort(unknown)
		return fmt.Errorf("%w: unknown key(s) %s", ErrUsage, strings.Join(unknown, ", "))
	}
	return nil
}
