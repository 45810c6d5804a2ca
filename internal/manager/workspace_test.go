package manager

import (
	"context"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskboard/internal/models"
)

func newTestWorkspace(opts ...Option) *Workspace {
	opts = append([]Option{WithIDFunc(sequentialIDs("id"))}, opts...)
	return NewWorkspace(opts...)
}

func TestWorkspaceSeed(t *testing.T) {
	ws := NewWorkspace()

	tasks := ws.VisibleTasks()
	require.Len(t, tasks, 3)
	assert.Equal(t, models.PriorityHigh, tasks[0].Priority)
	assert.Equal(t, models.PriorityMedium, tasks[1].Priority)
	assert.Equal(t, models.PriorityLow, tasks[2].Priority)
	assert.Empty(t, ws.AllUsers())
	assert.Equal(t, models.FilterAll, ws.CurrentFilter())
}

func TestWorkspaceFilterMedium(t *testing.T) {
	ws := NewWorkspace()
	ctx := context.Background()

	require.NoError(t, ws.SetTaskFilter(ctx, models.FilterMedium))

	tasks := ws.VisibleTasks()
	require.Len(t, tasks, 1)
	assert.Equal(t, "sdfkgsfssffosruhfgg", tasks[0].ID)
	assert.Equal(t, models.FilterMedium, ws.CurrentFilter())
}

func TestWorkspaceInvalidFilter(t *testing.T) {
	ws := NewWorkspace()
	ctx := context.Background()
	require.NoError(t, ws.SetTaskFilter(ctx, models.FilterHigh))

	err := ws.SetTaskFilter(ctx, models.Filter("everything"))
	require.ErrorIs(t, err, models.ErrInvalidArgument)
	assert.Equal(t, models.FilterHigh, ws.CurrentFilter())
}

func TestRemoveUserClearsAssignee(t *testing.T) {
	ws := newTestWorkspace(WithSeed(nil))
	ctx := context.Background()

	alice := ws.AddUser(ctx, models.UserDraft{Name: "Alice"})
	require.NotEmpty(t, alice.ID)

	task := ws.AddTask(ctx, models.TaskDraft{
		Title:      "T",
		Priority:   models.PriorityLow,
		AssignedTo: &alice.ID,
	})
	require.True(t, task.IsAssignedTo(alice.ID))

	assert.True(t, ws.RemoveUser(ctx, alice.ID))

	tasks := ws.VisibleTasks()
	require.Len(t, tasks, 1)
	assert.Nil(t, tasks[0].AssignedTo)
	assert.Empty(t, ws.AllUsers())

	// повторное удаление - no-op
	assert.False(t, ws.RemoveUser(ctx, alice.ID))
	assert.Len(t, ws.VisibleTasks(), 1)
}

func TestRemoveUserKeepsOtherAssignments(t *testing.T) {
	ws := newTestWorkspace(WithSeed(nil))
	ctx := context.Background()

	alice := ws.AddUser(ctx, models.UserDraft{Name: "Alice"})
	bob := ws.AddUser(ctx, models.UserDraft{Name: "Bob"})
	ws.AddTask(ctx, models.TaskDraft{Title: "a", AssignedTo: &alice.ID})
	ws.AddTask(ctx, models.TaskDraft{Title: "b", AssignedTo: &bob.ID})

	ws.RemoveUser(ctx, alice.ID)

	tasks := ws.VisibleTasks()
	assert.Nil(t, tasks[0].AssignedTo)
	assert.True(t, tasks[1].IsAssignedTo(bob.ID))

	users := ws.AllUsers()
	require.Len(t, users, 1)
	assert.Equal(t, "Bob", users[0].Name)
}

func TestAddUserPassesAttributesThrough(t *testing.T) {
	ws := newTestWorkspace()
	ctx := context.Background()

	attrs := map[string]any{"email": "alice@example.com", "age": 30}
	user := ws.AddUser(ctx, models.UserDraft{Name: "Alice", Attributes: attrs})

	attrs["email"] = "changed"
	got := ws.AllUsers()[0]
	assert.Equal(t, user.ID, got.ID)
	assert.Equal(t, "alice@example.com", got.Attributes["email"])
	assert.Equal(t, 30, got.Attributes["age"])
}

func TestAssignToUnknownUserIsAllowed(t *testing.T) {
	ws := newTestWorkspace(WithSeed(nil))
	ctx := context.Background()

	ghost := "no-such-user"
	task := ws.AddTask(ctx, models.TaskDraft{Title: "T", AssignedTo: &ghost})
	assert.True(t, task.IsAssignedTo(ghost))
}

func TestRemoveUserMetrics(t *testing.T) {
	ws := newTestWorkspace(WithSeed(nil))
	ctx := context.Background()
	user := ws.AddUser(ctx, models.UserDraft{Name: "Alice"})
	ws.AddTask(ctx, models.TaskDraft{Title: "a", AssignedTo: &user.ID})
	ws.AddTask(ctx, models.TaskDraft{Title: "b", AssignedTo: &user.ID})

	removedBefore := testutil.ToFloat64(removeUserCount.WithLabelValues("applied"))
	clearedBefore := testutil.ToFloat64(assigneesCleared)

	ws.RemoveUser(ctx, user.ID)

	assert.Equal(t, 1.0, testutil.ToFloat64(removeUserCount.WithLabelValues("applied"))-removedBefore)
	assert.Equal(t, 2.0, testutil.ToFloat64(assigneesCleared)-clearedBefore)
}

func TestSnapshotIgnoresFilter(t *testing.T) {
	at := time.Date(2025, 11, 1, 12, 0, 0, 0, time.UTC)
	ws := newTestWorkspace(WithClock(func() time.Time { return at }))
	ctx := context.Background()
	require.NoError(t, ws.SetTaskFilter(ctx, models.FilterLow))
	ws.AddUser(ctx, models.UserDraft{Name: "Alice"})

	snap := ws.Snapshot()
	assert.Len(t, snap.Tasks, 3)
	assert.Len(t, snap.Users, 1)
	assert.Equal(t, models.FilterLow, snap.Filter)
	assert.Equal(t, at, snap.TakenAt)
}

// Случайные последовательности команд: после каждого RemoveUser
// ни одна задача не ссылается на удалённого пользователя.
func TestReferentialIntegrityUnderRandomOperations(t *testing.T) {
	ws := newTestWorkspace()
	ctx := context.Background()
	rng := rand.New(rand.NewSource(42))

	var userIDs []string
	for i := 0; i < 500; i++ {
		switch rng.Intn(5) {
		case 0:
			userIDs = append(userIDs, ws.AddUser(ctx, models.UserDraft{Name: "u"}).ID)
		case 1, 2:
			draft := models.TaskDraft{Title: "t", Priority: models.Priorities[rng.Intn(3)]}
			if len(userIDs) > 0 {
				id := userIDs[rng.Intn(len(userIDs))]
				draft.AssignedTo = &id
			}
			ws.AddTask(ctx, draft)
		case 3:
			if tasks := ws.VisibleTasks(); len(tasks) > 0 {
				ws.RemoveTask(ctx, tasks[rng.Intn(len(tasks))].ID)
			}
		case 4:
			if len(userIDs) == 0 {
				continue
			}
			id := userIDs[rng.Intn(len(userIDs))]
			ws.RemoveUser(ctx, id)

			for _, task := range ws.VisibleTasks() {
				require.False(t, task.IsAssignedTo(id), "task %s still references %s", task.ID, id)
			}
		}
	}
}

func TestRemoveUserAtomicForReaders(t *testing.T) {
	ws := newTestWorkspace(WithSeed(nil))
	ctx := context.Background()

	const n = 50
	users := make([]models.User, n)
	for i := range users {
		users[i] = ws.AddUser(ctx, models.UserDraft{Name: "u"})
		ws.AddTask(ctx, models.TaskDraft{Title: "t", AssignedTo: &users[i].ID})
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for _, u := range users {
			ws.RemoveUser(ctx, u.ID)
		}
	}()

	// Читатель не должен увидеть задачу, ссылающуюся на отсутствующего пользователя
	for i := 0; i < 200; i++ {
		snap := ws.Snapshot()
		present := make(map[string]bool, len(snap.Users))
		for _, u := range snap.Users {
			present[u.ID] = true
		}
		for _, task := range snap.Tasks {
			if task.AssignedTo != nil {
				require.True(t, present[*task.AssignedTo], "dangling reference %s", *task.AssignedTo)
			}
		}
	}
	wg.Wait()
}

func TestToggleTaskCompleteReturnsNewState(t *testing.T) {
	ws := newTestWorkspace(WithSeed(nil))
	ctx := context.Background()
	task := ws.AddTask(ctx, models.TaskDraft{Title: "T", Priority: models.PriorityLow})

	got, ok := ws.ToggleTaskComplete(ctx, task.ID)
	require.True(t, ok)
	assert.Equal(t, task.ID, got.ID)
	assert.True(t, got.IsCompleted)

	got, ok = ws.ToggleTaskComplete(ctx, task.ID)
	require.True(t, ok)
	assert.False(t, got.IsCompleted)

	got, ok = ws.ToggleTaskComplete(ctx, "missing")
	assert.False(t, ok)
	assert.Empty(t, got.ID)
}

// Два параллельных переключения должны вернуть разные состояния,
// а переключение, пересёкшееся с удалением, - либо задачу, либо ничего.
func TestToggleTaskCompleteConcurrent(t *testing.T) {
	ctx := context.Background()

	for i := 0; i < 100; i++ {
		ws := newTestWorkspace(WithSeed(nil))
		task := ws.AddTask(ctx, models.TaskDraft{Title: "T"})

		var (
			wg      sync.WaitGroup
			mu      sync.Mutex
			results []bool
		)
		for j := 0; j < 2; j++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				got, ok := ws.ToggleTaskComplete(ctx, task.ID)
				if !ok {
					return
				}
				assert.Equal(t, task.ID, got.ID)
				mu.Lock()
				results = append(results, got.IsCompleted)
				mu.Unlock()
			}()
		}
		wg.Wait()
		assert.ElementsMatch(t, []bool{true, false}, results)

		wg.Add(2)
		go func() {
			defer wg.Done()
			if got, ok := ws.ToggleTaskComplete(ctx, task.ID); ok {
				assert.Equal(t, task.ID, got.ID)
				assert.True(t, got.IsCompleted)
			}
		}()
		go func() {
			defer wg.Done()
			ws.RemoveTask(ctx, task.ID)
		}()
		wg.Wait()
	}
}
