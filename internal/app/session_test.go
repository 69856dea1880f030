package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Joseda-hg/lazystreak/internal/activity"
	"github.com/Joseda-hg/lazystreak/internal/db"
	"github.com/Joseda-hg/lazystreak/internal/model"
)

var fixedNow = time.Date(2024, 6, 12, 21, 30, 0, 0, time.UTC)

func newTestSession(t *testing.T, filter activity.Filter, source Source) (*Session, *db.MemoryStore) {
	t.Helper()
	store := db.NewMemoryStore()
	backend := &db.Backend{Name: db.BackendMemory, Tasks: store, Activity: store}
	agg := activity.Aggregator{
		Filter: filter,
		Mode:   activity.ModeCount,
		Now:    func() time.Time { return fixedNow },
	}
	session, err := NewSession(backend, agg, source)
	require.NoError(t, err)
	return session, store
}

func day(daysAgo int) time.Time {
	return model.Day(fixedNow).AddDate(0, 0, -daysAgo)
}

func TestAddTaskRejectsBlankDescription(t *testing.T) {
	session, _ := newTestSession(t, activity.FilterAny, SourceTasks)

	_, err := session.AddTask(context.Background(), "   ", day(0))
	assert.ErrorIs(t, err, ErrEmptyDescription)
}

func TestAddTaskDefaultsToToday(t *testing.T) {
	session, _ := newTestSession(t, activity.FilterAny, SourceTasks)

	task, err := session.AddTask(context.Background(), " Meditate ", time.Time{})
	require.NoError(t, err)
	assert.Equal(t, "Meditate", task.Description)
	assert.Equal(t, day(0), task.Date)
	assert.Equal(t, model.StatusPending, task.Status)
}

func TestAddTaskMarksActivityForAnyFilter(t *testing.T) {
	session, store := newTestSession(t, activity.FilterAny, SourceTasks)
	ctx := context.Background()

	_, err := session.AddTask(ctx, "Read", day(2))
	require.NoError(t, err)

	days, err := store.ActiveDays(ctx)
	require.NoError(t, err)
	assert.Equal(t, []time.Time{day(2)}, days)
}

func TestCompletionMarksActivityForCompletedFilter(t *testing.T) {
	session, store := newTestSession(t, activity.FilterCompleted, SourceTasks)
	ctx := context.Background()

	task, err := session.AddTask(ctx, "Read", day(1))
	require.NoError(t, err)
	days, err := store.ActiveDays(ctx)
	require.NoError(t, err)
	assert.Empty(t, days, "pending tasks do not qualify")

	task, err = session.ToggleStatus(ctx, task)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCompleted, task.Status)

	days, err = store.ActiveDays(ctx)
	require.NoError(t, err)
	assert.Equal(t, []time.Time{day(1)}, days)

	task, err = session.ToggleStatus(ctx, task)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, task.Status)

	days, err = store.ActiveDays(ctx)
	require.NoError(t, err)
	assert.Len(t, days, 1, "the activity log is append-only")
}

func TestSetStatusUnknownTask(t *testing.T) {
	session, _ := newTestSession(t, activity.FilterAny, SourceTasks)

	_, err := session.SetStatus(context.Background(), "nope", model.StatusCompleted)
	assert.ErrorIs(t, err, db.ErrNotFound)
}

func TestTasksFilterAndOrder(t *testing.T) {
	session, _ := newTestSession(t, activity.FilterAny, SourceTasks)
	ctx := context.Background()

	older, err := session.AddTask(ctx, "older", day(5))
	require.NoError(t, err)
	_, err = session.AddTask(ctx, "newer", day(1))
	require.NoError(t, err)
	_, err = session.SetStatus(ctx, older.ID, model.StatusCompleted)
	require.NoError(t, err)

	all, err := session.Tasks(ctx, model.FilterAll)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "newer", all[0].Description)
	assert.Equal(t, "older", all[1].Description)

	completed, err := session.Tasks(ctx, model.FilterCompleted)
	require.NoError(t, err)
	require.Len(t, completed, 1)
	assert.Equal(t, older.ID, completed[0].ID)

	pending, err := session.Tasks(ctx, model.FilterPending)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "newer", pending[0].Description)
}

func TestDeleteTask(t *testing.T) {
	session, _ := newTestSession(t, activity.FilterAny, SourceTasks)
	ctx := context.Background()

	task, err := session.AddTask(ctx, "gone soon", day(0))
	require.NoError(t, err)
	require.NoError(t, session.DeleteTask(ctx, task.ID))

	tasks, err := session.Tasks(ctx, model.FilterAll)
	require.NoError(t, err)
	assert.Empty(t, tasks)
	assert.ErrorIs(t, session.DeleteTask(ctx, task.ID), db.ErrNotFound)
}

func TestHistoryUnsupported(t *testing.T) {
	session, _ := newTestSession(t, activity.FilterAny, SourceTasks)

	_, err := session.History(context.Background(), "any")
	assert.ErrorIs(t, err, ErrHistoryUnsupported)
}

func TestDashboardFromTasks(t *testing.T) {
	session, _ := newTestSession(t, activity.FilterAny, SourceTasks)
	ctx := context.Background()

	for _, ago := range []int{0, 1, 2, 4} {
		task, err := session.AddTask(ctx, "run", day(ago))
		require.NoError(t, err)
		if ago%2 == 0 {
			_, err = session.ToggleStatus(ctx, task)
			require.NoError(t, err)
		}
	}

	dash, err := session.Dashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, day(0), dash.Today)
	assert.Equal(t, 4, dash.TaskCount)
	assert.Equal(t, activity.Stats{
		TotalCompleted:    3,
		CompletedLastWeek: 3,
		ActiveDays:        4,
		MaxStreak:         3,
		CurrentStreak:     3,
	}, dash.Stats)
	assert.Equal(t, 4, dash.Grid.Total())
	assert.Empty(t, dash.Badges)
	assert.True(t, dash.HasNextBadge)
	assert.Equal(t, 50, dash.NextBadge)
}

func TestDashboardFromActivityLog(t *testing.T) {
	session, store := newTestSession(t, activity.FilterAny, SourceLog)
	ctx := context.Background()

	_, err := session.AddTask(ctx, "today", day(0))
	require.NoError(t, err)
	for _, ago := range []int{1, 2, 3} {
		require.NoError(t, store.MarkActive(ctx, day(ago)))
	}
	require.NoError(t, store.MarkActive(ctx, day(2)))

	dash, err := session.Dashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, dash.Stats.ActiveDays)
	assert.Equal(t, 4, dash.Stats.MaxStreak)
	assert.Equal(t, 4, dash.Stats.CurrentStreak)
	assert.Equal(t, 0, dash.Stats.TotalCompleted)
	assert.Equal(t, 4, dash.Grid.Total())
}

func TestDashboardEmpty(t *testing.T) {
	session, _ := newTestSession(t, activity.FilterAny, SourceTasks)

	dash, err := session.Dashboard(context.Background())
	require.NoError(t, err)
	assert.Equal(t, activity.Stats{}, dash.Stats)
	assert.Equal(t, 0, dash.Grid.Total())
	assert.Len(t, dash.Grid.Days, activity.DefaultWindowWeeks*7+1)
}

func TestNewSessionRequiresActivityLogForLogSource(t *testing.T) {
	backend := &db.Backend{Name: "bare", Tasks: db.NewMemoryStore()}
	_, err := NewSession(backend, activity.Aggregator{}, SourceLog)
	assert.Error(t, err)
}

func TestParseSource(t *testing.T) {
	source, err := ParseSource("LOG")
	require.NoError(t, err)
	assert.Equal(t, SourceLog, source)

	source, err = ParseSource("")
	require.NoError(t, err)
	assert.Equal(t, SourceTasks, source)

	_, err = ParseSource("calendar")
	assert.Error(t, err)
}
