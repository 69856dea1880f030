package activity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Joseda-hg/lazystreak/internal/model"
)

var testToday = time.Date(2024, 6, 12, 0, 0, 0, 0, time.UTC)

func daysAgo(n int) time.Time {
	return testToday.AddDate(0, 0, -n)
}

func task(date time.Time, status model.Status) model.Task {
	return model.Task{ID: date.Format(model.DateLayout), Date: date, Description: "practice", Status: status}
}

func TestComputeStatisticsEmpty(t *testing.T) {
	stats, err := ComputeStatistics(nil, FilterAny, testToday)
	require.NoError(t, err)
	assert.Equal(t, Stats{}, stats)
}

func TestComputeStatisticsSingleDay(t *testing.T) {
	tasks := []model.Task{
		task(testToday, model.StatusPending),
		task(testToday, model.StatusCompleted),
		task(testToday.Add(20*time.Hour), model.StatusCompleted),
	}

	stats, err := ComputeStatistics(tasks, FilterAny, testToday)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.ActiveDays)
	assert.Equal(t, 1, stats.MaxStreak)
	assert.Equal(t, 1, stats.CurrentStreak)
	assert.Equal(t, 2, stats.TotalCompleted)
}

func TestComputeStatisticsStreakContinuity(t *testing.T) {
	consecutive := []model.Task{
		task(daysAgo(40), model.StatusPending),
		task(daysAgo(39), model.StatusPending),
		task(daysAgo(38), model.StatusPending),
	}
	stats, err := ComputeStatistics(consecutive, FilterAny, testToday)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.MaxStreak)

	gap := []model.Task{
		task(daysAgo(40), model.StatusPending),
		task(daysAgo(38), model.StatusPending),
	}
	stats, err = ComputeStatistics(gap, FilterAny, testToday)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.MaxStreak)
}

func TestComputeStatisticsCurrentStreakAnchoring(t *testing.T) {
	stale := []model.Task{
		task(daysAgo(5), model.StatusCompleted),
		task(daysAgo(4), model.StatusCompleted),
		task(daysAgo(3), model.StatusCompleted),
		task(daysAgo(2), model.StatusCompleted),
	}
	stats, err := ComputeStatistics(stale, FilterAny, testToday)
	require.NoError(t, err)
	assert.Equal(t, 4, stats.MaxStreak)
	assert.Equal(t, 0, stats.CurrentStreak)

	yesterday := []model.Task{
		task(daysAgo(2), model.StatusCompleted),
		task(daysAgo(1), model.StatusCompleted),
	}
	stats, err = ComputeStatistics(yesterday, FilterAny, testToday)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.CurrentStreak)
}

func TestComputeStatisticsRecentScenario(t *testing.T) {
	tasks := []model.Task{
		task(daysAgo(2), model.StatusCompleted),
		task(daysAgo(1), model.StatusCompleted),
		task(testToday, model.StatusPending),
	}

	stats, err := ComputeStatistics(tasks, FilterAny, testToday)
	require.NoError(t, err)
	assert.Equal(t, Stats{
		TotalCompleted:    2,
		CompletedLastWeek: 2,
		ActiveDays:        3,
		MaxStreak:         3,
		CurrentStreak:     3,
	}, stats)
}

func TestComputeStatisticsIsolatedToday(t *testing.T) {
	tasks := []model.Task{
		task(daysAgo(10), model.StatusPending),
		task(daysAgo(9), model.StatusPending),
		task(testToday, model.StatusPending),
	}

	stats, err := ComputeStatistics(tasks, FilterAny, testToday)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.ActiveDays)
	assert.Equal(t, 2, stats.MaxStreak)
	assert.Equal(t, 1, stats.CurrentStreak)
}

func TestComputeStatisticsCompletedFilter(t *testing.T) {
	tasks := []model.Task{
		task(daysAgo(2), model.StatusCompleted),
		task(daysAgo(1), model.StatusCompleted),
		task(testToday, model.StatusPending),
	}

	stats, err := ComputeStatistics(tasks, FilterCompleted, testToday)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.ActiveDays)
	assert.Equal(t, 2, stats.MaxStreak)
	assert.Equal(t, 2, stats.CurrentStreak)

	pendingOnly := []model.Task{task(testToday, model.StatusPending)}
	stats, err = ComputeStatistics(pendingOnly, FilterCompleted, testToday)
	require.NoError(t, err)
	assert.Equal(t, Stats{}, stats)
}

func TestComputeStatisticsTrailingWeekIsExclusive(t *testing.T) {
	tasks := []model.Task{
		task(daysAgo(7), model.StatusCompleted),
		task(daysAgo(6), model.StatusCompleted),
		task(daysAgo(6), model.StatusPending),
	}

	stats, err := ComputeStatistics(tasks, FilterAny, testToday)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalCompleted)
	assert.Equal(t, 1, stats.CompletedLastWeek)
}

func TestComputeStatisticsRejectsInvalidRecord(t *testing.T) {
	tasks := []model.Task{
		task(testToday, model.StatusCompleted),
		{ID: "broken", Description: "no date", Status: model.StatusPending},
	}

	_, err := ComputeStatistics(tasks, FilterAny, testToday)
	require.ErrorIs(t, err, ErrInvalidRecord)

	var invalid *InvalidRecordError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, 1, invalid.Index)
	assert.Equal(t, "broken", invalid.ID)

	_, err = ComputeStatistics([]model.Task{{ID: "x", Date: testToday, Status: "done"}}, FilterAny, testToday)
	assert.ErrorIs(t, err, ErrInvalidRecord)
}

func TestDayStatisticsIgnoresDuplicates(t *testing.T) {
	dates := []time.Time{daysAgo(1), testToday, daysAgo(1), testToday.Add(3 * time.Hour)}

	stats := DayStatistics(dates, testToday)
	assert.Equal(t, 2, stats.ActiveDays)
	assert.Equal(t, 2, stats.MaxStreak)
	assert.Equal(t, 2, stats.CurrentStreak)
	assert.Zero(t, stats.TotalCompleted)
}

func TestAggregatorHoldsToday(t *testing.T) {
	calls := 0
	agg := Aggregator{
		Filter: FilterAny,
		Now: func() time.Time {
			calls++
			return testToday.Add(23*time.Hour + 59*time.Minute)
		},
	}

	stats, err := agg.Statistics([]model.Task{task(testToday, model.StatusPending)})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.CurrentStreak)
	assert.Equal(t, 1, calls)
}
