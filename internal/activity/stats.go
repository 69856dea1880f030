package activity

import (
	"time"

	"github.com/Joseda-hg/lazystreak/internal/model"
)

type Stats struct {
	TotalCompleted    int `json:"total_completed"`
	CompletedLastWeek int `json:"completions_last_7_days"`
	ActiveDays        int `json:"total_active_days"`
	MaxStreak         int `json:"max_streak"`
	CurrentStreak     int `json:"current_streak"`
}

// ComputeStatistics summarizes tasks as of today. The filter only affects which
// days count as active; completion totals always look at completed records.
func ComputeStatistics(tasks []model.Task, filter Filter, today time.Time) (Stats, error) {
	if len(tasks) == 0 {
		return Stats{}, nil
	}

	days, err := ActiveDays(tasks, filter)
	if err != nil {
		return Stats{}, err
	}

	today = model.Day(today)
	weekAgo := today.AddDate(0, 0, -7)

	var stats Stats
	for _, task := range tasks {
		if !task.Completed() {
			continue
		}
		stats.TotalCompleted++
		if model.Day(task.Date).After(weekAgo) {
			stats.CompletedLastWeek++
		}
	}

	stats.ActiveDays = len(days)
	stats.MaxStreak, stats.CurrentStreak = Streaks(days, today)
	return stats, nil
}

// DayStatistics fills the day-based fields from a plain list of activity dates.
func DayStatistics(dates []time.Time, today time.Time) Stats {
	days := CompileDays(dates)
	maxStreak, currentStreak := Streaks(days, model.Day(today))
	return Stats{
		ActiveDays:    len(days),
		MaxStreak:     maxStreak,
		CurrentStreak: currentStreak,
	}
}

// Streaks expects days sorted ascending without duplicates, as returned by
// CompileDays. The current streak is only non-zero when the newest day is
// today or yesterday.
func Streaks(days []time.Time, today time.Time) (maxStreak, currentStreak int) {
	if len(days) == 0 {
		return 0, 0
	}

	maxStreak = 1
	run := 1
	for i := 1; i < len(days); i++ {
		if nextDay(days[i-1]).Equal(days[i]) {
			run++
		} else {
			run = 1
		}
		if run > maxStreak {
			maxStreak = run
		}
	}

	today = model.Day(today)
	last := days[len(days)-1]
	if !last.Equal(today) && !last.Equal(today.AddDate(0, 0, -1)) {
		return maxStreak, 0
	}

	currentStreak = 1
	for i := len(days) - 1; i > 0; i-- {
		if !nextDay(days[i-1]).Equal(days[i]) {
			break
		}
		currentStreak++
	}
	return maxStreak, currentStreak
}
