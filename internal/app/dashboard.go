package app

import (
	"context"
	"time"

	"github.com/Joseda-hg/lazystreak/internal/activity"
)

type Dashboard struct {
	Today        time.Time      `json:"today"`
	Stats        activity.Stats `json:"stats"`
	Grid         activity.Grid  `json:"grid"`
	Badges       []int          `json:"badges"`
	NextBadge    int            `json:"next_badge,omitempty"`
	HasNextBadge bool           `json:"has_next_badge"`
	TaskCount    int            `json:"task_count"`
}

// Dashboard loads a fresh snapshot and aggregates it against a single today.
func (s *Session) Dashboard(ctx context.Context) (Dashboard, error) {
	tasks, err := s.store.ListTasks(ctx)
	if err != nil {
		return Dashboard{}, err
	}

	today := s.agg.Today()
	stats, err := activity.ComputeStatistics(tasks, s.agg.Filter, today)
	if err != nil {
		return Dashboard{}, err
	}

	var grid activity.Grid
	if s.source == SourceLog {
		days, err := s.log.ActiveDays(ctx)
		if err != nil {
			return Dashboard{}, err
		}
		dayStats := activity.DayStatistics(days, today)
		stats.ActiveDays = dayStats.ActiveDays
		stats.MaxStreak = dayStats.MaxStreak
		stats.CurrentStreak = dayStats.CurrentStreak
		grid = activity.BuildDayGrid(days, s.agg.GridOptions(), today)
	} else {
		grid, err = activity.BuildGrid(tasks, s.agg.GridOptions(), today)
		if err != nil {
			return Dashboard{}, err
		}
	}

	next, ok := activity.NextBadge(stats.MaxStreak)
	return Dashboard{
		Today:        today,
		Stats:        stats,
		Grid:         grid,
		Badges:       activity.Badges(stats.MaxStreak),
		NextBadge:    next,
		HasNextBadge: ok,
		TaskCount:    len(tasks),
	}, nil
}
