package activity

import (
	"time"

	"github.com/Joseda-hg/lazystreak/internal/model"
)

// Aggregator holds one deployment's policy. Each call reads Now once, so a
// computation that straddles midnight still sees a single "today".
type Aggregator struct {
	Filter      Filter
	Mode        Mode
	WindowWeeks int
	Now         func() time.Time
}

func (a Aggregator) Today() time.Time {
	now := time.Now
	if a.Now != nil {
		now = a.Now
	}
	return model.Day(now())
}

func (a Aggregator) GridOptions() GridOptions {
	return GridOptions{WindowWeeks: a.WindowWeeks, Filter: a.Filter, Mode: a.Mode}
}

func (a Aggregator) Statistics(tasks []model.Task) (Stats, error) {
	return ComputeStatistics(tasks, a.Filter, a.Today())
}

func (a Aggregator) Grid(tasks []model.Task) (Grid, error) {
	return BuildGrid(tasks, a.GridOptions(), a.Today())
}
