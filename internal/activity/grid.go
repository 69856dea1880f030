package activity

import (
	"fmt"
	"strings"
	"time"

	"github.com/Joseda-hg/lazystreak/internal/model"
)

const DefaultWindowWeeks = 53

// Mode picks the bucket table used for heatmap intensity.
type Mode string

const (
	ModeCount    Mode = "count"
	ModePresence Mode = "presence"
)

func ParseMode(value string) (Mode, error) {
	switch Mode(strings.TrimSpace(strings.ToLower(value))) {
	case ModeCount, "":
		return ModeCount, nil
	case ModePresence:
		return ModePresence, nil
	default:
		return "", fmt.Errorf("unknown grid mode %q", value)
	}
}

// Levels is the number of distinct buckets the mode produces.
func (m Mode) Levels() int {
	if m == ModePresence {
		return 2
	}
	return 5
}

// Bucket maps a raw daily count to its intensity level.
func Bucket(count int, mode Mode) int {
	if count <= 0 {
		return 0
	}
	if mode == ModePresence {
		return 1
	}
	switch {
	case count <= 2:
		return 1
	case count <= 5:
		return 2
	case count <= 8:
		return 3
	default:
		return 4
	}
}

// GridOptions configures BuildGrid. A zero WindowWeeks means DefaultWindowWeeks.
type GridOptions struct {
	WindowWeeks int
	Filter      Filter
	Mode        Mode
}

type DayCell struct {
	Date   time.Time `json:"date"`
	Count  int       `json:"count"`
	Bucket int       `json:"bucket"`
}

// Week is one grid column. Cells is indexed Monday=0 through Sunday=6 and holds
// -1 for days outside the window.
type Week struct {
	Year  int       `json:"year"`
	Week  int       `json:"week"`
	Start time.Time `json:"start"`
	Cells [7]int    `json:"cells"`
}

type MonthTick struct {
	Label  string `json:"label"`
	Column int    `json:"column"`
}

type Grid struct {
	Start  time.Time   `json:"start"`
	End    time.Time   `json:"end"`
	Mode   Mode        `json:"mode"`
	Days   []DayCell   `json:"days"`
	Weeks  []Week      `json:"weeks"`
	Months []MonthTick `json:"months"`
}

// BuildGrid buckets qualifying tasks per day over the trailing window ending today.
func BuildGrid(tasks []model.Task, opts GridOptions, today time.Time) (Grid, error) {
	if err := validate(tasks); err != nil {
		return Grid{}, err
	}
	counts := make(map[time.Time]int, len(tasks))
	for _, task := range tasks {
		if opts.Filter.Qualifies(task) {
			counts[model.Day(task.Date)]++
		}
	}
	return buildGrid(counts, opts, today), nil
}

// BuildDayGrid builds the grid from a plain list of activity dates; every
// distinct date contributes a count of one.
func BuildDayGrid(dates []time.Time, opts GridOptions, today time.Time) Grid {
	days := CompileDays(dates)
	counts := make(map[time.Time]int, len(days))
	for _, day := range days {
		counts[day] = 1
	}
	return buildGrid(counts, opts, today)
}

func buildGrid(counts map[time.Time]int, opts GridOptions, today time.Time) Grid {
	weeks := opts.WindowWeeks
	if weeks == 0 {
		weeks = DefaultWindowWeeks
	}
	if weeks < 0 {
		weeks = 0
	}
	mode := opts.Mode
	if mode == "" {
		mode = ModeCount
	}

	end := model.Day(today)
	start := end.AddDate(0, 0, -weeks*7)

	grid := Grid{
		Start: start,
		End:   end,
		Mode:  mode,
		Days:  make([]DayCell, 0, weeks*7+1),
	}

	for day := start; !day.After(end); day = nextDay(day) {
		count := counts[day]
		if mode == ModePresence && count > 0 {
			count = 1
		}
		bucket := Bucket(count, mode)
		grid.Days = append(grid.Days, DayCell{Date: day, Count: count, Bucket: bucket})

		year, week := day.ISOWeek()
		last := len(grid.Weeks) - 1
		if last < 0 || grid.Weeks[last].Year != year || grid.Weeks[last].Week != week {
			grid.Weeks = append(grid.Weeks, newWeek(day, year, week))
			last++
		}
		grid.Weeks[last].Cells[weekdayIndex(day)] = bucket
	}

	grid.Months = MonthTicks(grid.Weeks)
	return grid
}

func newWeek(day time.Time, year, week int) Week {
	w := Week{
		Year:  year,
		Week:  week,
		Start: day.AddDate(0, 0, -weekdayIndex(day)),
	}
	for i := range w.Cells {
		w.Cells[i] = -1
	}
	return w
}

// weekdayIndex returns Monday=0 through Sunday=6.
func weekdayIndex(day time.Time) int {
	return (int(day.Weekday()) + 6) % 7
}

// MonthTicks labels the first column of every month, judged by each column's Monday.
func MonthTicks(weeks []Week) []MonthTick {
	ticks := make([]MonthTick, 0, 13)
	var lastMonth time.Month
	for i, week := range weeks {
		month := week.Start.Month()
		if i > 0 && month == lastMonth {
			continue
		}
		ticks = append(ticks, MonthTick{Label: week.Start.Format("Jan"), Column: i})
		lastMonth = month
	}
	return ticks
}

// Row returns the buckets of one weekday across all columns.
func (g Grid) Row(weekday int) []int {
	row := make([]int, 0, len(g.Weeks))
	for _, week := range g.Weeks {
		row = append(row, week.Cells[weekday])
	}
	return row
}

// Total sums the raw counts over the window.
func (g Grid) Total() int {
	total := 0
	for _, day := range g.Days {
		total += day.Count
	}
	return total
}
