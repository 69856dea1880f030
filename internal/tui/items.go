package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/Joseda-hg/lazystreak/internal/activity"
	"github.com/Joseda-hg/lazystreak/internal/app"
	"github.com/Joseda-hg/lazystreak/internal/model"
)

const heatmapLabelWidth = 4

var (
	countGlyphs    = []rune{'·', '░', '▒', '▓', '█'}
	presenceGlyphs = []rune{'·', '█'}
	weekdayLabels  = []string{"Mon", "", "Wed", "", "Fri", "", ""}
)

func formatStatsLine(stats activity.Stats, filter model.StatusFilter) string {
	return fmt.Sprintf("Streak: %d (max %d) | Active days: %s | Completed: %s (7d: %d) | Filter: %s",
		stats.CurrentStreak,
		stats.MaxStreak,
		humanize.Comma(int64(stats.ActiveDays)),
		humanize.Comma(int64(stats.TotalCompleted)),
		stats.CompletedLastWeek,
		filter,
	)
}

func formatTaskSummary(task model.Task, today time.Time) string {
	mark := " "
	if task.Completed() {
		mark = "x"
	}
	return fmt.Sprintf("[%s] %s (%s) | %s", mark, model.FormatDay(task.Date), model.RelativeDay(task.Date, today), task.Description)
}

func glyph(bucket int, mode activity.Mode) rune {
	if bucket < 0 {
		return ' '
	}
	glyphs := countGlyphs
	if mode == activity.ModePresence {
		glyphs = presenceGlyphs
	}
	if bucket >= len(glyphs) {
		bucket = len(glyphs) - 1
	}
	return glyphs[bucket]
}

// heatmapLines renders the grid as a month row followed by one row per
// weekday. When width is too small, the oldest columns are dropped.
func heatmapLines(grid activity.Grid, width int) []string {
	weeks := grid.Weeks
	first := 0
	if available := width - heatmapLabelWidth; available >= 0 && len(weeks) > available {
		first = len(weeks) - available
	}
	weeks = weeks[first:]

	months := []rune(strings.Repeat(" ", len(weeks)+3))
	next := 0
	for _, tick := range grid.Months {
		column := tick.Column - first
		if column < 0 || column < next {
			continue
		}
		copy(months[column:], []rune(tick.Label))
		next = column + len(tick.Label) + 1
	}

	lines := make([]string, 0, 8)
	lines = append(lines, strings.TrimRight(strings.Repeat(" ", heatmapLabelWidth)+string(months), " "))
	for weekday := 0; weekday < 7; weekday++ {
		var b strings.Builder
		fmt.Fprintf(&b, "%-*s", heatmapLabelWidth, weekdayLabels[weekday])
		for _, week := range weeks {
			b.WriteRune(glyph(week.Cells[weekday], grid.Mode))
		}
		lines = append(lines, strings.TrimRight(b.String(), " "))
	}
	return lines
}

func badgeLines(d app.Dashboard) []string {
	lines := []string{}
	if len(d.Badges) == 0 {
		lines = append(lines, "No badges yet")
	}
	for _, badge := range d.Badges {
		lines = append(lines, fmt.Sprintf("★ %d-day streak", badge))
	}
	if d.HasNextBadge {
		lines = append(lines, "", fmt.Sprintf("Next: %d days (%d to go)", d.NextBadge, d.NextBadge-d.Stats.MaxStreak))
	} else {
		lines = append(lines, "", "All badges earned")
	}
	return lines
}
