package activity

// BadgeMilestones are the max-streak lengths, in days, that unlock a badge.
var BadgeMilestones = []int{50, 100, 150, 200, 250, 300, 365}

func Badges(maxStreak int) []int {
	earned := make([]int, 0, len(BadgeMilestones))
	for _, milestone := range BadgeMilestones {
		if maxStreak >= milestone {
			earned = append(earned, milestone)
		}
	}
	return earned
}

func NextBadge(maxStreak int) (int, bool) {
	for _, milestone := range BadgeMilestones {
		if maxStreak < milestone {
			return milestone, true
		}
	}
	return 0, false
}
