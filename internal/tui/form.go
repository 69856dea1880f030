package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/Joseda-hg/lazystreak/internal/model"
)

type formField struct {
	Label string
	Value string
}

const (
	fieldDescription = iota
	fieldDate
)

func buildFormFields(today time.Time) []formField {
	return []formField{
		{Label: "Task"},
		{Label: "Date (YYYY-MM-DD)", Value: model.FormatDay(today)},
	}
}

// parseFormFields leaves an empty description to the session, which owns that
// rule. An empty date means today.
func parseFormFields(fields []formField) (string, time.Time, error) {
	description := strings.TrimSpace(fields[fieldDescription].Value)

	value := strings.TrimSpace(fields[fieldDate].Value)
	if value == "" {
		return description, time.Time{}, nil
	}
	date, err := model.ParseDay(value)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("invalid date, expected YYYY-MM-DD")
	}
	return description, date, nil
}
