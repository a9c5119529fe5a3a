package model

import (
	"fmt"
	"strings"
	"time"
)

const dateOnlyLayout = "2006-01-02"

// DateRange is a closed interval [Start, End]; both bounds are inclusive.
type DateRange struct {
	Start time.Time `json:"startDate" bson:"start_date"`
	End   time.Time `json:"endDate" bson:"end_date"`
}

func (r DateRange) Valid() bool {
	return !r.Start.IsZero() && !r.End.IsZero() && !r.End.Before(r.Start)
}

// Overlaps reports whether the two closed intervals share at least one
// instant. Ranges that touch (one ends exactly when the other starts) overlap.
func (r DateRange) Overlaps(other DateRange) bool {
	return !r.Start.After(other.End) && !r.End.Before(other.Start)
}

// Contains reports whether other lies entirely within r.
func (r DateRange) Contains(other DateRange) bool {
	return !r.Start.After(other.Start) && !r.End.Before(other.End)
}

// ParseDate accepts RFC3339 timestamps and plain YYYY-MM-DD dates (UTC).
func ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse(dateOnlyLayout, value); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, fmt.Errorf("invalid date %q: expected RFC3339 or YYYY-MM-DD", value)
}

func ParseDateRange(start, end string) (DateRange, error) {
	s, err := ParseDate(start)
	if err != nil {
		return DateRange{}, fmt.Errorf("startDate: %w", err)
	}
	e, err := ParseDate(end)
	if err != nil {
		return DateRange{}, fmt.Errorf("endDate: %w", err)
	}
	r := DateRange{Start: s, End: e}
	if !r.Valid() {
		return DateRange{}, fmt.Errorf("endDate must not be before startDate")
	}
	return r, nil
}

// DateWindow is the wire form of a DateRange.
type DateWindow struct {
	StartDate string `json:"startDate" validate:"required"`
	EndDate   string `json:"endDate" validate:"required"`
}

func (w DateWindow) Parse() (DateRange, error) {
	return ParseDateRange(w.StartDate, w.EndDate)
}
