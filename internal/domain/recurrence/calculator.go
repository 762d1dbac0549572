// Package recurrence derives next-occurrence dates for recurring orders
// and scheduled follow-up contacts.
package recurrence

import (
	"errors"
	"fmt"
	"time"
)

// Interval bounds. Values outside are rejected, never clamped.
const (
	MinIntervalDays = 1
	MaxIntervalDays = 365
)

// ErrInvalidInterval is returned when the interval is outside [1, 365] days
var ErrInvalidInterval = errors.New("interval must be between 1 and 365 days")

// Rule is a recurrence declaration: an anchor date plus an interval in days
type Rule struct {
	Anchor       time.Time `json:"anchor"`
	IntervalDays int       `json:"interval_days"`
}

// Next returns the rule's next occurrence
func (r Rule) Next() (time.Time, error) {
	return NextOccurrence(r.Anchor, r.IntervalDays)
}

// NextOccurrence returns anchor plus intervalDays using calendar-day
// arithmetic, so results stay correct across DST changes.
func NextOccurrence(anchor time.Time, intervalDays int) (time.Time, error) {
	if intervalDays < MinIntervalDays || intervalDays > MaxIntervalDays {
		return time.Time{}, fmt.Errorf("%w: got %d", ErrInvalidInterval, intervalDays)
	}
	return anchor.AddDate(0, 0, intervalDays), nil
}
