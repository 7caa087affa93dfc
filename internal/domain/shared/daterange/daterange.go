package daterange

import (
	"errors"
	"time"
)

var (
	ErrInvalidRange = errors.New("daterange: end must not precede start")
)

// DateRange represents an inclusive span of calendar days [Start, End].
// Both bounds are normalized to midnight UTC.
type DateRange struct {
	Start time.Time
	End   time.Time
}

func New(start, end time.Time) (DateRange, error) {
	dr := DateRange{Start: Day(start), End: Day(end)}
	if err := dr.Validate(); err != nil {
		return DateRange{}, err
	}
	return dr, nil
}

// Single builds a one-day range.
func Single(day time.Time) DateRange {
	d := Day(day)
	return DateRange{Start: d, End: d}
}

func (dr DateRange) Validate() error {
	if dr.Start.IsZero() || dr.End.IsZero() {
		return ErrInvalidRange
	}
	if dr.End.Before(dr.Start) {
		return ErrInvalidRange
	}
	return nil
}

// Days returns the number of calendar days covered, both ends inclusive.
func (dr DateRange) Days() int {
	return int(dr.End.Sub(dr.Start).Hours()/24) + 1
}

func (dr DateRange) ContainsDate(t time.Time) bool {
	d := Day(t)
	return !d.Before(dr.Start) && !d.After(dr.End)
}

// Each invokes fn once per day from Start to End. fn returning false stops
// the iteration early.
func (dr DateRange) Each(fn func(day time.Time) bool) {
	for d := dr.Start; !d.After(dr.End); d = d.AddDate(0, 0, 1) {
		if !fn(d) {
			return
		}
	}
}

// Day truncates a timestamp to midnight UTC.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
