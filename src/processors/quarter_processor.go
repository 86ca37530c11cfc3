package processors

import (
	"fmt"
	"time"
)

// Window is the date interval covered by one fiscal quarter.
//
// Quarters 1-3 use a half-open interval: End is the first day of the month
// after the quarter and is excluded. Q4 ends on the literal December 31 and
// that day is included. The asymmetry is inherited from how the filings have
// always been computed and is kept on purpose.
type Window struct {
	Start        time.Time
	End          time.Time
	inclusiveEnd bool
}

// QuarterWindow computes the window for a (quarter, year) pair.
func QuarterWindow(quarter, year int) (Window, error) {
	if quarter < 1 || quarter > 4 {
		return Window{}, fmt.Errorf("quarter must be between 1 and 4, got %d", quarter)
	}

	startMonth := time.Month((quarter-1)*3 + 1)
	start := time.Date(year, startMonth, 1, 0, 0, 0, 0, time.UTC)

	if quarter == 4 {
		return Window{
			Start:        start,
			End:          time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC),
			inclusiveEnd: true,
		}, nil
	}

	return Window{
		Start: start,
		End:   time.Date(year, startMonth+3, 1, 0, 0, 0, 0, time.UTC),
	}, nil
}

// Contains reports whether the given date falls inside the window.
func (w Window) Contains(d time.Time) bool {
	if d.Before(w.Start) {
		return false
	}
	if w.inclusiveEnd {
		return !d.After(w.End)
	}
	return d.Before(w.End)
}
