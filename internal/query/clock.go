package query

import "time"

// Clock supplies the date used to scope listings to the current calendar
// day. Injected so the engine stays deterministic under test.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock reads the process clock.
func SystemClock() Clock { return systemClock{} }

// FixedClock always returns t. Test helper.
type FixedClock struct {
	T time.Time
}

func (c FixedClock) Now() time.Time { return c.T }

// DateParts holds the calendar components compared against the derived
// month/day/year of each candidate record.
type DateParts struct {
	Year  int
	Month int
	Day   int
}

// DatePartsOf splits t into its calendar components.
func DatePartsOf(t time.Time) DateParts {
	y, m, d := t.Date()
	return DateParts{Year: y, Month: int(m), Day: d}
}
