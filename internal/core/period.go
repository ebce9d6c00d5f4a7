package core

import (
	"fmt"
	"time"
)

// Period selects one calendar month.
type Period struct {
	Year  int
	Month time.Month
}

// PeriodFromIndex builds a Period from the 0..11 month index the dashboard
// month selector uses.
func PeriodFromIndex(year, idx int) (Period, error) {
	if idx < 0 || idx > 11 {
		return Period{}, ErrInvalidMonth
	}
	return Period{Year: year, Month: time.Month(idx + 1)}, nil
}

// CurrentPeriod returns the month containing now.
func CurrentPeriod(now time.Time) Period {
	return Period{Year: now.Year(), Month: now.Month()}
}

func (p Period) Validate() error {
	if p.Month < time.January || p.Month > time.December {
		return ErrInvalidMonth
	}
	if p.Year < 1 {
		return fmt.Errorf("%w: %d", ErrInvalidYear, p.Year)
	}
	return nil
}

// Contains reports whether d falls in the period. Only the calendar fields of
// d are compared.
func (p Period) Contains(d Date) bool {
	return d.Year() == p.Year && d.Month() == p.Month
}

// String renders the period as YYYY-MM.
func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, int(p.Month))
}

// Label renders the period as "January 2025".
func (p Period) Label() string {
	return fmt.Sprintf("%s %d", p.Month, p.Year)
}
