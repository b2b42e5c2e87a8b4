package domain

import (
	"fmt"
	"time"
)

// Period is an inclusive calendar month range
type Period struct {
	StartYear  int `json:"start_year" yaml:"start_year" validate:"required,min=1900,max=9999"`
	StartMonth int `json:"start_month" yaml:"start_month" validate:"required,min=1,max=12"`
	EndYear    int `json:"end_year" yaml:"end_year" validate:"required,min=1900,max=9999"`
	EndMonth   int `json:"end_month" yaml:"end_month" validate:"required,min=1,max=12"`
}

// NewPeriod builds a period from its four bounds
func NewPeriod(startYear, startMonth, endYear, endMonth int) Period {
	return Period{
		StartYear:  startYear,
		StartMonth: startMonth,
		EndYear:    endYear,
		EndMonth:   endMonth,
	}
}

// Start returns the first instant of the start month (UTC)
func (p Period) Start() time.Time {
	return p.startIn(time.UTC)
}

// End returns 23:59:59 on the last calendar day of the end month (UTC)
func (p Period) End() time.Time {
	return p.endIn(time.UTC)
}

func (p Period) startIn(loc *time.Location) time.Time {
	return time.Date(p.StartYear, time.Month(p.StartMonth), 1, 0, 0, 0, 0, loc)
}

func (p Period) endIn(loc *time.Location) time.Time {
	firstOfNext := time.Date(p.EndYear, time.Month(p.EndMonth), 1, 0, 0, 0, 0, loc).AddDate(0, 1, 0)
	lastDay := firstOfNext.AddDate(0, 0, -1)
	return lastDay.Add(23*time.Hour + 59*time.Minute + 59*time.Second)
}

// IsValid checks that both months are within 1..12
func (p Period) IsValid() bool {
	return p.StartMonth >= 1 && p.StartMonth <= 12 &&
		p.EndMonth >= 1 && p.EndMonth <= 12
}

// IsOrdered checks that the start does not come after the end
func (p Period) IsOrdered() bool {
	return !p.Start().After(p.End())
}

// Contains reports whether t falls inside the period, both ends inclusive.
// The bounds are taken in t's own location, so membership follows the
// calendar month t was recorded in.
func (p Period) Contains(t time.Time) bool {
	loc := t.Location()
	return !t.Before(p.startIn(loc)) && !t.After(p.endIn(loc))
}

// Previous returns the same months one year earlier
func (p Period) Previous() Period {
	return Period{
		StartYear:  p.StartYear - 1,
		StartMonth: p.StartMonth,
		EndYear:    p.EndYear - 1,
		EndMonth:   p.EndMonth,
	}
}

// String formats the period as 2023-01..2023-12
func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d..%04d-%02d", p.StartYear, p.StartMonth, p.EndYear, p.EndMonth)
}
