package contract

import (
	"time"

	"github.com/sikontrak/backend/internal/domain/shared"
)

// DurationClass buckets a contract by its length for reporting
type DurationClass string

const (
	DurationLongTerm  DurationClass = "LONG_TERM"  // 3 years or more
	DurationAnnual    DurationClass = "ANNUAL"     // 1 to 3 years
	DurationMidTerm   DurationClass = "MID_TERM"   // 6 months to a year
	DurationShortTerm DurationClass = "SHORT_TERM" // under 6 months
)

// String returns the string representation of DurationClass
func (c DurationClass) String() string {
	return string(c)
}

// ContractDuration is the human-meaningful length of a contract
type ContractDuration struct {
	Days   int `json:"days"`
	Months int `json:"months"`
	Years  int `json:"years"`
}

// Class returns the duration classification
func (d ContractDuration) Class() DurationClass {
	switch {
	case d.Years >= 3:
		return DurationLongTerm
	case d.Years >= 1:
		return DurationAnnual
	case d.Months >= 6:
		return DurationMidTerm
	default:
		return DurationShortTerm
	}
}

// CalculateDuration computes the duration between two contract dates.
//
// Months use smart rounding near a boundary: when the end date falls
// within 7 days before the next full-month boundary the month count is
// rounded up, so a contract ending 2025-06-25 that started 2024-01-01
// counts as 18 months rather than 17. Years are computed from the
// calendar year difference independently, not by dividing the rounded
// month count.
func CalculateDuration(start, end time.Time) (*ContractDuration, error) {
	start = truncateToDay(start)
	end = truncateToDay(end)

	if end.Before(start) {
		return nil, shared.NewDomainError("END_BEFORE_START", "Contract end date cannot be before start date")
	}

	days := int(end.Sub(start).Hours() / 24)

	rawMonths := calendarMonthDiff(start, end)
	months := rawMonths
	boundary := start.AddDate(0, rawMonths+1, 0)
	if end.Before(boundary) && !boundary.AddDate(0, 0, -7).After(end) {
		months = rawMonths + 1
	}

	years := calendarYearDiff(start, end)

	return &ContractDuration{
		Days:   days,
		Months: months,
		Years:  years,
	}, nil
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// calendarMonthDiff counts the full calendar months elapsed from start to
// end
func calendarMonthDiff(start, end time.Time) int {
	months := (end.Year()-start.Year())*12 + int(end.Month()) - int(start.Month())
	if end.Day() < start.Day() {
		months--
	}
	if months < 0 {
		return 0
	}
	return months
}

// calendarYearDiff counts the full calendar years elapsed from start to
// end
func calendarYearDiff(start, end time.Time) int {
	years := end.Year() - start.Year()
	if int(end.Month()) < int(start.Month()) ||
		(end.Month() == start.Month() && end.Day() < start.Day()) {
		years--
	}
	if years < 0 {
		return 0
	}
	return years
}
