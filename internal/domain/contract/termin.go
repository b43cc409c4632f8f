package contract

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Termin period labels arrive as OCR free text ("Termin 1 - Januari 2025",
// "termin2/april-2025"). The matcher normalizes them into calendar months
// and selects the current or next due installment using a fallback chain,
// so a schedule is always resolvable as long as at least one termin exists.

// Years outside this window are treated as OCR noise, not dates
const (
	minTerminYear = 1900
	maxTerminYear = 2200
)

// TerminDescriptor is one scheduled installment as recorded on the
// contract. Period and RawText are free text and possibly unparseable.
type TerminDescriptor struct {
	TerminNumber *int   `json:"termin_number,omitempty"`
	Period       string `json:"period,omitempty"`
	RawText      string `json:"raw_text,omitempty"`
}

// CalendarMonth is a parsed termin period: a month in a specific year
type CalendarMonth struct {
	Year  int        `json:"year"`
	Month time.Month `json:"month"`
}

// FirstDay returns midnight UTC on the first day of the month
func (c CalendarMonth) FirstDay() time.Time {
	return time.Date(c.Year, c.Month, 1, 0, 0, 0, 0, time.UTC)
}

// Before reports whether c is an earlier month than other
func (c CalendarMonth) Before(other CalendarMonth) bool {
	if c.Year != other.Year {
		return c.Year < other.Year
	}
	return c.Month < other.Month
}

// String renders the month in the long Indonesian form, e.g. "Januari 2025"
func (c CalendarMonth) String() string {
	return fmt.Sprintf("%s %d", MonthName(c.Month), c.Year)
}

// ParsedTermin pairs a descriptor with its normalized calendar month.
// Date is nil when the period could not be parsed; that is expected input
// noise, not an error.
type ParsedTermin struct {
	Descriptor TerminDescriptor `json:"descriptor"`
	Date       *CalendarMonth   `json:"date,omitempty"`
}

// Label renders a human-readable label for the termin: the parsed period
// when available, the raw text otherwise, and the ordinal as a last resort
func (p ParsedTermin) Label() string {
	if p.Date != nil {
		return p.Date.String()
	}
	if p.Descriptor.Period != "" {
		return p.Descriptor.Period
	}
	if p.Descriptor.RawText != "" {
		return p.Descriptor.RawText
	}
	if p.Descriptor.TerminNumber != nil {
		return fmt.Sprintf("Termin %d", *p.Descriptor.TerminNumber)
	}
	return ""
}

// stripMarks removes diacritics after NFKD decomposition, so "pébruari"
// normalizes the same as "pebruari"
var stripMarks = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))

// normalizeTokens canonicalizes a period label into lowercase tokens:
// Unicode-normalize, split adjacent letter/digit runs ("termin2" ->
// "termin 2"), map punctuation to separators and collapse them.
func normalizeTokens(text string) []string {
	stripped, _, err := transform.String(stripMarks, text)
	if err != nil {
		stripped = text
	}

	var b strings.Builder
	b.Grow(len(stripped) + 8)
	var prev rune
	for _, r := range stripped {
		switch {
		case unicode.IsLetter(r):
			if unicode.IsDigit(prev) {
				b.WriteRune(' ')
			}
			b.WriteRune(unicode.ToLower(r))
		case unicode.IsDigit(r):
			if unicode.IsLetter(prev) {
				b.WriteRune(' ')
			}
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
		prev = r
	}

	return strings.Fields(b.String())
}

// ParseTerminPeriod extracts a calendar month from a free-text period
// label. The first token matching the month lexicon sets the month; the
// first token parsing as a plausible year sets the year. Missing either
// leaves the period unparseable (nil).
func ParseTerminPeriod(text string) *CalendarMonth {
	var month time.Month
	var year int

	for _, token := range normalizeTokens(text) {
		if month == 0 {
			if m, ok := LookupMonth(token); ok {
				month = m
				continue
			}
		}
		if year == 0 {
			if n, err := strconv.Atoi(token); err == nil && n > minTerminYear && n <= maxTerminYear {
				year = n
			}
		}
	}

	if month == 0 || year == 0 {
		return nil
	}
	return &CalendarMonth{Year: year, Month: month}
}

// ParseTermin normalizes a single descriptor, preferring the structured
// period over the raw OCR text
func ParseTermin(d TerminDescriptor) ParsedTermin {
	text := d.Period
	if text == "" {
		text = d.RawText
	}
	return ParsedTermin{Descriptor: d, Date: ParseTerminPeriod(text)}
}

// sortByTerminNumber orders parsed termins by termin number ascending,
// with missing numbers after all numbered entries. The sort is stable so
// the contract's recorded order breaks ties.
func sortByTerminNumber(termins []ParsedTermin) {
	sort.SliceStable(termins, func(i, j int) bool {
		a, b := termins[i].Descriptor.TerminNumber, termins[j].Descriptor.TerminNumber
		if a == nil {
			return false
		}
		if b == nil {
			return true
		}
		return *a < *b
	})
}

// terminSelector is one rule of the fallback chain; it returns nil when
// the rule does not apply
type terminSelector func(termins []ParsedTermin, today time.Time) *ParsedTermin

// selectUpcoming picks the earliest parsed date on or after the first day
// of the current month (UTC)
func selectUpcoming(termins []ParsedTermin, today time.Time) *ParsedTermin {
	currentMonth := time.Date(today.UTC().Year(), today.UTC().Month(), 1, 0, 0, 0, 0, time.UTC)

	var best *ParsedTermin
	for i := range termins {
		if termins[i].Date == nil {
			continue
		}
		if termins[i].Date.FirstDay().Before(currentMonth) {
			continue
		}
		if best == nil || termins[i].Date.Before(*best.Date) {
			best = &termins[i]
		}
	}
	return best
}

// selectLatestParsed picks the latest parsed date; when nothing is
// upcoming the last known installment is likely the overdue one
func selectLatestParsed(termins []ParsedTermin, _ time.Time) *ParsedTermin {
	var best *ParsedTermin
	for i := range termins {
		if termins[i].Date == nil {
			continue
		}
		if best == nil || best.Date.Before(*termins[i].Date) {
			best = &termins[i]
		}
	}
	return best
}

// selectFirstByOrdinal is the pure ordinal fallback when nothing parses
func selectFirstByOrdinal(termins []ParsedTermin, _ time.Time) *ParsedTermin {
	if len(termins) == 0 {
		return nil
	}
	return &termins[0]
}

var selectionChain = []terminSelector{
	selectUpcoming,
	selectLatestParsed,
	selectFirstByOrdinal,
}

// FindCurrentOrNext selects the current or next due installment from a
// termin schedule. It returns nil only for an empty schedule; otherwise
// the fallback chain guarantees a result:
//
//  1. earliest parsed date on or after the first of the current month
//  2. latest parsed date (last known, possibly overdue)
//  3. first descriptor in termin-number order
func FindCurrentOrNext(termins []TerminDescriptor, today time.Time) *ParsedTermin {
	if len(termins) == 0 {
		return nil
	}

	parsed := make([]ParsedTermin, 0, len(termins))
	for _, d := range termins {
		parsed = append(parsed, ParseTermin(d))
	}
	sortByTerminNumber(parsed)

	for _, rule := range selectionChain {
		if match := rule(parsed, today); match != nil {
			return match
		}
	}
	return nil
}

// ParseSchedule normalizes a full termin schedule in termin-number order
func ParseSchedule(termins []TerminDescriptor) []ParsedTermin {
	parsed := make([]ParsedTermin, 0, len(termins))
	for _, d := range termins {
		parsed = append(parsed, ParseTermin(d))
	}
	sortByTerminNumber(parsed)
	return parsed
}
