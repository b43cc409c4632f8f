package contract

import "time"

// monthLexicon maps free-text month spellings to a calendar month. Termin
// period labels come from OCR output, so the table covers Indonesian and
// English long forms, common abbreviations and the misspellings that show
// up in scanned contracts (pebruari, nopember, agust).
var monthLexicon = map[string]time.Month{
	// Indonesian long forms
	"januari":   time.January,
	"februari":  time.February,
	"pebruari":  time.February,
	"maret":     time.March,
	"april":     time.April,
	"mei":       time.May,
	"juni":      time.June,
	"juli":      time.July,
	"agustus":   time.August,
	"september": time.September,
	"oktober":   time.October,
	"november":  time.November,
	"nopember":  time.November,
	"desember":  time.December,

	// English long forms
	"january":  time.January,
	"february": time.February,
	"march":    time.March,
	"may":      time.May,
	"june":     time.June,
	"july":     time.July,
	"august":   time.August,
	"october":  time.October,
	"december": time.December,

	// Abbreviations, Indonesian and English
	"jan":   time.January,
	"feb":   time.February,
	"peb":   time.February,
	"mar":   time.March,
	"apr":   time.April,
	"jun":   time.June,
	"jul":   time.July,
	"agu":   time.August,
	"ags":   time.August,
	"agt":   time.August,
	"agust": time.August,
	"aug":   time.August,
	"sep":   time.September,
	"sept":  time.September,
	"okt":   time.October,
	"oct":   time.October,
	"nov":   time.November,
	"nop":   time.November,
	"des":   time.December,
	"dec":   time.December,
}

// indonesianMonthNames renders a month in the long Indonesian form used on
// termin labels
var indonesianMonthNames = map[time.Month]string{
	time.January:   "Januari",
	time.February:  "Februari",
	time.March:     "Maret",
	time.April:     "April",
	time.May:       "Mei",
	time.June:      "Juni",
	time.July:      "Juli",
	time.August:    "Agustus",
	time.September: "September",
	time.October:   "Oktober",
	time.November:  "November",
	time.December:  "Desember",
}

// LookupMonth resolves a normalized token to a calendar month
func LookupMonth(token string) (time.Month, bool) {
	m, ok := monthLexicon[token]
	return m, ok
}

// MonthName returns the long Indonesian name of a month
func MonthName(m time.Month) string {
	return indonesianMonthNames[m]
}
