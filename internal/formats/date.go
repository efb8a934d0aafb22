// Package formats holds the named date and amount notations a descriptor
// may reference. Descriptors select formats by name; an unknown name is a
// load-time failure, never a silent default.
package formats

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DateFormat parses one date notation.
type DateFormat interface {
	// Tokens is the number of space-delimited tokens the notation spans.
	Tokens() int
	// Parse attempts to read input as this notation. yearHint supplies
	// the year for notations that omit it; notations carrying their own
	// year ignore the hint.
	Parse(input, yearHint string) (time.Time, bool)
}

// Date format names accepted in descriptor documents.
const (
	DateDayMonth      = "day-month"       // 24 Mar (year from hint)
	DateDayMonthYear  = "day-month-year"  // 24 March 2020
	DateMonthDayYear  = "month-day-year"  // March 24, 2020
	DateSlashed       = "day/month/year"  // 24/3/2020
	DateSlashedShort  = "day/month/yy"    // 24/3/20
)

// ValidDateFormats lists every recognised date format name.
func ValidDateFormats() []string {
	return []string{DateDayMonth, DateDayMonthYear, DateMonthDayYear, DateSlashed, DateSlashedShort}
}

var dateFormats = map[string]DateFormat{
	DateDayMonth:     dayMonthFormat{},
	DateDayMonthYear: dayMonthYearFormat{},
	DateMonthDayYear: monthDayYearFormat{},
	DateSlashed:      slashedFormat{twoDigitYear: false},
	DateSlashedShort: slashedFormat{twoDigitYear: true},
}

// DateFormatByName returns the format registered under name.
func DateFormatByName(name string) (DateFormat, bool) {
	f, ok := dateFormats[name]
	return f, ok
}

var months = map[string]time.Month{
	"jan": time.January, "january": time.January,
	"feb": time.February, "february": time.February,
	"mar": time.March, "march": time.March,
	"apr": time.April, "april": time.April,
	"may": time.May,
	"jun": time.June, "june": time.June,
	"jul": time.July, "july": time.July,
	"aug": time.August, "august": time.August,
	"sep": time.September, "september": time.September,
	"oct": time.October, "october": time.October,
	"nov": time.November, "november": time.November,
	"dec": time.December, "december": time.December,
}

func parseDay(s string) (int, bool) {
	d, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || d < 1 || d > 31 {
		return 0, false
	}
	return d, true
}

func parseMonth(s string) (time.Month, bool) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		if n >= 1 && n <= 12 {
			return time.Month(n), true
		}
		return 0, false
	}
	m, ok := months[strings.ToLower(s)]
	return m, ok
}

func parseYear(s string) (int, bool) {
	s = strings.TrimSpace(s)
	y, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	switch len(s) {
	case 4:
		return y, true
	case 2:
		return 2000 + y, true
	default:
		return 0, false
	}
}

// makeDate assembles a UTC calendar date, verifying the combination is a
// real date. Feb 29 in a non-leap year is retried one year later to cover
// yearless dates hinted with the statement's start year across a leap
// boundary.
func makeDate(day int, month time.Month, year int) (time.Time, bool) {
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if t.Day() == day && t.Month() == month && t.Year() == year {
		return t, true
	}
	if day == 29 && month == time.February {
		t = time.Date(year+1, month, day, 0, 0, 0, 0, time.UTC)
		if t.Day() == day && t.Month() == month {
			return t, true
		}
	}
	return time.Time{}, false
}

type dayMonthFormat struct{}

var dayMonthPattern = regexp.MustCompile(`^\d{1,2} [A-Za-z]+$`)

func (dayMonthFormat) Tokens() int { return 2 }

func (dayMonthFormat) Parse(input, yearHint string) (time.Time, bool) {
	if !dayMonthPattern.MatchString(input) {
		return time.Time{}, false
	}
	parts := strings.SplitN(input, " ", 2)
	day, ok := parseDay(parts[0])
	if !ok {
		return time.Time{}, false
	}
	month, ok := parseMonth(parts[1])
	if !ok {
		return time.Time{}, false
	}
	year, ok := parseYear(yearHint)
	if !ok {
		return time.Time{}, false
	}
	return makeDate(day, month, year)
}

type dayMonthYearFormat struct{}

var dayMonthYearPattern = regexp.MustCompile(`^\d{1,2} [A-Za-z]+ \d{4}$`)

func (dayMonthYearFormat) Tokens() int { return 3 }

func (dayMonthYearFormat) Parse(input, _ string) (time.Time, bool) {
	if !dayMonthYearPattern.MatchString(input) {
		return time.Time{}, false
	}
	parts := strings.Split(input, " ")
	day, ok := parseDay(parts[0])
	if !ok {
		return time.Time{}, false
	}
	month, ok := parseMonth(parts[1])
	if !ok {
		return time.Time{}, false
	}
	year, ok := parseYear(parts[2])
	if !ok {
		return time.Time{}, false
	}
	return makeDate(day, month, year)
}

type monthDayYearFormat struct{}

var monthDayYearPattern = regexp.MustCompile(`^[A-Za-z]+ \d{1,2}, \d{4}$`)

func (monthDayYearFormat) Tokens() int { return 3 }

func (monthDayYearFormat) Parse(input, _ string) (time.Time, bool) {
	if !monthDayYearPattern.MatchString(input) {
		return time.Time{}, false
	}
	parts := strings.Split(input, " ")
	month, ok := parseMonth(parts[0])
	if !ok {
		return time.Time{}, false
	}
	day, ok := parseDay(strings.TrimSuffix(parts[1], ","))
	if !ok {
		return time.Time{}, false
	}
	year, ok := parseYear(parts[2])
	if !ok {
		return time.Time{}, false
	}
	return makeDate(day, month, year)
}

type slashedFormat struct {
	twoDigitYear bool
}

var (
	slashedPattern      = regexp.MustCompile(`^\d{1,2}/\d{1,2}/\d{4}$`)
	slashedShortPattern = regexp.MustCompile(`^\d{1,2}/\d{1,2}/\d{2}$`)
)

func (slashedFormat) Tokens() int { return 1 }

func (f slashedFormat) Parse(input, _ string) (time.Time, bool) {
	pattern := slashedPattern
	if f.twoDigitYear {
		pattern = slashedShortPattern
	}
	if !pattern.MatchString(input) {
		return time.Time{}, false
	}
	parts := strings.Split(input, "/")
	day, ok := parseDay(parts[0])
	if !ok {
		return time.Time{}, false
	}
	month, ok := parseMonth(parts[1])
	if !ok {
		return time.Time{}, false
	}
	year, ok := parseYear(parts[2])
	if !ok {
		return time.Time{}, false
	}
	return makeDate(day, month, year)
}

// MultiDate dispatches across several named date formats, trying the
// widest notations first so "24 March 2020" is not half-consumed by a
// yearless format.
type MultiDate struct {
	formats []DateFormat
}

// NewMultiDate builds a dispatcher from format names. Unknown names
// return an error naming the offender.
func NewMultiDate(names []string) (*MultiDate, error) {
	parsed := make([]DateFormat, 0, len(names))
	for _, name := range names {
		f, ok := DateFormatByName(name)
		if !ok {
			return nil, &UnknownFormatError{Kind: "date", Name: name}
		}
		parsed = append(parsed, f)
	}
	// Stable sort by descending token count keeps same-width formats in
	// descriptor order.
	for i := 1; i < len(parsed); i++ {
		for j := i; j > 0 && parsed[j].Tokens() > parsed[j-1].Tokens(); j-- {
			parsed[j], parsed[j-1] = parsed[j-1], parsed[j]
		}
	}
	return &MultiDate{formats: parsed}, nil
}

// Parse returns the first successful parse across the configured formats.
func (m *MultiDate) Parse(input, yearHint string) (time.Time, bool) {
	for _, f := range m.formats {
		if t, ok := f.Parse(input, yearHint); ok {
			return t, true
		}
	}
	return time.Time{}, false
}

// MaxTokens is the widest lookahead any configured format needs.
func (m *MultiDate) MaxTokens() int {
	max := 0
	for _, f := range m.formats {
		if f.Tokens() > max {
			max = f.Tokens()
		}
	}
	return max
}

// Empty reports whether no formats are configured.
func (m *MultiDate) Empty() bool { return len(m.formats) == 0 }
