package core

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

var (
	dateShape  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	monthShape = regexp.MustCompile(`^\d{4}-\d{2}$`)
)

// IsValidDateFormat reports whether s has the strict YYYY-MM-DD shape.
// It checks the shape only, not calendar correctness.
func IsValidDateFormat(s string) bool {
	return dateShape.MatchString(s)
}

// IsValidMonthFormat reports whether s has the strict YYYY-MM shape.
func IsValidMonthFormat(s string) bool {
	return monthShape.MatchString(s)
}

// Date is a calendar date pinned to midnight UTC so comparisons never drift
// across timezones. The zero value means "absent".
type Date struct {
	time.Time
}

// NewDate builds a date at midnight UTC. Out-of-range components normalize
// the way time.Date does.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a strict YYYY-MM-DD string as midnight UTC. Day values
// that overflow the month normalize forward rather than failing, so only the
// shape is validated here.
func ParseDate(s string) (Date, error) {
	if !IsValidDateFormat(s) {
		return Date{}, ErrInvalidDateFormat
	}
	year, _ := strconv.Atoi(s[0:4])
	month, _ := strconv.Atoi(s[5:7])
	day, _ := strconv.Atoi(s[8:10])
	return NewDate(year, month, day), nil
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Time.UTC().Format("2006-01-02")
}

// MarshalJSON renders the date as "YYYY-MM-DD", or null when absent.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.String() + `"`), nil
}

// UnmarshalJSON accepts a strict "YYYY-MM-DD" string, or null / "" for
// absence.
func (d *Date) UnmarshalJSON(data []byte) error {
	s := string(data)
	if s == "null" || s == `""` {
		*d = Date{}
		return nil
	}
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return ErrInvalidDateFormat
	}
	parsed, err := ParseDate(s[1 : len(s)-1])
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Period identifies a calendar month. Keys are zero-padded so that the
// lexicographic order of Key() matches the chronological order.
type Period struct {
	Year  int
	Month int
}

// PeriodOf extracts the UTC year-month of a date.
func PeriodOf(d Date) Period {
	t := d.Time.UTC()
	return Period{Year: t.Year(), Month: int(t.Month())}
}

// PeriodOfTime extracts the UTC year-month of an arbitrary instant.
func PeriodOfTime(t time.Time) Period {
	t = t.UTC()
	return Period{Year: t.Year(), Month: int(t.Month())}
}

// ParsePeriod parses a strict YYYY-MM string. Like the date parser it
// validates the shape only.
func ParsePeriod(s string) (Period, error) {
	if !IsValidMonthFormat(s) {
		return Period{}, ErrInvalidMonth
	}
	year, _ := strconv.Atoi(s[0:4])
	month, _ := strconv.Atoi(s[5:7])
	return Period{Year: year, Month: month}, nil
}

// Key returns the canonical zero-padded "YYYY-MM" form.
func (p Period) Key() string {
	return fmt.Sprintf("%04d-%02d", p.Year, p.Month)
}

func (p Period) index() int {
	return p.Year*12 + p.Month
}

func (p Period) Before(other Period) bool {
	return p.index() < other.index()
}

func (p Period) After(other Period) bool {
	return p.index() > other.index()
}

// MonthSpan counts the calendar months from a to b inclusive. The result is
// zero or negative when b precedes a; callers must guard for that.
func MonthSpan(a, b Period) int {
	return b.index() - a.index() + 1
}
