package ledger

import (
	"fmt"
	"sort"
	"time"
)

// DateLayout is the wire format used everywhere dates are persisted or
// displayed. Ordering must always go through Parse; MM/DD/YYYY strings do
// not sort lexically.
const DateLayout = "01/02/2006"

// Date is a calendar day. It is comparable and usable as a map key.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// ParseDate parses an MM/DD/YYYY string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}, nil
}

// MustDate is a test and fixture helper; it panics on a malformed date.
func MustDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func (d Date) String() string {
	return d.Time().Format(DateLayout)
}

// Time returns the date at midnight UTC.
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

func (d Date) IsZero() bool {
	return d == Date{}
}

// Before reports whether d is strictly earlier than other.
func (d Date) Before(other Date) bool {
	if d.Year != other.Year {
		return d.Year < other.Year
	}
	if d.Month != other.Month {
		return d.Month < other.Month
	}
	return d.Day < other.Day
}

func (d Date) After(other Date) bool {
	return other.Before(d)
}

// YearMonth identifies a calendar month; the first known date of each
// YearMonth is an automatic valuation date.
type YearMonth struct {
	Year  int
	Month time.Month
}

func (d Date) YearMonth() YearMonth {
	return YearMonth{Year: d.Year, Month: d.Month}
}

// SortDates orders dates ascending by calendar value, in place.
func SortDates(dates []Date) {
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
}
