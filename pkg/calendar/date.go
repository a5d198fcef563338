// Package calendar provides proleptic Gregorian day arithmetic for ledger dates.
//
// Dates are plain calendar triples with no time zone. The zero Date is the
// "unknown date" sentinel used for ledger entries whose date field is blank.
package calendar

import (
	"fmt"
	"strconv"
)

// Date is a calendar date. The zero value means the date is unknown.
type Date struct {
	Year  int
	Month int
	Day   int
}

var monthNames = [...]string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

// ParseDate parses a YYYY-MM-DD string into a Date.
func ParseDate(s string) (Date, error) {
	if len(s) != 10 || s[4] != '-' || s[7] != '-' {
		return Date{}, fmt.Errorf("bad date %q: want YYYY-MM-DD", s)
	}
	for i, c := range []byte(s) {
		if i == 4 || i == 7 {
			continue
		}
		if c < '0' || c > '9' {
			return Date{}, fmt.Errorf("bad date %q: non-digit %q", s, c)
		}
	}

	year, _ := strconv.Atoi(s[0:4])
	month, _ := strconv.Atoi(s[5:7])
	day, _ := strconv.Atoi(s[8:10])

	if year < 1 {
		return Date{}, fmt.Errorf("bad date %q: year out of range", s)
	}
	if month < 1 || month > 12 {
		return Date{}, fmt.Errorf("bad date %q: month out of range", s)
	}
	if day < 1 || day > DaysIn(year, month) {
		return Date{}, fmt.Errorf("bad date %q: day out of range", s)
	}

	return Date{Year: year, Month: month, Day: day}, nil
}

// MustParse is like ParseDate but panics on error. Intended for tests and
// static tables.
func MustParse(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

// IsLeap reports whether year is a leap year: divisible by 4 and either not
// divisible by 100 or divisible by 400.
func IsLeap(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// DaysIn returns the number of days in the given month.
func DaysIn(year, month int) int {
	switch month {
	case 2:
		if IsLeap(year) {
			return 29
		}
		return 28
	case 4, 6, 9, 11:
		return 30
	default:
		return 31
	}
}

// DayNumber converts a calendar date to a day count with 1 January of year 1
// as day 1. It is strictly increasing with calendar order, so subtracting two
// day numbers gives the number of days between the dates.
//
// The caller must pass a valid date; month and day are not range checked.
func DayNumber(year, month, day int) int {
	ym1 := year - 1
	yearDays := 365*ym1 + ym1/4 - ym1/100 + ym1/400
	monthDays := (367*month - 362) / 12

	leapAdjust := 0
	if month > 2 {
		if IsLeap(year) {
			leapAdjust = -1
		} else {
			leapAdjust = -2
		}
	}

	return yearDays + monthDays + leapAdjust + day
}

// Known reports whether the date is set.
func (d Date) Known() bool {
	return d != Date{}
}

// DayNumber returns the day number of d. It returns 0 for an unknown date.
func (d Date) DayNumber() int {
	if !d.Known() {
		return 0
	}
	return DayNumber(d.Year, d.Month, d.Day)
}

// Before reports whether d is strictly earlier than o.
func (d Date) Before(o Date) bool {
	return d.DayNumber() < o.DayNumber()
}

// String returns the YYYY-MM-DD form, or "" for an unknown date.
func (d Date) String() string {
	if !d.Known() {
		return ""
	}
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// Long returns the display form, e.g. "1 October 1923".
func (d Date) Long() string {
	if !d.Known() {
		return "(unknown date)"
	}
	return fmt.Sprintf("%d %s %d", d.Day, monthNames[d.Month-1], d.Year)
}

// AcademicYear returns the first calendar year of the October to September
// year containing d.
func (d Date) AcademicYear() int {
	if d.Month >= 10 {
		return d.Year
	}
	return d.Year - 1
}

// MarshalText implements encoding.TextMarshaler.
func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Empty input yields the
// unknown date.
func (d *Date) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
