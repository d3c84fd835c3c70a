// Package date provides a day-granularity Date type and a sorted
// date-indexed series used for price histories.
package date

import (
	"encoding/json"
	"fmt"
	"time"
)

// Format is the canonical string representation of a date, ISO-8601.
const Format = "2006-01-02"

// Date represents a calendar day, with no time-of-day or timezone attached.
type Date struct {
	y int
	m time.Month
	d int
}

// New returns a normalized Date for the given year, month, and day.
// Out-of-range values are carried over, like time.Date does.
func New(year int, month time.Month, day int) Date {
	d := Date{year, month, day}
	d.y, d.m, d.d = d.time().Date()
	return d
}

// FromTime returns the Date of t in UTC.
func FromTime(t time.Time) Date { return New(t.UTC().Date()) }

// Today returns the current date.
func Today() Date { return New(time.Now().Date()) }

// time returns the canonical time.Time for that day (midnight UTC).
func (d Date) time() time.Time { return time.Date(d.y, d.m, d.d, 0, 0, 0, 0, time.UTC) }

// Year returns the year of the date.
func (d Date) Year() int { return d.y }

// Month returns the month of the date.
func (d Date) Month() time.Month { return d.m }

// Day returns the day of the month.
func (d Date) Day() int { return d.d }

// IsZero reports whether the date is the zero value.
func (d Date) IsZero() bool { return d == Date{} }

// Before reports whether d is strictly before x.
func (d Date) Before(x Date) bool { return d.time().Before(x.time()) }

// After reports whether d is strictly after x.
func (d Date) After(x Date) bool { return d.time().After(x.time()) }

// Compare returns -1, 0, or 1 depending on whether d is before, equal to,
// or after x.
func (d Date) Compare(x Date) int { return d.time().Compare(x.time()) }

// Add returns a new Date with the given number of days added.
func (d Date) Add(days int) Date { return New(d.y, d.m, d.d+days) }

// String formats the date in its canonical format.
func (d Date) String() string { return d.time().Format(Format) }

// Parse parses a canonical "2006-01-02" date string.
func Parse(str string) (Date, error) {
	on, err := time.Parse(Format, str)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q want format %q: %w", str, Format, err)
	}
	return New(on.Date()), nil
}

// MustParse is like Parse but panics on error. For tests and constants.
func MustParse(str string) Date {
	d, err := Parse(str)
	if err != nil {
		panic(err.Error())
	}
	return d
}

// MarshalJSON implements json.Marshaler as a canonical date string.
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON implements json.Unmarshaler from a canonical date string.
func (d *Date) UnmarshalJSON(bytes []byte) error {
	var str string
	if err := json.Unmarshal(bytes, &str); err != nil {
		return err
	}
	x, err := Parse(str)
	if err != nil {
		return err
	}
	*d = x
	return nil
}

var _ json.Marshaler = (*Date)(nil)
var _ json.Unmarshaler = (*Date)(nil)
