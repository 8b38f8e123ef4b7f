package core

import (
	"encoding/json"
	"fmt"
	"time"
)

// DateFormat is the wire and storage representation of dates.
const DateFormat = "2006-01-02"

// Date is a day-granular date, canonically midnight UTC.
type Date struct {
	time.Time
}

// NewDate returns the date for year, month, day. Out-of-range components
// normalize the way time.Date does (day 0 is the last day of the previous
// month).
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses an ISO-8601 date string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateFormat, s)
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return Date{Time: t}, nil
}

func (d Date) String() string { return d.Format(DateFormat) }

// Before reports whether d is strictly before x.
func (d Date) Before(x Date) bool { return d.Time.Before(x.Time) }

// After reports whether d is strictly after x.
func (d Date) After(x Date) bool { return d.Time.After(x.Time) }

func (d Date) Equal(x Date) bool { return d.Time.Equal(x.Time) }

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// StartOfMonth returns the first day of d's month.
func (d Date) StartOfMonth() Date {
	return NewDate(d.Year(), int(d.Month()), 1)
}

// EndOfMonth returns the last day of d's month, including the
// December-to-January rollover.
func (d Date) EndOfMonth() Date {
	return NewDate(d.Year(), int(d.Month())+1, 0)
}

// DefaultComparisonPeriod returns the same month and day one year earlier.
// Feb 29 inputs normalize forward the way time.AddDate does.
func (d Date) DefaultComparisonPeriod() Date {
	return Date{Time: d.AddDate(-1, 0, 0)}
}

// PreviousPeriodStart returns start minus the duration of [start, end],
// i.e. the start of an immediately preceding period of equal length.
func PreviousPeriodStart(start, end Date) Date {
	return Date{Time: start.Add(-end.Sub(start.Time))}
}
