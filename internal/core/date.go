package core

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Date is a calendar date without time-of-day or zone. The boundary form
// is MM-DD-YYYY; storage and interchange use YYYY-MM-DD.
type Date struct {
	year  int
	month int
	day   int
}

// NewDate builds a date from its components without validation.
func NewDate(year, month, day int) Date {
	return Date{year: year, month: month, day: day}
}

// Today returns the current local date.
func Today() Date {
	return DateOf(time.Now())
}

// DateOf truncates a time to its calendar date.
func DateOf(t time.Time) Date {
	return Date{year: t.Year(), month: int(t.Month()), day: t.Day()}
}

func (d Date) Year() int  { return d.year }
func (d Date) Month() int { return d.month }
func (d Date) Day() int   { return d.day }

// IsZero reports whether the date is the zero value.
func (d Date) IsZero() bool {
	return d.year == 0 && d.month == 0 && d.day == 0
}

// Before reports whether d is strictly earlier than other.
func (d Date) Before(other Date) bool {
	if d.year != other.year {
		return d.year < other.year
	}
	if d.month != other.month {
		return d.month < other.month
	}
	return d.day < other.day
}

// After reports whether d is strictly later than other.
func (d Date) After(other Date) bool {
	return other.Before(d)
}

// ISO renders the storage and interchange form, YYYY-MM-DD.
func (d Date) ISO() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.year, d.month, d.day)
}

// Display renders the boundary form, MM-DD-YYYY.
func (d Date) Display() string {
	return fmt.Sprintf("%02d-%02d-%04d", d.month, d.day, d.year)
}

func (d Date) String() string { return d.ISO() }

// Validate checks component ranges. Day is checked against 31 regardless
// of month; finer calendar rules are not enforced.
func (d Date) Validate() error {
	if d.month < 1 || d.month > 12 {
		return fmt.Errorf("month %d out of range", d.month)
	}
	if d.day < 1 || d.day > 31 {
		return fmt.Errorf("day %d out of range", d.day)
	}
	return nil
}

// ParseDisplayDate parses the MM-DD-YYYY boundary form.
func ParseDisplayDate(s string) (Date, error) {
	first, second, third, err := splitDate(s)
	if err != nil {
		return Date{}, err
	}
	d := Date{year: third, month: first, day: second}
	if err := d.Validate(); err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return d, nil
}

// ParseISODate parses the YYYY-MM-DD storage form.
func ParseISODate(s string) (Date, error) {
	first, second, third, err := splitDate(s)
	if err != nil {
		return Date{}, err
	}
	d := Date{year: first, month: second, day: third}
	if err := d.Validate(); err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return d, nil
}

// splitDate splits a date string on '-' into exactly three numeric
// components.
func splitDate(s string) (int, int, int, error) {
	parts := strings.Split(strings.TrimSpace(s), "-")
	if len(parts) != 3 {
		return 0, 0, 0, fmt.Errorf("invalid date %q: want three '-'-separated components", s)
	}
	var nums [3]int
	for i, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil {
			return 0, 0, 0, fmt.Errorf("invalid date %q: component %q is not a number", s, part)
		}
		nums[i] = n
	}
	return nums[0], nums[1], nums[2], nil
}
