package calendar

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidArgument is returned for out-of-range months or days. Months are
// 0-indexed: 0 is January, 11 is December.
var ErrInvalidArgument = errors.New("invalid argument")

// IsLeapYear applies the Gregorian rule.
func IsLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// DaysInMonth returns the length of month in year.
func DaysInMonth(year, month int) (int, error) {
	if err := checkMonth(month); err != nil {
		return 0, err
	}
	switch time.Month(month + 1) {
	case time.February:
		if IsLeapYear(year) {
			return 29, nil
		}
		return 28, nil
	case time.April, time.June, time.September, time.November:
		return 30, nil
	default:
		return 31, nil
	}
}

// FirstWeekdayOffset returns the weekday of the first day of month, with
// Sunday as 0. It is the number of blank cells before day 1 in a month grid.
func FirstWeekdayOffset(year, month int) (int, error) {
	if err := checkMonth(month); err != nil {
		return 0, err
	}
	return int(time.Date(year, time.Month(month+1), 1, 0, 0, 0, 0, time.UTC).Weekday()), nil
}

func checkMonth(month int) error {
	if month < 0 || month > 11 {
		return fmt.Errorf("%w: month %d outside 0..11", ErrInvalidArgument, month)
	}
	return nil
}

func checkDate(year, month, day int) error {
	n, err := DaysInMonth(year, month)
	if err != nil {
		return err
	}
	if day < 1 || day > n {
		return fmt.Errorf("%w: day %d outside 1..%d", ErrInvalidArgument, day, n)
	}
	return nil
}
