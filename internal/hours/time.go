package hours

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Period is the AM/PM half of a 12-hour clock reading
type Period string

const (
	AM Period = "AM"
	PM Period = "PM"
)

// TimeOfDay is a wall-clock time without date or zone
type TimeOfDay struct {
	Hour   int
	Minute int
}

// Midnight is the fallback value for unreadable display times
var Midnight = TimeOfDay{}

var (
	time24Pattern   = regexp.MustCompile(`^(\d{1,2}):(\d{2})$`)
	displayPattern  = regexp.MustCompile(`(?i)(\d+):(\d+)\s*(AM|PM)`)
	errInvalidTime  = errors.New("time must be in HH:MM format")
	errInvalidRange = errors.New("time out of range")
)

// NewTimeOfDay builds a TimeOfDay, rejecting out-of-range values
func NewTimeOfDay(hour, minute int) (TimeOfDay, error) {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return TimeOfDay{}, fmt.Errorf("%w: %02d:%02d", errInvalidRange, hour, minute)
	}
	return TimeOfDay{Hour: hour, Minute: minute}, nil
}

// ParseTime24 reads a 24-hour "HH:MM" string
func ParseTime24(s string) (TimeOfDay, error) {
	m := time24Pattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return TimeOfDay{}, fmt.Errorf("%w: %q", errInvalidTime, s)
	}
	hour, _ := strconv.Atoi(m[1])
	minute, _ := strconv.Atoi(m[2])
	return NewTimeOfDay(hour, minute)
}

// String renders the zero-padded 24-hour wire form
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// Minutes returns minutes since midnight
func (t TimeOfDay) Minutes() int {
	return t.Hour*60 + t.Minute
}

// Clock12 splits the time into the hour/minute/period triplet used by form inputs
func (t TimeOfDay) Clock12() (int, int, Period) {
	period := AM
	if t.Hour >= 12 {
		period = PM
	}
	hour12 := t.Hour % 12
	if hour12 == 0 {
		hour12 = 12
	}
	return hour12, t.Minute, period
}

// Display renders "H:MM AM/PM" with no leading zero on the hour
func (t TimeOfDay) Display() string {
	hour12, minute, period := t.Clock12()
	return fmt.Sprintf("%d:%02d %s", hour12, minute, period)
}

// FromClock12 is the inverse of Clock12
func FromClock12(hour12, minute int, period Period) TimeOfDay {
	hour := hour12
	switch {
	case period == PM && hour12 != 12:
		hour += 12
	case period == AM && hour12 == 12:
		hour = 0
	}
	return TimeOfDay{Hour: hour, Minute: minute}
}

// To12Hour converts "HH:MM" into (hour12, minute, period).
// Midnight maps to 12 AM and noon to 12 PM.
func To12Hour(time24 string) (int, int, Period, error) {
	t, err := ParseTime24(time24)
	if err != nil {
		return 0, 0, "", err
	}
	hour12, minute, period := t.Clock12()
	return hour12, minute, period, nil
}

// To24Hour converts a 12-hour triplet into zero-padded "HH:MM"
func To24Hour(hour12, minute int, period Period) string {
	return FromClock12(hour12, minute, period).String()
}

// FormatDisplay converts "HH:MM" into "H:MM AM/PM".
// Unreadable input renders as midnight, matching ParseDisplay's fallback.
func FormatDisplay(time24 string) string {
	t, err := ParseTime24(time24)
	if err != nil {
		return Midnight.Display()
	}
	return t.Display()
}

// ParseDisplay converts "H:MM AM/PM" into "HH:MM", returning "00:00" when the input doesn't match
func ParseDisplay(s string) string {
	return parseDisplayTime(s).String()
}

func parseDisplayTime(s string) TimeOfDay {
	t, ok := matchDisplay(s)
	if !ok {
		return Midnight
	}
	return t
}

// matchDisplay reports whether s holds a display time that lands on a real
// wall-clock reading. "13:00 PM" and "4:75 AM" do not.
func matchDisplay(s string) (TimeOfDay, bool) {
	m := displayPattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return Midnight, false
	}
	hour12, err := strconv.Atoi(m[1])
	if err != nil {
		return Midnight, false
	}
	minute, err := strconv.Atoi(m[2])
	if err != nil {
		return Midnight, false
	}
	t := FromClock12(hour12, minute, Period(strings.ToUpper(m[3])))
	if t.Hour > 23 || t.Minute > 59 {
		return Midnight, false
	}
	return t, true
}
