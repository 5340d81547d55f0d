package hours

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Weekday indexes the seven canonical days, Monday first
type Weekday int

const (
	Monday Weekday = iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

// Days lists the canonical serialization order
var Days = [7]Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

var dayLabels = [7]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// String returns the exact-cased English label
func (d Weekday) String() string {
	if d < Monday || d > Sunday {
		return fmt.Sprintf("Weekday(%d)", int(d))
	}
	return dayLabels[d]
}

// FromTime maps a time.Weekday, which starts on Sunday, onto the Monday-first order
func FromTime(wd time.Weekday) Weekday {
	return Weekday((int(wd) + 6) % 7)
}

// LookupWeekday matches a day label case-insensitively
func LookupWeekday(label string) (Weekday, bool) {
	label = strings.TrimSpace(label)
	for _, d := range Days {
		if strings.EqualFold(label, dayLabels[d]) {
			return d, true
		}
	}
	return 0, false
}

// TimeRange is one open interval. Start after End is allowed and kept as entered.
type TimeRange struct {
	Start TimeOfDay `json:"start"`
	End   TimeOfDay `json:"end"`
}

// Display renders "4:00 AM - 7:00 PM"
func (r TimeRange) Display() string {
	return r.Start.Display() + " - " + r.End.Display()
}

// DayHours is either closed or open with one or more ranges
type DayHours struct {
	Closed bool        `json:"closed"`
	Ranges []TimeRange `json:"ranges,omitempty"`
}

// ClosedDay returns a closed day
func ClosedDay() DayHours {
	return DayHours{Closed: true}
}

// OpenDay returns an open day with the given ranges
func OpenDay(ranges ...TimeRange) DayHours {
	return DayHours{Ranges: ranges}
}

// DefaultRange is the 4:00 AM - 7:00 PM fallback applied to unset days
var DefaultRange = TimeRange{
	Start: TimeOfDay{Hour: 4},
	End:   TimeOfDay{Hour: 19},
}

// DefaultDay returns a fresh copy of the fallback day
func DefaultDay() DayHours {
	return OpenDay(DefaultRange)
}

var (
	ErrClosedWithRanges = errors.New("closed day cannot carry ranges")
	ErrEmptyOpenDay     = errors.New("open day needs at least one range")
)

// Validate checks the closed/open invariant and every range endpoint
func (d DayHours) Validate() error {
	if d.Closed {
		if len(d.Ranges) > 0 {
			return ErrClosedWithRanges
		}
		return nil
	}
	if len(d.Ranges) == 0 {
		return ErrEmptyOpenDay
	}
	for _, r := range d.Ranges {
		if _, err := NewTimeOfDay(r.Start.Hour, r.Start.Minute); err != nil {
			return err
		}
		if _, err := NewTimeOfDay(r.End.Hour, r.End.Minute); err != nil {
			return err
		}
	}
	return nil
}

// OpenAt reports whether t falls inside one of the ranges. Start is inclusive and End exclusive.
// A range whose Start is after its End runs past midnight, so it covers Start..24:00 and 00:00..End.
func (d DayHours) OpenAt(t TimeOfDay) bool {
	if d.Closed {
		return false
	}
	m := t.Minutes()
	for _, r := range d.Ranges {
		start, end := r.Start.Minutes(), r.End.Minutes()
		if start <= end {
			if m >= start && m < end {
				return true
			}
		} else if m >= start || m < end {
			return true
		}
	}
	return false
}

// WeekSchedule holds the hours for all seven days
type WeekSchedule [7]DayHours

// DefaultSchedule opens every day 4:00 AM - 7:00 PM
func DefaultSchedule() WeekSchedule {
	var w WeekSchedule
	for _, d := range Days {
		w[d] = DefaultDay()
	}
	return w
}

// Day returns the hours for d
func (w WeekSchedule) Day(d Weekday) DayHours {
	return w[d]
}

// Set replaces the hours for d
func (w *WeekSchedule) Set(d Weekday, h DayHours) {
	w[d] = h
}

// Validate checks every day
func (w WeekSchedule) Validate() error {
	for _, d := range Days {
		if err := w[d].Validate(); err != nil {
			return fmt.Errorf("%s: %w", d, err)
		}
	}
	return nil
}

// MarshalJSON writes the schedule as an object keyed by day label
func (w WeekSchedule) MarshalJSON() ([]byte, error) {
	out := make(map[string]DayHours, len(Days))
	for _, d := range Days {
		out[d.String()] = w[d]
	}
	return json.Marshal(out)
}

// UnmarshalJSON reads an object keyed by day label. Missing days keep the default.
func (w *WeekSchedule) UnmarshalJSON(data []byte) error {
	var in map[string]DayHours
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	parsed := DefaultSchedule()
	for label, h := range in {
		d, ok := LookupWeekday(label)
		if !ok {
			return fmt.Errorf("unknown day %q", label)
		}
		parsed[d] = h
	}
	*w = parsed
	return nil
}

// MarshalJSON writes the "HH:MM" wire form
func (t TimeOfDay) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON reads "HH:MM"
func (t *TimeOfDay) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseTime24(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
