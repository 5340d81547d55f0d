package hours

import (
	"regexp"
	"strings"
)

const closedLabel = "Closed"

var rangePattern = regexp.MustCompile(`^(.+?)\s*-\s*(.+)$`)

// Coverage records which days were read from text rather than defaulted
type Coverage [7]bool

// Missing lists the days that fell back to the default
func (c Coverage) Missing() []Weekday {
	var missing []Weekday
	for _, d := range Days {
		if !c[d] {
			missing = append(missing, d)
		}
	}
	return missing
}

// Parse reads the bullet-list hours text. It never fails: unreadable days
// keep the 4:00 AM - 7:00 PM default and unreadable ranges are dropped.
func Parse(text string) WeekSchedule {
	w, _ := Decode(text)
	return w
}

// Decode is Parse plus the per-day coverage of the input
func Decode(text string) (WeekSchedule, Coverage) {
	w := DefaultSchedule()
	var seen Coverage
	if strings.TrimSpace(text) == "" {
		return w, seen
	}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "*") {
			continue
		}

		label, body, ok := strings.Cut(strings.TrimSpace(line[1:]), ":")
		if !ok {
			continue
		}
		day, ok := LookupWeekday(label)
		if !ok {
			continue
		}

		if h, ok := ParseDay(body); ok {
			w[day] = h
			seen[day] = true
		}
	}

	return w, seen
}

// ParseDay reads one day body, "Closed" or a comma-separated range list.
// ok is false when the body yields no usable ranges.
func ParseDay(body string) (DayHours, bool) {
	body = strings.TrimSpace(body)
	if strings.EqualFold(body, closedLabel) {
		return ClosedDay(), true
	}

	var ranges []TimeRange
	for _, segment := range strings.Split(body, ",") {
		m := rangePattern.FindStringSubmatch(strings.TrimSpace(segment))
		if m == nil {
			continue
		}
		ranges = append(ranges, TimeRange{
			Start: parseDisplayTime(strings.TrimSpace(m[1])),
			End:   parseDisplayTime(strings.TrimSpace(m[2])),
		})
	}

	if len(ranges) == 0 {
		return DayHours{}, false
	}
	return OpenDay(ranges...), true
}

// FormatDay renders one day body without the "* Day:" prefix
func FormatDay(h DayHours) string {
	if h.Closed {
		return closedLabel
	}
	parts := make([]string, 0, len(h.Ranges))
	for _, r := range h.Ranges {
		parts = append(parts, r.Display())
	}
	return strings.Join(parts, ", ")
}

// FormatLine renders "* Monday: 4:00 AM - 7:00 PM"
func FormatLine(d Weekday, h DayHours) string {
	return "* " + d.String() + ": " + FormatDay(h)
}

// Format renders the schedule Monday through Sunday, one line per day, no trailing newline
func Format(w WeekSchedule) string {
	lines := make([]string, 0, len(Days))
	for _, d := range Days {
		lines = append(lines, FormatLine(d, w[d]))
	}
	return strings.Join(lines, "\n")
}

// Setting is a stored schedule that may not have been configured yet
type Setting struct {
	schedule   WeekSchedule
	configured bool
}

// Unset is the state before an operator saves any hours
func Unset() Setting {
	return Setting{}
}

// Configured wraps a saved schedule
func Configured(w WeekSchedule) Setting {
	return Setting{schedule: w, configured: true}
}

// FromStored decodes a nullable column value. nil and blank text are Unset.
func FromStored(stored *string) Setting {
	if stored == nil || strings.TrimSpace(*stored) == "" {
		return Unset()
	}
	return Configured(Parse(*stored))
}

// IsConfigured reports whether hours were ever saved
func (s Setting) IsConfigured() bool {
	return s.configured
}

// Effective returns the saved schedule, or the default when unset
func (s Setting) Effective() WeekSchedule {
	if !s.configured {
		return DefaultSchedule()
	}
	return s.schedule
}
