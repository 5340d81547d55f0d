package models

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// ExceptionDate overrides the weekly hours on one calendar day, every year
type ExceptionDate struct {
	ID        int64     `json:"id"`
	OrgID     string    `json:"-"`
	Date      string    `json:"date"`
	Hours     string    `json:"hours"`
	CreatedAt time.Time `json:"created_at"`
}

var exceptionDatePattern = regexp.MustCompile(`^(\d{2})/(\d{2})$`)

// days per month in a leap year, so 02/29 is accepted
var daysInMonth = [12]int{31, 29, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}

// ValidateExceptionDate checks the "MM/DD" form and that the day exists in that month
func ValidateExceptionDate(date string) error {
	m := exceptionDatePattern.FindStringSubmatch(date)
	if m == nil {
		return &ValidationError{Field: "date", Message: "date must be in MM/DD format"}
	}

	month, _ := strconv.Atoi(m[1])
	day, _ := strconv.Atoi(m[2])
	if month < 1 || month > 12 {
		return &ValidationError{Field: "date", Message: fmt.Sprintf("invalid month %02d", month)}
	}
	if day < 1 || day > daysInMonth[month-1] {
		return &ValidationError{Field: "date", Message: fmt.Sprintf("invalid day %02d for month %02d", day, month)}
	}
	return nil
}

// MatchesDay reports whether the exception applies to t
func (e *ExceptionDate) MatchesDay(t time.Time) bool {
	return e.Date == t.Format("01/02")
}
