package services

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alimgiray/lotdesk/internal/hours"
	"github.com/alimgiray/lotdesk/internal/models"
	"github.com/alimgiray/lotdesk/internal/repositories"
)

// ExceptionDateInput is either structured Day hours or raw Hours text such as "Closed"
type ExceptionDateInput struct {
	Date  string
	Hours string
	Day   *hours.DayHours
}

// DayResolution is what the lot keeps on a given calendar date
type DayResolution struct {
	Date      string         `json:"date"`
	Weekday   string         `json:"weekday"`
	Hours     hours.DayHours `json:"hours"`
	Text      string         `json:"text"`
	Exception bool           `json:"exception"`
}

type ExceptionDateService struct {
	exceptionDateRepo *repositories.ExceptionDateRepository
	orgContentService *OrgContentService
}

func NewExceptionDateService(exceptionDateRepo *repositories.ExceptionDateRepository, orgContentService *OrgContentService) *ExceptionDateService {
	return &ExceptionDateService{
		exceptionDateRepo: exceptionDateRepo,
		orgContentService: orgContentService,
	}
}

// List returns the organization's exception dates in calendar order
func (s *ExceptionDateService) List(orgID string) ([]*models.ExceptionDate, error) {
	return s.exceptionDateRepo.ListByOrgID(orgID)
}

// Create validates and stores a new exception date
func (s *ExceptionDateService) Create(orgID string, input ExceptionDateInput) (*models.ExceptionDate, error) {
	exception := &models.ExceptionDate{OrgID: orgID}
	if err := s.apply(exception, input); err != nil {
		return nil, err
	}

	if err := s.exceptionDateRepo.Create(exception); err != nil {
		if errors.Is(err, models.ErrConflict) {
			return nil, fmt.Errorf("exception for %s: %w", exception.Date, models.ErrConflict)
		}
		return nil, err
	}

	return s.exceptionDateRepo.GetByID(orgID, exception.ID)
}

// Update replaces the date and hours of an existing exception
func (s *ExceptionDateService) Update(orgID string, id int64, input ExceptionDateInput) (*models.ExceptionDate, error) {
	exception, err := s.exceptionDateRepo.GetByID(orgID, id)
	if err != nil {
		return nil, err
	}

	if input.Date == "" {
		input.Date = exception.Date
	}
	if input.Day == nil && strings.TrimSpace(input.Hours) == "" {
		input.Hours = exception.Hours
	}
	if err := s.apply(exception, input); err != nil {
		return nil, err
	}

	if err := s.exceptionDateRepo.Update(exception); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		if errors.Is(err, models.ErrConflict) {
			return nil, fmt.Errorf("exception for %s: %w", exception.Date, models.ErrConflict)
		}
		return nil, err
	}
	return exception, nil
}

// Delete removes an exception date
func (s *ExceptionDateService) Delete(orgID string, id int64) error {
	err := s.exceptionDateRepo.Delete(orgID, id)
	if errors.Is(err, sql.ErrNoRows) {
		return models.ErrNotFound
	}
	return err
}

// ParseHours decodes the stored hours of an exception
func (s *ExceptionDateService) ParseHours(exception *models.ExceptionDate) (hours.DayHours, bool) {
	return hours.ParseDay(exception.Hours)
}

// HoursOn resolves the hours in effect on day: an exception for that date wins over the weekly schedule
func (s *ExceptionDateService) HoursOn(orgID string, day time.Time) (*DayResolution, error) {
	resolution := &DayResolution{
		Date:    day.Format("01/02"),
		Weekday: hours.FromTime(day.Weekday()).String(),
	}

	exceptions, err := s.exceptionDateRepo.ListByOrgID(orgID)
	if err != nil {
		return nil, err
	}
	for _, exception := range exceptions {
		if !exception.MatchesDay(day) {
			continue
		}
		if h, ok := s.ParseHours(exception); ok {
			resolution.Hours = h
			resolution.Text = hours.FormatDay(h)
			resolution.Exception = true
			return resolution, nil
		}
	}

	setting, err := s.orgContentService.GetSchedule(orgID)
	if err != nil {
		return nil, err
	}
	h := setting.Effective().Day(hours.FromTime(day.Weekday()))
	resolution.Hours = h
	resolution.Text = hours.FormatDay(h)
	return resolution, nil
}

// IsOpenAt reports whether the lot is open at t. The wall clock of t is used as given,
// so callers pass times in the lot's own zone.
func (s *ExceptionDateService) IsOpenAt(orgID string, t time.Time) (bool, *DayResolution, error) {
	resolution, err := s.HoursOn(orgID, t)
	if err != nil {
		return false, nil, err
	}
	return resolution.Hours.OpenAt(hours.TimeOfDay{Hour: t.Hour(), Minute: t.Minute()}), resolution, nil
}

func (s *ExceptionDateService) apply(exception *models.ExceptionDate, input ExceptionDateInput) error {
	var errs models.ValidationErrors

	date := strings.TrimSpace(input.Date)
	if err := models.ValidateExceptionDate(date); err != nil {
		var verr *models.ValidationError
		if errors.As(err, &verr) {
			errs = append(errs, verr)
		} else {
			return err
		}
	}

	text, err := normalizeDayHours(input)
	if err != nil {
		errs = append(errs, &models.ValidationError{Field: "hours", Message: err.Error()})
	}

	if err := errs.OrNil(); err != nil {
		return err
	}

	exception.Date = date
	exception.Hours = text
	return nil
}

func normalizeDayHours(input ExceptionDateInput) (string, error) {
	if input.Day != nil {
		if err := input.Day.Validate(); err != nil {
			return "", err
		}
		return hours.FormatDay(*input.Day), nil
	}

	if strings.TrimSpace(input.Hours) == "" {
		return "", errors.New("hours are required")
	}
	h, ok := hours.ParseDay(input.Hours)
	if !ok {
		return "", errors.New(`hours must be "Closed" or ranges like "9:00 AM - 5:00 PM"`)
	}
	return hours.FormatDay(h), nil
}
