package services

import (
	"fmt"
	"strings"

	"github.com/alimgiray/lotdesk/internal/hours"
	"github.com/alimgiray/lotdesk/internal/metrics"
	"github.com/alimgiray/lotdesk/internal/models"
	"github.com/alimgiray/lotdesk/internal/repositories"
	"github.com/alimgiray/lotdesk/pkg/logger"
	"github.com/sirupsen/logrus"
)

const (
	scheduleSourceStructured = "structured"
	scheduleSourceText       = "text"
)

// ContentPatch carries the fields of a partial content update. Nil fields are left alone.
type ContentPatch struct {
	DefaultHoursOfOperation *string
	Schedule                *hours.WeekSchedule
	DocumentsNeeded         *string
	ExtraCosts              *string
	AuctionTriggers         *string
}

type OrgContentService struct {
	orgContentRepo *repositories.OrgContentRepository
}

func NewOrgContentService(orgContentRepo *repositories.OrgContentRepository) *OrgContentService {
	return &OrgContentService{
		orgContentRepo: orgContentRepo,
	}
}

// GetContent returns the organization's content, or an empty record if nothing was saved
func (s *OrgContentService) GetContent(orgID string) (*models.OrgContent, error) {
	content, err := s.orgContentRepo.GetByOrgID(orgID)
	if err != nil {
		return nil, err
	}
	if content == nil {
		content = models.NewOrgContent(orgID)
	}
	return content, nil
}

// GetSchedule decodes the stored hours text. Days the text does not cover fall back to the default.
func (s *OrgContentService) GetSchedule(orgID string) (hours.Setting, error) {
	content, err := s.GetContent(orgID)
	if err != nil {
		return hours.Unset(), err
	}

	setting := hours.FromStored(content.DefaultHoursOfOperation)
	if !setting.IsConfigured() {
		return setting, nil
	}

	_, coverage := hours.Decode(*content.DefaultHoursOfOperation)
	if missing := coverage.Missing(); len(missing) > 0 {
		metrics.AddScheduleDefaultDays(len(missing))
		logger.WithFields(logrus.Fields{
			"org_id":  orgID,
			"missing": len(missing),
		}).Debug("Stored hours did not cover every day, using defaults")
	}

	return setting, nil
}

// SaveSchedule serializes the schedule and replaces the stored hours wholesale
func (s *OrgContentService) SaveSchedule(orgID, userID string, w hours.WeekSchedule) (string, error) {
	if err := w.Validate(); err != nil {
		return "", &models.ValidationError{Field: "schedule", Message: err.Error()}
	}

	text := hours.Format(w)
	if err := s.orgContentRepo.UpdateHours(orgID, text, userID); err != nil {
		return "", err
	}

	metrics.IncScheduleSave(scheduleSourceStructured)
	logger.WithFields(logrus.Fields{"org_id": orgID, "user_id": userID}).Info("Saved hours of operation")
	return text, nil
}

// SaveScheduleText accepts hours in bullet-list text form and stores the canonical rendering.
// Blank text clears the setting.
func (s *OrgContentService) SaveScheduleText(orgID, userID, text string) (string, error) {
	if strings.TrimSpace(text) != "" {
		text = hours.Format(hours.Parse(text))
	} else {
		text = ""
	}

	if err := s.orgContentRepo.UpdateHours(orgID, text, userID); err != nil {
		return "", err
	}

	metrics.IncScheduleSave(scheduleSourceText)
	logger.WithFields(logrus.Fields{"org_id": orgID, "user_id": userID}).Info("Saved hours of operation")
	return text, nil
}

// UpdateContent applies a partial update and returns the stored result
func (s *OrgContentService) UpdateContent(orgID, userID string, patch ContentPatch) (*models.OrgContent, error) {
	if patch.Schedule != nil && patch.DefaultHoursOfOperation != nil {
		return nil, &models.ValidationError{
			Field:   "schedule",
			Message: "send either schedule or default_hours_of_operation, not both",
		}
	}

	content, err := s.GetContent(orgID)
	if err != nil {
		return nil, err
	}

	source := ""
	switch {
	case patch.Schedule != nil:
		if err := patch.Schedule.Validate(); err != nil {
			return nil, &models.ValidationError{Field: "schedule", Message: err.Error()}
		}
		text := hours.Format(*patch.Schedule)
		content.DefaultHoursOfOperation = &text
		source = scheduleSourceStructured
	case patch.DefaultHoursOfOperation != nil:
		text := ""
		if strings.TrimSpace(*patch.DefaultHoursOfOperation) != "" {
			text = hours.Format(hours.Parse(*patch.DefaultHoursOfOperation))
		}
		content.DefaultHoursOfOperation = &text
		source = scheduleSourceText
	}

	if patch.DocumentsNeeded != nil {
		content.DocumentsNeeded = *patch.DocumentsNeeded
	}
	if patch.ExtraCosts != nil {
		content.ExtraCosts = *patch.ExtraCosts
	}
	if patch.AuctionTriggers != nil {
		content.AuctionTriggers = *patch.AuctionTriggers
	}

	content.UpdatedBy = &userID
	if err := s.orgContentRepo.Upsert(content); err != nil {
		return nil, err
	}

	if source != "" {
		metrics.IncScheduleSave(source)
	}
	return content, nil
}

// AppendBulletItem adds "* item" to one list field and returns the new text
func (s *OrgContentService) AppendBulletItem(orgID, userID string, field models.BulletField, item string) (string, error) {
	content, err := s.GetContent(orgID)
	if err != nil {
		return "", err
	}

	text, err := hours.AppendBullet(content.Bullet(field), item)
	if err != nil {
		return "", &models.ValidationError{Field: "item", Message: err.Error()}
	}

	if err := s.orgContentRepo.UpdateBulletField(orgID, field, text, userID); err != nil {
		return "", err
	}

	metrics.IncBulletEdit(string(field), "append")
	return text, nil
}

// DeleteBulletItem removes the ordinal-th bullet (zero based) from one list field
func (s *OrgContentService) DeleteBulletItem(orgID, userID string, field models.BulletField, ordinal int) (string, error) {
	content, err := s.GetContent(orgID)
	if err != nil {
		return "", err
	}

	text, err := hours.DeleteBullet(content.Bullet(field), ordinal)
	if err != nil {
		return "", fmt.Errorf("bullet %d of %s: %w", ordinal, field, models.ErrNotFound)
	}

	if err := s.orgContentRepo.UpdateBulletField(orgID, field, text, userID); err != nil {
		return "", err
	}

	metrics.IncBulletEdit(string(field), "delete")
	return text, nil
}
