package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/alimgiray/lotdesk/internal/models"
	"github.com/alimgiray/lotdesk/internal/realtime"
	"github.com/alimgiray/lotdesk/internal/repositories"
	"github.com/alimgiray/lotdesk/pkg/logger"
	"github.com/sirupsen/logrus"
)

// TowRequestInput holds the caller-supplied fields of a new tow request
type TowRequestInput struct {
	VehicleDescription string
	PlateNumber        string
	CallerPhone        string
	PickupAddress      string
}

type TowRequestService struct {
	towRequestRepo *repositories.TowRequestRepository
	publisher      realtime.Publisher
	feed           *realtime.Feed
	seedLimit      int
}

func NewTowRequestService(
	towRequestRepo *repositories.TowRequestRepository,
	publisher realtime.Publisher,
	feed *realtime.Feed,
	seedLimit int,
) *TowRequestService {
	return &TowRequestService{
		towRequestRepo: towRequestRepo,
		publisher:      publisher,
		feed:           feed,
		seedLimit:      seedLimit,
	}
}

// Create stores a pending tow request and announces it
func (s *TowRequestService) Create(ctx context.Context, orgID string, input TowRequestInput) (*models.TowRequest, error) {
	req := models.NewTowRequest(orgID)
	req.VehicleDescription = strings.TrimSpace(input.VehicleDescription)
	req.PlateNumber = strings.ToUpper(strings.TrimSpace(input.PlateNumber))
	req.CallerPhone = strings.TrimSpace(input.CallerPhone)
	req.PickupAddress = strings.TrimSpace(input.PickupAddress)

	if err := req.Validate(); err != nil {
		return nil, err
	}

	if err := s.towRequestRepo.Create(req); err != nil {
		return nil, err
	}

	s.announce(ctx, realtime.ChangeInsert, req)
	return req, nil
}

// Get retrieves a tow request belonging to orgID
func (s *TowRequestService) Get(orgID, id string) (*models.TowRequest, error) {
	req, err := s.towRequestRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if req.OrgID != orgID {
		return nil, models.ErrNotFound
	}
	return req, nil
}

// UpdateStatus moves a tow request along its lifecycle and announces the change
func (s *TowRequestService) UpdateStatus(ctx context.Context, orgID, id string, status models.TowRequestStatus) (*models.TowRequest, error) {
	if !status.IsValid() {
		return nil, &models.ValidationError{Field: "status", Message: fmt.Sprintf("unknown status %q", status)}
	}

	req, err := s.Get(orgID, id)
	if err != nil {
		return nil, err
	}

	if req.Status == status {
		return req, nil
	}
	if !req.CanTransitionTo(status) {
		return nil, &models.ValidationError{
			Field:   "status",
			Message: fmt.Sprintf("cannot move from %s to %s", req.Status, status),
		}
	}

	req.Status = status
	if err := s.towRequestRepo.UpdateStatus(req); err != nil {
		return nil, err
	}

	s.announce(ctx, realtime.ChangeUpdate, req)
	return req, nil
}

// ListPage returns one page of the organization's tow requests, newest first
func (s *TowRequestService) ListPage(orgID, cursorToken string, limit int) (*repositories.Page[*models.TowRequest], error) {
	cursor, err := repositories.DecodeCursor(cursorToken)
	if err != nil {
		if errors.Is(err, repositories.ErrInvalidCursor) {
			return nil, &models.ValidationError{Field: "cursor", Message: err.Error()}
		}
		return nil, err
	}
	return s.towRequestRepo.ListPage(orgID, cursor, limit)
}

// Live returns the realtime feed for an organization, seeding it from the database on first use
func (s *TowRequestService) Live(orgID string) ([]*models.TowRequest, error) {
	if !s.feed.Seeded(orgID) {
		page, err := s.towRequestRepo.ListPage(orgID, nil, s.seedLimit)
		if err != nil {
			return nil, err
		}
		if s.feed.Seed(orgID, page.Items) {
			logger.WithFields(logrus.Fields{
				"org_id": orgID,
				"rows":   len(page.Items),
			}).Info("Seeded live tow request feed")
		}
	}
	return s.feed.Snapshot(orgID), nil
}

// announce publishes a change. The row is already stored, so a failed publish is only logged.
func (s *TowRequestService) announce(ctx context.Context, changeType realtime.ChangeType, req *models.TowRequest) {
	change := realtime.Change{
		Table: realtime.TableTowRequests,
		Type:  changeType,
		ID:    req.ID,
		OrgID: req.OrgID,
	}
	if err := s.publisher.Publish(ctx, change); err != nil {
		logger.WithError(err).WithFields(logrus.Fields{
			"id":   req.ID,
			"type": changeType,
		}).Warn("Failed to publish tow request change")
	}
}
