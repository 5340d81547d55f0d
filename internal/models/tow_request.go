package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// TowRequestStatus represents where a tow request is in its lifecycle
type TowRequestStatus string

const (
	TowRequestStatusPending    TowRequestStatus = "pending"
	TowRequestStatusDispatched TowRequestStatus = "dispatched"
	TowRequestStatusCompleted  TowRequestStatus = "completed"
	TowRequestStatusCancelled  TowRequestStatus = "cancelled"
)

var towRequestTransitions = map[TowRequestStatus][]TowRequestStatus{
	TowRequestStatusPending:    {TowRequestStatusDispatched, TowRequestStatusCancelled},
	TowRequestStatusDispatched: {TowRequestStatusCompleted, TowRequestStatusCancelled},
}

// TowRequest is a pickup request, usually logged by the phone agent
type TowRequest struct {
	ID                 string           `json:"id"`
	OrgID              string           `json:"org_id"`
	VehicleDescription string           `json:"vehicle_description"`
	PlateNumber        string           `json:"plate_number"`
	CallerPhone        string           `json:"caller_phone"`
	PickupAddress      string           `json:"pickup_address"`
	Status             TowRequestStatus `json:"status"`
	CreatedAt          time.Time        `json:"created_at"`
	UpdatedAt          time.Time        `json:"updated_at"`
}

// NewTowRequest creates a pending TowRequest with a generated UUID
func NewTowRequest(orgID string) *TowRequest {
	now := time.Now().UTC()
	return &TowRequest{
		ID:        uuid.New().String(),
		OrgID:     orgID,
		Status:    TowRequestStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (r *TowRequest) Validate() error {
	var errs ValidationErrors
	if strings.TrimSpace(r.VehicleDescription) == "" && strings.TrimSpace(r.PlateNumber) == "" {
		errs = append(errs, &ValidationError{Field: "vehicle_description", Message: "vehicle description or plate number is required"})
	}
	if strings.TrimSpace(r.PickupAddress) == "" {
		errs = append(errs, &ValidationError{Field: "pickup_address", Message: "pickup address is required"})
	}
	return errs.OrNil()
}

// IsValid checks the status is one of the known values
func (s TowRequestStatus) IsValid() bool {
	switch s {
	case TowRequestStatusPending, TowRequestStatusDispatched, TowRequestStatusCompleted, TowRequestStatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo reports whether the status may move to next
func (r *TowRequest) CanTransitionTo(next TowRequestStatus) bool {
	for _, allowed := range towRequestTransitions[r.Status] {
		if allowed == next {
			return true
		}
	}
	return false
}
