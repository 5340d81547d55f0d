package models

import (
	"time"
)

// BulletField names a free-text "* item" list column on OrgContent
type BulletField string

const (
	BulletFieldDocumentsNeeded BulletField = "documents_needed"
	BulletFieldExtraCosts      BulletField = "extra_costs"
	BulletFieldAuctionTriggers BulletField = "auction_triggers"
)

// ParseBulletField validates a field name taken from a URL
func ParseBulletField(name string) (BulletField, error) {
	switch field := BulletField(name); field {
	case BulletFieldDocumentsNeeded, BulletFieldExtraCosts, BulletFieldAuctionTriggers:
		return field, nil
	}
	return "", &ValidationError{Field: "field", Message: "unknown list field: " + name}
}

// OrgContent is the per-organization settings the phone agent reads from.
// DefaultHoursOfOperation is nil until the operator saves hours.
type OrgContent struct {
	OrgID                   string    `json:"org_id"`
	DefaultHoursOfOperation *string   `json:"default_hours_of_operation"`
	DocumentsNeeded         string    `json:"documents_needed"`
	ExtraCosts              string    `json:"extra_costs"`
	AuctionTriggers         string    `json:"auction_triggers"`
	UpdatedBy               *string   `json:"updated_by,omitempty"`
	UpdatedAt               time.Time `json:"updated_at"`
}

// NewOrgContent returns an empty record for an organization that has saved nothing yet
func NewOrgContent(orgID string) *OrgContent {
	return &OrgContent{OrgID: orgID}
}

// Bullet returns the text of a list field
func (c *OrgContent) Bullet(field BulletField) string {
	switch field {
	case BulletFieldDocumentsNeeded:
		return c.DocumentsNeeded
	case BulletFieldExtraCosts:
		return c.ExtraCosts
	case BulletFieldAuctionTriggers:
		return c.AuctionTriggers
	default:
		return ""
	}
}

// SetBullet replaces the text of a list field
func (c *OrgContent) SetBullet(field BulletField, text string) {
	switch field {
	case BulletFieldDocumentsNeeded:
		c.DocumentsNeeded = text
	case BulletFieldExtraCosts:
		c.ExtraCosts = text
	case BulletFieldAuctionTriggers:
		c.AuctionTriggers = text
	}
}
