package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/alimgiray/lotdesk/internal/models"
)

type OrgContentRepository struct {
	db *sql.DB
}

func NewOrgContentRepository(db *sql.DB) *OrgContentRepository {
	return &OrgContentRepository{db: db}
}

// GetByOrgID retrieves the content row for an organization. It returns nil, nil when none was saved.
func (r *OrgContentRepository) GetByOrgID(orgID string) (*models.OrgContent, error) {
	query := `
		SELECT org_id, default_hours_of_operation, documents_needed, extra_costs,
		       auction_triggers, updated_by, updated_at
		FROM org_content
		WHERE org_id = $1
	`

	var content models.OrgContent
	var hours, updatedBy sql.NullString
	err := r.db.QueryRow(query, orgID).Scan(
		&content.OrgID, &hours, &content.DocumentsNeeded, &content.ExtraCosts,
		&content.AuctionTriggers, &updatedBy, &content.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("error getting org content: %w", err)
	}

	if hours.Valid {
		content.DefaultHoursOfOperation = &hours.String
	}
	if updatedBy.Valid {
		content.UpdatedBy = &updatedBy.String
	}

	return &content, nil
}

// Upsert writes every column of the content row, replacing any previous values
func (r *OrgContentRepository) Upsert(content *models.OrgContent) error {
	content.UpdatedAt = time.Now().UTC()

	query := `
		INSERT INTO org_content (
			org_id, default_hours_of_operation, documents_needed, extra_costs,
			auction_triggers, updated_by, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT(org_id) DO UPDATE SET
			default_hours_of_operation = excluded.default_hours_of_operation,
			documents_needed = excluded.documents_needed,
			extra_costs = excluded.extra_costs,
			auction_triggers = excluded.auction_triggers,
			updated_by = excluded.updated_by,
			updated_at = excluded.updated_at
	`

	_, err := r.db.Exec(query,
		content.OrgID, nullableString(content.DefaultHoursOfOperation), content.DocumentsNeeded,
		content.ExtraCosts, content.AuctionTriggers, nullableString(content.UpdatedBy), content.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("error upserting org content: %w", err)
	}

	return nil
}

// UpdateHours replaces the stored hours text wholesale, creating the row if needed
func (r *OrgContentRepository) UpdateHours(orgID, hoursText, updatedBy string) error {
	query := `
		INSERT INTO org_content (org_id, default_hours_of_operation, updated_by, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT(org_id) DO UPDATE SET
			default_hours_of_operation = excluded.default_hours_of_operation,
			updated_by = excluded.updated_by,
			updated_at = excluded.updated_at
	`

	_, err := r.db.Exec(query, orgID, hoursText, updatedBy, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("error updating hours of operation: %w", err)
	}

	return nil
}

// UpdateBulletField replaces one list column, creating the row if needed
func (r *OrgContentRepository) UpdateBulletField(orgID string, field models.BulletField, text, updatedBy string) error {
	column, err := bulletColumn(field)
	if err != nil {
		return err
	}

	// column comes from a fixed whitelist
	query := fmt.Sprintf(`
		INSERT INTO org_content (org_id, %[1]s, updated_by, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT(org_id) DO UPDATE SET
			%[1]s = excluded.%[1]s,
			updated_by = excluded.updated_by,
			updated_at = excluded.updated_at
	`, column)

	if _, err := r.db.Exec(query, orgID, text, updatedBy, time.Now().UTC()); err != nil {
		return fmt.Errorf("error updating %s: %w", column, err)
	}

	return nil
}

func bulletColumn(field models.BulletField) (string, error) {
	switch field {
	case models.BulletFieldDocumentsNeeded, models.BulletFieldExtraCosts, models.BulletFieldAuctionTriggers:
		return string(field), nil
	}
	return "", fmt.Errorf("unknown bullet field %q", field)
}

func nullableString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
