package repositories

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/alimgiray/lotdesk/internal/models"
	"github.com/mattn/go-sqlite3"
)

type ExceptionDateRepository struct {
	db *sql.DB
}

func NewExceptionDateRepository(db *sql.DB) *ExceptionDateRepository {
	return &ExceptionDateRepository{
		db: db,
	}
}

// Create inserts an exception date and sets its generated ID
func (r *ExceptionDateRepository) Create(exception *models.ExceptionDate) error {
	query := `
		INSERT INTO exception_dates (org_id, date, hours)
		VALUES (?, ?, ?)
	`

	result, err := r.db.Exec(query, exception.OrgID, exception.Date, exception.Hours)
	if isUniqueViolation(err) {
		return models.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("error creating exception date: %w", err)
	}

	exception.ID, err = result.LastInsertId()
	if err != nil {
		return fmt.Errorf("error reading exception date id: %w", err)
	}

	return nil
}

// GetByID retrieves an exception date scoped to an organization
func (r *ExceptionDateRepository) GetByID(orgID string, id int64) (*models.ExceptionDate, error) {
	query := `
		SELECT id, org_id, date, hours, created_at
		FROM exception_dates
		WHERE id = ? AND org_id = ?
	`

	exception := &models.ExceptionDate{}
	err := r.db.QueryRow(query, id, orgID).Scan(
		&exception.ID,
		&exception.OrgID,
		&exception.Date,
		&exception.Hours,
		&exception.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error getting exception date: %w", err)
	}

	return exception, nil
}

// ListByOrgID retrieves all exception dates for an organization in calendar order
func (r *ExceptionDateRepository) ListByOrgID(orgID string) ([]*models.ExceptionDate, error) {
	query := `
		SELECT id, org_id, date, hours, created_at
		FROM exception_dates
		WHERE org_id = ?
		ORDER BY date, id
	`

	rows, err := r.db.Query(query, orgID)
	if err != nil {
		return nil, fmt.Errorf("error listing exception dates: %w", err)
	}
	defer rows.Close()

	exceptions := []*models.ExceptionDate{}
	for rows.Next() {
		exception := &models.ExceptionDate{}
		err := rows.Scan(
			&exception.ID,
			&exception.OrgID,
			&exception.Date,
			&exception.Hours,
			&exception.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		exceptions = append(exceptions, exception)
	}

	return exceptions, rows.Err()
}

// Update replaces the date and hours of an exception
func (r *ExceptionDateRepository) Update(exception *models.ExceptionDate) error {
	query := `UPDATE exception_dates SET date = ?, hours = ? WHERE id = ? AND org_id = ?`

	result, err := r.db.Exec(query, exception.Date, exception.Hours, exception.ID, exception.OrgID)
	if isUniqueViolation(err) {
		return models.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("error updating exception date: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return sql.ErrNoRows
	}

	return nil
}

// Delete deletes an exception date by ID
func (r *ExceptionDateRepository) Delete(orgID string, id int64) error {
	query := `DELETE FROM exception_dates WHERE id = ? AND org_id = ?`

	result, err := r.db.Exec(query, id, orgID)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return sql.ErrNoRows
	}

	return nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
}
