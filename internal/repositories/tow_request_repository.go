package repositories

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/alimgiray/lotdesk/internal/models"
)

const towRequestColumns = `id, org_id, vehicle_description, plate_number, caller_phone,
	pickup_address, status, created_at, updated_at`

// TowRequestRepository handles database operations for tow requests
type TowRequestRepository struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewTowRequestRepository creates a new TowRequestRepository
func NewTowRequestRepository(db *sql.DB) *TowRequestRepository {
	return &TowRequestRepository{db: db}
}

// Create creates a new tow request
func (r *TowRequestRepository) Create(req *models.TowRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	query := `
		INSERT INTO tow_requests (` + towRequestColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.Exec(query,
		req.ID,
		req.OrgID,
		req.VehicleDescription,
		req.PlateNumber,
		req.CallerPhone,
		req.PickupAddress,
		req.Status,
		req.CreatedAt.UTC(),
		req.UpdatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("error creating tow request: %w", err)
	}
	return nil
}

// GetByID retrieves a tow request by ID
func (r *TowRequestRepository) GetByID(id string) (*models.TowRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	query := `SELECT ` + towRequestColumns + ` FROM tow_requests WHERE id = ?`

	req, err := scanTowRequest(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error getting tow request: %w", err)
	}
	return req, nil
}

// UpdateStatus sets the status of a tow request
func (r *TowRequestRepository) UpdateStatus(req *models.TowRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	req.UpdatedAt = time.Now().UTC()

	query := `UPDATE tow_requests SET status = ?, updated_at = ? WHERE id = ?`

	result, err := r.db.Exec(query, req.Status, req.UpdatedAt, req.ID)
	if err != nil {
		return fmt.Errorf("error updating tow request: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return models.ErrNotFound
	}
	return nil
}

// ListPage returns tow requests newest first, starting after cursor
func (r *TowRequestRepository) ListPage(orgID string, cursor *Cursor, limit int) (*Page[*models.TowRequest], error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	limit = ClampPageSize(limit)

	query := `SELECT ` + towRequestColumns + ` FROM tow_requests WHERE org_id = ?`
	args := []interface{}{orgID}
	if cursor != nil {
		query += ` AND (created_at < ? OR (created_at = ? AND id < ?))`
		createdAt := cursor.CreatedAt.UTC()
		args = append(args, createdAt, createdAt, cursor.ID)
	}
	query += ` ORDER BY created_at DESC, id DESC LIMIT ?`
	// one extra row tells us whether another page exists
	args = append(args, limit+1)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing tow requests: %w", err)
	}
	defer rows.Close()

	items := []*models.TowRequest{}
	for rows.Next() {
		req, err := scanTowRequest(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, req)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	page := &Page[*models.TowRequest]{Items: items}
	if len(items) > limit {
		page.Items = items[:limit]
		last := page.Items[limit-1]
		page.NextCursor = Cursor{CreatedAt: last.CreatedAt, ID: last.ID}.Encode()
	}

	return page, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTowRequest(row rowScanner) (*models.TowRequest, error) {
	req := &models.TowRequest{}
	err := row.Scan(
		&req.ID,
		&req.OrgID,
		&req.VehicleDescription,
		&req.PlateNumber,
		&req.CallerPhone,
		&req.PickupAddress,
		&req.Status,
		&req.CreatedAt,
		&req.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return req, nil
}
