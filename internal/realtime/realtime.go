package realtime

import (
	"context"
)

// ChangeType is the kind of row-level change
type ChangeType string

const (
	ChangeInsert ChangeType = "INSERT"
	ChangeUpdate ChangeType = "UPDATE"
)

// TableTowRequests is the only table pushed to dashboards today
const TableTowRequests = "tow_requests"

// Change is a row-level notification. Consumers point-fetch the row by ID.
type Change struct {
	Table string     `json:"table"`
	Type  ChangeType `json:"type"`
	ID    string     `json:"id"`
	OrgID string     `json:"org_id"`
}

// Publisher announces row changes
type Publisher interface {
	Publish(ctx context.Context, change Change) error
}

// Subscriber delivers changes for one table until ctx is cancelled, then closes the channel
type Subscriber interface {
	Subscribe(ctx context.Context, table string) (<-chan Change, error)
}

// Channel is both ends of a realtime transport
type Channel interface {
	Publisher
	Subscriber
}
