package realtime

import (
	"context"
	"sync"

	"github.com/alimgiray/lotdesk/internal/metrics"
	"github.com/alimgiray/lotdesk/internal/models"
	"github.com/alimgiray/lotdesk/pkg/logger"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const defaultFeedCapacity = 200

// Fetcher loads one tow request by ID
type Fetcher interface {
	GetByID(id string) (*models.TowRequest, error)
}

// Merge outcomes
const (
	MergeReplaced  = "replaced"
	MergePrepended = "prepended"
	MergeStale     = "stale"
	MergeUnseeded  = "unseeded"
)

// Feed keeps a live, newest-first list of tow requests per organization.
// Changes queue their row ID once, a worker point-fetches the row, and the
// row is merged by ID: replaced in place when present, prepended otherwise.
type Feed struct {
	fetcher  Fetcher
	limiter  *rate.Limiter
	capacity int

	mu      sync.Mutex
	lists   map[string][]*models.TowRequest
	pending map[string]struct{}
	queue   []string
	notify  chan struct{}
}

// NewFeed creates a feed that point-fetches at most fetchRate rows per second
func NewFeed(fetcher Fetcher, fetchRate float64, burst int) *Feed {
	return &Feed{
		fetcher:  fetcher,
		limiter:  rate.NewLimiter(rate.Limit(fetchRate), burst),
		capacity: defaultFeedCapacity,
		lists:    make(map[string][]*models.TowRequest),
		pending:  make(map[string]struct{}),
		notify:   make(chan struct{}, 1),
	}
}

// Listen enqueues every change from sub until ctx is cancelled
func (f *Feed) Listen(ctx context.Context, sub Subscriber) error {
	changes, err := sub.Subscribe(ctx, TableTowRequests)
	if err != nil {
		return err
	}

	for change := range changes {
		f.Enqueue(change)
	}
	return ctx.Err()
}

// Enqueue queues a changed row for point-fetch. IDs already waiting are not queued twice,
// and organizations nobody is watching are skipped.
func (f *Feed) Enqueue(change Change) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, watched := f.lists[change.OrgID]; !watched {
		return false
	}
	if _, queued := f.pending[change.ID]; queued {
		return false
	}

	f.pending[change.ID] = struct{}{}
	f.queue = append(f.queue, change.ID)

	select {
	case f.notify <- struct{}{}:
	default:
	}
	return true
}

// Next blocks until an ID is queued or ctx ends
func (f *Feed) Next(ctx context.Context) (string, bool) {
	for {
		f.mu.Lock()
		if len(f.queue) > 0 {
			id := f.queue[0]
			f.queue = f.queue[1:]
			// a change arriving during the fetch queues the ID again
			delete(f.pending, id)
			more := len(f.queue) > 0
			f.mu.Unlock()

			if more {
				select {
				case f.notify <- struct{}{}:
				default:
				}
			}
			return id, true
		}
		f.mu.Unlock()

		select {
		case <-ctx.Done():
			return "", false
		case <-f.notify:
		}
	}
}

// Process point-fetches id and merges the row
func (f *Feed) Process(ctx context.Context, id string) error {
	if err := f.limiter.Wait(ctx); err != nil {
		return err
	}

	req, err := f.fetcher.GetByID(id)
	if err != nil {
		metrics.IncFeedFetchError()
		logger.WithError(err).WithField("id", id).Warn("Feed point-fetch failed")
		return err
	}

	result := f.Merge(req)
	metrics.IncFeedMerge(result)
	logger.WithFields(logrus.Fields{"id": id, "result": result}).Debug("Feed merge")
	return nil
}

// Merge inserts or replaces req in its organization's list
func (f *Feed) Merge(req *models.TowRequest) string {
	f.mu.Lock()
	defer f.mu.Unlock()

	list, watched := f.lists[req.OrgID]
	if !watched {
		return MergeUnseeded
	}

	for i, existing := range list {
		if existing.ID != req.ID {
			continue
		}
		if req.UpdatedAt.Before(existing.UpdatedAt) {
			return MergeStale
		}
		list[i] = req
		return MergeReplaced
	}

	merged := make([]*models.TowRequest, 0, len(list)+1)
	merged = append(merged, req)
	merged = append(merged, list...)
	if len(merged) > f.capacity {
		merged = merged[:f.capacity]
	}
	f.lists[req.OrgID] = merged
	return MergePrepended
}

// Seed loads the first page for an organization and starts tracking it.
// It reports false when the organization was already seeded.
func (f *Feed) Seed(orgID string, items []*models.TowRequest) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, watched := f.lists[orgID]; watched {
		return false
	}

	list := make([]*models.TowRequest, 0, len(items))
	list = append(list, items...)
	f.lists[orgID] = list
	return true
}

// Seeded reports whether orgID is being tracked
func (f *Feed) Seeded(orgID string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, watched := f.lists[orgID]
	return watched
}

// Snapshot returns a copy of the organization's list
func (f *Feed) Snapshot(orgID string) []*models.TowRequest {
	f.mu.Lock()
	defer f.mu.Unlock()

	list := f.lists[orgID]
	out := make([]*models.TowRequest, len(list))
	copy(out, list)
	return out
}

// Pending returns the number of queued IDs
func (f *Feed) Pending() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queue)
}
