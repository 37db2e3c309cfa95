package guard

import (
	"context"
	"time"

	"github.com/mcoot/teamscore/internal/dependencies/clock"
	"github.com/mcoot/teamscore/internal/model"
	"github.com/mcoot/teamscore/internal/storage"
)

// Tracker records when an admin's competition assignments last changed.
// Entries live as long as the longest credential that could predate them.
type Tracker struct {
	storage storage.Storage
	clock   clock.Clock
	ttl     time.Duration
}

// NewTracker creates a Tracker whose entries expire after ttl
func NewTracker(storage storage.Storage, clock clock.Clock, ttl time.Duration) *Tracker {
	return &Tracker{storage: storage, clock: clock, ttl: ttl}
}

// RecordChange marks every credential issued to admin before now as stale
func (t *Tracker) RecordChange(ctx context.Context, admin model.AccountID) error {
	return t.storage.RecordAssignmentChange(ctx, admin, t.clock.Now(), t.ttl)
}

// IssuedBeforeChange reports whether a credential issued at issuedAt predates
// the admin's latest assignment change
func (t *Tracker) IssuedBeforeChange(ctx context.Context, admin model.AccountID, issuedAt time.Time) (bool, error) {
	changedAt, found, err := t.storage.GetAssignmentChange(ctx, admin)
	if err != nil || !found {
		return false, err
	}
	return issuedAt.Before(changedAt), nil
}
