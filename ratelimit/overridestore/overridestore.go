package overridestore

import (
	"context"
	"time"

	"github.com/grove-social/weir/ratelimit/policy"
)

// A moderator-assigned custom rate limit for one user. Rows are created,
// edited, and expired by moderation tooling; the engine only reads them.
type Override struct {
	UserID             string
	Action             policy.Action
	Interval           policy.Timeframe
	ActionsPerInterval int
	// empty means the limit applies on any thread
	ThreadID   string
	CreatedAt  time.Time
	ValidFrom  time.Time
	ValidUntil *time.Time
}

func (o *Override) ActiveAt(t time.Time) bool {
	if o.ValidFrom.After(t) {
		return false
	}
	if o.ValidUntil != nil && !o.ValidUntil.After(t) {
		return false
	}
	return true
}

// Read boundary to the moderation store. Implementations return only
// overrides active at `now` (ValidUntil null or in the future), sorted
// descending by creation time.
type OverrideStore interface {
	ActiveOverrides(ctx context.Context, userID string, action policy.Action, now time.Time) ([]Override, error)
}
