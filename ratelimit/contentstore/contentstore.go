package contentstore

import (
	"context"
	"errors"
	"time"
)

var ErrThreadNotFound = errors.New("thread not found")

// Minimal projection of a post or comment: enough to evaluate temporal
// windows and thread ownership, never the content body.
type ActivityItem struct {
	CreatedAt time.Time
	ThreadID  string
	AuthorID  string
}

// Thread-level metadata needed for exemptions and own-thread filtering.
type ThreadMeta struct {
	ID               string
	AuthorID         string
	CoauthorIDs      []string
	IgnoreRateLimits bool
}

// Whether userID authored or co-authored the thread.
func (tm *ThreadMeta) IsAuthor(userID string) bool {
	if tm.AuthorID == userID {
		return true
	}
	for _, id := range tm.CoauthorIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// Read-only boundary to the content store. Recent* results are sorted
// descending by creation time and restricted to items at or after `since`.
//
// Implementations must return errors on store failure rather than empty
// results: an empty activity list silently unblocks a user who should be
// rate-limited.
type ContentStore interface {
	RecentPosts(ctx context.Context, authorID string, since time.Time) ([]ActivityItem, error)
	RecentComments(ctx context.Context, authorID string, since time.Time) ([]ActivityItem, error)
	ThreadMeta(ctx context.Context, threadID string) (*ThreadMeta, error)
	// set-membership filter: which of threadIDs the user authored or
	// co-authored
	OwnedThreadIDs(ctx context.Context, userID string, threadIDs []string) (map[string]bool, error)
}
