package engine

import (
	"time"

	"github.com/grove-social/weir/ratelimit/contentstore"
	"github.com/grove-social/weir/ratelimit/overridestore"
	"github.com/grove-social/weir/ratelimit/policy"
)

// Message shown when a moderator-assigned limit binds; the specific interval
// comes from the override row, so the copy stays generic.
const moderatorLimitMessage = "A moderator has set a rate limit on your account. Check your moderation notices for details."

// Picks the single governing override from the active set: the most recently
// created one. The store returns rows newest-first, so this is the head of
// the list. Multiple simultaneously-active overrides should not normally
// occur; latest-created-wins is a documented tie-break, not an error.
//
// Thread-scoped overrides only govern when commenting on the matching
// thread, and never constrain the thread's own author.
func governingOverride(overrides []overridestore.Override, thread *contentstore.ThreadMeta, userID string) *overridestore.Override {
	for i := range overrides {
		o := &overrides[i]
		if o.ThreadID == "" {
			return o
		}
		if thread == nil || thread.ID != o.ThreadID {
			continue
		}
		if thread.IsAuthor(userID) {
			continue
		}
		return o
	}
	return nil
}

// Converts an override into the same shape as an automatic policy decision,
// using the shared pivot computation against the same activity list.
func evaluateOverride(o *overridestore.Override, activity []contentstore.ActivityItem, now time.Time) *Decision {
	d := windowDecision(o.Interval, o.ActionsPerInterval, activity, now)
	if d == nil {
		return nil
	}
	d.Kind = policy.KindModerator
	d.Message = moderatorLimitMessage
	return d
}
