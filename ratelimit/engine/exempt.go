package engine

import (
	"github.com/grove-social/weir/ratelimit/contentstore"
	"github.com/grove-social/weir/ratelimit/policy"
)

// Whether the user/action is wholly exempt from automatic and per-thread
// rate limits. Pure function; thread may be nil (post creation).
func Exempt(acct *AccountMeta, action policy.Action, thread *contentstore.ThreadMeta) bool {
	if acct.Privileged() {
		return true
	}
	if action == policy.ActionPosts && acct.RateLimitExempt {
		return true
	}
	if thread != nil && thread.IgnoreRateLimits {
		return true
	}
	return false
}
