package engine

import (
	"time"

	"github.com/grove-social/weir/ratelimit/policy"
)

// Metadata about the submitting user, as needed by policy evaluation.
// Assembled fresh for each check by the caller (see the accountstore
// package); the engine never mutates it.
type AccountMeta struct {
	ID     string
	Handle string

	IsAdmin     bool
	IsModerator bool
	// a capability distinct from moderator status which exempts post
	// creation from automatic limits
	RateLimitExempt bool

	CreatedAt  time.Time
	Reputation policy.Reputation
}

// Whether the user holds any privileged role that bypasses rate limiting.
func (am *AccountMeta) Privileged() bool {
	return am.IsAdmin || am.IsModerator
}
