package accountstore

import (
	"context"
	"errors"

	"github.com/grove-social/weir/ratelimit/engine"
)

var ErrNotFound = errors.New("account not found")

// Assembles the account metadata a rate limit check needs: role flags, the
// denormalized reputation snapshot, and the recent-contribution sample.
// Fetched fresh per check; there is no caching contract.
type AccountStore interface {
	GetAccountMeta(ctx context.Context, userID string) (*engine.AccountMeta, error)
}
