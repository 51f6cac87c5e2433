package engine

import (
	"log/slog"
	"time"

	"github.com/grove-social/weir/ratelimit/contentstore"
	"github.com/grove-social/weir/ratelimit/overridestore"
	"github.com/grove-social/weir/ratelimit/policy"
)

// Fixed evaluation instant used by test fixtures, so window math is
// reproducible.
var FixtureNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

// Engine wired to empty in-memory stores, the built-in default policy set,
// and a frozen clock. Intentionally exported for use in other packages'
// tests.
func EngineTestFixture() (Engine, *contentstore.MemContentStore, *overridestore.MemOverrideStore) {
	content := contentstore.NewMemContentStore()
	overrides := overridestore.NewMemOverrideStore()
	set, _ := policy.DefaultConfig().Select(policy.DefaultTenant)
	eng := Engine{
		Logger:    slog.Default(),
		Policies:  set,
		Content:   content,
		Overrides: overrides,
		Now:       func() time.Time { return FixtureNow },
	}
	return eng, content, overrides
}

// An ordinary low-karma account, constrained by the default low-reputation
// policies.
func TestAccountNewUser() AccountMeta {
	return AccountMeta{
		ID:        "user-new",
		Handle:    "newbie",
		CreatedAt: FixtureNow.AddDate(0, 0, -3),
		Reputation: policy.Reputation{
			Snapshot: policy.ReputationSnapshot{
				Karma:                  2,
				SmallUpvotesReceived:   4,
				SmallDownvotesReceived: 1,
				TotalVotesReceived:     5,
			},
			Recent: map[int]policy.RecentReputation{
				20: {SampleSize: 20, Karma: 2},
			},
		},
	}
}

// An established account above every reputation threshold.
func TestAccountEstablished() AccountMeta {
	return AccountMeta{
		ID:        "user-established",
		Handle:    "regular",
		CreatedAt: FixtureNow.AddDate(-2, 0, 0),
		Reputation: policy.Reputation{
			Snapshot: policy.ReputationSnapshot{
				Karma:                  3500,
				SmallUpvotesReceived:   900,
				SmallDownvotesReceived: 40,
				BigUpvotesReceived:     55,
				BigDownvotesReceived:   5,
				TotalVotesReceived:     1000,
			},
			Recent: map[int]policy.RecentReputation{
				20: {SampleSize: 20, Karma: 120},
			},
		},
	}
}
