package overridestore

import (
	"context"
	"sort"
	"time"

	"github.com/grove-social/weir/ratelimit/policy"
)

// In-memory OverrideStore, for tests and local development.
type MemOverrideStore struct {
	Overrides []Override
}

func NewMemOverrideStore() *MemOverrideStore {
	return &MemOverrideStore{}
}

func (s *MemOverrideStore) Add(o Override) {
	s.Overrides = append(s.Overrides, o)
}

func (s *MemOverrideStore) ActiveOverrides(ctx context.Context, userID string, action policy.Action, now time.Time) ([]Override, error) {
	out := []Override{}
	for _, o := range s.Overrides {
		if o.UserID == userID && o.Action == action && o.ActiveAt(now) {
			out = append(out, o)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}
