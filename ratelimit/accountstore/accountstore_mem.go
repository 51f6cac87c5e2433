package accountstore

import (
	"context"

	"github.com/grove-social/weir/ratelimit/engine"
)

// In-memory AccountStore, for tests and local development.
type MemAccountStore struct {
	Accounts map[string]*engine.AccountMeta
}

func NewMemAccountStore() *MemAccountStore {
	return &MemAccountStore{
		Accounts: make(map[string]*engine.AccountMeta),
	}
}

func (s *MemAccountStore) Insert(am engine.AccountMeta) {
	s.Accounts[am.ID] = &am
}

func (s *MemAccountStore) GetAccountMeta(ctx context.Context, userID string) (*engine.AccountMeta, error) {
	am, ok := s.Accounts[userID]
	if !ok {
		return nil, ErrNotFound
	}
	return am, nil
}
