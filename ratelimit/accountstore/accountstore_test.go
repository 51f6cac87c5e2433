package accountstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grove-social/weir/ratelimit/engine"
)

func TestMemAccountStore(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	ctx := context.Background()

	store := NewMemAccountStore()
	store.Insert(engine.AccountMeta{ID: "u1", Handle: "alice", IsModerator: true})

	am, err := store.GetAccountMeta(ctx, "u1")
	require.NoError(err)
	assert.Equal("alice", am.Handle)
	assert.True(am.Privileged())

	_, err = store.GetAccountMeta(ctx, "missing")
	assert.ErrorIs(err, ErrNotFound)
}
