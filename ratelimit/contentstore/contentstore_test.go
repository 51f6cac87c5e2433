package contentstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemContentStoreRecentActivity(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	ctx := context.Background()

	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	store := NewMemContentStore()
	store.Comments = []ActivityItem{
		{CreatedAt: now.Add(-5 * time.Hour), ThreadID: "t1", AuthorID: "u1"},
		{CreatedAt: now.Add(-1 * time.Hour), ThreadID: "t2", AuthorID: "u1"},
		{CreatedAt: now.Add(-30 * time.Hour), ThreadID: "t1", AuthorID: "u1"},
		{CreatedAt: now.Add(-2 * time.Hour), ThreadID: "t1", AuthorID: "someone-else"},
	}

	got, err := store.RecentComments(ctx, "u1", now.Add(-24*time.Hour))
	require.NoError(err)
	require.Len(got, 2)
	// descending by timestamp, other authors and out-of-window items dropped
	assert.Equal(now.Add(-1*time.Hour), got[0].CreatedAt)
	assert.Equal(now.Add(-5*time.Hour), got[1].CreatedAt)

	// boundary: items exactly at `since` are included
	got, err = store.RecentComments(ctx, "u1", now.Add(-30*time.Hour))
	require.NoError(err)
	assert.Len(got, 3)
}

func TestThreadMetaOwnership(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	ctx := context.Background()

	store := NewMemContentStore()
	store.Threads["t1"] = &ThreadMeta{ID: "t1", AuthorID: "u1"}
	store.Threads["t2"] = &ThreadMeta{ID: "t2", AuthorID: "u2", CoauthorIDs: []string{"u1"}}
	store.Threads["t3"] = &ThreadMeta{ID: "t3", AuthorID: "u2"}

	tm, err := store.ThreadMeta(ctx, "t2")
	require.NoError(err)
	assert.True(tm.IsAuthor("u1"))
	assert.True(tm.IsAuthor("u2"))
	assert.False(tm.IsAuthor("u3"))

	_, err = store.ThreadMeta(ctx, "missing")
	assert.ErrorIs(err, ErrThreadNotFound)

	owned, err := store.OwnedThreadIDs(ctx, "u1", []string{"t1", "t2", "t3", "missing"})
	require.NoError(err)
	assert.Equal(map[string]bool{"t1": true, "t2": true}, owned)
}
