package overridestore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grove-social/weir/ratelimit/policy"
)

func TestOverrideActiveAt(t *testing.T) {
	assert := assert.New(t)

	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	future := now.Add(24 * time.Hour)
	past := now.Add(-24 * time.Hour)

	open := Override{ValidFrom: past}
	assert.True(open.ActiveAt(now))

	expiring := Override{ValidFrom: past, ValidUntil: &future}
	assert.True(expiring.ActiveAt(now))

	expired := Override{ValidFrom: past.Add(-time.Hour), ValidUntil: &past}
	assert.False(expired.ActiveAt(now))

	notYet := Override{ValidFrom: future}
	assert.False(notYet.ActiveAt(now))
}

func TestMemOverrideStoreFiltersAndSorts(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	ctx := context.Background()

	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	expired := now.Add(-time.Hour)

	store := NewMemOverrideStore()
	store.Add(Override{
		UserID: "u1", Action: policy.ActionComments,
		Interval:  policy.Timeframe{Length: 1, Unit: policy.UnitWeeks},
		CreatedAt: now.AddDate(0, 0, -10), ValidFrom: now.AddDate(0, 0, -10),
	})
	store.Add(Override{
		UserID: "u1", Action: policy.ActionComments,
		Interval:  policy.Timeframe{Length: 1, Unit: policy.UnitDays},
		CreatedAt: now.AddDate(0, 0, -1), ValidFrom: now.AddDate(0, 0, -1),
	})
	store.Add(Override{
		UserID: "u1", Action: policy.ActionComments,
		CreatedAt: now.AddDate(0, 0, -5), ValidFrom: now.AddDate(0, 0, -5), ValidUntil: &expired,
	})
	store.Add(Override{
		UserID: "u1", Action: policy.ActionPosts,
		CreatedAt: now.AddDate(0, 0, -1), ValidFrom: now.AddDate(0, 0, -1),
	})
	store.Add(Override{
		UserID: "u2", Action: policy.ActionComments,
		CreatedAt: now.AddDate(0, 0, -1), ValidFrom: now.AddDate(0, 0, -1),
	})

	got, err := store.ActiveOverrides(ctx, "u1", policy.ActionComments, now)
	require.NoError(err)
	require.Len(got, 2)
	// newest first; the expired row and other users/actions are excluded
	assert.Equal(policy.UnitDays, got[0].Interval.Unit)
	assert.Equal(policy.UnitWeeks, got[1].Interval.Unit)
}
