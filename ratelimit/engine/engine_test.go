package engine

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grove-social/weir/ratelimit/contentstore"
	"github.com/grove-social/weir/ratelimit/overridestore"
	"github.com/grove-social/weir/ratelimit/policy"
)

func TestExemptionShortCircuit(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	eng, content, _ := EngineTestFixture()

	admin := TestAccountNewUser()
	admin.ID = "user-admin"
	admin.IsAdmin = true

	// activity volume that would trip every automatic policy
	content.Threads["t1"] = &contentstore.ThreadMeta{ID: "t1", AuthorID: "someone-else"}
	for i := 0; i < 50; i++ {
		content.Comments = append(content.Comments, contentstore.ActivityItem{
			CreatedAt: FixtureNow.Add(-time.Duration(i) * time.Minute),
			ThreadID:  "t1",
			AuthorID:  admin.ID,
		})
		content.Posts = append(content.Posts, contentstore.ActivityItem{
			CreatedAt: FixtureNow.Add(-time.Duration(i) * time.Hour),
			ThreadID:  fmt.Sprintf("p%d", i),
			AuthorID:  admin.ID,
		})
	}

	d, err := eng.CanCreatePost(ctx, &admin)
	assert.NoError(err)
	assert.Nil(d)
	d, err = eng.CanCreateComment(ctx, &admin, "t1")
	assert.NoError(err)
	assert.Nil(d)

	moderator := admin
	moderator.IsAdmin = false
	moderator.IsModerator = true
	d, err = eng.CanCreateComment(ctx, &moderator, "t1")
	assert.NoError(err)
	assert.Nil(d)

	// the post-creation capability exempts posts but not comments
	exempt := admin
	exempt.IsAdmin = false
	exempt.RateLimitExempt = true
	d, err = eng.CanCreatePost(ctx, &exempt)
	assert.NoError(err)
	assert.Nil(d)
	d, err = eng.CanCreateComment(ctx, &exempt, "t1")
	assert.NoError(err)
	assert.NotNil(d)
}

func TestFlaggedThreadExempt(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	eng, content, _ := EngineTestFixture()
	acct := TestAccountNewUser()

	content.Threads["loose"] = &contentstore.ThreadMeta{
		ID:               "loose",
		AuthorID:         "someone-else",
		IgnoreRateLimits: true,
	}
	content.Threads["strict"] = &contentstore.ThreadMeta{ID: "strict", AuthorID: "someone-else"}
	for i := 0; i < 10; i++ {
		content.Comments = append(content.Comments, contentstore.ActivityItem{
			CreatedAt: FixtureNow.Add(-time.Duration(i+1) * time.Hour),
			ThreadID:  "strict",
			AuthorID:  acct.ID,
		})
	}

	d, err := eng.CanCreateComment(ctx, &acct, "loose")
	assert.NoError(err)
	assert.Nil(d)

	d, err = eng.CanCreateComment(ctx, &acct, "strict")
	assert.NoError(err)
	assert.NotNil(d)
}

func TestLowReputationPostLimit(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	ctx := context.Background()

	eng, content, _ := EngineTestFixture()

	newUser := TestAccountNewUser()
	content.Posts = []contentstore.ActivityItem{
		{CreatedAt: FixtureNow.Add(-24 * time.Hour), ThreadID: "p1", AuthorID: newUser.ID},
		{CreatedAt: FixtureNow.Add(-96 * time.Hour), ThreadID: "p2", AuthorID: newUser.ID},
	}

	d, err := eng.CanCreatePost(ctx, &newUser)
	require.NoError(err)
	require.NotNil(d)
	assert.Equal(policy.KindLowReputation, d.Kind)
	// pivot is the older of the two in-window posts
	assert.Equal(FixtureNow.Add(-96*time.Hour).AddDate(0, 0, 7), d.NextEligibleAt)

	// same activity, established account: no automatic policy applies
	established := TestAccountEstablished()
	content.Posts[0].AuthorID = established.ID
	content.Posts[1].AuthorID = established.ID
	d, err = eng.CanCreatePost(ctx, &established)
	require.NoError(err)
	assert.Nil(d)
}

func TestAuthorExemptOwnThreadPolicy(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	ctx := context.Background()

	eng, content, _ := EngineTestFixture()
	eng.Policies = policy.Set{Policies: []policy.Policy{
		{
			Action:            policy.ActionComments,
			Kind:              policy.KindLowReputation,
			Timeframe:         policy.Timeframe{Length: 1, Unit: policy.UnitWeeks},
			ItemsPerTimeframe: 3,
			Message:           "limited on others' threads",
			// own threads exempt
			AppliesToOwnThreads: false,
		},
	}}

	acct := TestAccountNewUser()
	content.Threads["own"] = &contentstore.ThreadMeta{ID: "own", AuthorID: acct.ID}
	content.Threads["coauthored"] = &contentstore.ThreadMeta{
		ID:          "coauthored",
		AuthorID:    "someone-else",
		CoauthorIDs: []string{acct.ID},
	}
	content.Threads["other"] = &contentstore.ThreadMeta{ID: "other", AuthorID: "someone-else"}

	// five comments this week, all on the user's own or co-authored threads
	for i := 0; i < 5; i++ {
		threadID := "own"
		if i%2 == 0 {
			threadID = "coauthored"
		}
		content.Comments = append(content.Comments, contentstore.ActivityItem{
			CreatedAt: FixtureNow.Add(-time.Duration(i+1) * 12 * time.Hour),
			ThreadID:  threadID,
			AuthorID:  acct.ID,
		})
	}

	d, err := eng.CanCreateComment(ctx, &acct, "own")
	require.NoError(err)
	assert.Nil(d)

	// three more on another user's thread hit the limit there
	for i := 0; i < 3; i++ {
		content.Comments = append(content.Comments, contentstore.ActivityItem{
			CreatedAt: FixtureNow.Add(-time.Duration(i+1) * time.Hour),
			ThreadID:  "other",
			AuthorID:  acct.ID,
		})
	}
	d, err = eng.CanCreateComment(ctx, &acct, "other")
	require.NoError(err)
	require.NotNil(d)
	// the own-thread comments still do not count toward the pivot
	assert.Equal(FixtureNow.Add(-3*time.Hour).AddDate(0, 0, 7), d.NextEligibleAt)
}

func TestOverridePrecedence(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	ctx := context.Background()

	eng, content, overrides := EngineTestFixture()
	eng.Policies = policy.Set{Policies: []policy.Policy{
		{
			Action:              policy.ActionComments,
			Kind:                policy.KindUniversal,
			Timeframe:           policy.Timeframe{Length: 1, Unit: policy.UnitDays},
			ItemsPerTimeframe:   3,
			Message:             "three per day",
			AppliesToOwnThreads: true,
		},
	}}

	acct := TestAccountEstablished()
	content.Threads["t1"] = &contentstore.ThreadMeta{ID: "t1", AuthorID: "someone-else"}
	// two comments in the last day, one 50 hours ago: below the automatic
	// threshold, but over the moderator-assigned one
	content.Comments = []contentstore.ActivityItem{
		{CreatedAt: FixtureNow.Add(-1 * time.Hour), ThreadID: "t1", AuthorID: acct.ID},
		{CreatedAt: FixtureNow.Add(-5 * time.Hour), ThreadID: "t1", AuthorID: acct.ID},
		{CreatedAt: FixtureNow.Add(-50 * time.Hour), ThreadID: "t1", AuthorID: acct.ID},
	}
	overrides.Add(overridestore.Override{
		UserID:             acct.ID,
		Action:             policy.ActionComments,
		Interval:           policy.Timeframe{Length: 72, Unit: policy.UnitHours},
		ActionsPerInterval: 1,
		CreatedAt:          FixtureNow.AddDate(0, 0, -2),
		ValidFrom:          FixtureNow.AddDate(0, 0, -2),
	})

	d, err := eng.CanCreateComment(ctx, &acct, "t1")
	require.NoError(err)
	require.NotNil(d)
	assert.Equal(policy.KindModerator, d.Kind)
	// one per 72 hours: eligible again 72 hours after the most recent comment
	assert.Equal(FixtureNow.Add(71*time.Hour), d.NextEligibleAt)
}

func TestOverrideLatestCreatedWins(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	ctx := context.Background()

	eng, content, overrides := EngineTestFixture()
	eng.Policies = policy.Set{}

	acct := TestAccountEstablished()
	content.Threads["t1"] = &contentstore.ThreadMeta{ID: "t1", AuthorID: "someone-else"}
	content.Comments = []contentstore.ActivityItem{
		{CreatedAt: FixtureNow.Add(-1 * time.Hour), ThreadID: "t1", AuthorID: acct.ID},
	}

	overrides.Add(overridestore.Override{
		UserID:             acct.ID,
		Action:             policy.ActionComments,
		Interval:           policy.Timeframe{Length: 1, Unit: policy.UnitWeeks},
		ActionsPerInterval: 1,
		CreatedAt:          FixtureNow.AddDate(0, 0, -10),
		ValidFrom:          FixtureNow.AddDate(0, 0, -10),
	})
	overrides.Add(overridestore.Override{
		UserID:             acct.ID,
		Action:             policy.ActionComments,
		Interval:           policy.Timeframe{Length: 1, Unit: policy.UnitDays},
		ActionsPerInterval: 1,
		CreatedAt:          FixtureNow.AddDate(0, 0, -1),
		ValidFrom:          FixtureNow.AddDate(0, 0, -1),
	})

	d, err := eng.CanCreateComment(ctx, &acct, "t1")
	require.NoError(err)
	require.NotNil(d)
	// the newer, shorter override governs, not the older week-long one
	assert.Equal(FixtureNow.Add(23*time.Hour), d.NextEligibleAt)
}

func TestOverrideThreadScoped(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	ctx := context.Background()

	eng, content, overrides := EngineTestFixture()
	eng.Policies = policy.Set{}

	acct := TestAccountEstablished()
	content.Threads["scoped"] = &contentstore.ThreadMeta{ID: "scoped", AuthorID: "someone-else"}
	content.Threads["elsewhere"] = &contentstore.ThreadMeta{ID: "elsewhere", AuthorID: "someone-else"}
	content.Threads["own"] = &contentstore.ThreadMeta{ID: "own", AuthorID: acct.ID}
	content.Comments = []contentstore.ActivityItem{
		{CreatedAt: FixtureNow.Add(-1 * time.Hour), ThreadID: "scoped", AuthorID: acct.ID},
	}

	overrides.Add(overridestore.Override{
		UserID:             acct.ID,
		Action:             policy.ActionComments,
		Interval:           policy.Timeframe{Length: 1, Unit: policy.UnitDays},
		ActionsPerInterval: 1,
		ThreadID:           "scoped",
		CreatedAt:          FixtureNow.AddDate(0, 0, -1),
		ValidFrom:          FixtureNow.AddDate(0, 0, -1),
	})

	d, err := eng.CanCreateComment(ctx, &acct, "scoped")
	require.NoError(err)
	require.NotNil(d)
	assert.Equal(policy.KindModerator, d.Kind)

	// the same override does not reach other threads
	d, err = eng.CanCreateComment(ctx, &acct, "elsewhere")
	require.NoError(err)
	assert.Nil(d)

	// nor the thread's own author
	scoped := content.Threads["scoped"]
	scoped.CoauthorIDs = []string{acct.ID}
	d, err = eng.CanCreateComment(ctx, &acct, "scoped")
	require.NoError(err)
	assert.Nil(d)
}

func TestExpiredOverrideInert(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	ctx := context.Background()

	eng, content, overrides := EngineTestFixture()
	eng.Policies = policy.Set{}

	acct := TestAccountEstablished()
	content.Threads["t1"] = &contentstore.ThreadMeta{ID: "t1", AuthorID: "someone-else"}
	content.Comments = []contentstore.ActivityItem{
		{CreatedAt: FixtureNow.Add(-1 * time.Hour), ThreadID: "t1", AuthorID: acct.ID},
	}

	expiry := FixtureNow.Add(-time.Hour)
	overrides.Add(overridestore.Override{
		UserID:             acct.ID,
		Action:             policy.ActionComments,
		Interval:           policy.Timeframe{Length: 1, Unit: policy.UnitWeeks},
		ActionsPerInterval: 1,
		CreatedAt:          FixtureNow.AddDate(0, 0, -10),
		ValidFrom:          FixtureNow.AddDate(0, 0, -10),
		ValidUntil:         &expiry,
	})

	d, err := eng.CanCreateComment(ctx, &acct, "t1")
	require.NoError(err)
	assert.Nil(d)
}

func TestMalformedOverrideFailsClosed(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	eng, content, overrides := EngineTestFixture()
	acct := TestAccountEstablished()
	content.Threads["t1"] = &contentstore.ThreadMeta{ID: "t1", AuthorID: "someone-else"}

	overrides.Add(overridestore.Override{
		UserID:             acct.ID,
		Action:             policy.ActionComments,
		Interval:           policy.Timeframe{Length: 1, Unit: "fortnights"},
		ActionsPerInterval: 1,
		CreatedAt:          FixtureNow.AddDate(0, 0, -1),
		ValidFrom:          FixtureNow.AddDate(0, 0, -1),
	})

	_, err := eng.CanCreateComment(ctx, &acct, "t1")
	assert.Error(err)
}

// content store that always fails, for fail-closed coverage
type failingContentStore struct{}

func (failingContentStore) RecentPosts(ctx context.Context, authorID string, since time.Time) ([]contentstore.ActivityItem, error) {
	return nil, fmt.Errorf("store unavailable")
}
func (failingContentStore) RecentComments(ctx context.Context, authorID string, since time.Time) ([]contentstore.ActivityItem, error) {
	return nil, fmt.Errorf("store unavailable")
}
func (failingContentStore) ThreadMeta(ctx context.Context, threadID string) (*contentstore.ThreadMeta, error) {
	return nil, fmt.Errorf("store unavailable")
}
func (failingContentStore) OwnedThreadIDs(ctx context.Context, userID string, threadIDs []string) (map[string]bool, error) {
	return nil, fmt.Errorf("store unavailable")
}

type failingOverrideStore struct{}

func (failingOverrideStore) ActiveOverrides(ctx context.Context, userID string, action policy.Action, now time.Time) ([]overridestore.Override, error) {
	return nil, fmt.Errorf("store unavailable")
}

func TestStoreFailuresPropagate(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	eng, _, _ := EngineTestFixture()
	acct := TestAccountNewUser()

	eng.Content = failingContentStore{}
	_, err := eng.CanCreatePost(ctx, &acct)
	assert.Error(err)
	_, err = eng.CanCreateComment(ctx, &acct, "t1")
	assert.Error(err)

	eng, content, _ := EngineTestFixture()
	content.Threads["t1"] = &contentstore.ThreadMeta{ID: "t1", AuthorID: "someone-else"}
	eng.Overrides = failingOverrideStore{}
	_, err = eng.CanCreatePost(ctx, &acct)
	assert.Error(err)
	_, err = eng.CanCreateComment(ctx, &acct, "t1")
	assert.Error(err)
}

func TestExemptUsersSkipOverrideRead(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	// exemption resolves before the moderation store is consulted, so an
	// exempt user's check succeeds even when that store is down
	eng, content, _ := EngineTestFixture()
	eng.Overrides = failingOverrideStore{}
	content.Threads["t1"] = &contentstore.ThreadMeta{ID: "t1", AuthorID: "someone-else"}

	moderator := TestAccountEstablished()
	moderator.IsModerator = true

	d, err := eng.CanCreateComment(ctx, &moderator, "t1")
	assert.NoError(err)
	assert.Nil(d)

	d, err = eng.CanCreatePost(ctx, &moderator)
	assert.NoError(err)
	assert.Nil(d)
}
