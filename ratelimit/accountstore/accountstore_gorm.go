package accountstore

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/grove-social/weir/models"
	"github.com/grove-social/weir/ratelimit/engine"
	"github.com/grove-social/weir/ratelimit/policy"
)

// AccountStore backed by the forum database. SampleSizes are the trailing
// contribution sample sizes the recent-karma and downvoter conditions in
// the active policy set declare; compute them with policy.SampleSizes so
// every condition reads stats over exactly its own sample.
type GormAccountStore struct {
	db      *gorm.DB
	samples []int
}

func NewGormAccountStore(db *gorm.DB, sampleSizes []int) *GormAccountStore {
	return &GormAccountStore{db: db, samples: sampleSizes}
}

func (s *GormAccountStore) GetAccountMeta(ctx context.Context, userID string) (*engine.AccountMeta, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("fetching user: %w", err)
	}

	recent, err := s.recentReputation(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &engine.AccountMeta{
		ID:              user.UserID,
		Handle:          user.Handle,
		IsAdmin:         user.IsAdmin,
		IsModerator:     user.IsModerator,
		RateLimitExempt: user.RateLimitExempt,
		CreatedAt:       user.CreatedAt,
		Reputation: policy.Reputation{
			Snapshot: policy.ReputationSnapshot{
				Karma:                  user.Karma,
				SmallUpvotesReceived:   user.SmallUpvotesReceived,
				SmallDownvotesReceived: user.SmallDownvotesReceived,
				BigUpvotesReceived:     user.BigUpvotesReceived,
				BigDownvotesReceived:   user.BigDownvotesReceived,
				TotalVotesReceived:     user.TotalVotesReceived,
			},
			Recent: recent,
		},
	}, nil
}

type contribution struct {
	ID       string
	Karma    int64
	PostedAt time.Time
}

// Karma and distinct downvoters per declared sample size, over the user's
// most recent contributions (posts and comments interleaved by submission
// time). One merged fetch sized to the largest sample serves every size;
// the stats for a smaller sample come from its prefix.
func (s *GormAccountStore) recentReputation(ctx context.Context, userID string) (map[int]policy.RecentReputation, error) {
	out := make(map[int]policy.RecentReputation, len(s.samples))
	if len(s.samples) == 0 {
		return out, nil
	}
	largest := s.samples[len(s.samples)-1]

	// the post and comment samples are independent; issue them together
	var posts, comments []contribution
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := s.db.WithContext(gctx).Model(&models.Post{}).
			Select("post_id as id, karma, posted_at").
			Where("author_id = ? AND draft = ?", userID, false).
			Order("posted_at desc").
			Limit(largest).
			Scan(&posts).Error
		if err != nil {
			return fmt.Errorf("sampling recent posts: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		err := s.db.WithContext(gctx).Model(&models.Comment{}).
			Select("comment_id as id, karma, posted_at").
			Where("author_id = ? AND deleted = ?", userID, false).
			Order("posted_at desc").
			Limit(largest).
			Scan(&comments).Error
		if err != nil {
			return fmt.Errorf("sampling recent comments: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sample := append(posts, comments...)
	sort.SliceStable(sample, func(i, j int) bool {
		return sample[i].PostedAt.After(sample[j].PostedAt)
	})
	if len(sample) > largest {
		sample = sample[:largest]
	}

	targetIDs := make([]string, len(sample))
	for i, c := range sample {
		targetIDs[i] = c.ID
	}

	downvotersByTarget := make(map[string][]string, len(targetIDs))
	if len(targetIDs) > 0 {
		var votes []struct {
			VoterID  string
			TargetID string
		}
		err := s.db.WithContext(ctx).Model(&models.Vote{}).
			Select("voter_id, target_id").
			Where("target_id IN ? AND power < 0 AND cancelled = ?", targetIDs, false).
			Scan(&votes).Error
		if err != nil {
			return nil, fmt.Errorf("fetching recent downvotes: %w", err)
		}
		for _, v := range votes {
			downvotersByTarget[v.TargetID] = append(downvotersByTarget[v.TargetID], v.VoterID)
		}
	}

	for _, size := range s.samples {
		prefix := sample
		if len(prefix) > size {
			prefix = prefix[:size]
		}
		rr := policy.RecentReputation{SampleSize: len(prefix)}
		voters := make(map[string]bool)
		for _, c := range prefix {
			rr.Karma += c.Karma
			for _, v := range downvotersByTarget[c.ID] {
				voters[v] = true
			}
		}
		rr.DownvoterCount = len(voters)
		out[size] = rr
	}

	return out, nil
}
