package contentstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/grove-social/weir/models"
)

// ContentStore backed by the forum database via gorm.
type GormContentStore struct {
	db *gorm.DB
}

func NewGormContentStore(db *gorm.DB) *GormContentStore {
	return &GormContentStore{db: db}
}

func (s *GormContentStore) RecentPosts(ctx context.Context, authorID string, since time.Time) ([]ActivityItem, error) {
	var posts []models.Post
	err := s.db.WithContext(ctx).
		Where("author_id = ? AND posted_at >= ? AND draft = ?", authorID, since, false).
		Order("posted_at desc").
		Find(&posts).Error
	if err != nil {
		return nil, fmt.Errorf("fetching recent posts: %w", err)
	}
	out := make([]ActivityItem, len(posts))
	for i, p := range posts {
		out[i] = ActivityItem{
			CreatedAt: p.PostedAt,
			ThreadID:  p.PostID,
			AuthorID:  p.AuthorID,
		}
	}
	return out, nil
}

func (s *GormContentStore) RecentComments(ctx context.Context, authorID string, since time.Time) ([]ActivityItem, error) {
	var comments []models.Comment
	err := s.db.WithContext(ctx).
		Where("author_id = ? AND posted_at >= ? AND deleted = ?", authorID, since, false).
		Order("posted_at desc").
		Find(&comments).Error
	if err != nil {
		return nil, fmt.Errorf("fetching recent comments: %w", err)
	}
	out := make([]ActivityItem, len(comments))
	for i, c := range comments {
		out[i] = ActivityItem{
			CreatedAt: c.PostedAt,
			ThreadID:  c.PostID,
			AuthorID:  c.AuthorID,
		}
	}
	return out, nil
}

func (s *GormContentStore) ThreadMeta(ctx context.Context, threadID string) (*ThreadMeta, error) {
	var post models.Post
	err := s.db.WithContext(ctx).Where("post_id = ?", threadID).First(&post).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrThreadNotFound
		}
		return nil, fmt.Errorf("fetching thread metadata: %w", err)
	}

	var coauthors []models.PostCoauthor
	if err := s.db.WithContext(ctx).Where("post_id = ?", threadID).Find(&coauthors).Error; err != nil {
		return nil, fmt.Errorf("fetching thread co-authors: %w", err)
	}
	coauthorIDs := make([]string, len(coauthors))
	for i, ca := range coauthors {
		coauthorIDs[i] = ca.UserID
	}

	return &ThreadMeta{
		ID:               post.PostID,
		AuthorID:         post.AuthorID,
		CoauthorIDs:      coauthorIDs,
		IgnoreRateLimits: post.IgnoreRateLimits,
	}, nil
}

func (s *GormContentStore) OwnedThreadIDs(ctx context.Context, userID string, threadIDs []string) (map[string]bool, error) {
	owned := make(map[string]bool)
	if len(threadIDs) == 0 {
		return owned, nil
	}

	var authored []string
	err := s.db.WithContext(ctx).Model(&models.Post{}).
		Where("post_id IN ? AND author_id = ?", threadIDs, userID).
		Pluck("post_id", &authored).Error
	if err != nil {
		return nil, fmt.Errorf("fetching authored threads: %w", err)
	}
	for _, id := range authored {
		owned[id] = true
	}

	var coauthored []string
	err = s.db.WithContext(ctx).Model(&models.PostCoauthor{}).
		Where("post_id IN ? AND user_id = ?", threadIDs, userID).
		Pluck("post_id", &coauthored).Error
	if err != nil {
		return nil, fmt.Errorf("fetching co-authored threads: %w", err)
	}
	for _, id := range coauthored {
		owned[id] = true
	}

	return owned, nil
}
