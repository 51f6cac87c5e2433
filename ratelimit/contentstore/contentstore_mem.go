package contentstore

import (
	"context"
	"sort"
	"time"
)

// In-memory ContentStore, for tests and local development.
type MemContentStore struct {
	Posts    []ActivityItem
	Comments []ActivityItem
	Threads  map[string]*ThreadMeta
}

func NewMemContentStore() *MemContentStore {
	return &MemContentStore{
		Threads: make(map[string]*ThreadMeta),
	}
}

func recentDescending(items []ActivityItem, authorID string, since time.Time) []ActivityItem {
	out := []ActivityItem{}
	for _, item := range items {
		if item.AuthorID == authorID && !item.CreatedAt.Before(since) {
			out = append(out, item)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func (s *MemContentStore) RecentPosts(ctx context.Context, authorID string, since time.Time) ([]ActivityItem, error) {
	return recentDescending(s.Posts, authorID, since), nil
}

func (s *MemContentStore) RecentComments(ctx context.Context, authorID string, since time.Time) ([]ActivityItem, error) {
	return recentDescending(s.Comments, authorID, since), nil
}

func (s *MemContentStore) ThreadMeta(ctx context.Context, threadID string) (*ThreadMeta, error) {
	tm, ok := s.Threads[threadID]
	if !ok {
		return nil, ErrThreadNotFound
	}
	return tm, nil
}

func (s *MemContentStore) OwnedThreadIDs(ctx context.Context, userID string, threadIDs []string) (map[string]bool, error) {
	owned := make(map[string]bool)
	for _, id := range threadIDs {
		if tm, ok := s.Threads[id]; ok && tm.IsAuthor(userID) {
			owned[id] = true
		}
	}
	return owned, nil
}
