package models

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	UserID          string `gorm:"uniqueIndex"`
	Handle          string `gorm:"uniqueIndex"`
	DisplayName     string
	IsAdmin         bool
	IsModerator     bool
	RateLimitExempt bool

	// denormalized reputation counters, maintained by the voting subsystem
	Karma                  int64
	SmallUpvotesReceived   int64
	SmallDownvotesReceived int64
	BigUpvotesReceived     int64
	BigDownvotesReceived   int64
	TotalVotesReceived     int64
}

// A top-level forum post. Posts double as discussion threads: comments hang
// off a post, and per-thread rate-limit behavior (ignore flag, authorship) is
// read from here.
type Post struct {
	gorm.Model
	PostID           string `gorm:"uniqueIndex"`
	AuthorID         string `gorm:"index:idx_post_author_posted"`
	Title            string
	Karma            int64
	Draft            bool
	IgnoreRateLimits bool
	PostedAt         time.Time `gorm:"index:idx_post_author_posted"`
}

// Co-authorship rows for posts with more than one author.
type PostCoauthor struct {
	ID     uint   `gorm:"primarykey"`
	PostID string `gorm:"index:idx_coauthor_post_user,unique"`
	UserID string `gorm:"index:idx_coauthor_post_user,unique;index"`
}

type Comment struct {
	gorm.Model
	CommentID string `gorm:"uniqueIndex"`
	PostID    string `gorm:"index"`
	AuthorID  string `gorm:"index:idx_comment_author_posted"`
	ParentID  string
	Karma     int64
	Deleted   bool
	PostedAt  time.Time `gorm:"index:idx_comment_author_posted"`
}

// A single vote on a post or comment. Power is signed: positive for upvotes,
// negative for downvotes; magnitude distinguishes small from strong votes.
type Vote struct {
	gorm.Model
	VoterID    string `gorm:"index"`
	TargetID   string `gorm:"index"`
	TargetKind string // "post" or "comment"
	Power      int64
	Cancelled  bool
}

// A moderator-assigned rate limit for one user. Read by the engine; created,
// edited, and expired entirely by moderation tooling.
type UserRateLimit struct {
	gorm.Model
	UserID             string `gorm:"index:idx_ratelimit_user_action"`
	Action             string `gorm:"index:idx_ratelimit_user_action"` // "posts" or "comments"
	IntervalLength     int
	IntervalUnit       string
	ActionsPerInterval int
	// empty means the limit applies on any thread
	ThreadID   string
	CreatedBy  string
	ValidFrom  time.Time
	ValidUntil *time.Time
}
