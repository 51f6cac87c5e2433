package overridestore

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/grove-social/weir/models"
	"github.com/grove-social/weir/ratelimit/policy"
)

// OverrideStore backed by the moderation tables via gorm.
type GormOverrideStore struct {
	db *gorm.DB
}

func NewGormOverrideStore(db *gorm.DB) *GormOverrideStore {
	return &GormOverrideStore{db: db}
}

func (s *GormOverrideStore) ActiveOverrides(ctx context.Context, userID string, action policy.Action, now time.Time) ([]Override, error) {
	var rows []models.UserRateLimit
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND action = ?", userID, string(action)).
		Where("valid_from <= ?", now).
		Where("valid_until IS NULL OR valid_until > ?", now).
		Order("created_at desc").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("fetching active rate limit overrides: %w", err)
	}

	out := make([]Override, len(rows))
	for i, row := range rows {
		out[i] = Override{
			UserID: row.UserID,
			Action: policy.Action(row.Action),
			Interval: policy.Timeframe{
				Length: row.IntervalLength,
				Unit:   policy.Unit(row.IntervalUnit),
			},
			ActionsPerInterval: row.ActionsPerInterval,
			ThreadID:           row.ThreadID,
			CreatedAt:          row.CreatedAt,
			ValidFrom:          row.ValidFrom,
			ValidUntil:         row.ValidUntil,
		}
	}
	return out, nil
}
