// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides small aggregate/statistics queries used
// for conditional responses (ETags) in the HTTP layer and for versioning the
// public feed cache. Each function is context-aware.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/testify-backend/internal/domain"
)

// OwnerStats returns aggregate metadata for an owner's testimonials (any
// status): the total number of rows and the maximum UpdatedAt among them.
// When the owner has no testimonials, count is 0 and maxUpdatedAt is nil.
func OwnerStats(ctx context.Context, db *gorm.DB, ownerID string) (count int64, maxUpdatedAt *time.Time, err error) {
	q := db.WithContext(ctx).Model(&domain.Testimonial{}).Where("owner_id = ?", ownerID)
	return countAndLatest(q)
}

// FeedStats returns the number of approved testimonials of ownerID, the
// owner's total row count and the latest UpdatedAt over ALL of the owner's
// rows. An approve, reject or delete moves at least one of the three, and a
// delete always lowers total, so a triple observed once never recurs after a
// later write.
func FeedStats(ctx context.Context, db *gorm.DB, ownerID string) (approved, total int64, maxUpdatedAt *time.Time, err error) {
	base := db.WithContext(ctx).Model(&domain.Testimonial{})
	if err = base.Where("owner_id = ? AND status = ?", ownerID, domain.StatusApproved).Count(&approved).Error; err != nil {
		return 0, 0, nil, err
	}
	total, maxUpdatedAt, err = countAndLatest(db.WithContext(ctx).Model(&domain.Testimonial{}).Where("owner_id = ?", ownerID))
	if err != nil {
		return 0, 0, nil, err
	}
	return approved, total, maxUpdatedAt, nil
}

func countAndLatest(q *gorm.DB) (count int64, maxUpdatedAt *time.Time, err error) {
	if err = q.Session(&gorm.Session{}).Count(&count).Error; err != nil {
		return 0, nil, err
	}
	if count == 0 {
		return 0, nil, nil
	}

	// Get latest updated_at (avoid MAX() -> TEXT in SQLite)
	var row struct {
		UpdatedAt time.Time
	}
	if err = q.Session(&gorm.Session{}).Select("updated_at").Order("updated_at DESC").Limit(1).Scan(&row).Error; err != nil {
		return 0, nil, err
	}
	return count, &row.UpdatedAt, nil
}
