// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the
// Testimonial model.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations. They
// follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition. Moderation rules live in services.
//
// Error semantics:
//   - When a testimonial is not found, functions return gorm.ErrRecordNotFound
//     (exported here as ErrNotFound).
//   - On DB errors (constraint violations, connectivity issues, etc.),
//     the raw gorm error is propagated.
//
// Functions:
//
//   - CreateTestimonial(ctx, db, t) -> error
//     Inserts a new row. ID and CreatedAt are filled in when empty.
//
//   - GetTestimonial(ctx, db, id) -> *domain.Testimonial, error
//     Fetches a single row by ID regardless of owner.
//
//   - ListTestimonialsByOwner(ctx, db, ownerID) -> []domain.Testimonial, error
//     All statuses, most recent first.
//
//   - ListTestimonialsByOwnerPage / CountTestimonialsByOwner
//     Paginated variant of the owner query.
//
//   - ListApprovedByOwner(ctx, db, ownerID) -> []domain.Testimonial, error
//     Approved rows only, most recent first.
//
//   - UpdateTestimonialStatus(ctx, db, id, ownerID, status) -> time.Time, error
//     Writes the status column, scoped to the owner, and returns the
//     updated_at value it stored.
//
//   - DeleteTestimonial(ctx, db, id, ownerID) -> error
//     Hard-deletes a row, scoped to the owner.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/testify-backend/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// newestFirst orders rows by submission time, breaking ties by id so that
// results are deterministic.
const newestFirst = "created_at desc, id desc"

// CreateTestimonial inserts t. A random UUID is assigned when t.ID is empty,
// CreatedAt defaults to the current UTC time, and Status defaults to pending.
func CreateTestimonial(ctx context.Context, db *gorm.DB, t *domain.Testimonial) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	if t.Status == "" {
		t.Status = domain.StatusPending
	}
	return db.WithContext(ctx).Create(t).Error
}

// GetTestimonial fetches a testimonial by id. It returns ErrNotFound when no
// row matches.
func GetTestimonial(ctx context.Context, db *gorm.DB, id string) (*domain.Testimonial, error) {
	var t domain.Testimonial
	if err := db.WithContext(ctx).Where("id = ?", id).First(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

// ListTestimonialsByOwner returns every testimonial collected for ownerID,
// in any status, most recent first. It returns an empty slice when the owner
// has none.
func ListTestimonialsByOwner(ctx context.Context, db *gorm.DB, ownerID string) ([]domain.Testimonial, error) {
	out := []domain.Testimonial{}
	err := db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order(newestFirst).
		Find(&out).Error
	return out, err
}

// CountTestimonialsByOwner returns the number of testimonials for ownerID.
func CountTestimonialsByOwner(ctx context.Context, db *gorm.DB, ownerID string) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.Testimonial{}).
		Where("owner_id = ?", ownerID).
		Count(&total).Error
	return total, err
}

// ListTestimonialsByOwnerPage returns a page of the owner view. The caller
// computes offset and limit (e.g., (page-1)*pageSize).
func ListTestimonialsByOwnerPage(ctx context.Context, db *gorm.DB, ownerID string, offset, limit int) ([]domain.Testimonial, error) {
	out := []domain.Testimonial{}
	err := db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order(newestFirst).
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// ListApprovedByOwner returns the approved testimonials of ownerID, most
// recent first.
func ListApprovedByOwner(ctx context.Context, db *gorm.DB, ownerID string) ([]domain.Testimonial, error) {
	out := []domain.Testimonial{}
	err := db.WithContext(ctx).
		Where("owner_id = ? AND status = ?", ownerID, domain.StatusApproved).
		Order(newestFirst).
		Find(&out).Error
	return out, err
}

// UpdateTestimonialStatus sets the status of the testimonial identified by id
// and owned by ownerID. Only the status column (and the updated_at
// bookkeeping column) is written; the written updated_at is returned. It
// returns ErrNotFound when no row matches.
func UpdateTestimonialStatus(ctx context.Context, db *gorm.DB, id, ownerID string, status domain.Status) (time.Time, error) {
	now := time.Now().UTC()
	res := db.WithContext(ctx).
		Model(&domain.Testimonial{}).
		Where("id = ? AND owner_id = ?", id, ownerID).
		Updates(map[string]any{
			"status":     status,
			"updated_at": now,
		})
	if res.Error != nil {
		return time.Time{}, res.Error
	}
	if res.RowsAffected == 0 {
		return time.Time{}, gorm.ErrRecordNotFound
	}
	return now, nil
}

// DeleteTestimonial removes the row identified by id and owned by ownerID.
// It returns ErrNotFound when no row matches.
func DeleteTestimonial(ctx context.Context, db *gorm.DB, id, ownerID string) error {
	res := db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID).
		Delete(&domain.Testimonial{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
