package services

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/testify-backend/internal/domain"
)

// TestimonialRepo defines the repository contract shared by the submission,
// moderation and display services. Implementations are responsible for
// persistence of testimonials only; ownership rules live in the services.
type TestimonialRepo interface {
	// CreateTestimonial inserts t, filling ID and CreatedAt when empty.
	CreateTestimonial(ctx context.Context, db *gorm.DB, t *domain.Testimonial) error

	// GetTestimonial fetches a row by id regardless of owner.
	GetTestimonial(ctx context.Context, db *gorm.DB, id string) (*domain.Testimonial, error)

	// ListTestimonialsByOwner returns every row of ownerID, newest first.
	ListTestimonialsByOwner(ctx context.Context, db *gorm.DB, ownerID string) ([]domain.Testimonial, error)

	// CountTestimonialsByOwner returns the total number of rows for pagination.
	CountTestimonialsByOwner(ctx context.Context, db *gorm.DB, ownerID string) (int64, error)

	// ListTestimonialsByOwnerPage returns a page of the owner view.
	ListTestimonialsByOwnerPage(ctx context.Context, db *gorm.DB, ownerID string, offset, limit int) ([]domain.Testimonial, error)

	// ListApprovedByOwner returns the approved rows of ownerID, newest first.
	ListApprovedByOwner(ctx context.Context, db *gorm.DB, ownerID string) ([]domain.Testimonial, error)

	// UpdateTestimonialStatus writes the status of a row owned by ownerID.
	UpdateTestimonialStatus(ctx context.Context, db *gorm.DB, id, ownerID string, status domain.Status) (time.Time, error)

	// DeleteTestimonial hard-deletes a row owned by ownerID.
	DeleteTestimonial(ctx context.Context, db *gorm.DB, id, ownerID string) error

	// OwnerStats returns the row count and latest update of the owner view.
	OwnerStats(ctx context.Context, db *gorm.DB, ownerID string) (int64, *time.Time, error)

	// FeedStats returns the approved count, total row count and latest
	// update of ownerID.
	FeedStats(ctx context.Context, db *gorm.DB, ownerID string) (approved, total int64, latest *time.Time, err error)
}

// AccountRepo defines the repository contract for owner accounts.
type AccountRepo interface {
	UpsertAccount(ctx context.Context, db *gorm.DB, a *domain.Account) error
	GetAccount(ctx context.Context, db *gorm.DB, id string) (*domain.Account, error)
	AccountExists(ctx context.Context, db *gorm.DB, id string) (bool, error)
}

// IdempotencyRepo defines the repository contract for submission replay
// records.
type IdempotencyRepo interface {
	GetIdempotency(ctx context.Context, db *gorm.DB, ownerID, key string, now time.Time) (*domain.Idempotency, error)
	CreateIdempotency(ctx context.Context, db *gorm.DB, ownerID, key, testimonialID string, status int, ttl time.Duration) (*domain.Idempotency, error)
}
