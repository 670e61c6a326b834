// Package services – ModerationService
//
// This file implements the owner-side moderation workflow: moving a
// testimonial between pending, approved and rejected, and deleting it.
// Every operation is attributed to an acting owner id resolved by the
// transport layer. Authorization is checked before any mutating store call,
// so a refused request leaves no partial write behind.
package services

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tbourn/testify-backend/internal/domain"
)

// ModerationService applies status transitions and deletions on behalf of
// the owning account.
type ModerationService struct {
	DB   *gorm.DB
	Repo TestimonialRepo
}

// NewModerationService constructs a ModerationService.
func NewModerationService(db *gorm.DB, r TestimonialRepo) *ModerationService {
	return &ModerationService{DB: db, Repo: r}
}

// Transition moves testimonial id to status on behalf of actingOwnerID and
// returns the resulting record.
//
// Checks run in this order and stop at the first failure:
//  1. status must name a legal target (approved or rejected) → ErrInvalidStatus
//  2. actingOwnerID must be non-empty → ErrUnauthorized
//  3. the testimonial must exist → ErrNotFound
//  4. it must belong to actingOwnerID → ErrUnauthorized
//
// Re-applying the current status performs no write. Store failures are
// returned as *TransportError.
func (s *ModerationService) Transition(ctx context.Context, id, status, actingOwnerID string) (_ *domain.Testimonial, err error) {
	tr := otel.Tracer("services/ModerationService")
	ctx, span := tr.Start(ctx, "Transition",
		trace.WithAttributes(
			attribute.String("testimonial.id", id),
			attribute.String("owner.id", actingOwnerID),
			attribute.String("status", status),
		),
	)
	defer func() { endSpan(span, err) }()

	to, ok := domain.ParseStatus(status)
	if !ok {
		return nil, ErrInvalidStatus
	}

	t, err := s.authorize(ctx, id, actingOwnerID)
	if err != nil {
		return nil, err
	}
	if !domain.CanTransition(t.Status, to) {
		return nil, ErrInvalidStatus
	}
	if t.Status == to {
		return t, nil
	}

	updatedAt, err := s.Repo.UpdateTestimonialStatus(ctx, s.DB, t.ID, actingOwnerID, to)
	if err != nil {
		// A concurrent delete between read and write surfaces as not found.
		return nil, storeErr("update status", err)
	}
	t.Status = to
	t.UpdatedAt = updatedAt
	return t, nil
}

// Approve is Transition(id, "approved", actingOwnerID).
func (s *ModerationService) Approve(ctx context.Context, id, actingOwnerID string) (*domain.Testimonial, error) {
	return s.Transition(ctx, id, string(domain.StatusApproved), actingOwnerID)
}

// Reject is Transition(id, "rejected", actingOwnerID).
func (s *ModerationService) Reject(ctx context.Context, id, actingOwnerID string) (*domain.Testimonial, error) {
	return s.Transition(ctx, id, string(domain.StatusRejected), actingOwnerID)
}

// Get returns a single testimonial if it belongs to actingOwnerID.
func (s *ModerationService) Get(ctx context.Context, id, actingOwnerID string) (*domain.Testimonial, error) {
	return s.authorize(ctx, id, actingOwnerID)
}

// Delete removes testimonial id from any state. It applies the same
// authorization checks as Transition.
func (s *ModerationService) Delete(ctx context.Context, id, actingOwnerID string) (err error) {
	tr := otel.Tracer("services/ModerationService")
	ctx, span := tr.Start(ctx, "Delete",
		trace.WithAttributes(
			attribute.String("testimonial.id", id),
			attribute.String("owner.id", actingOwnerID),
		),
	)
	defer func() { endSpan(span, err) }()

	t, err := s.authorize(ctx, id, actingOwnerID)
	if err != nil {
		return err
	}
	return storeErr("delete testimonial", s.Repo.DeleteTestimonial(ctx, s.DB, t.ID, actingOwnerID))
}

// authorize loads id and verifies it is owned by actingOwnerID.
func (s *ModerationService) authorize(ctx context.Context, id, actingOwnerID string) (*domain.Testimonial, error) {
	if strings.TrimSpace(actingOwnerID) == "" {
		return nil, ErrUnauthorized
	}
	if strings.TrimSpace(id) == "" {
		return nil, ErrNotFound
	}
	t, err := s.Repo.GetTestimonial(ctx, s.DB, id)
	if err != nil {
		return nil, storeErr("get testimonial", err)
	}
	if t.OwnerID != actingOwnerID {
		zerolog.Ctx(ctx).Warn().
			Str("testimonial_id", id).
			Str("actor", actingOwnerID).
			Msg("cross-account moderation refused")
		return nil, ErrUnauthorized
	}
	return t, nil
}

// endSpan records err on span (if any) and ends it.
func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
