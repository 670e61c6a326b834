// Package services – SubmissionService
//
// This file implements SubmissionService, which accepts testimonials from
// anonymous visitors. It validates and normalizes the typed payload, applies
// the owner-existence policy, and persists a single pending record. Repeated
// identical submissions are stored independently unless the caller supplies
// an idempotency key, in which case a retry within the key's TTL returns the
// record created by the first attempt.
//
// The key is reserved in the same transaction that inserts the testimonial.
// Two concurrent attempts with one key therefore serialize on the key's
// unique index: the loser rolls back and replays the winner's record.
package services

import (
	"context"
	"errors"
	"math"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"
	"gorm.io/gorm"

	"github.com/tbourn/testify-backend/internal/domain"
)

// SubmissionInput is the visitor payload. Rating is a float so that
// fractional values can be reported as a field error instead of being
// silently truncated.
type SubmissionInput struct {
	Name        string
	Company     string
	Title       string
	Testimonial string
	Rating      *float64
}

// SubmissionService creates pending testimonials for an owner.
type SubmissionService struct {
	DB       *gorm.DB
	Repo     TestimonialRepo
	Accounts AccountRepo
	Idem     IdempotencyRepo

	// RequireKnownOwner rejects submissions for owners that never opened
	// the dashboard. When false any non-empty owner id is accepted.
	RequireKnownOwner bool
	// IdempotencyTTL bounds how long a key replays its first result.
	IdempotencyTTL time.Duration
}

// NewSubmissionService constructs a SubmissionService with the lenient owner
// policy and a 24h idempotency window.
func NewSubmissionService(db *gorm.DB, r TestimonialRepo, a AccountRepo, i IdempotencyRepo) *SubmissionService {
	return &SubmissionService{
		DB:             db,
		Repo:           r,
		Accounts:       a,
		Idem:           i,
		IdempotencyTTL: 24 * time.Hour,
	}
}

// Submit validates in and stores a new pending testimonial for ownerID.
//
// Errors:
//   - ErrNotFound when ownerID is blank, or unknown under RequireKnownOwner.
//   - *ValidationError naming every offending field.
//   - *TransportError when the record store fails.
func (s *SubmissionService) Submit(ctx context.Context, ownerID string, in SubmissionInput) (*domain.Testimonial, error) {
	t, _, err := s.SubmitWithKey(ctx, ownerID, "", in)
	return t, err
}

// SubmitWithKey behaves like Submit. When key is non-empty and a previous
// submission with the same (ownerID, key) is still within its TTL, the
// stored testimonial is returned with replayed=true and nothing is written.
func (s *SubmissionService) SubmitWithKey(ctx context.Context, ownerID, key string, in SubmissionInput) (_ *domain.Testimonial, replayed bool, err error) {
	tr := otel.Tracer("services/SubmissionService")
	ctx, span := tr.Start(ctx, "Submit",
		trace.WithAttributes(
			attribute.String("owner.id", ownerID),
			attribute.Bool("idempotent", key != ""),
		),
	)
	defer func() { endSpan(span, err) }()

	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return nil, false, ErrNotFound
	}

	t, err := buildTestimonial(ownerID, in)
	if err != nil {
		return nil, false, err
	}

	if s.RequireKnownOwner && s.Accounts != nil {
		ok, err := s.Accounts.AccountExists(ctx, s.DB, ownerID)
		if err != nil {
			return nil, false, storeErr("account exists", err)
		}
		if !ok {
			return nil, false, ErrNotFound
		}
	}

	if key == "" || s.Idem == nil {
		if err := s.Repo.CreateTestimonial(ctx, s.DB, t); err != nil {
			return nil, false, &TransportError{Op: "create testimonial", Err: err}
		}
		span.SetAttributes(attribute.String("testimonial.id", t.ID))
		return t, false, nil
	}

	if prev, ok := s.replay(ctx, ownerID, key); ok {
		span.SetAttributes(attribute.Bool("replayed", true))
		return prev, true, nil
	}

	t.ID = uuid.NewString()
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.Idem.CreateIdempotency(ctx, tx, ownerID, key, t.ID, http.StatusCreated, s.IdempotencyTTL); err != nil {
			return err
		}
		return s.Repo.CreateTestimonial(ctx, tx, t)
	})
	switch {
	case err == nil:
		span.SetAttributes(attribute.String("testimonial.id", t.ID))
		return t, false, nil
	case !errors.Is(err, gorm.ErrDuplicatedKey):
		return nil, false, &TransportError{Op: "create testimonial", Err: err}
	}

	// Another attempt holds the key.
	if prev, ok := s.replay(ctx, ownerID, key); ok {
		span.SetAttributes(attribute.Bool("replayed", true))
		return prev, true, nil
	}
	// The key points at a testimonial deleted since; store this one unkeyed.
	zerolog.Ctx(ctx).Warn().Str("owner_id", ownerID).Msg("idempotency key held by a deleted testimonial")
	t.ID = ""
	if err := s.Repo.CreateTestimonial(ctx, s.DB, t); err != nil {
		return nil, false, &TransportError{Op: "create testimonial", Err: err}
	}
	span.SetAttributes(attribute.String("testimonial.id", t.ID))
	return t, false, nil
}

// replay returns the testimonial recorded under key, if any is still valid.
func (s *SubmissionService) replay(ctx context.Context, ownerID, key string) (*domain.Testimonial, bool) {
	rec, err := s.Idem.GetIdempotency(ctx, s.DB, ownerID, key, time.Now().UTC())
	if err != nil || rec == nil {
		return nil, false
	}
	t, err := s.Repo.GetTestimonial(ctx, s.DB, rec.TestimonialID)
	if err != nil || t.OwnerID != ownerID {
		// Deleted since the first attempt: fall through to a fresh insert.
		return nil, false
	}
	return t, true
}

// buildTestimonial normalizes and validates in. It never touches the store.
func buildTestimonial(ownerID string, in SubmissionInput) (*domain.Testimonial, error) {
	var fields []FieldError
	check := func(field, v string, required bool, max int) string {
		v = cleanText(v)
		switch {
		case required && v == "":
			fields = append(fields, FieldError{Field: field, Reason: ReasonRequired})
		case utf8.RuneCountInString(v) > max:
			fields = append(fields, FieldError{Field: field, Reason: ReasonTooLong})
		}
		return v
	}

	name := check("name", in.Name, true, domain.MaxNameRunes)
	company := check("company", in.Company, false, domain.MaxCompanyRunes)
	title := check("title", in.Title, false, domain.MaxTitleRunes)
	body := check("testimonial", in.Testimonial, true, domain.MaxBodyRunes)

	var rating *int
	if in.Rating != nil {
		r := *in.Rating
		switch {
		case math.IsNaN(r) || math.IsInf(r, 0) || r != math.Trunc(r):
			fields = append(fields, FieldError{Field: "rating", Reason: ReasonNotInteger})
		case r < domain.MinRating || r > domain.MaxRating:
			fields = append(fields, FieldError{Field: "rating", Reason: ReasonOutOfRange})
		default:
			v := int(r)
			rating = &v
		}
	}

	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}
	return &domain.Testimonial{
		OwnerID: ownerID,
		Name:    name,
		Company: company,
		Title:   title,
		Body:    body,
		Rating:  rating,
		Status:  domain.StatusPending,
	}, nil
}

// cleanText trims surrounding whitespace and applies NFC normalization so
// that visually identical input is stored identically.
func cleanText(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

// IsValidation reports whether err carries field-level validation detail and
// returns it.
func IsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
