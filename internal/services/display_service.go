// Package services – DisplayService
//
// This file implements the read side: the owner view used for moderation and
// the public view rendered by the widget. The public view is the only feed
// exposed to anonymous callers and must never contain a pending or rejected
// testimonial, so every result is re-filtered in process regardless of where
// it came from (store or cache).
//
// Caching: an optional FeedCache stores the public view keyed by a feed
// stamp derived from the store (approved count, total rows, latest update).
// Any moderation write moves the stamp to a value it never held before, so
// stale entries are never read and simply expire. A list is stored only when
// the stamp is unchanged across the read, so a key never labels a newer
// list. Cache failures degrade to a store read.
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tbourn/testify-backend/internal/domain"
	"github.com/tbourn/testify-backend/internal/utils"
)

// FeedCache stores rendered public feeds by stamp key.
type FeedCache interface {
	// GetFeed returns the cached feed for key. hit is false on a miss.
	GetFeed(ctx context.Context, key string) (items []domain.Testimonial, hit bool, err error)
	// SetFeed stores items under key.
	SetFeed(ctx context.Context, key string, items []domain.Testimonial) error
}

// FeedStamp versions an owner's public feed.
type FeedStamp struct {
	Approved  int64
	Total     int64
	UpdatedAt *time.Time
}

// Key returns the cache key for the stamp.
func (s FeedStamp) Key(ownerID string) string {
	return "testify:feed:" + ownerID + ":" + s.version()
}

// ETag returns a weak validator for the public feed at this stamp.
func (s FeedStamp) ETag(ownerID string) string {
	return `W/"feed:` + ownerID + ":" + s.version() + `"`
}

func (s FeedStamp) version() string {
	var ts int64
	if s.UpdatedAt != nil {
		ts = s.UpdatedAt.UTC().UnixNano()
	}
	return fmt.Sprintf("%d:%d:%d", s.Approved, s.Total, ts)
}

// Equal reports whether both stamps name the same feed version.
func (s FeedStamp) Equal(o FeedStamp) bool {
	return s.version() == o.version()
}

// DisplayService provides the owner and public projections.
type DisplayService struct {
	DB    *gorm.DB
	Repo  TestimonialRepo
	Cache FeedCache // optional
}

// NewDisplayService constructs a DisplayService. cache may be nil.
func NewDisplayService(db *gorm.DB, r TestimonialRepo, cache FeedCache) *DisplayService {
	return &DisplayService{DB: db, Repo: r, Cache: cache}
}

// ListForOwner returns every testimonial of ownerID in any status, newest
// first. An owner without testimonials yields an empty slice.
func (s *DisplayService) ListForOwner(ctx context.Context, ownerID string) ([]domain.Testimonial, error) {
	tr := otel.Tracer("services/DisplayService")
	ctx, span := tr.Start(ctx, "ListForOwner",
		trace.WithAttributes(attribute.String("owner.id", ownerID)),
	)
	defer span.End()

	items, err := s.Repo.ListTestimonialsByOwner(ctx, s.DB, ownerID)
	if err != nil {
		return nil, storeErr("list by owner", err)
	}
	return ownedBy(items, ownerID), nil
}

// ListForOwnerPage returns a page of the owner view together with the total
// number of testimonials. Invalid page/pageSize fall back to 1 and 20.
func (s *DisplayService) ListForOwnerPage(ctx context.Context, ownerID string, page, pageSize int) ([]domain.Testimonial, int64, error) {
	tr := otel.Tracer("services/DisplayService")
	ctx, span := tr.Start(ctx, "ListForOwnerPage",
		trace.WithAttributes(
			attribute.String("owner.id", ownerID),
			attribute.Int("page", page),
			attribute.Int("page_size", pageSize),
		),
	)
	defer span.End()

	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	offset := utils.PageOffset(page, pageSize)

	total, err := s.Repo.CountTestimonialsByOwner(ctx, s.DB, ownerID)
	if err != nil {
		return nil, 0, storeErr("count by owner", err)
	}
	if total == 0 {
		return []domain.Testimonial{}, 0, nil
	}

	items, err := s.Repo.ListTestimonialsByOwnerPage(ctx, s.DB, ownerID, offset, pageSize)
	if err != nil {
		return nil, 0, storeErr("list page", err)
	}
	return ownedBy(items, ownerID), total, nil
}

// ListApprovedForOwner returns the public view of ownerID: approved
// testimonials only, newest first.
func (s *DisplayService) ListApprovedForOwner(ctx context.Context, ownerID string) ([]domain.Testimonial, error) {
	tr := otel.Tracer("services/DisplayService")
	ctx, span := tr.Start(ctx, "ListApprovedForOwner",
		trace.WithAttributes(attribute.String("owner.id", ownerID)),
	)
	defer span.End()

	var (
		key   string
		stamp FeedStamp
	)
	if s.Cache != nil {
		var err error
		if stamp, err = s.FeedStamp(ctx, ownerID); err != nil {
			return nil, err
		}
		key = stamp.Key(ownerID)
		items, hit, err := s.Cache.GetFeed(ctx, key)
		switch {
		case err != nil:
			zerolog.Ctx(ctx).Warn().Err(err).Str("owner_id", ownerID).Msg("feed cache read failed")
		case hit:
			span.SetAttributes(attribute.Bool("cache.hit", true))
			return publicOnly(items, ownerID), nil
		}
	}

	items, err := s.Repo.ListApprovedByOwner(ctx, s.DB, ownerID)
	if err != nil {
		return nil, storeErr("list approved", err)
	}
	items = publicOnly(items, ownerID)

	if key == "" {
		return items, nil
	}
	// A write between the stamp and the list read means items may be newer
	// than key; skip the fill and let the next read populate the new key.
	if after, err := s.FeedStamp(ctx, ownerID); err != nil || !after.Equal(stamp) {
		span.SetAttributes(attribute.Bool("cache.fill_skipped", true))
		return items, nil
	}
	if err := s.Cache.SetFeed(ctx, key, items); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("owner_id", ownerID).Msg("feed cache write failed")
	}
	return items, nil
}

// FeedStamp returns the current version of ownerID's public feed.
func (s *DisplayService) FeedStamp(ctx context.Context, ownerID string) (FeedStamp, error) {
	n, total, ts, err := s.Repo.FeedStats(ctx, s.DB, ownerID)
	if err != nil {
		return FeedStamp{}, storeErr("feed stats", err)
	}
	return FeedStamp{Approved: n, Total: total, UpdatedAt: ts}, nil
}

// OwnerStamp returns the row count and latest update of the owner view.
func (s *DisplayService) OwnerStamp(ctx context.Context, ownerID string) (int64, *time.Time, error) {
	n, ts, err := s.Repo.OwnerStats(ctx, s.DB, ownerID)
	if err != nil {
		return 0, nil, storeErr("owner stats", err)
	}
	return n, ts, nil
}

// publicOnly keeps approved rows of ownerID. It always returns a non-nil slice.
func publicOnly(in []domain.Testimonial, ownerID string) []domain.Testimonial {
	out := make([]domain.Testimonial, 0, len(in))
	for _, t := range in {
		if t.IsPublic() && t.OwnerID == ownerID {
			out = append(out, t)
		}
	}
	return out
}

// ownedBy keeps rows of ownerID. It always returns a non-nil slice.
func ownedBy(in []domain.Testimonial, ownerID string) []domain.Testimonial {
	out := make([]domain.Testimonial, 0, len(in))
	for _, t := range in {
		if t.OwnerID == ownerID {
			out = append(out, t)
		}
	}
	return out
}
