// Package handlers exposes the REST endpoints of the testimonial API.
//
// Handlers are transport-thin: they bind and validate input, resolve the
// acting owner from the request context, call application services, and
// translate results into HTTP responses (including conditional responses).
package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/testify-backend/internal/domain"
	"github.com/tbourn/testify-backend/internal/http/middleware"
	"github.com/tbourn/testify-backend/internal/services"
	"github.com/tbourn/testify-backend/internal/utils"
	"github.com/tbourn/testify-backend/internal/widget"
)

//
// Service contracts (context-aware)
//

// SubmissionService accepts testimonials from anonymous visitors.
type SubmissionService interface {
	// SubmitWithKey stores a pending testimonial. A non-empty key replays the
	// first result of a previous identical request.
	SubmitWithKey(ctx context.Context, ownerID, key string, in services.SubmissionInput) (*domain.Testimonial, bool, error)
}

// ModerationService applies owner actions on a single testimonial.
type ModerationService interface {
	Get(ctx context.Context, id, actingOwnerID string) (*domain.Testimonial, error)
	Transition(ctx context.Context, id, status, actingOwnerID string) (*domain.Testimonial, error)
	Approve(ctx context.Context, id, actingOwnerID string) (*domain.Testimonial, error)
	Reject(ctx context.Context, id, actingOwnerID string) (*domain.Testimonial, error)
	Delete(ctx context.Context, id, actingOwnerID string) error
}

// DisplayService provides the owner and public read views.
type DisplayService interface {
	ListForOwnerPage(ctx context.Context, ownerID string, page, pageSize int) ([]domain.Testimonial, int64, error)
	ListApprovedForOwner(ctx context.Context, ownerID string) ([]domain.Testimonial, error)
	OwnerStamp(ctx context.Context, ownerID string) (int64, *time.Time, error)
	FeedStamp(ctx context.Context, ownerID string) (services.FeedStamp, error)
}

// AccountService records the owner profile.
type AccountService interface {
	Ensure(ctx context.Context, id, email, displayName string) (*domain.Account, error)
}

// ShareKit renders the artifacts an owner distributes.
type ShareKit interface {
	SubmitLink(ownerID string) string
	EmbedCode(ownerID string) string
	WidgetURL() string
	FeedURL(ownerID string) string
	SubmitQR(ownerID string) ([]byte, error)
}

//
// Handler wiring
//

// Handlers groups the HTTP endpoints. It depends on abstract service
// interfaces to keep transport concerns separate from business logic.
type Handlers struct {
	subSvc  SubmissionService
	modSvc  ModerationService
	dispSvc DisplayService
	acctSvc AccountService
	share   ShareKit
	script  *widget.Script
}

// New constructs a Handlers instance bound to the given services.
func New(sub SubmissionService, mod ModerationService, disp DisplayService, acct AccountService, share ShareKit, script *widget.Script) *Handlers {
	return &Handlers{
		subSvc:  sub,
		modSvc:  mod,
		dispSvc: disp,
		acctSvc: acct,
		share:   share,
		script:  script,
	}
}

// ownerID returns the acting owner resolved by the auth middleware.
func ownerID(c *gin.Context) string {
	return middleware.UserID(c)
}

//
// DTOs
//

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

// ListTestimonialsResponse wraps a page of the owner view.
type ListTestimonialsResponse struct {
	Testimonials []domain.Testimonial `json:"testimonials"`
	Pagination   Pagination           `json:"pagination"`
}

//
// Helpers
//

// clampPagination parses and bounds page and page_size query params.
func clampPagination(c *gin.Context) (page, pageSize int) {
	const (
		defaultPage     = 1
		defaultPageSize = 20
		maxPageSize     = 100
	)
	page = utils.AtoiDefault(c.Query("page"), defaultPage)
	if page < 1 {
		page = 1
	}
	pageSize = utils.Clamp(utils.AtoiDefault(c.Query("page_size"), defaultPageSize), 1, maxPageSize)
	return
}

// weakETag formats a weak validator from a row count and latest update.
func weakETag(kind, ownerID string, count int64, latest *time.Time) string {
	var ts int64
	if latest != nil {
		ts = latest.UnixNano()
	}
	return fmt.Sprintf(`W/"%s:%s:%d:%d"`, kind, ownerID, count, ts)
}

// notModified sets ETag and reports whether If-None-Match already matches.
func notModified(c *gin.Context, etag string) bool {
	c.Header("ETag", etag)
	return c.GetHeader("If-None-Match") == etag
}
