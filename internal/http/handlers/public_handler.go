// Public HTTP handlers.
//
// This file exposes the anonymous read surface used by embedding sites:
//   - GET /public/{ownerId}/testimonials  (approved only, weak ETag)
//   - GET /widget.js                      (embeddable script)
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/testify-backend/internal/domain"
)

// PublicTestimonial is the public projection of an approved testimonial.
// Moderation metadata is never exposed.
type PublicTestimonial struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Company     string    `json:"company,omitempty"`
	Title       string    `json:"title,omitempty"`
	Testimonial string    `json:"testimonial"`
	Rating      *int      `json:"rating,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// PublicFeedResponse wraps the public view.
type PublicFeedResponse struct {
	Testimonials []PublicTestimonial `json:"testimonials"`
}

func toPublic(items []domain.Testimonial) []PublicTestimonial {
	out := make([]PublicTestimonial, 0, len(items))
	for _, t := range items {
		if !t.IsPublic() {
			continue
		}
		out = append(out, PublicTestimonial{
			ID:          t.ID,
			Name:        t.Name,
			Company:     t.Company,
			Title:       t.Title,
			Testimonial: t.Body,
			Rating:      t.Rating,
			CreatedAt:   t.CreatedAt,
		})
	}
	return out
}

// PublicFeed godoc
// @ID          publicFeed
// @Summary     Approved testimonials of an owner
// @Description Public feed rendered by the widget. Only approved testimonials are ever returned. Supports weak ETag via If-None-Match.
// @Tags        Public
// @Produce     json
// @Param       ownerId        path    string  true   "Owner account ID"
// @Param       If-None-Match  header  string  false  "Return 304 if ETag matches"
// @Success     200  {object} handlers.PublicFeedResponse
// @Success     304  {string} string "Not Modified"
// @Failure     503  {object} handlers.ErrorResponse "Record store unavailable"
// @Router      /public/{ownerId}/testimonials [get]
func (h *Handlers) PublicFeed(c *gin.Context) {
	ctx := c.Request.Context()
	owner := c.Param("ownerId")

	if stamp, err := h.dispSvc.FeedStamp(ctx, owner); err == nil {
		if notModified(c, stamp.ETag(owner)) {
			c.Status(http.StatusNotModified)
			return
		}
	}

	items, err := h.dispSvc.ListApprovedForOwner(ctx, owner)
	if err != nil {
		failService(c, err, "owner not found")
		return
	}
	// Shared caches must revalidate so a rejection or delete is never
	// served from a stale copy; the ETag keeps that cheap.
	c.Header("Cache-Control", "public, no-cache")
	ok(c, http.StatusOK, PublicFeedResponse{Testimonials: toPublic(items)})
}

// WidgetScript godoc
// @ID          widgetScript
// @Summary     Embeddable widget script
// @Tags        Public
// @Produce     application/javascript
// @Success     200  {string} string "JavaScript"
// @Success     304  {string} string "Not Modified"
// @Router      /widget.js [get]
func (h *Handlers) WidgetScript(c *gin.Context) {
	if notModified(c, h.script.ETag()) {
		c.Status(http.StatusNotModified)
		return
	}
	c.Header("Cache-Control", "public, max-age=300")
	c.Data(http.StatusOK, "application/javascript; charset=utf-8", h.script.Bytes())
}
