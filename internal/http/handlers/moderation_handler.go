// Moderation HTTP handlers.
//
// This file exposes the authenticated dashboard endpoints:
//   - GET    /testimonials                 (owner view, paginated, ETag)
//   - GET    /testimonials/{id}
//   - POST   /testimonials/{id}/approve
//   - POST   /testimonials/{id}/reject
//   - PUT    /testimonials/{id}/status
//   - DELETE /testimonials/{id}
//
// Records owned by another account answer exactly like missing ones.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/testify-backend/internal/domain"
	"github.com/tbourn/testify-backend/internal/http/middleware"
	"github.com/tbourn/testify-backend/internal/utils"
)

const testimonialNotFound = "testimonial not found"

// SetStatusRequest is the JSON payload for an explicit transition.
type SetStatusRequest struct {
	// Status is the target state.
	Status string `json:"status" binding:"required" example:"approved" enums:"approved,rejected"`
}

// ListTestimonials godoc
// @ID          listTestimonials
// @Summary     List the owner's testimonials (paginated)
// @Description Returns every testimonial of the current owner in any status, newest first. Supports weak ETag via If-None-Match and may return 304.
// @Tags        Moderation
// @Produce     json
// @Security    BearerAuth
//
// @Param       If-None-Match  header  string  false "Return 304 if ETag matches"
// @Param       page           query   int     false "Page number"    minimum(1) default(1)
// @Param       page_size      query   int     false "Items per page" minimum(1) maximum(100) default(20)
//
// @Success     200  {object} handlers.ListTestimonialsResponse
// @Header      200  {string} ETag "Weak ETag for current result"
// @Success     304  {string} string "Not Modified"
// @Failure     401  {object} handlers.ErrorResponse "Unauthorized"
// @Failure     503  {object} handlers.ErrorResponse "Record store unavailable"
// @Router      /testimonials [get]
func (h *Handlers) ListTestimonials(c *gin.Context) {
	ctx := c.Request.Context()
	owner := ownerID(c)
	page, pageSize := clampPagination(c)

	// ETag pre-check (best effort).
	if count, latest, err := h.dispSvc.OwnerStamp(ctx, owner); err == nil {
		if notModified(c, weakETag("owner", owner, count, latest)) {
			c.Status(http.StatusNotModified)
			return
		}
	}

	items, total, err := h.dispSvc.ListForOwnerPage(ctx, owner, page, pageSize)
	if err != nil {
		failService(c, err, testimonialNotFound)
		return
	}

	totalPages := utils.TotalPages(total, pageSize)
	c.Header("Cache-Control", "private, no-cache")
	ok(c, http.StatusOK, ListTestimonialsResponse{
		Testimonials: items,
		Pagination: Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    page < totalPages,
		},
	})
}

// GetTestimonial godoc
// @ID          getTestimonial
// @Summary     Get one testimonial
// @Tags        Moderation
// @Produce     json
// @Security    BearerAuth
// @Param       id   path  string  true  "Testimonial ID"
// @Success     200  {object} domain.Testimonial
// @Failure     401  {object} handlers.ErrorResponse "Unauthorized"
// @Failure     404  {object} handlers.ErrorResponse "Not found"
// @Router      /testimonials/{id} [get]
func (h *Handlers) GetTestimonial(c *gin.Context) {
	t, err := h.modSvc.Get(c.Request.Context(), c.Param("id"), ownerID(c))
	if err != nil {
		failService(c, err, testimonialNotFound)
		return
	}
	ok(c, http.StatusOK, t)
}

// ApproveTestimonial godoc
// @ID          approveTestimonial
// @Summary     Approve a testimonial
// @Description Makes the testimonial visible on the public feed. Approving twice is a no-op.
// @Tags        Moderation
// @Produce     json
// @Security    BearerAuth
// @Param       id   path  string  true  "Testimonial ID"
// @Success     200  {object} domain.Testimonial
// @Failure     401  {object} handlers.ErrorResponse "Unauthorized"
// @Failure     404  {object} handlers.ErrorResponse "Not found"
// @Router      /testimonials/{id}/approve [post]
func (h *Handlers) ApproveTestimonial(c *gin.Context) {
	t, err := h.modSvc.Approve(c.Request.Context(), c.Param("id"), ownerID(c))
	h.respondTransition(c, "approve", t, err)
}

// RejectTestimonial godoc
// @ID          rejectTestimonial
// @Summary     Reject a testimonial
// @Description Hides the testimonial from the public feed. Rejecting twice is a no-op.
// @Tags        Moderation
// @Produce     json
// @Security    BearerAuth
// @Param       id   path  string  true  "Testimonial ID"
// @Success     200  {object} domain.Testimonial
// @Failure     401  {object} handlers.ErrorResponse "Unauthorized"
// @Failure     404  {object} handlers.ErrorResponse "Not found"
// @Router      /testimonials/{id}/reject [post]
func (h *Handlers) RejectTestimonial(c *gin.Context) {
	t, err := h.modSvc.Reject(c.Request.Context(), c.Param("id"), ownerID(c))
	h.respondTransition(c, "reject", t, err)
}

// SetTestimonialStatus godoc
// @ID          setTestimonialStatus
// @Summary     Set a testimonial's status
// @Tags        Moderation
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id    path  string  true  "Testimonial ID"
// @Param       body  body  handlers.SetStatusRequest  true  "Target status"
// @Success     200  {object} domain.Testimonial
// @Failure     400  {object} handlers.ErrorResponse "Invalid status"
// @Failure     401  {object} handlers.ErrorResponse "Unauthorized"
// @Failure     404  {object} handlers.ErrorResponse "Not found"
// @Router      /testimonials/{id}/status [put]
func (h *Handlers) SetTestimonialStatus(c *gin.Context) {
	var req SetStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "status required")
		return
	}
	t, err := h.modSvc.Transition(c.Request.Context(), c.Param("id"), req.Status, ownerID(c))
	h.respondTransition(c, "set_status", t, err)
}

// DeleteTestimonial godoc
// @ID          deleteTestimonial
// @Summary     Delete a testimonial
// @Description Permanently removes the testimonial in any status.
// @Tags        Moderation
// @Security    BearerAuth
// @Param       id   path  string  true  "Testimonial ID"
// @Success     204  {string} string "No Content"
// @Failure     401  {object} handlers.ErrorResponse "Unauthorized"
// @Failure     404  {object} handlers.ErrorResponse "Not found"
// @Router      /testimonials/{id} [delete]
func (h *Handlers) DeleteTestimonial(c *gin.Context) {
	if err := h.modSvc.Delete(c.Request.Context(), c.Param("id"), ownerID(c)); err != nil {
		middleware.ObserveModeration("delete", "error")
		failService(c, err, testimonialNotFound)
		return
	}
	middleware.ObserveModeration("delete", "ok")
	noContent(c)
}

func (h *Handlers) respondTransition(c *gin.Context, action string, t *domain.Testimonial, err error) {
	if err != nil {
		middleware.ObserveModeration(action, "error")
		failService(c, err, testimonialNotFound)
		return
	}
	middleware.ObserveModeration(action, "ok")
	ok(c, http.StatusOK, t)
}
