// Submission HTTP handler.
//
// This file exposes the anonymous submission endpoint:
//   - POST /submit/{ownerId}
//
// The body is bound into a typed request; binding-level violations are
// reported per field in the same shape as service validation errors.
package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/tbourn/testify-backend/internal/http/middleware"
	"github.com/tbourn/testify-backend/internal/services"
)

// SubmitTestimonialRequest is the visitor payload.
type SubmitTestimonialRequest struct {
	// Name of the person giving the testimonial.
	Name string `json:"name" binding:"required" example:"Alice"`
	// Company is optional.
	Company string `json:"company" example:"Acme"`
	// Title is optional (job title).
	Title string `json:"title" example:"CTO"`
	// Testimonial is the quote body.
	Testimonial string `json:"testimonial" binding:"required" example:"Great tool"`
	// Rating is optional; 1 to 5 stars.
	Rating *float64 `json:"rating" binding:"omitempty,gte=1,lte=5" example:"5"`
}

// SubmitTestimonial godoc
// @ID          submitTestimonial
// @Summary     Submit a testimonial
// @Description Stores a pending testimonial for the owner. Supports Idempotency-Key (same key returns the first result).
// @Tags        Submission
// @Accept      json
// @Produce     json
//
// @Param       ownerId          path    string  true   "Owner account ID"
// @Param       Idempotency-Key  header  string  false  "Idempotency key for safe retries"
// @Param       body             body    handlers.SubmitTestimonialRequest  true  "Testimonial"
//
// @Success     201  {object}  domain.Testimonial
// @Failure     400  {object}  handlers.ErrorResponse  "Validation failed"
// @Failure     404  {object}  handlers.ErrorResponse  "Unknown owner"
// @Failure     503  {object}  handlers.ErrorResponse  "Record store unavailable"
// @Router      /submit/{ownerId} [post]
func (h *Handlers) SubmitTestimonial(c *gin.Context) {
	owner := c.Param("ownerId")

	var req SubmitTestimonialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			middleware.ObserveSubmission("invalid")
			failWith(c, http.StatusBadRequest, ErrorResponse{
				Code:    ErrCodeValidation,
				Message: "invalid testimonial",
				Fields:  fieldErrors(verrs),
			})
			return
		}
		middleware.ObserveSubmission("invalid")
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	key, _ := middleware.GetIdempotencyKey(c)
	t, replayed, err := h.subSvc.SubmitWithKey(c.Request.Context(), owner, key, services.SubmissionInput{
		Name:        req.Name,
		Company:     req.Company,
		Title:       req.Title,
		Testimonial: req.Testimonial,
		Rating:      req.Rating,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrValidation):
			middleware.ObserveSubmission("invalid")
		case errors.Is(err, services.ErrNotFound):
			middleware.ObserveSubmission("unknown_owner")
		default:
			middleware.ObserveSubmission("error")
		}
		failService(c, err, "owner not found")
		return
	}

	if replayed {
		middleware.ObserveSubmission("replayed")
		c.Header(middleware.HeaderIdempotentReplayed, "true")
	} else {
		middleware.ObserveSubmission("created")
	}
	ok(c, http.StatusCreated, t)
}

// fieldErrors translates binding violations into the service field taxonomy.
func fieldErrors(verrs validator.ValidationErrors) []services.FieldError {
	out := make([]services.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		reason := services.ReasonOutOfRange
		switch fe.Tag() {
		case "required":
			reason = services.ReasonRequired
		case "max":
			reason = services.ReasonTooLong
		}
		out = append(out, services.FieldError{Field: strings.ToLower(fe.Field()), Reason: reason})
	}
	return out
}
