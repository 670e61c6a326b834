// Account HTTP handlers.
//
// This file exposes the dashboard header data:
//   - GET /me         (profile, share link, embed code)
//   - GET /me/qr.png  (QR code of the share link)
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/testify-backend/internal/domain"
	"github.com/tbourn/testify-backend/internal/http/middleware"
)

// MeResponse is the dashboard header payload.
type MeResponse struct {
	Account    *domain.Account `json:"account"`
	SubmitLink string          `json:"submit_link" example:"https://testify.example.com/submit/user123"`
	EmbedCode  string          `json:"embed_code"`
	WidgetURL  string          `json:"widget_url"`
	FeedURL    string          `json:"feed_url"`
}

// Me godoc
// @ID          me
// @Summary     Current owner profile and share kit
// @Description Records the account from identity claims and returns the submission link and widget embed code.
// @Tags        Account
// @Produce     json
// @Security    BearerAuth
// @Success     200  {object} handlers.MeResponse
// @Failure     401  {object} handlers.ErrorResponse "Unauthorized"
// @Failure     503  {object} handlers.ErrorResponse "Record store unavailable"
// @Router      /me [get]
func (h *Handlers) Me(c *gin.Context) {
	id, _ := middleware.IdentityFrom(c)
	owner := ownerID(c)

	acct, err := h.acctSvc.Ensure(c.Request.Context(), owner, id.Email, id.Name)
	if err != nil {
		failService(c, err, "account not found")
		return
	}
	ok(c, http.StatusOK, MeResponse{
		Account:    acct,
		SubmitLink: h.share.SubmitLink(owner),
		EmbedCode:  h.share.EmbedCode(owner),
		WidgetURL:  h.share.WidgetURL(),
		FeedURL:    h.share.FeedURL(owner),
	})
}

// MeQRCode godoc
// @ID          meQRCode
// @Summary     QR code of the submission link
// @Tags        Account
// @Produce     image/png
// @Security    BearerAuth
// @Success     200  {file}   binary "PNG image"
// @Failure     401  {object} handlers.ErrorResponse "Unauthorized"
// @Failure     500  {object} handlers.ErrorResponse "QR generation failed"
// @Router      /me/qr.png [get]
func (h *Handlers) MeQRCode(c *gin.Context) {
	png, err := h.share.SubmitQR(ownerID(c))
	if err != nil {
		_ = c.Error(err)
		fail(c, http.StatusInternalServerError, ErrCodeQRFailed, "could not render QR code")
		return
	}
	c.Header("Cache-Control", "private, max-age=3600")
	c.Data(http.StatusOK, "image/png", png)
}
