package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/testify-backend/internal/auth"
	"github.com/tbourn/testify-backend/internal/domain"
	"github.com/tbourn/testify-backend/internal/http/middleware"
	"github.com/tbourn/testify-backend/internal/services"
	"github.com/tbourn/testify-backend/internal/widget"
)

// ---------- flexible service stubs ----------

type stubSubmitSvc struct {
	submit func(ctx context.Context, owner, key string, in services.SubmissionInput) (*domain.Testimonial, bool, error)
	gotKey string
	gotIn  services.SubmissionInput
	called int
}

func (s *stubSubmitSvc) SubmitWithKey(ctx context.Context, owner, key string, in services.SubmissionInput) (*domain.Testimonial, bool, error) {
	s.called++
	s.gotKey, s.gotIn = key, in
	if s.submit != nil {
		return s.submit(ctx, owner, key, in)
	}
	return &domain.Testimonial{ID: "t1", OwnerID: owner, Name: in.Name, Body: in.Testimonial, Status: domain.StatusPending}, false, nil
}

type stubModSvc struct {
	get        func(ctx context.Context, id, actor string) (*domain.Testimonial, error)
	transition func(ctx context.Context, id, status, actor string) (*domain.Testimonial, error)
	del        func(ctx context.Context, id, actor string) error
}

func (s *stubModSvc) Get(ctx context.Context, id, actor string) (*domain.Testimonial, error) {
	if s.get != nil {
		return s.get(ctx, id, actor)
	}
	return &domain.Testimonial{ID: id, OwnerID: actor, Status: domain.StatusPending}, nil
}

func (s *stubModSvc) Transition(ctx context.Context, id, status, actor string) (*domain.Testimonial, error) {
	if s.transition != nil {
		return s.transition(ctx, id, status, actor)
	}
	st, _ := domain.ParseStatus(status)
	return &domain.Testimonial{ID: id, OwnerID: actor, Status: st}, nil
}

func (s *stubModSvc) Approve(ctx context.Context, id, actor string) (*domain.Testimonial, error) {
	return s.Transition(ctx, id, string(domain.StatusApproved), actor)
}

func (s *stubModSvc) Reject(ctx context.Context, id, actor string) (*domain.Testimonial, error) {
	return s.Transition(ctx, id, string(domain.StatusRejected), actor)
}

func (s *stubModSvc) Delete(ctx context.Context, id, actor string) error {
	if s.del != nil {
		return s.del(ctx, id, actor)
	}
	return nil
}

type stubDispSvc struct {
	page      func(ctx context.Context, owner string, page, size int) ([]domain.Testimonial, int64, error)
	approved  func(ctx context.Context, owner string) ([]domain.Testimonial, error)
	count     int64
	latest    *time.Time
	stamp     services.FeedStamp
	stampErr  error
	listCalls int
}

func (s *stubDispSvc) ListForOwnerPage(ctx context.Context, owner string, page, size int) ([]domain.Testimonial, int64, error) {
	s.listCalls++
	if s.page != nil {
		return s.page(ctx, owner, page, size)
	}
	return []domain.Testimonial{}, 0, nil
}

func (s *stubDispSvc) ListApprovedForOwner(ctx context.Context, owner string) ([]domain.Testimonial, error) {
	s.listCalls++
	if s.approved != nil {
		return s.approved(ctx, owner)
	}
	return []domain.Testimonial{}, nil
}

func (s *stubDispSvc) OwnerStamp(context.Context, string) (int64, *time.Time, error) {
	return s.count, s.latest, s.stampErr
}

func (s *stubDispSvc) FeedStamp(context.Context, string) (services.FeedStamp, error) {
	return s.stamp, s.stampErr
}

type stubAcctSvc struct {
	ensure func(ctx context.Context, id, email, name string) (*domain.Account, error)
}

func (s *stubAcctSvc) Ensure(ctx context.Context, id, email, name string) (*domain.Account, error) {
	if s.ensure != nil {
		return s.ensure(ctx, id, email, name)
	}
	return &domain.Account{ID: id, Email: email, DisplayName: name}, nil
}

type stubShare struct {
	qrErr error
}

func (stubShare) SubmitLink(owner string) string { return "https://app.test/submit/" + owner }
func (stubShare) EmbedCode(owner string) string { return `<div data-owner="` + owner + `"></div>` }
func (stubShare) WidgetURL() string { return "https://api.test/widget.js" }
func (stubShare) FeedURL(owner string) string { return "https://api.test/api/v1/public/" + owner + "/testimonials" }
func (s stubShare) SubmitQR(string) ([]byte, error) {
	if s.qrErr != nil {
		return nil, s.qrErr
	}
	return []byte("\x89PNG"), nil
}

// fixedVerifier accepts exactly one token.
type fixedVerifier struct {
	token string
	id    auth.Identity
}

func (v fixedVerifier) Verify(_ context.Context, token string) (auth.Identity, error) {
	if token != v.token {
		return auth.Identity{}, auth.ErrInvalidToken
	}
	return v.id, nil
}

// ---------- router helpers ----------

type testDeps struct {
	sub   *stubSubmitSvc
	mod   *stubModSvc
	disp  *stubDispSvc
	acct  *stubAcctSvc
	share stubShare
}

func newDeps() *testDeps {
	return &testDeps{
		sub:  &stubSubmitSvc{},
		mod:  &stubModSvc{},
		disp: &stubDispSvc{},
		acct: &stubAcctSvc{},
	}
}

// newTestRouter mounts the handlers the same way the production router does,
// with the dev X-User-ID header accepted for authenticated routes.
func newTestRouter(t *testing.T, d *testDeps) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	h := New(d.sub, d.mod, d.disp, d.acct, d.share, widget.Render("https://api.test/api/v1"))

	r := gin.New()
	r.Use(middleware.RequestID())
	r.GET("/widget.js", h.WidgetScript)

	api := r.Group("/api/v1")
	api.POST("/submit/:ownerId", middleware.IdempotencyValidator(middleware.IdempotencyOptions{}), h.SubmitTestimonial)
	api.GET("/public/:ownerId/testimonials", h.PublicFeed)

	authed := api.Group("", middleware.Authenticate(fixedVerifier{
		token: "good",
		id:    auth.Identity{Subject: "owner-1", Email: "o@example.com", Name: "Owner"},
	}, middleware.AuthOptions{AllowDevHeader: true}))
	authed.GET("/me", h.Me)
	authed.GET("/me/qr.png", h.MeQRCode)
	authed.GET("/testimonials", h.ListTestimonials)
	authed.GET("/testimonials/:id", h.GetTestimonial)
	authed.POST("/testimonials/:id/approve", h.ApproveTestimonial)
	authed.POST("/testimonials/:id/reject", h.RejectTestimonial)
	authed.PUT("/testimonials/:id/status", h.SetTestimonialStatus)
	authed.DELETE("/testimonials/:id", h.DeleteTestimonial)
	return r
}

func do(r http.Handler, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

var errBoom = errors.New("boom")

func asOwner(id string) map[string]string {
	return map[string]string{middleware.HeaderDevUserID: id}
}
