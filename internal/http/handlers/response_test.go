package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/tbourn/testify-backend/internal/services"
)

// withRID stands in for RequestID plus the access logger.
func withRID(rid string, lg *zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("X-Request-ID", rid)
		if lg != nil {
			c.Set("logger", lg)
		}
		c.Next()
	}
}

func Test_fail_EnvelopeAndServerErrorLogging(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name    string
		status  int
		code    string
		wantLog bool
	}{
		{"client error stays quiet", http.StatusNotFound, ErrCodeNotFound, false},
		{"bad request stays quiet", http.StatusBadRequest, ErrCodeBadRequest, false},
		{"server error is logged", http.StatusInternalServerError, ErrCodeInternal, true},
		{"unavailable is logged", http.StatusServiceUnavailable, ErrCodeStoreUnavailable, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			lg := zerolog.New(&buf)

			r := gin.New()
			r.Use(withRID("rid-"+tc.code, &lg))
			r.GET("/api/v1/testimonials/:id", func(c *gin.Context) { Fail(c, tc.status, tc.code, "msg") })

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/testimonials/t1", nil))
			if w.Code != tc.status {
				t.Fatalf("status=%d", w.Code)
			}
			var er ErrorResponse
			if err := json.Unmarshal(w.Body.Bytes(), &er); err != nil {
				t.Fatalf("json: %v", err)
			}
			if er.RequestID != "rid-"+tc.code || er.Code != tc.code || er.Message != "msg" || er.Fields != nil {
				t.Fatalf("unexpected body: %+v", er)
			}
			if logged := strings.Contains(buf.String(), `"message":"api error"`); logged != tc.wantLog {
				t.Fatalf("logged=%v want %v: %s", logged, tc.wantLog, buf.String())
			}
		})
	}
}

func Test_SuccessHelpers(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/api/v1/submit/:ownerId", func(c *gin.Context) {
		ok(c, http.StatusCreated, gin.H{"id": "t1", "status": "pending"})
	})
	r.DELETE("/api/v1/testimonials/:id", noContent)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/submit/alice", nil))
	if w.Code != http.StatusCreated || !strings.Contains(w.Body.String(), `"status":"pending"`) {
		t.Fatalf("ok: %d %s", w.Code, w.Body.String())
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/v1/testimonials/t1", nil))
	if w.Code != http.StatusNoContent || w.Body.Len() != 0 {
		t.Fatalf("noContent: %d %q", w.Code, w.Body.String())
	}
}

func Test_failService_Mapping(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name   string
		err    error
		status int
		code   string
		msg    string
	}{
		{"invalid status", services.ErrInvalidStatus, http.StatusBadRequest, ErrCodeInvalidStatus, ""},
		{"not owner", services.ErrUnauthorized, http.StatusNotFound, ErrCodeNotFound, "thing not found"},
		{"missing", services.ErrNotFound, http.StatusNotFound, ErrCodeNotFound, "thing not found"},
		{"transport", &services.TransportError{Op: "get", Err: errBoom}, http.StatusServiceUnavailable, ErrCodeStoreUnavailable, ""},
		{"other", errBoom, http.StatusInternalServerError, ErrCodeInternal, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := gin.New()
			r.GET("/x", func(c *gin.Context) { failService(c, tc.err, "thing not found") })

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
			if w.Code != tc.status {
				t.Fatalf("status=%d want %d", w.Code, tc.status)
			}
			var er ErrorResponse
			if err := json.Unmarshal(w.Body.Bytes(), &er); err != nil {
				t.Fatalf("json: %v", err)
			}
			if er.Code != tc.code {
				t.Fatalf("code=%q want %q", er.Code, tc.code)
			}
			if tc.msg != "" && er.Message != tc.msg {
				t.Fatalf("message=%q", er.Message)
			}
		})
	}
}

func Test_failService_ValidationCarriesFields(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/x", func(c *gin.Context) {
		failService(c, &services.ValidationError{Fields: []services.FieldError{
			{Field: "name", Reason: services.ReasonRequired},
			{Field: "rating", Reason: services.ReasonNotInteger},
		}}, "n/a")
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status=%d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `{"field":"rating","reason":"not_integer"}`) {
		t.Fatalf("body=%s", w.Body.String())
	}
}
