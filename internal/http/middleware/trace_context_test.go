package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/vowbridge-backend/internal/platform/ctxutil"
)

func TestAttachTraceContextKeepsCleanRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AttachTraceContext())
	var seen string
	r.GET("/x", func(c *gin.Context) {
		seen = ctxutil.RequestID(c.Request.Context())
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(headerRequestID, "req-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if seen != "req-123" || w.Header().Get(headerRequestID) != "req-123" {
		t.Fatalf("request id not propagated: ctx=%q header=%q", seen, w.Header().Get(headerRequestID))
	}
	if w.Header().Get(headerTraceID) == "" {
		t.Fatalf("expected a trace id header")
	}
}

func TestAttachTraceContextReplacesUnsafeRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AttachTraceContext())
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	for _, bad := range []string{"has space", strings.Repeat("a", maxRequestIDLen+1)} {
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.Header.Set(headerRequestID, bad)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		got := w.Header().Get(headerRequestID)
		if got == "" || got == bad {
			t.Fatalf("expected a generated id for %q, got %q", bad, got)
		}
	}
}
