package router

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/pressdesk/internal/config"
	handlershared "github.com/pressdesk/internal/http/handlers/shared"

	"github.com/gin-gonic/gin"
)

func TestKeyByIPAndJSONFieldRestoresBody(t *testing.T) {
	gin.SetMode(gin.TestMode)

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"email":" Editor@Press.org ","password":"x"}`))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Request.RemoteAddr = "10.0.0.8:5678"

	if key := KeyByIPAndJSONField("email")(c); key != "editor@press.org|10.0.0.8" {
		t.Fatalf("unexpected key: %s", key)
	}
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		t.Fatalf("read restored body failed: %v", err)
	}
	if !strings.Contains(string(body), "Editor@Press.org") {
		t.Fatalf("request body should be restored, got %s", body)
	}

	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"email":42}`))
	c.Request.RemoteAddr = "10.0.0.8:5678"
	if key := KeyByIPAndJSONField("email")(c); key != "10.0.0.8" {
		t.Fatalf("non-string field should fall back to ip, got %s", key)
	}
}

func TestKeyByUser(t *testing.T) {
	gin.SetMode(gin.TestMode)

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	if key := KeyByUser(c); key != "" {
		t.Fatalf("anonymous key should be empty, got %s", key)
	}
	c.Set(handlershared.ContextKeyUserID, uint(12))
	if key := KeyByUser(c); key != "user:12" {
		t.Fatalf("unexpected user key: %s", key)
	}
}

func TestNewRateLimitRule(t *testing.T) {
	rule := NewRateLimitRule("pd", "submit", config.RateLimitConfig{WindowSeconds: 60, MaxAttempts: 3}, "")
	if rule.key("user:1") != "pd:rate:submit:user:1" {
		t.Fatalf("unexpected key: %s", rule.key("user:1"))
	}
	if !rule.enabled() {
		t.Fatalf("rule should be enabled")
	}
	if NewRateLimitRule("pd", "login", config.RateLimitConfig{}, "").enabled() {
		t.Fatalf("zero config should disable the rule")
	}
}

func TestRateLimitMiddlewarePassesWithoutRedis(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(RateLimitMiddleware(nil, RateLimitRule{WindowSeconds: 60, MaxRequests: 1}, KeyByIP))
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
		if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"ok":true`) {
			t.Fatalf("request %d should pass, got %d %s", i, w.Code, w.Body.String())
		}
	}
}

func TestRetryAfterSeconds(t *testing.T) {
	cases := []struct {
		ttl    int64
		window int
		want   int
	}{
		{ttl: 42, window: 300, want: 42},
		{ttl: -1, window: 300, want: 300},
		{ttl: -2, window: 0, want: 1},
	}
	for _, tc := range cases {
		if got := retryAfterSeconds(tc.ttl, tc.window); got != tc.want {
			t.Fatalf("retryAfterSeconds(%d, %d) = %d, want %d", tc.ttl, tc.window, got, tc.want)
		}
	}
}
