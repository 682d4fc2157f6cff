package router

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestKeyByIPAndJSONField(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(`{"name":"Asha","phone":" 98765ABCDE "}`))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Request.RemoteAddr = "1.2.3.4:5678"

	key := KeyByIPAndJSONField("phone")(c)
	if key != "98765abcde|1.2.3.4" {
		t.Fatalf("key want 98765abcde|1.2.3.4 got %s", key)
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		t.Fatalf("read body after key extraction failed: %v", err)
	}
	if !strings.Contains(string(body), "98765ABCDE") {
		t.Fatalf("request body should be restored after reading field")
	}
}

func TestRateLimitMiddlewareWithoutClient(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(RateLimitMiddleware(nil, RateLimitRule{WindowSeconds: 60, MaxRequests: 1}, KeyByIP))
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status want 200 got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"ok":true`) {
		t.Fatalf("expected handler response body, got %s", w.Body.String())
	}
}

func TestRateLimiterDecide(t *testing.T) {
	limiter := NewRateLimiter(nil, RateLimitRule{WindowSeconds: 60, MaxRequests: 3})

	if d := limiter.decide(1, 60); !d.Allowed || d.Remaining != 2 {
		t.Fatalf("first request should pass with 2 remaining, got %+v", d)
	}
	if d := limiter.decide(3, 42); !d.Allowed || d.Remaining != 0 {
		t.Fatalf("last allowed request should pass with 0 remaining, got %+v", d)
	}
	if d := limiter.decide(4, 42); d.Allowed || d.WaitSeconds != 42 {
		t.Fatalf("over limit should wait ttl, got %+v", d)
	}
	if d := limiter.decide(4, -1); d.Allowed || d.WaitSeconds != 60 {
		t.Fatalf("missing ttl should fall back to window, got %+v", d)
	}
}

func TestRateLimiterMessage(t *testing.T) {
	limiter := NewRateLimiter(nil, RateLimitRule{})
	if got := limiter.message(7); got != "too many requests, please retry in 7 seconds" {
		t.Fatalf("unexpected default message %s", got)
	}
	limiter = NewRateLimiter(nil, RateLimitRule{Message: "slow down"})
	if got := limiter.message(7); got != "slow down" {
		t.Fatalf("message without placeholder should be kept, got %s", got)
	}
}

func TestRateLimiterWithoutClientAllows(t *testing.T) {
	decision, err := NewRateLimiter(nil, RateLimitRule{WindowSeconds: 60, MaxRequests: 1}).Allow(context.Background(), "k")
	if err != nil || !decision.Allowed {
		t.Fatalf("nil client should allow, got %+v err=%v", decision, err)
	}
}

func TestToInt64(t *testing.T) {
	cases := []struct {
		name  string
		input interface{}
		want  int64
		ok    bool
	}{
		{name: "int64", input: int64(10), want: 10, ok: true},
		{name: "int", input: int(11), want: 11, ok: true},
		{name: "uint8", input: uint8(12), want: 12, ok: true},
		{name: "float64", input: float64(13.9), want: 13, ok: true},
		{name: "numeric string", input: "14", want: 14, ok: true},
		{name: "string", input: "bad", want: 0, ok: false},
		{name: "bool", input: true, want: 0, ok: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := toInt64(tc.input)
			if ok != tc.ok {
				t.Fatalf("ok want %v got %v", tc.ok, ok)
			}
			if got != tc.want {
				t.Fatalf("value want %d got %d", tc.want, got)
			}
		})
	}
}
