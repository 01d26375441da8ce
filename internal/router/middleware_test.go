package router

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestRequestIDMiddlewareGeneratesID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, getRequestID(c))
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	r.ServeHTTP(w, req)

	if w.Body.String() == "" {
		t.Fatalf("expected generated request id")
	}
	if got := w.Header().Get(requestIDHeader); got != w.Body.String() {
		t.Fatalf("response header mismatch: %s vs %s", got, w.Body.String())
	}
}

func TestRequestIDMiddlewareKeepsIncomingID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, getRequestID(c))
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(requestIDHeader, "req-abc-123")
	r.ServeHTTP(w, req)

	if w.Body.String() != "req-abc-123" {
		t.Fatalf("incoming request id not kept: %s", w.Body.String())
	}
}

func TestActorMiddlewareParsesHeaders(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestIDMiddleware(), ActorMiddleware())
	r.GET("/whoami", func(c *gin.Context) {
		actor := GetActor(c)
		c.JSON(http.StatusOK, gin.H{
			"id":   actor.ID,
			"name": actor.Name,
			"role": actor.Role,
		})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("X-Actor-ID", "42")
	req.Header.Set("X-Actor-Name", "ops-lee")
	req.Header.Set("X-Actor-Role", "ops")
	r.ServeHTTP(w, req)

	body := w.Body.String()
	for _, want := range []string{`"id":42`, `"name":"ops-lee"`, `"role":"ops"`} {
		if !strings.Contains(body, want) {
			t.Fatalf("response missing %s: %s", want, body)
		}
	}
}

func TestActorMiddlewareIgnoresBadID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(ActorMiddleware())
	r.GET("/whoami", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"id": GetActor(c).ID})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("X-Actor-ID", "not-a-number")
	r.ServeHTTP(w, req)

	if !strings.Contains(w.Body.String(), `"id":0`) {
		t.Fatalf("bad actor id should fall back to zero: %s", w.Body.String())
	}
}

func TestResolveAllowedOrigin(t *testing.T) {
	cases := []struct {
		name        string
		origin      string
		allowed     []string
		credentials bool
		want        string
	}{
		{name: "wildcard", origin: "https://a.example", allowed: []string{"*"}, want: "*"},
		{name: "wildcard with credentials echoes origin", origin: "https://a.example", allowed: []string{"*"}, credentials: true, want: "https://a.example"},
		{name: "exact match", origin: "https://a.example", allowed: []string{"https://a.example"}, want: "https://a.example"},
		{name: "case insensitive", origin: "https://A.Example", allowed: []string{"https://a.example"}, want: "https://A.Example"},
		{name: "no match", origin: "https://evil.example", allowed: []string{"https://a.example"}, want: ""},
		{name: "empty origin non wildcard", origin: "", allowed: []string{"https://a.example"}, want: ""},
	}
	for _, c := range cases {
		if got := resolveAllowedOrigin(c.origin, c.allowed, c.credentials); got != c.want {
			t.Fatalf("%s: resolveAllowedOrigin = %q, want %q", c.name, got, c.want)
		}
	}
}
