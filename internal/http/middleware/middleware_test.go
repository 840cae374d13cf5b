package middleware

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gaitlab/gait-service/internal/utils/jwt"
	"github.com/gaitlab/gait-service/internal/workspace"
	"github.com/go-redis/redis/v8"
)

const secret = "test-secret"

func okHandler(w http.ResponseWriter, r *http.Request) {
	if _, ok := GetWorkspaceFromContext(r.Context()); !ok {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func bearer(t *testing.T, workspaceID string) string {
	t.Helper()
	token, err := jwt.CreateToken(workspaceID, secret, time.Hour)
	if err != nil {
		t.Fatalf("create token: %v", err)
	}
	return "Bearer " + token
}

func TestAuthMiddleware(t *testing.T) {
	registry := workspace.NewRegistry(workspace.Deps{}, time.Hour)
	ws := registry.Open()
	t.Cleanup(func() { registry.Close(ws.ID) })

	handler := AuthMiddleware(secret, registry)(http.HandlerFunc(okHandler))

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized},
		{"bad token", "Bearer nope", http.StatusUnauthorized},
		{"unknown workspace", bearer(t, "gone"), http.StatusUnauthorized},
		{"valid", bearer(t, ws.ID), http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/state", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			if rec.Code != tt.status {
				t.Fatalf("expected %d, got %d", tt.status, rec.Code)
			}
		})
	}
}

func TestRateLimitPerWorkspace(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	registry := workspace.NewRegistry(workspace.Deps{}, time.Hour)
	first, second := registry.Open(), registry.Open()
	t.Cleanup(func() {
		registry.Close(first.ID)
		registry.Close(second.ID)
	})

	limits := NewRateLimitConfig(client)
	handler := AuthMiddleware(secret, registry)(limits.RateLimitedHandler(ActionUpload, okHandler))

	call := func(id string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/videos", nil)
		req.Header.Set("Authorization", bearer(t, id))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	for i := 0; i < 10; i++ {
		if rec := call(first.ID); rec.Code != http.StatusNoContent {
			t.Fatalf("request %d: expected 204, got %d", i+1, rec.Code)
		}
	}

	rec := call(first.ID)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
	if rec.Header().Get("X-RateLimit-Limit") != "10" || rec.Header().Get("X-RateLimit-Remaining") != "0" {
		t.Fatalf("unexpected headers %v", rec.Header())
	}

	if rec := call(second.ID); rec.Code != http.StatusNoContent {
		t.Fatalf("other workspace should not be limited, got %d", rec.Code)
	}
}

func TestRateLimitDisabledWithoutRedis(t *testing.T) {
	ws := workspace.NewRegistry(workspace.Deps{}, time.Hour).Open()
	handler := NewRateLimitConfig(nil).RateLimitedHandler(ActionAuth, okHandler)

	for i := 0; i < 50; i++ {
		req := httptest.NewRequest(http.MethodPost, "/auth", nil)
		req = req.WithContext(WithWorkspace(req.Context(), ws))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusNoContent {
			t.Fatalf("request %d: expected 204, got %d", i+1, rec.Code)
		}
	}
}

func TestRateLimitPerClientAddress(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	limits := NewRateLimitConfig(client)
	created := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})

	tests := []struct {
		action string
		path   string
		limit  int
	}{
		{ActionOpenSession, "/session", 10},
		{ActionCreateDoctor, "/functions/create-doctor", 5},
	}

	for _, tt := range tests {
		t.Run(tt.action, func(t *testing.T) {
			handler := limits.RateLimitedHandler(tt.action, created)
			call := func(addr string) *httptest.ResponseRecorder {
				req := httptest.NewRequest(http.MethodPost, tt.path, nil)
				req.RemoteAddr = addr
				rec := httptest.NewRecorder()
				handler.ServeHTTP(rec, req)
				return rec
			}

			// a new source port is still the same client
			for i := 0; i < tt.limit; i++ {
				if rec := call("10.0.0.1:" + strconv.Itoa(40000+i)); rec.Code != http.StatusCreated {
					t.Fatalf("request %d: expected 201, got %d", i+1, rec.Code)
				}
			}
			if rec := call("10.0.0.1:50000"); rec.Code != http.StatusTooManyRequests {
				t.Fatalf("expected 429, got %d", rec.Code)
			}
			if rec := call("10.0.0.2:40000"); rec.Code != http.StatusCreated {
				t.Fatalf("other client should not be limited, got %d", rec.Code)
			}
		})
	}
}

func TestClientAddress(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/session", nil)
	req.RemoteAddr = "[::1]:8080"
	if got := ClientAddress(req); got != "::1" {
		t.Fatalf("expected ::1, got %q", got)
	}
	req.RemoteAddr = "unix"
	if got := ClientAddress(req); got != "unix" {
		t.Fatalf("expected raw address, got %q", got)
	}
}
