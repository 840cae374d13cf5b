package users

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gaitlab/gait-service/internal/http/middleware"
	"github.com/gaitlab/gait-service/internal/services/registrar"
	"github.com/gaitlab/gait-service/internal/session"
	"github.com/gaitlab/gait-service/internal/storage/memory"
	"github.com/gaitlab/gait-service/internal/types"
	"github.com/gaitlab/gait-service/internal/workspace"
)

func newWorkspace(t *testing.T, store *memory.Store, reg *registrar.Local) *workspace.Workspace {
	t.Helper()
	registry := workspace.NewRegistry(workspace.Deps{
		Auth:            session.NewAuthenticator(store, reg),
		Storage:         store,
		NotificationTTL: time.Minute,
	}, time.Hour)
	ws := registry.Open()
	t.Cleanup(func() { registry.Close(ws.ID) })
	return ws
}

func post(ws *workspace.Workspace, h http.HandlerFunc, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	if ws != nil {
		req = req.WithContext(middleware.WithWorkspace(req.Context(), ws))
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestSubmitStatuses(t *testing.T) {
	store := memory.New()
	if _, err := store.CreateAccount(context.Background(), "alice", types.RolePatient); err != nil {
		t.Fatalf("seed: %v", err)
	}
	ws := newWorkspace(t, store, registrar.NewLocal(store, ""))

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"malformed", `{`, http.StatusBadRequest},
		{"bad role", `{"mode":"login","username":"alice","role":"nurse"}`, http.StatusBadRequest},
		{"short username", `{"mode":"login","username":"al","role":"patient"}`, http.StatusBadRequest},
		{"wrong role", `{"mode":"login","username":"alice","role":"doctor"}`, http.StatusNotFound},
		{"taken", `{"mode":"register","username":"alice","role":"patient"}`, http.StatusConflict},
		{"missing doctor key", `{"mode":"register","username":"drsmith","role":"doctor"}`, http.StatusBadRequest},
		{"bad doctor key", `{"mode":"register","username":"drsmith","role":"doctor","doctor_key":"guess"}`, http.StatusUnauthorized},
		{"login", `{"mode":"login","username":"alice","role":"patient"}`, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rec := post(ws, Submit(), tt.body); rec.Code != tt.status {
				t.Fatalf("expected %d, got %d: %s", tt.status, rec.Code, rec.Body.String())
			}
		})
	}

	if id, ok := ws.Session.Identity(); !ok || id.Username != "alice" {
		t.Fatalf("expected alice to be signed in, got %+v", id)
	}

	post(ws, Logout(), "")
	if _, ok := ws.Session.Identity(); ok {
		t.Fatal("logout should end the session")
	}
}

func TestSetMode(t *testing.T) {
	ws := newWorkspace(t, memory.New(), nil)

	if rec := post(ws, SetMode(), `{"mode":"register"}`); rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ws.Session.Snapshot().Mode != types.AuthModeRegister {
		t.Fatal("mode should be register")
	}
	if rec := post(ws, SetMode(), `{"mode":"sideways"}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestCreateDoctor(t *testing.T) {
	hash, err := registrar.HashSecret("clinic-key")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	store := memory.New()
	h := CreateDoctor(registrar.NewLocal(store, hash))

	if rec := post(nil, h, `{"username":"drsmith","secret":"wrong"}`); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if rec := post(nil, h, `{"username":"dr","secret":"clinic-key"}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if rec := post(nil, h, `{"username":" drsmith ","secret":"clinic-key"}`); rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if _, err := store.GetAccountWithRole(context.Background(), "drsmith", types.RoleDoctor); err != nil {
		t.Fatalf("doctor account should exist: %v", err)
	}
	if rec := post(nil, h, `{"username":"drsmith","secret":"clinic-key"}`); rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}
