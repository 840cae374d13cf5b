package notifications

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gaitlab/gait-service/internal/http/middleware"
	"github.com/gaitlab/gait-service/internal/types"
	"github.com/gaitlab/gait-service/internal/workspace"
)

type listBody struct {
	Status string               `json:"status"`
	Data   []types.Notification `json:"data"`
}

func serve(t *testing.T, h http.HandlerFunc, req *http.Request, ws *workspace.Workspace) (int, listBody) {
	t.Helper()
	if ws != nil {
		req = req.WithContext(middleware.WithWorkspace(req.Context(), ws))
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var body listBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return rec.Code, body
}

func TestListAndDismiss(t *testing.T) {
	registry := workspace.NewRegistry(workspace.Deps{NotificationTTL: time.Minute}, time.Hour)
	ws := registry.Open()
	defer registry.Close(ws.ID)

	first := ws.Notifications.Push("Uploaded a.mp4", types.NotificationSuccess)
	ws.Notifications.Push("Uploaded b.mp4", types.NotificationSuccess)

	code, body := serve(t, List(), httptest.NewRequest(http.MethodGet, "/notifications", nil), ws)
	if code != http.StatusOK || len(body.Data) != 2 {
		t.Fatalf("expected 2 notifications, got %d %+v", code, body)
	}

	mux := http.NewServeMux()
	mux.Handle("DELETE /notifications/{id}", Dismiss())
	req := httptest.NewRequest(http.MethodDelete, "/notifications/"+jsonID(first), nil)
	req = req.WithContext(middleware.WithWorkspace(req.Context(), ws))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := ws.Notifications.List(); len(got) != 1 || got[0].Message != "Uploaded b.mp4" {
		t.Fatalf("unexpected notifications after dismiss: %+v", got)
	}

	// dismissing again is a no-op
	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodDelete, "/notifications/"+jsonID(first), nil)
	mux.ServeHTTP(rec, req.WithContext(middleware.WithWorkspace(req.Context(), ws)))
	if rec.Code != http.StatusOK || len(ws.Notifications.List()) != 1 {
		t.Fatalf("repeat dismiss should be ignored, got %d", rec.Code)
	}
}

func TestDismissRejectsBadID(t *testing.T) {
	registry := workspace.NewRegistry(workspace.Deps{NotificationTTL: time.Minute}, time.Hour)
	ws := registry.Open()
	defer registry.Close(ws.ID)

	mux := http.NewServeMux()
	mux.Handle("DELETE /notifications/{id}", Dismiss())
	req := httptest.NewRequest(http.MethodDelete, "/notifications/abc", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req.WithContext(middleware.WithWorkspace(req.Context(), ws)))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestRequiresWorkspace(t *testing.T) {
	code, body := serve(t, List(), httptest.NewRequest(http.MethodGet, "/notifications", nil), nil)
	if code != http.StatusUnauthorized || body.Status != "error" {
		t.Fatalf("expected 401, got %d", code)
	}
}

func jsonID(id uint64) string {
	b, _ := json.Marshal(id)
	return string(b)
}
