package media

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/gaitlab/gait-service/internal/http/middleware"
	"github.com/gaitlab/gait-service/internal/session"
	"github.com/gaitlab/gait-service/internal/storage/memory"
	"github.com/gaitlab/gait-service/internal/types"
	"github.com/gaitlab/gait-service/internal/workflow"
	"github.com/gaitlab/gait-service/internal/workspace"
)

type memObjects struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func (m *memObjects) Upload(_ context.Context, key string, r io.Reader, _ int64, _ string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = data
	return nil
}

func (m *memObjects) PublicURL(key string) string {
	return "http://cdn.test/" + key
}

func (m *memObjects) Remove(_ context.Context, key string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.objects[key]; !ok {
		return 0, nil
	}
	delete(m.objects, key)
	return 1, nil
}

type envelope struct {
	Status string          `json:"status"`
	Error  string          `json:"error"`
	Data   json.RawMessage `json:"data"`
}

func signedIn(t *testing.T, maxFileSize int64) (*workspace.Workspace, *memObjects) {
	t.Helper()
	store := memory.New()
	objects := &memObjects{objects: make(map[string][]byte)}
	registry := workspace.NewRegistry(workspace.Deps{
		Auth:            session.NewAuthenticator(store, nil),
		Storage:         store,
		Objects:         objects,
		Workflow:        workflow.Options{MaxFileSize: maxFileSize},
		NotificationTTL: time.Minute,
	}, time.Hour)

	ws := registry.Open()
	t.Cleanup(func() { registry.Close(ws.ID) })

	ctx := context.Background()
	for _, mode := range []types.AuthMode{types.AuthModeRegister, types.AuthModeLogin} {
		if err := ws.Submit(ctx, session.Request{Mode: mode, Username: "alice", Role: types.RolePatient}); err != nil {
			t.Fatalf("%s: %v", mode, err)
		}
	}
	return ws, objects
}

func multipartBody(t *testing.T, files map[string][]byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	for name, data := range files {
		part, err := mw.CreateFormFile("files", name)
		if err != nil {
			t.Fatalf("create part: %v", err)
		}
		part.Write(data)
	}
	mw.Close()
	return body, mw.FormDataContentType()
}

func serve(ws *workspace.Workspace, h http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	req = req.WithContext(middleware.WithWorkspace(req.Context(), ws))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, data interface{}) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
	if data != nil {
		if err := json.Unmarshal(env.Data, data); err != nil {
			t.Fatalf("decode data: %v", err)
		}
	}
	return env
}

func TestUploadListAndDelete(t *testing.T) {
	ws, objects := signedIn(t, 1024)
	h := NewMediaHandlers(1 << 20)

	body, contentType := multipartBody(t, map[string][]byte{"walk.mp4": []byte("frames")})
	req := httptest.NewRequest(http.MethodPost, "/videos", body)
	req.Header.Set("Content-Type", contentType)
	rec := serve(ws, h.Upload(), req)
	if rec.Code != http.StatusOK {
		t.Fatalf("upload: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var result workflow.BatchResult
	decode(t, rec, &result)
	if len(result.Uploaded) != 1 || len(result.Failed) != 0 {
		t.Fatalf("unexpected batch result %+v", result)
	}

	rec = serve(ws, h.List(), httptest.NewRequest(http.MethodGet, "/videos", nil))
	var videos []types.MediaRecord
	decode(t, rec, &videos)
	if len(videos) != 1 || videos[0].OwnerUsername != "alice" {
		t.Fatalf("unexpected list %+v", videos)
	}
	id := strconv.FormatInt(videos[0].ID, 10)

	req = httptest.NewRequest(http.MethodPost, "/videos/"+id+"/open", nil)
	req.SetPathValue("id", id)
	rec = serve(ws, h.OpenVideo(), req)
	var opened OpenVideoResponse
	decode(t, rec, &opened)
	if rec.Code != http.StatusOK || opened.URL != videos[0].URL() {
		t.Fatalf("open: %d %+v", rec.Code, opened)
	}

	req = httptest.NewRequest(http.MethodPost, "/videos/"+id+"/delete-request", nil)
	req.SetPathValue("id", id)
	if rec = serve(ws, h.RequestDelete(), req); rec.Code != http.StatusOK {
		t.Fatalf("delete-request: expected 200, got %d", rec.Code)
	}

	rec = serve(ws, h.ConfirmDelete(), httptest.NewRequest(http.MethodPost, "/overlay/delete/confirm", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("confirm: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(objects.objects) != 0 || len(ws.Workflow.Videos()) != 0 {
		t.Fatal("video should be gone from storage and the list")
	}
	if _, open := ws.Overlay.ActiveVideo(); open {
		t.Fatal("player should be closed")
	}
}

func TestUploadRejectsOversizedBatch(t *testing.T) {
	ws, objects := signedIn(t, 8)
	h := NewMediaHandlers(1 << 20)

	body, contentType := multipartBody(t, map[string][]byte{
		"small.mp4": []byte("ok"),
		"large.mp4": bytes.Repeat([]byte("x"), 9),
	})
	req := httptest.NewRequest(http.MethodPost, "/videos", body)
	req.Header.Set("Content-Type", contentType)
	rec := serve(ws, h.Upload(), req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if len(objects.objects) != 0 || len(ws.Workflow.Videos()) != 0 {
		t.Fatal("nothing of the batch may be stored")
	}
	found := false
	for _, n := range ws.Notifications.List() {
		if n.Kind == types.NotificationError && n.Message == `"large.mp4" is too large!` {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a too-large notification, got %+v", ws.Notifications.List())
	}
}

func TestUploadRequestTooLarge(t *testing.T) {
	ws, _ := signedIn(t, 1<<20)
	h := NewMediaHandlers(300)

	body, contentType := multipartBody(t, map[string][]byte{"walk.mp4": bytes.Repeat([]byte("x"), 2048)})
	req := httptest.NewRequest(http.MethodPost, "/videos", body)
	req.Header.Set("Content-Type", contentType)

	if rec := serve(ws, h.Upload(), req); rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d", rec.Code)
	}
}

func TestUploadWithoutFiles(t *testing.T) {
	ws, _ := signedIn(t, 1024)
	body, contentType := multipartBody(t, nil)
	req := httptest.NewRequest(http.MethodPost, "/videos", body)
	req.Header.Set("Content-Type", contentType)

	if rec := serve(ws, NewMediaHandlers(1<<20).Upload(), req); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestOpenUnknownVideo(t *testing.T) {
	ws, _ := signedIn(t, 1024)
	h := NewMediaHandlers(1 << 20)

	req := httptest.NewRequest(http.MethodPost, "/videos/99/open", nil)
	req.SetPathValue("id", "99")
	if rec := serve(ws, h.OpenVideo(), req); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/videos/abc/open", nil)
	req.SetPathValue("id", "abc")
	if rec := serve(ws, h.OpenVideo(), req); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
