// Package workspace bundles the per-client state of the service: one session,
// one notification queue, one media workflow and one overlay.
package workspace

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/gaitlab/gait-service/internal/apperr"
	"github.com/gaitlab/gait-service/internal/events"
	"github.com/gaitlab/gait-service/internal/notify"
	"github.com/gaitlab/gait-service/internal/overlay"
	"github.com/gaitlab/gait-service/internal/session"
	"github.com/gaitlab/gait-service/internal/storage"
	"github.com/gaitlab/gait-service/internal/types"
	"github.com/gaitlab/gait-service/internal/workflow"
)

// Deps are the shared collaborators every workspace is built from.
type Deps struct {
	Auth *session.Authenticator
	// Storage and Objects may be nil when the gateway is not configured.
	Storage         storage.Storage
	Objects         workflow.ObjectStore
	Publisher       events.Publisher
	Workflow        workflow.Options
	NotificationTTL time.Duration
	Warnings        []string
}

type Workspace struct {
	ID            string
	Session       *session.Session
	Notifications *notify.Queue
	Workflow      *workflow.Workflow
	Overlay       *overlay.State

	warnings []string
	lastSeen atomic.Int64
}

// Snapshot is everything a client needs to render its view.
type Snapshot struct {
	ID            string               `json:"id"`
	Session       session.Snapshot     `json:"session"`
	Notifications []types.Notification `json:"notifications"`
	Videos        []types.MediaRecord  `json:"videos"`
	Upload        workflow.Status      `json:"upload"`
	Overlay       overlay.Snapshot     `json:"overlay"`
	Warnings      []string             `json:"warnings"`
}

func newWorkspace(id string, deps Deps, now time.Time) *Workspace {
	queue := notify.NewQueue(deps.NotificationTTL)
	ov := overlay.New()
	ws := &Workspace{
		ID:            id,
		Session:       session.New(deps.Auth, queue),
		Notifications: queue,
		Workflow:      workflow.New(deps.Storage, deps.Objects, queue, ov, deps.Workflow),
		Overlay:       ov,
		warnings:      deps.Warnings,
	}
	ws.touch(now)

	if pub := deps.Publisher; pub != nil {
		queue.OnChange(func(list []types.Notification) {
			pub.PublishNotifications(id, list)
		})
		ws.Workflow.SetHooks(workflow.Hooks{
			Videos: func(videos []types.MediaRecord) {
				pub.PublishVideos(id, videos)
			},
			Status: func(s workflow.Status) {
				pub.PublishUploadStatus(id, types.UploadStatusEvent{Uploading: s.Uploading, Status: s.Text})
			},
		})
	}
	return ws
}

func (ws *Workspace) touch(now time.Time) {
	ws.lastSeen.Store(now.UnixNano())
}

func (ws *Workspace) idleSince(now time.Time) time.Duration {
	return now.Sub(time.Unix(0, ws.lastSeen.Load()))
}

// Submit runs a sign-in or registration. A successful sign-in starts from an
// empty list and loads the records of the new identity.
func (ws *Workspace) Submit(ctx context.Context, req session.Request) error {
	if err := ws.Session.Submit(ctx, req); err != nil {
		return err
	}
	id, ok := ws.Session.Identity()
	if !ok {
		return nil
	}
	ws.Workflow.Reset()
	ws.Overlay.CloseVideo()
	ws.Overlay.CancelDelete()
	if err := ws.Workflow.Refresh(ctx, id); err != nil {
		slog.Warn("initial refresh failed", slog.String("workspace_id", ws.ID), slog.String("error", err.Error()))
	}
	return nil
}

// Logout drops the identity and everything it could see.
func (ws *Workspace) Logout() {
	ws.Session.Logout()
	ws.Workflow.Reset()
	ws.Overlay.CloseVideo()
	ws.Overlay.CancelDelete()
}

func (ws *Workspace) identity() (types.Identity, error) {
	id, ok := ws.Session.Identity()
	if !ok {
		return types.Identity{}, apperr.New(apperr.ErrUnauthenticated, "Please sign in first.")
	}
	return id, nil
}

// Refresh reloads and returns the visible list.
func (ws *Workspace) Refresh(ctx context.Context) ([]types.MediaRecord, error) {
	id, err := ws.identity()
	if err != nil {
		return nil, err
	}
	err = ws.Workflow.Refresh(ctx, id)
	return ws.Workflow.Videos(), err
}

func (ws *Workspace) Upload(ctx context.Context, files []workflow.File) (workflow.BatchResult, error) {
	id, err := ws.identity()
	if err != nil {
		return workflow.BatchResult{}, err
	}
	return ws.Workflow.Upload(ctx, id, files)
}

// OpenVideo shows the player for a visible record.
func (ws *Workspace) OpenVideo(recordID int64) (string, error) {
	rec, err := ws.visible(recordID)
	if err != nil {
		return "", err
	}
	url := rec.URL()
	if url == "" {
		return "", apperr.New(apperr.ErrValidation, "This video has no playable address.")
	}
	ws.Overlay.OpenVideo(url)
	return url, nil
}

func (ws *Workspace) CloseVideo() {
	ws.Overlay.CloseVideo()
}

// RequestDelete asks for confirmation before removing a visible record.
func (ws *Workspace) RequestDelete(recordID int64) (types.MediaRecord, error) {
	rec, err := ws.visible(recordID)
	if err != nil {
		return types.MediaRecord{}, err
	}
	ws.Overlay.RequestDelete(rec)
	return rec, nil
}

func (ws *Workspace) CancelDelete() {
	ws.Overlay.CancelDelete()
}

// ConfirmDelete removes the record awaiting confirmation. Without one it does
// nothing.
func (ws *Workspace) ConfirmDelete(ctx context.Context) error {
	id, err := ws.identity()
	if err != nil {
		return err
	}
	pending, ok := ws.Overlay.PendingDelete()
	if !ok {
		return nil
	}
	return ws.Workflow.Remove(ctx, id, pending.ID)
}

func (ws *Workspace) visible(recordID int64) (types.MediaRecord, error) {
	if _, err := ws.identity(); err != nil {
		return types.MediaRecord{}, err
	}
	rec, ok := ws.Workflow.Find(recordID)
	if !ok {
		return types.MediaRecord{}, apperr.New(apperr.ErrNotFound, "Video not found.")
	}
	return rec, nil
}

func (ws *Workspace) Snapshot() Snapshot {
	warnings := ws.warnings
	if warnings == nil {
		warnings = []string{}
	}
	return Snapshot{
		ID:            ws.ID,
		Session:       ws.Session.Snapshot(),
		Notifications: ws.Notifications.List(),
		Videos:        ws.Workflow.Videos(),
		Upload:        ws.Workflow.Status(),
		Overlay:       ws.Overlay.Snapshot(),
		Warnings:      warnings,
	}
}

func (ws *Workspace) close() {
	ws.Notifications.Close()
}
