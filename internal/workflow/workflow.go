// Package workflow owns the media records visible to one session and the
// upload and delete operations that change them.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"sync"
	"time"

	"github.com/gaitlab/gait-service/internal/apperr"
	"github.com/gaitlab/gait-service/internal/overlay"
	"github.com/gaitlab/gait-service/internal/storage"
	"github.com/gaitlab/gait-service/internal/types"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultMaxFileSize        int64 = 100 * 1024 * 1024
	DefaultContentType              = "video/mp4"
	uploadStartingStatus            = "Starting upload..."
)

var unsafeFileNameChars = regexp.MustCompile(`[^a-zA-Z0-9.-]`)

// ObjectStore is the binary side of the backend gateway.
type ObjectStore interface {
	Upload(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	PublicURL(key string) string
	// Remove reports how many objects were actually deleted.
	Remove(ctx context.Context, key string) (int, error)
}

// Notifier receives user-facing messages.
type Notifier interface {
	Push(message string, kind types.NotificationKind) uint64
}

// File is one file of an upload batch.
type File struct {
	Name        string
	Size        int64
	ContentType string
	Open        func() (io.ReadCloser, error)
}

type Options struct {
	MaxFileSize        int64
	DefaultContentType string
	// Workers above one uploads files of a batch in parallel.
	Workers int
	Now     func() time.Time
}

// Status is the upload batch state.
type Status struct {
	Uploading bool   `json:"uploading"`
	Text      string `json:"status"`
}

// BatchResult summarises one upload batch.
type BatchResult struct {
	Uploaded []types.MediaRecord `json:"uploaded"`
	Failed   []string            `json:"failed"`
}

// Hooks are called after the visible list or the batch status changes.
type Hooks struct {
	Videos func([]types.MediaRecord)
	Status func(Status)
}

type Workflow struct {
	storage  storage.Storage
	objects  ObjectStore
	notifier Notifier
	overlay  *overlay.State
	opts     Options

	mu        sync.Mutex
	videos    []types.MediaRecord
	status    Status
	lastStamp int64
	hooks     Hooks
}

// New returns a workflow. A nil storage or object store disables the
// operations that need it with ErrConfigMissing.
func New(s storage.Storage, objects ObjectStore, notifier Notifier, ov *overlay.State, opts Options) *Workflow {
	if opts.MaxFileSize <= 0 {
		opts.MaxFileSize = DefaultMaxFileSize
	}
	if opts.DefaultContentType == "" {
		opts.DefaultContentType = DefaultContentType
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Workflow{
		storage:  s,
		objects:  objects,
		notifier: notifier,
		overlay:  ov,
		opts:     opts,
		videos:   []types.MediaRecord{},
	}
}

func (w *Workflow) SetHooks(h Hooks) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.hooks = h
}

// Videos returns the visible list, newest first.
func (w *Workflow) Videos() []types.MediaRecord {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]types.MediaRecord(nil), w.videos...)
}

func (w *Workflow) Status() Status {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.status
}

// Reset drops the visible list, so that a following identity never sees the
// previous one's records.
func (w *Workflow) Reset() {
	w.setVideos([]types.MediaRecord{})
}

// Refresh replaces the visible list with the records id may see. On failure
// the previous list is kept.
func (w *Workflow) Refresh(ctx context.Context, id types.Identity) error {
	if w.storage == nil {
		return apperr.New(apperr.ErrConfigMissing, "Gateway connection is missing.")
	}

	owner := id.Username
	if id.Role == types.RoleDoctor {
		owner = ""
	}

	records, err := w.storage.ListVideos(ctx, owner)
	if err != nil {
		slog.Error("failed to refresh videos",
			slog.String("username", id.Username),
			slog.String("error", err.Error()))
		return apperr.Wrap(apperr.ErrBackend, "Videos could not be loaded.", err)
	}

	visible := make([]types.MediaRecord, 0, len(records))
	for _, rec := range records {
		if id.CanSee(rec) {
			visible = append(visible, rec)
		}
	}
	w.setVideos(visible)
	return nil
}

// Upload stores every file of a batch for id. A batch holding any file above
// the size limit is rejected before anything is uploaded. Otherwise each file
// succeeds or fails on its own, with one notification per file, and the list
// is refreshed once the batch is done.
func (w *Workflow) Upload(ctx context.Context, id types.Identity, files []File) (BatchResult, error) {
	var result BatchResult

	if w.storage == nil || w.objects == nil {
		err := apperr.New(apperr.ErrConfigMissing, "Uploads are disabled: storage is not configured.")
		w.notifier.Push(err.Error(), types.NotificationError)
		return result, err
	}

	var oversized []string
	for _, f := range files {
		if f.Size > w.opts.MaxFileSize {
			oversized = append(oversized, f.Name)
			w.notifier.Push(fmt.Sprintf("%q is too large!", f.Name), types.NotificationError)
		}
	}
	if len(oversized) > 0 {
		return result, apperr.New(apperr.ErrValidation, fmt.Sprintf("%d file(s) exceed the size limit.", len(oversized)))
	}
	if len(files) == 0 {
		return result, nil
	}

	w.setStatus(Status{Uploading: true, Text: uploadStartingStatus})
	slog.Info("upload batch started", slog.String("username", id.Username), slog.Int("files", len(files)))

	var mu sync.Mutex
	record := func(rec types.MediaRecord, name string, err error) {
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			result.Failed = append(result.Failed, name)
			return
		}
		result.Uploaded = append(result.Uploaded, rec)
	}

	if w.opts.Workers == 1 {
		for _, f := range files {
			rec, err := w.uploadOne(ctx, id, f)
			record(rec, f.Name, err)
		}
	} else {
		var g errgroup.Group
		g.SetLimit(w.opts.Workers)
		for _, f := range files {
			g.Go(func() error {
				rec, err := w.uploadOne(ctx, id, f)
				record(rec, f.Name, err)
				return nil
			})
		}
		_ = g.Wait()
	}

	slog.Info("upload batch finished",
		slog.String("username", id.Username),
		slog.Int("uploaded", len(result.Uploaded)),
		slog.Int("failed", len(result.Failed)))

	_ = w.Refresh(ctx, id)
	w.setStatus(Status{})
	return result, nil
}

func (w *Workflow) uploadOne(ctx context.Context, id types.Identity, f File) (types.MediaRecord, error) {
	rec, err := w.store(ctx, id, f)
	if err != nil {
		slog.Error("file upload failed",
			slog.String("username", id.Username),
			slog.String("file", f.Name),
			slog.String("error", err.Error()))
		w.notifier.Push(fmt.Sprintf("Error: %s could not be uploaded.", f.Name), types.NotificationError)
		return types.MediaRecord{}, err
	}
	w.notifier.Push(fmt.Sprintf("%s uploaded successfully.", f.Name), types.NotificationSuccess)
	return rec, nil
}

func (w *Workflow) store(ctx context.Context, id types.Identity, f File) (types.MediaRecord, error) {
	key := BuildStoragePath(id.Username, w.nextStamp(), f.Name)

	body, err := f.Open()
	if err != nil {
		return types.MediaRecord{}, fmt.Errorf("open %s: %w", f.Name, err)
	}
	defer body.Close()

	contentType := f.ContentType
	if contentType == "" {
		contentType = w.opts.DefaultContentType
	}

	if err := w.objects.Upload(ctx, key, body, f.Size, contentType); err != nil {
		return types.MediaRecord{}, err
	}

	url := w.objects.PublicURL(key)
	return w.storage.CreateVideo(ctx, types.MediaRecord{
		OwnerUsername: id.Username,
		FileName:      f.Name,
		StoragePath:   key,
		PublicURL:     &url,
	})
}

// Remove deletes a visible record. The stored object goes first; the row is
// only deleted once the object is confirmed gone, so a failure leaves an
// orphaned row rather than an orphaned object. The pending delete target is
// cleared whatever the outcome.
func (w *Workflow) Remove(ctx context.Context, id types.Identity, recordID int64) error {
	defer w.overlay.CancelDelete()

	err := w.remove(ctx, id, recordID)
	if err != nil {
		slog.Error("video delete failed",
			slog.String("username", id.Username),
			slog.Int64("video_id", recordID),
			slog.String("error", err.Error()))
		w.notifier.Push(apperr.Message(err, "Delete failed."), types.NotificationError)
		return err
	}
	w.notifier.Push("Video deleted successfully.", types.NotificationSuccess)
	return nil
}

func (w *Workflow) remove(ctx context.Context, id types.Identity, recordID int64) error {
	if w.storage == nil || w.objects == nil {
		return apperr.New(apperr.ErrConfigMissing, "Deletes are disabled: storage is not configured.")
	}

	rec, ok := w.find(recordID)
	if !ok {
		if err := w.Refresh(ctx, id); err != nil {
			return err
		}
		rec, ok = w.find(recordID)
	}
	if !ok || !id.CanSee(rec) {
		return apperr.New(apperr.ErrNotFound, "Video not found.")
	}

	removed, err := w.objects.Remove(ctx, rec.StoragePath)
	if err != nil {
		return apperr.Wrap(apperr.ErrBackend, "Delete failed.", err)
	}
	if removed == 0 {
		return apperr.New(apperr.ErrBackend, "Delete failed: the stored video could not be removed.")
	}

	if err := w.storage.DeleteVideo(ctx, rec.ID); err != nil && !errors.Is(err, storage.ErrNotFound) {
		return apperr.Wrap(apperr.ErrBackend, "Delete failed: the video record could not be removed.", err)
	}

	w.dropVideo(rec.ID)

	w.overlay.CloseVideoIf(rec.URL())
	slog.Info("video deleted", slog.String("username", id.Username), slog.Int64("video_id", rec.ID))
	return nil
}

// Find returns a record of the visible list.
func (w *Workflow) Find(recordID int64) (types.MediaRecord, bool) {
	return w.find(recordID)
}

func (w *Workflow) find(recordID int64) (types.MediaRecord, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, v := range w.videos {
		if v.ID == recordID {
			return v, true
		}
	}
	return types.MediaRecord{}, false
}

// nextStamp returns the current epoch milliseconds, bumped when needed so
// that no two files of this workflow share a timestamp.
func (w *Workflow) nextStamp() int64 {
	stamp := w.opts.Now().UnixMilli()
	w.mu.Lock()
	defer w.mu.Unlock()
	if stamp <= w.lastStamp {
		stamp = w.lastStamp + 1
	}
	w.lastStamp = stamp
	return stamp
}

func (w *Workflow) setVideos(videos []types.MediaRecord) {
	w.mu.Lock()
	w.videos = videos
	fn := w.hooks.Videos
	snapshot := append([]types.MediaRecord(nil), videos...)
	w.mu.Unlock()
	if fn != nil {
		fn(snapshot)
	}
}

// dropVideo filters recordID out of the current list in one critical section
// so a concurrent Refresh is never overwritten by a stale copy.
func (w *Workflow) dropVideo(recordID int64) {
	w.mu.Lock()
	kept := make([]types.MediaRecord, 0, len(w.videos))
	for _, v := range w.videos {
		if v.ID != recordID {
			kept = append(kept, v)
		}
	}
	w.videos = kept
	fn := w.hooks.Videos
	snapshot := append([]types.MediaRecord(nil), kept...)
	w.mu.Unlock()
	if fn != nil {
		fn(snapshot)
	}
}

func (w *Workflow) setStatus(s Status) {
	w.mu.Lock()
	w.status = s
	fn := w.hooks.Status
	w.mu.Unlock()
	if fn != nil {
		fn(s)
	}
}

// SanitizeFileName replaces every character outside [A-Za-z0-9.-] with '_'.
func SanitizeFileName(name string) string {
	return unsafeFileNameChars.ReplaceAllString(name, "_")
}

// BuildStoragePath returns the object key {username}/{epoch-ms}-{sanitized-name}.
func BuildStoragePath(username string, epochMillis int64, fileName string) string {
	return fmt.Sprintf("%s/%d-%s", username, epochMillis, SanitizeFileName(fileName))
}
