// Package sweeper removes stored objects that no video record points to.
// They are left behind when an upload stores the object but the record insert
// fails.
package sweeper

import (
	"context"
	"log/slog"
	"time"

	"github.com/gaitlab/gait-service/internal/services/media"
)

// Objects is the object store as seen by the sweeper.
type Objects interface {
	List(ctx context.Context, prefix string) ([]media.Object, error)
	Remove(ctx context.Context, key string) (int, error)
}

// Records reports whether a video record references a storage path.
type Records interface {
	VideoPathExists(ctx context.Context, path string) (bool, error)
}

// Result summarises one sweep.
type Result struct {
	Scanned int
	Removed int
	Failed  int
}

type Worker struct {
	objects  Objects
	records  Records
	grace    time.Duration
	interval time.Duration
	logger   *slog.Logger
	now      func() time.Time
}

// NewWorker returns a sweeper. Objects younger than grace are never touched
// so that an upload whose record is still being written survives.
func NewWorker(objects Objects, records Records, grace, interval time.Duration, logger *slog.Logger) *Worker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Worker{
		objects:  objects,
		records:  records,
		grace:    grace,
		interval: interval,
		logger:   logger,
		now:      time.Now,
	}
}

func (w *Worker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Info("Orphan sweeper started",
		"interval", w.interval.String(),
		"grace_period", w.grace.String())

	// Run once immediately on startup
	w.run(ctx)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Orphan sweeper shutting down")
			return
		case <-ticker.C:
			w.run(ctx)
		}
	}
}

func (w *Worker) run(ctx context.Context) {
	startTime := time.Now()

	res, err := w.Sweep(ctx)
	if err != nil {
		w.logger.Error("Orphan sweep failed",
			"error", err.Error(),
			"duration_ms", time.Since(startTime).Milliseconds())
		return
	}

	duration := time.Since(startTime)
	w.logger.Info("Completed orphan sweep",
		"objects_scanned", res.Scanned,
		"objects_removed", res.Removed,
		"objects_failed", res.Failed,
		"duration_ms", duration.Milliseconds())
}

// Sweep makes one pass over the bucket. A failure on a single object is
// logged and counted; only a failed listing aborts the pass.
func (w *Worker) Sweep(ctx context.Context) (Result, error) {
	var res Result

	objects, err := w.objects.List(ctx, "")
	if err != nil {
		return res, err
	}

	cutoff := w.now().Add(-w.grace)
	for _, obj := range objects {
		if ctx.Err() != nil {
			return res, ctx.Err()
		}
		res.Scanned++
		if obj.LastModified.After(cutoff) {
			continue
		}

		referenced, err := w.records.VideoPathExists(ctx, obj.Key)
		if err != nil {
			w.logger.Warn("Failed to check object reference", "key", obj.Key, "error", err.Error())
			res.Failed++
			continue
		}
		if referenced {
			continue
		}

		if _, err := w.objects.Remove(ctx, obj.Key); err != nil {
			w.logger.Warn("Failed to remove orphaned object", "key", obj.Key, "error", err.Error())
			res.Failed++
			continue
		}
		w.logger.Info("Removed orphaned object", "key", obj.Key, "size", obj.Size)
		res.Removed++
	}

	return res, nil
}
