package workspace

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultIdleTimeout is how long an untouched workspace survives.
const DefaultIdleTimeout = 2 * time.Hour

// Registry holds the live workspaces of the process.
type Registry struct {
	deps Deps
	idle time.Duration
	now  func() time.Time

	mu      sync.RWMutex
	items   map[string]*Workspace
	onEvict func(id string)
}

func NewRegistry(deps Deps, idle time.Duration) *Registry {
	if idle <= 0 {
		idle = DefaultIdleTimeout
	}
	return &Registry{
		deps:  deps,
		idle:  idle,
		now:   time.Now,
		items: make(map[string]*Workspace),
	}
}

// OnEvict registers fn to run after a workspace is closed or expires.
func (r *Registry) OnEvict(fn func(id string)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onEvict = fn
}

// Open creates a workspace with a fresh random id.
func (r *Registry) Open() *Workspace {
	ws := newWorkspace(uuid.NewString(), r.deps, r.now())

	r.mu.Lock()
	r.items[ws.ID] = ws
	r.mu.Unlock()

	slog.Info("workspace opened", slog.String("workspace_id", ws.ID))
	return ws
}

// Get returns the workspace and marks it as used.
func (r *Registry) Get(id string) (*Workspace, bool) {
	r.mu.RLock()
	ws, ok := r.items[id]
	r.mu.RUnlock()
	if ok {
		ws.touch(r.now())
	}
	return ws, ok
}

func (r *Registry) Close(id string) bool {
	r.mu.Lock()
	ws, ok := r.items[id]
	delete(r.items, id)
	evict := r.onEvict
	r.mu.Unlock()
	if !ok {
		return false
	}

	ws.close()
	if evict != nil {
		evict(id)
	}
	slog.Info("workspace closed", slog.String("workspace_id", id))
	return true
}

// Sweep closes every workspace idle for longer than the timeout and returns
// how many were closed.
func (r *Registry) Sweep() int {
	now := r.now()

	r.mu.RLock()
	var expired []string
	for id, ws := range r.items {
		if ws.idleSince(now) > r.idle {
			expired = append(expired, id)
		}
	}
	r.mu.RUnlock()

	closed := 0
	for _, id := range expired {
		if r.Close(id) {
			closed++
		}
	}
	return closed
}

// Run sweeps on every tick until ctx is done, then closes what is left.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.closeAll()
			return
		case <-ticker.C:
			if n := r.Sweep(); n > 0 {
				slog.Info("expired idle workspaces", slog.Int("count", n))
			}
		}
	}
}

func (r *Registry) closeAll() {
	r.mu.RLock()
	ids := make([]string, 0, len(r.items))
	for id := range r.items {
		ids = append(ids, id)
	}
	r.mu.RUnlock()

	for _, id := range ids {
		r.Close(id)
	}
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items)
}
