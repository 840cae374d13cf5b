// Package notify holds the ordered list of ephemeral user-facing messages.
// Each entry removes itself after a fixed TTL unless dismissed first.
package notify

import (
	"sync"
	"time"

	"github.com/gaitlab/gait-service/internal/types"
)

// DefaultTTL is how long a notification stays visible.
const DefaultTTL = 4000 * time.Millisecond

type entry struct {
	types.Notification
	timer *time.Timer
}

type Queue struct {
	mu       sync.Mutex
	ttl      time.Duration
	lastID   uint64
	entries  []*entry
	onChange func([]types.Notification)
	closed   bool
}

// NewQueue returns an empty queue. A non-positive ttl means DefaultTTL.
func NewQueue(ttl time.Duration) *Queue {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Queue{ttl: ttl}
}

// OnChange registers fn to receive a snapshot after every push, expiry and
// dismissal. fn is called without the queue lock held.
func (q *Queue) OnChange(fn func([]types.Notification)) {
	q.mu.Lock()
	q.onChange = fn
	q.mu.Unlock()
}

// Push appends a notification and schedules its removal. The returned id is
// strictly greater than every id this queue handed out before.
func (q *Queue) Push(message string, kind types.NotificationKind) uint64 {
	if kind == "" {
		kind = types.NotificationInfo
	}

	q.mu.Lock()
	q.lastID++
	id := q.lastID
	if q.closed {
		q.mu.Unlock()
		return id
	}
	e := &entry{Notification: types.Notification{ID: id, Message: message, Kind: kind}}
	e.timer = time.AfterFunc(q.ttl, func() { q.Dismiss(id) })
	q.entries = append(q.entries, e)
	snapshot, fn := q.snapshotLocked(), q.onChange
	q.mu.Unlock()

	if fn != nil {
		fn(snapshot)
	}
	return id
}

// Dismiss removes the notification with id. Unknown ids are ignored.
func (q *Queue) Dismiss(id uint64) {
	q.mu.Lock()
	idx := -1
	for i, e := range q.entries {
		if e.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		q.mu.Unlock()
		return
	}
	q.entries[idx].timer.Stop()
	q.entries = append(q.entries[:idx], q.entries[idx+1:]...)
	snapshot, fn := q.snapshotLocked(), q.onChange
	q.mu.Unlock()

	if fn != nil {
		fn(snapshot)
	}
}

// List returns the current notifications in push order.
func (q *Queue) List() []types.Notification {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.snapshotLocked()
}

// Close stops every pending timer and drops all entries. Later pushes are discarded.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, e := range q.entries {
		e.timer.Stop()
	}
	q.entries = nil
	q.closed = true
}

func (q *Queue) snapshotLocked() []types.Notification {
	out := make([]types.Notification, len(q.entries))
	for i, e := range q.entries {
		out[i] = e.Notification
	}
	return out
}
