// Package overlay tracks the modal state of a workspace: the open video
// player and the record awaiting delete confirmation. The two are independent.
package overlay

import (
	"sync"

	"github.com/gaitlab/gait-service/internal/types"
)

type State struct {
	mu            sync.Mutex
	activeURL     string
	pendingDelete *types.MediaRecord
}

// Snapshot is the externally visible overlay state.
type Snapshot struct {
	ActiveVideo   *string            `json:"active_video"`
	PendingDelete *types.MediaRecord `json:"pending_delete"`
}

func New() *State {
	return &State{}
}

func (s *State) OpenVideo(url string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activeURL = url
}

func (s *State) CloseVideo() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activeURL = ""
}

// CloseVideoIf closes the player only when it shows url.
func (s *State) CloseVideoIf(url string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if url == "" || s.activeURL != url {
		return false
	}
	s.activeURL = ""
	return true
}

func (s *State) ActiveVideo() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeURL, s.activeURL != ""
}

func (s *State) RequestDelete(rec types.MediaRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pendingDelete = &rec
}

func (s *State) CancelDelete() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pendingDelete = nil
}

func (s *State) PendingDelete() (types.MediaRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pendingDelete == nil {
		return types.MediaRecord{}, false
	}
	return *s.pendingDelete, true
}

func (s *State) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	var snap Snapshot
	if s.activeURL != "" {
		url := s.activeURL
		snap.ActiveVideo = &url
	}
	if s.pendingDelete != nil {
		rec := *s.pendingDelete
		snap.PendingDelete = &rec
	}
	return snap
}
