// Package memory is an in-process Storage used when exercising the workflow
// without a database.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/gaitlab/gait-service/internal/storage"
	"github.com/gaitlab/gait-service/internal/types"
)

type Store struct {
	mu       sync.Mutex
	accounts map[string]types.Account
	videos   map[int64]types.MediaRecord
	nextID   int64
	now      func() time.Time
}

var _ storage.Storage = (*Store)(nil)

func New() *Store {
	return &Store{
		accounts: make(map[string]types.Account),
		videos:   make(map[int64]types.MediaRecord),
		now:      time.Now,
	}
}

func (s *Store) GetAccount(_ context.Context, username string) (types.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.accounts[username]
	if !ok {
		return types.Account{}, storage.ErrNotFound
	}
	return acc, nil
}

func (s *Store) GetAccountWithRole(ctx context.Context, username string, role types.Role) (types.Account, error) {
	acc, err := s.GetAccount(ctx, username)
	if err != nil {
		return types.Account{}, err
	}
	if acc.Role != role {
		return types.Account{}, storage.ErrNotFound
	}
	return acc, nil
}

func (s *Store) CreateAccount(_ context.Context, username string, role types.Role) (types.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[username]; ok {
		return types.Account{}, storage.ErrDuplicate
	}
	s.nextID++
	acc := types.Account{ID: s.nextID, CreatedAt: s.now(), Username: username, Role: role}
	s.accounts[username] = acc
	return acc, nil
}

func (s *Store) ListVideos(_ context.Context, owner string) ([]types.MediaRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := []types.MediaRecord{}
	for _, rec := range s.videos {
		if owner == "" || rec.OwnerUsername == owner {
			result = append(result, rec)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID > result[j].ID
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (s *Store) CreateVideo(_ context.Context, rec types.MediaRecord) (types.MediaRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	rec.ID = s.nextID
	rec.CreatedAt = s.now()
	s.videos[rec.ID] = rec
	return rec, nil
}

func (s *Store) DeleteVideo(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.videos[id]; !ok {
		return storage.ErrNotFound
	}
	delete(s.videos, id)
	return nil
}

func (s *Store) VideoPathExists(_ context.Context, path string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range s.videos {
		if rec.StoragePath == path {
			return true, nil
		}
	}
	return false, nil
}
