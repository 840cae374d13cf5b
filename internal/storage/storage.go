package storage

import (
	"context"
	"errors"

	"github.com/gaitlab/gait-service/internal/types"
)

var (
	// ErrNotFound is returned when a lookup or delete matches no row.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when an insert violates a uniqueness constraint.
	ErrDuplicate = errors.New("record already exists")
)

// Storage is the record side of the backend gateway: the users and videos tables.
type Storage interface {
	GetAccount(ctx context.Context, username string) (types.Account, error)
	GetAccountWithRole(ctx context.Context, username string, role types.Role) (types.Account, error)
	CreateAccount(ctx context.Context, username string, role types.Role) (types.Account, error)

	// ListVideos returns records newest first. An empty owner lists every record.
	ListVideos(ctx context.Context, owner string) ([]types.MediaRecord, error)
	CreateVideo(ctx context.Context, rec types.MediaRecord) (types.MediaRecord, error)
	DeleteVideo(ctx context.Context, id int64) error
	VideoPathExists(ctx context.Context, path string) (bool, error)
}
