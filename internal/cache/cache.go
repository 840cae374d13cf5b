package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/gaitlab/gait-service/internal/storage"
	"github.com/gaitlab/gait-service/internal/types"
	"github.com/go-redis/redis/v8"
)

// Cache key patterns
const (
	KeyPrefix       = "gait:videos:"
	AllVideosKey    = KeyPrefix + "all"
	OwnerVideosKey  = KeyPrefix + "owner:%s" // gait:videos:owner:username
	invalidateBatch = 100
)

// DefaultListTTL bounds how stale a cached list may get
const DefaultListTTL = 30 * time.Second

// CacheService wraps storage with Redis caching of the video lists
type CacheService struct {
	storage storage.Storage
	redis   redis.UniversalClient
	ttl     time.Duration
}

// NewCacheService creates a new cache service
func NewCacheService(s storage.Storage, redisClient redis.UniversalClient, ttl time.Duration) *CacheService {
	if ttl <= 0 {
		ttl = DefaultListTTL
	}
	return &CacheService{
		storage: s,
		redis:   redisClient,
		ttl:     ttl,
	}
}

func listKey(owner string) string {
	if owner == "" {
		return AllVideosKey
	}
	return fmt.Sprintf(OwnerVideosKey, owner)
}

// ListVideos returns a cached list or fetches from the database
func (c *CacheService) ListVideos(ctx context.Context, owner string) ([]types.MediaRecord, error) {
	key := listKey(owner)

	// Try cache first
	cached, err := c.redis.Get(ctx, key).Bytes()
	if err == nil {
		var videos []types.MediaRecord
		if err := json.Unmarshal(cached, &videos); err == nil {
			return videos, nil
		}
	} else if err != redis.Nil {
		slog.Warn("video list cache read failed", slog.String("key", key), slog.String("error", err.Error()))
	}

	// Cache miss - fetch from database
	videos, err := c.storage.ListVideos(ctx, owner)
	if err != nil {
		return nil, err
	}

	data, _ := json.Marshal(videos)
	if err := c.redis.Set(ctx, key, data, c.ttl).Err(); err != nil {
		slog.Warn("video list cache write failed", slog.String("key", key), slog.String("error", err.Error()))
	}

	return videos, nil
}

// InvalidateVideoLists clears every cached video list
func (c *CacheService) InvalidateVideoLists(ctx context.Context) (int64, error) {
	var deleted int64
	iter := c.redis.Scan(ctx, 0, KeyPrefix+"*", invalidateBatch).Iterator()

	batch := make([]string, 0, invalidateBatch)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		n, err := c.redis.Del(ctx, batch...).Result()
		deleted += n
		batch = batch[:0]
		return err
	}

	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == invalidateBatch {
			if err := flush(); err != nil {
				return deleted, err
			}
		}
	}
	if err := iter.Err(); err != nil {
		return deleted, err
	}
	return deleted, flush()
}

func (c *CacheService) invalidate(ctx context.Context) {
	if _, err := c.InvalidateVideoLists(ctx); err != nil {
		slog.Error("video list cache invalidation failed", slog.String("error", err.Error()))
	}
}

// Methods to pass through to storage (implement storage.Storage interface)
func (c *CacheService) CreateVideo(ctx context.Context, rec types.MediaRecord) (types.MediaRecord, error) {
	created, err := c.storage.CreateVideo(ctx, rec)
	if err != nil {
		return created, err
	}
	c.invalidate(ctx)
	return created, nil
}

func (c *CacheService) DeleteVideo(ctx context.Context, id int64) error {
	if err := c.storage.DeleteVideo(ctx, id); err != nil {
		return err
	}
	c.invalidate(ctx)
	return nil
}

func (c *CacheService) GetAccount(ctx context.Context, username string) (types.Account, error) {
	return c.storage.GetAccount(ctx, username)
}

func (c *CacheService) GetAccountWithRole(ctx context.Context, username string, role types.Role) (types.Account, error) {
	return c.storage.GetAccountWithRole(ctx, username, role)
}

func (c *CacheService) CreateAccount(ctx context.Context, username string, role types.Role) (types.Account, error) {
	return c.storage.CreateAccount(ctx, username, role)
}

func (c *CacheService) VideoPathExists(ctx context.Context, path string) (bool, error) {
	return c.storage.VideoPathExists(ctx, path)
}
