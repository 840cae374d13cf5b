package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
)

// setupTestRedis creates an in-memory Redis server for testing
func setupTestRedis(t *testing.T) *redis.Client {
	mr := miniredis.RunT(t)

	redisClient := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
		DB:   0,
	})
	t.Cleanup(func() { redisClient.Close() })

	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		t.Fatalf("Failed to connect to test Redis: %v", err)
	}
	return redisClient
}

func TestTokenBucket_Allow(t *testing.T) {
	bucket := NewTokenBucket(setupTestRedis(t), 5, 5)

	ctx := context.Background()
	subject := "workspace-1"
	action := "upload"

	for i := 0; i < 5; i++ {
		allowed, remaining, err := bucket.Allow(ctx, subject, action)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if !allowed {
			t.Fatalf("Expected request %d to be allowed", i+1)
		}
		if remaining != int64(4-i) {
			t.Fatalf("Expected %d remaining, got %d", 4-i, remaining)
		}
	}

	allowed, _, err := bucket.Allow(ctx, subject, action)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if allowed {
		t.Fatal("Expected request to be denied after limit reached")
	}

	// Other subjects and actions have their own buckets
	if allowed, _, _ := bucket.Allow(ctx, "workspace-2", action); !allowed {
		t.Fatal("Expected another workspace to be allowed")
	}
	if allowed, _, _ := bucket.Allow(ctx, subject, "auth"); !allowed {
		t.Fatal("Expected another action to be allowed")
	}
}

func TestTokenBucket_Refill(t *testing.T) {
	bucket := NewTokenBucket(setupTestRedis(t), 2, 2)
	now := time.Unix(1_700_000_000, 0)
	bucket.now = func() time.Time { return now }

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		bucket.Allow(ctx, "ws", "auth")
	}
	if allowed, _, _ := bucket.Allow(ctx, "ws", "auth"); allowed {
		t.Fatal("Expected bucket to be empty")
	}

	now = now.Add(time.Minute)
	if allowed, _, _ := bucket.Allow(ctx, "ws", "auth"); !allowed {
		t.Fatal("Expected bucket to refill after a window")
	}
}

func TestTokenBucket_GetRemaining(t *testing.T) {
	bucket := NewTokenBucket(setupTestRedis(t), 10, 10)

	ctx := context.Background()
	subject := "workspace-2"
	action := "auth"

	remaining, err := bucket.GetRemaining(ctx, subject, action)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if remaining != 10 {
		t.Fatalf("Expected 10 remaining tokens, got %d", remaining)
	}

	for i := 0; i < 3; i++ {
		bucket.Allow(ctx, subject, action)
	}

	remaining, err = bucket.GetRemaining(ctx, subject, action)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if remaining != 7 {
		t.Fatalf("Expected 7 remaining tokens, got %d", remaining)
	}
}

func TestTokenBucket_Reset(t *testing.T) {
	bucket := NewTokenBucket(setupTestRedis(t), 5, 5)

	ctx := context.Background()
	subject := "workspace-3"
	action := "upload"

	for i := 0; i < 5; i++ {
		bucket.Allow(ctx, subject, action)
	}

	if err := bucket.Reset(ctx, subject, action); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	remaining, err := bucket.GetRemaining(ctx, subject, action)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if remaining != 5 {
		t.Fatalf("Expected 5 remaining tokens after reset, got %d", remaining)
	}
}
