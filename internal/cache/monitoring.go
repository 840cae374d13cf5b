package cache

import (
	"net/http"

	"github.com/gaitlab/gait-service/internal/utils/response"
	"github.com/go-redis/redis/v8"
)

// CacheStats represents cache performance statistics
type CacheStats struct {
	RedisConnected bool     `json:"redis_connected"`
	CacheKeys      []string `json:"cache_keys_sample"`
	VideoKeyCount  int      `json:"video_keys"`
	KeyCount       int64    `json:"total_keys"`
}

// GetCacheStats returns cache statistics
// @Summary Cache statistics
// @Tags cache
// @Produce json
// @Success 200 {object} response.Response "Cache stats"
// @Security BearerAuth
// @Router /cache/stats [get]
func GetCacheStats(redisClient redis.UniversalClient) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		stats := CacheStats{
			RedisConnected: true,
			CacheKeys:      []string{},
		}

		// Test Redis connection
		if err := redisClient.Ping(ctx).Err(); err != nil {
			stats.RedisConnected = false
			response.WriteJSON(w, http.StatusOK, response.RequestOK("Cache stats retrieved", stats))
			return
		}

		iter := redisClient.Scan(ctx, 0, KeyPrefix+"*", invalidateBatch).Iterator()
		for iter.Next(ctx) {
			stats.VideoKeyCount++
			if len(stats.CacheKeys) < 10 {
				stats.CacheKeys = append(stats.CacheKeys, iter.Val())
			}
		}

		// Get total key count
		if dbSize := redisClient.DBSize(ctx); dbSize.Err() == nil {
			stats.KeyCount = dbSize.Val()
		}

		response.WriteJSON(w, http.StatusOK, response.RequestOK("Cache stats retrieved", stats))
	}
}

// ClearCache drops every cached video list
// @Summary Clear the video list cache
// @Tags cache
// @Produce json
// @Success 200 {object} response.Response "Cache cleared"
// @Failure 500 {object} response.Response "Internal server error"
// @Security BearerAuth
// @Router /cache [delete]
func ClearCache(c *CacheService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		deleted, err := c.InvalidateVideoLists(r.Context())
		if err != nil {
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(err))
			return
		}

		result := map[string]interface{}{
			"pattern":      KeyPrefix + "*",
			"deleted_keys": deleted,
		}
		response.WriteJSON(w, http.StatusOK, response.RequestOK("Cache cleared successfully", result))
	}
}
