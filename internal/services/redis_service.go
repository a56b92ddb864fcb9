package services

import (
	"context"
	"fmt"
	"time"

	"classroom-service/internal/database"
	"log/slog"
)

type RedisService struct {
	client *database.RedisClient
}

func NewRedisService(client *database.RedisClient) *RedisService {
	return &RedisService{
		client: client,
	}
}

// CheckRateLimit counts one hit against the key and reports whether the
// caller is still under the limit for the window. Fails open: if Redis
// is unreachable the request is allowed rather than the API going dark.
func (r *RedisService) CheckRateLimit(ctx context.Context, key string, limit int64, window time.Duration) bool {
	redisKey := fmt.Sprintf("ratelimit:%s", key)

	count, err := r.client.GetClient().Incr(ctx, redisKey).Result()
	if err != nil {
		slog.Error("rate limit check failed", "key", key, "error", err)
		return true
	}
	if count == 1 {
		if err := r.client.GetClient().Expire(ctx, redisKey, window).Err(); err != nil {
			slog.Error("rate limit expire failed", "key", key, "error", err)
		}
	}

	return count <= limit
}

// MarkCodeSent records that a verification code was just emailed to the
// address. Returns false when one was already sent inside the interval.
func (r *RedisService) MarkCodeSent(ctx context.Context, email string, interval time.Duration) bool {
	key := fmt.Sprintf("verify:sent:%s", email)

	ok, err := r.client.GetClient().SetNX(ctx, key, time.Now().Unix(), interval).Result()
	if err != nil {
		slog.Error("resend throttle check failed", "email", email, "error", err)
		return true
	}
	return ok
}

// ClearCodeSent lifts the resend throttle, used once a registration
// completes so a fresh signup for the same address is not blocked.
func (r *RedisService) ClearCodeSent(ctx context.Context, email string) {
	key := fmt.Sprintf("verify:sent:%s", email)
	if err := r.client.GetClient().Del(ctx, key).Err(); err != nil {
		slog.Error("failed to clear resend throttle", "email", email, "error", err)
	}
}
