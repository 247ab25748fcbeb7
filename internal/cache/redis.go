package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultAnswerTTL bounds how long a cached answer stays fresh. The delivery
// log only changes on ingest, so an hour is conservative.
const DefaultAnswerTTL = time.Hour

// RedisCache handles caching of computed answers
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache creates a new Redis cache connection
func NewRedisCache(redisURL string) (*RedisCache, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opt)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &RedisCache{
		client: client,
	}, nil
}

// Close closes the Redis connection
func (rc *RedisCache) Close() error {
	return rc.client.Close()
}

// HealthCheck pings Redis to verify connection
func (rc *RedisCache) HealthCheck(ctx context.Context) error {
	return rc.client.Ping(ctx).Err()
}

// AnswerKey derives a stable cache key from the raw question text.
// Case and surrounding whitespace do not change the answer.
func AnswerKey(question string) string {
	norm := strings.ToLower(strings.TrimSpace(question))
	sum := sha256.Sum256([]byte(norm))
	return "answer:" + hex.EncodeToString(sum[:16])
}

// GetAnswer returns the cached response body for a question, or "" on miss
func (rc *RedisCache) GetAnswer(ctx context.Context, question string) (string, error) {
	val, err := rc.client.Get(ctx, AnswerKey(question)).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return val, nil
}

// SetAnswer stores a serialized response body for a question
func (rc *RedisCache) SetAnswer(ctx context.Context, question, body string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = DefaultAnswerTTL
	}
	return rc.client.Set(ctx, AnswerKey(question), body, ttl).Err()
}

// Invalidate drops all cached answers. Called after ingest rewrites matches.
func (rc *RedisCache) Invalidate(ctx context.Context) error {
	iter := rc.client.Scan(ctx, 0, "answer:*", 200).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return rc.client.Del(ctx, keys...).Err()
}
