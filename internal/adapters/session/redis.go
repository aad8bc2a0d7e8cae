package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "lawoffice:session:"

// RedisBackend keeps sessions in Redis so they survive restarts and are
// shared between instances. Keys expire with the session.
type RedisBackend struct {
	client *redis.Client
	now    func() time.Time
}

// NewRedisBackend connects to the Redis server at rawURL.
// PRE: rawURL is a redis:// or rediss:// URL
// POST: returns a backend whose server answered PING
func NewRedisBackend(ctx context.Context, rawURL string) (*RedisBackend, error) {
	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return &RedisBackend{client: client, now: time.Now}, nil
}

// Put stores rec with the time it has left to live.
// PRE: token is non-empty
// POST: the key expires when the session does
func (b *RedisBackend) Put(ctx context.Context, token string, rec Record) error {
	remaining := TTL - b.now().Sub(rec.CreatedAt)
	if remaining <= 0 {
		return b.Delete(ctx, token)
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := b.client.Set(ctx, redisKeyPrefix+token, data, remaining).Err(); err != nil {
		return fmt.Errorf("redis set session: %w", err)
	}
	return nil
}

// Get retrieves the record for token.
// POST: Returns ErrNoSession for unknown or expired tokens
func (b *RedisBackend) Get(ctx context.Context, token string) (Record, error) {
	data, err := b.client.Get(ctx, redisKeyPrefix+token).Bytes()
	if errors.Is(err, redis.Nil) {
		return Record{}, ErrNoSession
	}
	if err != nil {
		return Record{}, fmt.Errorf("redis get session: %w", err)
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return Record{}, fmt.Errorf("decode session: %w", err)
	}
	if rec.Expired(b.now()) {
		return Record{}, ErrNoSession
	}
	return rec, nil
}

// Delete removes a session by token.
func (b *RedisBackend) Delete(ctx context.Context, token string) error {
	if err := b.client.Del(ctx, redisKeyPrefix+token).Err(); err != nil {
		return fmt.Errorf("redis delete session: %w", err)
	}
	return nil
}

// Close releases the Redis connection pool.
func (b *RedisBackend) Close() error {
	return b.client.Close()
}
