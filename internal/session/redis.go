package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "linkhoard:session:"

// Redis stores sessions in Redis so logins survive process restarts.
// Expiry rides on the key TTL.
type Redis struct {
	client *redis.Client
	now    func() time.Time
}

// NewRedis connects to addr and verifies the connection before returning.
func NewRedis(ctx context.Context, addr, password string, db int) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connecting to redis at %s: %w", addr, err)
	}
	return &Redis{client: client, now: time.Now}, nil
}

func (r *Redis) Create(ctx context.Context, ttl time.Duration) (*Session, error) {
	s, err := newSession(ttl, r.now())
	if err != nil {
		return nil, err
	}
	payload, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encoding session: %w", err)
	}
	if err := r.client.Set(ctx, redisKeyPrefix+s.Token, payload, ttl).Err(); err != nil {
		return nil, fmt.Errorf("storing session: %w", err)
	}
	return s, nil
}

func (r *Redis) Get(ctx context.Context, token string) (*Session, error) {
	payload, err := r.client.Get(ctx, redisKeyPrefix+token).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fetching session: %w", err)
	}
	var s Session
	if err := json.Unmarshal(payload, &s); err != nil {
		return nil, fmt.Errorf("decoding session: %w", err)
	}
	return &s, nil
}

func (r *Redis) Delete(ctx context.Context, token string) error {
	if err := r.client.Del(ctx, redisKeyPrefix+token).Err(); err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}

// Close releases the underlying connection pool.
func (r *Redis) Close() error {
	return r.client.Close()
}
