package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// TTL is how long a console session stays valid.
const TTL = 24 * time.Hour

const keyPrefix = "session:"

var ErrNotFound = errors.New("session not found")

// Session is the payload stored per console login.
type Session struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	Name   string `json:"name"`
}

// Getter is the read-side contract used by the console middleware.
type Getter interface {
	Get(ctx context.Context, id string) (*Session, error)
}

// Store keeps console sessions in redis. The session id carried in the
// cookie is an opaque random value; the session itself is trusted once
// found (no cryptographic check on the value).
type Store struct {
	rdb *redis.Client
}

// New connects to redis and pings it.
func New(ctx context.Context, addr, password string, db int) (*Store, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	log.Printf("✓ Connected to Redis session store (%s)", addr)
	return &Store{rdb: rdb}, nil
}

// Close releases the redis client.
func (s *Store) Close() error {
	return s.rdb.Close()
}

// Create stores a new session and returns its id.
func (s *Store) Create(ctx context.Context, sess Session) (string, error) {
	id := uuid.New().String()
	payload, err := json.Marshal(sess)
	if err != nil {
		return "", fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := s.rdb.Set(ctx, keyPrefix+id, payload, TTL).Err(); err != nil {
		return "", fmt.Errorf("failed to store session: %w", err)
	}
	return id, nil
}

// Get looks a session up by id.
func (s *Store) Get(ctx context.Context, id string) (*Session, error) {
	payload, err := s.rdb.Get(ctx, keyPrefix+id).Result()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %w", err)
	}
	var sess Session
	if err := json.Unmarshal([]byte(payload), &sess); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &sess, nil
}

// Delete removes a session.
func (s *Store) Delete(ctx context.Context, id string) error {
	return s.rdb.Del(ctx, keyPrefix+id).Err()
}

var _ Getter = (*Store)(nil)
