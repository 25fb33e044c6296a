// Package cache holds the Redis-backed session registry. A JWT is only
// accepted while its session entry exists, which is what makes logout and
// account removal take effect before the token expires.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// Open connects a Redis client and verifies the connection.
func Open(ctx context.Context, addr, password string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           0,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 5,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect redis at %s: %w", addr, err)
	}
	return client, nil
}

// Sessions tracks live login sessions keyed by token hash. The token itself
// is never stored.
type Sessions struct {
	client *redis.Client
}

func NewSessions(client *redis.Client) *Sessions {
	return &Sessions{client: client}
}

type sessionRecord struct {
	AccountID uuid.UUID `json:"account_id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

func sessionKey(token string) string {
	hash := sha256.Sum256([]byte(token))
	return "token:session:" + hex.EncodeToString(hash[:])
}

// Create registers a session for the token with the given lifetime.
func (s *Sessions) Create(ctx context.Context, token string, accountID uuid.UUID, ttl time.Duration) error {
	now := time.Now()
	data, err := json.Marshal(sessionRecord{
		AccountID: accountID,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	})
	if err != nil {
		return err
	}
	return s.client.Set(ctx, sessionKey(token), data, ttl).Err()
}

// Active reports whether the token still has a live session.
func (s *Sessions) Active(ctx context.Context, token string) (bool, error) {
	err := s.client.Get(ctx, sessionKey(token)).Err()
	switch {
	case err == redis.Nil:
		return false, nil
	case err != nil:
		return false, err
	default:
		return true, nil
	}
}

// Revoke drops the session for one token.
func (s *Sessions) Revoke(ctx context.Context, token string) error {
	return s.client.Del(ctx, sessionKey(token)).Err()
}

// RevokeAll drops every session belonging to the account. Used when the
// account is deleted or its password is reset.
func (s *Sessions) RevokeAll(ctx context.Context, accountID uuid.UUID) error {
	var cursor uint64
	for {
		keys, next, err := s.client.Scan(ctx, cursor, "token:session:*", 100).Result()
		if err != nil {
			return err
		}
		for _, key := range keys {
			data, err := s.client.Get(ctx, key).Result()
			if err != nil {
				continue
			}
			var rec sessionRecord
			if json.Unmarshal([]byte(data), &rec) == nil && rec.AccountID == accountID {
				s.client.Del(ctx, key)
			}
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}
