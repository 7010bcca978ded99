package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Store is the contract for session persistence.
type Store interface {
	// Load returns the session for an id. Returns nil, nil when the id is
	// unknown or expired.
	Load(ctx context.Context, id uuid.UUID) (*Session, error)

	// Save writes the session and refreshes its TTL.
	Save(ctx context.Context, s *Session) error

	// Renew gives the session a fresh id, deleting the record stored
	// under the old one. Called on every privilege change so a token
	// fixed before login never identifies a logged-in session.
	Renew(ctx context.Context, s *Session) error

	// Delete removes the session record. No-op for unknown ids.
	Delete(ctx context.Context, id uuid.UUID) error
}

type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

var _ Store = (*RedisStore)(nil)

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func sessionKey(id uuid.UUID) string {
	return "session:" + id.String()
}

func (s *RedisStore) Load(ctx context.Context, id uuid.UUID) (*Session, error) {
	vals, err := s.client.HGetAll(ctx, sessionKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	// HGetAll returns an empty map, not a nil error, for missing keys.
	if len(vals) == 0 {
		return nil, nil
	}

	sess := &Session{ID: id}
	if raw, ok := vals["user_id"]; ok && raw != "" {
		userID, err := uuid.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("parse session user_id: %w", err)
		}
		sess.UserID = userID
	}
	if raw, ok := vals["flash"]; ok && raw != "" {
		if err := json.Unmarshal([]byte(raw), &sess.Flash); err != nil {
			return nil, fmt.Errorf("decode session flash: %w", err)
		}
	}
	return sess, nil
}

func (s *RedisStore) Save(ctx context.Context, sess *Session) error {
	userID := ""
	if sess.UserID != uuid.Nil {
		userID = sess.UserID.String()
	}
	flash := ""
	if len(sess.Flash) > 0 {
		encoded, err := json.Marshal(sess.Flash)
		if err != nil {
			return fmt.Errorf("encode session flash: %w", err)
		}
		flash = string(encoded)
	}

	key := sessionKey(sess.ID)
	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, key, "user_id", userID, "flash", flash)
	pipe.Expire(ctx, key, s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (s *RedisStore) Renew(ctx context.Context, sess *Session) error {
	oldKey := sessionKey(sess.ID)
	sess.ID = uuid.New()
	if err := s.Save(ctx, sess); err != nil {
		return err
	}
	if err := s.client.Del(ctx, oldKey).Err(); err != nil {
		return fmt.Errorf("drop old session: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.client.Del(ctx, sessionKey(id)).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
