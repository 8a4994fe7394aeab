package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/rjtc/pms-sync/internal/core/domain"
)

// SessionStore persists session snapshots as JSON values in Redis.
// Key format: <namespace>:session:<user_id>
//
// Snapshots carry identity and role across process restarts so gating logic
// works without a remote round trip. They have no TTL; logout removes them.
type SessionStore struct {
	client    *redis.Client
	namespace string
}

func NewSessionStore(client *redis.Client, namespace string) *SessionStore {
	if namespace == "" {
		namespace = "pms"
	}
	return &SessionStore{client: client, namespace: namespace}
}

func (s *SessionStore) Save(ctx context.Context, sess *domain.Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	if err := s.client.Set(ctx, s.key(sess.UserID), data, 0).Err(); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Load returns (nil, nil) when no snapshot exists for userID.
func (s *SessionStore) Load(ctx context.Context, userID string) (*domain.Session, error) {
	data, err := s.client.Get(ctx, s.key(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("load session: %w", err)
	}

	var sess domain.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &sess, nil
}

func (s *SessionStore) Clear(ctx context.Context, userID string) error {
	if err := s.client.Del(ctx, s.key(userID)).Err(); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

func (s *SessionStore) key(userID string) string {
	return fmt.Sprintf("%s:session:%s", s.namespace, userID)
}
