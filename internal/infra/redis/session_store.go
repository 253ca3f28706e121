package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"quiz-portal/internal/domain"
)

// SessionStore keeps login sessions in Redis so they survive restarts and are
// shared by every instance. Keys expire together with the session.
type SessionStore struct {
	client *redis.Client
	clock  func() time.Time
}

func NewSessionStore(client *redis.Client) *SessionStore {
	return &SessionStore{client: client, clock: time.Now}
}

func (s *SessionStore) Save(ctx context.Context, session domain.Session) error {
	ttl := session.ExpiresAt.Sub(s.clock())
	if ttl <= 0 {
		return nil
	}
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	if err := s.client.Set(ctx, s.key(session.ID), payload, ttl).Err(); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (s *SessionStore) Get(ctx context.Context, id string) (domain.Session, error) {
	raw, err := s.client.Get(ctx, s.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Session{}, domain.ErrSessionNotFound
	}
	if err != nil {
		return domain.Session{}, fmt.Errorf("load session: %w", err)
	}
	var session domain.Session
	if err := json.Unmarshal(raw, &session); err != nil {
		return domain.Session{}, fmt.Errorf("unmarshal session: %w", err)
	}
	return session, nil
}

func (s *SessionStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, s.key(id)).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (s *SessionStore) key(id string) string {
	return "quiz:session:" + id
}
