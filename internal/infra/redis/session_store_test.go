package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"quiz-portal/internal/domain"
)

func TestSessionStoreSetsAndClearsKeys(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewSessionStore(client)
	ctx := context.Background()

	session := domain.Session{ID: "abc", UserID: 3, ExpiresAt: time.Now().Add(time.Hour)}
	if err := store.Save(ctx, session); err != nil {
		t.Fatalf("save: %v", err)
	}
	if !mr.Exists("quiz:session:abc") {
		t.Fatalf("expected redis key to be set")
	}
	if ttl := mr.TTL("quiz:session:abc"); ttl <= 0 || ttl > time.Hour {
		t.Fatalf("expected ttl bounded by session expiry, got %v", ttl)
	}

	got, err := store.Get(ctx, "abc")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.UserID != 3 {
		t.Fatalf("expected user 3, got %d", got.UserID)
	}

	if err := store.Delete(ctx, "abc"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if mr.Exists("quiz:session:abc") {
		t.Fatalf("expected redis key to be removed")
	}
	if _, err := store.Get(ctx, "abc"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected session not found, got %v", err)
	}
}

func TestSessionStoreExpiresWithSession(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	store := NewSessionStore(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	ctx := context.Background()

	_ = store.Save(ctx, domain.Session{ID: "short", UserID: 1, ExpiresAt: time.Now().Add(time.Minute)})
	mr.FastForward(2 * time.Minute)

	if _, err := store.Get(ctx, "short"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected expired session, got %v", err)
	}
}
