package redis

import (
	"context"
	"sync"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"quiz-portal/internal/domain"
	"quiz-portal/internal/infra/memory"
)

func TestQuizCacheCachesInRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := newClient(mr)

	loader := &countingLoader{
		QuizLoader: memory.NewStaticQuizLoader(map[int64]domain.Quiz{
			1: sampleQuiz(),
		}),
	}
	cache := NewQuizCache(client, loader, time.Minute)

	quiz, err := cache.GetQuiz(context.Background(), 1)
	if err != nil {
		t.Fatalf("get quiz: %v", err)
	}
	if quiz.Questions[0].Options[0].Text != "Paris" {
		t.Fatalf("unexpected quiz content: %+v", quiz)
	}
	if loader.count() != 1 {
		t.Fatalf("expected loader called once, got %d", loader.count())
	}
	if !mr.Exists("quiz:1:content") {
		t.Fatalf("expected quiz content cached in redis")
	}

	// Second call should hit cache, loader not incremented.
	cached, err := cache.GetQuiz(context.Background(), 1)
	if err != nil {
		t.Fatalf("get cached quiz: %v", err)
	}
	if loader.count() != 1 {
		t.Fatalf("expected cache hit, loader calls=%d", loader.count())
	}
	if !cached.Questions[0].Options[0].IsCorrect {
		t.Fatalf("expected correctness flag to survive the round trip")
	}
}

func TestQuizCacheInvalidate(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	loader := &countingLoader{QuizLoader: memory.NewStaticQuizLoader(map[int64]domain.Quiz{1: sampleQuiz()})}
	cache := NewQuizCache(newClient(mr), loader, time.Minute)
	ctx := context.Background()

	_, _ = cache.GetQuiz(ctx, 1)
	if err := cache.Invalidate(ctx, 1); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	if mr.Exists("quiz:1:content") {
		t.Fatalf("expected cached content removed")
	}
	_, _ = cache.GetQuiz(ctx, 1)
	if loader.count() != 2 {
		t.Fatalf("expected reload after invalidate, loader calls=%d", loader.count())
	}
}

func TestQuizCacheSkipsWriteAfterConcurrentInvalidate(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	loader := &gatedLoader{
		QuizLoader: memory.NewStaticQuizLoader(map[int64]domain.Quiz{1: sampleQuiz()}),
		entered:    make(chan struct{}),
		release:    make(chan struct{}),
	}
	cache := NewQuizCache(newClient(mr), loader, 10*time.Minute)
	ctx := context.Background()

	done := make(chan error, 1)
	go func() {
		_, err := cache.GetQuiz(ctx, 1)
		done <- err
	}()

	select {
	case <-loader.entered:
	case <-time.After(2 * time.Second):
		t.Fatalf("loader was not called")
	}
	// An edit commits and invalidates while the old copy is still loading.
	if err := cache.Invalidate(ctx, 1); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	close(loader.release)

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("get quiz: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("get quiz did not return")
	}
	if mr.Exists("quiz:1:content") {
		t.Fatalf("copy loaded before invalidate was written back, ttl=%v", mr.TTL("quiz:1:content"))
	}

	// The next load runs under the new generation and is cached.
	if _, err := cache.GetQuiz(ctx, 1); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if !mr.Exists("quiz:1:content") {
		t.Fatalf("expected reload to be cached")
	}
}

// gatedLoader blocks its first load until release is closed.
type gatedLoader struct {
	memory.QuizLoader
	once    sync.Once
	entered chan struct{}
	release chan struct{}
}

func (l *gatedLoader) LoadQuiz(ctx context.Context, quizID int64) (domain.Quiz, error) {
	quiz, err := l.QuizLoader.LoadQuiz(ctx, quizID)
	l.once.Do(func() {
		close(l.entered)
		<-l.release
	})
	return quiz, err
}

type countingLoader struct {
	memory.QuizLoader
	mu    sync.Mutex
	calls int
}

func (l *countingLoader) LoadQuiz(ctx context.Context, quizID int64) (domain.Quiz, error) {
	l.mu.Lock()
	l.calls++
	l.mu.Unlock()
	return l.QuizLoader.LoadQuiz(ctx, quizID)
}

func (l *countingLoader) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.calls
}

func sampleQuiz() domain.Quiz {
	return domain.Quiz{
		ID:    1,
		Title: "Capitals",
		Questions: []domain.Question{
			{
				ID:   10,
				Text: "Capital of France?",
				Options: []domain.Option{
					{ID: 100, Text: "Paris", IsCorrect: true},
					{ID: 101, Text: "Lyon"},
				},
			},
		},
	}
}

func newClient(mr *miniredis.Miniredis) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
}
