package memory

import (
	"context"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"quiz-portal/internal/domain"
)

// QuizLoader fetches quiz content from the backing store.
type QuizLoader interface {
	LoadQuiz(ctx context.Context, quizID int64) (domain.Quiz, error)
}

// QuizCache caches quizzes with TTL to avoid repeated DB hits.
type QuizCache struct {
	loader QuizLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand
	rndMu  sync.Mutex

	mu       sync.RWMutex
	cache    map[int64]cachedQuiz
	versions map[int64]uint64
}

type cachedQuiz struct {
	quiz      domain.Quiz
	expiresAt time.Time
}

func NewQuizCache(loader QuizLoader, ttl time.Duration) *QuizCache {
	return &QuizCache{
		loader:   loader,
		ttl:      ttl,
		clock:    time.Now,
		rnd:      rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:    make(map[int64]cachedQuiz),
		versions: make(map[int64]uint64),
	}
}

func (c *QuizCache) GetQuiz(ctx context.Context, quizID int64) (domain.Quiz, error) {
	if quiz, ok := c.lookup(quizID); ok {
		return quiz, nil
	}

	result, err, _ := c.sf.Do(strconv.FormatInt(quizID, 10), func() (interface{}, error) {
		if quiz, ok := c.lookup(quizID); ok {
			return quiz, nil
		}

		c.mu.RLock()
		version := c.versions[quizID]
		c.mu.RUnlock()

		quiz, err := c.loader.LoadQuiz(ctx, quizID)
		if err != nil {
			return domain.Quiz{}, err
		}

		c.mu.Lock()
		// An invalidation during the load means this copy may be stale.
		if c.versions[quizID] == version && c.ttl > 0 {
			c.cache[quizID] = cachedQuiz{
				quiz:      quiz,
				expiresAt: c.clock().Add(c.ttlWithJitter()),
			}
		}
		c.mu.Unlock()
		return quiz, nil
	})
	if err != nil {
		return domain.Quiz{}, err
	}
	return result.(domain.Quiz), nil
}

// Invalidate drops the cached copy so the next read reloads it.
func (c *QuizCache) Invalidate(_ context.Context, quizID int64) error {
	c.mu.Lock()
	delete(c.cache, quizID)
	c.versions[quizID]++
	c.mu.Unlock()
	return nil
}

func (c *QuizCache) lookup(quizID int64) (domain.Quiz, bool) {
	now := c.clock()
	c.mu.RLock()
	defer c.mu.RUnlock()
	if entry, ok := c.cache[quizID]; ok && entry.expiresAt.After(now) {
		return entry.quiz, true
	}
	return domain.Quiz{}, false
}

func (c *QuizCache) ttlWithJitter() time.Duration {
	// add up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	c.rndMu.Lock()
	defer c.rndMu.Unlock()
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}

// StaticQuizLoader is a simple loader backed by an in-memory map (useful for tests/demos).
type StaticQuizLoader struct {
	mu      sync.RWMutex
	quizzes map[int64]domain.Quiz
}

func NewStaticQuizLoader(quizzes map[int64]domain.Quiz) *StaticQuizLoader {
	return &StaticQuizLoader{quizzes: quizzes}
}

func (l *StaticQuizLoader) LoadQuiz(_ context.Context, quizID int64) (domain.Quiz, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if quiz, ok := l.quizzes[quizID]; ok {
		return quiz, nil
	}
	return domain.Quiz{}, domain.ErrQuizNotFound
}

// Put replaces the quiz the loader serves for quiz.ID.
func (l *StaticQuizLoader) Put(quiz domain.Quiz) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.quizzes[quiz.ID] = quiz
}
