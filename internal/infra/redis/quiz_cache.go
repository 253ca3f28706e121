package redis

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"quiz-portal/internal/domain"
)

// QuizLoader fetches quiz content from the backing store.
type QuizLoader interface {
	LoadQuiz(ctx context.Context, quizID int64) (domain.Quiz, error)
}

// QuizCache caches quiz content in Redis and falls back to a loader on cache miss.
// Content is stored as JSON under quiz:{quizID}:content. Every invalidation
// bumps quiz:{quizID}:gen, and a loaded copy is only written back while the
// generation it was read under is still current.
type QuizCache struct {
	client *redis.Client
	loader QuizLoader
	ttl    time.Duration
	sf     singleflight.Group
	rndMu  sync.Mutex
	rnd    *rand.Rand
}

// storeIfCurrent sets KEYS[2] only while KEYS[1] still holds ARGV[1].
var storeIfCurrent = redis.NewScript(`
local gen = redis.call('GET', KEYS[1]) or '0'
if gen ~= ARGV[1] then
	return 0
end
redis.call('SET', KEYS[2], ARGV[2], 'PX', ARGV[3])
return 1
`)

func NewQuizCache(client *redis.Client, loader QuizLoader, ttl time.Duration) *QuizCache {
	return &QuizCache{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *QuizCache) GetQuiz(ctx context.Context, quizID int64) (domain.Quiz, error) {
	if quiz, ok := c.cached(ctx, quizID); ok {
		return quiz, nil
	}

	result, err, _ := c.sf.Do(strconv.FormatInt(quizID, 10), func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if quiz, ok := c.cached(ctx, quizID); ok {
			return quiz, nil
		}

		gen, genErr := c.generation(ctx, quizID)

		quiz, err := c.loader.LoadQuiz(ctx, quizID)
		if err != nil {
			return domain.Quiz{}, err
		}

		if ttl := c.ttlWithJitter(); ttl > 0 && genErr == nil {
			if payload, err := json.Marshal(quiz); err == nil {
				// best-effort; a failed or skipped write only costs a reload
				_ = storeIfCurrent.Run(ctx, c.client,
					[]string{c.genKey(quizID), c.key(quizID)},
					gen, payload, ttl.Milliseconds()).Err()
			}
		}
		return quiz, nil
	})
	if err != nil {
		return domain.Quiz{}, err
	}
	return result.(domain.Quiz), nil
}

// Invalidate removes the cached copy for every instance sharing this Redis
// and retires loads that started before it.
func (c *QuizCache) Invalidate(ctx context.Context, quizID int64) error {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, c.genKey(quizID))
		pipe.Del(ctx, c.key(quizID))
		return nil
	})
	return err
}

func (c *QuizCache) generation(ctx context.Context, quizID int64) (string, error) {
	gen, err := c.client.Get(ctx, c.genKey(quizID)).Result()
	if errors.Is(err, redis.Nil) {
		return "0", nil
	}
	return gen, err
}

func (c *QuizCache) cached(ctx context.Context, quizID int64) (domain.Quiz, bool) {
	raw, err := c.client.Get(ctx, c.key(quizID)).Bytes()
	if err != nil {
		return domain.Quiz{}, false
	}
	var quiz domain.Quiz
	if err := json.Unmarshal(raw, &quiz); err != nil {
		return domain.Quiz{}, false
	}
	return quiz, true
}

func (c *QuizCache) key(quizID int64) string {
	return "quiz:" + strconv.FormatInt(quizID, 10) + ":content"
}

func (c *QuizCache) genKey(quizID int64) string {
	return "quiz:" + strconv.FormatInt(quizID, 10) + ":gen"
}

func (c *QuizCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	jitterMax := int64(c.ttl) / 10
	c.rndMu.Lock()
	defer c.rndMu.Unlock()
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
