package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"quiztrack/internal/bank"
	"quiztrack/internal/domain"
)

// QuestionCache caches the question bank with a TTL to avoid hitting the
// backing loader on every interaction. Concurrent misses collapse into a
// single load via singleflight.
type QuestionCache struct {
	loader bank.Loader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand

	mu        sync.RWMutex
	set       domain.QuestionSet
	expiresAt time.Time
}

func NewQuestionCache(loader bank.Loader, ttl time.Duration) *QuestionCache {
	return &QuestionCache{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Questions implements app.QuestionSource.
func (c *QuestionCache) Questions(ctx context.Context) (domain.QuestionSet, error) {
	now := c.clock()

	c.mu.RLock()
	if c.expiresAt.After(now) {
		set := c.set
		c.mu.RUnlock()
		return set, nil
	}
	c.mu.RUnlock()

	result, err, _ := c.sf.Do("bank", func() (interface{}, error) {
		now := c.clock()
		c.mu.RLock()
		if c.expiresAt.After(now) {
			set := c.set
			c.mu.RUnlock()
			return set, nil
		}
		c.mu.RUnlock()

		set, err := c.loader.Load(ctx)
		if err != nil {
			return domain.QuestionSet{}, err
		}

		c.mu.Lock()
		c.set = set
		c.expiresAt = now.Add(c.ttlWithJitter())
		c.mu.Unlock()
		return set, nil
	})
	if err != nil {
		return domain.QuestionSet{}, err
	}
	return result.(domain.QuestionSet), nil
}

func (c *QuestionCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
