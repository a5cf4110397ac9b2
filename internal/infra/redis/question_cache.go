package redis

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"quiztrack/internal/bank"
	"quiztrack/internal/domain"
)

const bankKey = "quiz:bank"

// QuestionCache keeps the serialized question bank in Redis with a TTL and
// falls back to the loader on miss. Instances sharing the Redis node share
// the cached bank; concurrent misses collapse into one load.
type QuestionCache struct {
	client *redis.Client
	loader bank.Loader
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

func NewQuestionCache(client *redis.Client, loader bank.Loader, ttl time.Duration) *QuestionCache {
	return &QuestionCache{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Questions implements app.QuestionSource.
func (c *QuestionCache) Questions(ctx context.Context) (domain.QuestionSet, error) {
	if set, ok, err := c.fromCache(ctx); err != nil {
		return domain.QuestionSet{}, err
	} else if ok {
		return set, nil
	}

	result, err, _ := c.sf.Do(bankKey, func() (interface{}, error) {
		// Re-check in case another goroutine filled the cache.
		if set, ok, err := c.fromCache(ctx); err != nil {
			return domain.QuestionSet{}, err
		} else if ok {
			return set, nil
		}

		set, err := c.loader.Load(ctx)
		if err != nil {
			return domain.QuestionSet{}, err
		}

		data, err := json.Marshal(set)
		if err != nil {
			return domain.QuestionSet{}, err
		}
		if err := c.client.Set(ctx, bankKey, data, c.ttlWithJitter()).Err(); err != nil {
			return domain.QuestionSet{}, domain.NewStorageError("cache bank", err)
		}
		return set, nil
	})
	if err != nil {
		return domain.QuestionSet{}, err
	}
	return result.(domain.QuestionSet), nil
}

func (c *QuestionCache) fromCache(ctx context.Context) (domain.QuestionSet, bool, error) {
	data, err := c.client.Get(ctx, bankKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.QuestionSet{}, false, nil
	}
	if err != nil {
		return domain.QuestionSet{}, false, domain.NewStorageError("read cached bank", err)
	}
	var set domain.QuestionSet
	if err := json.Unmarshal(data, &set); err != nil {
		// A corrupt cache entry is treated as a miss and overwritten.
		return domain.QuestionSet{}, false, nil
	}
	return set, true, nil
}

func (c *QuestionCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
