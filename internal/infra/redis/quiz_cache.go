package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
	"quiz-app-service/internal/domain"
)

// QuizLoader fetches quiz content from a backing store (e.g., Postgres).
type QuizLoader interface {
	LoadQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
}

// QuizCache caches whole quiz documents in Redis and falls back to a loader on miss.
// Quizzes are stored as: SET quiz:{quizID} <json> EX <ttl+jitter>
// Invalidate bumps quiz:{quizID}:version; a fill is only written under WATCH on
// that key when it still holds the value read before the load.
type QuizCache struct {
	client *redis.Client
	loader QuizLoader
	ttl    time.Duration
	sf     singleflight.Group
	rndMu  sync.Mutex
	rnd    *rand.Rand
}

func NewQuizCache(client *redis.Client, loader QuizLoader, ttl time.Duration) *QuizCache {
	return &QuizCache{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *QuizCache) GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	if quiz, ok := r.cached(ctx, quizID); ok {
		return quiz, nil
	}

	result, err, _ := r.sf.Do(quizID, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if quiz, ok := r.cached(ctx, quizID); ok {
			return quiz, nil
		}

		version, versionErr := r.version(ctx, r.client, quizID)

		quiz, err := r.loader.LoadQuiz(ctx, quizID)
		if err != nil {
			return domain.Quiz{}, err
		}
		if versionErr != nil {
			log.Warn().Err(versionErr).Str("quizId", quizID).Msg("quiz cache version read failed")
			return quiz, nil
		}

		data, err := json.Marshal(quiz)
		if err != nil {
			return domain.Quiz{}, fmt.Errorf("marshal quiz: %w", err)
		}
		// A skipped or failed fill only costs the next reader another load.
		switch err := r.fill(ctx, quizID, version, data); {
		case errors.Is(err, errStaleFill), errors.Is(err, redis.TxFailedErr):
			log.Debug().Str("quizId", quizID).Msg("quiz invalidated during load; not caching")
		case err != nil:
			log.Warn().Err(err).Str("quizId", quizID).Msg("quiz cache fill failed")
		}
		return quiz, nil
	})
	if err != nil {
		return domain.Quiz{}, err
	}
	return result.(domain.Quiz), nil
}

// Invalidate deletes the cached document so the next read reloads it.
// Loads already in flight still return, but their result is not cached.
func (r *QuizCache) Invalidate(ctx context.Context, quizID string) error {
	r.sf.Forget(quizID)
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, r.key(quizID))
		pipe.Incr(ctx, r.versionKey(quizID))
		return nil
	})
	if err != nil {
		return fmt.Errorf("invalidate quiz %s: %w", quizID, err)
	}
	return nil
}

var errStaleFill = errors.New("quiz version changed during load")

func (r *QuizCache) fill(ctx context.Context, quizID, version string, data []byte) error {
	versionKey := r.versionKey(quizID)
	return r.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := r.version(ctx, tx, quizID)
		if err != nil {
			return err
		}
		if current != version {
			return errStaleFill
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, r.key(quizID), data, r.ttlWithJitter())
			return nil
		})
		return err
	}, versionKey)
}

// getter is satisfied by both *redis.Client and *redis.Tx.
type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

// version returns the invalidation counter, "" when the quiz was never invalidated.
func (r *QuizCache) version(ctx context.Context, c getter, quizID string) (string, error) {
	v, err := c.Get(ctx, r.versionKey(quizID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return v, err
}

func (r *QuizCache) cached(ctx context.Context, quizID string) (domain.Quiz, bool) {
	data, err := r.client.Get(ctx, r.key(quizID)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Warn().Err(err).Str("quizId", quizID).Msg("quiz cache read failed")
		}
		return domain.Quiz{}, false
	}
	var quiz domain.Quiz
	if err := json.Unmarshal(data, &quiz); err != nil {
		log.Warn().Err(err).Str("quizId", quizID).Msg("discarding corrupt cached quiz")
		return domain.Quiz{}, false
	}
	return quiz, true
}

func (r *QuizCache) key(quizID string) string {
	return "quiz:" + quizID
}

func (r *QuizCache) versionKey(quizID string) string {
	return "quiz:" + quizID + ":version"
}

func (r *QuizCache) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	r.rndMu.Lock()
	defer r.rndMu.Unlock()
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
