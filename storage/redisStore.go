package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"

	"github.com/mmdatafocus/ghg_reports/utils"
)

const (
	recordKeyPrefix = "ghg:record:"
	lockKeyPrefix   = "ghg:lock:"
	saveLockTTL     = 5 * time.Second
)

// RedisStore keeps each record under ghg:record:<userId>. Saves for one user
// are serialised across processes with a redis lock.
type RedisStore struct {
	client *redis.Client
	locker *redislock.Client
	ttl    time.Duration
}

// NewRedisStore wraps an already connected client. A zero ttl keeps records
// forever.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{
		client: client,
		locker: redislock.New(client),
		ttl:    ttl,
	}
}

func (s *RedisStore) Load(ctx context.Context, userId string) (json.RawMessage, error) {
	val, err := s.client.Get(ctx, recordKeyPrefix+userId).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, err
	}
	return json.RawMessage(val), nil
}

func (s *RedisStore) Save(ctx context.Context, userId string, record json.RawMessage) error {
	if err := checkUserId(userId); err != nil {
		return err
	}
	lock, err := s.locker.Obtain(ctx, lockKeyPrefix+userId, saveLockTTL, &redislock.Options{
		RetryStrategy: redislock.LimitRetry(redislock.LinearBackoff(50*time.Millisecond), 40),
	})
	if err != nil {
		if errors.Is(err, redislock.ErrNotObtained) {
			return fmt.Errorf("save %s: record is locked by another writer", userId)
		}
		return err
	}
	defer func() {
		_ = lock.Release(context.Background())
	}()
	return s.client.Set(ctx, recordKeyPrefix+userId, []byte(record), s.ttl).Err()
}

// Close leaves the shared client open; it belongs to config.
func (s *RedisStore) Close() error { return nil }
