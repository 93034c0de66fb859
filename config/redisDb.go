package config

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

var rdb *redis.Client
var ctx = context.Background()

// GetRedisDB returns the global client, or nil before a connection is made.
func GetRedisDB() *redis.Client {
	return rdb
}

// UseRedis installs an already connected client, mainly for tests and tools.
func UseRedis(client *redis.Client) {
	rdb = client
}

// GetRedisObject decodes the JSON value at key into dest. A missing key, or
// no redis at all, reports false without error.
func GetRedisObject(key string, dest interface{}) (bool, error) {
	if rdb == nil {
		return false, nil
	}
	val, err := rdb.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(val, dest); err != nil {
		return false, err
	}
	return true, nil
}

func SetRedisObject(key string, obj interface{}, exp time.Duration) error {
	if rdb == nil {
		return nil
	}
	objInByte, err := json.Marshal(obj)
	if err != nil {
		return err
	}
	return rdb.Set(ctx, key, objInByte, exp).Err()
}

// ConnectRedis makes a single connection attempt.
func ConnectRedis(c context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		DB:       0,
		PoolSize: 32,
	})
	if err := client.Ping(c).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

// ConnectRedisWithRetry installs the global client once addr answers PING.
// Call it after the HTTP server is listening.
func ConnectRedisWithRetry(c context.Context, addr string) error {
	return connectWithRetry(c, "redis", logrus.Fields{"addr": addr}, func(c context.Context) error {
		client, err := ConnectRedis(c, addr)
		if err != nil {
			return err
		}
		UseRedis(client)
		return nil
	})
}
