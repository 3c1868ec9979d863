package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"ShareVault/config"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var Redis *redis.Client

// ErrCacheMiss is returned when a cached entry does not exist.
var ErrCacheMiss = errors.New("cache miss")

// InitRedis initializes the Redis client.
func InitRedis() {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", config.AppConfig.RedisHost, config.AppConfig.RedisPort),
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisDB,
	})
	_, err := client.Ping(context.Background()).Result()
	if err != nil {
		log.Fatal("init redis fail", err)
	}
	log.Println("init redis success")
	Redis = client
}

// SetJSON stores a JSON-encoded value with a TTL.
func SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return Redis.Set(ctx, key, data, ttl).Err()
}

// GetJSON reads a JSON-encoded value into dest.
func GetJSON(ctx context.Context, key string, dest interface{}) error {
	val, err := Redis.Get(ctx, key).Result()
	if err == redis.Nil {
		return ErrCacheMiss
	}
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(val), dest)
}

// DeleteKey removes a cache entry.
func DeleteKey(ctx context.Context, key string) error {
	return Redis.Del(ctx, key).Err()
}

type RedisLock struct {
	rdb   *redis.Client
	key   string
	token string
	ttl   time.Duration
}

// NewRedisLock creates a Redis lock helper.
func NewRedisLock(rdb *redis.Client, key string, ttl time.Duration) *RedisLock {
	return &RedisLock{
		rdb: rdb,
		key: key,
		ttl: ttl,
	}
}

// Lock acquires a Redis-based lock.
func (l *RedisLock) Lock(ctx context.Context) error {
	token := uuid.NewString()
	ok, err := l.rdb.SetNX(ctx, l.key, token, l.ttl).Result()
	if err != nil {
		return err
	}
	if !ok {
		return errors.New("lock is busy")
	}
	l.token = token
	return nil
}

var unlockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Unlock releases a Redis-based lock.
func (l *RedisLock) Unlock(ctx context.Context) error {
	if l.token == "" {
		return nil
	}
	_, err := unlockScript.Run(
		ctx,
		l.rdb,
		[]string{l.key},
		l.token,
	).Result()
	return err
}
