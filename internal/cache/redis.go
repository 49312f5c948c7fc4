package cache

import (
	"context"
	"time"

	"biblioteca-api/internal/config"
	"biblioteca-api/internal/logging"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
)

var client *redis.Client

func InitRedis(cfg *config.Config) {
	client = redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPass,
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		// sin Redis seguimos funcionando, solo sin cache
		logging.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("[redis] no disponible, cache deshabilitado")
		client = nil
		return
	}

	logging.Info().Str("addr", cfg.RedisAddr).Msg("[redis] OK")
}

// Use permite inyectar un cliente ya construido (tests, otros binarios).
func Use(c *redis.Client) {
	client = c
}

func Close() error {
	if client == nil {
		return nil
	}
	return client.Close()
}

// GetJSON lee una key de Redis, si existe deserializa el JSON en `dest`.
func GetJSON(ctx context.Context, key string, dest any) (bool, error) {
	if client == nil {
		return false, nil
	}

	val, err := client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if err := json.Unmarshal(val, dest); err != nil {
		return false, err
	}
	return true, nil
}

// SetJSON serializa `value` a JSON y lo guarda en Redis con TTL.
func SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	if client == nil {
		return nil
	}

	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return client.Set(ctx, key, b, ttl).Err()
}

// DeletePattern borra todas las keys que matchean `pattern` (SCAN, no KEYS).
func DeletePattern(ctx context.Context, pattern string) (int, error) {
	if client == nil {
		return 0, nil
	}

	deleted := 0
	iter := client.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		if err := client.Del(ctx, iter.Val()).Err(); err != nil {
			return deleted, err
		}
		deleted++
	}
	return deleted, iter.Err()
}
