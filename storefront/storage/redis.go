package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis keeps one scope in a single hash, so Clear is one DEL and SetItems one
// MULTI/EXEC.
type Redis struct {
	client  redis.UniversalClient
	key     string
	ttl     time.Duration
	timeout time.Duration
}

// NewRedis stores the scope under "storefront:<scope>". A positive ttl expires
// the whole scope after that much inactivity.
func NewRedis(client redis.UniversalClient, scope string, ttl time.Duration) *Redis {
	return &Redis{
		client:  client,
		key:     fmt.Sprintf("storefront:%s", scope),
		ttl:     ttl,
		timeout: 3 * time.Second,
	}
}

func (r *Redis) ctx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), r.timeout)
}

func (r *Redis) Get(key string) (string, bool, error) {
	ctx, cancel := r.ctx()
	defer cancel()

	val, err := r.client.HGet(ctx, r.key, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, unavailable("hget", err)
	}
	return val, true, nil
}

func (r *Redis) Set(key, value string) error {
	return r.SetItems(map[string]string{key: value})
}

func (r *Redis) SetItems(items map[string]string) error {
	if len(items) == 0 {
		return nil
	}
	ctx, cancel := r.ctx()
	defer cancel()

	fields := make([]interface{}, 0, 2*len(items))
	for k, v := range items {
		fields = append(fields, k, v)
	}
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, r.key, fields...)
		if r.ttl > 0 {
			pipe.Expire(ctx, r.key, r.ttl)
		}
		return nil
	})
	if err != nil {
		return unavailable("hset", err)
	}
	return nil
}

func (r *Redis) Remove(key string) error {
	ctx, cancel := r.ctx()
	defer cancel()

	if err := r.client.HDel(ctx, r.key, key).Err(); err != nil {
		return unavailable("hdel", err)
	}
	return nil
}

func (r *Redis) Clear() error {
	ctx, cancel := r.ctx()
	defer cancel()

	if err := r.client.Del(ctx, r.key).Err(); err != nil {
		return unavailable("del", err)
	}
	return nil
}
