package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	apperrors "splitledger-backend/errors"
	"splitledger-backend/ledger"

	redis "github.com/go-redis/redis/v8"
)

type Config struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// RedisCache stores dashboards as JSON with a TTL. Generation counters are
// kept without expiry so a reset can never revive an old generation.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(config Config) *RedisCache {
	return &RedisCache{
		client: redis.NewClient(&redis.Options{
			Addr:     config.Addr,
			Password: config.Password,
			DB:       config.DB,
		}),
		ttl: config.TTL,
	}
}

func (r *RedisCache) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return apperrors.CacheError("pinging redis", err)
	}
	return nil
}

func (r *RedisCache) Close() error {
	return r.client.Close()
}

func (r *RedisCache) Get(ctx context.Context, userID string) (ledger.Dashboard, bool, error) {
	val, err := r.client.Get(ctx, key(userID)).Bytes()
	if err == redis.Nil {
		return ledger.Dashboard{}, false, nil
	}
	if err != nil {
		return ledger.Dashboard{}, false, apperrors.CacheError("reading dashboard", err)
	}

	var dashboard ledger.Dashboard
	if err := json.Unmarshal(val, &dashboard); err != nil {
		return ledger.Dashboard{}, false, apperrors.CacheError("decoding dashboard", err)
	}
	return dashboard, true, nil
}

func (r *RedisCache) Generation(ctx context.Context, userID string) (uint64, error) {
	gen, err := parseGeneration(r.client.Get(ctx, generationKey(userID)))
	if err != nil {
		return 0, apperrors.CacheError("reading generation", err)
	}
	return gen, nil
}

func parseGeneration(cmd *redis.StringCmd) (uint64, error) {
	gen, err := cmd.Uint64()
	if err == redis.Nil {
		return 0, nil
	}
	return gen, err
}

// Set watches the generation key so an Invalidate that lands between the
// check and the write aborts the transaction.
func (r *RedisCache) Set(ctx context.Context, userID string, generation uint64, dashboard ledger.Dashboard) (bool, error) {
	value, err := json.Marshal(dashboard)
	if err != nil {
		return false, apperrors.CacheError("encoding dashboard", err)
	}

	stored := false
	err = r.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := parseGeneration(tx.Get(ctx, generationKey(userID)))
		if err != nil {
			return err
		}
		if current != generation {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key(userID), value, r.ttl)
			return nil
		})
		if err == nil {
			stored = true
		}
		return err
	}, generationKey(userID))

	if errors.Is(err, redis.TxFailedErr) {
		return false, nil
	}
	if err != nil {
		return false, apperrors.CacheError("writing dashboard", err)
	}
	return stored, nil
}

func (r *RedisCache) Invalidate(ctx context.Context, userIDs ...string) error {
	if len(userIDs) == 0 {
		return nil
	}
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, id := range userIDs {
			pipe.Incr(ctx, generationKey(id))
			pipe.Del(ctx, key(id))
		}
		return nil
	})
	if err != nil {
		return apperrors.CacheError("invalidating dashboards", err)
	}
	return nil
}
