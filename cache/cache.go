// Package cache provides a Redis-backed cache for parsed dataset content, so that repeated
// analysis requests for the same dataset don't have to round-trip to the database every time.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"hermannm.dev/wrap"

	"github.com/brightboard/brightboard/config"
)

// ErrMiss is returned by DatasetContent when the dataset is not in the cache.
var ErrMiss = errors.New("cache miss")

const contentTTL = 15 * time.Minute

type ContentCache struct {
	client *redis.Client
}

func NewContentCache(config config.Config) (*ContentCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     config.Redis.Address,
		Password: config.Redis.Password,
		DB:       config.Redis.DB,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, wrap.Error(err, "failed to connect to Redis")
	}

	return &ContentCache{client: client}, nil
}

func contentKey(datasetID uuid.UUID) string {
	return fmt.Sprintf("dataset-content:%s", datasetID)
}

func (cache *ContentCache) DatasetContent(
	ctx context.Context,
	datasetID uuid.UUID,
) ([]byte, error) {
	content, err := cache.client.Get(ctx, contentKey(datasetID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrMiss
		}
		return nil, wrap.Errorf(err, "cache lookup failed for dataset '%s'", datasetID)
	}

	return content, nil
}

func (cache *ContentCache) StoreDatasetContent(
	ctx context.Context,
	datasetID uuid.UUID,
	content []byte,
) error {
	if err := cache.client.Set(ctx, contentKey(datasetID), content, contentTTL).Err(); err != nil {
		return wrap.Errorf(err, "cache store failed for dataset '%s'", datasetID)
	}

	return nil
}

func (cache *ContentCache) InvalidateDataset(ctx context.Context, datasetID uuid.UUID) error {
	if err := cache.client.Del(ctx, contentKey(datasetID)).Err(); err != nil {
		return wrap.Errorf(err, "cache invalidation failed for dataset '%s'", datasetID)
	}

	return nil
}

func (cache *ContentCache) Close() error {
	return cache.client.Close()
}
