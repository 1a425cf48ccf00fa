package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"reviewsection/pkg/metrics"
	"reviewsection/reviews-service/internal/app/reviews/entity"
	"reviewsection/reviews-service/internal/app/reviews/infrastructure"

	"github.com/redis/go-redis/v9"
)

const (
	serviceName      = "reviews-service"
	productKeyPrefix = "reviews:product"
)

// RedisReviewCache хранит JSON со списком отзывов товара
type RedisReviewCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisReviewCache(client *redis.Client, ttl time.Duration) *RedisReviewCache {
	return &RedisReviewCache{client: client, ttl: ttl}
}

// Connect создает клиента и проверяет соединение
func Connect(addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return client, nil
}

func productKey(productID string) string {
	return productKeyPrefix + ":" + productID
}

// versionKey растет при каждой инвалидации, TTL не ставится
func versionKey(productID string) string {
	return productKey(productID) + ":v"
}

func (c *RedisReviewCache) GetProductReviews(ctx context.Context, productID string) ([]entity.Review, bool, error) {
	timer := metrics.NewRedisTimer(serviceName, metrics.RedisOpGet)
	defer timer.ObserveDuration()

	data, err := c.client.Get(ctx, productKey(productID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			metrics.RecordCacheMiss(serviceName, productKeyPrefix)
			return nil, false, nil
		}
		metrics.RecordRedisError(serviceName, metrics.RedisOpGet)
		return nil, false, fmt.Errorf("failed to get reviews from cache: %w", err)
	}

	var reviews []entity.Review
	if err := json.Unmarshal(data, &reviews); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal cached reviews: %w", err)
	}

	metrics.RecordCacheHit(serviceName, productKeyPrefix)
	return reviews, true, nil
}

// ProductVersion возвращает текущую версию кеша товара, 0 если инвалидаций не было
func (c *RedisReviewCache) ProductVersion(ctx context.Context, productID string) (int64, error) {
	timer := metrics.NewRedisTimer(serviceName, metrics.RedisOpGet)
	defer timer.ObserveDuration()

	version, err := readVersion(ctx, c.client, productID)
	if err != nil {
		metrics.RecordRedisError(serviceName, metrics.RedisOpGet)
		return 0, fmt.Errorf("failed to get cache version: %w", err)
	}
	return version, nil
}

// SetProductReviews пишет список только если версия не изменилась с момента чтения.
// Иначе возвращает infrastructure.ErrCacheVersionChanged и ничего не пишет.
func (c *RedisReviewCache) SetProductReviews(ctx context.Context, productID string, reviews []entity.Review, version int64) error {
	timer := metrics.NewRedisTimer(serviceName, metrics.RedisOpSet)
	defer timer.ObserveDuration()

	if reviews == nil {
		reviews = []entity.Review{}
	}

	data, err := json.Marshal(reviews)
	if err != nil {
		return fmt.Errorf("failed to marshal reviews: %w", err)
	}

	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := readVersion(ctx, tx, productID)
		if err != nil {
			return err
		}
		if current != version {
			return infrastructure.ErrCacheVersionChanged
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, productKey(productID), data, c.ttl)
			return nil
		})
		return err
	}, versionKey(productID))

	switch {
	case err == nil:
		return nil
	case errors.Is(err, infrastructure.ErrCacheVersionChanged):
		return err
	case errors.Is(err, redis.TxFailedErr):
		// Инвалидация прошла между WATCH и EXEC
		return infrastructure.ErrCacheVersionChanged
	default:
		metrics.RecordRedisError(serviceName, metrics.RedisOpSet)
		return fmt.Errorf("failed to set reviews in cache: %w", err)
	}
}

// InvalidateProduct поднимает версию и удаляет список одной транзакцией
func (c *RedisReviewCache) InvalidateProduct(ctx context.Context, productID string) error {
	timer := metrics.NewRedisTimer(serviceName, metrics.RedisOpDel)
	defer timer.ObserveDuration()

	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, versionKey(productID))
		pipe.Del(ctx, productKey(productID))
		return nil
	})
	if err != nil {
		metrics.RecordRedisError(serviceName, metrics.RedisOpDel)
		return fmt.Errorf("failed to invalidate reviews cache: %w", err)
	}
	return nil
}

// versionReader общий для *redis.Client и *redis.Tx внутри WATCH
type versionReader interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func readVersion(ctx context.Context, client versionReader, productID string) (int64, error) {
	version, err := client.Get(ctx, versionKey(productID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return version, err
}

func (c *RedisReviewCache) Close() error {
	return c.client.Close()
}
