package redisstore

import (
	"context"
	"crypto/tls"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/zlnvch/tracereport/store"
)

const (
	oldestSharedKeyDateKey     = "report:oldest-shared-key-date"
	endIsolationQuestionateKey = "report:end-isolation-question-date"
)

type RedisReportStore struct {
	client redis.UniversalClient
}

func NewRedisReportStore(ctx context.Context, devMode bool, redisEndpoint string) (*RedisReportStore, error) {
	var client redis.UniversalClient
	if devMode {
		client = redis.NewClient(&redis.Options{
			Addr: redisEndpoint,
		})
	} else {
		client = redis.NewClient(&redis.Options{
			Addr: redisEndpoint,
			// AWS elasticache endpoints require TLS
			TLSConfig: &tls.Config{},
		})
	}

	err := client.Ping(ctx).Err()
	if err != nil {
		return nil, err
	}

	return &RedisReportStore{client: client}, nil
}

func (redisStore *RedisReportStore) SetOldestSharedKeyDate(ctx context.Context, date time.Time) error {
	return redisStore.setDate(ctx, oldestSharedKeyDateKey, date)
}

func (redisStore *RedisReportStore) GetOldestSharedKeyDate(ctx context.Context) (time.Time, error) {
	return redisStore.getDate(ctx, oldestSharedKeyDateKey)
}

func (redisStore *RedisReportStore) SetEndIsolationQuestionDate(ctx context.Context, date time.Time) error {
	return redisStore.setDate(ctx, endIsolationQuestionateKey, date)
}

func (redisStore *RedisReportStore) GetEndIsolationQuestionDate(ctx context.Context) (time.Time, error) {
	return redisStore.getDate(ctx, endIsolationQuestionateKey)
}

func (redisStore *RedisReportStore) setDate(ctx context.Context, key string, date time.Time) error {
	return redisStore.client.Set(ctx, key, strconv.FormatInt(date.UnixMilli(), 10), 0).Err()
}

func (redisStore *RedisReportStore) getDate(ctx context.Context, key string) (time.Time, error) {
	val, err := redisStore.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return time.Time{}, store.ErrNotSet
	}
	if err != nil {
		return time.Time{}, err
	}

	ms, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return time.Time{}, err
	}
	return time.UnixMilli(ms), nil
}
