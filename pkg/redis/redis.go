package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const labelKeyPrefix = "fridgemood:labels:"

// IRedis caches deduplicated detector labels by image digest.
type IRedis interface {
	GetLabels(ctx context.Context, digest string) ([]string, bool, error)
	SetLabels(ctx context.Context, digest string, labels []string, expiration time.Duration) error
	Close() error
}

type Options struct {
	Addr     string
	Password string
	DB       int
}

type redisClient struct {
	client *redis.Client
	log    *logrus.Logger
}

func New(opts Options, log *logrus.Logger) IRedis {
	log.Infof("Connecting to Redis at %s...", opts.Addr)

	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		log.Errorf("Failed to connect to Redis: %v", err)
	} else {
		log.Info("Successfully connected to Redis")
	}

	return &redisClient{client: client, log: log}
}

func LabelKey(digest string) string {
	return labelKeyPrefix + digest
}

func (r *redisClient) GetLabels(ctx context.Context, digest string) ([]string, bool, error) {
	key := LabelKey(digest)

	val, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		r.log.Debugf("Labels not cached for key %s", key)
		return nil, false, nil
	} else if err != nil {
		return nil, false, fmt.Errorf("get %s: %w", key, err)
	}

	var labels []string
	if err := jsoniter.Unmarshal(val, &labels); err != nil {
		return nil, false, fmt.Errorf("decode %s: %w", key, err)
	}

	return labels, true, nil
}

func (r *redisClient) SetLabels(ctx context.Context, digest string, labels []string, expiration time.Duration) error {
	key := LabelKey(digest)

	if labels == nil {
		labels = []string{}
	}
	val, err := jsoniter.Marshal(labels)
	if err != nil {
		return err
	}

	if err := r.client.Set(ctx, key, val, expiration).Err(); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}

	r.log.Debugf("Cached %d labels for key %s", len(labels), key)
	return nil
}

func (r *redisClient) Close() error {
	return r.client.Close()
}
