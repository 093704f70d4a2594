package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"listdist/internal/models"
)

const (
	defaultResultPrefix = "listdist:"
	defaultResultTTL    = 24 * time.Hour
)

// ResultCache stores finished analyses in Redis so that replicas and
// restarts can answer for an unchanged input without reading it.
type ResultCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// parseRedisOptions accepts redis:// and rediss:// URLs or a bare host:port
func parseRedisOptions(connectionString string) (*redis.Options, error) {
	if strings.HasPrefix(connectionString, "redis://") || strings.HasPrefix(connectionString, "rediss://") {
		opts, err := redis.ParseURL(connectionString)
		if err != nil {
			return nil, fmt.Errorf("invalid Redis URL: %w", err)
		}
		return opts, nil
	}
	return &redis.Options{Addr: connectionString}, nil
}

// NewResultCache connects to Redis and verifies the connection.
func NewResultCache(ctx context.Context, connectionString string) (*ResultCache, error) {
	opts, err := parseRedisOptions(connectionString)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return &ResultCache{client: client, prefix: defaultResultPrefix, ttl: defaultResultTTL}, nil
}

// ResultKey identifies an analysis of location at a given content version.
func ResultKey(location, version string, header bool) string {
	return fmt.Sprintf("%s|%s|header=%t", location, version, header)
}

func (c *ResultCache) keyString(key string) string {
	return c.prefix + key
}

// Get returns the cached response for key, if any.
func (c *ResultCache) Get(ctx context.Context, key string) (models.AnalysisResponse, bool, error) {
	raw, err := c.client.Get(ctx, c.keyString(key)).Bytes()
	if err == redis.Nil {
		return models.AnalysisResponse{}, false, nil
	}
	if err != nil {
		return models.AnalysisResponse{}, false, fmt.Errorf("failed to get result from Redis: %w", err)
	}
	var resp models.AnalysisResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return models.AnalysisResponse{}, false, fmt.Errorf("failed to unmarshal result: %w", err)
	}
	return resp, true, nil
}

// Set stores resp under key with the cache TTL.
func (c *ResultCache) Set(ctx context.Context, key string, resp models.AnalysisResponse) error {
	raw, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	if err := c.client.Set(ctx, c.keyString(key), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set result in Redis: %w", err)
	}
	return nil
}

// Delete removes key.
func (c *ResultCache) Delete(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, c.keyString(key)).Err(); err != nil {
		return fmt.Errorf("failed to delete result from Redis: %w", err)
	}
	return nil
}

func (c *ResultCache) Close() error {
	return c.client.Close()
}
