package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	// ResultsCacheTTL bounds staleness of revealed tallies between
	// invalidations.
	ResultsCacheTTL = time.Minute
	// StatusCacheTTL is short because remaining-time countdowns live here.
	StatusCacheTTL = 10 * time.Second
)

// CacheService is a Redis cache-aside layer for tally and status payloads.
type CacheService struct {
	rdb *redis.Client
	log zerolog.Logger
}

// NewCacheService creates a CacheService. If redisURL is empty or the
// connection fails, caching degrades to a no-op rather than failing startup.
func NewCacheService(redisURL string, log zerolog.Logger) *CacheService {
	log = log.With().Str("component", "cache").Logger()

	if redisURL == "" {
		log.Info().Msg("redis: no URL configured, caching disabled")
		return &CacheService{log: log}
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		log.Warn().Err(err).Msg("redis: invalid URL, caching disabled")
		return &CacheService{log: log}
	}

	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Warn().Err(err).Msg("redis: connection failed, caching disabled")
		return &CacheService{log: log}
	}

	log.Info().Msg("redis: connected, caching enabled")
	return &CacheService{rdb: rdb, log: log}
}

// Client returns the underlying Redis client (for health checks). May be nil.
func (c *CacheService) Client() *redis.Client {
	return c.rdb
}

// GetResults retrieves a cached tally payload. Returns nil when absent or
// caching is disabled.
func (c *CacheService) GetResults(ctx context.Context, club, position string) ([]byte, error) {
	if c.rdb == nil {
		return nil, nil
	}
	data, err := c.rdb.Get(ctx, resultsKey(club, position)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	return data, err
}

// SetResults stores a tally payload.
func (c *CacheService) SetResults(ctx context.Context, club, position string, data any) error {
	if c.rdb == nil {
		return nil
	}
	b, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, resultsKey(club, position), b, ResultsCacheTTL).Err()
}

// InvalidateResults drops a race's cached tally (called after a vote settles).
func (c *CacheService) InvalidateResults(ctx context.Context, club, position string) error {
	if c.rdb == nil {
		return nil
	}
	return c.rdb.Del(ctx, resultsKey(club, position)).Err()
}

// GetStatus retrieves a cached election status payload.
func (c *CacheService) GetStatus(ctx context.Context, club, position string) ([]byte, error) {
	if c.rdb == nil {
		return nil, nil
	}
	data, err := c.rdb.Get(ctx, statusKey(club, position)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	return data, err
}

// SetStatus stores an election status payload.
func (c *CacheService) SetStatus(ctx context.Context, club, position string, data any) error {
	if c.rdb == nil {
		return nil
	}
	b, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, statusKey(club, position), b, StatusCacheTTL).Err()
}

// InvalidateStatus drops a race's cached status (called on window changes).
func (c *CacheService) InvalidateStatus(ctx context.Context, club, position string) error {
	if c.rdb == nil {
		return nil
	}
	return c.rdb.Del(ctx, statusKey(club, position)).Err()
}

// Close shuts down the Redis connection.
func (c *CacheService) Close() error {
	if c.rdb == nil {
		return nil
	}
	return c.rdb.Close()
}

func resultsKey(club, position string) string {
	return fmt.Sprintf("results:%s:%s", club, position)
}

func statusKey(club, position string) string {
	return fmt.Sprintf("status:%s:%s", club, position)
}
