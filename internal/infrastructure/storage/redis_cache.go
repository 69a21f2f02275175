package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"NatureDaily/internal/config"
	"NatureDaily/internal/domain"
	"NatureDaily/internal/ports"
)

const summaryKeyPrefix = "naturedaily:summary:"

// RedisSummaryCache stores summaries as JSON under the article URL.
type RedisSummaryCache struct {
	client *redis.Client
	ttl    time.Duration
}

var _ ports.SummaryCache = (*RedisSummaryCache)(nil)

// NewRedisSummaryCache connects and pings Redis.
func NewRedisSummaryCache(ctx context.Context, cfg config.CacheConfig) (*RedisSummaryCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Addr, err)
	}

	return &RedisSummaryCache{client: client, ttl: cfg.TTL}, nil
}

// Get returns ok=false on a miss.
func (c *RedisSummaryCache) Get(ctx context.Context, articleURL string) (domain.Summary, bool, error) {
	raw, err := c.client.Get(ctx, summaryKey(articleURL)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Summary{}, false, nil
	}
	if err != nil {
		return domain.Summary{}, false, fmt.Errorf("redis get: %w", err)
	}

	summary, err := decodeSummary(raw)
	if err != nil {
		return domain.Summary{}, false, err
	}
	return summary, true, nil
}

// Put stores the summary with the configured TTL.
func (c *RedisSummaryCache) Put(ctx context.Context, articleURL string, summary domain.Summary) error {
	raw, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("encode summary: %w", err)
	}
	if err := c.client.Set(ctx, summaryKey(articleURL), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Close releases the connection pool.
func (c *RedisSummaryCache) Close() error {
	return c.client.Close()
}

func summaryKey(articleURL string) string {
	return summaryKeyPrefix + articleURL
}

func decodeSummary(raw []byte) (domain.Summary, error) {
	var summary domain.Summary
	if err := json.Unmarshal(raw, &summary); err != nil {
		return domain.Summary{}, fmt.Errorf("decode summary: %w", err)
	}
	return summary, nil
}
