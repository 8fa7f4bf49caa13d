// Package redis connects the shared challenge, revocation and rate-limit
// stores.
package redis

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"mintgate/internal/platform/config"
)

// Client is a pinged go-redis client.
type Client struct {
	*redis.Client
}

// New connects using cfg. An empty URL returns a nil client and no error.
func New(ctx context.Context, cfg config.RedisConfig) (*Client, error) {
	if cfg.URL == "" {
		return nil, nil
	}

	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	if cfg.PoolSize > 0 {
		opts.PoolSize = cfg.PoolSize
	}
	opts.MinIdleConns = cfg.MinIdleConns
	opts.DialTimeout = cfg.DialTimeout
	opts.ReadTimeout = cfg.ReadTimeout
	opts.WriteTimeout = cfg.WriteTimeout

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return &Client{Client: client}, nil
}

func (c *Client) Health(ctx context.Context) error {
	return c.Ping(ctx).Err()
}

// RegisterPoolMetrics exposes connection pool statistics as gauges.
func (c *Client) RegisterPoolMetrics(reg prometheus.Registerer) error {
	stats := []struct {
		name, help string
		value      func(*redis.PoolStats) uint32
	}{
		{"mintgate_redis_pool_total_conns", "Connections in the Redis pool.", func(s *redis.PoolStats) uint32 { return s.TotalConns }},
		{"mintgate_redis_pool_idle_conns", "Idle connections in the Redis pool.", func(s *redis.PoolStats) uint32 { return s.IdleConns }},
		{"mintgate_redis_pool_timeouts", "Times a caller waited past the pool timeout.", func(s *redis.PoolStats) uint32 { return s.Timeouts }},
	}
	for _, st := range stats {
		value := st.value
		gauge := prometheus.NewGaugeFunc(prometheus.GaugeOpts{Name: st.name, Help: st.help}, func() float64 {
			return float64(value(c.PoolStats()))
		})
		if err := reg.Register(gauge); err != nil {
			return fmt.Errorf("register %s: %w", st.name, err)
		}
	}
	return nil
}
