package common

import (
	"context"
	"crypto/tls"
	"fmt"

	"github.com/anthonypate54/familynest/pkg/types"
	"github.com/redis/go-redis/v9"
)

type RedisClient struct {
	redis.UniversalClient
}

type RedisClientOption func(*redis.UniversalOptions)

func WithClientName(name string) RedisClientOption {
	return func(o *redis.UniversalOptions) {
		o.ClientName = name
	}
}

// NewRedisClient connects in single or cluster mode and pings once before returning.
func NewRedisClient(config types.RedisConfig, options ...RedisClientOption) (*RedisClient, error) {
	opts := &redis.UniversalOptions{
		Addrs:        config.Addrs,
		Username:     config.Username,
		Password:     config.Password,
		ClientName:   config.ClientName,
		PoolSize:     config.PoolSize,
		MinIdleConns: config.MinIdleConns,
		DialTimeout:  config.DialTimeout,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		MaxRetries:   config.MaxRetries,
	}
	if config.EnableTLS {
		opts.TLSConfig = &tls.Config{InsecureSkipVerify: config.InsecureSkipVerify}
	}
	for _, opt := range options {
		opt(opts)
	}

	var client redis.UniversalClient
	if config.Mode == types.RedisModeCluster {
		client = redis.NewClusterClient(opts.Cluster())
	} else {
		client = redis.NewClient(opts.Simple())
	}

	if err := client.Ping(context.Background()).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return &RedisClient{UniversalClient: client}, nil
}
