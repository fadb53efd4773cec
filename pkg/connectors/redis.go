// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.
package connectors

import (
	"context"
	"fmt"

	"github.com/rapidaai/capture/config"
	"github.com/rapidaai/capture/pkg/commons"
	"github.com/redis/go-redis/v9"
)

type RedisConnector interface {
	Connect(ctx context.Context) error
	Name() string
	IsConnected(ctx context.Context) bool
	Disconnect(ctx context.Context) error
	GetConnection() *redis.Client
}

type redisConnector struct {
	cfg    *config.RedisConfig
	logger commons.Logger
	client *redis.Client
}

func NewRedisConnector(cfg *config.RedisConfig, logger commons.Logger) RedisConnector {
	return &redisConnector{cfg: cfg, logger: logger}
}

// NewRedisConnectorWithClient wraps an existing client, mostly for tests
// that hand in a redismock client.
func NewRedisConnectorWithClient(client *redis.Client, logger commons.Logger) RedisConnector {
	return &redisConnector{client: client, logger: logger}
}

func (r *redisConnector) Connect(ctx context.Context) error {
	if r.client == nil {
		r.client = redis.NewClient(&redis.Options{
			Addr:     r.cfg.Addr(),
			Password: r.cfg.Password,
			DB:       r.cfg.DB,
		})
	}
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping %s: %w", r.Name(), err)
	}
	r.logger.Infof("connected to redis %s", r.Name())
	return nil
}

func (r *redisConnector) Name() string {
	if r.cfg == nil {
		return "redis://injected"
	}
	return fmt.Sprintf("redis://%s/%d", r.cfg.Addr(), r.cfg.DB)
}

func (r *redisConnector) IsConnected(ctx context.Context) bool {
	if r.client == nil {
		return false
	}
	return r.client.Ping(ctx).Err() == nil
}

func (r *redisConnector) Disconnect(ctx context.Context) error {
	if r.client == nil {
		return nil
	}
	r.logger.Debugf("disconnecting redis %s", r.Name())
	err := r.client.Close()
	r.client = nil
	return err
}

func (r *redisConnector) GetConnection() *redis.Client {
	return r.client
}
