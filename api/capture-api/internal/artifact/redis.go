// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.
package internal_artifact

import (
	"context"
	"errors"
	"fmt"
	"time"

	internal_type "github.com/rapidaai/capture/api/capture-api/internal/type"
	"github.com/rapidaai/capture/pkg/commons"
	"github.com/rapidaai/capture/pkg/connectors"
	"github.com/redis/go-redis/v9"
)

const (
	redisKeyPrefix = "capture:object:"
	fieldType      = "type"
	fieldData      = "data"
)

// redisStore writes one hash per handle. Every handle is its own copy of the
// bytes and expires after ttl, which bounds it to a page session.
type redisStore struct {
	handles
	logger commons.Logger
	redis  connectors.RedisConnector
	ttl    time.Duration
}

func NewRedisStore(origin string, ttl time.Duration, redis connectors.RedisConnector, logger commons.Logger) internal_type.ObjectURLStore {
	return &redisStore{
		handles: newHandles(origin),
		logger:  logger,
		redis:   redis,
		ttl:     ttl,
	}
}

func redisKey(id string) string {
	return redisKeyPrefix + id
}

func (s *redisStore) CreateObjectURL(ctx context.Context, blob *internal_type.Blob) (string, error) {
	if blob == nil {
		return "", fmt.Errorf("create object url: nil blob")
	}
	id, url := s.mint()
	key := redisKey(id)
	client := s.redis.GetConnection()

	if err := client.HSet(ctx, key, fieldType, blob.Type, fieldData, blob.Data).Err(); err != nil {
		return "", fmt.Errorf("store object %s: %w", id, err)
	}
	if err := client.Expire(ctx, key, s.ttl).Err(); err != nil {
		client.Del(ctx, key)
		return "", fmt.Errorf("expire object %s: %w", id, err)
	}
	s.logger.Debugf("created object url %s (%s, %d bytes, ttl %s)", url, blob.Type, blob.Size(), s.ttl)
	return url, nil
}

func (s *redisStore) RevokeObjectURL(ctx context.Context, url string) error {
	id, err := ObjectID(url)
	if err != nil {
		return err
	}
	if err := s.redis.GetConnection().Del(ctx, redisKey(id)).Err(); err != nil {
		return fmt.Errorf("revoke object %s: %w", id, err)
	}
	s.logger.Debugf("revoked object url %s", url)
	return nil
}

func (s *redisStore) Resolve(ctx context.Context, url string) (*internal_type.Blob, error) {
	id, err := ObjectID(url)
	if err != nil {
		return nil, err
	}
	fields, err := s.redis.GetConnection().HGetAll(ctx, redisKey(id)).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("resolve object %s: %w", id, err)
	}
	data, ok := fields[fieldData]
	if !ok {
		return nil, fmt.Errorf("%w: %s", internal_type.ErrObjectNotFound, url)
	}
	return &internal_type.Blob{Type: fields[fieldType], Data: []byte(data)}, nil
}
