// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.

// Package internal_artifact implements object URLs: revocable URI handles to
// finished recordings, resolvable through the objects endpoint.
package internal_artifact

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	internal_type "github.com/rapidaai/capture/api/capture-api/internal/type"
	"github.com/rapidaai/capture/config"
	"github.com/rapidaai/capture/pkg/commons"
	"github.com/rapidaai/capture/pkg/connectors"
)

const (
	StoreMemory = "memory"
	StoreRedis  = "redis"

	// ObjectPath is the route prefix handles resolve under.
	ObjectPath = "/v1/objects/"
)

// NewObjectURLStore builds the store named in the artifact config. redis may
// be nil unless the redis store is selected.
func NewObjectURLStore(cfg *config.ArtifactConfig, logger commons.Logger, redis connectors.RedisConnector) (internal_type.ObjectURLStore, error) {
	switch cfg.Store {
	case StoreMemory:
		return NewMemoryStore(cfg.Origin, logger), nil
	case StoreRedis:
		if redis == nil {
			return nil, fmt.Errorf("artifact store %q requires a redis connector", cfg.Store)
		}
		return NewRedisStore(cfg.Origin, cfg.TTL(), redis, logger), nil
	default:
		return nil, fmt.Errorf("unknown artifact store %q", cfg.Store)
	}
}

// handles share one URL scheme across stores.
type handles struct {
	origin string
	newID  func() string
}

func newHandles(origin string) handles {
	return handles{origin: strings.TrimRight(origin, "/"), newID: uuid.NewString}
}

func (h handles) mint() (id string, url string) {
	id = h.newID()
	return id, h.origin + ObjectPath + id
}

// ObjectID extracts the handle id from an object URL, or accepts a bare id.
func ObjectID(url string) (string, error) {
	id := url
	if i := strings.LastIndex(url, ObjectPath); i >= 0 {
		id = url[i+len(ObjectPath):]
	}
	if _, err := uuid.Parse(id); err != nil {
		return "", fmt.Errorf("%w: malformed object url %q", internal_type.ErrObjectNotFound, url)
	}
	return id, nil
}

func copyBlob(blob *internal_type.Blob) *internal_type.Blob {
	data := make([]byte, len(blob.Data))
	copy(data, blob.Data)
	return &internal_type.Blob{Type: blob.Type, Data: data}
}
