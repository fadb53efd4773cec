// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.
package internal_artifact

import (
	"context"
	"fmt"
	"sync"

	internal_type "github.com/rapidaai/capture/api/capture-api/internal/type"
	"github.com/rapidaai/capture/pkg/commons"
)

// memoryStore keeps blobs for the life of the process. Handles created from
// the same blob point at one shared copy.
type memoryStore struct {
	handles
	logger  commons.Logger
	mu      sync.RWMutex
	objects map[string]*internal_type.Blob
}

func NewMemoryStore(origin string, logger commons.Logger) internal_type.ObjectURLStore {
	return &memoryStore{
		handles: newHandles(origin),
		logger:  logger,
		objects: make(map[string]*internal_type.Blob),
	}
}

func (s *memoryStore) CreateObjectURL(ctx context.Context, blob *internal_type.Blob) (string, error) {
	if blob == nil {
		return "", fmt.Errorf("create object url: nil blob")
	}
	id, url := s.mint()
	s.mu.Lock()
	s.objects[id] = blob
	s.mu.Unlock()
	s.logger.Debugf("created object url %s (%s, %d bytes)", url, blob.Type, blob.Size())
	return url, nil
}

func (s *memoryStore) RevokeObjectURL(ctx context.Context, url string) error {
	id, err := ObjectID(url)
	if err != nil {
		return err
	}
	s.mu.Lock()
	delete(s.objects, id)
	s.mu.Unlock()
	s.logger.Debugf("revoked object url %s", url)
	return nil
}

func (s *memoryStore) Resolve(ctx context.Context, url string) (*internal_type.Blob, error) {
	id, err := ObjectID(url)
	if err != nil {
		return nil, err
	}
	s.mu.RLock()
	blob, ok := s.objects[id]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", internal_type.ErrObjectNotFound, url)
	}
	return copyBlob(blob), nil
}
