// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.

package internal_type

import "context"

// Blob is an immutable binary object with a MIME type.
type Blob struct {
	Type string
	Data []byte
}

func (b *Blob) Size() int {
	if b == nil {
		return 0
	}
	return len(b.Data)
}

// ObjectURLStore hands out revocable URI handles to blobs. Each call to
// CreateObjectURL returns a new handle, even for the same blob.
type ObjectURLStore interface {
	CreateObjectURL(ctx context.Context, blob *Blob) (string, error)
	RevokeObjectURL(ctx context.Context, url string) error
	Resolve(ctx context.Context, url string) (*Blob, error)
}
