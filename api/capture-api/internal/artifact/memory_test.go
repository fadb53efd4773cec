package internal_artifact

import (
	"context"
	"strings"
	"testing"

	internal_type "github.com/rapidaai/capture/api/capture-api/internal/type"
	"github.com/rapidaai/capture/config"
	"github.com/rapidaai/capture/pkg/commons"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger(t *testing.T) commons.Logger {
	t.Helper()
	logger, err := commons.NewApplicationLogger(commons.Name("test-artifact"), commons.Path(t.TempDir()), commons.Console(false))
	require.NoError(t, err)
	return logger
}

func TestMemoryStore_EachCallMintsDistinctHandle(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore("http://localhost:9090/", newTestLogger(t))
	blob := &internal_type.Blob{Type: "audio/wav", Data: []byte("AABB")}

	first, err := store.CreateObjectURL(ctx, blob)
	require.NoError(t, err)
	second, err := store.CreateObjectURL(ctx, blob)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.True(t, strings.HasPrefix(first, "http://localhost:9090/v1/objects/"), first)

	for _, url := range []string{first, second} {
		got, err := store.Resolve(ctx, url)
		require.NoError(t, err)
		assert.Equal(t, "audio/wav", got.Type)
		assert.Equal(t, []byte("AABB"), got.Data)
	}
}

func TestMemoryStore_RevokeIsPerHandle(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore("http://localhost:9090", newTestLogger(t))
	blob := &internal_type.Blob{Type: "audio/wav", Data: []byte("AABB")}

	first, _ := store.CreateObjectURL(ctx, blob)
	second, _ := store.CreateObjectURL(ctx, blob)

	require.NoError(t, store.RevokeObjectURL(ctx, first))

	_, err := store.Resolve(ctx, first)
	assert.ErrorIs(t, err, internal_type.ErrObjectNotFound)

	got, err := store.Resolve(ctx, second)
	require.NoError(t, err)
	assert.Equal(t, []byte("AABB"), got.Data)
}

func TestMemoryStore_ResolveReturnsCopy(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore("http://localhost:9090", newTestLogger(t))
	url, _ := store.CreateObjectURL(ctx, &internal_type.Blob{Type: "audio/wav", Data: []byte("AB")})

	got, _ := store.Resolve(ctx, url)
	got.Data[0] = 'Z'

	again, _ := store.Resolve(ctx, url)
	assert.Equal(t, []byte("AB"), again.Data)
}

func TestMemoryStore_RejectsNilAndMalformed(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore("http://localhost:9090", newTestLogger(t))

	_, err := store.CreateObjectURL(ctx, nil)
	assert.Error(t, err)

	_, err = store.Resolve(ctx, "http://localhost:9090/v1/objects/not-a-uuid")
	assert.ErrorIs(t, err, internal_type.ErrObjectNotFound)
}

func TestObjectID(t *testing.T) {
	id := "0d3c4a7e-1b2f-4c5d-8e9f-0a1b2c3d4e5f"
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{"http://localhost:9090/v1/objects/" + id, id, false},
		{"https://capture.example.com/base/v1/objects/" + id, id, false},
		{id, id, false},
		{"http://localhost:9090/v1/objects/", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ObjectID(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, internal_type.ErrObjectNotFound)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewObjectURLStore(t *testing.T) {
	logger := newTestLogger(t)

	store, err := NewObjectURLStore(&config.ArtifactConfig{Store: StoreMemory, Origin: "http://localhost:9090", TTLSeconds: 60}, logger, nil)
	require.NoError(t, err)
	assert.NotNil(t, store)

	_, err = NewObjectURLStore(&config.ArtifactConfig{Store: StoreRedis, Origin: "http://localhost:9090", TTLSeconds: 60}, logger, nil)
	assert.Error(t, err, "redis store needs a connector")

	_, err = NewObjectURLStore(&config.ArtifactConfig{Store: "s3"}, logger, nil)
	assert.Error(t, err)
}
