package storage

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/datalake/server/internal/shared/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocal_RoundTrip(t *testing.T) {
	s, err := NewLocal(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	key := "user/1/document/abc.txt"
	require.NoError(t, s.Put(ctx, key, strings.NewReader("hello"), 5, "text/plain"))

	rc, size, err := s.Get(ctx, key)
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, int64(5), size)
	assert.Equal(t, "hello", string(data))

	require.NoError(t, s.Delete(ctx, key))
	_, _, err = s.Get(ctx, key)
	assert.ErrorIs(t, err, ErrObjectNotFound)
	assert.NoError(t, s.Delete(ctx, key))
}

func TestLocal_RejectsTraversal(t *testing.T) {
	s, err := NewLocal(t.TempDir())
	require.NoError(t, err)

	_, _, err = s.Get(context.Background(), "../../etc/passwd")
	assert.ErrorIs(t, err, ErrObjectNotFound)
}

func TestNew_UnknownBackend(t *testing.T) {
	_, err := New(&config.StorageConfig{Backend: "ftp"})
	assert.Error(t, err)
}

func TestNewS3_RequiresBucket(t *testing.T) {
	_, err := NewS3(&config.StorageConfig{Backend: "s3"})
	assert.Error(t, err)
}
