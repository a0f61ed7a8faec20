package storage_test

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/straye-as/quotation-api/internal/config"
	"github.com/straye-as/quotation-api/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLocalStorage_UploadDownloadDelete(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s, err := storage.NewLocalStorage(dir)
	require.NoError(t, err)

	size, err := s.Upload(ctx, "1700000000000_plan.png", "image/png", strings.NewReader("pixels"))
	require.NoError(t, err)
	assert.Equal(t, int64(6), size)

	rc, err := s.Download(ctx, "1700000000000_plan.png")
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, "pixels", string(data))

	require.NoError(t, s.Delete(ctx, "1700000000000_plan.png"))
	require.NoError(t, s.Delete(ctx, "1700000000000_plan.png"), "deleting twice is not an error")

	_, err = s.Download(ctx, "1700000000000_plan.png")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestLocalStorage_RejectsTraversal(t *testing.T) {
	ctx := context.Background()
	s, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	for _, name := range []string{"", "..", "../etc/passwd", "a/b.png", `a\b.png`} {
		_, err := s.Upload(ctx, name, "text/plain", strings.NewReader("x"))
		assert.ErrorIs(t, err, storage.ErrInvalidName, name)
		_, err = s.Download(ctx, name)
		assert.ErrorIs(t, err, storage.ErrInvalidName, name)
	}
}

func TestLocalStorage_List(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s, err := storage.NewLocalStorage(dir)
	require.NoError(t, err)

	_, err = s.Upload(ctx, "2_b.png", "image/png", strings.NewReader("bb"))
	require.NoError(t, err)
	_, err = s.Upload(ctx, "1_a.png", "image/png", strings.NewReader("a"))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".upload-123"), []byte("partial"), 0644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0755))

	objects, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, objects, 2)
	assert.Equal(t, "1_a.png", objects[0].Name)
	assert.Equal(t, int64(1), objects[0].Size)
	assert.Equal(t, "2_b.png", objects[1].Name)
	assert.False(t, objects[1].ModTime.IsZero())
}

func TestNewStorage_Modes(t *testing.T) {
	ctx := context.Background()

	s, err := storage.NewStorage(ctx, &config.StorageConfig{Mode: "local", LocalBasePath: t.TempDir()}, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &storage.LocalStorage{}, s)

	_, err = storage.NewStorage(ctx, &config.StorageConfig{Mode: "azure"}, zap.NewNop())
	assert.Error(t, err)

	_, err = storage.NewStorage(ctx, &config.StorageConfig{Mode: "s3"}, zap.NewNop())
	assert.Error(t, err)

	_, err = storage.NewStorage(ctx, &config.StorageConfig{Mode: "ftp"}, zap.NewNop())
	assert.Error(t, err)
}
