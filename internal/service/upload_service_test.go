package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/straye-as/quotation-api/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type failingStorage struct{ storage.Storage }

func (failingStorage) Upload(context.Context, string, string, io.Reader) (int64, error) {
	return 0, errors.New("disk full")
}

func newTestUploadService(t *testing.T) *UploadService {
	t.Helper()
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	svc := NewUploadService(store, "/uploads/", nil, zap.NewNop())
	svc.now = func() time.Time { return time.UnixMilli(1700000000123) }
	return svc
}

func TestUploadService_UploadAndOpen(t *testing.T) {
	svc := newTestUploadService(t)
	ctx := context.Background()

	resp, err := svc.Upload(ctx, "site plan.png", "", strings.NewReader("png-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "/uploads/1700000000123_site_plan.png", resp.Path)

	name, ok := svc.ObjectName(resp.Path)
	require.True(t, ok)
	assert.Equal(t, "1700000000123_site_plan.png", name)

	rc, contentType, err := svc.Open(ctx, name)
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))
	assert.Equal(t, "image/png", contentType)
}

func TestUploadService_OpenMissing(t *testing.T) {
	svc := newTestUploadService(t)

	_, _, err := svc.Open(context.Background(), "nope.png")
	assert.ErrorIs(t, err, ErrFileNotFound)

	_, _, err = svc.Open(context.Background(), "../secret")
	assert.ErrorIs(t, err, ErrFileNotFound)
}

func TestUploadService_StoreFailure(t *testing.T) {
	svc := NewUploadService(failingStorage{}, "/uploads", nil, zap.NewNop())

	_, err := svc.Upload(context.Background(), "a.png", "image/png", strings.NewReader("x"))
	var ue *UploadError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, "a.png", ue.Filename)
}

func TestUploadService_RejectsEmptyName(t *testing.T) {
	svc := newTestUploadService(t)
	_, err := svc.Upload(context.Background(), "", "", strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrInvalidUpload)
}

func TestUploadService_RejectsNonImage(t *testing.T) {
	svc := newTestUploadService(t)

	_, err := svc.Upload(context.Background(), "x.html", "image/png", strings.NewReader("<script></script>"))
	assert.ErrorIs(t, err, ErrUnsupportedFileType)

	resp, err := svc.Upload(context.Background(), "PHOTO.JPG", "application/octet-stream", strings.NewReader("jpg"))
	require.NoError(t, err)
	name, ok := svc.ObjectName(resp.Path)
	require.True(t, ok)
	rc, contentType, err := svc.Open(context.Background(), name)
	require.NoError(t, err)
	defer rc.Close()
	assert.Equal(t, "image/jpeg", contentType)
}

func TestUploadService_ObjectName(t *testing.T) {
	svc := newTestUploadService(t)

	for _, p := range []string{"", "/uploads/", "/other/1_a.png", "https://cdn.example.com/uploads/1_a.png", "/uploads/a/b.png"} {
		_, ok := svc.ObjectName(p)
		assert.False(t, ok, p)
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plan.png", "plan.png"},
		{"site plan (v2).png", "site_plan__v2_.png"},
		{"../../etc/passwd", "passwd"},
		{`C:\Users\kim\photo.jpg`, "photo.jpg"},
		{"배치도.png", "배치도.png"},
		{".hidden", "hidden"},
		{"..", ""},
		{"", ""},
		{strings.Repeat("a", 200) + ".png", strings.Repeat("a", 116) + ".png"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SanitizeFilename(tt.in), tt.in)
	}
}
