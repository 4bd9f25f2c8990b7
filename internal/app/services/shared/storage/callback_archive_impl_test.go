package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeStorage struct {
	bucket      string
	object      string
	contentType string
	data        []byte
	err         error
}

func (f *fakeStorage) UploadObject(ctx context.Context, bucketName, objectName, contentType string, data []byte) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.bucket, f.object, f.contentType, f.data = bucketName, objectName, contentType, data
	return objectName, nil
}

func TestCallbackArchiveStoresJSON(t *testing.T) {
	fake := &fakeStorage{}
	archive := NewCallbackArchive(fake, "payments", "/callbacks/", zap.NewNop()).(*callbackArchive)
	archive.now = func() time.Time { return time.Unix(0, 1700000000000000000) }

	name, err := archive.Archive(context.Background(), "ORDER-1", map[string]string{"resultCode": "00"})
	require.NoError(t, err)

	assert.Equal(t, "callbacks/ORDER-1/1700000000000000000.json", name)
	assert.Equal(t, "payments", fake.bucket)
	assert.Equal(t, "application/json", fake.contentType)
	assert.JSONEq(t, `{"resultCode":"00"}`, string(fake.data))
}

func TestCallbackArchivePropagatesStorageError(t *testing.T) {
	archive := NewCallbackArchive(&fakeStorage{err: errors.New("bucket gone")}, "payments", "", zap.NewNop())

	_, err := archive.Archive(context.Background(), "ORDER-1", struct{}{})
	assert.Error(t, err)
}
