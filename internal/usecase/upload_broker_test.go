package usecase

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"session-hub/internal/domain"

	"github.com/stretchr/testify/assert"
)

// mockStorage implements domain.ObjectStorage for testing.
type mockStorage struct {
	uploadURLCalls []string
	copyCalls      [][2]string
	copyErr        error
}

func (m *mockStorage) CreateUploadURL(_ context.Context, key string) (string, error) {
	m.uploadURLCalls = append(m.uploadURLCalls, key)
	return "https://storage.test/presigned/" + key, nil
}

func (m *mockStorage) Copy(_ context.Context, srcKey, dstKey string) (string, error) {
	if m.copyErr != nil {
		return "", m.copyErr
	}
	m.copyCalls = append(m.copyCalls, [2]string{srcKey, dstKey})
	return "https://storage.test/public/" + dstKey, nil
}

func (m *mockStorage) Delete(_ context.Context, _ string) error {
	return nil
}

func TestUploadBroker_BeginUpload(t *testing.T) {
	storage := &mockStorage{}
	broker := NewUploadBroker(storage, slog.Default())
	broker.now = func() time.Time { return time.UnixMilli(123) }

	result, err := broker.BeginUpload(context.Background(), domain.FileDescriptor{
		Name:        "a.png",
		Size:        1024,
		ContentType: "image/png",
	})

	assert.NoError(t, err)
	assert.Equal(t, "service/.tmp/123-a.png", result.StagedKey)
	assert.Equal(t, "https://storage.test/presigned/service/.tmp/123-a.png", result.UploadURL)
}

func TestUploadBroker_BeginUpload_PayloadTooLarge(t *testing.T) {
	storage := &mockStorage{}
	broker := NewUploadBroker(storage, slog.Default())

	result, err := broker.BeginUpload(context.Background(), domain.FileDescriptor{
		Name: "big.bin",
		Size: 31 * 1024 * 1024,
	})

	assert.Nil(t, result)
	assert.True(t, errors.Is(err, domain.ErrPayloadTooLarge))
	assert.Empty(t, storage.uploadURLCalls, "size check runs before any storage call")
}

func TestUploadBroker_BeginUpload_ExactLimitAllowed(t *testing.T) {
	storage := &mockStorage{}
	broker := NewUploadBroker(storage, slog.Default())

	_, err := broker.BeginUpload(context.Background(), domain.FileDescriptor{
		Name: "edge.bin",
		Size: domain.MaxUploadBytes,
	})

	assert.NoError(t, err)
}

func TestUploadBroker_Promote(t *testing.T) {
	storage := &mockStorage{}
	broker := NewUploadBroker(storage, slog.Default())

	result, err := broker.Promote(context.Background(), "service/.tmp/123-a.png", domain.PromoteTarget{
		EntityName: "user",
		FieldName:  "avatar",
		EntityID:   "u1",
	})

	assert.NoError(t, err)
	assert.Equal(t, "user/avatar/u1", result.PermanentKey)
	assert.Contains(t, result.PublicURL, "user/avatar/u1")
	assert.Equal(t, [2]string{"service/.tmp/123-a.png", "user/avatar/u1"}, storage.copyCalls[0])
}

func TestUploadBroker_Promote_MissingStagedObject(t *testing.T) {
	storage := &mockStorage{copyErr: domain.ErrObjectNotFound}
	broker := NewUploadBroker(storage, slog.Default())

	result, err := broker.Promote(context.Background(), "service/.tmp/999-never.png", domain.PromoteTarget{
		EntityName: "user",
		FieldName:  "avatar",
		EntityID:   "u1",
	})

	assert.Nil(t, result)
	assert.True(t, errors.Is(err, domain.ErrObjectNotFound))
}
