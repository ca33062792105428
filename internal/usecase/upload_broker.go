package usecase

import (
	"context"
	"log/slog"
	"time"

	"session-hub/internal/domain"
)

// BeginUploadResult holds the staged key and the URL the client uploads to.
type BeginUploadResult struct {
	StagedKey string
	UploadURL string
}

// PromoteResult holds the permanent key and its public URL after promotion.
type PromoteResult struct {
	PermanentKey string
	PublicURL    string
}

// UploadBroker stages client uploads in a temporary storage namespace and
// promotes them to permanent, entity-scoped keys on confirmation. It only
// orchestrates key lifecycle; object bytes travel directly between the client
// and storage.
type UploadBroker struct {
	storage domain.ObjectStorage
	now     func() time.Time
	logger  *slog.Logger
}

// NewUploadBroker creates a new upload broker.
func NewUploadBroker(storage domain.ObjectStorage, logger *slog.Logger) *UploadBroker {
	return &UploadBroker{storage: storage, now: time.Now, logger: logger}
}

// BeginUpload validates the file size, derives a staged key from the current
// timestamp and original filename, and requests a time-limited upload URL.
// The size check runs before any storage call.
func (b *UploadBroker) BeginUpload(ctx context.Context, file domain.FileDescriptor) (*BeginUploadResult, error) {
	if file.Size > domain.MaxUploadBytes {
		return nil, domain.ErrPayloadTooLarge
	}

	key := domain.StagedObjectKey(b.now().UnixMilli(), file.Name)

	url, err := b.storage.CreateUploadURL(ctx, key)
	if err != nil {
		return nil, err
	}

	b.logger.InfoContext(ctx, "upload staged", "key", key, "size", file.Size)
	return &BeginUploadResult{StagedKey: key, UploadURL: url}, nil
}

// Promote copies the staged object to its permanent key, overwriting any
// prior object there, and returns the public URL. The staged object is left
// in place, and the owning entity is not updated here; the caller persists
// the returned URL through the entity-update contract. A staged key that was
// never uploaded surfaces as domain.ErrObjectNotFound.
func (b *UploadBroker) Promote(ctx context.Context, stagedKey string, target domain.PromoteTarget) (*PromoteResult, error) {
	permanentKey := target.PermanentKey()

	url, err := b.storage.Copy(ctx, stagedKey, permanentKey)
	if err != nil {
		return nil, err
	}

	b.logger.InfoContext(ctx, "upload promoted",
		"staged_key", stagedKey,
		"permanent_key", permanentKey)
	return &PromoteResult{PermanentKey: permanentKey, PublicURL: url}, nil
}
