package domain

import (
	"fmt"
	"strconv"
)

// MaxUploadBytes is the fixed ceiling for a single upload.
const MaxUploadBytes = 30 * 1024 * 1024

// StagedPrefix is the temporary namespace for objects awaiting promotion.
const StagedPrefix = "service/.tmp/"

// FileDescriptor describes a file a client intends to upload. The bytes
// themselves never pass through this service.
type FileDescriptor struct {
	Name        string
	Size        int64
	ContentType string
}

// StagedObjectKey builds the temporary key for an upload started at the given
// epoch-millisecond timestamp. Keys are time-based with a filename suffix and
// are not collision-free across concurrent uploads within the same
// millisecond; that limitation is accepted.
func StagedObjectKey(epochMillis int64, filename string) string {
	return StagedPrefix + strconv.FormatInt(epochMillis, 10) + "-" + filename
}

// PromoteTarget identifies the permanent, entity-scoped home of a staged
// object.
type PromoteTarget struct {
	EntityName string
	FieldName  string
	EntityID   string
}

// PermanentKey derives the deterministic permanent object key. Promotion
// overwrites whatever already lives at this key, making it idempotent per
// (entity, field) pair.
func (t PromoteTarget) PermanentKey() string {
	return fmt.Sprintf("%s/%s/%s", t.EntityName, t.FieldName, t.EntityID)
}
