package assetcache

import (
	"fmt"
	"sync"

	"github.com/oklog/ulid/v2"

	"github.com/rcliao/course-media/internal/model"
)

// Handles issues and revokes displayable handles for asset payloads.
type Handles interface {
	Create(rec *model.AssetRecord) (string, error)
	Revoke(handle string)
}

// BlobRegistry is an in-memory Handles implementation. Handles look like
// blob:<prefix>/<ulid> and stay readable through Open until revoked.
type BlobRegistry struct {
	prefix string

	mu    sync.RWMutex
	blobs map[string]blob
}

type blob struct {
	data     []byte
	mimeType string
}

// NewBlobRegistry creates a registry whose handles carry prefix.
func NewBlobRegistry(prefix string) *BlobRegistry {
	if prefix == "" {
		prefix = "course-media"
	}
	return &BlobRegistry{prefix: prefix, blobs: map[string]blob{}}
}

func (r *BlobRegistry) Create(rec *model.AssetRecord) (string, error) {
	if rec == nil {
		return "", fmt.Errorf("nil record")
	}
	handle := fmt.Sprintf("blob:%s/%s", r.prefix, ulid.Make())
	data := append([]byte(nil), rec.Data...)

	r.mu.Lock()
	r.blobs[handle] = blob{data: data, mimeType: rec.Metadata.MimeType}
	r.mu.Unlock()
	return handle, nil
}

func (r *BlobRegistry) Revoke(handle string) {
	r.mu.Lock()
	delete(r.blobs, handle)
	r.mu.Unlock()
}

// Open returns the payload and mime type behind a live handle.
func (r *BlobRegistry) Open(handle string) ([]byte, string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.blobs[handle]
	return b.data, b.mimeType, ok
}

// Len returns the number of live handles.
func (r *BlobRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.blobs)
}
