// Package store provides the media asset storage interface and SQLite implementation.
package store

import (
	"context"
	"errors"

	"github.com/rcliao/course-media/internal/model"
)

// ErrNotFound is returned when a project has no asset with the requested id.
var ErrNotFound = errors.New("media not found")

// PutParams holds parameters for storing an asset.
type PutParams struct {
	ProjectID string
	MediaID   string
	Data      []byte
	Metadata  model.Metadata
}

// ListParams holds parameters for listing assets.
type ListParams struct {
	ProjectID string
	Type      model.MediaType
	PageID    string
	Limit     int
	WithData  bool
}

// Store defines the media storage interface.
type Store interface {
	// Put stores or replaces an asset. Metadata foreign to the declared type is
	// stripped before it is written.
	Put(ctx context.Context, p PutParams) (*model.AssetRecord, error)

	// Get retrieves an asset including its payload. Returns ErrNotFound if absent.
	Get(ctx context.Context, projectID, mediaID string) (*model.AssetRecord, error)

	// Exists reports whether an asset is stored.
	Exists(ctx context.Context, projectID, mediaID string) (bool, error)

	// Delete removes an asset. Deleting an absent asset is not an error.
	Delete(ctx context.Context, projectID, mediaID string) error

	// List lists assets matching the given filters.
	List(ctx context.Context, p ListParams) ([]model.AssetRecord, error)

	// Close closes the store.
	Close() error
}
