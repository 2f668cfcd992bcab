package store

import (
	"context"

	"github.com/rcliao/course-media/internal/model"
)

// ExportAll returns every asset of a project including payloads.
func (s *SQLiteStore) ExportAll(ctx context.Context, projectID string) ([]model.AssetRecord, error) {
	return s.List(ctx, ListParams{ProjectID: projectID, Limit: -1, WithData: true})
}

// Import stores assets from an export. An asset that already exists is replaced.
// When projectID is non-empty every record is imported into that project.
func (s *SQLiteStore) Import(ctx context.Context, projectID string, assets []model.AssetRecord) (int, error) {
	imported := 0
	for _, a := range assets {
		target := a.ProjectID
		if projectID != "" {
			target = projectID
		}
		_, err := s.Put(ctx, PutParams{
			ProjectID: target,
			MediaID:   a.ID,
			Data:      a.Data,
			Metadata:  a.Metadata,
		})
		if err != nil {
			return imported, err
		}
		imported++
	}
	return imported, nil
}
