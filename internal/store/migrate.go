package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rcliao/course-media/internal/blocks"
	"github.com/rcliao/course-media/internal/model"
)

// PageIDFix records one corrected page assignment.
type PageIDFix struct {
	MediaID string `json:"media_id"`
	From    string `json:"from"`
	To      string `json:"to"`
}

type pageIDUpdate struct {
	fix  PageIDFix
	meta model.Metadata
}

// PlanPageIDs reports the corrections MigratePageIDs would make without
// writing anything.
func (s *SQLiteStore) PlanPageIDs(ctx context.Context, projectID string) ([]PageIDFix, error) {
	updates, err := s.planPageIDs(ctx, projectID)
	if err != nil {
		return nil, err
	}
	fixes := make([]PageIDFix, 0, len(updates))
	for _, u := range updates {
		fixes = append(fixes, u.fix)
	}
	return fixes, nil
}

func (s *SQLiteStore) planPageIDs(ctx context.Context, projectID string) ([]pageIDUpdate, error) {
	assets, err := s.List(ctx, ListParams{ProjectID: projectID, Limit: -1})
	if err != nil {
		return nil, err
	}
	var updates []pageIDUpdate
	for _, a := range assets {
		want, ok := blocks.ExpectedPageID(a.ID)
		if !ok || a.Metadata.PageID == want {
			continue
		}
		meta := a.Metadata
		meta.PageID = want
		updates = append(updates, pageIDUpdate{
			fix:  PageIDFix{MediaID: a.ID, From: a.Metadata.PageID, To: want},
			meta: meta,
		})
	}
	return updates, nil
}

// MigratePageIDs rewrites the page id of every narration asset in a project
// whose stored page differs from the page its id belongs to. Non-narration
// assets are left alone.
func (s *SQLiteStore) MigratePageIDs(ctx context.Context, projectID string) ([]PageIDFix, error) {
	updates, err := s.planPageIDs(ctx, projectID)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	fixes := []PageIDFix{}
	for _, u := range updates {
		metaJSON, err := json.Marshal(u.meta)
		if err != nil {
			return nil, fmt.Errorf("encode metadata for %s: %w", u.fix.MediaID, err)
		}
		_, err = tx.ExecContext(ctx,
			`UPDATE media_assets SET page_id = ?, metadata = ? WHERE project_id = ? AND media_id = ?`,
			u.fix.To, string(metaJSON), projectID, u.fix.MediaID)
		if err != nil {
			return nil, fmt.Errorf("update %s: %w", u.fix.MediaID, err)
		}
		fixes = append(fixes, u.fix)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	if len(fixes) > 0 {
		s.log.Info("migrated media page ids", "project_id", projectID, "fixes", len(fixes))
	}
	return fixes, nil
}
