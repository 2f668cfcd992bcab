package store

import (
	"context"
	"os"
)

// Stats holds database statistics.
type Stats struct {
	DBPath      string         `json:"db_path"`
	DBSizeBytes int64          `json:"db_size_bytes"`
	TotalAssets int            `json:"total_assets"`
	TotalBytes  int64          `json:"total_bytes"`
	Projects    []ProjectStats `json:"projects"`
}

// ProjectStats holds per-project counts.
type ProjectStats struct {
	ProjectID string         `json:"project_id"`
	Count     int            `json:"count"`
	Bytes     int64          `json:"bytes"`
	ByType    map[string]int `json:"by_type"`
}

// Stats returns database statistics.
func (s *SQLiteStore) Stats(ctx context.Context, dbPath string) (*Stats, error) {
	st := &Stats{DBPath: dbPath, Projects: []ProjectStats{}}

	if info, err := os.Stat(dbPath); err == nil {
		st.DBSizeBytes = info.Size()
	}

	s.db.QueryRowContext(ctx, `SELECT COUNT(*), COALESCE(SUM(size), 0) FROM media_assets`).
		Scan(&st.TotalAssets, &st.TotalBytes)

	rows, err := s.db.QueryContext(ctx, `
		SELECT project_id, type, COUNT(*), COALESCE(SUM(size), 0)
		FROM media_assets
		GROUP BY project_id, type ORDER BY project_id, type`)
	if err != nil {
		return st, err
	}
	defer rows.Close()

	index := map[string]int{}
	for rows.Next() {
		var project, typ string
		var count int
		var bytes int64
		if err := rows.Scan(&project, &typ, &count, &bytes); err != nil {
			return st, err
		}
		i, ok := index[project]
		if !ok {
			i = len(st.Projects)
			index[project] = i
			st.Projects = append(st.Projects, ProjectStats{ProjectID: project, ByType: map[string]int{}})
		}
		ps := &st.Projects[i]
		ps.Count += count
		ps.Bytes += bytes
		ps.ByType[typ] = count
	}

	return st, rows.Err()
}
