package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"github.com/rcliao/course-media/internal/logger"
	"github.com/rcliao/course-media/internal/model"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db  *sql.DB
	log *logger.Logger

	mu      sync.Mutex // guards entropy
	entropy *rand.Rand
}

// Option configures a SQLiteStore.
type Option func(*SQLiteStore)

// WithLogger sets the logger used for contamination and maintenance messages.
func WithLogger(l *logger.Logger) Option {
	return func(s *SQLiteStore) { s.log = l }
}

// NewSQLiteStore opens or creates a SQLite database at the given path.
func NewSQLiteStore(dbPath string, opts ...Option) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &SQLiteStore{
		db:      db,
		log:     logger.Nop(),
		entropy: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) newID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), s.entropy).String()
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS media_assets (
		rev         TEXT NOT NULL,
		project_id  TEXT NOT NULL,
		media_id    TEXT NOT NULL,
		type        TEXT NOT NULL,
		page_id     TEXT NOT NULL DEFAULT '',
		data        BLOB NOT NULL,
		size        INTEGER NOT NULL,
		metadata    TEXT NOT NULL,
		created_at  TEXT NOT NULL,
		PRIMARY KEY (project_id, media_id)
	);
	CREATE INDEX IF NOT EXISTS idx_media_project_type ON media_assets(project_id, type);
	CREATE INDEX IF NOT EXISTS idx_media_project_page ON media_assets(project_id, page_id);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteStore) Put(ctx context.Context, p PutParams) (*model.AssetRecord, error) {
	if p.ProjectID == "" || p.MediaID == "" {
		return nil, fmt.Errorf("project and media id are required")
	}
	if !model.ValidMediaTypes[p.Metadata.Type] {
		return nil, fmt.Errorf("invalid media type %q", p.Metadata.Type)
	}

	meta, stripped := p.Metadata.Sanitize()
	if len(stripped) > 0 {
		s.log.Warn("stripped foreign metadata before store",
			"project_id", p.ProjectID, "media_id", p.MediaID, "type", meta.Type, "fields", stripped)
	}

	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return nil, fmt.Errorf("encode metadata: %w", err)
	}

	now := time.Now().UTC()
	rev := s.newID()
	data := p.Data
	if data == nil {
		data = []byte{}
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO media_assets (rev, project_id, media_id, type, page_id, data, size, metadata, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(project_id, media_id) DO UPDATE SET
		   rev = excluded.rev, type = excluded.type, page_id = excluded.page_id,
		   data = excluded.data, size = excluded.size, metadata = excluded.metadata,
		   created_at = excluded.created_at`,
		rev, p.ProjectID, p.MediaID, string(meta.Type), meta.PageID, data, len(data),
		string(metaJSON), now.Format(time.RFC3339Nano))
	if err != nil {
		return nil, fmt.Errorf("insert media: %w", err)
	}

	return &model.AssetRecord{
		ID:        p.MediaID,
		ProjectID: p.ProjectID,
		Rev:       rev,
		Size:      int64(len(data)),
		Metadata:  meta,
		CreatedAt: now,
	}, nil
}

const assetColumns = `media_id, project_id, rev, size, metadata, created_at`

func (s *SQLiteStore) Get(ctx context.Context, projectID, mediaID string) (*model.AssetRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+assetColumns+`, data FROM media_assets WHERE project_id = ? AND media_id = ?`,
		projectID, mediaID)

	a, err := scanAsset(row, true)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s/%s", ErrNotFound, projectID, mediaID)
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *SQLiteStore) Exists(ctx context.Context, projectID, mediaID string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM media_assets WHERE project_id = ? AND media_id = ?`,
		projectID, mediaID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *SQLiteStore) Delete(ctx context.Context, projectID, mediaID string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM media_assets WHERE project_id = ? AND media_id = ?`, projectID, mediaID)
	return err
}

func (s *SQLiteStore) List(ctx context.Context, p ListParams) ([]model.AssetRecord, error) {
	// negative means unlimited (sqlite LIMIT -1)
	limit := p.Limit
	if limit == 0 {
		limit = 1000
	}

	where := []string{"project_id = ?"}
	args := []interface{}{p.ProjectID}
	if p.Type != "" {
		where = append(where, "type = ?")
		args = append(args, string(p.Type))
	}
	if p.PageID != "" {
		where = append(where, "page_id = ?")
		args = append(args, p.PageID)
	}

	cols := assetColumns
	if p.WithData {
		cols += ", data"
	}
	query := fmt.Sprintf(`SELECT %s FROM media_assets WHERE %s ORDER BY media_id LIMIT ?`,
		cols, strings.Join(where, " AND "))
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var assets []model.AssetRecord
	for rows.Next() {
		a, err := scanAsset(rows, p.WithData)
		if err != nil {
			return nil, err
		}
		assets = append(assets, a)
	}
	return assets, rows.Err()
}

// AssetMap returns the project's assets keyed by media id, without payloads.
func (s *SQLiteStore) AssetMap(ctx context.Context, projectID string) (map[string]model.AssetRecord, error) {
	assets, err := s.List(ctx, ListParams{ProjectID: projectID, Limit: -1})
	if err != nil {
		return nil, err
	}
	m := make(map[string]model.AssetRecord, len(assets))
	for _, a := range assets {
		m[a.ID] = a
	}
	return m, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanAsset(row scanner, withData bool) (model.AssetRecord, error) {
	var a model.AssetRecord
	var metaJSON, createdAt string

	dest := []interface{}{&a.ID, &a.ProjectID, &a.Rev, &a.Size, &metaJSON, &createdAt}
	if withData {
		dest = append(dest, &a.Data)
	}
	if err := row.Scan(dest...); err != nil {
		return a, err
	}

	a.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	if err := json.Unmarshal([]byte(metaJSON), &a.Metadata); err != nil {
		return a, fmt.Errorf("decode metadata for %s: %w", a.ID, err)
	}
	return a, nil
}
