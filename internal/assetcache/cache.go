// Package assetcache resolves media ids of the active project to displayable
// handles and owns the lifetime of those handles.
//
// Entries are keyed by (project, media id). An entry moves from absent to
// resolving (one in-flight fetch per id) to resolved, and from there to revoked
// when its project is invalidated or stale when its asset has been deleted
// behind the cache's back. Stale entries are detected on the next access and
// behave as absent.
package assetcache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/rcliao/course-media/internal/logger"
	"github.com/rcliao/course-media/internal/model"
	"github.com/rcliao/course-media/internal/store"
)

var (
	// ErrNoActiveProject is returned by Resolve before SetActiveProject.
	ErrNoActiveProject = errors.New("no active project")

	// ErrProjectInactive is returned when the project was switched or
	// invalidated while its asset was being fetched. Nothing is cached.
	ErrProjectInactive = errors.New("project no longer active")
)

// Source is the backing store the cache reads from. Get may report a missing
// asset either as (nil, nil) or with store.ErrNotFound.
type Source interface {
	Get(ctx context.Context, projectID, mediaID string) (*model.AssetRecord, error)
	Exists(ctx context.Context, projectID, mediaID string) (bool, error)
}

// Entry is a resolved asset.
type Entry struct {
	ProjectID  string          `json:"projectId"`
	MediaID    string          `json:"mediaId"`
	Handle     string          `json:"handle"`
	Type       model.MediaType `json:"type"`
	Details    model.Details   `json:"details"`
	ResolvedAt time.Time       `json:"resolvedAt"`

	owned bool // handle was issued by Handles and must be revoked
}

type key struct {
	project string
	media   string
}

// Cache is safe for concurrent use.
type Cache struct {
	src     Source
	handles Handles
	log     *logger.Logger
	now     func() time.Time

	group singleflight.Group

	mu      sync.Mutex
	active  string
	epochs  map[string]uint64
	entries map[key]*Entry
}

// Option configures a Cache.
type Option func(*Cache)

// WithLogger sets the logger.
func WithLogger(l *logger.Logger) Option {
	return func(c *Cache) { c.log = l }
}

// WithHandles replaces the default BlobRegistry.
func WithHandles(h Handles) Option {
	return func(c *Cache) { c.handles = h }
}

// WithNow sets the clock, for tests.
func WithNow(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// New creates a Cache reading from src.
func New(src Source, opts ...Option) *Cache {
	c := &Cache{
		src:     src,
		log:     logger.Nop(),
		now:     time.Now,
		epochs:  map[string]uint64{},
		entries: map[key]*Entry{},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.handles == nil {
		c.handles = NewBlobRegistry("")
	}
	return c
}

// ActiveProject returns the project Resolve currently serves.
func (c *Cache) ActiveProject() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// SetActiveProject switches the cache to projectID. Entries of the previously
// active project are revoked before the switch takes effect.
func (c *Cache) SetActiveProject(projectID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active == projectID {
		return
	}
	if c.active != "" {
		n := c.invalidateLocked(c.active)
		c.log.Debug("switched project", "from", c.active, "to", projectID, "revoked", n)
	}
	c.active = projectID
}

// InvalidateProject revokes and evicts every entry of projectID. Resolutions
// of that project still in flight will not be cached.
func (c *Cache) InvalidateProject(projectID string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.invalidateLocked(projectID)
}

func (c *Cache) invalidateLocked(projectID string) int {
	c.epochs[projectID]++
	n := 0
	for k, e := range c.entries {
		if k.project != projectID {
			continue
		}
		c.revokeLocked(k, e)
		n++
	}
	return n
}

func (c *Cache) revokeLocked(k key, e *Entry) {
	if e.owned {
		c.handles.Revoke(e.Handle)
	}
	delete(c.entries, k)
}

// Forget evicts a single entry, typically after its asset was deleted.
func (c *Cache) Forget(projectID, mediaID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	k := key{projectID, mediaID}
	if e, ok := c.entries[k]; ok {
		c.revokeLocked(k, e)
	}
}

// Len returns the number of cached entries across all projects.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Close revokes every handle.
func (c *Cache) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k, e := range c.entries {
		c.revokeLocked(k, e)
	}
}

// Resolve returns the entry for mediaID in the active project, fetching and
// caching it on first use. It returns (nil, nil) when the asset does not exist.
func (c *Cache) Resolve(ctx context.Context, mediaID string) (*Entry, error) {
	c.mu.Lock()
	project := c.active
	epoch := c.epochs[project]
	k := key{project, mediaID}
	e, hit := c.entries[k]
	c.mu.Unlock()

	if project == "" {
		return nil, ErrNoActiveProject
	}

	if hit {
		ok, err := c.src.Exists(ctx, project, mediaID)
		if err != nil {
			c.log.Warn("existence check failed, serving cached entry", "project_id", project, "media_id", mediaID, "error", err)
			return e, nil
		}
		if ok {
			return e, nil
		}
		c.mu.Lock()
		if cur, ok := c.entries[k]; ok && cur == e {
			c.revokeLocked(k, e)
		}
		c.mu.Unlock()
		c.log.Debug("evicted stale entry", "project_id", project, "media_id", mediaID)
		return nil, nil
	}

	// the epoch keeps callers arriving after an invalidation out of a flight
	// whose result will be discarded
	flight := fmt.Sprintf("%s\x00%d\x00%s", project, epoch, mediaID)
	// the shared fetch outlives any single caller; each caller stops
	// waiting on its own context
	ch := c.group.DoChan(flight, func() (interface{}, error) {
		return c.load(context.WithoutCancel(ctx), project, epoch, mediaID)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-ch:
		if r.Err != nil {
			return nil, r.Err
		}
		entry, _ := r.Val.(*Entry)
		return entry, nil
	}
}

func (c *Cache) load(ctx context.Context, project string, epoch uint64, mediaID string) (*Entry, error) {
	rec, err := c.src.Get(ctx, project, mediaID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", mediaID, err)
	}
	if rec == nil {
		return nil, nil
	}

	details, stripped := Guard(rec)
	if len(stripped) > 0 {
		c.log.Warn("contaminated media record, ignoring foreign fields",
			"project_id", project, "media_id", mediaID, "type", rec.Metadata.Type, "fields", stripped)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.active != project || c.epochs[project] != epoch {
		c.log.Debug("discarding resolution for inactive project", "project_id", project, "media_id", mediaID)
		return nil, ErrProjectInactive
	}
	k := key{project, mediaID}
	if existing, ok := c.entries[k]; ok {
		return existing, nil
	}

	e := &Entry{
		ProjectID:  project,
		MediaID:    mediaID,
		Type:       details.MediaType(),
		Details:    details,
		ResolvedAt: c.now(),
	}
	if v, ok := details.(model.VideoDetails); ok && v.IsYouTube && v.EmbedURL != "" {
		e.Handle = v.EmbedURL
	} else {
		handle, err := c.handles.Create(rec)
		if err != nil {
			return nil, fmt.Errorf("create handle for %s: %w", mediaID, err)
		}
		e.Handle = handle
		e.owned = true
	}
	c.entries[k] = e
	return e, nil
}

// Guard returns the type-specific details of a record, built from its
// declared type only, and the names of metadata fields that did not belong
// to that type.
func Guard(rec *model.AssetRecord) (model.Details, []string) {
	clean, stripped := rec.Metadata.Sanitize()
	return model.DetailsFor(clean), stripped
}
