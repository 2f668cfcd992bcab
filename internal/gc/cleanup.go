// Package gc strips media references whose backing asset no longer exists.
package gc

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rcliao/course-media/internal/logger"
	"github.com/rcliao/course-media/internal/model"
)

// ExistsFunc reports whether the asset behind a media id exists.
type ExistsFunc func(ctx context.Context, mediaID string) (bool, error)

// Result is the output of Cleanup.
type Result struct {
	CleanedContent  model.ContentTree `json:"cleanedContent"`
	RemovedMediaIDs []string          `json:"removedMediaIds"`
}

// Collector runs cleanups. The zero value is usable.
type Collector struct {
	log          *logger.Logger
	checkTimeout time.Duration
}

// Option configures a Collector.
type Option func(*Collector)

// WithLogger sets the logger.
func WithLogger(l *logger.Logger) Option {
	return func(c *Collector) { c.log = l }
}

// WithCheckTimeout bounds each existence check. A check that times out
// counts as a failed check. Zero disables the bound.
func WithCheckTimeout(d time.Duration) Option {
	return func(c *Collector) { c.checkTimeout = d }
}

// New creates a Collector.
func New(opts ...Option) *Collector {
	c := &Collector{}
	for _, opt := range opts {
		opt(c)
	}
	if c.log == nil {
		c.log = logger.Nop()
	}
	return c
}

// Cleanup returns a copy of tree with every reference removed whose existence
// check returned false, returned an error or panicked. Checks for all
// references run concurrently and are fully collected before the tree is
// touched. RemovedMediaIDs follows traversal order (welcome, objectives,
// topics by index) regardless of completion order. Check failures are never
// returned to the caller.
func Cleanup(ctx context.Context, tree model.ContentTree, exists ExistsFunc) Result {
	return New().Cleanup(ctx, tree, exists)
}

// Cleanup is the package-level Cleanup with the collector's options applied.
func (c *Collector) Cleanup(ctx context.Context, tree model.ContentTree, exists ExistsFunc) Result {
	out := tree.Clone()
	pages := out.Pages()

	var refs []model.MediaReference
	for _, p := range pages {
		refs = append(refs, p.Page.Media...)
	}

	keep := make([]bool, len(refs))
	var g errgroup.Group
	for i, ref := range refs {
		g.Go(func() error {
			ok, err := c.check(ctx, exists, ref.ID)
			if err != nil {
				c.log.Warn("existence check failed, removing reference", "media_id", ref.ID, "error", err)
			}
			keep[i] = ok && err == nil
			return nil
		})
	}
	_ = g.Wait()

	removed := []string{}
	idx := 0
	for _, p := range pages {
		media := p.Page.Media
		if media == nil {
			continue
		}
		kept := make([]model.MediaReference, 0, len(media))
		for _, m := range media {
			if keep[idx] {
				kept = append(kept, m)
			} else {
				removed = append(removed, m.ID)
			}
			idx++
		}
		p.Page.Media = kept
	}

	if len(removed) > 0 {
		c.log.Info("removed orphaned media references", "count", len(removed), "checked", len(refs))
	}
	return Result{CleanedContent: out, RemovedMediaIDs: removed}
}

func (c *Collector) check(ctx context.Context, exists ExistsFunc, id string) (ok bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			ok, err = false, fmt.Errorf("existence check panicked: %v", r)
		}
	}()
	if c.checkTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.checkTimeout)
		defer cancel()
	}
	return exists(ctx, id)
}
