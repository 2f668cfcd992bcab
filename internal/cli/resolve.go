package cli

import (
	"errors"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/rcliao/course-media/internal/assetcache"
	"github.com/rcliao/course-media/internal/project"
)

func init() {
	cmd := &cobra.Command{
		Use:   "resolve [media-id...]",
		Short: "Resolve media ids to displayable handles",
		Long: "Resolve media ids of a project through the asset cache. With a .scormproj path and " +
			"no ids, every reference in the project is resolved.",
		Run: runResolve,
	}

	cmd.Flags().StringP("project", "p", "", "Project id or .scormproj path (required)")

	cmd.MarkFlagRequired("project")

	RootCmd.AddCommand(cmd)
}

type resolveResult struct {
	MediaID string            `json:"mediaId"`
	Found   bool              `json:"found"`
	Size    int64             `json:"size,omitempty"`
	Entry   *assetcache.Entry `json:"entry,omitempty"`
}

func runResolve(cmd *cobra.Command, args []string) {
	projectArg, _ := cmd.Flags().GetString("project")
	projectID := project.ExtractProjectID(projectArg)

	ids := args
	if len(ids) == 0 {
		if !strings.HasSuffix(projectArg, project.Extension) {
			exitErr("resolve", errors.New("give media ids or a .scormproj path"))
		}
		f, err := project.Load(projectArg)
		if err != nil {
			exitErr("load project", err)
		}
		tree, err := f.Tree()
		if err != nil {
			exitErr("load project", err)
		}
		projectID = f.ID()
		for _, p := range tree.Pages() {
			for _, m := range p.Page.Media {
				ids = append(ids, m.ID)
			}
		}
	}

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	registry := assetcache.NewBlobRegistry(cfg.Cache.HandlePrefix)
	cache := assetcache.New(s, assetcache.WithLogger(log), assetcache.WithHandles(registry))
	defer cache.Close()
	cache.SetActiveProject(projectID)

	results := make([]resolveResult, len(ids))
	g, ctx := errgroup.WithContext(cmd.Context())
	for i, id := range ids {
		g.Go(func() error {
			e, err := cache.Resolve(ctx, id)
			if err != nil {
				return err
			}
			results[i] = resolveResult{MediaID: id, Found: e != nil, Entry: e}
			if e != nil {
				if data, _, ok := registry.Open(e.Handle); ok {
					results[i].Size = int64(len(data))
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		exitErr("resolve", err)
	}
	log.Debug("resolved media", "project_id", projectID, "requested", len(ids), "cached", cache.Len())

	if textOutput() {
		rows := make([][]string, 0, len(results))
		for _, r := range results {
			if r.Entry == nil {
				rows = append(rows, []string{r.MediaID, "-", "missing", ""})
				continue
			}
			size := ""
			if r.Size > 0 {
				size = humanize.Bytes(uint64(r.Size))
			}
			rows = append(rows, []string{r.MediaID, string(r.Entry.Type), r.Entry.Handle, size})
		}
		printTable(cmd, []string{"Media", "Type", "Handle", "Size"}, rows,
			[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight})
		return
	}
	printJSON(cmd, results)
}
