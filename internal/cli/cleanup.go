package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rcliao/course-media/internal/gc"
)

func init() {
	cmd := &cobra.Command{
		Use:   "cleanup <file.scormproj>",
		Short: "Remove references to media that no longer exist",
		Long: "Check every media reference of a project against the store and drop the ones " +
			"whose asset is missing or cannot be checked.",
		Args: cobra.ExactArgs(1),
		RunE: runCleanup,
	}

	cmd.Flags().Bool("dry-run", false, "Report what would be removed without writing the project")

	RootCmd.AddCommand(cmd)
}

type cleanupResult struct {
	ProjectID       string   `json:"projectId"`
	Checked         int      `json:"checked"`
	RemovedMediaIDs []string `json:"removedMediaIds"`
	Saved           bool     `json:"saved"`
}

func runCleanup(cmd *cobra.Command, args []string) error {
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	f, tree, release := openProject(args[0])
	defer release()
	projectID := f.ID()

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	collector := gc.New(gc.WithLogger(log), gc.WithCheckTimeout(cfg.CheckTimeout()))
	result := collector.Cleanup(cmd.Context(), tree, func(ctx context.Context, mediaID string) (bool, error) {
		return s.Exists(ctx, projectID, mediaID)
	})

	// every check fails once the run is cancelled
	if err := cmd.Context().Err(); err != nil {
		log.Warn("cleanup interrupted, project left unchanged", "project_id", projectID, "error", err)
		return fmt.Errorf("cleanup interrupted: %w", err)
	}

	res := cleanupResult{ProjectID: projectID, Checked: tree.MediaCount(), RemovedMediaIDs: result.RemovedMediaIDs}
	if len(result.RemovedMediaIDs) > 0 && !dryRun {
		f.Content = &result.CleanedContent
		if err := f.Save(); err != nil {
			exitErr("save project", err)
		}
		res.Saved = true
	}

	if textOutput() {
		fmt.Fprintf(cmd.OutOrStdout(), "Project %s: checked %d, removed %d, saved %t\n",
			res.ProjectID, res.Checked, len(res.RemovedMediaIDs), res.Saved)
		if len(res.RemovedMediaIDs) > 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "removed: "+strings.Join(res.RemovedMediaIDs, ", "))
		}
		return nil
	}
	printJSON(cmd, res)
	return nil
}
