package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rcliao/course-media/internal/blocks"
	"github.com/rcliao/course-media/internal/drift"
)

func init() {
	cmd := &cobra.Command{
		Use:   "repair <file.scormproj>",
		Short: "Repair systematic narration drift",
		Long: "Remap topic narration references to the ids that belong in their blocks, using the " +
			"stored assets of the project. Only systematic drift is repaired unless --force is given.",
		Args: cobra.ExactArgs(1),
		RunE: runRepair,
	}

	cmd.Flags().Bool("dry-run", false, "Report what would change without writing the project")
	cmd.Flags().Bool("force", false, "Repair even when the drift is not systematic")

	RootCmd.AddCommand(cmd)
}

type repairResult struct {
	ProjectID string `json:"projectId"`
	Status    string `json:"status"`
	Offset    int    `json:"offset,omitempty"`
	Repaired  int    `json:"repaired"`
	Remaining int    `json:"remaining"`
	Saved     bool   `json:"saved"`
	Note      string `json:"note,omitempty"`
}

func runRepair(cmd *cobra.Command, args []string) error {
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	force, _ := cmd.Flags().GetBool("force")

	f, tree, release := openProject(args[0])
	defer release()

	report := drift.Analyze(blocks.Validate(blocks.AssignmentsFromTree(&tree)))
	res := repairResult{ProjectID: f.ID(), Status: report.Status, Offset: report.Offset}

	switch {
	case report.Status == drift.StatusAligned:
		res.Note = "nothing to repair"
	case report.Status == drift.StatusNonSystematic && !force:
		res.Remaining = len(report.Mismatches)
		res.Note = "drift is not systematic; detected, not repaired"
		log.Warn("non-systematic drift left unrepaired", "project_id", res.ProjectID, "mismatches", res.Remaining)
	default:
		if err := interrupted(cmd, res.ProjectID); err != nil {
			return err
		}
		s, err := openStore()
		if err != nil {
			exitErr("open store", err)
		}
		defer s.Close()

		assets, err := s.AssetMap(cmd.Context(), res.ProjectID)
		if err != nil {
			exitErr("load assets", err)
		}

		repaired, n := drift.RepairMediaAlignment(tree, assets)
		res.Repaired = n
		res.Remaining = len(blocks.Validate(blocks.AssignmentsFromTree(&repaired)))
		log.Info("repaired media alignment", "project_id", res.ProjectID, "repaired", n, "remaining", res.Remaining)

		if err := interrupted(cmd, res.ProjectID); err != nil {
			return err
		}
		if n > 0 && !dryRun {
			f.Content = &repaired
			if err := f.Save(); err != nil {
				exitErr("save project", err)
			}
			res.Saved = true
		}
	}

	if textOutput() {
		fmt.Fprintf(cmd.OutOrStdout(), "Project %s: %s, repaired %d, remaining %d, saved %t\n",
			res.ProjectID, res.Status, res.Repaired, res.Remaining, res.Saved)
		if res.Note != "" {
			fmt.Fprintln(cmd.OutOrStdout(), res.Note)
		}
		return nil
	}
	printJSON(cmd, res)
	return nil
}

func interrupted(cmd *cobra.Command, projectID string) error {
	if err := cmd.Context().Err(); err != nil {
		log.Warn("repair interrupted, project left unchanged", "project_id", projectID, "error", err)
		return fmt.Errorf("repair interrupted: %w", err)
	}
	return nil
}
