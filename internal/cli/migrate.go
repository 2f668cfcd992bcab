package cli

import (
	"github.com/spf13/cobra"

	"github.com/rcliao/course-media/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "migrate-page-ids",
		Short: "Fix page ids stored on narration media",
		Long: "Rewrite the stored page id of every narration asset to the page its id belongs to " +
			"(audio-0 welcome, audio-1 objectives, audio-n topic-(n-2)).",
		Run: runMigratePageIDs,
	}

	cmd.Flags().StringP("project", "p", "", "Project id or .scormproj path (required)")
	cmd.Flags().Bool("dry-run", false, "Report the corrections without writing them")

	cmd.MarkFlagRequired("project")

	RootCmd.AddCommand(cmd)
}

func runMigratePageIDs(cmd *cobra.Command, args []string) {
	projectID := projectIDFlag(cmd)
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	migrate := s.MigratePageIDs
	if dryRun {
		migrate = s.PlanPageIDs
	}
	fixes, err := migrate(cmd.Context(), projectID)
	if err != nil {
		exitErr("migrate page ids", err)
	}
	if fixes == nil {
		fixes = []store.PageIDFix{}
	}

	if textOutput() {
		rows := make([][]string, 0, len(fixes))
		for _, f := range fixes {
			rows = append(rows, []string{f.MediaID, f.From, f.To})
		}
		printTable(cmd, []string{"Media", "From", "To"}, rows, nil)
		return
	}
	printJSON(cmd, map[string]interface{}{"projectId": projectID, "fixed": fixes, "dryRun": dryRun})
}
