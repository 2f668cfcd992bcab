package cli

import (
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "rm <media-id>...",
		Short: "Delete media assets",
		Long: "Delete media assets. References to them stay in project files until " +
			"the next cleanup.",
		Args: cobra.MinimumNArgs(1),
		Run:  runRm,
	}

	cmd.Flags().StringP("project", "p", "", "Project id or .scormproj path (required)")

	cmd.MarkFlagRequired("project")

	RootCmd.AddCommand(cmd)
}

func runRm(cmd *cobra.Command, args []string) {
	projectID := projectIDFlag(cmd)

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	for _, id := range args {
		if err := s.Delete(cmd.Context(), projectID, id); err != nil {
			exitErr("rm", err)
		}
		log.Info("deleted media", "project_id", projectID, "media_id", id)
	}

	printJSON(cmd, map[string]interface{}{"ok": true, "projectId": projectID, "deleted": args})
}
