package cli

import (
	"github.com/spf13/cobra"

	"github.com/rcliao/course-media/internal/model"
)

func init() {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a project's media as JSON",
		Long:  "Export every asset of a project, payloads included (base64), as a JSON array.",
		Run:   runExport,
	}

	cmd.Flags().StringP("project", "p", "", "Project id or .scormproj path (required)")

	cmd.MarkFlagRequired("project")

	RootCmd.AddCommand(cmd)
}

func runExport(cmd *cobra.Command, args []string) {
	projectID := projectIDFlag(cmd)

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	assets, err := s.ExportAll(cmd.Context(), projectID)
	if err != nil {
		exitErr("export", err)
	}
	if assets == nil {
		assets = []model.AssetRecord{}
	}

	printJSON(cmd, assets)
}
