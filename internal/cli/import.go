package cli

import (
	"encoding/json"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/rcliao/course-media/internal/model"
)

func init() {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import media from JSON",
		Long: "Import media from JSON on stdin. Expects the format produced by export. " +
			"With --project every asset is imported into that project.",
		Run: runImport,
	}

	cmd.Flags().StringP("project", "p", "", "Target project id or .scormproj path")

	RootCmd.AddCommand(cmd)
}

func runImport(cmd *cobra.Command, args []string) {
	projectID := projectIDFlag(cmd)

	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		exitErr("read stdin", err)
	}

	var assets []model.AssetRecord
	if err := json.Unmarshal(data, &assets); err != nil {
		exitErr("parse json", err)
	}

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	imported, err := s.Import(cmd.Context(), projectID, assets)
	if err != nil {
		exitErr("import", err)
	}

	printJSON(cmd, map[string]interface{}{"ok": true, "imported": imported})
}
