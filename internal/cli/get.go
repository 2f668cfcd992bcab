package cli

import (
	"os"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "get <media-id>",
		Short: "Retrieve a media asset",
		Long:  "Print an asset's metadata. With --out the payload is written to a file.",
		Args:  cobra.ExactArgs(1),
		Run:   runGet,
	}

	cmd.Flags().StringP("project", "p", "", "Project id or .scormproj path (required)")
	cmd.Flags().StringP("out", "o", "", "Write the payload to this file")

	cmd.MarkFlagRequired("project")

	RootCmd.AddCommand(cmd)
}

func runGet(cmd *cobra.Command, args []string) {
	projectID := projectIDFlag(cmd)
	out, _ := cmd.Flags().GetString("out")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	rec, err := s.Get(cmd.Context(), projectID, args[0])
	if err != nil {
		exitErr("get", err)
	}

	if out != "" {
		if err := os.WriteFile(out, rec.Data, 0o644); err != nil {
			exitErr("write payload", err)
		}
	}
	rec.Data = nil

	printJSON(cmd, rec)
}
