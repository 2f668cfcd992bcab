package cli

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/rcliao/course-media/internal/model"
	"github.com/rcliao/course-media/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored media",
		Run:   runList,
	}

	cmd.Flags().StringP("project", "p", "", "Project id or .scormproj path (required)")
	cmd.Flags().StringP("type", "t", "", "Filter by media type")
	cmd.Flags().String("page", "", "Filter by page id")
	cmd.Flags().IntP("limit", "l", 100, "Max results")
	cmd.Flags().Bool("ids-only", false, "Only output media ids")

	cmd.MarkFlagRequired("project")

	RootCmd.AddCommand(cmd)
}

func runList(cmd *cobra.Command, args []string) {
	projectID := projectIDFlag(cmd)
	typ, _ := cmd.Flags().GetString("type")
	page, _ := cmd.Flags().GetString("page")
	limit, _ := cmd.Flags().GetInt("limit")
	idsOnly, _ := cmd.Flags().GetBool("ids-only")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	assets, err := s.List(cmd.Context(), store.ListParams{
		ProjectID: projectID,
		Type:      model.MediaType(typ),
		PageID:    page,
		Limit:     limit,
	})
	if err != nil {
		exitErr("list", err)
	}

	if idsOnly {
		for _, a := range assets {
			fmt.Fprintln(cmd.OutOrStdout(), a.ID)
		}
		return
	}

	if textOutput() {
		rows := make([][]string, 0, len(assets))
		for _, a := range assets {
			rows = append(rows, []string{
				a.ID,
				string(a.Metadata.Type),
				a.Metadata.PageID,
				a.Metadata.OriginalName,
				humanize.Bytes(uint64(a.Size)),
				humanize.Time(a.CreatedAt),
			})
		}
		printTable(cmd, []string{"ID", "Type", "Page", "Name", "Size", "Stored"}, rows,
			[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignLeft})
		return
	}

	if assets == nil {
		assets = []model.AssetRecord{}
	}
	printJSON(cmd, assets)
}
