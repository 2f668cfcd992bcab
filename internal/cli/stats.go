package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show database statistics",
		Run:   runStats,
	}

	RootCmd.AddCommand(cmd)
}

func runStats(cmd *cobra.Command, args []string) {
	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	stats, err := s.Stats(cmd.Context(), getDBPath())
	if err != nil {
		exitErr("stats", err)
	}

	if !textOutput() {
		printJSON(cmd, stats)
		return
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Database: %s (%s)\n", stats.DBPath, humanize.Bytes(uint64(stats.DBSizeBytes)))
	fmt.Fprintf(out, "Assets:   %s in %s\n\n", humanize.Comma(int64(stats.TotalAssets)), humanize.Bytes(uint64(stats.TotalBytes)))

	rows := make([][]string, 0, len(stats.Projects))
	for _, p := range stats.Projects {
		types := make([]string, 0, len(p.ByType))
		for t, n := range p.ByType {
			types = append(types, fmt.Sprintf("%s=%d", t, n))
		}
		sort.Strings(types)
		rows = append(rows, []string{p.ProjectID, humanize.Comma(int64(p.Count)), humanize.Bytes(uint64(p.Bytes)), strings.Join(types, " ")})
	}
	printTable(cmd, []string{"Project", "Assets", "Size", "Types"}, rows,
		[]columnAlignment{alignLeft, alignRight, alignRight, alignLeft})
}
