package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/rcliao/course-media/internal/blocks"
	"github.com/rcliao/course-media/internal/drift"
	"github.com/rcliao/course-media/internal/project"
)

func init() {
	cmd := &cobra.Command{
		Use:   "validate <file.scormproj>",
		Short: "Check narration media against their blocks",
		Long: "Report every narration reference whose id does not belong to the block of the page " +
			"holding it, and whether the mismatches share one systematic offset.",
		Args: cobra.ExactArgs(1),
		Run:  runValidate,
	}

	RootCmd.AddCommand(cmd)
}

type validateResult struct {
	ProjectID string `json:"projectId"`
	Checked   int    `json:"checked"`
	drift.Report
}

func runValidate(cmd *cobra.Command, args []string) {
	f, err := project.Load(args[0])
	if err != nil {
		exitErr("load project", err)
	}
	tree, err := f.Tree()
	if err != nil {
		exitErr("load project", err)
	}

	assignments := blocks.AssignmentsFromTree(&tree)
	report := drift.Analyze(blocks.Validate(assignments))
	res := validateResult{ProjectID: f.ID(), Checked: len(assignments), Report: report}

	if !textOutput() {
		printJSON(cmd, res)
		return
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Project %s: %d narration references, status %s", res.ProjectID, res.Checked, res.Status)
	if res.Systematic {
		fmt.Fprintf(out, " (offset %+d)", res.Offset)
	}
	fmt.Fprintln(out)
	if len(res.Mismatches) == 0 {
		return
	}
	rows := make([][]string, 0, len(res.Mismatches))
	for _, m := range res.Mismatches {
		rows = append(rows, []string{m.MediaID, m.AssignedBlock, m.ExpectedBlock, offsetLabel(m)})
	}
	printTable(cmd, []string{"Media", "Assigned", "Expected", "Offset"}, rows,
		[]columnAlignment{alignLeft, alignRight, alignRight, alignRight})
}

func offsetLabel(m blocks.Mismatch) string {
	a, err1 := blocks.ParseBlock(m.AssignedBlock)
	e, err2 := blocks.ParseBlock(m.ExpectedBlock)
	if err1 != nil || err2 != nil {
		return "?"
	}
	d := a - e
	if d > 0 {
		return "+" + strconv.Itoa(d)
	}
	return strconv.Itoa(d)
}
