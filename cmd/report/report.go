// Package report implements the command that turns transaction files into
// a categorized workbook.
package report

import (
	"fmt"
	"strings"

	"fjacquet/budgetwiz/cmd/root"
	"fjacquet/budgetwiz/internal/pipeline"

	"github.com/spf13/cobra"
)

// Cmd represents the report command
var Cmd = NewCmd()

// NewCmd builds the report command.
func NewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report [FILE.csv...]",
		Short: "Categorize transaction files and write the spending workbook",
		Long: `Load one or more CSV transaction exports, categorize every transaction from
the rule store (asking for unknown merchants) and write one transaction sheet
and one pivot sheet with a chart per input file.

Example:
  budgetwiz report -i JanExp.csv -o MonthlySpending.xlsx
  budgetwiz report --dir data --suffix Exp.csv`,
		RunE: run,
	}

	cmd.Flags().StringArrayP("input", "i", nil, "input CSV file (repeatable)")
	cmd.Flags().StringP("sheet", "s", "", "sheet name (single input only)")
	cmd.Flags().StringP("output", "o", "", "output workbook (default from report.output)")
	cmd.Flags().String("dir", "", "process every file in this directory ending in --suffix")
	cmd.Flags().String("suffix", "", "input file suffix used with --dir (default from report.input_suffix)")

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	c, err := root.NewContainer(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = c.Close() }()
	cfg := c.GetConfig()

	inputs, _ := cmd.Flags().GetStringArray("input")
	inputs = append(inputs, args...)
	sheet, _ := cmd.Flags().GetString("sheet")
	output, _ := cmd.Flags().GetString("output")
	dir, _ := cmd.Flags().GetString("dir")
	suffix, _ := cmd.Flags().GetString("suffix")

	if output == "" {
		output = cfg.Report.Output
	}
	if suffix == "" {
		suffix = cfg.Report.InputSuffix
	}

	jobs, err := buildJobs(inputs, sheet, dir, suffix)
	if err != nil {
		return err
	}

	summary, err := c.GetRunner().Run(cmd.Context(), jobs, output)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Wrote %s (%s)\n", summary.Output, strings.Join(summary.Sheets, ", "))
	fmt.Fprintf(out, "Transactions: %d, matched: %d, newly categorized: %d, skipped rows: %d, excluded: %d\n",
		summary.Transactions, summary.Stats.Matched, summary.Stats.Resolved, summary.Skipped, summary.Excluded)
	if summary.StoreSaved {
		fmt.Fprintf(out, "Category rules saved to %s\n", c.GetStore().Path())
	}
	return nil
}

func buildJobs(inputs []string, sheet, dir, suffix string) ([]pipeline.Job, error) {
	if dir != "" && len(inputs) > 0 {
		return nil, fmt.Errorf("--dir cannot be combined with input files")
	}
	if sheet != "" && (dir != "" || len(inputs) != 1) {
		return nil, fmt.Errorf("--sheet requires exactly one input file")
	}

	if dir != "" {
		return pipeline.JobsFromDir(dir, suffix)
	}
	if len(inputs) == 0 {
		return nil, fmt.Errorf("no input files given, use --input or --dir")
	}

	jobs := make([]pipeline.Job, len(inputs))
	for i, in := range inputs {
		jobs[i] = pipeline.Job{Input: in, Sheet: sheet}
	}
	return jobs, nil
}
