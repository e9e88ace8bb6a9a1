// Package clean implements maintenance of the category rule store.
package clean

import (
	"fmt"

	"fjacquet/budgetwiz/cmd/root"

	"github.com/spf13/cobra"
)

// Cmd represents the clean command
var Cmd = NewCmd()

// NewCmd builds the clean command.
func NewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Deduplicate or interactively edit the category rule store",
		Long: `Without flags, rewrite the rule store with one row per normalized key (the
last row wins) and drop rows with an empty key or category.

With --edit, review every rule: keep it, change it with key,category or mark
it for deletion. Deletions are applied after confirmation.`,
		Args: cobra.NoArgs,
		RunE: run,
	}
	cmd.Flags().BoolP("edit", "e", false, "review rules one by one")
	return cmd
}

func run(cmd *cobra.Command, _ []string) error {
	c, err := root.NewContainer(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = c.Close() }()
	out := cmd.OutOrStdout()

	if edit, _ := cmd.Flags().GetBool("edit"); edit {
		res, err := c.NewEditor().Run(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Edited: %d, deleted: %d\n", res.Edited, res.Deleted)
		return nil
	}

	rep, err := c.NewCleaner().Run(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s: %d rows, %d kept, %d duplicates removed, %d stale removed\n",
		c.GetStore().Path(), rep.Entries, rep.Kept, rep.Duplicates, rep.Stale)
	return nil
}
