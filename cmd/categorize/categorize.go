// Package categorize handles single rule lookups and updates
package categorize

import (
	"fmt"
	"strings"

	"fjacquet/budgetwiz/cmd/root"
	"fjacquet/budgetwiz/internal/apperror"
	"fjacquet/budgetwiz/internal/logging"
	"fjacquet/budgetwiz/internal/textutils"

	"github.com/spf13/cobra"
)

// Cmd represents the categorize command
var Cmd = NewCmd()

// NewCmd builds the categorize command.
func NewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categorize",
		Short: "Look up or set the category rule for a description",
		Long: `Show which category the rule store assigns to a transaction description.
With --set, store the given category under the description's key.

Example:
  budgetwiz categorize -d "COFFEE SHOP #42"
  budgetwiz categorize -d "COFFEE SHOP #42" --set Dining`,
		Args: cobra.NoArgs,
		RunE: run,
	}

	cmd.Flags().StringP("description", "d", "", "transaction description")
	cmd.Flags().String("set", "", "category to store for the description")
	_ = cmd.MarkFlagRequired("description")
	return cmd
}

func run(cmd *cobra.Command, _ []string) error {
	description, _ := cmd.Flags().GetString("description")
	set, _ := cmd.Flags().GetString("set")
	if strings.TrimSpace(description) == "" {
		return fmt.Errorf("--description must not be empty")
	}

	c, err := root.NewContainer(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = c.Close() }()

	cat := c.GetCategorizer()
	s := c.GetStore()
	out := cmd.OutOrStdout()

	rules, err := s.Load()
	if err != nil {
		return apperror.WrapStage(apperror.StageCategorize, err)
	}

	key := cat.Key(description)
	if cmd.Flags().Changed("set") {
		category := textutils.NormalizeCategory(set)
		if category == "" {
			return apperror.WrapStage(apperror.StageCategorize, apperror.ErrEmptyCategory)
		}
		if rules.Upsert(key, category) {
			if err := s.Save(rules); err != nil {
				return apperror.WrapStage(apperror.StageCategorize, err)
			}
			c.GetLogger().Info("Category rule stored",
				logging.F(logging.FieldKey, key),
				logging.F(logging.FieldCategory, category),
				logging.F(logging.FieldFile, s.Path()))
		}
		fmt.Fprintf(out, "%s -> %s\n", key, category)
		return nil
	}

	match, ok := cat.Lookup(description, rules)
	if !ok {
		fmt.Fprintf(out, "%s -> no matching rule\n", key)
		return nil
	}
	fmt.Fprintf(out, "%s -> %s (rule %s)\n", key, match.Name, match.Key)
	return nil
}
