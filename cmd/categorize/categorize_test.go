package categorize_test

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"fjacquet/budgetwiz/cmd/categorize"
	"fjacquet/budgetwiz/cmd/root"
	"fjacquet/budgetwiz/internal/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T, rules string) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", dir)
	path := filepath.Join(dir, "categories.csv")
	if rules != "" {
		require.NoError(t, os.WriteFile(path, []byte(rules), 0600))
	}
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	rootCmd := root.NewCmd()
	rootCmd.AddCommand(categorize.NewCmd())

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs(append([]string{"categorize"}, args...))
	err := rootCmd.Execute()
	return out.String(), err
}

func TestCategorizeCommand_Metadata(t *testing.T) {
	assert.Equal(t, "categorize", categorize.Cmd.Use)
	assert.Contains(t, categorize.Cmd.Short, "category rule")
	flag := categorize.Cmd.Flags().Lookup("description")
	require.NotNil(t, flag)
	assert.Equal(t, "d", flag.Shorthand)
	assert.NotNil(t, categorize.Cmd.Flags().Lookup("set"))
}

func TestCategorizeCommand_Lookup(t *testing.T) {
	tests := []struct {
		name        string
		description string
		expected    string
	}{
		{name: "exact", description: "coffee shop", expected: "COFFEE SHOP -> Dining (rule COFFEE SHOP)\n"},
		{name: "contained key", description: "SQ *COFFEE SHOP #12 Downtown", expected: "COFFEE SHOP DOWNTOWN -> Dining (rule COFFEE SHOP)\n"},
		{name: "unknown", description: "BOOKSTORE", expected: "BOOKSTORE -> no matching rule\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setup(t, "key,category\nCOFFEE SHOP,Dining\n")
			out, err := execute(t, "-d", tt.description)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, out)
		})
	}
}

func TestCategorizeCommand_Set(t *testing.T) {
	path := setup(t, "key,category\nCOFFEE SHOP,Dining\n")

	out, err := execute(t, "-d", "Grocery Mart", "--set", "  groceries ")
	require.NoError(t, err)
	assert.Equal(t, "GROCERY MART -> Groceries\n", out)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "key,category\nCOFFEE SHOP,Dining\nGROCERY MART,Groceries\n", string(data))
}

func TestCategorizeCommand_SetEmptyCategory(t *testing.T) {
	setup(t, "")
	_, err := execute(t, "-d", "RENT", "--set", " ")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperror.ErrEmptyCategory))
	assert.Equal(t, apperror.StageCategorize, apperror.StageOf(err))
}

func TestCategorizeCommand_RequiresDescription(t *testing.T) {
	setup(t, "")
	_, err := execute(t)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "description")
}
