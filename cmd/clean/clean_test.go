package clean_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"fjacquet/budgetwiz/cmd/clean"
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
	require.NoError(t, os.WriteFile(path, []byte(rules), 0600))
	return path
}

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	rootCmd := root.NewCmd()
	rootCmd.AddCommand(clean.NewCmd())

	var out bytes.Buffer
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs(append([]string{"clean"}, args...))
	err := rootCmd.Execute()
	return out.String(), err
}

func TestCleanCommand_Metadata(t *testing.T) {
	assert.Equal(t, "clean", clean.Cmd.Use)
	assert.NotNil(t, clean.Cmd.Flags().Lookup("edit"))
	assert.NotNil(t, clean.Cmd.RunE)
}

func TestCleanCommand_Dedupes(t *testing.T) {
	path := setup(t, "key,category\ncoffee shop,Dining\nCOFFEE SHOP,Coffee\nRENT,\n")

	out, err := execute(t, "")
	require.NoError(t, err)
	assert.Contains(t, out, "3 rows, 1 kept, 1 duplicates removed, 1 stale removed")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "key,category\nCOFFEE SHOP,Coffee\n", string(data))
}

func TestCleanCommand_Edit(t *testing.T) {
	path := setup(t, "key,category\nCOFFEE SHOP,Dining\nRENT,Housing\n")

	out, err := execute(t, ",Coffee\nd\ny\n", "--edit")
	require.NoError(t, err)
	assert.Contains(t, out, "Edited: 1, deleted: 1")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "key,category\nCOFFEE SHOP,Coffee\n", string(data))
}

func TestCleanCommand_BadStoreIsCleanupStage(t *testing.T) {
	setup(t, "key,category\n,Dining\n")

	_, err := execute(t, "")
	require.Error(t, err)
	assert.Equal(t, apperror.StageCleanup, apperror.StageOf(err))
}
