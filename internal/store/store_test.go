package store

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"fjacquet/budgetwiz/internal/apperror"
	"fjacquet/budgetwiz/internal/logging"
	"fjacquet/budgetwiz/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	err := os.WriteFile(path, []byte(content), 0600)
	require.NoError(t, err)
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestNewPicksBackendFromExtension(t *testing.T) {
	assert.IsType(t, &CSVStore{}, New("categories.csv", nil))
	assert.IsType(t, &CSVStore{}, New("categories", nil))
	assert.IsType(t, &YAMLStore{}, New("categories.yaml", nil))
	assert.IsType(t, &YAMLStore{}, New("CATEGORIES.YML", nil))
}

func TestStoresMissingFileIsEmpty(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"categories.csv", "categories.yaml"} {
		t.Run(name, func(t *testing.T) {
			logger := logging.NewMockLogger()
			s := New(filepath.Join(dir, name), logger)
			rules, err := s.Load()
			require.NoError(t, err)
			assert.Equal(t, 0, rules.Len())
			assert.True(t, logger.HasEntry("INFO", "Category store not found, starting empty"))
		})
	}
}

func TestStoresRoundTrip(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"categories.csv", "categories.yaml"} {
		t.Run(name, func(t *testing.T) {
			s := New(filepath.Join(dir, name), logging.NewDiscardLogger())

			rules := NewRules()
			rules.Upsert("COFFEE SHOP", "Dining")
			rules.Upsert("GROCERY MART", "Groceries")
			rules.Upsert("TAQUERIA, EL SOL", "Dining")
			require.NoError(t, s.Save(rules))

			loaded, err := s.Load()
			require.NoError(t, err)
			assert.Equal(t, rules.Entries(), loaded.Entries())
		})
	}
}

func TestCSVStoreSaveFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "categories.csv")
	s := NewCSVStore(path, nil)

	rules := RulesFromEntries([]models.CategoryRule{
		{Key: "GROCERY MART", Category: "Groceries"},
		{Key: "COFFEE SHOP", Category: "Dining"},
	})
	require.NoError(t, s.Save(rules))
	assert.Equal(t, "key,category\nCOFFEE SHOP,Dining\nGROCERY MART,Groceries\n", readFile(t, path))

	require.NoError(t, s.Save(NewRules()))
	assert.Equal(t, "key,category\n", readFile(t, path))

	rules, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, 0, rules.Len())
}

func TestCSVStoreUpdatedRuleHasNoDuplicate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "categories.csv")
	writeFile(t, path, "key,category\nGROCERY MART,Groceries\n")

	s := NewCSVStore(path, nil)
	rules, err := s.Load()
	require.NoError(t, err)
	rules.Upsert("grocery mart", "Food")
	require.NoError(t, s.Save(rules))

	entries, err := s.LoadEntries()
	require.NoError(t, err)
	assert.Equal(t, []models.CategoryRule{{Key: "GROCERY MART", Category: "Food"}}, entries)
}

func TestCSVStoreLoadEntries(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []models.CategoryRule
	}{
		{
			name:    "keeps duplicates in order",
			content: "key,category\nGROCERY MART,Groceries\nCOFFEE SHOP,Dining\nGROCERY MART,Food\n",
			want: []models.CategoryRule{
				{Key: "GROCERY MART", Category: "Groceries"},
				{Key: "COFFEE SHOP", Category: "Dining"},
				{Key: "GROCERY MART", Category: "Food"},
			},
		},
		{
			name:    "legacy header",
			content: "Name,Category\nCOFFEE SHOP,Dining\n",
			want:    []models.CategoryRule{{Key: "COFFEE SHOP", Category: "Dining"}},
		},
		{
			name:    "reversed header",
			content: "category,key\nDining,COFFEE SHOP\n",
			want:    []models.CategoryRule{{Key: "COFFEE SHOP", Category: "Dining"}},
		},
		{
			name:    "byte order mark",
			content: "\ufeffkey,category\nCOFFEE SHOP,Dining\n",
			want:    []models.CategoryRule{{Key: "COFFEE SHOP", Category: "Dining"}},
		},
		{
			name:    "header only",
			content: "key,category\n",
			want:    nil,
		},
		{
			name:    "empty file",
			content: "",
			want:    nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "categories.csv")
			writeFile(t, path, tt.content)

			got, err := NewCSVStore(path, nil).LoadEntries()
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCSVStoreFormatErrors(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		wantLine int
	}{
		{"empty key", "key,category\nCOFFEE SHOP,Dining\n,Groceries\n", 3},
		{"bad header", "description,amount,date\nA,1,2\n", 1},
		{"unknown columns", "foo,bar\nA,B\n", 1},
		{"extra field", "key,category\nA,B,C\n", 2},
		{"bad quoting", "key,category\n\"A,B\n", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "categories.csv")
			writeFile(t, path, tt.content)

			_, err := NewCSVStore(path, nil).Load()
			require.Error(t, err)

			var formatErr *apperror.FileFormatError
			require.True(t, errors.As(err, &formatErr), "got %T: %v", err, err)
			assert.Equal(t, path, formatErr.Path)
			if tt.wantLine > 0 {
				assert.Equal(t, tt.wantLine, formatErr.Line)
			}
		})
	}
}

func TestYAMLStoreLoadEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "categories.yaml")
	writeFile(t, path, "GROCERY MART: Groceries\nCOFFEE SHOP: Dining\nGROCERY MART: Food\n")

	s := NewYAMLStore(path, nil)
	entries, err := s.LoadEntries()
	require.NoError(t, err)
	assert.Len(t, entries, 3)

	rules, err := s.Load()
	require.NoError(t, err)
	category, ok := rules.Get("GROCERY MART")
	require.True(t, ok)
	assert.Equal(t, "Food", category)
}

func TestYAMLStoreFormatErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"list instead of mapping", "- a\n- b\n"},
		{"nested value", "COFFEE SHOP:\n  name: Dining\n"},
		{"empty key", "\"\": Dining\n"},
		{"invalid yaml", "a: [b\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "categories.yaml")
			writeFile(t, path, tt.content)

			_, err := NewYAMLStore(path, nil).Load()
			var formatErr *apperror.FileFormatError
			assert.True(t, errors.As(err, &formatErr), "got %T: %v", err, err)
		})
	}
}

func TestSaveFailureIsOutputError(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "not-a-dir")
	writeFile(t, blocker, "x")
	path := filepath.Join(blocker, "categories.csv")

	err := NewCSVStore(path, nil).Save(NewRules())
	var outErr *apperror.OutputError
	require.True(t, errors.As(err, &outErr), "got %T: %v", err, err)
	assert.Equal(t, path, outErr.Path)
	assert.Equal(t, "x", readFile(t, blocker))
}

func TestMockCategoryStore(t *testing.T) {
	m := &MockCategoryStore{Entries: []models.CategoryRule{{Key: "A", Category: "X"}}}
	rules, err := m.Load()
	require.NoError(t, err)
	rules.Upsert("B", "Y")
	require.NoError(t, m.Save(rules))
	assert.Equal(t, 1, m.SaveCalls)
	assert.Len(t, m.Saved, 2)

	m.LoadError = errors.New("boom")
	_, err = m.Load()
	assert.Error(t, err)
}
