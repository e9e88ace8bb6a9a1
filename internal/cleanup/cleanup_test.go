package cleanup

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"fjacquet/budgetwiz/internal/apperror"
	"fjacquet/budgetwiz/internal/logging"
	"fjacquet/budgetwiz/internal/models"
	"fjacquet/budgetwiz/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDedupeLastWriteWins(t *testing.T) {
	out, rep := Dedupe([]models.CategoryRule{
		{Key: "GROCERY MART", Category: "Food"},
		{Key: "GROCERY MART", Category: "Groceries"},
	})
	assert.Equal(t, []models.CategoryRule{{Key: "GROCERY MART", Category: "Groceries"}}, out)
	assert.Equal(t, Report{Entries: 2, Kept: 1, Duplicates: 1}, rep)
	assert.True(t, rep.Changed())
}

func TestDedupe(t *testing.T) {
	tests := []struct {
		name  string
		input []models.CategoryRule
		want  []models.CategoryRule
		rep   Report
	}{
		{
			name:  "empty",
			input: nil,
			want:  []models.CategoryRule{},
			rep:   Report{},
		},
		{
			name: "normalizes keys before comparing",
			input: []models.CategoryRule{
				{Key: "coffee  shop", Category: "Drinks"},
				{Key: "COFFEE SHOP ", Category: "Dining"},
			},
			want: []models.CategoryRule{{Key: "COFFEE SHOP", Category: "Dining"}},
			rep:  Report{Entries: 2, Kept: 1, Duplicates: 1},
		},
		{
			name: "drops stale rows",
			input: []models.CategoryRule{
				{Key: "", Category: "Dining"},
				{Key: "RENT", Category: " "},
				{Key: "GYM", Category: "Health"},
			},
			want: []models.CategoryRule{{Key: "GYM", Category: "Health"}},
			rep:  Report{Entries: 3, Kept: 1, Stale: 2},
		},
		{
			name: "sorted by category then key",
			input: []models.CategoryRule{
				{Key: "ZOO", Category: "Fun"},
				{Key: "RENT", Category: "Housing"},
				{Key: "ARCADE", Category: "Fun"},
			},
			want: []models.CategoryRule{
				{Key: "ARCADE", Category: "Fun"},
				{Key: "ZOO", Category: "Fun"},
				{Key: "RENT", Category: "Housing"},
			},
			rep: Report{Entries: 3, Kept: 3},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, rep := Dedupe(tt.input)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.rep, rep)
		})
	}
}

func TestDedupeIsIdempotent(t *testing.T) {
	inputs := [][]models.CategoryRule{
		{{Key: "A", Category: "X"}, {Key: "a", Category: "Y"}, {Key: "B", Category: ""}},
		{{Key: "GROCERY MART", Category: "Food"}, {Key: "GROCERY MART", Category: "Groceries"}, {Key: "COFFEE", Category: "Dining"}},
		{},
	}
	for _, in := range inputs {
		once, _ := Dedupe(in)
		twice, rep := Dedupe(once)
		assert.Equal(t, once, twice)
		assert.False(t, rep.Changed())
	}
}

func TestCleanerRunOnFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "categories.csv")
	require.NoError(t, os.WriteFile(path, []byte("key,category\nGROCERY MART,Food\nCOFFEE SHOP,Dining\nGROCERY MART,Groceries\n"), 0600))

	s := store.NewCSVStore(path, nil)
	c := NewCleaner(s, logging.NewMockLogger())

	rep, err := c.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, rep.Duplicates)

	first, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "key,category\nCOFFEE SHOP,Dining\nGROCERY MART,Groceries\n", string(first))

	rep, err = c.Run(context.Background())
	require.NoError(t, err)
	assert.False(t, rep.Changed())

	second, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))
}

func TestCleanerErrorsAreStageTagged(t *testing.T) {
	m := &store.MockCategoryStore{LoadError: &apperror.FileFormatError{Path: "x.csv", Reason: "empty key"}}
	_, err := NewCleaner(m, nil).Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, apperror.StageCleanup, apperror.StageOf(err))
	var formatErr *apperror.FileFormatError
	assert.True(t, errors.As(err, &formatErr))

	m = &store.MockCategoryStore{SaveError: &apperror.OutputError{Path: "x.csv", Err: errors.New("disk full")}}
	_, err = NewCleaner(m, nil).Run(context.Background())
	assert.Equal(t, apperror.StageCleanup, apperror.StageOf(err))
	assert.Contains(t, err.Error(), "cleanup: ")
}
