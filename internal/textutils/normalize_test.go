package textutils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeKey(t *testing.T) {
	assert.Equal(t, "COFFEE SHOP", NormalizeKey("  coffee   shop "))
	assert.Equal(t, "", NormalizeKey("   "))
}

func TestCleanDescription(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"COFFEE SHOP", "COFFEE SHOP"},
		{"TST* Porchlight Cafe", "PORCHLIGHT CAFE"},
		{"SQ *BLUE BOTTLE #0042 Oakland", "BLUE BOTTLE OAKLAND"},
		{"SQ* FARMERS MKT", "FARMERS MKT"},
		{"HARRIS TEETER # 20816 CARY", "HARRIS TEETER CARY"},
		{"ZAXBY'S 919-678-1444 NC", "ZAXBY'S NC"},
		{"AMAZON.COM 3122422019", "AMAZON"},
		{"Netflix.com", "NETFLIX"},
		{"UBER 123 TRIP", "UBER TRIP"},
		{"7-ELEVEN 12", "7-ELEVEN 12"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanDescription(tt.in))
		})
	}
}

func TestNormalizeCategory(t *testing.T) {
	assert.Equal(t, "Dining", NormalizeCategory("Dining"))
	assert.Equal(t, "Groceries", NormalizeCategory("  GROCERIES "))
	assert.Equal(t, "Eating out", NormalizeCategory("eating   OUT"))
	assert.Equal(t, "Épicerie", NormalizeCategory("épicerie"))
	assert.Equal(t, "", NormalizeCategory("  "))
}

func TestSheetNameFromFile(t *testing.T) {
	tests := []struct {
		path   string
		suffix string
		want   string
	}{
		{"data/januaryExp.csv", "Exp.csv", "January"},
		{"data/januaryexp.csv", "Exp.csv", "January"},
		{"march_2024.csv", "Exp.csv", "March 2024"},
		{"Exp.csv", "Exp.csv", "Exp"},
		{"statement", "", "Statement"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, SheetNameFromFile(tt.path, tt.suffix))
		})
	}
}

func TestSanitizeSheetName(t *testing.T) {
	assert.Equal(t, "Q1-Q2 2024", SanitizeSheetName("Q1/Q2 2024"))
	assert.Equal(t, "A very long sheet name that exc", SanitizeSheetName("A very long sheet name that exceeds the limit"))
	assert.Len(t, []rune(SanitizeSheetName("A very long sheet name that exceeds the limit")), MaxSheetNameLength)
}
