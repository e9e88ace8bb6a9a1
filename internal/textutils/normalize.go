// Package textutils normalizes transaction descriptions, store keys,
// category labels and sheet names.
package textutils

import (
	"path/filepath"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// MaxSheetNameLength is Excel's limit on worksheet names.
const MaxSheetNameLength = 31

var (
	processorPrefix = regexp.MustCompile(`^(TST\* ?|SQ ?\* ?)`)
	storeNumber     = regexp.MustCompile(`#\s?\d+`)
	phoneNumber     = regexp.MustCompile(`\b\d{3,}-?\d{3,}-?\d{3,}\b`)
	longNumber      = regexp.MustCompile(`\b\d{3,}\b`)
	dotCom          = regexp.MustCompile(`(?i)\.com\b`)
	spaces          = regexp.MustCompile(`\s+`)
	sheetForbidden  = regexp.MustCompile(`[:\\/?*\[\]]`)
)

// NormalizeKey upper-cases s, trims it and collapses inner whitespace.
// Store keys are always kept in this form.
func NormalizeKey(s string) string {
	return strings.ToUpper(spaces.ReplaceAllString(strings.TrimSpace(s), " "))
}

// CleanDescription strips the noise card processors add to merchant names
// (TST* and SQ* prefixes, "#123" store numbers, phone numbers, long digit
// runs, ".com") and returns the result in key form.
//
//	CleanDescription("SQ *BLUE BOTTLE #0042 Oakland") == "BLUE BOTTLE OAKLAND"
func CleanDescription(s string) string {
	s = strings.ToUpper(s)
	s = processorPrefix.ReplaceAllString(s, "")
	s = storeNumber.ReplaceAllString(s, "")
	s = phoneNumber.ReplaceAllString(s, "")
	s = longNumber.ReplaceAllString(s, "")
	s = dotCom.ReplaceAllString(s, "")
	return NormalizeKey(s)
}

// NormalizeCategory formats a user supplied label: trimmed, inner
// whitespace collapsed, first letter upper case and the rest lower case.
func NormalizeCategory(s string) string {
	s = strings.ToLower(spaces.ReplaceAllString(strings.TrimSpace(s), " "))
	if s == "" {
		return ""
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[size:]
}

// SheetNameFromFile derives a worksheet name from an input path: the suffix
// (for example "Exp.csv") or else the extension is dropped and the rest is
// title-cased.
//
//	SheetNameFromFile("data/januaryExp.csv", "Exp.csv") == "January"
func SheetNameFromFile(path, suffix string) string {
	base := filepath.Base(path)
	if suffix != "" && len(base) > len(suffix) && strings.HasSuffix(strings.ToLower(base), strings.ToLower(suffix)) {
		base = base[:len(base)-len(suffix)]
	} else {
		base = strings.TrimSuffix(base, filepath.Ext(base))
	}

	base = strings.TrimSpace(strings.NewReplacer("_", " ", "-", " ").Replace(base))
	if base == "" {
		return "Transactions"
	}
	return SanitizeSheetName(cases.Title(language.English).String(base))
}

// SanitizeSheetName replaces characters Excel rejects in sheet names and
// truncates to MaxSheetNameLength runes.
func SanitizeSheetName(name string) string {
	name = strings.Trim(sheetForbidden.ReplaceAllString(strings.TrimSpace(name), "-"), "'")
	return TruncateRunes(name, MaxSheetNameLength)
}

// TruncateRunes shortens s to at most n runes.
func TruncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}
