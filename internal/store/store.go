// Package store persists the category rules file between runs. The backing
// format is chosen from the file extension: YAML for .yaml/.yml, CSV
// otherwise.
package store

import (
	"path/filepath"
	"strings"

	"fjacquet/budgetwiz/internal/logging"
	"fjacquet/budgetwiz/internal/models"
)

// CategoryStore loads and saves the rule set. Implementations must write
// atomically: a failed Save leaves the previous file intact.
type CategoryStore interface {
	// Load returns the rules; a missing file yields an empty set.
	Load() (*Rules, error)

	// LoadEntries returns the raw rows in file order, duplicates included.
	LoadEntries() ([]models.CategoryRule, error)

	// Save rewrites the whole file from rules.
	Save(rules *Rules) error

	// Path returns the backing file.
	Path() string
}

// New returns the store for path.
func New(path string, logger logging.Logger) CategoryStore {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return NewYAMLStore(path, logger)
	default:
		return NewCSVStore(path, logger)
	}
}

func loadRules(s CategoryStore, logger logging.Logger) (*Rules, error) {
	entries, err := s.LoadEntries()
	if err != nil {
		return nil, err
	}
	rules := RulesFromEntries(entries)
	if dups := len(entries) - rules.Len(); dups > 0 {
		logger.Debug("Category store contains duplicate keys, last entry wins",
			logging.F(logging.FieldFile, s.Path()),
			logging.F(logging.FieldCount, dups))
	}
	logger.Debug("Loaded category rules",
		logging.F(logging.FieldFile, s.Path()),
		logging.F(logging.FieldCount, rules.Len()))
	return rules, nil
}
