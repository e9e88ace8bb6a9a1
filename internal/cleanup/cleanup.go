// Package cleanup tidies the category rules file.
package cleanup

import (
	"context"
	"strings"

	"fjacquet/budgetwiz/internal/apperror"
	"fjacquet/budgetwiz/internal/logging"
	"fjacquet/budgetwiz/internal/models"
	"fjacquet/budgetwiz/internal/store"
	"fjacquet/budgetwiz/internal/textutils"
)

// Report summarizes a dedupe pass.
type Report struct {
	Entries    int // rows read
	Kept       int // rows written
	Duplicates int // rows replaced by a later row with the same key
	Stale      int // rows with an empty key or category
}

// Changed reports whether the pass removed anything.
func (r Report) Changed() bool {
	return r.Duplicates > 0 || r.Stale > 0
}

// Dedupe normalizes keys, drops stale rows and keeps the last category
// written for each key. The result is sorted by category, then key.
// Dedupe(Dedupe(x)) equals Dedupe(x).
func Dedupe(entries []models.CategoryRule) ([]models.CategoryRule, Report) {
	rep := Report{Entries: len(entries)}
	latest := make(map[string]string, len(entries))
	for _, e := range entries {
		key := textutils.NormalizeKey(e.Key)
		category := strings.TrimSpace(e.Category)
		if key == "" || category == "" {
			rep.Stale++
			continue
		}
		if _, seen := latest[key]; seen {
			rep.Duplicates++
		}
		latest[key] = category
	}

	out := make([]models.CategoryRule, 0, len(latest))
	for k, v := range latest {
		out = append(out, models.CategoryRule{Key: k, Category: v})
	}
	store.SortEntries(out)
	rep.Kept = len(out)
	return out, rep
}

// Cleaner dedupes the rules file in place.
type Cleaner struct {
	store  store.CategoryStore
	logger logging.Logger
}

// NewCleaner returns a Cleaner over s.
func NewCleaner(s store.CategoryStore, logger logging.Logger) *Cleaner {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	return &Cleaner{store: s, logger: logger}
}

// Run loads every row, dedupes and saves the result atomically. Errors are
// tagged with the cleanup stage.
func (c *Cleaner) Run(ctx context.Context) (Report, error) {
	if err := ctx.Err(); err != nil {
		return Report{}, apperror.WrapStage(apperror.StageCleanup, err)
	}

	entries, err := c.store.LoadEntries()
	if err != nil {
		return Report{}, apperror.WrapStage(apperror.StageCleanup, err)
	}

	cleaned, rep := Dedupe(entries)
	if err := c.store.Save(store.RulesFromEntries(cleaned)); err != nil {
		return rep, apperror.WrapStage(apperror.StageCleanup, err)
	}

	c.logger.Info("Category rules cleaned",
		logging.F(logging.FieldFile, c.store.Path()),
		logging.F("entries", rep.Entries),
		logging.F("kept", rep.Kept),
		logging.F("duplicates", rep.Duplicates),
		logging.F("stale", rep.Stale))
	return rep, nil
}
