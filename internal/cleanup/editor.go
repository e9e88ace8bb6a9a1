package cleanup

import (
	"context"
	"fmt"
	"strings"

	"fjacquet/budgetwiz/internal/apperror"
	"fjacquet/budgetwiz/internal/logging"
	"fjacquet/budgetwiz/internal/store"
	"fjacquet/budgetwiz/internal/textutils"
)

// Prompter asks the user free-form questions.
type Prompter interface {
	Ask(question string) (string, error)
	Println(msg string)
}

// EditResult summarizes an editing session.
type EditResult struct {
	Edited  int
	Deleted int
	Saved   bool
}

// Editor walks through the rules one by one and lets the user keep, edit
// or delete each of them.
type Editor struct {
	store    store.CategoryStore
	prompter Prompter
	logger   logging.Logger
}

// NewEditor returns an Editor.
func NewEditor(s store.CategoryStore, p Prompter, logger logging.Logger) *Editor {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	return &Editor{store: s, prompter: p, logger: logger}
}

// Run starts the session. For each rule an empty answer keeps it, "d"
// marks it for deletion, "s" stops reviewing and "key,category" edits it
// (an empty half keeps that half). Deletions are only applied after a "y"
// confirmation; without it nothing is saved.
func (e *Editor) Run(ctx context.Context) (EditResult, error) {
	var res EditResult
	rules, err := e.store.Load()
	if err != nil {
		return res, apperror.WrapStage(apperror.StageCleanup, err)
	}
	if rules.Len() == 0 {
		e.prompter.Println("No category rules to edit.")
		return res, nil
	}

	e.prompter.Println("Press Enter to keep, 'd' to delete, or 's' to skip to the end.")
	e.prompter.Println("Edit with key,category; leave a side blank to keep it.")

	updated := rules.Clone()
	var deleted []string
	deletedCategory := make(map[string]string)
	pending := make(map[string]bool)

review:
	for _, entry := range rules.Entries() {
		if err := ctx.Err(); err != nil {
			return res, apperror.WrapStage(apperror.StageCleanup, err)
		}

		answer, err := e.prompter.Ask(fmt.Sprintf("Edit entry [%s, %s]: ", entry.Key, entry.Category))
		if err != nil {
			return res, apperror.WrapStage(apperror.StageCleanup, err)
		}

		switch strings.ToLower(answer) {
		case "":
		case "s":
			e.prompter.Println("Skipping to the end.")
			break review
		case "d":
			deleted = append(deleted, entry.Key)
			deletedCategory[entry.Key] = entry.Category
			pending[entry.Key] = true
		default:
			if e.apply(updated, pending, entry.Key, entry.Category, answer) {
				res.Edited++
			}
		}
	}

	if len(deleted) > 0 {
		e.prompter.Println("The following entries will be permanently removed:")
		for _, key := range deleted {
			e.prompter.Println(fmt.Sprintf("- %s, %s", key, deletedCategory[key]))
		}
		confirm, err := e.prompter.Ask("Are you sure you want to proceed? (y/n): ")
		if err != nil {
			return res, apperror.WrapStage(apperror.StageCleanup, err)
		}
		if strings.ToLower(strings.TrimSpace(confirm)) != "y" {
			e.prompter.Println("No changes were made.")
			return EditResult{}, nil
		}
		for _, key := range deleted {
			if !pending[key] {
				// already replaced by a renamed rule
				res.Deleted++
				continue
			}
			if updated.Delete(key) {
				res.Deleted++
			}
		}
	}

	if err := e.store.Save(updated); err != nil {
		return res, apperror.WrapStage(apperror.StageCleanup, err)
	}
	res.Saved = true
	e.prompter.Println("Category rules updated.")
	e.logger.Info("Category rules edited",
		logging.F(logging.FieldFile, e.store.Path()),
		logging.F("edited", res.Edited),
		logging.F("deleted", res.Deleted))
	return res, nil
}

// apply performs one "key,category" edit on rules and reports whether it
// changed anything. Renaming onto a key that already exists is refused
// unless that key is pending deletion, in which case the rename takes it
// over and it leaves pending.
func (e *Editor) apply(rules *store.Rules, pending map[string]bool, key, category, answer string) bool {
	parts := strings.SplitN(answer, ",", 2)
	newKey := textutils.NormalizeKey(parts[0])
	if newKey == "" {
		newKey = key
	}
	newCategory := category
	if len(parts) > 1 {
		if c := textutils.NormalizeCategory(parts[1]); c != "" {
			newCategory = c
		}
	}

	if newKey != key {
		if _, exists := rules.Get(newKey); exists && !pending[newKey] {
			e.prompter.Println(fmt.Sprintf("Duplicate key %s, keeping the original entry.", newKey))
			return false
		}
		delete(pending, newKey)
		rules.Delete(key)
	}
	return rules.Upsert(newKey, newCategory) || newKey != key
}
