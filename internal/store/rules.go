package store

import (
	"sort"
	"strings"

	"fjacquet/budgetwiz/internal/models"
	"fjacquet/budgetwiz/internal/textutils"
)

// Rules is the in-memory key to category mapping. Keys are normalized with
// textutils.NormalizeKey on every write, so a key can only appear once.
type Rules struct {
	entries map[string]string
}

// NewRules returns an empty rule set.
func NewRules() *Rules {
	return &Rules{entries: make(map[string]string)}
}

// RulesFromEntries builds a rule set from entries in file order. A later
// entry for the same key overwrites an earlier one.
func RulesFromEntries(entries []models.CategoryRule) *Rules {
	r := &Rules{entries: make(map[string]string, len(entries))}
	for _, e := range entries {
		r.Upsert(e.Key, e.Category)
	}
	return r
}

// Len returns the number of rules.
func (r *Rules) Len() int {
	return len(r.entries)
}

// Get returns the category stored under key.
func (r *Rules) Get(key string) (string, bool) {
	category, ok := r.entries[textutils.NormalizeKey(key)]
	return category, ok
}

// Upsert inserts or overwrites the rule for key. Empty keys are ignored.
// It reports whether the rule set changed.
func (r *Rules) Upsert(key, category string) bool {
	key = textutils.NormalizeKey(key)
	if key == "" {
		return false
	}
	if r.entries == nil {
		r.entries = make(map[string]string)
	}
	if old, ok := r.entries[key]; ok && old == category {
		return false
	}
	r.entries[key] = category
	return true
}

// Delete removes the rule for key and reports whether it existed.
func (r *Rules) Delete(key string) bool {
	key = textutils.NormalizeKey(key)
	if _, ok := r.entries[key]; !ok {
		return false
	}
	delete(r.entries, key)
	return true
}

// Lookup finds the rule for a description key. An exact key match always
// wins. In MatchContains mode the longest stored key contained in the
// description is used next, ties going to the alphabetically first key.
func (r *Rules) Lookup(description, mode string) (models.Category, bool) {
	key := textutils.NormalizeKey(description)
	if key == "" {
		return models.Category{}, false
	}
	if category, ok := r.entries[key]; ok {
		return models.Category{Name: category, Key: key}, true
	}
	if mode != models.MatchContains {
		return models.Category{}, false
	}

	best := ""
	for k := range r.entries {
		if !strings.Contains(key, k) {
			continue
		}
		if len(k) > len(best) || (len(k) == len(best) && k < best) {
			best = k
		}
	}
	if best == "" {
		return models.Category{}, false
	}
	return models.Category{Name: r.entries[best], Key: best}, true
}

// Entries returns all rules sorted by category, then key.
func (r *Rules) Entries() []models.CategoryRule {
	out := make([]models.CategoryRule, 0, len(r.entries))
	for k, v := range r.entries {
		out = append(out, models.CategoryRule{Key: k, Category: v})
	}
	SortEntries(out)
	return out
}

// Clone returns an independent copy.
func (r *Rules) Clone() *Rules {
	c := &Rules{entries: make(map[string]string, len(r.entries))}
	for k, v := range r.entries {
		c.entries[k] = v
	}
	return c
}

// SortEntries orders entries by category, then key.
func SortEntries(entries []models.CategoryRule) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Category != entries[j].Category {
			return entries[i].Category < entries[j].Category
		}
		return entries[i].Key < entries[j].Key
	})
}
