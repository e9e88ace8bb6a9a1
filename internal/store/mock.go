package store

import "fjacquet/budgetwiz/internal/models"

// MockCategoryStore is an in-memory CategoryStore for tests.
type MockCategoryStore struct {
	Entries []models.CategoryRule

	LoadError error
	SaveError error

	// SaveCalls counts Save invocations; Saved holds the last saved entries.
	SaveCalls int
	Saved     []models.CategoryRule
}

// Path returns a fixed fake path.
func (m *MockCategoryStore) Path() string { return "/mock/categories.csv" }

// Load returns the mock entries as rules.
func (m *MockCategoryStore) Load() (*Rules, error) {
	if m.LoadError != nil {
		return nil, m.LoadError
	}
	return RulesFromEntries(m.Entries), nil
}

// LoadEntries returns a copy of the mock entries.
func (m *MockCategoryStore) LoadEntries() ([]models.CategoryRule, error) {
	if m.LoadError != nil {
		return nil, m.LoadError
	}
	out := make([]models.CategoryRule, len(m.Entries))
	copy(out, m.Entries)
	return out, nil
}

// Save records rules and replaces the mock entries with them.
func (m *MockCategoryStore) Save(rules *Rules) error {
	m.SaveCalls++
	if m.SaveError != nil {
		return m.SaveError
	}
	m.Saved = rules.Entries()
	m.Entries = m.Saved
	return nil
}
