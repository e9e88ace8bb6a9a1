package categorizer

import (
	"context"

	"fjacquet/budgetwiz/internal/logging"
	"fjacquet/budgetwiz/internal/models"
)

// RuleLookup is the part of store.Rules the direct mapping needs.
type RuleLookup interface {
	Lookup(description, mode string) (models.Category, bool)
}

// DirectMappingStrategy looks the description key up in the rule set.
type DirectMappingStrategy struct {
	rules  RuleLookup
	mode   string
	logger logging.Logger
}

// NewDirectMappingStrategy returns a strategy over rules using the given
// match mode (models.MatchExact or models.MatchContains).
func NewDirectMappingStrategy(rules RuleLookup, mode string, logger logging.Logger) *DirectMappingStrategy {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	if mode == "" {
		mode = models.MatchContains
	}
	return &DirectMappingStrategy{rules: rules, mode: mode, logger: logger}
}

// Name returns the name of this strategy for logging and debugging.
func (s *DirectMappingStrategy) Name() string {
	return "DirectMapping"
}

// Categorize attempts to categorize a transaction using the stored rules.
func (s *DirectMappingStrategy) Categorize(ctx context.Context, tx models.Transaction, key string) (models.Category, bool, error) {
	if key == "" || s.rules == nil {
		return models.Category{}, false, nil
	}

	category, found := s.rules.Lookup(key, s.mode)
	if !found || category.Name == "" {
		return models.Category{}, false, nil
	}

	s.logger.Debug("Transaction categorized using direct mapping",
		logging.F(logging.FieldStrategy, s.Name()),
		logging.F(logging.FieldDescription, tx.Description),
		logging.F(logging.FieldKey, category.Key),
		logging.F(logging.FieldCategory, category.Name))
	return category, true, nil
}
