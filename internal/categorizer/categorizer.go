// Package categorizer assigns a category to every transaction.
//
// Known descriptions are matched against the category rules. For any other
// description the Resolver is asked once; the answer is added to the rules
// so later transactions with the same description match without asking.
package categorizer

import (
	"context"

	"fjacquet/budgetwiz/internal/apperror"
	"fjacquet/budgetwiz/internal/logging"
	"fjacquet/budgetwiz/internal/models"
	"fjacquet/budgetwiz/internal/store"
	"fjacquet/budgetwiz/internal/textutils"
)

// Options configures a Categorizer.
type Options struct {
	// MatchMode is models.MatchContains (default) or models.MatchExact.
	MatchMode string

	// DefaultCategory replaces an empty resolver answer. When empty, an
	// empty answer is an error.
	DefaultCategory string

	// CleanDescriptions strips store numbers, phone numbers and payment
	// processor prefixes before deriving the key.
	CleanDescriptions bool
}

// Stats counts how each transaction of a run got its category.
type Stats struct {
	Matched  int // found by a strategy
	Resolved int // answered by the resolver
	Prompts  int // resolver calls, including failed ones
}

// Categorizer runs the strategy chain and falls back to the resolver.
type Categorizer struct {
	opts     Options
	resolver Resolver
	extra    []CategorizationStrategy
	logger   logging.Logger
}

// New returns a Categorizer. resolver may be nil, in which case unknown
// descriptions fail with apperror.ErrNonInteractive.
func New(opts Options, resolver Resolver, logger logging.Logger) *Categorizer {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	if opts.MatchMode == "" {
		opts.MatchMode = models.MatchContains
	}
	return &Categorizer{opts: opts, resolver: resolver, logger: logger}
}

// AddStrategy appends a strategy tried after the stored rules.
func (c *Categorizer) AddStrategy(s CategorizationStrategy) {
	c.extra = append(c.extra, s)
}

// Key returns the rule key for a description.
func (c *Categorizer) Key(description string) string {
	if c.opts.CleanDescriptions {
		if key := textutils.CleanDescription(description); key != "" {
			return key
		}
	}
	return textutils.NormalizeKey(description)
}

// Lookup finds the category of a single description without resolving.
func (c *Categorizer) Lookup(description string, rules *store.Rules) (models.Category, bool) {
	return rules.Lookup(c.Key(description), c.opts.MatchMode)
}

// Categorize returns a copy of txs with every Category set. New answers
// from the resolver are upserted into rules as they arrive, so on error
// rules still holds everything learned so far.
func (c *Categorizer) Categorize(ctx context.Context, txs []models.Transaction, rules *store.Rules) ([]models.Transaction, Stats, error) {
	var stats Stats
	strategies := append([]CategorizationStrategy{
		NewDirectMappingStrategy(rules, c.opts.MatchMode, c.logger),
	}, c.extra...)

	out := make([]models.Transaction, len(txs))
	for i, tx := range txs {
		if err := ctx.Err(); err != nil {
			return nil, stats, &apperror.CategorizationError{Description: tx.Description, Line: tx.Line, Err: err}
		}

		key := c.Key(tx.Description)
		category, found, err := c.tryStrategies(ctx, strategies, tx, key)
		if err != nil {
			return nil, stats, &apperror.CategorizationError{Description: tx.Description, Line: tx.Line, Err: err}
		}
		if found {
			stats.Matched++
			out[i] = tx.WithCategory(category.Name)
			continue
		}

		stats.Prompts++
		name, err := c.resolve(ctx, tx)
		if err != nil {
			return nil, stats, &apperror.CategorizationError{Description: tx.Description, Line: tx.Line, Err: err}
		}

		rules.Upsert(key, name)
		stats.Resolved++
		out[i] = tx.WithCategory(name)
		c.logger.Info("Learned category rule",
			logging.F(logging.FieldKey, key),
			logging.F(logging.FieldCategory, name))
	}

	c.logger.Debug("Categorization finished",
		logging.F(logging.FieldCount, len(out)),
		logging.F("matched", stats.Matched),
		logging.F("resolved", stats.Resolved))
	return out, stats, nil
}

func (c *Categorizer) tryStrategies(ctx context.Context, strategies []CategorizationStrategy, tx models.Transaction, key string) (models.Category, bool, error) {
	for _, s := range strategies {
		category, found, err := s.Categorize(ctx, tx, key)
		if err != nil {
			c.logger.WithError(err).Warn("Categorization strategy failed",
				logging.F(logging.FieldStrategy, s.Name()))
			return models.Category{}, false, err
		}
		if found {
			return category, true, nil
		}
	}
	return models.Category{}, false, nil
}

func (c *Categorizer) resolve(ctx context.Context, tx models.Transaction) (string, error) {
	if c.resolver == nil {
		return "", apperror.ErrNonInteractive
	}

	answer, err := c.resolver.ResolveCategory(ctx, tx)
	if err != nil {
		return "", err
	}

	name := textutils.NormalizeCategory(answer)
	if name == "" {
		if c.opts.DefaultCategory == "" {
			return "", apperror.ErrEmptyCategory
		}
		name = c.opts.DefaultCategory
		c.logger.Debug("Empty answer, using default category",
			logging.F(logging.FieldDescription, tx.Description),
			logging.F(logging.FieldCategory, name))
	}
	return name, nil
}
