package categorizer

import (
	"context"

	"fjacquet/budgetwiz/internal/models"
)

// CategorizationStrategy is one way of finding a category without asking
// the user. Strategies are tried in order until one reports found.
type CategorizationStrategy interface {
	// Categorize returns the category for tx. key is the normalized
	// description key the categorizer derived for tx.
	Categorize(ctx context.Context, tx models.Transaction, key string) (models.Category, bool, error)

	// Name identifies the strategy in logs.
	Name() string
}

// Resolver supplies a category for a transaction no strategy could match,
// typically by asking the user.
type Resolver interface {
	ResolveCategory(ctx context.Context, tx models.Transaction) (string, error)
}

// ResolverFunc adapts a function to Resolver.
type ResolverFunc func(ctx context.Context, tx models.Transaction) (string, error)

// ResolveCategory calls f.
func (f ResolverFunc) ResolveCategory(ctx context.Context, tx models.Transaction) (string, error) {
	return f(ctx, tx)
}
