package report

import (
	"sort"

	"fjacquet/budgetwiz/internal/models"

	"github.com/shopspring/decimal"
)

// PivotRow aggregates one category.
type PivotRow struct {
	Category string
	Total    decimal.Decimal // signed sum of amounts
	Count    int
}

// Pivot is the per-category summary of a transaction sheet.
type Pivot struct {
	Rows       []PivotRow
	GrandTotal decimal.Decimal
	Count      int
}

// BuildPivot sums amounts per category. Rows are ordered by descending
// absolute total, ties broken by category name. Transactions without a
// category are counted under models.CategoryUncategorized.
func BuildPivot(txs []models.Transaction) Pivot {
	index := make(map[string]int)
	var p Pivot
	for _, tx := range txs {
		category := tx.Category
		if category == "" {
			category = models.CategoryUncategorized
		}
		i, ok := index[category]
		if !ok {
			i = len(p.Rows)
			index[category] = i
			p.Rows = append(p.Rows, PivotRow{Category: category})
		}
		p.Rows[i].Total = p.Rows[i].Total.Add(tx.Amount)
		p.Rows[i].Count++
		p.GrandTotal = p.GrandTotal.Add(tx.Amount)
		p.Count++
	}

	sort.Slice(p.Rows, func(i, j int) bool {
		ai, aj := p.Rows[i].Total.Abs(), p.Rows[j].Total.Abs()
		if c := ai.Cmp(aj); c != 0 {
			return c > 0
		}
		return p.Rows[i].Category < p.Rows[j].Category
	})
	return p
}

// Row returns the row for category.
func (p Pivot) Row(category string) (PivotRow, bool) {
	for _, r := range p.Rows {
		if r.Category == category {
			return r, true
		}
	}
	return PivotRow{}, false
}
