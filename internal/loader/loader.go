// Package loader reads bank export CSV files into transactions.
//
// Columns are located by header name, so column order does not matter and
// extra columns are ignored. Two amount layouts are supported: a single
// signed amount column, or a debit/credit pair where credits become
// negative amounts. Rows that cannot be parsed are logged and skipped.
package loader

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"fjacquet/budgetwiz/internal/apperror"
	"fjacquet/budgetwiz/internal/dateutils"
	"fjacquet/budgetwiz/internal/logging"
	"fjacquet/budgetwiz/internal/models"

	"github.com/shopspring/decimal"
)

// Columns lists the accepted header names for each field. Matching is
// case-insensitive.
type Columns struct {
	Date         []string
	Description  []string
	Amount       []string
	Debit        []string
	Credit       []string
	BankCategory []string
}

// DefaultColumns returns the header names used when none are configured.
func DefaultColumns() Columns {
	return Columns{
		Date:         []string{"date", "transaction date"},
		Description:  []string{"description", "name", "memo"},
		Amount:       []string{"amount"},
		Debit:        []string{"debit"},
		Credit:       []string{"credit"},
		BankCategory: []string{"category"},
	}
}

// Options configures a Loader.
type Options struct {
	Columns Columns

	// DateFormats are Go layouts tried in order; empty means
	// dateutils.DefaultLayouts.
	DateFormats []string

	// ExcludeBankCategories drops rows whose bank category contains one of
	// these values, such as card payments.
	ExcludeBankCategories []string
}

// Result is the outcome of a load.
type Result struct {
	Transactions []models.Transaction
	Skipped      []apperror.RowError
	Excluded     int
}

// Loader parses transaction CSV files.
type Loader struct {
	opts   Options
	logger logging.Logger
}

// New returns a Loader. Empty column lists fall back to DefaultColumns.
func New(opts Options, logger logging.Logger) *Loader {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	def := DefaultColumns()
	opts.Columns.Date = orDefault(opts.Columns.Date, def.Date)
	opts.Columns.Description = orDefault(opts.Columns.Description, def.Description)
	opts.Columns.Amount = orDefault(opts.Columns.Amount, def.Amount)
	opts.Columns.Debit = orDefault(opts.Columns.Debit, def.Debit)
	opts.Columns.Credit = orDefault(opts.Columns.Credit, def.Credit)
	opts.Columns.BankCategory = orDefault(opts.Columns.BankCategory, def.BankCategory)
	return &Loader{opts: opts, logger: logger}
}

func orDefault(v, def []string) []string {
	if len(v) == 0 {
		return def
	}
	return v
}

// Load reads the CSV file at path.
func (l *Loader) Load(path string) (Result, error) {
	file, err := os.Open(path)
	if err != nil {
		reason := "cannot open file"
		if errors.Is(err, os.ErrNotExist) {
			reason = "file not found"
		}
		return Result{}, &apperror.InputError{Path: path, Reason: reason, Err: err}
	}
	defer file.Close()

	return l.Parse(file, path)
}

// layout holds the resolved column indexes of a file; -1 means absent.
type layout struct {
	date, description     int
	amount, debit, credit int
	bankCategory          int
	width                 int
}

func (c layout) pair() bool { return c.amount < 0 }

// Parse reads CSV data from r. source names the input in errors and logs.
func (l *Loader) Parse(r io.Reader, source string) (Result, error) {
	logger := l.logger.WithField(logging.FieldInputFile, source)

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return Result{}, &apperror.InputError{Path: source, Reason: "file is empty"}
	}
	if err != nil {
		return Result{}, &apperror.InputError{Path: source, Reason: "cannot read header", Err: err}
	}

	cols, err := l.resolveColumns(header)
	if err != nil {
		return Result{}, &apperror.InputError{Path: source, Reason: err.Error()}
	}

	var res Result
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if !errors.As(err, &parseErr) {
				return Result{}, &apperror.InputError{Path: source, Reason: "read failed", Err: err}
			}
			rowErr := apperror.RowError{Line: parseErr.StartLine, Raw: strings.Join(record, ","), Reason: parseErr.Err.Error()}
			l.skip(logger, &res, rowErr)
			continue
		}

		line, _ := reader.FieldPos(0)
		if blank(record) {
			continue
		}

		tx, excluded, rowErr := l.parseRecord(record, cols, line)
		switch {
		case rowErr != nil:
			l.skip(logger, &res, *rowErr)
		case excluded:
			res.Excluded++
			logger.Debug("Excluding transaction by bank category",
				logging.F(logging.FieldLine, line),
				logging.F(logging.FieldCategory, tx.BankCategory))
		default:
			res.Transactions = append(res.Transactions, tx)
		}
	}

	if len(res.Transactions) == 0 {
		return res, &apperror.InputError{Path: source, Reason: "no transactions found"}
	}

	logger.Info("Loaded transactions",
		logging.F(logging.FieldCount, len(res.Transactions)),
		logging.F("skipped", len(res.Skipped)),
		logging.F("excluded", res.Excluded))
	return res, nil
}

func (l *Loader) skip(logger logging.Logger, res *Result, rowErr apperror.RowError) {
	res.Skipped = append(res.Skipped, rowErr)
	logger.Warn("Skipping malformed row",
		logging.F(logging.FieldLine, rowErr.Line),
		logging.F(logging.FieldReason, rowErr.Reason),
		logging.F(logging.FieldRaw, rowErr.Raw))
}

func (l *Loader) resolveColumns(header []string) (layout, error) {
	index := make(map[string]int, len(header))
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if _, seen := index[name]; !seen {
			index[name] = i
		}
	}
	find := func(aliases []string) int {
		for _, a := range aliases {
			if i, ok := index[strings.ToLower(strings.TrimSpace(a))]; ok {
				return i
			}
		}
		return -1
	}

	c := layout{
		date:         find(l.opts.Columns.Date),
		description:  find(l.opts.Columns.Description),
		amount:       find(l.opts.Columns.Amount),
		debit:        find(l.opts.Columns.Debit),
		credit:       find(l.opts.Columns.Credit),
		bankCategory: find(l.opts.Columns.BankCategory),
		width:        len(header),
	}

	var missing []string
	if c.date < 0 {
		missing = append(missing, "date")
	}
	if c.description < 0 {
		missing = append(missing, "description")
	}
	if c.amount < 0 && c.debit < 0 && c.credit < 0 {
		missing = append(missing, "amount (or debit/credit)")
	}
	if len(missing) > 0 {
		return c, fmt.Errorf("unrecognized column layout, missing %s", strings.Join(missing, ", "))
	}
	return c, nil
}

func (l *Loader) parseRecord(record []string, c layout, line int) (models.Transaction, bool, *apperror.RowError) {
	raw := strings.Join(record, ",")
	fail := func(format string, args ...interface{}) (models.Transaction, bool, *apperror.RowError) {
		return models.Transaction{}, false, &apperror.RowError{Line: line, Raw: raw, Reason: fmt.Sprintf(format, args...)}
	}

	if len(record) != c.width {
		return fail("expected %d fields, got %d", c.width, len(record))
	}

	date, _, err := dateutils.ParseDate(record[c.date], l.opts.DateFormats)
	if err != nil {
		return fail("invalid date %q", record[c.date])
	}

	description := strings.TrimSpace(record[c.description])
	if description == "" {
		return fail("empty description")
	}

	amount, err := amountOf(record, c)
	if err != nil {
		return fail("%v", err)
	}

	tx := models.Transaction{
		Line:        line,
		Date:        date,
		Description: description,
		Amount:      amount,
	}
	if c.bankCategory >= 0 {
		tx.BankCategory = strings.TrimSpace(record[c.bankCategory])
	}
	return tx, l.excluded(tx.BankCategory), nil
}

// amountOf returns the signed amount. In the debit/credit layout a debit
// is taken as is and a credit is negated.
func amountOf(record []string, c layout) (decimal.Decimal, error) {
	if !c.pair() {
		return ParseAmount(record[c.amount])
	}
	if c.debit >= 0 && strings.TrimSpace(record[c.debit]) != "" {
		return ParseAmount(record[c.debit])
	}
	if c.credit >= 0 && strings.TrimSpace(record[c.credit]) != "" {
		credit, err := ParseAmount(record[c.credit])
		if err != nil {
			return decimal.Zero, err
		}
		return credit.Neg(), nil
	}
	return decimal.Zero, fmt.Errorf("missing debit and credit")
}

func (l *Loader) excluded(bankCategory string) bool {
	if bankCategory == "" {
		return false
	}
	lower := strings.ToLower(bankCategory)
	for _, ex := range l.opts.ExcludeBankCategories {
		ex = strings.ToLower(strings.TrimSpace(ex))
		if ex != "" && strings.Contains(lower, ex) {
			return true
		}
	}
	return false
}

func blank(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
