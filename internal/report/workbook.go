// Package report writes categorized transactions to an Excel workbook: one
// sheet listing the transactions, one pivot sheet with per-category totals
// and a chart of those totals.
package report

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"fjacquet/budgetwiz/internal/apperror"
	"fjacquet/budgetwiz/internal/fileutils"
	"fjacquet/budgetwiz/internal/logging"
	"fjacquet/budgetwiz/internal/models"
	"fjacquet/budgetwiz/internal/textutils"

	"github.com/xuri/excelize/v2"
)

const (
	defaultSheet       = "Sheet1"
	defaultPivotSuffix = " Pivot"
	defaultChartTitle  = "Expense Distribution"
	amountFormat       = `#,##0.00;[Red]-#,##0.00`
	maxColumnWidth     = 255
)

var (
	transactionHeader = []interface{}{"Date", "Description", "Amount", "Category"}
	pivotHeader       = []interface{}{"Category", "Total", "Count", "Chart Value"}
)

// Options configures the workbook layout.
type Options struct {
	ChartType   string // models.ChartTypePie or models.ChartTypeDoughnut
	ChartValues string // models.ChartValuesAbsolute or models.ChartValuesSigned
	ChartTitle  string
	PivotSuffix string
}

// Sheet is one transaction sheet to write. Source names the input the
// transactions came from and only appears in error messages.
type Sheet struct {
	Name         string
	Source       string
	Transactions []models.Transaction
}

// Builder creates workbooks.
type Builder struct {
	opts   Options
	logger logging.Logger
}

// NewBuilder returns a Builder, filling unset options with defaults.
func NewBuilder(opts Options, logger logging.Logger) *Builder {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	if opts.ChartType == "" {
		opts.ChartType = models.ChartTypePie
	}
	if opts.ChartValues == "" {
		opts.ChartValues = models.ChartValuesAbsolute
	}
	if opts.ChartTitle == "" {
		opts.ChartTitle = defaultChartTitle
	}
	if opts.PivotSuffix == "" {
		opts.PivotSuffix = defaultPivotSuffix
	}
	return &Builder{opts: opts, logger: logger}
}

// SheetNames returns the transaction and pivot sheet names used for name.
func (b *Builder) SheetNames(name string) (string, string) {
	name = textutils.SanitizeSheetName(name)
	if name == "" {
		name = "Transactions"
	}
	room := textutils.MaxSheetNameLength - utf8.RuneCountInString(b.opts.PivotSuffix)
	return name, textutils.TruncateRunes(name, room) + b.opts.PivotSuffix
}

// SheetConflictError reports two sheets of one run that would share a
// sheet name. Other is empty when a name collides with its own pivot sheet.
type SheetConflictError struct {
	Name   string
	Source string
	Other  string
}

func (e *SheetConflictError) Error() string {
	if e.Other == "" {
		return fmt.Sprintf("sheet %q of %s has no distinct pivot sheet name", e.Name, e.Source)
	}
	return fmt.Sprintf("sheet %q of %s collides with a sheet of %s", e.Name, e.Source, e.Other)
}

// CheckSheets fails when two sheets of one run would end up with the same
// transaction or pivot sheet name. Excel compares sheet names without
// regard to case, so neither does CheckSheets.
func (b *Builder) CheckSheets(sheets []Sheet) error {
	owner := make(map[string]int, 2*len(sheets))
	for i, s := range sheets {
		name, pivot := b.SheetNames(s.Name)
		for _, n := range []string{name, pivot} {
			key := strings.ToLower(n)
			j, taken := owner[key]
			if !taken {
				owner[key] = i
				continue
			}
			conflict := &SheetConflictError{Name: n, Source: sheetSource(s)}
			if j != i {
				conflict.Other = sheetSource(sheets[j])
			}
			return conflict
		}
	}
	return nil
}

func sheetSource(s Sheet) string {
	if s.Source != "" {
		return s.Source
	}
	return fmt.Sprintf("sheet %q", s.Name)
}

// Build returns a new in-memory workbook holding txs under sheet. The
// caller owns the returned file and must close it.
func (b *Builder) Build(txs []models.Transaction, sheet string) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := b.addSheets(f, Sheet{Name: sheet, Transactions: txs}); err != nil {
		_ = f.Close()
		return nil, err
	}
	if err := b.finish(f, true, []Sheet{{Name: sheet}}); err != nil {
		_ = f.Close()
		return nil, err
	}
	return f, nil
}

// Write builds the sheets for txs and writes them to path.
func (b *Builder) Write(txs []models.Transaction, sheet, path string) error {
	return b.WriteSheets([]Sheet{{Name: sheet, Transactions: txs}}, path)
}

// WriteSheets adds every sheet to the workbook at path and saves it. An
// existing workbook is updated: sheets with the same names are replaced and
// all others are kept. The file is replaced atomically, so on error the
// previous workbook (or no file) remains.
func (b *Builder) WriteSheets(sheets []Sheet, path string) error {
	if err := b.CheckSheets(sheets); err != nil {
		return &apperror.OutputError{Path: path, Err: err}
	}
	f, created, err := b.open(path)
	if err != nil {
		return &apperror.OutputError{Path: path, Err: err}
	}
	defer f.Close()

	for _, s := range sheets {
		if err := b.addSheets(f, s); err != nil {
			return &apperror.OutputError{Path: path, Err: err}
		}
	}
	if err := b.finish(f, created, sheets); err != nil {
		return &apperror.OutputError{Path: path, Err: err}
	}

	err = fileutils.WriteFileAtomic(path, models.PermissionDataFile, func(w io.Writer) error {
		return f.Write(w)
	})
	if err != nil {
		return &apperror.OutputError{Path: path, Err: err}
	}

	b.logger.Info("Workbook written",
		logging.F(logging.FieldOutputFile, path),
		logging.F(logging.FieldCount, len(sheets)))
	return nil
}

func (b *Builder) open(path string) (*excelize.File, bool, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return excelize.NewFile(), true, nil
		}
		return nil, false, err
	}
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, false, fmt.Errorf("cannot open existing workbook: %w", err)
	}
	b.logger.Debug("Updating existing workbook", logging.F(logging.FieldOutputFile, path))
	return f, false, nil
}

// finish removes the placeholder sheet of a new workbook, unless a written
// sheet took its place, and activates the last transaction sheet written.
func (b *Builder) finish(f *excelize.File, created bool, sheets []Sheet) error {
	used := make(map[string]bool)
	last := ""
	for _, s := range sheets {
		name, pivot := b.SheetNames(s.Name)
		used[strings.ToLower(name)], used[strings.ToLower(pivot)] = true, true
		last = name
	}
	if created && !used[strings.ToLower(defaultSheet)] {
		if err := f.DeleteSheet(defaultSheet); err != nil {
			return err
		}
	}
	if last != "" {
		idx, err := f.GetSheetIndex(last)
		if err != nil {
			return err
		}
		f.SetActiveSheet(idx)
	}
	return nil
}

func (b *Builder) addSheets(f *excelize.File, s Sheet) error {
	name, pivotName := b.SheetNames(s.Name)
	logger := b.logger.WithField(logging.FieldSheet, name)

	if err := replaceSheet(f, name); err != nil {
		return fmt.Errorf("sheet %q: %w", name, err)
	}
	if err := b.writeTransactions(f, name, s.Transactions); err != nil {
		return fmt.Errorf("sheet %q: %w", name, err)
	}

	pivot := BuildPivot(s.Transactions)
	if err := replaceSheet(f, pivotName); err != nil {
		return fmt.Errorf("sheet %q: %w", pivotName, err)
	}
	if err := b.writePivot(f, pivotName, pivot); err != nil {
		return fmt.Errorf("sheet %q: %w", pivotName, err)
	}

	logger.Debug("Sheets built",
		logging.F(logging.FieldCount, len(s.Transactions)),
		logging.F("categories", len(pivot.Rows)))
	return nil
}

// replaceSheet leaves an empty sheet called name in f. An existing sheet
// is swapped for a fresh one; the swap goes through a temporary sheet
// because a workbook's only sheet cannot be deleted.
func replaceSheet(f *excelize.File, name string) error {
	idx, err := f.GetSheetIndex(name)
	if err != nil {
		return err
	}
	if idx < 0 {
		_, err := f.NewSheet(name)
		return err
	}

	tmp := "~" + textutils.TruncateRunes(name, textutils.MaxSheetNameLength-1)
	if _, err := f.NewSheet(tmp); err != nil {
		return err
	}
	if err := f.DeleteSheet(name); err != nil {
		return err
	}
	return f.SetSheetName(tmp, name)
}

func (b *Builder) writeTransactions(f *excelize.File, sheet string, txs []models.Transaction) error {
	if err := f.SetSheetRow(sheet, "A1", &transactionHeader); err != nil {
		return err
	}
	for i, tx := range txs {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{tx.FormattedDate(), tx.Description, tx.Amount.InexactFloat64(), tx.Category}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}

	st, err := newStyles(f)
	if err != nil {
		return err
	}
	last := len(txs) + 1
	if err := f.SetCellStyle(sheet, "A1", "D1", st.header); err != nil {
		return err
	}
	if len(txs) > 0 {
		if err := f.SetCellStyle(sheet, "A2", fmt.Sprintf("D%d", last), st.body); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, "C2", fmt.Sprintf("C%d", last), st.amount); err != nil {
			return err
		}
	}
	return autofit(f, sheet)
}

func (b *Builder) writePivot(f *excelize.File, sheet string, p Pivot) error {
	if err := f.SetSheetRow(sheet, "A1", &pivotHeader); err != nil {
		return err
	}
	for i, r := range p.Rows {
		chartValue := r.Total
		if b.opts.ChartValues != models.ChartValuesSigned {
			chartValue = chartValue.Abs()
		}
		row := []interface{}{r.Category, r.Total.InexactFloat64(), r.Count, chartValue.InexactFloat64()}
		if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", i+2), &row); err != nil {
			return err
		}
	}
	totalRow := len(p.Rows) + 2
	total := []interface{}{"Grand Total", p.GrandTotal.InexactFloat64(), p.Count}
	if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", totalRow), &total); err != nil {
		return err
	}

	st, err := newStyles(f)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", "D1", st.header); err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A2", fmt.Sprintf("D%d", totalRow), st.body); err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "B2", fmt.Sprintf("B%d", totalRow), st.amount); err != nil {
		return err
	}
	if len(p.Rows) > 0 {
		if err := f.SetCellStyle(sheet, "D2", fmt.Sprintf("D%d", totalRow-1), st.amount); err != nil {
			return err
		}
	}
	if err := f.SetCellStyle(sheet, fmt.Sprintf("A%d", totalRow), fmt.Sprintf("C%d", totalRow), st.total); err != nil {
		return err
	}
	if err := autofit(f, sheet); err != nil {
		return err
	}

	if len(p.Rows) == 0 {
		return nil
	}
	return b.addChart(f, sheet, len(p.Rows))
}

func (b *Builder) addChart(f *excelize.File, sheet string, rows int) error {
	ref := quoteSheet(sheet)
	chartType := excelize.Pie
	if b.opts.ChartType == models.ChartTypeDoughnut {
		chartType = excelize.Doughnut
	}

	chart := &excelize.Chart{
		Type: chartType,
		Series: []excelize.ChartSeries{{
			Name:       fmt.Sprintf("%s!$D$1", ref),
			Categories: fmt.Sprintf("%s!$A$2:$A$%d", ref, rows+1),
			Values:     fmt.Sprintf("%s!$D$2:$D$%d", ref, rows+1),
		}},
		Title:     []excelize.RichTextRun{{Text: b.opts.ChartTitle}},
		Legend:    excelize.ChartLegend{Position: "right"},
		PlotArea:  excelize.ChartPlotArea{ShowPercent: true, ShowVal: true},
		Dimension: excelize.ChartDimension{Width: 560, Height: 360},
	}
	if chartType == excelize.Doughnut {
		chart.HoleSize = 50
	}
	return f.AddChart(sheet, "F2", chart)
}

// quoteSheet returns sheet as used in a cell reference.
func quoteSheet(sheet string) string {
	return "'" + strings.ReplaceAll(sheet, "'", "''") + "'"
}
