// Package pipeline runs a full budgetwiz report: load every input, assign
// categories, persist what was learned and write the workbook.
package pipeline

import (
	"context"
	"errors"
	"fmt"

	"fjacquet/budgetwiz/internal/apperror"
	"fjacquet/budgetwiz/internal/categorizer"
	"fjacquet/budgetwiz/internal/fileutils"
	"fjacquet/budgetwiz/internal/loader"
	"fjacquet/budgetwiz/internal/logging"
	"fjacquet/budgetwiz/internal/models"
	"fjacquet/budgetwiz/internal/report"
	"fjacquet/budgetwiz/internal/store"
	"fjacquet/budgetwiz/internal/textutils"
)

// TransactionLoader reads one input file.
type TransactionLoader interface {
	Load(path string) (loader.Result, error)
}

// TransactionCategorizer assigns categories using and updating rules.
type TransactionCategorizer interface {
	Categorize(ctx context.Context, txs []models.Transaction, rules *store.Rules) ([]models.Transaction, categorizer.Stats, error)
}

// WorkbookWriter writes transaction sheets to a workbook file.
type WorkbookWriter interface {
	CheckSheets(sheets []report.Sheet) error
	WriteSheets(sheets []report.Sheet, path string) error
}

// Job is one input file and the sheet it goes to. An empty Sheet is
// derived from the file name.
type Job struct {
	Input string
	Sheet string
}

// Summary describes a finished run.
type Summary struct {
	Output       string
	Sheets       []string
	Transactions int
	Skipped      int
	Excluded     int
	Stats        categorizer.Stats
	StoreSaved   bool
}

// Runner wires the stages together.
type Runner struct {
	loader      TransactionLoader
	categorizer TransactionCategorizer
	store       store.CategoryStore
	writer      WorkbookWriter
	inputSuffix string
	logger      logging.Logger
}

// NewRunner returns a Runner. inputSuffix is stripped from input file names
// when deriving default sheet names.
func NewRunner(l TransactionLoader, c TransactionCategorizer, s store.CategoryStore, w WorkbookWriter, inputSuffix string, logger logging.Logger) *Runner {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	return &Runner{
		loader:      l,
		categorizer: c,
		store:       s,
		writer:      w,
		inputSuffix: inputSuffix,
		logger:      logger,
	}
}

// SheetName returns the sheet used for job.
func (r *Runner) SheetName(job Job) string {
	if job.Sheet != "" {
		return job.Sheet
	}
	return textutils.SheetNameFromFile(job.Input, r.inputSuffix)
}

// Run processes jobs into the workbook at output. Every input is loaded
// before any question is asked, so a bad file fails fast. Rules learned
// during categorization are saved even if categorization then fails.
// Returned errors carry the stage that failed.
func (r *Runner) Run(ctx context.Context, jobs []Job, output string) (Summary, error) {
	summary := Summary{Output: output}
	if len(jobs) == 0 {
		return summary, apperror.WrapStage(apperror.StageLoad, &apperror.InputError{Reason: "no input files"})
	}

	sheets := make([]report.Sheet, len(jobs))
	for i, job := range jobs {
		if err := ctx.Err(); err != nil {
			return summary, apperror.WrapStage(apperror.StageLoad, err)
		}
		res, err := r.loader.Load(job.Input)
		if err != nil {
			return summary, apperror.WrapStage(apperror.StageLoad, err)
		}
		sheets[i] = report.Sheet{Name: r.SheetName(job), Source: job.Input, Transactions: res.Transactions}
		summary.Transactions += len(res.Transactions)
		summary.Skipped += len(res.Skipped)
		summary.Excluded += res.Excluded
	}

	if err := r.writer.CheckSheets(sheets); err != nil {
		path := ""
		var conflict *report.SheetConflictError
		if errors.As(err, &conflict) {
			path = conflict.Source
		}
		return summary, apperror.WrapStage(apperror.StageLoad, &apperror.InputError{
			Path:   path,
			Reason: "conflicting sheet names",
			Err:    err,
		})
	}

	rules, err := r.store.Load()
	if err != nil {
		return summary, apperror.WrapStage(apperror.StageCategorize, err)
	}

	for i := range sheets {
		logger := r.logger.WithField(logging.FieldSheet, sheets[i].Name)
		logger.Info("Categorizing transactions", logging.F(logging.FieldCount, len(sheets[i].Transactions)))

		txs, stats, err := r.categorizer.Categorize(ctx, sheets[i].Transactions, rules)
		summary.Stats.Matched += stats.Matched
		summary.Stats.Resolved += stats.Resolved
		summary.Stats.Prompts += stats.Prompts
		if err != nil {
			if saveErr := r.saveRules(rules, &summary); saveErr != nil {
				logger.WithError(saveErr).Error("Failed to save learned category rules")
			}
			return summary, apperror.WrapStage(apperror.StageCategorize, err)
		}
		sheets[i].Transactions = txs
	}

	if err := r.saveRules(rules, &summary); err != nil {
		return summary, apperror.WrapStage(apperror.StageCategorize, err)
	}

	if err := r.writer.WriteSheets(sheets, output); err != nil {
		return summary, apperror.WrapStage(apperror.StageBuild, err)
	}
	for _, s := range sheets {
		summary.Sheets = append(summary.Sheets, s.Name)
	}

	r.logger.Info("Report complete",
		logging.F(logging.FieldOutputFile, output),
		logging.F(logging.FieldCount, summary.Transactions),
		logging.F("prompts", summary.Stats.Prompts))
	return summary, nil
}

func (r *Runner) saveRules(rules *store.Rules, summary *Summary) error {
	if summary.Stats.Resolved == 0 || summary.StoreSaved {
		return nil
	}
	if err := r.store.Save(rules); err != nil {
		return err
	}
	summary.StoreSaved = true
	r.logger.Info("Category rules saved",
		logging.F(logging.FieldFile, r.store.Path()),
		logging.F(logging.FieldCount, rules.Len()))
	return nil
}

// JobsFromDir returns one job per file in dir whose name ends with suffix,
// sorted by name.
func JobsFromDir(dir, suffix string) ([]Job, error) {
	files, err := fileutils.ListFilesWithSuffix(dir, suffix)
	if err != nil {
		return nil, apperror.WrapStage(apperror.StageLoad, &apperror.InputError{Path: dir, Reason: "cannot list directory", Err: err})
	}
	if len(files) == 0 {
		return nil, apperror.WrapStage(apperror.StageLoad, &apperror.InputError{
			Path:   dir,
			Reason: fmt.Sprintf("no files ending in %q", suffix),
		})
	}
	jobs := make([]Job, len(files))
	for i, f := range files {
		jobs[i] = Job{Input: f}
	}
	return jobs, nil
}
