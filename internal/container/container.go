// Package container provides dependency injection for budgetwiz.
// It centralizes the creation and wiring of all application dependencies,
// making them explicit and testable.
package container

import (
	"fmt"
	"io"
	"os"

	"fjacquet/budgetwiz/internal/categorizer"
	"fjacquet/budgetwiz/internal/cleanup"
	"fjacquet/budgetwiz/internal/config"
	"fjacquet/budgetwiz/internal/loader"
	"fjacquet/budgetwiz/internal/logging"
	"fjacquet/budgetwiz/internal/pipeline"
	"fjacquet/budgetwiz/internal/prompt"
	"fjacquet/budgetwiz/internal/report"
	"fjacquet/budgetwiz/internal/store"
)

// Container holds all application dependencies. It is immutable after
// creation; dependencies are reached through getters.
type Container struct {
	logger      logging.Logger
	config      *config.Config
	store       store.CategoryStore
	loader      *loader.Loader
	console     *prompt.Console
	categorizer *categorizer.Categorizer
	builder     *report.Builder
	runner      *pipeline.Runner
}

type options struct {
	logger   logging.Logger
	in       io.Reader
	out      io.Writer
	resolver categorizer.Resolver
}

// Option customizes NewContainer.
type Option func(*options)

// WithLogger uses logger instead of one built from the configuration.
func WithLogger(logger logging.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithIO sets the streams used for interactive questions. The defaults
// are os.Stdin and os.Stdout.
func WithIO(in io.Reader, out io.Writer) Option {
	return func(o *options) { o.in, o.out = in, out }
}

// WithResolver replaces the console as the categorizer's resolver.
func WithResolver(r categorizer.Resolver) Option {
	return func(o *options) { o.resolver = r }
}

// NewContainer creates and wires all application dependencies.
func NewContainer(cfg *config.Config, opts ...Option) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}
	o := options{in: os.Stdin, out: os.Stdout}
	for _, opt := range opts {
		opt(&o)
	}

	logger := o.logger
	if logger == nil {
		logger = logging.NewLogrusAdapter(cfg.Log.Level, cfg.Log.Format)
	}

	categoryStore := store.New(cfg.Store.File, logger)

	l := loader.New(loader.Options{
		Columns: loader.Columns{
			Date:         cfg.Columns.Date,
			Description:  cfg.Columns.Description,
			Amount:       cfg.Columns.Amount,
			Debit:        cfg.Columns.Debit,
			Credit:       cfg.Columns.Credit,
			BankCategory: cfg.Columns.BankCategory,
		},
		DateFormats:           cfg.Loader.DateFormats,
		ExcludeBankCategories: cfg.Loader.ExcludeBankCategories,
	}, logger)

	console := prompt.NewConsole(o.in, o.out, cfg.Prompt.ForceInteractive)
	resolver := o.resolver
	if resolver == nil {
		resolver = console
	}

	cat := categorizer.New(categorizer.Options{
		MatchMode:         cfg.Categorization.MatchMode,
		DefaultCategory:   cfg.Categorization.DefaultCategory,
		CleanDescriptions: cfg.Categorization.CleanDescriptions,
	}, resolver, logger)

	builder := report.NewBuilder(report.Options{
		ChartType:   cfg.Report.ChartType,
		ChartValues: cfg.Report.ChartValues,
		ChartTitle:  cfg.Report.ChartTitle,
		PivotSuffix: cfg.Report.PivotSuffix,
	}, logger)

	runner := pipeline.NewRunner(l, cat, categoryStore, builder, cfg.Report.InputSuffix, logger)

	logger.Debug("Container initialized",
		logging.F(logging.FieldFile, categoryStore.Path()),
		logging.F("interactive", console.Interactive()))

	return &Container{
		logger:      logger,
		config:      cfg,
		store:       categoryStore,
		loader:      l,
		console:     console,
		categorizer: cat,
		builder:     builder,
		runner:      runner,
	}, nil
}

// GetLogger returns the container's logger instance.
func (c *Container) GetLogger() logging.Logger {
	return c.logger
}

// GetConfig returns the container's configuration instance.
func (c *Container) GetConfig() *config.Config {
	return c.config
}

// GetStore returns the category store.
func (c *Container) GetStore() store.CategoryStore {
	return c.store
}

// GetLoader returns the transaction loader.
func (c *Container) GetLoader() *loader.Loader {
	return c.loader
}

// GetConsole returns the interactive console.
func (c *Container) GetConsole() *prompt.Console {
	return c.console
}

// GetCategorizer returns the categorizer.
func (c *Container) GetCategorizer() *categorizer.Categorizer {
	return c.categorizer
}

// GetReportBuilder returns the workbook builder.
func (c *Container) GetReportBuilder() *report.Builder {
	return c.builder
}

// GetRunner returns the report pipeline.
func (c *Container) GetRunner() *pipeline.Runner {
	return c.runner
}

// NewCleaner returns a cleaner over the category store.
func (c *Container) NewCleaner() *cleanup.Cleaner {
	return cleanup.NewCleaner(c.store, c.logger)
}

// NewEditor returns an interactive rule editor on the console.
func (c *Container) NewEditor() *cleanup.Editor {
	return cleanup.NewEditor(c.store, c.console, c.logger)
}

// Close releases container resources.
func (c *Container) Close() error {
	c.logger.Debug("Container closed")
	return nil
}
