package config

import (
	"errors"
	"fmt"
	"strings"

	"fjacquet/budgetwiz/internal/models"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable read by budgetwiz, e.g.
// BUDGETWIZ_STORE_FILE.
const EnvPrefix = "BUDGETWIZ"

// Config is the complete application configuration.
type Config struct {
	Log struct {
		Level  string `mapstructure:"level" yaml:"level"`
		Format string `mapstructure:"format" yaml:"format"`
	} `mapstructure:"log" yaml:"log"`

	Store struct {
		File string `mapstructure:"file" yaml:"file"`
	} `mapstructure:"store" yaml:"store"`

	// Columns lists accepted header names per field, matched
	// case-insensitively; the first alias present in the header wins.
	Columns struct {
		Date         []string `mapstructure:"date" yaml:"date"`
		Description  []string `mapstructure:"description" yaml:"description"`
		Amount       []string `mapstructure:"amount" yaml:"amount"`
		Debit        []string `mapstructure:"debit" yaml:"debit"`
		Credit       []string `mapstructure:"credit" yaml:"credit"`
		BankCategory []string `mapstructure:"bank_category" yaml:"bank_category"`
	} `mapstructure:"columns" yaml:"columns"`

	Loader struct {
		DateFormats           []string `mapstructure:"date_formats" yaml:"date_formats"`
		ExcludeBankCategories []string `mapstructure:"exclude_bank_categories" yaml:"exclude_bank_categories"`
	} `mapstructure:"loader" yaml:"loader"`

	Categorization struct {
		MatchMode         string `mapstructure:"match_mode" yaml:"match_mode"`
		DefaultCategory   string `mapstructure:"default_category" yaml:"default_category"`
		CleanDescriptions bool   `mapstructure:"clean_descriptions" yaml:"clean_descriptions"`
	} `mapstructure:"categorization" yaml:"categorization"`

	Prompt struct {
		ForceInteractive bool `mapstructure:"force_interactive" yaml:"force_interactive"`
	} `mapstructure:"prompt" yaml:"prompt"`

	Report struct {
		Output      string `mapstructure:"output" yaml:"output"`
		ChartType   string `mapstructure:"chart_type" yaml:"chart_type"`
		ChartValues string `mapstructure:"chart_values" yaml:"chart_values"`
		ChartTitle  string `mapstructure:"chart_title" yaml:"chart_title"`
		PivotSuffix string `mapstructure:"pivot_suffix" yaml:"pivot_suffix"`
		InputSuffix string `mapstructure:"input_suffix" yaml:"input_suffix"`
	} `mapstructure:"report" yaml:"report"`
}

// InitializeConfig builds the configuration. configFile may be empty, in
// which case config.yaml is searched in $HOME/.budgetwiz, ./.budgetwiz and
// the working directory; a missing file is not an error, an explicitly
// named one is.
func InitializeConfig(configFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("$HOME/.budgetwiz")
		v.AddConfigPath(".budgetwiz")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Default returns the configuration made of defaults only.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	_ = v.Unmarshal(&cfg)
	return &cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("store.file", "categories.csv")

	v.SetDefault("columns.date", []string{"date", "transaction date"})
	v.SetDefault("columns.description", []string{"description", "name", "memo"})
	v.SetDefault("columns.amount", []string{"amount"})
	v.SetDefault("columns.debit", []string{"debit"})
	v.SetDefault("columns.credit", []string{"credit"})
	v.SetDefault("columns.bank_category", []string{"category"})

	v.SetDefault("loader.date_formats", []string{})
	v.SetDefault("loader.exclude_bank_categories", []string{"payment"})

	v.SetDefault("categorization.match_mode", models.MatchContains)
	v.SetDefault("categorization.default_category", "")
	v.SetDefault("categorization.clean_descriptions", true)

	v.SetDefault("prompt.force_interactive", false)

	v.SetDefault("report.output", "MonthlySpending.xlsx")
	v.SetDefault("report.chart_type", models.ChartTypePie)
	v.SetDefault("report.chart_values", models.ChartValuesAbsolute)
	v.SetDefault("report.chart_title", "Expense Distribution")
	v.SetDefault("report.pivot_suffix", " Pivot")
	v.SetDefault("report.input_suffix", "Exp.csv")
}

func validateConfig(cfg *Config) error {
	if _, err := logrus.ParseLevel(cfg.Log.Level); err != nil {
		return fmt.Errorf("invalid log level: %s", cfg.Log.Level)
	}
	if cfg.Log.Format != "text" && cfg.Log.Format != "json" {
		return fmt.Errorf("invalid log format: %s (must be 'text' or 'json')", cfg.Log.Format)
	}
	if strings.TrimSpace(cfg.Store.File) == "" {
		return fmt.Errorf("store.file must not be empty")
	}
	if len(cfg.Columns.Date) == 0 || len(cfg.Columns.Description) == 0 {
		return fmt.Errorf("columns.date and columns.description need at least one header name")
	}
	switch cfg.Categorization.MatchMode {
	case models.MatchExact, models.MatchContains:
	default:
		return fmt.Errorf("invalid categorization.match_mode: %s (must be '%s' or '%s')",
			cfg.Categorization.MatchMode, models.MatchExact, models.MatchContains)
	}
	switch cfg.Report.ChartType {
	case models.ChartTypePie, models.ChartTypeDoughnut:
	default:
		return fmt.Errorf("invalid report.chart_type: %s", cfg.Report.ChartType)
	}
	switch cfg.Report.ChartValues {
	case models.ChartValuesAbsolute, models.ChartValuesSigned:
	default:
		return fmt.Errorf("invalid report.chart_values: %s", cfg.Report.ChartValues)
	}
	return nil
}

// Validate checks cfg, for use after flags have overridden loaded values.
func (c *Config) Validate() error {
	return validateConfig(c)
}
