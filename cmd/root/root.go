// Package root contains the root command for the application
package root

import (
	"fmt"

	"fjacquet/budgetwiz/internal/config"
	"fjacquet/budgetwiz/internal/container"
	"fjacquet/budgetwiz/internal/logging"

	"github.com/spf13/cobra"
)

// Cmd is the root command used by main.
var Cmd = NewCmd()

// NewCmd builds a fresh root command with its persistent flags.
func NewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "budgetwiz",
		Short: "Categorize bank transactions and build a monthly spending workbook.",
		Long: `budgetwiz reads CSV exports of bank transactions, assigns a category to
each one from a learned rule store, asks for the category of unknown merchants
and writes an Excel workbook with a transaction sheet, a pivot sheet and a chart.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	flags := cmd.PersistentFlags()
	flags.String("config", "", "config file (default is $HOME/.budgetwiz/config.yaml)")
	flags.String("store", "", "category rule store (.csv, .yaml or .yml)")
	flags.String("log-level", "", "log level (debug, info, warn, error)")
	flags.String("log-format", "", "log format (text or json)")

	return cmd
}

// LoadConfig reads the configuration and applies the persistent flag
// overrides found on cmd.
func LoadConfig(cmd *cobra.Command) (*config.Config, error) {
	config.LoadEnv()

	cfg, err := config.InitializeConfig(flagValue(cmd, "config"))
	if err != nil {
		return nil, err
	}

	if v := flagValue(cmd, "store"); v != "" {
		cfg.Store.File = v
	}
	if v := flagValue(cmd, "log-level"); v != "" {
		cfg.Log.Level = v
	}
	if v := flagValue(cmd, "log-format"); v != "" {
		cfg.Log.Format = v
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// NewContainer loads the configuration and wires a container whose logger
// writes to the command's error stream and whose prompts use its
// input and output streams.
func NewContainer(cmd *cobra.Command, opts ...container.Option) (*container.Container, error) {
	cfg, err := LoadConfig(cmd)
	if err != nil {
		return nil, err
	}

	logger := logging.NewLogrusAdapter(cfg.Log.Level, cfg.Log.Format)
	if adapter, ok := logger.(*logging.LogrusAdapter); ok {
		adapter.SetOutput(cmd.ErrOrStderr())
	}

	base := []container.Option{
		container.WithLogger(logger),
		container.WithIO(cmd.InOrStdin(), cmd.OutOrStdout()),
	}
	return container.NewContainer(cfg, append(base, opts...)...)
}

func flagValue(cmd *cobra.Command, name string) string {
	f := cmd.Flags().Lookup(name)
	if f == nil {
		f = cmd.PersistentFlags().Lookup(name)
	}
	if f == nil {
		f = cmd.InheritedFlags().Lookup(name)
	}
	if f == nil {
		return ""
	}
	return f.Value.String()
}
