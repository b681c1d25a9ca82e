// Package cli implements the taxcalc command line tool.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"takehome/internal/domain/tax"
	"takehome/internal/platform/config"
	"takehome/internal/platform/rent"
)

type options struct {
	dbPath     string
	year       int
	configPath string
	cfg        config.CLIConfig

	// newRentProvider is swapped in tests.
	newRentProvider func(cfg config.CLIConfig) tax.RentProvider
}

// Execute is the entry point called from cmd/taxcalc.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func NewRootCmd() *cobra.Command {
	return newRootCmd(&options{newRentProvider: defaultRentProvider})
}

func newRootCmd(opts *options) *cobra.Command {
	root := &cobra.Command{
		Use:           "taxcalc",
		Short:         "Progressive income tax and take-home calculator",
		Long:          "Compute federal and state income tax, take-home pay and rent-adjusted monthly income from stored bracket tables.",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.load(cmd)
		},
	}

	root.PersistentFlags().StringVar(&opts.dbPath, "db", "", "SQLite database path (default from config, data.db)")
	root.PersistentFlags().IntVar(&opts.year, "year", 0, "Tax year (default from config, 2023)")
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "TOML config file (default $XDG_CONFIG_HOME/taxcalc/config.toml)")

	root.AddCommand(
		newImportCmd(opts),
		newComputeCmd(opts),
		newBracketsCmd(opts),
		newRentCmd(opts),
		newMonthlyCmd(opts),
		newPriorCmd(opts),
		newTokenCmd(opts),
	)
	return root
}

// load reads the config file, then lets explicit flags win.
func (o *options) load(cmd *cobra.Command) error {
	path := o.configPath
	if path == "" {
		path = config.CLIConfigPath()
	}
	cfg, err := config.LoadCLIConfig(path)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("db") {
		cfg.General.DBPath = o.dbPath
	}
	if cmd.Flags().Changed("year") {
		cfg.General.Year = o.year
	}
	o.cfg = cfg
	return nil
}

func (o *options) openStore() (*tax.SQLiteStore, error) {
	store, err := tax.OpenSQLite(o.cfg.General.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", o.cfg.General.DBPath, err)
	}
	return store, nil
}

// service loads the configured year from the local store.
func (o *options) service(ctx context.Context) (*tax.Service, error) {
	store, err := o.openStore()
	if err != nil {
		return nil, err
	}
	defer store.Close()

	registry, err := tax.LoadRegistry(ctx, store, o.cfg.General.Year)
	if err != nil {
		return nil, fmt.Errorf("%w (run `taxcalc import` first)", err)
	}
	return tax.NewService(registry, o.newRentProvider(o.cfg), tax.WithRentTimeout(o.cfg.Rent.TimeoutDuration())), nil
}

func defaultRentProvider(cfg config.CLIConfig) tax.RentProvider {
	return rent.NewClient(rent.WithBaseURL(cfg.Rent.BaseURL), rent.WithTimeout(cfg.Rent.TimeoutDuration()))
}
