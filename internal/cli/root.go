// Package cli implements the oms command line: ingesting exports, serving
// the storefront webhook, pulling storefront orders and booking couriers.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/oms/internal/config"
	"github.com/roach88/oms/internal/ingest"
	"github.com/roach88/oms/internal/normalize"
	"github.com/roach88/oms/internal/reconcile"
	"github.com/roach88/oms/internal/store"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigFile string

	// Getenv overrides the environment lookup (for testing).
	Getenv func(string) string
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the oms CLI.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "oms",
		Short: "oms - order ingestion back office",
		Long: `Ingest apparel orders from the legacy spreadsheet export and the
storefront, normalize them and store them as customers, products, orders,
payments and order items.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return NewExitError(ExitCommandError,
					fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigFile, "config", "", "path to YAML config file")

	cmd.AddCommand(NewIngestCommand(opts))
	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewFetchCommand(opts))
	cmd.AddCommand(NewShipCommand(opts))

	return cmd
}

// loadConfig reads the configuration, applies flag overrides, validates it
// and installs the default logger on logOut.
func (o *RootOptions) loadConfig(logOut io.Writer, override func(*config.Config)) (*config.Config, error) {
	getenv := o.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	cfg, err := config.Load(o.ConfigFile, getenv)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load config", err)
	}
	if override != nil {
		override(cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, WrapExitError(ExitCommandError, "invalid config", err)
	}

	level := cfg.Level()
	if o.Verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(logOut, &slog.HandlerOptions{Level: level})))
	return cfg, nil
}

// formatter returns the output formatter for cmd.
func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}
}

// DatabaseFlags are shared by commands that open the store.
type DatabaseFlags struct {
	Database string
	Driver   string
}

func (f *DatabaseFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.Database, "db", "", "database DSN or SQLite path (overrides config)")
	cmd.Flags().StringVar(&f.Driver, "driver", "", "database driver: sqlite3|postgres (overrides config)")
}

func (f *DatabaseFlags) apply(cfg *config.Config) {
	if f.Database != "" {
		cfg.Database.DSN = f.Database
	}
	if f.Driver != "" {
		cfg.Database.Driver = f.Driver
	}
}

func openStore(cfg *config.Config) (*store.Store, error) {
	slog.Info("opening database", "driver", cfg.Database.Driver)
	st, err := store.Open(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}
	return st, nil
}

func closeStore(st *store.Store) {
	if err := st.Close(); err != nil {
		slog.Error("error closing database", "error", err)
	}
}

// newPipeline wires the cleaner and, when gw is non-nil, the reconciler.
func newPipeline(cfg *config.Config, gw reconcile.Gateway, cleanerOpts ...normalize.CleanerOption) (*ingest.Pipeline, error) {
	var rec ingest.Reconciler
	if gw != nil {
		rec = reconcile.New(gw, reconcile.WithDeliveryFrom(cfg.Courier.DeliveryFrom))
	}
	p, err := ingest.New(normalize.NewCleaner(cleanerOpts...), rec, ingest.WithLogger(slog.Default()))
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to create pipeline", err)
	}
	return p, nil
}
