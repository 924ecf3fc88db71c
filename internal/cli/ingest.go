package cli

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/oms/internal/adapter/csvfile"
	"github.com/roach88/oms/internal/config"
	"github.com/roach88/oms/internal/ingest"
	"github.com/roach88/oms/internal/normalize"
)

// IngestOptions holds flags for the ingest csv command.
type IngestOptions struct {
	*RootOptions
	DatabaseFlags
	DryRun bool

	// Now overrides the clock used for unparsable order dates (for testing).
	Now func() time.Time
}

// NewIngestCommand creates the ingest command group.
func NewIngestCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Ingest orders from a file source",
	}
	cmd.AddCommand(NewIngestCSVCommand(rootOpts))
	return cmd
}

// NewIngestCSVCommand creates the ingest csv command.
func NewIngestCSVCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &IngestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "csv <file>",
		Short: "Ingest the legacy spreadsheet export",
		Long: `Clean every row of the export and write the accepted rows as one
atomic batch. Rows that cannot be cleaned are skipped and listed.

Exits 1 when no row was accepted.

Example:
  oms ingest csv orders.csv --db ./oms.db
  oms ingest csv orders.csv --dry-run --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIngestCSV(opts, args[0], cmd)
		},
	}

	opts.DatabaseFlags.register(cmd)
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "clean and report without writing")

	return cmd
}

func runIngestCSV(opts *IngestOptions, path string, cmd *cobra.Command) error {
	cfg, err := opts.loadConfig(cmd.ErrOrStderr(), func(c *config.Config) { opts.DatabaseFlags.apply(c) })
	if err != nil {
		return err
	}
	out := opts.formatter(cmd)

	f, err := os.Open(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open export", err)
	}
	defer f.Close()

	raws, err := csvfile.Read(f)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read export", err)
	}
	source := filepath.Base(path)
	out.VerboseLog("read %d rows from %s", len(raws), path)

	var cleanerOpts []normalize.CleanerOption
	if opts.Now != nil {
		cleanerOpts = append(cleanerOpts, normalize.WithClock(opts.Now))
	}

	var rep *ingest.Report
	if opts.DryRun {
		p, err := newPipeline(cfg, nil, cleanerOpts...)
		if err != nil {
			return err
		}
		r, recs, err := p.Clean(cmd.Context(), source, raws)
		if err != nil {
			return WrapExitError(ExitFailure, "clean failed", err)
		}
		rep = r
		if err := out.Report(rep, true, recs); err != nil {
			return err
		}
	} else {
		st, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer closeStore(st)

		p, err := newPipeline(cfg, st, cleanerOpts...)
		if err != nil {
			return err
		}
		rep, err = p.Ingest(cmd.Context(), source, raws)
		if err != nil {
			_ = out.Error(ErrCodeReconcile, "ingest failed", err.Error())
			return WrapExitError(ExitFailure, "ingest failed", err)
		}
		if err := out.Report(rep, false, nil); err != nil {
			return err
		}
	}

	if rep.Outcome() == ingest.OutcomeNone {
		slog.Warn("no rows accepted", "source", source, "total", rep.Total)
		return NewExitError(ExitFailure, fmt.Sprintf("no rows accepted from %s", source))
	}
	return nil
}
