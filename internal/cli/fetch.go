package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/oms/internal/adapter/woo"
	"github.com/roach88/oms/internal/config"
	"github.com/roach88/oms/internal/ingest"
	"github.com/roach88/oms/internal/webhook"
)

// FetchOptions holds flags for the fetch command.
type FetchOptions struct {
	*RootOptions
	DatabaseFlags
}

// FetchSummary counts what happened to each storefront order.
type FetchSummary struct {
	Fetched   int `json:"fetched"`
	Created   int `json:"created"`
	Duplicate int `json:"duplicate"`
	Cancelled int `json:"cancelled"`
	Invalid   int `json:"invalid"`
	Empty     int `json:"empty"`
}

func (s FetchSummary) String() string {
	return fmt.Sprintf("fetched %d orders: %d created, %d already stored, %d cancelled, %d invalid, %d empty",
		s.Fetched, s.Created, s.Duplicate, s.Cancelled, s.Invalid, s.Empty)
}

// NewFetchCommand creates the fetch command.
func NewFetchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &FetchOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Pull orders from the storefront REST API",
		Long: `Fetch every storefront order once and ingest each one in its own
transaction. Cancelled orders are skipped and orders already stored are left
untouched.

Example:
  oms fetch --db ./oms.db`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFetch(opts, cmd)
		},
	}

	opts.DatabaseFlags.register(cmd)
	return cmd
}

func runFetch(opts *FetchOptions, cmd *cobra.Command) error {
	cfg, err := opts.loadConfig(cmd.ErrOrStderr(), func(c *config.Config) { opts.DatabaseFlags.apply(c) })
	if err != nil {
		return err
	}
	if err := cfg.RequireWooCommerce(); err != nil {
		return WrapExitError(ExitCommandError, "storefront not configured", err)
	}
	out := opts.formatter(cmd)

	client, err := woo.NewClient(woo.ClientConfig{
		URL:            cfg.WooCommerce.URL,
		ConsumerKey:    cfg.WooCommerce.ConsumerKey,
		ConsumerSecret: cfg.WooCommerce.ConsumerSecret,
	})
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to create storefront client", err)
	}

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore(st)

	p, err := newPipeline(cfg, st)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	orders, err := client.ListOrders(ctx)
	if err != nil {
		_ = out.Error(ErrCodeStorefront, "fetch failed", err.Error())
		return WrapExitError(ExitFailure, "fetch failed", err)
	}

	summary := FetchSummary{Fetched: len(orders)}
	for i := range orders {
		o := &orders[i]
		if o.IsCancelled() {
			summary.Cancelled++
			continue
		}
		if err := woo.Validate(o); err != nil {
			slog.Warn("storefront order skipped", "order_id", o.ID, "reason", err.Error())
			summary.Invalid++
			continue
		}

		rep, err := p.Ingest(ctx, webhook.Source, woo.ToRawRecords(o))
		if err != nil {
			_ = out.Error(ErrCodeReconcile, fmt.Sprintf("ingest order %d failed", o.ID), err.Error())
			return WrapExitError(ExitFailure, fmt.Sprintf("ingest order %d", o.ID), err)
		}
		switch rep.Outcome() {
		case ingest.OutcomeDuplicate:
			summary.Duplicate++
		case ingest.OutcomeNone:
			summary.Empty++
		default:
			summary.Created++
		}
		out.VerboseLog("order %d: %s", o.ID, rep.Outcome())
	}

	return out.Success(summary)
}
