package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/roach88/oms/internal/config"
	"github.com/roach88/oms/internal/courier"
	"github.com/roach88/oms/internal/store"
)

// ShipOptions holds flags for the ship command.
type ShipOptions struct {
	*RootOptions
	DatabaseFlags
}

type shipResult struct {
	OrderID   int64  `json:"order_id"`
	PackageID string `json:"package_id"`
}

func (r shipResult) String() string {
	return fmt.Sprintf("order %d booked: package %s", r.OrderID, r.PackageID)
}

// NewShipCommand creates the ship command.
func NewShipCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ShipOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "ship <order-id>",
		Short: "Book a courier delivery for an order",
		Long: `Send the order to the courier and store the returned package id on it.
Orders without a destination branch or already booked are refused.

Example:
  oms ship 42 --db ./oms.db`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShip(opts, args[0], cmd)
		},
	}

	opts.DatabaseFlags.register(cmd)
	return cmd
}

func runShip(opts *ShipOptions, arg string, cmd *cobra.Command) error {
	orderID, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || orderID <= 0 {
		return NewExitError(ExitCommandError, fmt.Sprintf("invalid order id %q", arg))
	}

	cfg, err := opts.loadConfig(cmd.ErrOrStderr(), func(c *config.Config) { opts.DatabaseFlags.apply(c) })
	if err != nil {
		return err
	}
	if err := cfg.RequireCourier(); err != nil {
		return WrapExitError(ExitCommandError, "courier not configured", err)
	}
	out := opts.formatter(cmd)

	client, err := courier.NewClient(courier.ClientConfig{
		BaseURL: cfg.Courier.BaseURL,
		APIKey:  cfg.Courier.APIKey,
	})
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to create courier client", err)
	}

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore(st)

	pkg, err := courier.NewShipper(st, client, cfg.Courier.FromBranch, slog.Default()).Ship(cmd.Context(), orderID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return WrapExitError(ExitCommandError, fmt.Sprintf("order %d not found", orderID), err)
	case errors.Is(err, courier.ErrNoBranch), errors.Is(err, courier.ErrAlreadyShipped):
		return WrapExitError(ExitFailure, "order cannot be shipped", err)
	case err != nil:
		_ = out.Error(ErrCodeCourier, "courier booking failed", err.Error())
		return WrapExitError(ExitFailure, "ship failed", err)
	}

	return out.Success(shipResult{OrderID: orderID, PackageID: pkg})
}
