package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/roach88/oms/internal/config"
	"github.com/roach88/oms/internal/webhook"
)

const shutdownTimeout = 10 * time.Second

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	DatabaseFlags
	Addr string

	// Ready receives the bound address once listening (for testing).
	Ready chan<- string
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the storefront order webhook",
		Long: `Listen for storefront order-created webhooks and ingest each order
as it arrives. Stops gracefully on SIGINT or SIGTERM.

Example:
  oms serve --addr :8080 --db ./oms.db`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(opts, cmd)
		},
	}

	opts.DatabaseFlags.register(cmd)
	cmd.Flags().StringVar(&opts.Addr, "addr", "", "listen address (overrides config)")

	return cmd
}

func runServe(opts *ServeOptions, cmd *cobra.Command) error {
	cfg, err := opts.loadConfig(cmd.ErrOrStderr(), func(c *config.Config) {
		opts.DatabaseFlags.apply(c)
		if opts.Addr != "" {
			c.Server.Addr = opts.Addr
		}
	})
	if err != nil {
		return err
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

	guard, closeGuard := deliveryGuard(cfg)
	defer closeGuard()

	srv := webhook.NewServer(p, webhook.Config{
		Secret:  cfg.WooCommerce.WebhookSecret,
		Guard:   guard,
		Limiter: rate.NewLimiter(rate.Limit(cfg.Server.RateLimitRPS), cfg.Server.RateLimitBurst),
		Logger:  slog.Default(),
	})
	if cfg.WooCommerce.WebhookSecret == "" {
		slog.Warn("webhook signature check disabled: woocommerce.webhook_secret not set")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ln, err := net.Listen("tcp", cfg.Server.Addr)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to listen", err)
	}
	httpServer := &http.Server{
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.Serve(ln)
	}()

	addr := ln.Addr().String()
	slog.Info("webhook server listening", "addr", addr, "path", webhook.OrdersPath)
	fmt.Fprintf(cmd.OutOrStdout(), "Listening on %s\n", addr)
	if opts.Ready != nil {
		opts.Ready <- addr
	}

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return WrapExitError(ExitFailure, "server error", err)
		}
	case <-ctx.Done():
		slog.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return WrapExitError(ExitFailure, "shutdown failed", err)
		}
	}

	slog.Info("server stopped gracefully")
	return nil
}

// deliveryGuard picks the Redis guard when an address is configured.
func deliveryGuard(cfg *config.Config) (webhook.DeliveryGuard, func()) {
	if cfg.Server.RedisAddr == "" {
		return webhook.NewMemoryGuard(cfg.Server.DeliveryTTL), func() {}
	}
	client := redis.NewClient(&redis.Options{Addr: cfg.Server.RedisAddr})
	slog.Info("delivery guard uses redis", "addr", cfg.Server.RedisAddr)
	return webhook.NewRedisGuard(client, cfg.Server.DeliveryTTL), func() {
		if err := client.Close(); err != nil {
			slog.Error("error closing redis client", "error", err)
		}
	}
}
