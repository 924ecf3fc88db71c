// Package webhook serves the storefront order-created webhook.
//
// Each delivery is verified, deduplicated by delivery id, decoded into raw
// records and ingested as one batch. Replies are JSON; failures are RFC 7807
// problem documents.
package webhook

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"

	"github.com/roach88/oms/internal/adapter/woo"
	"github.com/roach88/oms/internal/domain"
	"github.com/roach88/oms/internal/ingest"
)

// Webhook request headers set by the storefront.
const (
	HeaderSignature  = "X-WC-Webhook-Signature"
	HeaderDeliveryID = "X-WC-Webhook-Delivery-ID"
)

// OrdersPath is where the order-created webhook is delivered.
const OrdersPath = "/webhooks/woocommerce/orders"

// Source labels webhook batches in ingest reports.
const Source = "woocommerce"

const maxBodyBytes = 1 << 20

// Ingester persists the raw records of one delivery.
type Ingester interface {
	Ingest(ctx context.Context, source string, raws []domain.RawRecord) (*ingest.Report, error)
}

// Config configures a Server.
type Config struct {
	// Secret verifies X-WC-Webhook-Signature. Empty disables the check.
	Secret string
	// Guard deduplicates deliveries. Nil disables deduplication.
	Guard DeliveryGuard
	// Limiter throttles deliveries. Nil means unlimited.
	Limiter *rate.Limiter
	Logger  *slog.Logger
}

// Server handles webhook deliveries.
type Server struct {
	ingester Ingester
	secret   []byte
	guard    DeliveryGuard
	limiter  *rate.Limiter
	logger   *slog.Logger
}

// NewServer creates a Server.
func NewServer(ingester Ingester, cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		ingester: ingester,
		secret:   []byte(cfg.Secret),
		guard:    cfg.Guard,
		limiter:  cfg.Limiter,
		logger:   logger.With("component", "webhook"),
	}
}

// Routes returns the HTTP handler.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.With(s.rateLimit).Post(OrdersPath, s.handleOrder)
	return r
}

func (s *Server) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.limiter != nil && !s.limiter.Allow() {
			w.Header().Set("Retry-After", "1")
			writeProblem(w, r, http.StatusTooManyRequests, "Rate limit exceeded. Retry after the specified interval.")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Verify reports whether signature is the base64 HMAC-SHA256 of body.
func Verify(body []byte, signature string, secret []byte) bool {
	mac := hmac.New(sha256.New, secret)
	mac.Write(body)
	want := mac.Sum(nil)

	got, err := base64.StdEncoding.DecodeString(signature)
	if err != nil {
		return false
	}
	return hmac.Equal(got, want)
}

// Sign returns the signature the storefront sends for body.
func Sign(body []byte, secret []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func (s *Server) handleOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeProblem(w, r, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		writeProblem(w, r, http.StatusBadRequest, "read body: "+err.Error())
		return
	}

	if len(s.secret) > 0 && !Verify(body, r.Header.Get(HeaderSignature), s.secret) {
		writeProblem(w, r, http.StatusUnauthorized, "invalid webhook signature")
		return
	}

	// The storefront pings a new webhook with a form-encoded body.
	if !json.Valid(body) {
		s.logger.InfoContext(ctx, "webhook ping", "body", string(body))
		writeJSON(w, http.StatusOK, reply{Detail: "pong"})
		return
	}

	deliveryID := r.Header.Get(HeaderDeliveryID)
	if s.guard != nil && deliveryID != "" {
		first, err := s.guard.Claim(ctx, deliveryID)
		if err != nil {
			writeInternal(w, r, s.logger, err)
			return
		}
		if !first {
			s.logger.InfoContext(ctx, "delivery already processed", "delivery_id", deliveryID)
			writeJSON(w, http.StatusOK, reply{Detail: "Delivery already processed"})
			return
		}
	}

	status, ok := s.process(w, r, body)
	if !ok && s.guard != nil && deliveryID != "" {
		if err := s.guard.Release(ctx, deliveryID); err != nil {
			s.logger.WarnContext(ctx, "release delivery", "delivery_id", deliveryID, "status", status, "error", err)
		}
	}
}

// process ingests one decoded order and writes the response. It reports
// whether the delivery was handled for good.
func (s *Server) process(w http.ResponseWriter, r *http.Request, body []byte) (int, bool) {
	ctx := r.Context()

	order, err := woo.Decode(body)
	if err != nil {
		writeProblem(w, r, http.StatusBadRequest, err.Error())
		return http.StatusBadRequest, false
	}
	if order.IsCancelled() {
		s.logger.InfoContext(ctx, "cancelled order skipped", "order_id", order.ID)
		writeJSON(w, http.StatusOK, reply{Detail: "Order cancelled"})
		return http.StatusOK, true
	}

	rep, err := s.ingester.Ingest(ctx, Source, woo.ToRawRecords(order))
	if err != nil {
		writeInternal(w, r, s.logger, err)
		return http.StatusInternalServerError, false
	}

	switch rep.Outcome() {
	case ingest.OutcomeDuplicate:
		writeJSON(w, http.StatusOK, reply{Detail: "Order already exists"})
		return http.StatusOK, true
	case ingest.OutcomeNone:
		detail := "no line item could be cleaned"
		if len(rep.Skipped) > 0 {
			detail += ": " + rep.Skipped[0].Reason
		}
		writeProblem(w, r, http.StatusUnprocessableEntity, detail)
		return http.StatusUnprocessableEntity, false
	}

	resp := reply{Detail: "Order created", Accepted: rep.Accepted, Skipped: len(rep.Skipped)}
	if rep.Result != nil && len(rep.Result.Orders) > 0 {
		resp.OrderID = rep.Result.Orders[0].ID
	}
	writeJSON(w, http.StatusCreated, resp)
	return http.StatusCreated, true
}
