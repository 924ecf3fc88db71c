// Package ingest runs raw records through cleaning and reconciliation and
// reports what happened to each of them.
package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/roach88/oms/internal/domain"
	"github.com/roach88/oms/internal/normalize"
	"github.com/roach88/oms/internal/reconcile"
)

const instrumentationName = "github.com/roach88/oms/internal/ingest"

// Reconciler persists a batch of cleaned records.
type Reconciler interface {
	Reconcile(ctx context.Context, recs []domain.CanonicalRecord) (*reconcile.Result, error)
}

// Pipeline is the ingestion loop: clean every record, skip the ones with
// row-scoped errors, reconcile the rest as one batch.
type Pipeline struct {
	cleaner    *normalize.Cleaner
	reconciler Reconciler
	logger     *slog.Logger

	tracerProvider trace.TracerProvider
	meterProvider  metric.MeterProvider
	tracer         trace.Tracer
	rows           metric.Int64Counter
	batches        metric.Int64Counter
	duration       metric.Float64Histogram
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger; the default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) { p.logger = l }
}

// WithTracerProvider overrides the global tracer provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(p *Pipeline) { p.tracerProvider = tp }
}

// WithMeterProvider overrides the global meter provider.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(p *Pipeline) { p.meterProvider = mp }
}

// New creates a Pipeline.
func New(cleaner *normalize.Cleaner, reconciler Reconciler, opts ...Option) (*Pipeline, error) {
	p := &Pipeline{
		cleaner:        cleaner,
		reconciler:     reconciler,
		logger:         slog.Default(),
		tracerProvider: otel.GetTracerProvider(),
		meterProvider:  otel.GetMeterProvider(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.logger.With("component", "ingest")
	p.tracer = p.tracerProvider.Tracer(instrumentationName)

	meter := p.meterProvider.Meter(instrumentationName)
	var err error
	p.rows, err = meter.Int64Counter("oms.ingest.rows",
		metric.WithDescription("Records seen by ingestion, by outcome"),
		metric.WithUnit("{row}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create rows counter: %w", err)
	}
	p.batches, err = meter.Int64Counter("oms.ingest.batches",
		metric.WithDescription("Ingestion runs, by outcome"),
		metric.WithUnit("{batch}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create batches counter: %w", err)
	}
	p.duration, err = meter.Float64Histogram("oms.ingest.duration",
		metric.WithDescription("Ingestion run duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("create duration histogram: %w", err)
	}
	return p, nil
}

// Clean normalizes raws without persisting anything. Row-scoped failures
// are collected in the report; any other failure aborts.
func (p *Pipeline) Clean(ctx context.Context, source string, raws []domain.RawRecord) (*Report, []domain.CanonicalRecord, error) {
	rep := &Report{Source: source, Total: len(raws), Skipped: []RowError{}}
	recs := make([]domain.CanonicalRecord, 0, len(raws))

	for _, raw := range raws {
		rec, err := p.cleaner.Clean(raw)
		if err != nil {
			if !normalize.IsRowError(err) {
				return nil, nil, fmt.Errorf("clean row %d: %w", raw.Row, err)
			}
			p.logger.WarnContext(ctx, "row skipped", "source", source, "row", raw.Row, "reason", err.Error())
			rep.Skipped = append(rep.Skipped, RowError{Row: raw.Row, Reason: err.Error(), Err: err})
			continue
		}
		p.logger.DebugContext(ctx, "row accepted", "source", source, "row", raw.Row,
			"phone", rec.Phone, "product", rec.ProductTitle)
		recs = append(recs, rec)
	}
	rep.Accepted = len(recs)

	p.rows.Add(ctx, int64(rep.Accepted), metric.WithAttributes(attribute.String("outcome", "accepted")))
	p.rows.Add(ctx, int64(len(rep.Skipped)), metric.WithAttributes(attribute.String("outcome", "skipped")))
	return rep, recs, nil
}

// Ingest cleans raws and reconciles the accepted records in one
// transaction.
//
// Zero accepted records is not an error: the report's outcome is "none" and
// nothing is written. A storefront order that already exists yields outcome
// "duplicate" and a nil error. Shape and gateway failures are returned and
// leave the database untouched.
func (p *Pipeline) Ingest(ctx context.Context, source string, raws []domain.RawRecord) (rep *Report, err error) {
	start := time.Now()
	ctx, span := p.tracer.Start(ctx, "ingest.run",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("ingest.source", source),
			attribute.Int("ingest.total", len(raws)),
		),
	)
	defer func() {
		outcome := "error"
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			outcome = string(rep.Outcome())
			span.SetAttributes(
				attribute.Int("ingest.accepted", rep.Accepted),
				attribute.String("ingest.outcome", outcome),
			)
		}
		attrs := metric.WithAttributes(attribute.String("outcome", outcome))
		p.batches.Add(ctx, 1, attrs)
		p.duration.Record(ctx, time.Since(start).Seconds(), attrs)
		span.End()
	}()

	rep, recs, err := p.Clean(ctx, source, raws)
	if err != nil {
		return nil, err
	}
	if rep.Accepted == 0 {
		p.logger.InfoContext(ctx, "nothing to ingest", "source", source, "total", rep.Total)
		return rep, nil
	}

	res, err := p.reconciler.Reconcile(ctx, recs)
	if reconcile.IsDuplicateOrder(err) {
		p.logger.InfoContext(ctx, "order already exists", "source", source, "reason", err.Error())
		rep.Duplicate = true
		return rep, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reconcile %s: %w", source, err)
	}
	rep.Result = res

	p.logger.InfoContext(ctx, "batch ingested",
		"source", source,
		"outcome", rep.Outcome(),
		"accepted", rep.Accepted,
		"total", rep.Total,
		"orders", res.Created.Orders,
		"customers_created", res.Created.Customers,
	)
	return rep, nil
}
