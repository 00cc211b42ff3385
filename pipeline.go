package salesdash

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const tracerName = "github.com/vench/salesdash"

// ErrIncompleteFilter is returned for a key without regions or without both dates.
var ErrIncompleteFilter = errors.New("filter needs at least one region and a start and end date")

// Loader computes the dashboard for a filter key.
type Loader interface {
	Load(ctx context.Context, key FilterKey) (*Dashboard, error)
}

// Pipeline runs the aggregate queries for a filter key through a result cache.
type Pipeline struct {
	repository ReadRepository
	cache      ResultCache
	logger     *zap.Logger
	tracer     trace.Tracer

	group singleflight.Group
}

type PipelineOption func(*Pipeline)

func LoggerPipelineOption(logger *zap.Logger) PipelineOption {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

func TracerProviderPipelineOption(provider trace.TracerProvider) PipelineOption {
	return func(p *Pipeline) {
		p.tracer = provider.Tracer(tracerName)
	}
}

func NewPipeline(repository ReadRepository, cache ResultCache, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		repository: repository,
		cache:      cache,
		logger:     zap.NewNop(),
		tracer:     otel.Tracer(tracerName),
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Load returns the cached dashboard for key or computes it.
// Concurrent loads of the same key share one computation, which keeps running
// when the caller that started it gives up.
func (p *Pipeline) Load(ctx context.Context, key FilterKey) (*Dashboard, error) {
	key = key.Normalize()
	if !key.Complete() {
		return nil, ErrIncompleteFilter
	}

	if d, ok := p.cache.Get(key); ok {
		p.logger.Debug("dashboard cache hit", zap.Stringer("key", key))
		return d, nil
	}

	ch := p.group.DoChan(key.String(), func() (interface{}, error) {
		// a flight for the same key may have finished between the miss and DoChan.
		if d, ok := p.cache.Peek(key); ok {
			return d, nil
		}

		// the result is shared, one caller going away must not fail the others.
		d, err := p.compute(context.WithoutCancel(ctx), key)
		if err != nil {
			return nil, err
		}
		p.cache.Add(key, d)
		return d, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}

		if res.Shared {
			p.logger.Debug("dashboard load shared", zap.Stringer("key", key))
		}

		return res.Val.(*Dashboard), nil
	}
}

// compute runs every aggregate sequentially over the same base relation.
func (p *Pipeline) compute(ctx context.Context, key FilterKey) (_ *Dashboard, err error) {
	ctx, span := p.tracer.Start(ctx, "Pipeline.compute", trace.WithAttributes(
		attribute.StringSlice("filter.regions", key.Regions),
		attribute.String("filter.start", key.Start.Format(dateFormat)),
		attribute.String("filter.end", key.End.Format(dateFormat)),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	p.logger.Info("computing dashboard", zap.Stringer("key", key))

	d := &Dashboard{Key: key}

	summary, err := traced(ctx, p.tracer, "summary", func(ctx context.Context) (*Summary, error) {
		return p.repository.Summary(ctx, key)
	})
	if err != nil {
		return nil, fmt.Errorf("summary: %w", err)
	}
	d.Summary = *summary

	if d.Monthly, err = traced(ctx, p.tracer, "monthly_revenue", func(ctx context.Context) ([]*MonthlyRevenue, error) {
		return p.repository.MonthlyRevenue(ctx, key)
	}); err != nil {
		return nil, fmt.Errorf("monthly revenue: %w", err)
	}

	if d.Regions, err = traced(ctx, p.tracer, "region_revenue", func(ctx context.Context) ([]*RegionRevenue, error) {
		return p.repository.RegionRevenue(ctx, key)
	}); err != nil {
		return nil, fmt.Errorf("region revenue: %w", err)
	}

	if d.Segments, err = traced(ctx, p.tracer, "segment_analysis", func(ctx context.Context) ([]*SegmentRevenue, error) {
		return p.repository.SegmentAnalysis(ctx, key)
	}); err != nil {
		return nil, fmt.Errorf("segment analysis: %w", err)
	}

	if d.Priority, err = traced(ctx, p.tracer, "priority_analysis", func(ctx context.Context) ([]*PriorityCount, error) {
		return p.repository.PriorityAnalysis(ctx, key)
	}); err != nil {
		return nil, fmt.Errorf("priority analysis: %w", err)
	}

	if d.Nations, err = traced(ctx, p.tracer, "nation_revenue", func(ctx context.Context) ([]*NationRevenue, error) {
		return p.repository.TopNations(ctx, key, TopNationsLimit)
	}); err != nil {
		return nil, fmt.Errorf("top nations: %w", err)
	}

	if _, orders := RegionTotals(d.Regions); orders != d.TotalOrders {
		p.logger.Warn("region order counts do not add up to the total",
			zap.Stringer("key", key), zap.Int64("regions", orders), zap.Int64("total", d.TotalOrders))
	}

	return d, nil
}

func traced[T any](ctx context.Context, tracer trace.Tracer, name string, fn func(context.Context) (T, error)) (T, error) {
	ctx, span := tracer.Start(ctx, "aggregate."+name)
	defer span.End()

	v, err := fn(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}

	return v, err
}
