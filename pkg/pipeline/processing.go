package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/go-logr/logr"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"
)

// Parallel Error Processing

type parallelError struct {
	procs []ErrorProcessing
}

func NewParallelErrorProcessing(p ...ErrorProcessing) ErrorProcessing {
	return parallelError{
		procs: p,
	}
}

func (p parallelError) ProcessError(ctx context.Context, processingError ErrProcessingError) error {
	group, ctx := errgroup.WithContext(ctx)

	for _, proc := range p.procs {
		processing := proc

		group.Go(func() error {
			return processing.ProcessError(ctx, processingError)
		})
	}

	return group.Wait()
}

// Panic handler Processing

type panicHandler[Payload any] struct {
	processing Processing[Payload]
}

func NewPanicHandlerProcessing[Payload any](p Processing[Payload]) Processing[Payload] {
	return panicHandler[Payload]{
		processing: p,
	}
}

func (p panicHandler[Payload]) Process(ctx context.Context, payload Payload) (ret Payload, err error) {
	defer func() {
		r := recover()
		if r != nil {
			err = NewErrProcessingError(
				fmt.Errorf("unexpected error: %v", r),
				PanicCategory,
				nil,
			)
		}
	}()

	ret, err = p.processing.Process(ctx, payload)

	return
}

// Duration Metric Processing

type MetricsConfig struct {
	Namespace string
	Buckets   []float64
}

type durationDecorator[Payload any] struct {
	processing Processing[Payload]
	histogram  *prometheus.HistogramVec
	clock      clockwork.Clock
}

func NewDurationMetricsDecoratorProcessing[Payload any](p Processing[Payload], registry prometheus.Registerer, clock clockwork.Clock, config MetricsConfig) (Processing[Payload], error) {
	ret := durationDecorator[Payload]{
		processing: p,
		clock:      clock,
	}

	buckets := config.Buckets
	if len(buckets) == 0 {
		buckets = []float64{0.1, 0.2, 0.5, 1, 2, 5, 10, 20, 50}
	}

	opts := prometheus.HistogramOpts{
		Namespace: config.Namespace,
		Name:      "processing_duration_milliseconds",
		Help:      "Time taken to process an event.",
		Buckets:   buckets,
	}

	histogram := prometheus.NewHistogramVec(opts, []string{"failed"})

	err := registry.Register(histogram)
	if err != nil {
		return nil, fmt.Errorf("failed to register metric: %w", err)
	}

	ret.histogram = histogram

	return ret, nil
}

func (p durationDecorator[Payload]) Process(ctx context.Context, payload Payload) (Payload, error) {
	start := p.clock.Now()

	ret, err := p.processing.Process(ctx, payload)

	duration := p.clock.Since(start)
	durationMilli := float64(duration/time.Millisecond) + float64(duration%time.Millisecond)/float64(time.Millisecond)

	p.histogram.WithLabelValues(fmt.Sprintf("%v", err != nil)).Observe(durationMilli)

	return ret, err
}

// Error Metric Processing

type errorCountProcessing struct {
	counter *prometheus.CounterVec
}

func NewErrorCountProcessing(registry prometheus.Registerer, config MetricsConfig) (ErrorProcessing, error) {
	counter := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: config.Namespace,
		Name:      "processing_error_total",
		Help:      "Error counter by category.",
	}, []string{"category"})

	err := registry.Register(counter)
	if err != nil {
		return nil, fmt.Errorf("failed to register metric: %w", err)
	}

	ret := errorCountProcessing{
		counter: counter,
	}

	return ret, nil
}

func (p errorCountProcessing) ProcessError(ctx context.Context, processingError ErrProcessingError) error {
	category := processingError.Category
	if category == "" {
		category = "empty_category"
	}

	p.counter.WithLabelValues(category).Inc()

	return nil
}

// Error Log Processing

type errorLogProcessing struct {
	logger logr.Logger
}

func NewErrorLogProcessing(logger logr.Logger) ErrorProcessing {
	return errorLogProcessing{
		logger: logger,
	}
}

func (p errorLogProcessing) ProcessError(ctx context.Context, processingError ErrProcessingError) error {
	keysAndValues := []any{"category", processingError.Category}

	event := processingError.Event
	if event != nil {
		keysAndValues = append(keysAndValues,
			"event.id", event.ID(),
			"event.source", event.Source(),
			"event.type", event.Type(),
			"event.subject", event.Subject(),
			"event.data", string(event.Data()),
		)
	}

	p.logger.V(1).Info("Failed to process event", append(keysAndValues, "error", processingError.Error())...)

	return nil
}
