package processing

import (
	"context"
	"fmt"

	cloudevents "github.com/cloudevents/sdk-go/v2"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/drogue-iot/octoprint-transcoder/pkg/pipeline"
)

type CountData struct {
	counter *prometheus.CounterVec
	inner   pipeline.Processing[cloudevents.Event]
}

func NewCountData(p pipeline.Processing[cloudevents.Event], registry prometheus.Registerer, config pipeline.MetricsConfig) (pipeline.Processing[cloudevents.Event], error) {
	counter := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: config.Namespace,
		Name:      "data_total",
		Help:      "Processed event counter by input and output type.",
	}, []string{"input_type", "output_type"})

	err := registry.Register(counter)
	if err != nil {
		return nil, fmt.Errorf("failed to register metric: %w", err)
	}

	ret := CountData{
		counter: counter,
		inner:   p,
	}

	return ret, nil
}

func (p CountData) Process(ctx context.Context, event cloudevents.Event) (cloudevents.Event, error) {
	ret, err := p.inner.Process(ctx, event)
	if err != nil {
		return ret, err // Count only successfully processed data
	}

	p.counter.WithLabelValues(event.Type(), ret.Type()).Inc()

	return ret, nil
}
