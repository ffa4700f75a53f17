package factory

import (
	"fmt"

	cloudevents "github.com/cloudevents/sdk-go/v2"
	"github.com/go-logr/logr"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/drogue-iot/octoprint-transcoder/internal/processing"
	"github.com/drogue-iot/octoprint-transcoder/pkg/pipeline"
)

/*
 * DecorateProcessing decorates the processing as follow:
 *
 * panic --> duration --> count --> main (route + convert)
 */
func DecorateProcessing(mainProcessing pipeline.Processing[cloudevents.Event], registry prometheus.Registerer) (pipeline.Processing[cloudevents.Event], error) {
	metricsConfig := pipeline.MetricsConfig{Namespace: metricsNamespace}

	ret, err := processing.NewCountData(mainProcessing, registry, metricsConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create data count processing: %w", err)
	}

	ret, err = pipeline.NewDurationMetricsDecoratorProcessing(ret, registry, clockwork.NewRealClock(), metricsConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create duration metrics processor: %w", err)
	}

	ret = pipeline.NewPanicHandlerProcessing(ret)

	return ret, nil
}

/*
 * DecorateErrorProcessing creates the error processing as follow:
 *
 *	           ---> error log
 *	parallel --|
 *	           ---> error count
 */
func DecorateErrorProcessing(logger logr.Logger, registry prometheus.Registerer) (pipeline.ErrorProcessing, error) {
	errorCount, err := pipeline.NewErrorCountProcessing(registry, pipeline.MetricsConfig{Namespace: metricsNamespace})
	if err != nil {
		return nil, fmt.Errorf("failed to create error count processing: %w", err)
	}

	return pipeline.NewParallelErrorProcessing(pipeline.NewErrorLogProcessing(logger), errorCount), nil
}
