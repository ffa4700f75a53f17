package processing_test

import (
	"strings"

	cloudevents "github.com/cloudevents/sdk-go/v2"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/drogue-iot/octoprint-transcoder/internal/processing"
	"github.com/drogue-iot/octoprint-transcoder/pkg/pipeline"
)

var _ = Describe("Counting processed data", func() {
	var registry *prometheus.Registry
	var count pipeline.Processing[cloudevents.Event]

	BeforeEach(func() {
		var err error

		registry = prometheus.NewPedanticRegistry()

		count, err = processing.NewCountData(processing.NewMain(), registry, pipeline.MetricsConfig{Namespace: "test"})
		Expect(err).NotTo(HaveOccurred())
	})

	When("converted, untouched and invalid events are processed", func() {
		BeforeEach(func(ctx SpecContext) {
			for i := 0; i < 2; i++ {
				_, err := count.Process(ctx, newIngestionEvent("temperature/tool0", map[string]interface{}{"_timestamp": 1, "actual": 1, "target": 2}))
				Expect(err).NotTo(HaveOccurred())
			}

			_, err := count.Process(ctx, newIngestionEvent("foo/bar", map[string]interface{}{"foo": "bar"}))
			Expect(err).NotTo(HaveOccurred())

			_, err = count.Process(ctx, newIngestionEvent("", map[string]interface{}{"foo": "bar"}))
			Expect(err).To(HaveOccurred())
		})

		It("should only count the successfully processed events", func() {
			nb, err := testutil.GatherAndCount(registry, "test_data_total")
			Expect(err).NotTo(HaveOccurred())
			Expect(nb).To(Equal(2))

			Expect(testutil.GatherAndCompare(registry, strings.NewReader(`
# HELP test_data_total Processed event counter by input and output type.
# TYPE test_data_total counter
test_data_total{input_type="io.drogue.event.v1",output_type="io.drogue.event.v1"} 1
test_data_total{input_type="io.drogue.event.v1",output_type="org.octoprint.temperature.v1"} 2
`), "test_data_total")).To(Succeed())
		})
	})
})
