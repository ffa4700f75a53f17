package pipeline_test

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"

	cloudevents "github.com/cloudevents/sdk-go/v2"
	"github.com/cloudevents/sdk-go/v2/binding"
	cehttp "github.com/cloudevents/sdk-go/v2/protocol/http"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/drogue-iot/octoprint-transcoder/pkg/pipeline"
	"github.com/drogue-iot/octoprint-transcoder/pkg/pipeline/mock"
)

func newTestEvent() cloudevents.Event {
	event := cloudevents.NewEvent()
	event.SetID("1")
	event.SetSource("https://example.com/event-producer")
	event.SetType("io.drogue.event.v1")
	event.SetSubject("foo/bar")

	err := event.SetData(cloudevents.ApplicationJSON, map[string]interface{}{"foo": "bar"})
	Expect(err).NotTo(HaveOccurred())

	return event
}

func newBinaryRequest(ctx SpecContext, event cloudevents.Event) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/", nil)

	err := cehttp.WriteRequest(ctx, binding.ToMessage(&event), req)
	Expect(err).NotTo(HaveOccurred())

	return req
}

var _ = Describe("Testing CloudEventHandler", func() {
	var ctrl *gomock.Controller

	var proc *mock.MockProcessing[cloudevents.Event]
	var errProc *mock.MockErrorProcessing
	var handler http.Handler
	var recorder *httptest.ResponseRecorder

	BeforeEach(func() {
		ctrl = gomock.NewController(GinkgoT())

		proc = mock.NewMockProcessing[cloudevents.Event](ctrl)
		errProc = mock.NewMockErrorProcessing(ctrl)

		handler = pipeline.NewCloudEventHandler(proc, errProc).WithLogger(GinkgoLogr)
		recorder = httptest.NewRecorder()
	})

	When("the processing succeeds", func() {
		It("should answer the processed event in binary mode", func(ctx SpecContext) {
			event := newTestEvent()

			processed := event.Clone()
			processed.SetType("org.octoprint.temperature.v1")

			proc.EXPECT().Process(gomock.Any(), gomock.Any()).Return(processed, nil).Times(1)

			handler.ServeHTTP(recorder, newBinaryRequest(ctx, event))

			resp := recorder.Result()
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			Expect(resp.Header.Get("ce-type")).To(Equal("org.octoprint.temperature.v1"))

			out, err := binding.ToEvent(ctx, cehttp.NewMessageFromHttpResponse(resp))
			Expect(err).NotTo(HaveOccurred())
			Expect(out.Type()).To(Equal("org.octoprint.temperature.v1"))
			Expect(out.Subject()).To(Equal("foo/bar"))
			Expect(out.Data()).To(MatchJSON(`{"foo":"bar"}`))
		})
	})

	When("the processing fails", func() {
		It("should answer 400 and report the error with the inbound event", func(ctx SpecContext) {
			event := newTestEvent()
			processingErr := pipeline.NewErrProcessingError(errOneError, oneCategory, nil)

			proc.EXPECT().Process(gomock.Any(), gomock.Any()).Return(cloudevents.Event{}, processingErr).Times(1)
			errProc.EXPECT().ProcessError(gomock.Any(), gomock.Any()).DoAndReturn(
				func(_ any, pErr pipeline.ErrProcessingError) error {
					Expect(pErr.Category).To(Equal(oneCategory))
					Expect(pErr.Event).NotTo(BeNil())
					Expect(pErr.Event.Subject()).To(Equal("foo/bar"))

					return nil
				},
			).Times(1)

			handler.ServeHTTP(recorder, newBinaryRequest(ctx, event))

			resp := recorder.Result()
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))

			body, err := io.ReadAll(resp.Body)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(body)).To(Equal("Failed to process: " + errOneError.Error()))
		})

		It("should categorize plain errors as unknown", func(ctx SpecContext) {
			proc.EXPECT().Process(gomock.Any(), gomock.Any()).Return(cloudevents.Event{}, errors.New("boom")).Times(1)
			errProc.EXPECT().ProcessError(gomock.Any(), gomock.Any()).DoAndReturn(
				func(_ any, pErr pipeline.ErrProcessingError) error {
					Expect(pErr.Category).To(Equal(pipeline.UnknownCategory))

					return errOneError
				},
			).Times(1)

			handler.ServeHTTP(recorder, newBinaryRequest(ctx, newTestEvent()))

			Expect(recorder.Code).To(Equal(http.StatusBadRequest))
		})
	})

	When("the request is not a cloud event", func() {
		It("should answer 400 without calling the processing", func() {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("hello"))
			req.Header.Set("Content-Type", "text/plain")

			errProc.EXPECT().ProcessError(gomock.Any(), gomock.Any()).DoAndReturn(
				func(_ any, pErr pipeline.ErrProcessingError) error {
					Expect(pErr.Category).To(Equal(pipeline.DecodeCategory))
					Expect(pErr.Event).To(BeNil())

					return nil
				},
			).Times(1)

			handler.ServeHTTP(recorder, req)

			Expect(recorder.Code).To(Equal(http.StatusBadRequest))
			Expect(recorder.Body.String()).To(HavePrefix("Invalid data: "))
		})
	})

	When("the structured event is malformed", func() {
		It("should answer 400", func() {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"specversion": "1.0", `))
			req.Header.Set("Content-Type", cloudevents.ApplicationCloudEventsJSON)

			errProc.EXPECT().ProcessError(gomock.Any(), gomock.Any()).Return(nil).Times(1)

			handler.ServeHTTP(recorder, req)

			Expect(recorder.Code).To(Equal(http.StatusBadRequest))
			Expect(recorder.Body.String()).To(HavePrefix("Invalid data: "))
		})
	})

	When("the event misses a required attribute", func() {
		It("should answer 400", func() {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{}`))
			req.Header.Set("Content-Type", cloudevents.ApplicationJSON)
			req.Header.Set("ce-specversion", "1.0")
			req.Header.Set("ce-id", "1")
			req.Header.Set("ce-type", "io.drogue.event.v1")

			errProc.EXPECT().ProcessError(gomock.Any(), gomock.Any()).Return(nil).Times(1)

			handler.ServeHTTP(recorder, req)

			Expect(recorder.Code).To(Equal(http.StatusBadRequest))
			Expect(recorder.Body.String()).To(HavePrefix("Invalid data: "))
		})
	})
})
