package pipeline

import (
	"context"
	"fmt"
	"net/http"

	cloudevents "github.com/cloudevents/sdk-go/v2"
	"github.com/cloudevents/sdk-go/v2/binding"
	cehttp "github.com/cloudevents/sdk-go/v2/protocol/http"
	"github.com/go-logr/logr"
)

// CloudEventHandler decodes one CloudEvent per request, runs it through the processing and
// writes the result back in binary mode. Every failure is answered with a 400.
type CloudEventHandler struct {
	logger *logr.Logger

	processing      Processing[cloudevents.Event]
	errorProcessing ErrorProcessing
}

func NewCloudEventHandler(processing Processing[cloudevents.Event], errProcessing ErrorProcessing) CloudEventHandler {
	return CloudEventHandler{
		processing:      processing,
		errorProcessing: errProcessing,
	}
}

func (h CloudEventHandler) WithLogger(logger logr.Logger) CloudEventHandler {
	h.logger = &logger

	return h
}

func (h CloudEventHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	message := cehttp.NewMessageFromHttpRequest(r)
	defer message.Finish(nil)

	event, err := binding.ToEvent(ctx, message)
	if err == nil {
		err = event.Validate()
	}

	if err != nil {
		h.processError(ctx, NewErrProcessingError(err, DecodeCategory, nil))
		h.writeError(w, "Invalid data: %v", err)

		return
	}

	h.logInfo(3, "Processing event", "id", event.ID(), "type", event.Type(), "subject", event.Subject())

	result, err := h.processing.Process(ctx, *event)
	if err != nil {
		processingError := createProcessingError(err)
		if processingError.Event == nil {
			processingError = processingError.WithEvent(event)
		}

		h.processError(ctx, processingError)
		h.writeError(w, "Failed to process: %v", err)

		return
	}

	err = cehttp.WriteResponseWriter(ctx, binding.ToMessage(&result), http.StatusOK, w)
	if err != nil {
		h.logError(err, "Failed to write response", "id", result.ID())
	}
}

func (h CloudEventHandler) processError(ctx context.Context, processingError ErrProcessingError) {
	if h.errorProcessing == nil {
		return
	}

	err := h.errorProcessing.ProcessError(ctx, processingError)
	if err != nil {
		h.logError(err, "Error pipeline failed", "category", processingError.Category)
	}
}

func (h CloudEventHandler) writeError(w http.ResponseWriter, format string, args ...any) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusBadRequest)

	_, err := fmt.Fprintf(w, format, args...)
	if err != nil {
		h.logError(err, "Failed to write error response")
	}
}

func (h CloudEventHandler) logInfo(level int, msg string, keysAndValues ...any) {
	if h.logger == nil {
		return
	}

	h.logger.V(level).Info(msg, keysAndValues...)
}

func (h CloudEventHandler) logError(err error, msg string, keysAndValues ...any) {
	if h.logger == nil {
		return
	}

	h.logger.Error(err, msg, keysAndValues...)
}
