package processing

import (
	"context"
	"fmt"

	cloudevents "github.com/cloudevents/sdk-go/v2"

	"github.com/drogue-iot/octoprint-transcoder/pkg/pipeline"
)

// IngestionType marks the events eligible for channel based conversion.
const IngestionType = "io.drogue.event.v1"

const (
	categoryMissingChannel      = "missing_channel"
	categoryUnsupportedDataType = "unsupported_data_type"
	categoryEncode              = "encode"
)

type Main struct{}

func NewMain() Main {
	return Main{}
}

// Process returns the converted event, or the input event when no conversion applies.
// The input event is never modified.
func (m Main) Process(ctx context.Context, event cloudevents.Event) (cloudevents.Event, error) {
	// Unknown producer, not our concern
	if event.Type() != IngestionType {
		return event, nil
	}

	channel := event.Subject()
	if channel == "" {
		return cloudevents.Event{}, pipeline.NewErrProcessingError(ErrMissingChannel, categoryMissingChannel, &event)
	}

	payload, err := DecodePayload(event.Data())
	if err != nil {
		return cloudevents.Event{}, pipeline.NewErrProcessingError(err, categoryUnsupportedDataType, &event)
	}

	conversion, err := convert(channel, payload)
	if err != nil {
		return cloudevents.Event{}, err
	}

	if !conversion.IsMatched() {
		return event, nil
	}

	ret := event.Clone()
	ret.SetType(conversion.EventType())

	err = ret.SetData(cloudevents.ApplicationJSON, conversion.State())
	if err != nil {
		return cloudevents.Event{}, pipeline.NewErrProcessingError(fmt.Errorf("failed to encode feature state: %w", err), categoryEncode, &event)
	}

	return ret, nil
}
