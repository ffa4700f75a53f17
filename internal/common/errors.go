package common

import (
	"fmt"

	cloudevents "github.com/cloudevents/sdk-go/v2"

	"github.com/drogue-iot/octoprint-transcoder/pkg/pipeline"
)

func NewErrProcessingError(err error, category string, event *cloudevents.Event, reason string, args ...interface{}) pipeline.ErrProcessingError {
	cause := fmt.Sprintf(reason, args...)
	dErr := fmt.Errorf("%s: %w", cause, err)

	return pipeline.NewErrProcessingError(dErr, category, event)
}
