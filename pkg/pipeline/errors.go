package pipeline

import (
	"errors"

	cloudevents "github.com/cloudevents/sdk-go/v2"
)

// ErrProcessingError

type ErrProcessingError struct {
	error
	Category string
	Event    *cloudevents.Event
}

const (
	UnknownCategory = "unknown"
	DecodeCategory  = "decode"
	PanicCategory   = "panic"
)

func NewErrProcessingError(err error, category string, event *cloudevents.Event) ErrProcessingError {
	return ErrProcessingError{
		error:    err,
		Category: category,
		Event:    event,
	}
}

func (e ErrProcessingError) Unwrap() error {
	return e.error
}

// WithEvent returns a copy of the error attached to the given inbound event.
func (e ErrProcessingError) WithEvent(event *cloudevents.Event) ErrProcessingError {
	e.Event = event

	return e
}

func createProcessingError(err error) ErrProcessingError {
	ret := ErrProcessingError{}
	if errors.As(err, &ret) {
		return ret
	}

	return NewErrProcessingError(err, UnknownCategory, nil)
}
