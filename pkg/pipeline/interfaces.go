package pipeline

import "context"

//go:generate mockgen -source=interfaces.go -package=mock -destination=./mock/mock_pipeline.go

// Processing turns a payload into its processed form. Implementations must not mutate the input.
type Processing[Payload any] interface {
	Process(context.Context, Payload) (Payload, error)
}

type ErrorProcessing interface {
	ProcessError(context.Context, ErrProcessingError) error
}
