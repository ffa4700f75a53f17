package processing

import "github.com/drogue-iot/octoprint-transcoder/internal/domain/entity"

// Conversion is the outcome of routing a channel: either Matched, carrying the new event type
// and feature state, or Unchanged.
type Conversion struct {
	matched   bool
	eventType string
	state     entity.FeatureState
}

func Matched(eventType string, state entity.FeatureState) Conversion {
	return Conversion{
		matched:   true,
		eventType: eventType,
		state:     state,
	}
}

func Unchanged() Conversion {
	return Conversion{}
}

func (c Conversion) IsMatched() bool {
	return c.matched
}

func (c Conversion) EventType() string {
	return c.eventType
}

func (c Conversion) State() entity.FeatureState {
	return c.state
}
