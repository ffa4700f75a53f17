package entity

// Properties are the normalized values of one feature.
type Properties map[string]interface{}

// FeatureState is the canonical downstream shape: {"features": {<name>: <properties>}}.
type FeatureState struct {
	Features map[string]Properties `json:"features"`
}

// NewFeatureState wraps the properties of a single feature.
func NewFeatureState(name string, properties Properties) FeatureState {
	return FeatureState{
		Features: map[string]Properties{
			name: properties,
		},
	}
}
