package processing

import "github.com/drogue-iot/octoprint-transcoder/internal/domain/entity"

const TypeTemperature = "org.octoprint.temperature.v1"

func convertTemperature(tool string, payload map[string]interface{}) (Conversion, error) {
	timestamp, err := ExtractTimestamp(payload)
	if err != nil {
		return Unchanged(), err
	}

	temperature, err := ExtractFields(payload, "actual", "target")
	if err != nil {
		return Unchanged(), err
	}

	temperature["timestamp"] = timestamp

	state := entity.NewFeatureState(tool, entity.Properties{
		"temperature": temperature,
	})

	return Matched(TypeTemperature, state), nil
}
