package processing

import "github.com/drogue-iot/octoprint-transcoder/internal/domain/entity"

const (
	TypePrintingProgress = "org.octoprint.printing.progress.v1"

	featurePrinting = "printing"
)

func convertPrintingProgress(_ string, payload map[string]interface{}) (Conversion, error) {
	timestamp, err := ExtractTimestamp(payload)
	if err != nil {
		return Unchanged(), err
	}

	printing, err := ExtractFields(payload, "progress", "location", "path")
	if err != nil {
		return Unchanged(), err
	}

	printing["timestamp"] = timestamp

	return Matched(TypePrintingProgress, entity.NewFeatureState(featurePrinting, printing)), nil
}
