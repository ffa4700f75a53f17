package processing

import "github.com/drogue-iot/octoprint-transcoder/internal/domain/entity"

const (
	TypePrinterConnection = "org.octoprint.printer.connection.v1"

	eventNamePrinterStateChanged = "PrinterStateChanged"
	eventNameFirmwareData        = "FirmwareData"

	featureConnection = "connection"
	featureFirmware   = "firmware"

	stateOperational = "OPERATIONAL"
)

var namedEvents = map[string]converter{
	eventNamePrinterStateChanged: convertPrinterStateChanged,
	eventNameFirmwareData:        convertFirmwareData,
}

// Unknown event names are not an error, the event is left untouched.
func convertNamedEvent(name string, payload map[string]interface{}) (Conversion, error) {
	eventConverter, found := namedEvents[name]
	if !found {
		return Unchanged(), nil
	}

	return eventConverter(name, payload)
}

func convertPrinterStateChanged(_ string, payload map[string]interface{}) (Conversion, error) {
	timestamp, err := ExtractTimestamp(payload)
	if err != nil {
		return Unchanged(), err
	}

	fields, err := ExtractFields(payload, "state_string", "state_id")
	if err != nil {
		return Unchanged(), err
	}

	connection := entity.Properties{
		"timestamp": timestamp,
		"state":     fields["state_string"],
		"state_id":  fields["state_id"],
		"connected": fields["state_id"] == stateOperational,
	}

	return Matched(TypePrinterConnection, entity.NewFeatureState(featureConnection, connection)), nil
}

func convertFirmwareData(_ string, payload map[string]interface{}) (Conversion, error) {
	timestamp, err := ExtractTimestamp(payload)
	if err != nil {
		return Unchanged(), err
	}

	firmware, err := ExtractFields(payload, "name", "data")
	if err != nil {
		return Unchanged(), err
	}

	firmware["timestamp"] = timestamp

	return Matched(TypePrinterConnection, entity.NewFeatureState(featureFirmware, firmware)), nil
}
