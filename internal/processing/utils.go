package processing

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/drogue-iot/octoprint-transcoder/internal/common"
	"github.com/drogue-iot/octoprint-transcoder/internal/domain/entity"
	"github.com/drogue-iot/octoprint-transcoder/pkg/pipeline"
)

var (
	ErrMissingChannel      = errors.New("missing channel")
	ErrUnsupportedDataType = errors.New("unknown data type")
	ErrMissingField        = errors.New("missing field")
	ErrInvalidField        = errors.New("field type was not the expected one")
)

const (
	categoryMissingField = "missing_field"
	categoryInvalidField = "invalid_field"

	timestampKey = "_timestamp"
)

// DecodePayload decodes event data into a JSON object. Numbers are kept as json.Number so
// they are re-encoded exactly as received.
func DecodePayload(data []byte) (map[string]interface{}, error) {
	var value interface{}

	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()

	err := decoder.Decode(&value)
	switch {
	case errors.Is(err, io.EOF):
		value = nil
	case err != nil:
		return nil, fmt.Errorf("%w: string", ErrUnsupportedDataType)
	default:
		_, err = decoder.Token()
		if !errors.Is(err, io.EOF) { // trailing content: not a single JSON value
			return nil, fmt.Errorf("%w: string", ErrUnsupportedDataType)
		}
	}

	ret, ok := value.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedDataType, TypeName(value))
	}

	return ret, nil
}

// TypeName names the JSON type of a decoded value.
func TypeName(value interface{}) string {
	switch value.(type) {
	case nil:
		return "null"
	case map[string]interface{}:
		return "object"
	case []interface{}:
		return "array"
	case string:
		return "string"
	case bool:
		return "boolean"
	case json.Number, float64, float32, int, int64, int32:
		return "number"
	default:
		return fmt.Sprintf("%T", value)
	}
}

func ExtractField(payload map[string]interface{}, key string) (interface{}, error) {
	value, present := payload[key]
	if !present {
		return nil, ErrMissingField
	}

	return value, nil
}

// ExtractFields copies the given keys into new properties, failing on the first missing one.
func ExtractFields(payload map[string]interface{}, keys ...string) (entity.Properties, error) {
	ret := make(entity.Properties, len(keys)+1)

	for _, key := range keys {
		value, err := ExtractField(payload, key)
		if err != nil {
			return nil, fieldError(err, key)
		}

		ret[key] = value
	}

	return ret, nil
}

// ExtractTimestamp reads the integer seconds timestamp and returns it in milliseconds.
func ExtractTimestamp(payload map[string]interface{}) (int64, error) {
	value, err := ExtractField(payload, timestampKey)
	if err != nil {
		return 0, fieldError(err, timestampKey)
	}

	seconds, err := toInt64(value)
	if err != nil {
		return 0, fieldError(err, timestampKey)
	}

	if seconds > math.MaxInt64/1000 || seconds < math.MinInt64/1000 {
		return 0, fieldError(fmt.Errorf("%w: %d is out of range", ErrInvalidField, seconds), timestampKey)
	}

	return seconds * 1000, nil
}

func toInt64(value interface{}) (int64, error) {
	switch v := value.(type) {
	case json.Number:
		ret, err := v.Int64()
		if err != nil {
			return 0, fmt.Errorf("%w: %s is not an integer", ErrInvalidField, v)
		}

		return ret, nil
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	case float64:
		if v != math.Trunc(v) || math.IsInf(v, 0) {
			return 0, fmt.Errorf("%w: %v is not an integer", ErrInvalidField, v)
		}

		// MaxInt64 rounds up to 2^63 as a float64
		if v >= math.MaxInt64 || v < math.MinInt64 {
			return 0, fmt.Errorf("%w: %v is out of range", ErrInvalidField, v)
		}

		return int64(v), nil
	default:
		return 0, fmt.Errorf("%w: got %s", ErrInvalidField, TypeName(value))
	}
}

func fieldError(err error, key string) pipeline.ErrProcessingError {
	category := categoryInvalidField
	if errors.Is(err, ErrMissingField) {
		category = categoryMissingField
	}

	return common.NewErrProcessingError(err, category, nil, "failed to extract %s", key)
}
