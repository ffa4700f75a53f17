package processing

import "strings"

type converter func(suffix string, payload map[string]interface{}) (Conversion, error)

type route struct {
	prefix  string
	convert converter
}

// Evaluated in order, the first matching prefix wins.
var routes = []route{
	{prefix: "temperature/", convert: convertTemperature},
	{prefix: "progress/printing", convert: convertPrintingProgress},
	{prefix: "event/", convert: convertNamedEvent},
}

func convert(channel string, payload map[string]interface{}) (Conversion, error) {
	for _, r := range routes {
		suffix, found := strings.CutPrefix(channel, r.prefix)
		if !found {
			continue
		}

		return r.convert(suffix, payload)
	}

	return Unchanged(), nil
}
