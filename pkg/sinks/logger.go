package sinks

import "github.com/samvad-hq/brightdata-go/pkg/brightdata"

// Logger is the same structured surface the API client logs through.
type Logger = brightdata.Logger

func ensureLogger(log Logger) Logger {
	if log == nil {
		return brightdata.NopLogger{}
	}
	return log
}
