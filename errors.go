package rondo

import (
	"errors"
	"fmt"
)

// ConfigError reports an invalid configuration. It is only ever returned
// while an engine is being built; a running engine does not produce
// configuration errors.
type ConfigError struct {
	Field  string // dotted path of the offending field, e.g. "tracks[2].scale"
	Reason string
}

// ErrTooFewChannels is returned when a host asks for fewer than two output
// channels. The engine always renders stereo and refuses to render into a
// narrower frame.
var ErrTooFewChannels = errors.New("output needs at least 2 channels")

func (e *ConfigError) Error() string {
	if e.Field == "" {
		return "invalid configuration: " + e.Reason
	}
	return fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Reason)
}

// prefix returns a copy of the error with path prepended to Field.
func (e *ConfigError) prefix(path string) *ConfigError {
	f := path
	if e.Field != "" {
		f = path + "." + e.Field
	}
	return &ConfigError{Field: f, Reason: e.Reason}
}
