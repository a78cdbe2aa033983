//go:build cgo

package cmd

import (
	"github.com/rondo-audio/rondo/gomidi"
)

// OpenMidiOutput opens the first MIDI output port whose name starts with
// prefix.
func OpenMidiOutput(prefix string) (MidiOutput, error) {
	out, err := gomidi.OpenOutput(prefix)
	if err != nil {
		return nil, err
	}
	return out, nil
}
