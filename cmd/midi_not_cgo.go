//go:build !cgo

package cmd

import "errors"

// OpenMidiOutput always fails: with no cgo, there is no MIDI driver.
func OpenMidiOutput(prefix string) (MidiOutput, error) {
	return nil, errors.New("MIDI output needs a build with cgo enabled")
}
