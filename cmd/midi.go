// Package cmd holds what the commands share but the libraries do not need.
package cmd

// MidiOutput is an open MIDI output port.
type MidiOutput interface {
	Send(data []byte) error
	Close() error
}
