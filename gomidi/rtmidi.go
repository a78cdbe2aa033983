//go:build cgo

package gomidi

import (
	"errors"
	"fmt"
	"strings"

	"gitlab.com/gomidi/midi/v2/drivers"
	"gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
)

// Output is an open RtMidi output port.
type Output struct {
	driver *rtmididrv.Driver
	out    drivers.Out
}

// OpenOutput opens the first output port whose name starts with prefix. An
// empty prefix takes the first port.
func OpenOutput(prefix string) (*Output, error) {
	driver, err := rtmididrv.New()
	if err != nil {
		return nil, fmt.Errorf("could not open the MIDI driver: %w", err)
	}
	outs, err := driver.Outs()
	if err != nil {
		driver.Close()
		return nil, fmt.Errorf("could not list MIDI outputs: %w", err)
	}
	for _, out := range outs {
		if !strings.HasPrefix(out.String(), prefix) {
			continue
		}
		if err := out.Open(); err != nil {
			driver.Close()
			return nil, fmt.Errorf("opening MIDI output %v failed: %w", out, err)
		}
		return &Output{driver: driver, out: out}, nil
	}
	driver.Close()
	if prefix == "" {
		return nil, errors.New("could not find any MIDI output")
	}
	return nil, fmt.Errorf("could not find a MIDI output starting with %q", prefix)
}

func (o *Output) Send(data []byte) error {
	return o.out.Send(data)
}

func (o *Output) String() string {
	return o.out.String()
}

func (o *Output) Close() error {
	if o.out.IsOpen() {
		o.out.Close()
	}
	return o.driver.Close()
}
