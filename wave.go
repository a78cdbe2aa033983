package rondo

import (
	"fmt"
	"math"
)

// Waveform selects one of the oscillator functions below. The zero value is
// SineWave.
type Waveform int

const (
	SineWave Waveform = iota
	SawtoothWave
	SquareWave
	TriangleWave
)

// DefaultWidth is the pulse width used by Square when the caller has no
// opinion.
const DefaultWidth = 0.5

var waveformNames = [...]string{"sine", "saw", "square", "triangle"}

// Sine returns sin(2π·phase). Phase is given in cycles.
func Sine(phase float64) float64 {
	return math.Sin(2 * math.Pi * phase)
}

// Sawtooth ramps from -1 to 1 over two cycles of phase.
func Sawtooth(phase float64) float64 {
	return fmod(phase, 2) - 1
}

// Square is -1 for the first width fraction of every cycle and 1 for the
// rest.
func Square(phase, width float64) float64 {
	if fmod(phase, 1) < width {
		return -1
	}
	return 1
}

// Triangle rises from -1 at phase 0 to 1 at phase 0.5 and falls back to -1
// by the end of the cycle.
func Triangle(phase float64) float64 {
	p := fmod(phase, 1)
	if p <= 0.5 {
		return 4 * (p - 0.25)
	}
	return 4 * (0.75 - p)
}

// Eval evaluates the waveform at phase; square uses DefaultWidth.
func (w Waveform) Eval(phase float64) float64 {
	switch w {
	case SawtoothWave:
		return Sawtooth(phase)
	case SquareWave:
		return Square(phase, DefaultWidth)
	case TriangleWave:
		return Triangle(phase)
	default:
		return Sine(phase)
	}
}

func (w Waveform) String() string {
	if w < 0 || int(w) >= len(waveformNames) {
		return fmt.Sprintf("Waveform(%d)", int(w))
	}
	return waveformNames[w]
}

func (w Waveform) MarshalText() ([]byte, error) {
	return []byte(w.String()), nil
}

func (w *Waveform) UnmarshalText(text []byte) error {
	for i, n := range waveformNames {
		if n == string(text) {
			*w = Waveform(i)
			return nil
		}
	}
	return &ConfigError{Field: "waveform", Reason: fmt.Sprintf("unknown waveform %q", text)}
}

// fmod is a floored modulo: the result always has the sign of m, so negative
// phases map into [0, m) like positive ones. Non-finite input yields 0.
func fmod(x, m float64) float64 {
	r := math.Mod(x, m)
	if r < 0 {
		r += m
	}
	if r >= m || r != r {
		return 0
	}
	return r
}
