package engine

import (
	"math"
	"sort"

	"github.com/rondo-audio/rondo"
)

type (
	// VoiceInput is what a voice knows about the note it is playing.
	VoiceInput struct {
		Phase     float64 // global phase × frequency, in cycles
		Elapsed   float64 // seconds since the note started
		Pos       float64 // position within the note, 0..1
		Frequency float64
	}

	// Voice synthesizes one sample of a note. shift is a phase offset in
	// cycles, used to decorrelate the two channels of wide tracks. A voice
	// must be pure and return values within [-1, 1].
	Voice func(in VoiceInput, shift float64) float64
)

// Voices are the voices tracks can name in their config.
var Voices = map[string]Voice{
	"sines": sines,
	"pad":   pad,
	"pluck": pluck,
	"bell":  bell,
	"drum":  drum,
}

// DefaultVoice is used by tracks that do not name one.
const DefaultVoice = "sines"

// VoiceNames returns the sorted voice names.
func VoiceNames() []string {
	ret := make([]string, 0, len(Voices))
	for k := range Voices {
		ret = append(ret, k)
	}
	sort.Strings(ret)
	return ret
}

// sines stacks the fundamental, the octave below and a phase-shifted copy.
func sines(in VoiceInput, shift float64) float64 {
	p := in.Phase + shift
	return (rondo.Sine(p*0.5) + rondo.Sine(p) + rondo.Sine(p+0.3)) / 3
}

// pad is two slightly detuned saws over a sub sine. Sawtooth has a period
// of two cycles, hence the doubled phase.
func pad(in VoiceInput, shift float64) float64 {
	p := in.Phase + shift
	return 0.35*rondo.Sawtooth(2*p) + 0.35*rondo.Sawtooth(2*p*1.003) + 0.3*rondo.Sine(p*0.5)
}

// pluck narrows its pulse as the note decays.
func pluck(in VoiceInput, shift float64) float64 {
	p := in.Phase + shift
	return 0.4*rondo.Square(p, 0.5-0.4*in.Pos) + 0.6*rondo.Triangle(p)
}

// bell is a sine phase-modulated by a triangle at an inharmonic ratio.
func bell(in VoiceInput, shift float64) float64 {
	p := in.Phase + shift
	return 0.7*rondo.Sine(p+0.3*rondo.Triangle(p*3.5)) + 0.3*rondo.Sine(p*2)
}

const (
	drumDrop = 3.0  // extra pitch at the start of a hit, in multiples of the base frequency
	drumTau  = 0.02 // pitch drop time constant, in seconds
)

// drum restarts its phase on every note. The phase is the closed-form
// integral of f·(1 + drumDrop·e^(-t/drumTau)), so the pitch sweep has no
// discontinuities.
func drum(in VoiceInput, shift float64) float64 {
	t := in.Elapsed
	p := in.Frequency*t + in.Frequency*drumDrop*drumTau*(1-math.Exp(-t/drumTau)) + shift
	click := 0.0
	if t < 0.005 {
		click = 0.3 * rondo.Square(p*4, rondo.DefaultWidth)
	}
	return 0.7*rondo.Sine(p) + click
}

// WaveVoice plays a bare oscillator. The sawtooth runs at double phase so
// that every waveform completes one period per cycle of the note.
func WaveVoice(w rondo.Waveform) Voice {
	scale := 1.0
	if w == rondo.SawtoothWave {
		scale = 2
	}
	return func(in VoiceInput, shift float64) float64 {
		return w.Eval(scale * (in.Phase + shift))
	}
}

// envelope is a linear attack to 1 over the first attack fraction of the
// note followed by a linear release to 0 at its end.
func envelope(pos, attack float64) float64 {
	if pos < attack {
		return pos / attack
	}
	return (1 - pos) / (1 - attack)
}
