// Package generate fills one loop of a track with stochastic note events.
//
// Generation is a pure function of its inputs: the same parameters, scale,
// loop length and random source state always produce the same events.
package generate

import (
	"math"
	"math/rand/v2"

	"github.com/rondo-audio/rondo"
)

// Rand is the randomness the generator consumes. *rand.Rand from
// math/rand/v2 implements it.
type Rand interface {
	IntN(n int) int
	Float64() float64
}

// MaxEvents bounds the number of events generated for a single loop.
const MaxEvents = 1 << 16

// NewRand returns a PCG-backed random source. Tracks use their index as the
// stream so that every track of an engine draws from its own sequence.
func NewRand(seed, stream uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, stream))
}

// Generate returns one loop's worth of events for a layer.
func Generate(p *rondo.LayerParams, scale *rondo.Scale, r Rand, loopLength float64) []rondo.NoteEvent {
	return Append(nil, p, scale, r, loopLength)
}

// Append is Generate appending to dst, so a caller can reuse storage.
//
// A time cursor starts at zero. At every cursor position below loopLength a
// note (or a chord, when p.Chord is set) is drawn and emitted together with
// its doublings; then the cursor moves forward by a random power of two.
// Chord tones strummed past the end of the loop are dropped.
func Append(dst []rondo.NoteEvent, p *rondo.LayerParams, scale *rondo.Scale, r Rand, loopLength float64) []rondo.NoteEvent {
	if !(loopLength > 0) || math.IsInf(loopLength, 0) || p.StepChoices < 1 {
		return dst
	}
	degrees := p.Degrees
	if degrees <= 0 {
		degrees = scale.Len() * max(p.Octaves, 1)
	}
	transpose := math.Exp2(p.Transpose)
	start := len(dst)
	for cursor := 0.0; cursor < loopLength && len(dst)-start < MaxEvents; {
		step := math.Exp2(float64(r.IntN(p.StepChoices)) + p.StepExponent)
		if p.Rest > 0 && r.Float64() < p.Rest {
			cursor += step
			continue
		}
		degree := r.IntN(degrees)
		duration := p.Duration * math.Exp2(float64(r.IntN(max(p.DurationChoices, 1)))+p.DurationExponent)
		volume := p.Volume * (1 - p.VolumeJitter*r.Float64())
		size := 1
		if c := p.Chord; c != nil {
			size = c.MinSize + r.IntN(c.MaxSize-c.MinSize+1)
		}
		for k := 0; k < size; k++ {
			when := cursor
			if k > 0 {
				c := p.Chord
				degree += c.MinStep + r.IntN(c.MaxStep-c.MinStep+1)
				when += float64(k) * c.Strum
			}
			if when >= loopLength {
				break
			}
			note := rondo.NoteEvent{
				Frequency: scale.Get(degree) * transpose,
				Volume:    volume,
				Start:     when,
				Duration:  duration,
			}
			dst = append(dst, note)
			for _, d := range p.Doublings {
				dst = append(dst, rondo.NoteEvent{
					Frequency: math.Ldexp(note.Frequency, d.Octave),
					Volume:    volume * d.Volume,
					Start:     when,
					Duration:  duration * d.Duration,
				})
			}
		}
		cursor += step
	}
	return dst
}
