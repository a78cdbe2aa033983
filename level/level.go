// Package level measures the peak and RMS levels of rendered audio.
package level

import (
	"math"

	"github.com/rondo-audio/rondo"
	"github.com/viterin/vek/vek32"
)

type (
	// Decibel is a level relative to full scale.
	Decibel float32

	// Result holds the levels of the left and right channels.
	Result struct {
		Peak    [2]Decibel // largest absolute sample of the last update
		RMS     [2]Decibel // root mean square of the last update
		MaxPeak [2]Decibel // largest Peak since the meter was created or reset
	}

	// Meter accumulates levels over successive buffers. Not safe for
	// concurrent use.
	Meter struct {
		maxPeak [2]float32
		tmp     []float32
	}
)

// Silence is the level reported for an all-zero signal.
const Silence Decibel = -math.MaxFloat32

// Update measures buf and returns the levels so far.
func (m *Meter) Update(buf rondo.AudioBuffer) (ret Result) {
	if len(m.tmp) < len(buf) {
		m.tmp = append(m.tmp, make([]float32, len(buf)-len(m.tmp))...)
	}
	for chn := range 2 {
		x := m.tmp[:len(buf)]
		for i := range buf {
			x[i] = buf[i][chn]
		}
		var peak, power float32
		if len(x) > 0 {
			power = vek32.Dot(x, x) / float32(len(x))
			vek32.Abs_Inplace(x)
			peak = vek32.Max(x)
		}
		m.maxPeak[chn] = max(m.maxPeak[chn], peak)
		ret.Peak[chn] = amplitude2decibel(peak)
		ret.RMS[chn] = power2decibel(power)
		ret.MaxPeak[chn] = amplitude2decibel(m.maxPeak[chn])
	}
	return
}

// Reset forgets the maximum peak.
func (m *Meter) Reset() {
	m.maxPeak = [2]float32{}
}

// Measure is a one-off Update of a fresh meter.
func Measure(buf rondo.AudioBuffer) Result {
	var m Meter
	return m.Update(buf)
}

func amplitude2decibel(a float32) Decibel {
	if !(a > 0) {
		return Silence
	}
	return Decibel(20 * math.Log10(float64(a)))
}

func power2decibel(p float32) Decibel {
	if !(p > 0) {
		return Silence
	}
	return Decibel(10 * math.Log10(float64(p)))
}
