package level_test

import (
	"math"
	"testing"

	"github.com/rondo-audio/rondo"
	"github.com/rondo-audio/rondo/level"
)

func TestMeasure(t *testing.T) {
	buf := rondo.AudioBuffer{{0.5, -1}, {-0.5, 1}, {0.5, -1}, {-0.5, 1}}
	r := level.Measure(buf)
	if d := math.Abs(float64(r.Peak[0]) - 20*math.Log10(0.5)); d > 1e-4 {
		t.Errorf("left peak = %v dB, want about -6.02", r.Peak[0])
	}
	if d := math.Abs(float64(r.Peak[1])); d > 1e-4 {
		t.Errorf("right peak = %v dB, want 0", r.Peak[1])
	}
	if d := math.Abs(float64(r.RMS[0] - r.Peak[0])); d > 1e-4 {
		t.Errorf("square wave rms %v differs from its peak %v", r.RMS[0], r.Peak[0])
	}
	if buf[0][1] != -1 {
		t.Errorf("Measure modified its input")
	}
}

func TestMaxPeakIsHeld(t *testing.T) {
	var m level.Meter
	m.Update(rondo.AudioBuffer{{1, 1}})
	r := m.Update(rondo.AudioBuffer{{0.1, 0.1}})
	if r.MaxPeak[0] != 0 || r.Peak[0] >= r.MaxPeak[0] {
		t.Errorf("peak %v, max peak %v; the earlier full scale peak was not held", r.Peak[0], r.MaxPeak[0])
	}
	m.Reset()
	r = m.Update(rondo.AudioBuffer{{0, 0}})
	if r.MaxPeak[0] != level.Silence || r.RMS[0] != level.Silence {
		t.Errorf("silence after reset measured as %v / %v", r.MaxPeak[0], r.RMS[0])
	}
}
