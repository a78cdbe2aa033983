package rondo_test

import (
	"math"
	"testing"

	"github.com/rondo-audio/rondo"
)

var testPhases = []float64{-3.3, -0.7, 0.1, 0.37, 2.9, 10.61, 1234.56}

func TestWavesArePeriodic(t *testing.T) {
	for _, p := range testPhases {
		if d := math.Abs(rondo.Sine(p+1) - rondo.Sine(p)); d > 1e-9 {
			t.Errorf("Sine(%v+1) differs from Sine(%v) by %v", p, p, d)
		}
		if d := math.Abs(rondo.Triangle(p+1) - rondo.Triangle(p)); d > 1e-9 {
			t.Errorf("Triangle(%v+1) differs from Triangle(%v) by %v", p, p, d)
		}
		if d := math.Abs(rondo.Sawtooth(p+2) - rondo.Sawtooth(p)); d > 1e-9 {
			t.Errorf("Sawtooth(%v+2) differs from Sawtooth(%v) by %v", p, p, d)
		}
		for _, w := range []float64{0.25, 0.5, 0.75} {
			if rondo.Square(p+1, w) != rondo.Square(p, w) {
				t.Errorf("Square(%v+1, %v) != Square(%v, %v)", p, w, p, w)
			}
		}
	}
}

func TestWaveValues(t *testing.T) {
	tests := []struct {
		name string
		got  float64
		want float64
	}{
		{"sine 0", rondo.Sine(0), 0},
		{"sine quarter", rondo.Sine(0.25), 1},
		{"saw 0", rondo.Sawtooth(0), -1},
		{"saw 1", rondo.Sawtooth(1), 0},
		{"saw negative", rondo.Sawtooth(-0.5), 0.5},
		{"square low", rondo.Square(0.2, 0.5), -1},
		{"square high", rondo.Square(0.7, 0.5), 1},
		{"square narrow", rondo.Square(0.2, 0.1), 1},
		{"square negative phase", rondo.Square(-0.9, 0.5), -1},
		{"triangle 0", rondo.Triangle(0), -1},
		{"triangle quarter", rondo.Triangle(0.25), 0},
		{"triangle half", rondo.Triangle(0.5), 1},
		{"triangle three quarters", rondo.Triangle(0.75), 0},
		{"triangle negative", rondo.Triangle(-0.5), 1},
	}
	for _, tt := range tests {
		if math.Abs(tt.got-tt.want) > 1e-12 {
			t.Errorf("%s: got %v, want %v", tt.name, tt.got, tt.want)
		}
	}
}

func TestTriangleIsContinuousAtHalf(t *testing.T) {
	const eps = 1e-9
	if d := math.Abs(rondo.Triangle(0.5-eps) - rondo.Triangle(0.5+eps)); d > 1e-7 {
		t.Errorf("triangle jumps by %v around 0.5", d)
	}
}

func TestWavesStayInRange(t *testing.T) {
	waves := []rondo.Waveform{rondo.SineWave, rondo.SawtoothWave, rondo.SquareWave, rondo.TriangleWave}
	for _, w := range waves {
		for i := -1000; i <= 1000; i++ {
			p := float64(i) * 0.0137
			v := w.Eval(p)
			if v < -1 || v > 1 || math.IsNaN(v) {
				t.Fatalf("%v.Eval(%v) = %v, outside [-1, 1]", w, p, v)
			}
		}
	}
	if v := rondo.Sawtooth(math.Inf(1)); v != -1 {
		t.Errorf("Sawtooth(+Inf) = %v, want -1", v)
	}
}

func TestWaveformText(t *testing.T) {
	for _, name := range []string{"sine", "saw", "square", "triangle"} {
		var w rondo.Waveform
		if err := w.UnmarshalText([]byte(name)); err != nil {
			t.Fatalf("UnmarshalText(%q) failed: %v", name, err)
		}
		if w.String() != name {
			t.Errorf("UnmarshalText(%q) gave %v", name, w)
		}
	}
	var w rondo.Waveform
	if err := w.UnmarshalText([]byte("noise")); err == nil {
		t.Errorf("UnmarshalText(\"noise\") should have failed")
	}
}
