package oto_test

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/rondo-audio/rondo"
	"github.com/rondo-audio/rondo/oto"
)

func TestAppendFloat32LE(t *testing.T) {
	buf := rondo.AudioBuffer{{0.5, -0.25}, {1, 0}}
	b := oto.AppendFloat32LE(nil, buf)
	if len(b) != 16 {
		t.Fatalf("got %d bytes, want 16", len(b))
	}
	want := []float32{0.5, -0.25, 1, 0}
	for i, w := range want {
		if got := math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:])); got != w {
			t.Errorf("sample %d = %v, want %v", i, got, w)
		}
	}
}

func TestAppend16BitLEClips(t *testing.T) {
	buf := rondo.AudioBuffer{{2, -2}, {0, 0.5}}
	b := oto.Append16BitLE([]byte{0xff}, buf)
	if len(b) != 9 {
		t.Fatalf("got %d bytes, want 9", len(b))
	}
	want := []int16{math.MaxInt16, -math.MaxInt16, 0, 16383}
	for i, w := range want {
		if got := int16(binary.LittleEndian.Uint16(b[1+i*2:])); got != w {
			t.Errorf("sample %d = %v, want %v", i, got, w)
		}
	}
}
