package oto

import (
	"encoding/binary"
	"math"

	"github.com/rondo-audio/rondo"
)

// AppendFloat32LE appends the buffer to dst as interleaved little-endian
// float32 samples and returns the extended slice.
func AppendFloat32LE(dst []byte, buf rondo.AudioBuffer) []byte {
	for _, v := range buf {
		dst = binary.LittleEndian.AppendUint32(dst, math.Float32bits(v[0]))
		dst = binary.LittleEndian.AppendUint32(dst, math.Float32bits(v[1]))
	}
	return dst
}

// Append16BitLE appends the buffer to dst as interleaved little-endian
// signed 16-bit samples, clipping to [-1, 1].
func Append16BitLE(dst []byte, buf rondo.AudioBuffer) []byte {
	for _, v := range buf {
		dst = binary.LittleEndian.AppendUint16(dst, uint16(to16(v[0])))
		dst = binary.LittleEndian.AppendUint16(dst, uint16(to16(v[1])))
	}
	return dst
}

func to16(v float32) int16 {
	switch {
	case v < -1.0:
		return -math.MaxInt16
	case v > 1.0:
		return math.MaxInt16
	}
	return int16(v * math.MaxInt16)
}
