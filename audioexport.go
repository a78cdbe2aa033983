package rondo

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
)

// Wav encodes the buffer as a stereo .wav file at the given sample rate,
// either as 16-bit PCM or as 32-bit IEEE float.
func (buffer AudioBuffer) Wav(sampleRate int, pcm16 bool) ([]byte, error) {
	buf := new(bytes.Buffer)
	wavHeader(len(buffer)*2, sampleRate, pcm16, buf)
	if err := buffer.writeSamples(pcm16, buf); err != nil {
		return nil, fmt.Errorf("Wav failed: %w", err)
	}
	return buf.Bytes(), nil
}

// Raw encodes the buffer as interleaved little-endian samples without a
// header.
func (buffer AudioBuffer) Raw(pcm16 bool) ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := buffer.writeSamples(pcm16, buf); err != nil {
		return nil, fmt.Errorf("Raw failed: %w", err)
	}
	return buf.Bytes(), nil
}

func (buffer AudioBuffer) writeSamples(pcm16 bool, buf *bytes.Buffer) error {
	var err error
	if pcm16 {
		int16data := make([][2]int16, len(buffer))
		for i, v := range buffer {
			int16data[i] = [2]int16{toPCM16(v[0]), toPCM16(v[1])}
		}
		err = binary.Write(buf, binary.LittleEndian, int16data)
	} else {
		err = binary.Write(buf, binary.LittleEndian, buffer)
	}
	if err != nil {
		return fmt.Errorf("could not binary write data to binary buffer: %w", err)
	}
	return nil
}

func toPCM16(v float32) int16 {
	return int16(max(math.MinInt16, min(math.MaxInt16, int(v*math.MaxInt16))))
}

// wavHeader writes the header of a stereo .wav file holding sampleCount
// individual samples (frames * 2).
// Refer to: http://www-mmsp.ece.mcgill.ca/Documents/AudioFormats/WAVE/WAVE.html
func wavHeader(sampleCount, sampleRate int, pcm16 bool, buf *bytes.Buffer) {
	numChannels := 2
	var bytesPerSample, chunkSize, fmtChunkSize, waveFormat int
	var factChunk bool
	if pcm16 {
		bytesPerSample = 2
		chunkSize = 36 + bytesPerSample*sampleCount
		fmtChunkSize = 16
		waveFormat = 1 // PCM
	} else {
		bytesPerSample = 4
		chunkSize = 50 + bytesPerSample*sampleCount
		fmtChunkSize = 18
		waveFormat = 3 // IEEE float
		factChunk = true
	}
	le := binary.LittleEndian
	buf.WriteString("RIFF")
	binary.Write(buf, le, uint32(chunkSize))
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	binary.Write(buf, le, uint32(fmtChunkSize))
	binary.Write(buf, le, uint16(waveFormat))
	binary.Write(buf, le, uint16(numChannels))
	binary.Write(buf, le, uint32(sampleRate))
	binary.Write(buf, le, uint32(sampleRate*numChannels*bytesPerSample)) // avgBytesPerSec
	binary.Write(buf, le, uint16(numChannels*bytesPerSample))            // blockAlign
	binary.Write(buf, le, uint16(8*bytesPerSample))                      // bits per sample
	if fmtChunkSize > 16 {
		binary.Write(buf, le, uint16(0)) // size of extension
	}
	if factChunk {
		buf.WriteString("fact")
		binary.Write(buf, le, uint32(4))                       // fact chunk size
		binary.Write(buf, le, uint32(sampleCount/numChannels)) // sample frames
	}
	buf.WriteString("data")
	binary.Write(buf, le, uint32(bytesPerSample*sampleCount))
}
