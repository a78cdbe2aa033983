package oto

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/rondo-audio/rondo"
)

type (
	// OtoContext plays rondo.AudioSources on the default output device.
	// The device runs on its own thread and pulls audio through an
	// io.Reader, so the source is rendered exactly as fast as it is heard.
	OtoContext struct {
		ctx   *oto.Context
		pcm16 bool
	}

	// OtoPlayer is a playing source. It stops when closed or when the
	// source returns an error.
	OtoPlayer struct {
		player *oto.Player
		reader *sourceReader
	}

	sourceReader struct {
		source rondo.AudioSource
		pcm16  bool
		buf    rondo.AudioBuffer
		out    []byte

		mu   sync.Mutex
		err  error
		done chan struct{}
	}
)

const (
	bytesPerFrame16    = 4
	bytesPerFrameFloat = 8
)

var _ rondo.AudioContext = (*OtoContext)(nil)

// otoBufferSize is the latency of the device buffer.
const otoBufferSize = 50 * time.Millisecond

// NewContext opens the default audio device at the given sample rate. With
// pcm16 the device is fed signed 16-bit samples instead of float32.
func NewContext(sampleRate int, pcm16 bool) (*OtoContext, error) {
	format := oto.FormatFloat32LE
	if pcm16 {
		format = oto.FormatSignedInt16LE
	}
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 2,
		Format:       format,
		BufferSize:   otoBufferSize,
	})
	if err != nil {
		return nil, fmt.Errorf("cannot create oto context: %w", err)
	}
	<-ready
	return &OtoContext{ctx: ctx, pcm16: pcm16}, nil
}

// Play starts pulling audio from source.
func (c *OtoContext) Play(source rondo.AudioSource) rondo.CloserWaiter {
	r := &sourceReader{source: source, pcm16: c.pcm16, done: make(chan struct{})}
	p := &OtoPlayer{player: c.ctx.NewPlayer(r), reader: r}
	p.player.Play()
	return p
}

// Close suspends the device. oto contexts cannot be reopened within the same
// process, so Close is final.
func (c *OtoContext) Close() error {
	if err := c.ctx.Suspend(); err != nil {
		return fmt.Errorf("cannot suspend oto context: %w", err)
	}
	return nil
}

// Close stops playback.
func (p *OtoPlayer) Close() error {
	p.reader.finish(io.EOF)
	if err := p.player.Close(); err != nil {
		return fmt.Errorf("cannot close oto player: %w", err)
	}
	return nil
}

// Wait blocks until the player has been closed or its source has failed.
func (p *OtoPlayer) Wait() {
	<-p.reader.done
}

// Err returns the error that stopped the source, if any.
func (p *OtoPlayer) Err() error {
	p.reader.mu.Lock()
	defer p.reader.mu.Unlock()
	if errors.Is(p.reader.err, io.EOF) {
		return nil
	}
	return p.reader.err
}

// Read is called by the device thread. It holds the lock while rendering,
// so once finish returns the source is no longer in use.
func (r *sourceReader) Read(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return 0, io.EOF
	}
	frameSize := bytesPerFrameFloat
	if r.pcm16 {
		frameSize = bytesPerFrame16
	}
	frames := len(p) / frameSize
	if cap(r.buf) < frames {
		r.buf = make(rondo.AudioBuffer, frames)
	}
	r.buf = r.buf[:frames]
	if err := r.source.ReadAudio(r.buf); err != nil {
		r.err = err
		close(r.done)
		return 0, io.EOF
	}
	if r.pcm16 {
		r.out = Append16BitLE(r.out[:0], r.buf)
	} else {
		r.out = AppendFloat32LE(r.out[:0], r.buf)
	}
	return copy(p, r.out), nil
}

func (r *sourceReader) finish(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return
	}
	r.err = err
	close(r.done)
}
