// Package gomidi mirrors the notes an engine plays to a MIDI output.
package gomidi

import (
	"math"
	"slices"
	"time"

	"github.com/rondo-audio/rondo/engine"
	"gitlab.com/gomidi/midi/v2"
)

type (
	// Sender is a MIDI output. drivers.Out implements it.
	Sender interface {
		Send(data []byte) error
	}

	// Forwarder turns engine onsets into note on / note off pairs. Track i
	// plays on MIDI channel i%16.
	Forwarder struct {
		out     Sender
		tempo   float64
		pending []noteOff // sorted by when
	}

	noteOff struct {
		when    time.Time
		channel uint8
		key     uint8
	}
)

// NewForwarder creates a forwarder. tempo is the engine's tempo scale, used
// to turn note durations into wall clock time.
func NewForwarder(out Sender, tempo float64) *Forwarder {
	if !(tempo > 0) {
		tempo = 1
	}
	return &Forwarder{out: out, tempo: tempo}
}

// Run forwards onsets until the channel is closed or done fires, then
// releases every sounding note. It returns the first send error.
func (f *Forwarder) Run(onsets <-chan engine.Onset, done <-chan struct{}) error {
	timer := time.NewTimer(time.Hour)
	defer timer.Stop()
	for {
		var err error
		select {
		case o, ok := <-onsets:
			if !ok {
				return f.releaseAll()
			}
			err = f.noteOn(o, time.Now())
		case now := <-timer.C:
			err = f.release(now)
		case <-done:
			return f.releaseAll()
		}
		if err != nil {
			f.releaseAll()
			return err
		}
		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		next := time.Hour
		if len(f.pending) > 0 {
			next = max(time.Until(f.pending[0].when), 0)
		}
		timer.Reset(next)
	}
}

func (f *Forwarder) noteOn(o engine.Onset, now time.Time) error {
	key, ok := Key(o.Note.Frequency)
	if !ok {
		return nil
	}
	ch := uint8(o.Track % 16)
	if err := f.out.Send(midi.NoteOn(ch, key, Velocity(o.Note.Volume))); err != nil {
		return err
	}
	off := noteOff{
		when:    now.Add(time.Duration(o.Note.Duration / f.tempo * float64(time.Second))),
		channel: ch,
		key:     key,
	}
	i, _ := slices.BinarySearchFunc(f.pending, off, func(a, b noteOff) int { return a.when.Compare(b.when) })
	f.pending = slices.Insert(f.pending, i, off)
	return nil
}

func (f *Forwarder) release(now time.Time) error {
	for len(f.pending) > 0 && !f.pending[0].when.After(now) {
		n := f.pending[0]
		f.pending = f.pending[1:]
		if err := f.out.Send(midi.NoteOff(n.channel, n.key)); err != nil {
			return err
		}
	}
	return nil
}

func (f *Forwarder) releaseAll() error {
	var first error
	for _, n := range f.pending {
		if err := f.out.Send(midi.NoteOff(n.channel, n.key)); err != nil && first == nil {
			first = err
		}
	}
	f.pending = f.pending[:0]
	return first
}

// Key returns the MIDI key closest to freq. Frequencies outside the MIDI
// range are reported with ok == false.
func Key(freq float64) (key uint8, ok bool) {
	k := math.Round(69 + 12*math.Log2(freq/440))
	if !(k >= 0 && k <= 127) {
		return 0, false
	}
	return uint8(k), true
}

// Velocity maps a note volume in [0, 1] to a MIDI velocity in [1, 127].
func Velocity(volume float64) uint8 {
	v := math.Round(volume * 127)
	return uint8(max(1, min(127, v)))
}
