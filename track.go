package rondo

import (
	"iter"
	"math"
)

type (
	// NoteEvent is a single scheduled note. Start and Duration are in
	// seconds of track-local time. Events are values; a track never edits
	// one after adding it.
	NoteEvent struct {
		Frequency float64 `yaml:"frequency" json:"frequency"`
		Volume    float64 `yaml:"volume" json:"volume"`
		Start     float64 `yaml:"start" json:"start"`
		Duration  float64 `yaml:"duration" json:"duration"`
	}

	// Track is a looping timeline of note events. Time advances only through
	// Tick. When LoopLength is positive, local time wraps back to zero every
	// LoopLength seconds and LoopCount counts the wraps; otherwise the track
	// never wraps.
	//
	// Internally time is kept in integer flicks plus a fractional carry, so
	// repeated ticks of a fixed delta land exactly on the loop boundary
	// instead of drifting around it.
	//
	// A Track has a single writer. It is not safe for concurrent use.
	Track struct {
		// TempoScale multiplies every Tick delta. NewTrack sets it to 1.
		TempoScale float64

		events    []NoteEvent
		pos       int64   // local time in whole flicks
		frac      float64 // sub-flick remainder of pos, in [0, 1)
		loop      int64   // loop length in flicks, 0 = no looping
		loopCount int
	}
)

// FlicksPerSecond is the time base of a Track. One flick divides evenly
// into a sample at all the common audio rates (44.1 kHz, 48 kHz, 96 kHz...).
const FlicksPerSecond = 705600000

// snapTolerance is how close, in flicks, a tick has to be to a whole number
// of flicks to be taken as exactly that.
const snapTolerance = 1e-6

// ActiveAt reports whether the note sounds at local time t. The window is
// half-open: [Start, Start+Duration).
func (n NoteEvent) ActiveAt(t float64) bool {
	return n.Start <= t && t < n.Start+n.Duration
}

// End returns Start + Duration.
func (n NoteEvent) End() float64 {
	return n.Start + n.Duration
}

func (n NoteEvent) valid() bool {
	return n.Frequency > 0 && n.Duration > 0 && n.Volume >= 0 &&
		!math.IsInf(n.Frequency, 0) && !math.IsInf(n.Duration, 0) && !math.IsInf(n.Volume, 0) &&
		!math.IsNaN(n.Start) && !math.IsInf(n.Start, 0)
}

// NewTrack creates an empty track. A loopLength of zero or less makes the
// track non-looping.
func NewTrack(loopLength float64) *Track {
	t := &Track{TempoScale: 1}
	t.SetLoopLength(loopLength)
	return t
}

// SetLoopLength changes the loop length. Local time is wrapped into the new
// loop immediately, without counting a loop.
func (t *Track) SetLoopLength(loopLength float64) {
	t.loop = 0
	if loopLength > 0 && !math.IsInf(loopLength, 0) {
		t.loop = toFlicks(loopLength)
	}
	if t.loop > 0 {
		t.pos %= t.loop
	}
}

// LoopLength returns the loop length in seconds; 0 for a non-looping track.
func (t *Track) LoopLength() float64 {
	return float64(t.loop) / FlicksPerSecond
}

// LocalTime returns the current position in seconds.
func (t *Track) LocalTime() float64 {
	return (float64(t.pos) + t.frac) / FlicksPerSecond
}

// LoopCount returns how many times the track has wrapped since creation or
// the last ResetLoopCount.
func (t *Track) LoopCount() int {
	return t.loopCount
}

// ResetLoopCount sets the loop counter back to zero.
func (t *Track) ResetLoopCount() {
	t.loopCount = 0
}

// Add schedules a note, unless its whole window already lies before the
// current local time (start+duration < LocalTime()), in which case the note
// is silently dropped. Malformed notes (non-positive frequency or duration,
// negative volume, non-finite values) are dropped too.
func (t *Track) Add(frequency, start, duration, volume float64) {
	t.AddEvent(NoteEvent{Frequency: frequency, Volume: volume, Start: start, Duration: duration})
}

// AddEvent is Add for a prepared NoteEvent.
func (t *Track) AddEvent(n NoteEvent) {
	if !n.valid() || n.End() < t.LocalTime() {
		return
	}
	t.events = append(t.events, n)
}

// Tick advances local time by delta*TempoScale seconds. A looping track
// wraps once for every loop length traversed, so a delta spanning several
// loops increments the loop count several times. Tick returns the number
// of wraps. Negative or non-finite advances are ignored.
func (t *Track) Tick(delta float64) int {
	d := delta * t.TempoScale * FlicksPerSecond
	if !(d > 0) || math.IsInf(d, 0) {
		return 0
	}
	// 1/44100 s is 16000 flicks exactly, but not in floating point.
	if r := math.Round(d); math.Abs(d-r) < snapTolerance {
		d = r
	}
	d += t.frac
	whole := math.Floor(d)
	t.frac = d - whole
	if t.loop <= 0 {
		// saturate rather than overflow, so local time never runs backwards
		if whole >= float64(maxFlicks-t.pos) {
			t.pos, t.frac = max(t.pos, maxFlicks), 0
		} else {
			t.pos += int64(whole)
		}
		return 0
	}
	loop := float64(t.loop)
	full := math.Floor(whole / loop)
	rem := min(max(whole-full*loop, 0), loop-1)
	t.pos += int64(rem)
	if t.pos >= t.loop {
		t.pos -= t.loop
		full++
	}
	wraps := int(min(full, maxWraps))
	t.loopCount = int(min(float64(t.loopCount)+float64(wraps), maxWraps))
	return wraps
}

const (
	// maxWraps caps the wrap and loop counts so they fit an int on every
	// platform.
	maxWraps = math.MaxInt32
	// maxFlicks is where the local time of a non-looping track stops.
	maxFlicks = 1 << 62
)

// Seek moves local time to pos seconds (wrapped into the loop) without
// touching the loop counter.
func (t *Track) Seek(pos float64) {
	if math.IsNaN(pos) || math.IsInf(pos, 0) {
		return
	}
	f := pos * FlicksPerSecond
	whole := math.Floor(f)
	t.pos, t.frac = int64(whole), f-whole
	if t.loop > 0 {
		t.pos %= t.loop
		if t.pos < 0 {
			t.pos += t.loop
		}
	}
}

// ActiveNotes yields the notes sounding at the current local time, in
// insertion order. The sequence holds no state of its own: ranging over it
// again re-evaluates against the track as it is then.
func (t *Track) ActiveNotes() iter.Seq[NoteEvent] {
	return func(yield func(NoteEvent) bool) {
		now := t.LocalTime()
		for _, n := range t.events {
			if n.ActiveAt(now) && !yield(n) {
				return
			}
		}
	}
}

// Events returns the live event list. The slice is owned by the track and
// must not be modified.
func (t *Track) Events() []NoteEvent {
	return t.events
}

// Len returns the number of scheduled events.
func (t *Track) Len() int {
	return len(t.events)
}

// Clear removes all events, keeping the allocated capacity.
func (t *Track) Clear() {
	t.events = t.events[:0]
}

// Replace is Clear followed by adding every event of events, but reuses the
// backing array of events instead of copying into the track's own. The
// track takes ownership of events; the previous list is returned so its
// storage can be recycled. Replace never allocates.
func (t *Track) Replace(events []NoteEvent) (old []NoteEvent) {
	old = t.events
	t.events = events[:0]
	for _, n := range events {
		t.AddEvent(n)
	}
	return old[:0]
}

func toFlicks(seconds float64) int64 {
	return int64(math.Round(seconds * FlicksPerSecond))
}
