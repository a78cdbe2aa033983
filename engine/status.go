package engine

import "github.com/rondo-audio/rondo"

type (
	// Status is a point-in-time view of an engine, safe to take while the
	// engine is rendering on another goroutine.
	Status struct {
		SampleRate int           `json:"sampleRate"`
		Frames     int64         `json:"frames"`
		Seconds    float64       `json:"seconds"`
		Tracks     []TrackStatus `json:"tracks"`
	}

	// TrackStatus describes one track. Events is the pattern currently
	// playing and must be treated as read-only; it is shared with every
	// other snapshot of the same pattern.
	TrackStatus struct {
		Index      int               `json:"index"`
		Name       string            `json:"name"`
		Layer      string            `json:"layer,omitempty"`
		LoopLength float64           `json:"loop"`
		LoopCount  int               `json:"loopCount"`
		Regenerate int               `json:"regenerate,omitempty"`
		Generation int64             `json:"generation"`
		Events     []rondo.NoteEvent `json:"events"`
	}
)

// Status returns the current status of every track. The track list is fixed
// at construction, so only per-track fields change between calls.
func (e *Engine) Status() Status {
	frames := e.frames.Load()
	s := Status{
		SampleRate: e.sampleRate,
		Frames:     frames,
		Seconds:    float64(frames) / float64(e.sampleRate),
		Tracks:     make([]TrackStatus, 0, len(e.tracks)),
	}
	for i := range e.tracks {
		if ts, ok := e.Track(i); ok {
			s.Tracks = append(s.Tracks, ts)
		}
	}
	return s
}

// Track returns the status of track i.
func (e *Engine) Track(i int) (TrackStatus, bool) {
	if i < 0 || i >= len(e.tracks) {
		return TrackStatus{}, false
	}
	tr := e.tracks[i]
	ts := TrackStatus{
		Index:      i,
		Name:       tr.name,
		Layer:      tr.layer,
		LoopLength: tr.loop,
		LoopCount:  int(tr.loops.Load()),
		Regenerate: tr.every,
		Generation: tr.generation.Load(),
	}
	if p := tr.live.Load(); p != nil {
		ts.Events = p.snapshot
	}
	return ts, true
}

// TrackByName returns the status of the first track with the given name.
func (e *Engine) TrackByName(name string) (TrackStatus, bool) {
	for i, tr := range e.tracks {
		if tr.name == name {
			return e.Track(i)
		}
	}
	return TrackStatus{}, false
}
