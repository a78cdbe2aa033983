// Package engine renders the tracks of a rondo configuration into stereo
// audio, one sample at a time, and keeps refilling them with new patterns
// as their loops complete.
package engine

import (
	"fmt"
	"math"
	"slices"
	"sync/atomic"

	"github.com/rondo-audio/rondo"
	"github.com/rondo-audio/rondo/generate"
)

type (
	// Engine owns every track and scale of a running composition. The
	// render methods (RenderSample, Render, ReadAudio, RenderFrames) must
	// be called from one goroutine at a time; Status, Track and TrackByName
	// may be called from any goroutine.
	Engine struct {
		sampleRate int
		dt         float64
		phase      float64 // global phase accumulator in seconds, never wrapped
		attack     float64
		gain       float64
		scales     map[string]*rondo.Scale
		tracks     []*track

		onsets chan<- Onset
		frames atomic.Int64
		worker *worker
		closed bool
	}

	// Onset is sent when a note starts sounding.
	Onset struct {
		Track int
		Name  string
		Note  rondo.NoteEvent
	}

	track struct {
		name   string
		layer  string
		t      *rondo.Track
		scale  *rondo.Scale
		params *rondo.LayerParams // nil for tracks that only play their configured notes
		every  int
		voice  Voice
		gainL  float64
		gainR  float64
		width  float64

		loop float64
		rng  generate.Rand // used only by whoever generates: the render path, or the worker once started
		cur  *[]rondo.NoteEvent

		pending    atomic.Pointer[pattern]
		spare      atomic.Pointer[[]rondo.NoteEvent]
		live       atomic.Pointer[pattern]
		generation atomic.Int64
		loops      atomic.Int64
	}

	// pattern is a generated loop handed from the generator to the render
	// path. events becomes the track's live list; snapshot is an immutable
	// copy for readers on other goroutines.
	pattern struct {
		events   *[]rondo.NoteEvent
		snapshot []rondo.NoteEvent
	}
)

// New validates the configuration and builds an engine using the builtin
// layer presets. On error no engine is returned.
func New(cfg rondo.Config) (*Engine, error) {
	return NewWithPresets(cfg, generate.Builtin())
}

// NewWithPresets is New with an explicit preset table. Every track gets its
// first pattern before NewWithPresets returns, and the pattern after that
// is already prepared.
func NewWithPresets(cfg rondo.Config, presets generate.Presets) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	e := &Engine{
		sampleRate: cfg.SampleRate,
		dt:         1 / float64(cfg.SampleRate),
		attack:     cfg.AttackFraction(),
		gain:       cfg.MasterGain(),
		scales:     make(map[string]*rondo.Scale, len(cfg.Scales)),
	}
	for _, sc := range cfg.Scales {
		s, err := sc.Build()
		if err != nil {
			return nil, err // unreachable after Validate
		}
		e.scales[sc.Name] = s
	}
	for i, tc := range cfg.Tracks {
		tr, err := e.newTrack(cfg, i, tc, presets)
		if err != nil {
			return nil, err
		}
		e.tracks = append(e.tracks, tr)
	}
	return e, nil
}

func (e *Engine) newTrack(cfg rondo.Config, index int, tc rondo.TrackConfig, presets generate.Presets) (*track, error) {
	field := func(f string) string { return fmt.Sprintf("tracks[%d].%s", index, f) }
	voiceName := tc.Voice
	if voiceName == "" {
		voiceName = DefaultVoice
	}
	voice, ok := Voices[voiceName]
	if !ok {
		return nil, &rondo.ConfigError{Field: field("voice"), Reason: fmt.Sprintf("unknown voice %q (known: %v)", voiceName, VoiceNames())}
	}
	if tc.Wave != nil {
		voice = WaveVoice(*tc.Wave)
	}
	tr := &track{
		name:  tc.Name,
		layer: tc.Layer,
		t:     rondo.NewTrack(tc.LoopLength),
		scale: e.scales[tc.Scale],
		every: tc.RegenerateEvery,
		voice: voice,
		gainL: tc.Gain * min(1, 1-tc.Pan),
		gainR: tc.Gain * min(1, 1+tc.Pan),
		width: tc.Width,
		loop:  tc.LoopLength,
		rng:   generate.NewRand(cfg.Seed, uint64(index)),
		cur:   new([]rondo.NoteEvent),
	}
	if tr.name == "" {
		tr.name = fmt.Sprintf("track%d", index)
	}
	tr.t.TempoScale = cfg.Tempo()
	switch {
	case tc.Pattern != nil:
		p := *tc.Pattern
		tr.params = &p
	case tc.Layer != "":
		p, err := presets.Lookup(tc.Layer)
		if err != nil {
			return nil, &rondo.ConfigError{Field: field("layer"), Reason: err.(*rondo.ConfigError).Reason}
		}
		tr.params = p
	}
	for _, n := range tc.Notes {
		tr.t.AddEvent(n)
	}
	*tr.cur = tr.t.Events()
	tr.live.Store(&pattern{snapshot: slices.Clone(tr.t.Events())})
	if tr.params != nil {
		// configured notes, if any, play during the first loop
		if len(tc.Notes) == 0 {
			tr.prefetch()
			tr.swap()
		}
		tr.prefetch()
	}
	return tr, nil
}

// SampleRate returns the output rate the engine renders at.
func (e *Engine) SampleRate() int {
	return e.sampleRate
}

// Phase returns the global phase accumulator, in seconds since the engine
// was created.
func (e *Engine) Phase() float64 {
	return e.phase
}

// SetOnsets makes the engine report every note start on c. Sends never
// block: onsets are dropped when c is full. Pass nil to stop reporting.
// Must not be called concurrently with rendering.
func (e *Engine) SetOnsets(c chan<- Onset) {
	e.onsets = c
}

// RenderSample renders one stereo frame and advances every track by one
// sample. It does not block, and once Start has been called it does not
// allocate. The output is always finite.
func (e *Engine) RenderSample() (left, right float32) {
	var l, r float64
	for i, tr := range e.tracks {
		now := tr.t.LocalTime()
		step := e.dt * tr.t.TempoScale
		var sl, sr float64
		// same window as ActiveNotes, without its allocation
		for _, n := range tr.t.Events() {
			if !n.ActiveAt(now) {
				continue
			}
			elapsed := now - n.Start
			if elapsed < step && e.onsets != nil {
				trySend(e.onsets, Onset{Track: i, Name: tr.name, Note: n})
			}
			pos := elapsed / n.Duration
			env := envelope(pos, e.attack) * n.Volume
			in := VoiceInput{Phase: e.phase * n.Frequency, Elapsed: elapsed, Pos: pos, Frequency: n.Frequency}
			if tr.width == 0 {
				s := tr.voice(in, 0) * env
				sl += s
				sr += s
			} else {
				sl += tr.voice(in, -tr.width/2) * env
				sr += tr.voice(in, tr.width/2) * env
			}
		}
		l += sl * tr.gainL
		r += sr * tr.gainR
	}
	e.phase += e.dt
	for _, tr := range e.tracks {
		if tr.t.Tick(e.dt) > 0 {
			tr.loops.Store(int64(tr.t.LoopCount()))
			if tr.params != nil && tr.every > 0 && tr.t.LoopCount() >= tr.every {
				e.regenerate(tr)
			}
		}
	}
	e.frames.Add(1)
	return finite32(l * e.gain), finite32(r * e.gain)
}

// regenerate swaps in the prepared pattern and asks for the next one. When
// the next pattern is not ready yet, the current loop plays again and the
// swap is retried at the next wrap.
func (e *Engine) regenerate(tr *track) {
	if !tr.swap() {
		return
	}
	if e.worker != nil {
		e.worker.request(tr)
		return
	}
	tr.prefetch()
}

// Render fills buf with consecutive frames.
func (e *Engine) Render(buf rondo.AudioBuffer) {
	for i := range buf {
		buf[i][0], buf[i][1] = e.RenderSample()
	}
}

// ReadAudio implements rondo.AudioSource.
func (e *Engine) ReadAudio(buf rondo.AudioBuffer) error {
	e.Render(buf)
	return nil
}

// RenderFrames renders len(out)/channels interleaved frames. Channels past
// the second are filled with silence. Fewer than two channels is refused
// with rondo.ErrTooFewChannels and nothing is rendered.
func (e *Engine) RenderFrames(out []float32, channels int) error {
	if channels < 2 {
		return fmt.Errorf("RenderFrames(%d channels): %w", channels, rondo.ErrTooFewChannels)
	}
	for i := 0; i+channels <= len(out); i += channels {
		out[i], out[i+1] = e.RenderSample()
		clear(out[i+2 : i+channels])
	}
	return nil
}

// Start moves pattern generation off the render path onto a background
// goroutine. Call it once, before handing the engine to an audio
// callback. Without Start, patterns are generated inline when a loop
// completes, which keeps offline renders fully deterministic.
func (e *Engine) Start() {
	if e.worker != nil || e.closed {
		return
	}
	e.worker = newWorker(len(e.tracks))
	go e.worker.run()
}

// Close stops the background generator, if any, and releases all tracks
// and scales. Rendering after Close produces silence. Close is safe to
// call more than once.
func (e *Engine) Close() error {
	if e.closed {
		return nil
	}
	e.closed = true
	if e.worker != nil {
		e.worker.stop()
		e.worker = nil
	}
	e.tracks = nil
	e.scales = nil
	return nil
}

// prefetch generates the track's next pattern into spare storage and
// publishes it as pending.
func (tr *track) prefetch() {
	buf := tr.spare.Swap(nil)
	if buf == nil {
		buf = new([]rondo.NoteEvent)
	}
	*buf = generate.Append((*buf)[:0], tr.params, tr.scale, tr.rng, tr.loop)
	tr.pending.Store(&pattern{events: buf, snapshot: slices.Clone(*buf)})
}

// swap makes the pending pattern live and recycles the old event storage.
// It reports false when no pattern is pending.
func (tr *track) swap() bool {
	p := tr.pending.Swap(nil)
	if p == nil {
		return false
	}
	old := tr.t.Replace(*p.events)
	*tr.cur = old
	tr.spare.Store(tr.cur)
	tr.cur = p.events
	tr.t.ResetLoopCount()
	tr.live.Store(p)
	tr.loops.Store(0)
	tr.generation.Add(1)
	return true
}

func finite32(v float64) float32 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return float32(v)
}
