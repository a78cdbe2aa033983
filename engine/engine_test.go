package engine_test

import (
	"errors"
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/rondo-audio/rondo"
	"github.com/rondo-audio/rondo/engine"
)

func smallConfig() rondo.Config {
	return rondo.Config{
		SampleRate: 1000,
		Seed:       11,
		Scales:     []rondo.ScaleConfig{{Name: "penta", Pattern: "pentatonic"}},
		Tracks: []rondo.TrackConfig{
			{Name: "lead", Layer: "mid", Scale: "penta", LoopLength: 0.5, RegenerateEvery: 2, Gain: 0.5},
		},
	}
}

func TestDefaultConfigRenders(t *testing.T) {
	cfg := rondo.DefaultConfig()
	cfg.SampleRate = 8000
	e, err := engine.New(cfg)
	if err != nil {
		t.Fatalf("engine.New failed: %v", err)
	}
	defer e.Close()
	buf := make(rondo.AudioBuffer, 8000*8)
	e.Render(buf)
	energy := 0.0
	for i, v := range buf {
		for _, s := range v {
			if math.IsNaN(float64(s)) || math.IsInf(float64(s), 0) {
				t.Fatalf("sample %d is not finite: %v", i, s)
			}
			energy += float64(s) * float64(s)
		}
	}
	if energy == 0 {
		t.Errorf("eight seconds of the default config were silent")
	}
}

func TestRenderIsDeterministic(t *testing.T) {
	cfg := rondo.DefaultConfig()
	cfg.SampleRate = 4000
	render := func() rondo.AudioBuffer {
		e, err := engine.New(cfg)
		if err != nil {
			t.Fatalf("engine.New failed: %v", err)
		}
		defer e.Close()
		buf := make(rondo.AudioBuffer, 4000*16)
		e.Render(buf)
		return buf
	}
	if a, b := render(), render(); !reflect.DeepEqual(a, b) {
		t.Errorf("two engines with the same config and seed rendered different audio")
	}
}

func TestDifferentSeedsDiffer(t *testing.T) {
	a, b := smallConfig(), smallConfig()
	b.Seed++
	ea, err := engine.New(a)
	if err != nil {
		t.Fatalf("engine.New failed: %v", err)
	}
	eb, err := engine.New(b)
	if err != nil {
		t.Fatalf("engine.New failed: %v", err)
	}
	sa, _ := ea.TrackByName("lead")
	sb, _ := eb.TrackByName("lead")
	if reflect.DeepEqual(sa.Events, sb.Events) {
		t.Errorf("different seeds generated the same pattern")
	}
}

func TestRegeneration(t *testing.T) {
	e, err := engine.New(smallConfig())
	if err != nil {
		t.Fatalf("engine.New failed: %v", err)
	}
	defer e.Close()
	first, _ := e.Track(0)
	if first.Generation != 1 || len(first.Events) == 0 {
		t.Fatalf("new engine: generation %d with %d events", first.Generation, len(first.Events))
	}
	e.Render(make(rondo.AudioBuffer, 500))
	s, _ := e.Track(0)
	if s.LoopCount != 1 || s.Generation != 1 {
		t.Errorf("after one loop: loop count %d generation %d, want 1 and 1", s.LoopCount, s.Generation)
	}
	e.Render(make(rondo.AudioBuffer, 500))
	s, _ = e.Track(0)
	if s.LoopCount != 0 || s.Generation != 2 {
		t.Errorf("after two loops: loop count %d generation %d, want 0 and 2", s.LoopCount, s.Generation)
	}
	if reflect.DeepEqual(s.Events, first.Events) {
		t.Errorf("the regenerated pattern is identical to the first one")
	}
}

func TestBackgroundRegeneration(t *testing.T) {
	e, err := engine.New(smallConfig())
	if err != nil {
		t.Fatalf("engine.New failed: %v", err)
	}
	e.Start()
	buf := make(rondo.AudioBuffer, 100)
	deadline := time.Now().Add(5 * time.Second)
	for {
		if err := e.ReadAudio(buf); err != nil {
			t.Fatalf("ReadAudio failed: %v", err)
		}
		if s, _ := e.Track(0); s.Generation >= 4 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("patterns were not regenerated in the background")
		}
	}
	if err := e.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
}

func TestFixedNotesTrack(t *testing.T) {
	cfg := smallConfig()
	cfg.Tracks = []rondo.TrackConfig{{
		Name: "fixed", Scale: "penta", LoopLength: 1, Gain: 1,
		Notes: []rondo.NoteEvent{{Frequency: 250, Volume: 1, Start: 0.25, Duration: 0.5}},
	}}
	e, err := engine.New(cfg)
	if err != nil {
		t.Fatalf("engine.New failed: %v", err)
	}
	buf := make(rondo.AudioBuffer, 3000)
	e.Render(buf)
	for loop := 0; loop < 3; loop++ {
		for i := 0; i < 250; i++ {
			if v := buf[loop*1000+i]; v != [2]float32{} {
				t.Fatalf("loop %d: sound before the note at frame %d: %v", loop, i, v)
			}
		}
		if v := buf[loop*1000+500]; v == [2]float32{} {
			t.Errorf("loop %d: silence in the middle of the note", loop)
		}
	}
	s, _ := e.TrackByName("fixed")
	if s.Generation != 0 || len(s.Events) != 1 {
		t.Errorf("fixed track: generation %d with %d events", s.Generation, len(s.Events))
	}
}

func TestOnsets(t *testing.T) {
	e, err := engine.New(smallConfig())
	if err != nil {
		t.Fatalf("engine.New failed: %v", err)
	}
	s, _ := e.Track(0)
	onsets := make(chan engine.Onset, 1024)
	e.SetOnsets(onsets)
	e.Render(make(rondo.AudioBuffer, 499))
	close(onsets)
	got := 0
	for o := range onsets {
		if o.Track != 0 || o.Name != "lead" {
			t.Errorf("onset from unexpected track %d %q", o.Track, o.Name)
		}
		found := false
		for _, n := range s.Events {
			found = found || n == o.Note
		}
		if !found {
			t.Errorf("onset %+v is not in the live pattern", o.Note)
		}
		got++
	}
	if got == 0 {
		t.Errorf("no onsets were reported")
	}
}

func TestRenderFrames(t *testing.T) {
	e, err := engine.New(smallConfig())
	if err != nil {
		t.Fatalf("engine.New failed: %v", err)
	}
	out := make([]float32, 8)
	if err := e.RenderFrames(out, 1); !errors.Is(err, rondo.ErrTooFewChannels) {
		t.Errorf("RenderFrames with 1 channel: got %v, want ErrTooFewChannels", err)
	}
	if e.Status().Frames != 0 {
		t.Errorf("a refused RenderFrames still rendered")
	}
	for i := range out {
		out[i] = 1
	}
	if err := e.RenderFrames(out, 4); err != nil {
		t.Fatalf("RenderFrames with 4 channels failed: %v", err)
	}
	if out[2] != 0 || out[3] != 0 || out[6] != 0 || out[7] != 0 {
		t.Errorf("extra channels were not silenced: %v", out)
	}
	if e.Status().Frames != 2 {
		t.Errorf("rendered %d frames, want 2", e.Status().Frames)
	}
}

func TestConfigErrors(t *testing.T) {
	tests := []struct {
		name   string
		modify func(c *rondo.Config)
		field  string
	}{
		{"unknown voice", func(c *rondo.Config) { c.Tracks[0].Voice = "theremin" }, "tracks[0].voice"},
		{"unknown layer", func(c *rondo.Config) { c.Tracks[0].Layer = "kazoo" }, "tracks[0].layer"},
		{"zero sample rate", func(c *rondo.Config) { c.SampleRate = 0 }, "samplerate"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := smallConfig()
			tt.modify(&cfg)
			e, err := engine.New(cfg)
			if e != nil {
				t.Errorf("engine.New returned an engine with an error")
			}
			var ce *rondo.ConfigError
			if !errors.As(err, &ce) {
				t.Fatalf("expected a *ConfigError, got %v", err)
			}
			if ce.Field != tt.field {
				t.Errorf("error field = %q, want %q", ce.Field, tt.field)
			}
		})
	}
}

func TestStatus(t *testing.T) {
	cfg := rondo.DefaultConfig()
	e, err := engine.New(cfg)
	if err != nil {
		t.Fatalf("engine.New failed: %v", err)
	}
	e.Render(make(rondo.AudioBuffer, 441))
	s := e.Status()
	if s.SampleRate != 44100 || s.Frames != 441 || math.Abs(s.Seconds-0.01) > 1e-12 {
		t.Errorf("status: %d Hz, %d frames, %v s", s.SampleRate, s.Frames, s.Seconds)
	}
	if len(s.Tracks) != len(cfg.Tracks) {
		t.Fatalf("status has %d tracks, want %d", len(s.Tracks), len(cfg.Tracks))
	}
	for i, ts := range s.Tracks {
		if ts.Name != cfg.Tracks[i].Name || ts.LoopLength != cfg.Tracks[i].LoopLength {
			t.Errorf("track %d status %q loop %v does not match its config", i, ts.Name, ts.LoopLength)
		}
	}
	if _, ok := e.TrackByName("nope"); ok {
		t.Errorf("TrackByName found a track that does not exist")
	}
	if _, ok := e.Track(-1); ok {
		t.Errorf("Track(-1) should not exist")
	}
}

func TestClose(t *testing.T) {
	e, err := engine.New(smallConfig())
	if err != nil {
		t.Fatalf("engine.New failed: %v", err)
	}
	e.Start()
	if err := e.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := e.Close(); err != nil {
		t.Fatalf("second Close failed: %v", err)
	}
	buf := make(rondo.AudioBuffer, 100)
	e.Render(buf)
	for _, v := range buf {
		if v != [2]float32{} {
			t.Fatalf("a closed engine rendered sound")
		}
	}
}
