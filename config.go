package rondo

import (
	"encoding/json"
	"fmt"
	"io"
	"math"

	"gopkg.in/yaml.v3"
)

type (
	// Config describes everything an engine is built from: the output rate,
	// the scales, and the tracks playing on them. A nil TempoScale or Gain
	// and a zero Attack fall back to the defaults below; an explicit zero
	// gain mutes the output.
	Config struct {
		SampleRate int     `yaml:"samplerate" json:"sampleRate"`
		Seed       uint64  `yaml:"seed" json:"seed"`
		TempoScale *float64 `yaml:"tempo,omitempty" json:"tempo,omitempty"`
		// Attack is the fraction of every note spent rising to full volume;
		// the rest of the note is a linear release.
		Attack float64       `yaml:"attack,omitempty" json:"attack,omitempty"`
		Gain   *float64      `yaml:"gain,omitempty" json:"gain,omitempty"` // master gain
		Scales []ScaleConfig `yaml:"scales" json:"scales"`
		Tracks []TrackConfig `yaml:"tracks" json:"tracks"`
	}

	// ScaleConfig names a scale built by BuildScale. Root is a note name
	// such as "A" or "C#"; Octave shifts it by whole octaves.
	ScaleConfig struct {
		Name    string `yaml:"name" json:"name"`
		Pattern string `yaml:"pattern" json:"pattern"`
		Root    string `yaml:"root,omitempty" json:"root,omitempty"`
		Octave  int    `yaml:"octave,omitempty" json:"octave,omitempty"`
	}

	// TrackConfig describes one layer. Layer names a generator preset and
	// Pattern, when set, replaces it. A track with neither only ever plays
	// its Notes. RegenerateEvery is the number of completed loops after
	// which the pattern is replaced by a fresh one; 0 keeps the first
	// pattern forever. Wave plays the notes with a bare oscillator instead
	// of a named Voice.
	TrackConfig struct {
		Name            string       `yaml:"name" json:"name"`
		Layer           string       `yaml:"layer,omitempty" json:"layer,omitempty"`
		Pattern         *LayerParams `yaml:"pattern,omitempty" json:"pattern,omitempty"`
		Scale           string       `yaml:"scale" json:"scale"`
		LoopLength      float64      `yaml:"loop" json:"loop"`
		RegenerateEvery int          `yaml:"regenerate,omitempty" json:"regenerate,omitempty"`
		Voice           string       `yaml:"voice,omitempty" json:"voice,omitempty"`
		Wave            *Waveform    `yaml:"wave,omitempty" json:"wave,omitempty"`
		Gain            float64      `yaml:"gain" json:"gain"`
		Pan             float64      `yaml:"pan,omitempty" json:"pan,omitempty"`     // -1 = left, 1 = right
		Width           float64      `yaml:"width,omitempty" json:"width,omitempty"` // phase offset between channels, in cycles
		Notes           []NoteEvent  `yaml:"notes,omitempty" json:"notes,omitempty"`
	}
)

const (
	DefaultTempoScale = 1.0
	DefaultAttack     = 0.1
	DefaultGain       = 1.0
)

// ReadConfig parses a configuration from JSON or YAML, trying JSON first.
// The result is not validated.
func ReadConfig(r io.Reader) (Config, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return Config{}, fmt.Errorf("could not read config: %w", err)
	}
	var cfg Config
	if errJSON := json.Unmarshal(b, &cfg); errJSON != nil {
		cfg = Config{}
		if errYaml := yaml.Unmarshal(b, &cfg); errYaml != nil {
			return Config{}, fmt.Errorf("the config could not be parsed as .json (%v) or .yml (%v)", errJSON, errYaml)
		}
	}
	return cfg, nil
}

// Marshal encodes the configuration as YAML.
func (c *Config) Marshal() ([]byte, error) {
	b, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("could not marshal config: %w", err)
	}
	return b, nil
}

// Tempo returns TempoScale, or DefaultTempoScale when it is unset.
func (c *Config) Tempo() float64 {
	if c.TempoScale == nil {
		return DefaultTempoScale
	}
	return *c.TempoScale
}

// AttackFraction returns Attack, or DefaultAttack when it is unset.
func (c *Config) AttackFraction() float64 {
	if c.Attack == 0 {
		return DefaultAttack
	}
	return c.Attack
}

// MasterGain returns Gain, or DefaultGain when it is unset.
func (c *Config) MasterGain() float64 {
	if c.Gain == nil {
		return DefaultGain
	}
	return *c.Gain
}

// Validate checks everything that can be checked without knowing which
// layer presets and voices exist. All errors are *ConfigError.
func (c *Config) Validate() error {
	if c.SampleRate <= 0 {
		return &ConfigError{Field: "samplerate", Reason: fmt.Sprintf("must be positive, got %d", c.SampleRate)}
	}
	if t := c.Tempo(); !(t > 0) || math.IsInf(t, 0) {
		return &ConfigError{Field: "tempo", Reason: "must be positive"}
	}
	if a := c.AttackFraction(); !(a > 0 && a < 1) {
		return &ConfigError{Field: "attack", Reason: "must be within (0, 1)"}
	}
	if g := c.MasterGain(); !(g >= 0) || math.IsInf(g, 0) {
		return &ConfigError{Field: "gain", Reason: "must not be negative"}
	}
	if len(c.Scales) == 0 {
		return &ConfigError{Field: "scales", Reason: "at least one scale is needed"}
	}
	names := map[string]bool{}
	for i, s := range c.Scales {
		if _, err := s.Build(); err != nil {
			return wrapConfigError(fmt.Sprintf("scales[%d]", i), err)
		}
		if names[s.Name] {
			return &ConfigError{Field: fmt.Sprintf("scales[%d].name", i), Reason: fmt.Sprintf("duplicate scale name %q", s.Name)}
		}
		names[s.Name] = true
	}
	if len(c.Tracks) == 0 {
		return &ConfigError{Field: "tracks", Reason: "at least one track is needed"}
	}
	for i, t := range c.Tracks {
		if err := t.validate(names); err != nil {
			return wrapConfigError(fmt.Sprintf("tracks[%d]", i), err)
		}
	}
	return nil
}

// Build creates the scale described by the config.
func (s ScaleConfig) Build() (*Scale, error) {
	root := A
	if s.Root != "" {
		var err error
		if root, err = ParseNote(s.Root); err != nil {
			return nil, err
		}
	}
	return BuildScale(s.Pattern, int(root)+12*s.Octave)
}

// Generated reports whether the track gets its notes from the pattern
// generator.
func (t *TrackConfig) Generated() bool {
	return t.Layer != "" || t.Pattern != nil
}

func (t *TrackConfig) validate(scales map[string]bool) error {
	if !scales[t.Scale] {
		return &ConfigError{Field: "scale", Reason: fmt.Sprintf("unknown scale %q", t.Scale)}
	}
	if !(t.LoopLength >= 0) || math.IsInf(t.LoopLength, 0) {
		return &ConfigError{Field: "loop", Reason: "must be a finite, non-negative length"}
	}
	if t.RegenerateEvery < 0 {
		return &ConfigError{Field: "regenerate", Reason: "must not be negative"}
	}
	if t.Generated() && t.LoopLength == 0 {
		return &ConfigError{Field: "loop", Reason: "generated tracks need a positive loop length"}
	}
	if !t.Generated() && t.RegenerateEvery > 0 {
		return &ConfigError{Field: "regenerate", Reason: "only generated tracks can regenerate"}
	}
	if !(t.Gain >= 0) || math.IsInf(t.Gain, 0) {
		return &ConfigError{Field: "gain", Reason: "must not be negative"}
	}
	if !(t.Pan >= -1 && t.Pan <= 1) {
		return &ConfigError{Field: "pan", Reason: "must be within [-1, 1]"}
	}
	if !(t.Width >= 0) || math.IsInf(t.Width, 0) {
		return &ConfigError{Field: "width", Reason: "must not be negative"}
	}
	if t.Wave != nil && t.Voice != "" {
		return &ConfigError{Field: "wave", Reason: fmt.Sprintf("cannot be combined with voice %q", t.Voice)}
	}
	if t.Pattern != nil {
		if err := t.Pattern.Validate(); err != nil {
			return wrapConfigError("pattern", err)
		}
	}
	return nil
}

func wrapConfigError(path string, err error) error {
	if ce, ok := err.(*ConfigError); ok {
		return ce.prefix(path)
	}
	return &ConfigError{Field: path, Reason: err.Error()}
}
