package rondo

import "fmt"

type (
	// LayerParams controls how the pattern generator fills one loop of a
	// track. Time steps and durations are drawn as powers of two:
	//
	//	step     = 2^(rand(StepChoices) + StepExponent)
	//	duration = Duration * 2^(rand(DurationChoices) + DurationExponent)
	//
	// where rand(n) is a uniform integer in [0, n).
	LayerParams struct {
		StepChoices  int     `yaml:"stepchoices" json:"stepChoices"`
		StepExponent float64 `yaml:"stepexponent" json:"stepExponent"`

		// Degrees is the number of scale degrees a note is drawn from,
		// starting at degree 0. Zero means Octaves full octaves of the
		// scale.
		Degrees   int     `yaml:"degrees,omitempty" json:"degrees,omitempty"`
		Octaves   int     `yaml:"octaves,omitempty" json:"octaves,omitempty"`
		Transpose float64 `yaml:"transpose,omitempty" json:"transpose,omitempty"` // in octaves

		Duration         float64 `yaml:"duration" json:"duration"`
		DurationChoices  int     `yaml:"durationchoices,omitempty" json:"durationChoices,omitempty"`
		DurationExponent float64 `yaml:"durationexponent,omitempty" json:"durationExponent,omitempty"`

		Volume       float64 `yaml:"volume" json:"volume"`
		VolumeJitter float64 `yaml:"volumejitter,omitempty" json:"volumeJitter,omitempty"` // fraction of Volume removed at most

		// Rest is the probability that a cursor position stays silent.
		Rest float64 `yaml:"rest,omitempty" json:"rest,omitempty"`

		Doublings []Doubling   `yaml:"doublings,omitempty" json:"doublings,omitempty"`
		Chord     *ChordParams `yaml:"chord,omitempty" json:"chord,omitempty"`
	}

	// Doubling is an extra copy of every generated note, shifted by whole
	// octaves, with its duration and volume scaled.
	Doubling struct {
		Octave   int     `yaml:"octave" json:"octave"`
		Duration float64 `yaml:"duration" json:"duration"`
		Volume   float64 `yaml:"volume" json:"volume"`
	}

	// ChordParams turns every generated note into the root of a chord of
	// MinSize..MaxSize notes. Each chord tone sits MinStep..MaxStep scale
	// degrees above the previous one and starts Strum seconds after it.
	ChordParams struct {
		MinSize int     `yaml:"minsize" json:"minSize"`
		MaxSize int     `yaml:"maxsize" json:"maxSize"`
		MinStep int     `yaml:"minstep" json:"minStep"`
		MaxStep int     `yaml:"maxstep" json:"maxStep"`
		Strum   float64 `yaml:"strum" json:"strum"`
	}
)

// Validate checks the parameters for values the generator cannot work with.
func (p *LayerParams) Validate() error {
	switch {
	case p.StepChoices < 1:
		return &ConfigError{Field: "stepchoices", Reason: "must be at least 1"}
	case p.Degrees < 0 || p.Octaves < 0 || (p.Degrees == 0 && p.Octaves == 0):
		return &ConfigError{Field: "degrees", Reason: "need a positive degree count or octave count"}
	case !(p.Duration > 0):
		return &ConfigError{Field: "duration", Reason: "must be positive"}
	case p.DurationChoices < 0:
		return &ConfigError{Field: "durationchoices", Reason: "must not be negative"}
	case p.Volume < 0:
		return &ConfigError{Field: "volume", Reason: "must not be negative"}
	case p.VolumeJitter < 0 || p.VolumeJitter > 1:
		return &ConfigError{Field: "volumejitter", Reason: "must be within [0, 1]"}
	case p.Rest < 0 || p.Rest >= 1:
		return &ConfigError{Field: "rest", Reason: "must be within [0, 1)"}
	}
	for i, d := range p.Doublings {
		if !(d.Duration > 0) || d.Volume < 0 {
			return &ConfigError{Field: fmt.Sprintf("doublings[%d]", i), Reason: "duration must be positive and volume non-negative"}
		}
	}
	if c := p.Chord; c != nil {
		if c.MinSize < 1 || c.MaxSize < c.MinSize || c.MinStep < 1 || c.MaxStep < c.MinStep || c.Strum < 0 {
			return &ConfigError{Field: "chord", Reason: "need 1 <= minsize <= maxsize, 1 <= minstep <= maxstep and strum >= 0"}
		}
	}
	return nil
}
