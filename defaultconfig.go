package rondo

import (
	_ "embed"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed defaultconfig.yml
var defaultConfigYaml []byte

var defaultConfig = sync.OnceValue(func() Config {
	var cfg Config
	if err := yaml.Unmarshal(defaultConfigYaml, &cfg); err != nil {
		panic(err) // the default config is part of the build
	}
	return cfg
})

// DefaultConfig returns the configuration used when none is given. Every
// call returns a fresh copy that the caller may modify.
func DefaultConfig() Config {
	cfg := defaultConfig()
	cfg.Scales = append([]ScaleConfig(nil), cfg.Scales...)
	cfg.Tracks = append([]TrackConfig(nil), cfg.Tracks...)
	cfg.TempoScale = clonePtr(cfg.TempoScale)
	cfg.Gain = clonePtr(cfg.Gain)
	for i := range cfg.Tracks {
		t := &cfg.Tracks[i]
		t.Pattern = clonePtr(t.Pattern)
		t.Wave = clonePtr(t.Wave)
		t.Notes = append([]NoteEvent(nil), t.Notes...)
	}
	return cfg
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
