package generate

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/rondo-audio/rondo"
	"gopkg.in/yaml.v2"
)

//go:embed presets/*
var layerPresetFS embed.FS

// Presets maps layer names to generator parameters.
type Presets map[string]rondo.LayerParams

var builtin = sync.OnceValue(func() Presets {
	p := Presets{}
	if err := p.loadFromFS(layerPresetFS); err != nil {
		panic(err) // the embedded presets are part of the build
	}
	return p
})

// Builtin returns a copy of the presets compiled into the binary: bass,
// mid, treble, percussion and chord.
func Builtin() Presets {
	ret := Presets{}
	for k, v := range builtin() {
		ret[k] = v
	}
	return ret
}

// LoadPresets returns the builtin presets overlaid with every .yml file in
// dir, if dir is not empty. User files replace builtins of the same name.
// Files that do not parse are reported, not skipped.
func LoadPresets(dir string) (Presets, error) {
	p := Builtin()
	if dir == "" {
		return p, nil
	}
	if _, err := os.Stat(filepath.Join(dir, "presets")); err != nil {
		return p, nil
	}
	if err := p.loadFromFS(os.DirFS(dir)); err != nil {
		return nil, err
	}
	return p, nil
}

// UserPresetDir returns the directory searched for user presets, or "" if
// the platform has no config directory.
func UserPresetDir() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(configDir, "rondo")
}

// Lookup returns the parameters of the named preset.
func (p Presets) Lookup(name string) (*rondo.LayerParams, error) {
	v, ok := p[name]
	if !ok {
		return nil, &rondo.ConfigError{Field: "layer", Reason: fmt.Sprintf("unknown layer %q (known: %s)", name, strings.Join(p.Names(), ", "))}
	}
	return &v, nil
}

// Names returns the sorted preset names.
func (p Presets) Names() []string {
	ret := make([]string, 0, len(p))
	for k := range p {
		ret = append(ret, k)
	}
	sort.Strings(ret)
	return ret
}

func (p Presets) loadFromFS(fsys fs.FS) error {
	return fs.WalkDir(fsys, "presets", func(name string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || path.Ext(name) != ".yml" {
			return nil
		}
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("could not read preset %v: %w", name, err)
		}
		var params rondo.LayerParams
		if err := yaml.UnmarshalStrict(data, &params); err != nil {
			return fmt.Errorf("could not parse preset %v: %w", name, err)
		}
		if err := params.Validate(); err != nil {
			return fmt.Errorf("preset %v: %w", name, err)
		}
		p[strings.TrimSuffix(path.Base(name), ".yml")] = params
		return nil
	})
}
