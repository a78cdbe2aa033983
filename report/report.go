// Package report prints human readable summaries of the patterns an engine
// is playing.
package report

import (
	"bytes"
	"embed"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"text/template"

	"github.com/Masterminds/sprig"
	"github.com/rondo-audio/rondo"
	"github.com/rondo-audio/rondo/engine"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

type Reporter struct {
	Template *template.Template
}

//go:embed templates/*
var templateFS embed.FS

// New returns a reporter using the builtin templates.
func New() (*Reporter, error) {
	tmpl, err := template.New("base").Funcs(funcMap()).ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf(`could not create templates: %v`, err)
	}
	return &Reporter{Template: tmpl}, nil
}

// NewFromTemplates parses every .tmpl file of a directory instead. The
// directory must define a template named "status.tmpl".
func NewFromTemplates(templateDirectory string) (*Reporter, error) {
	globPtrn := filepath.Join(templateDirectory, "*.tmpl")
	tmpl, err := template.New("base").Funcs(funcMap()).ParseGlob(globPtrn)
	if err != nil {
		return nil, fmt.Errorf(`could not create template based on directory "%v": %v`, templateDirectory, err)
	}
	return &Reporter{Template: tmpl}, nil
}

// Status writes a report of every track.
func (r *Reporter) Status(w io.Writer, s engine.Status) error {
	return r.execute(w, "status.tmpl", s)
}

// Track writes a report of a single track.
func (r *Reporter) Track(w io.Writer, t engine.TrackStatus) error {
	return r.execute(w, "track.tmpl", t)
}

func (r *Reporter) execute(w io.Writer, name string, data any) error {
	var buf bytes.Buffer
	if err := r.Template.ExecuteTemplate(&buf, name, data); err != nil {
		return fmt.Errorf(`could not execute template "%v": %w`, name, err)
	}
	_, err := buf.WriteTo(w)
	return err
}

func funcMap() template.FuncMap {
	caser := cases.Title(language.English)
	m := sprig.TxtFuncMap()
	m["title"] = caser.String
	m["noteName"] = NoteName
	m["steps"] = func(v float64, n int) int { return int(math.Round(max(0, min(1, v)) * float64(n))) }
	return m
}

// NoteName returns the name of the equal tempered note closest to freq,
// with the octave number in scientific pitch notation ("A3" is 220 Hz).
func NoteName(freq float64) string {
	if !(freq > 0) || math.IsInf(freq, 0) {
		return "-"
	}
	semitone := int(math.Round(12 * math.Log2(freq/rondo.ReferenceFrequency)))
	// C is three semitones above A, and the octave number changes at C
	fromC := semitone + 9 + 3*12
	octave := fromC / 12
	if fromC < 0 && fromC%12 != 0 {
		octave--
	}
	return fmt.Sprintf("%v%d", rondo.Note(semitone), octave)
}
