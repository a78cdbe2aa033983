package rondo

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

type (
	// Scale is an immutable table of semitone offsets, one per scale degree,
	// relative to the reference pitch (A at 220 Hz). Degrees outside the
	// table fold into neighbouring octaves, so every integer is a valid
	// degree. A *Scale is safe to share between goroutines.
	Scale struct {
		degrees []int
	}

	// Note is a semitone offset above the reference pitch A.
	Note int
)

const (
	A Note = iota
	As
	B
	C
	Cs
	D
	Ds
	E
	F
	Fs
	G
	Gs
)

// ReferenceFrequency is the frequency of semitone 0.
const ReferenceFrequency = 220.0

var noteNames = [...]string{"A", "A#", "B", "C", "C#", "D", "D#", "E", "F", "F#", "G", "G#"}

// ScalePatterns lists the step patterns BuildScale understands: the
// semitone distances between consecutive degrees, wrapping to the octave.
var ScalePatterns = map[string][]int{
	"major":      {2, 2, 1, 2, 2, 2, 1},
	"minor":      {2, 1, 2, 2, 1, 2, 2},
	"dorian":     {2, 1, 2, 2, 2, 1, 2},
	"alternate":  {2, 1, 2, 2, 2, 1, 2},
	"pentatonic": {3, 2, 2, 3, 2},
}

// BuildScale creates the degree table for a named step pattern by cumulative
// sum, starting from root.
func BuildScale(pattern string, root int) (*Scale, error) {
	steps, ok := ScalePatterns[pattern]
	if !ok {
		return nil, &ConfigError{
			Field:  "pattern",
			Reason: fmt.Sprintf("unknown scale pattern %q (known: %s)", pattern, strings.Join(PatternNames(), ", ")),
		}
	}
	degrees := make([]int, len(steps))
	for i, s := range steps {
		degrees[i] = root
		root += s
	}
	return &Scale{degrees: degrees}, nil
}

// NewScale creates a scale from an explicit offset table. The table is
// copied.
func NewScale(offsets []int) (*Scale, error) {
	if len(offsets) == 0 {
		return nil, &ConfigError{Field: "degrees", Reason: "a scale needs at least one degree"}
	}
	return &Scale{degrees: append([]int(nil), offsets...)}, nil
}

// PatternNames returns the sorted names accepted by BuildScale.
func PatternNames() []string {
	ret := make([]string, 0, len(ScalePatterns))
	for k := range ScalePatterns {
		ret = append(ret, k)
	}
	sort.Strings(ret)
	return ret
}

// Len returns the number of degrees in one octave of the scale.
func (s *Scale) Len() int {
	return len(s.degrees)
}

// Degrees returns a copy of the offset table.
func (s *Scale) Degrees() []int {
	return append([]int(nil), s.degrees...)
}

// Get returns the frequency of a scale degree. Degrees wrap with a floored
// modulo: on a five note scale Get(-1) is Get(4) one octave down. The
// octave is applied as an exact power of two, so Get(d+Len()) == 2*Get(d)
// holds without rounding error.
func (s *Scale) Get(degree int) float64 {
	n := len(s.degrees)
	if n == 0 {
		return ReferenceFrequency
	}
	rem := degree % n
	if rem < 0 {
		rem += n
	}
	octave := (degree - rem) / n
	return math.Ldexp(NoteFrequency(float64(s.degrees[rem])), octave)
}

// NoteFrequency converts a semitone offset from the reference pitch into Hz.
func NoteFrequency(semitone float64) float64 {
	return ReferenceFrequency * math.Exp2(semitone/12)
}

func (n Note) String() string {
	return noteNames[((int(n)%12)+12)%12]
}

// ParseNote parses a note name such as "A", "c#" or "Bb" into a semitone
// offset from A, in the range 0..11.
func ParseNote(name string) (Note, error) {
	s := strings.TrimSpace(name)
	if s == "" {
		return 0, &ConfigError{Field: "root", Reason: "empty note name"}
	}
	letter := strings.ToUpper(s[:1])
	base := -1
	for i, n := range noteNames {
		if n == letter {
			base = i
			break
		}
	}
	if base < 0 {
		return 0, &ConfigError{Field: "root", Reason: fmt.Sprintf("unknown note name %q", name)}
	}
	for _, r := range s[1:] {
		switch r {
		case '#':
			base++
		case 'b':
			base--
		default:
			return 0, &ConfigError{Field: "root", Reason: fmt.Sprintf("unknown note name %q", name)}
		}
	}
	return Note((base%12 + 12) % 12), nil
}
