package render

import (
	"strconv"
	"strings"
)

// Role classifies a span for styling.
type Role int

const (
	RolePlain Role = iota
	RoleKey
	RoleValue
	RolePunct
	RoleMatch
)

// Span is a run of text with one style.
type Span struct {
	Text     string
	Role     Role
	Selected bool
}

// Line is one content line.
type Line []Span

// String returns the plain text of the line.
func (l Line) String() string {
	var b strings.Builder
	for _, s := range l {
		b.WriteString(s.Text)
	}
	return b.String()
}

// Region is the screen rectangle of a key or value token, in content
// coordinates (the ruler gutter is not included).
type Region struct {
	Line   int
	Column int
	Width  int
	Height int
}

// Regions maps "path@kind" to the token region.
type Regions map[string]Region

// FillerText marks lines past the end of the document.
const FillerText = "~"

// Frame is the output of one render.
type Frame struct {
	Lines          []Line
	Filler         int
	Gutter         int
	Regions        Regions
	PreviewMatches []string
	Text           string
}

// Region looks up a token region.
func (f *Frame) Region(key string) (Region, bool) {
	if f == nil {
		return Region{}, false
	}
	r, ok := f.Regions[key]
	return r, ok
}

// RulerLabel returns the gutter text for content line i (0-based).
func (f *Frame) RulerLabel(i int) string {
	if f.Gutter == 0 {
		return ""
	}
	n := strconv.Itoa(i + 1)
	return strings.Repeat(" ", f.Gutter-1-len(n)) + n + " "
}

// Height is the number of screen lines, filler included.
func (f *Frame) Height() int {
	return len(f.Lines) + f.Filler
}

func gutterWidth(lines int) int {
	w := len(strconv.Itoa(lines))
	if w < 2 {
		w = 2
	}
	return w + 1
}

func (f *Frame) buildText() {
	var b strings.Builder
	for i, l := range f.Lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(f.RulerLabel(i))
		b.WriteString(l.String())
	}
	for i := 0; i < f.Filler; i++ {
		if b.Len() > 0 || i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(FillerText)
	}
	f.Text = b.String()
}
