// Package writer builds indented source text for code generators
package writer

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Writer accumulates generated source with indentation tracking
type Writer struct {
	sb          strings.Builder
	depth       int
	unit        string
	prefix      string
	atLineStart bool
}

// New creates a writer that indents with unit (a tab for Go output)
func New(unit string) *Writer {
	return &Writer{
		unit:        unit,
		atLineStart: true,
	}
}

// Indent increases the indentation depth
func (w *Writer) Indent() {
	w.depth++
	w.prefix = strings.Repeat(w.unit, w.depth)
}

// Dedent decreases the indentation depth; it never goes below zero
func (w *Writer) Dedent() {
	if w.depth == 0 {
		return
	}
	w.depth--
	w.prefix = strings.Repeat(w.unit, w.depth)
}

// Depth returns the current indentation depth
func (w *Writer) Depth() int {
	return w.depth
}

// Print writes s without a trailing newline
func (w *Writer) Print(s string) {
	if s == "" {
		return
	}
	if w.atLineStart {
		w.sb.WriteString(w.prefix)
		w.atLineStart = false
	}
	w.sb.WriteString(s)
}

// Printf writes a formatted string without a trailing newline
func (w *Writer) Printf(format string, args ...any) {
	w.Print(fmt.Sprintf(format, args...))
}

// Line writes s followed by a newline. An empty s writes a bare newline
// without indentation.
func (w *Writer) Line(s string) {
	w.Print(s)
	w.sb.WriteByte('\n')
	w.atLineStart = true
}

// Linef writes a formatted line
func (w *Writer) Linef(format string, args ...any) {
	w.Line(fmt.Sprintf(format, args...))
}

// BlankLine separates sections with exactly one empty line. It does nothing
// at the start of the output or after another blank line.
func (w *Writer) BlankLine() {
	out := w.sb.String()
	if out == "" || strings.HasSuffix(out, "\n\n") {
		return
	}
	if !w.atLineStart {
		w.sb.WriteByte('\n')
	}
	w.sb.WriteByte('\n')
	w.atLineStart = true
}

// Block writes opener, the indented body, then closer
//
//	w.Block("func init() {", "}", func() { w.Line("setup()") })
func (w *Writer) Block(opener, closer string, body func()) {
	w.Line(opener)
	w.Indent()
	body()
	w.Dedent()
	w.Line(closer)
}

// Comment writes one "//" comment line per line of text. Empty text writes
// nothing.
func (w *Writer) Comment(text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			w.Line("//")
			continue
		}
		w.Line("// " + line)
	}
}

// Imports writes a Go import declaration for paths, deduplicated and sorted.
// Nothing is written when paths is empty.
func (w *Writer) Imports(paths ...string) {
	seen := make(map[string]struct{}, len(paths))
	var unique []string
	for _, p := range paths {
		if _, ok := seen[p]; ok || p == "" {
			continue
		}
		seen[p] = struct{}{}
		unique = append(unique, p)
	}
	sort.Strings(unique)

	switch len(unique) {
	case 0:
		return
	case 1:
		w.Linef("import %s", strconv.Quote(unique[0]))
	default:
		w.Block("import (", ")", func() {
			for _, p := range unique {
				w.Line(strconv.Quote(p))
			}
		})
	}
}

// String returns the accumulated output
func (w *Writer) String() string {
	return w.sb.String()
}

// Len returns the number of bytes written
func (w *Writer) Len() int {
	return w.sb.Len()
}

// Reset discards all output and indentation
func (w *Writer) Reset() {
	w.sb.Reset()
	w.depth = 0
	w.prefix = ""
	w.atLineStart = true
}
