package writer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWriter_Print(t *testing.T) {
	// Test: Print concatenates without newlines
	w := New("\t")

	w.Print("hello")
	w.Print(" world")
	w.Print("")

	assert.Equal(t, "hello world", w.String())
	assert.Equal(t, 11, w.Len())
}

func TestWriter_Line(t *testing.T) {
	w := New("\t")

	w.Line("line1")
	w.Linef("line%d", 2)

	assert.Equal(t, "line1\nline2\n", w.String())
}

func TestWriter_Indentation(t *testing.T) {
	// Test: nested indentation with a custom unit
	w := New("  ")

	w.Line("if a {")
	w.Indent()
	w.Line("if b {")
	w.Indent()
	w.Line("return")
	w.Dedent()
	w.Line("}")
	w.Dedent()
	w.Line("}")

	assert.Equal(t, "if a {\n  if b {\n    return\n  }\n}\n", w.String())
}

func TestWriter_DedentBelowZero(t *testing.T) {
	w := New("\t")

	w.Dedent()
	w.Dedent()
	assert.Equal(t, 0, w.Depth())

	w.Line("x")
	assert.Equal(t, "x\n", w.String())
}

func TestWriter_EmptyLineHasNoIndent(t *testing.T) {
	// Test: blank lines inside an indented block carry no trailing whitespace
	w := New("\t")
	w.Indent()
	w.Line("a")
	w.Line("")
	w.Line("b")

	assert.Equal(t, "\ta\n\n\tb\n", w.String())
}

func TestWriter_BlankLine(t *testing.T) {
	t.Run("ignored at start", func(t *testing.T) {
		w := New("\t")
		w.BlankLine()
		assert.Equal(t, "", w.String())
	})

	t.Run("collapses repeats", func(t *testing.T) {
		w := New("\t")
		w.Line("a")
		w.BlankLine()
		w.BlankLine()
		w.Line("b")
		assert.Equal(t, "a\n\nb\n", w.String())
	})

	t.Run("terminates a partial line", func(t *testing.T) {
		w := New("\t")
		w.Print("a")
		w.BlankLine()
		w.Line("b")
		assert.Equal(t, "a\n\nb\n", w.String())
	})
}

func TestWriter_Block(t *testing.T) {
	w := New("\t")

	w.Block("func init() {", "}", func() {
		w.Line("register()")
	})

	assert.Equal(t, "func init() {\n\tregister()\n}\n", w.String())
	assert.Equal(t, 0, w.Depth())
}

func TestWriter_Comment(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{name: "single line", text: "hello", want: "// hello\n"},
		{name: "multi line trims", text: "  first\n  second  ", want: "// first\n// second\n"},
		{name: "inner blank line", text: "a\n\nb", want: "// a\n//\n// b\n"},
		{name: "empty writes nothing", text: "   ", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := New("\t")
			w.Comment(tt.text)
			assert.Equal(t, tt.want, w.String())
		})
	}
}

func TestWriter_Imports(t *testing.T) {
	t.Run("none", func(t *testing.T) {
		w := New("\t")
		w.Imports()
		assert.Equal(t, "", w.String())
	})

	t.Run("single", func(t *testing.T) {
		w := New("\t")
		w.Imports("fmt")
		assert.Equal(t, "import \"fmt\"\n", w.String())
	})

	t.Run("sorted and deduplicated", func(t *testing.T) {
		w := New("\t")
		w.Imports("sort", "fmt", "sort", "")
		assert.Equal(t, "import (\n\t\"fmt\"\n\t\"sort\"\n)\n", w.String())
	})
}

func TestWriter_Reset(t *testing.T) {
	w := New("\t")
	w.Indent()
	w.Line("x")

	w.Reset()
	assert.Equal(t, "", w.String())
	assert.Equal(t, 0, w.Depth())

	w.Line("y")
	assert.Equal(t, "y\n", w.String())
}
