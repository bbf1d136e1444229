package postprocess

import (
	"context"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/okra-platform/genpipe/internal/codegen"
)

// LineEnding is the newline convention written to generated files
type LineEnding int

const (
	Unix LineEnding = iota
	Windows
)

func (l LineEnding) String() string {
	if l == Windows {
		return "windows"
	}
	return "unix"
}

// ParseLineEnding accepts unix, lf, windows and crlf, case-insensitively.
// The empty string selects Unix.
func ParseLineEnding(s string) (LineEnding, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "unix", "lf":
		return Unix, nil
	case "windows", "crlf":
		return Windows, nil
	default:
		return Unix, errors.WithHint(
			errors.Newf("unknown line ending %q", s),
			"use one of: unix, lf, windows, crlf",
		)
	}
}

// Convert normalizes the newlines of s. Applying it twice gives the same
// result as applying it once.
func (l LineEnding) Convert(s string) string {
	unix := strings.ReplaceAll(s, "\r\n", "\n")
	if l == Windows {
		return strings.ReplaceAll(unix, "\n", "\r\n")
	}
	return strings.ReplaceAll(unix, "\r", "\n")
}

// ConvertLineEndings rewrites every file to one newline convention
type ConvertLineEndings struct {
	mode LineEnding
}

// NewConvertLineEndings creates the line ending post-processor
func NewConvertLineEndings(mode LineEnding) *ConvertLineEndings {
	return &ConvertLineEndings{mode: mode}
}

func (c *ConvertLineEndings) Descriptor() codegen.Descriptor {
	return codegen.Descriptor{
		Name:         NameConvertLineEndings,
		Role:         codegen.RolePostProcessor,
		Priority:     PriorityConvertLineEndings,
		RunInDryMode: true,
	}
}

func (c *ConvertLineEndings) PostProcess(ctx context.Context, files []*codegen.CodeGenFile) ([]*codegen.CodeGenFile, error) {
	for _, f := range files {
		f.FileContent = c.mode.Convert(f.FileContent)
	}
	return files, nil
}
