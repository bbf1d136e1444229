package postprocess

import (
	"context"
	"fmt"

	"github.com/okra-platform/genpipe/internal/codegen"
)

// AddFileHeader prepends the generated-code notice to every file
type AddFileHeader struct {
	header string
}

// NewAddFileHeader creates the header post-processor for the given tool version
func NewAddFileHeader(version string) *AddFileHeader {
	return &AddFileHeader{header: Header(version)}
}

// Header returns the notice written at the top of generated files
func Header(version string) string {
	if version == "" {
		version = "dev"
	}
	return fmt.Sprintf("// Code generated by genpipe %s. DO NOT EDIT.\n\n", version)
}

func (h *AddFileHeader) Descriptor() codegen.Descriptor {
	return codegen.Descriptor{
		Name:         NameAddFileHeader,
		Role:         codegen.RolePostProcessor,
		Priority:     PriorityAddFileHeader,
		RunInDryMode: true,
	}
}

func (h *AddFileHeader) PostProcess(ctx context.Context, files []*codegen.CodeGenFile) ([]*codegen.CodeGenFile, error) {
	for _, f := range files {
		f.FileContent = h.header + f.FileContent
	}
	return files, nil
}
