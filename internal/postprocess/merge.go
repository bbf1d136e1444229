package postprocess

import (
	"context"
	"strings"

	"github.com/okra-platform/genpipe/internal/codegen"
)

// MergeFilesByName collapses files sharing a FileName into the first of them
type MergeFilesByName struct{}

// NewMergeFilesByName creates the merge post-processor
func NewMergeFilesByName() *MergeFilesByName {
	return &MergeFilesByName{}
}

func (m *MergeFilesByName) Descriptor() codegen.Descriptor {
	return codegen.Descriptor{
		Name:         NameMergeFilesByName,
		Role:         codegen.RolePostProcessor,
		Priority:     PriorityMergeFilesByName,
		RunInDryMode: true,
	}
}

func (m *MergeFilesByName) PostProcess(ctx context.Context, files []*codegen.CodeGenFile) ([]*codegen.CodeGenFile, error) {
	return Merge(files), nil
}

// Merge groups files by exact FileName in first-seen order. A group's
// contents are joined with "\n" and its generator names with ", ", both in
// encounter order; the first file of each group is kept and updated.
func Merge(files []*codegen.CodeGenFile) []*codegen.CodeGenFile {
	type group struct {
		first      *codegen.CodeGenFile
		contents   []string
		generators []string
	}

	groups := make(map[string]*group, len(files))
	order := make([]*group, 0, len(files))

	for _, f := range files {
		g, ok := groups[f.FileName]
		if !ok {
			g = &group{first: f}
			groups[f.FileName] = g
			order = append(order, g)
		}
		g.contents = append(g.contents, f.FileContent)
		g.generators = append(g.generators, f.GeneratorName)
	}

	merged := make([]*codegen.CodeGenFile, 0, len(order))
	for _, g := range order {
		if len(g.contents) > 1 {
			g.first.FileContent = strings.Join(g.contents, "\n")
			g.first.GeneratorName = strings.Join(g.generators, ", ")
		}
		merged = append(merged, g.first)
	}
	return merged
}
