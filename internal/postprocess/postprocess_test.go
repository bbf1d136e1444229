package postprocess

// Test plan:
// - header is prepended once per file and carries the version
// - merge keeps first-seen order and joins contents and provenance
// - line ending conversion is idempotent in both modes
// - cleanup creates a missing directory and removes only generated files
// - disk write creates parents, overwrites, and rejects escaping names
// - registry ordering interleaves third-party post-processors by priority

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/okra-platform/genpipe/internal/codegen"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func file(name, content, generator string) *codegen.CodeGenFile {
	return codegen.NewFile(name, content, generator)
}

func TestAddFileHeader(t *testing.T) {
	files := []*codegen.CodeGenFile{file("a.gen.go", "package a\n", "G")}

	out, err := NewAddFileHeader("1.2.3").PostProcess(context.Background(), files)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "// Code generated by genpipe 1.2.3. DO NOT EDIT.\n\npackage a\n", out[0].FileContent)
	assert.Equal(t, "G", out[0].GeneratorName)

	assert.Contains(t, Header(""), "genpipe dev.")
	assert.True(t, NewAddFileHeader("x").Descriptor().RunInDryMode)
}

func TestMerge_Scenario(t *testing.T) {
	// Test: two files with the same name merge content and provenance
	files := []*codegen.CodeGenFile{
		file("Factory/Foo.gen", "A", "Gen1"),
		file("Factory/Foo.gen", "B", "Gen2"),
	}

	out, err := NewMergeFilesByName().PostProcess(context.Background(), files)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "Factory/Foo.gen", out[0].FileName)
	assert.Equal(t, "A\nB", out[0].FileContent)
	assert.Equal(t, "Gen1, Gen2", out[0].GeneratorName)
}

func TestMerge_Law(t *testing.T) {
	tests := []struct {
		name  string
		files []*codegen.CodeGenFile
		want  map[string]string
		order []string
	}{
		{
			name:  "empty",
			files: nil,
			want:  map[string]string{},
			order: []string{},
		},
		{
			name:  "distinct names untouched",
			files: []*codegen.CodeGenFile{file("a", "1", "g"), file("b", "2", "g")},
			want:  map[string]string{"a": "1", "b": "2"},
			order: []string{"a", "b"},
		},
		{
			name: "interleaved groups keep first-seen order",
			files: []*codegen.CodeGenFile{
				file("b", "b1", "g1"),
				file("a", "a1", "g1"),
				file("b", "b2", "g2"),
				file("a", "a2", "g2"),
				file("b", "b3", "g3"),
			},
			want:  map[string]string{"a": "a1\na2", "b": "b1\nb2\nb3"},
			order: []string{"b", "a"},
		},
		{
			name:  "names are matched exactly",
			files: []*codegen.CodeGenFile{file("A", "1", "g"), file("a", "2", "g"), file("a ", "3", "g")},
			want:  map[string]string{"A": "1", "a": "2", "a ": "3"},
			order: []string{"A", "a", "a "},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Merge(tt.files)
			assert.Len(t, out, len(tt.want))

			names := make([]string, 0, len(out))
			for _, f := range out {
				names = append(names, f.FileName)
				assert.Equal(t, tt.want[f.FileName], f.FileContent)
			}
			assert.Equal(t, tt.order, names)
		})
	}
}

func TestLineEnding_Convert(t *testing.T) {
	tests := []struct {
		name  string
		mode  LineEnding
		input string
		want  string
	}{
		{name: "unix from crlf", mode: Unix, input: "a\r\nb\r\n", want: "a\nb\n"},
		{name: "unix from lone cr", mode: Unix, input: "a\rb\r", want: "a\nb\n"},
		{name: "unix mixed", mode: Unix, input: "a\r\nb\rc\n", want: "a\nb\nc\n"},
		{name: "windows from lf", mode: Windows, input: "a\nb\n", want: "a\r\nb\r\n"},
		{name: "windows keeps crlf", mode: Windows, input: "a\r\nb\n", want: "a\r\nb\r\n"},
		{name: "no newlines", mode: Windows, input: "abc", want: "abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			once := tt.mode.Convert(tt.input)
			assert.Equal(t, tt.want, once)

			// Test: converting again changes nothing
			assert.Equal(t, once, tt.mode.Convert(once))
		})
	}
}

func TestConvertLineEndings_PostProcess(t *testing.T) {
	files := []*codegen.CodeGenFile{file("a", "x\ny\n", "g")}

	p := NewConvertLineEndings(Windows)
	out, err := p.PostProcess(context.Background(), files)
	require.NoError(t, err)
	out, err = p.PostProcess(context.Background(), out)
	require.NoError(t, err)
	assert.Equal(t, "x\r\ny\r\n", out[0].FileContent)
}

func TestParseLineEnding(t *testing.T) {
	for input, want := range map[string]LineEnding{
		"":        Unix,
		"unix":    Unix,
		"LF":      Unix,
		"windows": Windows,
		" crlf ":  Windows,
	} {
		got, err := ParseLineEnding(input)
		require.NoError(t, err, input)
		assert.Equal(t, want, got, input)
	}

	_, err := ParseLineEnding("mac")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown line ending "mac"`)
	assert.Equal(t, "windows", Windows.String())
}

func TestCleanTargetDirectory_CreatesMissingDirectory(t *testing.T) {
	// Test: a missing directory is created and files pass through unmodified
	dir := filepath.Join(t.TempDir(), "does", "not", "exist")
	files := []*codegen.CodeGenFile{file("a.gen.go", "content", "g")}

	out, err := NewCleanTargetDirectory(dir, ".gen.go", zerolog.Nop()).PostProcess(context.Background(), files)
	require.NoError(t, err)
	assert.Equal(t, files, out)
	assert.Equal(t, "content", out[0].FileContent)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestCleanTargetDirectory_RemovesGeneratedFilesOnly(t *testing.T) {
	dir := t.TempDir()
	write := func(rel string) string {
		path := filepath.Join(dir, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
		return path
	}

	stale := write("generated/old.gen.go")
	nested := write("generated/deep/er/older.gen.go")
	handwritten := write("generated/keep.go")
	readme := write("README.md")

	_, err := NewCleanTargetDirectory(dir, ".gen.go", zerolog.Nop()).PostProcess(context.Background(), nil)
	require.NoError(t, err)

	assert.NoFileExists(t, stale)
	assert.NoFileExists(t, nested)
	assert.FileExists(t, handwritten)
	assert.FileExists(t, readme)
}

func TestCleanTargetDirectory_NotADirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(path, nil, 0644))

	_, err := NewCleanTargetDirectory(path, ".gen.go", zerolog.Nop()).PostProcess(context.Background(), nil)
	assert.Error(t, err)
}

func TestCleanTargetDirectory_EmptyExtension(t *testing.T) {
	// Test: without an extension nothing is deleted
	dir := t.TempDir()
	handwritten := filepath.Join(dir, "main.go")
	require.NoError(t, os.WriteFile(handwritten, []byte("package main"), 0644))

	_, err := NewCleanTargetDirectory(dir, "", zerolog.Nop()).PostProcess(context.Background(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "without a generated file extension")
	assert.FileExists(t, handwritten)
}

func TestCleanTargetDirectory_DeletionFailureIsNotFatal(t *testing.T) {
	if runtime.GOOS == "windows" || os.Geteuid() == 0 {
		t.Skip("permission bits are not enforced")
	}

	dir := t.TempDir()
	locked := filepath.Join(dir, "locked")
	require.NoError(t, os.MkdirAll(locked, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(locked, "a.gen.go"), nil, 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.gen.go"), nil, 0644))
	require.NoError(t, os.Chmod(locked, 0555))
	t.Cleanup(func() { _ = os.Chmod(locked, 0755) })

	_, err := NewCleanTargetDirectory(dir, ".gen.go", zerolog.Nop()).PostProcess(context.Background(), nil)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(locked, "a.gen.go"))
	assert.NoFileExists(t, filepath.Join(dir, "b.gen.go"))
}

func TestWriteToDisk(t *testing.T) {
	dir := t.TempDir()
	existing := filepath.Join(dir, "pkg", "a.gen.go")
	require.NoError(t, os.MkdirAll(filepath.Dir(existing), 0755))
	require.NoError(t, os.WriteFile(existing, []byte("old"), 0644))

	files := []*codegen.CodeGenFile{
		file("pkg/a.gen.go", "new", "g"),
		file("pkg/sub/b.gen.go", "b", "g"),
	}

	out, err := NewWriteToDisk(dir, zerolog.Nop()).PostProcess(context.Background(), files)
	require.NoError(t, err)
	assert.Equal(t, files, out)

	// Test: existing files are overwritten and parents created
	data, err := os.ReadFile(existing)
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))

	data, err = os.ReadFile(filepath.Join(dir, "pkg", "sub", "b.gen.go"))
	require.NoError(t, err)
	assert.Equal(t, "b", string(data))
}

func TestWriteToDisk_RejectsBadNames(t *testing.T) {
	w := NewWriteToDisk(t.TempDir(), zerolog.Nop())

	for _, name := range []string{"", "../escape.go", "a/../../escape.go"} {
		_, err := w.PostProcess(context.Background(), []*codegen.CodeGenFile{file(name, "x", "g")})
		assert.Error(t, err, name)
	}

	abs := filepath.Join(t.TempDir(), "abs.go")
	_, err := w.PostProcess(context.Background(), []*codegen.CodeGenFile{file(abs, "x", "g")})
	assert.Error(t, err)
	assert.NoFileExists(t, abs)
}

func TestWriteToDisk_FailureIsReturned(t *testing.T) {
	// Test: writing below a regular file fails instead of being swallowed
	base := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(base, nil, 0644))

	_, err := NewWriteToDisk(base, zerolog.Nop()).PostProcess(context.Background(),
		[]*codegen.CodeGenFile{file("a.gen.go", "x", "g")})
	assert.Error(t, err)
}

// thirdParty is an external post-processor slotted between the built-ins
type thirdParty struct{ priority int }

func (p *thirdParty) Descriptor() codegen.Descriptor {
	return codegen.Descriptor{Name: "ThirdParty", Role: codegen.RolePostProcessor, Priority: p.priority}
}

func (p *thirdParty) PostProcess(ctx context.Context, files []*codegen.CodeGenFile) ([]*codegen.CodeGenFile, error) {
	return files, nil
}

func TestBuiltinsOrderByPriority(t *testing.T) {
	dir := t.TempDir()
	reg := codegen.NewRegistry()
	reg.MustRegister(
		NewWriteToDisk(dir, zerolog.Nop()),
		NewMergeFilesByName(),
		&thirdParty{priority: 96},
		NewConvertLineEndings(Unix),
		NewCleanTargetDirectory(dir, ".gen.go", zerolog.Nop()),
		NewAddFileHeader("test"),
	)

	assert.Equal(t, []string{
		NameAddFileHeader,
		NameCleanTargetDirectory,
		NameConvertLineEndings,
		"ThirdParty",
		NameMergeFilesByName,
		NameWriteToDisk,
	}, reg.Names(codegen.RolePostProcessor))
}
