package builtin

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

func TestLs(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"b.txt":        "",
		"a.txt":        "",
		".hidden":      "",
		"sub/file.txt": "",
	})

	l := &LsTool{}
	out, err := l.Execute(map[string]any{"path": dir})
	require.NoError(t, err)
	assert.Equal(t, "a.txt\nb.txt\nsub/", out)
}

func TestLsShowHidden(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{".hidden": "", "a.txt": ""})

	l := &LsTool{}
	out, err := l.Execute(map[string]any{"path": dir, "show_hidden": true})
	require.NoError(t, err)
	assert.Equal(t, ".hidden\na.txt", out)
}

func TestLsEmptyDirectory(t *testing.T) {
	l := &LsTool{}
	out, err := l.Execute(map[string]any{"path": t.TempDir()})
	require.NoError(t, err)
	assert.Equal(t, "(empty directory)", out)
}

func TestGlobRecursive(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"main.go":            "",
		"pkg/a/one.go":       "",
		"pkg/a/one_test.go":  "",
		"pkg/b/two.go":       "",
		"docs/readme.md":     "",
		"node_modules/x.go":  "",
		".git/objects/x.go":  "",
		"pkg/.hidden/sec.go": "",
	})

	g := &GlobTool{}
	out, err := g.Execute(map[string]any{"pattern": "**/*.go", "path": dir})
	require.NoError(t, err)

	assert.Contains(t, out, "main.go")
	assert.Contains(t, out, filepath.Join("pkg", "a", "one.go"))
	assert.Contains(t, out, filepath.Join("pkg", "b", "two.go"))
	assert.NotContains(t, out, "node_modules")
	assert.NotContains(t, out, ".git")
	assert.NotContains(t, out, ".hidden")
	assert.NotContains(t, out, "readme.md")
}

func TestGlobSingleLevel(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"a.json":     "",
		"sub/b.json": "",
	})

	g := &GlobTool{}
	out, err := g.Execute(map[string]any{"pattern": "*.json", "path": dir})
	require.NoError(t, err)
	assert.Equal(t, "a.json", out)
}

func TestGlobNoMatches(t *testing.T) {
	g := &GlobTool{}
	out, err := g.Execute(map[string]any{"pattern": "*.rs", "path": t.TempDir()})
	require.NoError(t, err)
	assert.Contains(t, out, "No files found")
}

func TestGlobMaxResults(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{"a.txt": "", "b.txt": "", "c.txt": ""})

	g := &GlobTool{}
	out, err := g.Execute(map[string]any{"pattern": "*.txt", "path": dir, "max_results": float64(2)})
	require.NoError(t, err)
	assert.Contains(t, out, "limited to 2 results")
}

func TestMatchGlob(t *testing.T) {
	cases := []struct {
		pattern string
		path    string
		want    bool
	}{
		{"*.go", "main.go", true},
		{"*.go", "pkg/main.go", false},
		{"**/*.go", "main.go", true},
		{"**/*.go", "pkg/a/main.go", true},
		{"pkg/**/*.go", "pkg/a/b/x.go", true},
		{"pkg/**/*.go", "cmd/x.go", false},
		{"src/*.ts", "src/app.ts", true},
		{"src/*.ts", "src/sub/app.ts", false},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, matchGlob(tc.pattern, tc.path), "%s vs %s", tc.pattern, tc.path)
	}
}

func TestGrepFindsMatches(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"a.go": "package main\nfunc Hello() {}\n",
		"b.go": "package main\nfunc Goodbye() {}\n",
	})

	g := &GrepTool{}
	out, err := g.Execute(map[string]any{"pattern": "func Hello", "path": dir})
	require.NoError(t, err)
	assert.Contains(t, out, "a.go:2:func Hello() {}")
	assert.NotContains(t, out, "b.go")
}

func TestGrepIgnoreCase(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{"a.txt": "HELLO world\n"})

	g := &GrepTool{}
	out, err := g.Execute(map[string]any{"pattern": "hello", "path": dir, "ignore_case": true})
	require.NoError(t, err)
	assert.Contains(t, out, "HELLO world")
}

func TestGrepIncludeFilter(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"a.go":  "target\n",
		"a.txt": "target\n",
	})

	g := &GrepTool{}
	out, err := g.Execute(map[string]any{"pattern": "target", "path": dir, "include": "*.go"})
	require.NoError(t, err)
	assert.Contains(t, out, "a.go")
	assert.NotContains(t, out, "a.txt")
}

func TestGrepNoMatches(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{"a.txt": "nothing here\n"})

	g := &GrepTool{}
	out, err := g.Execute(map[string]any{"pattern": "absent", "path": dir})
	require.NoError(t, err)
	assert.Contains(t, out, "No matches found")
}

func TestGrepInvalidPattern(t *testing.T) {
	g := &GrepTool{}
	_, err := g.Execute(map[string]any{"pattern": "([", "path": t.TempDir()})
	require.Error(t, err)
}

func TestGrepSingleFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "one.txt")
	require.NoError(t, os.WriteFile(path, []byte("alpha\nbeta\n"), 0o644))

	g := &GrepTool{}
	out, err := g.Execute(map[string]any{"pattern": "beta", "path": path})
	require.NoError(t, err)
	assert.Contains(t, out, ":2:beta")
}
