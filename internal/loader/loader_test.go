package loader

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gubarz/mslg/internal/lg"
	"github.com/gubarz/mslg/internal/parser"
)

func writeFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600), "failed to set up %s", name)
	}
}

func newLoader(opts Options) *Loader {
	return New(parser.New(nil, parser.Options{}), opts)
}

func TestLoadFolder_FollowsReferences(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"in/a.lg":          "# A\n- a\n[shared](../shared/s.lg)",
		"in/b.lg":          "# B\n- b {userName}",
		"in/notes.txt":     "ignored",
		"shared/s.lg":      "# S\n- s\n[back](../in/a.lg)\n[deeper](./deep/d.lg#D)",
		"shared/deep/d.lg": "$userName : string",
	})

	// --- Act ---
	files, err := newLoader(Options{Workers: 2}).LoadFolder(context.Background(), filepath.Join(root, "in"))

	// --- Assert ---
	require.NoError(t, err)
	var names []string
	for _, f := range files {
		rel, err := filepath.Rel(root, f.Path)
		require.NoError(t, err)
		names = append(names, filepath.ToSlash(rel))
	}
	require.Equal(t, []string{"in/a.lg", "in/b.lg", "shared/s.lg", "shared/deep/d.lg"}, names)
	require.Len(t, Documents(files), 4)
	require.Empty(t, Failures(files))
}

func TestLoadFolder_ParseErrorAborts(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"a.lg": "# A\n- a",
		"b.lg": "# B\n- {foo{bar}}",
	})

	files, err := newLoader(Options{}).LoadFolder(context.Background(), root)

	require.Nil(t, files)
	var lgErr *lg.Error
	require.ErrorAs(t, err, &lgErr)
	require.Equal(t, lg.CodeNestedEntityReference, lgErr.Code)
	require.Equal(t, filepath.Join(root, "b.lg"), lgErr.File)
	require.Equal(t, 2, lgErr.Line)
}

func TestLoadFolder_KeepGoing(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"a.lg": "# A\n- a\n[missing](./missing.lg)",
		"b.lg": "# B template\n- b",
		"c.lg": "> only comments",
	})

	files, err := newLoader(Options{KeepGoing: true}).LoadFolder(context.Background(), root)

	require.NoError(t, err)
	require.Len(t, files, 4)
	failed := Failures(files)
	require.Len(t, failed, 2)
	code, ok := lg.CodeOf(failed[0].Err)
	require.True(t, ok)
	require.Equal(t, lg.CodeInvalidSpaceInTemplate, code)
	require.ErrorIs(t, failed[1].Err, os.ErrNotExist)
	require.Len(t, Documents(files), 1)
}

func TestLoadFolder_Exclude(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"a.lg":           "# A\n- a\n[out](./out/collate.lg)",
		"out/collate.lg": "# A\n- a",
	})
	l := newLoader(Options{Exclude: []string{filepath.Join(root, "out", "collate.lg")}})

	// --- Act ---
	files, err := l.LoadFolder(context.Background(), root)

	// --- Assert ---
	require.NoError(t, err)
	require.Len(t, files, 1)
	require.Equal(t, filepath.Join(root, "a.lg"), files[0].Path)
}

func TestLoadFiles_Cancelled(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFiles(t, root, map[string]string{"a.lg": "# A\n- a"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newLoader(Options{}).LoadFiles(ctx, []string{filepath.Join(root, "a.lg")})

	require.ErrorIs(t, err, context.Canceled)
}

func TestFindFiles(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"z.lg":      "",
		"a/B.LG":    "",
		"a/skip.md": "",
	})

	files, err := FindFiles(root, Extension)

	require.NoError(t, err)
	require.Equal(t, []string{filepath.Join(root, "a", "B.LG"), filepath.Join(root, "z.lg")}, files)
}
