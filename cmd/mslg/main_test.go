package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gubarz/mslg/internal/lg"
)

// execute runs the root command with args against an isolated home folder.
// Commands share global cobra and viper state, so these tests are serial.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{lg.Errorf(lg.CodeInvalidTemplate, "x"), 2},
		{lg.Errorf(lg.CodeInvalidCondition, "x"), 2},
		{lg.Errorf(lg.CodeNestedEntityReference, "x"), 3},
		{lg.Errorf(lg.CodeInvalidCallbackName, "x"), 3},
		{fmt.Errorf("parsing a.lg: %w", lg.Errorf(lg.CodeDuplicateIncompatibleDef, "x")), 4},
		{errors.New("boom"), 1},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, exitCode(tt.err), "%v", tt.err)
	}
}

func TestExitCode_CoversEveryCode(t *testing.T) {
	for _, c := range lg.Codes() {
		require.NotEqual(t, 1, exitCodeFor(c), "code %s has no exit status", c)
	}
}

func TestCodesCommand(t *testing.T) {
	out, _, err := execute(t, "codes")

	require.NoError(t, err)
	for _, c := range lg.Codes() {
		require.Contains(t, out, string(c))
	}
}

func TestCheckCommand_ReportsFailures(t *testing.T) {
	// --- Arrange ---
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "good.lg"), []byte("# Greeting\n- hi"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.lg"), []byte("# Greeting\n- hi {a{b}}"), 0o600))

	// --- Act ---
	out, errOut, err := execute(t, "check", dir)

	// --- Assert ---
	require.Error(t, err)
	require.Contains(t, err.Error(), "1 of 2 files failed")
	require.Contains(t, out, "good.lg")
	require.Contains(t, errOut, string(lg.CodeNestedEntityReference))
	require.Contains(t, errOut, "bad.lg")
}

func TestRootCommand_PrintsCollatedFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.lg"), []byte("# Greeting\n- hi"), 0o600))

	out, _, err := execute(t, dir, "--print")

	require.NoError(t, err)
	require.Equal(t, "# Greeting\n- hi\n", out)
}

func TestRootCommand_SecondRunSkipsItsOwnOutput(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.lg"), []byte("# Greeting\n- hi"), 0o600))

	_, _, err := execute(t, dir, "--print=false", "--output", "file", "--out", dir)
	require.NoError(t, err)
	_, _, err = execute(t, dir, "--print=false", "--output", "file", "--out", dir)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "collate.lg"))
	require.NoError(t, err)
	require.Equal(t, "# Greeting\n- hi\n", string(data))
}

func TestRootCommand_RejectsMissingFolder(t *testing.T) {
	_, _, err := execute(t, filepath.Join(t.TempDir(), "missing"))

	require.ErrorIs(t, err, os.ErrNotExist)
}
