package pipeline

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gubarz/mslg/internal/lg"
	"github.com/gubarz/mslg/internal/output"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestParseCollateAndWriteOut(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	in := t.TempDir()
	out := filepath.Join(t.TempDir(), "out")
	writeFile(t, filepath.Join(in, "1.lg"), `> greetings
# Greeting
- hi {userName}
- CASE: {age} > 18
    - good day [wPhrase](./2.lg#wPhrase)
- DEFAULT:
    - hey
`)
	writeFile(t, filepath.Join(in, "2.lg"), `$age : string say-as = cardinal
# wPhrase
- welcome
# Greeting
- DEFAULT:
    - yo
- CASE: {age} > 18
    - greetings
`)

	// --- Act ---
	res, err := ParseCollateAndWriteOut(context.Background(), Options{
		InputFolder:    in,
		OutputFolder:   out,
		OutputBaseName: "collate",
		Mode:           output.ModeFile,
	})

	// --- Assert ---
	require.NoError(t, err)
	require.Equal(t, filepath.Join(out, "collate.lg"), res.OutputPath)

	data, err := os.ReadFile(res.OutputPath)
	require.NoError(t, err)
	want := `$userName : String
$age : String say-as = cardinal

# Greeting
- hi {userName}
- CASE: {age} > 18
    - good day [wPhrase]
    - greetings
- DEFAULT:
    - hey
    - yo

# wPhrase
- welcome
`
	require.Equal(t, want, string(data))
}

func TestParseCollateAndWriteOut_Conflict(t *testing.T) {
	t.Parallel()

	in := t.TempDir()
	writeFile(t, filepath.Join(in, "a.lg"), "# Greeting\n- hi {userName}")
	writeFile(t, filepath.Join(in, "b.lg"), "$userName : datetime")

	var stdout bytes.Buffer
	res, err := ParseCollateAndWriteOut(context.Background(), Options{
		InputFolder: in,
		Mode:        output.ModePrint,
		Stdout:      &stdout,
	})

	require.Nil(t, res)
	code, ok := lg.CodeOf(err)
	require.True(t, ok)
	require.Equal(t, lg.CodeDuplicateIncompatibleDef, code)
	require.Empty(t, stdout.String())
}

func TestLoad_CollatesEntitiesAcrossFiles(t *testing.T) {
	t.Parallel()

	in := t.TempDir()
	writeFile(t, filepath.Join(in, "a.lg"), "# Greeting\n- hi {userName}")
	writeFile(t, filepath.Join(in, "b.lg"), "$dateOfBirth : datetime")

	res, err := Load(context.Background(), Options{InputFolder: in})

	require.NoError(t, err)
	require.Len(t, res.Document.Entities, 2)
	require.Equal(t, "dateOfBirth", res.Document.Entities[1].Name)
}

func TestParseCollateAndWriteOut_IgnoresPreviousOutput(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.lg"), "$age : string say-as = cardinal\n# Greeting\n- hi")
	opts := Options{
		InputFolder:    dir,
		OutputFolder:   dir,
		OutputBaseName: "collate",
		Mode:           output.ModeFile,
	}

	// --- Act ---
	first, err := ParseCollateAndWriteOut(context.Background(), opts)
	require.NoError(t, err)
	second, err := ParseCollateAndWriteOut(context.Background(), opts)
	require.NoError(t, err)

	// --- Assert ---
	require.Len(t, second.Files, 1)
	require.Equal(t, []string{"hi"}, second.Document.Template("Greeting").Variations)
	require.Len(t, second.Document.Entity("age").Attributions, 1)

	firstData, err := os.ReadFile(first.OutputPath)
	require.NoError(t, err)
	secondData, err := os.ReadFile(second.OutputPath)
	require.NoError(t, err)
	require.Equal(t, string(firstData), string(secondData))
}
