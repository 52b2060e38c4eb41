// Package output renders collated LG documents and delivers them to a file,
// stdout or the system clipboard.
package output

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/gubarz/mslg/internal/lg"
)

// ============================================================================
// Clipboard Interface
// ============================================================================

// Clipboard defines the interface for clipboard operations
type Clipboard interface {
	Copy(text string) error
}

// systemClipboard implements Clipboard using system commands
type systemClipboard struct {
	fallback io.Writer
}

// Copy copies text to the system clipboard
func (c *systemClipboard) Copy(text string) error {
	cmd := c.findClipboardCommand()
	if cmd == nil {
		// No clipboard tool found, just print
		_, err := io.WriteString(c.fallback, text)
		return err
	}
	cmd.Stdin = strings.NewReader(text)
	return cmd.Run()
}

// findClipboardCommand returns the appropriate clipboard command for the system
func (c *systemClipboard) findClipboardCommand() *exec.Cmd {
	switch {
	case commandExists("wl-copy"):
		return exec.Command("wl-copy")
	case commandExists("xclip"):
		return exec.Command("xclip", "-selection", "clipboard")
	case commandExists("xsel"):
		return exec.Command("xsel", "--clipboard", "--input")
	case commandExists("pbcopy"):
		return exec.Command("pbcopy")
	default:
		return nil
	}
}

// commandExists checks if a command is available in PATH
func commandExists(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}

// ============================================================================
// Writer
// ============================================================================

// Mode represents where the collated document goes
type Mode string

const (
	ModeFile  Mode = "file"
	ModePrint Mode = "print"
	ModeCopy  Mode = "copy"
)

// ParseMode validates a mode name
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeFile, ModePrint, ModeCopy:
		return m, nil
	case "":
		return ModeFile, nil
	}
	return "", fmt.Errorf("unsupported output mode: %s (supported: file, print, copy)", s)
}

// Writer delivers formatted documents
type Writer struct {
	mode      Mode
	stdout    io.Writer
	clipboard Clipboard
}

// NewWriter creates a writer for the given mode. A nil stdout means os.Stdout.
func NewWriter(mode Mode, stdout io.Writer) *Writer {
	if stdout == nil {
		stdout = os.Stdout
	}
	return &Writer{
		mode:      mode,
		stdout:    stdout,
		clipboard: &systemClipboard{fallback: stdout},
	}
}

// WithClipboard sets a custom clipboard implementation (useful for testing)
func (w *Writer) WithClipboard(c Clipboard) *Writer {
	w.clipboard = c
	return w
}

// Emit formats doc and delivers it. In file mode the text is written to
// folder/baseName.lg and that path is returned.
func (w *Writer) Emit(doc *lg.Document, folder, baseName string) (string, error) {
	text := Format(doc)

	switch w.mode {
	case ModePrint:
		_, err := io.WriteString(w.stdout, text)
		return "", err
	case ModeCopy:
		return "", w.clipboard.Copy(text)
	default:
		return WriteFile(text, folder, baseName)
	}
}

// WriteFile writes LG text to folder/baseName.lg, creating folder if needed
func WriteFile(text, folder, baseName string) (string, error) {
	if baseName == "" {
		return "", fmt.Errorf("output name must not be empty")
	}
	if err := os.MkdirAll(folder, 0o755); err != nil {
		return "", fmt.Errorf("creating output folder: %w", err)
	}
	path := Path(folder, baseName)
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	return path, nil
}

// Path returns the file WriteFile writes for folder and baseName
func Path(folder, baseName string) string {
	return filepath.Join(folder, strings.TrimSuffix(baseName, ".lg")+".lg")
}
