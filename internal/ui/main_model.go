package ui

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/gubarz/mslg/internal/lg"
	"github.com/gubarz/mslg/internal/output"
)

// ============================================================================
// String Builder Pool - reduces GC pressure from rendering
// ============================================================================

var builderPool = sync.Pool{
	New: func() interface{} {
		return &strings.Builder{}
	},
}

func getBuilder() *strings.Builder {
	b := builderPool.Get().(*strings.Builder)
	b.Reset()
	return b
}

func putBuilder(b *strings.Builder) {
	if b.Cap() < 64*1024 { // Don't pool huge builders
		builderPool.Put(b)
	}
}

// ============================================================================
// Items
// ============================================================================

type itemKind int

const (
	kindTemplate itemKind = iota
	kindEntity
)

// item is one row of the browser: a template or an entity
type item struct {
	kind     itemKind
	name     string
	detail   string // short summary shown next to the name
	preview  string // LG text of the item
	haystack string // lower-cased search text
}

func newTemplateItem(t lg.Template) item {
	detail := fmt.Sprintf("%d variations", len(t.Variations))
	if n := len(t.ConditionalResponses); n > 0 {
		detail += fmt.Sprintf(", %d conditions", n)
	}
	preview := output.FormatTemplate(t)
	return item{
		kind:     kindTemplate,
		name:     t.Name,
		detail:   detail,
		preview:  preview,
		haystack: strings.ToLower(preview),
	}
}

func newEntityItem(e lg.Entity) item {
	preview := output.FormatEntity(e)
	return item{
		kind:     kindEntity,
		name:     "$" + e.Name,
		detail:   string(e.EntityType),
		preview:  preview,
		haystack: strings.ToLower(preview),
	}
}

// buildItems lists templates first, then entities
func buildItems(doc *lg.Document) []item {
	if doc == nil {
		return nil
	}
	items := make([]item, 0, len(doc.Templates)+len(doc.Entities))
	for _, t := range doc.Templates {
		items = append(items, newTemplateItem(t))
	}
	for _, e := range doc.Entities {
		items = append(items, newEntityItem(e))
	}
	return items
}

// matchesQuery checks if the item matches all search words
func (it *item) matchesQuery(words []string) bool {
	for _, word := range words {
		if !strings.Contains(it.haystack, word) {
			return false
		}
	}
	return true
}

// filterItems returns the items matching every word of query
func filterItems(items []item, query string) []item {
	query = strings.TrimSpace(query)
	if query == "" {
		return items
	}
	words := strings.Fields(strings.ToLower(query))
	filtered := make([]item, 0, len(items))
	for i := range items {
		if items[i].matchesQuery(words) {
			filtered = append(filtered, items[i])
		}
	}
	return filtered
}

// ============================================================================
// Debounce
// ============================================================================

// filterMsg triggers filtering after debounce
type filterMsg struct{}

// debounceFilter returns a command that triggers filtering after a delay
func debounceFilter() tea.Cmd {
	return tea.Tick(50*time.Millisecond, func(t time.Time) tea.Msg {
		return filterMsg{}
	})
}

// ============================================================================
// Main Model
// ============================================================================

// mainModel is the Bubble Tea model for browsing a collated document
type mainModel struct {
	width     int
	height    int
	textInput textinput.Model
	quitting  bool

	summary  string
	items    []item
	filtered []item
	cursor   int
	offset   int // viewport scroll offset
}

// newMainModel creates a new mainModel over doc
func newMainModel(doc *lg.Document) mainModel {
	ti := textinput.New()
	ti.Placeholder = "Type to search..."
	ti.Focus()
	ti.CharLimit = 256
	ti.Width = 50

	items := buildItems(doc)
	return mainModel{
		textInput: ti,
		summary:   doc.Summary(),
		items:     items,
		filtered:  items,
	}
}

// Init implements tea.Model
func (m mainModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model
func (m mainModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.textInput.Width = msg.Width - 4
	case tea.KeyMsg:
		if cmd := m.handleKey(msg); cmd != nil {
			return m, cmd
		}
	case filterMsg:
		m.applyFilter()
		return m, nil
	}

	prevQuery := m.textInput.Value()
	var tiCmd tea.Cmd
	m.textInput, tiCmd = m.textInput.Update(msg)
	cmds = append(cmds, tiCmd)

	// Only trigger debounced filter if query changed
	if m.textInput.Value() != prevQuery {
		cmds = append(cmds, debounceFilter())
	}

	return m, tea.Batch(cmds...)
}

// handleKey processes keyboard input
func (m *mainModel) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "ctrl+c", "esc":
		m.quitting = true
		return tea.Quit
	case "up", "ctrl+p":
		m.moveCursor(-1)
	case "down", "ctrl+n":
		m.moveCursor(1)
	case "pgup":
		m.moveCursor(-10)
	case "pgdown":
		m.moveCursor(10)
	case "home", "ctrl+a":
		m.cursor = 0
	case "end", "ctrl+e":
		m.cursor = max(0, len(m.filtered)-1)
	}
	return nil
}

// moveCursor moves the cursor by delta, clamping to valid range
func (m *mainModel) moveCursor(delta int) {
	m.cursor = clamp(m.cursor+delta, 0, max(0, len(m.filtered)-1))
}

// applyFilter filters the item list based on the search query
func (m *mainModel) applyFilter() {
	m.filtered = filterItems(m.items, m.textInput.Value())
	m.cursor = clamp(m.cursor, 0, max(0, len(m.filtered)-1))
}

// ============================================================================
// Rendering
// ============================================================================

// View implements tea.Model
func (m mainModel) View() string {
	if m.quitting {
		return ""
	}

	width := max(m.width, 80)
	height := max(m.height, 24)

	preview := m.renderPreview(width, height/2)
	previewLines := countLines(preview)

	inputLines := 3 // divider + info + input
	listHeight := max(height-previewLines-inputLines, 3)
	list := m.renderList(listHeight)
	listLines := countLines(list)

	padding := max(height-previewLines-listLines-inputLines, 0)

	b := getBuilder()
	defer putBuilder(b)
	b.WriteString(preview)
	b.WriteString(list)
	b.WriteString(strings.Repeat("\n", padding))
	b.WriteString(m.renderInput(width))
	return b.String()
}

// renderPreview renders the LG text of the selected item at a fixed height
func (m mainModel) renderPreview(width, maxLines int) string {
	b := getBuilder()
	defer putBuilder(b)
	lines := 0

	if m.cursor < len(m.filtered) {
		text := truncateLines(strings.TrimRight(m.filtered[m.cursor].preview, "\n"), maxLines)
		for i, line := range strings.Split(text, "\n") {
			style := styles.PreviewBody
			if i == 0 {
				style = styles.PreviewHeader
			}
			b.WriteString(style.Render(line))
			b.WriteString("\n")
			lines++
		}
	}

	// Pad to fixed height
	for lines < maxLines {
		b.WriteString("\n")
		lines++
	}

	b.WriteString(styles.Divider.Render(strings.Repeat("─", width)))
	b.WriteString("\n")
	return b.String()
}

// renderList renders the scrollable list of items
func (m *mainModel) renderList(maxHeight int) string {
	if len(m.filtered) == 0 {
		return ""
	}

	start, end := scrollWindow(m.cursor, len(m.filtered), maxHeight, &m.offset)

	b := getBuilder()
	defer putBuilder(b)
	for i := start; i < end; i++ {
		b.WriteString(m.renderListItem(m.filtered[i], i == m.cursor))
		b.WriteString("\n")
	}
	return b.String()
}

// renderListItem renders a single list row
func (m mainModel) renderListItem(it item, selected bool) string {
	nameStyle := styles.Template
	if it.kind == kindEntity {
		nameStyle = styles.Entity
	}
	detailStyle := styles.Dim
	cursor := "  "
	if selected {
		nameStyle = styles.WithSelection(nameStyle)
		detailStyle = styles.WithSelection(detailStyle)
		cursor = styles.Cursor.Render("▶ ")
	}
	name := fmt.Sprintf("%-32s", truncateString(it.name, 32))
	return cursor + nameStyle.Render(name) + detailStyle.Render("  "+it.detail)
}

// renderInput renders the input section at the bottom
func (m mainModel) renderInput(width int) string {
	b := getBuilder()
	defer putBuilder(b)
	b.WriteString(styles.Divider.Render(strings.Repeat("─", width)))
	b.WriteString("\n")
	b.WriteString(styles.Dim.Render(fmt.Sprintf("  %d/%d", len(m.filtered), len(m.items))))
	b.WriteString(" • ")
	b.WriteString(styles.Dim.Render(m.summary))
	b.WriteString(" • ")
	b.WriteString(styles.Dim.Render("ESC exit"))
	b.WriteString("\n")
	b.WriteString(m.textInput.View())
	return b.String()
}

// ============================================================================
// Helpers
// ============================================================================

// clamp restricts v to the range [minV, maxV]
func clamp(v, minV, maxV int) int {
	if v < minV {
		return minV
	}
	if v > maxV {
		return maxV
	}
	return v
}

// countLines counts the number of lines in a string
func countLines(s string) int {
	if s == "" {
		return 0
	}
	return strings.Count(s, "\n") + 1
}

// scrollWindow calculates the visible range for a scrollable list
func scrollWindow(cursor, total, height int, offset *int) (start, end int) {
	if cursor < *offset {
		*offset = cursor
	}
	if cursor >= *offset+height {
		*offset = cursor - height + 1
	}
	maxOffset := max(0, total-height)
	*offset = clamp(*offset, 0, maxOffset)

	start = *offset
	end = min(start+height, total)
	return
}

// truncateString truncates a string to maxLen with ellipsis
func truncateString(s string, maxLen int) string {
	if maxLen <= 3 || len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

// truncateLines truncates text to maxLines
func truncateLines(text string, maxLines int) string {
	lines := strings.Split(text, "\n")
	if maxLines > 0 && len(lines) > maxLines {
		lines = append(lines[:maxLines-1], "...")
	}
	return strings.Join(lines, "\n")
}
