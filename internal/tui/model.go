package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/CaptShanks/repoprism/internal/parser"
)

const otherMessagesTitle = "Other messages"

// row is one collapsible entry of the browser: a package, or the bucket of
// message codes that could not be tied to a package.
type row struct {
	title      string
	isPackage  bool
	searchable string
	body       []treeLine
	count      int // messages under the row
}

// Model represents the TUI state
type Model struct {
	result        *parser.Result
	rows          []row
	theme         Theme
	cursor        int
	expanded      map[int]bool
	viewport      viewport.Model
	ready         bool
	width         int
	height        int
	searching     bool
	searchInput   textinput.Model
	searchQuery   string
	searchMatches []int
	currentMatch  int
	pendingG      bool  // Track if 'g' was pressed, waiting for second 'g'
	rowLineStarts []int // rendered line offset per displayed row
	version       string
}

// NewModel creates a browser over res.
func NewModel(res *parser.Result, version string) Model {
	ti := textinput.New()
	ti.Placeholder = "Search..."
	ti.CharLimit = 100
	ti.Width = 40

	theme := NewTheme(lipgloss.DefaultRenderer())

	return Model{
		result:        res,
		rows:          buildRows(theme, res),
		theme:         theme,
		expanded:      make(map[int]bool),
		searchInput:   ti,
		searchMatches: []int{},
		version:       version,
	}
}

func buildRows(theme Theme, res *parser.Result) []row {
	var rows []row
	for _, pkg := range res.Packages.All() {
		terms := []string{pkg.ID}
		count := len(pkg.Messages)
		for name, code := range pkg.MessageCodes().All() {
			terms = append(terms, name)
			count += len(code.Messages)
		}
		for name, f := range pkg.Files.All() {
			terms = append(terms, name)
			for codeName, code := range f.MessageCodes().All() {
				terms = append(terms, codeName)
				count += len(code.Messages)
			}
		}
		rows = append(rows, row{
			title:      pkg.ID,
			isPackage:  true,
			searchable: strings.ToLower(strings.Join(terms, " ")),
			body:       packageLines(theme, pkg, 0)[1:],
			count:      count,
		})
	}

	if res.Unaccountable.Len() > 0 {
		terms := []string{otherMessagesTitle}
		count := 0
		for name, code := range res.Unaccountable.All() {
			terms = append(terms, name)
			count += len(code.Messages)
		}
		rows = append(rows, row{
			title:      otherMessagesTitle,
			searchable: strings.ToLower(strings.Join(terms, " ")),
			body:       codeLines(theme, res.Unaccountable, 1),
			count:      count,
		})
	}
	return rows
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		headerHeight := 4 // Title + summary + blank line
		footerHeight := 3 // Help text
		if m.result.RepomanSaid != "" {
			footerHeight++
		}

		if !m.ready {
			m.viewport = viewport.New(msg.Width-4, msg.Height-headerHeight-footerHeight)
			m.viewport.YPosition = headerHeight
			m.ready = true
		} else {
			m.viewport.Width = msg.Width - 4
			m.viewport.Height = msg.Height - headerHeight - footerHeight
		}
		m.updateViewportContent()

	case tea.KeyMsg:
		if m.searching {
			switch msg.String() {
			case "enter":
				m.searching = false
				m.searchQuery = m.searchInput.Value()
				m.performSearch()
				m.updateViewportContent()
			case "esc":
				m.searching = false
				m.clearSearch()
			default:
				m.searchInput, cmd = m.searchInput.Update(msg)
				m.searchQuery = m.searchInput.Value()
				m.performSearch()
				m.updateViewportContent()
				cmds = append(cmds, cmd)
			}
		} else {
			return m.handleNormalKey(msg)
		}

	case tea.MouseMsg:
		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// normalKeyHandler handles a single key in normal mode. Returns (model, cmd, quit).
type normalKeyHandler func(m Model) (Model, tea.Cmd, bool)

var normalKeyHandlers = map[string]normalKeyHandler{
	"q":         func(m Model) (Model, tea.Cmd, bool) { return m, tea.Quit, true },
	"ctrl+c":    func(m Model) (Model, tea.Cmd, bool) { return m, tea.Quit, true },
	"up":        handleKeyUp,
	"k":         handleKeyUp,
	"down":      handleKeyDown,
	"j":         handleKeyDown,
	"enter":     handleKeyToggle,
	" ":         handleKeyToggle,
	"l":         handleKeyExpandCurrent,
	"right":     handleKeyExpandCurrent,
	"h":         handleKeyCollapseCurrent,
	"left":      handleKeyCollapseCurrent,
	"backspace": handleKeyCollapseCurrent,
	"e":         func(m Model) (Model, tea.Cmd, bool) { m.setAllExpanded(true); return m, nil, false },
	"c":         func(m Model) (Model, tea.Cmd, bool) { m.setAllExpanded(false); return m, nil, false },
	"/":         handleKeySearch,
	"n":         func(m Model) (Model, tea.Cmd, bool) { m.moveMatch(1); return m, nil, false },
	"N":         func(m Model) (Model, tea.Cmd, bool) { m.moveMatch(-1); return m, nil, false },
	"esc":       func(m Model) (Model, tea.Cmd, bool) { m.clearSearch(); return m, nil, false },
	"d":         handleKeyHalfPageDown,
	"ctrl+d":    handleKeyHalfPageDown,
	"u":         handleKeyHalfPageUp,
	"ctrl+u":    handleKeyHalfPageUp,
	"g":         handleKeyG,
	"G":         handleKeyBottom,
	"pgup":      handleKeyPageUp,
	"pgdown":    handleKeyPageDown,
}

func (m Model) handleNormalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key != "g" {
		m.pendingG = false
	}
	handler, ok := normalKeyHandlers[key]
	if !ok {
		return m, nil
	}
	m, cmd, _ := handler(m)
	return m, cmd
}

func handleKeyUp(m Model) (Model, tea.Cmd, bool) {
	if m.cursor > 0 {
		m.cursor--
		m.updateViewportContent()
		m.ensureCursorVisible()
	}
	return m, nil, false
}

func handleKeyDown(m Model) (Model, tea.Cmd, bool) {
	if m.cursor < len(m.displayedRows())-1 {
		m.cursor++
		m.updateViewportContent()
		m.ensureCursorVisible()
	}
	return m, nil, false
}

func handleKeyToggle(m Model) (Model, tea.Cmd, bool) {
	if idx, ok := m.currentRow(); ok {
		m.expanded[idx] = !m.expanded[idx]
		m.updateViewportContent()
		m.ensureCursorVisible()
	}
	return m, nil, false
}

func handleKeyExpandCurrent(m Model) (Model, tea.Cmd, bool) {
	if idx, ok := m.currentRow(); ok && !m.expanded[idx] {
		m.expanded[idx] = true
		m.updateViewportContent()
		m.ensureCursorVisible()
	}
	return m, nil, false
}

func handleKeyCollapseCurrent(m Model) (Model, tea.Cmd, bool) {
	if idx, ok := m.currentRow(); ok && m.expanded[idx] {
		m.expanded[idx] = false
		m.updateViewportContent()
		m.ensureCursorVisible()
	}
	return m, nil, false
}

func handleKeySearch(m Model) (Model, tea.Cmd, bool) {
	m.searching = true
	m.searchInput.SetValue(m.searchQuery)
	m.searchInput.Focus()
	return m, textinput.Blink, false
}

func handleKeyHalfPageDown(m Model) (Model, tea.Cmd, bool) {
	m.viewport.SetYOffset(m.viewport.YOffset + m.viewport.Height/2)
	return m, nil, false
}

func handleKeyHalfPageUp(m Model) (Model, tea.Cmd, bool) {
	m.viewport.SetYOffset(max(m.viewport.YOffset-m.viewport.Height/2, 0))
	return m, nil, false
}

func handleKeyPageDown(m Model) (Model, tea.Cmd, bool) {
	m.viewport.SetYOffset(m.viewport.YOffset + m.viewport.Height)
	return m, nil, false
}

func handleKeyPageUp(m Model) (Model, tea.Cmd, bool) {
	m.viewport.SetYOffset(max(m.viewport.YOffset-m.viewport.Height, 0))
	return m, nil, false
}

// handleKeyG handles the g key for gg navigation
func handleKeyG(m Model) (Model, tea.Cmd, bool) {
	if !m.pendingG {
		m.pendingG = true
		return m, nil, false
	}
	m.pendingG = false
	m.cursor = 0
	m.updateViewportContent()
	m.viewport.GotoTop()
	return m, nil, false
}

func handleKeyBottom(m Model) (Model, tea.Cmd, bool) {
	if n := len(m.displayedRows()); n > 0 {
		m.cursor = n - 1
	}
	m.updateViewportContent()
	m.ensureCursorVisible()
	return m, nil, false
}

// displayedRows returns indices into m.rows that are currently shown: the
// search matches while a query is active, every row otherwise.
func (m *Model) displayedRows() []int {
	if m.searchQuery != "" {
		return m.searchMatches
	}
	indices := make([]int, len(m.rows))
	for i := range m.rows {
		indices[i] = i
	}
	return indices
}

func (m *Model) currentRow() (int, bool) {
	displayed := m.displayedRows()
	if m.cursor < 0 || m.cursor >= len(displayed) {
		return 0, false
	}
	return displayed[m.cursor], true
}

func (m *Model) setAllExpanded(expanded bool) {
	for _, idx := range m.displayedRows() {
		m.expanded[idx] = expanded
	}
	m.updateViewportContent()
	m.ensureCursorVisible()
}

// moveMatch cycles the cursor through the search matches.
func (m *Model) moveMatch(delta int) {
	if m.searchQuery == "" || len(m.searchMatches) == 0 {
		return
	}
	n := len(m.searchMatches)
	m.currentMatch = ((m.currentMatch+delta)%n + n) % n
	m.cursor = m.currentMatch
	m.updateViewportContent()
	m.ensureCursorVisible()
}

// clearSearch clears the current search
func (m *Model) clearSearch() {
	m.searchQuery = ""
	m.searchMatches = []int{}
	m.currentMatch = 0
	m.searchInput.SetValue("")
	m.cursor = min(m.cursor, max(len(m.rows)-1, 0))
	m.updateViewportContent()
}

// fuzzyMatch returns true if all characters in query appear in text in order
// (not necessarily consecutive). E.g. "stlvar" matches "qa.stalevar".
func fuzzyMatch(text, query string) bool {
	text = strings.ToLower(text)
	query = strings.ToLower(query)
	if query == "" {
		return true
	}
	qi := 0
	for i := 0; i < len(text) && qi < len(query); i++ {
		if text[i] == query[qi] {
			qi++
		}
	}
	return qi == len(query)
}

func (m *Model) performSearch() {
	m.searchMatches = []int{}
	m.currentMatch = 0
	m.cursor = 0

	terms := strings.Fields(strings.ToLower(m.searchQuery))
	if len(terms) == 0 {
		m.searchQuery = ""
		return
	}

	for i, r := range m.rows {
		allMatch := true
		for _, term := range terms {
			if !fuzzyMatch(r.searchable, term) {
				allMatch = false
				break
			}
		}
		if allMatch {
			m.searchMatches = append(m.searchMatches, i)
		}
	}
}

func (m *Model) updateViewportContent() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.renderRows())
}

// ensureCursorVisible scrolls the viewport to make the current cursor visible
func (m *Model) ensureCursorVisible() {
	if !m.ready || m.cursor < 0 || m.cursor >= len(m.rowLineStarts) {
		return
	}

	lineNum := m.rowLineStarts[m.cursor]
	topLine := m.viewport.YOffset
	bottomLine := topLine + m.viewport.Height - 1

	if lineNum < topLine {
		m.viewport.SetYOffset(lineNum)
	} else if lineNum > bottomLine {
		m.viewport.SetYOffset(max(lineNum-m.viewport.Height+1, 0))
	}
}

func (m *Model) renderRows() string {
	var b strings.Builder
	lineCount := 0

	displayed := m.displayedRows()
	m.rowLineStarts = make([]int, len(displayed))

	if len(displayed) == 0 {
		if m.searchQuery != "" {
			b.WriteString(m.theme.Muted.Render(fmt.Sprintf("Nothing matches search '%s'. Press Esc to clear.", m.searchQuery)))
		} else {
			b.WriteString(m.theme.Muted.Render("Repoman reported nothing."))
		}
		b.WriteString("\n")
		return b.String()
	}

	for displayIdx, rowIdx := range displayed {
		m.rowLineStarts[displayIdx] = lineCount
		r := m.rows[rowIdx]

		b.WriteString(m.renderRowLine(r, m.expanded[rowIdx], displayIdx == m.cursor))
		b.WriteString("\n")
		lineCount++

		if m.expanded[rowIdx] {
			body := m.renderBody(r.body)
			b.WriteString(body)
			lineCount += strings.Count(body, "\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(m.theme.Muted.Render("── End of Report ──"))
	b.WriteString("\n")

	// Padding after the marker so the viewport has room to scroll
	// the last row's expanded content fully into view
	for i := 0; i < m.viewport.Height; i++ {
		b.WriteString("\n")
	}

	return b.String()
}

// renderBody indents and word-wraps the tree lines under an expanded row.
func (m Model) renderBody(lines []treeLine) string {
	var b strings.Builder
	for _, l := range lines {
		indent := strings.Repeat(indentPrefix, l.depth+2)
		wrapped := wrapText(l.text, m.viewport.Width-len(indent))
		for _, part := range strings.Split(wrapped, "\n") {
			b.WriteString(indent + part + "\n")
		}
	}
	return b.String()
}

func wrapText(s string, width int) string {
	if width <= 10 {
		return s
	}
	return wordwrap.String(s, width)
}

func (m Model) renderRowLine(r row, expanded, selected bool) string {
	indicator := "▶"
	if expanded {
		indicator = "▼"
	}
	count := fmt.Sprintf(" (%d messages)", r.count)

	if selected {
		line := indicator + " " + r.title + count
		if target := m.width - 4; target > 0 && len(line) < target {
			line += strings.Repeat(" ", target-len(line))
		}
		return m.theme.Selected.Render(line)
	}

	title := r.title
	if m.searchQuery != "" {
		title = m.highlightMatch(title, m.searchQuery)
	}
	style := m.theme.OtherHeader
	if r.isPackage {
		style = m.theme.Package
	}
	return m.theme.Muted.Render(indicator) + " " + style.Render(title) + m.theme.Muted.Render(count)
}

func (m Model) highlightMatch(text, query string) string {
	lower := strings.ToLower(text)
	lowerQuery := strings.ToLower(strings.TrimSpace(query))

	idx := strings.Index(lower, lowerQuery)
	if idx == -1 || lowerQuery == "" {
		return text
	}

	before := text[:idx]
	match := text[idx : idx+len(lowerQuery)]
	after := text[idx+len(lowerQuery):]

	return before + m.theme.Match.Render(match) + after
}

func (m Model) viewHeader() string {
	var b strings.Builder
	b.WriteString(m.theme.Header.Render("repoprism - Repoman Results"))
	if m.version != "" {
		b.WriteString(m.theme.Muted.Render(" v" + m.version))
	}
	b.WriteString("\n")

	s := m.result.Stats()
	summary := fmt.Sprintf("  %d packages, %d files, %d message codes, %d messages",
		s.Packages, s.Files, s.MessageCodes+s.Unaccountable, s.Messages)
	if s.Unrecognized > 0 {
		summary += fmt.Sprintf(", %d unrecognized lines", s.Unrecognized)
	}
	b.WriteString(m.theme.Muted.Render(summary))
	b.WriteString("\n\n")
	return b.String()
}

// viewSearchBar renders the search bar or match info.
func (m Model) viewSearchBar() string {
	if m.searching {
		return m.theme.Search.Render("Search: ") + m.searchInput.View() + "\n\n"
	}
	if m.searchQuery != "" {
		return m.theme.Search.Render(fmt.Sprintf("Search: %q (%d/%d matches)", m.searchQuery, m.currentMatch+1, len(m.searchMatches))) + "\n\n"
	}
	return ""
}

func (m Model) viewHelpFooter() string {
	return "j/k/↑↓: navigate • l/→: expand • h/←: collapse • d/u: scroll • e/c: all • gg/G: top/bottom • /: search • n/N: next/prev • q: quit"
}

// View renders the UI
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	var b strings.Builder
	b.WriteString(m.viewHeader())
	b.WriteString(m.viewSearchBar())
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	b.WriteString(m.theme.Help.Render(m.viewHelpFooter()))
	if m.result.RepomanSaid != "" {
		b.WriteString("\n")
		b.WriteString(m.theme.Remark.Render(m.result.RepomanSaid))
	}
	return lipgloss.NewStyle().Padding(1, 2).Render(b.String())
}

// Run starts the browser on the alternate screen and blocks until the user quits.
func Run(res *parser.Result, version string) error {
	p := tea.NewProgram(
		NewModel(res, version),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}
	return nil
}
