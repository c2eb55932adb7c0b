// Package browse is the interactive terminal view over the retained postings.
package browse

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/amishk599/hiringintel/internal/board"
	"github.com/amishk599/hiringintel/internal/filter"
	"github.com/amishk599/hiringintel/internal/model"
	"github.com/amishk599/hiringintel/internal/report"
)

// Lines per posting in the list view (title + subtitle + blank separator).
const itemHeight = 3

type viewState int

const (
	viewList viewState = iota
	viewDetail
	viewReport
)

var (
	borderStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("39"))

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")).
			Padding(0, 1)

	statusBarStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Foreground(lipgloss.Color("252")).
			Background(lipgloss.Color("236"))

	titleStyle = lipgloss.NewStyle().
			Bold(true)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	selectedTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("15")).
				Background(lipgloss.Color("24"))

	selectedSubtitleStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("252")).
				Background(lipgloss.Color("24"))

	detailLabelStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("39")).
				Width(12)

	detailTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("15")).
				MarginBottom(1)

	dividerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	labelColors = map[model.Label]lipgloss.Color{
		model.LabelStrong:      lipgloss.Color("42"),
		model.LabelMedium:      lipgloss.Color("214"),
		model.LabelExploratory: lipgloss.Color("75"),
		model.LabelWeak:        lipgloss.Color("245"),
	}
)

// Board is what the browser needs from the application state.
type Board interface {
	Snapshot() board.State
	ToggleBookmark(ctx context.Context, id string) (bool, error)
	Sync(ctx context.Context, limit int) (board.SyncOutcome, error)
}

// ScanFunc runs a manual scan, normally the scheduler's Trigger.
type ScanFunc func(ctx context.Context) error

type scanDoneMsg struct {
	err error
}

type syncDoneMsg struct {
	out board.SyncOutcome
	err error
}

type bookmarkDoneMsg struct {
	id    string
	saved bool
	err   error
}

type browseModel struct {
	board Board
	scan  ScanFunc
	now   func() time.Time

	all       []model.Posting
	visible   []model.Posting
	savedOnly bool
	cursor    int

	listViewport   viewport.Model
	detailViewport viewport.Model
	width          int
	height         int
	ready          bool
	view           viewState
	detailID       string // posting shown in the detail view

	spinner spinner.Model
	busy    string // non-empty while a scan or sync runs
	status  string
	failed  bool // status is an error
}

func newBrowseModel(b Board, scan ScanFunc, now func() time.Time) browseModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	m := browseModel{board: b, scan: scan, now: now, spinner: s}
	m.refresh()
	return m
}

func (m browseModel) Init() tea.Cmd {
	return nil
}

func (m browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.recalcLayout()
		return m, nil

	case spinner.TickMsg:
		if m.busy == "" {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case scanDoneMsg:
		m.busy = ""
		switch {
		case errors.Is(msg.err, model.ErrScanInFlight):
			m.setStatus("A scan is already running", true)
		case msg.err != nil:
			m.setStatus("Scan failed: "+msg.err.Error(), true)
		default:
			m.refresh()
			m.setStatus(fmt.Sprintf("Scan complete: %d postings retained", len(m.all)), false)
		}
		m.recalcContent()
		return m, nil

	case syncDoneMsg:
		m.busy = ""
		switch {
		case errors.Is(msg.err, model.ErrSyncNotConfigured):
			m.setStatus("Sheet sync is not configured; run `hiringintel configure`", true)
		case errors.Is(msg.err, model.ErrNothingToSync):
			m.setStatus("Nothing to sync yet", true)
		case msg.err != nil:
			m.setStatus("Sync Failed: "+msg.err.Error(), true)
		default:
			m.setStatus(msg.out.Message(), !msg.out.OK())
		}
		return m, nil

	case bookmarkDoneMsg:
		if msg.err != nil {
			m.setStatus("Bookmark failed: "+msg.err.Error(), true)
			return m, nil
		}
		m.refresh()
		if msg.saved {
			m.setStatus("Saved", false)
		} else {
			m.setStatus("Removed from saved", false)
		}
		m.recalcContent()
		if m.view == viewDetail {
			m.detailViewport.SetContent(m.renderDetail())
		}
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case viewDetail:
			return m.updateDetailView(msg)
		case viewReport:
			return m.updateReportView(msg)
		}
		return m.updateListView(msg)
	}

	return m, nil
}

func (m browseModel) updateListView(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		m.moveCursor(-1)
		return m, nil
	case "down", "j":
		m.moveCursor(1)
		return m, nil
	case "enter":
		if p, ok := m.selected(); ok {
			m.openDetail(p)
		}
		return m, nil
	case "b", " ":
		return m, m.bookmarkCmd()
	case "f":
		m.savedOnly = !m.savedOnly
		m.refresh()
		m.recalcContent()
		return m, nil
	case "r":
		m.view = viewReport
		m.detailViewport = viewport.New(max(m.width-4, 20), max(m.height-4, 5))
		m.detailViewport.SetContent(report.Daily(m.all, m.now()))
		return m, nil
	case "n":
		return m.startScan()
	case "s":
		return m.startSync()
	case "o":
		if p, ok := m.selected(); ok {
			openURL(p.URL)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.listViewport, cmd = m.listViewport.Update(msg)
	return m, cmd
}

func (m browseModel) updateDetailView(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc", "backspace":
		m.view = viewList
		return m, nil
	case "b", " ":
		return m, m.bookmarkCmd()
	case "o":
		if p, ok := m.selected(); ok {
			openURL(p.URL)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.detailViewport, cmd = m.detailViewport.Update(msg)
	return m, cmd
}

func (m browseModel) updateReportView(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc", "backspace", "r":
		m.view = viewList
		return m, nil
	}

	var cmd tea.Cmd
	m.detailViewport, cmd = m.detailViewport.Update(msg)
	return m, cmd
}

func (m browseModel) startScan() (tea.Model, tea.Cmd) {
	if m.busy != "" || m.scan == nil {
		return m, nil
	}
	m.busy = "Scanning"
	m.status = ""
	scan := m.scan
	return m, tea.Batch(m.spinner.Tick, func() tea.Msg {
		return scanDoneMsg{err: scan(context.Background())}
	})
}

func (m browseModel) startSync() (tea.Model, tea.Cmd) {
	if m.busy != "" {
		return m, nil
	}
	m.busy = "Syncing"
	m.status = ""
	b := m.board
	return m, tea.Batch(m.spinner.Tick, func() tea.Msg {
		out, err := b.Sync(context.Background(), board.ManualSyncLimit)
		return syncDoneMsg{out: out, err: err}
	})
}

func (m browseModel) bookmarkCmd() tea.Cmd {
	p, ok := m.selected()
	if !ok {
		return nil
	}
	b, id := m.board, p.ID
	return func() tea.Msg {
		saved, err := b.ToggleBookmark(context.Background(), id)
		return bookmarkDoneMsg{id: id, saved: saved, err: err}
	}
}

// refresh reloads postings from the board and reapplies the saved filter.
func (m *browseModel) refresh() {
	m.all = m.board.Snapshot().Postings
	var f model.PostingFilter
	if m.savedOnly {
		f = filter.SavedOnly()
	}
	m.visible = filter.Apply(m.all, f)
	m.cursor = clamp(m.cursor, 0, max(len(m.visible)-1, 0))
}

func (m *browseModel) setStatus(s string, failed bool) {
	m.status = s
	m.failed = failed
}

func (m browseModel) selected() (model.Posting, bool) {
	if m.view == viewDetail {
		for _, p := range m.all {
			if p.ID == m.detailID {
				return p, true
			}
		}
		return model.Posting{}, false
	}
	if len(m.visible) == 0 {
		return model.Posting{}, false
	}
	return m.visible[m.cursor], true
}

func (m *browseModel) openDetail(p model.Posting) {
	m.view = viewDetail
	m.detailID = p.ID
	m.detailViewport = viewport.New(max(m.width-4, 20), max(m.height-4, 5))
	m.detailViewport.SetContent(m.renderDetail())
}

func (m *browseModel) moveCursor(delta int) {
	m.cursor = clamp(m.cursor+delta, 0, max(len(m.visible)-1, 0))
	m.recalcContent()
	m.ensureCursorVisible()
}

func (m *browseModel) ensureCursorVisible() {
	top := m.cursor * itemHeight
	bottom := top + itemHeight - 1

	if top < m.listViewport.YOffset {
		m.listViewport.SetYOffset(top)
	} else if bottom >= m.listViewport.YOffset+m.listViewport.Height {
		m.listViewport.SetYOffset(bottom - m.listViewport.Height + 1)
	}
}

func (m *browseModel) recalcLayout() {
	// Header (1 line) + border top/bottom (2) + status bar (1) = 4 lines overhead.
	w := max(m.width-2, 20)
	h := max(m.height-4, 5)

	if !m.ready {
		m.listViewport = viewport.New(w, h)
		m.ready = true
	} else {
		m.listViewport.Width = w
		m.listViewport.Height = h
	}
	if m.view != viewList {
		m.detailViewport.Width = max(m.width-4, 20)
		m.detailViewport.Height = max(m.height-4, 5)
	}
	m.recalcContent()
}

func (m *browseModel) recalcContent() {
	m.listViewport.SetContent(renderPostings(m.visible, m.cursor))
}

func (m browseModel) View() string {
	if !m.ready {
		return "Initializing..."
	}

	switch m.view {
	case viewDetail:
		return m.viewDetail()
	case viewReport:
		return m.viewReport()
	}
	return m.viewList()
}

func (m browseModel) viewList() string {
	st := report.ComputeStats(m.all, m.now())
	title := "Hiring Intel"
	if m.savedOnly {
		title += " (saved only)"
	}
	header := headerStyle.Render(fmt.Sprintf("%s  %d total | %d today | %d strong | %d saved",
		title, st.Total, st.FoundToday, st.Strong, st.Saved))

	pane := borderStyle.Width(max(m.width-2, 20)).Render(m.listViewport.View())

	help := " ↑/↓ move  enter detail  b save  f saved-only  r report  n scan  s sync  o open  q quit"
	return header + "\n" + pane + "\n" + m.statusBar(help)
}

func (m browseModel) viewDetail() string {
	title := detailTitleStyle.Render("Posting")
	content := borderStyle.Width(max(m.width-2, 20)).Render(m.detailViewport.View())
	return title + "\n" + content + "\n" + m.statusBar(" o open link  b save  esc back  ↑/↓ scroll  q quit")
}

func (m browseModel) viewReport() string {
	title := detailTitleStyle.Render("Daily Report")
	content := borderStyle.Width(max(m.width-2, 20)).Render(m.detailViewport.View())
	return title + "\n" + content + "\n" + m.statusBar(" esc back  ↑/↓ scroll  q quit")
}

func (m browseModel) statusBar(help string) string {
	text := help
	switch {
	case m.busy != "":
		text = fmt.Sprintf(" %s %s...", m.spinner.View(), m.busy)
	case m.status != "" && m.failed:
		text = " " + errorStyle.Render(m.status)
	case m.status != "":
		text = " " + m.status
	}
	return statusBarStyle.Width(max(m.width, 20)).Render(text)
}

func (m browseModel) renderDetail() string {
	p, ok := m.selected()
	if !ok {
		return "  (nothing selected)"
	}
	var b strings.Builder

	addField := func(label, value string) {
		if value == "" {
			return
		}
		b.WriteString(detailLabelStyle.Render(label))
		b.WriteString(value)
		b.WriteByte('\n')
	}

	addField("Title", p.Title)
	addField("Company", p.Company)
	addField("Location", p.Location)
	addField("Match", fmt.Sprintf("%s (%.2f)", p.RelevanceLabel, p.RelevanceScore))
	if !p.DateFound.IsZero() {
		addField("Found", p.DateFound.Local().Format("2006-01-02 15:04"))
	}
	addField("Posted", p.PostedDate)
	addField("Source", p.Source)
	if p.Saved {
		addField("Saved", "yes")
	}
	b.WriteByte('\n')
	addField("Link", p.URL)

	wrapWidth := max(m.width-8, 20)
	b.WriteByte('\n')
	b.WriteString(dividerStyle.Render("── Why "+strings.Repeat("─", max(wrapWidth-7, 3))) + "\n\n")
	b.WriteString(wordWrap(p.Reason, wrapWidth) + "\n")

	return b.String()
}

func renderPostings(ps []model.Posting, cursor int) string {
	if len(ps) == 0 {
		return "  (no postings)"
	}

	var b strings.Builder
	for i, p := range ps {
		titleSt, subtitleSt, prefix := titleStyle, subtitleStyle, "  "
		if i == cursor {
			titleSt, subtitleSt, prefix = selectedTitleStyle, selectedSubtitleStyle, "> "
		}

		title := p.Title
		if p.Saved {
			title = "★ " + title
		}
		b.WriteString(prefix)
		b.WriteString(titleSt.Render(title))
		b.WriteByte('\n')

		label := lipgloss.NewStyle().Foreground(labelColors[p.RelevanceLabel]).Render(string(p.RelevanceLabel))
		b.WriteString(prefix)
		b.WriteString(subtitleSt.Render(fmt.Sprintf("%s · %s · %.2f ", p.Company, p.Location, p.RelevanceScore)))
		b.WriteString(label)
		b.WriteByte('\n')

		if i < len(ps)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func wordWrap(text string, width int) string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return ""
	}
	var lines []string
	line := words[0]
	for _, w := range words[1:] {
		if len(line)+1+len(w) <= width {
			line += " " + w
		} else {
			lines = append(lines, line)
			line = w
		}
	}
	lines = append(lines, line)
	return strings.Join(lines, "\n")
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// openURL opens url in the default system browser, fire-and-forget.
func openURL(url string) {
	if url == "" || url == model.PlaceholderURL {
		return
	}
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", url)
	default:
		return
	}
	_ = cmd.Start()
}

// Run launches the full-screen browser. scan may be nil to disable the
// scan key.
func Run(b Board, scan ScanFunc) error {
	p := tea.NewProgram(newBrowseModel(b, scan, time.Now), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
