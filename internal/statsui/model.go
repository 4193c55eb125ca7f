// Package statsui provides the Bubble Tea leaderboard and history browser.
package statsui

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/typerank/internal/client"
	"github.com/verte-zerg/typerank/internal/model"
	"github.com/verte-zerg/typerank/internal/stats"
)

const (
	tabLeaderboard = iota
	tabHistory
)

const fetchTimeout = 15 * time.Second

var (
	activeNavStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
	inactiveNavStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	cardStyle   = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	cardTitleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cardValueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	tableMutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
)

// LeaderboardSource fetches the public leaderboard.
type LeaderboardSource interface {
	Leaderboard(ctx context.Context, limit int) ([]client.LeaderboardEntry, error)
}

// HistorySource lists the device-local history log.
type HistorySource interface {
	ListHistory(ctx context.Context, last int) ([]model.HistoryEntry, error)
}

type leaderboardMsg struct {
	entries []client.LeaderboardEntry
	err     error
	at      time.Time
}

// Model implements the Bubble Tea leaderboard browser.
type Model struct {
	board   LeaderboardSource
	history HistorySource
	limit   int
	window  int

	tabs      []string
	activeTab int
	table     table.Model
	viewport  viewport.Model

	entries   []client.LeaderboardEntry
	fetchedAt time.Time
	loading   bool
	boardErr  string

	historyEntries []model.HistoryEntry
	historyErr     string

	width  int
	height int
}

// NewModel constructs the browser. A nil board shows the leaderboard tab as
// unavailable.
func NewModel(board LeaderboardSource, history HistorySource, limit, window int) *Model {
	m := &Model{
		board:    board,
		history:  history,
		limit:    limit,
		window:   window,
		tabs:     []string{"Leaderboard", "History"},
		table:    buildTable(nil, 80, 10),
		viewport: viewport.New(0, 0),
	}
	m.table.Focus()
	m.loadHistory()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return m.fetch()
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		return m, nil
	case leaderboardMsg:
		m.loading = false
		if msg.err != nil {
			m.boardErr = msg.err.Error()
			return m, nil
		}
		m.boardErr = ""
		m.entries = msg.entries
		m.fetchedAt = msg.at
		m.table.SetRows(tableRows(msg.entries))
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.String() == "q" {
			return m, tea.Quit
		}
		switch msg.String() {
		case "left", "h", "shift+tab":
			m.moveTab(-1)
			return m, tea.ClearScreen
		case "right", "l", "tab":
			m.moveTab(1)
			return m, tea.ClearScreen
		case "r":
			m.loadHistory()
			return m, m.fetch()
		case "g", "home":
			if m.activeTab == tabLeaderboard {
				m.table.GotoTop()
			} else {
				m.viewport.GotoTop()
			}
			return m, nil
		case "G", "end":
			if m.activeTab == tabLeaderboard {
				m.table.GotoBottom()
			} else {
				m.viewport.GotoBottom()
			}
			return m, nil
		}
		var cmd tea.Cmd
		if m.activeTab == tabLeaderboard {
			m.table, cmd = m.table.Update(msg)
		} else {
			m.viewport, cmd = m.viewport.Update(msg)
		}
		return m, cmd
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	headerHeight, bodyHeight, footerHeight := m.layoutHeights()
	header := fitLines(m.renderHeader(), m.width, headerHeight)
	body := fitLines(m.renderBody(), m.width, bodyHeight)
	footer := fitLines(m.renderFooter(), m.width, footerHeight)
	return strings.Join([]string{header, body, footer}, "\n")
}

func (m *Model) fetch() tea.Cmd {
	if m.board == nil {
		m.boardErr = client.ErrNotConfigured.Error()
		return nil
	}
	m.loading = true
	board, limit := m.board, m.limit
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()
		entries, err := board.Leaderboard(ctx, limit)
		return leaderboardMsg{entries: entries, err: err, at: time.Now()}
	}
}

func (m *Model) loadHistory() {
	if m.history == nil {
		return
	}
	entries, err := m.history.ListHistory(context.Background(), 0)
	if err != nil {
		m.historyErr = err.Error()
		return
	}
	m.historyErr = ""
	m.historyEntries = entries
	m.renderHistory()
}

func (m *Model) renderHistory() {
	width := m.width
	if width <= 0 {
		width = 80
	}
	if m.historyErr != "" {
		m.viewport.SetContent("Failed to load history.")
		return
	}
	if len(m.historyEntries) == 0 {
		m.viewport.SetContent("No ranked games yet.")
		return
	}
	var buf bytes.Buffer
	if err := stats.RenderHistory(&buf, m.historyEntries, stats.HistoryOptions{Width: width, Window: m.window}); err != nil {
		m.viewport.SetContent(fmt.Sprintf("Failed to render history: %v", err))
		return
	}
	cards := renderSummaryCards(stats.Summarize(m.historyEntries), width)
	m.viewport.SetContent(strings.TrimRight(cards+"\n\n"+buf.String(), "\n"))
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight, footerHeight int) {
	tabsHeight := max(1, lipgloss.Height(activeNavStyle.Render("X")))
	headerHeight = tabsHeight + 1
	footerHeight = 1
	if m.currentErr() != "" {
		footerHeight++
	}
	bodyHeight = max(1, m.height-headerHeight-footerHeight)
	return headerHeight, bodyHeight, footerHeight
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	_, bodyHeight, _ := m.layoutHeights()
	m.viewport.Width = m.width
	m.viewport.Height = bodyHeight
	m.table.SetWidth(m.width)
	m.table.SetHeight(max(1, bodyHeight-1))
	m.renderHistory()
}

func (m *Model) moveTab(delta int) {
	count := len(m.tabs)
	m.activeTab = (m.activeTab + delta + count) % count
	if m.activeTab == tabLeaderboard {
		m.table.Focus()
	} else {
		m.table.Blur()
	}
}

func (m *Model) currentErr() string {
	if m.activeTab == tabLeaderboard {
		return m.boardErr
	}
	return m.historyErr
}

func (m *Model) renderTabs() string {
	parts := make([]string, 0, len(m.tabs))
	for i, tab := range m.tabs {
		if i == m.activeTab {
			parts = append(parts, activeNavStyle.Render(tab))
		} else {
			parts = append(parts, inactiveNavStyle.Render(tab))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) renderHeader() string {
	status := fmt.Sprintf("Top %d", m.limit)
	switch {
	case m.loading:
		status += "  loading…"
	case !m.fetchedAt.IsZero():
		status += "  updated " + m.fetchedAt.Local().Format("15:04:05")
	}
	if m.activeTab == tabHistory {
		status = fmt.Sprintf("%d ranked games on this device", len(m.historyEntries))
	}
	return padLines(m.renderTabs(), m.width) + "\n" + headerStyle.Render(truncateLine(status, m.width))
}

func (m *Model) renderBody() string {
	if m.activeTab == tabHistory {
		return m.viewport.View()
	}
	if len(m.entries) == 0 {
		switch {
		case m.loading:
			return "Loading leaderboard…"
		case m.boardErr != "":
			return "Leaderboard unavailable."
		default:
			return "Leaderboard is empty."
		}
	}
	return tableMutedStyle.Render(m.table.View())
}

func (m *Model) renderFooter() string {
	help := headerStyle.Render("Nav: left/right  Scroll: up/down/pgup/pgdn  Refresh: r  Quit: q")
	if err := m.currentErr(); err != "" {
		return help + "\n" + errorStyle.Render(err)
	}
	return help
}

func renderSummaryCards(s stats.Summary, width int) string {
	cards := []string{
		metricCard("Games", fmt.Sprintf("%d", s.Count)),
		metricCard("Best", fmt.Sprintf("%d", s.Best.Score)),
		metricCard("Avg Score", fmt.Sprintf("%.0f", s.AvgScore())),
		metricCard("Avg CPM", fmt.Sprintf("%.1f", s.AvgCPM())),
		metricCard("Avg Acc", fmt.Sprintf("%.1f%%", s.AvgAccuracy())),
	}
	if width < 80 {
		return strings.Join(cards, "\n")
	}
	row1 := lipgloss.JoinHorizontal(lipgloss.Top, cards[0], cards[1], cards[2])
	row2 := lipgloss.JoinHorizontal(lipgloss.Top, cards[3], cards[4])
	return lipgloss.JoinVertical(lipgloss.Left, row1, row2)
}

func metricCard(label, value string) string {
	content := fmt.Sprintf("%s\n%s", cardTitleStyle.Render(label), cardValueStyle.Render(value))
	return cardStyle.Render(content)
}

func buildTable(entries []client.LeaderboardEntry, width, height int) table.Model {
	columns := []table.Column{
		{Title: "Rank", Width: 5},
		{Title: "Username", Width: 20},
		{Title: "Score", Width: 8},
		{Title: "CPM", Width: 5},
		{Title: "Accuracy", Width: 9},
		{Title: "Last played", Width: 16},
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithRows(tableRows(entries)),
		table.WithHeight(max(1, height-1)),
	)
	t.SetWidth(width)
	t.SetStyles(tableStyles())
	return t
}

func tableRows(entries []client.LeaderboardEntry) []table.Row {
	rows := make([]table.Row, 0, len(entries))
	for _, e := range entries {
		played := ""
		if !e.LastPlayedAt.IsZero() {
			played = e.LastPlayedAt.Local().Format("2006-01-02 15:04")
		}
		rows = append(rows, table.Row{
			fmt.Sprintf("%d", e.Rank),
			e.Username,
			fmt.Sprintf("%d", e.Score),
			fmt.Sprintf("%d", e.CPM),
			fmt.Sprintf("%.1f%%", e.Accuracy),
			played,
		})
	}
	return rows
}

func tableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		Padding(0, 1).
		PaddingLeft(0)
	styles.Cell = styles.Cell.
		Padding(0, 1).
		PaddingLeft(0)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	return styles
}

func padLines(s string, width int) string {
	if width <= 0 || s == "" {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	return strings.Join(lines, "\n")
}

func padLine(line string, width int) string {
	lineWidth := lipgloss.Width(line)
	if lineWidth < width {
		return line + strings.Repeat(" ", width-lineWidth)
	}
	return line
}

func fitLines(s string, width, height int) string {
	if width <= 0 || height <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}
	return strings.Join(lines, "\n")
}

func truncateLine(s string, width int) string {
	if width <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width <= 3 {
		return string(runes[:width])
	}
	return string(runes[:width-3]) + "..."
}
