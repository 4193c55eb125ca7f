// Package tui provides the Bubble Tea typing interface.
package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/typerank/internal/client"
	"github.com/verte-zerg/typerank/internal/model"
	"github.com/verte-zerg/typerank/internal/scoring"
	"github.com/verte-zerg/typerank/internal/session"
	statsPkg "github.com/verte-zerg/typerank/internal/stats"
)

const (
	submitTimeout     = 15 * time.Second
	maxUsernameLength = 20
)

// Profile is the device-local data the typing screen reads and writes.
type Profile interface {
	Username(ctx context.Context) (string, error)
	SetUsername(ctx context.Context, name string) error
	AppendHistory(ctx context.Context, entry model.HistoryEntry) error
	ListHistory(ctx context.Context, last int) ([]model.HistoryEntry, error)
}

// Submitter sends a finished ranking attempt to the ranking service.
type Submitter interface {
	Submit(ctx context.Context, sub model.Submission) (model.SubmitResult, error)
}

// TextSource returns the next reference text, avoiding prev when it can.
type TextSource func(prev string) string

// Options configures a Model.
type Options struct {
	Mode      model.Mode
	TimeLimit time.Duration
	Username  string
	Texts     TextSource
	Profile   Profile
	Submitter Submitter
	Clock     session.Clock
}

type phase int

const (
	phaseTyping phase = iota
	phaseUsername
	phaseSubmitting
	phaseResults
)

type tickMsg struct {
	epoch uint64
}

type submitDoneMsg struct {
	seq    uint64
	result model.SubmitResult
	err    error
}

// Model implements the Bubble Tea typing UI.
type Model struct {
	mode      model.Mode
	timeLimit time.Duration
	username  string
	texts     TextSource
	profile   Profile
	submitter Submitter
	now       session.Clock

	sess   *session.Session
	phase  phase
	armed  bool
	notice string

	lastText string
	attempt  model.Attempt
	metrics  model.ScoreMetrics
	result   *model.SubmitResult
	errMsg   string
	// submitSeq tags in-flight submissions so a reply for a reset attempt is dropped.
	submitSeq uint64

	prompt  textinput.Model
	history statsPkg.Summary

	width  int
	height int
}

var (
	correctStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	incorrectStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	pendingStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	currentWordStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	footerStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	titleStyle       = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#C89A3A"))
	errorStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	cardStyle        = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#6E6E6E")).Padding(1, 3)
)

// NewModel constructs a typing TUI model.
func NewModel(opts Options) *Model {
	if opts.Mode == "" {
		opts.Mode = model.ModePractice
	}
	if opts.Mode == model.ModeRanking {
		opts.TimeLimit = model.RankingTimeLimit
	}
	ti := textinput.New()
	ti.Placeholder = "username"
	ti.CharLimit = maxUsernameLength
	ti.Prompt = "> "

	m := &Model{
		mode:      opts.Mode,
		timeLimit: opts.TimeLimit,
		username:  strings.TrimSpace(opts.Username),
		texts:     opts.Texts,
		profile:   opts.Profile,
		submitter: opts.Submitter,
		now:       opts.Clock,
		sess:      session.New(opts.Clock),
		prompt:    ti,
	}
	if m.now == nil {
		m.now = time.Now
	}
	m.loadHistory()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tickMsg:
		return m, m.handleTick(msg)
	case submitDoneMsg:
		m.handleSubmitDone(msg)
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if msg.Type == tea.KeyEsc {
			m.reset()
			return m, nil
		}
		switch m.phase {
		case phaseUsername:
			return m, m.handlePromptKey(msg)
		case phaseSubmitting:
			return m, nil
		case phaseResults:
			if msg.Type == tea.KeyEnter {
				m.reset()
				return m, m.start()
			}
			return m, nil
		default:
			return m, m.handleTypingKey(msg)
		}
	default:
		if m.phase == phaseUsername {
			var cmd tea.Cmd
			m.prompt, cmd = m.prompt.Update(msg)
			return m, cmd
		}
		return m, nil
	}
}

func (m *Model) handleTypingKey(msg tea.KeyMsg) tea.Cmd {
	if m.sess.State() == session.StateIdle {
		if msg.Type == tea.KeyEnter {
			return m.start()
		}
		return nil
	}
	switch msg.Type {
	case tea.KeyEnter:
		return m.handleEnter()
	case tea.KeyBackspace, tea.KeyDelete:
		m.handleBackspace()
	case tea.KeySpace:
		m.handleRunes([]rune{' '})
	case tea.KeyRunes:
		m.handleRunes(msg.Runes)
	}
	return nil
}

func (m *Model) start() tea.Cmd {
	text := ""
	if m.texts != nil {
		text = m.texts(m.lastText)
	}
	if text == "" {
		m.notice = "no text available"
		return nil
	}
	if !m.sess.Start(text, m.timeLimit) {
		return nil
	}
	m.lastText = text
	m.phase = phaseTyping
	m.armed = false
	m.notice = ""
	return m.scheduleTick()
}

func (m *Model) scheduleTick() tea.Cmd {
	epoch, ok := m.sess.Ticking()
	if !ok {
		return nil
	}
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		return tickMsg{epoch: epoch}
	})
}

func (m *Model) handleTick(msg tickMsg) tea.Cmd {
	if m.sess.Tick(msg.epoch) {
		return m.finish()
	}
	if epoch, ok := m.sess.Ticking(); ok && epoch == msg.epoch {
		return m.scheduleTick()
	}
	return nil
}

func (m *Model) handleEnter() tea.Cmd {
	if m.sess.State() != session.StatePlaying {
		return nil
	}
	if m.mode == model.ModeRanking {
		if len([]rune(m.sess.Input())) < len([]rune(m.sess.Target())) {
			m.notice = "finish typing the whole text to submit"
			return nil
		}
		return m.finish()
	}
	if !m.armed {
		m.armed = true
		m.notice = "press Enter again to finish"
		return nil
	}
	return m.finish()
}

func (m *Model) handleBackspace() {
	input := []rune(m.sess.Input())
	if len(input) == 0 {
		return
	}
	m.edit(string(input[:len(input)-1]))
}

func (m *Model) handleRunes(runes []rune) {
	input := []rune(m.sess.Input())
	limit := len([]rune(m.sess.Target()))
	for _, r := range runes {
		if len(input) >= limit {
			break
		}
		input = append(input, r)
	}
	m.edit(string(input))
}

func (m *Model) edit(input string) {
	if !m.sess.UpdateInput(input) {
		return
	}
	m.armed = false
	m.notice = ""
}

func (m *Model) finish() tea.Cmd {
	attempt, ok := m.sess.Finish()
	if !ok {
		attempt, ok = m.sess.Attempt()
		if !ok {
			return nil
		}
	}
	m.attempt = attempt
	m.metrics = scoring.ForAttempt(attempt)
	m.armed = false
	m.notice = ""
	m.result = nil
	m.errMsg = ""

	if m.mode != model.ModeRanking {
		m.phase = phaseResults
		return nil
	}
	if m.submitter == nil {
		m.errMsg = client.ErrNotConfigured.Error()
		m.phase = phaseResults
		return nil
	}
	if m.username == "" {
		m.username = m.storedUsername()
	}
	if m.username == "" {
		m.phase = phaseUsername
		m.prompt.SetValue("")
		return m.prompt.Focus()
	}
	return m.submit()
}

func (m *Model) handlePromptKey(msg tea.KeyMsg) tea.Cmd {
	if msg.Type != tea.KeyEnter {
		var cmd tea.Cmd
		m.prompt, cmd = m.prompt.Update(msg)
		return cmd
	}
	name := strings.TrimSpace(m.prompt.Value())
	if name == "" || len([]rune(name)) > maxUsernameLength {
		m.notice = fmt.Sprintf("username must be 1-%d characters", maxUsernameLength)
		return nil
	}
	m.prompt.Blur()
	m.username = name
	m.notice = ""
	if m.profile != nil {
		if err := m.profile.SetUsername(context.Background(), name); err != nil {
			logErrf("failed to save username: %v\n", err)
		}
	}
	return m.submit()
}

func (m *Model) submit() tea.Cmd {
	m.phase = phaseSubmitting
	m.submitSeq++
	seq := m.submitSeq
	sub := client.SubmissionFor(m.attempt, m.username, m.now())
	submitter := m.submitter
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), submitTimeout)
		defer cancel()
		res, err := submitter.Submit(ctx, sub)
		return submitDoneMsg{seq: seq, result: res, err: err}
	}
}

func (m *Model) handleSubmitDone(msg submitDoneMsg) {
	if m.phase != phaseSubmitting || msg.seq != m.submitSeq {
		return
	}
	m.phase = phaseResults
	if msg.err != nil {
		var remote *client.RemoteError
		if errors.As(msg.err, &remote) && remote.Rejected() {
			m.errMsg = "submission rejected: " + remote.Message
		} else {
			m.errMsg = "submission failed: " + msg.err.Error()
		}
		return
	}
	res := msg.result
	m.result = &res
	m.metrics = model.ScoreMetrics{CPM: res.CPM, Accuracy: res.Accuracy, Score: res.Score}
	if m.profile == nil {
		return
	}
	entry := model.HistoryEntry{
		Date:     m.now(),
		Score:    res.Score,
		CPM:      res.CPM,
		Accuracy: res.Accuracy,
	}
	if err := m.profile.AppendHistory(context.Background(), entry); err != nil {
		logErrf("failed to save history: %v\n", err)
		return
	}
	m.history = m.history.Add(entry)
}

func (m *Model) reset() {
	m.sess.Reset()
	m.submitSeq++
	m.phase = phaseTyping
	m.armed = false
	m.notice = ""
	m.result = nil
	m.errMsg = ""
	m.prompt.Blur()
}

func (m *Model) storedUsername() string {
	if m.profile == nil {
		return ""
	}
	name, err := m.profile.Username(context.Background())
	if err != nil {
		logErrf("failed to load username: %v\n", err)
		return ""
	}
	return strings.TrimSpace(name)
}

func (m *Model) loadHistory() {
	if m.profile == nil {
		return
	}
	entries, err := m.profile.ListHistory(context.Background(), 0)
	if err != nil {
		logErrf("failed to load history: %v\n", err)
		return
	}
	m.history = statsPkg.Summarize(entries)
}

// View implements tea.Model.
func (m *Model) View() string {
	var content string
	switch {
	case m.phase == phaseUsername:
		content = m.renderPrompt()
	case m.phase == phaseSubmitting || m.phase == phaseResults:
		content = m.renderResults()
	case m.sess.State() == session.StateIdle:
		content = m.renderIdle()
	default:
		content = m.renderTyping()
	}
	if m.width == 0 || m.height == 0 {
		footer := m.renderFooter()
		if footer == "" {
			return content
		}
		return content + "\n" + footer
	}
	footer := m.renderFooter()
	if footer == "" || m.height < 3 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
	}
	body := lipgloss.Place(m.width, m.height-1, lipgloss.Center, lipgloss.Center, content)
	footerLine := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, footer)
	return body + "\n" + footerLine
}

func (m *Model) renderIdle() string {
	lines := []string{titleStyle.Render(fmt.Sprintf("typerank · %s", m.mode))}
	if m.timeLimit > 0 {
		lines = append(lines, fmt.Sprintf("time limit %s", formatClock(int(m.timeLimit/time.Second))))
	}
	lines = append(lines, "", "press Enter to start")
	if m.notice != "" {
		lines = append(lines, errorStyle.Render(m.notice))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderTyping() string {
	target := []rune(m.sess.Target())
	input := []rune(m.sess.Input())
	cursorIndex := -1
	if len(input) < len(target) {
		cursorIndex = len(input)
	}
	styled := styleCells(target, input, cursorIndex)
	if m.width == 0 {
		return renderCells(styled)
	}
	contentWidth := int(float64(m.width) * 0.70)
	if contentWidth < 1 {
		contentWidth = 1
	}
	wrapped := wrapCells(styled, contentWidth)
	return lipgloss.NewStyle().Width(contentWidth).Render(wrapped)
}

func (m *Model) renderPrompt() string {
	lines := []string{
		titleStyle.Render("enter a username for the leaderboard"),
		"",
		m.prompt.View(),
	}
	if m.notice != "" {
		lines = append(lines, errorStyle.Render(m.notice))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderResults() string {
	lines := []string{
		titleStyle.Render("result"),
		"",
		fmt.Sprintf("score     %d", m.metrics.Score),
		fmt.Sprintf("cpm       %d", m.metrics.CPM),
		fmt.Sprintf("accuracy  %.1f%%", m.metrics.Accuracy),
		fmt.Sprintf("time      %.1fs", scoring.Seconds(m.attempt.Elapsed())),
	}
	switch {
	case m.phase == phaseSubmitting:
		lines = append(lines, "", "submitting…")
	case m.result != nil:
		rank := fmt.Sprintf("rank      #%d", m.result.Rank)
		if m.result.IsHighScore {
			rank += "  new high score!"
		}
		lines = append(lines, rank)
	case m.errMsg != "":
		lines = append(lines, "", errorStyle.Render(m.errMsg))
	}
	if m.phase == phaseResults {
		lines = append(lines, "", footerStyle.Render("Enter retry · Esc menu · Ctrl+C quit"))
	}
	return cardStyle.Render(strings.Join(lines, "\n"))
}

func (m *Model) renderFooter() string {
	segments := []string{string(m.mode)}
	if m.phase == phaseTyping && m.sess.State() == session.StatePlaying {
		if secs, ok := m.sess.SecondsLeft(); ok {
			segments = append(segments, "Time "+formatClock(secs))
		}
		target := len([]rune(m.sess.Target()))
		if target > 0 {
			progress := int(float64(len([]rune(m.sess.Input()))) / float64(target) * 100)
			segments = append(segments, fmt.Sprintf("Progress %d%%", progress))
		}
		if m.notice != "" {
			segments = append(segments, m.notice)
		}
	}
	if m.history.Count > 0 {
		segments = append(segments,
			fmt.Sprintf("Last %d · %d CPM · %.1f%%", m.history.Last.Score, m.history.Last.CPM, m.history.Last.Accuracy),
			fmt.Sprintf("Best %d", m.history.Best.Score),
		)
	}
	return footerStyle.Render(strings.Join(segments, "  "))
}

func formatClock(secs int) string {
	if secs < 0 {
		secs = 0
	}
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
