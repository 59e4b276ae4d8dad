// Package tui provides the Bubble Tea typing interface.
package tui

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/speedtype/internal/corpus"
	"github.com/verte-zerg/speedtype/internal/history"
	"github.com/verte-zerg/speedtype/internal/model"
	"github.com/verte-zerg/speedtype/internal/progression"
	"github.com/verte-zerg/speedtype/internal/session"
	"github.com/verte-zerg/speedtype/internal/store"
)

// tickMsg carries a scheduled session tick back into the update loop.
type tickMsg struct {
	kind session.TickKind
	tag  uint64
}

// Model implements the Bubble Tea typing UI. It receives session
// notifications on the update goroutine.
type Model struct {
	config    model.Config
	session   *session.Session
	store     *store.Store
	exportDir string
	now       func() time.Time

	width  int
	height int

	status       string
	notice       string
	noticeStyle  lipgloss.Style
	achievements []progression.Achievement
	levelReached int
	showReport   bool
}

var (
	correctStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	incorrectStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	pendingStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	currentWordStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	footerStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	headerStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#5FAFD7")).Bold(true)
	infoStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("#73D13D"))
	warnStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("#FAAD14"))
	errorStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
)

// effectStatus maps session effects to the status line. Effects without
// an entry leave the status unchanged.
var effectStatus = map[session.Effect]string{
	session.EffectArmed:     "Ready. Start typing.",
	session.EffectStarted:   "Typing...",
	session.EffectPaused:    "Paused. F3 to resume.",
	session.EffectResumed:   "Typing...",
	session.EffectCountdown: "Hurry up!",
	session.EffectComplete:  "Test complete. F1 to retry, ctrl+n for a new text.",
	session.EffectLevelUp:   "Level up!",
}

const helpLine = "F1 start · F2 reset · F3 pause · tab tier · ^T hint · ^F finish · ^N new · ^O report · ^E export · ^L clear · ^C quit"

// NewModel constructs a typing TUI model and arms the first test. st may
// be nil, in which case results are not archived.
func NewModel(cfg model.Config, provider *corpus.Provider, st *store.Store, opts ...session.Option) (*Model, error) {
	m := &Model{
		config:    cfg,
		store:     st,
		exportDir: cfg.ExportDir,
		now:       time.Now,
	}
	tracker := progression.NewTracker(cfg.XPPerLevel, cfg.StreakThreshold)
	opts = append([]session.Option{session.WithListener(m)}, opts...)
	m.session = session.New(cfg, provider, tracker, history.New(), opts...)
	if err := m.session.Start(); err != nil {
		return nil, fmt.Errorf("failed to start session: %w", err)
	}
	return m, nil
}

// Session returns the session driven by the model.
func (m *Model) Session() *session.Session {
	return m.session
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
		var cmds []tea.Cmd
		if next, ok := m.session.HandleTick(msg.kind, msg.tag); ok {
			cmds = append(cmds, tickCmd(next))
		}
		if cmd := m.scheduleTicks(); cmd != nil {
			cmds = append(cmds, cmd)
		}
		if len(cmds) == 0 {
			return m, nil
		}
		return m, tea.Batch(cmds...)
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		m.handleKey(msg)
		return m, m.scheduleTicks()
	default:
		return m, nil
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) {
	switch msg.Type {
	case tea.KeyF1, tea.KeyCtrlS:
		m.start()
	case tea.KeyF2, tea.KeyCtrlR:
		m.session.Reset()
		m.clearNotice()
		m.status = "Reset. F1 to start with a new text."
	case tea.KeyF3, tea.KeyCtrlP:
		m.session.TogglePause()
	case tea.KeyCtrlF:
		if !m.session.Complete() {
			m.setNotice(warnStyle, "Nothing to finish yet.")
		}
	case tea.KeyCtrlN:
		m.session.Reset()
		m.start()
	case tea.KeyTab:
		m.cycleTier()
	case tea.KeyCtrlT:
		m.hint()
	case tea.KeyCtrlO:
		m.showReport = !m.showReport
	case tea.KeyEsc:
		m.showReport = false
	case tea.KeyCtrlE:
		m.export()
	case tea.KeyCtrlL:
		m.session.ClearHistory()
		m.achievements = nil
		m.setNotice(infoStyle, "History cleared. XP and level kept.")
	case tea.KeyBackspace, tea.KeyDelete:
		m.handleBackspace()
	case tea.KeySpace:
		m.handleRunes([]rune{' '})
	case tea.KeyRunes:
		m.handleRunes(msg.Runes)
	}
}

func (m *Model) start() {
	m.clearNotice()
	if err := m.session.Start(); err != nil {
		m.setNotice(errorStyle, err.Error())
	}
}

func (m *Model) cycleTier() {
	current := m.session.Tier()
	next := model.Tiers[0]
	for i, t := range model.Tiers {
		if t == current {
			next = model.Tiers[(i+1)%len(model.Tiers)]
			break
		}
	}
	if err := m.session.SetTier(next); err != nil {
		m.setNotice(errorStyle, err.Error())
		return
	}
	m.start()
}

func (m *Model) hint() {
	r, ok := m.session.Hint()
	if !ok {
		m.setNotice(warnStyle, "No hint available.")
		return
	}
	label := string(r)
	if r == ' ' {
		label = "<space>"
	}
	m.setNotice(infoStyle, fmt.Sprintf("Next character: %s", label))
}

func (m *Model) export() {
	hist := m.session.History()
	if hist.Len() == 0 {
		m.setNotice(warnStyle, "No results to export.")
		return
	}
	name := fmt.Sprintf("speedtype-%s.csv", m.now().Format("20060102-150405"))
	path := filepath.Join(m.exportDir, name)
	if err := hist.ExportCSV(path); err != nil {
		slog.Error("export failed", "path", path, "err", err)
		m.setNotice(errorStyle, fmt.Sprintf("Export failed: %v", err))
		return
	}
	m.setNotice(infoStyle, fmt.Sprintf("Exported %d results to %s", hist.Len(), path))
}

func (m *Model) handleBackspace() {
	typed := []rune(m.session.Typed())
	if len(typed) == 0 {
		return
	}
	m.session.OnInput(string(typed[:len(typed)-1]))
}

func (m *Model) handleRunes(runes []rune) {
	switch m.session.Phase() {
	case session.Armed, session.Running:
	default:
		return
	}
	target := []rune(m.session.Target())
	typed := []rune(m.session.Typed())
	for _, r := range runes {
		if len(typed) >= len(target) {
			break
		}
		typed = append(typed, r)
	}
	m.session.OnInput(string(typed))
}

// scheduleTicks turns newly armed tick requests into Bubble Tea timers.
func (m *Model) scheduleTicks() tea.Cmd {
	reqs := m.session.PendingTicks()
	if len(reqs) == 0 {
		return nil
	}
	cmds := make([]tea.Cmd, 0, len(reqs))
	for _, req := range reqs {
		cmds = append(cmds, tickCmd(req))
	}
	return tea.Batch(cmds...)
}

func tickCmd(req session.TickRequest) tea.Cmd {
	return tea.Tick(req.Interval, func(time.Time) tea.Msg {
		return tickMsg{kind: req.Kind, tag: req.Tag}
	})
}

// OnComplete implements session.Listener.
func (m *Model) OnComplete(c session.Completion) {
	m.achievements = nil
	msg := fmt.Sprintf("%.1f WPM · %d%% · %.1fs · +%.0f XP · %s", c.WPM, c.Accuracy, c.TimeSeconds, c.XPGained, c.SkillLevel)
	if c.TimedOut {
		msg = "Time's up! " + msg
	}
	if c.NewBestWPM {
		msg += " · new best!"
	}
	if m.levelReached > 0 {
		msg += fmt.Sprintf(" · level %d!", m.levelReached)
		m.levelReached = 0
	}
	m.setNotice(infoStyle, msg)
	m.archive(c.Result)
}

// OnAchievement implements session.Listener.
func (m *Model) OnAchievement(a progression.Achievement) {
	m.achievements = append(m.achievements, a)
}

// OnLevelUp implements session.Listener.
func (m *Model) OnLevelUp(level int) {
	// Completion XP lands before OnComplete, which folds the level into its notice.
	if m.session != nil && m.session.Phase() == session.Completed {
		m.levelReached = level
		return
	}
	m.setNotice(infoStyle, fmt.Sprintf("Level up! You reached level %d.", level))
}

// OnEffect implements session.Listener.
func (m *Model) OnEffect(e session.Effect) {
	if text, ok := effectStatus[e]; ok {
		m.status = text
	}
}

func (m *Model) archive(r model.TestResult) {
	if m.store == nil {
		return
	}
	if err := m.store.InsertResult(context.Background(), r); err != nil {
		slog.Error("failed to archive result", "id", r.ID, "err", err)
		m.setNotice(errorStyle, fmt.Sprintf("Failed to archive result: %v", err))
	}
}

func (m *Model) setNotice(style lipgloss.Style, text string) {
	m.notice = text
	m.noticeStyle = style
}

func (m *Model) clearNotice() {
	m.notice = ""
}

// View implements tea.Model.
func (m *Model) View() string {
	sections := []string{m.renderHeader()}
	if m.showReport {
		sections = append(sections, m.renderReport())
	} else {
		sections = append(sections, m.renderText())
	}
	sections = append(sections, m.renderStats())
	if m.status != "" {
		sections = append(sections, m.status)
	}
	if m.notice != "" {
		sections = append(sections, m.noticeStyle.Render(m.notice))
	}
	for _, a := range m.achievements {
		sections = append(sections, infoStyle.Render(fmt.Sprintf("Achievement unlocked: %s. %s", a.Title, a.Description)))
	}
	content := strings.Join(sections, "\n\n")
	if m.width == 0 || m.height == 0 {
		return content + "\n\n" + footerStyle.Render(helpLine)
	}
	footer := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, footerStyle.Render(helpLine))
	if m.height < 3 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
	}
	body := lipgloss.Place(m.width, m.height-1, lipgloss.Center, lipgloss.Center, content)
	return body + "\n" + footer
}

func (m *Model) contentWidth() int {
	if m.width == 0 {
		return 0
	}
	return max(1, int(float64(m.width)*0.70))
}

func (m *Model) renderHeader() string {
	state := m.session.Progression()
	xpPerLevel := m.session.Tracker().XPPerLevel()
	return headerStyle.Render(fmt.Sprintf("%s · Level %d · XP %.0f/%d · Streak %d (best %d) · Best %.1f WPM",
		m.session.Tier(), state.Level, m.session.Tracker().LevelProgress(), xpPerLevel,
		state.CurrentStreak, state.BestStreak, state.BestWPM))
}

func (m *Model) renderText() string {
	target := []rune(m.session.Target())
	if len(target) == 0 {
		return pendingStyle.Render("Press F1 to start a test.")
	}
	input := []rune(m.session.Typed())
	cursorIndex := -1
	if len(input) < len(target) && m.session.Phase() != session.Completed {
		cursorIndex = len(input)
	}
	styledRunes := buildStyledRunes(target, input, cursorIndex, m.config.MistakeHighlight)
	width := m.contentWidth()
	if width == 0 {
		return renderStyledRunes(styledRunes)
	}
	wrapped := wrapStyledRunes(styledRunes, width)
	return lipgloss.NewStyle().Width(width).Render(wrapped)
}

func (m *Model) renderReport() string {
	var b strings.Builder
	if err := m.session.History().WriteReport(&b, m.session.Progression()); err != nil {
		return pendingStyle.Render("No results yet. Complete a test to see your report.")
	}
	top := m.session.History().Top(3)
	if len(top) > 0 {
		b.WriteString("\nPersonal Bests:\n")
		for i, r := range top {
			b.WriteString(fmt.Sprintf("  %d. %.1f WPM · %d%% · %s\n", i+1, r.WPM, r.Accuracy, r.Tier))
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m *Model) renderStats() string {
	live := m.session.Live()
	segments := []string{
		fmt.Sprintf("Progress %.0f%%", live.Progress),
		fmt.Sprintf("%.1f WPM", live.WPM),
		fmt.Sprintf("%d%%", live.Accuracy),
		fmt.Sprintf("Mistakes %d", live.Mistakes),
		fmt.Sprintf("%.1fs", m.session.Elapsed().Seconds()),
	}
	if m.config.CountdownSeconds > 0 {
		segments = append(segments, fmt.Sprintf("%ds left", m.session.Remaining()))
	}
	if live.SkillLevel != "" {
		segments = append(segments, live.SkillLevel)
	}
	return footerStyle.Render(strings.Join(segments, "  "))
}
