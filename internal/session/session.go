// Package session drives the lifecycle of a typing test.
package session

import (
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/verte-zerg/speedtype/internal/corpus"
	"github.com/verte-zerg/speedtype/internal/history"
	"github.com/verte-zerg/speedtype/internal/model"
	"github.com/verte-zerg/speedtype/internal/progression"
	"github.com/verte-zerg/speedtype/internal/scoring"
)

// Phase is the lifecycle state of a session.
type Phase int

// Phases.
const (
	Idle Phase = iota
	Armed
	Running
	Paused
	Completed
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Armed:
		return "armed"
	case Running:
		return "running"
	case Paused:
		return "paused"
	case Completed:
		return "completed"
	default:
		return "unknown"
	}
}

// ErrInvalidPhase is returned by Start while a test is running or paused.
var ErrInvalidPhase = errors.New("operation not valid in current phase")

const (
	countdownInterval = time.Second
	countdownWarnAt   = 10
)

// Option configures a Session.
type Option func(*Session)

// WithClock replaces the wall clock.
func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		s.now = now
	}
}

// WithListener sets the notification receiver.
func WithListener(l Listener) Option {
	return func(s *Session) {
		if l != nil {
			s.listener = l
		}
	}
}

// WithIDGenerator replaces the result ID generator.
func WithIDGenerator(gen func() string) Option {
	return func(s *Session) {
		s.newID = gen
	}
}

// Session owns one test attempt at a time along with the progression and
// history it feeds. It is not safe for concurrent use; drive it from a
// single event loop.
type Session struct {
	cfg      model.Config
	provider *corpus.Provider
	tracker  *progression.Tracker
	history  *history.Store
	listener Listener
	now      func() time.Time
	newID    func() string

	phase       Phase
	tier        model.Tier
	target      string
	typed       string
	startedAt   time.Time
	pausedAt    time.Time
	pausedTotal time.Duration
	endedAt     time.Time
	live        model.LiveStats
	remaining   int
	timedOut    bool

	liveTicker      *Ticker
	countdownTicker *Ticker
	pending         []TickRequest
}

// New returns an Idle session.
func New(cfg model.Config, provider *corpus.Provider, tracker *progression.Tracker, hist *history.Store, opts ...Option) *Session {
	interval := cfg.TickInterval()
	if interval <= 0 {
		interval = 100 * time.Millisecond
	}
	s := &Session{
		cfg:             cfg,
		provider:        provider,
		tracker:         tracker,
		history:         hist,
		listener:        NopListener{},
		now:             time.Now,
		newID:           uuid.NewString,
		tier:            cfg.Tier,
		liveTicker:      NewTicker(LiveTick, interval),
		countdownTicker: NewTicker(CountdownTick, countdownInterval),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.resetLive()
	return s
}

// Start loads a text when none is loaded, clears the buffer and arms the
// session. Valid from Idle, Armed and Completed.
func (s *Session) Start() error {
	switch s.phase {
	case Running, Paused:
		return ErrInvalidPhase
	}
	if s.target == "" {
		text, err := s.provider.Select(s.tier)
		if err != nil {
			return err
		}
		s.target = text
	}
	s.stopTickers()
	s.typed = ""
	s.startedAt = time.Time{}
	s.pausedAt = time.Time{}
	s.pausedTotal = 0
	s.endedAt = time.Time{}
	s.timedOut = false
	s.remaining = s.cfg.CountdownSeconds
	s.resetLive()
	s.phase = Armed
	slog.Debug("session armed", "tier", s.tier, "chars", len([]rune(s.target)))
	s.listener.OnEffect(EffectArmed)
	return nil
}

// OnInput receives the full current buffer. The first non-empty buffer
// while Armed starts the clock. A buffer equal to the target completes
// the session. Ignored outside Armed and Running.
func (s *Session) OnInput(text string) {
	switch s.phase {
	case Armed:
		if text == "" {
			return
		}
		s.startedAt = s.now()
		s.phase = Running
		s.armTickers()
		slog.Debug("session running", "tier", s.tier)
		s.listener.OnEffect(EffectStarted)
	case Running:
	default:
		return
	}

	s.typed = text
	s.live.Progress = scoring.Progress(s.target, text)
	mistakes := scoring.MistakeCount(s.target, text)
	if mistakes != s.live.Mistakes {
		s.live.Mistakes = mistakes
		if s.cfg.MistakeHighlight {
			s.listener.OnEffect(EffectMistake)
		}
	}
	if text == s.target {
		s.Complete()
	}
}

// Tick recomputes live stats and applies tick XP. Ignored unless Running.
// WPM and XP are left untouched while no time has elapsed.
func (s *Session) Tick() model.LiveStats {
	if s.phase != Running {
		return s.live
	}
	elapsed := s.Elapsed()
	s.live.Elapsed = elapsed
	wpm, ok := scoring.WordsPerMinute(s.typed, elapsed)
	if !ok {
		return s.live
	}
	acc := scoring.Accuracy(s.target, s.typed)
	s.live.WPM = wpm
	s.live.Accuracy = acc
	s.live.SkillLevel = scoring.SkillLevel(wpm, acc)

	if wpm > 0 {
		if _, leveledUp := s.tracker.ApplyTickXP(wpm, acc); leveledUp {
			s.notifyLevelUp()
		}
	}
	return s.live
}

// CountdownTick advances the countdown by one second while Running and
// completes the session when it reaches zero. A zero countdown setting
// disables it.
func (s *Session) CountdownTick() {
	if s.phase != Running || s.cfg.CountdownSeconds <= 0 {
		return
	}
	if s.remaining > 0 {
		s.remaining--
	}
	if s.remaining <= 0 {
		s.timedOut = true
		slog.Debug("countdown expired", "tier", s.tier)
		s.Complete()
		return
	}
	if s.remaining <= countdownWarnAt {
		s.listener.OnEffect(EffectCountdown)
	}
}

// HandleTick runs the task identified by kind when tag is still live and
// returns the request for the following tick. ok is false for stale tags
// and once the session has left Running.
func (s *Session) HandleTick(kind TickKind, tag uint64) (next TickRequest, ok bool) {
	t := s.ticker(kind)
	if t == nil || !t.Live(tag) {
		return TickRequest{}, false
	}
	switch kind {
	case LiveTick:
		s.Tick()
	case CountdownTick:
		s.CountdownTick()
	}
	if !t.Live(tag) {
		return TickRequest{}, false
	}
	return t.request(), true
}

// PendingTicks returns the tick requests armed since the last call.
func (s *Session) PendingTicks() []TickRequest {
	out := s.pending
	s.pending = nil
	return out
}

// Pause freezes the clock. Ignored unless Running.
func (s *Session) Pause() {
	if s.phase != Running {
		return
	}
	s.pausedAt = s.now()
	s.phase = Paused
	s.stopTickers()
	s.live.Elapsed = s.Elapsed()
	slog.Debug("session paused", "elapsed", s.live.Elapsed)
	s.listener.OnEffect(EffectPaused)
}

// Resume adds the paused interval to the excluded time and restarts the
// clock. Ignored unless Paused.
func (s *Session) Resume() {
	if s.phase != Paused {
		return
	}
	if d := s.now().Sub(s.pausedAt); d > 0 {
		s.pausedTotal += d
	}
	s.pausedAt = time.Time{}
	s.phase = Running
	s.armTickers()
	slog.Debug("session resumed", "paused_total", s.pausedTotal)
	s.listener.OnEffect(EffectResumed)
}

// TogglePause pauses a running session or resumes a paused one.
func (s *Session) TogglePause() {
	switch s.phase {
	case Running:
		s.Pause()
	case Paused:
		s.Resume()
	}
}

// Reset stops the clock and returns to Idle, discarding the buffer and the
// loaded text. Progression and history are kept.
func (s *Session) Reset() {
	s.stopTickers()
	s.phase = Idle
	s.target = ""
	s.typed = ""
	s.startedAt = time.Time{}
	s.pausedAt = time.Time{}
	s.pausedTotal = 0
	s.endedAt = time.Time{}
	s.timedOut = false
	s.remaining = s.cfg.CountdownSeconds
	s.resetLive()
	slog.Debug("session reset")
}

// SetTier switches the tier and resets the session.
func (s *Session) SetTier(tier model.Tier) error {
	if _, ok := s.provider.Corpus()[tier]; !ok {
		return &corpus.InvalidTierError{Tier: string(tier)}
	}
	s.tier = tier
	s.Reset()
	return nil
}

// Complete freezes the clock, records the result, and applies completion
// XP, streak and achievements. It reports whether a completion happened;
// calls outside Running are no-ops.
func (s *Session) Complete() bool {
	if s.phase != Running {
		return false
	}
	s.endedAt = s.now()
	s.phase = Completed
	s.stopTickers()

	elapsed := s.Elapsed()
	wpm, ok := scoring.WordsPerMinute(s.typed, elapsed)
	if !ok {
		wpm = 0
	}
	acc := scoring.Accuracy(s.target, s.typed)
	mistakes := scoring.MistakeCount(s.target, s.typed)
	skill := scoring.SkillLevel(wpm, acc)
	s.live = model.LiveStats{
		WPM:        wpm,
		Accuracy:   acc,
		Mistakes:   mistakes,
		Progress:   scoring.Progress(s.target, s.typed),
		Elapsed:    elapsed,
		SkillLevel: skill,
	}

	newBest := s.tracker.RecordWPM(wpm)
	s.tracker.UpdateStreak(acc)
	result := model.TestResult{
		ID:          s.newID(),
		WPM:         wpm,
		Accuracy:    acc,
		TimeSeconds: elapsed.Seconds(),
		Tier:        s.tier,
		Level:       s.tracker.State().Level,
		CreatedAt:   s.endedAt,
	}
	s.history.Append(result)

	xp, leveledUp := s.tracker.ApplyCompletionXP(wpm, acc)
	if leveledUp {
		s.notifyLevelUp()
	}
	achievements := progression.CheckAchievements(s.history.Len(), wpm, acc, s.tracker.State().CurrentStreak)

	slog.Debug("session completed", "wpm", wpm, "accuracy", acc, "seconds", result.TimeSeconds, "xp", xp, "timed_out", s.timedOut)
	s.listener.OnComplete(Completion{
		Result:      result,
		WPM:         wpm,
		Accuracy:    acc,
		TimeSeconds: result.TimeSeconds,
		Mistakes:    mistakes,
		XPGained:    xp,
		SkillLevel:  skill,
		NewBestWPM:  newBest,
		TimedOut:    s.timedOut,
	})
	for _, a := range achievements {
		s.listener.OnAchievement(a)
	}
	s.listener.OnEffect(EffectComplete)
	return true
}

// ClearHistory empties the history and resets the test counters, best
// WPM and streaks. XP and level are kept.
func (s *Session) ClearHistory() {
	s.history.Clear()
	s.tracker.ResetCounters()
	slog.Debug("history cleared")
}

// Elapsed returns the running time excluding paused intervals. It is
// frozen while Paused and after completion, and never negative.
func (s *Session) Elapsed() time.Duration {
	var end time.Time
	switch s.phase {
	case Running:
		end = s.now()
	case Paused:
		end = s.pausedAt
	case Completed:
		end = s.endedAt
	default:
		return 0
	}
	d := end.Sub(s.startedAt) - s.pausedTotal
	if d < 0 {
		return 0
	}
	return d
}

// Hint returns the next expected character.
func (s *Session) Hint() (rune, bool) {
	target := []rune(s.target)
	typed := []rune(s.typed)
	if len(typed) >= len(target) {
		return 0, false
	}
	return target[len(typed)], true
}

// Phase returns the current phase.
func (s *Session) Phase() Phase { return s.phase }

// Tier returns the tier texts are drawn from.
func (s *Session) Tier() model.Tier { return s.tier }

// Target returns the loaded text.
func (s *Session) Target() string { return s.target }

// Typed returns the current buffer.
func (s *Session) Typed() string { return s.typed }

// Live returns the latest live stats.
func (s *Session) Live() model.LiveStats { return s.live }

// Remaining returns the countdown seconds left.
func (s *Session) Remaining() int { return s.remaining }

// Config returns the session settings.
func (s *Session) Config() model.Config { return s.cfg }

// Progression returns a snapshot of the progression state.
func (s *Session) Progression() progression.State { return s.tracker.State() }

// Tracker returns the progression tracker.
func (s *Session) Tracker() *progression.Tracker { return s.tracker }

// History returns the history store.
func (s *Session) History() *history.Store { return s.history }

func (s *Session) notifyLevelUp() {
	level := s.tracker.State().Level
	slog.Debug("level up", "level", level)
	s.listener.OnLevelUp(level)
	s.listener.OnEffect(EffectLevelUp)
}

func (s *Session) armTickers() {
	s.pending = append(s.pending, s.liveTicker.Arm())
	if s.cfg.CountdownSeconds > 0 {
		s.pending = append(s.pending, s.countdownTicker.Arm())
	}
}

func (s *Session) stopTickers() {
	s.liveTicker.Cancel()
	s.countdownTicker.Cancel()
	s.pending = nil
}

func (s *Session) ticker(kind TickKind) *Ticker {
	switch kind {
	case LiveTick:
		return s.liveTicker
	case CountdownTick:
		return s.countdownTicker
	default:
		return nil
	}
}

func (s *Session) resetLive() {
	s.live = model.LiveStats{Accuracy: 100}
}
