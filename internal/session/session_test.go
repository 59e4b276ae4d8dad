package session

import (
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/verte-zerg/speedtype/internal/corpus"
	"github.com/verte-zerg/speedtype/internal/history"
	"github.com/verte-zerg/speedtype/internal/model"
	"github.com/verte-zerg/speedtype/internal/progression"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

type recorder struct {
	completions  []Completion
	achievements []progression.Achievement
	levels       []int
	effects      []Effect
}

func (r *recorder) OnComplete(c Completion)                 { r.completions = append(r.completions, c) }
func (r *recorder) OnAchievement(a progression.Achievement) { r.achievements = append(r.achievements, a) }
func (r *recorder) OnLevelUp(level int)                     { r.levels = append(r.levels, level) }
func (r *recorder) OnEffect(e Effect)                       { r.effects = append(r.effects, e) }

func (r *recorder) count(e Effect) int {
	n := 0
	for _, got := range r.effects {
		if got == e {
			n++
		}
	}
	return n
}

const sample = "The cat sits on the mat."

func testConfig() model.Config {
	return model.Config{
		Tier:             model.Beginner,
		MistakeHighlight: true,
		TickIntervalMs:   100,
		XPPerLevel:       progression.DefaultXPPerLevel,
		StreakThreshold:  progression.DefaultStreakThreshold,
		CountdownSeconds: 60,
	}
}

func newTestSession(t *testing.T, cfg model.Config) (*Session, *fakeClock, *recorder) {
	t.Helper()
	c := corpus.Corpus{
		model.Beginner:     {sample},
		model.Intermediate: {"Programming requires logical thinking."},
	}
	provider := corpus.NewProviderWithSource(c, rand.NewSource(1))
	clock := &fakeClock{now: time.Date(2026, 4, 9, 14, 0, 0, 0, time.UTC)}
	rec := &recorder{}
	ids := 0
	s := New(cfg, provider,
		progression.NewTracker(cfg.XPPerLevel, cfg.StreakThreshold),
		history.New(),
		WithClock(clock.Now),
		WithListener(rec),
		WithIDGenerator(func() string {
			ids++
			return string(rune('a' + ids - 1))
		}),
	)
	return s, clock, rec
}

func TestStartArmsWithoutStartingClock(t *testing.T) {
	s, clock, rec := newTestSession(t, testConfig())
	if err := s.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	if s.Phase() != Armed {
		t.Fatalf("expected armed, got %s", s.Phase())
	}
	if s.Target() != sample {
		t.Fatalf("unexpected target %q", s.Target())
	}
	clock.Advance(5 * time.Second)
	if s.Elapsed() != 0 {
		t.Fatalf("expected zero elapsed while armed, got %v", s.Elapsed())
	}
	if got := s.PendingTicks(); len(got) != 0 {
		t.Fatalf("expected no ticks before first input, got %d", len(got))
	}
	s.OnInput("")
	if s.Phase() != Armed {
		t.Fatalf("empty input must not start the clock")
	}
	if rec.count(EffectArmed) != 1 {
		t.Fatalf("expected one armed effect")
	}
}

func TestFirstInputStartsRunning(t *testing.T) {
	s, clock, rec := newTestSession(t, testConfig())
	if err := s.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	s.OnInput("T")
	if s.Phase() != Running {
		t.Fatalf("expected running, got %s", s.Phase())
	}
	ticks := s.PendingTicks()
	if len(ticks) != 2 {
		t.Fatalf("expected live and countdown ticks, got %d", len(ticks))
	}
	if ticks[0].Kind != LiveTick || ticks[0].Interval != 100*time.Millisecond {
		t.Fatalf("unexpected live tick %+v", ticks[0])
	}
	if ticks[1].Kind != CountdownTick || ticks[1].Interval != time.Second {
		t.Fatalf("unexpected countdown tick %+v", ticks[1])
	}
	clock.Advance(3 * time.Second)
	if s.Elapsed() != 3*time.Second {
		t.Fatalf("expected 3s elapsed, got %v", s.Elapsed())
	}
	if rec.count(EffectStarted) != 1 {
		t.Fatalf("expected one started effect")
	}
}

func TestStartWhileRunningFails(t *testing.T) {
	s, _, _ := newTestSession(t, testConfig())
	if err := s.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	s.OnInput("T")
	if err := s.Start(); !errors.Is(err, ErrInvalidPhase) {
		t.Fatalf("expected ErrInvalidPhase, got %v", err)
	}
	s.Pause()
	if err := s.Start(); !errors.Is(err, ErrInvalidPhase) {
		t.Fatalf("expected ErrInvalidPhase while paused, got %v", err)
	}
}

func TestStartUnknownTier(t *testing.T) {
	cfg := testConfig()
	cfg.Tier = model.Expert
	s, _, _ := newTestSession(t, cfg)
	err := s.Start()
	var tierErr *corpus.InvalidTierError
	if !errors.As(err, &tierErr) {
		t.Fatalf("expected InvalidTierError, got %v", err)
	}
	if s.Phase() != Idle {
		t.Fatalf("expected idle after failed start, got %s", s.Phase())
	}
}

func TestMistakeEffect(t *testing.T) {
	s, _, rec := newTestSession(t, testConfig())
	if err := s.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	s.OnInput("Tha")
	if s.Live().Mistakes != 1 {
		t.Fatalf("expected 1 mistake, got %d", s.Live().Mistakes)
	}
	s.OnInput("Tha")
	if rec.count(EffectMistake) != 1 {
		t.Fatalf("expected one mistake effect, got %d", rec.count(EffectMistake))
	}
	s.OnInput("The")
	if s.Live().Mistakes != 0 || rec.count(EffectMistake) != 2 {
		t.Fatalf("expected mistake count change to emit effect")
	}
}

func TestPauseResumeExcludesPausedTime(t *testing.T) {
	s, clock, rec := newTestSession(t, testConfig())
	if err := s.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	s.OnInput("T")
	clock.Advance(2 * time.Second)
	s.Pause()
	if s.Phase() != Paused {
		t.Fatalf("expected paused, got %s", s.Phase())
	}
	clock.Advance(10 * time.Second)
	if s.Elapsed() != 2*time.Second {
		t.Fatalf("elapsed must be frozen while paused, got %v", s.Elapsed())
	}
	s.OnInput("Th")
	if s.Typed() != "T" {
		t.Fatalf("input must be ignored while paused")
	}
	s.Resume()
	clock.Advance(time.Second)
	if s.Elapsed() != 3*time.Second {
		t.Fatalf("expected 3s after resume, got %v", s.Elapsed())
	}
	s.TogglePause()
	s.TogglePause()
	if s.Phase() != Running {
		t.Fatalf("expected running after toggling twice")
	}
	if rec.count(EffectPaused) != 2 || rec.count(EffectResumed) != 2 {
		t.Fatalf("unexpected effects %v", rec.effects)
	}
}

func TestStaleTicksAreDropped(t *testing.T) {
	s, clock, _ := newTestSession(t, testConfig())
	if err := s.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	s.OnInput("T")
	first := s.PendingTicks()[0]

	clock.Advance(time.Second)
	next, ok := s.HandleTick(first.Kind, first.Tag)
	if !ok || next.Tag != first.Tag {
		t.Fatalf("expected live tick to reschedule under the same tag")
	}

	s.Pause()
	if _, ok := s.HandleTick(first.Kind, first.Tag); ok {
		t.Fatalf("tick must be dropped after pause")
	}
	s.Resume()
	resumed := s.PendingTicks()
	if len(resumed) == 0 || resumed[0].Tag == first.Tag {
		t.Fatalf("resume must arm a new generation")
	}
	if _, ok := s.HandleTick(first.Kind, first.Tag); ok {
		t.Fatalf("old generation tick must stay stale after resume")
	}
	if _, ok := s.HandleTick(resumed[0].Kind, resumed[0].Tag); !ok {
		t.Fatalf("new generation tick must run")
	}
}

func TestTickUpdatesLiveStatsAndXP(t *testing.T) {
	s, clock, _ := newTestSession(t, testConfig())
	if err := s.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	s.OnInput("The cat sits on the mat")
	live := s.Tick()
	if live.WPM != 0 {
		t.Fatalf("expected no wpm at zero elapsed, got %f", live.WPM)
	}
	if s.Progression().TotalXP != 0 {
		t.Fatalf("expected no xp at zero elapsed")
	}
	clock.Advance(6 * time.Second)
	live = s.Tick()
	if live.WPM != 60 || live.Accuracy != 92 {
		t.Fatalf("expected 60 wpm at 92%%, got %f at %d", live.WPM, live.Accuracy)
	}
	if s.Progression().TotalXP <= 0 {
		t.Fatalf("expected tick xp to accrue")
	}
}

func TestCompleteOnExactMatch(t *testing.T) {
	s, clock, rec := newTestSession(t, testConfig())
	if err := s.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	s.OnInput("T")
	clock.Advance(12 * time.Second)
	s.OnInput(sample)
	if s.Phase() != Completed {
		t.Fatalf("expected completed, got %s", s.Phase())
	}
	if len(rec.completions) != 1 {
		t.Fatalf("expected one completion, got %d", len(rec.completions))
	}
	c := rec.completions[0]
	if c.WPM != 30 || c.Accuracy != 100 || c.TimeSeconds != 12 || c.Mistakes != 0 {
		t.Fatalf("unexpected completion %+v", c)
	}
	if c.SkillLevel != "Intermediate" {
		t.Fatalf("unexpected skill %q", c.SkillLevel)
	}
	if c.XPGained != 30*0.5+100*0.3+50 {
		t.Fatalf("unexpected xp %f", c.XPGained)
	}
	if c.Result.Level != 1 || c.Result.Tier != model.Beginner || c.Result.ID != "a" {
		t.Fatalf("unexpected result %+v", c.Result)
	}
	if !c.NewBestWPM {
		t.Fatalf("expected first result to be a new best")
	}
	if s.History().Len() != 1 {
		t.Fatalf("expected history entry")
	}
	var ids []progression.AchievementID
	for _, a := range rec.achievements {
		ids = append(ids, a.ID)
	}
	if len(ids) != 2 || ids[0] != progression.FirstSteps || ids[1] != progression.PerfectGame {
		t.Fatalf("unexpected achievements %v", ids)
	}
	state := s.Progression()
	if state.CurrentStreak != 1 || state.BestWPM != 30 {
		t.Fatalf("unexpected progression %+v", state)
	}
}

func TestCompleteIsIdempotent(t *testing.T) {
	s, clock, rec := newTestSession(t, testConfig())
	if err := s.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	s.OnInput("The cat")
	clock.Advance(4 * time.Second)
	if !s.Complete() {
		t.Fatalf("expected first complete to succeed")
	}
	xp := s.Progression().TotalXP
	clock.Advance(4 * time.Second)
	if s.Complete() {
		t.Fatalf("second complete must be a no-op")
	}
	if s.History().Len() != 1 || len(rec.completions) != 1 {
		t.Fatalf("expected exactly one result")
	}
	if s.Progression().TotalXP != xp {
		t.Fatalf("xp must be awarded once")
	}
	if s.Elapsed() != 4*time.Second {
		t.Fatalf("elapsed must be frozen after completion, got %v", s.Elapsed())
	}
	if s.Live().Progress >= 100 {
		t.Fatalf("manual complete keeps partial progress")
	}
}

func TestCompleteOutsideRunningIsNoop(t *testing.T) {
	s, _, _ := newTestSession(t, testConfig())
	if s.Complete() {
		t.Fatalf("complete from idle must be a no-op")
	}
	if err := s.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	if s.Complete() {
		t.Fatalf("complete from armed must be a no-op")
	}
}

func TestCountdownTimeout(t *testing.T) {
	cfg := testConfig()
	cfg.CountdownSeconds = 3
	s, clock, rec := newTestSession(t, cfg)
	if err := s.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	s.OnInput("The")
	for i := 0; i < 2; i++ {
		clock.Advance(time.Second)
		s.CountdownTick()
	}
	if s.Remaining() != 1 || s.Phase() != Running {
		t.Fatalf("unexpected countdown state %d %s", s.Remaining(), s.Phase())
	}
	s.Pause()
	s.CountdownTick()
	if s.Remaining() != 1 {
		t.Fatalf("countdown must be suspended while paused")
	}
	s.Resume()
	clock.Advance(time.Second)
	s.CountdownTick()
	if s.Phase() != Completed {
		t.Fatalf("expected timeout to complete, got %s", s.Phase())
	}
	if len(rec.completions) != 1 || !rec.completions[0].TimedOut {
		t.Fatalf("expected timed out completion")
	}
	if rec.count(EffectCountdown) != 2 {
		t.Fatalf("expected countdown warnings, got %d", rec.count(EffectCountdown))
	}
}

func TestCountdownDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.CountdownSeconds = 0
	s, _, _ := newTestSession(t, cfg)
	if err := s.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	s.OnInput("T")
	if got := s.PendingTicks(); len(got) != 1 || got[0].Kind != LiveTick {
		t.Fatalf("expected only the live tick, got %+v", got)
	}
	s.CountdownTick()
	if s.Phase() != Running {
		t.Fatalf("disabled countdown must not complete")
	}
}

func TestResetKeepsProgression(t *testing.T) {
	s, clock, _ := newTestSession(t, testConfig())
	if err := s.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	s.OnInput("T")
	clock.Advance(2 * time.Second)
	s.OnInput(sample)
	xp := s.Progression().TotalXP
	s.Reset()
	if s.Phase() != Idle || s.Target() != "" || s.Typed() != "" {
		t.Fatalf("reset must clear the session")
	}
	if s.Elapsed() != 0 {
		t.Fatalf("expected zero elapsed after reset")
	}
	if s.Progression().TotalXP != xp || s.History().Len() != 1 {
		t.Fatalf("reset must keep progression and history")
	}
}

func TestStartAfterCompletedReusesText(t *testing.T) {
	s, clock, _ := newTestSession(t, testConfig())
	if err := s.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	s.OnInput("T")
	clock.Advance(time.Second)
	s.OnInput(sample)
	if err := s.Start(); err != nil {
		t.Fatalf("restart: %v", err)
	}
	if s.Phase() != Armed || s.Target() != sample || s.Typed() != "" {
		t.Fatalf("unexpected state after restart")
	}
}

func TestHint(t *testing.T) {
	s, _, _ := newTestSession(t, testConfig())
	if _, ok := s.Hint(); ok {
		t.Fatalf("expected no hint without text")
	}
	if err := s.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	if r, ok := s.Hint(); !ok || r != 'T' {
		t.Fatalf("expected T, got %q", r)
	}
	s.OnInput("The")
	if r, ok := s.Hint(); !ok || r != ' ' {
		t.Fatalf("expected space, got %q", r)
	}
}

func TestClearHistoryKeepsXP(t *testing.T) {
	s, clock, _ := newTestSession(t, testConfig())
	if err := s.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	s.OnInput("T")
	clock.Advance(time.Second)
	s.OnInput(sample)
	before := s.Progression()
	s.ClearHistory()
	after := s.Progression()
	if s.History().Len() != 0 {
		t.Fatalf("expected empty history")
	}
	if after.TotalXP != before.TotalXP || after.Level != before.Level {
		t.Fatalf("xp and level must survive clear")
	}
	if after.BestWPM != 0 || after.CurrentStreak != 0 || after.BestStreak != 0 {
		t.Fatalf("counters must reset, got %+v", after)
	}
}

func TestSetTier(t *testing.T) {
	s, _, _ := newTestSession(t, testConfig())
	if err := s.SetTier(model.Intermediate); err != nil {
		t.Fatalf("set tier: %v", err)
	}
	if err := s.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	if s.Target() != "Programming requires logical thinking." {
		t.Fatalf("unexpected target %q", s.Target())
	}
	var tierErr *corpus.InvalidTierError
	if err := s.SetTier(model.Expert); !errors.As(err, &tierErr) {
		t.Fatalf("expected InvalidTierError, got %v", err)
	}
}
