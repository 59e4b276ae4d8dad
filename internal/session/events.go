package session

import (
	"github.com/verte-zerg/speedtype/internal/model"
	"github.com/verte-zerg/speedtype/internal/progression"
)

// Effect is a presentation cue emitted on state changes.
type Effect int

// Effects.
const (
	EffectArmed Effect = iota
	EffectStarted
	EffectMistake
	EffectPaused
	EffectResumed
	EffectCountdown
	EffectComplete
	EffectLevelUp
)

var effectNames = map[Effect]string{
	EffectArmed:     "armed",
	EffectStarted:   "started",
	EffectMistake:   "mistake",
	EffectPaused:    "paused",
	EffectResumed:   "resumed",
	EffectCountdown: "countdown",
	EffectComplete:  "complete",
	EffectLevelUp:   "level-up",
}

func (e Effect) String() string {
	if name, ok := effectNames[e]; ok {
		return name
	}
	return "unknown"
}

// Completion is emitted once per completed session.
type Completion struct {
	Result      model.TestResult
	WPM         float64
	Accuracy    int
	TimeSeconds float64
	Mistakes    int
	XPGained    float64
	SkillLevel  string
	NewBestWPM  bool
	TimedOut    bool
}

// Listener receives session notifications. All calls happen on the
// goroutine that drives the session.
type Listener interface {
	OnComplete(Completion)
	OnAchievement(progression.Achievement)
	OnLevelUp(level int)
	OnEffect(Effect)
}

// NopListener ignores every notification.
type NopListener struct{}

// OnComplete implements Listener.
func (NopListener) OnComplete(Completion) {}

// OnAchievement implements Listener.
func (NopListener) OnAchievement(progression.Achievement) {}

// OnLevelUp implements Listener.
func (NopListener) OnLevelUp(int) {}

// OnEffect implements Listener.
func (NopListener) OnEffect(Effect) {}
