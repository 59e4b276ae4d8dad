// Package progression tracks XP, levels, streaks, and achievements.
package progression

import "math"

// Default tuning values.
const (
	DefaultXPPerLevel      = 1000
	DefaultStreakThreshold = 95
)

// State is the progression snapshot kept for the lifetime of a run.
type State struct {
	TotalXP       float64
	Level         int
	CurrentStreak int
	BestStreak    int
	BestWPM       float64
}

// Tracker owns a progression State and applies the XP and streak rules.
type Tracker struct {
	state           State
	xpPerLevel      int
	streakThreshold int
}

// NewTracker returns a Tracker at level 1. Non-positive xpPerLevel falls
// back to DefaultXPPerLevel.
func NewTracker(xpPerLevel, streakThreshold int) *Tracker {
	if xpPerLevel <= 0 {
		xpPerLevel = DefaultXPPerLevel
	}
	return &Tracker{
		state:           State{Level: 1},
		xpPerLevel:      xpPerLevel,
		streakThreshold: streakThreshold,
	}
}

// State returns a copy of the current state.
func (t *Tracker) State() State {
	return t.state
}

// XPPerLevel returns the XP needed for each level.
func (t *Tracker) XPPerLevel() int {
	return t.xpPerLevel
}

// ApplyTickXP adds the live XP gain for one tick. Non-positive gains are
// dropped. leveledUp is true when the level increased, however many
// thresholds were crossed.
func (t *Tracker) ApplyTickXP(wpm float64, accuracy int) (gain float64, leveledUp bool) {
	gain = wpm*0.1 + float64(accuracy-90)*0.2
	if gain <= 0 {
		return 0, false
	}
	return gain, t.addXP(gain)
}

// ApplyCompletionXP adds the completion award and returns it.
func (t *Tracker) ApplyCompletionXP(wpm float64, accuracy int) (award float64, leveledUp bool) {
	award = wpm*0.5 + float64(accuracy)*0.3
	if accuracy >= 100 {
		award += 50
	}
	if award <= 0 {
		return 0, false
	}
	return award, t.addXP(award)
}

func (t *Tracker) addXP(amount float64) bool {
	t.state.TotalXP += amount
	level := int(math.Floor(t.state.TotalXP/float64(t.xpPerLevel))) + 1
	if level > t.state.Level {
		t.state.Level = level
		return true
	}
	return false
}

// UpdateStreak extends the streak when accuracy meets the threshold and
// resets it otherwise.
func (t *Tracker) UpdateStreak(accuracy int) {
	if accuracy >= t.streakThreshold {
		t.state.CurrentStreak++
		if t.state.CurrentStreak > t.state.BestStreak {
			t.state.BestStreak = t.state.CurrentStreak
		}
		return
	}
	t.state.CurrentStreak = 0
}

// RecordWPM keeps the best WPM and reports whether wpm is a new best.
func (t *Tracker) RecordWPM(wpm float64) bool {
	if wpm > t.state.BestWPM {
		t.state.BestWPM = wpm
		return true
	}
	return false
}

// ResetCounters clears streaks and best WPM. XP and level are kept.
func (t *Tracker) ResetCounters() {
	t.state.CurrentStreak = 0
	t.state.BestStreak = 0
	t.state.BestWPM = 0
}

// LevelProgress returns the XP earned inside the current level.
func (t *Tracker) LevelProgress() float64 {
	return math.Mod(t.state.TotalXP, float64(t.xpPerLevel))
}
