package progression

// AchievementID identifies an achievement.
type AchievementID string

// Achievement identifiers.
const (
	FirstSteps  AchievementID = "first-steps"
	SpeedDemon  AchievementID = "speed-demon"
	PerfectGame AchievementID = "perfect-game"
	OnFire      AchievementID = "on-fire"
)

// Achievement describes an unlocked achievement for display.
type Achievement struct {
	ID          AchievementID
	Title       string
	Description string
}

// Thresholds for achievements.
const (
	speedDemonWPM = 80
	onFireStreak  = 5
)

var catalog = map[AchievementID]Achievement{
	FirstSteps:  {ID: FirstSteps, Title: "First Steps", Description: "Completed your first typing test!"},
	SpeedDemon:  {ID: SpeedDemon, Title: "Speed Demon", Description: "Typed at 80+ WPM!"},
	PerfectGame: {ID: PerfectGame, Title: "Perfect Game", Description: "100% accuracy achieved!"},
	OnFire:      {ID: OnFire, Title: "On Fire", Description: "5 accurate tests in a row!"},
}

// Lookup returns the catalog entry for id.
func Lookup(id AchievementID) (Achievement, bool) {
	a, ok := catalog[id]
	return a, ok
}

// CheckAchievements returns every achievement whose predicate holds, in a
// fixed order. Nothing is deduplicated across calls.
func CheckAchievements(totalTests int, wpm float64, accuracy, currentStreak int) []Achievement {
	var out []Achievement
	if totalTests == 1 {
		out = append(out, catalog[FirstSteps])
	}
	if wpm >= speedDemonWPM {
		out = append(out, catalog[SpeedDemon])
	}
	if accuracy == 100 {
		out = append(out, catalog[PerfectGame])
	}
	if currentStreak >= onFireStreak {
		out = append(out, catalog[OnFire])
	}
	return out
}
