// Package scoring computes typing metrics from a target and a typed buffer.
package scoring

import (
	"math"
	"strings"
	"time"
)

// Accuracy returns the accuracy score in [0, 100].
//
// Matching positions are counted over the common prefix length and the
// absolute length difference is subtracted from them. An empty buffer
// scores 100.
func Accuracy(target, typed string) int {
	if typed == "" {
		return 100
	}
	t := []rune(target)
	in := []rune(typed)
	if len(t) == 0 {
		return 0
	}
	n := min(len(t), len(in))
	matches := 0
	for i := 0; i < n; i++ {
		if t[i] == in[i] {
			matches++
		}
	}
	penalty := len(t) - len(in)
	if penalty < 0 {
		penalty = -penalty
	}
	correct := matches - penalty
	score := int(math.Round(float64(correct) * 100 / float64(len(t))))
	return max(0, score)
}

// WordsPerMinute returns whitespace-delimited words per minute.
// ok is false when elapsed is not positive and the caller must skip the update.
func WordsPerMinute(typed string, elapsed time.Duration) (wpm float64, ok bool) {
	seconds := elapsed.Seconds()
	if seconds <= 0 {
		return 0, false
	}
	words := len(strings.Fields(typed))
	return float64(words) / seconds * 60, true
}

// MistakeCount counts differing positions over the common prefix length.
// Missing or extra trailing characters are not mistakes.
func MistakeCount(target, typed string) int {
	t := []rune(target)
	in := []rune(typed)
	n := min(len(t), len(in))
	mistakes := 0
	for i := 0; i < n; i++ {
		if t[i] != in[i] {
			mistakes++
		}
	}
	return mistakes
}

// Progress returns the typed share of the target as a percentage in [0, 100].
func Progress(target, typed string) float64 {
	total := len([]rune(target))
	if total == 0 {
		return 0
	}
	pct := float64(len([]rune(typed))) / float64(total) * 100
	return math.Min(100, math.Max(0, pct))
}

// AccuracyGate is the accuracy below which no speed label is given.
const AccuracyGate = 70

// PracticeAccuracy is the label for results under AccuracyGate.
const PracticeAccuracy = "Practice Accuracy"

type band struct {
	below float64
	label string
}

var bands = []band{
	{20, "Beginner"},
	{30, "Novice"},
	{40, "Intermediate"},
	{50, "Good"},
	{60, "Advanced"},
	{70, "Expert"},
	{80, "Master"},
	{100, "Lightning"},
}

const topLabel = "Typing God"

// SkillLevel labels a result. Accuracy is checked first, then WPM bands
// with exclusive upper bounds.
func SkillLevel(wpm float64, accuracy int) string {
	if accuracy < AccuracyGate {
		return PracticeAccuracy
	}
	for _, b := range bands {
		if wpm < b.below {
			return b.label
		}
	}
	return topLabel
}
