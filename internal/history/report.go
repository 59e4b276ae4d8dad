package history

import (
	"errors"
	"fmt"
	"io"

	"github.com/verte-zerg/speedtype/internal/progression"
)

// ErrNoResults is returned when a report is requested for an empty history.
var ErrNoResults = errors.New("no results recorded yet")

// WriteReport writes the performance report for the stored results and
// the given progression state.
func (s *Store) WriteReport(w io.Writer, state progression.State) error {
	if s.Len() == 0 {
		return ErrNoResults
	}
	sum := s.Summarize()
	lines := []string{
		"TYPING PERFORMANCE REPORT",
		"=========================",
		"",
		fmt.Sprintf("Total Tests Completed: %d", sum.TotalTests),
		fmt.Sprintf("Total Typing Time: %.1f minutes", sum.TotalTime/60),
		fmt.Sprintf("Current Level: %d", state.Level),
		fmt.Sprintf("Total XP: %.0f", state.TotalXP),
		"",
		"Performance Metrics:",
		fmt.Sprintf("  Average WPM: %.1f", sum.AvgWPM),
		fmt.Sprintf("  Best WPM: %.1f", sum.MaxWPM),
		fmt.Sprintf("  Lowest WPM: %.1f", sum.MinWPM),
		fmt.Sprintf("  Average Accuracy: %.1f%%", sum.AvgAccuracy),
		fmt.Sprintf("  Best Streak: %d tests", state.BestStreak),
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
