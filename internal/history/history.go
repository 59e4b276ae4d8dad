// Package history keeps the ordered log of completed test results.
package history

import (
	"sort"

	"github.com/verte-zerg/speedtype/internal/model"
)

// Store is an append-only sequence of results that can be cleared.
type Store struct {
	results []model.TestResult
}

// New returns an empty Store.
func New() *Store {
	return &Store{}
}

// Append adds a result at the end of the log.
func (s *Store) Append(r model.TestResult) {
	s.results = append(s.results, r)
}

// Len returns the number of results.
func (s *Store) Len() int {
	return len(s.results)
}

// Results returns a copy of the results in insertion order.
func (s *Store) Results() []model.TestResult {
	out := make([]model.TestResult, len(s.results))
	copy(out, s.results)
	return out
}

// Clear empties the log.
func (s *Store) Clear() {
	s.results = nil
}

// Summarize aggregates the log. An empty log yields a zero Summary.
func (s *Store) Summarize() model.Summary {
	return Summarize(s.results)
}

// Top returns up to n results with the highest WPM, best first.
// Ties keep insertion order.
func (s *Store) Top(n int) []model.TestResult {
	return Top(s.results, n)
}

// Top returns up to n of results with the highest WPM, best first.
func Top(results []model.TestResult, n int) []model.TestResult {
	if n <= 0 || len(results) == 0 {
		return nil
	}
	sorted := make([]model.TestResult, len(results))
	copy(sorted, results)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].WPM > sorted[j].WPM
	})
	if n > len(sorted) {
		n = len(sorted)
	}
	return sorted[:n]
}

// Summarize aggregates results.
func Summarize(results []model.TestResult) model.Summary {
	if len(results) == 0 {
		return model.Summary{}
	}
	sum := model.Summary{
		TotalTests: len(results),
		MaxWPM:     results[0].WPM,
		MinWPM:     results[0].WPM,
	}
	var totalWPM, totalAcc float64
	for _, r := range results {
		totalWPM += r.WPM
		totalAcc += float64(r.Accuracy)
		sum.TotalTime += r.TimeSeconds
		if r.WPM > sum.MaxWPM {
			sum.MaxWPM = r.WPM
		}
		if r.WPM < sum.MinWPM {
			sum.MinWPM = r.WPM
		}
	}
	count := float64(len(results))
	sum.AvgWPM = totalWPM / count
	sum.AvgAccuracy = totalAcc / count
	return sum
}
