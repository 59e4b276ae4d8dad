package stats

import (
	"context"
	"io"

	"github.com/verte-zerg/speedtype/internal/history"
	"github.com/verte-zerg/speedtype/internal/model"
	"github.com/verte-zerg/speedtype/internal/store"
)

// DefaultTopN is the number of personal bests shown in reports.
const DefaultTopN = 5

// Report contains precomputed data for stats rendering.
type Report struct {
	Results []model.TestResult `json:"results"`
	Summary model.Summary      `json:"summary"`
	Top     []model.TestResult `json:"top"`
}

// BuildReport loads archived results and prepares them for rendering.
func BuildReport(ctx context.Context, st *store.Store, cfg model.StatsConfig, topN int) (Report, error) {
	results, err := st.ListResults(ctx, cfg)
	if err != nil {
		return Report{}, err
	}
	return Report{
		Results: results,
		Summary: history.Summarize(results),
		Top:     history.Top(results, topN),
	}, nil
}

// RenderOptions controls plain-text report layout.
type RenderOptions struct {
	Width       int
	TrendWindow int
	Color       bool
}

// Render writes the full plain-text report.
func Render(w io.Writer, report Report, opts RenderOptions) error {
	if err := RenderSummary(w, report.Results); err != nil {
		return err
	}
	if len(report.Results) == 0 {
		return nil
	}
	if err := RenderTrends(w, report.Results, opts.TrendWindow, opts.Width, opts.Color); err != nil {
		return err
	}
	return RenderResultTable(w, "Personal Bests", report.Top)
}
