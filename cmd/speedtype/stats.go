package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/speedtype/internal/config"
	"github.com/verte-zerg/speedtype/internal/corpus"
	"github.com/verte-zerg/speedtype/internal/history"
	"github.com/verte-zerg/speedtype/internal/model"
	"github.com/verte-zerg/speedtype/internal/stats"
	"github.com/verte-zerg/speedtype/internal/statsui"
	"github.com/verte-zerg/speedtype/internal/store"
)

const defaultTrendWindow = 5

var (
	statsTier   string
	statsSince  string
	statsLast   int
	statsPlain  bool
	statsJSON   bool
	statsWindow int
	statsTop    int

	tiersCorpus string
)

func newTiersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tiers",
		Short: "List difficulty tiers and their sample counts",
		Args:  cobra.NoArgs,
		RunE:  runTiersCmd,
	}
	cmd.Flags().StringVar(&tiersCorpus, "corpus", "", "YAML file with custom sample texts")
	return cmd
}

func runTiersCmd(cmd *cobra.Command, _ []string) error {
	path := tiersCorpus
	if !cmd.Flags().Changed("corpus") {
		fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if fileCfg.Practice.Corpus != nil {
			path = *fileCfg.Practice.Corpus
		}
	}
	c, err := corpus.Load(expandHome(path))
	if err != nil {
		return fmt.Errorf("failed to load corpus: %w", err)
	}
	for _, tier := range c.Tiers() {
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%-12s %d samples\n", tier, len(c[tier])); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func addFilterFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&statsTier, "tier", "", "tier filter")
	cmd.Flags().StringVar(&statsSince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&statsLast, "last", 0, "limit to last N results")
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show archived results",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	addFilterFlags(cmd)
	cmd.Flags().BoolVar(&statsPlain, "plain", false, "print a plain-text report instead of the TUI")
	cmd.Flags().BoolVar(&statsJSON, "json", false, "print the report as JSON")
	cmd.Flags().IntVar(&statsWindow, "window", defaultTrendWindow, "moving average window for trends")
	cmd.Flags().IntVar(&statsTop, "top", stats.DefaultTopN, "number of personal bests to show")
	cmd.MarkFlagsMutuallyExclusive("plain", "json")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := parseStatsConfig()
	if err != nil {
		return err
	}
	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	out := cmd.OutOrStdout()
	switch {
	case statsJSON:
		report, err := stats.BuildReport(context.Background(), st, cfg, statsTop)
		if err != nil {
			return fmt.Errorf("failed to build report: %w", err)
		}
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode report: %w", err)
		}
		if _, err := fmt.Fprintln(out, string(data)); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		return nil
	case statsPlain:
		report, err := stats.BuildReport(context.Background(), st, cfg, statsTop)
		if err != nil {
			return fmt.Errorf("failed to build report: %w", err)
		}
		return stats.Render(out, report, stats.RenderOptions{
			Width:       stats.TerminalWidth(),
			TrendWindow: statsWindow,
			Color:       stats.ShouldUseColor(out, false),
		})
	}

	m := statsui.NewModel(st, cfg, statsWindow)
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run stats TUI: %w", err)
	}
	return nil
}

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export <file>",
		Short: "Export archived results to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  runExportCmd,
	}
	addFilterFlags(cmd)
	return cmd
}

func runExportCmd(cmd *cobra.Command, args []string) error {
	cfg, err := parseStatsConfig()
	if err != nil {
		return err
	}
	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	results, err := st.ListResults(context.Background(), cfg)
	if err != nil {
		return fmt.Errorf("failed to list results: %w", err)
	}
	if len(results) == 0 {
		return fmt.Errorf("no archived results match the filters (enable 'record' to archive results)")
	}
	path := expandHome(args[0])
	if err := history.ExportCSV(path, results); err != nil {
		return err
	}
	logErrf("Wrote %d results to %s\n", len(results), path)
	return nil
}

func parseStatsConfig() (model.StatsConfig, error) {
	var cfg model.StatsConfig
	if strings.TrimSpace(statsTier) != "" {
		tier, err := corpus.ParseTier(statsTier)
		if err != nil {
			return model.StatsConfig{}, fmt.Errorf("invalid --tier value: %w", err)
		}
		cfg.Tier = tier
	}
	if statsSince != "" {
		parsed, err := time.ParseInLocation("2006-01-02", statsSince, time.Local)
		if err != nil {
			return model.StatsConfig{}, fmt.Errorf("invalid --since value: %w", err)
		}
		cfg.Since = &parsed
	}
	if statsLast < 0 {
		return model.StatsConfig{}, fmt.Errorf("--last must be >= 0")
	}
	cfg.Last = statsLast
	return cfg, nil
}
