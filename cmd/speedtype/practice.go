package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/speedtype/internal/config"
	"github.com/verte-zerg/speedtype/internal/corpus"
	"github.com/verte-zerg/speedtype/internal/model"
	"github.com/verte-zerg/speedtype/internal/progression"
	"github.com/verte-zerg/speedtype/internal/store"
	"github.com/verte-zerg/speedtype/internal/tui"
)

const (
	defaultTier         = model.Beginner
	defaultTickInterval = 100
	defaultCountdown    = 60
)

var (
	practiceTier             string
	practiceMistakeHighlight bool
	practiceTickIntervalMs   int
	practiceXPPerLevel       int
	practiceStreakThreshold  int
	practiceCountdown        int
	practiceCorpus           string
	practiceRecord           bool
	practiceExportDir        string
)

func addPracticeFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&practiceTier, "tier", string(defaultTier), "difficulty tier (Beginner, Intermediate, Advanced, Expert)")
	cmd.Flags().BoolVar(&practiceMistakeHighlight, "mistake-highlight", true, "highlight mistyped characters")
	cmd.Flags().IntVar(&practiceTickIntervalMs, "tick-interval-ms", defaultTickInterval, "live stats refresh interval in milliseconds")
	cmd.Flags().IntVar(&practiceXPPerLevel, "xp-per-level", progression.DefaultXPPerLevel, "XP required per level")
	cmd.Flags().IntVar(&practiceStreakThreshold, "streak-threshold", progression.DefaultStreakThreshold, "minimum accuracy that extends a streak")
	cmd.Flags().IntVar(&practiceCountdown, "countdown", defaultCountdown, "test time limit in seconds (0 disables)")
	cmd.Flags().StringVar(&practiceCorpus, "corpus", "", "YAML file with custom sample texts")
	cmd.Flags().BoolVar(&practiceRecord, "record", false, "archive completed results in the local database")
	cmd.Flags().StringVar(&practiceExportDir, "export-dir", config.DefaultExportDir(), "directory for CSV exports from the typing screen")
}

func runPracticeCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadPracticeConfig(cmd)
	if err != nil {
		return err
	}
	c, err := corpus.Load(cfg.CorpusPath)
	if err != nil {
		return fmt.Errorf("failed to load corpus: %w", err)
	}

	var st *store.Store
	if cfg.Record {
		st, err = store.Open(config.DefaultDBPath())
		if err != nil {
			return fmt.Errorf("failed to open db: %w", err)
		}
		defer func() {
			if cerr := st.Close(); cerr != nil {
				logErrf("failed to close db: %v\n", cerr)
			}
		}()
	}

	m, err := tui.NewModel(cfg, corpus.NewProvider(c), st)
	if err != nil {
		return err
	}
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

// loadPracticeConfig merges the config file under the flags and validates
// the result.
func loadPracticeConfig(cmd *cobra.Command) (model.Config, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return model.Config{}, fmt.Errorf("failed to load config: %w", err)
	}
	p := fileCfg.Practice
	applyStringConfig(cmd, "tier", &practiceTier, p.Tier)
	applyBoolConfig(cmd, "mistake-highlight", &practiceMistakeHighlight, p.MistakeHighlight)
	applyIntConfig(cmd, "tick-interval-ms", &practiceTickIntervalMs, p.TickIntervalMs)
	applyIntConfig(cmd, "xp-per-level", &practiceXPPerLevel, p.XPPerLevel)
	applyIntConfig(cmd, "streak-threshold", &practiceStreakThreshold, p.StreakThreshold)
	applyIntConfig(cmd, "countdown", &practiceCountdown, p.Countdown)
	applyStringConfig(cmd, "corpus", &practiceCorpus, p.Corpus)
	applyBoolConfig(cmd, "record", &practiceRecord, p.Record)
	applyStringConfig(cmd, "export-dir", &practiceExportDir, p.ExportDir)

	tier := model.Tier(practiceTier)
	if parsed, err := corpus.ParseTier(practiceTier); err == nil {
		tier = parsed
	}
	cfg := model.Config{
		Tier:             tier,
		MistakeHighlight: practiceMistakeHighlight,
		TickIntervalMs:   practiceTickIntervalMs,
		XPPerLevel:       practiceXPPerLevel,
		StreakThreshold:  practiceStreakThreshold,
		CountdownSeconds: practiceCountdown,
		CorpusPath:       expandHome(practiceCorpus),
		Record:           practiceRecord,
		ExportDir:        expandHome(practiceExportDir),
	}
	if err := config.Validate(cfg); err != nil {
		return model.Config{}, err
	}
	return cfg, nil
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# speedtype configuration
# Uncomment a value to enable it. CLI flags override config values.

[practice]
# tier = %q             # Beginner, Intermediate, Advanced or Expert
# mistake-highlight = true       # Highlight mistyped characters
# tick-interval-ms = %d         # Live stats refresh interval
# xp-per-level = %d            # XP required per level
# streak-threshold = %d          # Minimum accuracy that extends a streak
# countdown = %d                 # Test time limit in seconds (0 disables)
# corpus = "~/typing.yaml"       # YAML file with custom sample texts
# record = false                 # Archive completed results for 'speedtype stats'
# export-dir = %q
`,
		defaultTier,
		defaultTickInterval,
		progression.DefaultXPPerLevel,
		progression.DefaultStreakThreshold,
		defaultCountdown,
		config.DefaultExportDir(),
	)
}
