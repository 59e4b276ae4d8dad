package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/verte-zerg/speedtype/internal/config"
	"github.com/verte-zerg/speedtype/internal/model"
)

func writeConfig(t *testing.T, body string) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func TestDefaultConfigTemplateDecodes(t *testing.T) {
	writeConfig(t, defaultConfigTemplate())
	cfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		t.Fatalf("template should decode: %v", err)
	}
	if cfg.Practice.Tier != nil || cfg.Practice.Countdown != nil {
		t.Fatalf("commented template should set nothing, got %+v", cfg.Practice)
	}
}

func TestLoadPracticeConfigFlagsOverrideFile(t *testing.T) {
	writeConfig(t, "[practice]\ntier = \"expert\"\ncountdown = 30\nxp-per-level = 500\n")
	cmd := newRootCmd()
	if err := cmd.ParseFlags([]string{"--countdown", "45"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	cfg, err := loadPracticeConfig(cmd)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Tier != model.Expert {
		t.Fatalf("expected tier from file normalized to Expert, got %q", cfg.Tier)
	}
	if cfg.CountdownSeconds != 45 {
		t.Fatalf("expected flag to win, got countdown %d", cfg.CountdownSeconds)
	}
	if cfg.XPPerLevel != 500 {
		t.Fatalf("expected xp-per-level 500 from file, got %d", cfg.XPPerLevel)
	}
	if cfg.TickIntervalMs != defaultTickInterval {
		t.Fatalf("expected default tick interval, got %d", cfg.TickIntervalMs)
	}
}

func TestLoadPracticeConfigRejectsInvalid(t *testing.T) {
	writeConfig(t, "[practice]\ntier = \"Legendary\"\n")
	cmd := newRootCmd()
	if err := cmd.ParseFlags([]string{"--tick-interval-ms", "1"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	_, err := loadPracticeConfig(cmd)
	if err == nil {
		t.Fatalf("expected validation error")
	}
	msg := err.Error()
	if !strings.Contains(msg, "--tier must be one of") || !strings.Contains(msg, "--tick-interval-ms must be >= 10") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestParseStatsConfig(t *testing.T) {
	statsTier, statsSince, statsLast = "advanced", "2024-03-01", 3
	t.Cleanup(func() { statsTier, statsSince, statsLast = "", "", 0 })

	cfg, err := parseStatsConfig()
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.Tier != model.Advanced || cfg.Last != 3 || cfg.Since == nil {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.Since.Year() != 2024 || cfg.Since.Month() != 3 || cfg.Since.Day() != 1 {
		t.Fatalf("unexpected since: %v", cfg.Since)
	}

	statsSince = "03/01/2024"
	if _, err := parseStatsConfig(); err == nil {
		t.Fatalf("expected invalid --since error")
	}
	statsSince, statsTier = "", "nope"
	if _, err := parseStatsConfig(); err == nil {
		t.Fatalf("expected invalid --tier error")
	}
}
