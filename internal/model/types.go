// Package model defines shared data structures.
package model

import "time"

// Tier is a difficulty bucket selecting which corpus a session draws from.
type Tier string

// Known tiers, ordered from easiest to hardest.
const (
	Beginner     Tier = "Beginner"
	Intermediate Tier = "Intermediate"
	Advanced     Tier = "Advanced"
	Expert       Tier = "Expert"
)

// Tiers lists every known tier in display order.
var Tiers = []Tier{Beginner, Intermediate, Advanced, Expert}

// Config defines practice settings.
type Config struct {
	Tier             Tier   `validate:"required,oneof=Beginner Intermediate Advanced Expert"`
	MistakeHighlight bool
	TickIntervalMs   int    `validate:"min=10,max=1000"`
	XPPerLevel       int    `validate:"min=1"`
	StreakThreshold  int    `validate:"min=0,max=100"`
	CountdownSeconds int    `validate:"min=0"`
	CorpusPath       string `validate:"omitempty,file"`
	Record           bool
	ExportDir        string
}

// TickInterval returns the live stats refresh interval.
func (c Config) TickInterval() time.Duration {
	return time.Duration(c.TickIntervalMs) * time.Millisecond
}

// StatsConfig defines filters for archived results.
type StatsConfig struct {
	Tier  Tier
	Since *time.Time
	Last  int
}

// LiveStats is recomputed on every tick while a session is running.
type LiveStats struct {
	WPM        float64
	Accuracy   int
	Mistakes   int
	Progress   float64
	Elapsed    time.Duration
	SkillLevel string
}

// TestResult captures a completed typing test.
type TestResult struct {
	ID          string    `json:"id"`
	WPM         float64   `json:"wpm"`
	Accuracy    int       `json:"accuracy"`
	TimeSeconds float64   `json:"time_seconds"`
	Tier        Tier      `json:"tier"`
	Level       int       `json:"level"`
	CreatedAt   time.Time `json:"created_at"`
}

// Summary aggregates a sequence of results.
type Summary struct {
	AvgWPM      float64 `json:"avg_wpm"`
	AvgAccuracy float64 `json:"avg_accuracy"`
	MaxWPM      float64 `json:"max_wpm"`
	MinWPM      float64 `json:"min_wpm"`
	TotalTests  int     `json:"total_tests"`
	TotalTime   float64 `json:"total_time_seconds"`
}
