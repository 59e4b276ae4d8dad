// Package config provides configuration helpers and TOML parsing.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"

	"github.com/verte-zerg/speedtype/internal/model"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Practice PracticeConfig `toml:"practice"`
}

// PracticeConfig maps practice-related settings. Nil fields were not set
// in the file.
type PracticeConfig struct {
	Tier             *string `toml:"tier"`
	MistakeHighlight *bool   `toml:"mistake-highlight"`
	TickIntervalMs   *int    `toml:"tick-interval-ms"`
	XPPerLevel       *int    `toml:"xp-per-level"`
	StreakThreshold  *int    `toml:"streak-threshold"`
	Countdown        *int    `toml:"countdown"`
	Corpus           *string `toml:"corpus"`
	Record           *bool   `toml:"record"`
	ExportDir        *string `toml:"export-dir"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return FileConfig{}, fmt.Errorf("unknown config keys: %s", strings.Join(keys, ", "))
	}
	return cfg, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the merged practice settings. Field errors are reported
// by their flag names.
func Validate(cfg model.Config) error {
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("failed to validate config: %w", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return errors.New(strings.Join(msgs, "\n"))
}

var flagNames = map[string]string{
	"Tier":             "tier",
	"TickIntervalMs":   "tick-interval-ms",
	"XPPerLevel":       "xp-per-level",
	"StreakThreshold":  "streak-threshold",
	"CountdownSeconds": "countdown",
	"CorpusPath":       "corpus",
}

func fieldMessage(fe validator.FieldError) string {
	name, ok := flagNames[fe.Field()]
	if !ok {
		name = strings.ToLower(fe.Field())
	}
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("--%s must not be empty", name)
	case "oneof":
		return fmt.Sprintf("--%s must be one of: %s", name, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "min":
		return fmt.Sprintf("--%s must be >= %s", name, fe.Param())
	case "max":
		return fmt.Sprintf("--%s must be <= %s", name, fe.Param())
	case "file":
		return fmt.Sprintf("--%s: file %q does not exist", name, fe.Value())
	default:
		return fmt.Sprintf("--%s is invalid (%s)", name, fe.Tag())
	}
}
