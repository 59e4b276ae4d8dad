package corpus

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type corpusFile struct {
	Tiers map[string][]string `yaml:"tiers"`
}

// LoadFile reads a YAML corpus and overlays it on the built-in corpus.
// Tiers named in the file replace the built-in samples for that tier.
func LoadFile(path string) (Corpus, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read corpus: %w", err)
	}
	var file corpusFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse corpus YAML: %w", err)
	}

	c := Builtin()
	for name, samples := range file.Tiers {
		tier, err := ParseTier(name)
		if err != nil {
			return nil, fmt.Errorf("corpus %s: %w", path, err)
		}
		cleaned := make([]string, 0, len(samples))
		for _, s := range samples {
			cleaned = append(cleaned, strings.TrimSpace(s))
		}
		c[tier] = cleaned
		slog.Debug("corpus tier loaded", "tier", tier, "samples", len(cleaned), "file", path)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("corpus %s: %w", path, err)
	}
	return c, nil
}

// Load returns the built-in corpus, or the overlay from path when set.
func Load(path string) (Corpus, error) {
	if path == "" {
		c := Builtin()
		if err := c.Validate(); err != nil {
			return nil, err
		}
		return c, nil
	}
	return LoadFile(path)
}
