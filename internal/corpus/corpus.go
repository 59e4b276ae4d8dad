// Package corpus holds the tiered sample texts a session draws from.
package corpus

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"time"

	"github.com/verte-zerg/speedtype/internal/model"
)

// ErrEmptyCorpus reports a tier without samples or an empty sample.
var ErrEmptyCorpus = errors.New("corpus has an empty tier or sample")

// InvalidTierError reports a tier that is not a key of the corpus.
type InvalidTierError struct {
	Tier string
}

func (e *InvalidTierError) Error() string {
	return fmt.Sprintf("unknown difficulty tier %q", e.Tier)
}

// Corpus maps each tier to its ordered list of samples.
type Corpus map[model.Tier][]string

// Builtin returns a copy of the built-in corpus.
func Builtin() Corpus {
	out := make(Corpus, len(builtin))
	for tier, samples := range builtin {
		out[tier] = append([]string(nil), samples...)
	}
	return out
}

// Validate checks that every known tier has at least one non-empty sample.
func (c Corpus) Validate() error {
	for _, tier := range model.Tiers {
		samples, ok := c[tier]
		if !ok || len(samples) == 0 {
			return fmt.Errorf("tier %s: %w", tier, ErrEmptyCorpus)
		}
		for i, s := range samples {
			if strings.TrimSpace(s) == "" {
				return fmt.Errorf("tier %s sample %d: %w", tier, i+1, ErrEmptyCorpus)
			}
		}
	}
	return nil
}

// Tiers returns the corpus tiers in display order, known tiers first.
func (c Corpus) Tiers() []model.Tier {
	out := make([]model.Tier, 0, len(c))
	seen := map[model.Tier]struct{}{}
	for _, tier := range model.Tiers {
		if _, ok := c[tier]; ok {
			out = append(out, tier)
			seen[tier] = struct{}{}
		}
	}
	var extra []model.Tier
	for tier := range c {
		if _, ok := seen[tier]; !ok {
			extra = append(extra, tier)
		}
	}
	sort.Slice(extra, func(i, j int) bool { return extra[i] < extra[j] })
	return append(out, extra...)
}

// ParseTier resolves a tier name case-insensitively.
func ParseTier(name string) (model.Tier, error) {
	trimmed := strings.TrimSpace(name)
	for _, tier := range model.Tiers {
		if strings.EqualFold(string(tier), trimmed) {
			return tier, nil
		}
	}
	return "", &InvalidTierError{Tier: name}
}

// Provider selects random samples from a corpus.
type Provider struct {
	corpus Corpus
	rnd    *rand.Rand
}

// NewProvider returns a Provider seeded with the current time.
func NewProvider(c Corpus) *Provider {
	return NewProviderWithSource(c, rand.NewSource(time.Now().UnixNano()))
}

// NewProviderWithSource returns a Provider using the given random source.
func NewProviderWithSource(c Corpus, src rand.Source) *Provider {
	return &Provider{corpus: c, rnd: rand.New(src)}
}

// Select returns one sample of the tier chosen uniformly at random.
func (p *Provider) Select(tier model.Tier) (string, error) {
	samples, ok := p.corpus[tier]
	if !ok || len(samples) == 0 {
		return "", &InvalidTierError{Tier: string(tier)}
	}
	return samples[p.rnd.Intn(len(samples))], nil
}

// Corpus returns the corpus backing the provider.
func (p *Provider) Corpus() Corpus {
	return p.corpus
}

var builtin = Corpus{
	model.Beginner: {
		"The cat sits on the mat.",
		"I like to eat pizza.",
		"The sun is bright today.",
		"Dogs are very loyal pets.",
		"Water is essential for life.",
	},
	model.Intermediate: {
		"The quick brown fox jumps over the lazy dog near the riverbank.",
		"Programming requires logical thinking and creative problem-solving skills.",
		"Technology continues to advance at an unprecedented rate in modern society.",
		"Learning new languages opens doors to different cultures and opportunities.",
		"The art of cooking combines science, creativity, and cultural traditions together.",
	},
	model.Advanced: {
		"Artificial intelligence and machine learning algorithms are revolutionizing industries across the globe, fundamentally changing how we approach complex computational problems.",
		"The implementation of sophisticated data structures and algorithms requires not only theoretical understanding but also practical experience in optimizing performance characteristics.",
		"Quantum computing represents a paradigm shift in computational capabilities, potentially solving problems that are intractable for classical computers through quantum superposition and entanglement.",
		"Cybersecurity professionals must constantly adapt to emerging threats while implementing robust defense mechanisms that protect sensitive information from sophisticated adversaries.",
		"The intersection of biotechnology and artificial intelligence is creating unprecedented opportunities for medical breakthroughs and personalized treatment methodologies.",
	},
	model.Expert: {
		"The epistemological foundations of contemporary philosophical discourse necessitate a comprehensive examination of phenomenological hermeneutics and post-structuralist critiques of traditional metaphysical paradigms.",
		"Neuroplasticity research demonstrates that synaptic connections undergo continuous reorganization throughout the lifespan, challenging previous assumptions about fixed neural architectures and cognitive limitations.",
		"Macroeconomic theory encompasses complex interdependencies between fiscal policy, monetary policy, international trade dynamics, and technological innovation cycles that influence long-term economic stability.",
		"Bioinformatics algorithms must efficiently process vast genomic datasets while accounting for evolutionary relationships, structural variations, and epigenetic modifications that influence gene expression patterns.",
		"Astrophysical simulations of galactic formation require sophisticated numerical methods to model gravitational interactions, dark matter distributions, and stellar nucleosynthesis processes across cosmological timescales.",
	},
}
