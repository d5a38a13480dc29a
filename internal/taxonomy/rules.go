package taxonomy

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed rules.yml
var defaultRules []byte

type Node struct {
	ID       string   `yaml:"id" json:"id"`
	Name     string   `yaml:"name" json:"name"`
	Keywords []string `yaml:"keywords" json:"keywords"`
}

type Layer struct {
	ID        string   `yaml:"id" json:"id"`
	Name      string   `yaml:"name" json:"name"`
	HotSkills []string `yaml:"hot_skills" json:"hot_skills"`
	Keywords  []string `yaml:"keywords" json:"keywords"`
	Nodes     []Node   `yaml:"nodes" json:"nodes"`
}

type IndustryRules struct {
	ID       Industry `yaml:"id" json:"id"`
	Name     string   `yaml:"name" json:"name"`
	Keywords []string `yaml:"keywords" json:"keywords"`
	Layers   []Layer  `yaml:"layers" json:"layers"`
}

// UrgencyThresholds are inclusive lower bounds on the largest salary figure.
type UrgencyThresholds struct {
	High   int `yaml:"high" json:"high"`
	Medium int `yaml:"medium" json:"medium"`
}

// Rules is the full keyword taxonomy. It is read-only once loaded.
type Rules struct {
	Urgency    UrgencyThresholds `yaml:"urgency" json:"urgency"`
	Industries []IndustryRules   `yaml:"industries" json:"industries"`
}

var (
	defaultOnce sync.Once
	defaultVal  *Rules
)

// Default returns the embedded rule set. It panics if the embedded file is
// broken, which can only happen at build time.
func Default() *Rules {
	defaultOnce.Do(func() {
		r, err := Parse(defaultRules)
		if err != nil {
			panic(fmt.Sprintf("taxonomy: embedded rules: %v", err))
		}
		defaultVal = r
	})
	return defaultVal
}

// Load reads an override rules file. An empty path yields Default().
func Load(path string) (*Rules, error) {
	if strings.TrimSpace(path) == "" {
		return Default(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(b)
}

func Parse(b []byte) (*Rules, error) {
	var r Rules
	if err := yaml.Unmarshal(b, &r); err != nil {
		return nil, fmt.Errorf("parse rules: %w", err)
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	r.sortIndustries()
	return &r, nil
}

// sortIndustries puts industries in tie-break order regardless of the order
// the file lists them in.
func (r *Rules) sortIndustries() {
	slices.SortStableFunc(r.Industries, func(a, b IndustryRules) int {
		return a.ID.Rank() - b.ID.Rank()
	})
}

// Validate checks that every industry is known and appears once, that pharma
// (the default industry) is present, and that each industry has at least one
// layer and each layer at least one node.
func (r *Rules) Validate() error {
	var errs []error
	addErr := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	if len(r.Industries) == 0 {
		addErr("no industries defined")
	}
	if r.Urgency.High <= r.Urgency.Medium || r.Urgency.Medium <= 0 {
		addErr("urgency thresholds must satisfy 0 < medium < high (got medium=%d high=%d)", r.Urgency.Medium, r.Urgency.High)
	}

	seen := map[Industry]bool{}
	for _, ind := range r.Industries {
		if !ind.ID.Valid() {
			addErr("unknown industry %q", ind.ID)
			continue
		}
		if seen[ind.ID] {
			addErr("industry %q defined twice", ind.ID)
		}
		seen[ind.ID] = true

		if len(ind.Layers) == 0 {
			addErr("industry %q has no layers", ind.ID)
		}
		layers := map[string]bool{}
		for _, l := range ind.Layers {
			if strings.TrimSpace(l.ID) == "" {
				addErr("industry %q has a layer without id", ind.ID)
				continue
			}
			if layers[l.ID] {
				addErr("industry %q: layer %q defined twice", ind.ID, l.ID)
			}
			layers[l.ID] = true
			if len(l.Nodes) == 0 {
				addErr("industry %q: layer %q has no nodes", ind.ID, l.ID)
			}
			for _, n := range l.Nodes {
				if strings.TrimSpace(n.ID) == "" {
					addErr("industry %q: layer %q has a node without id", ind.ID, l.ID)
				}
			}
		}
	}
	if len(r.Industries) > 0 && !seen[Pharma] {
		addErr("default industry %q is missing", Pharma)
	}
	return errors.Join(errs...)
}

// Industry looks up the rules of one industry.
func (r *Rules) Industry(id Industry) (*IndustryRules, bool) {
	for i := range r.Industries {
		if r.Industries[i].ID == id {
			return &r.Industries[i], true
		}
	}
	return nil, false
}

// Layer looks up a layer inside an industry.
func (ir *IndustryRules) Layer(id string) (*Layer, bool) {
	for i := range ir.Layers {
		if ir.Layers[i].ID == id {
			return &ir.Layers[i], true
		}
	}
	return nil, false
}
