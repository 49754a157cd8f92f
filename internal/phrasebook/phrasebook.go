// Package phrasebook loads the alias and license-action vocabularies that
// drive relevance filtering and the extraction prompt.
package phrasebook

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultYAML []byte

// Phrasebook is a read-only bundle of alias sets. Build it once at startup and
// pass it to every prefilter and extraction call.
type Phrasebook struct {
	CompanyAliases []string `yaml:"company_aliases" json:"company_aliases"`
	MineAliases    []string `yaml:"mine_aliases" json:"mine_aliases"`
	GeoAliases     []string `yaml:"geo_aliases" json:"geo_aliases"`
	YesZH          []string `yaml:"yes_zh" json:"yes_zh"`
	YesEN          []string `yaml:"yes_en" json:"yes_en"`
	NoZH           []string `yaml:"no_zh" json:"no_zh"`
	NoEN           []string `yaml:"no_en" json:"no_en"`
	TraditionalZH  []string `yaml:"traditional_zh" json:"traditional_zh"`
}

// ConfigurationError reports a phrasebook category that is present but malformed
type ConfigurationError struct {
	Key    string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("phrasebook %s: %s", e.Key, e.Reason)
}

type category struct {
	key string
	dst *[]string
}

func (p *Phrasebook) categories() []category {
	return []category{
		{"company_aliases", &p.CompanyAliases},
		{"mine_aliases", &p.MineAliases},
		{"geo_aliases", &p.GeoAliases},
		{"yes_zh", &p.YesZH},
		{"yes_en", &p.YesEN},
		{"no_zh", &p.NoZH},
		{"no_en", &p.NoEN},
		{"traditional_zh", &p.TraditionalZH},
	}
}

// Parse decodes a YAML (or JSON) phrasebook. Missing categories are empty;
// a category that is not a list of non-empty strings is a ConfigurationError.
// Unknown keys are ignored.
func Parse(data []byte) (*Phrasebook, error) {
	var raw map[string]interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, &ConfigurationError{Key: "(document)", Reason: err.Error()}
	}

	p := &Phrasebook{}
	for _, c := range p.categories() {
		value, ok := raw[c.key]
		if !ok || value == nil {
			continue
		}
		terms, err := toTerms(c.key, value)
		if err != nil {
			return nil, err
		}
		*c.dst = terms
	}
	return p, nil
}

func toTerms(key string, value interface{}) ([]string, error) {
	list, ok := value.([]interface{})
	if !ok {
		return nil, &ConfigurationError{Key: key, Reason: fmt.Sprintf("expected a list of strings, got %T", value)}
	}

	terms := make([]string, 0, len(list))
	for i, entry := range list {
		s, ok := entry.(string)
		if !ok {
			return nil, &ConfigurationError{Key: key, Reason: fmt.Sprintf("entry %d is %T, not a string", i, entry)}
		}
		// An empty term would match every text
		if strings.TrimSpace(s) == "" {
			return nil, &ConfigurationError{Key: key, Reason: fmt.Sprintf("entry %d is empty", i)}
		}
		terms = append(terms, s)
	}
	return terms, nil
}

// Load reads a phrasebook file. An empty path returns the built-in phrasebook.
func Load(path string) (*Phrasebook, error) {
	if path == "" {
		return Parse(defaultYAML)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read phrasebook: %w", err)
	}
	return Parse(data)
}

// Default returns the built-in phrasebook
func Default() *Phrasebook {
	p, err := Parse(defaultYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded phrasebook is invalid: %v", err))
	}
	return p
}

// EntityTerms returns company, mine and geographic aliases
func (p *Phrasebook) EntityTerms() []string {
	return concat(p.CompanyAliases, p.MineAliases, p.GeoAliases)
}

// ActionTerms returns every license-action term in both languages, including
// traditional-script variants
func (p *Phrasebook) ActionTerms() []string {
	return concat(p.YesZH, p.YesEN, p.NoZH, p.NoEN, p.TraditionalZH)
}

func concat(lists ...[]string) []string {
	n := 0
	for _, l := range lists {
		n += len(l)
	}
	out := make([]string, 0, n)
	for _, l := range lists {
		out = append(out, l...)
	}
	return out
}
