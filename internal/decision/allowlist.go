package decision

import "strings"

// AllowList holds the phrases a matched term must hit for a gate to admit.
// The lists are curated data, versioned with the code; tests pin individual
// entries rather than the whole set.
type AllowList struct {
	AffirmativeZH []string `yaml:"affirmative_zh" json:"affirmative_zh"`
	AffirmativeEN []string `yaml:"affirmative_en" json:"affirmative_en"`
	NegativeZH    []string `yaml:"negative_zh" json:"negative_zh"`
	NegativeEN    []string `yaml:"negative_en" json:"negative_en"`

	// Substrings that mark a term as exploration-only scope
	ExplorationZH []string `yaml:"exploration_zh" json:"exploration_zh"`
	ExplorationEN []string `yaml:"exploration_en" json:"exploration_en"`
}

// DefaultAllowList returns the built-in phrase lists
func DefaultAllowList() AllowList {
	return AllowList{
		AffirmativeZH: []string{"采矿许可证恢复", "恢复生产", "恢复开采", "核发采矿许可证", "延续", "续期", "换发"},
		AffirmativeEN: []string{"mining license renewed", "resume production", "resumption of mining", "license renewal", "permit renewal"},
		NegativeZH:    []string{"仅限勘探", "探矿权", "暂停生产", "停止生产", "责令停产"},
		NegativeEN:    []string{"exploration only", "exploration permit", "suspend production", "halt production"},
		ExplorationZH: []string{"勘探"},
		ExplorationEN: []string{"exploration"},
	}
}

// termSet is a set of normalized phrases
type termSet map[string]struct{}

func newTermSet(terms []string) termSet {
	s := make(termSet, len(terms))
	for _, t := range terms {
		if n := normalize(t); n != "" {
			s[n] = struct{}{}
		}
	}
	return s
}

// intersects reports whether any term is in the set
func (s termSet) intersects(terms []string) bool {
	for _, t := range terms {
		if _, ok := s[normalize(t)]; ok {
			return true
		}
	}
	return false
}

// anyContains reports whether any term contains one of the markers
func anyContains(terms, markers []string) bool {
	for _, t := range terms {
		n := normalize(t)
		for _, m := range markers {
			if m = normalize(m); m != "" && strings.Contains(n, m) {
				return true
			}
		}
	}
	return false
}

func normalize(term string) string {
	return strings.ToLower(strings.TrimSpace(term))
}
