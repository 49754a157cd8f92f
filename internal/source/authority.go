// Package source ranks the publishers of raw items
package source

import (
	"net/url"
	"strings"

	"github.com/brodheadw/oreacle-bot/internal/model"
)

// Classifier maps document URLs to authority tiers
type Classifier struct {
	domainMap map[string]model.SourceTier
	primary   []string
	secondary []string
}

// NewClassifier creates a classifier. A nil config uses the built-in domains.
func NewClassifier(config *model.SourceConfig) *Classifier {
	if config == nil {
		config = &model.DefaultConfig().Sources
	}

	c := &Classifier{
		domainMap: make(map[string]model.SourceTier, len(config.DomainMap)),
		primary:   normalizeDomains(config.PrimaryDomains),
		secondary: normalizeDomains(config.SecondaryDomains),
	}
	for host, tier := range config.DomainMap {
		c.domainMap[strings.ToLower(host)] = ParseTier(tier)
	}
	return c
}

// Classify returns the tier of rawURL. Explicit host mappings win, then
// primary and secondary domains (including subdomains). Anything
// unparseable or unknown is tertiary.
func (c *Classifier) Classify(rawURL string) model.SourceTier {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || parsed.Hostname() == "" {
		return model.TierTertiary
	}
	host := strings.ToLower(parsed.Hostname())

	if tier, ok := c.domainMap[host]; ok {
		return tier
	}
	if matchesDomain(host, c.primary) {
		return model.TierPrimary
	}
	if matchesDomain(host, c.secondary) {
		return model.TierSecondary
	}
	return model.TierTertiary
}

func matchesDomain(host string, domains []string) bool {
	for _, d := range domains {
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}

func normalizeDomains(domains []string) []string {
	out := make([]string, 0, len(domains))
	for _, d := range domains {
		if d = strings.Trim(strings.ToLower(strings.TrimSpace(d)), "."); d != "" {
			out = append(out, d)
		}
	}
	return out
}

// ParseTier converts a tier name to a SourceTier
func ParseTier(tier string) model.SourceTier {
	switch strings.ToLower(strings.TrimSpace(tier)) {
	case "primary", "1":
		return model.TierPrimary
	case "secondary", "2":
		return model.TierSecondary
	default:
		return model.TierTertiary
	}
}
