// Package prefilter decides cheaply whether a raw item is worth sending to
// the extraction model. Rejection is the normal outcome for most traffic.
package prefilter

import (
	"strings"

	"github.com/brodheadw/oreacle-bot/internal/model"
	"github.com/brodheadw/oreacle-bot/internal/phrasebook"
)

// Latin transliterations of 枧下窝 that match on their own.
var latinVariants = []string{"jianxiawo", "jianxia wo", "jian xia wo"}

// Mining context required before a typo variant counts.
var miningTerms = []string{"mining", "采矿", "矿", "lithium", "锂", "mine"}

// Known misspellings of 枧下窝 within two character edits. This is an
// explicit lookup table, not an edit-distance search: only these exact
// strings match, and they must appear verbatim.
var typoVariants = []string{"建夏沃", "建夏窝", "涧下窝"}

// Passes reports whether text is relevant enough for extraction
func Passes(text string, pb *phrasebook.Phrasebook) bool {
	return BooleanFilter(text, pb) || FuzzyMineMatch(text)
}

// Evaluate runs both checks and reports each result
func Evaluate(text string, pb *phrasebook.Phrasebook) model.PrefilterResult {
	boolean := BooleanFilter(text, pb)
	fuzzy := FuzzyMineMatch(text)
	return model.PrefilterResult{
		Passed:  boolean || fuzzy,
		Boolean: boolean,
		Fuzzy:   fuzzy,
	}
}

// BooleanFilter requires an entity or geographic alias AND a license-action
// term (affirmative, negative, or traditional-script). A nil phrasebook or an
// empty half never matches.
func BooleanFilter(text string, pb *phrasebook.Phrasebook) bool {
	if pb == nil {
		return false
	}
	lower := strings.ToLower(text)
	return containsAny(lower, pb.EntityTerms()) && containsAny(lower, pb.ActionTerms())
}

// FuzzyMineMatch catches transliterations and known typos of the mine name
func FuzzyMineMatch(text string) bool {
	lower := strings.ToLower(text)

	if containsAny(lower, latinVariants) {
		return true
	}

	if !containsAny(lower, miningTerms) {
		return false
	}
	// CJK variants are matched against the original text
	for _, v := range typoVariants {
		if strings.Contains(text, v) {
			return true
		}
	}
	return false
}

// containsAny reports whether lower contains any term, case-insensitively
func containsAny(lower string, terms []string) bool {
	for _, term := range terms {
		if term == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(term)) {
			return true
		}
	}
	return false
}
