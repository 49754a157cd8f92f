package llm

import (
	"context"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/brodheadw/oreacle-bot/internal/model"
)

// RuleModel is reported as the model name of rule-based extractions
const RuleModel = "rules-v1"

const (
	ruleConfidence      = 0.8 // A status pattern matched
	ambiguousConfidence = 0.5 // Region mentioned, no status pattern
	noHintConfidence    = 0.9 // Nothing points at the mine or region
)

// Used as doc_url when the item has no URL; the record contract requires one.
const noSourceURL = "about:blank"

// clauseBreaks delimit the clause quoted as evidence
const clauseBreaks = "。！？；;!?\n"

// Rule is one status pattern over the Chinese text
type Rule struct {
	Name    string
	Label   model.Label
	Pattern *regexp.Regexp
	Gloss   string // Fixed English rendering, reported as the English term
}

// DefaultRules are the license and production status patterns. Affirmative
// rules are listed first; a document matching both kinds is labelled
// affirmative and left to the gate, which blocks it on the negative term.
var DefaultRules = []Rule{
	{Name: "license-renewal", Label: model.LabelAffirmative, Pattern: regexp.MustCompile(`许可(证)?(延续|续期|换发)`), Gloss: "license renewal"},
	{Name: "production-resumed", Label: model.LabelAffirmative, Pattern: regexp.MustCompile(`恢复(生产|开采|采矿)`), Gloss: "resume production"},
	{Name: "production-approved", Label: model.LabelAffirmative, Pattern: regexp.MustCompile(`准予(生产|开采)`), Gloss: "production approved"},
	{Name: "exploration-only", Label: model.LabelNegative, Pattern: regexp.MustCompile(`(仅|只|限)勘(探|查)`), Gloss: "exploration only"},
	{Name: "production-halted", Label: model.LabelNegative, Pattern: regexp.MustCompile(`责令停产|暂停开采|停止生产`), Gloss: "halt production"},
	{Name: "license-revoked", Label: model.LabelNegative, Pattern: regexp.MustCompile(`行政处罚|吊销采矿许可证`), Gloss: "license revoked"},
}

// Mine names give a strong match; region names only a possible one
var (
	mineHints   = regexp.MustCompile(`(?i)枧下窝|jianxiawo`)
	regionHints = regexp.MustCompile(`(?i)宜丰|奉新|宜春|江西|yichun|jiangxi`)
)

// RuleProvider extracts records with fixed regular expressions instead of a
// language model. It needs no network access and is deterministic, so its
// records are coarse: one evidence entry per matched rule, quoting the clause
// around the match.
type RuleProvider struct {
	rules []Rule
}

// NewRuleProvider creates a provider with the default rules
func NewRuleProvider() *RuleProvider {
	return &RuleProvider{rules: DefaultRules}
}

// Name returns the provider name
func (p *RuleProvider) Name() string {
	return "rules"
}

// IsAvailable is always true
func (p *RuleProvider) IsAvailable(ctx context.Context) bool {
	return true
}

// Extract classifies the text and returns a validated record
func (p *RuleProvider) Extract(ctx context.Context, req ExtractRequest) (*ExtractResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, &ExtractionError{Provider: p.Name(), Err: err}
	}

	x := p.classify(req.SourceText)
	x.DocURL = req.SourceURL
	if strings.TrimSpace(x.DocURL) == "" {
		x.DocURL = noSourceURL
	}

	if err := x.Validate(); err != nil {
		return nil, &ExtractionError{Provider: p.Name(), Err: err}
	}

	return &ExtractResponse{Extraction: x, Model: RuleModel}, nil
}

func (p *RuleProvider) classify(text string) *model.Extraction {
	x := &model.Extraction{
		TermsZH:  []string{},
		TermsEN:  []string{},
		Evidence: []model.Evidence{},
		Hazards:  []string{},
	}

	switch {
	case mineHints.MatchString(text):
		x.MineMatch = model.MatchStrong
	case regionHints.MatchString(text):
		x.MineMatch = model.MatchPossible
	default:
		x.MineMatch = model.MatchNone
		x.ProposedLabel = model.LabelIrrelevant
		x.Confidence = noHintConfidence
		return x
	}

	var affirmative, negative bool
	for _, r := range p.rules {
		loc := r.Pattern.FindStringIndex(text)
		if loc == nil {
			continue
		}
		switch r.Label {
		case model.LabelAffirmative:
			affirmative = true
		case model.LabelNegative:
			negative = true
		}

		x.TermsZH = append(x.TermsZH, text[loc[0]:loc[1]])
		x.TermsEN = append(x.TermsEN, r.Gloss)
		x.Evidence = append(x.Evidence, model.Evidence{
			Quote:       clauseAround(text, loc[0], loc[1]),
			Translation: r.Gloss,
			Locator:     "rule:" + r.Name,
		})
	}

	switch {
	case affirmative:
		x.ProposedLabel = model.LabelAffirmative
	case negative:
		x.ProposedLabel = model.LabelNegative
	default:
		x.ProposedLabel = model.LabelAmbiguous
		x.Confidence = ambiguousConfidence
		return x
	}

	x.Confidence = ruleConfidence
	x.Hazards = append(x.Hazards, "rule-based classification without model review")
	if affirmative && negative {
		x.Hazards = append(x.Hazards, "both affirmative and negative patterns matched")
	}
	return x
}

// clauseAround returns the clause of text containing [start, end)
func clauseAround(text string, start, end int) string {
	from := 0
	if i := strings.LastIndexAny(text[:start], clauseBreaks); i >= 0 {
		_, size := utf8.DecodeRuneInString(text[i:])
		from = i + size
	}

	to := len(text)
	if i := strings.IndexAny(text[end:], clauseBreaks); i >= 0 {
		to = end + i
	}

	return strings.TrimSpace(text[from:to])
}
