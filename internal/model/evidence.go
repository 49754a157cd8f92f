package model

import (
	"encoding/json"
	"math"
	"strings"
)

// Label is the label proposed by the extraction collaborator
type Label string

const (
	LabelAffirmative Label = "YES_CONDITION" // License renewed / production resumed
	LabelNegative    Label = "NO_CONDITION"  // Suspension, exploration-only, revocation
	LabelAmbiguous   Label = "AMBIGUOUS"     // Mentions the mine without a clear status
	LabelIrrelevant  Label = "IRRELEVANT"    // Not about the tracked mine
)

// Labels lists every label in schema order
var Labels = []Label{LabelAffirmative, LabelNegative, LabelAmbiguous, LabelIrrelevant}

// Valid reports whether l is one of the four known labels
func (l Label) Valid() bool {
	switch l {
	case LabelAffirmative, LabelNegative, LabelAmbiguous, LabelIrrelevant:
		return true
	default:
		return false
	}
}

// MatchStrength is how strongly a document matched the canonical mine entity
type MatchStrength string

const (
	MatchStrong   MatchStrength = "JIANXIAWO_MATCH"
	MatchPossible MatchStrength = "POSSIBLE_MATCH"
	MatchNone     MatchStrength = "NO_MATCH"
)

// MatchStrengths lists every match strength in schema order
var MatchStrengths = []MatchStrength{MatchStrong, MatchPossible, MatchNone}

// Valid reports whether m is one of the three known strengths
func (m MatchStrength) Valid() bool {
	switch m {
	case MatchStrong, MatchPossible, MatchNone:
		return true
	default:
		return false
	}
}

// Evidence is a literal quote from the source document. All three fields are
// mandatory: a verdict is never trusted without the quote that supports it.
type Evidence struct {
	Quote       string `json:"exact_zh_quote"` // Exact source-language clause
	Translation string `json:"en_literal"`     // Literal EN translation of the same clause
	Locator     string `json:"where_in_doc"`   // URL fragment, section, or anchor
}

// Extraction is the structured record returned by the extraction collaborator
type Extraction struct {
	DocURL        string        `json:"doc_url"`
	DocTitle      string        `json:"doc_title,omitempty"`
	MineMatch     MatchStrength `json:"mine_match"`
	Authority     string        `json:"authority,omitempty"`
	TermsZH       []string      `json:"key_terms_found_zh"`
	TermsEN       []string      `json:"key_terms_found_en"`
	ProposedLabel Label         `json:"proposed_label"`
	Confidence    float64       `json:"confidence"`
	Evidence      []Evidence    `json:"evidence"`
	Hazards       []string      `json:"hazards"`
}

// Validate checks the extraction contract. It returns a *ValidationError for
// the first violated invariant.
func (x *Extraction) Validate() error {
	if strings.TrimSpace(x.DocURL) == "" {
		return invalid("extraction", "doc_url", "must not be empty")
	}
	if !x.MineMatch.Valid() {
		return invalid("extraction", "mine_match", "unrecognized value %q", x.MineMatch)
	}
	if !x.ProposedLabel.Valid() {
		return invalid("extraction", "proposed_label", "unrecognized value %q", x.ProposedLabel)
	}
	if math.IsNaN(x.Confidence) || x.Confidence < 0 || x.Confidence > 1 {
		return invalid("extraction", "confidence", "%v outside [0,1]", x.Confidence)
	}

	switch x.ProposedLabel {
	case LabelAffirmative, LabelNegative:
		if len(x.Evidence) == 0 {
			return invalid("extraction", "evidence", "required for label %s", x.ProposedLabel)
		}
	case LabelAmbiguous, LabelIrrelevant:
	}

	for i, e := range x.Evidence {
		switch {
		case strings.TrimSpace(e.Quote) == "":
			return invalid("extraction", "evidence.exact_zh_quote", "entry %d is empty", i)
		case strings.TrimSpace(e.Translation) == "":
			return invalid("extraction", "evidence.en_literal", "entry %d is empty", i)
		case strings.TrimSpace(e.Locator) == "":
			return invalid("extraction", "evidence.where_in_doc", "entry %d is empty", i)
		}
	}

	return nil
}

// ParseExtraction decodes and validates an extraction record
func ParseExtraction(data []byte) (*Extraction, error) {
	var x Extraction
	if err := json.Unmarshal(data, &x); err != nil {
		return nil, &ValidationError{Kind: "extraction", Field: "(document)", Reason: err.Error()}
	}
	if err := x.Validate(); err != nil {
		return nil, err
	}
	return &x, nil
}

// Verdict is the final decision. IRRELEVANT is not representable here: it is
// absorbed into VerdictAmbiguous by the decision gate.
type Verdict string

const (
	VerdictAffirmative Verdict = "YES_CONDITION"
	VerdictNegative    Verdict = "NO_CONDITION"
	VerdictAmbiguous   Verdict = "AMBIGUOUS"
)

// Actionable reports whether the verdict justifies an outbound comment
func (v Verdict) Actionable() bool {
	switch v {
	case VerdictAffirmative, VerdictNegative:
		return true
	default:
		return false
	}
}
