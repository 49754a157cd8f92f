// Package decision turns a validated extraction into a final verdict.
//
// Two independent gates admit a verdict only when every one of their
// conditions holds. The gates are deliberately asymmetric: any negative
// term blocks an affirmative verdict, while affirmative terms never block
// a negative one. Anything not admitted collapses to AMBIGUOUS.
package decision

import (
	"strings"

	"github.com/brodheadw/oreacle-bot/internal/model"
)

// DefaultMinConfidence is the confidence floor shared by both gates
const DefaultMinConfidence = 0.75

// Condition names, used in Decision explanations
const (
	CondLabel           = "label"
	CondMatchStrength   = "match_strength"
	CondConfidence      = "confidence"
	CondAffirmativeTerm = "affirmative_term"
	CondEvidenceQuote   = "evidence_quote"
	CondNoExploration   = "no_exploration_scope"
	CondNoNegativeTerm  = "no_negative_term"
	CondNegativeTerm    = "negative_term"
)

// Condition is one named gate requirement and whether it held
type Condition struct {
	Name string
	Met  bool
}

// Gate evaluates extractions against a confidence floor and allow-lists
type Gate struct {
	minConfidence float64
	allow         AllowList
	affZH, affEN  termSet
	negZH, negEN  termSet
}

// NewGate creates a gate with the given confidence floor and phrase lists
func NewGate(minConfidence float64, allow AllowList) *Gate {
	return &Gate{
		minConfidence: minConfidence,
		allow:         allow,
		affZH:         newTermSet(allow.AffirmativeZH),
		affEN:         newTermSet(allow.AffirmativeEN),
		negZH:         newTermSet(allow.NegativeZH),
		negEN:         newTermSet(allow.NegativeEN),
	}
}

// DefaultGate returns a gate with the default floor and phrase lists
func DefaultGate() *Gate {
	return NewGate(DefaultMinConfidence, DefaultAllowList())
}

// MinConfidence returns the configured confidence floor
func (g *Gate) MinConfidence() float64 {
	return g.minConfidence
}

// AffirmativeConditions lists the seven YES requirements in order
func (g *Gate) AffirmativeConditions(x *model.Extraction) []Condition {
	return []Condition{
		{CondLabel, x.ProposedLabel == model.LabelAffirmative},
		{CondMatchStrength, x.MineMatch == model.MatchStrong},
		{CondConfidence, x.Confidence >= g.minConfidence},
		{CondAffirmativeTerm, g.hasAffirmativeTerm(x)},
		{CondEvidenceQuote, hasQuote(x)},
		{CondNoExploration, !g.hasExplorationTerm(x)},
		{CondNoNegativeTerm, !g.hasNegativeTerm(x)},
	}
}

// NegativeConditions lists the four NO requirements in order
func (g *Gate) NegativeConditions(x *model.Extraction) []Condition {
	return []Condition{
		{CondLabel, x.ProposedLabel == model.LabelNegative},
		{CondMatchStrength, x.MineMatch != model.MatchNone},
		{CondNegativeTerm, g.hasNegativeTerm(x)},
		{CondConfidence, x.Confidence >= g.minConfidence},
	}
}

// Affirmative reports whether the YES gate admits x
func (g *Gate) Affirmative(x *model.Extraction) bool {
	return allMet(g.AffirmativeConditions(x))
}

// Negative reports whether the NO gate admits x
func (g *Gate) Negative(x *model.Extraction) bool {
	return allMet(g.NegativeConditions(x))
}

// FinalVerdict resolves YES, then NO, then AMBIGUOUS. It does not validate;
// use Decide for untrusted input.
func (g *Gate) FinalVerdict(x *model.Extraction) model.Verdict {
	if x == nil {
		return model.VerdictAmbiguous
	}

	switch x.ProposedLabel {
	case model.LabelAffirmative:
		if g.Affirmative(x) {
			return model.VerdictAffirmative
		}
	case model.LabelNegative:
		if g.Negative(x) {
			return model.VerdictNegative
		}
	case model.LabelAmbiguous, model.LabelIrrelevant:
		// never actionable
	}
	return model.VerdictAmbiguous
}

// Decision is a verdict plus the conditions that blocked each gate
type Decision struct {
	Verdict           model.Verdict
	FailedAffirmative []string
	FailedNegative    []string
}

// Decide validates x and returns the verdict with its explanation.
// Malformed input yields a *model.ValidationError and no verdict.
func (g *Gate) Decide(x *model.Extraction) (Decision, error) {
	if x == nil {
		return Decision{}, &model.ValidationError{Kind: "extraction", Field: "(document)", Reason: "missing"}
	}
	if err := x.Validate(); err != nil {
		return Decision{}, err
	}

	return Decision{
		Verdict:           g.FinalVerdict(x),
		FailedAffirmative: failed(g.AffirmativeConditions(x)),
		FailedNegative:    failed(g.NegativeConditions(x)),
	}, nil
}

func (g *Gate) hasAffirmativeTerm(x *model.Extraction) bool {
	return g.affEN.intersects(x.TermsEN) || g.affZH.intersects(x.TermsZH)
}

func (g *Gate) hasNegativeTerm(x *model.Extraction) bool {
	return g.negEN.intersects(x.TermsEN) || g.negZH.intersects(x.TermsZH)
}

func (g *Gate) hasExplorationTerm(x *model.Extraction) bool {
	return anyContains(x.TermsEN, g.allow.ExplorationEN) || anyContains(x.TermsZH, g.allow.ExplorationZH)
}

// hasQuote requires at least one literal, non-blank source quote
func hasQuote(x *model.Extraction) bool {
	for _, e := range x.Evidence {
		if strings.TrimSpace(e.Quote) != "" {
			return true
		}
	}
	return false
}

func allMet(conds []Condition) bool {
	for _, c := range conds {
		if !c.Met {
			return false
		}
	}
	return true
}

func failed(conds []Condition) []string {
	var names []string
	for _, c := range conds {
		if !c.Met {
			names = append(names, c.Name)
		}
	}
	return names
}
