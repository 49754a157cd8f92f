package model

import "time"

// ActionKind is the class of outbound action suggested to the comment collaborator.
// The engine never posts or trades on its own.
type ActionKind string

const (
	ActionComment ActionKind = "comment"
	ActionNone    ActionKind = "none"
)

// Action routes rendered text to a target market
type Action struct {
	Kind       ActionKind `json:"kind"`
	MarketID   string     `json:"market_id,omitempty"`
	MarketSlug string     `json:"market_slug,omitempty"`
	Text       string     `json:"text,omitempty"`
}

// Stage records how far an item got through the pipeline
type Stage string

const (
	StageFiltered Stage = "filtered" // Rejected by the relevance prefilter
	StageDecided  Stage = "decided"  // Extracted and gated
	StageFailed   Stage = "failed"   // Extraction or validation error
)

// PrefilterResult breaks down the relevance decision
type PrefilterResult struct {
	Passed  bool `json:"passed"`
	Boolean bool `json:"boolean"`
	Fuzzy   bool `json:"fuzzy"`
}

// SourceTier ranks where a document was published
type SourceTier string

const (
	TierPrimary   SourceTier = "primary"   // Government regulators
	TierSecondary SourceTier = "secondary" // Exchange disclosure platforms
	TierTertiary  SourceTier = "tertiary"  // Everything else
)

// ItemOutcome is the result of running one item through the pipeline
type ItemOutcome struct {
	Item              RawItem         `json:"item"`
	Stage             Stage           `json:"stage"`
	SourceTier        SourceTier      `json:"source_tier,omitempty"`
	Prefilter         PrefilterResult `json:"prefilter"`
	Extraction        *Extraction     `json:"extraction,omitempty"`
	CacheHit          bool            `json:"cache_hit,omitempty"`
	Verdict           Verdict         `json:"verdict,omitempty"`
	FailedAffirmative []string        `json:"failed_affirmative,omitempty"` // Unmet YES gate conditions
	FailedNegative    []string        `json:"failed_negative,omitempty"`    // Unmet NO gate conditions
	Action            Action          `json:"action"`
	Error             string          `json:"error,omitempty"`
}

// BatchSummary counts outcomes by stage and verdict
type BatchSummary struct {
	Total       int `json:"total"`
	Filtered    int `json:"filtered"`
	Affirmative int `json:"affirmative"`
	Negative    int `json:"negative"`
	Ambiguous   int `json:"ambiguous"`
	Failed      int `json:"failed"`
	Rejected    int `json:"rejected"`
}

// BatchReport is the complete result of an evaluate run
type BatchReport struct {
	RunID      string         `json:"run_id"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at"`
	Outcomes   []ItemOutcome  `json:"outcomes"`
	Rejected   []RejectedItem `json:"rejected,omitempty"`
	Summary    BatchSummary   `json:"summary"`
}

// RejectedItem is an input record that could not be decoded or failed validation.
// Line is the JSONL line number, or the element position in a JSON array.
type RejectedItem struct {
	Line   int    `json:"line"`
	Source string `json:"source,omitempty"`
	ItemID string `json:"item_id,omitempty"`
	Error  string `json:"error"`
}

// AddRejected records input rejections on the report and refreshes the summary
func (r *BatchReport) AddRejected(rejected []RejectedItem) {
	r.Rejected = append(r.Rejected, rejected...)
	r.Summarize()
}

// Summarize recomputes the summary counters from the outcomes
func (r *BatchReport) Summarize() {
	s := BatchSummary{Total: len(r.Outcomes)}
	for _, o := range r.Outcomes {
		switch o.Stage {
		case StageFiltered:
			s.Filtered++
		case StageFailed:
			s.Failed++
		case StageDecided:
			switch o.Verdict {
			case VerdictAffirmative:
				s.Affirmative++
			case VerdictNegative:
				s.Negative++
			default:
				s.Ambiguous++
			}
		}
	}
	s.Rejected = len(r.Rejected)
	r.Summary = s
}

// ViolationAction pairs a violation with its suggested comment
type ViolationAction struct {
	Violation Violation `json:"violation"`
	Action    Action    `json:"action"`
}

// RejectedMarket is a market snapshot that failed validation
type RejectedMarket struct {
	Market Market `json:"market"`
	Error  string `json:"error"`
}

// LadderReport is the result of one monotonicity check cycle
type LadderReport struct {
	RunID           string            `json:"run_id"`
	CheckedAt       time.Time         `json:"checked_at"`
	Tolerance       float64           `json:"tolerance"`
	MarketsChecked  int               `json:"markets_checked"`
	GroupsChecked   int               `json:"groups_checked"`
	ViolationsFound int               `json:"violations_found"`
	CommentsPlanned int               `json:"comments_planned"`
	Violations      []ViolationAction `json:"violations"`
	Rejected        []RejectedMarket  `json:"rejected,omitempty"`
}
