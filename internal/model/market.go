package model

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Market is a read-only snapshot of a prediction market
type Market struct {
	ID          string  `json:"id"`
	Slug        string  `json:"slug,omitempty"`
	Question    string  `json:"question"`
	Probability float64 `json:"probability"`
}

// Validate checks the snapshot invariants
func (m Market) Validate() error {
	if strings.TrimSpace(m.Question) == "" {
		return invalid("market", "question", "must not be empty")
	}
	if math.IsNaN(m.Probability) || m.Probability < 0 || m.Probability > 1 {
		return invalid("market", "probability", "%v outside [0,1]", m.Probability)
	}
	return nil
}

// Rung is a market with its parsed deadline
type Rung struct {
	Market   Market    `json:"market"`
	Deadline time.Time `json:"deadline"` // Calendar date at UTC midnight
}

// LadderGroup is a family of markets on the same event, sorted by deadline
type LadderGroup struct {
	BaseQuestion string `json:"base_question"`
	Rungs        []Rung `json:"rungs"`
}

// Violation records P(by earlier deadline) exceeding P(by later deadline)
type Violation struct {
	BaseQuestion    string    `json:"base_question"`
	Earlier         Market    `json:"earlier_market"`
	Later           Market    `json:"later_market"`
	EarlierDeadline time.Time `json:"earlier_deadline"`
	LaterDeadline   time.Time `json:"later_deadline"`
	EarlierProb     float64   `json:"earlier_prob"`
	LaterProb       float64   `json:"later_prob"`
	Size            float64   `json:"violation_size"` // EarlierProb - LaterProb
}

func (v Violation) String() string {
	return fmt.Sprintf("Monotonicity violation: %s (%.1f%%) > %s (%.1f%%) (violation: %.1f%%)",
		v.Earlier.Question, v.EarlierProb*100,
		v.Later.Question, v.LaterProb*100,
		v.Size*100)
}
