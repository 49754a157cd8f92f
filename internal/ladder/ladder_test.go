package ladder

import (
	"testing"
	"time"

	"github.com/brodheadw/oreacle-bot/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func market(id, question string, p float64) model.Market {
	return model.Market{ID: id, Slug: id, Question: question, Probability: p}
}

func TestExtractDeadline(t *testing.T) {
	tests := []struct {
		question string
		want     time.Time
		ok       bool
	}{
		{"Will event happen by 2024-12-31?", date(2024, 12, 31), true},
		{"Will event happen by December 31, 2024?", date(2024, 12, 31), true},
		{"Will event happen by Dec 31, 2024?", date(2024, 12, 31), true},
		{"Will event happen by Dec. 1st, 2024?", date(2024, 12, 1), true},
		{"Will event happen by June 30 2025?", date(2025, 6, 30), true},
		{"Will event happen before January 1, 2025?", date(2024, 12, 31), true},
		{"Will event happen before March 1, 2024?", date(2024, 2, 29), true},
		{"Will event happen?", time.Time{}, false},
		{"Will event happen by 2024-02-30?", time.Time{}, false},
		{"Will event happen by Smarch 3, 2024?", time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.question, func(t *testing.T) {
			got, ok := ExtractDeadline(tt.question)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.True(t, tt.want.Equal(got), "want %s, got %s", tt.want, got)
			}
		})
	}
}

func TestBaseQuestion(t *testing.T) {
	tests := []struct {
		question string
		want     string
	}{
		{"Will event happen by 2024-12-31?", "Will event happen?"},
		{"Will event happen before January 1, 2025?", "Will event happen?"},
		{"Will event happen by June 30, 2025?", "Will event happen?"},
		{"Will Abby win by June 1, 2025?", "Will Abby win?"},
		{"Will it rain?", "Will it rain?"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, BaseQuestion(tt.question), tt.question)
	}
}

func TestBaseQuestion_EarlierByClauseCollides(t *testing.T) {
	a := "Will the mine owned by CATL resume by 2024-12-31?"
	b := "Will the mine owned by BYD resume by 2025-06-30?"

	assert.Equal(t, "Will the mine owned?", BaseQuestion(a))
	assert.Equal(t, BaseQuestion(a), BaseQuestion(b))

	groups := Group([]model.Market{
		{ID: "a", Question: a, Probability: 0.4},
		{ID: "b", Question: b, Probability: 0.6},
	})
	require.Len(t, groups, 1)
	assert.Len(t, groups[0].Rungs, 2)
}

func TestGroup_SortsAndDropsSingletons(t *testing.T) {
	markets := []model.Market{
		market("dec", "Will event happen by 2024-12-31?", 0.7),
		market("solo", "Will other thing happen by 2024-12-31?", 0.4),
		market("jun", "Will event happen by 2024-06-30?", 0.5),
		market("undated", "Will event happen?", 0.9),
		market("sep", "Will event happen by September 30, 2024?", 0.6),
	}

	groups := Group(markets)
	require.Len(t, groups, 1)

	g := groups[0]
	assert.Equal(t, "Will event happen?", g.BaseQuestion)
	require.Len(t, g.Rungs, 3)
	assert.Equal(t, "jun", g.Rungs[0].Market.ID)
	assert.Equal(t, "sep", g.Rungs[1].Market.ID)
	assert.Equal(t, "dec", g.Rungs[2].Market.ID)
}

func TestGroup_FirstAppearanceOrder(t *testing.T) {
	markets := []model.Market{
		market("b1", "Will B happen by 2025-01-31?", 0.2),
		market("a1", "Will A happen by 2025-01-31?", 0.2),
		market("a2", "Will A happen by 2025-02-28?", 0.3),
		market("b2", "Will B happen by 2025-02-28?", 0.3),
	}

	groups := Group(markets)
	require.Len(t, groups, 2)
	assert.Equal(t, "Will B happen?", groups[0].BaseQuestion)
	assert.Equal(t, "Will A happen?", groups[1].BaseQuestion)
}

func TestGroup_EqualDeadlinesKeepInputOrder(t *testing.T) {
	markets := []model.Market{
		market("iso", "Will event happen by 2024-12-31?", 0.5),
		market("before", "Will event happen before January 1, 2025?", 0.6),
	}

	groups := Group(markets)
	require.Len(t, groups, 1)
	assert.Equal(t, "iso", groups[0].Rungs[0].Market.ID)
	assert.Equal(t, "before", groups[0].Rungs[1].Market.ID)
}

func TestGroup_Empty(t *testing.T) {
	assert.Empty(t, Group(nil))
	assert.Empty(t, Group([]model.Market{market("x", "Will it rain?", 0.5)}))
}

func ladderOf(probs ...float64) model.LadderGroup {
	g := model.LadderGroup{BaseQuestion: "Will event happen?"}
	start := date(2025, 1, 1)
	for i, p := range probs {
		d := start.AddDate(0, i, 0)
		g.Rungs = append(g.Rungs, model.Rung{
			Market:   market(d.Format("2006-01-02"), "Will event happen by "+d.Format("2006-01-02")+"?", p),
			Deadline: d,
		})
	}
	return g
}

func TestCheck_EarlierAboveLater(t *testing.T) {
	violations := NewChecker(DefaultTolerance).Check(ladderOf(0.80, 0.70))
	require.Len(t, violations, 1)

	v := violations[0]
	assert.InDelta(t, 0.10, v.Size, 1e-9)
	assert.Equal(t, 0.80, v.EarlierProb)
	assert.Equal(t, 0.70, v.LaterProb)
	assert.True(t, v.EarlierDeadline.Before(v.LaterDeadline))
	assert.Equal(t, "Will event happen?", v.BaseQuestion)
}

func TestCheck_MonotoneLadder(t *testing.T) {
	assert.Empty(t, NewChecker(DefaultTolerance).Check(ladderOf(0.60, 0.80)))
	assert.Empty(t, NewChecker(DefaultTolerance).Check(ladderOf(0.10, 0.20, 0.30, 0.90)))
}

func TestCheck_ToleranceIsExclusive(t *testing.T) {
	c := NewChecker(0.05)
	assert.Empty(t, c.Check(ladderOf(0.60, 0.55)))
	assert.Empty(t, c.Check(ladderOf(0.30, 0.25)))
	assert.Len(t, c.Check(ladderOf(0.61, 0.55)), 1)
}

func TestCheck_ZeroTolerance(t *testing.T) {
	c := NewChecker(0)
	assert.Empty(t, c.Check(ladderOf(0.5, 0.5)))
	assert.Len(t, c.Check(ladderOf(0.51, 0.5)), 1)
}

func TestCheck_ThreeRungs(t *testing.T) {
	g := ladderOf(0.50, 0.90, 0.55)
	violations := NewChecker(DefaultTolerance).Check(g)

	require.Len(t, violations, 1)
	assert.Equal(t, g.Rungs[1].Market.ID, violations[0].Earlier.ID)
	assert.Equal(t, g.Rungs[2].Market.ID, violations[0].Later.ID)
	assert.InDelta(t, 0.35, violations[0].Size, 1e-9)
}

func TestCheck_FourRungs(t *testing.T) {
	g := ladderOf(0.50, 0.60, 0.90, 0.55)
	violations := NewChecker(DefaultTolerance).Check(g)

	// 0.60 -> 0.55 sits exactly on the tolerance and 0.50 -> 0.55 rises
	require.Len(t, violations, 1)
	assert.Equal(t, g.Rungs[2].Market.ID, violations[0].Earlier.ID)
	assert.Equal(t, g.Rungs[3].Market.ID, violations[0].Later.ID)
}

func TestCheck_NonAdjacentViolation(t *testing.T) {
	g := ladderOf(0.70, 0.66, 0.62)
	violations := NewChecker(DefaultTolerance).Check(g)

	require.Len(t, violations, 1)
	assert.Equal(t, g.Rungs[0].Market.ID, violations[0].Earlier.ID)
	assert.Equal(t, g.Rungs[2].Market.ID, violations[0].Later.ID)
	assert.InDelta(t, 0.08, violations[0].Size, 1e-9)
}

func TestCheck_MarketInSeveralViolations(t *testing.T) {
	g := ladderOf(0.90, 0.50, 0.40)
	violations := NewChecker(DefaultTolerance).Check(g)

	require.Len(t, violations, 3)
	assert.Equal(t, g.Rungs[0].Market.ID, violations[0].Earlier.ID)
	assert.Equal(t, g.Rungs[0].Market.ID, violations[1].Earlier.ID)
	assert.Equal(t, g.Rungs[1].Market.ID, violations[2].Earlier.ID)
}

func TestCheck_Idempotent(t *testing.T) {
	c := NewChecker(DefaultTolerance)
	g := ladderOf(0.80, 0.30, 0.70)

	first := c.Check(g)
	second := c.Check(g)
	assert.Equal(t, first, second)
	assert.Len(t, first, 2)
}

func TestCheck_UnsortedInputDoesNotMutate(t *testing.T) {
	g := ladderOf(0.80, 0.70)
	g.Rungs[0], g.Rungs[1] = g.Rungs[1], g.Rungs[0]
	laterFirst := g.Rungs[0].Market.ID

	violations := NewChecker(DefaultTolerance).Check(g)
	require.Len(t, violations, 1)
	assert.Equal(t, 0.80, violations[0].EarlierProb)
	assert.Equal(t, laterFirst, g.Rungs[0].Market.ID)
}

func TestCheckAll(t *testing.T) {
	markets := []model.Market{
		market("a-jun", "Will A happen by 2024-06-30?", 0.80),
		market("a-dec", "Will A happen by 2024-12-31?", 0.70),
		market("b-jun", "Will B happen by 2024-06-30?", 0.20),
		market("b-dec", "Will B happen before January 1, 2025?", 0.40),
		market("c", "Will C happen by 2024-06-30?", 0.99),
	}

	violations := NewChecker(DefaultTolerance).CheckAll(markets)
	require.Len(t, violations, 1)
	assert.Equal(t, "a-jun", violations[0].Earlier.ID)
	assert.Equal(t, "a-dec", violations[0].Later.ID)
}

func TestChecker_Tolerance(t *testing.T) {
	assert.Equal(t, 0.05, NewChecker(0.05).Tolerance())
}

func TestRenderViolation(t *testing.T) {
	v := model.Violation{
		BaseQuestion: "Will event happen?",
		Earlier:      market("event-june", "Will event happen by 2024-06-30?", 0.8),
		Later:        market("event-december", "Will event happen by 2024-12-31?", 0.7),
		EarlierProb:  0.8,
		LaterProb:    0.7,
		Size:         0.1,
	}

	text := RenderViolation(v)
	assert.Contains(t, text, "Monotonicity Violation Detected")
	assert.Contains(t, text, "Will event happen by 2024-06-30?")
	assert.Contains(t, text, "Will event happen by 2024-12-31?")
	assert.Contains(t, text, "80.0%")
	assert.Contains(t, text, "70.0%")
	assert.Contains(t, text, "10.0%")
	assert.Contains(t, text, reportFooter)
	assert.Equal(t, text, RenderViolation(v))

	bare := Reporter{}.Render(v)
	assert.NotContains(t, bare, reportFooter)
	assert.Contains(t, bare, "10.0%")
}

func TestRenderViolation_MissingQuestion(t *testing.T) {
	v := model.Violation{EarlierProb: 0.5, LaterProb: 0.2, Size: 0.3}
	assert.Contains(t, RenderViolation(v), "Unknown")
}

func TestViolationString(t *testing.T) {
	v := NewChecker(DefaultTolerance).Check(ladderOf(0.80, 0.70))[0]
	assert.Contains(t, v.String(), "(80.0%)")
	assert.Contains(t, v.String(), "(violation: 10.0%)")
}
