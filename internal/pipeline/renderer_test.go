package pipeline

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brodheadw/oreacle-bot/internal/model"
)

func TestVerdictComment(t *testing.T) {
	x := resumption()
	text := VerdictComment(x, model.VerdictAffirmative)

	assert.True(t, strings.HasPrefix(text, "**🤖 Oreacle Analysis** · 🟢 Confidence: 90.0%"))
	assert.Contains(t, text, "[关于枧下窝矿区恢复生产的公告](https://example.cn/a)")
	assert.Contains(t, text, "🏛️ **Authority**: 宜春市自然资源局")
	assert.Contains(t, text, "> 中文: 「枧下窝矿区于近日恢复生产」")
	assert.Contains(t, text, "> English: The Jianxiawo mining area recently resumed production")
	assert.Contains(t, text, "**Proposed**: YES_CONDITION → **Final: YES_CONDITION**")
	assert.NotContains(t, text, "Risk Flags")
	assert.NotContains(t, text, "Additional Evidence")
	assert.True(t, strings.HasSuffix(text, commentFooter))
}

func TestVerdictComment_Optionals(t *testing.T) {
	x := resumption()
	x.DocTitle = ""
	x.Authority = "  "
	x.Confidence = 0.65
	x.TermsZH = []string{"a", "b", "c", "d", "e", "f"}
	x.TermsEN = nil
	x.Hazards = []string{"scope limited to phase 1", "date unclear"}
	x.Evidence = append(x.Evidence, model.Evidence{Quote: "q2", Translation: "t2", Locator: "l2"}, model.Evidence{Quote: "q3", Translation: "t3", Locator: "l3"})

	text := VerdictComment(x, model.VerdictNegative)

	assert.Contains(t, text, "🟡 Confidence: 65.0%")
	assert.Contains(t, text, "[Regulatory Document]")
	assert.Contains(t, text, "Unknown Authority")
	assert.Contains(t, text, "- 🇨🇳 a, b, c, d, e\n")
	assert.Contains(t, text, "- 🇬🇧 None")
	assert.Contains(t, text, "⚠️ **Risk Flags**: scope limited to phase 1, date unclear")
	assert.Contains(t, text, "📋 **Additional Evidence**: 2 more quotes available")
	assert.Contains(t, text, "**Final: NO_CONDITION**")
}

func TestConfidenceBadge(t *testing.T) {
	cases := []struct {
		confidence float64
		want       string
	}{
		{1.0, "🟢"},
		{0.8, "🟢"},
		{0.79, "🟡"},
		{0.6, "🟡"},
		{0.59, "🔴"},
		{0, "🔴"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, confidenceBadge(tc.confidence), "confidence %v", tc.confidence)
	}
}

func sampleBatchReport() *model.BatchReport {
	x := resumption()
	start := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	report := &model.BatchReport{
		RunID:      "run-1",
		StartedAt:  start,
		FinishedAt: start.Add(1500 * time.Millisecond),
		Outcomes: []model.ItemOutcome{
			{
				Item:       relevantItem,
				Stage:      model.StageDecided,
				Extraction: x,
				Verdict:    model.VerdictAffirmative,
				Action: model.Action{
					Kind:       model.ActionComment,
					MarketID:   "mkt-1",
					MarketSlug: "catl-jianxiawo-restart",
					Text:       VerdictComment(x, model.VerdictAffirmative),
				},
			},
			{
				Item:              model.RawItem{Source: "szse", ItemID: "2", Title: "问询函 Q&A 回复"},
				Stage:             model.StageDecided,
				Extraction:        x,
				Verdict:           model.VerdictAmbiguous,
				FailedAffirmative: []string{"confidence"},
				Action:            model.Action{Kind: model.ActionNone},
			},
			{Item: model.RawItem{Source: "szse", ItemID: "3"}, Stage: model.StageFailed, Error: "extract: boom"},
			{Item: model.RawItem{Source: "szse", ItemID: "4", Title: "noise"}, Stage: model.StageFiltered},
		},
	}
	report.Summarize()
	return report
}

func TestWriteBatchMarkdown(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewRenderer(true).WriteBatchMarkdown(&buf, sampleBatchReport()))
	md := buf.String()

	assert.Contains(t, md, "# Oreacle Evaluation Report")
	assert.Contains(t, md, "**Run**: `run-1`")
	assert.Contains(t, md, "**Duration**: 1.5s")
	assert.Contains(t, md, "| 4 | 1 | 1 | 0 | 1 | 1 | 0 |")
	assert.NotContains(t, md, "## Rejected input")
	assert.Contains(t, md, "- **Action**: comment on catl-jianxiawo-restart")
	assert.Contains(t, md, "- **YES gate blocked by**: confidence")
	assert.Contains(t, md, "### szse:3\n\n- **Failed**: extract: boom")
	assert.NotContains(t, md, "noise", "filtered items are summarized only")
	assert.Contains(t, md, "*Generated by oreacle*")

	buf.Reset()
	require.NoError(t, NewRenderer(false).WriteBatchMarkdown(&buf, sampleBatchReport()))
	assert.NotContains(t, buf.String(), "*Generated by oreacle*")
}

func TestRenderFiles(t *testing.T) {
	dir := t.TempDir()
	r := NewRenderer(true)
	report := sampleBatchReport()

	jsonPath := filepath.Join(dir, "report.json")
	require.NoError(t, r.RenderJSON(report, jsonPath))

	data, err := os.ReadFile(jsonPath)
	require.NoError(t, err)
	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "run-1", decoded["run_id"])
	out := string(data)
	assert.Contains(t, out, "> 中文: 「枧下窝矿区于近日恢复生产」", "comment text is carried in the action")
	assert.Contains(t, out, "问询函 Q&A 回复")
	assert.NotContains(t, out, `\u0026`, "HTML escaping is off")

	mdPath := filepath.Join(dir, "report.md")
	require.NoError(t, r.RenderMarkdown(report, mdPath))
	_, err = os.Stat(mdPath)
	assert.NoError(t, err)

	assert.Error(t, r.RenderJSON(report, filepath.Join(dir, "missing", "report.json")))
}

func TestWriteBatchMarkdown_Rejected(t *testing.T) {
	report := sampleBatchReport()
	report.AddRejected([]model.RejectedItem{{Line: 7, Error: "invalid item: source: must not be empty"}})

	var buf bytes.Buffer
	require.NoError(t, NewRenderer(false).WriteBatchMarkdown(&buf, report))
	md := buf.String()

	assert.Contains(t, md, "| 4 | 1 | 1 | 0 | 1 | 1 | 1 |")
	assert.Contains(t, md, "## Rejected input\n\n- line 7: invalid item: source: must not be empty")

	buf.Reset()
	NewRenderer(false).RenderSummary(&buf, report)
	assert.Contains(t, buf.String(), "Rejected:  1")
}

func TestRenderSummary(t *testing.T) {
	var buf bytes.Buffer
	NewRenderer(false).RenderSummary(&buf, sampleBatchReport())

	out := buf.String()
	assert.Contains(t, out, "Evaluated 4 items (run run-1)")
	assert.Contains(t, out, "Failed:    1")
}
