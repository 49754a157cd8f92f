package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/brodheadw/oreacle-bot/internal/model"
)

const commentFooter = "*Automated analysis by Oreacle Bot*"

// VerdictComment renders the market comment for an actionable verdict
func VerdictComment(x *model.Extraction, verdict model.Verdict) string {
	quote, literal := "—", "—"
	if len(x.Evidence) > 0 {
		quote, literal = x.Evidence[0].Quote, x.Evidence[0].Translation
	}

	title := orDefault(x.DocTitle, "Regulatory Document")
	authority := orDefault(x.Authority, "Unknown Authority")

	var b strings.Builder
	fmt.Fprintf(&b, "**🤖 Oreacle Analysis** · %s Confidence: %.1f%%\n\n", confidenceBadge(x.Confidence), x.Confidence*100)
	fmt.Fprintf(&b, "📄 **Source**: [%s](%s)\n", title, x.DocURL)
	fmt.Fprintf(&b, "🏛️ **Authority**: %s\n", authority)
	fmt.Fprintf(&b, "⛏️ **Mine Match**: %s\n\n", x.MineMatch)
	b.WriteString("**Key Evidence** (ZH→EN):\n")
	fmt.Fprintf(&b, "> 中文: 「%s」\n", quote)
	fmt.Fprintf(&b, "> English: %s\n\n", literal)
	fmt.Fprintf(&b, "**Proposed**: %s → **Final: %s**\n\n", x.ProposedLabel, verdict)
	b.WriteString("**Terms Found**:\n")
	fmt.Fprintf(&b, "- 🇨🇳 %s\n", termList(x.TermsZH))
	fmt.Fprintf(&b, "- 🇬🇧 %s", termList(x.TermsEN))

	if len(x.Hazards) > 0 {
		fmt.Fprintf(&b, "\n\n⚠️ **Risk Flags**: %s", strings.Join(x.Hazards, ", "))
	}
	if len(x.Evidence) > 1 {
		fmt.Fprintf(&b, "\n\n📋 **Additional Evidence**: %d more quotes available", len(x.Evidence)-1)
	}

	b.WriteString("\n\n")
	b.WriteString(commentFooter)
	return b.String()
}

func confidenceBadge(c float64) string {
	switch {
	case c >= 0.8:
		return "🟢"
	case c >= 0.6:
		return "🟡"
	default:
		return "🔴"
	}
}

func termList(terms []string) string {
	if len(terms) == 0 {
		return "None"
	}
	if len(terms) > 5 {
		terms = terms[:5]
	}
	return strings.Join(terms, ", ")
}

func orDefault(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}

// Renderer writes batch and ladder reports
type Renderer struct {
	includeFooter bool
}

// NewRenderer creates a new renderer
func NewRenderer(includeFooter bool) *Renderer {
	return &Renderer{includeFooter: includeFooter}
}

// RenderJSON writes v as indented JSON to path
func (r *Renderer) RenderJSON(v interface{}, path string) error {
	return writeFile(path, func(w io.Writer) error { return r.WriteJSON(w, v) })
}

// WriteJSON writes v as indented JSON
func (r *Renderer) WriteJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// RenderMarkdown writes a batch report as markdown to path
func (r *Renderer) RenderMarkdown(report *model.BatchReport, path string) error {
	return writeFile(path, func(w io.Writer) error { return r.WriteBatchMarkdown(w, report) })
}

// WriteBatchMarkdown renders a batch report as markdown
func (r *Renderer) WriteBatchMarkdown(w io.Writer, report *model.BatchReport) error {
	var b strings.Builder
	s := report.Summary

	b.WriteString("# Oreacle Evaluation Report\n\n")
	fmt.Fprintf(&b, "**Run**: `%s`  \n", report.RunID)
	fmt.Fprintf(&b, "**Started**: %s  \n", report.StartedAt.Format("2006-01-02 15:04:05 UTC"))
	fmt.Fprintf(&b, "**Duration**: %s\n\n", report.FinishedAt.Sub(report.StartedAt).Round(time.Millisecond))

	b.WriteString("## Summary\n\n")
	b.WriteString("| Total | Filtered | YES | NO | Ambiguous | Failed | Rejected |\n")
	b.WriteString("|---|---|---|---|---|---|---|\n")
	fmt.Fprintf(&b, "| %d | %d | %d | %d | %d | %d | %d |\n\n", s.Total, s.Filtered, s.Affirmative, s.Negative, s.Ambiguous, s.Failed, s.Rejected)

	decided := 0
	for _, o := range report.Outcomes {
		if o.Stage != model.StageDecided && o.Stage != model.StageFailed {
			continue
		}
		if decided == 0 {
			b.WriteString("## Items\n\n")
		}
		decided++

		fmt.Fprintf(&b, "### %s\n\n", itemHeading(o.Item))
		if o.Item.URL != "" {
			fmt.Fprintf(&b, "- **URL**: %s (%s)\n", o.Item.URL, o.SourceTier)
		}
		if o.Stage == model.StageFailed {
			fmt.Fprintf(&b, "- **Failed**: %s\n\n", o.Error)
			continue
		}
		fmt.Fprintf(&b, "- **Verdict**: %s\n", o.Verdict)
		if o.Extraction != nil {
			fmt.Fprintf(&b, "- **Proposed**: %s (confidence %.2f, %s)\n", o.Extraction.ProposedLabel, o.Extraction.Confidence, o.Extraction.MineMatch)
			if len(o.Extraction.Evidence) > 0 {
				ev := o.Extraction.Evidence[0]
				fmt.Fprintf(&b, "- **Evidence**: 「%s」 (%s)\n", ev.Quote, ev.Translation)
			}
		}
		if o.Verdict == model.VerdictAmbiguous {
			if len(o.FailedAffirmative) > 0 {
				fmt.Fprintf(&b, "- **YES gate blocked by**: %s\n", strings.Join(o.FailedAffirmative, ", "))
			}
			if len(o.FailedNegative) > 0 {
				fmt.Fprintf(&b, "- **NO gate blocked by**: %s\n", strings.Join(o.FailedNegative, ", "))
			}
		}
		fmt.Fprintf(&b, "- **Action**: %s\n\n", actionSummary(o.Action))
	}

	if len(report.Rejected) > 0 {
		b.WriteString("## Rejected input\n\n")
		for _, ri := range report.Rejected {
			fmt.Fprintf(&b, "- line %d: %s\n", ri.Line, ri.Error)
		}
		b.WriteString("\n")
	}

	r.footer(&b)
	_, err := io.WriteString(w, b.String())
	return err
}

// RenderLadderMarkdown writes a ladder report as markdown to path
func (r *Renderer) RenderLadderMarkdown(report *model.LadderReport, path string) error {
	return writeFile(path, func(w io.Writer) error { return r.WriteLadderMarkdown(w, report) })
}

// WriteLadderMarkdown renders a ladder report as markdown
func (r *Renderer) WriteLadderMarkdown(w io.Writer, report *model.LadderReport) error {
	var b strings.Builder

	b.WriteString("# Ladder Monotonicity Report\n\n")
	fmt.Fprintf(&b, "**Run**: `%s`  \n", report.RunID)
	fmt.Fprintf(&b, "**Checked**: %s  \n", report.CheckedAt.Format("2006-01-02 15:04:05 UTC"))
	fmt.Fprintf(&b, "**Tolerance**: %.1f%%\n\n", report.Tolerance*100)

	fmt.Fprintf(&b, "Markets checked: %d · Groups: %d · Violations: %d · Comments planned: %d\n\n",
		report.MarketsChecked, report.GroupsChecked, report.ViolationsFound, report.CommentsPlanned)

	for i, va := range report.Violations {
		v := va.Violation
		fmt.Fprintf(&b, "## %d. %s\n\n", i+1, v.BaseQuestion)
		fmt.Fprintf(&b, "- %s (%s): **%.1f%%**\n", v.Earlier.Question, v.EarlierDeadline.Format("2006-01-02"), v.EarlierProb*100)
		fmt.Fprintf(&b, "- %s (%s): **%.1f%%**\n", v.Later.Question, v.LaterDeadline.Format("2006-01-02"), v.LaterProb*100)
		fmt.Fprintf(&b, "- Violation: %.1f%%\n", v.Size*100)
		fmt.Fprintf(&b, "- Action: %s\n\n", actionSummary(va.Action))
	}

	if len(report.Rejected) > 0 {
		b.WriteString("## Rejected markets\n\n")
		for _, rm := range report.Rejected {
			fmt.Fprintf(&b, "- `%s`: %s\n", rm.Market.ID, rm.Error)
		}
		b.WriteString("\n")
	}

	r.footer(&b)
	_, err := io.WriteString(w, b.String())
	return err
}

// RenderSummary prints a short batch summary
func (r *Renderer) RenderSummary(w io.Writer, report *model.BatchReport) {
	s := report.Summary
	fmt.Fprintf(w, "\nEvaluated %d items (run %s)\n", s.Total, report.RunID)
	fmt.Fprintf(w, "  Filtered:  %d\n", s.Filtered)
	fmt.Fprintf(w, "  YES:       %d\n", s.Affirmative)
	fmt.Fprintf(w, "  NO:        %d\n", s.Negative)
	fmt.Fprintf(w, "  Ambiguous: %d\n", s.Ambiguous)
	fmt.Fprintf(w, "  Failed:    %d\n", s.Failed)
	if s.Rejected > 0 {
		fmt.Fprintf(w, "  Rejected:  %d\n", s.Rejected)
	}
}

// RenderLadderSummary prints a short ladder summary
func (r *Renderer) RenderLadderSummary(w io.Writer, report *model.LadderReport) {
	fmt.Fprintf(w, "\nChecked %d markets in %d groups (run %s)\n", report.MarketsChecked, report.GroupsChecked, report.RunID)
	fmt.Fprintf(w, "  Violations found: %d\n", report.ViolationsFound)
	fmt.Fprintf(w, "  Comments planned: %d\n", report.CommentsPlanned)
	if len(report.Rejected) > 0 {
		fmt.Fprintf(w, "  Rejected markets: %d\n", len(report.Rejected))
	}
}

func (r *Renderer) footer(b *strings.Builder) {
	if r.includeFooter {
		b.WriteString("---\n\n*Generated by oreacle*\n")
	}
}

func itemHeading(item model.RawItem) string {
	if t := strings.TrimSpace(item.Title); t != "" {
		return t
	}
	return item.Key()
}

func actionSummary(a model.Action) string {
	if a.Kind != model.ActionComment {
		return "none"
	}
	target := a.MarketID
	if a.MarketSlug != "" {
		target = a.MarketSlug
	}
	return "comment on " + target
}

func writeFile(path string, render func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	if err := render(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
