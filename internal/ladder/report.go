package ladder

import (
	"fmt"
	"strings"

	"github.com/brodheadw/oreacle-bot/internal/model"
)

const reportFooter = "*Generated by the oreacle ladder monotonicity checker.*"

// Reporter renders violations as markdown comments
type Reporter struct {
	IncludeFooter bool
}

// RenderViolation renders v with the default footer
func RenderViolation(v model.Violation) string {
	return Reporter{IncludeFooter: true}.Render(v)
}

// Render produces a deterministic explanation naming both markets, their
// probabilities, and the size of the violation
func (r Reporter) Render(v model.Violation) string {
	var b strings.Builder

	b.WriteString("🚨 **Monotonicity Violation Detected**\n\n")
	b.WriteString("An earlier deadline is priced above a later one.\n\n")
	fmt.Fprintf(&b, "- **Earlier market**: %s → **%s**\n", questionOrUnknown(v.Earlier), percent(v.EarlierProb))
	fmt.Fprintf(&b, "- **Later market**: %s → **%s**\n\n", questionOrUnknown(v.Later), percent(v.LaterProb))
	fmt.Fprintf(&b, "**Violation size**: %s\n\n", percent(v.Size))
	b.WriteString("P(event by earlier date) must not exceed P(event by later date).\n")

	if r.IncludeFooter {
		b.WriteString("\n")
		b.WriteString(reportFooter)
		b.WriteString("\n")
	}
	return b.String()
}

func percent(p float64) string {
	return fmt.Sprintf("%.1f%%", p*100)
}

func questionOrUnknown(m model.Market) string {
	if q := strings.TrimSpace(m.Question); q != "" {
		return q
	}
	return "Unknown"
}
