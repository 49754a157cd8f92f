package pipeline

import (
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/brodheadw/oreacle-bot/internal/ladder"
	"github.com/brodheadw/oreacle-bot/internal/model"
)

// CheckLadder runs one monotonicity cycle over markets with the configured tolerance
func (p *Pipeline) CheckLadder(markets []model.Market) *model.LadderReport {
	report := CheckMarkets(p.checker, p.reporter, markets)

	p.log.WithFields(logrus.Fields{
		"run_id":     report.RunID,
		"markets":    report.MarketsChecked,
		"groups":     report.GroupsChecked,
		"violations": report.ViolationsFound,
		"rejected":   len(report.Rejected),
	}).Info("Ladder check complete")

	for _, va := range report.Violations {
		p.log.WithFields(logrus.Fields{
			"base_question": va.Violation.BaseQuestion,
			"earlier":       va.Violation.Earlier.ID,
			"later":         va.Violation.Later.ID,
			"size":          va.Violation.Size,
		}).Warn("Monotonicity violation")
	}

	return report
}

// CheckMarkets validates markets, groups them into ladders and plans one
// comment per violation on the earlier (overpriced) market. Markets that
// fail validation are reported and skipped.
func CheckMarkets(checker *ladder.Checker, reporter ladder.Reporter, markets []model.Market) *model.LadderReport {
	report := &model.LadderReport{
		RunID:      uuid.NewString(),
		CheckedAt:  time.Now().UTC(),
		Tolerance:  checker.Tolerance(),
		Violations: []model.ViolationAction{},
	}

	valid := make([]model.Market, 0, len(markets))
	for _, m := range markets {
		if err := m.Validate(); err != nil {
			report.Rejected = append(report.Rejected, model.RejectedMarket{Market: m, Error: err.Error()})
			continue
		}
		valid = append(valid, m)
	}
	report.MarketsChecked = len(valid)

	for _, group := range ladder.Group(valid) {
		report.GroupsChecked++
		for _, v := range checker.Check(group) {
			action := model.Action{Kind: model.ActionNone}
			if v.Earlier.ID != "" {
				action = model.Action{
					Kind:       model.ActionComment,
					MarketID:   v.Earlier.ID,
					MarketSlug: v.Earlier.Slug,
					Text:       reporter.Render(v),
				}
				report.CommentsPlanned++
			}
			report.Violations = append(report.Violations, model.ViolationAction{Violation: v, Action: action})
		}
	}
	report.ViolationsFound = len(report.Violations)

	return report
}
