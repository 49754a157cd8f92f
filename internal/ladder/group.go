package ladder

import (
	"sort"

	"github.com/brodheadw/oreacle-bot/internal/model"
)

// Group partitions markets into ladders keyed by base question.
//
// Markets without a parseable deadline are dropped, since there is nothing
// to order them against, and groups left with fewer than two rungs are
// discarded. Groups come back in order of first appearance, each sorted by
// deadline (stable, so equal deadlines keep input order).
func Group(markets []model.Market) []model.LadderGroup {
	var order []string
	rungs := make(map[string][]model.Rung)

	for _, m := range markets {
		deadline, ok := ExtractDeadline(m.Question)
		if !ok {
			continue
		}
		base := BaseQuestion(m.Question)
		if _, seen := rungs[base]; !seen {
			order = append(order, base)
		}
		rungs[base] = append(rungs[base], model.Rung{Market: m, Deadline: deadline})
	}

	groups := make([]model.LadderGroup, 0, len(order))
	for _, base := range order {
		members := rungs[base]
		if len(members) < 2 {
			continue
		}
		sortRungs(members)
		groups = append(groups, model.LadderGroup{BaseQuestion: base, Rungs: members})
	}
	return groups
}

func sortRungs(rungs []model.Rung) {
	sort.SliceStable(rungs, func(i, j int) bool {
		return rungs[i].Deadline.Before(rungs[j].Deadline)
	})
}
