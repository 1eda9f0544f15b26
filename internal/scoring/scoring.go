// Package scoring turns the check rows of an audit into category and overall
// scores. Scores are pure functions of the row set and are recomputed on
// every read; nothing here is stored.
package scoring

import (
	"github.com/sorobanhub/registry/internal/catalog"
	"github.com/sorobanhub/registry/internal/model"
)

// Severity weights for the pass-ratio computation. The exact constants are
// policy, not correctness: any monotonically increasing assignment works, and
// changing them only rebalances how hard heavy findings drag the score down.
var severityWeights = map[model.Severity]float64{
	model.SeverityInfo:     1,
	model.SeverityLow:      2,
	model.SeverityMedium:   3,
	model.SeverityHigh:     5,
	model.SeverityCritical: 8,
}

// Weight returns the scoring weight for a severity.
func Weight(s model.Severity) float64 {
	return severityWeights[s]
}

// Compute returns the overall score and the per-category breakdown for an
// audit's rows.
//
// Per category, over rows whose status is not NotApplicable: the score is
// 100 x sum(weight of passed) / sum(weight of all), or 100 when no row is
// applicable (a fully not-applicable category is vacuously perfect). Pending
// rows stay in the denominator without contributing to the numerator, so an
// audit with unresolved checks cannot reach 100. The overall score is the
// same ratio over the union of applicable rows, so categories with more or
// heavier checks dominate proportionally rather than averaging out.
func Compute(rows []model.AuditCheckRow, cat *catalog.Catalog) (float64, []model.CategoryScore) {
	type tally struct {
		passedWeight   float64
		totalWeight    float64
		passed         int
		total          int
		failedCritical int
		failedHigh     int
		present        bool
	}

	tallies := make(map[model.CheckCategory]*tally)
	for _, row := range rows {
		item, err := cat.Get(row.CheckID)
		if err != nil {
			// Row references an item outside this catalog; it cannot be
			// weighted, so it is excluded from scoring.
			continue
		}

		t := tallies[item.Category]
		if t == nil {
			t = &tally{}
			tallies[item.Category] = t
		}
		t.present = true

		if row.Status == model.CheckNotApplicable {
			continue
		}

		w := Weight(item.Severity)
		t.totalWeight += w
		t.total++

		switch row.Status {
		case model.CheckPassed:
			t.passedWeight += w
			t.passed++
		case model.CheckFailed:
			switch item.Severity {
			case model.SeverityCritical:
				t.failedCritical++
			case model.SeverityHigh:
				t.failedHigh++
			}
		}
	}

	var overallPassed, overallTotal float64
	scores := make([]model.CategoryScore, 0, len(tallies))
	for _, category := range model.Categories {
		t := tallies[category]
		if t == nil || !t.present {
			continue
		}

		score := 100.0
		if t.totalWeight > 0 {
			score = 100 * t.passedWeight / t.totalWeight
		}
		scores = append(scores, model.CategoryScore{
			Category:       category.DisplayName(),
			Score:          score,
			Passed:         t.passed,
			Total:          t.total,
			FailedCritical: t.failedCritical,
			FailedHigh:     t.failedHigh,
		})

		overallPassed += t.passedWeight
		overallTotal += t.totalWeight
	}

	overall := 100.0
	if overallTotal > 0 {
		overall = 100 * overallPassed / overallTotal
	}

	return overall, scores
}
