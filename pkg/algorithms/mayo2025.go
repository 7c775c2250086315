package algorithms

import (
	"sync"

	"github.com/aretw0/diastole/pkg/domain"
	"github.com/aretw0/diastole/pkg/dsl"
	"github.com/aretw0/diastole/pkg/tally"
)

// Mayo2025ID is the registry id of the Young et al. (Mayo Clinic) 2025 algorithm.
const Mayo2025ID = "mayo2025"

// Mayo2025 returns the Young et al. 2025 algorithm.
// Four filling-pressure criteria are collected, then the E/A ratio grades the result.
var Mayo2025 = sync.OnceValue(buildMayo2025)

var mayoCriteria = []tally.Param{
	mayoParam("criteriaCollection"),
	mayoParam("eToERatio"),
	mayoParam("trVelocity"),
	mayoParam("laVolume"),
}

func mayoParam(nodeID string) tally.Param {
	return tally.Param{NodeID: nodeID, Positive: []string{"abnormal"}, Negative: []string{"normal"}}
}

func buildMayo2025() *domain.Algorithm {
	b := dsl.New(Mayo2025ID, "Young et al. Diastolic Function (2025)").
		Describe("From the Mayo Clinic").
		Cite(domain.Citation{
			Authors: "Young, Kathleen A. et al.",
			Title:   "Association of Impaired Relaxation Mitral Inflow Pattern (Grade 1 Diastolic Function) With Long-Term Noncardiovascular and Cardiovascular Mortality",
			Journal: "Journal of the American Society of Echocardiography (2025)",
			URL:     "https://onlinejase.com/article/S0894-7317(25)00036-7/abstract",
		}).
		Mode("standard", "Mayo Standard Algorithm",
			"This algorithm applies to patients with an EF ≥ 50% and without heart failure or significant valve disease",
			"criteriaCollection").
		Start("criteriaCollection")

	b.Decision("criteriaCollection").
		Ask("Septal e' velocity").
		Option("normal", "≥ 7 cm/s", "").
		Option("abnormal", "< 7 cm/s", "").
		Option(domain.Unavailable, "Unavailable", "").
		Otherwise("eToERatio")

	b.Decision("eToERatio").
		Ask("E/e' ratio (septal)").
		Option("abnormal", "> 15", "").
		Option("normal", "≤ 15", "").
		Option(domain.Unavailable, "Unavailable", "").
		Otherwise("trVelocity")

	b.Decision("trVelocity").
		Ask("TR velocity").
		Option("abnormal", "> 2.8 m/s", "").
		Option("normal", "≤ 2.8 m/s", "").
		Option(domain.Unavailable, "Unavailable", "").
		Otherwise("laVolume")

	b.Decision("laVolume").
		Ask("LA volume index").
		Option("abnormal", "> 34 mL/m²", "").
		Option("normal", "≤ 34 mL/m²", "").
		Option(domain.Unavailable, "Unavailable", "").
		Otherwise("criteriaEvaluate")

	b.Evaluator("criteriaEvaluate").
		Describe("Three of four criteria, or two of three when one is missing").
		Route(routeMayoCriteria, "resultInsufficientData", "normalFillingPressure", "elevatedFillingPressure", "resultIndeterminate")

	b.Decision("normalFillingPressure").
		Ask("E/A ratio").
		Option("greater", "> 0.8", "resultNormal").
		Option("less_equal", "≤ 0.8", "resultGrade1")

	b.Decision("elevatedFillingPressure").
		Ask("E/A ratio").
		Option("greater_equal", "≥ 2", "resultGrade3").
		Option("less", "< 2", "resultGrade2")

	b.Result("resultNormal", "normal")
	b.Result("resultGrade1", "grade-1")
	b.Result("resultGrade2", "grade-2")
	b.Result("resultGrade3", "grade-3")
	b.Result("resultIndeterminate", "indeterminate")
	b.Result("resultExclude", "exclude")
	b.Result("resultInsufficientData", "insufficient_info")
	b.Result("resultNormalUnspecified", "insufficient_info")
	b.Result("resultAbnormalUnspecified", "insufficient_info")

	return b.MustBuild()
}

func routeMayoCriteria(ctx *domain.EvalContext) string {
	c := tally.Count(ctx, mayoCriteria...)
	normal, abnormal, available := c.Negative, c.Positive, c.Available()
	switch {
	case available < 3:
		return "resultInsufficientData"
	case normal >= 3 || (available == 3 && normal == 2):
		return "normalFillingPressure"
	case abnormal >= 3 || (available == 3 && abnormal == 2):
		return "elevatedFillingPressure"
	default:
		return "resultIndeterminate"
	}
}
