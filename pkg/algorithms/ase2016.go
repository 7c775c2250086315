package algorithms

import (
	"sync"

	"github.com/aretw0/diastole/pkg/domain"
	"github.com/aretw0/diastole/pkg/dsl"
	"github.com/aretw0/diastole/pkg/tally"
)

// ASE2016ID is the registry id of the ASE/EACVI 2016 algorithm.
const ASE2016ID = "ase2016"

// ASE2016 returns the ASE/EACVI 2016 diastolic function algorithm.
//
// The integrated assessment starts from LVEF. Patients with normal LVEF go
// through the four-parameter standard algorithm; a positive majority there
// bridges into the dysfunction algorithm, reusing the answers already
// collected through a declared remap table.
var ASE2016 = sync.OnceValue(buildASE2016)

// eRatioBridge maps the standard E/e' answer onto the dysfunction E/e' question.
var eRatioBridge = []domain.Remap{
	{
		From: "standardStart",
		To:   "dysfunctionStep2",
		Values: map[string]string{
			"positive":         "positive",
			"positive_septal":  "positive",
			"positive_lateral": "positive",
			"negative":         "negative",
			"unavailable":      "unavailable",
		},
	},
	{From: "trVelocity", To: "dysfunctionTR"},
	{From: "laVolume", To: "dysfunctionLA"},
}

func eRatioParam(nodeID string) tally.Param {
	return tally.Param{
		NodeID:   nodeID,
		Positive: []string{"positive", "positive_septal", "positive_lateral"},
		Negative: []string{"negative"},
	}
}

func buildASE2016() *domain.Algorithm {
	b := dsl.New(ASE2016ID, "ASE/EACVI Diastolic Function (2016)").
		Describe("Widely used algorithm for assessing diastolic function").
		Cite(domain.Citation{
			Authors: "Nagueh, S., Smiseth, O., Appleton, C. et al.",
			Title:   "Recommendations for the Evaluation of Left Ventricular Diastolic Function by Echocardiography: An Update from the American Society of Echocardiography and the European Association of Cardiovascular Imaging",
			Journal: "Journal of the American Society of Echocardiography, 29(4), 277–314. (2016)",
			URL:     "https://pubmed.ncbi.nlm.nih.gov/27037982/",
		}).
		Mode("integrated", "ASE 2016 Integrated Assessment", "Complete assessment starting with LVEF evaluation", "initialAssessment").
		Start("initialAssessment")

	b.Decision("initialAssessment").
		Ask("What is the left ventricular ejection fraction (LVEF)?").
		Option("normal", "Normal LVEF (≥50%) without myocardial disease", "standardStart").
		Option("normal_with_disease", "Normal LVEF with myocardial disease (ischemia, LVH, CMP)", "dysfunctionStart").
		Option("reduced", "Reduced LVEF (<50%)", "dysfunctionStart")

	// Standard algorithm: normal LVEF.
	b.Decision("standardStart").
		Ask("What is the average E/e' ratio?").
		Option("positive", "> 14", "").
		Option("negative", "≤ 14", "").
		Option("positive_septal", "Septal E/e' > 15 (only septal available)", "").
		Option("positive_lateral", "Lateral E/e' > 13 (only lateral available)", "").
		Option(domain.Unavailable, "Unavailable", "").
		Otherwise("eVelocity")

	b.Decision("eVelocity").
		Ask("What are the e' velocities?").
		Option("negative", "Septal ≥ 7 AND Lateral ≥ 10 cm/s", "").
		Option("positive", "Septal < 7 OR Lateral < 10 cm/s", "").
		Option(domain.Unavailable, "Unavailable", "").
		Otherwise("trVelocity")

	b.Decision("trVelocity").
		Ask("What is the TR Velocity?").
		Option("positive", ">2.8 m/s", "").
		Option("negative", "≤ 2.8 m/s", "").
		Option(domain.Unavailable, "Unavailable", "").
		Otherwise("laVolume")

	b.Decision("laVolume").
		Ask("What is the indexed LA Volume?").
		Option("positive", ">34 ml/m²", "").
		Option("negative", "≤ 34 ml/m²", "").
		Option(domain.Unavailable, "Unavailable", "").
		Otherwise("standardEvaluate")

	b.Evaluator("standardEvaluate").
		Describe("Majority of the four standard parameters").
		Route(routeASEStandard,
			"resultInsufficientInfo", "resultNormal", "transitionToDysfunction",
			"resultImpairedElevated", "resultIndeterminate")

	b.Evaluator("transitionToDysfunction").
		Describe("Carries standard answers into the dysfunction algorithm").
		Remaps(eRatioBridge...).
		Goto("dysfunctionStart")

	// Dysfunction algorithm: reduced LVEF, myocardial disease, or bridged from above.
	b.Decision("dysfunctionStart").
		Ask("What is the Mitral Inflow Pattern (E/A ratio)?").
		Option("gte2", "E/A ≥ 2", "resultGrade3").
		Option("mid_range", "E/A between 0.8 and 1.99", "checkExistingAnswers").
		Option("lt08_high_e", "E/A ≤ 0.8 AND E > 50 cm/s", "checkExistingAnswers").
		Option("lt08_low_e", "E/A ≤ 0.8 AND E ≤ 50 cm/s", "resultGrade1")

	b.Evaluator("checkExistingAnswers").
		Describe("Skips dysfunction questions already answered").
		Remaps(eRatioBridge...).
		Route(routeASEExisting, "dysfunctionEvaluate", "dysfunctionStep2", "dysfunctionTR", "dysfunctionLA")

	b.Decision("dysfunctionStep2").
		Ask("What is the average E/e' ratio?").
		Option("positive", "> 14", "").
		Option("positive_septal", "Septal E/e' > 15 (only septal available)", "").
		Option("positive_lateral", "Lateral E/e' > 13 (only lateral available)", "").
		Option("negative", "≤ 14 (or below septal/lateral thresholds)", "").
		Option(domain.Unavailable, "Unavailable", "").
		Otherwise("dysfunctionTR")

	b.Decision("dysfunctionTR").
		Ask("What is the TR Velocity?").
		Option("positive", "> 2.8 m/s", "").
		Option("negative", "≤ 2.8 m/s", "").
		Option(domain.Unavailable, "Unavailable", "").
		Otherwise("dysfunctionLA")

	b.Decision("dysfunctionLA").
		Ask("What is the indexed LA Volume?").
		Option("positive", "> 34 ml/m²", "").
		Option("negative", "≤ 34 ml/m²", "").
		Option(domain.Unavailable, "Unavailable", "").
		Otherwise("checkDysfunctionPVFlow")

	b.Evaluator("checkDysfunctionPVFlow").
		Describe("Asks for pulmonary vein flow when LVEF is reduced and a parameter is missing").
		Route(routeASEPVFlow, "dysfunctionPVFlow", "dysfunctionEvaluate")

	b.Decision("dysfunctionPVFlow").
		Ask("What is the pulmonary vein S/D ratio?").
		Option("negative", "≥ 1", "").
		Option("positive", "< 1", "").
		Option(domain.Unavailable, "Unavailable", "").
		Otherwise("dysfunctionEvaluate")

	b.Evaluator("dysfunctionEvaluate").
		Describe("Grades dysfunction from E/e', TR velocity, LA volume and optional PV flow").
		Route(routeASEDysfunction, "resultGrade1", "resultGrade2", "resultIndeterminate", "resultInsufficientInfo")

	b.Result("resultNormal", "normal")
	b.Result("resultGrade1", "grade-1")
	b.Result("resultGrade2", "grade-2")
	b.Result("resultGrade3", "grade-3")
	b.Result("resultImpairedElevated", "impaired-elevated")
	b.Result("resultIndeterminate", "indeterminate")
	b.Result("resultInsufficientInfo", "insufficient_info")

	return b.MustBuild()
}

func routeASEStandard(ctx *domain.EvalContext) string {
	c := tally.Count(ctx,
		eRatioParam("standardStart"),
		tally.Binary("eVelocity"),
		tally.Binary("trVelocity"),
		tally.Binary("laVolume"),
	)
	switch {
	case c.Available() == 0:
		return "resultInsufficientInfo"
	case c.NegativeMajority():
		return "resultNormal"
	case c.PositiveMajority():
		if ctx.Is("initialAssessment", "normal") {
			return "transitionToDysfunction"
		}
		return "resultImpairedElevated"
	default:
		return "resultIndeterminate"
	}
}

func routeASEExisting(ctx *domain.EvalContext) string {
	for _, id := range []string{"dysfunctionStep2", "dysfunctionTR", "dysfunctionLA"} {
		if !ctx.Answered(id) {
			return id
		}
	}
	return "dysfunctionEvaluate"
}

func routeASEPVFlow(ctx *domain.EvalContext) string {
	missing := ctx.Is("dysfunctionStep2", domain.Unavailable) ||
		ctx.Is("dysfunctionTR", domain.Unavailable) ||
		ctx.Is("dysfunctionLA", domain.Unavailable)
	if missing && ctx.Is("initialAssessment", "reduced") {
		return "dysfunctionPVFlow"
	}
	return "dysfunctionEvaluate"
}

// routeASEDysfunction builds a pool of three parameters, preferring answers given
// in the dysfunction flow and falling back to the standard flow. Pulmonary vein
// flow joins the pool only when it was measured.
func routeASEDysfunction(ctx *domain.EvalContext) string {
	pick := func(primary, fallback tally.Param) tally.Polarity {
		if p := primary.Classify(ctx.Lookup(primary.NodeID)); p != tally.Unavailable {
			return p
		}
		return fallback.Classify(ctx.Lookup(fallback.NodeID))
	}

	pool := []tally.Polarity{
		pick(eRatioParam("dysfunctionStep2"), eRatioParam("standardStart")),
		pick(tally.Binary("dysfunctionTR"), tally.Binary("trVelocity")),
		pick(tally.Binary("dysfunctionLA"), tally.Binary("laVolume")),
	}
	pv := tally.Binary("dysfunctionPVFlow")
	if p := pv.Classify(ctx.Lookup(pv.NodeID)); p == tally.Positive || p == tally.Negative {
		pool = append(pool, p)
	}

	c := tally.Of(pool...)
	switch {
	case c.Available() >= 3:
		if c.Positive >= 2 {
			return "resultGrade2"
		}
		if c.Negative >= 2 {
			return "resultGrade1"
		}
		return "resultIndeterminate"
	case c.Available() == 2:
		if c.Positive == 2 {
			return "resultGrade2"
		}
		if c.Negative == 2 {
			return "resultGrade1"
		}
		return "resultIndeterminate"
	default:
		return "resultInsufficientInfo"
	}
}
