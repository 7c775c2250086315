package algorithms

import (
	"sync"

	"github.com/aretw0/diastole/pkg/domain"
	"github.com/aretw0/diastole/pkg/dsl"
	"github.com/aretw0/diastole/pkg/tally"
)

// BSE2024ID is the registry id of the BSE 2024 algorithm.
const BSE2024ID = "bse2024"

// BSE2024 returns the British Society of Echocardiography 2024 algorithm.
// It shares one node pool between three modes: standard, dysfunction and atrial fibrillation.
var BSE2024 = sync.OnceValue(buildBSE2024)

// Age and sex specific e' cut-offs. Each band is its own option value so the
// history records which one applied; all of them count as positive.
var (
	septalBands = []domain.Option{
		{Value: "positive_18_40_male", Text: "18-40 yrs male: < 7 cm/sec"},
		{Value: "positive_18_40_female", Text: "18-40 yrs female: < 8 cm/sec"},
		{Value: "positive_41_65", Text: "41-65 yrs: < 5 cm/sec"},
		{Value: "positive_over_65", Text: ">65 yrs: < 4 cm/sec"},
	}
	lateralBands = []domain.Option{
		{Value: "positive_18_40_male", Text: "18-40 yrs male: < 9 cm/sec"},
		{Value: "positive_18_40_female", Text: "18-40 yrs female: < 11 cm/sec"},
		{Value: "positive_41_65", Text: "41-65 yrs: < 6 cm/sec"},
		{Value: "positive_over_65", Text: ">65 yrs: < 5 cm/sec"},
	}
)

func bandParam(nodeID string, bands []domain.Option) tally.Param {
	p := tally.Param{NodeID: nodeID, Negative: []string{"negative"}}
	for _, o := range bands {
		p.Positive = append(p.Positive, o.Value)
	}
	return p
}

// trVelocity, laVolume and eRatio add the shared three-way questions under different ids.
func trVelocity(b *dsl.Builder, id, next string) {
	b.Decision(id).
		Ask("What is the TR Velocity?").
		Option("positive", "> 2.8 m/s", "").
		Option("negative", "≤ 2.8 m/s", "").
		Option(domain.Unavailable, "Unavailable", "").
		Otherwise(next)
}

func laVolume(b *dsl.Builder, id, next string) {
	b.Decision(id).
		Ask("What is the indexed LA Volume?").
		Option("positive", "> 34 ml/m²", "").
		Option("negative", "≤ 34 ml/m²", "").
		Option(domain.Unavailable, "Unavailable", "").
		Otherwise(next)
}

func eRatio(b *dsl.Builder, id, next string) {
	b.Decision(id).
		Ask("What is the E/e' ratio?").
		Option("positive", "> 14", "").
		Option("negative", "≤ 14", "").
		Option(domain.Unavailable, "Unavailable", "").
		Otherwise(next)
}

func buildBSE2024() *domain.Algorithm {
	b := dsl.New(BSE2024ID, "BSE Diastolic Function (2024)").
		Describe("Recently updated and published by the British Society of Echo").
		Cite(domain.Citation{
			Authors: "Robinson, S., Ring, L., Oxborough, D. et al.",
			Title:   "The assessment of left ventricular diastolic function: guidance and recommendations from the British Society of Echocardiography",
			Journal: "Echo Res Pract 11, 16 (2024)",
			URL:     "https://pubmed.ncbi.nlm.nih.gov/38825710/",
		}).
		Mode("standard", "BSE Standard Algorithm", "Use this for normal LV function", "standardStart").
		Mode("dysfunction", "BSE Dysfunction Algorithm", "Use this for decreased EF & myocardial disease", "dysfunctionStart").
		Mode("afib", "BSE Atrial Fibrillation Algorithm", "Specifically for use in patients in atrial fibrillation", "afibStart").
		Start("standardStart")

	// Standard
	trVelocity(b, "standardStart", "laVolume")
	laVolume(b, "laVolume", "eToERatio")
	eRatio(b, "eToERatio", "standardEvaluate")

	b.Evaluator("standardEvaluate").
		Describe("Two of three standard parameters").
		Route(bseThreeParam([]string{"standardStart", "laVolume", "eToERatio"}, "ageSpecificE", "laStrain"),
			"resultInsufficientInfo", "ageSpecificE", "resultImpairedElevated", "laStrain", "resultIndeterminate")

	septal := b.Decision("ageSpecificE").Ask("What is the SEPTAL e'?")
	for _, o := range septalBands {
		septal.Option(o.Value, o.Text, "")
	}
	septal.Option("negative", "Septal e' is greater than these", "").Otherwise("lateralE")

	lateral := b.Decision("lateralE").Ask("What is the LATERAL e'?")
	for _, o := range lateralBands {
		lateral.Option(o.Value, o.Text, "")
	}
	lateral.Option("negative", "Lateral e' is greater than these", "").Otherwise("ageSpecificEEvaluate")

	b.Evaluator("ageSpecificEEvaluate").
		Describe("Any reduced age-specific e' means impaired relaxation").
		Route(routeBSEAgeSpecific, "resultImpairedNormal", "resultNormal", "resultInsufficientInfo")

	b.Decision("laStrain").
		Ask("What is the LA Strain?").
		Option("negative", "pump strain ≥ 14% OR reservoir strain ≥ 30%", "ageSpecificE").
		Option("positive", "pump strain < 14% OR reservoir strain < 30%", "lars")

	b.Decision("lars").
		Ask("More specifically, What is the LA reservoir strain (LARS)?").
		Option("negative", "LARS ≥ 18%", "supplementalParams").
		Option("positive", "LARS < 18%", "resultImpairedElevated")

	b.Decision("supplementalParams").
		Ask("What about pulmonary vein a-reversal?").
		Option("positive", "Ar - A duration > 30 ms", "resultImpairedElevated").
		Option("negative", "Ar - A duration ≤ 30 ms", "lWave")

	b.Decision("lWave").
		Ask("What about an L wave?").
		Option("positive", "L-wave velocity > 20 cm/s", "resultImpairedElevated").
		Option("negative", "No L-wave or L velocity ≤ 20 cm/s", "ageSpecificE")

	// Dysfunction
	trVelocity(b, "dysfunctionStart", "dysfunctionLaVolume")
	laVolume(b, "dysfunctionLaVolume", "dysfunctionEToERatio")
	eRatio(b, "dysfunctionEToERatio", "dysfunctionEvaluate")

	b.Evaluator("dysfunctionEvaluate").
		Describe("Two of three dysfunction parameters").
		Route(bseThreeParam([]string{"dysfunctionStart", "dysfunctionLaVolume", "dysfunctionEToERatio"}, "resultImpairedNormal", "dysfunctionLaStrain"),
			"resultInsufficientInfo", "resultImpairedNormal", "resultImpairedElevated", "dysfunctionLaStrain", "resultIndeterminate")

	b.Decision("dysfunctionLaStrain").
		Ask("What about the LA strain?").
		Option("negative", "LARS ≥ 24% or Pump Strain ≥ 14%", "resultImpairedNormal").
		Option("positive", "LARS < 18% or Pump Strain < 8%", "resultImpairedElevated").
		Option("intermediate", "LARS or Pump Strain is between these", "dysfunctionSupplementalParams")

	b.Decision("dysfunctionSupplementalParams").
		Ask("What about pulmonary vein a-reversal?").
		Option("positive", "Ar - A duration > 30 ms", "resultImpairedElevated").
		Option("negative", "Ar - A duration ≤ 30 ms", "pvSDRatio")

	b.Decision("pvSDRatio").
		Ask("What is the pulmonary vein S/D ratio?").
		Option("negative", "S/D ratio ≥ 1", "dysfunctionLWave").
		Option("positive", "S/D ratio < 1", "resultImpairedElevated")

	b.Decision("dysfunctionLWave").
		Ask("What about an L wave?").
		Option("positive", "L-wave velocity > 20 cm/s", "resultImpairedElevated").
		Option("negative", "No L-wave or L velocity ≤ 20 cm/s", "mvEDecelTime")

	b.Decision("mvEDecelTime").
		Ask("What is the MV E decel. time?").
		Option("negative", "E Decel time ≥ 150 ms", "resultImpairedNormal").
		Option("positive", "E Decel time < 150 ms", "resultImpairedElevated")

	// Atrial fibrillation
	trVelocity(b, "afibStart", "mvEVelocity")

	b.Decision("mvEVelocity").
		Ask("What is the MV E velocity?").
		Option("positive", "≥ 100 cm/s", "").
		Option("negative", "< 100 cm/s", "").
		Option(domain.Unavailable, "Unavailable", "").
		Otherwise("mvEDecelTimeAF")

	b.Decision("mvEDecelTimeAF").
		Ask("What is the MV E decel. time?").
		Option("negative", "> 160 ms", "").
		Option("positive", "≤ 160 ms", "").
		Option(domain.Unavailable, "Unavailable", "").
		Otherwise("septalEToERatio")

	b.Decision("septalEToERatio").
		Ask("What is the SEPTAL E/e' ratio?").
		Option("positive", "> 11", "").
		Option("negative", "≤ 11", "").
		Option(domain.Unavailable, "Unavailable", "").
		Otherwise("afibEvaluate")

	b.Evaluator("afibEvaluate").
		Describe("Three of four atrial fibrillation parameters").
		Route(routeBSEAfib, "resultAFNormal", "resultImpairedElevated", "afibStep2")

	b.Decision("afibStep2").
		Ask("LA Reservoir Strain?").
		Option("negative", "LARS ≥ 16%", "").
		Option("positive", "LARS < 16%", "").
		Option(domain.Unavailable, "Unavailable", "").
		Otherwise("bmi")

	b.Decision("bmi").
		Ask("What is the BMI?").
		Option("positive", "BMI ≥ 30 kg/m2 (obese)", "").
		Option("negative", "BMI < 30 kg/m2", "").
		Option(domain.Unavailable, "Unavailable", "").
		Otherwise("afibPvSDRatio")

	b.Decision("afibPvSDRatio").
		Ask("What is the pulmonary vein S/D ratio?").
		Option("negative", "S/D ratio ≥ 1", "").
		Option("positive", "S/D ratio < 1", "").
		Option(domain.Unavailable, "Unavailable", "").
		Otherwise("afibStep2Evaluate")

	b.Evaluator("afibStep2Evaluate").
		Describe("Two of three supplementary atrial fibrillation parameters").
		Route(routeBSEAfibStep2, "resultImpairedElevated", "resultAFNormal", "resultIndeterminate")

	b.Result("resultNormal", "normal")
	b.Result("resultAFNormal", "af-normal")
	b.Result("resultImpairedNormal", "impaired-normal")
	b.Result("resultImpairedElevated", "impaired-elevated")
	b.Result("resultIndeterminate", "indeterminate")
	b.Result("resultInsufficientInfo", "insufficient_info")

	return b.MustBuild()
}

// bseThreeParam builds the shared two-of-three rule. A negative majority goes
// to onNegative; a one-to-one split with a single missing value goes to onSplit.
func bseThreeParam(params []string, onNegative, onSplit string) domain.RouteFunc {
	return func(ctx *domain.EvalContext) string {
		c := tally.Count(ctx, tally.Binaries(params...)...)
		switch {
		case c.Unavailable >= 2:
			return "resultInsufficientInfo"
		case c.Negative >= 2:
			return onNegative
		case c.Positive >= 2:
			return "resultImpairedElevated"
		case c.Available() == 2 && c.Positive == 1 && c.Negative == 1:
			return onSplit
		default:
			return "resultIndeterminate"
		}
	}
}

func routeBSEAgeSpecific(ctx *domain.EvalContext) string {
	c := tally.Count(ctx, bandParam("ageSpecificE", septalBands), bandParam("lateralE", lateralBands))
	switch {
	case c.Positive > 0:
		return "resultImpairedNormal"
	case c.Available() == 0:
		return "resultInsufficientInfo"
	default:
		return "resultNormal"
	}
}

func routeBSEAfib(ctx *domain.EvalContext) string {
	c := tally.Count(ctx, tally.Binaries("afibStart", "mvEVelocity", "mvEDecelTimeAF", "septalEToERatio")...)
	switch {
	case c.Negative >= 3:
		return "resultAFNormal"
	case c.Positive >= 3:
		return "resultImpairedElevated"
	default:
		return "afibStep2"
	}
}

func routeBSEAfibStep2(ctx *domain.EvalContext) string {
	c := tally.Count(ctx, tally.Binaries("afibStep2", "bmi", "afibPvSDRatio")...)
	switch {
	case c.Positive >= 2:
		return "resultImpairedElevated"
	case c.Negative >= 2:
		return "resultAFNormal"
	default:
		return "resultIndeterminate"
	}
}
