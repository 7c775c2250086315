/*
Package dsl provides a fluent Go builder for clinical decision algorithms.

Algorithms are authored in Go rather than data files because evaluator routes
are functions. The builder keeps declaration order, which is also the order
used by graph export and validation reports.

Example usage:

	alg := dsl.New("demo", "Demo").
		Start("ef")

	alg.Decision("ef").
		Ask("What is the ejection fraction?").
		Option("normal", "Normal", "").
		Option("reduced", "Reduced", "").
		Otherwise("score")

	alg.Evaluator("score").
		Route(func(ctx *domain.EvalContext) string {
			if ctx.Is("ef", "reduced") {
				return "abnormal"
			}
			return "fine"
		}, "abnormal", "fine")

	alg.Result("abnormal", "grade-1")
	alg.Result("fine", "normal")

	algorithm, err := alg.Build()
*/
package dsl
