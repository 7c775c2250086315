/*
Package diastole is a clinical decision graph engine for grading left ventricular
diastolic function from echocardiographic measurements.

Each guideline (ASE/EACVI 2016, BSE 2024, Mayo Clinic 2025) is an immutable graph
of three node kinds: decisions ask the user a question, evaluators silently route on
the answers collected so far, and results name an outcome in a result catalog. The
engine walks the graph, resolving evaluators automatically so a caller only ever
sees questions and outcomes.

# Concept

Navigation is deterministic and reversible. Every step appends a history entry that
records which answers it wrote, so going back restores the exact previous state,
including answers an evaluator copied between questions. A session serializes to a
small JSON snapshot that can be carried across requests.

# Usage

	eng := diastole.New()
	sess := eng.NewSession()

	ctx := context.Background()
	if err := sess.StartAlgorithm(ctx, "ase2016", ""); err != nil {
		log.Fatal(err)
	}

	for !sess.IsAtResult() {
		node, err := sess.CurrentNode()
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println(node.Question)
		// In a real app, the answer comes from the user.
		if err := sess.SubmitAnswer(ctx, node.Options[0].Value); err != nil {
			log.Fatal(err)
		}
	}
	fmt.Println(sess.Result().Message)

The stateless operations (Start, Submit, Back, Render) are also available on Engine
for hosts that keep the state themselves.
*/
package diastole
