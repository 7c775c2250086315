package runner_test

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/diastole"
	"github.com/aretw0/diastole/pkg/algorithms"
	"github.com/aretw0/diastole/pkg/domain"
	"github.com/aretw0/diastole/pkg/runner"
)

func newSession(t *testing.T, alg, mode string) *diastole.Session {
	t.Helper()
	sess := diastole.New().NewSession()
	require.NoError(t, sess.StartAlgorithm(context.Background(), alg, mode))
	return sess
}

func run(t *testing.T, sess *diastole.Session, input string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	r := &runner.Runner{Input: strings.NewReader(input), Output: &out, Headless: true}
	err := r.Run(context.Background(), sess)
	return out.String(), err
}

func TestRun_ScriptedToResult(t *testing.T) {
	sess := newSession(t, algorithms.ASE2016ID, "")
	out, err := run(t, sess, "3\ngte2\n")
	require.NoError(t, err)

	assert.True(t, sess.IsAtResult())
	assert.Contains(t, out, "What is the left ventricular ejection fraction (LVEF)?")
	assert.Contains(t, out, "1) Normal LVEF")
	assert.Contains(t, out, "Result: Grade III Diastolic Dysfunction")
}

func TestRun_CommandsAndErrors(t *testing.T) {
	sess := newSession(t, algorithms.Mayo2025ID, "")
	// "9" is out of range, so it is submitted as a raw value and the wildcard
	// accepts it. "sideways" is not an option at normalFillingPressure.
	input := strings.Join([]string{
		"back",
		"normal",
		"b",
		"abnormal",
		"9",
		"restart",
		"normal", "normal", "normal", "normal",
		"sideways",
		"greater",
	}, "\n")
	out, err := run(t, sess, input)
	require.NoError(t, err)

	assert.Contains(t, out, "already at the first question")
	assert.Contains(t, out, `"sideways" is not one of the options`)
	assert.Contains(t, out, "Result: Normal Diastolic Function")
	assert.Equal(t, "resultNormal", sess.State().CurrentNodeID)
	assert.Len(t, sess.State().Decisions(), 5)
}

func TestRun_QuitAndEOF(t *testing.T) {
	sess := newSession(t, algorithms.BSE2024ID, "afib")
	_, err := run(t, sess, "positive\nquit\n")
	assert.ErrorIs(t, err, runner.ErrQuit)
	assert.Equal(t, "mvEVelocity", sess.State().CurrentNodeID)

	_, err = run(t, sess, "positive\n")
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, "mvEDecelTimeAF", sess.State().CurrentNodeID)
}

func TestRun_OnStepAndStepBack(t *testing.T) {
	sess := newSession(t, algorithms.Mayo2025ID, "")
	for _, a := range []string{"abnormal", "abnormal", "abnormal", "abnormal"} {
		require.NoError(t, sess.SubmitAnswer(context.Background(), a))
	}
	require.NoError(t, sess.StepBack(context.Background()))
	require.Equal(t, domain.PhaseAtEvaluator, sess.Status())

	var saved int
	var out bytes.Buffer
	r := &runner.Runner{
		Input:    strings.NewReader("less\n"),
		Output:   &out,
		Headless: true,
		OnStep: func(s *diastole.Session) error {
			saved++
			_, err := s.Serialize()
			return err
		},
	}
	require.NoError(t, r.Run(context.Background(), sess))
	assert.Equal(t, 1, saved)
	assert.Contains(t, out.String(), "Grade II Diastolic Dysfunction")
}

func TestRun_Uninitialized(t *testing.T) {
	r := &runner.Runner{Input: strings.NewReader(""), Output: io.Discard}
	assert.ErrorIs(t, r.Run(context.Background(), diastole.New().NewSession()), domain.ErrNoActiveAlgorithm)
}
