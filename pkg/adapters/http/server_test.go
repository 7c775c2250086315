package http

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/diastole"
	"github.com/aretw0/diastole/pkg/domain"
)

func newTestHandler(t *testing.T, validate bool) (http.Handler, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	h, err := NewHandler(diastole.New(), Options{ValidateRequests: validate, Registry: reg})
	require.NoError(t, err)
	return h, reg
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestGetSwagger(t *testing.T) {
	doc, err := GetSwagger()
	require.NoError(t, err)
	assert.NotNil(t, doc.Paths.Find("/algorithms/{id}"))
}

func TestHealthAndInfo(t *testing.T) {
	h, _ := newTestHandler(t, true)

	w := do(t, h, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
	_, err := uuid.Parse(w.Header().Get(RequestIDHeader))
	assert.NoError(t, err)

	w = do(t, h, http.MethodGet, "/info", nil)
	info := decodeBody[map[string]string](t, w)
	assert.Equal(t, diastole.Version, info["version"])
	assert.Equal(t, "1.0.0", info["api_version"])
}

func TestRequestIDPropagates(t *testing.T) {
	h, _ := newTestHandler(t, false)
	id := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeader, id)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, id, w.Header().Get(RequestIDHeader))
}

func TestListAlgorithms(t *testing.T) {
	h, _ := newTestHandler(t, true)
	w := do(t, h, http.MethodGet, "/algorithms", nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody[struct {
		Algorithms []domain.Metadata `json:"algorithms"`
	}](t, w)
	require.Len(t, body.Algorithms, 3)
	assert.Equal(t, "ase2016", body.Algorithms[0].ID)
}

func TestGetAlgorithm(t *testing.T) {
	h, _ := newTestHandler(t, true)

	t.Run("entry of a mode", func(t *testing.T) {
		w := do(t, h, http.MethodGet, "/algorithms/bse2024?mode=afib", nil)
		require.Equal(t, http.StatusOK, w.Code)
		view := decodeBody[AlgorithmView](t, w)
		assert.Equal(t, "bse2024", view.Algorithm.ID)
		assert.Equal(t, "afibStart", view.CurrentNode.ID)
		assert.Equal(t, domain.NodeTypeDecision, view.CurrentNode.Type)
	})

	t.Run("evaluator resolved server side", func(t *testing.T) {
		w := do(t, h, http.MethodGet, "/algorithms/mayo2025?nodeId=criteriaEvaluate", nil)
		require.Equal(t, http.StatusOK, w.Code)
		view := decodeBody[AlgorithmView](t, w)
		assert.Equal(t, "resultInsufficientData", view.CurrentNode.ID)
		require.NotNil(t, view.CurrentNode.Result)
	})

	t.Run("unknown", func(t *testing.T) {
		assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/algorithms/nope", nil).Code)
		assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/algorithms/ase2016?nodeId=ghost", nil).Code)
	})
}

func TestSubmitAndBack(t *testing.T) {
	h, reg := newTestHandler(t, true)

	w := do(t, h, http.MethodPost, "/algorithms/ase2016", SubmitRequest{NodeID: "initialAssessment", Answer: "reduced"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	step := decodeBody[StepResponse](t, w)
	assert.Equal(t, "dysfunctionStart", step.CurrentNode.ID)
	require.Len(t, step.History, 1)

	w = do(t, h, http.MethodPost, "/algorithms/ase2016", SubmitRequest{NodeID: "dysfunctionStart", Answer: "gte2", History: step.History})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	end := decodeBody[StepResponse](t, w)
	assert.Equal(t, "resultGrade3", end.CurrentNode.ID)
	assert.Equal(t, "Grade III Diastolic Dysfunction", end.CurrentNode.Result.Message)

	w = do(t, h, http.MethodPut, "/algorithms/ase2016", BackRequest{History: end.History})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	back := decodeBody[StepResponse](t, w)
	assert.Equal(t, "dysfunctionStart", back.CurrentNode.ID)
	assert.Equal(t, step.History, back.History)

	metrics, err := reg.Gather()
	require.NoError(t, err)
	names := map[string]bool{}
	for _, mf := range metrics {
		names[mf.GetName()] = true
	}
	assert.True(t, names["diastole_results_total"])
	assert.True(t, names["diastole_http_requests_total"])

	w = do(t, h, http.MethodGet, "/metrics", nil)
	assert.Contains(t, w.Body.String(), `diastole_results_total{algorithm="ase2016",result="grade-3"} 1`)
}

func TestSubmitErrors(t *testing.T) {
	for _, validate := range []bool{true, false} {
		h, _ := newTestHandler(t, validate)

		tests := []struct {
			name   string
			method string
			body   any
			want   int
		}{
			{"invalid answer", http.MethodPost, SubmitRequest{NodeID: "initialAssessment", Answer: "bogus"}, http.StatusBadRequest},
			{"wrong node", http.MethodPost, SubmitRequest{NodeID: "laVolume", Answer: "positive"}, http.StatusBadRequest},
			{"missing answer", http.MethodPost, map[string]string{"nodeId": "initialAssessment"}, http.StatusBadRequest},
			{"at result", http.MethodPost, SubmitRequest{NodeID: "resultGrade3", Answer: "x", History: []domain.HistoryEntry{
				{NodeID: "initialAssessment", Answer: "reduced"}, {NodeID: "dysfunctionStart", Answer: "gte2"},
			}}, http.StatusBadRequest},
			{"bad history", http.MethodPost, SubmitRequest{NodeID: "x", Answer: "y", History: []domain.HistoryEntry{{NodeID: "laVolume", Answer: "positive"}}}, http.StatusBadRequest},
			{"back without history", http.MethodPut, BackRequest{History: []domain.HistoryEntry{}}, http.StatusBadRequest},
			{"unknown field", http.MethodPost, map[string]string{"nodeId": "initialAssessment", "answer": "reduced", "mode": "integrated"}, http.StatusBadRequest},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				w := do(t, h, tt.method, "/algorithms/ase2016", tt.body)
				assert.Equal(t, tt.want, w.Code, w.Body.String())
				assert.Contains(t, w.Body.String(), `"error"`)
			})
		}
	}
}

func TestSubmitInMode(t *testing.T) {
	h, _ := newTestHandler(t, true)

	w := do(t, h, http.MethodPost, "/algorithms/bse2024", SubmitRequest{ModeID: "afib", NodeID: "afibStart", Answer: "positive"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	step := decodeBody[StepResponse](t, w)
	assert.Equal(t, "mvEVelocity", step.CurrentNode.ID)

	w = do(t, h, http.MethodPut, "/algorithms/bse2024", BackRequest{ModeID: "afib", History: step.History})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "afibStart", decodeBody[StepResponse](t, w).CurrentNode.ID)

	// Without the mode the history does not start where the client thinks.
	w = do(t, h, http.MethodPost, "/algorithms/bse2024", SubmitRequest{NodeID: "afibStart", Answer: "positive"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestErrorMetrics(t *testing.T) {
	h, _ := newTestHandler(t, false)

	do(t, h, http.MethodPost, "/algorithms/ase2016", SubmitRequest{NodeID: "initialAssessment", Answer: "bogus"})
	do(t, h, http.MethodPost, "/algorithms/ase2016", SubmitRequest{NodeID: "laVolume", Answer: "positive"})
	do(t, h, http.MethodGet, "/algorithms/nope", nil)

	body := do(t, h, http.MethodGet, "/metrics", nil).Body.String()
	assert.Contains(t, body, `diastole_errors_total{kind="invalid_answer"} 1`)
	assert.Contains(t, body, `diastole_errors_total{kind="serialization"} 1`)
	assert.Contains(t, body, `diastole_errors_total{kind="algorithm_not_found"} 1`)
}

func TestMalformedBody(t *testing.T) {
	h, _ := newTestHandler(t, false)
	req := httptest.NewRequest(http.MethodPost, "/algorithms/ase2016", bytes.NewBufferString("{"))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetGraph(t *testing.T) {
	h, _ := newTestHandler(t, true)
	w := do(t, h, http.MethodGet, "/algorithms/mayo2025/graph", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "graph TD")
	assert.Contains(t, w.Body.String(), `criteriaEvaluate[["criteriaEvaluate"]]`)

	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/algorithms/nope/graph", nil).Code)
}

func TestOpenAPIAndCORS(t *testing.T) {
	h, _ := newTestHandler(t, true)
	w := do(t, h, http.MethodGet, "/openapi.yaml", nil)
	assert.Contains(t, w.Body.String(), "openapi: 3.0.3")

	w = do(t, h, http.MethodOptions, "/algorithms/ase2016", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
