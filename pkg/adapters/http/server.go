package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aretw0/diastole"
	"github.com/aretw0/diastole/internal/presentation/graph"
	"github.com/aretw0/diastole/pkg/domain"
)

// Engine is the subset of diastole.Engine the server needs.
type Engine interface {
	Algorithms() []domain.Metadata
	Algorithm(id string) (*domain.Algorithm, error)
	Start(ctx context.Context, algorithmID, modeID string) (*domain.State, error)
	Submit(ctx context.Context, state *domain.State, answer string) (*domain.State, error)
	Back(ctx context.Context, state *domain.State) (*domain.State, error)
	Replay(ctx context.Context, algorithmID, modeID string, history []domain.HistoryEntry) (*domain.State, error)
	At(ctx context.Context, algorithmID, modeID, nodeID string) (*domain.State, error)
	Render(state *domain.State) (*domain.NodeView, error)
}

var _ Engine = (*diastole.Engine)(nil)

// RequestIDHeader carries the correlation id of a request.
const RequestIDHeader = "X-Request-ID"

// Options configures the handler.
type Options struct {
	Logger *slog.Logger
	// ValidateRequests enables OpenAPI request validation.
	ValidateRequests bool
	// Registry receives the HTTP metrics and backs /metrics. Nil disables both.
	Registry *prometheus.Registry
}

// Server serves the algorithm endpoints. Each request rebuilds its state
// from the transported history; the server holds no session state.
type Server struct {
	Engine   Engine
	Logger   *slog.Logger
	Metrics  *Metrics
	validate *validator.Validate
	apiVer   string
}

// SubmitRequest is the body of POST /algorithms/{id}.
type SubmitRequest struct {
	NodeID  string                `json:"nodeId" validate:"required"`
	Answer  string                `json:"answer" validate:"required"`
	ModeID  string                `json:"modeId,omitempty"`
	History []domain.HistoryEntry `json:"history,omitempty" validate:"dive"`
}

// BackRequest is the body of PUT /algorithms/{id}.
type BackRequest struct {
	ModeID  string                `json:"modeId,omitempty"`
	History []domain.HistoryEntry `json:"history" validate:"required,min=1,dive"`
}

// AlgorithmView is the response of GET /algorithms/{id}.
type AlgorithmView struct {
	Algorithm   domain.Metadata  `json:"algorithm"`
	CurrentNode *domain.NodeView `json:"currentNode"`
}

// StepResponse is the response of POST and PUT /algorithms/{id}.
type StepResponse struct {
	CurrentNode *domain.NodeView      `json:"currentNode"`
	History     []domain.HistoryEntry `json:"history"`
	Answers     map[string]string     `json:"answers"`
}

// NewHandler creates a new HTTP handler for the engine.
func NewHandler(engine Engine, opts Options) (http.Handler, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	doc, err := GetSwagger()
	if err != nil {
		return nil, err
	}

	s := &Server{
		Engine:   engine,
		Logger:   logger,
		validate: validator.New(),
		apiVer:   doc.Info.Version,
	}

	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)
	r.Use(enableCORS)
	if opts.Registry != nil {
		s.Metrics = NewMetrics(opts.Registry)
		r.Use(s.Metrics.middleware)
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(opts.Registry, promhttp.HandlerOpts{}))
	}

	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		w.Write(rawSpec)
	})

	r.Group(func(r chi.Router) {
		if opts.ValidateRequests {
			v, err := requestValidator(doc, logger)
			if err != nil {
				// The document was validated above; a router failure is a programming error.
				panic(err)
			}
			r.Use(v)
		}
		r.Get("/health", s.GetHealth)
		r.Get("/info", s.GetInfo)
		r.Get("/algorithms", s.ListAlgorithms)
		r.Get("/algorithms/{id}", s.GetAlgorithm)
		r.Post("/algorithms/{id}", s.SubmitAnswer)
		r.Put("/algorithms/{id}", s.GoBack)
		r.Get("/algorithms/{id}/graph", s.GetGraph)
	})

	return r, nil
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"app":         "diastole-http",
		"version":     strings.TrimSpace(diastole.Version),
		"commit":      diastole.Commit,
		"api_version": s.apiVer,
	})
}

// ListAlgorithms handles the GET /algorithms request.
func (s *Server) ListAlgorithms(w http.ResponseWriter, r *http.Request) {
	algs := s.Engine.Algorithms()
	if algs == nil {
		algs = []domain.Metadata{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"algorithms": algs})
}

// GetAlgorithm handles GET /algorithms/{id}. Without nodeId it returns the
// entry of the requested mode; an evaluator node is resolved before rendering.
func (s *Server) GetAlgorithm(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	mode := r.URL.Query().Get("mode")
	nodeID := r.URL.Query().Get("nodeId")

	alg, err := s.Engine.Algorithm(id)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	var state *domain.State
	if nodeID == "" {
		state, err = s.Engine.Start(r.Context(), id, mode)
	} else {
		state, err = s.Engine.At(r.Context(), id, mode, nodeID)
	}
	if err != nil {
		s.fail(w, r, err)
		return
	}
	view, err := s.Engine.Render(state)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, AlgorithmView{Algorithm: alg.Metadata(), CurrentNode: view})
}

// SubmitAnswer handles POST /algorithms/{id}: replay the history, check the
// client is answering the node it was shown, then submit.
func (s *Server) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var body SubmitRequest
	if !s.decode(w, r, &body) {
		return
	}

	state, err := s.Engine.Replay(r.Context(), id, body.ModeID, body.History)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if state.CurrentNodeID != body.NodeID {
		s.fail(w, r, fmt.Errorf("%w: answering %q but the session is at %q", domain.ErrSerialization, body.NodeID, state.CurrentNodeID))
		return
	}
	next, err := s.Engine.Submit(r.Context(), state, body.Answer)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidAnswer) && s.Metrics != nil {
			s.Metrics.InvalidAnswersTotal.WithLabelValues(id).Inc()
		}
		s.fail(w, r, err)
		return
	}
	s.respondStep(w, r, next)
}

// GoBack handles PUT /algorithms/{id}.
func (s *Server) GoBack(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var body BackRequest
	if !s.decode(w, r, &body) {
		return
	}

	state, err := s.Engine.Replay(r.Context(), id, body.ModeID, body.History)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	prev, err := s.Engine.Back(r.Context(), state)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.respondStep(w, r, prev)
}

// GetGraph handles GET /algorithms/{id}/graph.
func (s *Server) GetGraph(w http.ResponseWriter, r *http.Request) {
	alg, err := s.Engine.Algorithm(chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	io.WriteString(w, graph.GenerateMermaid(alg, nil))
}

func (s *Server) respondStep(w http.ResponseWriter, r *http.Request, state *domain.State) {
	view, err := s.Engine.Render(state)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if view.Type == domain.NodeTypeResult && s.Metrics != nil {
		s.Metrics.ResultsTotal.WithLabelValues(state.AlgorithmID, string(view.ResultKey)).Inc()
	}
	writeJSON(w, http.StatusOK, StepResponse{
		CurrentNode: view,
		History:     state.History,
		Answers:     state.Answers,
	})
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, errors.New("invalid request body"))
		s.Logger.Warn("invalid request body", "path", r.URL.Path, "error", err)
		return false
	}
	if err := s.validate.Struct(v); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return false
	}
	return true
}

// fail maps engine errors onto status codes.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrAlgorithmNotFound), errors.Is(err, domain.ErrNodeNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidAnswer),
		errors.Is(err, domain.ErrAtResult),
		errors.Is(err, domain.ErrHistoryEmpty),
		errors.Is(err, domain.ErrSerialization):
		status = http.StatusBadRequest
	}
	if s.Metrics != nil {
		s.Metrics.ErrorsTotal.WithLabelValues(errorKind(err)).Inc()
	}
	if status == http.StatusInternalServerError {
		s.Logger.Error("request failed", "path", r.URL.Path, "request_id", w.Header().Get(RequestIDHeader), "error", err)
	}
	writeError(w, status, err)
}

// errorKind names the sentinel behind err for the error counter.
func errorKind(err error) string {
	for _, k := range []struct {
		target error
		kind   string
	}{
		{domain.ErrAlgorithmNotFound, "algorithm_not_found"},
		{domain.ErrNodeNotFound, "node_not_found"},
		{domain.ErrInvalidAnswer, "invalid_answer"},
		{domain.ErrAtResult, "at_result"},
		{domain.ErrHistoryEmpty, "history_empty"},
		{domain.ErrEvaluatorCycle, "evaluator_cycle"},
		{domain.ErrChainTooDeep, "chain_too_deep"},
		{domain.ErrUnsupportedNode, "unsupported_node"},
		{domain.ErrSerialization, "serialization"},
	} {
		if errors.Is(err, k.target) {
			return k.kind
		}
	}
	return "internal"
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.Logger.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"request_id", w.Header().Get(RequestIDHeader),
		)
	})
}

// requestID propagates the caller's X-Request-ID or assigns a new one.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r)
	})
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, "+RequestIDHeader)
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("response encode failed", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
