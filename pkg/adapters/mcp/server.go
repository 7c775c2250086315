package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/mitchellh/mapstructure"

	"github.com/aretw0/diastole"
	"github.com/aretw0/diastole/internal/presentation/graph"
	"github.com/aretw0/diastole/pkg/domain"
	"github.com/aretw0/diastole/pkg/runner"
)

// StepResult is returned by every navigation tool. State is the session
// snapshot the agent must pass back unchanged on the next call.
type StepResult struct {
	State       string           `json:"state" jsonschema_description:"Opaque session snapshot; pass it back unchanged"`
	CurrentNode *domain.NodeView `json:"currentNode" jsonschema_description:"The question to ask, or the result reached"`
	Terminal    bool             `json:"terminal" jsonschema_description:"Indicates the session reached a result"`
	CanGoBack   bool             `json:"canGoBack" jsonschema_description:"Indicates go_back would succeed"`
}

type startArgs struct {
	AlgorithmID string `mapstructure:"algorithm_id"`
	Mode        string `mapstructure:"mode"`
}

type stepArgs struct {
	State  string `mapstructure:"state"`
	Answer string `mapstructure:"answer"`
}

// Server wraps the Diastole Engine and exposes it as an MCP Server.
type Server struct {
	engine    *diastole.Engine
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP Server instance.
func NewServer(engine *diastole.Engine) *Server {
	s := &Server{
		engine:    engine,
		logger:    engine.Logger(),
		mcpServer: server.NewMCPServer("diastole-mcp", strings.TrimSpace(diastole.Version)),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves MCP over SSE on addr until ctx is cancelled.
func (s *Server) ServeSSE(ctx context.Context, addr string) error {
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL("http://"+addr))

	mux := http.NewServeMux()
	mux.Handle("/sse", sseServer.SSEHandler())
	mux.Handle("/message", sseServer.MessageHandler())

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("list_algorithms",
		mcp.WithDescription("List the available diastolic function algorithms, their modes and citations."),
	), s.handleListAlgorithms)

	s.mcpServer.AddTool(mcp.NewTool("start_algorithm",
		mcp.WithDescription("Start a new assessment and return the first question."),
		mcp.WithString("algorithm_id", mcp.Required(), mcp.Description("Algorithm id, e.g. ase2016")),
		mcp.WithString("mode", mcp.Description("Optional mode id; unknown modes use the default entry")),
		mcp.WithOutputSchema[StepResult](),
	), mcp.NewStructuredToolHandler(s.handleStart))

	s.mcpServer.AddTool(mcp.NewTool("submit_answer",
		mcp.WithDescription("Answer the current question with one of its option values."),
		mcp.WithString("state", mcp.Required(), mcp.Description("State returned by the previous call")),
		mcp.WithString("answer", mcp.Required(), mcp.Description("Option value")),
		mcp.WithOutputSchema[StepResult](),
	), mcp.NewStructuredToolHandler(s.handleSubmit))

	s.mcpServer.AddTool(mcp.NewTool("go_back",
		mcp.WithDescription("Undo the last answer and return the previous question."),
		mcp.WithString("state", mcp.Required(), mcp.Description("State returned by the previous call")),
		mcp.WithOutputSchema[StepResult](),
	), mcp.NewStructuredToolHandler(s.handleBack))

	s.mcpServer.AddTool(mcp.NewTool("get_graph",
		mcp.WithDescription("Get a Mermaid flowchart of an algorithm."),
		mcp.WithString("algorithm_id", mcp.Required(), mcp.Description("Algorithm id")),
	), s.handleGraph)
}

func (s *Server) handleListAlgorithms(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	jsonBytes, err := json.Marshal(s.engine.Algorithms())
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encode failed: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func (s *Server) handleGraph(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args startArgs
	if err := mapstructure.Decode(request.GetArguments(), &args); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
	}
	alg, err := s.engine.Algorithm(args.AlgorithmID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(graph.GenerateMermaid(alg, nil)), nil
}

func (s *Server) handleStart(ctx context.Context, request mcp.CallToolRequest, raw map[string]any) (StepResult, error) {
	var args startArgs
	if err := mapstructure.Decode(raw, &args); err != nil {
		return StepResult{}, fmt.Errorf("invalid arguments: %w", err)
	}
	sess := s.engine.NewSession()
	if err := sess.StartAlgorithm(ctx, args.AlgorithmID, args.Mode); err != nil {
		return StepResult{}, err
	}
	return s.result(sess)
}

func (s *Server) handleSubmit(ctx context.Context, request mcp.CallToolRequest, raw map[string]any) (StepResult, error) {
	sess, args, err := s.resume(raw)
	if err != nil {
		return StepResult{}, err
	}
	answer, err := runner.SanitizeInput(args.Answer)
	if err != nil {
		s.logger.Warn("MCP submit: input rejected", "error", err, "size", len(args.Answer))
		return StepResult{}, fmt.Errorf("input rejected: %w", err)
	}
	if err := sess.SubmitAnswer(ctx, answer); err != nil {
		if errors.Is(err, domain.ErrInvalidAnswer) {
			return StepResult{}, fmt.Errorf("%w; choose one of the option values", err)
		}
		return StepResult{}, err
	}
	return s.result(sess)
}

func (s *Server) handleBack(ctx context.Context, request mcp.CallToolRequest, raw map[string]any) (StepResult, error) {
	sess, _, err := s.resume(raw)
	if err != nil {
		return StepResult{}, err
	}
	if err := sess.GoBack(ctx); err != nil {
		return StepResult{}, err
	}
	return s.result(sess)
}

// resume rebuilds a private session from the transported snapshot.
func (s *Server) resume(raw map[string]any) (*diastole.Session, stepArgs, error) {
	var args stepArgs
	if err := mapstructure.Decode(raw, &args); err != nil {
		return nil, args, fmt.Errorf("invalid arguments: %w", err)
	}
	sess := s.engine.NewSession()
	if err := sess.Deserialize([]byte(args.State)); err != nil {
		return nil, args, err
	}
	return sess, args, nil
}

func (s *Server) result(sess *diastole.Session) (StepResult, error) {
	blob, err := sess.Serialize()
	if err != nil {
		return StepResult{}, err
	}
	view, err := sess.CurrentNode()
	if err != nil {
		return StepResult{}, fmt.Errorf("render failed: %w", err)
	}
	return StepResult{
		State:       string(blob),
		CurrentNode: view,
		Terminal:    sess.IsAtResult(),
		CanGoBack:   sess.CanGoBack(),
	}, nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource("diastole://algorithms", "Available Algorithms",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		jsonBytes, err := json.Marshal(s.engine.Algorithms())
		if err != nil {
			return nil, err
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      "diastole://algorithms",
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}
