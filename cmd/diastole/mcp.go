package main

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aretw0/diastole/pkg/adapters/mcp"
)

func newMCPCmd(a *app) *cobra.Command {
	var (
		transport string
		port      int
	)

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Run the Model Context Protocol (MCP) server",
		Long: `Starts Diastole as an MCP Server so AI agents can run assessments as tools.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			srv := mcp.NewServer(a.engine)

			switch transport {
			case "stdio":
				// Logs go to stderr; stdout carries JSON-RPC.
				a.logger.Info("Starting Diastole MCP Server (Stdio)")
				return srv.ServeStdio()
			case "sse":
				ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
				defer stop()

				addr := fmt.Sprintf("127.0.0.1:%d", port)
				if err := srv.ServeSSE(ctx, addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return fmt.Errorf("MCP Server execution failed: %w", err)
				}
				a.logger.Info("MCP Server stopped gracefully")
				return nil
			default:
				return fmt.Errorf("unknown transport: %s. Supported: stdio, sse", transport)
			}
		},
	}

	cmd.Flags().StringVar(&transport, "transport", "stdio", "Transport protocol to use: 'stdio' or 'sse'")
	cmd.Flags().IntVar(&port, "port", 8080, "Port to listen on (only for SSE)")
	return cmd
}
