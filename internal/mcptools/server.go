// Package mcptools exposes trip planning as MCP tools so agent hosts can
// generate, inspect, and list plans over stdio or streamable HTTP.
package mcptools

import (
	"context"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// NewServer creates an MCP server with the four planning tools registered.
func NewServer(svc *PlannerService, version string) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "wayplan",
		Version: version,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "generate_plan",
		Description: "Generate a complete day-by-day trip plan from a natural-language goal. The plan is enriched with weather and venue suggestions, persisted, and returned with its stored id.",
	}, svc.GeneratePlan)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "analyze_goal",
		Description: "Extract structured trip parameters (destination, duration, start date, activities, preferences) from a natural-language goal without generating a plan.",
	}, svc.AnalyzeGoal)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_plan",
		Description: "Fetch a stored trip plan by id.",
	}, svc.GetPlan)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_plans",
		Description: "List stored trip plans newest first, optionally filtered by a goal search term.",
	}, svc.ListPlans)

	return server
}

// RunStdio serves MCP on the stdio transport, blocking until stdin closes
// or the context is cancelled.
func RunStdio(ctx context.Context, server *mcp.Server) error {
	return server.Run(ctx, &mcp.StdioTransport{})
}

// RunHTTP serves MCP over streamable HTTP until the context is cancelled.
func RunHTTP(ctx context.Context, server *mcp.Server, addr string) error {
	handler := mcp.NewStreamableHTTPHandler(
		func(_ *http.Request) *mcp.Server { return server },
		nil,
	)

	httpServer := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	// Shutdown gracefully when context is cancelled.
	go func() {
		<-ctx.Done()
		httpServer.Shutdown(context.Background())
	}()

	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
