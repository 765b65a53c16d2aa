package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/arbor"
	"github.com/aretw0/arbor/internal/presentation/graph"
	"github.com/aretw0/arbor/pkg/registry"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const subtreesURI = "arbor://subtrees"

// DescribeResponse is the structured result of the describe_tree tool.
type DescribeResponse struct {
	Tree    any    `json:"tree" jsonschema_description:"Snapshot of the compiled tree, every node READY"`
	Mermaid string `json:"mermaid,omitempty" jsonschema_description:"Mermaid flowchart of the tree when requested"`
}

// SubtreesResponse is the structured result of the list_subtrees tool.
type SubtreesResponse struct {
	Subtrees []string `json:"subtrees" jsonschema_description:"Names of the registered subtrees"`
}

// Server exposes definition tooling as an MCP server. Trees are compiled
// against the registry but never stepped, so no agent is needed.
type Server struct {
	registry  *registry.Registry
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP Server instance. reg may be nil.
func NewServer(reg *registry.Registry) *Server {
	if reg == nil {
		reg = registry.New()
	}
	s := &Server{
		registry:  reg,
		mcpServer: server.NewMCPServer("arbor-mcp", arbor.Version),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE and shuts it down
// when ctx is done.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", sseServer.SSEHandler())
	mux.Handle("/message", sseServer.MessageHandler())

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	serverErrors := make(chan error, 1)
	go func() {
		slog.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
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
	validateTool := mcp.NewTool("validate_definition",
		mcp.WithDescription("Validate a behaviour tree definition written in MDSL or JSON."),
		mcp.WithString("definition", mcp.Required(), mcp.Description("The definition text")),
		mcp.WithOutputSchema[arbor.ValidationResult](),
	)
	s.mcpServer.AddTool(validateTool, mcp.NewStructuredToolHandler(s.handleValidate))

	describeTool := mcp.NewTool("describe_tree",
		mcp.WithDescription("Compile a definition against the registered subtrees and describe the resulting tree."),
		mcp.WithString("definition", mcp.Required(), mcp.Description("The definition text")),
		mcp.WithBoolean("mermaid", mcp.Description("Also render the tree as a Mermaid flowchart")),
		mcp.WithOutputSchema[DescribeResponse](),
	)
	s.mcpServer.AddTool(describeTool, mcp.NewStructuredToolHandler(s.handleDescribe))

	listTool := mcp.NewTool("list_subtrees",
		mcp.WithDescription("List the subtrees that branch nodes may refer to."),
		mcp.WithOutputSchema[SubtreesResponse](),
	)
	s.mcpServer.AddTool(listTool, mcp.NewStructuredToolHandler(s.handleListSubtrees))
}

func (s *Server) handleValidate(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (arbor.ValidationResult, error) {
	def, _ := args["definition"].(string)
	result := arbor.Validate(def)
	if !result.Succeeded {
		slog.Debug("MCP validate: definition rejected", "error", result.ErrorMessage)
	}
	return result, nil
}

func (s *Server) handleDescribe(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (DescribeResponse, error) {
	def, _ := args["definition"].(string)
	withMermaid, _ := args["mermaid"].(bool)

	tree, err := arbor.Compile(def, struct{}{}, arbor.WithRegistry(s.registry))
	if err != nil {
		return DescribeResponse{}, fmt.Errorf("compile failed: %w", err)
	}

	details := tree.Details()
	resp := DescribeResponse{Tree: details}
	if withMermaid {
		resp.Mermaid = graph.GenerateMermaid(details, false)
	}
	return resp, nil
}

func (s *Server) handleListSubtrees(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (SubtreesResponse, error) {
	return SubtreesResponse{Subtrees: s.registry.SubtreeNames()}, nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(subtreesURI, "Registered Subtrees",
		mcp.WithMIMEType("application/json"),
	), s.readSubtrees)
}

func (s *Server) readSubtrees(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	jsonBytes, err := json.Marshal(s.registry.Subtrees())
	if err != nil {
		return nil, fmt.Errorf("failed to encode subtrees: %w", err)
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      subtreesURI,
			MIMEType: "application/json",
			Text:     string(jsonBytes),
		},
	}, nil
}
