// Package mcpserver exposes the F1 tool catalog over the Model Context
// Protocol on stdio.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	stdlog "log"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog/log"

	"github.com/Josh-Mantel/MCP-F1/internal/services/tools"
	"github.com/Josh-Mantel/MCP-F1/pkg/logger"
)

const (
	ServerName    = "f1-data-server"
	ServerVersion = "1.0.0"
)

type Server struct {
	mcp *server.MCPServer
}

// NewServer registers every catalog tool against the executor
func NewServer(toolsService *tools.Service, executor *tools.ToolExecutor) *Server {
	s := server.NewMCPServer(
		ServerName,
		ServerVersion,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)

	for _, def := range toolsService.Definitions() {
		s.AddTool(mcp.NewToolWithRawSchema(def.Name, def.Description, def.Parameters), toolHandler(executor, def.Name))
		logger.Debug(logger.MCP, "Registered tool %s", def.Name)
	}

	return &Server{mcp: s}
}

func toolHandler(executor *tools.ToolExecutor, name string) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		arguments, err := json.Marshal(req.GetRawArguments())
		if err != nil {
			return mcp.NewToolResultError(tools.ErrorText(err)), nil
		}

		text, isError := executor.Call(ctx, tools.SurfaceMCP, name, arguments)
		if isError {
			return mcp.NewToolResultError(text), nil
		}
		return mcp.NewToolResultText(text), nil
	}
}

// HandleMessage processes one JSON-RPC message
func (s *Server) HandleMessage(ctx context.Context, message json.RawMessage) mcp.JSONRPCMessage {
	return s.mcp.HandleMessage(ctx, message)
}

// Serve speaks the protocol over in/out until in is closed or ctx is done.
// Nothing else may write to out.
func (s *Server) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	errLogger := stdlog.New(log.Logger.With().Str("namespace", logger.MCP).Logger(), "", 0)
	stdio := server.NewStdioServer(s.mcp)
	stdio.SetErrorLogger(errLogger)

	logger.Info(logger.MCP, "MCP server listening on stdio")
	err := stdio.Listen(ctx, in, out)
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
		logger.Info(logger.MCP, "MCP server stopped")
		return nil
	}
	return err
}
