package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"
	"github.com/sashabaranov/go-openai"

	"github.com/Josh-Mantel/MCP-F1/internal/services/tools"
	"github.com/Josh-Mantel/MCP-F1/pkg/httpext"
)

const maxToolCallBody = 1 << 20

type ToolsResponse struct {
	Tools []openai.Tool `json:"tools"`
}

type ToolCallRequest struct {
	ToolCalls []openai.ToolCall `json:"tool_calls"`
}

type ToolCallResponse struct {
	Messages []openai.ChatCompletionMessage `json:"messages"`
}

// HandleListTools returns the catalog as OpenAI function definitions
func HandleListTools(toolService *tools.Service, w http.ResponseWriter, r *http.Request) {
	httpext.JsonResponse(w, http.StatusOK, ToolsResponse{Tools: toolService.GetTools()})
}

// HandleToolCalls runs each tool call in order and answers with one tool
// message per call. Tool failures are reported in the message content.
func HandleToolCalls(executor *tools.ToolExecutor, w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxToolCallBody)

	var req ToolCallRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpext.JsonErrorWithDetails(w, http.StatusBadRequest, httpext.ErrorResponse{
			Error:            httpext.ErrCodeInvalidRequest,
			ErrorDescription: "request body must be a JSON object with tool_calls",
		})
		return
	}

	if len(req.ToolCalls) == 0 {
		httpext.JsonErrorWithDetails(w, http.StatusBadRequest, httpext.ErrorResponse{
			Error:            httpext.ErrCodeInvalidRequest,
			ErrorDescription: "tool_calls must not be empty",
		})
		return
	}

	resp := ToolCallResponse{Messages: make([]openai.ChatCompletionMessage, 0, len(req.ToolCalls))}
	for _, call := range req.ToolCalls {
		resp.Messages = append(resp.Messages, executor.ExecuteToolCall(r.Context(), call))
	}

	log.Debug().Int("tool_calls", len(req.ToolCalls)).Msg("Executed tool calls")
	httpext.JsonResponse(w, http.StatusOK, resp)
}
