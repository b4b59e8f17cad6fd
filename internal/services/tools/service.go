package tools

import (
	"sync"

	"github.com/Josh-Mantel/MCP-F1/internal/config"
	"github.com/sashabaranov/go-openai"
)

// Service holds the tool catalog in OpenAI function-definition form
type Service struct {
	catalog *config.ToolsConfig
	tools   []openai.Tool
	mu      sync.RWMutex
}

// NewService builds the catalog from toolsConfig, or the embedded default
// catalog when toolsConfig is nil.
func NewService(toolsConfig *config.ToolsConfig) *Service {
	if toolsConfig == nil {
		toolsConfig = config.DefaultToolsConfig()
	}

	tools := make([]openai.Tool, 0, len(toolsConfig.Tools))
	for _, toolDef := range toolsConfig.Tools {
		tools = append(tools, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        toolDef.Name,
				Description: toolDef.Description,
				Parameters:  toolDef.Parameters,
			},
		})
	}

	return &Service{
		catalog: toolsConfig,
		tools:   tools,
	}
}

func (s *Service) GetTools() []openai.Tool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tools := make([]openai.Tool, len(s.tools))
	copy(tools, s.tools)
	return tools
}

// Definitions returns the raw catalog entries, schemas included
func (s *Service) Definitions() []config.ToolDefinition {
	s.mu.RLock()
	defer s.mu.RUnlock()

	defs := make([]config.ToolDefinition, len(s.catalog.Tools))
	copy(defs, s.catalog.Tools)
	return defs
}

// Has reports whether name is in the active catalog
func (s *Service) Has(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.catalog.Find(name)
	return ok
}
