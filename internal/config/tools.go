package config

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"

	"github.com/Josh-Mantel/MCP-F1/pkg/logger"
)

//go:embed tools.json
var defaultToolsJSON []byte

type ToolDefinition struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  json.RawMessage `json:"parameters"`
}

type ToolsConfig struct {
	Tools []ToolDefinition `json:"tools"`
}

// LoadToolsConfig reads a tool catalog from disk
func LoadToolsConfig(configPath string) (*ToolsConfig, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read tools config: %w", err)
	}

	return parseToolsConfig(data)
}

// DefaultToolsConfig returns the catalog compiled into the binary
func DefaultToolsConfig() *ToolsConfig {
	config, err := parseToolsConfig(defaultToolsJSON)
	if err != nil {
		panic(err)
	}
	return config
}

// GetToolsConfig loads the catalog named by TOOLS_CONFIG, falling back to the
// embedded one when the variable is unset or the file cannot be used.
func GetToolsConfig() *ToolsConfig {
	path := GetEnvOrDefault("TOOLS_CONFIG", "")
	if path == "" {
		return DefaultToolsConfig()
	}

	config, err := LoadToolsConfig(path)
	if err != nil {
		logger.Error(logger.CONFIG, "Ignoring TOOLS_CONFIG: %v", err)
		return DefaultToolsConfig()
	}
	logger.Info(logger.CONFIG, "Loaded %d tools from %s", len(config.Tools), path)
	return config
}

func parseToolsConfig(data []byte) (*ToolsConfig, error) {
	var config ToolsConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse tools config: %w", err)
	}

	for i, tool := range config.Tools {
		if tool.Name == "" {
			return nil, fmt.Errorf("tool %d has no name", i)
		}
		if len(tool.Parameters) == 0 {
			return nil, fmt.Errorf("tool %s has no parameters schema", tool.Name)
		}
	}

	return &config, nil
}

// Find returns the named tool definition
func (c *ToolsConfig) Find(name string) (ToolDefinition, bool) {
	for _, tool := range c.Tools {
		if tool.Name == name {
			return tool, true
		}
	}
	return ToolDefinition{}, false
}
