package mcp

import (
	"context"
	"strings"

	"awsinfra/internal/audit"
	awslib "awsinfra/internal/aws"
	"awsinfra/internal/cache"
	"awsinfra/internal/config"
	"awsinfra/internal/policy"
	"awsinfra/internal/redact"
)

type ToolSafety string

const (
	SafetyReadOnly    ToolSafety = "read_only"
	SafetyWrite       ToolSafety = "write"
	SafetyDestructive ToolSafety = "destructive"
)

type ToolHandler func(ctx context.Context, req ToolRequest) (ToolResult, error)

type ToolSpec struct {
	Name        string
	Description string
	ToolsetID   string
	InputSchema map[string]any
	Safety      ToolSafety
	Handler     ToolHandler
}

type ToolInfo struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Safety      ToolSafety     `json:"safety"`
	InputSchema map[string]any `json:"inputSchema"`
}

type ToolRequest struct {
	Arguments map[string]any
	Context   ToolContext
}

// Region returns the optional "region" argument every tool accepts.
func (r ToolRequest) Region() string {
	value, _ := r.Arguments["region"].(string)
	return strings.TrimSpace(value)
}

// ToolResult carries a handler's payload. The envelope is added at dispatch.
type ToolResult struct {
	Data     map[string]any
	Metadata ToolMetadata
}

type ToolMetadata struct {
	Region    string   `json:"region,omitempty"`
	Resources []string `json:"resources,omitempty"`
}

type ToolContext struct {
	Config   *config.Config
	Clients  *awslib.Registry
	Policy   *policy.Authorizer
	Redactor *redact.Redactor
	Audit    *audit.Logger
	Cache    *cache.Store
	Invoker  *ToolInvoker
	Registry Registry
}

type ToolsetContext = ToolContext
