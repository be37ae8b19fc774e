// Package sdk is the stable surface for code that embeds the server or adds
// its own toolsets next to the built-in aws one.
package sdk

import (
	"io"

	awslib "awsinfra/internal/aws"
	"awsinfra/internal/config"
	"awsinfra/internal/mcp"
	"awsinfra/pkg/server"
)

type Toolset = mcp.Toolset

type ToolsetContext = mcp.ToolsetContext

type ToolsetCatalog = mcp.ToolsetCatalog

type ToolsetFactory = mcp.ToolsetFactory

type ToolSpec = mcp.ToolSpec

type ToolHandler = mcp.ToolHandler

type ToolSafety = mcp.ToolSafety

type ToolRequest = mcp.ToolRequest

type ToolResult = mcp.ToolResult

type ToolMetadata = mcp.ToolMetadata

type Registry = mcp.Registry

type Config = config.Config

type Runtime = server.Runtime

type ClientRegistry = awslib.Registry

const (
	SafetyReadOnly    = mcp.SafetyReadOnly
	SafetyWrite       = mcp.SafetyWrite
	SafetyDestructive = mcp.SafetyDestructive
)

// NewCatalog returns the built-in catalog with extra toolsets added.
func NewCatalog(extra map[string]ToolsetFactory) (*ToolsetCatalog, error) {
	catalog := server.DefaultCatalog()
	for id, factory := range extra {
		if err := catalog.Register(id, factory); err != nil {
			return nil, err
		}
	}
	return catalog, nil
}

func DefaultConfig() Config {
	return config.DefaultConfig()
}

func NewRuntime(cfg Config, catalog *ToolsetCatalog, clients *ClientRegistry, audit io.Writer) (*Runtime, error) {
	return server.BuildRuntime(cfg, catalog, clients, audit)
}

// NewClientRegistry builds a client registry whose session comes from load
// instead of the shared AWS config chain. A nil verify uses STS.
func NewClientRegistry(load awslib.Loader, verify awslib.Verifier, defaultRegion string) *ClientRegistry {
	return awslib.NewRegistryWith(load, verify, defaultRegion)
}

// Envelope renders a handler outcome in the wire shape.
func Envelope(result ToolResult, err error) map[string]any {
	return mcp.Envelope(result, err)
}

// DecodeRequest fills out from tool arguments and validates it.
func DecodeRequest(args map[string]any, out any) error {
	return mcp.DecodeRequest(args, out)
}
