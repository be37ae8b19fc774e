package mcp

// Toolset contributes a group of tools to a registry.
type Toolset interface {
	ID() string
	Version() string
	Init(ctx ToolsetContext) error
	Register(reg Registry) error
}
