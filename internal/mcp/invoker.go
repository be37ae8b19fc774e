package mcp

import (
	"context"
	"errors"
	"fmt"
)

// ToolInvoker calls registered tools in-process, as the CLI does.
type ToolInvoker struct {
	reg *ToolRegistry
	ctx ToolContext
}

func NewToolInvoker(reg *ToolRegistry, ctx ToolContext) *ToolInvoker {
	return &ToolInvoker{reg: reg, ctx: ctx}
}

// Call runs the named tool and returns its envelope. The error is returned
// alongside so callers can pick an exit status; the envelope already
// describes it.
func (i *ToolInvoker) Call(ctx context.Context, toolName string, args map[string]any) (map[string]any, error) {
	if i == nil || i.reg == nil {
		err := errors.New("tool registry not available")
		return BuildErrorEnvelope(err), err
	}
	spec, ok := i.reg.Get(toolName)
	if !ok {
		err := fmt.Errorf("tool not found: %s", toolName)
		return BuildErrorEnvelope(err), err
	}
	result, err := execute(ctx, i.ctx, spec, args)
	return Envelope(result, err), err
}
