package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	sdkjsonrpc "github.com/modelcontextprotocol/go-sdk/jsonrpc"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// SDKTool is a registry spec converted for the go-sdk server.
type SDKTool struct {
	Tool    *sdkmcp.Tool
	Handler sdkmcp.ToolHandler
}

// BuildSDKTools converts every spec in reg without touching a server.
func BuildSDKTools(reg *ToolRegistry, ctx ToolContext) ([]SDKTool, error) {
	if reg == nil {
		return nil, fmt.Errorf("registry is required")
	}
	specs := reg.Specs()
	tools := make([]SDKTool, 0, len(specs))
	for _, spec := range specs {
		schema := spec.InputSchema
		if schema == nil {
			schema = map[string]any{"type": "object"}
		}
		tools = append(tools, SDKTool{
			Tool: &sdkmcp.Tool{
				Name:        spec.Name,
				Description: spec.Description,
				InputSchema: schema,
			},
			Handler: toolHandler(spec, ctx),
		})
	}
	return tools, nil
}

// AddSDKTools adds tools to server, replacing any tool of the same name, and
// returns their names.
func AddSDKTools(server *sdkmcp.Server, tools []SDKTool) []string {
	names := make([]string, 0, len(tools))
	for _, tool := range tools {
		server.AddTool(tool.Tool, tool.Handler)
		names = append(names, tool.Tool.Name)
	}
	return names
}

func RegisterSDKTools(server *sdkmcp.Server, reg *ToolRegistry, ctx ToolContext) ([]string, error) {
	if server == nil || reg == nil {
		return nil, fmt.Errorf("server and registry are required")
	}
	tools, err := BuildSDKTools(reg, ctx)
	if err != nil {
		return nil, err
	}
	return AddSDKTools(server, tools), nil
}

func toolHandler(spec ToolSpec, ctx ToolContext) sdkmcp.ToolHandler {
	return func(callCtx context.Context, req *sdkmcp.CallToolRequest) (*sdkmcp.CallToolResult, error) {
		args := map[string]any{}
		if req != nil && req.Params != nil && len(req.Params.Arguments) > 0 {
			if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
				return nil, &sdkjsonrpc.Error{Code: sdkjsonrpc.CodeInvalidParams, Message: fmt.Sprintf("invalid arguments: %v", err)}
			}
		}
		result, err := execute(callCtx, ctx, spec, args)
		return buildCallToolResult(result, Envelope(result, err)), nil
	}
}

func buildCallToolResult(result ToolResult, envelope map[string]any) *sdkmcp.CallToolResult {
	res := &sdkmcp.CallToolResult{
		IsError:           IsErrorEnvelope(envelope),
		StructuredContent: envelope,
	}
	if result.Metadata.Region != "" || len(result.Metadata.Resources) > 0 {
		res.Meta = sdkmcp.Meta{
			"region":    result.Metadata.Region,
			"resources": result.Metadata.Resources,
		}
	}
	data, err := json.Marshal(envelope)
	if err != nil {
		res.Content = []sdkmcp.Content{&sdkmcp.TextContent{Text: fmt.Sprintf("%v", envelope)}}
		return res
	}
	res.Content = []sdkmcp.Content{&sdkmcp.TextContent{Text: string(data)}}
	return res
}
