package aws

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"awsinfra/internal/mcp"
)

// wrapListCache memoizes list_ tools for cache.list_ttl_seconds. Every
// mutating call from this toolset purges the store when it returns, failed
// or not, since a failure can follow a partial change.
func (t *Toolset) wrapListCache(spec mcp.ToolSpec) mcp.ToolSpec {
	if t.ctx.Cache == nil || t.ctx.Config == nil || t.ctx.Config.Cache.ListTTLSeconds <= 0 {
		return spec
	}
	handler := spec.Handler
	if spec.Safety != mcp.SafetyReadOnly {
		spec.Handler = func(ctx context.Context, req mcp.ToolRequest) (mcp.ToolResult, error) {
			defer t.ctx.Cache.Purge()
			return handler(ctx, req)
		}
		return spec
	}
	if !strings.HasPrefix(spec.Name, "list_") {
		return spec
	}
	ttl := time.Duration(t.ctx.Config.Cache.ListTTLSeconds) * time.Second
	name := spec.Name
	spec.Handler = func(ctx context.Context, req mcp.ToolRequest) (mcp.ToolResult, error) {
		key, ok := t.listCacheKey(name, req)
		if !ok {
			return handler(ctx, req)
		}
		if cached, hit := t.ctx.Cache.Get(key); hit {
			if result, ok := cached.(mcp.ToolResult); ok {
				return result, nil
			}
		}
		result, err := handler(ctx, req)
		if err == nil && result.Data != nil {
			t.ctx.Cache.Set(key, result, ttl)
		}
		return result, err
	}
	return spec
}

// listCacheKey uses the resolved region so "" and the default region share
// an entry. Arguments that cannot be encoded bypass the cache.
func (t *Toolset) listCacheKey(name string, req mcp.ToolRequest) (string, bool) {
	args := make(map[string]any, len(req.Arguments))
	for key, value := range req.Arguments {
		if key != "region" {
			args[key] = value
		}
	}
	encoded, err := json.Marshal(args)
	if err != nil {
		return "", false
	}
	return "list:" + name + ":" + t.ctx.Clients.Region(req.Region()) + ":" + string(encoded), true
}
