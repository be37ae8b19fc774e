package mcp

import (
	"context"
	"fmt"
	"time"

	"awsinfra/internal/audit"
	"awsinfra/internal/log"
)

// execute runs one tool call end to end: policy, timeout, handler (with
// panic recovery), redaction, boundary logging and the audit event. The
// caller turns the outcome into an envelope.
func execute(ctx context.Context, toolCtx ToolContext, spec ToolSpec, args map[string]any) (result ToolResult, err error) {
	started := time.Now()
	if args == nil {
		args = map[string]any{}
	}
	defer func() {
		logOutcome(toolCtx, spec, result, err, time.Since(started))
	}()

	if err := toolCtx.Policy.AuthorizeTool(spec.ToolsetID, spec.Name); err != nil {
		return ToolResult{}, err
	}

	execCtx, cancel := withToolTimeout(ctx, toolCtx.Config, spec)
	defer cancel()
	result, err = callHandler(execCtx, spec, ToolRequest{Arguments: args, Context: toolCtx})
	if err != nil {
		return ToolResult{}, err
	}
	if toolCtx.Redactor != nil && result.Data != nil {
		result.Data = toolCtx.Redactor.RedactMap(result.Data)
	}
	return result, nil
}

func callHandler(ctx context.Context, spec ToolSpec, req ToolRequest) (result ToolResult, err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			result = ToolResult{}
			err = fmt.Errorf("unexpected error in %s: %v", spec.Name, recovered)
		}
	}()
	return spec.Handler(ctx, req)
}

func logOutcome(toolCtx ToolContext, spec ToolSpec, result ToolResult, err error, elapsed time.Duration) {
	outcome := "success"
	detail := ErrorDetail{}
	if err != nil {
		outcome = "error"
		detail = classifyError(err)
		entry := log.WithFields(log.Fields{"tool": spec.Name})
		if detail.Code != "" {
			entry.WithField("code", detail.Code).Errorf("AWS ClientError in %s: %s - %s", spec.Name, detail.Code, detail.Message)
		} else {
			entry.Errorf("Unexpected error in %s: %s", spec.Name, detail.Message)
		}
	} else {
		log.WithFields(log.Fields{"tool": spec.Name, "region": result.Metadata.Region}).Debug("tool call succeeded")
	}
	if toolCtx.Audit == nil {
		return
	}
	event := audit.Event{
		Timestamp:  time.Now().UTC(),
		Tool:       spec.Name,
		Toolset:    spec.ToolsetID,
		Region:     result.Metadata.Region,
		Resources:  result.Metadata.Resources,
		Outcome:    outcome,
		ErrorCode:  detail.Code,
		DurationMS: elapsed.Milliseconds(),
	}
	if err != nil {
		event.Error = detail.Message
	}
	toolCtx.Audit.Log(event)
}
