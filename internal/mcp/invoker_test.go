package mcp

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/aws/smithy-go"

	"awsinfra/internal/audit"
	"awsinfra/internal/config"
	"awsinfra/internal/policy"
	"awsinfra/internal/redact"
)

func TestInvokerToolNotFound(t *testing.T) {
	cfg := config.DefaultConfig()
	reg := NewRegistry(&cfg)
	invoker := NewToolInvoker(reg, ToolContext{})
	envelope, err := invoker.Call(context.Background(), "missing", nil)
	if err == nil {
		t.Fatalf("expected error for missing tool")
	}
	if envelope["error"] != true || envelope["error_message"] != "tool not found: missing" {
		t.Fatalf("unexpected envelope %#v", envelope)
	}
}

func TestInvokerHandlerError(t *testing.T) {
	cfg := config.DefaultConfig()
	reg := NewRegistry(&cfg)
	_ = reg.Add(ToolSpec{
		Name:      "delete_vpc",
		ToolsetID: "aws",
		Handler: func(ctx context.Context, req ToolRequest) (ToolResult, error) {
			return ToolResult{}, &smithy.GenericAPIError{Code: "DependencyViolation", Message: "vpc has dependencies"}
		},
	})
	var auditBuf bytes.Buffer
	invoker := NewToolInvoker(reg, ToolContext{Policy: policy.NewAuthorizer(cfg.Policy), Audit: audit.NewLogger(&auditBuf)})
	envelope, err := invoker.Call(context.Background(), "delete_vpc", map[string]any{"vpc_id": "vpc-1"})
	if err == nil {
		t.Fatalf("expected handler error")
	}
	if envelope["error_code"] != "DependencyViolation" || envelope["error_message"] != "vpc has dependencies" {
		t.Fatalf("unexpected envelope %#v", envelope)
	}
	if !strings.Contains(auditBuf.String(), `"errorCode":"DependencyViolation"`) {
		t.Fatalf("expected audit error code, got %s", auditBuf.String())
	}
}

func TestInvokerRecoversPanic(t *testing.T) {
	reg := NewRegistry(nil)
	_ = reg.Add(ToolSpec{
		Name: "boom",
		Handler: func(ctx context.Context, req ToolRequest) (ToolResult, error) {
			var m map[string]string
			m["x"] = "y"
			return ToolResult{}, nil
		},
	})
	envelope, err := NewToolInvoker(reg, ToolContext{}).Call(context.Background(), "boom", nil)
	if err == nil {
		t.Fatalf("expected recovered panic error")
	}
	if _, ok := envelope["error_code"]; ok {
		t.Fatalf("panic must be unclassified: %#v", envelope)
	}
	if !strings.HasPrefix(envelope["error_message"].(string), "unexpected error in boom: ") {
		t.Fatalf("unexpected message %v", envelope["error_message"])
	}
}

func TestInvokerPolicyDenied(t *testing.T) {
	reg := NewRegistry(nil)
	called := false
	_ = reg.Add(ToolSpec{Name: "invoke_lambda_function", ToolsetID: "aws", Handler: func(context.Context, ToolRequest) (ToolResult, error) {
		called = true
		return ToolResult{}, nil
	}})
	auth := policy.NewAuthorizer(config.PolicyConfig{DeniedTools: []string{"invoke_lambda_function"}})
	envelope, err := NewToolInvoker(reg, ToolContext{Policy: auth}).Call(context.Background(), "invoke_lambda_function", nil)
	if err == nil || called {
		t.Fatalf("expected policy to block the call")
	}
	if envelope["error"] != true {
		t.Fatalf("expected error envelope")
	}
}

func TestInvokerMissingRegistry(t *testing.T) {
	invoker := &ToolInvoker{}
	if _, err := invoker.Call(context.Background(), "list_vpcs", nil); err == nil {
		t.Fatalf("expected error for missing registry")
	}
}

func TestInvokerSuccessRedacts(t *testing.T) {
	cfg := config.DefaultConfig()
	reg := NewRegistry(&cfg)
	var seen ToolRequest
	_ = reg.Add(ToolSpec{
		Name:      "create_rds_instance",
		ToolsetID: "aws",
		Handler: func(ctx context.Context, req ToolRequest) (ToolResult, error) {
			seen = req
			return ToolResult{
				Data:     map[string]any{"db_instance": map[string]any{"DBInstanceIdentifier": "db1", "MasterUserPassword": "pw"}},
				Metadata: ToolMetadata{Region: "us-east-1", Resources: []string{"db1"}},
			}, nil
		},
	})
	invoker := NewToolInvoker(reg, ToolContext{Config: &cfg, Redactor: redact.New()})
	envelope, err := invoker.Call(context.Background(), "create_rds_instance", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if envelope["success"] != true {
		t.Fatalf("expected success envelope, got %#v", envelope)
	}
	db := envelope["db_instance"].(map[string]any)
	if db["MasterUserPassword"] != redact.Placeholder {
		t.Fatalf("expected password redacted, got %v", db["MasterUserPassword"])
	}
	if seen.Arguments == nil || seen.Context.Config != &cfg {
		t.Fatalf("expected arguments and context to reach the handler")
	}
}

func TestInvokerAppliesTimeout(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Timeouts.DefaultSeconds = 1
	reg := NewRegistry(&cfg)
	_ = reg.Add(ToolSpec{Name: "slow", Handler: func(ctx context.Context, req ToolRequest) (ToolResult, error) {
		if _, ok := ctx.Deadline(); !ok {
			return ToolResult{}, errors.New("no deadline")
		}
		return ToolResult{}, nil
	}})
	if _, err := NewToolInvoker(reg, ToolContext{Config: &cfg}).Call(context.Background(), "slow", nil); err != nil {
		t.Fatalf("expected deadline to be applied: %v", err)
	}
}
