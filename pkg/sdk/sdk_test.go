package sdk

import (
	"context"
	"errors"
	"io"
	"testing"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
)

type echoToolset struct{}

func (echoToolset) ID() string      { return "echo" }
func (echoToolset) Version() string { return "0.0.1" }

func (echoToolset) Init(ToolsetContext) error { return nil }

func (echoToolset) Register(reg Registry) error {
	return reg.Add(ToolSpec{
		Name:      "echo",
		ToolsetID: "echo",
		Safety:    SafetyReadOnly,
		Handler: func(_ context.Context, req ToolRequest) (ToolResult, error) {
			var in struct {
				Text string `json:"text"`
			}
			if err := DecodeRequest(req.Arguments, &in); err != nil {
				return ToolResult{}, err
			}
			return ToolResult{Data: map[string]any{"text": in.Text}}, nil
		},
	})
}

func TestCustomToolsetRunsBesideAWS(t *testing.T) {
	catalog, err := NewCatalog(map[string]ToolsetFactory{"echo": func() Toolset { return echoToolset{} }})
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	if ids := catalog.IDs(); len(ids) != 2 || ids[0] != "aws" || ids[1] != "echo" {
		t.Fatalf("unexpected catalog ids %v", ids)
	}
	clients := NewClientRegistry(func(context.Context) (sdkaws.Config, error) {
		return sdkaws.Config{}, errors.New("offline")
	}, nil, "us-east-1")
	cfg := DefaultConfig()
	cfg.Toolsets = []string{"aws", "echo"}
	runtime, err := NewRuntime(cfg, catalog, clients, io.Discard)
	if err != nil {
		t.Fatalf("runtime: %v", err)
	}
	envelope, err := runtime.Call(context.Background(), "echo", map[string]any{"text": "hi"})
	if err != nil {
		t.Fatalf("call: %v", err)
	}
	if envelope["success"] != true || envelope["text"] != "hi" {
		t.Fatalf("unexpected envelope %#v", envelope)
	}
	if _, ok := runtime.Registry.Get("list_vpcs"); !ok {
		t.Fatalf("expected aws tools next to the custom toolset")
	}
}

func TestNewCatalogRejectsDuplicateID(t *testing.T) {
	if _, err := NewCatalog(map[string]ToolsetFactory{"aws": func() Toolset { return echoToolset{} }}); err == nil {
		t.Fatalf("expected duplicate id error")
	}
}

func TestEnvelopeShapes(t *testing.T) {
	ok := Envelope(ToolResult{Data: map[string]any{"count": 1}}, nil)
	if ok["success"] != true || ok["count"] != 1 {
		t.Fatalf("unexpected success envelope %#v", ok)
	}
	failed := Envelope(ToolResult{}, errors.New("boom"))
	if failed["error"] != true || failed["error_message"] != "boom" {
		t.Fatalf("unexpected error envelope %#v", failed)
	}
	if _, has := failed["error_code"]; has {
		t.Fatalf("unclassified errors carry no error_code")
	}
}
