package mcp

import (
	"context"
	"errors"
	"testing"

	"awsinfra/internal/config"
)

type stubToolset struct {
	id      string
	initErr error
	tools   []string
}

func (s *stubToolset) ID() string      { return s.id }
func (s *stubToolset) Version() string { return "test" }
func (s *stubToolset) Init(ToolsetContext) error {
	return s.initErr
}
func (s *stubToolset) Register(reg Registry) error {
	for _, name := range s.tools {
		if err := reg.Add(ToolSpec{Name: name, ToolsetID: s.id, Safety: SafetyReadOnly, Handler: func(context.Context, ToolRequest) (ToolResult, error) {
			return ToolResult{}, nil
		}}); err != nil {
			return err
		}
	}
	return nil
}

func TestToolsetCatalogRegister(t *testing.T) {
	catalog := NewToolsetCatalog()
	if err := catalog.Register("", func() Toolset { return &stubToolset{} }); err == nil {
		t.Fatalf("expected error for empty id")
	}
	if err := catalog.Register("aws", nil); err == nil {
		t.Fatalf("expected error for nil factory")
	}
	if err := catalog.Register("aws", func() Toolset { return &stubToolset{id: "aws"} }); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := catalog.Register("aws", func() Toolset { return &stubToolset{id: "aws"} }); err == nil {
		t.Fatalf("expected duplicate error")
	}
	_ = catalog.Register("extra", func() Toolset { return &stubToolset{id: "extra"} })
	ids := catalog.IDs()
	if len(ids) != 2 || ids[0] != "aws" || ids[1] != "extra" {
		t.Fatalf("unexpected ids %#v", ids)
	}
	if _, ok := catalog.Factory("missing"); ok {
		t.Fatalf("expected missing factory")
	}
}

func TestToolsetCatalogBuild(t *testing.T) {
	catalog := NewToolsetCatalog()
	_ = catalog.Register("aws", func() Toolset { return &stubToolset{id: "aws", tools: []string{"list_vpcs", "list_subnets"}} })
	_ = catalog.Register("broken", func() Toolset { return &stubToolset{id: "broken", initErr: errors.New("no clients")} })
	cfg := config.DefaultConfig()
	reg := NewRegistry(&cfg)
	if err := catalog.Build([]string{"aws"}, ToolsetContext{}, reg); err != nil {
		t.Fatalf("build: %v", err)
	}
	if len(reg.Names()) != 2 {
		t.Fatalf("expected two tools, got %#v", reg.Names())
	}
	if err := catalog.Build([]string{"missing"}, ToolsetContext{}, reg); err == nil {
		t.Fatalf("expected unknown toolset error")
	}
	if err := catalog.Build([]string{"broken"}, ToolsetContext{}, reg); err == nil {
		t.Fatalf("expected init error")
	}
}
