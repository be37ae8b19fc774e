package mcp

import (
	"errors"
	"strings"
	"testing"
)

type sampleRequest struct {
	Name     string            `json:"name" valid:"required~name is required"`
	Count    int32             `json:"count"`
	Enabled  bool              `json:"enabled"`
	Port     *int32            `json:"port"`
	Tags     map[string]string `json:"tags" valid:"-"`
	Filters  map[string]any    `json:"filters" valid:"-"`
	Subnets  []string          `json:"subnets"`
	Optional *string           `json:"optional"`
}

func (r *sampleRequest) Validate() error {
	if err := ValidateStruct(r); err != nil {
		return err
	}
	if r.Count < 1 {
		return errors.New("count must be at least 1")
	}
	return nil
}

func TestDecodeRequestDefaultsAndCoercion(t *testing.T) {
	req := sampleRequest{Count: 1, Enabled: true}
	err := DecodeRequest(map[string]any{
		"name":    "web",
		"port":    float64(443),
		"tags":    map[string]any{"Name": "web"},
		"subnets": []any{"subnet-1", "subnet-2"},
		"region":  "us-west-2",
	}, &req)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if req.Count != 1 || !req.Enabled {
		t.Fatalf("expected defaults to survive: %#v", req)
	}
	if req.Port == nil || *req.Port != 443 {
		t.Fatalf("expected port 443, got %v", req.Port)
	}
	if req.Optional != nil {
		t.Fatalf("expected absent optional to stay nil")
	}
	if req.Tags["Name"] != "web" || len(req.Subnets) != 2 {
		t.Fatalf("unexpected decode %#v", req)
	}

	weak := sampleRequest{Count: 1}
	if err := DecodeRequest(map[string]any{"name": "x", "count": "3", "enabled": "true"}, &weak); err != nil {
		t.Fatalf("decode weak: %v", err)
	}
	if weak.Count != 3 || !weak.Enabled {
		t.Fatalf("expected weak coercion, got %#v", weak)
	}
}

func TestDecodeRequestValidation(t *testing.T) {
	req := sampleRequest{Count: 1}
	err := DecodeRequest(map[string]any{}, &req)
	if err == nil || !strings.Contains(err.Error(), "name is required") {
		t.Fatalf("expected required error, got %v", err)
	}
	req = sampleRequest{Count: 1}
	if err := DecodeRequest(map[string]any{"name": "x", "count": 0}, &req); err == nil {
		t.Fatalf("expected explicit check to fail")
	}
}

func TestDecodeRequestTypeMismatch(t *testing.T) {
	req := sampleRequest{}
	err := DecodeRequest(map[string]any{"name": "x", "tags": []any{1, 2}}, &req)
	if err == nil || !strings.HasPrefix(err.Error(), "invalid arguments: ") {
		t.Fatalf("expected decode error, got %v", err)
	}
}

func TestToolRequestRegion(t *testing.T) {
	req := ToolRequest{Arguments: map[string]any{"region": " eu-west-1 "}}
	if req.Region() != "eu-west-1" {
		t.Fatalf("unexpected region %q", req.Region())
	}
	if (ToolRequest{}).Region() != "" {
		t.Fatalf("expected empty region")
	}
}
