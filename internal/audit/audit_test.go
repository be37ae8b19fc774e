package audit

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"
)

func TestLoggerWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf)
	logger.Log(Event{
		Timestamp: time.Unix(1, 0).UTC(),
		Tool:      "create_vpc",
		Toolset:   "aws",
		Region:    "us-west-2",
		Resources: []string{"vpc-123"},
		Outcome:   "success",
	})
	output := buf.String()
	if !strings.Contains(output, `"tool":"create_vpc"`) {
		t.Fatalf("expected tool in output: %s", output)
	}
	if !strings.HasSuffix(output, "\n") {
		t.Fatalf("expected newline")
	}
	var decoded Event
	if err := json.Unmarshal([]byte(strings.TrimSpace(output)), &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.Region != "us-west-2" || len(decoded.Resources) != 1 {
		t.Fatalf("unexpected event %#v", decoded)
	}
}

func TestLoggerOmitsEmptyError(t *testing.T) {
	var buf bytes.Buffer
	NewLogger(&buf).Log(Event{Tool: "list_vpcs", Toolset: "aws", Outcome: "success"})
	if strings.Contains(buf.String(), `"error"`) || strings.Contains(buf.String(), `"errorCode"`) {
		t.Fatalf("expected no error keys: %s", buf.String())
	}
}

func TestLoggerNilWriter(t *testing.T) {
	logger := NewLogger(nil)
	logger.Log(Event{Tool: "list_vpcs", Toolset: "aws", Outcome: "success"})
	var nilLogger *Logger
	nilLogger.Log(Event{Tool: "list_vpcs"})
}

func TestLoggerMarshalError(t *testing.T) {
	orig := jsonMarshal
	t.Cleanup(func() { jsonMarshal = orig })
	jsonMarshal = func(any) ([]byte, error) {
		return nil, fmt.Errorf("fail")
	}
	var buf bytes.Buffer
	logger := NewLogger(&buf)
	logger.Log(Event{Tool: "list_vpcs", Toolset: "aws", Outcome: "success"})
	if buf.Len() != 0 {
		t.Fatalf("expected no output on marshal error")
	}
}
