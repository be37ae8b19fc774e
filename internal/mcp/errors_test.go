package mcp

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/aws/smithy-go"

	awslib "awsinfra/internal/aws"
)

func TestEnvelopeSuccess(t *testing.T) {
	envelope := Envelope(ToolResult{Data: map[string]any{"vpc_id": "vpc-1"}}, nil)
	if envelope["success"] != true || envelope["vpc_id"] != "vpc-1" {
		t.Fatalf("unexpected envelope %#v", envelope)
	}
	if _, ok := envelope["error"]; ok {
		t.Fatalf("success envelope must not carry error")
	}
	if IsErrorEnvelope(envelope) {
		t.Fatalf("expected success envelope")
	}
	empty := Envelope(ToolResult{}, nil)
	if len(empty) != 1 || empty["success"] != true {
		t.Fatalf("unexpected empty envelope %#v", empty)
	}
}

func TestEnvelopeClassifiedFault(t *testing.T) {
	apiErr := &smithy.GenericAPIError{Code: "InvalidVpcID.NotFound", Message: "The vpc ID 'vpc-x' does not exist"}
	err := &smithy.OperationError{ServiceID: "EC2", OperationName: "DeleteVpc", Err: apiErr}
	envelope := Envelope(ToolResult{Data: map[string]any{"ignored": true}}, fmt.Errorf("delete vpc: %w", err))
	if envelope["error"] != true {
		t.Fatalf("expected error envelope")
	}
	if envelope["error_code"] != "InvalidVpcID.NotFound" {
		t.Fatalf("unexpected code %v", envelope["error_code"])
	}
	if envelope["error_message"] != "The vpc ID 'vpc-x' does not exist" {
		t.Fatalf("unexpected message %v", envelope["error_message"])
	}
	if envelope["details"] == "" || envelope["hint"] == "" {
		t.Fatalf("expected details and hint: %#v", envelope)
	}
	if _, ok := envelope["success"]; ok {
		t.Fatalf("error envelope must not carry success")
	}
	if _, ok := envelope["ignored"]; ok {
		t.Fatalf("error envelope must not carry payload")
	}
}

func TestEnvelopeUnclassifiedFault(t *testing.T) {
	envelope := Envelope(ToolResult{}, errors.New("connection reset by peer"))
	if envelope["error"] != true || envelope["error_message"] != "connection reset by peer" {
		t.Fatalf("unexpected envelope %#v", envelope)
	}
	if _, ok := envelope["error_code"]; ok {
		t.Fatalf("unclassified fault must not carry error_code")
	}
}

func TestEnvelopeCredentialsError(t *testing.T) {
	envelope := BuildErrorEnvelope(&awslib.CredentialsError{})
	if envelope["error_message"] != awslib.CredentialsGuidance {
		t.Fatalf("unexpected message %v", envelope["error_message"])
	}
	if _, ok := envelope["error_code"]; ok {
		t.Fatalf("credential fault must not carry error_code")
	}
}

func TestEnvelopeCredentialsErrorCarriesCause(t *testing.T) {
	envelope := BuildErrorEnvelope(&awslib.CredentialsError{Err: errors.New("no EC2 IMDS role found")})
	if envelope["error_message"] != awslib.CredentialsGuidance {
		t.Fatalf("unexpected message %v", envelope["error_message"])
	}
	if envelope["details"] != "no EC2 IMDS role found" {
		t.Fatalf("expected cause in details, got %v", envelope["details"])
	}
}

func TestEnvelopeSessionErrorStaysUnclassified(t *testing.T) {
	cause := &smithy.GenericAPIError{Code: "InvalidClientTokenId", Message: "bad token"}
	envelope := BuildErrorEnvelope(&awslib.SessionError{Err: cause})
	if _, ok := envelope["error_code"]; ok {
		t.Fatalf("session fault must not carry error_code")
	}
	if envelope["error_message"] != "Failed to initialize AWS session: api error InvalidClientTokenId: bad token" {
		t.Fatalf("unexpected message %v", envelope["error_message"])
	}
}

func TestEnvelopeEmptyProviderMessage(t *testing.T) {
	err := &smithy.GenericAPIError{Code: "NotFound"}
	envelope := BuildErrorEnvelope(err)
	if envelope["error_message"] != err.Error() {
		t.Fatalf("expected fallback to error string, got %v", envelope["error_message"])
	}
}

func TestEnvelopeContextErrors(t *testing.T) {
	envelope := BuildErrorEnvelope(fmt.Errorf("describe: %w", context.DeadlineExceeded))
	if envelope["hint"] == nil {
		t.Fatalf("expected timeout hint")
	}
	envelope = BuildErrorEnvelope(context.Canceled)
	if envelope["error_message"] != context.Canceled.Error() {
		t.Fatalf("unexpected message %v", envelope["error_message"])
	}
}

func TestHintForCode(t *testing.T) {
	if hintForCode("AccessDenied") == "" || hintForCode("DependencyViolation") == "" {
		t.Fatalf("expected hints for known codes")
	}
	if hintForCode("SomethingNew") != "" {
		t.Fatalf("expected no hint for unknown code")
	}
}
