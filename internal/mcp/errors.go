package mcp

import (
	"context"
	"errors"

	"github.com/aws/smithy-go"

	awslib "awsinfra/internal/aws"
)

// ErrorDetail is the classification of a failed call. Code is empty for
// faults that did not come from an AWS service.
type ErrorDetail struct {
	Code    string
	Message string
	Details string
	Hint    string
}

// Envelope turns a handler outcome into the wire shape: the payload plus
// success=true, or an error envelope. No other shapes exist.
func Envelope(result ToolResult, err error) map[string]any {
	if err != nil {
		return BuildErrorEnvelope(err)
	}
	out := make(map[string]any, len(result.Data)+1)
	for key, value := range result.Data {
		out[key] = value
	}
	out["success"] = true
	return out
}

func BuildErrorEnvelope(err error) map[string]any {
	detail := classifyError(err)
	out := map[string]any{
		"error":         true,
		"error_message": detail.Message,
	}
	if detail.Code != "" {
		out["error_code"] = detail.Code
	}
	if detail.Details != "" {
		out["details"] = detail.Details
	}
	if detail.Hint != "" {
		out["hint"] = detail.Hint
	}
	return out
}

// IsErrorEnvelope reports whether an envelope describes a failure.
func IsErrorEnvelope(envelope map[string]any) bool {
	failed, _ := envelope["error"].(bool)
	return failed
}

func classifyError(err error) ErrorDetail {
	if err == nil {
		return ErrorDetail{}
	}
	msg := err.Error()

	var credErr *awslib.CredentialsError
	if errors.As(err, &credErr) {
		detail := ErrorDetail{Message: credErr.Error(), Hint: "Run `aws configure` or export AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY."}
		if credErr.Err != nil {
			detail.Details = credErr.Err.Error()
		}
		return detail
	}
	var sessionErr *awslib.SessionError
	if errors.As(err, &sessionErr) {
		return ErrorDetail{Message: sessionErr.Error(), Hint: "Check the AWS profile, credentials and network access to STS."}
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		code := apiErr.ErrorCode()
		message := apiErr.ErrorMessage()
		if message == "" {
			message = msg
		}
		return ErrorDetail{Code: code, Message: message, Details: msg, Hint: hintForCode(code)}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return ErrorDetail{Message: msg, Hint: "Increase the tool timeout or check network latency."}
	}
	if errors.Is(err, context.Canceled) {
		return ErrorDetail{Message: msg, Hint: "Request was canceled before completion."}
	}
	return ErrorDetail{Message: msg}
}

func hintForCode(code string) string {
	switch code {
	case "AccessDenied", "AccessDeniedException", "UnauthorizedOperation", "AuthFailure":
		return "Check AWS credentials and IAM policies."
	case "Throttling", "ThrottlingException", "RequestLimitExceeded", "TooManyRequestsException", "SlowDown":
		return "Retry with backoff."
	case "ResourceNotFoundException", "NotFoundException", "NoSuchEntity", "NoSuchBucket",
		"InvalidInstanceID.NotFound", "InvalidVpcID.NotFound", "InvalidSubnetID.NotFound",
		"InvalidGroup.NotFound", "DBInstanceNotFound":
		return "Verify resource identifiers and region."
	case "ValidationException", "InvalidParameterException", "InvalidParameterValue",
		"InvalidParameterCombination", "MalformedPolicyDocument", "ValidationError":
		return "Fix request parameters."
	case "DependencyViolation", "BucketNotEmpty", "DeleteConflict":
		return "Remove dependent resources first."
	case "AlreadyExistsException", "EntityAlreadyExists", "BucketAlreadyExists",
		"BucketAlreadyOwnedByYou", "DBInstanceAlreadyExists", "ResourceConflictException":
		return "A resource with that name already exists."
	default:
		return ""
	}
}
