package awslambda

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	lambdatypes "github.com/aws/aws-sdk-go-v2/service/lambda/types"

	"awsinfra/internal/mcp"
	"awsinfra/toolsets/aws/shape"
)

type Service struct {
	lambdaClient LambdaFunc
	toolsetID    string
}

func ToolSpecs(toolsetID string, lambdaClient LambdaFunc) []mcp.ToolSpec {
	svc := &Service{lambdaClient: lambdaClient, toolsetID: toolsetID}
	return []mcp.ToolSpec{
		{
			Name:        "create_lambda_function",
			Description: "Create a Lambda function from a zip, S3 object or container image.",
			ToolsetID:   toolsetID,
			InputSchema: schemaCreateFunction(),
			Safety:      mcp.SafetyWrite,
			Handler:     svc.handleCreate,
		},
		{
			Name:        "list_lambda_functions",
			Description: "List Lambda functions in the region.",
			ToolsetID:   toolsetID,
			InputSchema: shape.Object(nil),
			Safety:      mcp.SafetyReadOnly,
			Handler:     svc.handleList,
		},
		{
			Name:        "invoke_lambda_function",
			Description: "Invoke a Lambda function synchronously and return its result.",
			ToolsetID:   toolsetID,
			InputSchema: schemaInvoke(),
			Safety:      mcp.SafetyWrite,
			Handler:     svc.handleInvoke,
		},
		{
			Name:        "delete_lambda_function",
			Description: "Delete a Lambda function.",
			ToolsetID:   toolsetID,
			InputSchema: schemaFunctionName(),
			Safety:      mcp.SafetyDestructive,
			Handler:     svc.handleDelete,
		},
	}
}

func (s *Service) handleCreate(ctx context.Context, req mcp.ToolRequest) (mcp.ToolResult, error) {
	in := newCreateFunctionRequest()
	if err := mcp.DecodeRequest(req.Arguments, &in); err != nil {
		return mcp.ToolResult{}, err
	}
	client, usedRegion, err := s.lambdaClient(ctx, req.Region())
	if err != nil {
		return mcp.ToolResult{}, err
	}
	input := &lambda.CreateFunctionInput{
		FunctionName: aws.String(in.FunctionName),
		Role:         aws.String(in.Role),
		Code:         functionCodeInput(in),
		Timeout:      aws.Int32(in.Timeout),
		MemorySize:   aws.Int32(in.MemorySize),
	}
	if in.Code.ImageURI != "" {
		input.PackageType = lambdatypes.PackageTypeImage
	} else {
		input.Runtime = lambdatypes.Runtime(in.Runtime)
		input.Handler = aws.String(in.Handler)
	}
	if in.Description != "" {
		input.Description = aws.String(in.Description)
	}
	if len(in.Environment) > 0 {
		input.Environment = &lambdatypes.Environment{Variables: in.Environment}
	}
	if len(in.Tags) > 0 {
		input.Tags = in.Tags
	}
	out, err := client.CreateFunction(ctx, input)
	if err != nil {
		return mcp.ToolResult{}, err
	}
	arn := aws.ToString(out.FunctionArn)
	return mcp.ToolResult{
		Data: map[string]any{
			"region": usedRegion,
			"function": map[string]any{
				"FunctionName": aws.ToString(out.FunctionName),
				"FunctionArn":  arn,
				"Runtime":      string(out.Runtime),
				"Role":         aws.ToString(out.Role),
				"Handler":      aws.ToString(out.Handler),
				"Timeout":      aws.ToInt32(out.Timeout),
				"MemorySize":   aws.ToInt32(out.MemorySize),
				"State":        string(out.State),
				"Version":      aws.ToString(out.Version),
			},
		},
		Metadata: mcp.ToolMetadata{Region: usedRegion, Resources: []string{arn}},
	}, nil
}

func functionCodeInput(in createFunctionRequest) *lambdatypes.FunctionCode {
	code := &lambdatypes.FunctionCode{}
	switch {
	case len(in.zip) > 0:
		code.ZipFile = in.zip
	case in.Code.ImageURI != "":
		code.ImageUri = aws.String(in.Code.ImageURI)
	default:
		code.S3Bucket = aws.String(in.Code.S3Bucket)
		code.S3Key = aws.String(in.Code.S3Key)
		if in.Code.S3ObjectVersion != "" {
			code.S3ObjectVersion = aws.String(in.Code.S3ObjectVersion)
		}
	}
	return code
}

func (s *Service) handleList(ctx context.Context, req mcp.ToolRequest) (mcp.ToolResult, error) {
	client, usedRegion, err := s.lambdaClient(ctx, req.Region())
	if err != nil {
		return mcp.ToolResult{}, err
	}
	functions := []map[string]any{}
	paginator := lambda.NewListFunctionsPaginator(client, &lambda.ListFunctionsInput{})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return mcp.ToolResult{}, err
		}
		for _, fn := range page.Functions {
			functions = append(functions, map[string]any{
				"FunctionName": aws.ToString(fn.FunctionName),
				"FunctionArn":  aws.ToString(fn.FunctionArn),
				"Runtime":      string(fn.Runtime),
				"Handler":      aws.ToString(fn.Handler),
				"Role":         aws.ToString(fn.Role),
				"Description":  aws.ToString(fn.Description),
				"Timeout":      aws.ToInt32(fn.Timeout),
				"MemorySize":   aws.ToInt32(fn.MemorySize),
				"LastModified": aws.ToString(fn.LastModified),
			})
		}
	}
	return mcp.ToolResult{
		Data: map[string]any{
			"region":    usedRegion,
			"functions": functions,
			"count":     len(functions),
		},
		Metadata: mcp.ToolMetadata{Region: usedRegion},
	}, nil
}

func (s *Service) handleInvoke(ctx context.Context, req mcp.ToolRequest) (mcp.ToolResult, error) {
	var in invokeRequest
	if err := mcp.DecodeRequest(req.Arguments, &in); err != nil {
		return mcp.ToolResult{}, err
	}
	client, usedRegion, err := s.lambdaClient(ctx, req.Region())
	if err != nil {
		return mcp.ToolResult{}, err
	}
	input := &lambda.InvokeInput{
		FunctionName:   aws.String(in.FunctionName),
		InvocationType: lambdatypes.InvocationTypeRequestResponse,
	}
	if in.Payload != nil {
		payload, err := json.Marshal(in.Payload)
		if err != nil {
			return mcp.ToolResult{}, fmt.Errorf("payload is not JSON-encodable: %w", err)
		}
		input.Payload = payload
	}
	out, err := client.Invoke(ctx, input)
	if err != nil {
		return mcp.ToolResult{}, err
	}
	data := map[string]any{
		"region":           usedRegion,
		"status_code":      out.StatusCode,
		"payload":          decodePayload(out.Payload),
		"execution_result": aws.ToString(out.ExecutedVersion),
		"log_result":       aws.ToString(out.LogResult),
	}
	if out.FunctionError != nil {
		data["function_error"] = aws.ToString(out.FunctionError)
	}
	return mcp.ToolResult{
		Data:     data,
		Metadata: mcp.ToolMetadata{Region: usedRegion, Resources: []string{in.FunctionName}},
	}, nil
}

// decodePayload returns the JSON value of a response, or the raw text when
// the function did not return JSON.
func decodePayload(raw []byte) any {
	if len(raw) == 0 {
		return nil
	}
	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return string(raw)
	}
	return decoded
}

func (s *Service) handleDelete(ctx context.Context, req mcp.ToolRequest) (mcp.ToolResult, error) {
	var in functionNameRequest
	if err := mcp.DecodeRequest(req.Arguments, &in); err != nil {
		return mcp.ToolResult{}, err
	}
	client, usedRegion, err := s.lambdaClient(ctx, req.Region())
	if err != nil {
		return mcp.ToolResult{}, err
	}
	if _, err := client.DeleteFunction(ctx, &lambda.DeleteFunctionInput{FunctionName: aws.String(in.FunctionName)}); err != nil {
		return mcp.ToolResult{}, err
	}
	return mcp.ToolResult{
		Data: map[string]any{
			"region":        usedRegion,
			"function_name": in.FunctionName,
			"message":       fmt.Sprintf("Lambda function %s deleted successfully", in.FunctionName),
		},
		Metadata: mcp.ToolMetadata{Region: usedRegion, Resources: []string{in.FunctionName}},
	}, nil
}
