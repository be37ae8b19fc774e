package awssts

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sts"

	"awsinfra/internal/mcp"
	"awsinfra/toolsets/aws/shape"
)

type STSAPI interface {
	GetCallerIdentity(ctx context.Context, params *sts.GetCallerIdentityInput, optFns ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error)
}

var _ STSAPI = (*sts.Client)(nil)

type STSFunc func(context.Context, string) (STSAPI, string, error)

type Service struct {
	stsClient STSFunc
	toolsetID string
}

func ToolSpecs(toolsetID string, stsClient STSFunc) []mcp.ToolSpec {
	svc := &Service{stsClient: stsClient, toolsetID: toolsetID}
	return []mcp.ToolSpec{
		{
			Name:        "get_caller_identity",
			Description: "Get the AWS account, ARN and user id of the active credentials.",
			ToolsetID:   toolsetID,
			InputSchema: shape.Object(nil),
			Safety:      mcp.SafetyReadOnly,
			Handler:     svc.handleGetCallerIdentity,
		},
	}
}

func (s *Service) handleGetCallerIdentity(ctx context.Context, req mcp.ToolRequest) (mcp.ToolResult, error) {
	client, usedRegion, err := s.stsClient(ctx, req.Region())
	if err != nil {
		return mcp.ToolResult{}, err
	}
	out, err := client.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return mcp.ToolResult{}, err
	}
	arn := aws.ToString(out.Arn)
	return mcp.ToolResult{
		Data: map[string]any{
			"region": usedRegion,
			"identity": map[string]any{
				"Account": aws.ToString(out.Account),
				"Arn":     arn,
				"UserId":  aws.ToString(out.UserId),
			},
		},
		Metadata: mcp.ToolMetadata{Region: usedRegion, Resources: []string{arn}},
	}, nil
}
