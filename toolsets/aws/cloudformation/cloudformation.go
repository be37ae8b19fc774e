package awscfn

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation"
	cfntypes "github.com/aws/aws-sdk-go-v2/service/cloudformation/types"

	"awsinfra/internal/mcp"
	"awsinfra/toolsets/aws/shape"
)

type Service struct {
	cfnClient CloudFormationFunc
	toolsetID string
}

func ToolSpecs(toolsetID string, cfnClient CloudFormationFunc) []mcp.ToolSpec {
	svc := &Service{cfnClient: cfnClient, toolsetID: toolsetID}
	return []mcp.ToolSpec{
		{
			Name:        "create_cloudformation_stack",
			Description: "Create a CloudFormation stack from a template body or URL.",
			ToolsetID:   toolsetID,
			InputSchema: schemaCreateStack(),
			Safety:      mcp.SafetyWrite,
			Handler:     svc.handleCreate,
		},
		{
			Name:        "list_cloudformation_stacks",
			Description: "List CloudFormation stack summaries.",
			ToolsetID:   toolsetID,
			InputSchema: schemaListStacks(),
			Safety:      mcp.SafetyReadOnly,
			Handler:     svc.handleList,
		},
		{
			Name:        "get_cloudformation_stack",
			Description: "Describe a CloudFormation stack with parameters and outputs.",
			ToolsetID:   toolsetID,
			InputSchema: schemaStackName(),
			Safety:      mcp.SafetyReadOnly,
			Handler:     svc.handleGet,
		},
		{
			Name:        "delete_cloudformation_stack",
			Description: "Delete a CloudFormation stack and the resources it owns.",
			ToolsetID:   toolsetID,
			InputSchema: schemaStackName(),
			Safety:      mcp.SafetyDestructive,
			Handler:     svc.handleDelete,
		},
	}
}

func (s *Service) handleCreate(ctx context.Context, req mcp.ToolRequest) (mcp.ToolResult, error) {
	var in createStackRequest
	if err := mcp.DecodeRequest(req.Arguments, &in); err != nil {
		return mcp.ToolResult{}, err
	}
	client, usedRegion, err := s.cfnClient(ctx, req.Region())
	if err != nil {
		return mcp.ToolResult{}, err
	}
	input := &cloudformation.CreateStackInput{StackName: aws.String(in.StackName)}
	if in.TemplateBody != "" {
		input.TemplateBody = aws.String(in.TemplateBody)
	} else {
		input.TemplateURL = aws.String(in.TemplateURL)
	}
	for _, key := range shape.SortedKeys(in.Parameters) {
		input.Parameters = append(input.Parameters, cfntypes.Parameter{
			ParameterKey:   aws.String(key),
			ParameterValue: aws.String(in.Parameters[key]),
		})
	}
	for _, capability := range in.Capabilities {
		input.Capabilities = append(input.Capabilities, cfntypes.Capability(capability))
	}
	for _, key := range shape.SortedKeys(in.Tags) {
		input.Tags = append(input.Tags, cfntypes.Tag{Key: aws.String(key), Value: aws.String(in.Tags[key])})
	}
	out, err := client.CreateStack(ctx, input)
	if err != nil {
		return mcp.ToolResult{}, err
	}
	stackID := aws.ToString(out.StackId)
	return mcp.ToolResult{
		Data: map[string]any{
			"region":     usedRegion,
			"stack_name": in.StackName,
			"stack_id":   stackID,
		},
		Metadata: mcp.ToolMetadata{Region: usedRegion, Resources: []string{stackID}},
	}, nil
}

func (s *Service) handleList(ctx context.Context, req mcp.ToolRequest) (mcp.ToolResult, error) {
	var in listStacksRequest
	if err := mcp.DecodeRequest(req.Arguments, &in); err != nil {
		return mcp.ToolResult{}, err
	}
	client, usedRegion, err := s.cfnClient(ctx, req.Region())
	if err != nil {
		return mcp.ToolResult{}, err
	}
	input := &cloudformation.ListStacksInput{}
	for _, status := range in.StackStatusFilter {
		input.StackStatusFilter = append(input.StackStatusFilter, cfntypes.StackStatus(status))
	}
	stacks := []map[string]any{}
	paginator := cloudformation.NewListStacksPaginator(client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return mcp.ToolResult{}, err
		}
		for _, summary := range page.StackSummaries {
			stacks = append(stacks, map[string]any{
				"StackName":           aws.ToString(summary.StackName),
				"StackId":             aws.ToString(summary.StackId),
				"StackStatus":         string(summary.StackStatus),
				"StackStatusReason":   aws.ToString(summary.StackStatusReason),
				"TemplateDescription": aws.ToString(summary.TemplateDescription),
				"CreationTime":        shape.Time(summary.CreationTime),
				"LastUpdatedTime":     shape.Time(summary.LastUpdatedTime),
				"DeletionTime":        shape.Time(summary.DeletionTime),
			})
		}
	}
	return mcp.ToolResult{
		Data: map[string]any{
			"region": usedRegion,
			"stacks": stacks,
			"count":  len(stacks),
		},
		Metadata: mcp.ToolMetadata{Region: usedRegion},
	}, nil
}

func (s *Service) handleGet(ctx context.Context, req mcp.ToolRequest) (mcp.ToolResult, error) {
	var in stackNameRequest
	if err := mcp.DecodeRequest(req.Arguments, &in); err != nil {
		return mcp.ToolResult{}, err
	}
	client, usedRegion, err := s.cfnClient(ctx, req.Region())
	if err != nil {
		return mcp.ToolResult{}, err
	}
	out, err := client.DescribeStacks(ctx, &cloudformation.DescribeStacksInput{StackName: aws.String(in.StackName)})
	if err != nil {
		return mcp.ToolResult{}, err
	}
	stacks := make([]map[string]any, 0, len(out.Stacks))
	resources := make([]string, 0, len(out.Stacks))
	for _, stack := range out.Stacks {
		stacks = append(stacks, describeStack(stack))
		resources = append(resources, aws.ToString(stack.StackId))
	}
	return mcp.ToolResult{
		Data: map[string]any{
			"region": usedRegion,
			"stacks": stacks,
		},
		Metadata: mcp.ToolMetadata{Region: usedRegion, Resources: resources},
	}, nil
}

func describeStack(stack cfntypes.Stack) map[string]any {
	parameters := map[string]string{}
	for _, param := range stack.Parameters {
		parameters[aws.ToString(param.ParameterKey)] = aws.ToString(param.ParameterValue)
	}
	outputs := make([]map[string]any, 0, len(stack.Outputs))
	for _, output := range stack.Outputs {
		outputs = append(outputs, map[string]any{
			"OutputKey":   aws.ToString(output.OutputKey),
			"OutputValue": aws.ToString(output.OutputValue),
			"Description": aws.ToString(output.Description),
			"ExportName":  aws.ToString(output.ExportName),
		})
	}
	tags := map[string]string{}
	for _, tag := range stack.Tags {
		tags[aws.ToString(tag.Key)] = aws.ToString(tag.Value)
	}
	capabilities := make([]string, 0, len(stack.Capabilities))
	for _, capability := range stack.Capabilities {
		capabilities = append(capabilities, string(capability))
	}
	return map[string]any{
		"StackName":         aws.ToString(stack.StackName),
		"StackId":           aws.ToString(stack.StackId),
		"StackStatus":       string(stack.StackStatus),
		"StackStatusReason": aws.ToString(stack.StackStatusReason),
		"Description":       aws.ToString(stack.Description),
		"CreationTime":      shape.Time(stack.CreationTime),
		"LastUpdatedTime":   shape.Time(stack.LastUpdatedTime),
		"Parameters":        parameters,
		"Outputs":           outputs,
		"Capabilities":      capabilities,
		"Tags":              tags,
	}
}

func (s *Service) handleDelete(ctx context.Context, req mcp.ToolRequest) (mcp.ToolResult, error) {
	var in stackNameRequest
	if err := mcp.DecodeRequest(req.Arguments, &in); err != nil {
		return mcp.ToolResult{}, err
	}
	client, usedRegion, err := s.cfnClient(ctx, req.Region())
	if err != nil {
		return mcp.ToolResult{}, err
	}
	if _, err := client.DeleteStack(ctx, &cloudformation.DeleteStackInput{StackName: aws.String(in.StackName)}); err != nil {
		return mcp.ToolResult{}, err
	}
	return mcp.ToolResult{
		Data: map[string]any{
			"region":     usedRegion,
			"stack_name": in.StackName,
			"message":    fmt.Sprintf("Stack %s deletion initiated", in.StackName),
		},
		Metadata: mcp.ToolMetadata{Region: usedRegion, Resources: []string{in.StackName}},
	}, nil
}
