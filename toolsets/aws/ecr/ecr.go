package awsecr

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ecr"

	"awsinfra/internal/mcp"
	"awsinfra/toolsets/aws/shape"
)

type ECRAPI interface {
	DescribeRepositories(ctx context.Context, params *ecr.DescribeRepositoriesInput, optFns ...func(*ecr.Options)) (*ecr.DescribeRepositoriesOutput, error)
}

var _ ECRAPI = (*ecr.Client)(nil)

type ECRFunc func(context.Context, string) (ECRAPI, string, error)

type Service struct {
	ecrClient ECRFunc
	toolsetID string
}

func ToolSpecs(toolsetID string, ecrClient ECRFunc) []mcp.ToolSpec {
	svc := &Service{ecrClient: ecrClient, toolsetID: toolsetID}
	return []mcp.ToolSpec{
		{
			Name:        "list_ecr_repositories",
			Description: "List ECR repositories.",
			ToolsetID:   toolsetID,
			InputSchema: shape.Object(nil),
			Safety:      mcp.SafetyReadOnly,
			Handler:     svc.handleListRepositories,
		},
	}
}

func (s *Service) handleListRepositories(ctx context.Context, req mcp.ToolRequest) (mcp.ToolResult, error) {
	client, usedRegion, err := s.ecrClient(ctx, req.Region())
	if err != nil {
		return mcp.ToolResult{}, err
	}
	repos := []map[string]any{}
	paginator := ecr.NewDescribeRepositoriesPaginator(client, &ecr.DescribeRepositoriesInput{})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return mcp.ToolResult{}, err
		}
		for _, repo := range page.Repositories {
			repos = append(repos, map[string]any{
				"RepositoryName":     aws.ToString(repo.RepositoryName),
				"RepositoryArn":      aws.ToString(repo.RepositoryArn),
				"RepositoryUri":      aws.ToString(repo.RepositoryUri),
				"RegistryId":         aws.ToString(repo.RegistryId),
				"ImageTagMutability": string(repo.ImageTagMutability),
				"CreatedAt":          shape.Time(repo.CreatedAt),
			})
		}
	}
	return mcp.ToolResult{
		Data: map[string]any{
			"region":       usedRegion,
			"repositories": repos,
			"count":        len(repos),
		},
		Metadata: mcp.ToolMetadata{Region: usedRegion},
	}, nil
}
