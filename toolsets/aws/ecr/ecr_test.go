package awsecr

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ecr"
	ecrtypes "github.com/aws/aws-sdk-go-v2/service/ecr/types"

	"awsinfra/internal/mcp"
)

type fakeECR struct {
	calls int
}

func (f *fakeECR) DescribeRepositories(_ context.Context, in *ecr.DescribeRepositoriesInput, _ ...func(*ecr.Options)) (*ecr.DescribeRepositoriesOutput, error) {
	f.calls++
	if in.NextToken == nil {
		return &ecr.DescribeRepositoriesOutput{
			Repositories: []ecrtypes.Repository{{RepositoryName: aws.String("api"), ImageTagMutability: ecrtypes.ImageTagMutabilityImmutable}},
			NextToken:    aws.String("t"),
		}, nil
	}
	return &ecr.DescribeRepositoriesOutput{Repositories: []ecrtypes.Repository{{RepositoryName: aws.String("web")}}}, nil
}

func TestListRepositories(t *testing.T) {
	client := &fakeECR{}
	spec := ToolSpecs("aws", func(context.Context, string) (ECRAPI, string, error) {
		return client, "eu-central-1", nil
	})[0]
	result, err := spec.Handler(context.Background(), mcp.ToolRequest{})
	if err != nil {
		t.Fatalf("list repositories: %v", err)
	}
	repos := result.Data["repositories"].([]map[string]any)
	if len(repos) != 2 || repos[0]["ImageTagMutability"] != "IMMUTABLE" || client.calls != 2 {
		t.Fatalf("unexpected repositories %#v", repos)
	}
	if result.Metadata.Region != "eu-central-1" {
		t.Fatalf("unexpected region %q", result.Metadata.Region)
	}
}
