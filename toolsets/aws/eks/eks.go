package awseks

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eks"

	"awsinfra/internal/mcp"
	"awsinfra/toolsets/aws/shape"
)

type EKSAPI interface {
	ListClusters(ctx context.Context, params *eks.ListClustersInput, optFns ...func(*eks.Options)) (*eks.ListClustersOutput, error)
	DescribeCluster(ctx context.Context, params *eks.DescribeClusterInput, optFns ...func(*eks.Options)) (*eks.DescribeClusterOutput, error)
}

var _ EKSAPI = (*eks.Client)(nil)

type EKSFunc func(context.Context, string) (EKSAPI, string, error)

type Service struct {
	eksClient EKSFunc
	toolsetID string
}

type listClustersRequest struct {
	Describe bool `json:"describe"`
}

func ToolSpecs(toolsetID string, eksClient EKSFunc) []mcp.ToolSpec {
	svc := &Service{eksClient: eksClient, toolsetID: toolsetID}
	return []mcp.ToolSpec{
		{
			Name:        "list_eks_clusters",
			Description: "List EKS clusters, optionally with version and status.",
			ToolsetID:   toolsetID,
			InputSchema: shape.Object(map[string]any{
				"describe": shape.Boolean("Describe each cluster for version, status and endpoint."),
			}),
			Safety:  mcp.SafetyReadOnly,
			Handler: svc.handleListClusters,
		},
	}
}

func (s *Service) handleListClusters(ctx context.Context, req mcp.ToolRequest) (mcp.ToolResult, error) {
	var in listClustersRequest
	if err := mcp.DecodeRequest(req.Arguments, &in); err != nil {
		return mcp.ToolResult{}, err
	}
	client, usedRegion, err := s.eksClient(ctx, req.Region())
	if err != nil {
		return mcp.ToolResult{}, err
	}
	names := []string{}
	paginator := eks.NewListClustersPaginator(client, &eks.ListClustersInput{})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return mcp.ToolResult{}, err
		}
		names = append(names, page.Clusters...)
	}
	data := map[string]any{
		"region":   usedRegion,
		"clusters": names,
		"count":    len(names),
	}
	if in.Describe {
		details := make([]map[string]any, 0, len(names))
		for _, name := range names {
			out, err := client.DescribeCluster(ctx, &eks.DescribeClusterInput{Name: aws.String(name)})
			if err != nil {
				return mcp.ToolResult{}, err
			}
			if out.Cluster == nil {
				continue
			}
			details = append(details, map[string]any{
				"Name":      aws.ToString(out.Cluster.Name),
				"Arn":       aws.ToString(out.Cluster.Arn),
				"Version":   aws.ToString(out.Cluster.Version),
				"Status":    string(out.Cluster.Status),
				"Endpoint":  aws.ToString(out.Cluster.Endpoint),
				"CreatedAt": shape.Time(out.Cluster.CreatedAt),
			})
		}
		data["cluster_details"] = details
	}
	return mcp.ToolResult{Data: data, Metadata: mcp.ToolMetadata{Region: usedRegion}}, nil
}
