package awskms

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/kms"

	"awsinfra/internal/mcp"
	"awsinfra/toolsets/aws/shape"
)

type KMSAPI interface {
	ListKeys(ctx context.Context, params *kms.ListKeysInput, optFns ...func(*kms.Options)) (*kms.ListKeysOutput, error)
	ListAliases(ctx context.Context, params *kms.ListAliasesInput, optFns ...func(*kms.Options)) (*kms.ListAliasesOutput, error)
}

var _ KMSAPI = (*kms.Client)(nil)

type KMSFunc func(context.Context, string) (KMSAPI, string, error)

type Service struct {
	kmsClient KMSFunc
	toolsetID string
}

func ToolSpecs(toolsetID string, kmsClient KMSFunc) []mcp.ToolSpec {
	svc := &Service{kmsClient: kmsClient, toolsetID: toolsetID}
	return []mcp.ToolSpec{
		{
			Name:        "list_kms_keys",
			Description: "List KMS keys with their aliases.",
			ToolsetID:   toolsetID,
			InputSchema: shape.Object(nil),
			Safety:      mcp.SafetyReadOnly,
			Handler:     svc.handleListKeys,
		},
	}
}

func (s *Service) handleListKeys(ctx context.Context, req mcp.ToolRequest) (mcp.ToolResult, error) {
	client, usedRegion, err := s.kmsClient(ctx, req.Region())
	if err != nil {
		return mcp.ToolResult{}, err
	}
	aliases := map[string][]string{}
	aliasPages := kms.NewListAliasesPaginator(client, &kms.ListAliasesInput{})
	for aliasPages.HasMorePages() {
		page, err := aliasPages.NextPage(ctx)
		if err != nil {
			return mcp.ToolResult{}, err
		}
		for _, alias := range page.Aliases {
			if keyID := aws.ToString(alias.TargetKeyId); keyID != "" {
				aliases[keyID] = append(aliases[keyID], aws.ToString(alias.AliasName))
			}
		}
	}
	keys := []map[string]any{}
	keyPages := kms.NewListKeysPaginator(client, &kms.ListKeysInput{})
	for keyPages.HasMorePages() {
		page, err := keyPages.NextPage(ctx)
		if err != nil {
			return mcp.ToolResult{}, err
		}
		for _, key := range page.Keys {
			keyID := aws.ToString(key.KeyId)
			keys = append(keys, map[string]any{
				"KeyId":   keyID,
				"KeyArn":  aws.ToString(key.KeyArn),
				"Aliases": aliases[keyID],
			})
		}
	}
	return mcp.ToolResult{
		Data: map[string]any{
			"region": usedRegion,
			"keys":   keys,
			"count":  len(keys),
		},
		Metadata: mcp.ToolMetadata{Region: usedRegion},
	}, nil
}
