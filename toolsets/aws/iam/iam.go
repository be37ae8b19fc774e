package awsiam

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	iamtypes "github.com/aws/aws-sdk-go-v2/service/iam/types"

	"awsinfra/internal/mcp"
	"awsinfra/toolsets/aws/shape"
)

type Service struct {
	iamClient IAMFunc
	toolsetID string
}

func ToolSpecs(toolsetID string, iamClient IAMFunc) []mcp.ToolSpec {
	svc := &Service{iamClient: iamClient, toolsetID: toolsetID}
	return []mcp.ToolSpec{
		{
			Name:        "list_iam_roles",
			Description: "List IAM roles.",
			ToolsetID:   toolsetID,
			InputSchema: shape.Object(nil),
			Safety:      mcp.SafetyReadOnly,
			Handler:     svc.handleListRoles,
		},
		{
			Name:        "get_iam_role",
			Description: "Get an IAM role with its trust policy and attached policies.",
			ToolsetID:   toolsetID,
			InputSchema: schemaGetRole(),
			Safety:      mcp.SafetyReadOnly,
			Handler:     svc.handleGetRole,
		},
		{
			Name:        "create_iam_role",
			Description: "Create an IAM role from a trust policy document.",
			ToolsetID:   toolsetID,
			InputSchema: schemaCreateRole(),
			Safety:      mcp.SafetyWrite,
			Handler:     svc.handleCreateRole,
		},
		{
			Name:        "attach_role_policy",
			Description: "Attach a managed policy to an IAM role.",
			ToolsetID:   toolsetID,
			InputSchema: schemaAttachPolicy(),
			Safety:      mcp.SafetyWrite,
			Handler:     svc.handleAttachRolePolicy,
		},
		{
			Name:        "delete_iam_role",
			Description: "Delete an IAM role (force detaches its policies first).",
			ToolsetID:   toolsetID,
			InputSchema: schemaDeleteRole(),
			Safety:      mcp.SafetyDestructive,
			Handler:     svc.handleDeleteRole,
		},
	}
}

func (s *Service) handleListRoles(ctx context.Context, req mcp.ToolRequest) (mcp.ToolResult, error) {
	client, usedRegion, err := s.iamClient(ctx, req.Region())
	if err != nil {
		return mcp.ToolResult{}, err
	}
	roles := []map[string]any{}
	paginator := iam.NewListRolesPaginator(client, &iam.ListRolesInput{})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return mcp.ToolResult{}, err
		}
		for _, role := range page.Roles {
			roles = append(roles, summarizeRole(role))
		}
	}
	return mcp.ToolResult{
		Data: map[string]any{
			"region": usedRegion,
			"roles":  roles,
			"count":  len(roles),
		},
		Metadata: mcp.ToolMetadata{Region: usedRegion},
	}, nil
}

func (s *Service) handleGetRole(ctx context.Context, req mcp.ToolRequest) (mcp.ToolResult, error) {
	in := newGetRoleRequest()
	if err := mcp.DecodeRequest(req.Arguments, &in); err != nil {
		return mcp.ToolResult{}, err
	}
	client, usedRegion, err := s.iamClient(ctx, req.Region())
	if err != nil {
		return mcp.ToolResult{}, err
	}
	out, err := client.GetRole(ctx, &iam.GetRoleInput{RoleName: aws.String(in.RoleName)})
	if err != nil {
		return mcp.ToolResult{}, err
	}
	if out.Role == nil {
		return mcp.ToolResult{}, fmt.Errorf("role %s not found", in.RoleName)
	}
	data := map[string]any{
		"region": usedRegion,
		"role":   summarizeRole(*out.Role),
	}
	if doc := decodePolicyDocument(aws.ToString(out.Role.AssumeRolePolicyDocument)); doc != "" {
		data["assume_role_policy"] = parseJSONOrString(doc)
	}
	if in.IncludePolicies {
		attached, err := listAttachedRolePolicies(ctx, client, in.RoleName)
		if err != nil {
			return mcp.ToolResult{}, err
		}
		inline, err := listInlineRolePolicies(ctx, client, in.RoleName)
		if err != nil {
			return mcp.ToolResult{}, err
		}
		data["attached_policies"] = attached
		data["inline_policies"] = inline
	}
	return mcp.ToolResult{
		Data:     data,
		Metadata: mcp.ToolMetadata{Region: usedRegion, Resources: []string{aws.ToString(out.Role.Arn)}},
	}, nil
}

func (s *Service) handleCreateRole(ctx context.Context, req mcp.ToolRequest) (mcp.ToolResult, error) {
	var in createRoleRequest
	if err := mcp.DecodeRequest(req.Arguments, &in); err != nil {
		return mcp.ToolResult{}, err
	}
	client, usedRegion, err := s.iamClient(ctx, req.Region())
	if err != nil {
		return mcp.ToolResult{}, err
	}
	input := &iam.CreateRoleInput{
		RoleName:                 aws.String(in.RoleName),
		AssumeRolePolicyDocument: aws.String(in.policyJSON),
	}
	if in.Description != "" {
		input.Description = aws.String(in.Description)
	}
	for _, key := range shape.SortedKeys(in.Tags) {
		input.Tags = append(input.Tags, iamtypes.Tag{Key: aws.String(key), Value: aws.String(in.Tags[key])})
	}
	out, err := client.CreateRole(ctx, input)
	if err != nil {
		return mcp.ToolResult{}, err
	}
	if out.Role == nil {
		return mcp.ToolResult{}, fmt.Errorf("create role returned no role")
	}
	return mcp.ToolResult{
		Data: map[string]any{
			"region": usedRegion,
			"role":   summarizeRole(*out.Role),
		},
		Metadata: mcp.ToolMetadata{Region: usedRegion, Resources: []string{aws.ToString(out.Role.Arn)}},
	}, nil
}

func (s *Service) handleAttachRolePolicy(ctx context.Context, req mcp.ToolRequest) (mcp.ToolResult, error) {
	var in attachPolicyRequest
	if err := mcp.DecodeRequest(req.Arguments, &in); err != nil {
		return mcp.ToolResult{}, err
	}
	client, usedRegion, err := s.iamClient(ctx, req.Region())
	if err != nil {
		return mcp.ToolResult{}, err
	}
	if _, err := client.AttachRolePolicy(ctx, &iam.AttachRolePolicyInput{
		RoleName:  aws.String(in.RoleName),
		PolicyArn: aws.String(in.PolicyArn),
	}); err != nil {
		return mcp.ToolResult{}, err
	}
	return mcp.ToolResult{
		Data: map[string]any{
			"region":  usedRegion,
			"message": fmt.Sprintf("Policy %s attached to role %s", in.PolicyArn, in.RoleName),
		},
		Metadata: mcp.ToolMetadata{Region: usedRegion, Resources: []string{in.RoleName, in.PolicyArn}},
	}, nil
}

func (s *Service) handleDeleteRole(ctx context.Context, req mcp.ToolRequest) (mcp.ToolResult, error) {
	var in deleteRoleRequest
	if err := mcp.DecodeRequest(req.Arguments, &in); err != nil {
		return mcp.ToolResult{}, err
	}
	client, usedRegion, err := s.iamClient(ctx, req.Region())
	if err != nil {
		return mcp.ToolResult{}, err
	}
	data := map[string]any{"region": usedRegion, "role_name": in.RoleName}
	if in.Force {
		attached, err := listAttachedRolePolicies(ctx, client, in.RoleName)
		if err != nil {
			return mcp.ToolResult{}, err
		}
		inline, err := listInlineRolePolicies(ctx, client, in.RoleName)
		if err != nil {
			return mcp.ToolResult{}, err
		}
		profiles, err := listInstanceProfiles(ctx, client, in.RoleName)
		if err != nil {
			return mcp.ToolResult{}, err
		}
		for _, policy := range attached {
			if _, err := client.DetachRolePolicy(ctx, &iam.DetachRolePolicyInput{
				RoleName:  aws.String(in.RoleName),
				PolicyArn: aws.String(policy["PolicyArn"]),
			}); err != nil {
				return mcp.ToolResult{}, err
			}
		}
		for _, name := range inline {
			if _, err := client.DeleteRolePolicy(ctx, &iam.DeleteRolePolicyInput{
				RoleName:   aws.String(in.RoleName),
				PolicyName: aws.String(name),
			}); err != nil {
				return mcp.ToolResult{}, err
			}
		}
		for _, profile := range profiles {
			if _, err := client.RemoveRoleFromInstanceProfile(ctx, &iam.RemoveRoleFromInstanceProfileInput{
				InstanceProfileName: aws.String(profile),
				RoleName:            aws.String(in.RoleName),
			}); err != nil {
				return mcp.ToolResult{}, err
			}
		}
		data["detached_policies"] = len(attached)
		data["deleted_inline_policies"] = len(inline)
		data["removed_instance_profiles"] = len(profiles)
	}
	if _, err := client.DeleteRole(ctx, &iam.DeleteRoleInput{RoleName: aws.String(in.RoleName)}); err != nil {
		return mcp.ToolResult{}, err
	}
	data["message"] = fmt.Sprintf("Role %s deleted successfully", in.RoleName)
	return mcp.ToolResult{
		Data:     data,
		Metadata: mcp.ToolMetadata{Region: usedRegion, Resources: []string{in.RoleName}},
	}, nil
}

func listAttachedRolePolicies(ctx context.Context, client IAMAPI, roleName string) ([]map[string]string, error) {
	paginator := iam.NewListAttachedRolePoliciesPaginator(client, &iam.ListAttachedRolePoliciesInput{
		RoleName: aws.String(roleName),
	})
	out := []map[string]string{}
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, policy := range page.AttachedPolicies {
			out = append(out, map[string]string{
				"PolicyName": aws.ToString(policy.PolicyName),
				"PolicyArn":  aws.ToString(policy.PolicyArn),
			})
		}
	}
	return out, nil
}

func listInlineRolePolicies(ctx context.Context, client IAMAPI, roleName string) ([]string, error) {
	paginator := iam.NewListRolePoliciesPaginator(client, &iam.ListRolePoliciesInput{RoleName: aws.String(roleName)})
	out := []string{}
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		out = append(out, page.PolicyNames...)
	}
	sort.Strings(out)
	return out, nil
}

func listInstanceProfiles(ctx context.Context, client IAMAPI, roleName string) ([]string, error) {
	paginator := iam.NewListInstanceProfilesForRolePaginator(client, &iam.ListInstanceProfilesForRoleInput{
		RoleName: aws.String(roleName),
	})
	var out []string
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, profile := range page.InstanceProfiles {
			out = append(out, aws.ToString(profile.InstanceProfileName))
		}
	}
	sort.Strings(out)
	return out, nil
}

func summarizeRole(role iamtypes.Role) map[string]any {
	tags := make(map[string]string, len(role.Tags))
	for _, tag := range role.Tags {
		tags[aws.ToString(tag.Key)] = aws.ToString(tag.Value)
	}
	return map[string]any{
		"RoleName":           aws.ToString(role.RoleName),
		"RoleId":             aws.ToString(role.RoleId),
		"Arn":                aws.ToString(role.Arn),
		"Path":               aws.ToString(role.Path),
		"Description":        aws.ToString(role.Description),
		"CreateDate":         shape.Time(role.CreateDate),
		"MaxSessionDuration": aws.ToInt32(role.MaxSessionDuration),
		"Tags":               tags,
	}
}

func parseJSONOrString(value string) any {
	var out any
	if err := json.Unmarshal([]byte(strings.TrimSpace(value)), &out); err == nil {
		return out
	}
	return value
}

// decodePolicyDocument undoes the URL encoding IAM applies to policy
// documents in GetRole responses.
func decodePolicyDocument(value string) string {
	if value == "" {
		return ""
	}
	decoded, err := url.QueryUnescape(value)
	if err != nil {
		return value
	}
	return decoded
}
