package awsiam

import (
	"encoding/json"
	"fmt"
	"strings"

	"awsinfra/internal/mcp"
)

type roleNameRequest struct {
	RoleName string `json:"role_name" valid:"required~role_name is required"`
}

func (r *roleNameRequest) Validate() error {
	return mcp.ValidateStruct(r)
}

type getRoleRequest struct {
	RoleName        string `json:"role_name" valid:"required~role_name is required"`
	IncludePolicies bool   `json:"include_policies"`
}

func newGetRoleRequest() getRoleRequest {
	return getRoleRequest{IncludePolicies: true}
}

func (r *getRoleRequest) Validate() error {
	return mcp.ValidateStruct(r)
}

type createRoleRequest struct {
	RoleName                 string            `json:"role_name" valid:"required~role_name is required"`
	AssumeRolePolicyDocument any               `json:"assume_role_policy_document" valid:"-"`
	Description              string            `json:"description"`
	Tags                     map[string]string `json:"tags" valid:"-"`

	policyJSON string
}

// Validate accepts the trust policy as a JSON object or as a JSON string and
// keeps the serialized form for CreateRole.
func (r *createRoleRequest) Validate() error {
	if err := mcp.ValidateStruct(r); err != nil {
		return err
	}
	switch doc := r.AssumeRolePolicyDocument.(type) {
	case nil:
		return fmt.Errorf("assume_role_policy_document is required")
	case string:
		trimmed := strings.TrimSpace(doc)
		if !json.Valid([]byte(trimmed)) {
			return fmt.Errorf("assume_role_policy_document is not valid JSON")
		}
		r.policyJSON = trimmed
	default:
		encoded, err := json.Marshal(doc)
		if err != nil {
			return fmt.Errorf("assume_role_policy_document: %w", err)
		}
		r.policyJSON = string(encoded)
	}
	return nil
}

type attachPolicyRequest struct {
	RoleName  string `json:"role_name" valid:"required~role_name is required"`
	PolicyArn string `json:"policy_arn" valid:"required~policy_arn is required"`
}

func (r *attachPolicyRequest) Validate() error {
	return mcp.ValidateStruct(r)
}

type deleteRoleRequest struct {
	RoleName string `json:"role_name" valid:"required~role_name is required"`
	Force    bool   `json:"force"`
}

func (r *deleteRoleRequest) Validate() error {
	return mcp.ValidateStruct(r)
}
