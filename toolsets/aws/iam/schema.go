package awsiam

import "awsinfra/toolsets/aws/shape"

func schemaGetRole() map[string]any {
	return shape.Object(map[string]any{
		"role_name":        shape.String("IAM role name."),
		"include_policies": shape.Boolean("Also list attached and inline policies (default true)."),
	}, "role_name")
}

func schemaCreateRole() map[string]any {
	return shape.Object(map[string]any{
		"role_name": shape.String("IAM role name."),
		"assume_role_policy_document": map[string]any{
			"type":        []string{"object", "string"},
			"description": "Trust policy document as a JSON object or JSON string.",
		},
		"description": shape.String("Role description."),
		"tags":        shape.StringMap("Tags to apply to the role."),
	}, "role_name", "assume_role_policy_document")
}

func schemaAttachPolicy() map[string]any {
	return shape.Object(map[string]any{
		"role_name":  shape.String("IAM role name."),
		"policy_arn": shape.String("Managed policy ARN."),
	}, "role_name", "policy_arn")
}

func schemaDeleteRole() map[string]any {
	return shape.Object(map[string]any{
		"role_name": shape.String("IAM role name."),
		"force":     shape.Boolean("Detach policies and instance profiles before deleting."),
	}, "role_name")
}
