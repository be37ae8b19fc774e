package awscfn

import "awsinfra/toolsets/aws/shape"

func schemaCreateStack() map[string]any {
	return shape.Object(map[string]any{
		"stack_name":    shape.String("Stack name."),
		"template_body": shape.String("Template document (JSON or YAML)."),
		"template_url":  shape.String("S3 URL of the template."),
		"parameters":    shape.StringMap("Template parameters keyed by name."),
		"capabilities":  shape.StringList("Capabilities such as CAPABILITY_IAM or CAPABILITY_NAMED_IAM."),
		"tags":          shape.StringMap("Tags to apply to the stack."),
	}, "stack_name")
}

func schemaListStacks() map[string]any {
	return shape.Object(map[string]any{
		"stack_status_filter": shape.StringList("Only return stacks in these statuses, e.g. CREATE_COMPLETE."),
	})
}

func schemaStackName() map[string]any {
	return shape.Object(map[string]any{
		"stack_name": shape.String("Stack name or ID."),
	}, "stack_name")
}
