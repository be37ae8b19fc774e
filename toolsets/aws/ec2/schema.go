package awsec2

import "awsinfra/toolsets/aws/shape"

func schemaLaunchInstance() map[string]any {
	return shape.Object(map[string]any{
		"image_id":           shape.String("AMI id."),
		"instance_type":      shape.String("Instance type (default t3.micro)."),
		"key_name":           shape.String("Key pair name."),
		"security_group_ids": shape.StringList("Security group ids."),
		"subnet_id":          shape.String("Subnet id."),
		"user_data":          shape.String("User data script, plain text."),
		"tags":               shape.StringMap("Tags applied to every launched instance."),
		"min_count":          shape.Integer("Minimum number of instances (default 1)."),
		"max_count":          shape.Integer("Maximum number of instances (default 1)."),
	}, "image_id")
}

func schemaListInstances() map[string]any {
	return shape.Object(map[string]any{
		"filters": map[string]any{
			"type":                 "object",
			"description":          `EC2 filters keyed by name, e.g. {"instance-state-name": ["running"]}.`,
			"additionalProperties": shape.StringList("Filter values."),
		},
	})
}

func schemaInstanceID() map[string]any {
	return shape.Object(map[string]any{
		"instance_id": shape.String("EC2 instance id."),
	}, "instance_id")
}
