package awslambda

import "awsinfra/toolsets/aws/shape"

func schemaCreateFunction() map[string]any {
	return shape.Object(map[string]any{
		"function_name": shape.String("Function name."),
		"runtime":       shape.String("Runtime such as python3.12 or nodejs20.x. Required unless code.image_uri is set; ignored for images."),
		"role":          shape.String("Execution role ARN."),
		"handler":       shape.String("Handler entry point, e.g. index.handler. Required unless code.image_uri is set; ignored for images."),
		"code": map[string]any{
			"type":        "object",
			"description": "Deployment package: zip_file (base64), s3_bucket with s3_key, or image_uri.",
			"properties": map[string]any{
				"zip_file":          shape.String("Base64-encoded zip archive."),
				"s3_bucket":         shape.String("Bucket holding the archive."),
				"s3_key":            shape.String("Key of the archive."),
				"s3_object_version": shape.String("Object version of the archive."),
				"image_uri":         shape.String("Container image URI."),
			},
		},
		"description": shape.String("Function description."),
		"timeout":     shape.Integer("Timeout in seconds (default 30)."),
		"memory_size": shape.Integer("Memory in MB (default 128)."),
		"environment": shape.StringMap("Environment variables."),
		"tags":        shape.StringMap("Tags to apply to the function."),
	}, "function_name", "role", "code")
}

func schemaInvoke() map[string]any {
	return shape.Object(map[string]any{
		"function_name": shape.String("Function name or ARN."),
		"payload": map[string]any{
			"description": "Event payload; sent as JSON.",
		},
	}, "function_name")
}

func schemaFunctionName() map[string]any {
	return shape.Object(map[string]any{
		"function_name": shape.String("Function name or ARN."),
	}, "function_name")
}
