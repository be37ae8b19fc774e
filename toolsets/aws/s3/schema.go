package awss3

import "awsinfra/toolsets/aws/shape"

func schemaCreateBucket() map[string]any {
	return shape.Object(map[string]any{
		"bucket_name":        shape.String("Globally unique bucket name."),
		"versioning":         shape.Boolean("Enable object versioning."),
		"public_read_access": shape.Boolean("Attach a policy allowing public s3:GetObject."),
		"tags":               shape.StringMap("Tags to apply to the bucket."),
	}, "bucket_name")
}

func schemaDeleteBucket() map[string]any {
	return shape.Object(map[string]any{
		"bucket_name": shape.String("Bucket to delete."),
		"force":       shape.Boolean("Delete every object and object version first."),
	}, "bucket_name")
}
