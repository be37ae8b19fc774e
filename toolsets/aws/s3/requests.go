package awss3

import (
	"fmt"

	"github.com/asaskevich/govalidator"

	"awsinfra/internal/mcp"
)

const bucketNamePattern = `^[a-z0-9][a-z0-9.-]{1,61}[a-z0-9]$`

type createBucketRequest struct {
	BucketName       string            `json:"bucket_name" valid:"required~bucket_name is required"`
	Versioning       bool              `json:"versioning"`
	PublicReadAccess bool              `json:"public_read_access"`
	Tags             map[string]string `json:"tags" valid:"-"`
}

func (r *createBucketRequest) Validate() error {
	if err := mcp.ValidateStruct(r); err != nil {
		return err
	}
	return checkBucketName(r.BucketName)
}

type deleteBucketRequest struct {
	BucketName string `json:"bucket_name" valid:"required~bucket_name is required"`
	Force      bool   `json:"force"`
}

func (r *deleteBucketRequest) Validate() error {
	return mcp.ValidateStruct(r)
}

func checkBucketName(name string) error {
	if !govalidator.Matches(name, bucketNamePattern) {
		return fmt.Errorf("bucket_name %q must be 3-63 lowercase letters, digits, dots or hyphens", name)
	}
	return nil
}
