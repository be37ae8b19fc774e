package awsec2

import (
	"errors"

	"awsinfra/internal/mcp"
)

type launchInstanceRequest struct {
	ImageID          string            `json:"image_id" valid:"required~image_id is required"`
	InstanceType     string            `json:"instance_type"`
	KeyName          string            `json:"key_name"`
	SecurityGroupIDs []string          `json:"security_group_ids"`
	SubnetID         string            `json:"subnet_id"`
	UserData         string            `json:"user_data"`
	Tags             map[string]string `json:"tags" valid:"-"`
	MinCount         int32             `json:"min_count"`
	MaxCount         int32             `json:"max_count"`
}

func newLaunchInstanceRequest() launchInstanceRequest {
	return launchInstanceRequest{InstanceType: "t3.micro", MinCount: 1, MaxCount: 1}
}

func (r *launchInstanceRequest) Validate() error {
	if err := mcp.ValidateStruct(r); err != nil {
		return err
	}
	if r.MinCount < 1 || r.MaxCount < r.MinCount {
		return errors.New("min_count must be at least 1 and no greater than max_count")
	}
	return nil
}

type listInstancesRequest struct {
	Filters map[string][]string `json:"filters" valid:"-"`
}

type instanceIDRequest struct {
	InstanceID string `json:"instance_id" valid:"required~instance_id is required"`
}

func (r *instanceIDRequest) Validate() error {
	return mcp.ValidateStruct(r)
}
