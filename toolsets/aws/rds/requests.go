package awsrds

import (
	"awsinfra/internal/mcp"
)

type createInstanceRequest struct {
	DBInstanceIdentifier  string            `json:"db_instance_identifier" valid:"required~db_instance_identifier is required"`
	DBInstanceClass       string            `json:"db_instance_class"`
	Engine                string            `json:"engine" valid:"required~engine is required"`
	MasterUsername        string            `json:"master_username" valid:"required~master_username is required"`
	MasterUserPassword    string            `json:"master_user_password" valid:"required~master_user_password is required"`
	AllocatedStorage      int32             `json:"allocated_storage"`
	VpcSecurityGroupIDs   []string          `json:"vpc_security_group_ids"`
	DBSubnetGroupName     string            `json:"db_subnet_group_name"`
	BackupRetentionPeriod int32             `json:"backup_retention_period"`
	MultiAZ               bool              `json:"multi_az"`
	PubliclyAccessible    bool              `json:"publicly_accessible"`
	Tags                  map[string]string `json:"tags" valid:"-"`
}

func newCreateInstanceRequest() createInstanceRequest {
	return createInstanceRequest{
		DBInstanceClass:       "db.t3.micro",
		AllocatedStorage:      20,
		BackupRetentionPeriod: 7,
	}
}

func (r *createInstanceRequest) Validate() error {
	return mcp.ValidateStruct(r)
}

type deleteInstanceRequest struct {
	DBInstanceIdentifier string `json:"db_instance_identifier" valid:"required~db_instance_identifier is required"`
	SkipFinalSnapshot    bool   `json:"skip_final_snapshot"`
}

func newDeleteInstanceRequest() deleteInstanceRequest {
	return deleteInstanceRequest{SkipFinalSnapshot: true}
}

func (r *deleteInstanceRequest) Validate() error {
	return mcp.ValidateStruct(r)
}
