package awsrds

import "awsinfra/toolsets/aws/shape"

func schemaCreateInstance() map[string]any {
	return shape.Object(map[string]any{
		"db_instance_identifier":  shape.String("Database instance identifier."),
		"db_instance_class":       shape.String("Instance class (default db.t3.micro)."),
		"engine":                  shape.String("Engine, e.g. postgres or mysql."),
		"master_username":         shape.String("Master user name."),
		"master_user_password":    shape.String("Master user password."),
		"allocated_storage":       shape.Integer("Storage in GiB (default 20)."),
		"vpc_security_group_ids":  shape.StringList("VPC security group ids."),
		"db_subnet_group_name":    shape.String("DB subnet group name."),
		"backup_retention_period": shape.Integer("Backup retention in days (default 7)."),
		"multi_az":                shape.Boolean("Multi-AZ deployment."),
		"publicly_accessible":     shape.Boolean("Give the instance a public endpoint."),
		"tags":                    shape.StringMap("Tags to apply to the instance."),
	}, "db_instance_identifier", "engine", "master_username", "master_user_password")
}

func schemaDeleteInstance() map[string]any {
	return shape.Object(map[string]any{
		"db_instance_identifier": shape.String("Database instance identifier."),
		"skip_final_snapshot":    shape.Boolean("Skip the final snapshot (default true)."),
	}, "db_instance_identifier")
}
