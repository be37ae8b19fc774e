package awsvpc

import "awsinfra/toolsets/aws/shape"

func schemaCreateVPC() map[string]any {
	return shape.Object(map[string]any{
		"cidr_block":           shape.String("IPv4 CIDR block for the VPC, e.g. 10.0.0.0/16."),
		"enable_dns_hostnames": shape.Boolean("Enable DNS hostnames (default true)."),
		"enable_dns_support":   shape.Boolean("Enable DNS resolution (default true)."),
		"tags":                 shape.StringMap("Tags to apply to the VPC."),
	}, "cidr_block")
}

func schemaListVPCs() map[string]any {
	return shape.Object(nil)
}

func schemaVPCID() map[string]any {
	return shape.Object(map[string]any{
		"vpc_id": shape.String("VPC id."),
	}, "vpc_id")
}

func schemaListByVPC(description string) map[string]any {
	return shape.Object(map[string]any{
		"vpc_id": shape.String(description),
	})
}

func schemaCreateSubnet() map[string]any {
	return shape.Object(map[string]any{
		"vpc_id":                  shape.String("VPC to create the subnet in."),
		"cidr_block":              shape.String("IPv4 CIDR block inside the VPC range."),
		"availability_zone":       shape.String("Availability zone, e.g. us-east-1a."),
		"map_public_ip_on_launch": shape.Boolean("Assign public IPs to instances launched in the subnet."),
		"tags":                    shape.StringMap("Tags to apply to the subnet."),
	}, "vpc_id", "cidr_block")
}

func schemaSubnetID() map[string]any {
	return shape.Object(map[string]any{
		"subnet_id": shape.String("Subnet id."),
	}, "subnet_id")
}

func schemaCreateSecurityGroup() map[string]any {
	return shape.Object(map[string]any{
		"group_name":  shape.String("Security group name."),
		"description": shape.String("Security group description."),
		"vpc_id":      shape.String("VPC to create the group in."),
		"tags":        shape.StringMap("Tags to apply to the group."),
	}, "group_name", "description", "vpc_id")
}

func schemaSecurityGroupRule() map[string]any {
	return shape.Object(map[string]any{
		"group_id":                 shape.String("Security group id."),
		"ip_protocol":              shape.String("tcp, udp, icmp or -1 for all."),
		"from_port":                shape.Integer("Start of the port range."),
		"to_port":                  shape.Integer("End of the port range."),
		"cidr_blocks":              shape.StringList("IPv4 CIDR ranges the rule applies to."),
		"source_security_group_id": shape.String("Security group allowed as the traffic source."),
		"rule_type":                shape.Enum("Rule direction (default ingress).", ruleIngress, ruleEgress),
	}, "group_id", "ip_protocol")
}

func schemaGroupID() map[string]any {
	return shape.Object(map[string]any{
		"group_id": shape.String("Security group id."),
	}, "group_id")
}
