package awsvpc

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/aws/aws-sdk-go-v2/service/route53"
	r53types "github.com/aws/aws-sdk-go-v2/service/route53/types"
	"github.com/aws/aws-sdk-go-v2/service/route53resolver"
	r53rtypes "github.com/aws/aws-sdk-go-v2/service/route53resolver/types"

	"awsinfra/internal/mcp"
	"awsinfra/toolsets/aws/shape"
)

type Service struct {
	ec2Client      EC2Func
	route53Client  Route53Func
	resolverClient ResolverFunc
	toolsetID      string
}

func ToolSpecs(toolsetID string, ec2Client EC2Func, route53Client Route53Func, resolverClient ResolverFunc) []mcp.ToolSpec {
	svc := &Service{ec2Client: ec2Client, route53Client: route53Client, resolverClient: resolverClient, toolsetID: toolsetID}
	return []mcp.ToolSpec{
		{
			Name:        "create_vpc",
			Description: "Create a VPC, enable DNS attributes and tag it.",
			ToolsetID:   toolsetID,
			InputSchema: schemaCreateVPC(),
			Safety:      mcp.SafetyWrite,
			Handler:     svc.handleCreateVPC,
		},
		{
			Name:        "list_vpcs",
			Description: "List VPCs in a region.",
			ToolsetID:   toolsetID,
			InputSchema: schemaListVPCs(),
			Safety:      mcp.SafetyReadOnly,
			Handler:     svc.handleListVPCs,
		},
		{
			Name:        "delete_vpc",
			Description: "Delete a VPC by id.",
			ToolsetID:   toolsetID,
			InputSchema: schemaVPCID(),
			Safety:      mcp.SafetyDestructive,
			Handler:     svc.handleDeleteVPC,
		},
		{
			Name:        "create_subnet",
			Description: "Create a subnet in a VPC.",
			ToolsetID:   toolsetID,
			InputSchema: schemaCreateSubnet(),
			Safety:      mcp.SafetyWrite,
			Handler:     svc.handleCreateSubnet,
		},
		{
			Name:        "list_subnets",
			Description: "List subnets, optionally for one VPC.",
			ToolsetID:   toolsetID,
			InputSchema: schemaListByVPC("Only subnets of this VPC."),
			Safety:      mcp.SafetyReadOnly,
			Handler:     svc.handleListSubnets,
		},
		{
			Name:        "delete_subnet",
			Description: "Delete a subnet by id.",
			ToolsetID:   toolsetID,
			InputSchema: schemaSubnetID(),
			Safety:      mcp.SafetyDestructive,
			Handler:     svc.handleDeleteSubnet,
		},
		{
			Name:        "create_security_group",
			Description: "Create a security group in a VPC.",
			ToolsetID:   toolsetID,
			InputSchema: schemaCreateSecurityGroup(),
			Safety:      mcp.SafetyWrite,
			Handler:     svc.handleCreateSecurityGroup,
		},
		{
			Name:        "add_security_group_rule",
			Description: "Add an ingress or egress rule to a security group.",
			ToolsetID:   toolsetID,
			InputSchema: schemaSecurityGroupRule(),
			Safety:      mcp.SafetyWrite,
			Handler:     svc.handleAddSecurityGroupRule,
		},
		{
			Name:        "list_security_groups",
			Description: "List security groups, optionally for one VPC.",
			ToolsetID:   toolsetID,
			InputSchema: schemaListByVPC("Only security groups of this VPC."),
			Safety:      mcp.SafetyReadOnly,
			Handler:     svc.handleListSecurityGroups,
		},
		{
			Name:        "delete_security_group",
			Description: "Delete a security group by id.",
			ToolsetID:   toolsetID,
			InputSchema: schemaGroupID(),
			Safety:      mcp.SafetyDestructive,
			Handler:     svc.handleDeleteSecurityGroup,
		},
		{
			Name:        "list_hosted_zones",
			Description: "List Route 53 hosted zones.",
			ToolsetID:   toolsetID,
			InputSchema: shape.Object(nil),
			Safety:      mcp.SafetyReadOnly,
			Handler:     svc.handleListHostedZones,
		},
		{
			Name:        "list_resolver_endpoints",
			Description: "List Route 53 Resolver endpoints.",
			ToolsetID:   toolsetID,
			InputSchema: shape.Object(nil),
			Safety:      mcp.SafetyReadOnly,
			Handler:     svc.handleListResolverEndpoints,
		},
	}
}

func (s *Service) handleCreateVPC(ctx context.Context, req mcp.ToolRequest) (mcp.ToolResult, error) {
	in := newCreateVPCRequest()
	if err := mcp.DecodeRequest(req.Arguments, &in); err != nil {
		return mcp.ToolResult{}, err
	}
	client, usedRegion, err := s.ec2Client(ctx, req.Region())
	if err != nil {
		return mcp.ToolResult{}, err
	}
	out, err := client.CreateVpc(ctx, &ec2.CreateVpcInput{CidrBlock: aws.String(in.CidrBlock)})
	if err != nil {
		return mcp.ToolResult{}, err
	}
	if out.Vpc == nil {
		return mcp.ToolResult{}, fmt.Errorf("create vpc returned no vpc")
	}
	vpcID := aws.ToString(out.Vpc.VpcId)

	if in.EnableDNSHostnames {
		if _, err := client.ModifyVpcAttribute(ctx, &ec2.ModifyVpcAttributeInput{
			VpcId:              aws.String(vpcID),
			EnableDnsHostnames: &ec2types.AttributeBooleanValue{Value: aws.Bool(true)},
		}); err != nil {
			return mcp.ToolResult{}, err
		}
	}
	if in.EnableDNSSupport {
		if _, err := client.ModifyVpcAttribute(ctx, &ec2.ModifyVpcAttributeInput{
			VpcId:            aws.String(vpcID),
			EnableDnsSupport: &ec2types.AttributeBooleanValue{Value: aws.Bool(true)},
		}); err != nil {
			return mcp.ToolResult{}, err
		}
	}
	if err := tagResource(ctx, client, vpcID, in.Tags); err != nil {
		return mcp.ToolResult{}, err
	}
	return mcp.ToolResult{
		Data: map[string]any{
			"region": usedRegion,
			"vpc":    summarizeVPC(*out.Vpc),
			"vpc_id": vpcID,
		},
		Metadata: mcp.ToolMetadata{Region: usedRegion, Resources: []string{vpcID}},
	}, nil
}

func (s *Service) handleListVPCs(ctx context.Context, req mcp.ToolRequest) (mcp.ToolResult, error) {
	client, usedRegion, err := s.ec2Client(ctx, req.Region())
	if err != nil {
		return mcp.ToolResult{}, err
	}
	input := &ec2.DescribeVpcsInput{}
	vpcs := []map[string]any{}
	for {
		out, err := client.DescribeVpcs(ctx, input)
		if err != nil {
			return mcp.ToolResult{}, err
		}
		for _, vpc := range out.Vpcs {
			vpcs = append(vpcs, summarizeVPC(vpc))
		}
		if aws.ToString(out.NextToken) == "" {
			break
		}
		input.NextToken = out.NextToken
	}
	return listResult(usedRegion, "vpcs", vpcs), nil
}

func (s *Service) handleDeleteVPC(ctx context.Context, req mcp.ToolRequest) (mcp.ToolResult, error) {
	var in vpcIDRequest
	if err := mcp.DecodeRequest(req.Arguments, &in); err != nil {
		return mcp.ToolResult{}, err
	}
	client, usedRegion, err := s.ec2Client(ctx, req.Region())
	if err != nil {
		return mcp.ToolResult{}, err
	}
	if _, err := client.DeleteVpc(ctx, &ec2.DeleteVpcInput{VpcId: aws.String(in.VpcID)}); err != nil {
		return mcp.ToolResult{}, err
	}
	return deletedResult(usedRegion, "VPC", "vpc_id", in.VpcID), nil
}

func (s *Service) handleCreateSubnet(ctx context.Context, req mcp.ToolRequest) (mcp.ToolResult, error) {
	var in createSubnetRequest
	if err := mcp.DecodeRequest(req.Arguments, &in); err != nil {
		return mcp.ToolResult{}, err
	}
	client, usedRegion, err := s.ec2Client(ctx, req.Region())
	if err != nil {
		return mcp.ToolResult{}, err
	}
	input := &ec2.CreateSubnetInput{
		VpcId:     aws.String(in.VpcID),
		CidrBlock: aws.String(in.CidrBlock),
	}
	if in.AvailabilityZone != "" {
		input.AvailabilityZone = aws.String(in.AvailabilityZone)
	}
	out, err := client.CreateSubnet(ctx, input)
	if err != nil {
		return mcp.ToolResult{}, err
	}
	if out.Subnet == nil {
		return mcp.ToolResult{}, fmt.Errorf("create subnet returned no subnet")
	}
	subnetID := aws.ToString(out.Subnet.SubnetId)
	if in.MapPublicIPOnLaunch {
		if _, err := client.ModifySubnetAttribute(ctx, &ec2.ModifySubnetAttributeInput{
			SubnetId:            aws.String(subnetID),
			MapPublicIpOnLaunch: &ec2types.AttributeBooleanValue{Value: aws.Bool(true)},
		}); err != nil {
			return mcp.ToolResult{}, err
		}
	}
	if err := tagResource(ctx, client, subnetID, in.Tags); err != nil {
		return mcp.ToolResult{}, err
	}
	return mcp.ToolResult{
		Data: map[string]any{
			"region":    usedRegion,
			"subnet":    summarizeSubnet(*out.Subnet),
			"subnet_id": subnetID,
		},
		Metadata: mcp.ToolMetadata{Region: usedRegion, Resources: []string{subnetID}},
	}, nil
}

func (s *Service) handleListSubnets(ctx context.Context, req mcp.ToolRequest) (mcp.ToolResult, error) {
	var in listByVPCRequest
	if err := mcp.DecodeRequest(req.Arguments, &in); err != nil {
		return mcp.ToolResult{}, err
	}
	client, usedRegion, err := s.ec2Client(ctx, req.Region())
	if err != nil {
		return mcp.ToolResult{}, err
	}
	input := &ec2.DescribeSubnetsInput{Filters: vpcFilter(in.VpcID)}
	subnets := []map[string]any{}
	for {
		out, err := client.DescribeSubnets(ctx, input)
		if err != nil {
			return mcp.ToolResult{}, err
		}
		for _, subnet := range out.Subnets {
			subnets = append(subnets, summarizeSubnet(subnet))
		}
		if aws.ToString(out.NextToken) == "" {
			break
		}
		input.NextToken = out.NextToken
	}
	return listResult(usedRegion, "subnets", subnets), nil
}

func (s *Service) handleDeleteSubnet(ctx context.Context, req mcp.ToolRequest) (mcp.ToolResult, error) {
	var in subnetIDRequest
	if err := mcp.DecodeRequest(req.Arguments, &in); err != nil {
		return mcp.ToolResult{}, err
	}
	client, usedRegion, err := s.ec2Client(ctx, req.Region())
	if err != nil {
		return mcp.ToolResult{}, err
	}
	if _, err := client.DeleteSubnet(ctx, &ec2.DeleteSubnetInput{SubnetId: aws.String(in.SubnetID)}); err != nil {
		return mcp.ToolResult{}, err
	}
	return deletedResult(usedRegion, "Subnet", "subnet_id", in.SubnetID), nil
}

func (s *Service) handleCreateSecurityGroup(ctx context.Context, req mcp.ToolRequest) (mcp.ToolResult, error) {
	var in createSecurityGroupRequest
	if err := mcp.DecodeRequest(req.Arguments, &in); err != nil {
		return mcp.ToolResult{}, err
	}
	client, usedRegion, err := s.ec2Client(ctx, req.Region())
	if err != nil {
		return mcp.ToolResult{}, err
	}
	out, err := client.CreateSecurityGroup(ctx, &ec2.CreateSecurityGroupInput{
		GroupName:   aws.String(in.GroupName),
		Description: aws.String(in.Description),
		VpcId:       aws.String(in.VpcID),
	})
	if err != nil {
		return mcp.ToolResult{}, err
	}
	groupID := aws.ToString(out.GroupId)
	if err := tagResource(ctx, client, groupID, in.Tags); err != nil {
		return mcp.ToolResult{}, err
	}
	return mcp.ToolResult{
		Data: map[string]any{
			"region":     usedRegion,
			"group_id":   groupID,
			"group_name": in.GroupName,
			"vpc_id":     in.VpcID,
		},
		Metadata: mcp.ToolMetadata{Region: usedRegion, Resources: []string{groupID}},
	}, nil
}

func (s *Service) handleAddSecurityGroupRule(ctx context.Context, req mcp.ToolRequest) (mcp.ToolResult, error) {
	in := newSecurityGroupRuleRequest()
	if err := mcp.DecodeRequest(req.Arguments, &in); err != nil {
		return mcp.ToolResult{}, err
	}
	client, usedRegion, err := s.ec2Client(ctx, req.Region())
	if err != nil {
		return mcp.ToolResult{}, err
	}
	permission := ec2types.IpPermission{
		IpProtocol: aws.String(in.IPProtocol),
		FromPort:   in.FromPort,
		ToPort:     in.ToPort,
	}
	for _, cidr := range in.CidrBlocks {
		permission.IpRanges = append(permission.IpRanges, ec2types.IpRange{CidrIp: aws.String(cidr)})
	}
	if in.SourceSecurityGroupID != "" {
		permission.UserIdGroupPairs = []ec2types.UserIdGroupPair{{GroupId: aws.String(in.SourceSecurityGroupID)}}
	}
	permissions := []ec2types.IpPermission{permission}

	var rules []ec2types.SecurityGroupRule
	if in.RuleType == ruleEgress {
		out, err := client.AuthorizeSecurityGroupEgress(ctx, &ec2.AuthorizeSecurityGroupEgressInput{
			GroupId:       aws.String(in.GroupID),
			IpPermissions: permissions,
		})
		if err != nil {
			return mcp.ToolResult{}, err
		}
		rules = out.SecurityGroupRules
	} else {
		out, err := client.AuthorizeSecurityGroupIngress(ctx, &ec2.AuthorizeSecurityGroupIngressInput{
			GroupId:       aws.String(in.GroupID),
			IpPermissions: permissions,
		})
		if err != nil {
			return mcp.ToolResult{}, err
		}
		rules = out.SecurityGroupRules
	}
	ruleIDs := make([]string, 0, len(rules))
	for _, rule := range rules {
		ruleIDs = append(ruleIDs, aws.ToString(rule.SecurityGroupRuleId))
	}
	return mcp.ToolResult{
		Data: map[string]any{
			"region":    usedRegion,
			"message":   fmt.Sprintf("Security group %s rule added to %s", in.RuleType, in.GroupID),
			"group_id":  in.GroupID,
			"rule_type": in.RuleType,
			"rule_ids":  ruleIDs,
		},
		Metadata: mcp.ToolMetadata{Region: usedRegion, Resources: []string{in.GroupID}},
	}, nil
}

func (s *Service) handleListSecurityGroups(ctx context.Context, req mcp.ToolRequest) (mcp.ToolResult, error) {
	var in listByVPCRequest
	if err := mcp.DecodeRequest(req.Arguments, &in); err != nil {
		return mcp.ToolResult{}, err
	}
	client, usedRegion, err := s.ec2Client(ctx, req.Region())
	if err != nil {
		return mcp.ToolResult{}, err
	}
	input := &ec2.DescribeSecurityGroupsInput{Filters: vpcFilter(in.VpcID)}
	groups := []map[string]any{}
	for {
		out, err := client.DescribeSecurityGroups(ctx, input)
		if err != nil {
			return mcp.ToolResult{}, err
		}
		for _, group := range out.SecurityGroups {
			groups = append(groups, summarizeSecurityGroup(group))
		}
		if aws.ToString(out.NextToken) == "" {
			break
		}
		input.NextToken = out.NextToken
	}
	return listResult(usedRegion, "security_groups", groups), nil
}

func (s *Service) handleDeleteSecurityGroup(ctx context.Context, req mcp.ToolRequest) (mcp.ToolResult, error) {
	var in groupIDRequest
	if err := mcp.DecodeRequest(req.Arguments, &in); err != nil {
		return mcp.ToolResult{}, err
	}
	client, usedRegion, err := s.ec2Client(ctx, req.Region())
	if err != nil {
		return mcp.ToolResult{}, err
	}
	if _, err := client.DeleteSecurityGroup(ctx, &ec2.DeleteSecurityGroupInput{GroupId: aws.String(in.GroupID)}); err != nil {
		return mcp.ToolResult{}, err
	}
	return deletedResult(usedRegion, "Security group", "group_id", in.GroupID), nil
}

func (s *Service) handleListHostedZones(ctx context.Context, req mcp.ToolRequest) (mcp.ToolResult, error) {
	client, usedRegion, err := s.route53Client(ctx, req.Region())
	if err != nil {
		return mcp.ToolResult{}, err
	}
	input := &route53.ListHostedZonesInput{}
	zones := []map[string]any{}
	for {
		out, err := client.ListHostedZones(ctx, input)
		if err != nil {
			return mcp.ToolResult{}, err
		}
		for _, zone := range out.HostedZones {
			zones = append(zones, summarizeHostedZone(zone))
		}
		if aws.ToString(out.NextMarker) == "" {
			break
		}
		input.Marker = out.NextMarker
	}
	return listResult(usedRegion, "hosted_zones", zones), nil
}

func (s *Service) handleListResolverEndpoints(ctx context.Context, req mcp.ToolRequest) (mcp.ToolResult, error) {
	client, usedRegion, err := s.resolverClient(ctx, req.Region())
	if err != nil {
		return mcp.ToolResult{}, err
	}
	input := &route53resolver.ListResolverEndpointsInput{}
	endpoints := []map[string]any{}
	for {
		out, err := client.ListResolverEndpoints(ctx, input)
		if err != nil {
			return mcp.ToolResult{}, err
		}
		for _, endpoint := range out.ResolverEndpoints {
			endpoints = append(endpoints, summarizeResolverEndpoint(endpoint))
		}
		if aws.ToString(out.NextToken) == "" {
			break
		}
		input.NextToken = out.NextToken
	}
	return listResult(usedRegion, "resolver_endpoints", endpoints), nil
}

// tagResource applies exactly the supplied pairs. No call is made when there
// are none.
func tagResource(ctx context.Context, client EC2API, resourceID string, tags map[string]string) error {
	if len(tags) == 0 {
		return nil
	}
	_, err := client.CreateTags(ctx, &ec2.CreateTagsInput{
		Resources: []string{resourceID},
		Tags:      ec2Tags(tags),
	})
	return err
}

func ec2Tags(tags map[string]string) []ec2types.Tag {
	out := make([]ec2types.Tag, 0, len(tags))
	for _, key := range shape.SortedKeys(tags) {
		out = append(out, ec2types.Tag{Key: aws.String(key), Value: aws.String(tags[key])})
	}
	return out
}

func vpcFilter(vpcID string) []ec2types.Filter {
	if vpcID == "" {
		return nil
	}
	return []ec2types.Filter{{Name: aws.String("vpc-id"), Values: []string{vpcID}}}
}

func listResult(region, key string, items []map[string]any) mcp.ToolResult {
	return mcp.ToolResult{
		Data: map[string]any{
			"region": region,
			key:      items,
			"count":  len(items),
		},
		Metadata: mcp.ToolMetadata{Region: region},
	}
}

func deletedResult(region, kind, idKey, id string) mcp.ToolResult {
	return mcp.ToolResult{
		Data: map[string]any{
			"region":  region,
			"message": fmt.Sprintf("%s %s deleted successfully", kind, id),
			idKey:     id,
		},
		Metadata: mcp.ToolMetadata{Region: region, Resources: []string{id}},
	}
}

func summarizeVPC(vpc ec2types.Vpc) map[string]any {
	return map[string]any{
		"VpcId":           aws.ToString(vpc.VpcId),
		"CidrBlock":       aws.ToString(vpc.CidrBlock),
		"State":           string(vpc.State),
		"IsDefault":       aws.ToBool(vpc.IsDefault),
		"DhcpOptionsId":   aws.ToString(vpc.DhcpOptionsId),
		"InstanceTenancy": string(vpc.InstanceTenancy),
		"Tags":            tagMap(vpc.Tags),
	}
}

func summarizeSubnet(subnet ec2types.Subnet) map[string]any {
	return map[string]any{
		"SubnetId":                aws.ToString(subnet.SubnetId),
		"VpcId":                   aws.ToString(subnet.VpcId),
		"CidrBlock":               aws.ToString(subnet.CidrBlock),
		"AvailabilityZone":        aws.ToString(subnet.AvailabilityZone),
		"State":                   string(subnet.State),
		"AvailableIpAddressCount": aws.ToInt32(subnet.AvailableIpAddressCount),
		"MapPublicIpOnLaunch":     aws.ToBool(subnet.MapPublicIpOnLaunch),
		"Tags":                    tagMap(subnet.Tags),
	}
}

func summarizeSecurityGroup(group ec2types.SecurityGroup) map[string]any {
	return map[string]any{
		"GroupId":       aws.ToString(group.GroupId),
		"GroupName":     aws.ToString(group.GroupName),
		"Description":   aws.ToString(group.Description),
		"VpcId":         aws.ToString(group.VpcId),
		"OwnerId":       aws.ToString(group.OwnerId),
		"InboundRules":  summarizePermissions(group.IpPermissions),
		"OutboundRules": summarizePermissions(group.IpPermissionsEgress),
		"Tags":          tagMap(group.Tags),
	}
}

func summarizePermissions(perms []ec2types.IpPermission) []map[string]any {
	out := make([]map[string]any, 0, len(perms))
	for _, perm := range perms {
		entry := map[string]any{"IpProtocol": aws.ToString(perm.IpProtocol)}
		if perm.FromPort != nil {
			entry["FromPort"] = aws.ToInt32(perm.FromPort)
		}
		if perm.ToPort != nil {
			entry["ToPort"] = aws.ToInt32(perm.ToPort)
		}
		var cidrs []string
		for _, cidr := range perm.IpRanges {
			if cidr.CidrIp != nil {
				cidrs = append(cidrs, aws.ToString(cidr.CidrIp))
			}
		}
		if len(cidrs) > 0 {
			entry["CidrBlocks"] = cidrs
		}
		var groups []string
		for _, pair := range perm.UserIdGroupPairs {
			if pair.GroupId != nil {
				groups = append(groups, aws.ToString(pair.GroupId))
			}
		}
		if len(groups) > 0 {
			entry["SourceGroups"] = groups
		}
		out = append(out, entry)
	}
	return out
}

func summarizeHostedZone(zone r53types.HostedZone) map[string]any {
	out := map[string]any{
		"Id":          aws.ToString(zone.Id),
		"Name":        aws.ToString(zone.Name),
		"RecordCount": aws.ToInt64(zone.ResourceRecordSetCount),
		"PrivateZone": false,
	}
	if zone.Config != nil {
		out["PrivateZone"] = zone.Config.PrivateZone
		out["Comment"] = aws.ToString(zone.Config.Comment)
	}
	return out
}

func summarizeResolverEndpoint(endpoint r53rtypes.ResolverEndpoint) map[string]any {
	return map[string]any{
		"Id":             aws.ToString(endpoint.Id),
		"Name":           aws.ToString(endpoint.Name),
		"Direction":      string(endpoint.Direction),
		"Status":         string(endpoint.Status),
		"HostVPCId":      aws.ToString(endpoint.HostVPCId),
		"IpAddressCount": aws.ToInt32(endpoint.IpAddressCount),
	}
}

func tagMap(tags []ec2types.Tag) map[string]string {
	out := make(map[string]string, len(tags))
	for _, tag := range tags {
		if tag.Key == nil {
			continue
		}
		out[aws.ToString(tag.Key)] = aws.ToString(tag.Value)
	}
	return out
}
