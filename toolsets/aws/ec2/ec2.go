package awsec2

import (
	"context"
	"encoding/base64"
	"fmt"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/autoscaling"
	autotypes "github.com/aws/aws-sdk-go-v2/service/autoscaling/types"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/aws/aws-sdk-go-v2/service/elasticloadbalancingv2"
	elbtypes "github.com/aws/aws-sdk-go-v2/service/elasticloadbalancingv2/types"

	"awsinfra/internal/mcp"
	"awsinfra/toolsets/aws/shape"
)

type Service struct {
	ec2Client EC2Func
	asgClient AutoScalingFunc
	elbClient ELBFunc
	toolsetID string
}

func ToolSpecs(toolsetID string, ec2Client EC2Func, asgClient AutoScalingFunc, elbClient ELBFunc) []mcp.ToolSpec {
	svc := &Service{
		ec2Client: ec2Client,
		asgClient: asgClient,
		elbClient: elbClient,
		toolsetID: toolsetID,
	}
	return []mcp.ToolSpec{
		{
			Name:        "launch_ec2_instance",
			Description: "Launch EC2 instances from an AMI and tag them.",
			ToolsetID:   toolsetID,
			InputSchema: schemaLaunchInstance(),
			Safety:      mcp.SafetyWrite,
			Handler:     svc.handleLaunchInstance,
		},
		{
			Name:        "list_ec2_instances",
			Description: "List EC2 instances, optionally filtered (e.g. instance-state-name=running).",
			ToolsetID:   toolsetID,
			InputSchema: schemaListInstances(),
			Safety:      mcp.SafetyReadOnly,
			Handler:     svc.handleListInstances,
		},
		{
			Name:        "get_ec2_instance_details",
			Description: "Get details of one EC2 instance.",
			ToolsetID:   toolsetID,
			InputSchema: schemaInstanceID(),
			Safety:      mcp.SafetyReadOnly,
			Handler:     svc.handleGetInstance,
		},
		{
			Name:        "terminate_ec2_instance",
			Description: "Terminate an EC2 instance.",
			ToolsetID:   toolsetID,
			InputSchema: schemaInstanceID(),
			Safety:      mcp.SafetyDestructive,
			Handler:     svc.handleTerminateInstance,
		},
		{
			Name:        "get_aws_regions",
			Description: "List the regions available to the account.",
			ToolsetID:   toolsetID,
			InputSchema: shape.Object(nil),
			Safety:      mcp.SafetyReadOnly,
			Handler:     svc.handleGetRegions,
		},
		{
			Name:        "get_availability_zones",
			Description: "List availability zones in a region.",
			ToolsetID:   toolsetID,
			InputSchema: shape.Object(nil),
			Safety:      mcp.SafetyReadOnly,
			Handler:     svc.handleGetAvailabilityZones,
		},
		{
			Name:        "get_account_attributes",
			Description: "Get EC2 account attributes and limits.",
			ToolsetID:   toolsetID,
			InputSchema: shape.Object(nil),
			Safety:      mcp.SafetyReadOnly,
			Handler:     svc.handleGetAccountAttributes,
		},
		{
			Name:        "list_auto_scaling_groups",
			Description: "List Auto Scaling groups.",
			ToolsetID:   toolsetID,
			InputSchema: shape.Object(nil),
			Safety:      mcp.SafetyReadOnly,
			Handler:     svc.handleListASGs,
		},
		{
			Name:        "list_load_balancers",
			Description: "List application and network load balancers.",
			ToolsetID:   toolsetID,
			InputSchema: shape.Object(nil),
			Safety:      mcp.SafetyReadOnly,
			Handler:     svc.handleListLoadBalancers,
		},
	}
}

func (s *Service) handleLaunchInstance(ctx context.Context, req mcp.ToolRequest) (mcp.ToolResult, error) {
	in := newLaunchInstanceRequest()
	if err := mcp.DecodeRequest(req.Arguments, &in); err != nil {
		return mcp.ToolResult{}, err
	}
	client, usedRegion, err := s.ec2Client(ctx, req.Region())
	if err != nil {
		return mcp.ToolResult{}, err
	}
	input := &ec2.RunInstancesInput{
		ImageId:      aws.String(in.ImageID),
		InstanceType: ec2types.InstanceType(in.InstanceType),
		MinCount:     aws.Int32(in.MinCount),
		MaxCount:     aws.Int32(in.MaxCount),
	}
	if in.KeyName != "" {
		input.KeyName = aws.String(in.KeyName)
	}
	if len(in.SecurityGroupIDs) > 0 {
		input.SecurityGroupIds = in.SecurityGroupIDs
	}
	if in.SubnetID != "" {
		input.SubnetId = aws.String(in.SubnetID)
	}
	if in.UserData != "" {
		// RunInstances takes user data base64 encoded.
		input.UserData = aws.String(base64.StdEncoding.EncodeToString([]byte(in.UserData)))
	}
	out, err := client.RunInstances(ctx, input)
	if err != nil {
		return mcp.ToolResult{}, err
	}
	ids := make([]string, 0, len(out.Instances))
	instances := make([]map[string]any, 0, len(out.Instances))
	for _, inst := range out.Instances {
		ids = append(ids, aws.ToString(inst.InstanceId))
		instances = append(instances, summarizeInstance(inst))
	}
	if len(in.Tags) > 0 && len(ids) > 0 {
		if _, err := client.CreateTags(ctx, &ec2.CreateTagsInput{Resources: ids, Tags: ec2Tags(in.Tags)}); err != nil {
			return mcp.ToolResult{}, err
		}
	}
	return mcp.ToolResult{
		Data: map[string]any{
			"region":       usedRegion,
			"instances":    instances,
			"instance_ids": ids,
		},
		Metadata: mcp.ToolMetadata{Region: usedRegion, Resources: ids},
	}, nil
}

func (s *Service) handleListInstances(ctx context.Context, req mcp.ToolRequest) (mcp.ToolResult, error) {
	var in listInstancesRequest
	if err := mcp.DecodeRequest(req.Arguments, &in); err != nil {
		return mcp.ToolResult{}, err
	}
	client, usedRegion, err := s.ec2Client(ctx, req.Region())
	if err != nil {
		return mcp.ToolResult{}, err
	}
	input := &ec2.DescribeInstancesInput{Filters: buildFilters(in.Filters)}
	instances := []map[string]any{}
	for {
		out, err := client.DescribeInstances(ctx, input)
		if err != nil {
			return mcp.ToolResult{}, err
		}
		for _, reservation := range out.Reservations {
			for _, inst := range reservation.Instances {
				instances = append(instances, summarizeInstance(inst))
			}
		}
		if aws.ToString(out.NextToken) == "" {
			break
		}
		input.NextToken = out.NextToken
	}
	return mcp.ToolResult{
		Data: map[string]any{
			"region":    usedRegion,
			"instances": instances,
			"count":     len(instances),
		},
		Metadata: mcp.ToolMetadata{Region: usedRegion},
	}, nil
}

func (s *Service) handleGetInstance(ctx context.Context, req mcp.ToolRequest) (mcp.ToolResult, error) {
	var in instanceIDRequest
	if err := mcp.DecodeRequest(req.Arguments, &in); err != nil {
		return mcp.ToolResult{}, err
	}
	client, usedRegion, err := s.ec2Client(ctx, req.Region())
	if err != nil {
		return mcp.ToolResult{}, err
	}
	out, err := client.DescribeInstances(ctx, &ec2.DescribeInstancesInput{InstanceIds: []string{in.InstanceID}})
	if err != nil {
		return mcp.ToolResult{}, err
	}
	inst, ok := findInstance(out.Reservations, in.InstanceID)
	if !ok {
		return mcp.ToolResult{}, fmt.Errorf("instance %s not found", in.InstanceID)
	}
	return mcp.ToolResult{
		Data: map[string]any{
			"region":   usedRegion,
			"instance": describeInstance(inst),
		},
		Metadata: mcp.ToolMetadata{Region: usedRegion, Resources: []string{in.InstanceID}},
	}, nil
}

func (s *Service) handleTerminateInstance(ctx context.Context, req mcp.ToolRequest) (mcp.ToolResult, error) {
	var in instanceIDRequest
	if err := mcp.DecodeRequest(req.Arguments, &in); err != nil {
		return mcp.ToolResult{}, err
	}
	client, usedRegion, err := s.ec2Client(ctx, req.Region())
	if err != nil {
		return mcp.ToolResult{}, err
	}
	out, err := client.TerminateInstances(ctx, &ec2.TerminateInstancesInput{InstanceIds: []string{in.InstanceID}})
	if err != nil {
		return mcp.ToolResult{}, err
	}
	changes := make([]map[string]any, 0, len(out.TerminatingInstances))
	for _, change := range out.TerminatingInstances {
		entry := map[string]any{"InstanceId": aws.ToString(change.InstanceId)}
		if change.CurrentState != nil {
			entry["CurrentState"] = string(change.CurrentState.Name)
		}
		if change.PreviousState != nil {
			entry["PreviousState"] = string(change.PreviousState.Name)
		}
		changes = append(changes, entry)
	}
	return mcp.ToolResult{
		Data: map[string]any{
			"region":                usedRegion,
			"terminating_instances": changes,
		},
		Metadata: mcp.ToolMetadata{Region: usedRegion, Resources: []string{in.InstanceID}},
	}, nil
}

func (s *Service) handleGetRegions(ctx context.Context, req mcp.ToolRequest) (mcp.ToolResult, error) {
	client, usedRegion, err := s.ec2Client(ctx, req.Region())
	if err != nil {
		return mcp.ToolResult{}, err
	}
	out, err := client.DescribeRegions(ctx, &ec2.DescribeRegionsInput{})
	if err != nil {
		return mcp.ToolResult{}, err
	}
	regions := make([]map[string]any, 0, len(out.Regions))
	for _, region := range out.Regions {
		regions = append(regions, map[string]any{
			"RegionName":  aws.ToString(region.RegionName),
			"Endpoint":    aws.ToString(region.Endpoint),
			"OptInStatus": aws.ToString(region.OptInStatus),
		})
	}
	return mcp.ToolResult{
		Data:     map[string]any{"region": usedRegion, "regions": regions},
		Metadata: mcp.ToolMetadata{Region: usedRegion},
	}, nil
}

func (s *Service) handleGetAvailabilityZones(ctx context.Context, req mcp.ToolRequest) (mcp.ToolResult, error) {
	client, usedRegion, err := s.ec2Client(ctx, req.Region())
	if err != nil {
		return mcp.ToolResult{}, err
	}
	out, err := client.DescribeAvailabilityZones(ctx, &ec2.DescribeAvailabilityZonesInput{})
	if err != nil {
		return mcp.ToolResult{}, err
	}
	zones := make([]map[string]any, 0, len(out.AvailabilityZones))
	for _, zone := range out.AvailabilityZones {
		zones = append(zones, map[string]any{
			"ZoneName":   aws.ToString(zone.ZoneName),
			"ZoneId":     aws.ToString(zone.ZoneId),
			"State":      string(zone.State),
			"RegionName": aws.ToString(zone.RegionName),
		})
	}
	return mcp.ToolResult{
		Data:     map[string]any{"region": usedRegion, "availability_zones": zones},
		Metadata: mcp.ToolMetadata{Region: usedRegion},
	}, nil
}

func (s *Service) handleGetAccountAttributes(ctx context.Context, req mcp.ToolRequest) (mcp.ToolResult, error) {
	client, usedRegion, err := s.ec2Client(ctx, req.Region())
	if err != nil {
		return mcp.ToolResult{}, err
	}
	out, err := client.DescribeAccountAttributes(ctx, &ec2.DescribeAccountAttributesInput{})
	if err != nil {
		return mcp.ToolResult{}, err
	}
	attributes := make([]map[string]any, 0, len(out.AccountAttributes))
	for _, attr := range out.AccountAttributes {
		values := make([]string, 0, len(attr.AttributeValues))
		for _, value := range attr.AttributeValues {
			values = append(values, aws.ToString(value.AttributeValue))
		}
		attributes = append(attributes, map[string]any{
			"AttributeName":   aws.ToString(attr.AttributeName),
			"AttributeValues": values,
		})
	}
	return mcp.ToolResult{
		Data:     map[string]any{"region": usedRegion, "account_attributes": attributes},
		Metadata: mcp.ToolMetadata{Region: usedRegion},
	}, nil
}

func (s *Service) handleListASGs(ctx context.Context, req mcp.ToolRequest) (mcp.ToolResult, error) {
	client, usedRegion, err := s.asgClient(ctx, req.Region())
	if err != nil {
		return mcp.ToolResult{}, err
	}
	input := &autoscaling.DescribeAutoScalingGroupsInput{}
	groups := []map[string]any{}
	for {
		out, err := client.DescribeAutoScalingGroups(ctx, input)
		if err != nil {
			return mcp.ToolResult{}, err
		}
		for _, group := range out.AutoScalingGroups {
			groups = append(groups, summarizeASG(group))
		}
		if aws.ToString(out.NextToken) == "" {
			break
		}
		input.NextToken = out.NextToken
	}
	return mcp.ToolResult{
		Data: map[string]any{
			"region":              usedRegion,
			"auto_scaling_groups": groups,
			"count":               len(groups),
		},
		Metadata: mcp.ToolMetadata{Region: usedRegion},
	}, nil
}

func (s *Service) handleListLoadBalancers(ctx context.Context, req mcp.ToolRequest) (mcp.ToolResult, error) {
	client, usedRegion, err := s.elbClient(ctx, req.Region())
	if err != nil {
		return mcp.ToolResult{}, err
	}
	input := &elasticloadbalancingv2.DescribeLoadBalancersInput{}
	lbs := []map[string]any{}
	for {
		out, err := client.DescribeLoadBalancers(ctx, input)
		if err != nil {
			return mcp.ToolResult{}, err
		}
		for _, lb := range out.LoadBalancers {
			lbs = append(lbs, summarizeLoadBalancer(lb))
		}
		if aws.ToString(out.NextMarker) == "" {
			break
		}
		input.Marker = out.NextMarker
	}
	return mcp.ToolResult{
		Data: map[string]any{
			"region":         usedRegion,
			"load_balancers": lbs,
			"count":          len(lbs),
		},
		Metadata: mcp.ToolMetadata{Region: usedRegion},
	}, nil
}

// buildFilters turns {"name": [values]} into EC2 filters in name order.
func buildFilters(filters map[string][]string) []ec2types.Filter {
	if len(filters) == 0 {
		return nil
	}
	names := make([]string, 0, len(filters))
	for name := range filters {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make([]ec2types.Filter, 0, len(filters))
	for _, name := range names {
		values := filters[name]
		if strings.TrimSpace(name) == "" || len(values) == 0 {
			continue
		}
		out = append(out, ec2types.Filter{Name: aws.String(name), Values: values})
	}
	return out
}

func summarizeInstance(inst ec2types.Instance) map[string]any {
	out := map[string]any{
		"InstanceId":       aws.ToString(inst.InstanceId),
		"InstanceType":     string(inst.InstanceType),
		"State":            "",
		"LaunchTime":       shape.Time(inst.LaunchTime),
		"PublicIpAddress":  aws.ToString(inst.PublicIpAddress),
		"PrivateIpAddress": aws.ToString(inst.PrivateIpAddress),
		"Tags":             tagMap(inst.Tags),
	}
	if inst.State != nil {
		out["State"] = string(inst.State.Name)
	}
	return out
}

func describeInstance(inst ec2types.Instance) map[string]any {
	out := summarizeInstance(inst)
	out["ImageId"] = aws.ToString(inst.ImageId)
	out["KeyName"] = aws.ToString(inst.KeyName)
	out["VpcId"] = aws.ToString(inst.VpcId)
	out["SubnetId"] = aws.ToString(inst.SubnetId)
	out["PrivateDnsName"] = aws.ToString(inst.PrivateDnsName)
	out["PublicDnsName"] = aws.ToString(inst.PublicDnsName)
	out["Architecture"] = string(inst.Architecture)
	if inst.Placement != nil {
		out["AvailabilityZone"] = aws.ToString(inst.Placement.AvailabilityZone)
	}
	if inst.IamInstanceProfile != nil {
		out["IamInstanceProfile"] = aws.ToString(inst.IamInstanceProfile.Arn)
	}
	groups := make([]map[string]any, 0, len(inst.SecurityGroups))
	for _, sg := range inst.SecurityGroups {
		groups = append(groups, map[string]any{
			"GroupId":   aws.ToString(sg.GroupId),
			"GroupName": aws.ToString(sg.GroupName),
		})
	}
	out["SecurityGroups"] = groups
	return out
}

func summarizeASG(group autotypes.AutoScalingGroup) map[string]any {
	tags := make(map[string]string, len(group.Tags))
	for _, tag := range group.Tags {
		if key := aws.ToString(tag.Key); key != "" {
			tags[key] = aws.ToString(tag.Value)
		}
	}
	return map[string]any{
		"AutoScalingGroupName": aws.ToString(group.AutoScalingGroupName),
		"AutoScalingGroupARN":  aws.ToString(group.AutoScalingGroupARN),
		"MinSize":              aws.ToInt32(group.MinSize),
		"MaxSize":              aws.ToInt32(group.MaxSize),
		"DesiredCapacity":      aws.ToInt32(group.DesiredCapacity),
		"AvailabilityZones":    group.AvailabilityZones,
		"HealthCheckType":      aws.ToString(group.HealthCheckType),
		"InstanceCount":        len(group.Instances),
		"CreatedTime":          shape.Time(group.CreatedTime),
		"Tags":                 tags,
	}
}

func summarizeLoadBalancer(lb elbtypes.LoadBalancer) map[string]any {
	out := map[string]any{
		"LoadBalancerName": aws.ToString(lb.LoadBalancerName),
		"LoadBalancerArn":  aws.ToString(lb.LoadBalancerArn),
		"DNSName":          aws.ToString(lb.DNSName),
		"Type":             string(lb.Type),
		"Scheme":           string(lb.Scheme),
		"VpcId":            aws.ToString(lb.VpcId),
		"CreatedTime":      shape.Time(lb.CreatedTime),
	}
	if lb.State != nil {
		out["State"] = string(lb.State.Code)
	}
	return out
}

func findInstance(reservations []ec2types.Reservation, instanceID string) (ec2types.Instance, bool) {
	for _, reservation := range reservations {
		for _, inst := range reservation.Instances {
			if aws.ToString(inst.InstanceId) == instanceID {
				return inst, true
			}
		}
	}
	return ec2types.Instance{}, false
}

func ec2Tags(tags map[string]string) []ec2types.Tag {
	out := make([]ec2types.Tag, 0, len(tags))
	for _, key := range shape.SortedKeys(tags) {
		out = append(out, ec2types.Tag{Key: aws.String(key), Value: aws.String(tags[key])})
	}
	return out
}

func tagMap(tags []ec2types.Tag) map[string]string {
	out := map[string]string{}
	for _, tag := range tags {
		key := aws.ToString(tag.Key)
		if key == "" {
			continue
		}
		out[key] = aws.ToString(tag.Value)
	}
	return out
}
