package awsec2

import (
	"context"
	"encoding/base64"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/autoscaling"
	autotypes "github.com/aws/aws-sdk-go-v2/service/autoscaling/types"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"

	"awsinfra/internal/mcp"
)

type fakeEC2 struct {
	EC2API
	instances []ec2types.Instance
	runInput  *ec2.RunInstancesInput
	tagged    *ec2.CreateTagsInput
	pageSize  int
	calls     int
}

func instance(id string, state ec2types.InstanceStateName) ec2types.Instance {
	launched := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	return ec2types.Instance{
		InstanceId:   aws.String(id),
		InstanceType: ec2types.InstanceTypeT3Micro,
		State:        &ec2types.InstanceState{Name: state},
		LaunchTime:   &launched,
		Tags:         []ec2types.Tag{{Key: aws.String("Name"), Value: aws.String(id)}},
	}
}

// DescribeInstances honours the instance-state-name filter and pages by
// pageSize so tests exercise both paths.
func (f *fakeEC2) DescribeInstances(_ context.Context, in *ec2.DescribeInstancesInput, _ ...func(*ec2.Options)) (*ec2.DescribeInstancesOutput, error) {
	f.calls++
	var matched []ec2types.Instance
	for _, inst := range f.instances {
		if len(in.InstanceIds) > 0 && aws.ToString(inst.InstanceId) != in.InstanceIds[0] {
			continue
		}
		if !matchesFilters(inst, in.Filters) {
			continue
		}
		matched = append(matched, inst)
	}
	start := 0
	if in.NextToken != nil {
		start = f.pageSize
	}
	end := len(matched)
	out := &ec2.DescribeInstancesOutput{}
	if f.pageSize > 0 && start == 0 && end > f.pageSize {
		end = f.pageSize
		out.NextToken = aws.String("page-2")
	}
	if start < len(matched) {
		out.Reservations = []ec2types.Reservation{{Instances: matched[start:end]}}
	}
	return out, nil
}

func matchesFilters(inst ec2types.Instance, filters []ec2types.Filter) bool {
	for _, filter := range filters {
		if aws.ToString(filter.Name) != "instance-state-name" {
			continue
		}
		ok := false
		for _, value := range filter.Values {
			if string(inst.State.Name) == value {
				ok = true
			}
		}
		if !ok {
			return false
		}
	}
	return true
}

func (f *fakeEC2) RunInstances(_ context.Context, in *ec2.RunInstancesInput, _ ...func(*ec2.Options)) (*ec2.RunInstancesOutput, error) {
	f.runInput = in
	out := &ec2.RunInstancesOutput{}
	for i := int32(0); i < aws.ToInt32(in.MaxCount); i++ {
		out.Instances = append(out.Instances, instance([]string{"i-a", "i-b", "i-c"}[i], ec2types.InstanceStateNamePending))
	}
	return out, nil
}

func (f *fakeEC2) CreateTags(_ context.Context, in *ec2.CreateTagsInput, _ ...func(*ec2.Options)) (*ec2.CreateTagsOutput, error) {
	f.tagged = in
	return &ec2.CreateTagsOutput{}, nil
}

func (f *fakeEC2) TerminateInstances(_ context.Context, in *ec2.TerminateInstancesInput, _ ...func(*ec2.Options)) (*ec2.TerminateInstancesOutput, error) {
	return &ec2.TerminateInstancesOutput{TerminatingInstances: []ec2types.InstanceStateChange{{
		InstanceId:    aws.String(in.InstanceIds[0]),
		CurrentState:  &ec2types.InstanceState{Name: ec2types.InstanceStateNameShuttingDown},
		PreviousState: &ec2types.InstanceState{Name: ec2types.InstanceStateNameRunning},
	}}}, nil
}

type fakeASG struct {
	AutoScalingAPI
}

func (fakeASG) DescribeAutoScalingGroups(context.Context, *autoscaling.DescribeAutoScalingGroupsInput, ...func(*autoscaling.Options)) (*autoscaling.DescribeAutoScalingGroupsOutput, error) {
	return &autoscaling.DescribeAutoScalingGroupsOutput{AutoScalingGroups: []autotypes.AutoScalingGroup{{
		AutoScalingGroupName: aws.String("web"),
		MinSize:              aws.Int32(1),
		MaxSize:              aws.Int32(3),
		Instances:            []autotypes.Instance{{InstanceId: aws.String("i-a")}},
	}}}, nil
}

func toolMap(client EC2API) map[string]mcp.ToolSpec {
	ec2Fn := func(_ context.Context, region string) (EC2API, string, error) {
		if region == "" {
			region = "us-east-1"
		}
		return client, region, nil
	}
	asgFn := func(context.Context, string) (AutoScalingAPI, string, error) {
		return fakeASG{}, "us-east-1", nil
	}
	elbFn := func(context.Context, string) (ELBAPI, string, error) {
		return nil, "", errors.New("elb unavailable")
	}
	out := map[string]mcp.ToolSpec{}
	for _, spec := range ToolSpecs("aws", ec2Fn, asgFn, elbFn) {
		out[spec.Name] = spec
	}
	return out
}

func TestListInstancesRunningFilter(t *testing.T) {
	client := &fakeEC2{
		pageSize: 2,
		instances: []ec2types.Instance{
			instance("i-1", ec2types.InstanceStateNameRunning),
			instance("i-2", ec2types.InstanceStateNameStopped),
			instance("i-3", ec2types.InstanceStateNameRunning),
			instance("i-4", ec2types.InstanceStateNameRunning),
		},
	}
	result, err := toolMap(client)["list_ec2_instances"].Handler(context.Background(), mcp.ToolRequest{Arguments: map[string]any{
		"filters": map[string]any{"instance-state-name": []any{"running"}},
	}})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	instances := result.Data["instances"].([]map[string]any)
	if len(instances) != 3 || result.Data["count"] != 3 {
		t.Fatalf("expected 3 running instances across pages, got %d", len(instances))
	}
	for _, inst := range instances {
		if inst["State"] != "running" {
			t.Fatalf("unexpected state %v", inst["State"])
		}
	}
	if client.calls != 2 {
		t.Fatalf("expected two pages, got %d calls", client.calls)
	}
	if instances[0]["LaunchTime"] != "2024-05-01T12:00:00Z" {
		t.Fatalf("unexpected launch time %v", instances[0]["LaunchTime"])
	}
}

func TestListInstancesSingleFilterValue(t *testing.T) {
	client := &fakeEC2{instances: []ec2types.Instance{
		instance("i-1", ec2types.InstanceStateNameRunning),
		instance("i-2", ec2types.InstanceStateNameStopped),
	}}
	result, err := toolMap(client)["list_ec2_instances"].Handler(context.Background(), mcp.ToolRequest{Arguments: map[string]any{
		"filters": map[string]any{"instance-state-name": "stopped"},
	}})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if result.Data["count"] != 1 {
		t.Fatalf("expected one stopped instance, got %v", result.Data["count"])
	}
}

func TestLaunchInstanceDefaultsAndTags(t *testing.T) {
	client := &fakeEC2{}
	result, err := toolMap(client)["launch_ec2_instance"].Handler(context.Background(), mcp.ToolRequest{Arguments: map[string]any{
		"image_id":  "ami-123",
		"user_data": "#!/bin/sh\necho hi",
		"max_count": 2,
		"tags":      map[string]any{"env": "dev", "Name": "web"},
	}})
	if err != nil {
		t.Fatalf("launch: %v", err)
	}
	if client.runInput.InstanceType != ec2types.InstanceTypeT3Micro || aws.ToInt32(client.runInput.MinCount) != 1 {
		t.Fatalf("unexpected defaults %#v", client.runInput)
	}
	decoded, err := base64.StdEncoding.DecodeString(aws.ToString(client.runInput.UserData))
	if err != nil || string(decoded) != "#!/bin/sh\necho hi" {
		t.Fatalf("user data not base64 encoded: %q", aws.ToString(client.runInput.UserData))
	}
	ids := result.Data["instance_ids"].([]string)
	if len(ids) != 2 || len(client.tagged.Resources) != 2 {
		t.Fatalf("expected tags on both instances, got %#v", client.tagged)
	}
	if aws.ToString(client.tagged.Tags[0].Key) != "Name" || aws.ToString(client.tagged.Tags[1].Key) != "env" {
		t.Fatalf("expected sorted tags, got %#v", client.tagged.Tags)
	}
}

func TestLaunchInstanceRejectsBadCounts(t *testing.T) {
	_, err := toolMap(&fakeEC2{})["launch_ec2_instance"].Handler(context.Background(), mcp.ToolRequest{Arguments: map[string]any{
		"image_id":  "ami-123",
		"min_count": 3,
		"max_count": 1,
	}})
	if err == nil {
		t.Fatalf("expected count validation error")
	}
}

func TestGetInstanceNotFoundIsUnclassified(t *testing.T) {
	result, err := toolMap(&fakeEC2{})["get_ec2_instance_details"].Handler(context.Background(), mcp.ToolRequest{Arguments: map[string]any{
		"instance_id": "i-missing",
	}})
	envelope := mcp.Envelope(result, err)
	if envelope["error"] != true || envelope["error_message"] != "instance i-missing not found" {
		t.Fatalf("unexpected envelope %#v", envelope)
	}
	if _, ok := envelope["error_code"]; ok {
		t.Fatalf("not-found should carry no error_code")
	}
}

func TestTerminateInstance(t *testing.T) {
	result, err := toolMap(&fakeEC2{})["terminate_ec2_instance"].Handler(context.Background(), mcp.ToolRequest{Arguments: map[string]any{
		"instance_id": "i-1",
		"region":      "us-west-2",
	}})
	if err != nil {
		t.Fatalf("terminate: %v", err)
	}
	changes := result.Data["terminating_instances"].([]map[string]any)
	if changes[0]["CurrentState"] != "shutting-down" || result.Metadata.Region != "us-west-2" {
		t.Fatalf("unexpected result %#v", result)
	}
}

func TestListASGsAndClientError(t *testing.T) {
	tools := toolMap(&fakeEC2{})
	result, err := tools["list_auto_scaling_groups"].Handler(context.Background(), mcp.ToolRequest{})
	if err != nil {
		t.Fatalf("list asgs: %v", err)
	}
	groups := result.Data["auto_scaling_groups"].([]map[string]any)
	if len(groups) != 1 || groups[0]["InstanceCount"] != 1 || groups[0]["MaxSize"] != int32(3) {
		t.Fatalf("unexpected groups %#v", groups)
	}
	if _, err := tools["list_load_balancers"].Handler(context.Background(), mcp.ToolRequest{}); err == nil {
		t.Fatalf("expected client lookup error to surface")
	}
}
