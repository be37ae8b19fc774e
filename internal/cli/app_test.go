package cli

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"awsinfra/pkg/server"
)

type toolCall struct {
	tool string
	args map[string]any
}

type fakeRuntime struct {
	calls     []toolCall
	envelopes map[string]map[string]any
	names     []string
}

func (f *fakeRuntime) Call(_ context.Context, tool string, args map[string]any) (map[string]any, error) {
	f.calls = append(f.calls, toolCall{tool: tool, args: args})
	if envelope, ok := f.envelopes[tool]; ok {
		if failed, _ := envelope["error"].(bool); failed {
			return envelope, errors.New(envelope["error_message"].(string))
		}
		return envelope, nil
	}
	return map[string]any{"success": true, "region": "us-east-1"}, nil
}

func (f *fakeRuntime) ToolNames() []string { return f.names }

func newTestApp(rt *fakeRuntime) (*App, *bytes.Buffer, *bytes.Buffer, *server.Options) {
	var stdout, stderr bytes.Buffer
	var seen server.Options
	app := &App{
		Version: "test",
		Stdout:  &stdout,
		Stderr:  &stderr,
		NewRuntime: func(opts server.Options) (Runtime, error) {
			seen = opts
			return rt, nil
		},
		Serve: func(_ context.Context, opts server.Options) error {
			seen = opts
			return nil
		},
	}
	return app, &stdout, &stderr, &seen
}

func run(app *App, args ...string) int {
	return app.Run(context.Background(), append([]string{"awsinfra"}, args...))
}

func failure(code, msg string) map[string]any {
	return map[string]any{"error": true, "error_code": code, "error_message": msg}
}

func TestTestConnection(t *testing.T) {
	rt := &fakeRuntime{envelopes: map[string]map[string]any{
		"get_caller_identity": {
			"success":  true,
			"region":   "eu-west-1",
			"identity": map[string]any{"Account": "123456789012", "Arn": "arn:aws:iam::123456789012:user/dev"},
		},
	}}
	app, stdout, _, opts := newTestApp(rt)

	require.Equal(t, 0, run(app, "--region", "eu-west-1", "test-connection"))
	assert.Equal(t, "eu-west-1", opts.Region)
	assert.Contains(t, stdout.String(), "Account: 123456789012")
	assert.Contains(t, stdout.String(), "User/Role: arn:aws:iam::123456789012:user/dev")
	assert.Contains(t, stdout.String(), "Region: eu-west-1")
}

func TestTestConnectionFailure(t *testing.T) {
	rt := &fakeRuntime{envelopes: map[string]map[string]any{
		"get_caller_identity": failure("ExpiredToken", "token expired"),
	}}
	app, stdout, stderr, _ := newTestApp(rt)

	assert.Equal(t, 1, run(app, "test-connection"))
	assert.Contains(t, stdout.String(), "Error: token expired")
	assert.Empty(t, stderr.String())
}

func TestHealthCheckSummary(t *testing.T) {
	rt := &fakeRuntime{envelopes: map[string]map[string]any{
		"list_s3_buckets": failure("AccessDenied", "denied"),
	}}
	app, stdout, _, _ := newTestApp(rt)

	assert.Equal(t, 1, run(app, "--verbose", "health-check"))
	require.Len(t, rt.calls, len(healthChecks))
	for i, check := range healthChecks {
		assert.Equal(t, check.tool, rt.calls[i].tool)
	}
	assert.Contains(t, stdout.String(), "[FAIL] List S3 Buckets")
	assert.Contains(t, stdout.String(), "   Error: denied")
	assert.Contains(t, stdout.String(), "Health Check Summary: 5/6 checks passed")
}

func TestHealthCheckAllPass(t *testing.T) {
	app, stdout, _, _ := newTestApp(&fakeRuntime{})
	assert.Equal(t, 0, run(app, "health-check"))
	assert.Contains(t, stdout.String(), "6/6 checks passed")
}

func TestListEC2Filters(t *testing.T) {
	rt := &fakeRuntime{}
	app, _, _, _ := newTestApp(rt)

	require.Equal(t, 0, run(app, "list", "ec2", "--state", "running", "--tag", "Env=dev"))
	require.Len(t, rt.calls, 1)
	assert.Equal(t, "list_ec2_instances", rt.calls[0].tool)
	assert.Equal(t, map[string][]string{
		"instance-state-name": {"running"},
		"tag:Env":             {"dev"},
	}, rt.calls[0].args["filters"])
}

func TestListEC2BadTag(t *testing.T) {
	rt := &fakeRuntime{}
	app, _, stderr, _ := newTestApp(rt)
	assert.Equal(t, 1, run(app, "list", "ec2", "--tag", "novalue"))
	assert.Empty(t, rt.calls)
	assert.Contains(t, stderr.String(), "want key=value")
}

func TestListTableOutput(t *testing.T) {
	rt := &fakeRuntime{envelopes: map[string]map[string]any{
		"list_vpcs": {
			"success": true,
			"vpcs":    []map[string]any{{"VpcId": "vpc-1", "CidrBlock": "10.0.0.0/16", "State": "available", "IsDefault": true}},
			"count":   1,
		},
	}}
	app, stdout, _, _ := newTestApp(rt)

	require.Equal(t, 0, run(app, "--output", "table", "list", "vpcs"))
	assert.Contains(t, stdout.String(), "VPC ID")
	assert.Contains(t, stdout.String(), "vpc-1")
}

func TestListFailureExitsNonZero(t *testing.T) {
	rt := &fakeRuntime{envelopes: map[string]map[string]any{
		"list_lambda_functions": failure("AccessDeniedException", "no access"),
	}}
	app, stdout, stderr, _ := newTestApp(rt)

	assert.Equal(t, 1, run(app, "list", "lambda"))
	assert.Contains(t, stdout.String(), `"error_code": "AccessDeniedException"`)
	assert.Empty(t, stderr.String())
}

func TestListWithoutResource(t *testing.T) {
	app, _, stderr, _ := newTestApp(&fakeRuntime{})
	assert.Equal(t, 1, run(app, "list"))
	assert.Contains(t, stderr.String(), "please specify a resource type")
}

func TestCreateVPC(t *testing.T) {
	rt := &fakeRuntime{envelopes: map[string]map[string]any{
		"create_vpc": {"success": true, "vpc_id": "vpc-9"},
	}}
	app, stdout, _, _ := newTestApp(rt)

	require.Equal(t, 0, run(app, "create", "vpc", "--cidr", "10.0.0.0/16", "--name", "x"))
	require.Len(t, rt.calls, 1)
	args := rt.calls[0].args
	assert.Equal(t, "10.0.0.0/16", args["cidr_block"])
	assert.Equal(t, map[string]string{"Name": "x"}, args["tags"])
	assert.NotContains(t, args, "enable_dns_hostnames")
	assert.Contains(t, stdout.String(), "Successfully created vpc")
	assert.Contains(t, stdout.String(), `"vpc_id": "vpc-9"`)
}

func TestCreateEC2(t *testing.T) {
	rt := &fakeRuntime{}
	app, _, _, _ := newTestApp(rt)

	require.Equal(t, 0, run(app, "create", "ec2", "--image-id", "ami-1", "--security-group-ids", "sg-1", "--security-group-ids", "sg-2"))
	args := rt.calls[0].args
	assert.Equal(t, "launch_ec2_instance", rt.calls[0].tool)
	assert.Equal(t, "t3.micro", args["instance_type"])
	assert.Equal(t, []string{"sg-1", "sg-2"}, args["security_group_ids"])
	assert.NotContains(t, args, "tags")
}

func TestCreateS3Failure(t *testing.T) {
	rt := &fakeRuntime{envelopes: map[string]map[string]any{
		"create_s3_bucket": failure("BucketAlreadyExists", "taken"),
	}}
	app, stdout, _, _ := newTestApp(rt)

	assert.Equal(t, 1, run(app, "create", "s3", "--bucket-name", "logs", "--public-read"))
	assert.Equal(t, true, rt.calls[0].args["public_read_access"])
	assert.Contains(t, stdout.String(), "Failed to create s3")
	assert.Contains(t, stdout.String(), "Error: taken")
}

func TestCreateMissingRequiredFlag(t *testing.T) {
	rt := &fakeRuntime{}
	app, _, _, _ := newTestApp(rt)
	assert.Equal(t, 1, run(app, "create", "vpc"))
	assert.Empty(t, rt.calls)
}

func TestInvalidOutputFormat(t *testing.T) {
	rt := &fakeRuntime{}
	app, _, _, _ := newTestApp(rt)
	assert.Equal(t, 1, run(app, "--output", "xml", "list", "vpcs"))
	assert.Empty(t, rt.calls)
}

func TestToolsCommand(t *testing.T) {
	app, stdout, _, _ := newTestApp(&fakeRuntime{names: []string{"create_vpc", "list_vpcs"}})
	require.Equal(t, 0, run(app, "--output", "table", "tools"))
	assert.Equal(t, "create_vpc\nlist_vpcs\n", stdout.String())
}

func TestServeUsesGlobalFlags(t *testing.T) {
	app, _, _, opts := newTestApp(&fakeRuntime{})
	require.Equal(t, 0, run(app, "--config", "/etc/awsinfra.toml", "--verbose", "serve"))
	assert.Equal(t, "/etc/awsinfra.toml", opts.ConfigPath)
	assert.Equal(t, "debug", opts.LogLevel)
}

func TestRuntimeErrorIsPrinted(t *testing.T) {
	app, _, stderr, _ := newTestApp(nil)
	app.NewRuntime = func(server.Options) (Runtime, error) {
		return nil, errors.New("config load failed: bad toml")
	}
	assert.Equal(t, 1, run(app, "list", "s3"))
	assert.Contains(t, stderr.String(), "Error: config load failed: bad toml")
}
