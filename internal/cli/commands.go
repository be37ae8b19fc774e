package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/urfave/cli/v3"

	"awsinfra/internal/render"
)

type healthCheck struct {
	name string
	tool string
}

var healthChecks = []healthCheck{
	{"AWS Connection", "get_caller_identity"},
	{"List Regions", "get_aws_regions"},
	{"List Availability Zones", "get_availability_zones"},
	{"List EC2 Instances", "list_ec2_instances"},
	{"List VPCs", "list_vpcs"},
	{"List S3 Buckets", "list_s3_buckets"},
}

func (a *App) testConnectionCommand() *cli.Command {
	return &cli.Command{
		Name:  "test-connection",
		Usage: "verify AWS credentials with an identity lookup",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			fmt.Fprintln(a.Stdout, "Testing AWS connection...")
			runtime, err := a.runtime(cmd)
			if err != nil {
				return err
			}
			envelope, err := runtime.Call(ctx, "get_caller_identity", nil)
			if !succeeded(envelope, err) {
				msg := errorMessage(envelope, err)
				fmt.Fprintln(a.Stdout, "[FAIL] AWS connection failed!")
				fmt.Fprintf(a.Stdout, "Error: %s\n", msg)
				return reportedError{errors.New(msg)}
			}
			identity, _ := envelope["identity"].(map[string]any)
			fmt.Fprintln(a.Stdout, "[OK] AWS connection successful!")
			fmt.Fprintf(a.Stdout, "Account: %v\n", identity["Account"])
			fmt.Fprintf(a.Stdout, "User/Role: %v\n", identity["Arn"])
			fmt.Fprintf(a.Stdout, "Region: %v\n", envelope["region"])
			return nil
		},
	}
}

func (a *App) healthCheckCommand() *cli.Command {
	return &cli.Command{
		Name:  "health-check",
		Usage: "run a fixed set of read-only checks",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			fmt.Fprintln(a.Stdout, "Performing health check...")
			runtime, err := a.runtime(cmd)
			if err != nil {
				return err
			}
			passed := 0
			for _, check := range healthChecks {
				envelope, err := runtime.Call(ctx, check.tool, nil)
				if succeeded(envelope, err) {
					passed++
					fmt.Fprintf(a.Stdout, "[OK] %s\n", check.name)
					continue
				}
				fmt.Fprintf(a.Stdout, "[FAIL] %s\n", check.name)
				if cmd.Bool("verbose") {
					fmt.Fprintf(a.Stdout, "   Error: %s\n", errorMessage(envelope, err))
				}
			}
			fmt.Fprintf(a.Stdout, "\nHealth Check Summary: %d/%d checks passed\n", passed, len(healthChecks))
			if passed != len(healthChecks) {
				fmt.Fprintln(a.Stdout, "Some checks failed. See details above.")
				return reportedError{fmt.Errorf("%d of %d checks failed", len(healthChecks)-passed, len(healthChecks))}
			}
			fmt.Fprintln(a.Stdout, "All systems operational!")
			return nil
		},
	}
}

func (a *App) toolsCommand() *cli.Command {
	return &cli.Command{
		Name:  "tools",
		Usage: "list the tools enabled by the current config",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			runtime, err := a.runtime(cmd)
			if err != nil {
				return err
			}
			names := runtime.ToolNames()
			if format := outputFormat(cmd); format != render.Table {
				return render.Write(a.Stdout, format, map[string]any{"tools": names, "count": len(names)})
			}
			for _, name := range names {
				fmt.Fprintln(a.Stdout, name)
			}
			return nil
		},
	}
}

func (a *App) serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "run the MCP server on stdio",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return a.Serve(ctx, a.options(cmd))
		},
	}
}
