package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"awsinfra/internal/render"
)

// listTarget maps a `list` resource name to the tool that serves it.
type listTarget struct {
	name  string
	usage string
	tool  string
}

var listTargets = []listTarget{
	{"vpcs", "list VPCs", "list_vpcs"},
	{"subnets", "list subnets", "list_subnets"},
	{"security-groups", "list security groups", "list_security_groups"},
	{"s3", "list S3 buckets", "list_s3_buckets"},
	{"lambda", "list Lambda functions", "list_lambda_functions"},
	{"iam-roles", "list IAM roles", "list_iam_roles"},
	{"rds", "list RDS instances", "list_rds_instances"},
	{"cloudformation", "list CloudFormation stacks", "list_cloudformation_stacks"},
	{"regions", "list AWS regions", "get_aws_regions"},
	{"availability-zones", "list availability zones", "get_availability_zones"},
}

func (a *App) listCommand() *cli.Command {
	cmd := &cli.Command{
		Name:  "list",
		Usage: "list AWS resources",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() > 0 {
				return fmt.Errorf("unknown resource type %q", cmd.Args().First())
			}
			return errors.New("please specify a resource type to list")
		},
	}
	cmd.Commands = append(cmd.Commands, &cli.Command{
		Name:  "ec2",
		Usage: "list EC2 instances",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "state", Usage: "filter by instance state"},
			&cli.StringFlag{Name: "tag", Usage: "filter by tag (key=value)"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			filters, err := instanceFilters(cmd.String("state"), cmd.String("tag"))
			if err != nil {
				return err
			}
			var args map[string]any
			if len(filters) > 0 {
				args = map[string]any{"filters": filters}
			}
			return a.show(ctx, cmd, "list_ec2_instances", args)
		},
	})
	for _, target := range listTargets {
		cmd.Commands = append(cmd.Commands, &cli.Command{
			Name:  target.name,
			Usage: target.usage,
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return a.show(ctx, cmd, target.tool, nil)
			},
		})
	}
	return cmd
}

func instanceFilters(state, tag string) (map[string][]string, error) {
	filters := map[string][]string{}
	if state != "" {
		filters["instance-state-name"] = []string{state}
	}
	if tag != "" {
		key, value, ok := strings.Cut(tag, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --tag %q, want key=value", tag)
		}
		filters["tag:"+key] = []string{value}
	}
	return filters, nil
}

func (a *App) createCommand() *cli.Command {
	return &cli.Command{
		Name:  "create",
		Usage: "create AWS resources",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() > 0 {
				return fmt.Errorf("unknown resource type %q", cmd.Args().First())
			}
			return errors.New("please specify a resource type to create")
		},
		Commands: []*cli.Command{
			{
				Name:  "vpc",
				Usage: "create a VPC",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "cidr", Usage: "CIDR block (e.g. 10.0.0.0/16)", Required: true},
					&cli.StringFlag{Name: "name", Usage: "Name tag"},
					&cli.BoolFlag{Name: "enable-dns-hostnames", Usage: "enable DNS hostnames"},
					&cli.BoolFlag{Name: "enable-dns-support", Usage: "enable DNS support"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					args := map[string]any{"cidr_block": cmd.String("cidr")}
					for _, flag := range []string{"enable-dns-hostnames", "enable-dns-support"} {
						if cmd.IsSet(flag) {
							args[strings.ReplaceAll(flag, "-", "_")] = cmd.Bool(flag)
						}
					}
					setNameTag(args, cmd.String("name"))
					return a.create(ctx, cmd, "vpc", "create_vpc", args)
				},
			},
			{
				Name:  "ec2",
				Usage: "launch an EC2 instance",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "image-id", Usage: "AMI ID", Required: true},
					&cli.StringFlag{Name: "instance-type", Usage: "instance type", Value: "t3.micro"},
					&cli.StringFlag{Name: "key-name", Usage: "key pair name"},
					&cli.StringSliceFlag{Name: "security-group-ids", Usage: "security group IDs"},
					&cli.StringFlag{Name: "subnet-id", Usage: "subnet ID"},
					&cli.StringFlag{Name: "name", Usage: "Name tag"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					args := map[string]any{
						"image_id":      cmd.String("image-id"),
						"instance_type": cmd.String("instance-type"),
					}
					if v := cmd.String("key-name"); v != "" {
						args["key_name"] = v
					}
					if v := cmd.StringSlice("security-group-ids"); len(v) > 0 {
						args["security_group_ids"] = v
					}
					if v := cmd.String("subnet-id"); v != "" {
						args["subnet_id"] = v
					}
					setNameTag(args, cmd.String("name"))
					return a.create(ctx, cmd, "ec2", "launch_ec2_instance", args)
				},
			},
			{
				Name:  "s3",
				Usage: "create an S3 bucket",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "bucket-name", Usage: "bucket name", Required: true},
					&cli.BoolFlag{Name: "versioning", Usage: "enable versioning"},
					&cli.BoolFlag{Name: "public-read", Usage: "allow public reads"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					args := map[string]any{
						"bucket_name":        cmd.String("bucket-name"),
						"versioning":         cmd.Bool("versioning"),
						"public_read_access": cmd.Bool("public-read"),
					}
					return a.create(ctx, cmd, "s3", "create_s3_bucket", args)
				},
			},
		},
	}
}

func setNameTag(args map[string]any, name string) {
	if name != "" {
		args["tags"] = map[string]string{"Name": name}
	}
}

func (a *App) create(ctx context.Context, cmd *cli.Command, resource, tool string, args map[string]any) error {
	runtime, err := a.runtime(cmd)
	if err != nil {
		return err
	}
	envelope, err := runtime.Call(ctx, tool, args)
	if !succeeded(envelope, err) {
		msg := errorMessage(envelope, err)
		fmt.Fprintf(a.Stdout, "[FAIL] Failed to create %s\n", resource)
		fmt.Fprintf(a.Stdout, "Error: %s\n", msg)
		return reportedError{fmt.Errorf("create %s: %s", resource, msg)}
	}
	fmt.Fprintf(a.Stdout, "[OK] Successfully created %s\n", resource)
	return render.Write(a.Stdout, outputFormat(cmd), envelope)
}
