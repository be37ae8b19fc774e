package aws

import (
	"context"
	"errors"
	"fmt"
	"strings"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/autoscaling"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ecr"
	"github.com/aws/aws-sdk-go-v2/service/eks"
	"github.com/aws/aws-sdk-go-v2/service/elasticloadbalancingv2"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	"github.com/aws/aws-sdk-go-v2/service/kms"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/rds"
	"github.com/aws/aws-sdk-go-v2/service/route53"
	"github.com/aws/aws-sdk-go-v2/service/route53resolver"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sts"

	awslib "awsinfra/internal/aws"
	"awsinfra/internal/mcp"
	awscfn "awsinfra/toolsets/aws/cloudformation"
	awscloudwatch "awsinfra/toolsets/aws/cloudwatch"
	awsec2 "awsinfra/toolsets/aws/ec2"
	awsecr "awsinfra/toolsets/aws/ecr"
	awseks "awsinfra/toolsets/aws/eks"
	awsiam "awsinfra/toolsets/aws/iam"
	awskms "awsinfra/toolsets/aws/kms"
	awslambda "awsinfra/toolsets/aws/lambda"
	awsrds "awsinfra/toolsets/aws/rds"
	awss3 "awsinfra/toolsets/aws/s3"
	awssts "awsinfra/toolsets/aws/sts"
	awsvpc "awsinfra/toolsets/aws/vpc"
)

const ID = "aws"

type Toolset struct {
	ctx mcp.ToolsetContext
}

type serviceGroup struct {
	name  string
	specs func() []mcp.ToolSpec
}

func New() *Toolset {
	return &Toolset{}
}

func (t *Toolset) ID() string {
	return ID
}

func (t *Toolset) Version() string {
	return "0.1.0"
}

func (t *Toolset) Init(ctx mcp.ToolsetContext) error {
	if ctx.Clients == nil {
		return errors.New("missing AWS client registry")
	}
	t.ctx = ctx
	return nil
}

// ServiceNames lists the service groups in registration order.
func ServiceNames() []string {
	groups := (&Toolset{}).groups()
	names := make([]string, 0, len(groups))
	for _, group := range groups {
		names = append(names, group.name)
	}
	return names
}

func (t *Toolset) groups() []serviceGroup {
	id := t.ID()
	return []serviceGroup{
		{"sts", func() []mcp.ToolSpec { return awssts.ToolSpecs(id, t.stsClient) }},
		{"ec2", func() []mcp.ToolSpec { return awsec2.ToolSpecs(id, t.ec2Client, t.asgClient, t.elbClient) }},
		{"vpc", func() []mcp.ToolSpec {
			return awsvpc.ToolSpecs(id, t.vpcClient, t.route53Client, t.resolverClient)
		}},
		{"rds", func() []mcp.ToolSpec { return awsrds.ToolSpecs(id, t.rdsClient) }},
		{"s3", func() []mcp.ToolSpec { return awss3.ToolSpecs(id, t.s3Client) }},
		{"lambda", func() []mcp.ToolSpec { return awslambda.ToolSpecs(id, t.lambdaClient) }},
		{"iam", func() []mcp.ToolSpec { return awsiam.ToolSpecs(id, t.iamClient) }},
		{"cloudformation", func() []mcp.ToolSpec { return awscfn.ToolSpecs(id, t.cfnClient) }},
		{"cloudwatch", func() []mcp.ToolSpec { return awscloudwatch.ToolSpecs(id, t.cloudwatchClient) }},
		{"ecr", func() []mcp.ToolSpec { return awsecr.ToolSpecs(id, t.ecrClient) }},
		{"eks", func() []mcp.ToolSpec { return awseks.ToolSpecs(id, t.eksClient) }},
		{"kms", func() []mcp.ToolSpec { return awskms.ToolSpecs(id, t.kmsClient) }},
	}
}

func (t *Toolset) Register(reg mcp.Registry) error {
	enabled, err := t.enabledServices()
	if err != nil {
		return err
	}
	for _, group := range t.groups() {
		if enabled != nil && !enabled[group.name] {
			continue
		}
		for _, tool := range group.specs() {
			tool = t.wrapListCache(tool)
			if err := reg.Add(tool); err != nil {
				return fmt.Errorf("register %s: %w", tool.Name, err)
			}
		}
	}
	return nil
}

// enabledServices returns nil when every group is enabled.
func (t *Toolset) enabledServices() (map[string]bool, error) {
	if t.ctx.Config == nil || len(t.ctx.Config.Services) == 0 {
		return nil, nil
	}
	known := map[string]bool{}
	for _, name := range ServiceNames() {
		known[name] = true
	}
	enabled := map[string]bool{}
	for _, name := range t.ctx.Config.Services {
		name = strings.ToLower(strings.TrimSpace(name))
		if !known[name] {
			return nil, fmt.Errorf("unknown service %q (known: %s)", name, strings.Join(ServiceNames(), ", "))
		}
		enabled[name] = true
	}
	return enabled, nil
}

func (t *Toolset) stsClient(ctx context.Context, region string) (awssts.STSAPI, string, error) {
	client, usedRegion, err := awslib.Client(ctx, t.ctx.Clients, "sts", region, func(cfg sdkaws.Config) *sts.Client {
		return sts.NewFromConfig(cfg)
	})
	if err != nil {
		return nil, "", err
	}
	return client, usedRegion, nil
}

func (t *Toolset) sharedEC2(ctx context.Context, region string) (*ec2.Client, string, error) {
	return awslib.Client(ctx, t.ctx.Clients, "ec2", region, func(cfg sdkaws.Config) *ec2.Client {
		return ec2.NewFromConfig(cfg)
	})
}

func (t *Toolset) ec2Client(ctx context.Context, region string) (awsec2.EC2API, string, error) {
	client, usedRegion, err := t.sharedEC2(ctx, region)
	if err != nil {
		return nil, "", err
	}
	return client, usedRegion, nil
}

func (t *Toolset) vpcClient(ctx context.Context, region string) (awsvpc.EC2API, string, error) {
	client, usedRegion, err := t.sharedEC2(ctx, region)
	if err != nil {
		return nil, "", err
	}
	return client, usedRegion, nil
}

func (t *Toolset) asgClient(ctx context.Context, region string) (awsec2.AutoScalingAPI, string, error) {
	client, usedRegion, err := awslib.Client(ctx, t.ctx.Clients, "autoscaling", region, func(cfg sdkaws.Config) *autoscaling.Client {
		return autoscaling.NewFromConfig(cfg)
	})
	if err != nil {
		return nil, "", err
	}
	return client, usedRegion, nil
}

func (t *Toolset) elbClient(ctx context.Context, region string) (awsec2.ELBAPI, string, error) {
	client, usedRegion, err := awslib.Client(ctx, t.ctx.Clients, "elbv2", region, func(cfg sdkaws.Config) *elasticloadbalancingv2.Client {
		return elasticloadbalancingv2.NewFromConfig(cfg)
	})
	if err != nil {
		return nil, "", err
	}
	return client, usedRegion, nil
}

func (t *Toolset) route53Client(ctx context.Context, region string) (awsvpc.Route53API, string, error) {
	client, usedRegion, err := awslib.Client(ctx, t.ctx.Clients, "route53", region, func(cfg sdkaws.Config) *route53.Client {
		return route53.NewFromConfig(cfg)
	})
	if err != nil {
		return nil, "", err
	}
	return client, usedRegion, nil
}

func (t *Toolset) resolverClient(ctx context.Context, region string) (awsvpc.ResolverAPI, string, error) {
	client, usedRegion, err := awslib.Client(ctx, t.ctx.Clients, "route53resolver", region, func(cfg sdkaws.Config) *route53resolver.Client {
		return route53resolver.NewFromConfig(cfg)
	})
	if err != nil {
		return nil, "", err
	}
	return client, usedRegion, nil
}

func (t *Toolset) rdsClient(ctx context.Context, region string) (awsrds.RDSAPI, string, error) {
	client, usedRegion, err := awslib.Client(ctx, t.ctx.Clients, "rds", region, func(cfg sdkaws.Config) *rds.Client {
		return rds.NewFromConfig(cfg)
	})
	if err != nil {
		return nil, "", err
	}
	return client, usedRegion, nil
}

func (t *Toolset) s3Client(ctx context.Context, region string) (awss3.S3API, string, error) {
	client, usedRegion, err := awslib.Client(ctx, t.ctx.Clients, "s3", region, func(cfg sdkaws.Config) *s3.Client {
		return s3.NewFromConfig(cfg)
	})
	if err != nil {
		return nil, "", err
	}
	return client, usedRegion, nil
}

func (t *Toolset) lambdaClient(ctx context.Context, region string) (awslambda.LambdaAPI, string, error) {
	client, usedRegion, err := awslib.Client(ctx, t.ctx.Clients, "lambda", region, func(cfg sdkaws.Config) *lambda.Client {
		return lambda.NewFromConfig(cfg)
	})
	if err != nil {
		return nil, "", err
	}
	return client, usedRegion, nil
}

func (t *Toolset) iamClient(ctx context.Context, region string) (awsiam.IAMAPI, string, error) {
	client, usedRegion, err := awslib.Client(ctx, t.ctx.Clients, "iam", region, func(cfg sdkaws.Config) *iam.Client {
		return iam.NewFromConfig(cfg)
	})
	if err != nil {
		return nil, "", err
	}
	return client, usedRegion, nil
}

func (t *Toolset) cfnClient(ctx context.Context, region string) (awscfn.CloudFormationAPI, string, error) {
	client, usedRegion, err := awslib.Client(ctx, t.ctx.Clients, "cloudformation", region, func(cfg sdkaws.Config) *cloudformation.Client {
		return cloudformation.NewFromConfig(cfg)
	})
	if err != nil {
		return nil, "", err
	}
	return client, usedRegion, nil
}

func (t *Toolset) cloudwatchClient(ctx context.Context, region string) (awscloudwatch.CloudWatchAPI, string, error) {
	client, usedRegion, err := awslib.Client(ctx, t.ctx.Clients, "cloudwatch", region, func(cfg sdkaws.Config) *cloudwatch.Client {
		return cloudwatch.NewFromConfig(cfg)
	})
	if err != nil {
		return nil, "", err
	}
	return client, usedRegion, nil
}

func (t *Toolset) ecrClient(ctx context.Context, region string) (awsecr.ECRAPI, string, error) {
	client, usedRegion, err := awslib.Client(ctx, t.ctx.Clients, "ecr", region, func(cfg sdkaws.Config) *ecr.Client {
		return ecr.NewFromConfig(cfg)
	})
	if err != nil {
		return nil, "", err
	}
	return client, usedRegion, nil
}

func (t *Toolset) eksClient(ctx context.Context, region string) (awseks.EKSAPI, string, error) {
	client, usedRegion, err := awslib.Client(ctx, t.ctx.Clients, "eks", region, func(cfg sdkaws.Config) *eks.Client {
		return eks.NewFromConfig(cfg)
	})
	if err != nil {
		return nil, "", err
	}
	return client, usedRegion, nil
}

func (t *Toolset) kmsClient(ctx context.Context, region string) (awskms.KMSAPI, string, error) {
	client, usedRegion, err := awslib.Client(ctx, t.ctx.Clients, "kms", region, func(cfg sdkaws.Config) *kms.Client {
		return kms.NewFromConfig(cfg)
	})
	if err != nil {
		return nil, "", err
	}
	return client, usedRegion, nil
}
