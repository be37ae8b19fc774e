package awsrds

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/rds"
	rdstypes "github.com/aws/aws-sdk-go-v2/service/rds/types"

	"awsinfra/internal/mcp"
	"awsinfra/toolsets/aws/shape"
)

const snapshotTimeLayout = "20060102150405"

type Service struct {
	rdsClient RDSFunc
	toolsetID string
	now       func() time.Time
}

func ToolSpecs(toolsetID string, rdsClient RDSFunc) []mcp.ToolSpec {
	return newService(toolsetID, rdsClient, time.Now).specs()
}

func newService(toolsetID string, rdsClient RDSFunc, now func() time.Time) *Service {
	return &Service{rdsClient: rdsClient, toolsetID: toolsetID, now: now}
}

func (s *Service) specs() []mcp.ToolSpec {
	return []mcp.ToolSpec{
		{
			Name:        "create_rds_instance",
			Description: "Create an RDS database instance and tag it.",
			ToolsetID:   s.toolsetID,
			InputSchema: schemaCreateInstance(),
			Safety:      mcp.SafetyWrite,
			Handler:     s.handleCreateInstance,
		},
		{
			Name:        "list_rds_instances",
			Description: "List RDS database instances.",
			ToolsetID:   s.toolsetID,
			InputSchema: shape.Object(nil),
			Safety:      mcp.SafetyReadOnly,
			Handler:     s.handleListInstances,
		},
		{
			Name:        "delete_rds_instance",
			Description: "Delete an RDS database instance, optionally with a final snapshot.",
			ToolsetID:   s.toolsetID,
			InputSchema: schemaDeleteInstance(),
			Safety:      mcp.SafetyDestructive,
			Handler:     s.handleDeleteInstance,
		},
	}
}

func (s *Service) handleCreateInstance(ctx context.Context, req mcp.ToolRequest) (mcp.ToolResult, error) {
	in := newCreateInstanceRequest()
	if err := mcp.DecodeRequest(req.Arguments, &in); err != nil {
		return mcp.ToolResult{}, err
	}
	client, usedRegion, err := s.rdsClient(ctx, req.Region())
	if err != nil {
		return mcp.ToolResult{}, err
	}
	input := &rds.CreateDBInstanceInput{
		DBInstanceIdentifier:  aws.String(in.DBInstanceIdentifier),
		DBInstanceClass:       aws.String(in.DBInstanceClass),
		Engine:                aws.String(in.Engine),
		MasterUsername:        aws.String(in.MasterUsername),
		MasterUserPassword:    aws.String(in.MasterUserPassword),
		AllocatedStorage:      aws.Int32(in.AllocatedStorage),
		BackupRetentionPeriod: aws.Int32(in.BackupRetentionPeriod),
		MultiAZ:               aws.Bool(in.MultiAZ),
		PubliclyAccessible:    aws.Bool(in.PubliclyAccessible),
	}
	if len(in.VpcSecurityGroupIDs) > 0 {
		input.VpcSecurityGroupIds = in.VpcSecurityGroupIDs
	}
	if in.DBSubnetGroupName != "" {
		input.DBSubnetGroupName = aws.String(in.DBSubnetGroupName)
	}
	out, err := client.CreateDBInstance(ctx, input)
	if err != nil {
		return mcp.ToolResult{}, err
	}
	if out.DBInstance == nil {
		return mcp.ToolResult{}, fmt.Errorf("create db instance returned no instance")
	}
	arn := aws.ToString(out.DBInstance.DBInstanceArn)
	if len(in.Tags) > 0 {
		tags := make([]rdstypes.Tag, 0, len(in.Tags))
		for _, key := range shape.SortedKeys(in.Tags) {
			tags = append(tags, rdstypes.Tag{Key: aws.String(key), Value: aws.String(in.Tags[key])})
		}
		if _, err := client.AddTagsToResource(ctx, &rds.AddTagsToResourceInput{ResourceName: aws.String(arn), Tags: tags}); err != nil {
			return mcp.ToolResult{}, err
		}
	}
	return mcp.ToolResult{
		Data: map[string]any{
			"region":      usedRegion,
			"db_instance": summarizeInstance(*out.DBInstance),
		},
		Metadata: mcp.ToolMetadata{Region: usedRegion, Resources: []string{in.DBInstanceIdentifier}},
	}, nil
}

func (s *Service) handleListInstances(ctx context.Context, req mcp.ToolRequest) (mcp.ToolResult, error) {
	client, usedRegion, err := s.rdsClient(ctx, req.Region())
	if err != nil {
		return mcp.ToolResult{}, err
	}
	instances := []map[string]any{}
	paginator := rds.NewDescribeDBInstancesPaginator(client, &rds.DescribeDBInstancesInput{})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return mcp.ToolResult{}, err
		}
		for _, db := range page.DBInstances {
			instances = append(instances, summarizeInstance(db))
		}
	}
	return mcp.ToolResult{
		Data: map[string]any{
			"region":       usedRegion,
			"db_instances": instances,
			"count":        len(instances),
		},
		Metadata: mcp.ToolMetadata{Region: usedRegion},
	}, nil
}

func (s *Service) handleDeleteInstance(ctx context.Context, req mcp.ToolRequest) (mcp.ToolResult, error) {
	in := newDeleteInstanceRequest()
	if err := mcp.DecodeRequest(req.Arguments, &in); err != nil {
		return mcp.ToolResult{}, err
	}
	client, usedRegion, err := s.rdsClient(ctx, req.Region())
	if err != nil {
		return mcp.ToolResult{}, err
	}
	input := &rds.DeleteDBInstanceInput{
		DBInstanceIdentifier: aws.String(in.DBInstanceIdentifier),
		SkipFinalSnapshot:    aws.Bool(in.SkipFinalSnapshot),
	}
	if !in.SkipFinalSnapshot {
		input.FinalDBSnapshotIdentifier = aws.String(finalSnapshotID(in.DBInstanceIdentifier, s.now()))
	}
	out, err := client.DeleteDBInstance(ctx, input)
	if err != nil {
		return mcp.ToolResult{}, err
	}
	data := map[string]any{"region": usedRegion}
	if out.DBInstance != nil {
		data["db_instance"] = summarizeInstance(*out.DBInstance)
	}
	if input.FinalDBSnapshotIdentifier != nil {
		data["final_snapshot_identifier"] = aws.ToString(input.FinalDBSnapshotIdentifier)
	}
	return mcp.ToolResult{
		Data:     data,
		Metadata: mcp.ToolMetadata{Region: usedRegion, Resources: []string{in.DBInstanceIdentifier}},
	}, nil
}

func finalSnapshotID(identifier string, at time.Time) string {
	return fmt.Sprintf("%s-final-snapshot-%s", identifier, at.Format(snapshotTimeLayout))
}

func summarizeInstance(db rdstypes.DBInstance) map[string]any {
	out := map[string]any{
		"DBInstanceIdentifier": aws.ToString(db.DBInstanceIdentifier),
		"DBInstanceArn":        aws.ToString(db.DBInstanceArn),
		"DBInstanceClass":      aws.ToString(db.DBInstanceClass),
		"Engine":               aws.ToString(db.Engine),
		"EngineVersion":        aws.ToString(db.EngineVersion),
		"DBInstanceStatus":     aws.ToString(db.DBInstanceStatus),
		"AllocatedStorage":     aws.ToInt32(db.AllocatedStorage),
		"MultiAZ":              aws.ToBool(db.MultiAZ),
		"PubliclyAccessible":   aws.ToBool(db.PubliclyAccessible),
		"InstanceCreateTime":   shape.Time(db.InstanceCreateTime),
		"Endpoint":             "",
		"Port":                 int32(0),
	}
	if db.Endpoint != nil {
		out["Endpoint"] = aws.ToString(db.Endpoint.Address)
		out["Port"] = aws.ToInt32(db.Endpoint.Port)
	}
	return out
}
