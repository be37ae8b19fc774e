package awscloudwatch

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"

	"awsinfra/internal/mcp"
	"awsinfra/toolsets/aws/shape"
)

type CloudWatchAPI interface {
	DescribeAlarms(ctx context.Context, params *cloudwatch.DescribeAlarmsInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.DescribeAlarmsOutput, error)
	ListMetrics(ctx context.Context, params *cloudwatch.ListMetricsInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.ListMetricsOutput, error)
}

var _ CloudWatchAPI = (*cloudwatch.Client)(nil)

type CloudWatchFunc func(context.Context, string) (CloudWatchAPI, string, error)

var alarmStates = []string{
	string(cwtypes.StateValueOk),
	string(cwtypes.StateValueAlarm),
	string(cwtypes.StateValueInsufficientData),
}

type listAlarmsRequest struct {
	StateValue string `json:"state_value" valid:"in(OK|ALARM|INSUFFICIENT_DATA)~state_value must be OK, ALARM or INSUFFICIENT_DATA"`
}

func (r *listAlarmsRequest) Validate() error {
	return mcp.ValidateStruct(r)
}

type metricsRequest struct {
	Namespace string `json:"namespace" valid:"required~namespace is required"`
}

func (r *metricsRequest) Validate() error {
	return mcp.ValidateStruct(r)
}

func ToolSpecs(toolsetID string, cwClient CloudWatchFunc) []mcp.ToolSpec {
	return []mcp.ToolSpec{
		{
			Name:        "list_cloudwatch_alarms",
			Description: "List CloudWatch metric alarms, optionally by state.",
			ToolsetID:   toolsetID,
			InputSchema: shape.Object(map[string]any{
				"state_value": shape.Enum("Only return alarms in this state.", alarmStates...),
			}),
			Safety: mcp.SafetyReadOnly,
			Handler: func(ctx context.Context, req mcp.ToolRequest) (mcp.ToolResult, error) {
				var in listAlarmsRequest
				if err := mcp.DecodeRequest(req.Arguments, &in); err != nil {
					return mcp.ToolResult{}, err
				}
				client, usedRegion, err := cwClient(ctx, req.Region())
				if err != nil {
					return mcp.ToolResult{}, err
				}
				input := &cloudwatch.DescribeAlarmsInput{}
				if in.StateValue != "" {
					input.StateValue = cwtypes.StateValue(in.StateValue)
				}
				alarms := []map[string]any{}
				paginator := cloudwatch.NewDescribeAlarmsPaginator(client, input)
				for paginator.HasMorePages() {
					page, err := paginator.NextPage(ctx)
					if err != nil {
						return mcp.ToolResult{}, err
					}
					for _, alarm := range page.MetricAlarms {
						alarms = append(alarms, summarizeAlarm(alarm))
					}
				}
				return mcp.ToolResult{
					Data: map[string]any{
						"region": usedRegion,
						"alarms": alarms,
						"count":  len(alarms),
					},
					Metadata: mcp.ToolMetadata{Region: usedRegion},
				}, nil
			},
		},
		{
			Name:        "get_cloudwatch_metrics",
			Description: "List the metrics published in a CloudWatch namespace.",
			ToolsetID:   toolsetID,
			InputSchema: shape.Object(map[string]any{
				"namespace": shape.String("Namespace such as AWS/EC2 or AWS/RDS."),
			}, "namespace"),
			Safety: mcp.SafetyReadOnly,
			Handler: func(ctx context.Context, req mcp.ToolRequest) (mcp.ToolResult, error) {
				var in metricsRequest
				if err := mcp.DecodeRequest(req.Arguments, &in); err != nil {
					return mcp.ToolResult{}, err
				}
				client, usedRegion, err := cwClient(ctx, req.Region())
				if err != nil {
					return mcp.ToolResult{}, err
				}
				metrics := []map[string]any{}
				paginator := cloudwatch.NewListMetricsPaginator(client, &cloudwatch.ListMetricsInput{Namespace: aws.String(in.Namespace)})
				for paginator.HasMorePages() {
					page, err := paginator.NextPage(ctx)
					if err != nil {
						return mcp.ToolResult{}, err
					}
					for _, metric := range page.Metrics {
						metrics = append(metrics, summarizeMetric(metric))
					}
				}
				return mcp.ToolResult{
					Data: map[string]any{
						"region":    usedRegion,
						"namespace": in.Namespace,
						"metrics":   metrics,
						"count":     len(metrics),
					},
					Metadata: mcp.ToolMetadata{Region: usedRegion},
				}, nil
			},
		},
	}
}

func summarizeAlarm(alarm cwtypes.MetricAlarm) map[string]any {
	out := map[string]any{
		"AlarmName":             aws.ToString(alarm.AlarmName),
		"AlarmArn":              aws.ToString(alarm.AlarmArn),
		"StateValue":            string(alarm.StateValue),
		"StateReason":           aws.ToString(alarm.StateReason),
		"StateUpdatedTimestamp": shape.Time(alarm.StateUpdatedTimestamp),
		"MetricName":            aws.ToString(alarm.MetricName),
		"Namespace":             aws.ToString(alarm.Namespace),
		"ComparisonOperator":    string(alarm.ComparisonOperator),
		"Dimensions":            dimensions(alarm.Dimensions),
	}
	if alarm.Threshold != nil {
		out["Threshold"] = aws.ToFloat64(alarm.Threshold)
	}
	return out
}

func summarizeMetric(metric cwtypes.Metric) map[string]any {
	return map[string]any{
		"Namespace":  aws.ToString(metric.Namespace),
		"MetricName": aws.ToString(metric.MetricName),
		"Dimensions": dimensions(metric.Dimensions),
	}
}

func dimensions(in []cwtypes.Dimension) []map[string]string {
	out := make([]map[string]string, 0, len(in))
	for _, dim := range in {
		out = append(out, map[string]string{"Name": aws.ToString(dim.Name), "Value": aws.ToString(dim.Value)})
	}
	return out
}
