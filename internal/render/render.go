package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/gosuri/uitable"
	"sigs.k8s.io/yaml"
)

// Format selects how a tool envelope is printed.
type Format string

const (
	JSON  Format = "json"
	Table Format = "table"
	YAML  Format = "yaml"
)

// Formats lists the accepted --output values.
var Formats = []string{string(JSON), string(Table), string(YAML)}

func ParseFormat(value string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(value))) {
	case "", JSON:
		return JSON, nil
	case Table:
		return Table, nil
	case YAML:
		return YAML, nil
	}
	return "", fmt.Errorf("unsupported output format %q (want one of %s)", value, strings.Join(Formats, ", "))
}

type column struct {
	header string
	field  string
}

// layout is the table for one list payload key.
type layout struct {
	key     string
	noun    string
	columns []column
}

// layouts is checked in order; the first key present in the envelope wins.
var layouts = []layout{
	{key: "instances", noun: "EC2 instances", columns: []column{
		{"Instance ID", "InstanceId"}, {"Type", "InstanceType"}, {"State", "State"},
		{"Public IP", "PublicIpAddress"}, {"Private IP", "PrivateIpAddress"},
	}},
	{key: "vpcs", noun: "VPCs", columns: []column{
		{"VPC ID", "VpcId"}, {"CIDR Block", "CidrBlock"}, {"State", "State"}, {"Default", "IsDefault"},
	}},
	{key: "buckets", noun: "S3 buckets", columns: []column{
		{"Bucket Name", "Name"}, {"Creation Date", "CreationDate"},
	}},
	{key: "functions", noun: "Lambda functions", columns: []column{
		{"Function Name", "FunctionName"}, {"Runtime", "Runtime"}, {"Memory", "MemorySize"}, {"Timeout", "Timeout"},
	}},
	{key: "roles", noun: "IAM roles", columns: []column{
		{"Role Name", "RoleName"}, {"Creation Date", "CreateDate"},
	}},
	{key: "regions", noun: "regions", columns: []column{
		{"Region Name", "RegionName"}, {"Endpoint", "Endpoint"},
	}},
	{key: "availability_zones", noun: "availability zones", columns: []column{
		{"Zone Name", "ZoneName"}, {"State", "State"}, {"Region", "RegionName"},
	}},
	{key: "stacks", noun: "CloudFormation stacks", columns: []column{
		{"Stack Name", "StackName"}, {"Status", "StackStatus"}, {"Created", "CreationTime"},
	}},
	{key: "subnets", noun: "subnets", columns: []column{
		{"Subnet ID", "SubnetId"}, {"VPC ID", "VpcId"}, {"CIDR Block", "CidrBlock"}, {"Zone", "AvailabilityZone"},
	}},
	{key: "security_groups", noun: "security groups", columns: []column{
		{"Group ID", "GroupId"}, {"Name", "GroupName"}, {"VPC ID", "VpcId"},
	}},
	{key: "db_instances", noun: "RDS instances", columns: []column{
		{"Identifier", "DBInstanceIdentifier"}, {"Class", "DBInstanceClass"}, {"Engine", "Engine"}, {"Status", "DBInstanceStatus"},
	}},
}

// Write prints envelope to w. Table output falls back to JSON for payloads
// that have no table layout.
func Write(w io.Writer, format Format, envelope map[string]any) error {
	switch format {
	case YAML:
		out, err := yaml.Marshal(envelope)
		if err != nil {
			return fmt.Errorf("yaml encode: %w", err)
		}
		_, err = w.Write(out)
		return err
	case Table:
		return writeTable(w, envelope)
	default:
		return writeJSON(w, envelope)
	}
}

func writeJSON(w io.Writer, envelope map[string]any) error {
	out, err := json.MarshalIndent(envelope, "", "  ")
	if err != nil {
		return fmt.Errorf("json encode: %w", err)
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}

func writeTable(w io.Writer, envelope map[string]any) error {
	if failed, _ := envelope["error"].(bool); failed {
		msg, _ := envelope["error_message"].(string)
		if msg == "" {
			msg = "Unknown error"
		}
		_, err := fmt.Fprintf(w, "Error: %s\n", msg)
		return err
	}
	for _, l := range layouts {
		raw, ok := envelope[l.key]
		if !ok {
			continue
		}
		rows, ok := records(raw)
		if !ok {
			break
		}
		if len(rows) == 0 {
			_, err := fmt.Fprintf(w, "No %s found.\n", l.noun)
			return err
		}
		table := uitable.New()
		table.MaxColWidth = 50
		table.Wrap = true
		headers := make([]interface{}, len(l.columns))
		for i, col := range l.columns {
			headers[i] = col.header
		}
		table.AddRow(headers...)
		for _, row := range rows {
			cells := make([]interface{}, len(l.columns))
			for i, col := range l.columns {
				cells[i] = cell(row[col.field])
			}
			table.AddRow(cells...)
		}
		_, err := fmt.Fprintln(w, table)
		return err
	}
	return writeJSON(w, envelope)
}

// records accepts both in-process payloads and decoded JSON.
func records(raw any) ([]map[string]any, bool) {
	switch items := raw.(type) {
	case []map[string]any:
		return items, true
	case []any:
		out := make([]map[string]any, 0, len(items))
		for _, item := range items {
			m, ok := item.(map[string]any)
			if !ok {
				return nil, false
			}
			out = append(out, m)
		}
		return out, true
	}
	return nil, false
}

func cell(value any) string {
	switch v := value.(type) {
	case nil:
		return "N/A"
	case string:
		if v == "" {
			return "N/A"
		}
		return v
	default:
		return fmt.Sprint(v)
	}
}
