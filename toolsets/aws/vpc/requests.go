package awsvpc

import (
	"errors"
	"fmt"
	"strings"

	"github.com/asaskevich/govalidator"

	"awsinfra/internal/mcp"
)

type createVPCRequest struct {
	CidrBlock          string            `json:"cidr_block" valid:"required~cidr_block is required"`
	EnableDNSHostnames bool              `json:"enable_dns_hostnames"`
	EnableDNSSupport   bool              `json:"enable_dns_support"`
	Tags               map[string]string `json:"tags" valid:"-"`
}

func newCreateVPCRequest() createVPCRequest {
	return createVPCRequest{EnableDNSHostnames: true, EnableDNSSupport: true}
}

func (r *createVPCRequest) Validate() error {
	if err := mcp.ValidateStruct(r); err != nil {
		return err
	}
	return checkCIDR("cidr_block", r.CidrBlock)
}

type vpcIDRequest struct {
	VpcID string `json:"vpc_id" valid:"required~vpc_id is required"`
}

func (r *vpcIDRequest) Validate() error {
	return mcp.ValidateStruct(r)
}

type listByVPCRequest struct {
	VpcID string `json:"vpc_id"`
}

type createSubnetRequest struct {
	VpcID               string            `json:"vpc_id" valid:"required~vpc_id is required"`
	CidrBlock           string            `json:"cidr_block" valid:"required~cidr_block is required"`
	AvailabilityZone    string            `json:"availability_zone"`
	MapPublicIPOnLaunch bool              `json:"map_public_ip_on_launch"`
	Tags                map[string]string `json:"tags" valid:"-"`
}

func (r *createSubnetRequest) Validate() error {
	if err := mcp.ValidateStruct(r); err != nil {
		return err
	}
	return checkCIDR("cidr_block", r.CidrBlock)
}

type subnetIDRequest struct {
	SubnetID string `json:"subnet_id" valid:"required~subnet_id is required"`
}

func (r *subnetIDRequest) Validate() error {
	return mcp.ValidateStruct(r)
}

type createSecurityGroupRequest struct {
	GroupName   string            `json:"group_name" valid:"required~group_name is required"`
	Description string            `json:"description" valid:"required~description is required"`
	VpcID       string            `json:"vpc_id" valid:"required~vpc_id is required"`
	Tags        map[string]string `json:"tags" valid:"-"`
}

func (r *createSecurityGroupRequest) Validate() error {
	return mcp.ValidateStruct(r)
}

const (
	ruleIngress = "ingress"
	ruleEgress  = "egress"
)

type securityGroupRuleRequest struct {
	GroupID               string   `json:"group_id" valid:"required~group_id is required"`
	IPProtocol            string   `json:"ip_protocol" valid:"required~ip_protocol is required"`
	FromPort              *int32   `json:"from_port"`
	ToPort                *int32   `json:"to_port"`
	CidrBlocks            []string `json:"cidr_blocks"`
	SourceSecurityGroupID string   `json:"source_security_group_id"`
	RuleType              string   `json:"rule_type"`
}

func newSecurityGroupRuleRequest() securityGroupRuleRequest {
	return securityGroupRuleRequest{RuleType: ruleIngress}
}

func (r *securityGroupRuleRequest) Validate() error {
	if err := mcp.ValidateStruct(r); err != nil {
		return err
	}
	r.RuleType = strings.ToLower(strings.TrimSpace(r.RuleType))
	if r.RuleType != ruleIngress && r.RuleType != ruleEgress {
		return fmt.Errorf("rule_type must be %q or %q, got %q", ruleIngress, ruleEgress, r.RuleType)
	}
	if len(r.CidrBlocks) == 0 && r.SourceSecurityGroupID == "" {
		return errors.New("cidr_blocks or source_security_group_id is required")
	}
	for _, cidr := range r.CidrBlocks {
		if err := checkCIDR("cidr_blocks", cidr); err != nil {
			return err
		}
	}
	if r.FromPort != nil && r.ToPort != nil && *r.FromPort > *r.ToPort && *r.FromPort != -1 {
		return fmt.Errorf("from_port %d is greater than to_port %d", *r.FromPort, *r.ToPort)
	}
	return nil
}

type groupIDRequest struct {
	GroupID string `json:"group_id" valid:"required~group_id is required"`
}

func (r *groupIDRequest) Validate() error {
	return mcp.ValidateStruct(r)
}

func checkCIDR(field, value string) error {
	if !govalidator.IsCIDR(value) {
		return fmt.Errorf("%s %q is not a valid CIDR block", field, value)
	}
	return nil
}
