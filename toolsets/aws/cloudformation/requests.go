package awscfn

import (
	"errors"

	"awsinfra/internal/mcp"
)

type createStackRequest struct {
	StackName    string            `json:"stack_name" valid:"required~stack_name is required"`
	TemplateBody string            `json:"template_body"`
	TemplateURL  string            `json:"template_url" valid:"url~template_url must be a URL"`
	Parameters   map[string]string `json:"parameters" valid:"-"`
	Capabilities []string          `json:"capabilities"`
	Tags         map[string]string `json:"tags" valid:"-"`
}

func (r *createStackRequest) Validate() error {
	if err := mcp.ValidateStruct(r); err != nil {
		return err
	}
	if (r.TemplateBody == "") == (r.TemplateURL == "") {
		return errors.New("exactly one of template_body or template_url is required")
	}
	return nil
}

type listStacksRequest struct {
	StackStatusFilter []string `json:"stack_status_filter"`
}

type stackNameRequest struct {
	StackName string `json:"stack_name" valid:"required~stack_name is required"`
}

func (r *stackNameRequest) Validate() error {
	return mcp.ValidateStruct(r)
}
