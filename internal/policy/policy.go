package policy

import (
	"fmt"

	"awsinfra/internal/config"
)

// Authorizer applies the [policy] allow and deny lists to tool calls.
type Authorizer struct {
	allowed map[string]struct{}
	denied  map[string]struct{}
}

func NewAuthorizer(cfg config.PolicyConfig) *Authorizer {
	return &Authorizer{allowed: toSet(cfg.AllowedTools), denied: toSet(cfg.DeniedTools)}
}

// AuthorizeTool rejects denied tools, and tools missing from a non-empty
// allow list. Entries may name a tool or a whole toolset.
func (a *Authorizer) AuthorizeTool(toolsetID, toolName string) error {
	if a == nil {
		return nil
	}
	if contains(a.denied, toolsetID, toolName) {
		return fmt.Errorf("tool %s is denied by policy", toolName)
	}
	if len(a.allowed) > 0 && !contains(a.allowed, toolsetID, toolName) {
		return fmt.Errorf("tool %s is not allowed by policy", toolName)
	}
	return nil
}

func contains(set map[string]struct{}, toolsetID, toolName string) bool {
	if _, ok := set[toolName]; ok {
		return true
	}
	_, ok := set[toolsetID]
	return ok && toolsetID != ""
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, value := range values {
		if value != "" {
			set[value] = struct{}{}
		}
	}
	return set
}
