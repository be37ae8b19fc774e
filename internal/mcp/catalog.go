package mcp

import (
	"errors"
	"fmt"
	"sort"
)

type ToolsetFactory func() Toolset

// ToolsetCatalog maps toolset ids to factories. The entry point builds one
// and passes it to the server; nothing registers itself.
type ToolsetCatalog struct {
	factories map[string]ToolsetFactory
}

func NewToolsetCatalog() *ToolsetCatalog {
	return &ToolsetCatalog{factories: map[string]ToolsetFactory{}}
}

func (c *ToolsetCatalog) Register(id string, factory ToolsetFactory) error {
	if id == "" {
		return errors.New("toolset id required")
	}
	if factory == nil {
		return errors.New("toolset factory required")
	}
	if _, exists := c.factories[id]; exists {
		return fmt.Errorf("toolset %s already registered", id)
	}
	c.factories[id] = factory
	return nil
}

func (c *ToolsetCatalog) Factory(id string) (ToolsetFactory, bool) {
	if c == nil {
		return nil, false
	}
	factory, ok := c.factories[id]
	return factory, ok
}

func (c *ToolsetCatalog) IDs() []string {
	if c == nil {
		return nil
	}
	ids := make([]string, 0, len(c.factories))
	for id := range c.factories {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Build initializes and registers every listed toolset in order.
func (c *ToolsetCatalog) Build(ids []string, ctx ToolsetContext, reg Registry) error {
	for _, id := range ids {
		factory, ok := c.Factory(id)
		if !ok {
			return fmt.Errorf("unknown toolset: %s", id)
		}
		toolset := factory()
		if err := toolset.Init(ctx); err != nil {
			return fmt.Errorf("init toolset %s: %w", id, err)
		}
		if err := toolset.Register(reg); err != nil {
			return fmt.Errorf("register toolset %s: %w", id, err)
		}
	}
	return nil
}
