package server

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"awsinfra/internal/audit"
	awslib "awsinfra/internal/aws"
	"awsinfra/internal/cache"
	"awsinfra/internal/config"
	"awsinfra/internal/log"
	aimcp "awsinfra/internal/mcp"
	"awsinfra/internal/policy"
	"awsinfra/internal/redact"
	awstools "awsinfra/toolsets/aws"
)

type Options struct {
	ConfigPath         string
	DropInDir          string
	Region             string
	Profile            string
	Toolsets           []string
	ReadOnly           bool
	DisableDestructive bool
	LogLevel           string
	Version            string
	Stderr             io.Writer
	// Transport defaults to stdio.
	Transport sdkmcp.Transport
	// Catalog defaults to DefaultCatalog.
	Catalog *aimcp.ToolsetCatalog
	// Clients replaces the registry built from config. Reloads keep it.
	Clients *awslib.Registry
}

// DefaultCatalog holds every toolset shipped with the binary.
func DefaultCatalog() *aimcp.ToolsetCatalog {
	catalog := aimcp.NewToolsetCatalog()
	_ = catalog.Register(awstools.ID, func() aimcp.Toolset { return awstools.New() })
	return catalog
}

func (o Options) overrides() config.Overrides {
	overrides := config.Overrides{}
	if o.Region != "" {
		overrides.Region = &o.Region
	}
	if o.Profile != "" {
		overrides.Profile = &o.Profile
	}
	if len(o.Toolsets) > 0 {
		overrides.Toolsets = &o.Toolsets
	}
	if o.ReadOnly {
		overrides.ReadOnly = &o.ReadOnly
	}
	if o.DisableDestructive {
		overrides.DisableDestructive = &o.DisableDestructive
	}
	if o.LogLevel != "" {
		overrides.LogLevel = &o.LogLevel
	}
	return overrides
}

// LoadConfig resolves the config path (flag, then AWSINFRA_CONFIG) and
// applies the option overrides on top of the file and drop-ins.
func LoadConfig(opts Options) (config.Config, error) {
	cfg, err := config.Load(config.Path(opts.ConfigPath), opts.DropInDir, opts.overrides())
	if err != nil {
		return cfg, fmt.Errorf("config load failed: %w", err)
	}
	return cfg, nil
}

// Runtime is everything a tool call needs, built from one config snapshot.
type Runtime struct {
	Config   config.Config
	Context  aimcp.ToolContext
	Registry *aimcp.ToolRegistry
}

// Call invokes a tool in-process and returns its envelope.
func (r *Runtime) Call(ctx context.Context, tool string, args map[string]any) (map[string]any, error) {
	return r.Context.Invoker.Call(ctx, tool, args)
}

// ToolNames lists the registered tools in name order.
func (r *Runtime) ToolNames() []string {
	return r.Registry.Names()
}

// BuildRuntime wires the shared components and registers cfg.Toolsets.
// A nil clients registry is built from the config's region, profile and
// retry settings.
func BuildRuntime(cfg config.Config, catalog *aimcp.ToolsetCatalog, clients *awslib.Registry, errOut io.Writer) (*Runtime, error) {
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	if clients == nil {
		clients = newClients(cfg)
	}
	reg := aimcp.NewRegistry(&cfg)
	toolCtx := aimcp.ToolContext{
		Config:   &cfg,
		Clients:  clients,
		Policy:   policy.NewAuthorizer(cfg.Policy),
		Redactor: redact.New(),
		Audit:    audit.NewLogger(errOut),
		Cache:    cache.NewStore(),
		Registry: reg,
	}
	toolCtx.Invoker = aimcp.NewToolInvoker(reg, toolCtx)
	if err := catalog.Build(cfg.Toolsets, toolCtx, reg); err != nil {
		return nil, err
	}
	return &Runtime{Config: cfg, Context: toolCtx, Registry: reg}, nil
}

func newClients(cfg config.Config) *awslib.Registry {
	return awslib.NewRegistry(awslib.Options{
		Region:      cfg.Region,
		Profile:     cfg.Profile,
		MaxAttempts: cfg.AWS.MaxAttempts,
	})
}

// staleTools returns the names in previous that next no longer registers.
func staleTools(previous, next []string) []string {
	keep := make(map[string]bool, len(next))
	for _, name := range next {
		keep[name] = true
	}
	var stale []string
	for _, name := range previous {
		if !keep[name] {
			stale = append(stale, name)
		}
	}
	return stale
}

// sameSession reports whether two configs would load the same AWS session,
// in which case a reload keeps the verified registry and its clients.
func sameSession(a, b config.Config) bool {
	return a.Region == b.Region && a.Profile == b.Profile && a.AWS.MaxAttempts == b.AWS.MaxAttempts
}

func Run(ctx context.Context, opts Options) error {
	errOut := opts.Stderr
	if errOut == nil {
		errOut = os.Stderr
	}
	cfg, err := LoadConfig(opts)
	if err != nil {
		return err
	}
	log.Init(errOut, cfg.LogLevel)

	clients := opts.Clients
	if clients == nil {
		clients = newClients(cfg)
	}
	runtime, err := BuildRuntime(cfg, opts.Catalog, clients, errOut)
	if err != nil {
		return fmt.Errorf("init failed: %w", err)
	}
	server := sdkmcp.NewServer(&sdkmcp.Implementation{Name: "awsinfra", Version: opts.Version}, nil)
	toolNames, err := aimcp.RegisterSDKTools(server, runtime.Registry, runtime.Context)
	if err != nil {
		return fmt.Errorf("tool registration failed: %w", err)
	}
	log.WithFields(log.Fields{"tools": len(toolNames), "region": clients.Region("")}).Info("awsinfra MCP server starting")

	var mu sync.Mutex
	reload := func() {
		mu.Lock()
		defer mu.Unlock()
		next, err := LoadConfig(opts)
		if err != nil {
			log.WithError(err).Error("config reload failed")
			return
		}
		log.SetLevel(next.LogLevel)
		nextClients := clients
		if opts.Clients == nil && !sameSession(cfg, next) {
			nextClients = newClients(next)
		}
		nextRuntime, err := BuildRuntime(next, opts.Catalog, nextClients, errOut)
		if err != nil {
			log.WithError(err).Error("reload init failed")
			return
		}
		tools, err := aimcp.BuildSDKTools(nextRuntime.Registry, nextRuntime.Context)
		if err != nil {
			log.WithError(err).Error("tool registration failed")
			return
		}
		nextNames := aimcp.AddSDKTools(server, tools)
		if stale := staleTools(toolNames, nextNames); len(stale) > 0 {
			server.RemoveTools(stale...)
		}
		toolNames = nextNames
		cfg, clients = next, nextClients
		log.WithFields(log.Fields{"tools": len(toolNames)}).Info("configuration reloaded")
	}

	reloadCh := make(chan os.Signal, 1)
	notifyReload(reloadCh)
	defer stopReload(reloadCh)
	go func() {
		for range reloadCh {
			reload()
		}
	}()

	transport := opts.Transport
	if transport == nil {
		transport = &sdkmcp.StdioTransport{}
	}
	if err := server.Run(ctx, transport); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}
