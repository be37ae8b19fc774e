package aws

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

// Loader produces the base SDK configuration for the session.
type Loader func(ctx context.Context) (sdkaws.Config, error)

// Verifier checks that a loaded configuration can reach AWS.
type Verifier func(ctx context.Context, cfg sdkaws.Config) (Identity, error)

type Identity struct {
	Account string `json:"Account"`
	Arn     string `json:"Arn"`
	UserID  string `json:"UserId"`
}

type clientKey struct {
	service string
	region  string
}

// Registry hands out one SDK client per (service, region) pair. The session
// behind those clients is set up and verified at most once.
type Registry struct {
	mu            sync.Mutex
	load          Loader
	verify        Verifier
	defaultRegion string

	ready    bool
	base     sdkaws.Config
	identity Identity
	initErr  error
	clients  map[clientKey]any
}

func NewRegistry(opts Options) *Registry {
	return NewRegistryWith(func(ctx context.Context) (sdkaws.Config, error) {
		return LoadConfig(ctx, opts)
	}, VerifyCallerIdentity, opts.Region)
}

func NewRegistryWith(load Loader, verify Verifier, defaultRegion string) *Registry {
	if verify == nil {
		verify = VerifyCallerIdentity
	}
	return &Registry{
		load:          load,
		verify:        verify,
		defaultRegion: defaultRegion,
		clients:       map[clientKey]any{},
	}
}

// VerifyCallerIdentity is the default Verifier and issues one STS
// GetCallerIdentity call.
func VerifyCallerIdentity(ctx context.Context, cfg sdkaws.Config) (Identity, error) {
	out, err := sts.NewFromConfig(cfg).GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return Identity{}, err
	}
	return Identity{
		Account: sdkaws.ToString(out.Account),
		Arn:     sdkaws.ToString(out.Arn),
		UserID:  sdkaws.ToString(out.UserId),
	}, nil
}

// Region returns the region a call with the given argument would use.
func (r *Registry) Region(region string) string {
	fallback := ""
	if r != nil {
		fallback = r.defaultRegion
	}
	if resolved := regionOrDefault(region, fallback); resolved != "" {
		return resolved
	}
	return DefaultRegion
}

// Session returns the verified base configuration.
func (r *Registry) Session(ctx context.Context) (sdkaws.Config, error) {
	if r == nil {
		return sdkaws.Config{}, errors.New("client registry not configured")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sessionLocked(ctx)
}

// Identity returns the caller identity captured by the session check.
func (r *Registry) Identity() (Identity, bool) {
	if r == nil {
		return Identity{}, false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.ready || r.initErr != nil {
		return Identity{}, false
	}
	return r.identity, true
}

// Len reports how many clients have been built.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.clients)
}

func (r *Registry) sessionLocked(ctx context.Context) (sdkaws.Config, error) {
	if r.ready {
		return r.base, r.initErr
	}
	cfg, err := r.initSession(ctx)
	if err != nil && ctx.Err() != nil {
		// A caller giving up must not poison the session for everyone else.
		return sdkaws.Config{}, err
	}
	r.ready = true
	r.base = cfg
	r.initErr = err
	return cfg, err
}

func (r *Registry) initSession(ctx context.Context) (sdkaws.Config, error) {
	if r.load == nil {
		return sdkaws.Config{}, &SessionError{Err: errors.New("no configuration loader")}
	}
	cfg, err := r.load(ctx)
	if err != nil {
		return sdkaws.Config{}, &SessionError{Err: err}
	}
	if cfg.Credentials == nil || sdkaws.IsCredentialsProvider(cfg.Credentials, sdkaws.AnonymousCredentials{}) {
		return sdkaws.Config{}, &CredentialsError{}
	}
	if _, err := cfg.Credentials.Retrieve(ctx); err != nil {
		if nothingConfigured(err) {
			return sdkaws.Config{}, &CredentialsError{Err: err}
		}
		return sdkaws.Config{}, &SessionError{Err: err}
	}
	if cfg.Region == "" {
		cfg.Region = r.Region("")
	}
	identity, err := r.verify(ctx, cfg)
	if err != nil {
		return sdkaws.Config{}, &SessionError{Err: err}
	}
	r.identity = identity
	return cfg, nil
}

// nothingConfigured reports whether the default chain fell through every
// source to the instance role lookup and found no role there either.
func nothingConfigured(err error) bool {
	return strings.Contains(err.Error(), "no EC2 IMDS role found")
}

// Client returns the cached client for (service, region) or builds one from
// the verified session. The returned string is the region actually used.
func Client[T any](ctx context.Context, r *Registry, service, region string, build func(sdkaws.Config) T) (T, string, error) {
	var zero T
	if r == nil {
		return zero, "", errors.New("client registry not configured")
	}
	if build == nil {
		return zero, "", fmt.Errorf("no constructor for %s client", service)
	}
	usedRegion := r.Region(region)
	key := clientKey{service: service, region: usedRegion}

	r.mu.Lock()
	defer r.mu.Unlock()
	if cached, ok := r.clients[key]; ok {
		client, ok := cached.(T)
		if !ok {
			return zero, "", fmt.Errorf("cached %s client for %s has type %T", service, usedRegion, cached)
		}
		return client, usedRegion, nil
	}
	base, err := r.sessionLocked(ctx)
	if err != nil {
		return zero, "", err
	}
	cfg := base.Copy()
	cfg.Region = usedRegion
	client := build(cfg)
	r.clients[key] = client
	return client, usedRegion, nil
}
