package tasks

import (
	"sync"

	"github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

// Registry wires the auth components together with explicit, fail-fast
// construction. Callers either get a fully usable registry or an error;
// there is no half-initialized state to trip over later.
type Registry struct {
	cfg         Config
	db          *bun.DB
	logger      Logger
	repos       RepositoryManager
	provider    *UserProvider
	tokens      TokenService
	auther      *Auther
	verifier    *CredentialVerifier
	requestAuth *RequestAuthenticator
	session     *SessionTransport
	policy      AccessPolicy
	http        *RouteAuthenticator
}

// RegistryOption mutates the registry before component construction
type RegistryOption func(*Registry)

// WithRegistryLogger sets the logger every component inherits
func WithRegistryLogger(l Logger) RegistryOption {
	return func(r *Registry) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewRegistry builds the full dependency graph in order. Construction is
// all-or-nothing: the first failing component aborts with its error.
func NewRegistry(db *bun.DB, cfg Config, opts ...RegistryOption) (*Registry, error) {
	if db == nil {
		return nil, errors.New("registry requires a database handle", errors.CategoryInternal)
	}
	if cfg == nil {
		return nil, errors.New("registry requires a config", errors.CategoryInternal)
	}

	if cfg.GetSigningKey() == "" {
		return nil, ErrMissingSigningKey
	}

	r := &Registry{
		cfg:    cfg,
		db:     db,
		logger: defLogger{},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}

	r.repos = NewRepositoryManager(db)
	if err := r.repos.Validate(); err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "repository manager failed validation")
	}

	r.provider = NewUserProvider(NewUserTracker(r.repos.Users())).WithLogger(r.logger)

	r.tokens = NewTokenService(
		[]byte(cfg.GetSigningKey()),
		cfg.GetTokenExpiration(),
		cfg.GetIssuer(),
		cfg.GetAudience(),
		r.logger,
	)

	r.auther = NewAuthenticator(r.provider, r.tokens).WithLogger(r.logger)
	r.verifier = NewCredentialVerifier(r.tokens, r.logger)
	r.requestAuth = NewRequestAuthenticator(r.verifier, r.logger)
	r.session = NewSessionTransport(cfg, r.logger)
	r.policy = NewAccessPolicy()

	http, err := NewRouteAuthenticator(r.auther, r.session, cfg)
	if err != nil {
		return nil, err
	}
	r.http = http.WithLogger(r.logger)

	return r, nil
}

func (r *Registry) Config() Config { return r.cfg }

func (r *Registry) DB() *bun.DB { return r.db }

func (r *Registry) Repos() RepositoryManager { return r.repos }

func (r *Registry) Provider() *UserProvider { return r.provider }

func (r *Registry) Tokens() TokenService { return r.tokens }

func (r *Registry) Auther() *Auther { return r.auther }

func (r *Registry) Verifier() *CredentialVerifier { return r.verifier }

func (r *Registry) RequestAuth() *RequestAuthenticator { return r.requestAuth }

func (r *Registry) Session() *SessionTransport { return r.session }

func (r *Registry) Policy() AccessPolicy { return r.policy }

func (r *Registry) HTTP() *RouteAuthenticator { return r.http }

var (
	defaultRegistryMu sync.Mutex
	defaultRegistry   *Registry
)

// DefaultRegistry memoizes a process-wide registry. A failed construction
// is not cached: the next call retries instead of replaying a stale error.
func DefaultRegistry(db *bun.DB, cfg Config, opts ...RegistryOption) (*Registry, error) {
	defaultRegistryMu.Lock()
	defer defaultRegistryMu.Unlock()

	if defaultRegistry != nil {
		return defaultRegistry, nil
	}

	r, err := NewRegistry(db, cfg, opts...)
	if err != nil {
		return nil, err
	}

	defaultRegistry = r
	return r, nil
}

// ResetDefaultRegistry clears the memoized registry; tests use this to
// rebuild against a fresh database.
func ResetDefaultRegistry() {
	defaultRegistryMu.Lock()
	defer defaultRegistryMu.Unlock()
	defaultRegistry = nil
}
