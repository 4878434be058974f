// Package service implements the registry engine: key validation feeds an
// authorization guard, the guard gates the lifecycle state machine, and every
// record mutation appends to the history ledger before the record is written.
//
// Caller identity and current time are never read from globals; both arrive
// through the context (pkg/requestcontext), so the engine is deterministic
// under test. Every fallible check runs before the first store write, and
// mutating operations run inside the StoreTx boundary, so an error path never
// leaves partial state behind.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"

	registrymetrics "namereg/internal/registry/metrics"
	"namereg/internal/registry/models"
	id "namereg/pkg/domain"
	dErrors "namereg/pkg/domain-errors"
	audit "namereg/pkg/platform/audit"
	"namereg/pkg/platform/sentinel"
	"namereg/pkg/requestcontext"
)

var tracer = otel.Tracer("namereg/registry")

// DomainStore persists domain records keyed by canonical key.
type DomainStore interface {
	Get(ctx context.Context, key string) (*models.Domain, error)
	Put(ctx context.Context, d *models.Domain) error
	ListByOwner(ctx context.Context, owner id.Identity) ([]*models.Domain, error)
}

// HistoryStore persists the append-only sequence per canonical key.
type HistoryStore interface {
	Append(ctx context.Context, key string, entry models.HistoryEntry) error
	Read(ctx context.Context, key string) ([]models.HistoryEntry, error)
}

// ReservationStore persists at most one reservation per canonical key.
type ReservationStore interface {
	Get(ctx context.Context, key string) (*models.Reservation, error)
	Put(ctx context.Context, r *models.Reservation) error
	Delete(ctx context.Context, key string) error
}

// OwnerStore persists the administrative identity singleton.
type OwnerStore interface {
	Get(ctx context.Context) (id.Identity, error)
	Init(ctx context.Context, owner id.Identity) error
}

// LookupCache caches owner lookups. Optional; all methods are best-effort.
type LookupCache interface {
	GetOwner(ctx context.Context, key string) (id.Identity, error)
	SetOwner(ctx context.Context, key string, owner id.Identity) error
	Invalidate(ctx context.Context, key string) error
}

// AuditPublisher receives one event per committed mutation.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service is the registry engine.
type Service struct {
	domains      DomainStore
	histories    HistoryStore
	reservations ReservationStore

	// admin is the administrative identity, initialized exactly once at
	// registry creation and immutable thereafter. It never expires.
	admin id.Identity

	tx      StoreTx
	cache   LookupCache
	auditor AuditPublisher
	metrics *registrymetrics.Metrics
	logger  *slog.Logger
}

type serviceConfig struct {
	tx      StoreTx
	cache   LookupCache
	auditor AuditPublisher
	metrics *registrymetrics.Metrics
	logger  *slog.Logger
}

// Option configures the Service.
type Option func(*serviceConfig)

func WithStoreTx(tx StoreTx) Option {
	return func(c *serviceConfig) { c.tx = tx }
}

func WithLookupCache(cache LookupCache) Option {
	return func(c *serviceConfig) { c.cache = cache }
}

func WithAuditPublisher(auditor AuditPublisher) Option {
	return func(c *serviceConfig) { c.auditor = auditor }
}

func WithMetrics(m *registrymetrics.Metrics) Option {
	return func(c *serviceConfig) { c.metrics = m }
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *serviceConfig) { c.logger = logger }
}

// New wires the engine and bootstraps the administrative identity. On a
// fresh owner store the bootstrap identity is persisted; on an initialized
// store the persisted identity wins and a differing bootstrap value is only
// logged, never applied.
func New(
	ctx context.Context,
	domains DomainStore,
	histories HistoryStore,
	reservations ReservationStore,
	owners OwnerStore,
	bootstrap id.Identity,
	opts ...Option,
) (*Service, error) {
	if domains == nil || histories == nil || reservations == nil || owners == nil {
		return nil, fmt.Errorf("all registry stores are required")
	}

	cfg := &serviceConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.tx == nil {
		cfg.tx = newInMemoryStoreTx()
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}

	admin, err := owners.Get(ctx)
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		if bootstrap.IsNil() {
			return nil, fmt.Errorf("registry owner not initialized and no bootstrap identity provided")
		}
		if err := owners.Init(ctx, bootstrap); err != nil {
			return nil, fmt.Errorf("initialize registry owner: %w", err)
		}
		admin = bootstrap
	case err != nil:
		return nil, fmt.Errorf("load registry owner: %w", err)
	default:
		if !bootstrap.IsNil() && bootstrap != admin {
			cfg.logger.Warn("registry owner already initialized, ignoring bootstrap identity",
				"owner", admin.String(),
			)
		}
	}

	return &Service{
		domains:      domains,
		histories:    histories,
		reservations: reservations,
		admin:        admin,
		tx:           cfg.tx,
		cache:        cfg.cache,
		auditor:      cfg.auditor,
		metrics:      cfg.metrics,
		logger:       cfg.logger,
	}, nil
}

// RegistryOwner returns the administrative identity.
func (s *Service) RegistryOwner(_ context.Context) id.Identity {
	return s.admin
}

// deniedReason maps an operation error to a metrics label.
func deniedReason(err error) string {
	var re models.RegistryError
	if errors.As(err, &re) {
		return re.Tag()
	}
	if dErrors.HasCode(err, dErrors.CodeUnauthorized) {
		return "unauthenticated"
	}
	return "internal"
}

// requireCaller extracts the authenticated caller for mutating operations.
func (s *Service) requireCaller(ctx context.Context) (id.Identity, error) {
	caller := requestcontext.Caller(ctx)
	if caller.IsNil() {
		return id.NilIdentity, dErrors.New(dErrors.CodeUnauthorized, "caller identity required")
	}
	return caller, nil
}

// emitAudit publishes telemetry for a committed mutation. Publish failures
// are logged, not surfaced: the ledger, not the audit stream, is the record
// of truth.
func (s *Service) emitAudit(ctx context.Context, event audit.Event) {
	if s.auditor == nil {
		return
	}
	if err := s.auditor.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "audit emit failed",
			"action", event.Action,
			"key", event.Key,
			"error", err,
		)
	}
}

// invalidateLookup drops a cached owner after a committed mutation.
func (s *Service) invalidateLookup(ctx context.Context, key string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, key); err != nil {
		s.logger.WarnContext(ctx, "lookup cache invalidation failed",
			"key", key,
			"error", err,
		)
	}
}
