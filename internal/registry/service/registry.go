package service

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"namereg/internal/registry/models"
	id "namereg/pkg/domain"
	dErrors "namereg/pkg/domain-errors"
	audit "namereg/pkg/platform/audit"
	"namereg/pkg/platform/sentinel"
	"namereg/pkg/requestcontext"
)

// Reserve places an administrative hold on a key for target. Only the
// registry owner may reserve, and only keys that have no record at all.
// Even an expired record blocks reservation, since its owner may still be
// attributed by lookups.
func (s *Service) Reserve(ctx context.Context, name, extension string, target id.Identity) (string, error) {
	ctx, span := tracer.Start(ctx, "registry.Reserve")
	defer span.End()

	caller, err := s.requireCaller(ctx)
	if err != nil {
		return "", s.denied(span, "reserve", err)
	}
	if caller != s.admin {
		return "", s.denied(span, "reserve", &models.NotRegistryOwnerError{})
	}

	key, err := models.NewKey(name, extension)
	if err != nil {
		return "", s.denied(span, "reserve", err)
	}
	span.SetAttributes(attribute.String("registry.key", key))

	if target.IsNil() {
		return "", s.denied(span, "reserve", dErrors.New(dErrors.CodeInvalidInput, "reservation target is required"))
	}

	now := requestcontext.Now(ctx)
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		existing, err := s.domains.Get(txCtx, key)
		switch {
		case err == nil:
			// Existence, not expiry, blocks reservation.
			return &models.AlreadyClaimedError{Key: key, Owner: existing.Owner}
		case !errors.Is(err, sentinel.ErrNotFound):
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load domain")
		}

		reservation := &models.Reservation{Key: key, ReservedFor: target, CreatedAt: now}
		if err := s.reservations.Put(txCtx, reservation); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to store reservation")
		}
		return nil
	})
	if err != nil {
		return "", s.denied(span, "reserve", err)
	}

	s.emitAudit(ctx, audit.Event{
		Action:  audit.EventDomainReserved,
		Key:     key,
		Actor:   caller,
		Subject: target,
	})
	s.metrics.IncOperation("reserve")
	return key, nil
}

// Claim takes ownership of a key for duration. Open to any identity; an
// active record blocks it, a reservation blocks everyone but its target and
// is consumed by the target's successful claim in the same unit of work.
func (s *Service) Claim(ctx context.Context, name, extension string, duration time.Duration) (string, error) {
	ctx, span := tracer.Start(ctx, "registry.Claim")
	defer span.End()
	start := time.Now()

	caller, err := s.requireCaller(ctx)
	if err != nil {
		return "", s.denied(span, "claim", err)
	}

	key, err := models.NewKey(name, extension)
	if err != nil {
		return "", s.denied(span, "claim", err)
	}
	span.SetAttributes(attribute.String("registry.key", key))

	if err := models.ValidateDuration(duration); err != nil {
		return "", s.denied(span, "claim", err)
	}

	now := requestcontext.Now(ctx)
	var record *models.Domain
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		// All fallible checks happen before the first write so an error
		// here is a pure no-op against persisted state.
		existing, err := s.domains.Get(txCtx, key)
		switch {
		case err == nil:
			if err := existing.CanClaim(now); err != nil {
				return err
			}
		case !errors.Is(err, sentinel.ErrNotFound):
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load domain")
		}

		consumed := false
		reservation, err := s.reservations.Get(txCtx, key)
		switch {
		case err == nil:
			if reservation.Blocks(caller) {
				return &models.ReservedError{Key: key, ReservedFor: reservation.ReservedFor}
			}
			consumed = true
		case !errors.Is(err, sentinel.ErrNotFound):
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load reservation")
		}

		record = models.NewDomain(key, caller, duration, now)
		if err := s.histories.Append(txCtx, key, models.NewHistoryEntry(record, now)); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to append history")
		}
		if err := s.domains.Put(txCtx, record); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to store domain")
		}
		if consumed {
			if err := s.reservations.Delete(txCtx, key); err != nil {
				return dErrors.Wrap(err, dErrors.CodeInternal, "failed to consume reservation")
			}
		}
		return nil
	})
	if err != nil {
		return "", s.denied(span, "claim", err)
	}

	s.invalidateLookup(ctx, key)
	s.emitAudit(ctx, audit.Event{
		Action:     audit.EventDomainClaimed,
		Key:        key,
		Actor:      caller,
		ValidUntil: record.ValidUntil,
	})
	s.metrics.IncOperation("claim")
	s.metrics.ObserveClaim(start)
	return key, nil
}

// Revoke ends ownership of a key. The owner may revoke at any time; anyone
// else only once the record is no longer strictly valid. The owner field is
// preserved so history and lookups still attribute the key until reclaim.
func (s *Service) Revoke(ctx context.Context, key string) (string, error) {
	ctx, span := tracer.Start(ctx, "registry.Revoke")
	defer span.End()

	caller, err := s.requireCaller(ctx)
	if err != nil {
		return "", s.denied(span, "revoke", err)
	}

	key, err = models.ParseKey(key)
	if err != nil {
		return "", s.denied(span, "revoke", err)
	}
	span.SetAttributes(attribute.String("registry.key", key))

	now := requestcontext.Now(ctx)
	var revoked *models.Domain
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		record, err := s.loadDomain(txCtx, key)
		if err != nil {
			return err
		}
		if err := record.CanRevoke(caller, now); err != nil {
			return err
		}

		record.ApplyRevoke(now)
		if err := s.histories.Append(txCtx, key, models.NewHistoryEntry(record, now)); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to append history")
		}
		if err := s.domains.Put(txCtx, record); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to store domain")
		}
		revoked = record
		return nil
	})
	if err != nil {
		return "", s.denied(span, "revoke", err)
	}

	s.invalidateLookup(ctx, key)
	s.emitAudit(ctx, audit.Event{
		Action:  audit.EventDomainRevoked,
		Key:     key,
		Actor:   caller,
		Subject: revoked.Owner,
	})
	s.metrics.IncOperation("revoke")
	return key, nil
}

// Transfer hands an active record to newOwner, preserving its validity.
func (s *Service) Transfer(ctx context.Context, key string, newOwner id.Identity) (string, error) {
	ctx, span := tracer.Start(ctx, "registry.Transfer")
	defer span.End()

	caller, err := s.requireCaller(ctx)
	if err != nil {
		return "", s.denied(span, "transfer", err)
	}

	key, err = models.ParseKey(key)
	if err != nil {
		return "", s.denied(span, "transfer", err)
	}
	span.SetAttributes(attribute.String("registry.key", key))

	if newOwner.IsNil() {
		return "", s.denied(span, "transfer", dErrors.New(dErrors.CodeInvalidInput, "new owner is required"))
	}

	now := requestcontext.Now(ctx)
	var transferred *models.Domain
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		record, err := s.loadDomain(txCtx, key)
		if err != nil {
			return err
		}
		if err := record.CanTransfer(caller, now); err != nil {
			return err
		}

		record.ApplyTransfer(newOwner, now)
		if err := s.histories.Append(txCtx, key, models.NewHistoryEntry(record, now)); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to append history")
		}
		if err := s.domains.Put(txCtx, record); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to store domain")
		}
		transferred = record
		return nil
	})
	if err != nil {
		return "", s.denied(span, "transfer", err)
	}

	s.invalidateLookup(ctx, key)
	s.emitAudit(ctx, audit.Event{
		Action:     audit.EventDomainTransferred,
		Key:        key,
		Actor:      caller,
		Subject:    newOwner,
		ValidUntil: transferred.ValidUntil,
	})
	s.metrics.IncOperation("transfer")
	return key, nil
}

// GetDomain returns the record for key.
func (s *Service) GetDomain(ctx context.Context, key string) (*models.Domain, error) {
	key, err := models.ParseKey(key)
	if err != nil {
		return nil, err
	}
	return s.loadDomain(ctx, key)
}

// GetHistory returns the full history sequence for key in append order.
func (s *Service) GetHistory(ctx context.Context, key string) ([]models.HistoryEntry, error) {
	key, err := models.ParseKey(key)
	if err != nil {
		return nil, err
	}
	entries, err := s.histories.Read(ctx, key)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, &models.NotFoundError{Key: key}
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read history")
	}
	return entries, nil
}

// Lookup returns the current owner of key. Served from the cache when
// possible; the record's owner field answers even for expired records, per
// the preserved-owner revoke semantics.
func (s *Service) Lookup(ctx context.Context, key string) (id.Identity, error) {
	start := time.Now()
	defer s.metrics.ObserveLookup(start)

	key, err := models.ParseKey(key)
	if err != nil {
		return id.NilIdentity, err
	}

	if s.cache != nil {
		owner, err := s.cache.GetOwner(ctx, key)
		if err == nil {
			s.metrics.IncCacheHit()
			return owner, nil
		}
		s.metrics.IncCacheMiss()
	}

	record, err := s.loadDomain(ctx, key)
	if err != nil {
		return id.NilIdentity, err
	}

	if s.cache != nil {
		if err := s.cache.SetOwner(ctx, key, record.Owner); err != nil {
			s.logger.WarnContext(ctx, "lookup cache population failed",
				"key", key,
				"error", err,
			)
		}
	}
	return record.Owner, nil
}

// ReverseLookup returns the canonical keys whose record owner is owner, in
// key order. Empty when none; never an error for an unknown identity.
func (s *Service) ReverseLookup(ctx context.Context, owner id.Identity) ([]string, error) {
	records, err := s.domains.ListByOwner(ctx, owner)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to scan domains")
	}
	keys := make([]string, 0, len(records))
	for _, record := range records {
		keys = append(keys, record.Key)
	}
	return keys, nil
}

// IsClaimable reports whether key can currently be claimed. A key that has
// never been claimed is reported as not found, distinguishing "never
// existed" from "expired and reclaimable".
func (s *Service) IsClaimable(ctx context.Context, key string) (bool, error) {
	key, err := models.ParseKey(key)
	if err != nil {
		return false, err
	}
	record, err := s.loadDomain(ctx, key)
	if err != nil {
		return false, err
	}
	return !record.IsActive(requestcontext.Now(ctx)), nil
}

func (s *Service) loadDomain(ctx context.Context, key string) (*models.Domain, error) {
	record, err := s.domains.Get(ctx, key)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, &models.NotFoundError{Key: key}
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load domain")
	}
	return record, nil
}

// denied records a rejected operation on the span and metrics, passing the
// error through unchanged.
func (s *Service) denied(span trace.Span, operation string, err error) error {
	span.RecordError(err)
	s.metrics.IncDenied(operation, deniedReason(err))
	return err
}
