package domain

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"namereg/internal/registry/models"
	id "namereg/pkg/domain"
	"namereg/pkg/platform/sentinel"
)

type DomainStoreSuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
}

func TestDomainStoreSuite(t *testing.T) {
	suite.Run(t, new(DomainStoreSuite))
}

func (s *DomainStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
}

func (s *DomainStoreSuite) newDomain(key string, owner id.Identity) *models.Domain {
	now := time.Now()
	return &models.Domain{Key: key, Owner: owner, ValidUntil: now.Add(time.Hour), UpdatedAt: now}
}

func (s *DomainStoreSuite) TestGetAndPut() {
	s.Run("returns ErrNotFound for unknown key", func() {
		_, err := s.store.Get(s.ctx, "missing.icp")
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("stores and retrieves a record", func() {
		owner := id.NewIdentity()
		d := s.newDomain("alice.icp", owner)
		s.Require().NoError(s.store.Put(s.ctx, d))

		found, err := s.store.Get(s.ctx, "alice.icp")
		s.Require().NoError(err)
		s.Equal(owner, found.Owner)
	})

	s.Run("replaces wholesale on repeated put", func() {
		first := s.newDomain("bob.icp", id.NewIdentity())
		s.Require().NoError(s.store.Put(s.ctx, first))

		second := s.newDomain("bob.icp", id.NewIdentity())
		s.Require().NoError(s.store.Put(s.ctx, second))

		found, err := s.store.Get(s.ctx, "bob.icp")
		s.Require().NoError(err)
		s.Equal(second.Owner, found.Owner)
	})

	s.Run("returned record is a copy", func() {
		d := s.newDomain("carol.icp", id.NewIdentity())
		s.Require().NoError(s.store.Put(s.ctx, d))

		found, err := s.store.Get(s.ctx, "carol.icp")
		s.Require().NoError(err)
		found.Owner = id.NewIdentity()

		again, err := s.store.Get(s.ctx, "carol.icp")
		s.Require().NoError(err)
		s.Equal(d.Owner, again.Owner)
	})
}

func (s *DomainStoreSuite) TestListByOwner() {
	owner := id.NewIdentity()
	other := id.NewIdentity()

	s.Require().NoError(s.store.Put(s.ctx, s.newDomain("zeta.icp", owner)))
	s.Require().NoError(s.store.Put(s.ctx, s.newDomain("alpha.icp", owner)))
	s.Require().NoError(s.store.Put(s.ctx, s.newDomain("mid.moon", other)))

	s.Run("returns only the owner's records in key order", func() {
		found, err := s.store.ListByOwner(s.ctx, owner)
		s.Require().NoError(err)
		s.Require().Len(found, 2)
		s.Equal("alpha.icp", found[0].Key)
		s.Equal("zeta.icp", found[1].Key)
	})

	s.Run("returns empty for an owner with no records", func() {
		found, err := s.store.ListByOwner(s.ctx, id.NewIdentity())
		s.Require().NoError(err)
		s.Empty(found)
	})
}
