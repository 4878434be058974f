package history

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"namereg/internal/registry/models"
	id "namereg/pkg/domain"
	"namereg/pkg/platform/sentinel"
)

type HistoryStoreSuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
}

func TestHistoryStoreSuite(t *testing.T) {
	suite.Run(t, new(HistoryStoreSuite))
}

func (s *HistoryStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
}

func (s *HistoryStoreSuite) entry(owner id.Identity, at time.Time) models.HistoryEntry {
	return models.HistoryEntry{Owner: owner, ValidUntil: at.Add(time.Hour), CreatedAt: at}
}

func (s *HistoryStoreSuite) TestReadUnknownKey() {
	_, err := s.store.Read(s.ctx, "never.icp")
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *HistoryStoreSuite) TestAppendPreservesOrder() {
	now := time.Now()
	first := id.NewIdentity()
	second := id.NewIdentity()

	s.Require().NoError(s.store.Append(s.ctx, "alice.icp", s.entry(first, now)))
	s.Require().NoError(s.store.Append(s.ctx, "alice.icp", s.entry(second, now.Add(time.Minute))))

	entries, err := s.store.Read(s.ctx, "alice.icp")
	s.Require().NoError(err)
	s.Require().Len(entries, 2)
	s.Equal(first, entries[0].Owner)
	s.Equal(second, entries[1].Owner)
}

func (s *HistoryStoreSuite) TestSequencesAreIndependent() {
	now := time.Now()
	s.Require().NoError(s.store.Append(s.ctx, "alice.icp", s.entry(id.NewIdentity(), now)))

	_, err := s.store.Read(s.ctx, "bob.icp")
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *HistoryStoreSuite) TestReadReturnsCopy() {
	now := time.Now()
	owner := id.NewIdentity()
	s.Require().NoError(s.store.Append(s.ctx, "alice.icp", s.entry(owner, now)))

	entries, err := s.store.Read(s.ctx, "alice.icp")
	s.Require().NoError(err)
	entries[0].Owner = id.NewIdentity()

	again, err := s.store.Read(s.ctx, "alice.icp")
	s.Require().NoError(err)
	s.Equal(owner, again[0].Owner)
}
