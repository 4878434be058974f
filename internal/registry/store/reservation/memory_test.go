package reservation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"namereg/internal/registry/models"
	id "namereg/pkg/domain"
	"namereg/pkg/platform/sentinel"
)

type ReservationStoreSuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
}

func TestReservationStoreSuite(t *testing.T) {
	suite.Run(t, new(ReservationStoreSuite))
}

func (s *ReservationStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
}

func (s *ReservationStoreSuite) TestLifecycle() {
	target := id.NewIdentity()
	r := &models.Reservation{Key: "alice.icp", ReservedFor: target, CreatedAt: time.Now()}

	s.Run("unknown key is not found", func() {
		_, err := s.store.Get(s.ctx, "alice.icp")
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("put then get", func() {
		s.Require().NoError(s.store.Put(s.ctx, r))
		found, err := s.store.Get(s.ctx, "alice.icp")
		s.Require().NoError(err)
		s.Equal(target, found.ReservedFor)
	})

	s.Run("delete removes the reservation", func() {
		s.Require().NoError(s.store.Delete(s.ctx, "alice.icp"))
		_, err := s.store.Get(s.ctx, "alice.icp")
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("delete of an absent key is a no-op", func() {
		s.Require().NoError(s.store.Delete(s.ctx, "alice.icp"))
	})
}
