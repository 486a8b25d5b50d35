package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"
)

type StoreSuite struct {
	suite.Suite
	store *Store
	ctx   context.Context
}

func TestStoreSuite(t *testing.T) {
	suite.Run(t, new(StoreSuite))
}

func (s *StoreSuite) SetupTest() {
	s.store = New()
	s.ctx = context.Background()
}

func (s *StoreSuite) TestEmptyStoreReadsZeroValues() {
	access, err := s.store.AccessToken(s.ctx)
	s.Require().NoError(err)
	s.Empty(access)

	refresh, err := s.store.RefreshToken(s.ctx)
	s.Require().NoError(err)
	s.Empty(refresh)

	user, err := s.store.UserJSON(s.ctx)
	s.Require().NoError(err)
	s.Nil(user)
}

func (s *StoreSuite) TestSaveAndReadCredentials() {
	err := s.store.SaveCredentials(s.ctx, "acc", "ref", []byte(`{"id":1}`))
	s.Require().NoError(err)

	access, _ := s.store.AccessToken(s.ctx)
	refresh, _ := s.store.RefreshToken(s.ctx)
	user, _ := s.store.UserJSON(s.ctx)
	s.Equal("acc", access)
	s.Equal("ref", refresh)
	s.JSONEq(`{"id":1}`, string(user))
}

func (s *StoreSuite) TestSaveAccessTokenLeavesUser() {
	s.Require().NoError(s.store.SaveCredentials(s.ctx, "acc", "ref", []byte(`{"id":1}`)))
	s.Require().NoError(s.store.SaveAccessToken(s.ctx, "acc2"))

	access, _ := s.store.AccessToken(s.ctx)
	user, _ := s.store.UserJSON(s.ctx)
	s.Equal("acc2", access)
	s.JSONEq(`{"id":1}`, string(user))
}

func (s *StoreSuite) TestClear() {
	s.Require().NoError(s.store.SaveCredentials(s.ctx, "acc", "ref", []byte(`{"id":1}`)))
	s.Require().NoError(s.store.Clear(s.ctx))

	access, _ := s.store.AccessToken(s.ctx)
	user, _ := s.store.UserJSON(s.ctx)
	s.Empty(access)
	s.Nil(user)
}

func (s *StoreSuite) TestClearEmptyStoreIsNoOp() {
	s.Require().NoError(s.store.Clear(s.ctx))
}
