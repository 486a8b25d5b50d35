package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"
)

type StoreSuite struct {
	suite.Suite
	mini  *miniredis.Miniredis
	store *Store
	ctx   context.Context
}

func TestStoreSuite(t *testing.T) {
	suite.Run(t, new(StoreSuite))
}

func (s *StoreSuite) SetupTest() {
	s.mini = miniredis.RunT(s.T())

	client := redis.NewClient(&redis.Options{
		Addr: s.mini.Addr(),
	})

	s.store = NewWithClient(client, DefaultConfig())
	s.ctx = context.Background()
}

func (s *StoreSuite) TearDownTest() {
	if s.store != nil {
		_ = s.store.Close()
	}
	if s.mini != nil {
		s.mini.Close()
	}
}

func (s *StoreSuite) TestEmptyStoreReadsZeroValues() {
	access, err := s.store.AccessToken(s.ctx)
	s.Require().NoError(err)
	s.Empty(access)

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

func (s *StoreSuite) TestEmptyRefreshTokenRemovesStored() {
	s.Require().NoError(s.store.SaveCredentials(s.ctx, "acc", "ref", nil))
	s.Require().NoError(s.store.SaveCredentials(s.ctx, "acc2", "", nil))

	refresh, err := s.store.RefreshToken(s.ctx)
	s.Require().NoError(err)
	s.Empty(refresh)
}

func (s *StoreSuite) TestNamespacesAreIsolated() {
	cfgOther := DefaultConfig()
	cfgOther.Namespace = "other"
	other := NewWithClient(redis.NewClient(&redis.Options{Addr: s.mini.Addr()}), cfgOther)
	defer func() { _ = other.Close() }()

	s.Require().NoError(s.store.SaveCredentials(s.ctx, "acc", "", nil))

	access, err := other.AccessToken(s.ctx)
	s.Require().NoError(err)
	s.Empty(access)
}

func (s *StoreSuite) TestClear() {
	s.Require().NoError(s.store.SaveCredentials(s.ctx, "acc", "ref", []byte(`{"id":1}`)))
	s.Require().NoError(s.store.Clear(s.ctx))

	access, _ := s.store.AccessToken(s.ctx)
	refresh, _ := s.store.RefreshToken(s.ctx)
	user, _ := s.store.UserJSON(s.ctx)
	s.Empty(access)
	s.Empty(refresh)
	s.Nil(user)
}
