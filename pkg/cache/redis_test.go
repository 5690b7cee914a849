package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"
)

type RedisCacheSuite struct {
	suite.Suite
	mr    *miniredis.Miniredis
	cache *RedisCache
}

func (s *RedisCacheSuite) SetupTest() {
	s.mr = miniredis.RunT(s.T())
	s.cache = NewFromClient(redis.NewClient(&redis.Options{Addr: s.mr.Addr()}))
}

func (s *RedisCacheSuite) TearDownTest() {
	s.Require().NoError(s.cache.Close())
}

func (s *RedisCacheSuite) TestJSONRoundTrip() {
	ctx := context.Background()
	type payload struct {
		Name string `json:"name"`
		Qty  int    `json:"qty"`
	}

	s.Require().NoError(s.cache.SetJSON(ctx, "k", payload{Name: "shirt", Qty: 2}, time.Minute))

	var got payload
	found, err := s.cache.GetJSON(ctx, "k", &got)
	s.Require().NoError(err)
	s.True(found)
	s.Equal(payload{Name: "shirt", Qty: 2}, got)
}

func (s *RedisCacheSuite) TestMissingKey() {
	var got map[string]any
	found, err := s.cache.GetJSON(context.Background(), "absent", &got)
	s.Require().NoError(err)
	s.False(found)
}

func (s *RedisCacheSuite) TestDeleteAndExpire() {
	ctx := context.Background()
	s.Require().NoError(s.cache.Set(ctx, "a", "1", 0))
	s.Require().NoError(s.cache.Expire(ctx, "a", time.Second))

	s.mr.FastForward(2 * time.Second)
	val, err := s.cache.Get(ctx, "a")
	s.Require().NoError(err)
	s.Empty(val)

	s.Require().NoError(s.cache.Set(ctx, "b", "2", 0))
	s.Require().NoError(s.cache.Delete(ctx, "b"))
	s.False(s.mr.Exists("b"))
}

func TestRedisCacheSuite(t *testing.T) {
	suite.Run(t, new(RedisCacheSuite))
}
