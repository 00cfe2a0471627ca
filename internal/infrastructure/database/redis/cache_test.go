package redis

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"github.com/civitas-ai/opinionspace/internal/infrastructure/monitoring/logging"
	pkgerrors "github.com/civitas-ai/opinionspace/pkg/errors"
)

type CacheTestSuite struct {
	suite.Suite
	client *Client
	mock   redismock.ClientMock
	cache  Cache
	ctx    context.Context
}

func (s *CacheTestSuite) SetupTest() {
	rdb, mock := redismock.NewClientMock()
	s.client = NewClientWithRedis(rdb, logging.NewNopLogger())
	s.mock = mock
	s.cache = NewCache(s.client, logging.NewNopLogger(),
		WithPrefix("test:"),
		WithDefaultTTL(time.Minute),
		WithJitter(0),
	)
	s.ctx = context.Background()
}

func (s *CacheTestSuite) TearDownTest() {
	s.NoError(s.mock.ExpectationsWereMet())
}

type cachedThing struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func (s *CacheTestSuite) TestGetHit() {
	want := cachedThing{Name: "proj", Count: 3}
	data, _ := json.Marshal(want)
	s.mock.ExpectGet("test:k1").SetVal(string(data))

	var got cachedThing
	s.NoError(s.cache.Get(s.ctx, "k1", &got))
	s.Equal(want, got)
}

func (s *CacheTestSuite) TestGetMiss() {
	s.mock.ExpectGet("test:absent").RedisNil()

	var got cachedThing
	err := s.cache.Get(s.ctx, "absent", &got)
	s.ErrorIs(err, ErrCacheMiss)
}

func (s *CacheTestSuite) TestGetCorruptPayload() {
	s.mock.ExpectGet("test:bad").SetVal("{not json")

	var got cachedThing
	err := s.cache.Get(s.ctx, "bad", &got)
	s.Error(err)
	s.True(pkgerrors.IsCode(err, pkgerrors.ErrCodeSerialization))
}

func (s *CacheTestSuite) TestSet() {
	value := cachedThing{Name: "proj", Count: 1}
	data, _ := json.Marshal(value)
	s.mock.ExpectSet("test:k1", data, 30*time.Second).SetVal("OK")

	s.NoError(s.cache.Set(s.ctx, "k1", value, 30*time.Second))
}

func (s *CacheTestSuite) TestSetUsesDefaultTTL() {
	value := cachedThing{Name: "proj"}
	data, _ := json.Marshal(value)
	s.mock.ExpectSet("test:k1", data, time.Minute).SetVal("OK")

	s.NoError(s.cache.Set(s.ctx, "k1", value, 0))
}

func (s *CacheTestSuite) TestDelete() {
	s.mock.ExpectDel("test:a", "test:b").SetVal(2)
	s.NoError(s.cache.Delete(s.ctx, "a", "b"))
}

func (s *CacheTestSuite) TestDeleteNoKeys() {
	s.NoError(s.cache.Delete(s.ctx))
}

func (s *CacheTestSuite) TestExists() {
	s.mock.ExpectExists("test:k1").SetVal(1)
	ok, err := s.cache.Exists(s.ctx, "k1")
	s.NoError(err)
	s.True(ok)

	s.mock.ExpectExists("test:k2").SetVal(0)
	ok, err = s.cache.Exists(s.ctx, "k2")
	s.NoError(err)
	s.False(ok)
}

func (s *CacheTestSuite) TestGetOrSetHitSkipsLoader() {
	want := cachedThing{Name: "hit", Count: 2}
	data, _ := json.Marshal(want)
	s.mock.ExpectGet("test:k1").SetVal(string(data))

	var got cachedThing
	err := s.cache.GetOrSet(s.ctx, "k1", &got, time.Minute, func(ctx context.Context) (interface{}, error) {
		s.Fail("loader must not run on a cache hit")
		return nil, nil
	})
	s.NoError(err)
	s.Equal(want, got)
}

func (s *CacheTestSuite) TestGetOrSetMissRunsLoaderAndBackfills() {
	loaded := cachedThing{Name: "loaded", Count: 7}
	data, _ := json.Marshal(loaded)

	s.mock.ExpectGet("test:k1").RedisNil()
	s.mock.ExpectSet("test:k1", data, time.Minute).SetVal("OK")

	var got cachedThing
	err := s.cache.GetOrSet(s.ctx, "k1", &got, time.Minute, func(ctx context.Context) (interface{}, error) {
		return loaded, nil
	})
	s.NoError(err)
	s.Equal(loaded, got)
}

func (s *CacheTestSuite) TestGetOrSetLoaderError() {
	s.mock.ExpectGet("test:k1").RedisNil()

	var got cachedThing
	err := s.cache.GetOrSet(s.ctx, "k1", &got, time.Minute, func(ctx context.Context) (interface{}, error) {
		return nil, pkgerrors.Internal("upstream failed")
	})
	s.Error(err)
	s.True(pkgerrors.IsCode(err, pkgerrors.CodeInternal))
}

func TestCacheTestSuite(t *testing.T) {
	suite.Run(t, new(CacheTestSuite))
}

func TestJitterTTLBounds(t *testing.T) {
	c := &redisCache{jitterFrac: 0.1}
	ttl := time.Minute
	for i := 0; i < 100; i++ {
		got := c.jitterTTL(ttl)
		assert.GreaterOrEqual(t, got, time.Duration(float64(ttl)*0.9))
		assert.LessOrEqual(t, got, time.Duration(float64(ttl)*1.1))
	}
	assert.Equal(t, time.Duration(0), c.jitterTTL(0))

	c.jitterFrac = 0
	assert.Equal(t, ttl, c.jitterTTL(ttl))
}
