package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jupiterclapton/cenackle/services/connection-service/internal/core/domain"
)

func newTestCache(t *testing.T, ttl time.Duration) (*RedisMatchCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisMatchCache(client, ttl), mr
}

func TestRedisMatchCache_RoundTrip(t *testing.T) {
	c, mr := newTestCache(t, time.Minute)
	ctx := context.Background()

	d := 12.5
	in := []domain.CandidateMatch{
		{
			User:        domain.User{ID: "u1", Username: "bob", PersonalityType: "ENFP", Location: &domain.GeoPoint{Latitude: 1, Longitude: 2}},
			DistanceKm:  &d,
			Description: domain.Description("ENFP"),
		},
		{User: domain.User{ID: "u2", Username: "carol", PersonalityType: "ENTP"}},
	}

	gen, err := c.Generation(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), gen)

	_, ok, err := c.Get(ctx, gen, "me")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, gen, "me", in))
	assert.True(t, mr.Exists("matches:0:me"))

	out, ok, err := c.Get(ctx, gen, "me")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, in, out)
}

func TestRedisMatchCache_TTL(t *testing.T) {
	c, mr := newTestCache(t, 30*time.Second)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, 0, "me", []domain.CandidateMatch{}))
	assert.Equal(t, 30*time.Second, mr.TTL("matches:0:me"))

	mr.FastForward(31 * time.Second)
	_, ok, err := c.Get(ctx, 0, "me")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisMatchCache_InvalidateAll(t *testing.T) {
	c, mr := newTestCache(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, 0, "me", []domain.CandidateMatch{{User: domain.User{ID: "x"}}}))
	require.NoError(t, c.Set(ctx, 0, "other", []domain.CandidateMatch{{User: domain.User{ID: "y"}}}))

	require.NoError(t, c.InvalidateAll(ctx))

	gen, err := c.Generation(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), gen)

	// Aucune liste de l'ancienne génération n'est plus visible
	for _, userID := range []string{"me", "other"} {
		_, ok, err := c.Get(ctx, gen, userID)
		require.NoError(t, err)
		assert.False(t, ok, userID)
	}

	// Une écriture lancée avant l'invalidation atterrit dans l'ancienne génération
	require.NoError(t, c.Set(ctx, 0, "me", []domain.CandidateMatch{{User: domain.User{ID: "late"}}}))
	_, ok, err := c.Get(ctx, gen, "me")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.False(t, mr.Exists("matches:1:me"))
}

func TestRedisMatchCache_CorruptEntry(t *testing.T) {
	c, mr := newTestCache(t, time.Minute)
	require.NoError(t, mr.Set("matches:0:me", "{not json"))

	_, ok, err := c.Get(context.Background(), 0, "me")
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestRedisMatchCache_CorruptGeneration(t *testing.T) {
	c, mr := newTestCache(t, time.Minute)
	require.NoError(t, mr.Set("matches:gen", "abc"))

	_, err := c.Generation(context.Background())
	assert.Error(t, err)
}

func TestRedisMatchCache_ServerDown(t *testing.T) {
	c, mr := newTestCache(t, time.Minute)
	mr.Close()

	_, err := c.Generation(context.Background())
	assert.Error(t, err)

	_, _, err = c.Get(context.Background(), 0, "me")
	assert.Error(t, err)
}
