package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jupiterclapton/cenackle/services/connection-service/internal/core/domain"
)

func TestSetPersonalityType(t *testing.T) {
	users := newMemUserRepo(domain.User{ID: "u1", Username: "alice"})
	cache := newMemCache()
	require.NoError(t, cache.Set(context.Background(), 0, "u1", []domain.CandidateMatch{{User: domain.User{ID: "stale"}}}))
	require.NoError(t, cache.Set(context.Background(), 0, "u2", []domain.CandidateMatch{{User: domain.User{ID: "u1"}}}))
	svc := NewUserService(users, cache)

	user, err := svc.SetPersonalityType(context.Background(), "alice", " infj ")
	require.NoError(t, err)
	assert.Equal(t, domain.PersonalityType("INFJ"), user.PersonalityType)
	assert.Equal(t, domain.PersonalityType("INFJ"), users.byID["u1"].PersonalityType)

	// Toutes les listes sont invalidées, pas seulement celle d'alice
	assert.Equal(t, int64(1), cache.gen)
	_, ok := cache.current("u1")
	assert.False(t, ok)
	_, ok = cache.current("u2")
	assert.False(t, ok)
}

func TestSetPersonalityType_Errors(t *testing.T) {
	users := newMemUserRepo(domain.User{ID: "u1", Username: "alice", PersonalityType: "INTJ"})
	svc := NewUserService(users, nil)

	_, err := svc.SetPersonalityType(context.Background(), "alice", "ABCD")
	assert.ErrorIs(t, err, domain.ErrInvalidPersonalityType)
	assert.Equal(t, domain.PersonalityType("INTJ"), users.byID["u1"].PersonalityType)

	_, err = svc.SetPersonalityType(context.Background(), "ghost", "INTJ")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}
