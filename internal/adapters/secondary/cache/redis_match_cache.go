package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jupiterclapton/cenackle/services/connection-service/internal/core/domain"
)

// RedisMatchCache garde la liste classée de chaque utilisateur.
// Clés : matches:<génération>:<userID>. Changer de génération (INCR) rend
// toutes les listes inaccessibles d'un coup ; les anciennes expirent via le TTL.
type RedisMatchCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisMatchCache(client *redis.Client, ttl time.Duration) *RedisMatchCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &RedisMatchCache{client: client, ttl: ttl}
}

// Format JSON stocké (le domaine reste sans tags)
type cachedMatch struct {
	ID              string   `json:"id"`
	Username        string   `json:"username"`
	FirstName       string   `json:"first_name,omitempty"`
	LastName        string   `json:"last_name,omitempty"`
	ProfilePic      string   `json:"profile_pic,omitempty"`
	PersonalityType string   `json:"personality_type"`
	Latitude        *float64 `json:"latitude,omitempty"`
	Longitude       *float64 `json:"longitude,omitempty"`
	DistanceKm      *float64 `json:"distance_km,omitempty"`
	Description     string   `json:"description"`
}

const generationKey = "matches:gen"

func key(gen int64, userID string) string {
	return fmt.Sprintf("matches:%d:%s", gen, userID)
}

// Generation : compteur absent = génération 0.
func (c *RedisMatchCache) Generation(ctx context.Context) (int64, error) {
	gen, err := c.client.Get(ctx, generationKey).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("redis get generation: %w", err)
	}
	return gen, nil
}

func (c *RedisMatchCache) Get(ctx context.Context, gen int64, userID string) ([]domain.CandidateMatch, bool, error) {
	raw, err := c.client.Get(ctx, key(gen, userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("redis get: %w", err)
	}

	var stored []cachedMatch
	if err := json.Unmarshal(raw, &stored); err != nil {
		return nil, false, fmt.Errorf("decode cached matches: %w", err)
	}

	matches := make([]domain.CandidateMatch, 0, len(stored))
	for _, m := range stored {
		matches = append(matches, m.toDomain())
	}
	return matches, true, nil
}

func (c *RedisMatchCache) Set(ctx context.Context, gen int64, userID string, matches []domain.CandidateMatch) error {
	stored := make([]cachedMatch, 0, len(matches))
	for _, m := range matches {
		stored = append(stored, fromDomain(m))
	}

	data, err := json.Marshal(stored)
	if err != nil {
		return fmt.Errorf("encode matches: %w", err)
	}
	return c.client.Set(ctx, key(gen, userID), data, c.ttl).Err()
}

func (c *RedisMatchCache) InvalidateAll(ctx context.Context) error {
	return c.client.Incr(ctx, generationKey).Err()
}

func fromDomain(m domain.CandidateMatch) cachedMatch {
	out := cachedMatch{
		ID:              m.User.ID,
		Username:        m.User.Username,
		FirstName:       m.User.FirstName,
		LastName:        m.User.LastName,
		ProfilePic:      m.User.ProfilePic,
		PersonalityType: string(m.User.PersonalityType),
		DistanceKm:      m.DistanceKm,
		Description:     m.Description,
	}
	if m.User.Location != nil {
		lat, lon := m.User.Location.Latitude, m.User.Location.Longitude
		out.Latitude, out.Longitude = &lat, &lon
	}
	return out
}

func (m cachedMatch) toDomain() domain.CandidateMatch {
	u := domain.User{
		ID:              m.ID,
		Username:        m.Username,
		FirstName:       m.FirstName,
		LastName:        m.LastName,
		ProfilePic:      m.ProfilePic,
		PersonalityType: domain.PersonalityType(m.PersonalityType),
	}
	if m.Latitude != nil && m.Longitude != nil {
		u.Location = &domain.GeoPoint{Latitude: *m.Latitude, Longitude: *m.Longitude}
	}
	return domain.CandidateMatch{User: u, DistanceKm: m.DistanceKm, Description: m.Description}
}
