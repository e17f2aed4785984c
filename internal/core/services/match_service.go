package services

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/jupiterclapton/cenackle/services/connection-service/internal/core/domain"
	"github.com/jupiterclapton/cenackle/services/connection-service/internal/core/ports"
)

// MatchService implémente ports.MatchFinder (lecture seule).
type MatchService struct {
	users  ports.UserRepository
	cache  ports.MatchCache // optionnel
	tracer trace.Tracer
}

func NewMatchService(users ports.UserRepository, cache ports.MatchCache) *MatchService {
	return &MatchService{
		users:  users,
		cache:  cache,
		tracer: otel.Tracer(tracerName),
	}
}

// FindMatches retourne les utilisateurs de types compatibles, du plus proche au plus lointain.
// La présence des coordonnées de l'appelant est vérifiée en amont (orchestration) ;
// ici, une position manquante donne simplement une distance nil.
func (s *MatchService) FindMatches(ctx context.Context, userID string) ([]domain.CandidateMatch, error) {
	ctx, span := s.tracer.Start(ctx, "MatchService.FindMatches", trace.WithAttributes(attribute.String("user_id", userID)))
	defer span.End()

	// 1. L'utilisateur doit exister et avoir un type
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fail(span, err)
	}
	if !user.HasPersonalityType() {
		return nil, fail(span, domain.ErrPersonalityTypeNotSet)
	}

	// 2. Cache (best effort). La génération est lue AVANT les candidats :
	// une liste calculée pendant un changement de type part dans l'ancienne génération.
	var (
		gen      int64
		useCache = s.cache != nil
	)
	if useCache {
		if gen, err = s.cache.Generation(ctx); err != nil {
			slog.WarnContext(ctx, "Match cache generation read failed", "user_id", userID, "error", err)
			useCache = false
		}
	}
	if useCache {
		cached, ok, err := s.cache.Get(ctx, gen, userID)
		if err != nil {
			slog.WarnContext(ctx, "Match cache read failed", "user_id", userID, "error", err)
		} else if ok {
			span.SetAttributes(attribute.Bool("cache_hit", true))
			return cached, nil
		}
	}

	// 3. Candidats compatibles (l'appelant est exclu par la requête)
	types := domain.CompatibleTypes(user.PersonalityType)
	if len(types) == 0 {
		return []domain.CandidateMatch{}, nil
	}

	candidates, err := s.users.FindByTypes(ctx, types, user.ID)
	if err != nil {
		return nil, fail(span, err)
	}

	// 4. Annotation + tri
	matches := make([]domain.CandidateMatch, 0, len(candidates))
	for _, c := range candidates {
		if c.ID == user.ID {
			continue
		}
		matches = append(matches, domain.CandidateMatch{
			User:        c,
			DistanceKm:  domain.Distance(user.Location, c.Location),
			Description: domain.Description(c.PersonalityType),
		})
	}
	domain.SortByDistance(matches)

	if useCache {
		if err := s.cache.Set(ctx, gen, userID, matches); err != nil {
			slog.WarnContext(ctx, "Match cache write failed", "user_id", userID, "error", err)
		}
	}

	span.SetAttributes(attribute.Int("match_count", len(matches)))
	return matches, nil
}
