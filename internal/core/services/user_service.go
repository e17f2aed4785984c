package services

import (
	"context"
	"log/slog"

	"github.com/jupiterclapton/cenackle/services/connection-service/internal/core/domain"
	"github.com/jupiterclapton/cenackle/services/connection-service/internal/core/ports"
)

type UserService struct {
	repo  ports.UserRepository
	cache ports.MatchCache // optionnel
}

func NewUserService(repo ports.UserRepository, cache ports.MatchCache) *UserService {
	return &UserService{repo: repo, cache: cache}
}

func (s *UserService) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *UserService) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return s.repo.GetByUsername(ctx, username)
}

// SetPersonalityType enregistre le type (ex: saisi après le quiz).
func (s *UserService) SetPersonalityType(ctx context.Context, username, rawType string) (*domain.User, error) {
	t := domain.NormalizeType(rawType)
	if !domain.IsValidType(t) {
		return nil, domain.ErrInvalidPersonalityType
	}

	user, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	if err := s.repo.SetPersonalityType(ctx, user.ID, t); err != nil {
		return nil, err
	}
	user.PersonalityType = t

	// Les listes des AUTRES utilisateurs contiennent aussi ce type : tout le cache est périmé
	if s.cache != nil {
		if err := s.cache.InvalidateAll(ctx); err != nil {
			slog.WarnContext(ctx, "Match cache invalidation failed", "user_id", user.ID, "error", err)
		}
	}

	return user, nil
}
