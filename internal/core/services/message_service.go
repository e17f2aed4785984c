package services

import (
	"context"

	"github.com/jupiterclapton/cenackle/services/connection-service/internal/core/domain"
	"github.com/jupiterclapton/cenackle/services/connection-service/internal/core/ports"
)

const (
	defaultHistoryLimit = 10
	maxHistoryLimit     = 100
)

// MessageService est le collaborateur Messages : du CRUD, sauf l'envoi
// qui passe par le ConnectionGateway.
type MessageService struct {
	repo    ports.MessageRepository
	users   ports.UserRepository
	gateway ports.ConnectionGateway
}

func NewMessageService(repo ports.MessageRepository, users ports.UserRepository, gateway ports.ConnectionGateway) *MessageService {
	return &MessageService{repo: repo, users: users, gateway: gateway}
}

func (s *MessageService) Send(ctx context.Context, cmd ports.SendMessageCmd) (*domain.Message, error) {
	// 1. Contenu vide : inutile d'aller plus loin
	msg, err := domain.NewMessage(cmd.SenderID, "", cmd.Content)
	if err != nil {
		return nil, err
	}

	// 2. Destinataire
	recipient, err := s.users.GetByUsername(ctx, cmd.RecipientUsername)
	if err != nil {
		return nil, err
	}
	msg.RecipientID = recipient.ID

	// 3. Autorisation : connexion Confirmed obligatoire
	ok, err := s.gateway.IsConnected(ctx, cmd.SenderID, recipient.ID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrNotConnected
	}

	if err := s.repo.Save(ctx, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

// History retourne les messages entre userID et otherUsername, du plus ancien au plus récent.
func (s *MessageService) History(ctx context.Context, userID, otherUsername string, limit, offset int) ([]domain.Message, error) {
	other, err := s.users.GetByUsername(ctx, otherUsername)
	if err != nil {
		return nil, err
	}

	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}
	if offset < 0 {
		offset = 0
	}

	return s.repo.ListBetween(ctx, userID, other.ID, limit, offset)
}

func (s *MessageService) Unread(ctx context.Context, userID string) ([]domain.Message, error) {
	return s.repo.ListUnread(ctx, userID)
}

// MarkRead : seul le destinataire peut marquer un message comme lu.
func (s *MessageService) MarkRead(ctx context.Context, messageID, userID string) error {
	return s.repo.MarkRead(ctx, messageID, userID)
}
