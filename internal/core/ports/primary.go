package ports

import (
	"context"

	"github.com/jupiterclapton/cenackle/services/connection-service/internal/core/domain"
)

// --- PORTS PRIMAIRES (Driving) ---
// L'API que l'hexagone expose aux adapters (HTTP aujourd'hui).

// ConnectionService est la machine à états des relations.
type ConnectionService interface {
	SendRequest(ctx context.Context, fromID, toID string) (string, error)
	Accept(ctx context.Context, connectionID, receiverID string) (*domain.Connection, error)
	Decline(ctx context.Context, connectionID, receiverID string) error
	Cancel(ctx context.Context, connectionID, requesterID string) error
	MarkAllAsRead(ctx context.Context, userID string) error
	Remove(ctx context.Context, connectionID, userID string) error

	ListPending(ctx context.Context, userID string) ([]domain.PendingRequest, error)
	ListSent(ctx context.Context, userID string) ([]domain.SentRequest, error)
	ListConfirmed(ctx context.Context, userID string) ([]domain.ConfirmedConnection, error)
}

// ConnectionGateway est le prédicat consommé par la messagerie.
type ConnectionGateway interface {
	IsConnected(ctx context.Context, userA, userB string) (bool, error)
}

// MatchFinder classe les utilisateurs compatibles par distance.
type MatchFinder interface {
	FindMatches(ctx context.Context, userID string) ([]domain.CandidateMatch, error)
}

type UserService interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	SetPersonalityType(ctx context.Context, username, rawType string) (*domain.User, error)
}

// SendMessageCmd : commande d'envoi (struct pour pouvoir ajouter des champs plus tard).
type SendMessageCmd struct {
	SenderID          string
	RecipientUsername string
	Content           string
}

type MessageService interface {
	Send(ctx context.Context, cmd SendMessageCmd) (*domain.Message, error)
	History(ctx context.Context, userID, otherUsername string, limit, offset int) ([]domain.Message, error)
	Unread(ctx context.Context, userID string) ([]domain.Message, error)
	MarkRead(ctx context.Context, messageID, userID string) error
}
