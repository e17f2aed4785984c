package ports

import (
	"context"

	"github.com/jupiterclapton/cenackle/services/connection-service/internal/core/domain"
)

// --- PERSISTANCE (DB) ---

// ConnectionRepository porte la machine à états.
// Chaque mutation est une écriture conditionnelle (id + phase + partie autorisée) :
// un perdant concurrent voit 0 ligne affectée et reçoit ErrConnectionNotFound.
type ConnectionRepository interface {
	// Upsert sur la paire non ordonnée : une ligne existante repasse en Pending
	// et garde ses rôles. Retourne la ligne telle que stockée.
	SendRequest(ctx context.Context, conn *domain.Connection) (*domain.Connection, error)
	Accept(ctx context.Context, connectionID, receiverID string) (*domain.Connection, error)
	// Decline et Cancel retournent la demande supprimée.
	Decline(ctx context.Context, connectionID, receiverID string) (*domain.Connection, error)
	Cancel(ctx context.Context, connectionID, requesterID string) (*domain.Connection, error)
	MarkAllAsRead(ctx context.Context, receiverID string) (int64, error)

	// Remove supprime une connexion Confirmed et, dans la même transaction,
	// tous les messages entre les deux parties. Retourne la connexion supprimée.
	Remove(ctx context.Context, connectionID, userID string) (*domain.Connection, error)

	ListPending(ctx context.Context, receiverID string) ([]domain.PendingRequest, error)
	ListSent(ctx context.Context, requesterID string) ([]domain.SentRequest, error)
	ListConfirmed(ctx context.Context, userID string) ([]domain.ConfirmedConnection, error)

	IsConnected(ctx context.Context, userA, userB string) (bool, error)
}

// UserRepository est la frontière vers le sous-système User.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	// FindByTypes retourne les utilisateurs dont le type est dans types, sauf excludeID.
	FindByTypes(ctx context.Context, types []domain.PersonalityType, excludeID string) ([]domain.User, error)
	SetPersonalityType(ctx context.Context, userID string, t domain.PersonalityType) error
}

// MessageRepository est la frontière vers le sous-système Messages.
type MessageRepository interface {
	Save(ctx context.Context, msg *domain.Message) error
	ListBetween(ctx context.Context, userA, userB string, limit, offset int) ([]domain.Message, error)
	ListUnread(ctx context.Context, recipientID string) ([]domain.Message, error)
	MarkRead(ctx context.Context, messageID, recipientID string) error
	// DeleteAllBetween est appelé par la cascade de ConnectionRepository.Remove ;
	// il doit rejoindre la transaction en cours si le contexte en porte une.
	DeleteAllBetween(ctx context.Context, userA, userB string) (int64, error)
}

// --- CACHE ---

// MatchCache garde les listes de matches classées. Jamais utilisé pour l'autorisation.
// Les entrées sont rangées par génération : la liste d'un utilisateur contient
// les types des AUTRES, donc un changement de type rend tout le cache périmé.
type MatchCache interface {
	// Generation doit être lue avant de charger les candidats.
	Generation(ctx context.Context) (int64, error)
	Get(ctx context.Context, gen int64, userID string) ([]domain.CandidateMatch, bool, error)
	Set(ctx context.Context, gen int64, userID string, matches []domain.CandidateMatch) error
	// InvalidateAll passe à la génération suivante.
	InvalidateAll(ctx context.Context) error
}

// --- MESSAGERIE (BROKER) ---

// ConnectionEvent est publié après chaque mutation réussie.
type ConnectionEvent struct {
	Type         string // "requested", "accepted", "declined", "cancelled", "removed", "read"
	ConnectionID string
	RequesterID  string
	ReceiverID   string
	ActorID      string
}

// EventPublisher notifie les autres services (best effort).
type EventPublisher interface {
	PublishConnectionEvent(ctx context.Context, evt ConnectionEvent) error
}

// --- SÉCURITÉ ---

// TokenValidator vérifie un bearer token et retourne l'appelant.
type TokenValidator interface {
	Validate(token string) (*domain.Principal, error)
}
