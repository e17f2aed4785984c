package domain

import (
	"strings"

	"github.com/google/uuid"
)

// Phase est l'état d'une connexion existante.
// "Aucune connexion" n'est pas une phase : la ligne est supprimée (decline, cancel, remove).
type Phase int

const (
	PhasePending Phase = iota + 1
	PhaseConfirmed
)

func (p Phase) String() string {
	switch p {
	case PhasePending:
		return "pending"
	case PhaseConfirmed:
		return "confirmed"
	default:
		return "unknown"
	}
}

// PhaseFromFlags reconstruit la phase depuis le format persisté (pending, accepted).
// (true, true) et (false, false) ne correspondent à aucune phase valide.
func PhaseFromFlags(pending, accepted bool) (Phase, error) {
	switch {
	case pending && !accepted:
		return PhasePending, nil
	case !pending && accepted:
		return PhaseConfirmed, nil
	default:
		return 0, ErrCorruptConnection
	}
}

// Connection relie deux utilisateurs. La paire est non ordonnée pour l'unicité,
// mais RequesterID/ReceiverID gardent qui a initié la demande.
type Connection struct {
	ID          string
	RequesterID string
	ReceiverID  string
	Phase       Phase
	Read        bool
}

// NewConnectionRequest crée une demande Pending (non lue).
func NewConnectionRequest(requesterID, receiverID string) (*Connection, error) {
	requesterID = strings.TrimSpace(requesterID)
	receiverID = strings.TrimSpace(receiverID)

	if requesterID == "" || receiverID == "" {
		return nil, ErrBadRequest
	}
	if requesterID == receiverID {
		return nil, ErrSelfConnection
	}

	return &Connection{
		ID:          uuid.NewString(),
		RequesterID: requesterID,
		ReceiverID:  receiverID,
		Phase:       PhasePending,
	}, nil
}

// Flags retourne la représentation persistée. Jamais (true, true).
func (c *Connection) Flags() (pending, accepted bool) {
	return c.Phase == PhasePending, c.Phase == PhaseConfirmed
}

func (c *Connection) IsPending() bool   { return c.Phase == PhasePending }
func (c *Connection) IsConfirmed() bool { return c.Phase == PhaseConfirmed }

// Involves indique si userID est l'une des deux parties.
func (c *Connection) Involves(userID string) bool {
	return c.RequesterID == userID || c.ReceiverID == userID
}

// Counterpart retourne l'autre partie de la connexion.
func (c *Connection) Counterpart(userID string) string {
	if c.RequesterID == userID {
		return c.ReceiverID
	}
	return c.RequesterID
}

// PairKey est la clé de la paire non ordonnée (min, max).
func PairKey(a, b string) (string, string) {
	if a < b {
		return a, b
	}
	return b, a
}

// --- PROJECTIONS (lecture) ---

// UserSummary est le profil public de la contrepartie.
type UserSummary struct {
	ID         string
	Username   string
	FirstName  string
	LastName   string
	ProfilePic string
}

// PendingRequest : demande reçue, vue par le destinataire.
type PendingRequest struct {
	ConnectionID string
	From         UserSummary
	IsRead       bool
}

// SentRequest : demande envoyée, vue par l'initiateur.
type SentRequest struct {
	ConnectionID string
	To           UserSummary
}

// ConfirmedConnection : connexion acceptée, vue par l'une des deux parties.
type ConfirmedConnection struct {
	ConnectionID    string
	With            UserSummary
	PersonalityType PersonalityType
}
