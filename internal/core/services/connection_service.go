package services

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jupiterclapton/cenackle/services/connection-service/internal/core/domain"
	"github.com/jupiterclapton/cenackle/services/connection-service/internal/core/ports"
)

const tracerName = "connection-service"

// ConnectionService implémente ports.ConnectionService et ports.ConnectionGateway.
// Aucun verrou en mémoire : plusieurs instances tournent en parallèle,
// la base (contrainte unique + écritures conditionnelles) est la seule synchronisation.
type ConnectionService struct {
	repo   ports.ConnectionRepository
	broker ports.EventPublisher
	tracer trace.Tracer
}

func NewConnectionService(repo ports.ConnectionRepository, broker ports.EventPublisher) *ConnectionService {
	if broker == nil {
		broker = noopPublisher{}
	}
	return &ConnectionService{
		repo:   repo,
		broker: broker,
		tracer: otel.Tracer(tracerName),
	}
}

// --- COMMANDES ---

// SendRequest crée (ou rouvre) la demande entre fromID et toID.
// Une ligne existante pour la paire repasse en Pending, même si elle était Confirmed.
func (s *ConnectionService) SendRequest(ctx context.Context, fromID, toID string) (string, error) {
	ctx, span := s.start(ctx, "ConnectionService.SendRequest", attribute.String("from_id", fromID), attribute.String("to_id", toID))
	defer span.End()

	conn, err := domain.NewConnectionRequest(fromID, toID)
	if err != nil {
		return "", fail(span, err)
	}

	stored, err := s.repo.SendRequest(ctx, conn)
	if err != nil {
		return "", fail(span, err)
	}

	// Sur une relance, la ligne garde ses rôles d'origine : l'événement suit la ligne
	slog.InfoContext(ctx, "Connection requested", "connection_id", stored.ID, "from_id", fromID, "to_id", toID)
	s.publish(ctx, ports.ConnectionEvent{
		Type:         "requested",
		ConnectionID: stored.ID,
		RequesterID:  stored.RequesterID,
		ReceiverID:   stored.ReceiverID,
		ActorID:      fromID,
	})

	return stored.ID, nil
}

// Accept : Pending -> Confirmed, uniquement par le destinataire.
func (s *ConnectionService) Accept(ctx context.Context, connectionID, receiverID string) (*domain.Connection, error) {
	ctx, span := s.start(ctx, "ConnectionService.Accept", attribute.String("connection_id", connectionID))
	defer span.End()

	conn, err := s.repo.Accept(ctx, connectionID, receiverID)
	if err != nil {
		return nil, fail(span, err)
	}

	slog.InfoContext(ctx, "Connection accepted", "connection_id", conn.ID, "receiver_id", receiverID)
	s.publish(ctx, ports.ConnectionEvent{
		Type:         "accepted",
		ConnectionID: conn.ID,
		RequesterID:  conn.RequesterID,
		ReceiverID:   conn.ReceiverID,
		ActorID:      receiverID,
	})

	return conn, nil
}

// Decline supprime une demande Pending, uniquement par le destinataire.
func (s *ConnectionService) Decline(ctx context.Context, connectionID, receiverID string) error {
	ctx, span := s.start(ctx, "ConnectionService.Decline", attribute.String("connection_id", connectionID))
	defer span.End()

	conn, err := s.repo.Decline(ctx, connectionID, receiverID)
	if err != nil {
		return fail(span, err)
	}

	slog.InfoContext(ctx, "Connection declined", "connection_id", conn.ID, "receiver_id", receiverID)
	s.publish(ctx, ports.ConnectionEvent{
		Type:         "declined",
		ConnectionID: conn.ID,
		RequesterID:  conn.RequesterID,
		ReceiverID:   conn.ReceiverID,
		ActorID:      receiverID,
	})
	return nil
}

// Cancel supprime une demande Pending, uniquement par l'initiateur.
func (s *ConnectionService) Cancel(ctx context.Context, connectionID, requesterID string) error {
	ctx, span := s.start(ctx, "ConnectionService.Cancel", attribute.String("connection_id", connectionID))
	defer span.End()

	conn, err := s.repo.Cancel(ctx, connectionID, requesterID)
	if err != nil {
		return fail(span, err)
	}

	slog.InfoContext(ctx, "Connection request cancelled", "connection_id", conn.ID, "requester_id", requesterID)
	s.publish(ctx, ports.ConnectionEvent{
		Type:         "cancelled",
		ConnectionID: conn.ID,
		RequesterID:  conn.RequesterID,
		ReceiverID:   conn.ReceiverID,
		ActorID:      requesterID,
	})
	return nil
}

// MarkAllAsRead marque lues toutes les demandes reçues en attente.
// Aucune demande à marquer = ErrNoPendingRequests (pas un no-op).
func (s *ConnectionService) MarkAllAsRead(ctx context.Context, userID string) error {
	ctx, span := s.start(ctx, "ConnectionService.MarkAllAsRead", attribute.String("user_id", userID))
	defer span.End()

	n, err := s.repo.MarkAllAsRead(ctx, userID)
	if err != nil {
		return fail(span, err)
	}
	if n == 0 {
		return fail(span, domain.ErrNoPendingRequests)
	}

	slog.DebugContext(ctx, "Requests marked as read", "user_id", userID, "count", n)
	return nil
}

// Remove supprime une connexion Confirmed (l'une ou l'autre partie) et ses messages.
func (s *ConnectionService) Remove(ctx context.Context, connectionID, userID string) error {
	ctx, span := s.start(ctx, "ConnectionService.Remove", attribute.String("connection_id", connectionID))
	defer span.End()

	conn, err := s.repo.Remove(ctx, connectionID, userID)
	if err != nil {
		return fail(span, err)
	}

	slog.InfoContext(ctx, "Connection removed", "connection_id", conn.ID, "user_id", userID)
	s.publish(ctx, ports.ConnectionEvent{
		Type:         "removed",
		ConnectionID: conn.ID,
		RequesterID:  conn.RequesterID,
		ReceiverID:   conn.ReceiverID,
		ActorID:      userID,
	})
	return nil
}

// --- REQUÊTES ---

func (s *ConnectionService) ListPending(ctx context.Context, userID string) ([]domain.PendingRequest, error) {
	ctx, span := s.start(ctx, "ConnectionService.ListPending", attribute.String("user_id", userID))
	defer span.End()

	out, err := s.repo.ListPending(ctx, userID)
	if err != nil {
		return nil, fail(span, err)
	}
	span.SetAttributes(attribute.Int("count", len(out)))
	return out, nil
}

func (s *ConnectionService) ListSent(ctx context.Context, userID string) ([]domain.SentRequest, error) {
	ctx, span := s.start(ctx, "ConnectionService.ListSent", attribute.String("user_id", userID))
	defer span.End()

	out, err := s.repo.ListSent(ctx, userID)
	if err != nil {
		return nil, fail(span, err)
	}
	span.SetAttributes(attribute.Int("count", len(out)))
	return out, nil
}

func (s *ConnectionService) ListConfirmed(ctx context.Context, userID string) ([]domain.ConfirmedConnection, error) {
	ctx, span := s.start(ctx, "ConnectionService.ListConfirmed", attribute.String("user_id", userID))
	defer span.End()

	out, err := s.repo.ListConfirmed(ctx, userID)
	if err != nil {
		return nil, fail(span, err)
	}
	span.SetAttributes(attribute.Int("count", len(out)))
	return out, nil
}

// IsConnected : vrai ssi une connexion Confirmed existe pour la paire.
func (s *ConnectionService) IsConnected(ctx context.Context, userA, userB string) (bool, error) {
	if userA == "" || userB == "" || userA == userB {
		return false, nil
	}
	return s.repo.IsConnected(ctx, userA, userB)
}

// --- HELPERS ---

func (s *ConnectionService) start(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

// publish est best effort : un broker lent ou down ne fait pas échouer la requête.
func (s *ConnectionService) publish(ctx context.Context, evt ports.ConnectionEvent) {
	if err := s.broker.PublishConnectionEvent(ctx, evt); err != nil {
		slog.WarnContext(ctx, "Failed to publish connection event", "type", evt.Type, "connection_id", evt.ConnectionID, "error", err)
	}
}

func fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

type noopPublisher struct{}

func (noopPublisher) PublishConnectionEvent(context.Context, ports.ConnectionEvent) error { return nil }
