package eventbroker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"github.com/jupiterclapton/cenackle/services/connection-service/internal/core/ports"
)

const (
	StreamName     = "CONNECTIONS"
	SubjectPattern = "connection.>" // connection.requested, connection.accepted, ...
)

type NatsBroker struct {
	js jetstream.JetStream
}

// NewNatsBroker s'assure que le Stream existe (idempotent).
func NewNatsBroker(ctx context.Context, nc *nats.Conn) (*NatsBroker, error) {
	js, err := jetstream.New(nc)
	if err != nil {
		return nil, fmt.Errorf("jetstream init: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err = js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:     StreamName,
		Subjects: []string{SubjectPattern},
		Storage:  jetstream.FileStorage,
		Replicas: 1, // 3 en cluster
	})
	if err != nil {
		return nil, fmt.Errorf("create stream: %w", err)
	}

	return &NatsBroker{js: js}, nil
}

// ConnectionEventPayload est le contrat implicite avec les consommateurs (notification-service).
type ConnectionEventPayload struct {
	ConnectionID string    `json:"connection_id"`
	RequesterID  string    `json:"requester_id,omitempty"`
	ReceiverID   string    `json:"receiver_id,omitempty"`
	ActorID      string    `json:"actor_id"`
	OccurredAt   time.Time `json:"occurred_at"`
}

func (n *NatsBroker) PublishConnectionEvent(ctx context.Context, evt ports.ConnectionEvent) error {
	msg, err := newEventMsg(ctx, evt, time.Now().UTC())
	if err != nil {
		return err
	}

	slog.DebugContext(ctx, "📢 Publishing connection event", "subject", msg.Subject, "connection_id", evt.ConnectionID)

	// JetStream confirme que le serveur a persisté le message
	if _, err := n.js.PublishMsg(ctx, msg); err != nil {
		return fmt.Errorf("nats publish: %w", err)
	}
	return nil
}

// newEventMsg construit le message NATS, avec le contexte de trace dans les headers.
func newEventMsg(ctx context.Context, evt ports.ConnectionEvent, at time.Time) (*nats.Msg, error) {
	if evt.Type == "" {
		return nil, fmt.Errorf("event type is required")
	}

	data, err := json.Marshal(ConnectionEventPayload{
		ConnectionID: evt.ConnectionID,
		RequesterID:  evt.RequesterID,
		ReceiverID:   evt.ReceiverID,
		ActorID:      evt.ActorID,
		OccurredAt:   at,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}

	msg := &nats.Msg{
		Subject: "connection." + evt.Type,
		Data:    data,
		Header:  nats.Header{},
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(msg.Header))
	return msg, nil
}
