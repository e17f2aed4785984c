package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/jupiterclapton/cenackle/services/connection-service/internal/core/domain"
	"github.com/jupiterclapton/cenackle/services/connection-service/internal/core/ports"
)

// Toutes les transitions sont des écritures conditionnelles (id + phase + partie) :
// jamais de "lire puis écrire". Le perdant d'une course voit 0 ligne et reçoit NotFound.
const (
	sendRequestSQL = `
		INSERT INTO connections (id, requester_id, receiver_id, is_pending, is_accepted, is_read)
		VALUES ($1, $2, $3, TRUE, FALSE, FALSE)
		ON CONFLICT ((LEAST(requester_id, receiver_id)), (GREATEST(requester_id, receiver_id)))
		DO UPDATE SET is_pending = TRUE, is_accepted = FALSE, updated_at = now()
		RETURNING id, requester_id, receiver_id, is_read`

	acceptSQL = `
		UPDATE connections
		SET is_pending = FALSE, is_accepted = TRUE, is_read = TRUE, updated_at = now()
		WHERE id = $1 AND is_pending = TRUE AND receiver_id = $2
		RETURNING id, requester_id, receiver_id, is_pending, is_accepted, is_read`

	declineSQL = `
		DELETE FROM connections
		WHERE id = $1 AND is_pending = TRUE AND receiver_id = $2
		RETURNING id, requester_id, receiver_id, is_read`

	cancelSQL = `
		DELETE FROM connections
		WHERE id = $1 AND is_pending = TRUE AND requester_id = $2
		RETURNING id, requester_id, receiver_id, is_read`

	markAllAsReadSQL = `
		UPDATE connections
		SET is_read = TRUE, updated_at = now()
		WHERE receiver_id = $1 AND is_pending = TRUE`

	removeSQL = `
		DELETE FROM connections
		WHERE id = $1 AND is_accepted = TRUE AND is_pending = FALSE
		  AND (requester_id = $2 OR receiver_id = $2)
		RETURNING id, requester_id, receiver_id`

	listPendingSQL = `
		SELECT c.id, u.id, u.username, COALESCE(u.first_name, ''), COALESCE(u.last_name, ''),
		       COALESCE(u.profile_pic, ''), c.is_read
		FROM connections c
		JOIN users u ON u.id = c.requester_id
		WHERE c.receiver_id = $1 AND c.is_pending = TRUE
		ORDER BY c.created_at DESC`

	listSentSQL = `
		SELECT c.id, u.id, u.username, COALESCE(u.first_name, ''), COALESCE(u.last_name, ''),
		       COALESCE(u.profile_pic, '')
		FROM connections c
		JOIN users u ON u.id = c.receiver_id
		WHERE c.requester_id = $1 AND c.is_pending = TRUE
		ORDER BY c.created_at DESC`

	listConfirmedSQL = `
		SELECT c.id, u.id, u.username, COALESCE(u.first_name, ''), COALESCE(u.last_name, ''),
		       COALESCE(u.profile_pic, ''), COALESCE(u.mbti, '')
		FROM connections c
		JOIN users u ON u.id = CASE WHEN c.requester_id = $1 THEN c.receiver_id ELSE c.requester_id END
		WHERE (c.requester_id = $1 OR c.receiver_id = $1)
		  AND c.is_accepted = TRUE AND c.is_pending = FALSE
		ORDER BY u.username`

	isConnectedSQL = `
		SELECT EXISTS (
			SELECT 1 FROM connections
			WHERE LEAST(requester_id, receiver_id) = LEAST($1::uuid, $2::uuid)
			  AND GREATEST(requester_id, receiver_id) = GREATEST($1::uuid, $2::uuid)
			  AND is_accepted = TRUE AND is_pending = FALSE
		)`
)

type ConnectionRepo struct {
	db       DB
	messages ports.MessageRepository // cascade de Remove
}

func NewConnectionRepo(db DB, messages ports.MessageRepository) *ConnectionRepo {
	return &ConnectionRepo{db: db, messages: messages}
}

// SendRequest insère une demande Pending, ou rouvre la ligne existante de la paire.
// Les rôles requester/receiver de la ligne existante sont conservés : c'est la ligne
// retournée, pas la demande passée en argument, qui fait foi.
func (r *ConnectionRepo) SendRequest(ctx context.Context, c *domain.Connection) (*domain.Connection, error) {
	stored, err := scanPending(conn(ctx, r.db).QueryRow(ctx, sendRequestSQL, c.ID, c.RequesterID, c.ReceiverID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrConnectionNotCreated
		}
		return nil, handleError("send request", err)
	}
	return stored, nil
}

func (r *ConnectionRepo) Accept(ctx context.Context, connectionID, receiverID string) (*domain.Connection, error) {
	var (
		c                 domain.Connection
		pending, accepted bool
	)
	err := conn(ctx, r.db).QueryRow(ctx, acceptSQL, connectionID, receiverID).
		Scan(&c.ID, &c.RequesterID, &c.ReceiverID, &pending, &accepted, &c.Read)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrConnectionNotFound
		}
		return nil, handleError("accept", err)
	}

	if c.Phase, err = domain.PhaseFromFlags(pending, accepted); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *ConnectionRepo) Decline(ctx context.Context, connectionID, receiverID string) (*domain.Connection, error) {
	return r.deletePending(ctx, "decline", declineSQL, connectionID, receiverID)
}

func (r *ConnectionRepo) Cancel(ctx context.Context, connectionID, requesterID string) (*domain.Connection, error) {
	return r.deletePending(ctx, "cancel", cancelSQL, connectionID, requesterID)
}

func (r *ConnectionRepo) deletePending(ctx context.Context, op, q, connectionID, userID string) (*domain.Connection, error) {
	deleted, err := scanPending(conn(ctx, r.db).QueryRow(ctx, q, connectionID, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrConnectionNotFound
		}
		return nil, handleError(op, err)
	}
	return deleted, nil
}

// scanPending lit "id, requester_id, receiver_id, is_read" d'une ligne Pending.
func scanPending(row pgx.Row) (*domain.Connection, error) {
	c := domain.Connection{Phase: domain.PhasePending}
	if err := row.Scan(&c.ID, &c.RequesterID, &c.ReceiverID, &c.Read); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *ConnectionRepo) MarkAllAsRead(ctx context.Context, receiverID string) (int64, error) {
	tag, err := conn(ctx, r.db).Exec(ctx, markAllAsReadSQL, receiverID)
	if err != nil {
		return 0, handleError("mark all as read", err)
	}
	return tag.RowsAffected(), nil
}

// Remove : suppression conditionnelle + cascade des messages, dans UNE transaction.
func (r *ConnectionRepo) Remove(ctx context.Context, connectionID, userID string) (*domain.Connection, error) {
	var removed domain.Connection

	err := inTx(ctx, r.db, func(ctx context.Context) error {
		err := conn(ctx, r.db).QueryRow(ctx, removeSQL, connectionID, userID).
			Scan(&removed.ID, &removed.RequesterID, &removed.ReceiverID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.ErrConnectionNotFound
			}
			return handleError("remove", err)
		}

		if _, err := r.messages.DeleteAllBetween(ctx, removed.RequesterID, removed.ReceiverID); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	removed.Phase = domain.PhaseConfirmed
	removed.Read = true
	return &removed, nil
}

// --- LECTURES ---

func (r *ConnectionRepo) ListPending(ctx context.Context, receiverID string) ([]domain.PendingRequest, error) {
	rows, err := conn(ctx, r.db).Query(ctx, listPendingSQL, receiverID)
	if err != nil {
		return nil, handleError("list pending", err)
	}
	defer rows.Close()

	out := []domain.PendingRequest{}
	for rows.Next() {
		var p domain.PendingRequest
		if err := rows.Scan(&p.ConnectionID, &p.From.ID, &p.From.Username, &p.From.FirstName,
			&p.From.LastName, &p.From.ProfilePic, &p.IsRead); err != nil {
			return nil, handleError("scan pending", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, handleError("list pending", err)
	}
	return out, nil
}

func (r *ConnectionRepo) ListSent(ctx context.Context, requesterID string) ([]domain.SentRequest, error) {
	rows, err := conn(ctx, r.db).Query(ctx, listSentSQL, requesterID)
	if err != nil {
		return nil, handleError("list sent", err)
	}
	defer rows.Close()

	out := []domain.SentRequest{}
	for rows.Next() {
		var s domain.SentRequest
		if err := rows.Scan(&s.ConnectionID, &s.To.ID, &s.To.Username, &s.To.FirstName,
			&s.To.LastName, &s.To.ProfilePic); err != nil {
			return nil, handleError("scan sent", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, handleError("list sent", err)
	}
	return out, nil
}

func (r *ConnectionRepo) ListConfirmed(ctx context.Context, userID string) ([]domain.ConfirmedConnection, error) {
	rows, err := conn(ctx, r.db).Query(ctx, listConfirmedSQL, userID)
	if err != nil {
		return nil, handleError("list confirmed", err)
	}
	defer rows.Close()

	out := []domain.ConfirmedConnection{}
	for rows.Next() {
		var (
			c     domain.ConfirmedConnection
			ptype string
		)
		if err := rows.Scan(&c.ConnectionID, &c.With.ID, &c.With.Username, &c.With.FirstName,
			&c.With.LastName, &c.With.ProfilePic, &ptype); err != nil {
			return nil, handleError("scan confirmed", err)
		}
		c.PersonalityType = domain.PersonalityType(ptype)
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, handleError("list confirmed", err)
	}
	return out, nil
}

func (r *ConnectionRepo) IsConnected(ctx context.Context, userA, userB string) (bool, error) {
	var ok bool
	if err := conn(ctx, r.db).QueryRow(ctx, isConnectedSQL, userA, userB).Scan(&ok); err != nil {
		return false, handleError("is connected", err)
	}
	return ok, nil
}
