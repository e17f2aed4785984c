package repository

import (
	"context"

	"github.com/jupiterclapton/cenackle/services/connection-service/internal/core/domain"
)

type MessageRepo struct {
	db DB
}

func NewMessageRepo(db DB) *MessageRepo {
	return &MessageRepo{db: db}
}

func (r *MessageRepo) Save(ctx context.Context, msg *domain.Message) error {
	q := `
		INSERT INTO messages (id, sender_id, recipient_id, content, is_read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := conn(ctx, r.db).Exec(ctx, q, msg.ID, msg.SenderID, msg.RecipientID, msg.Content, msg.IsRead, msg.CreatedAt)
	if err != nil {
		return handleError("save message", err)
	}
	return nil
}

// ListBetween : ordre chronologique croissant.
func (r *MessageRepo) ListBetween(ctx context.Context, userA, userB string, limit, offset int) ([]domain.Message, error) {
	q := `
		SELECT id, sender_id, recipient_id, content, is_read, created_at
		FROM messages
		WHERE (sender_id = $1 AND recipient_id = $2)
		   OR (sender_id = $2 AND recipient_id = $1)
		ORDER BY created_at ASC
		LIMIT $3 OFFSET $4
	`
	rows, err := conn(ctx, r.db).Query(ctx, q, userA, userB, limit, offset)
	if err != nil {
		return nil, handleError("list messages", err)
	}
	defer rows.Close()

	msgs := []domain.Message{}
	for rows.Next() {
		var m domain.Message
		if err := rows.Scan(&m.ID, &m.SenderID, &m.RecipientID, &m.Content, &m.IsRead, &m.CreatedAt); err != nil {
			return nil, handleError("scan message", err)
		}
		msgs = append(msgs, m)
	}
	if err := rows.Err(); err != nil {
		return nil, handleError("list messages", err)
	}
	return msgs, nil
}

func (r *MessageRepo) ListUnread(ctx context.Context, recipientID string) ([]domain.Message, error) {
	q := `
		SELECT m.id, m.sender_id, m.recipient_id, m.content, m.is_read, m.created_at, u.username
		FROM messages m
		JOIN users u ON u.id = m.sender_id
		WHERE m.recipient_id = $1 AND m.is_read = FALSE
		ORDER BY m.created_at ASC
	`
	rows, err := conn(ctx, r.db).Query(ctx, q, recipientID)
	if err != nil {
		return nil, handleError("list unread", err)
	}
	defer rows.Close()

	msgs := []domain.Message{}
	for rows.Next() {
		var m domain.Message
		if err := rows.Scan(&m.ID, &m.SenderID, &m.RecipientID, &m.Content, &m.IsRead, &m.CreatedAt, &m.SenderUsername); err != nil {
			return nil, handleError("scan unread", err)
		}
		msgs = append(msgs, m)
	}
	if err := rows.Err(); err != nil {
		return nil, handleError("list unread", err)
	}
	return msgs, nil
}

func (r *MessageRepo) MarkRead(ctx context.Context, messageID, recipientID string) error {
	tag, err := conn(ctx, r.db).Exec(ctx,
		`UPDATE messages SET is_read = TRUE WHERE id = $1 AND recipient_id = $2`,
		messageID, recipientID)
	if err != nil {
		return handleError("mark message read", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrMessageNotFound
	}
	return nil
}

// DeleteAllBetween rejoint la transaction portée par ctx (cascade de ConnectionRepo.Remove).
func (r *MessageRepo) DeleteAllBetween(ctx context.Context, userA, userB string) (int64, error) {
	tag, err := conn(ctx, r.db).Exec(ctx, `
		DELETE FROM messages
		WHERE (sender_id = $1 AND recipient_id = $2)
		   OR (sender_id = $2 AND recipient_id = $1)`,
		userA, userB)
	if err != nil {
		return 0, handleError("delete messages between", err)
	}
	return tag.RowsAffected(), nil
}
