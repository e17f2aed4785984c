package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jupiterclapton/cenackle/services/connection-service/internal/core/domain"
)

// DB est le sous-ensemble de *pgxpool.Pool utilisé par les repos.
// Il permet de brancher pgxmock dans les tests.
type DB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	querier
}

type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type txKey struct{}

// conn retourne la transaction portée par ctx, sinon le pool.
// C'est ce qui permet à la cascade de Remove de rejoindre la même transaction.
func conn(ctx context.Context, db DB) querier {
	if tx, ok := ctx.Value(txKey{}).(pgx.Tx); ok {
		return tx
	}
	return db
}

// inTx exécute fn dans une transaction : commit si nil, rollback sinon.
// Pas de retry : une transaction en échec remonte telle quelle à l'appelant.
func inTx(ctx context.Context, db DB, fn func(ctx context.Context) error) error {
	tx, err := db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("db: begin: %w", err)
	}

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("db: commit: %w", err)
	}
	return nil
}

// handleError traduit les codes d'erreur PostgreSQL en erreurs du Domaine
func handleError(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation (collision d'id)
			return domain.ErrConnectionNotCreated
		case "23503": // foreign_key_violation : un des users n'existe pas
			return domain.ErrUserNotFound
		case "23514": // check_violation (ex: requester = receiver)
			return domain.ErrConnectionNotCreated
		case "22P02": // invalid_text_representation (uuid mal formé)
			return fmt.Errorf("%w: malformed identifier", domain.ErrBadRequest)
		}
	}
	return fmt.Errorf("db: %s: %w", op, err)
}

// --- SCHÉMA ---

// La table users appartient au sous-système User : on ne la crée pas ici.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS connections (
		id           UUID PRIMARY KEY,
		requester_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		receiver_id  UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		is_pending   BOOLEAN NOT NULL DEFAULT TRUE,
		is_accepted  BOOLEAN NOT NULL DEFAULT FALSE,
		is_read      BOOLEAN NOT NULL DEFAULT FALSE,
		created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
		CONSTRAINT connections_one_phase CHECK (is_pending <> is_accepted),
		CONSTRAINT connections_not_self CHECK (requester_id <> receiver_id)
	)`,
	// Unicité sur la paire NON ordonnée : A->B et B->A entrent en collision
	`CREATE UNIQUE INDEX IF NOT EXISTS connections_pair_key
		ON connections ((LEAST(requester_id, receiver_id)), (GREATEST(requester_id, receiver_id)))`,
	`CREATE INDEX IF NOT EXISTS connections_receiver_pending_idx ON connections (receiver_id) WHERE is_pending`,
	`CREATE TABLE IF NOT EXISTS messages (
		id           UUID PRIMARY KEY,
		sender_id    UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		recipient_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		content      TEXT NOT NULL,
		is_read      BOOLEAN NOT NULL DEFAULT FALSE,
		created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS messages_pair_idx
		ON messages ((LEAST(sender_id, recipient_id)), (GREATEST(sender_id, recipient_id)), created_at)`,
	`CREATE INDEX IF NOT EXISTS messages_unread_idx ON messages (recipient_id) WHERE NOT is_read`,
}

// EnsureSchema crée tables et index (idempotent).
func EnsureSchema(ctx context.Context, db DB) error {
	return inTx(ctx, db, func(ctx context.Context) error {
		for _, stmt := range schema {
			if _, err := conn(ctx, db).Exec(ctx, stmt); err != nil {
				return fmt.Errorf("db: ensure schema: %w", err)
			}
		}
		return nil
	})
}
