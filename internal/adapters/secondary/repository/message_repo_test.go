package repository

import (
	"context"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jupiterclapton/cenackle/services/connection-service/internal/core/domain"
)

func TestMessageRepo_Save(t *testing.T) {
	mock := newMock(t)
	repo := NewMessageRepo(mock)
	msg := &domain.Message{ID: connID, SenderID: alice, RecipientID: bob, Content: "hi", CreatedAt: time.Now().UTC()}

	mock.ExpectExec(q("INSERT INTO messages")).
		WithArgs(msg.ID, alice, bob, "hi", false, msg.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, repo.Save(context.Background(), msg))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMessageRepo_ListBetween(t *testing.T) {
	mock := newMock(t)
	repo := NewMessageRepo(mock)
	now := time.Now().UTC()

	mock.ExpectQuery(q("LIMIT $3 OFFSET $4")).
		WithArgs(alice, bob, 10, 0).
		WillReturnRows(pgxmock.NewRows([]string{"id", "sender_id", "recipient_id", "content", "is_read", "created_at"}).
			AddRow("m1", alice, bob, "hi", true, now).
			AddRow("m2", bob, alice, "hey", false, now.Add(time.Second)))

	msgs, err := repo.ListBetween(context.Background(), alice, bob, 10, 0)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "hey", msgs[1].Content)
}

func TestMessageRepo_ListUnread(t *testing.T) {
	mock := newMock(t)
	repo := NewMessageRepo(mock)

	mock.ExpectQuery(q("m.is_read = FALSE")).
		WithArgs(bob).
		WillReturnRows(pgxmock.NewRows([]string{"id", "sender_id", "recipient_id", "content", "is_read", "created_at", "username"}).
			AddRow("m1", alice, bob, "hi", false, time.Now(), "alice"))

	msgs, err := repo.ListUnread(context.Background(), bob)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "alice", msgs[0].SenderUsername)
}

func TestMessageRepo_MarkRead(t *testing.T) {
	mock := newMock(t)
	repo := NewMessageRepo(mock)

	mock.ExpectExec(q("UPDATE messages SET is_read = TRUE")).
		WithArgs("m1", bob).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(q("UPDATE messages SET is_read = TRUE")).
		WithArgs("m1", alice).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	assert.NoError(t, repo.MarkRead(context.Background(), "m1", bob))
	assert.ErrorIs(t, repo.MarkRead(context.Background(), "m1", alice), domain.ErrMessageNotFound)
}

func TestMessageRepo_DeleteAllBetween_UsesPoolOutsideTx(t *testing.T) {
	mock := newMock(t)
	repo := NewMessageRepo(mock)

	mock.ExpectExec(q("DELETE FROM messages")).
		WithArgs(alice, bob).
		WillReturnResult(pgxmock.NewResult("DELETE", 4))

	n, err := repo.DeleteAllBetween(context.Background(), alice, bob)
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
}
