package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type Message struct {
	ID             string
	SenderID       string
	RecipientID    string
	Content        string
	IsRead         bool
	CreatedAt      time.Time
	SenderUsername string // rempli uniquement par la liste des non-lus
}

// NewMessage valide le contenu et génère l'identité.
func NewMessage(senderID, recipientID, content string) (*Message, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyMessage
	}
	return &Message{
		ID:          uuid.NewString(),
		SenderID:    senderID,
		RecipientID: recipientID,
		Content:     content,
		CreatedAt:   time.Now().UTC(),
	}, nil
}
