package rest

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/jupiterclapton/cenackle/services/connection-service/internal/core/ports"
)

// POST /messages/{username}
func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	me := s.caller(w, r)
	if me == nil {
		return
	}

	var req sendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	msg, err := s.messages.Send(r.Context(), ports.SendMessageCmd{
		SenderID:          me.UserID,
		RecipientUsername: r.PathValue("username"),
		Content:           req.Content,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"message": toMessageDTO(msg)})
}

// GET /messages/unread
func (s *Server) handleUnread(w http.ResponseWriter, r *http.Request) {
	me := s.caller(w, r)
	if me == nil {
		return
	}

	msgs, err := s.messages.Unread(r.Context(), me.UserID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"messages": toMessageDTOs(msgs)})
}

// GET /messages/{username}?limit=&offset=
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	me := s.caller(w, r)
	if me == nil {
		return
	}

	// Valeurs invalides = défauts (bornés par le service)
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	msgs, err := s.messages.History(r.Context(), me.UserID, r.PathValue("username"), limit, offset)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"messages": toMessageDTOs(msgs)})
}

// PATCH /messages/{id}/read
func (s *Server) handleMarkMessageRead(w http.ResponseWriter, r *http.Request) {
	me := s.caller(w, r)
	if me == nil {
		return
	}
	id, ok := validID(w, r.PathValue("id"), "Invalid message ID")
	if !ok {
		return
	}

	if err := s.messages.MarkRead(r.Context(), id, me.UserID); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Message marked as read"})
}
