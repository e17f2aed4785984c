package rest

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/jupiterclapton/cenackle/services/connection-service/internal/core/domain"
)

// POST /connections/{username}/connect
func (s *Server) handleConnect(w http.ResponseWriter, r *http.Request) {
	me := s.caller(w, r)
	if me == nil {
		return
	}

	target, err := s.users.GetByUsername(r.Context(), r.PathValue("username"))
	if err != nil {
		s.fail(w, r, err)
		return
	}

	id, err := s.conns.SendRequest(r.Context(), me.UserID, target.ID)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Connection request sent",
		"data":    map[string]string{"id": id},
	})
}

// POST /connections/{connectionId}/accept
func (s *Server) handleAccept(w http.ResponseWriter, r *http.Request) {
	me := s.caller(w, r)
	if me == nil {
		return
	}
	connID, ok := connectionID(w, r)
	if !ok {
		return
	}

	conn, err := s.conns.Accept(r.Context(), connID, me.UserID)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	// La transition est déjà faite : un échec ici ne dégrade que le message
	message := "Connection request accepted"
	if requester, err := s.users.GetByID(r.Context(), conn.RequesterID); err == nil {
		message = fmt.Sprintf("You are now connected with %s", requester.Username)
	} else {
		slog.WarnContext(r.Context(), "Could not resolve requester username", "connection_id", conn.ID, "error", err)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"updatedConnection": toConnectionStateDTO(conn),
		"message":           message,
	})
}

// DELETE /connections/{connectionId}/decline-request
func (s *Server) handleDecline(w http.ResponseWriter, r *http.Request) {
	me := s.caller(w, r)
	if me == nil {
		return
	}
	connID, ok := connectionID(w, r)
	if !ok {
		return
	}

	if err := s.conns.Decline(r.Context(), connID, me.UserID); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"result": map[string]string{"message": "Connection request declined"},
	})
}

// DELETE /connections/{connectionId}/cancel-request
func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	me := s.caller(w, r)
	if me == nil {
		return
	}
	connID, ok := connectionID(w, r)
	if !ok {
		return
	}

	if err := s.conns.Cancel(r.Context(), connID, me.UserID); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Connection request cancelled"})
}

// DELETE /connections/{connectionId}/disconnect
func (s *Server) handleDisconnect(w http.ResponseWriter, r *http.Request) {
	me := s.caller(w, r)
	if me == nil {
		return
	}
	connID, ok := connectionID(w, r)
	if !ok {
		return
	}

	if err := s.conns.Remove(r.Context(), connID, me.UserID); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Connection removed"})
}

// GET /connections/pending-requests
func (s *Server) handleListPending(w http.ResponseWriter, r *http.Request) {
	me := s.caller(w, r)
	if me == nil {
		return
	}

	pending, err := s.conns.ListPending(r.Context(), me.UserID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"requests": toPendingDTOs(pending)})
}

// GET /connections/sent-requests
func (s *Server) handleListSent(w http.ResponseWriter, r *http.Request) {
	me := s.caller(w, r)
	if me == nil {
		return
	}

	sent, err := s.conns.ListSent(r.Context(), me.UserID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": toSentDTOs(sent)})
}

// PATCH /connections/requests/read
func (s *Server) handleMarkAllAsRead(w http.ResponseWriter, r *http.Request) {
	me := s.caller(w, r)
	if me == nil {
		return
	}

	if err := s.conns.MarkAllAsRead(r.Context(), me.UserID); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "All connection requests marked as read"})
}

// GET /connections
func (s *Server) handleListConfirmed(w http.ResponseWriter, r *http.Request) {
	me := s.caller(w, r)
	if me == nil {
		return
	}

	conns, err := s.conns.ListConfirmed(r.Context(), me.UserID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"connections": toConnectionDTOs(conns)})
}

// --- HELPERS ---

// caller retourne l'appelant, ou répond 401.
func (s *Server) caller(w http.ResponseWriter, r *http.Request) *domain.Principal {
	p := ForContext(r.Context())
	if p == nil || p.UserID == "" {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return nil
	}
	return p
}

func connectionID(w http.ResponseWriter, r *http.Request) (string, bool) {
	return validID(w, r.PathValue("connectionId"), "Invalid connection ID")
}

func validID(w http.ResponseWriter, raw, msg string) (string, bool) {
	id, err := uuid.Parse(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, msg)
		return "", false
	}
	return id.String(), true
}
