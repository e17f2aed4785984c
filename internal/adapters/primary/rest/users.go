package rest

import (
	"encoding/json"
	"net/http"

	"github.com/jupiterclapton/cenackle/services/connection-service/internal/core/domain"
)

// GET /users/{username}/matches
func (s *Server) handleMatches(w http.ResponseWriter, r *http.Request) {
	user, ok := s.ownedUser(w, r)
	if !ok {
		return
	}

	// Les deux coordonnées sont requises avant tout calcul
	if user.Location == nil {
		s.fail(w, r, domain.ErrLocationIncomplete)
		return
	}

	matches, err := s.matches.FindMatches(r.Context(), user.ID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"matches": toMatchDTOs(matches)})
}

// GET /users/{username}/mbti
func (s *Server) handleGetMbti(w http.ResponseWriter, r *http.Request) {
	user, ok := s.ownedUser(w, r)
	if !ok {
		return
	}
	if !user.HasPersonalityType() {
		s.fail(w, r, domain.ErrPersonalityTypeNotSet)
		return
	}

	d := domain.Details(user.PersonalityType)
	writeJSON(w, http.StatusOK, map[string]any{
		"mbtiDetails": mbtiDetailsDTO{Type: string(d.Type), Title: d.Title, Description: d.Description},
	})
}

// PATCH /users/{username}/mbti
func (s *Server) handleSetMbti(w http.ResponseWriter, r *http.Request) {
	if !s.canActAs(w, r) {
		return
	}

	var req setMbtiRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := s.users.SetPersonalityType(r.Context(), r.PathValue("username"), req.Mbti)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": toUserDTO(user)})
}

// --- HELPERS ---

// canActAs : l'utilisateur lui-même ou un admin, sinon 403.
func (s *Server) canActAs(w http.ResponseWriter, r *http.Request) bool {
	me := s.caller(w, r)
	if me == nil {
		return false
	}
	if !me.CanActAs(r.PathValue("username")) {
		writeError(w, http.StatusForbidden, "You are not allowed to access this resource")
		return false
	}
	return true
}

func (s *Server) ownedUser(w http.ResponseWriter, r *http.Request) (*domain.User, bool) {
	if !s.canActAs(w, r) {
		return nil, false
	}
	user, err := s.users.GetByUsername(r.Context(), r.PathValue("username"))
	if err != nil {
		s.fail(w, r, err)
		return nil, false
	}
	return user, true
}
