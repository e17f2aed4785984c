package domain

import "strings"

// User est la vue du sous-système User consommée par ce service (lecture seule,
// sauf le type de personnalité).
type User struct {
	ID              string
	Username        string
	FirstName       string
	LastName        string
	ProfilePic      string
	PersonalityType PersonalityType // "" = pas encore défini
	Location        *GeoPoint       // nil si latitude ou longitude manquante
}

func (u *User) HasPersonalityType() bool {
	return u.PersonalityType != ""
}

func (u *User) Summary() UserSummary {
	return UserSummary{
		ID:         u.ID,
		Username:   u.Username,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		ProfilePic: u.ProfilePic,
	}
}

// Principal est l'identité de l'appelant, extraite du token.
type Principal struct {
	UserID   string
	Username string
	IsAdmin  bool
}

// CanActAs : l'utilisateur lui-même ou un admin.
func (p *Principal) CanActAs(username string) bool {
	if p == nil || strings.TrimSpace(username) == "" {
		return false
	}
	return p.IsAdmin || p.Username == username
}
