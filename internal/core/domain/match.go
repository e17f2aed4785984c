package domain

import "sort"

// CandidateMatch est un utilisateur compatible, annoté pour le classement.
type CandidateMatch struct {
	User        User
	DistanceKm  *float64 // nil si une des deux positions est inconnue
	Description string   // description du type du candidat, "" si inconnue
}

// SortByDistance trie par distance croissante (tri stable).
// Les candidats sans distance passent en dernier.
func SortByDistance(matches []CandidateMatch) {
	sort.SliceStable(matches, func(i, j int) bool {
		di, dj := matches[i].DistanceKm, matches[j].DistanceKm
		switch {
		case di == nil:
			return false
		case dj == nil:
			return true
		default:
			return *di < *dj
		}
	})
}
