package domain

import "strings"

// PersonalityType est un code MBTI à 4 lettres (ex: "INTJ").
type PersonalityType string

// compatibility est une donnée curée à la main, pas une formule.
// Elle n'est pas symétrique (ex: ESFJ -> INTP, mais INTP ne liste pas ESFJ) : ne pas "corriger".
var compatibility = map[PersonalityType][]PersonalityType{
	"ISTJ": {"ESFP", "ESTP"},
	"ISFJ": {"ESFP", "ESTP"},
	"INFJ": {"ENFP", "ENTP"},
	"INTJ": {"ENFP", "ENTP"},
	"ISTP": {"ESFJ", "ENFJ"},
	"ISFP": {"ESTJ", "ENTJ"},
	"INFP": {"ENTJ", "ENFJ"},
	"INTP": {"ENTJ", "ENFJ"},
	"ESTP": {"ISFJ", "ISTJ"},
	"ESFP": {"ISFJ", "ISTJ"},
	"ENFP": {"INFJ", "INTJ"},
	"ENTP": {"INFJ", "INTJ"},
	"ESTJ": {"ISFP", "INFP"},
	"ESFJ": {"ISTP", "INTP"},
	"ENFJ": {"ISTP", "INTP"},
	"ENTJ": {"INFP", "ISFP"},
}

// TypeDetails décrit un type pour l'affichage (profil, matches).
type TypeDetails struct {
	Type        PersonalityType
	Title       string
	Description string
}

var details = map[PersonalityType]TypeDetails{
	"ISTJ": {Title: "The Inspector", Description: "Reserved and practical, they value loyalty, order and tradition."},
	"ISFJ": {Title: "The Protector", Description: "Warm and dedicated, they quietly look after the people around them."},
	"INFJ": {Title: "The Counselor", Description: "Idealistic and insightful, they seek meaning and deep connection."},
	"INTJ": {Title: "The Architect", Description: "Strategic and independent, they love long-range plans and ideas."},
	"ISTP": {Title: "The Crafter", Description: "Hands-on problem solvers who stay calm and curious under pressure."},
	"ISFP": {Title: "The Artist", Description: "Gentle and spontaneous, they express themselves through experience."},
	"INFP": {Title: "The Mediator", Description: "Imaginative idealists guided by their values and empathy."},
	"INTP": {Title: "The Thinker", Description: "Analytical and inventive, they are driven by theories and puzzles."},
	"ESTP": {Title: "The Persuader", Description: "Energetic and bold, they live in the moment and love action."},
	"ESFP": {Title: "The Performer", Description: "Playful and sociable, they bring fun and warmth to any room."},
	"ENFP": {Title: "The Champion", Description: "Enthusiastic and creative, they see possibilities everywhere."},
	"ENTP": {Title: "The Debater", Description: "Quick-witted and curious, they enjoy challenging ideas."},
	"ESTJ": {Title: "The Director", Description: "Organized and decisive, they take charge and get things done."},
	"ESFJ": {Title: "The Caregiver", Description: "Attentive and outgoing, they build harmony in their community."},
	"ENFJ": {Title: "The Giver", Description: "Charismatic and supportive, they inspire others to grow."},
	"ENTJ": {Title: "The Commander", Description: "Confident leaders who organize people toward ambitious goals."},
}

// NormalizeType met un code saisi au format canonique (majuscules, sans espaces).
func NormalizeType(raw string) PersonalityType {
	return PersonalityType(strings.ToUpper(strings.TrimSpace(raw)))
}

// CompatibleTypes retourne les types compatibles, ou nil pour un type inconnu/vide.
func CompatibleTypes(t PersonalityType) []PersonalityType {
	types, ok := compatibility[t]
	if !ok {
		return nil
	}
	// Copie : la table ne doit jamais être modifiée par l'appelant
	out := make([]PersonalityType, len(types))
	copy(out, types)
	return out
}

func IsValidType(t PersonalityType) bool {
	_, ok := compatibility[t]
	return ok
}

// Details retourne la fiche d'un type, avec un fallback "Unknown".
func Details(t PersonalityType) TypeDetails {
	d, ok := details[t]
	if !ok {
		return TypeDetails{
			Type:        t,
			Title:       "Unknown",
			Description: "No additional information available for this personality type",
		}
	}
	d.Type = t
	return d
}

// Description retourne "" si le type est inconnu.
func Description(t PersonalityType) string {
	return details[t].Description
}
