package rest

import (
	"time"

	"github.com/jupiterclapton/cenackle/services/connection-service/internal/core/domain"
)

// --- MAPPERS Domaine -> JSON ---

type userSummaryDTO struct {
	ID         string `json:"id"`
	Username   string `json:"username"`
	FirstName  string `json:"firstName,omitempty"`
	LastName   string `json:"lastName,omitempty"`
	ProfilePic string `json:"profilePic,omitempty"`
}

type pendingRequestDTO struct {
	ConnectionID string `json:"connectionId"`
	userSummaryDTO
	IsRead bool `json:"isRead"`
}

type sentRequestDTO struct {
	ConnectionID string `json:"connectionId"`
	userSummaryDTO
}

type connectionDTO struct {
	ConnectionID string `json:"connectionId"`
	userSummaryDTO
	Mbti string `json:"mbti,omitempty"`
}

type connectionStateDTO struct {
	ID          string `json:"id"`
	RequesterID string `json:"requesterId"`
	ReceiverID  string `json:"receiverId"`
	IsPending   bool   `json:"isPending"`
	IsAccepted  bool   `json:"isAccepted"`
	IsRead      bool   `json:"isRead"`
}

type matchDTO struct {
	userSummaryDTO
	Mbti        string   `json:"mbti"`
	Latitude    *float64 `json:"latitude,omitempty"`
	Longitude   *float64 `json:"longitude,omitempty"`
	Distance    *float64 `json:"distance"` // null si position inconnue
	Description string   `json:"description"`
}

type userDTO struct {
	userSummaryDTO
	Mbti      string   `json:"mbti,omitempty"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

type mbtiDetailsDTO struct {
	Type        string `json:"type"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

type messageDTO struct {
	ID             string    `json:"id"`
	SenderID       string    `json:"senderId"`
	RecipientID    string    `json:"recipientId"`
	SenderUsername string    `json:"senderUsername,omitempty"`
	Content        string    `json:"content"`
	IsRead         bool      `json:"isRead"`
	CreatedAt      time.Time `json:"createdAt"`
}

// --- PAYLOADS Entrants ---

type setMbtiRequest struct {
	Mbti string `json:"mbti"`
}

type sendMessageRequest struct {
	Content string `json:"content"`
}

func toSummaryDTO(u domain.UserSummary) userSummaryDTO {
	return userSummaryDTO{
		ID:         u.ID,
		Username:   u.Username,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		ProfilePic: u.ProfilePic,
	}
}

func toConnectionStateDTO(c *domain.Connection) connectionStateDTO {
	pending, accepted := c.Flags()
	return connectionStateDTO{
		ID:          c.ID,
		RequesterID: c.RequesterID,
		ReceiverID:  c.ReceiverID,
		IsPending:   pending,
		IsAccepted:  accepted,
		IsRead:      c.Read,
	}
}

func toPendingDTOs(in []domain.PendingRequest) []pendingRequestDTO {
	out := make([]pendingRequestDTO, 0, len(in))
	for _, p := range in {
		out = append(out, pendingRequestDTO{ConnectionID: p.ConnectionID, userSummaryDTO: toSummaryDTO(p.From), IsRead: p.IsRead})
	}
	return out
}

func toSentDTOs(in []domain.SentRequest) []sentRequestDTO {
	out := make([]sentRequestDTO, 0, len(in))
	for _, s := range in {
		out = append(out, sentRequestDTO{ConnectionID: s.ConnectionID, userSummaryDTO: toSummaryDTO(s.To)})
	}
	return out
}

func toConnectionDTOs(in []domain.ConfirmedConnection) []connectionDTO {
	out := make([]connectionDTO, 0, len(in))
	for _, c := range in {
		out = append(out, connectionDTO{
			ConnectionID:   c.ConnectionID,
			userSummaryDTO: toSummaryDTO(c.With),
			Mbti:           string(c.PersonalityType),
		})
	}
	return out
}

func toMatchDTOs(in []domain.CandidateMatch) []matchDTO {
	out := make([]matchDTO, 0, len(in))
	for _, m := range in {
		dto := matchDTO{
			userSummaryDTO: toSummaryDTO(m.User.Summary()),
			Mbti:           string(m.User.PersonalityType),
			Distance:       m.DistanceKm,
			Description:    m.Description,
		}
		if m.User.Location != nil {
			lat, lon := m.User.Location.Latitude, m.User.Location.Longitude
			dto.Latitude, dto.Longitude = &lat, &lon
		}
		out = append(out, dto)
	}
	return out
}

func toUserDTO(u *domain.User) userDTO {
	dto := userDTO{userSummaryDTO: toSummaryDTO(u.Summary()), Mbti: string(u.PersonalityType)}
	if u.Location != nil {
		lat, lon := u.Location.Latitude, u.Location.Longitude
		dto.Latitude, dto.Longitude = &lat, &lon
	}
	return dto
}

func toMessageDTO(m *domain.Message) messageDTO {
	return messageDTO{
		ID:             m.ID,
		SenderID:       m.SenderID,
		RecipientID:    m.RecipientID,
		SenderUsername: m.SenderUsername,
		Content:        m.Content,
		IsRead:         m.IsRead,
		CreatedAt:      m.CreatedAt,
	}
}

func toMessageDTOs(in []domain.Message) []messageDTO {
	out := make([]messageDTO, 0, len(in))
	for i := range in {
		out = append(out, toMessageDTO(&in[i]))
	}
	return out
}
