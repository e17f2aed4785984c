package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/jupiterclapton/cenackle/services/connection-service/internal/core/domain"
	"github.com/jupiterclapton/cenackle/services/connection-service/internal/core/ports"
)

// --- ConnectionRepository en mémoire ---
// Reproduit les écritures conditionnelles du repo Postgres sous un mutex.

type memConnRepo struct {
	mu       sync.Mutex
	rows     map[string]*domain.Connection // par id
	messages *memMessageRepo
	users    *memUserRepo
	err      error
}

func newMemConnRepo(users *memUserRepo, messages *memMessageRepo) *memConnRepo {
	return &memConnRepo{rows: map[string]*domain.Connection{}, users: users, messages: messages}
}

func (r *memConnRepo) byPair(a, b string) *domain.Connection {
	lo, hi := domain.PairKey(a, b)
	for _, c := range r.rows {
		clo, chi := domain.PairKey(c.RequesterID, c.ReceiverID)
		if clo == lo && chi == hi {
			return c
		}
	}
	return nil
}

func (r *memConnRepo) SendRequest(_ context.Context, c *domain.Connection) (*domain.Connection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	if existing := r.byPair(c.RequesterID, c.ReceiverID); existing != nil {
		existing.Phase = domain.PhasePending
		cp := *existing
		return &cp, nil
	}
	cp := *c
	r.rows[c.ID] = &cp
	out := cp
	return &out, nil
}

func (r *memConnRepo) Accept(_ context.Context, id, receiverID string) (*domain.Connection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.rows[id]
	if !ok || !c.IsPending() || c.ReceiverID != receiverID {
		return nil, domain.ErrConnectionNotFound
	}
	c.Phase = domain.PhaseConfirmed
	c.Read = true
	cp := *c
	return &cp, nil
}

func (r *memConnRepo) deletePending(id, userID string, isReceiver bool) (*domain.Connection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.rows[id]
	if !ok || !c.IsPending() {
		return nil, domain.ErrConnectionNotFound
	}
	if (isReceiver && c.ReceiverID != userID) || (!isReceiver && c.RequesterID != userID) {
		return nil, domain.ErrConnectionNotFound
	}
	delete(r.rows, id)
	cp := *c
	return &cp, nil
}

func (r *memConnRepo) Decline(_ context.Context, id, receiverID string) (*domain.Connection, error) {
	return r.deletePending(id, receiverID, true)
}

func (r *memConnRepo) Cancel(_ context.Context, id, requesterID string) (*domain.Connection, error) {
	return r.deletePending(id, requesterID, false)
}

func (r *memConnRepo) MarkAllAsRead(_ context.Context, receiverID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, c := range r.rows {
		if c.IsPending() && c.ReceiverID == receiverID {
			c.Read = true
			n++
		}
	}
	return n, nil
}

func (r *memConnRepo) Remove(ctx context.Context, id, userID string) (*domain.Connection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.rows[id]
	if !ok || !c.IsConfirmed() || !c.Involves(userID) {
		return nil, domain.ErrConnectionNotFound
	}
	delete(r.rows, id)
	if r.messages != nil {
		_, _ = r.messages.DeleteAllBetween(ctx, c.RequesterID, c.ReceiverID)
	}
	cp := *c
	return &cp, nil
}

func (r *memConnRepo) summary(id string) domain.UserSummary {
	if u, ok := r.users.byID[id]; ok {
		return u.Summary()
	}
	return domain.UserSummary{ID: id}
}

func (r *memConnRepo) ListPending(_ context.Context, receiverID string) ([]domain.PendingRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.PendingRequest{}
	for _, c := range r.rows {
		if c.IsPending() && c.ReceiverID == receiverID {
			out = append(out, domain.PendingRequest{ConnectionID: c.ID, From: r.summary(c.RequesterID), IsRead: c.Read})
		}
	}
	return out, nil
}

func (r *memConnRepo) ListSent(_ context.Context, requesterID string) ([]domain.SentRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.SentRequest{}
	for _, c := range r.rows {
		if c.IsPending() && c.RequesterID == requesterID {
			out = append(out, domain.SentRequest{ConnectionID: c.ID, To: r.summary(c.ReceiverID)})
		}
	}
	return out, nil
}

func (r *memConnRepo) ListConfirmed(_ context.Context, userID string) ([]domain.ConfirmedConnection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.ConfirmedConnection{}
	for _, c := range r.rows {
		if c.IsConfirmed() && c.Involves(userID) {
			other := c.Counterpart(userID)
			var pt domain.PersonalityType
			if u, ok := r.users.byID[other]; ok {
				pt = u.PersonalityType
			}
			out = append(out, domain.ConfirmedConnection{
				ConnectionID:    c.ID,
				With:            r.summary(other),
				PersonalityType: pt,
			})
		}
	}
	return out, nil
}

func (r *memConnRepo) IsConnected(_ context.Context, a, b string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := r.byPair(a, b)
	return c != nil && c.IsConfirmed(), nil
}

// --- UserRepository en mémoire ---

type memUserRepo struct {
	byID    map[string]*domain.User
	findErr error
}

func newMemUserRepo(users ...domain.User) *memUserRepo {
	r := &memUserRepo{byID: map[string]*domain.User{}}
	for i := range users {
		u := users[i]
		r.byID[u.ID] = &u
	}
	return r
}

func (r *memUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	u, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *memUserRepo) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	for _, u := range r.byID {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

// FindByTypes n'exclut PAS excludeID : le service doit le filtrer lui-même.
func (r *memUserRepo) FindByTypes(_ context.Context, types []domain.PersonalityType, _ string) ([]domain.User, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	out := []domain.User{}
	for _, u := range r.byID {
		for _, t := range types {
			if u.PersonalityType == t {
				out = append(out, *u)
			}
		}
	}
	return out, nil
}

func (r *memUserRepo) SetPersonalityType(_ context.Context, userID string, t domain.PersonalityType) error {
	u, ok := r.byID[userID]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.PersonalityType = t
	return nil
}

// --- MessageRepository en mémoire ---

type memMessageRepo struct {
	mu   sync.Mutex
	msgs []domain.Message
}

func (r *memMessageRepo) Save(_ context.Context, m *domain.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, *m)
	return nil
}

func between(m domain.Message, a, b string) bool {
	return (m.SenderID == a && m.RecipientID == b) || (m.SenderID == b && m.RecipientID == a)
}

func (r *memMessageRepo) ListBetween(_ context.Context, a, b string, limit, offset int) ([]domain.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.Message{}
	for _, m := range r.msgs {
		if between(m, a, b) {
			out = append(out, m)
		}
	}
	if offset > len(out) {
		return []domain.Message{}, nil
	}
	out = out[offset:]
	if limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (r *memMessageRepo) ListUnread(_ context.Context, recipientID string) ([]domain.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.Message{}
	for _, m := range r.msgs {
		if m.RecipientID == recipientID && !m.IsRead {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *memMessageRepo) MarkRead(_ context.Context, id, recipientID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.msgs {
		if r.msgs[i].ID == id && r.msgs[i].RecipientID == recipientID {
			r.msgs[i].IsRead = true
			return nil
		}
	}
	return domain.ErrMessageNotFound
}

func (r *memMessageRepo) DeleteAllBetween(_ context.Context, a, b string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.msgs[:0]
	var n int64
	for _, m := range r.msgs {
		if between(m, a, b) {
			n++
			continue
		}
		kept = append(kept, m)
	}
	r.msgs = kept
	return n, nil
}

// --- MatchCache en mémoire ---
// Même découpage par génération que le cache Redis.

type memCache struct {
	gen     int64
	entries map[string][]domain.CandidateMatch // "gen:userID"
	getErr  error
	genErr  error
}

func newMemCache() *memCache {
	return &memCache{entries: map[string][]domain.CandidateMatch{}}
}

func cacheKey(gen int64, userID string) string {
	return fmt.Sprintf("%d:%s", gen, userID)
}

// current retourne l'entrée visible pour userID dans la génération courante.
func (c *memCache) current(userID string) ([]domain.CandidateMatch, bool) {
	m, ok := c.entries[cacheKey(c.gen, userID)]
	return m, ok
}

func (c *memCache) Generation(context.Context) (int64, error) {
	return c.gen, c.genErr
}

func (c *memCache) Get(_ context.Context, gen int64, userID string) ([]domain.CandidateMatch, bool, error) {
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	m, ok := c.entries[cacheKey(gen, userID)]
	return m, ok, nil
}

func (c *memCache) Set(_ context.Context, gen int64, userID string, matches []domain.CandidateMatch) error {
	c.entries[cacheKey(gen, userID)] = matches
	return nil
}

func (c *memCache) InvalidateAll(context.Context) error {
	c.gen++
	return nil
}

// --- EventPublisher qui enregistre ---

type recordingPublisher struct {
	mu     sync.Mutex
	events []ports.ConnectionEvent
	err    error
}

func (p *recordingPublisher) PublishConnectionEvent(_ context.Context, evt ports.ConnectionEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evt)
	return p.err
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

func (p *recordingPublisher) last() ports.ConnectionEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.events[len(p.events)-1]
}

// --- Gateway figé ---

type stubGateway struct {
	connected bool
	err       error
}

func (g stubGateway) IsConnected(context.Context, string, string) (bool, error) {
	return g.connected, g.err
}

var errBoom = errors.New("boom")

func newID() string { return uuid.NewString() }
