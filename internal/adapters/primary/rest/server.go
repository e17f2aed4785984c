package rest

import (
	"fmt"
	"net/http"

	"github.com/rs/cors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/jupiterclapton/cenackle/services/connection-service/internal/core/ports"
)

// Server est l'adapter primaire REST : il ne fait qu'orchestrer les ports.
type Server struct {
	conns    ports.ConnectionService
	users    ports.UserService
	matches  ports.MatchFinder
	messages ports.MessageService
}

func NewServer(conns ports.ConnectionService, users ports.UserService, matches ports.MatchFinder, messages ports.MessageService) *Server {
	return &Server{conns: conns, users: users, matches: matches, messages: messages}
}

// Routes enregistre toutes les routes authentifiées.
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	// Connexions
	mux.HandleFunc("POST /connections/{username}/connect", s.handleConnect)
	mux.HandleFunc("POST /connections/{connectionId}/accept", s.handleAccept)
	mux.HandleFunc("DELETE /connections/{connectionId}/decline-request", s.handleDecline)
	mux.HandleFunc("DELETE /connections/{connectionId}/cancel-request", s.handleCancel)
	mux.HandleFunc("DELETE /connections/{connectionId}/disconnect", s.handleDisconnect)
	mux.HandleFunc("GET /connections/pending-requests", s.handleListPending)
	mux.HandleFunc("GET /connections/sent-requests", s.handleListSent)
	mux.HandleFunc("PATCH /connections/requests/read", s.handleMarkAllAsRead)
	mux.HandleFunc("GET /connections", s.handleListConfirmed)

	// Utilisateurs
	mux.HandleFunc("GET /users/{username}/matches", s.handleMatches)
	mux.HandleFunc("GET /users/{username}/mbti", s.handleGetMbti)
	mux.HandleFunc("PATCH /users/{username}/mbti", s.handleSetMbti)

	// Messages
	mux.HandleFunc("GET /messages/unread", s.handleUnread)
	mux.HandleFunc("GET /messages/{username}", s.handleHistory)
	mux.HandleFunc("POST /messages/{username}", s.handleSendMessage)
	mux.HandleFunc("PATCH /messages/{id}/read", s.handleMarkMessageRead)

	return mux
}

// HandlerConfig : ce que le bootstrap fournit pour assembler la chaîne HTTP.
type HandlerConfig struct {
	Validator      ports.TokenValidator
	AllowedOrigins []string
	ServiceName    string
}

// Handler assemble la chaîne complète : OTEL -> CORS -> (healthz | Auth -> routes).
func (s *Server) Handler(cfg HandlerConfig) http.Handler {
	root := http.NewServeMux()
	root.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	root.Handle("/", AuthMiddleware(cfg.Validator)(s.Routes()))

	var h http.Handler = root

	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "baggage", "traceparent"},
		AllowCredentials: true,
	})
	h = c.Handler(h)

	name := cfg.ServiceName
	if name == "" {
		name = "connection-service"
	}
	return otelhttp.NewHandler(h, name, otelhttp.WithSpanNameFormatter(func(operation string, r *http.Request) string {
		return fmt.Sprintf("HTTP %s %s", r.Method, r.URL.Path)
	}))
}
