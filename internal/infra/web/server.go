package web

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"telegram-post-scheduler/internal/domain/model"
	"telegram-post-scheduler/internal/usecase"
)

// Server is the read-only ops surface: health, metrics and a JSON view of
// the configured messages. All writes go through the admin bot.
type Server struct {
	messages usecase.MessageUseCase
	delivery usecase.DeliveryUseCase
	apiKey   string
	log      *zerolog.Logger
}

func NewServer(messages usecase.MessageUseCase, delivery usecase.DeliveryUseCase, apiKey string, logger *zerolog.Logger) *Server {
	compLog := logger.With().Str("component", "OpsServer").Logger()
	return &Server{messages: messages, delivery: delivery, apiKey: apiKey, log: &compLog}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(s.authMiddleware)
		r.Get("/messages", s.handleListMessages)
		r.Get("/messages/due", s.handleListDue)
	})
	return r
}

// authMiddleware is a plain bearer-token compare; the ops surface is meant
// for a single operator, not a user base.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.apiKey == "" {
			s.log.Error().Msg("ops api key is not configured")
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
		parts := strings.SplitN(r.Header.Get("Authorization"), " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		if parts[1] != s.apiKey {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type messageView struct {
	ID         string          `json:"id"`
	Text       string          `json:"text"`
	ImagePaths []string        `json:"image_paths"`
	Recipients []string        `json:"recipients"`
	Schedule   *model.Schedule `json:"schedule"`
}

func (s *Server) handleListMessages(w http.ResponseWriter, r *http.Request) {
	snap := s.messages.List(r.Context())
	views := make([]messageView, 0, snap.Len())
	for _, id := range snap.Order {
		def := snap.Defs[id]
		views = append(views, messageView{
			ID:         id,
			Text:       def.Text,
			ImagePaths: def.ImagePaths,
			Recipients: def.Recipients,
			Schedule:   def.Schedule,
		})
	}
	writeJSON(w, map[string]any{"messages": views})
}

func (s *Server) handleListDue(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	due := s.delivery.ListDue(r.Context(), now)
	if due == nil {
		due = []string{}
	}
	writeJSON(w, map[string]any{"now": now.Format("15:04"), "due": due})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
