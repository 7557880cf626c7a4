package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/MikeSquared-Agency/mimic/internal/fireworks"
)

// Server exposes health/status plus an HTTP chat surface onto the fine-tuned
// persona model. Sessions live in memory, keyed by a caller-chosen id.
type Server struct {
	router *chi.Mux
	port   int

	client    *fireworks.Client // nil when Fireworks is not configured
	chatName  string
	senderAs  string
	respondAs string
	maxTokens int

	mu       sync.Mutex
	sessions map[string]*fireworks.Session
}

func NewServer(port int, client *fireworks.Client, chatName, senderAs, respondAs string, maxTokens int) *Server {
	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	s := &Server{
		router:    router,
		port:      port,
		client:    client,
		chatName:  chatName,
		senderAs:  senderAs,
		respondAs: respondAs,
		maxTokens: maxTokens,
		sessions:  make(map[string]*fireworks.Session),
	}

	router.Get("/health", s.health)
	router.Get("/api/v1/mimic/status", s.status)
	router.Post("/api/v1/mimic/chat", s.chat)

	return s
}

func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	slog.Info("API server starting", "addr", addr)
	return http.ListenAndServe(addr, s.router)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) status(w http.ResponseWriter, r *http.Request) {
	chat := "unconfigured"
	if s.client != nil {
		chat = "ready"
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"agent":      "mimic",
		"chat":       chat,
		"respond_as": s.respondAs,
	})
}

type chatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

type chatResponse struct {
	SessionID string `json:"session_id"`
	Sender    string `json:"sender"`
	Reply     string `json:"reply"`
}

func (s *Server) chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Message == "" {
		http.Error(w, "message is required", http.StatusBadRequest)
		return
	}
	if s.client == nil {
		http.Error(w, "fireworks is not configured", http.StatusServiceUnavailable)
		return
	}
	if req.SessionID == "" {
		req.SessionID = "default"
	}

	session := s.session(req.SessionID)
	reply, err := session.Chat(r.Context(), s.client, req.Message)
	if err != nil {
		slog.Error("chat completion failed", "session_id", req.SessionID, "error", err)
		http.Error(w, "completion failed", http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(chatResponse{
		SessionID: req.SessionID,
		Sender:    s.respondAs,
		Reply:     reply,
	})
}

func (s *Server) session(id string) *fireworks.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[id]; ok {
		return sess
	}
	sess := fireworks.NewSession(s.chatName, s.senderAs, s.respondAs, s.maxTokens)
	s.sessions[id] = sess
	return sess
}
