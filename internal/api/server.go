// Package api exposes the research agent over HTTP with server-sent-event
// streaming.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"

	"github.com/saraswati/saraswati/pkg/agent"
	"github.com/saraswati/saraswati/pkg/paperrank"
)

// Runner drives one research stream. *agent.Loop satisfies it.
type Runner interface {
	Run(ctx context.Context, params agent.RunParams, sink agent.EventSink) string
}

// MessageLog records conversation messages. Optional; persistence failures
// never interrupt a stream.
type MessageLog interface {
	Append(ctx context.Context, projectID, role, content string) error
}

// Server is the HTTP front of the service.
type Server struct {
	host        string
	port        int
	corsOrigins []string
	runner      Runner
	messages    MessageLog
	logger      zerolog.Logger
	server      *http.Server
}

// Config holds server configuration.
type Config struct {
	Host         string
	Port         int
	CORSOrigins  []string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	Runner       Runner
	Messages     MessageLog
	Logger       zerolog.Logger
}

// NewServer creates the HTTP server.
func NewServer(cfg Config) (*Server, error) {
	if cfg.Port <= 0 {
		return nil, fmt.Errorf("invalid port: %d", cfg.Port)
	}
	if cfg.Runner == nil {
		return nil, fmt.Errorf("runner is required")
	}

	s := &Server{
		host:        cfg.Host,
		port:        cfg.Port,
		corsOrigins: cfg.CORSOrigins,
		runner:      cfg.Runner,
		messages:    cfg.Messages,
		logger:      cfg.Logger,
	}

	s.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      s.Handler(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	return s, nil
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/api/v1/chat/research", s.handleResearch)
	mux.HandleFunc("/api/v1/chat/research/greeting", s.handleGreeting)
	return s.withCORS(mux)
}

// Start serves until the listener fails or Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info().Str("addr", s.server.Addr).Msg("api server listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("api server: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && s.originAllowed(origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) originAllowed(origin string) bool {
	for _, allowed := range s.corsOrigins {
		if allowed == "*" || strings.EqualFold(allowed, origin) {
			return true
		}
	}
	return false
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

type historyMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type researchRequest struct {
	ProjectID   string           `json:"project_id"`
	Message     string           `json:"message"`
	History     []historyMessage `json:"history"`
	ActivePaper *paperrank.Paper `json:"active_paper"`
}

func (s *Server) handleResearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req researchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		http.Error(w, "message is required", http.StatusBadRequest)
		return
	}

	streamID, _ := gonanoid.New()
	log := s.logger.With().Str("stream_id", streamID).Str("project_id", req.ProjectID).Logger()
	log.Info().Int("history_len", len(req.History)).Msg("research stream started")

	history := make([]agent.Turn, 0, len(req.History))
	for _, m := range req.History {
		history = append(history, agent.Turn{Role: m.Role, Content: m.Content})
	}

	s.logMessage(r.Context(), req.ProjectID, agent.RoleUser, req.Message)

	setStreamHeaders(w)
	sink := agent.NewSSEEmitter(w)

	text := s.runner.Run(r.Context(), agent.RunParams{
		ProjectID:   req.ProjectID,
		Message:     req.Message,
		History:     history,
		ActivePaper: req.ActivePaper,
	}, sink)

	if text != "" {
		s.logMessage(r.Context(), req.ProjectID, agent.RoleAssistant, text)
	}
	log.Info().Msg("research stream finished")
}

// greetingChips is the familiarity prompt shown on a fresh canvas.
var greetingChips = []string{
	"I'm a complete beginner",
	"I know the basics",
	"I'm an expert — go deep",
	"Just show me the top papers",
}

func (s *Server) handleGreeting(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	title := r.URL.Query().Get("project_title")
	if title == "" {
		title = "your project"
	}

	greeting := "## Welcome to your research canvas! 👋\n\n" +
		"I'm **Saraswati**, your AI research guide for *" + title + "*. " +
		"I can help you discover papers, understand concepts, compare ideas, and build knowledge.\n\n" +
		"To get started — **what's your current familiarity** with this topic?\n"

	setStreamHeaders(w)
	sink := agent.NewSSEEmitter(w)
	for _, line := range strings.Split(greeting, "\n") {
		if err := sink.Emit(agent.Event{Type: agent.EventText, Content: line + "\n"}); err != nil {
			return
		}
	}
	sink.Emit(agent.Event{Type: agent.EventSuggestionChips, Chips: greetingChips})
	sink.Emit(agent.Event{Type: agent.EventDone})
}

func (s *Server) logMessage(ctx context.Context, projectID, role, content string) {
	if s.messages == nil || projectID == "" {
		return
	}
	if err := s.messages.Append(ctx, projectID, role, content); err != nil {
		s.logger.Warn().Err(err).Str("project_id", projectID).Msg("failed to persist message")
	}
}

func setStreamHeaders(w http.ResponseWriter) {
	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	// Disables proxy buffering; events must reach the client as they occur.
	h.Set("X-Accel-Buffering", "no")
}
