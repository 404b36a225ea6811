// Package api exposes the question and administration endpoints over HTTP.
// The chat transport proper (message delivery, buttons) lives outside this
// service; this surface is what such a transport calls into.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/apiarylab/apiary-agent/bot"
	"github.com/apiarylab/apiary-agent/indexer"
	"github.com/apiarylab/apiary-agent/ingestion"
	"github.com/apiarylab/apiary-agent/session"
)

// maxUploadBytes bounds a single document upload.
const maxUploadBytes = 32 << 20

// Server exposes HTTP handlers for the question pipeline and the
// administrative corpus operations.
type Server struct {
	bot        *bot.Bot
	indexer    *indexer.Indexer
	sessions   *session.Store
	adminToken string
	logger     *log.Logger
	handler    http.Handler
}

type messageResponse struct {
	Message string `json:"message"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type askRequest struct {
	UserID   string `json:"userId"`
	Question string `json:"question"`
	Reset    bool   `json:"reset"`
}

type askResponse struct {
	Answer  string   `json:"answer"`
	Lang    string   `json:"lang"`
	Topic   string   `json:"topic,omitempty"`
	Outcome string   `json:"outcome"`
	Sources []string `json:"sources,omitempty"`
}

type reindexResponse struct {
	Chunks int `json:"chunks"`
}

type documentsResponse struct {
	Documents []string `json:"documents"`
}

type statsResponse struct {
	Users     int `json:"users"`
	Questions int `json:"questions"`
}

// New constructs a Server over the assembled pipeline. adminToken may be
// empty, which leaves the admin endpoints open (local deployments).
func New(b *bot.Bot, ix *indexer.Indexer, sessions *session.Store, adminToken string, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}

	s := &Server{bot: b, indexer: ix, sessions: sessions, adminToken: adminToken, logger: logger}
	s.handler = s.routes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/v1/ask", s.handleAsk)
	mux.HandleFunc("/v1/admin/reindex", s.requireAdmin(s.handleReindex))
	mux.HandleFunc("/v1/admin/documents", s.requireAdmin(s.handleDocuments))
	mux.HandleFunc("/v1/admin/documents/", s.requireAdmin(s.handleDocumentByName))
	mux.HandleFunc("/v1/admin/stats", s.requireAdmin(s.handleStats))
	return mux
}

func (s *Server) requireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.adminToken != "" && r.Header.Get("X-Admin-Token") != s.adminToken {
			s.writeError(w, http.StatusUnauthorized, fmt.Errorf("missing or invalid admin token"))
			return
		}
		next(w, r)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.methodNotAllowed(w, http.MethodGet)
		return
	}

	s.writeJSON(w, http.StatusOK, messageResponse{Message: "ok"})
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.methodNotAllowed(w, http.MethodPost)
		return
	}

	var req askRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}

	req.UserID = strings.TrimSpace(req.UserID)
	if req.UserID == "" {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("userId is required"))
		return
	}

	if req.Reset {
		s.bot.Reset(req.UserID)
		if strings.TrimSpace(req.Question) == "" {
			s.writeJSON(w, http.StatusOK, messageResponse{Message: "session reset"})
			return
		}
	}

	req.Question = strings.TrimSpace(req.Question)
	if req.Question == "" {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("question is required"))
		return
	}

	answer, err := s.bot.Ask(r.Context(), req.UserID, req.Question)
	if err != nil {
		s.writeError(w, http.StatusBadGateway, fmt.Errorf("answer question: %w", err))
		return
	}

	s.writeJSON(w, http.StatusOK, askResponse{
		Answer:  answer.Text,
		Lang:    string(answer.Lang),
		Topic:   string(answer.Topic),
		Outcome: string(answer.Outcome),
		Sources: answer.Sources,
	})
}

func (s *Server) handleReindex(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.methodNotAllowed(w, http.MethodPost)
		return
	}

	count, err := s.indexer.Rebuild(r.Context())
	if err != nil {
		if errors.Is(err, ingestion.ErrEmptyCorpus) {
			s.writeError(w, http.StatusConflict, err)
			return
		}
		s.writeError(w, http.StatusInternalServerError, fmt.Errorf("reindex failed: %w", err))
		return
	}

	s.writeJSON(w, http.StatusOK, reindexResponse{Chunks: count})
}

func (s *Server) handleDocuments(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		names, err := s.indexer.ListDocuments()
		if err != nil {
			s.writeError(w, http.StatusInternalServerError, err)
			return
		}
		s.writeJSON(w, http.StatusOK, documentsResponse{Documents: names})
	case http.MethodPost:
		s.handleUpload(w, r)
	default:
		s.methodNotAllowed(w, "GET, POST")
	}
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("parse upload: %w", err))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("file field is required: %w", err))
		return
	}
	defer file.Close()

	count, err := s.indexer.AddDocument(r.Context(), header.Filename, file)
	if err != nil {
		switch {
		case errors.Is(err, ingestion.ErrUnsupportedFormat):
			s.writeError(w, http.StatusBadRequest, err)
		case errors.Is(err, ingestion.ErrEmptyCorpus):
			s.writeError(w, http.StatusConflict, err)
		default:
			s.writeError(w, http.StatusInternalServerError, fmt.Errorf("add document: %w", err))
		}
		return
	}

	s.writeJSON(w, http.StatusOK, reindexResponse{Chunks: count})
}

func (s *Server) handleDocumentByName(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		s.methodNotAllowed(w, http.MethodDelete)
		return
	}

	name := strings.TrimPrefix(r.URL.Path, "/v1/admin/documents/")
	if name == "" || strings.Contains(name, "/") {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid document name"))
		return
	}

	count, err := s.indexer.RemoveDocument(r.Context(), name)
	if err != nil {
		// Removing the last document empties the corpus; the file is gone
		// and that is still a successful removal.
		if errors.Is(err, ingestion.ErrEmptyCorpus) {
			s.writeJSON(w, http.StatusOK, reindexResponse{Chunks: 0})
			return
		}
		s.writeError(w, http.StatusInternalServerError, fmt.Errorf("remove document: %w", err))
		return
	}

	s.writeJSON(w, http.StatusOK, reindexResponse{Chunks: count})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.methodNotAllowed(w, http.MethodGet)
		return
	}

	stats := s.sessions.Snapshot()
	s.writeJSON(w, http.StatusOK, statsResponse{Users: stats.Users, Questions: stats.Questions})
}

func (s *Server) methodNotAllowed(w http.ResponseWriter, allowed string) {
	w.Header().Set("Allow", allowed)
	s.writeError(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed, use %s", allowed))
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Printf("encode response: %v", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.logger.Printf("api error (%d): %v", status, err)
	s.writeJSON(w, status, errorResponse{Error: err.Error()})
}

func decodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return nil
	}
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if err == io.EOF {
			return nil
		}
		return err
	}

	if dec.More() {
		return fmt.Errorf("request body must contain a single JSON object")
	}

	return nil
}
