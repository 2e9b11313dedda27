// Package backendtest runs an in-memory relay backend for tests.
package backendtest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/matheus3301/tsched/internal/backend"
)

// Request is a call recorded by the server.
type Request struct {
	Method string
	Path   string
	Auth   string
}

type account struct {
	username string
	password string
}

// Server is a fake backend implementing the REST contract.
type Server struct {
	*httptest.Server

	mu           sync.Mutex
	token        string
	accounts     map[string]account
	groups       []backend.RemoteGroup
	messages     map[string][]backend.Message
	scheduled    []backend.ScheduleRequest
	requests     []Request
	failGroups   bool
	failMessages map[string]bool
	nextID       int
}

// New starts a server that accepts the given bearer token and closes it on cleanup.
func New(t testing.TB, token string) *Server {
	t.Helper()
	s := &Server{
		token:        token,
		accounts:     make(map[string]account),
		messages:     make(map[string][]backend.Message),
		failMessages: make(map[string]bool),
	}
	s.Server = httptest.NewServer(s.routes())
	t.Cleanup(s.Close)
	return s
}

// BaseURL returns the API root for backend.NewClient.
func (s *Server) BaseURL() string { return s.Server.URL }

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.record)

	r.Post("/auth/login", s.handleLogin)
	r.Post("/auth/register", s.handleRegister)

	r.Group(func(r chi.Router) {
		r.Use(s.requireToken)
		r.Get("/groups", s.handleListGroups)
		r.Post("/groups", s.handleCreateGroup)
		r.Get("/messages/group/{groupId}", s.handleListMessages)
		r.Post("/messages/schedule", s.handleSchedule)
		r.Patch("/messages/schedule/{id}/toggle", s.handleToggle)
	})
	return r
}

// AddAccount registers credentials accepted by /auth/login.
func (s *Server) AddAccount(username, email, password string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[email] = account{username: username, password: password}
}

// AddGroup appends a group to the directory.
func (s *Server) AddGroup(g backend.RemoteGroup) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.groups = append(s.groups, g)
}

// SetMessages replaces the history of a group.
func (s *Server) SetMessages(groupID string, msgs []backend.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages[groupID] = append([]backend.Message(nil), msgs...)
}

// Messages returns the stored history of a group.
func (s *Server) Messages(groupID string) []backend.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]backend.Message(nil), s.messages[groupID]...)
}

// FailGroups makes GET /groups return 500.
func (s *Server) FailGroups(fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failGroups = fail
}

// FailMessages makes the history fetch of one group return 500.
func (s *Server) FailMessages(groupID string, fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failMessages[groupID] = fail
}

// Scheduled returns every accepted schedule request.
func (s *Server) Scheduled() []backend.ScheduleRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]backend.ScheduleRequest(nil), s.scheduled...)
}

// Requests returns every call received, in order.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// Count returns how many calls matched method and path.
func (s *Server) Count(method, path string) int {
	n := 0
	for _, r := range s.Requests() {
		if r.Method == method && r.Path == path {
			n++
		}
	}
	return n
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests = append(s.requests, Request{
			Method: r.Method,
			Path:   r.URL.Path,
			Auth:   r.Header.Get("Authorization"),
		})
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+s.token {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Unauthorized"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid request body"})
		return
	}
	s.mu.Lock()
	acct, ok := s.accounts[req.Email]
	s.mu.Unlock()
	if !ok || acct.password != req.Password {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Invalid email or password"})
		return
	}
	writeJSON(w, http.StatusOK, backend.LoginResponse{
		User:  backend.User{ID: "u-1", Username: acct.username, Email: req.Email},
		Token: s.token,
	})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid request body"})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.accounts[req.Email]; exists {
		writeJSON(w, http.StatusConflict, map[string]string{"message": "User already exists"})
		return
	}
	s.accounts[req.Email] = account{username: req.Username, password: req.Password}
	writeJSON(w, http.StatusCreated, map[string]string{"message": "User registered"})
}

func (s *Server) handleListGroups(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failGroups {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "database unavailable"})
		return
	}
	groups := append([]backend.RemoteGroup{}, s.groups...)
	writeJSON(w, http.StatusOK, groups)
}

func (s *Server) handleCreateGroup(w http.ResponseWriter, r *http.Request) {
	var g backend.RemoteGroup
	if err := json.NewDecoder(r.Body).Decode(&g); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid request body"})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.groups {
		if existing.GroupID == g.GroupID {
			writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Group already exists"})
			return
		}
	}
	g.CreatedAt = "2026-01-01T00:00:00.000Z"
	s.groups = append(s.groups, g)
	writeJSON(w, http.StatusCreated, g)
}

func (s *Server) handleListMessages(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "groupId")
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failMessages[groupID] {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "history unavailable"})
		return
	}
	msgs := append([]backend.Message{}, s.messages[groupID]...)
	writeJSON(w, http.StatusOK, map[string]any{"messages": msgs})
}

func (s *Server) handleSchedule(w http.ResponseWriter, r *http.Request) {
	var req backend.ScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"msg": "Invalid request body"})
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Message is required"})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.hasGroupLocked(req.GroupID) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Group not found"})
		return
	}
	s.nextID++
	msg := backend.Message{
		ID:               fmt.Sprintf("m-%d", s.nextID),
		Text:             req.Message,
		CreatedAt:        "2026-01-01T00:00:00.000Z",
		Sent:             req.ScheduleType == backend.ScheduleNow,
		ScheduleType:     req.ScheduleType,
		ScheduleDateTime: req.ScheduleDateTime,
		IntervalValue:    backend.Count(req.IntervalValue),
		IntervalUnit:     req.IntervalUnit,
		RepeatCount:      backend.Count(req.RepeatCount),
	}
	if msg.Sent {
		msg.SentCount = 1
	}
	s.messages[req.GroupID] = append(s.messages[req.GroupID], msg)
	s.scheduled = append(s.scheduled, req)
	writeJSON(w, http.StatusCreated, map[string]any{"message": msg})
}

func (s *Server) handleToggle(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	defer s.mu.Unlock()
	for groupID, msgs := range s.messages {
		for i := range msgs {
			if msgs[i].ID == id {
				msgs[i].Paused = !msgs[i].Paused
				s.messages[groupID] = msgs
				writeJSON(w, http.StatusOK, msgs[i])
				return
			}
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"msg": "Message not found"})
}

func (s *Server) hasGroupLocked(groupID string) bool {
	for _, g := range s.groups {
		if g.GroupID == groupID {
			return true
		}
	}
	return false
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
