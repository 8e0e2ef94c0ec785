package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/wricardo/autopilot2048/game/driver"
	"github.com/wricardo/autopilot2048/game/engine"
	"github.com/wricardo/autopilot2048/game/runs"
	"github.com/wricardo/autopilot2048/game/service"
	"github.com/wricardo/autopilot2048/transport/websocket"
)

// Server is the REST control surface for the bot.
type Server struct {
	service service.BotService
	hub     *websocket.Hub
	router  *mux.Router
	logger  *zap.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithLogger attaches a logger. Components default to a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewServer creates the API server. The hub is optional; without it the
// /ws endpoint is not mounted and control operations skip broadcasting.
func NewServer(botService service.BotService, hub *websocket.Hub, opts ...Option) *Server {
	s := &Server{
		service: botService,
		hub:     hub,
		router:  mux.NewRouter(),
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all API routes.
func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()

	// Observation
	api.HandleFunc("/status", s.handleStatus).Methods("GET")
	api.HandleFunc("/board", s.handleBoard).Methods("GET")
	api.HandleFunc("/stats", s.handleStats).Methods("GET")
	api.HandleFunc("/health", s.handleHealth).Methods("GET")

	// Strategy
	api.HandleFunc("/strategy", s.handleGetStrategy).Methods("GET")
	api.HandleFunc("/strategy", s.handleSetStrategy).Methods("PUT")

	// Loop control
	api.HandleFunc("/driver/start", s.handleStart).Methods("POST")
	api.HandleFunc("/driver/stop", s.handleStop).Methods("POST")
	api.HandleFunc("/driver/pause", s.handlePause).Methods("POST")
	api.HandleFunc("/driver/resume", s.handleResume).Methods("POST")
	api.HandleFunc("/driver/step", s.handleStep).Methods("POST")
	api.HandleFunc("/driver/reset", s.handleReset).Methods("POST")
	api.HandleFunc("/driver/priority", s.handleSetPriority).Methods("PUT")
	api.HandleFunc("/driver/priority", s.handleClearPriority).Methods("DELETE")

	// Run history
	api.HandleFunc("/runs", s.handleListRuns).Methods("GET")
	api.HandleFunc("/runs/{id}", s.handleGetRun).Methods("GET")
	api.HandleFunc("/runs/{id}", s.handleDeleteRun).Methods("DELETE")

	// Profiles
	api.HandleFunc("/profiles", s.handleListProfiles).Methods("GET")

	// WebSocket event stream
	if s.hub != nil {
		s.router.HandleFunc("/ws", s.hub.ServeWS)
	}

	// Control panel assets (if present)
	s.router.PathPrefix("/").Handler(http.FileServer(http.Dir("./static/")))
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Response helpers

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// broadcastStatus pushes a fresh snapshot to WebSocket subscribers after a
// control operation so panels update without polling.
func (s *Server) broadcastStatus(ctx context.Context) {
	if s.hub == nil {
		return
	}
	status, err := s.service.Status(ctx)
	if err != nil {
		return
	}
	s.hub.BroadcastEvent("status", status)
}

// Observation Handlers

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	status, err := s.service.Status(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, status)
}

func (s *Server) handleBoard(w http.ResponseWriter, r *http.Request) {
	board, err := s.service.Board(r.Context())
	if err != nil {
		if errors.Is(err, service.ErrNoSurface) {
			respondError(w, http.StatusServiceUnavailable, err.Error())
			return
		}
		// The surface exists but could not be read this instant.
		respondError(w, http.StatusBadGateway, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, board)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.service.Stats(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, stats)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}

// Strategy Handlers

func (s *Server) handleGetStrategy(w http.ResponseWriter, r *http.Request) {
	strategy, err := s.service.GetStrategy(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, strategy)
}

func (s *Server) handleSetStrategy(w http.ResponseWriter, r *http.Request) {
	var update engine.StrategyUpdate

	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	strategy, err := s.service.SetStrategy(r.Context(), update)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.logger.Info("strategy updated",
		zap.String("kind", strategy.Strategy.Kind),
		zap.Int("depth", strategy.Strategy.Depth))

	s.broadcastStatus(r.Context())
	respondJSON(w, http.StatusOK, strategy)
}

// Loop Control Handlers

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	result, err := s.service.Start(r.Context())
	if err != nil {
		if errors.Is(err, driver.ErrNoAdapter) || errors.Is(err, driver.ErrDestroyed) {
			respondError(w, http.StatusConflict, err.Error())
			return
		}
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.logger.Info("run start requested", zap.String("run_id", result.RunID))
	s.broadcastStatus(r.Context())
	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	result, err := s.service.Stop(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.logger.Info("run stop requested")
	s.broadcastStatus(r.Context())
	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handlePause(w http.ResponseWriter, r *http.Request) {
	result, err := s.service.Pause(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.broadcastStatus(r.Context())
	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleResume(w http.ResponseWriter, r *http.Request) {
	result, err := s.service.Resume(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.broadcastStatus(r.Context())
	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleStep(w http.ResponseWriter, r *http.Request) {
	result, err := s.service.Step(r.Context())
	if err != nil {
		if errors.Is(err, driver.ErrNoAdapter) || errors.Is(err, driver.ErrDestroyed) {
			respondError(w, http.StatusConflict, err.Error())
			return
		}
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.broadcastStatus(r.Context())
	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	result, err := s.service.Reset(r.Context())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNoSurface):
			respondError(w, http.StatusServiceUnavailable, err.Error())
		case errors.Is(err, service.ErrNoReset):
			respondError(w, http.StatusNotImplemented, err.Error())
		default:
			respondError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	s.logger.Info("board reset requested")
	s.broadcastStatus(r.Context())
	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleSetPriority(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Directions []string `json:"directions"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := s.service.SetDirectionPriority(r.Context(), req.Directions)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.broadcastStatus(r.Context())
	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleClearPriority(w http.ResponseWriter, r *http.Request) {
	result, err := s.service.ClearDirectionPriority(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.broadcastStatus(r.Context())
	respondJSON(w, http.StatusOK, result)
}

// Run History Handlers

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	records, err := s.service.ListRuns(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"count": len(records),
		"runs":  records,
	})
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	runID := vars["id"]

	record, err := s.service.GetRun(r.Context(), runID)
	if err != nil {
		respondError(w, runErrorStatus(err), err.Error())
		return
	}

	respondJSON(w, http.StatusOK, record)
}

func (s *Server) handleDeleteRun(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	runID := vars["id"]

	if err := s.service.DeleteRun(r.Context(), runID); err != nil {
		respondError(w, runErrorStatus(err), err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Run %s deleted", runID),
	})
}

// runErrorStatus maps run-history errors onto HTTP statuses.
func runErrorStatus(err error) int {
	switch {
	case errors.Is(err, runs.ErrRunNotFound):
		return http.StatusNotFound
	case errors.Is(err, runs.ErrInvalidRunID):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrHistoryDisabled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Profile Handlers

func (s *Server) handleListProfiles(w http.ResponseWriter, r *http.Request) {
	profiles, err := s.service.ListProfiles(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"count":    len(profiles),
		"profiles": profiles,
	})
}
