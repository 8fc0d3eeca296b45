// Package api provides a read-only HTTP diagnostics surface. It never
// touches live engine state: the driver pushes a status copy after
// each tick and handlers serve that copy.
package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/Luis85/flowti-sub000/internal/engine"
)

// Status is the serializable view the driver publishes per tick.
type Status struct {
	RunID     string             `json:"run_id"`
	Tick      int                `json:"tick"`
	Clock     engine.Clock       `json:"clock"`
	Stamp     string             `json:"stamp"`
	Inbox     int                `json:"inbox"`
	Orders    int                `json:"orders"`
	Timers    int                `json:"timers"`
	PlayerXP  float64            `json:"player_xp"`
	Energy    float64            `json:"energy"`
	Condition string             `json:"condition"`
	Errors    []engine.TickError `json:"-"`
}

// Server serves simulation status over HTTP.
type Server struct {
	Port int

	mu     sync.RWMutex
	status Status
}

// Update replaces the served status. Called by the driver after a tick.
func (s *Server) Update(st Status) {
	s.mu.Lock()
	s.status = st
	s.mu.Unlock()
}

// Start begins serving in a goroutine.
func (s *Server) Start() {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/status", s.handleStatus)
	mux.HandleFunc("/api/v1/errors", s.handleErrors)

	addr := fmt.Sprintf(":%d", s.Port)
	go func() {
		slog.Info("diagnostics API listening", "addr", addr)
		if err := http.ListenAndServe(addr, mux); err != nil {
			slog.Error("diagnostics API stopped", "error", err)
		}
	}()
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.mu.RLock()
	st := s.status
	s.mu.RUnlock()
	writeJSON(w, st)
}

func (s *Server) handleErrors(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.mu.RLock()
	errs := make([]engine.TickError, len(s.status.Errors))
	copy(errs, s.status.Errors)
	s.mu.RUnlock()
	writeJSON(w, map[string]any{"errors": errs})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Debug("write response failed", "error", err)
	}
}
