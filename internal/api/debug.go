package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/lumensuite/lumen-core/internal/compositor"
	"github.com/lumensuite/lumen-core/internal/visual"
)

// handleRouting returns the current routing table.
func (s *Server) handleRouting(w http.ResponseWriter, _ *http.Request) {
	snap := s.compositor.Snapshot()
	writeJSON(w, http.StatusOK, snap.Routing)
}

// handleSnapshot returns the full compositor state: devices,
// capabilities, routing, and per-device sender statistics.
func (s *Server) handleSnapshot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.compositor.Snapshot())
}

// injectFrameRequest is the body for POST /debug/frame.
type injectFrameRequest struct {
	ModuleID string       `json:"module_id"`
	Kind     visual.Kind  `json:"kind"`
	Pixels   []visual.RGB `json:"pixels"`
}

// handleInjectFrame submits a frame as if a module had produced it.
// Used during commissioning to light up a device without running the
// module stack.
func (s *Server) handleInjectFrame(w http.ResponseWriter, r *http.Request) {
	var req injectFrameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.ModuleID == "" {
		writeBadRequest(w, "module_id is required")
		return
	}
	if !visual.IsValidKind(req.Kind) {
		writeBadRequest(w, "unknown kind")
		return
	}

	err := s.compositor.SubmitFrame(req.ModuleID, req.Kind, visual.Buffer(req.Pixels), time.Now())
	if err != nil {
		if errors.Is(err, compositor.ErrInvalidFrame) {
			writeError(w, http.StatusUnprocessableEntity, ErrCodeValidation, err.Error())
			return
		}
		writeInternalError(w, err.Error())
		return
	}

	w.WriteHeader(http.StatusAccepted)
}
