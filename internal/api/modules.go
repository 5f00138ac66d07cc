package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lumensuite/lumen-core/internal/capability"
)

// handleListModules returns all registered module capabilities and the
// currently active module.
func (s *Server) handleListModules(w http.ResponseWriter, _ *http.Request) {
	modules := s.modules.List()
	writeJSON(w, http.StatusOK, map[string]any{
		"modules":       modules,
		"count":         len(modules),
		"active_module": s.modules.Active(),
	})
}

// handleRegisterModule registers or replaces a module's capability
// declaration. A rejected declaration leaves the registry unchanged.
func (s *Server) handleRegisterModule(w http.ResponseWriter, r *http.Request) {
	var cap capability.ModuleCapability
	if err := json.NewDecoder(r.Body).Decode(&cap); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	if err := s.modules.Register(cap); err != nil {
		writeError(w, http.StatusUnprocessableEntity, ErrCodeValidation, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, cap)
}

// handleUnregisterModule removes a module's declaration. Devices it was
// driving fall back on the next recomputation.
func (s *Server) handleUnregisterModule(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if _, err := s.modules.Get(id); err != nil {
		if errors.Is(err, capability.ErrModuleNotFound) {
			writeNotFound(w, "module not registered")
			return
		}
		writeInternalError(w, "failed to get module")
		return
	}

	s.modules.Unregister(id)
	w.WriteHeader(http.StatusNoContent)
}

// activeModuleRequest is the body for PUT /modules/active.
type activeModuleRequest struct {
	ModuleID string `json:"module_id"`
}

// handleSetActiveModule declares the module currently in the performer's
// focus. An empty module_id clears the active module.
func (s *Server) handleSetActiveModule(w http.ResponseWriter, r *http.Request) {
	var req activeModuleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	s.modules.SetActive(req.ModuleID)
	writeJSON(w, http.StatusOK, map[string]any{
		"active_module": s.modules.Active(),
	})
}
