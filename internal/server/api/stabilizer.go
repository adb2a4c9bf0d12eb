package api

import (
	"encoding/json"
	"net/http"
	"strings"
)

// StabilizerControl is the live stabilizer of the running capture session.
type StabilizerControl interface {
	ResetStabilizer()
	SetEnabled(enabled bool)
	IsEnabled() bool
	StabilizerThreshold() float64
	HeldLandmarks() int
}

// StabilizerHandler exposes the stabilizer state over HTTP.
type StabilizerHandler struct {
	ctl StabilizerControl
}

// NewStabilizerHandler creates a new StabilizerHandler.
func NewStabilizerHandler(ctl StabilizerControl) *StabilizerHandler {
	return &StabilizerHandler{ctl: ctl}
}

type stabilizerResponse struct {
	Enabled   bool    `json:"enabled"`
	Threshold float64 `json:"threshold"`
	Held      int     `json:"held"`
}

type setStabilizerRequest struct {
	Enabled *bool `json:"enabled"`
}

// ServeHTTP handles GET and POST /api/stabilizer and POST /api/stabilizer/reset.
func (h *StabilizerHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/stabilizer"), "/")

	switch {
	case path == "" && r.Method == http.MethodGet:
		h.status(w)
	case path == "" && r.Method == http.MethodPost:
		var req setStabilizerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid JSON")
			return
		}
		if req.Enabled == nil {
			writeError(w, http.StatusBadRequest, "enabled is required")
			return
		}
		h.ctl.SetEnabled(*req.Enabled)
		h.status(w)
	case path == "reset" && r.Method == http.MethodPost:
		h.ctl.ResetStabilizer()
		h.status(w)
	case path == "" || path == "reset":
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	default:
		writeError(w, http.StatusNotFound, "Not found")
	}
}

func (h *StabilizerHandler) status(w http.ResponseWriter) {
	writeJSON(w, http.StatusOK, stabilizerResponse{
		Enabled:   h.ctl.IsEnabled(),
		Threshold: h.ctl.StabilizerThreshold(),
		Held:      h.ctl.HeldLandmarks(),
	})
}
