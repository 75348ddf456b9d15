package api

import (
	"net/http"

	"github.com/PhilippeFerreiraDeSousa/hand-gestures/internal/app"
	"github.com/PhilippeFerreiraDeSousa/hand-gestures/internal/gesture"
)

// Pipeline is the part of the running pipeline the operator API controls.
type Pipeline interface {
	ResetView() gesture.TransformState
	Status() app.Status
}

// ViewHandler serves POST /api/reset and GET /api/state.
type ViewHandler struct {
	pipeline Pipeline
	viewers  func() int
}

// NewViewHandler creates a ViewHandler. viewers reports the number of
// connected event subscribers and may be nil.
func NewViewHandler(p Pipeline, viewers func() int) *ViewHandler {
	return &ViewHandler{pipeline: p, viewers: viewers}
}

type stateResponse struct {
	app.Status
	Viewers int `json:"viewers"`
}

// Reset handles POST /api/reset and returns the new view.
func (h *ViewHandler) Reset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, h.pipeline.ResetView())
}

// State handles GET /api/state.
func (h *ViewHandler) State(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := stateResponse{Status: h.pipeline.Status()}
	if h.viewers != nil {
		response.Viewers = h.viewers()
	}
	writeJSON(w, http.StatusOK, response)
}
