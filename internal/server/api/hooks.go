package api

import (
	"net/http"

	"github.com/PhilippeFerreiraDeSousa/hand-gestures/internal/plugin"
)

// HookHandler lists the discovered photo hooks.
type HookHandler struct {
	manager *plugin.Manager
}

// NewHookHandler creates a new HookHandler.
func NewHookHandler(m *plugin.Manager) *HookHandler {
	return &HookHandler{manager: m}
}

type hookResponse struct {
	Name        string   `json:"name"`
	Version     string   `json:"version,omitempty"`
	Description string   `json:"description,omitempty"`
	Events      []string `json:"events,omitempty"`
	WantsImage  bool     `json:"wants_image"`
}

// ServeHTTP handles GET /api/hooks.
func (h *HookHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	hooks := h.manager.List()
	response := make([]hookResponse, 0, len(hooks))
	for _, p := range hooks {
		response = append(response, hookResponse{
			Name:        p.Manifest.Name,
			Version:     p.Manifest.Version,
			Description: p.Manifest.Description,
			Events:      p.Manifest.Events,
			WantsImage:  p.Manifest.WantsImage,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"hooks": response})
}
