package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/PhilippeFerreiraDeSousa/hand-gestures/internal/store"
)

// DefaultPhotoLimit is the page size of GET /api/photos without a limit.
const DefaultPhotoLimit = 50

// PhotoHandler serves the photo log.
type PhotoHandler struct {
	store *store.Store
}

// NewPhotoHandler creates a new PhotoHandler with the given store.
func NewPhotoHandler(s *store.Store) *PhotoHandler {
	return &PhotoHandler{store: s}
}

// ServeHTTP routes /api/photos and /api/photos/{id}.
func (h *PhotoHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/photos")
	path = strings.TrimPrefix(path, "/")

	if path == "" {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.list(w, r)
		return
	}

	id := path
	switch r.Method {
	case http.MethodGet:
		h.get(w, r, id)
	case http.MethodDelete:
		h.delete(w, r, id)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

type hookRunResponse struct {
	Hook       string `json:"hook"`
	Success    bool   `json:"success"`
	Message    string `json:"message,omitempty"`
	DurationMS int64  `json:"duration_ms"`
	CreatedAt  string `json:"created_at"`
}

type photoResponse struct {
	ID        string            `json:"id"`
	Filename  string            `json:"filename"`
	TakenAt   string            `json:"taken_at"`
	Zoom      float64           `json:"zoom"`
	Rotation  float64           `json:"rotation"`
	Source    string            `json:"source"`
	SizeBytes int               `json:"size_bytes"`
	Hooks     []hookRunResponse `json:"hooks,omitempty"`
}

type listPhotosResponse struct {
	Photos []photoResponse `json:"photos"`
	Total  int             `json:"total"`
}

func toPhotoResponse(p *store.Photo) photoResponse {
	return photoResponse{
		ID:        p.ID,
		Filename:  p.Filename,
		TakenAt:   formatTime(p.TakenAt),
		Zoom:      p.Zoom,
		Rotation:  p.Rotation,
		Source:    p.Source,
		SizeBytes: p.SizeBytes,
	}
}

// list handles GET /api/photos?limit=N, newest first.
func (h *PhotoHandler) list(w http.ResponseWriter, r *http.Request) {
	limit := DefaultPhotoLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	photos, err := h.store.Photos().List(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list photos")
		return
	}
	total, err := h.store.Photos().Count()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to count photos")
		return
	}

	response := listPhotosResponse{
		Photos: make([]photoResponse, 0, len(photos)),
		Total:  total,
	}
	for _, p := range photos {
		response.Photos = append(response.Photos, toPhotoResponse(p))
	}
	writeJSON(w, http.StatusOK, response)
}

// get handles GET /api/photos/{id} and includes the hook runs.
func (h *PhotoHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	photo, err := h.store.Photos().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Photo not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get photo")
		return
	}

	runs, err := h.store.HookRuns().ListByPhoto(photo.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list hook runs")
		return
	}

	response := toPhotoResponse(photo)
	for _, run := range runs {
		response.Hooks = append(response.Hooks, hookRunResponse{
			Hook:       run.Hook,
			Success:    run.Success,
			Message:    run.Message,
			DurationMS: run.DurationMS,
			CreatedAt:  formatTime(run.CreatedAt),
		})
	}
	writeJSON(w, http.StatusOK, response)
}

// delete handles DELETE /api/photos/{id}. Hook runs are removed with it.
func (h *PhotoHandler) delete(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.store.Photos().Delete(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Photo not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete photo")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
