package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/PhilippeFerreiraDeSousa/hand-gestures/internal/app"
	"github.com/PhilippeFerreiraDeSousa/hand-gestures/internal/gesture"
	"github.com/PhilippeFerreiraDeSousa/hand-gestures/internal/plugin"
	"github.com/PhilippeFerreiraDeSousa/hand-gestures/internal/store"
)

// newTestStore creates a new Store with a temporary database for testing.
func newTestStore(t *testing.T) *store.Store {
	t.Helper()

	s, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() {
		s.Close()
	})
	return s
}

func addPhoto(t *testing.T, s *store.Store, filename string, takenAt time.Time) *store.Photo {
	t.Helper()
	p := &store.Photo{
		Filename: filename,
		TakenAt:  takenAt,
		Zoom:     1.5,
		Rotation: 10,
		Source:   "webcam 0",
	}
	if err := s.Photos().Create(p); err != nil {
		t.Fatalf("failed to create photo: %v", err)
	}
	return p
}

type fakePipeline struct {
	mu     sync.Mutex
	resets int
}

func (f *fakePipeline) ResetView() gesture.TransformState {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resets++
	return gesture.TransformState{Zoom: 1}
}

func (f *fakePipeline) Status() app.Status {
	return app.Status{Zoom: 2, Rotation: -5, GestureActive: true, Hands: 2, FPS: 29.5, Running: true}
}

func TestPhotoHandler_List(t *testing.T) {
	s := newTestStore(t)
	base := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	for i, name := range []string{"a.jpg", "b.jpg", "c.jpg"} {
		addPhoto(t, s, name, base.Add(time.Duration(i)*time.Minute))
	}
	handler := NewPhotoHandler(s)

	tests := []struct {
		name      string
		url       string
		wantCode  int
		wantCount int
		wantFirst string
	}{
		{"default limit", "/api/photos", http.StatusOK, 3, "c.jpg"},
		{"limited", "/api/photos?limit=2", http.StatusOK, 2, "c.jpg"},
		{"bad limit", "/api/photos?limit=abc", http.StatusBadRequest, 0, ""},
		{"negative limit", "/api/photos?limit=-1", http.StatusBadRequest, 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.url, nil)
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantCode {
				t.Fatalf("expected status %d, got %d: %s", tt.wantCode, rec.Code, rec.Body.String())
			}
			if tt.wantCode != http.StatusOK {
				return
			}

			var response listPhotosResponse
			if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if len(response.Photos) != tt.wantCount {
				t.Errorf("expected %d photos, got %d", tt.wantCount, len(response.Photos))
			}
			if response.Total != 3 {
				t.Errorf("expected total 3, got %d", response.Total)
			}
			if response.Photos[0].Filename != tt.wantFirst {
				t.Errorf("expected newest first %q, got %q", tt.wantFirst, response.Photos[0].Filename)
			}
		})
	}
}

func TestPhotoHandler_GetWithHooks(t *testing.T) {
	s := newTestStore(t)
	photo := addPhoto(t, s, "photo.jpg", time.Now())
	if err := s.HookRuns().Create(&store.HookRun{PhotoID: photo.ID, Hook: "save-photo", Success: true, DurationMS: 12}); err != nil {
		t.Fatalf("failed to create hook run: %v", err)
	}
	handler := NewPhotoHandler(s)

	req := httptest.NewRequest(http.MethodGet, "/api/photos/"+photo.ID, nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}

	var response photoResponse
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response.Filename != "photo.jpg" || response.Zoom != 1.5 {
		t.Errorf("unexpected photo %+v", response)
	}
	if len(response.Hooks) != 1 || response.Hooks[0].Hook != "save-photo" || !response.Hooks[0].Success {
		t.Errorf("unexpected hooks %+v", response.Hooks)
	}
}

func TestPhotoHandler_NotFound(t *testing.T) {
	handler := NewPhotoHandler(newTestStore(t))

	for _, method := range []string{http.MethodGet, http.MethodDelete} {
		req := httptest.NewRequest(method, "/api/photos/nonexistent", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Errorf("%s: expected status %d, got %d", method, http.StatusNotFound, rec.Code)
		}
	}
}

func TestPhotoHandler_Delete(t *testing.T) {
	s := newTestStore(t)
	photo := addPhoto(t, s, "photo.jpg", time.Now())
	handler := NewPhotoHandler(s)

	req := httptest.NewRequest(http.MethodDelete, "/api/photos/"+photo.ID, nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected status %d, got %d", http.StatusNoContent, rec.Code)
	}
	if _, err := s.Photos().GetByID(photo.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected photo to be deleted, got %v", err)
	}
}

func TestPhotoHandler_MethodNotAllowed(t *testing.T) {
	handler := NewPhotoHandler(newTestStore(t))

	req := httptest.NewRequest(http.MethodPost, "/api/photos", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected status %d, got %d", http.StatusMethodNotAllowed, rec.Code)
	}
}

func TestViewHandler(t *testing.T) {
	p := &fakePipeline{}
	handler := NewViewHandler(p, func() int { return 3 })

	t.Run("reset", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/reset", nil)
		rec := httptest.NewRecorder()
		handler.Reset(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
		}
		var state gesture.TransformState
		if err := json.NewDecoder(rec.Body).Decode(&state); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if state.Zoom != 1 || state.Rotation != 0 {
			t.Errorf("unexpected state %+v", state)
		}
		if p.resets != 1 {
			t.Errorf("expected 1 reset, got %d", p.resets)
		}
	})

	t.Run("reset requires POST", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/reset", nil)
		rec := httptest.NewRecorder()
		handler.Reset(rec, req)

		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("expected status %d, got %d", http.StatusMethodNotAllowed, rec.Code)
		}
	})

	t.Run("state", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/state", nil)
		rec := httptest.NewRecorder()
		handler.State(rec, req)

		var response map[string]any
		if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if response["zoom"] != 2.0 || response["gesture_active"] != true {
			t.Errorf("unexpected state %v", response)
		}
		if response["viewers"] != 3.0 {
			t.Errorf("expected 3 viewers, got %v", response["viewers"])
		}
	})
}

func TestHookHandler(t *testing.T) {
	dir := t.TempDir()
	hookDir := filepath.Join(dir, "save-photo")
	if err := os.MkdirAll(hookDir, 0755); err != nil {
		t.Fatalf("failed to create hook dir: %v", err)
	}
	manifest := `{"name":"save-photo","version":"1.0.0","events":["take_photo"],"wantsImage":true}`
	if err := os.WriteFile(filepath.Join(hookDir, "plugin.json"), []byte(manifest), 0644); err != nil {
		t.Fatalf("failed to write manifest: %v", err)
	}

	m := plugin.NewManager(dir)
	if err := m.Discover(); err != nil {
		t.Fatalf("Discover() failed: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/hooks", nil)
	rec := httptest.NewRecorder()
	NewHookHandler(m).ServeHTTP(rec, req)

	var response struct {
		Hooks []hookResponse `json:"hooks"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(response.Hooks) != 1 || response.Hooks[0].Name != "save-photo" || !response.Hooks[0].WantsImage {
		t.Errorf("unexpected hooks %+v", response.Hooks)
	}
}
