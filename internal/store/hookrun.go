package store

import (
	"database/sql"
	"time"
)

// HookRun records the outcome of one hook invocation for a photo.
type HookRun struct {
	ID         int64     `json:"id"`
	PhotoID    string    `json:"photo_id"`
	Hook       string    `json:"hook"`
	Success    bool      `json:"success"`
	Message    string    `json:"message,omitempty"`
	DurationMS int64     `json:"duration_ms"`
	CreatedAt  time.Time `json:"created_at"`
}

// HookRunRepository provides access to hook run records.
type HookRunRepository struct {
	db *sql.DB
}

// HookRuns returns the hook run repository for this store.
func (s *Store) HookRuns() *HookRunRepository {
	return &HookRunRepository{db: s.db}
}

// Create inserts a hook run and sets its ID.
func (r *HookRunRepository) Create(h *HookRun) error {
	h.CreatedAt = time.Now()

	result, err := r.db.Exec(
		`INSERT INTO hook_runs (photo_id, hook, success, message, duration_ms, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		h.PhotoID, h.Hook, h.Success, h.Message, h.DurationMS, h.CreatedAt,
	)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	h.ID = id
	return nil
}

// ListByPhoto returns the hook runs for a photo in insertion order.
func (r *HookRunRepository) ListByPhoto(photoID string) ([]*HookRun, error) {
	rows, err := r.db.Query(
		`SELECT id, photo_id, hook, success, message, duration_ms, created_at
		 FROM hook_runs WHERE photo_id = ? ORDER BY id`,
		photoID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*HookRun
	for rows.Next() {
		h := &HookRun{}
		var success int
		if err := rows.Scan(&h.ID, &h.PhotoID, &h.Hook, &success, &h.Message, &h.DurationMS, &h.CreatedAt); err != nil {
			return nil, err
		}
		h.Success = success != 0
		runs = append(runs, h)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return runs, nil
}
