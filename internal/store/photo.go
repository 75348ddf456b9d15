package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Photo is the metadata of one photo gesture. The image itself is written
// by hooks; the log only records what was taken and with which view.
type Photo struct {
	ID        string    `json:"id"`
	Filename  string    `json:"filename"`
	TakenAt   time.Time `json:"taken_at"`
	Zoom      float64   `json:"zoom"`
	Rotation  float64   `json:"rotation"`
	Source    string    `json:"source"`
	SizeBytes int       `json:"size_bytes"`
	CreatedAt time.Time `json:"created_at"`
}

// PhotoRepository provides access to the photo log.
type PhotoRepository struct {
	db *sql.DB
}

// Photos returns the photo repository for this store.
func (s *Store) Photos() *PhotoRepository {
	return &PhotoRepository{db: s.db}
}

// Create inserts a photo. An empty ID is filled with a new UUID.
func (r *PhotoRepository) Create(p *Photo) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	p.CreatedAt = time.Now()

	_, err := r.db.Exec(
		`INSERT INTO photos (id, filename, taken_at, zoom, rotation, source, size_bytes, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Filename, p.TakenAt, p.Zoom, p.Rotation, p.Source, p.SizeBytes, p.CreatedAt,
	)
	return err
}

// GetByID retrieves a photo by its ID.
func (r *PhotoRepository) GetByID(id string) (*Photo, error) {
	return r.scanOne(
		`SELECT id, filename, taken_at, zoom, rotation, source, size_bytes, created_at
		 FROM photos WHERE id = ?`, id)
}

// GetByFilename retrieves a photo by its filename.
func (r *PhotoRepository) GetByFilename(filename string) (*Photo, error) {
	return r.scanOne(
		`SELECT id, filename, taken_at, zoom, rotation, source, size_bytes, created_at
		 FROM photos WHERE filename = ?`, filename)
}

func (r *PhotoRepository) scanOne(query string, arg any) (*Photo, error) {
	p := &Photo{}
	err := r.db.QueryRow(query, arg).Scan(
		&p.ID, &p.Filename, &p.TakenAt, &p.Zoom, &p.Rotation, &p.Source, &p.SizeBytes, &p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

// List returns the most recent photos first. A non-positive limit returns all.
func (r *PhotoRepository) List(limit int) ([]*Photo, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := r.db.Query(
		`SELECT id, filename, taken_at, zoom, rotation, source, size_bytes, created_at
		 FROM photos ORDER BY taken_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var photos []*Photo
	for rows.Next() {
		p := &Photo{}
		err := rows.Scan(&p.ID, &p.Filename, &p.TakenAt, &p.Zoom, &p.Rotation, &p.Source, &p.SizeBytes, &p.CreatedAt)
		if err != nil {
			return nil, err
		}
		photos = append(photos, p)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return photos, nil
}

// Count returns the number of logged photos.
func (r *PhotoRepository) Count() (int, error) {
	var n int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM photos`).Scan(&n)
	return n, err
}

// Delete removes a photo and its hook runs.
func (r *PhotoRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM photos WHERE id = ?`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}
