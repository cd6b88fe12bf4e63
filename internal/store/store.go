// Package store persists detection runs in SQLite.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/ironsheep/motion-detect-mcp/internal/dataset"
	"github.com/ironsheep/motion-detect-mcp/internal/detection"
	"github.com/ironsheep/motion-detect-mcp/internal/sequence"
)

// ErrRunNotFound is returned when a run ID is unknown.
var ErrRunNotFound = errors.New("run not found")

var errClosed = errors.New("store is closed")

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id          TEXT PRIMARY KEY,
	created_at  INTEGER NOT NULL,
	dataset     TEXT NOT NULL,
	category    TEXT NOT NULL,
	video       TEXT NOT NULL,
	params      TEXT NOT NULL,
	frames      INTEGER NOT NULL DEFAULT 0,
	boxes       INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS detections (
	run_id      TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	frame_index INTEGER NOT NULL,
	frame_path  TEXT NOT NULL,
	box_index   INTEGER NOT NULL,
	x1          INTEGER NOT NULL,
	y1          INTEGER NOT NULL,
	x2          INTEGER NOT NULL,
	y2          INTEGER NOT NULL,
	area        INTEGER NOT NULL,
	PRIMARY KEY (run_id, frame_index, box_index)
);
CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at);
`

// Run describes one processed video.
type Run struct {
	ID        string           `json:"id"`
	CreatedAt time.Time        `json:"created_at"`
	Dataset   string           `json:"dataset"`
	Category  string           `json:"category"`
	Video     string           `json:"video"`
	Params    detection.Params `json:"params"`
	Frames    int              `json:"frames"`
	Boxes     int              `json:"boxes"`
}

// Store wraps a SQLite database of runs and their detections.
type Store struct {
	db     *sql.DB
	mu     sync.RWMutex
	closed bool
	now    func() time.Time
}

// Open opens or creates the database at path and applies the schema.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// SQLite allows one writer at a time.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &Store{db: db, now: time.Now}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

// CreateRun records a new run for a video and returns its ID.
func (s *Store) CreateRun(ctx context.Context, v dataset.Video, params detection.Params) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return "", errClosed
	}

	p, err := json.Marshal(params)
	if err != nil {
		return "", fmt.Errorf("encode params: %w", err)
	}

	id := uuid.New().String()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO runs (id, created_at, dataset, category, video, params) VALUES (?, ?, ?, ?, ?, ?)`,
		id, s.now().UnixNano(), v.Dataset, v.Category, v.Name, string(p))
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}
	return id, nil
}

// SaveFrames stores the detections of a run's frames in one transaction and
// updates the run's totals.
func (s *Store) SaveFrames(ctx context.Context, runID string, results []sequence.FrameResult) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return errClosed
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	var exists int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM runs WHERE id = ?`, runID).Scan(&exists); err != nil {
		return fmt.Errorf("lookup run: %w", err)
	}
	if exists == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR REPLACE INTO detections (run_id, frame_index, frame_path, box_index, x1, y1, x2, y2, area)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	boxes := 0
	for _, r := range results {
		for i, b := range r.Boxes {
			if _, err := stmt.ExecContext(ctx, runID, r.Frame.Index, r.Frame.Path, i, b.X1, b.Y1, b.X2, b.Y2, b.Area); err != nil {
				return fmt.Errorf("insert detection: %w", err)
			}
			boxes++
		}
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE runs SET frames = frames + ?, boxes = boxes + ? WHERE id = ?`,
		len(results), boxes, runID); err != nil {
		return fmt.Errorf("update run totals: %w", err)
	}

	return tx.Commit()
}

// ListRuns returns all runs, newest first.
func (s *Store) ListRuns(ctx context.Context) ([]Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, errClosed
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, created_at, dataset, category, video, params, frames, boxes FROM runs ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		var r Run
		var created int64
		var params string
		if err := rows.Scan(&r.ID, &created, &r.Dataset, &r.Category, &r.Video, &params, &r.Frames, &r.Boxes); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.CreatedAt = time.Unix(0, created).UTC()
		if err := json.Unmarshal([]byte(params), &r.Params); err != nil {
			return nil, fmt.Errorf("decode params of run %s: %w", r.ID, err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// FrameDetections returns the stored boxes of one frame of a run, in their
// original order. A frame without detections yields an empty set.
func (s *Store) FrameDetections(ctx context.Context, runID string, frameIndex int) (detection.DetectionSet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, errClosed
	}

	var exists int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM runs WHERE id = ?`, runID).Scan(&exists); err != nil {
		return nil, fmt.Errorf("lookup run: %w", err)
	}
	if exists == 0 {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT x1, y1, x2, y2, area FROM detections WHERE run_id = ? AND frame_index = ? ORDER BY box_index`,
		runID, frameIndex)
	if err != nil {
		return nil, fmt.Errorf("query detections: %w", err)
	}
	defer rows.Close()

	boxes := detection.DetectionSet{}
	for rows.Next() {
		var b detection.Box
		if err := rows.Scan(&b.X1, &b.Y1, &b.X2, &b.Y2, &b.Area); err != nil {
			return nil, fmt.Errorf("scan detection: %w", err)
		}
		boxes = append(boxes, b)
	}
	return boxes, rows.Err()
}
