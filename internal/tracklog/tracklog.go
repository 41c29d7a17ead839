// Package tracklog persists sampled vehicle positions to SQLite so recent
// tracks can be replayed after the live frame has moved on.
package tracklog

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/yash/laeportal/internal/metrics"
	"github.com/yash/laeportal/internal/simulator"
	"github.com/yash/laeportal/pkg/models"
)

// DefaultTrackLimit caps Track when the caller passes no limit.
const DefaultTrackLimit = 100

// Point is one recorded marker.
type Point struct {
	ID         string          `json:"id"`
	VehicleID  string          `json:"vehicle_id"`
	Seq        uint64          `json:"seq"`
	RecordedAt time.Time       `json:"recorded_at"`
	Position   models.Position `json:"position"`
	Heading    float64         `json:"heading"`
	Progress   float64         `json:"progress"`
	Outbound   bool            `json:"outbound"`
}

// Store is a SQLite-backed track log.
type Store struct {
	db   *sql.DB
	path string
}

// Open creates or opens a track log at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating track log directory: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening track log: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging track log: %w", err)
	}
	return newStore(db, path)
}

// OpenMemory creates an in-memory track log.
func OpenMemory() (*Store, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("opening in-memory track log: %w", err)
	}
	// every pooled connection would otherwise get its own empty database
	db.SetMaxOpenConns(1)
	return newStore(db, ":memory:")
}

func newStore(db *sql.DB, path string) (*Store, error) {
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return &Store{db: db, path: path}, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS track_points (
    id TEXT PRIMARY KEY,
    vehicle_id TEXT NOT NULL,
    seq INTEGER NOT NULL,
    recorded_at INTEGER NOT NULL,
    lat REAL NOT NULL,
    lng REAL NOT NULL,
    heading REAL NOT NULL,
    progress REAL NOT NULL,
    outbound INTEGER NOT NULL DEFAULT 1
);

DROP INDEX IF EXISTS idx_track_vehicle;
CREATE INDEX IF NOT EXISTS idx_track_vehicle_time ON track_points(vehicle_id, recorded_at DESC, seq DESC);
`

// Path returns the database location.
func (s *Store) Path() string { return s.path }

// Close releases the database.
func (s *Store) Close() error { return s.db.Close() }

// Record writes every marker of f in one transaction and returns the number
// of rows written.
func (s *Store) Record(ctx context.Context, f simulator.Frame) (int, error) {
	if len(f.Markers) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		metrics.TrackErrors.Inc()
		return 0, fmt.Errorf("beginning track write: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO track_points (id, vehicle_id, seq, recorded_at, lat, lng, heading, progress, outbound)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		metrics.TrackErrors.Inc()
		return 0, fmt.Errorf("preparing track insert: %w", err)
	}
	defer stmt.Close()

	at := f.Timestamp.UnixNano()
	for _, m := range f.Markers {
		if _, err := stmt.ExecContext(ctx,
			uuid.New().String(), m.VehicleID, int64(f.Seq), at,
			m.Position.Lat, m.Position.Lng, m.Heading, m.Progress, m.Outbound,
		); err != nil {
			metrics.TrackErrors.Inc()
			return 0, fmt.Errorf("inserting track point for %s: %w", m.VehicleID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		metrics.TrackErrors.Inc()
		return 0, fmt.Errorf("committing track write: %w", err)
	}
	metrics.TrackRows.Add(float64(len(f.Markers)))
	return len(f.Markers), nil
}

// Track returns up to limit points for a vehicle, newest first. Frame
// sequence numbers restart with the process, so recording time orders rows
// and seq only breaks ties within one instant.
func (s *Store) Track(ctx context.Context, vehicleID string, limit int) ([]Point, error) {
	if limit <= 0 {
		limit = DefaultTrackLimit
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, vehicle_id, seq, recorded_at, lat, lng, heading, progress, outbound
		FROM track_points WHERE vehicle_id = ?
		ORDER BY recorded_at DESC, seq DESC LIMIT ?`, vehicleID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying track: %w", err)
	}
	defer rows.Close()

	points := []Point{}
	for rows.Next() {
		var (
			p  Point
			at int64
			sq int64
		)
		if err := rows.Scan(&p.ID, &p.VehicleID, &sq, &at,
			&p.Position.Lat, &p.Position.Lng, &p.Heading, &p.Progress, &p.Outbound); err != nil {
			return nil, fmt.Errorf("scanning track point: %w", err)
		}
		p.Seq = uint64(sq)
		p.RecordedAt = time.Unix(0, at).UTC()
		points = append(points, p)
	}
	return points, rows.Err()
}

// Count returns the number of stored points.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM track_points`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting track points: %w", err)
	}
	return n, nil
}

// Prune keeps the newest keep points per vehicle and deletes the rest.
// It returns the number of rows removed.
func (s *Store) Prune(ctx context.Context, keep int) (int64, error) {
	if keep < 0 {
		keep = 0
	}
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM track_points WHERE id IN (
			SELECT id FROM (
				SELECT id, ROW_NUMBER() OVER (PARTITION BY vehicle_id ORDER BY recorded_at DESC, seq DESC) AS rn
				FROM track_points
			) WHERE rn > ?
		)`, keep)
	if err != nil {
		return 0, fmt.Errorf("pruning track log: %w", err)
	}
	return res.RowsAffected()
}
