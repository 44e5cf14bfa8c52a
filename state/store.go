// Package state persists the fetch history so reruns over an overlapping
// window can skip videos that were already archived.
package state

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS fetches (
    video_id        TEXT PRIMARY KEY,
    title           TEXT NOT NULL,
    published_at    TEXT NOT NULL,
    fetched_at      TEXT NOT NULL,
    transcribed     INTEGER NOT NULL,
    artifact_path   TEXT NOT NULL DEFAULT '',
    run_id          TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_fetches_run ON fetches(run_id);
`

// Fetch is one recorded fetch attempt for a video.
type Fetch struct {
	VideoID      string
	Title        string
	Published    time.Time
	FetchedAt    time.Time
	Transcribed  bool
	ArtifactPath string
	RunID        string
}

// Store records fetch outcomes in a SQLite database.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the history database at path and applies
// the schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Store{db: db, path: path}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Record upserts the outcome of a fetch attempt. A later run's outcome for
// the same video replaces the earlier one.
func (s *Store) Record(ctx context.Context, f Fetch) error {
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO fetches (video_id, title, published_at, fetched_at, transcribed, artifact_path, run_id)
         VALUES (?, ?, ?, ?, ?, ?, ?)
         ON CONFLICT(video_id) DO UPDATE SET
             title = excluded.title,
             published_at = excluded.published_at,
             fetched_at = excluded.fetched_at,
             transcribed = excluded.transcribed,
             artifact_path = excluded.artifact_path,
             run_id = excluded.run_id`,
		f.VideoID,
		f.Title,
		f.Published.UTC().Format(time.RFC3339),
		f.FetchedAt.UTC().Format(time.RFC3339),
		boolToInt(f.Transcribed),
		f.ArtifactPath,
		f.RunID,
	)
	if err != nil {
		return fmt.Errorf("record fetch: %w", err)
	}
	return nil
}

// Lookup returns the recorded fetch for a video, or nil when the video has
// never been attempted.
func (s *Store) Lookup(ctx context.Context, videoID string) (*Fetch, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT video_id, title, published_at, fetched_at, transcribed, artifact_path, run_id
         FROM fetches WHERE video_id = ?`,
		videoID,
	)

	var (
		f            Fetch
		publishedRaw string
		fetchedRaw   string
		transcribed  int
	)
	err := row.Scan(&f.VideoID, &f.Title, &publishedRaw, &fetchedRaw, &transcribed, &f.ArtifactPath, &f.RunID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lookup fetch: %w", err)
	}

	f.Transcribed = transcribed != 0
	if t, err := time.Parse(time.RFC3339, publishedRaw); err == nil {
		f.Published = t
	}
	if t, err := time.Parse(time.RFC3339, fetchedRaw); err == nil {
		f.FetchedAt = t
	}
	return &f, nil
}

// Stats returns how many recorded fetches succeeded and how many did not.
func (s *Store) Stats(ctx context.Context) (transcribed, missing int, err error) {
	rows, err := s.db.QueryContext(ctx, `SELECT transcribed, COUNT(1) FROM fetches GROUP BY transcribed`)
	if err != nil {
		return 0, 0, fmt.Errorf("fetch stats: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var flag, count int
		if err := rows.Scan(&flag, &count); err != nil {
			return 0, 0, err
		}
		if flag != 0 {
			transcribed = count
		} else {
			missing = count
		}
	}
	return transcribed, missing, rows.Err()
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
