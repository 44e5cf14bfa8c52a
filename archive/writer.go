package archive

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gofrs/flock"

	"podscribe/youtube"
)

// Outcome is the terminal transcript state of a considered video.
type Outcome int

const (
	// OutcomeNotAttempted means no fetch has happened yet. Records in this
	// state must never reach the index.
	OutcomeNotAttempted Outcome = iota
	// OutcomeFetched means the transcript was retrieved and written.
	OutcomeFetched
	// OutcomeMissing means the fetch resolved to a terminal failure.
	OutcomeMissing
)

// Record pairs a considered video with its final transcript outcome.
type Record struct {
	Video youtube.Video
	// Outcome is set exactly once, after the fetch attempt.
	Outcome Outcome
	// ArtifactPath is the index-relative transcript file path, set only
	// when Outcome is OutcomeFetched.
	ArtifactPath string
}

// IndexFilename is the per-run summary file written next to the artifacts.
const IndexFilename = "index.csv"

const lockFilename = ".podscribe.lock"

// Writer persists transcript artifacts and the run index under one output
// directory, guarded by an advisory lock so concurrent runs cannot
// interleave writes.
type Writer struct {
	dir  string
	lock *flock.Flock
}

// NewWriter creates the output directory if needed and prepares the run
// lock. The lock is not taken until Lock is called.
func NewWriter(dir string) (*Writer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}
	return &Writer{
		dir:  dir,
		lock: flock.New(filepath.Join(dir, lockFilename)),
	}, nil
}

// Dir returns the output directory path.
func (w *Writer) Dir() string { return w.dir }

// Lock takes the output directory's advisory lock, failing immediately if
// another run holds it.
func (w *Writer) Lock() error {
	ok, err := w.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire output lock: %w", err)
	}
	if !ok {
		return fmt.Errorf("output directory %s is locked by another run", w.dir)
	}
	return nil
}

// Unlock releases the output directory lock.
func (w *Writer) Unlock() error {
	return w.lock.Unlock()
}

// ArtifactFilename derives the deterministic artifact name for a video:
// publish date, video ID, and sanitized title joined by double underscores.
func ArtifactFilename(v youtube.Video) string {
	date := v.Published.UTC().Format("2006-01-02")
	return date + "__" + v.ID + "__" + SanitizeTitle(v.Title) + ".txt"
}

// WriteTranscript writes one video's transcript artifact and returns its
// path relative to the output directory.
func (w *Writer) WriteTranscript(v youtube.Video, text string) (string, error) {
	name := ArtifactFilename(v)

	duration := "Unknown"
	if v.Duration > 0 {
		duration = fmt.Sprintf("%d seconds", int64(v.Duration/time.Second))
	}

	body := fmt.Sprintf("Title: %s\nVideo URL: %s\nPublished: %s\nDuration: %s\n\n%s",
		v.Title,
		v.URL(),
		v.Published.UTC().Format(time.RFC3339),
		duration,
		text,
	)

	if err := os.WriteFile(filepath.Join(w.dir, name), []byte(body), 0o644); err != nil {
		return "", fmt.Errorf("write transcript %s: %w", name, err)
	}
	return name, nil
}

// indexHeader is the fixed index column order.
var indexHeader = []string{
	"video_id",
	"title",
	"published_at",
	"video_url",
	"duration",
	"has_transcript",
	"transcript_path",
}

// WriteIndex writes the run index covering every considered video,
// transcribed or not, overwriting any previous index. Every record must
// carry a final outcome.
func (w *Writer) WriteIndex(records []Record) (string, error) {
	for _, r := range records {
		if r.Outcome == OutcomeNotAttempted {
			return "", fmt.Errorf("index record %s has no transcript outcome", r.Video.ID)
		}
	}

	path := filepath.Join(w.dir, IndexFilename)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create index: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if err := cw.Write(indexHeader); err != nil {
		return "", fmt.Errorf("write index header: %w", err)
	}

	for _, r := range records {
		duration := ""
		if r.Video.Duration > 0 {
			duration = strconv.FormatInt(int64(r.Video.Duration/time.Second), 10)
		}

		row := []string{
			r.Video.ID,
			r.Video.Title,
			r.Video.Published.UTC().Format(time.RFC3339),
			r.Video.URL(),
			duration,
			strconv.FormatBool(r.Outcome == OutcomeFetched),
			r.ArtifactPath,
		}
		if err := cw.Write(row); err != nil {
			return "", fmt.Errorf("write index row %s: %w", r.Video.ID, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return "", fmt.Errorf("flush index: %w", err)
	}
	return path, nil
}
