package archive

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"podscribe/youtube"
)

func testVideo() youtube.Video {
	return youtube.Video{
		ID:         "abc123xyz",
		Title:      "Episode One: The Beginning",
		Published:  time.Date(2026, 5, 14, 9, 30, 0, 0, time.UTC),
		Duration:   3662 * time.Second,
		Visibility: youtube.VisibilityPublic,
	}
}

func TestArtifactFilename(t *testing.T) {
	got := ArtifactFilename(testVideo())
	want := "2026-05-14__abc123xyz__episode_one_the_beginning.txt"
	if got != want {
		t.Errorf("ArtifactFilename() = %q, want %q", got, want)
	}
}

func TestWriteTranscript(t *testing.T) {
	w, err := NewWriter(t.TempDir())
	if err != nil {
		t.Fatalf("NewWriter() returned error: %v", err)
	}

	rel, err := w.WriteTranscript(testVideo(), "hello world this is the transcript")
	if err != nil {
		t.Fatalf("WriteTranscript() returned error: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(w.Dir(), rel))
	if err != nil {
		t.Fatalf("reading artifact: %v", err)
	}
	content := string(data)

	wantLines := []string{
		"Title: Episode One: The Beginning",
		"Video URL: https://www.youtube.com/watch?v=abc123xyz",
		"Published: 2026-05-14T09:30:00Z",
		"Duration: 3662 seconds",
	}
	for _, line := range wantLines {
		if !strings.Contains(content, line) {
			t.Errorf("artifact missing line %q\ngot:\n%s", line, content)
		}
	}

	parts := strings.SplitN(content, "\n\n", 2)
	if len(parts) != 2 {
		t.Fatal("artifact has no blank line between header and body")
	}
	if parts[1] != "hello world this is the transcript" {
		t.Errorf("artifact body = %q, want the raw transcript", parts[1])
	}
}

func TestWriteTranscript_UnknownDuration(t *testing.T) {
	w, err := NewWriter(t.TempDir())
	if err != nil {
		t.Fatalf("NewWriter() returned error: %v", err)
	}

	v := testVideo()
	v.Duration = 0
	rel, err := w.WriteTranscript(v, "text")
	if err != nil {
		t.Fatalf("WriteTranscript() returned error: %v", err)
	}

	data, _ := os.ReadFile(filepath.Join(w.Dir(), rel))
	if !strings.Contains(string(data), "Duration: Unknown") {
		t.Errorf("artifact should report Unknown duration, got:\n%s", data)
	}
}

func TestWriteIndex(t *testing.T) {
	w, err := NewWriter(t.TempDir())
	if err != nil {
		t.Fatalf("NewWriter() returned error: %v", err)
	}

	fetched := testVideo()
	missing := testVideo()
	missing.ID = "def456uvw"
	missing.Duration = 0

	records := []Record{
		{Video: fetched, Outcome: OutcomeFetched, ArtifactPath: "2026-05-14__abc123xyz__episode.txt"},
		{Video: missing, Outcome: OutcomeMissing},
	}

	path, err := w.WriteIndex(records)
	if err != nil {
		t.Fatalf("WriteIndex() returned error: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("opening index: %v", err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("parsing index: %v", err)
	}

	if len(rows) != 3 {
		t.Fatalf("index has %d rows, want header + 2", len(rows))
	}
	if strings.Join(rows[0], ",") != strings.Join(indexHeader, ",") {
		t.Errorf("index header = %v, want %v", rows[0], indexHeader)
	}

	got := rows[1]
	if got[0] != "abc123xyz" || got[4] != "3662" || got[5] != "true" || got[6] == "" {
		t.Errorf("fetched row = %v, want id/duration/flag/path populated", got)
	}

	got = rows[2]
	if got[0] != "def456uvw" || got[4] != "" || got[5] != "false" || got[6] != "" {
		t.Errorf("missing row = %v, want blank duration, false flag, blank path", got)
	}
}

func TestWriteIndex_EmptyRunStillWritesHeader(t *testing.T) {
	w, err := NewWriter(t.TempDir())
	if err != nil {
		t.Fatalf("NewWriter() returned error: %v", err)
	}

	path, err := w.WriteIndex(nil)
	if err != nil {
		t.Fatalf("WriteIndex(nil) returned error: %v", err)
	}

	f, _ := os.Open(path)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("parsing index: %v", err)
	}
	if len(rows) != 1 {
		t.Errorf("empty index has %d rows, want header only", len(rows))
	}
}

func TestWriteIndex_RejectsUnattemptedRecords(t *testing.T) {
	w, err := NewWriter(t.TempDir())
	if err != nil {
		t.Fatalf("NewWriter() returned error: %v", err)
	}

	if _, err := w.WriteIndex([]Record{{Video: testVideo()}}); err == nil {
		t.Error("WriteIndex() accepted a record with no outcome, want error")
	}
}

func TestWriteIndex_OverwritesPriorIndex(t *testing.T) {
	w, err := NewWriter(t.TempDir())
	if err != nil {
		t.Fatalf("NewWriter() returned error: %v", err)
	}

	records := []Record{{Video: testVideo(), Outcome: OutcomeMissing}}
	if _, err := w.WriteIndex(records); err != nil {
		t.Fatalf("first WriteIndex() returned error: %v", err)
	}
	path, err := w.WriteIndex(nil)
	if err != nil {
		t.Fatalf("second WriteIndex() returned error: %v", err)
	}

	f, _ := os.Open(path)
	defer f.Close()
	rows, _ := csv.NewReader(f).ReadAll()
	if len(rows) != 1 {
		t.Errorf("overwritten index has %d rows, want header only", len(rows))
	}
}

func TestWriterLock(t *testing.T) {
	dir := t.TempDir()
	w1, err := NewWriter(dir)
	if err != nil {
		t.Fatalf("NewWriter() returned error: %v", err)
	}
	if err := w1.Lock(); err != nil {
		t.Fatalf("Lock() returned error: %v", err)
	}
	defer w1.Unlock()

	w2, err := NewWriter(dir)
	if err != nil {
		t.Fatalf("NewWriter() returned error: %v", err)
	}
	if err := w2.Lock(); err == nil {
		w2.Unlock()
		t.Error("second Lock() on the same directory succeeded, want error")
	}
}
