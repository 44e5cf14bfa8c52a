package state

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("Open() returned error: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleFetch() Fetch {
	return Fetch{
		VideoID:      "abc123xyz",
		Title:        "Episode One",
		Published:    time.Date(2026, 5, 14, 9, 30, 0, 0, time.UTC),
		FetchedAt:    time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
		Transcribed:  true,
		ArtifactPath: "2026-05-14__abc123xyz__episode_one.txt",
		RunID:        "run-1",
	}
}

func TestRecordAndLookup(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.Record(ctx, sampleFetch()); err != nil {
		t.Fatalf("Record() returned error: %v", err)
	}

	got, err := store.Lookup(ctx, "abc123xyz")
	if err != nil {
		t.Fatalf("Lookup() returned error: %v", err)
	}
	if got == nil {
		t.Fatal("Lookup() returned nil for a recorded video")
	}
	if got.Title != "Episode One" {
		t.Errorf("Lookup().Title = %q, want %q", got.Title, "Episode One")
	}
	if !got.Transcribed {
		t.Error("Lookup().Transcribed = false, want true")
	}
	if got.ArtifactPath != sampleFetch().ArtifactPath {
		t.Errorf("Lookup().ArtifactPath = %q, want %q", got.ArtifactPath, sampleFetch().ArtifactPath)
	}
	if !got.Published.Equal(sampleFetch().Published) {
		t.Errorf("Lookup().Published = %v, want %v", got.Published, sampleFetch().Published)
	}
}

func TestLookup_UnknownVideo(t *testing.T) {
	store := openTestStore(t)

	got, err := store.Lookup(context.Background(), "never-seen")
	if err != nil {
		t.Fatalf("Lookup() returned error: %v", err)
	}
	if got != nil {
		t.Errorf("Lookup() = %+v, want nil for unknown video", got)
	}
}

func TestRecord_UpsertsLatestOutcome(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	first := sampleFetch()
	first.Transcribed = false
	first.ArtifactPath = ""
	if err := store.Record(ctx, first); err != nil {
		t.Fatalf("Record() returned error: %v", err)
	}

	second := sampleFetch()
	second.RunID = "run-2"
	if err := store.Record(ctx, second); err != nil {
		t.Fatalf("second Record() returned error: %v", err)
	}

	got, err := store.Lookup(ctx, "abc123xyz")
	if err != nil {
		t.Fatalf("Lookup() returned error: %v", err)
	}
	if !got.Transcribed || got.RunID != "run-2" {
		t.Errorf("Lookup() after upsert = %+v, want run-2 transcribed outcome", got)
	}
}

func TestStats(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	ok := sampleFetch()
	if err := store.Record(ctx, ok); err != nil {
		t.Fatal(err)
	}
	miss := sampleFetch()
	miss.VideoID = "def456uvw"
	miss.Transcribed = false
	miss.ArtifactPath = ""
	if err := store.Record(ctx, miss); err != nil {
		t.Fatal(err)
	}

	transcribed, missing, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats() returned error: %v", err)
	}
	if transcribed != 1 || missing != 1 {
		t.Errorf("Stats() = (%d, %d), want (1, 1)", transcribed, missing)
	}
}
