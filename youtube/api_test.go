package youtube

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestForEachPage_StopsOnEmptyToken(t *testing.T) {
	pages := []string{"page2", "page3", ""}
	var seen []string

	err := forEachPage(context.Background(), func(ctx context.Context, token string) (string, error) {
		seen = append(seen, token)
		next := pages[0]
		pages = pages[1:]
		return next, nil
	})

	if err != nil {
		t.Fatalf("forEachPage() returned error: %v", err)
	}
	want := []string{"", "page2", "page3"}
	if len(seen) != len(want) {
		t.Fatalf("forEachPage() fetched %d pages, want %d", len(seen), len(want))
	}
	for i, tok := range want {
		if seen[i] != tok {
			t.Errorf("page %d fetched with token %q, want %q", i, seen[i], tok)
		}
	}
}

func TestForEachPage_AbortsOnError(t *testing.T) {
	pageErr := errors.New("boom")
	calls := 0

	err := forEachPage(context.Background(), func(ctx context.Context, token string) (string, error) {
		calls++
		if calls == 2 {
			return "", pageErr
		}
		return "next", nil
	})

	if !errors.Is(err, pageErr) {
		t.Errorf("forEachPage() error = %v, want %v", err, pageErr)
	}
	if calls != 2 {
		t.Errorf("forEachPage() fetched %d pages after error, want 2", calls)
	}
}

func TestMergeDetails(t *testing.T) {
	videos := []Video{
		{ID: "a", Title: "First"},
		{ID: "b", Title: "Second"},
		{ID: "c", Title: "Missing"},
	}
	details := map[string]videoDetail{
		"a": {duration: 90 * time.Second, visibility: VisibilityPublic},
		"b": {duration: 45 * time.Minute, visibility: VisibilityPrivate},
	}

	merged := mergeDetails(videos, details)

	if merged[0].Duration != 90*time.Second || merged[0].Visibility != VisibilityPublic {
		t.Errorf("merged[0] = %+v, want enriched public 90s", merged[0])
	}
	if merged[1].Visibility != VisibilityPrivate {
		t.Errorf("merged[1].Visibility = %q, want private", merged[1].Visibility)
	}
	if merged[2].Visibility != "" || merged[2].Duration != 0 {
		t.Errorf("merged[2] = %+v, want unenriched", merged[2])
	}
	if merged[0].ID != "a" || merged[1].ID != "b" || merged[2].ID != "c" {
		t.Error("mergeDetails() did not preserve order")
	}
}

func TestApplyFilter(t *testing.T) {
	videos := []Video{
		{ID: "pub-long", Duration: time.Hour, Visibility: VisibilityPublic},
		{ID: "pub-short", Duration: time.Minute, Visibility: VisibilityPublic},
		{ID: "unlisted", Duration: time.Hour, Visibility: VisibilityUnlisted},
		{ID: "private", Duration: time.Hour, Visibility: VisibilityPrivate},
		{ID: "unenriched", Duration: time.Hour},
	}

	tests := []struct {
		name    string
		filter  Filter
		wantIDs []string
	}{
		{
			"public only, no bounds",
			Filter{},
			[]string{"pub-long", "pub-short"},
		},
		{
			"min duration",
			Filter{MinDuration: 5 * time.Minute},
			[]string{"pub-long"},
		},
		{
			"max duration",
			Filter{MaxDuration: 5 * time.Minute},
			[]string{"pub-short"},
		},
		{
			"bounds exclude everything",
			Filter{MinDuration: 2 * time.Hour},
			nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := applyFilter(videos, tt.filter)
			if len(got) != len(tt.wantIDs) {
				t.Fatalf("applyFilter() kept %d videos, want %d", len(got), len(tt.wantIDs))
			}
			for i, id := range tt.wantIDs {
				if got[i].ID != id {
					t.Errorf("applyFilter()[%d].ID = %q, want %q", i, got[i].ID, id)
				}
			}
		})
	}
}

func TestApplyFilter_BoundaryDurations(t *testing.T) {
	videos := []Video{
		{ID: "exact", Duration: 5 * time.Minute, Visibility: VisibilityPublic},
	}
	f := Filter{MinDuration: 5 * time.Minute, MaxDuration: 5 * time.Minute}

	got := applyFilter(videos, f)
	if len(got) != 1 {
		t.Errorf("applyFilter() dropped a video exactly at both bounds")
	}
}

func TestNewDirectory_RequiresAPIKey(t *testing.T) {
	if _, err := NewDirectory(context.Background(), "", nil); err == nil {
		t.Error("NewDirectory() with empty key returned nil error, want error")
	}
}
