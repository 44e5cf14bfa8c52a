// Package youtube lists videos for a channel or playlist via the YouTube
// Data API v3 and enriches them with duration and visibility.
package youtube

import (
	"errors"
	"time"
)

// Sentinel errors for listing operations.
var (
	ErrChannelNotFound = errors.New("youtube: channel not found")
	ErrInvalidRef      = errors.New("youtube: invalid collection reference")
)

// Visibility is the privacy status reported by the directory service.
type Visibility string

const (
	VisibilityPublic   Visibility = "public"
	VisibilityUnlisted Visibility = "unlisted"
	VisibilityPrivate  Visibility = "private"
)

// Video is one item under consideration for transcript fetching.
type Video struct {
	// ID is the YouTube video ID (e.g., "dQw4w9WgXcQ").
	ID string

	// Title is the video title.
	Title string

	// Published is when the video was published.
	Published time.Time

	// Duration is the video length. Zero until enriched via the videos
	// endpoint.
	Duration time.Duration

	// Visibility is the privacy status. Empty until enriched.
	Visibility Visibility
}

// URL returns the canonical watch URL for this video.
func (v Video) URL() string {
	return "https://www.youtube.com/watch?v=" + v.ID
}

// Filter restricts which videos a listing returns.
type Filter struct {
	// PublishedAfter is the inclusive lower bound on publish time.
	PublishedAfter time.Time

	// MinDuration drops videos shorter than this. Zero means no bound.
	MinDuration time.Duration

	// MaxDuration drops videos longer than this. Zero means no bound.
	MaxDuration time.Duration
}

// ListerError wraps listing errors with context about what failed.
//
//	var listerErr *youtube.ListerError
//	if errors.As(err, &listerErr) {
//		fmt.Printf("Listing failed for %s: %v\n", listerErr.Collection, listerErr.Err)
//	}
type ListerError struct {
	// Op is the operation that failed ("resolve", "channel", "playlist", "details").
	Op string
	// Collection is the channel or playlist being listed.
	Collection string
	// Err is the underlying error.
	Err error
}

func (e *ListerError) Error() string {
	return "youtube: " + e.Op + " " + e.Collection + ": " + e.Err.Error()
}

func (e *ListerError) Unwrap() error { return e.Err }

// applyFilter returns the videos surviving the visibility and duration
// filters, preserving order. Videos never enriched (empty visibility) are
// dropped along with non-public ones.
func applyFilter(videos []Video, f Filter) []Video {
	kept := videos[:0:0]
	for _, v := range videos {
		if v.Visibility != VisibilityPublic {
			continue
		}
		if f.MinDuration > 0 && v.Duration < f.MinDuration {
			continue
		}
		if f.MaxDuration > 0 && v.Duration > f.MaxDuration {
			continue
		}
		kept = append(kept, v)
	}
	return kept
}
