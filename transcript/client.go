// Package transcript retrieves video transcripts from YouTube's public
// timedtext endpoint and applies the rate-limit retry policy around it.
package transcript

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Terminal conditions the transcript service reports for a video. Only
// ErrRateLimited is transient; everything else is permanent for the run.
// Classification happens here at the client boundary so callers switch on
// error kind instead of sniffing message text.
var (
	ErrTranscriptsDisabled = errors.New("transcript: transcripts disabled for video")
	ErrNoTranscript        = errors.New("transcript: no transcript in requested languages")
	ErrVideoUnavailable    = errors.New("transcript: video unavailable")
	ErrRateLimited         = errors.New("transcript: rate limited")
)

// Error wraps a transcript failure with the video it belongs to.
type Error struct {
	VideoID string
	Err     error
}

func (e *Error) Error() string {
	return "transcript: video " + e.VideoID + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// Segment is one timed text segment of a transcript.
type Segment struct {
	// Start is the segment start offset in seconds.
	Start float64
	// Duration is the segment length in seconds.
	Duration float64
	// Text is the caption text.
	Text string
}

const defaultBaseURL = "https://www.youtube.com/api/timedtext"

// Client fetches caption tracks from the timedtext endpoint.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
}

// NewClient creates a timedtext client with a 30s request timeout.
func NewClient() *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    defaultBaseURL,
		userAgent:  "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36",
	}
}

// FetchSegments returns the transcript segments for a video, trying each
// preferred language in order. A language with no track moves on to the
// next; any other failure is returned immediately.
func (c *Client) FetchSegments(ctx context.Context, videoID string, languages []string) ([]Segment, error) {
	if videoID == "" {
		return nil, fmt.Errorf("transcript: video ID is required")
	}
	if len(languages) == 0 {
		languages = []string{"en"}
	}

	var lastErr error
	for _, lang := range languages {
		segments, err := c.fetchLanguage(ctx, videoID, lang)
		if err == nil {
			return segments, nil
		}
		if errors.Is(err, ErrNoTranscript) {
			lastErr = err
			continue
		}
		return nil, err
	}
	return nil, lastErr
}

func (c *Client) fetchLanguage(ctx context.Context, videoID, lang string) ([]Segment, error) {
	params := url.Values{}
	params.Set("v", videoID)
	params.Set("lang", lang)
	params.Set("fmt", "json3")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build timedtext request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &Error{VideoID: videoID, Err: err}
	}
	defer resp.Body.Close()

	if err := classifyStatus(resp.StatusCode); err != nil {
		return nil, &Error{VideoID: videoID, Err: err}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{VideoID: videoID, Err: err}
	}
	// The endpoint answers 200 with an empty body when the language has no
	// track.
	if len(strings.TrimSpace(string(body))) == 0 {
		return nil, &Error{VideoID: videoID, Err: ErrNoTranscript}
	}

	segments, err := parseTimedtext(body)
	if err != nil {
		return nil, &Error{VideoID: videoID, Err: err}
	}
	if len(segments) == 0 {
		return nil, &Error{VideoID: videoID, Err: ErrNoTranscript}
	}
	return segments, nil
}

// classifyStatus maps an HTTP status to the structured error taxonomy.
func classifyStatus(status int) error {
	switch status {
	case http.StatusOK:
		return nil
	case http.StatusNotFound:
		return ErrNoTranscript
	case http.StatusForbidden:
		return ErrTranscriptsDisabled
	case http.StatusGone, http.StatusUnauthorized:
		return ErrVideoUnavailable
	case http.StatusTooManyRequests:
		return ErrRateLimited
	case http.StatusServiceUnavailable:
		// YouTube answers 503 when throttling bursts of caption requests.
		return ErrRateLimited
	default:
		return fmt.Errorf("timedtext returned status %d", status)
	}
}

// timedtextResponse is the json3 payload shape.
type timedtextResponse struct {
	Events []timedtextEvent `json:"events"`
}

type timedtextEvent struct {
	TStartMs    int64              `json:"tStartMs"`
	DDurationMs int64              `json:"dDurationMs"`
	Segs        []timedtextSegment `json:"segs,omitempty"`
}

type timedtextSegment struct {
	UTF8 string `json:"utf8"`
}

// parseTimedtext converts the json3 payload into segments in timeline order.
// Events with no text (window styling and the like) are skipped.
func parseTimedtext(data []byte) ([]Segment, error) {
	var resp timedtextResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("unmarshal timedtext JSON: %w", err)
	}

	var segments []Segment
	for _, event := range resp.Events {
		if len(event.Segs) == 0 {
			continue
		}

		var text strings.Builder
		for _, seg := range event.Segs {
			text.WriteString(seg.UTF8)
		}
		cleaned := strings.TrimSpace(strings.ReplaceAll(text.String(), "\n", " "))
		if cleaned == "" {
			continue
		}

		segments = append(segments, Segment{
			Start:    float64(event.TStartMs) / 1000.0,
			Duration: float64(event.DDurationMs) / 1000.0,
			Text:     cleaned,
		})
	}

	return segments, nil
}
