package transcript

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"podscribe/retry"
)

// Source produces transcript segments for a video. *Client is the real
// implementation; tests substitute fakes.
type Source interface {
	FetchSegments(ctx context.Context, videoID string, languages []string) ([]Segment, error)
}

// DefaultRetryConfig is the fetch retry policy: up to 5 retries, starting
// at 5s and doubling, with up to half the backoff added as uniform jitter.
// Only rate-limit errors are retried; every other failure is permanent for
// the current run.
func DefaultRetryConfig() retry.Config {
	return retry.Config{
		MaxRetries:     5,
		InitialBackoff: 5 * time.Second,
		Multiplier:     2.0,
		JitterFraction: 0.5,
	}
}

// Fetcher retrieves one video's transcript, applying the rate-limit retry
// policy around the source.
type Fetcher struct {
	source    Source
	languages []string
	cfg       retry.Config
	logger    *slog.Logger
}

// NewFetcher creates a Fetcher with the default retry policy.
func NewFetcher(source Source, languages []string, logger *slog.Logger) *Fetcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Fetcher{
		source:    source,
		languages: languages,
		cfg:       DefaultRetryConfig(),
		logger:    logger,
	}
}

// SetRetryConfig overrides the retry policy. Used by the CLI to apply
// configured retry counts and by tests to inject a sleep recorder.
func (f *Fetcher) SetRetryConfig(cfg retry.Config) { f.cfg = cfg }

// Fetch returns the space-joined transcript text for a video, or an error
// that terminally classifies why no transcript is available. Rate-limit
// errors are retried with exponential backoff and jitter until the retry
// budget runs out; disabled, missing, and unavailable conditions return
// after a single attempt.
func (f *Fetcher) Fetch(ctx context.Context, videoID string) (string, error) {
	var segments []Segment

	err := retry.Do(ctx, f.cfg, isTransient, func(ctx context.Context) error {
		segs, err := f.source.FetchSegments(ctx, videoID, f.languages)
		if err != nil {
			if isTransient(err) {
				f.logger.Warn("transcript fetch rate limited, backing off", "video", videoID)
			}
			return err
		}
		segments = segs
		return nil
	})
	if err != nil {
		return "", err
	}

	f.logger.Debug("transcript fetched", "video", videoID, "segments", len(segments))
	return joinSegments(segments), nil
}

// isTransient reports whether the error is a rate-limit condition, the only
// class worth retrying.
func isTransient(err error) bool {
	return errors.Is(err, ErrRateLimited)
}

// joinSegments concatenates segment text in timeline order, one space
// between segments.
func joinSegments(segments []Segment) string {
	parts := make([]string, 0, len(segments))
	for _, s := range segments {
		if s.Text == "" {
			continue
		}
		parts = append(parts, s.Text)
	}
	return strings.Join(parts, " ")
}
