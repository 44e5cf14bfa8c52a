package podscribe

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"podscribe/archive"
	"podscribe/config"
	"podscribe/state"
	"podscribe/youtube"
)

// ErrCollectionRef reports a missing or ambiguous collection reference.
var ErrCollectionRef = errors.New("podscribe: exactly one of channel reference or playlist id required")

// Lister enumerates and enriches collection videos. *youtube.Directory is
// the real implementation.
type Lister interface {
	ResolveRef(ctx context.Context, ref youtube.Ref) (string, error)
	ListChannelVideos(ctx context.Context, channelID string, f youtube.Filter) ([]youtube.Video, error)
	ListPlaylistVideos(ctx context.Context, playlistID string, f youtube.Filter) ([]youtube.Video, error)
}

// Fetcher retrieves one video's transcript text. *transcript.Fetcher is the
// real implementation.
type Fetcher interface {
	Fetch(ctx context.Context, videoID string) (string, error)
}

// Archiver persists transcript artifacts and the run index.
// *archive.Writer is the real implementation.
type Archiver interface {
	WriteTranscript(v youtube.Video, text string) (string, error)
	WriteIndex(records []archive.Record) (string, error)
}

// History records fetch outcomes across runs. *state.Store is the real
// implementation.
type History interface {
	Lookup(ctx context.Context, videoID string) (*state.Fetch, error)
	Record(ctx context.Context, f state.Fetch) error
}

// Collection identifies what to archive. Exactly one field must be set.
type Collection struct {
	// ChannelRef is a channel URL, @handle, or bare channel ID.
	ChannelRef string
	// PlaylistID is a playlist ID.
	PlaylistID string
}

// Summary is the aggregate result of a run.
type Summary struct {
	// RunID correlates log lines and history rows for this run.
	RunID string
	// Cutoff is the inclusive publish-time lower bound that was applied.
	Cutoff time.Time
	// Found is the number of videos that passed metadata filtering.
	Found int
	// Succeeded is the number of transcripts archived.
	Succeeded int
	// Skipped is the number of videos with no retrievable transcript.
	Skipped int
	// IndexPath is the written index file, empty when no listing happened.
	IndexPath string
}

// Runner drives one end-to-end archiving run: resolve the collection, list
// and filter videos, then walk them strictly in order through transcript
// fetch and artifact writing under the batch pacing policy.
type Runner struct {
	cfg      *config.Config
	lister   Lister
	fetcher  Fetcher
	archiver Archiver
	logger   *slog.Logger

	// History is optional; when set, outcomes are recorded and, with
	// SkipFetched enabled, previously archived videos bypass the fetch.
	History History

	// Sleep and Now are test seams. Nil means real time.
	Sleep func(context.Context, time.Duration) error
	Now   func() time.Time
}

// NewRunner wires a runner from its collaborators.
func NewRunner(cfg *config.Config, lister Lister, fetcher Fetcher, archiver Archiver, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		cfg:      cfg,
		lister:   lister,
		fetcher:  fetcher,
		archiver: archiver,
		logger:   logger,
		Sleep:    sleepCtx,
		Now:      time.Now,
	}
}

// Run executes the full archiving flow and returns the run summary. A
// resolution failure is returned as an error; a listing failure is logged
// and yields an empty summary without an index, per the original tool's
// behavior of treating it as "no videos found".
func (r *Runner) Run(ctx context.Context, col Collection) (*Summary, error) {
	if err := validateCollection(col); err != nil {
		return nil, err
	}

	summary := &Summary{RunID: uuid.NewString()}
	summary.Cutoff = monthsAgo(r.Now().UTC(), r.cfg.MonthsBack)
	logger := r.logger.With("run", summary.RunID)

	filter := youtube.Filter{
		PublishedAfter: summary.Cutoff,
		MinDuration:    time.Duration(r.cfg.MinDurationSec) * time.Second,
		MaxDuration:    time.Duration(r.cfg.MaxDurationSec) * time.Second,
	}

	videos, err := r.listVideos(ctx, col, filter, logger)
	if err != nil {
		return nil, err
	}
	if videos == nil {
		// Listing failed; reported above, nothing to archive.
		return summary, nil
	}

	summary.Found = len(videos)
	logger.Info("videos matched filters", "count", len(videos), "cutoff", summary.Cutoff)

	records, err := r.processVideos(ctx, videos, summary, logger)
	if err != nil {
		return nil, err
	}

	indexPath, err := r.archiver.WriteIndex(records)
	if err != nil {
		return nil, fmt.Errorf("write index: %w", err)
	}
	summary.IndexPath = indexPath

	logger.Info("run complete",
		"found", summary.Found,
		"succeeded", summary.Succeeded,
		"skipped", summary.Skipped,
	)
	return summary, nil
}

// listVideos resolves the collection and lists its videos. A listing error
// returns (nil, nil) after logging; resolution errors propagate.
func (r *Runner) listVideos(ctx context.Context, col Collection, filter youtube.Filter, logger *slog.Logger) ([]youtube.Video, error) {
	if col.PlaylistID != "" {
		videos, err := r.lister.ListPlaylistVideos(ctx, col.PlaylistID, filter)
		if err != nil {
			logger.Error("playlist listing failed", "playlist", col.PlaylistID, "error", err)
			return nil, nil
		}
		if videos == nil {
			videos = []youtube.Video{}
		}
		return videos, nil
	}

	ref, err := youtube.ParseRef(col.ChannelRef)
	if err != nil {
		return nil, err
	}
	channelID, err := r.lister.ResolveRef(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("resolve channel: %w", err)
	}
	logger.Info("channel resolved", "ref", col.ChannelRef, "channel", channelID)

	videos, err := r.lister.ListChannelVideos(ctx, channelID, filter)
	if err != nil {
		logger.Error("channel listing failed", "channel", channelID, "error", err)
		return nil, nil
	}
	if videos == nil {
		videos = []youtube.Video{}
	}
	return videos, nil
}

// processVideos walks the filtered videos strictly in order, fetching and
// archiving each, setting the transcript outcome exactly once per record.
// Pacing: after every item except the last, a batch boundary (1-based
// position divisible by the batch size) pauses for the batch pause,
// anything else for the per-item delay.
func (r *Runner) processVideos(ctx context.Context, videos []youtube.Video, summary *Summary, logger *slog.Logger) ([]archive.Record, error) {
	records := make([]archive.Record, 0, len(videos))
	batchPause := time.Duration(r.cfg.BatchPauseSec) * time.Second
	delay := time.Duration(r.cfg.DelaySec * float64(time.Second))

	for i, v := range videos {
		pos := i + 1
		rec := archive.Record{Video: v}

		if prior := r.priorArtifact(ctx, v.ID); prior != nil {
			rec.Outcome = archive.OutcomeFetched
			rec.ArtifactPath = prior.ArtifactPath
			summary.Succeeded++
			records = append(records, rec)
			logger.Info("already archived, skipping fetch", "video", v.ID, "artifact", prior.ArtifactPath)
			// No request was made, so no pacing either.
			continue
		}

		logger.Info("fetching transcript", "video", v.ID, "title", v.Title, "position", pos, "of", len(videos))

		text, err := r.fetcher.Fetch(ctx, v.ID)
		if err == nil {
			rel, werr := r.archiver.WriteTranscript(v, text)
			if werr != nil {
				return nil, fmt.Errorf("write transcript for %s: %w", v.ID, werr)
			}
			rec.Outcome = archive.OutcomeFetched
			rec.ArtifactPath = rel
			summary.Succeeded++
			logger.Info("transcript archived", "video", v.ID, "artifact", rel)
		} else {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			rec.Outcome = archive.OutcomeMissing
			summary.Skipped++
			logger.Warn("no transcript", "video", v.ID, "reason", err)
		}

		r.recordOutcome(ctx, rec, summary.RunID, logger)
		records = append(records, rec)

		if pos < len(videos) {
			pause := delay
			if pos%r.cfg.BatchSize == 0 {
				pause = batchPause
				logger.Info("batch complete, pausing", "batch", pos/r.cfg.BatchSize, "pause", pause)
			}
			if pause > 0 {
				if err := r.Sleep(ctx, pause); err != nil {
					return nil, err
				}
			}
		}
	}

	return records, nil
}

// priorArtifact returns the earlier successful fetch for a video when
// skip-fetched is active.
func (r *Runner) priorArtifact(ctx context.Context, videoID string) *state.Fetch {
	if r.History == nil || !r.cfg.SkipFetched {
		return nil
	}
	prior, err := r.History.Lookup(ctx, videoID)
	if err != nil {
		r.logger.Warn("history lookup failed", "video", videoID, "error", err)
		return nil
	}
	if prior == nil || !prior.Transcribed {
		return nil
	}
	return prior
}

// recordOutcome persists the outcome to the history store when one is
// configured. History failures never fail the run.
func (r *Runner) recordOutcome(ctx context.Context, rec archive.Record, runID string, logger *slog.Logger) {
	if r.History == nil {
		return
	}
	err := r.History.Record(ctx, state.Fetch{
		VideoID:      rec.Video.ID,
		Title:        rec.Video.Title,
		Published:    rec.Video.Published,
		FetchedAt:    r.Now().UTC(),
		Transcribed:  rec.Outcome == archive.OutcomeFetched,
		ArtifactPath: rec.ArtifactPath,
		RunID:        runID,
	})
	if err != nil {
		logger.Warn("history record failed", "video", rec.Video.ID, "error", err)
	}
}

func validateCollection(col Collection) error {
	if (col.ChannelRef == "") == (col.PlaylistID == "") {
		return ErrCollectionRef
	}
	return nil
}

// monthsAgo subtracts calendar months, clamping the day to the target
// month's length so e.g. May 31 minus 3 months is Feb 28, not a normalized
// March date.
func monthsAgo(t time.Time, months int) time.Time {
	firstOfMonth := time.Date(t.Year(), t.Month(), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	target := firstOfMonth.AddDate(0, -months, 0)

	day := t.Day()
	if last := daysIn(target.Year(), target.Month()); day > last {
		day = last
	}
	return time.Date(target.Year(), target.Month(), day, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

// daysIn returns the number of days in a month.
func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
