package youtube

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"google.golang.org/api/option"
	yt "google.golang.org/api/youtube/v3"
)

// Page size and batch lookup limits imposed by the Data API.
const (
	maxPageSize = 50
	maxBatchIDs = 50
	searchQuota = 100
	listQuota   = 1
)

// Directory lists collection videos using the YouTube Data API v3.
// All calls are synchronous; a failure during listing aborts the whole
// listing rather than being retried, so callers see either a complete
// result or the error.
type Directory struct {
	service *yt.Service
	logger  *slog.Logger

	// quotaUsed is the estimated quota units consumed so far. Informational
	// only; listing never stops on quota, the API's own errors do that.
	quotaUsed int
}

// NewDirectory creates a Data API backed directory client.
func NewDirectory(ctx context.Context, apiKey string, logger *slog.Logger) (*Directory, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("youtube: api key required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	service, err := yt.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create youtube service: %w", err)
	}

	return &Directory{service: service, logger: logger}, nil
}

// QuotaUsed returns the estimated quota units consumed by this client.
func (d *Directory) QuotaUsed() int { return d.quotaUsed }

// ResolveRef resolves a parsed collection reference to a canonical channel
// ID. Explicit IDs pass through without a network call; handles and custom
// names go through a single-result channel search.
func (d *Directory) ResolveRef(ctx context.Context, ref Ref) (string, error) {
	switch ref.Kind {
	case RefChannelID:
		return ref.Value, nil
	case RefHandle:
		return d.searchChannel(ctx, "@"+ref.Value)
	case RefCustomName:
		return d.searchChannel(ctx, ref.Value)
	}
	return "", fmt.Errorf("%w: unknown ref kind %d", ErrInvalidRef, ref.Kind)
}

// searchChannel finds the best channel match for a query string.
func (d *Directory) searchChannel(ctx context.Context, query string) (string, error) {
	call := d.service.Search.List([]string{"snippet"}).
		Q(query).
		Type("channel").
		MaxResults(1).
		Context(ctx)

	resp, err := call.Do()
	if err != nil {
		return "", &ListerError{Op: "resolve", Collection: query, Err: err}
	}
	d.quotaUsed += searchQuota

	if len(resp.Items) == 0 {
		return "", &ListerError{Op: "resolve", Collection: query, Err: ErrChannelNotFound}
	}
	return resp.Items[0].Snippet.ChannelId, nil
}

// ListChannelVideos returns the channel's videos published at or after the
// filter cutoff, newest first, enriched and filtered.
func (d *Directory) ListChannelVideos(ctx context.Context, channelID string, f Filter) ([]Video, error) {
	var videos []Video

	err := forEachPage(ctx, func(ctx context.Context, token string) (string, error) {
		call := d.service.Search.List([]string{"snippet"}).
			ChannelId(channelID).
			Order("date").
			Type("video").
			MaxResults(maxPageSize).
			PageToken(token).
			Context(ctx)
		if !f.PublishedAfter.IsZero() {
			call = call.PublishedAfter(f.PublishedAfter.UTC().Format(time.RFC3339))
		}

		resp, err := call.Do()
		if err != nil {
			return "", err
		}
		d.quotaUsed += searchQuota

		for _, item := range resp.Items {
			if item.Id == nil || item.Id.VideoId == "" {
				continue
			}
			v := Video{ID: item.Id.VideoId}
			if item.Snippet != nil {
				v.Title = item.Snippet.Title
				if t, err := time.Parse(time.RFC3339, item.Snippet.PublishedAt); err == nil {
					v.Published = t
				}
			}
			videos = append(videos, v)
		}
		return resp.NextPageToken, nil
	})
	if err != nil {
		return nil, &ListerError{Op: "channel", Collection: channelID, Err: err}
	}

	d.logger.Debug("channel listing complete", "channel", channelID, "videos", len(videos))
	return d.enrichAndFilter(ctx, channelID, videos, f)
}

// ListPlaylistVideos returns the playlist's videos published at or after the
// filter cutoff, enriched and filtered. The playlist endpoint has no
// server-side date filter, so the cutoff is applied here per item; the bound
// is inclusive.
func (d *Directory) ListPlaylistVideos(ctx context.Context, playlistID string, f Filter) ([]Video, error) {
	var videos []Video

	err := forEachPage(ctx, func(ctx context.Context, token string) (string, error) {
		call := d.service.PlaylistItems.List([]string{"snippet", "contentDetails"}).
			PlaylistId(playlistID).
			MaxResults(maxPageSize).
			PageToken(token).
			Context(ctx)

		resp, err := call.Do()
		if err != nil {
			return "", err
		}
		d.quotaUsed += listQuota

		for _, item := range resp.Items {
			if item.ContentDetails == nil || item.ContentDetails.VideoId == "" {
				continue
			}
			v := Video{ID: item.ContentDetails.VideoId}
			if item.Snippet != nil {
				v.Title = item.Snippet.Title
				if t, err := time.Parse(time.RFC3339, item.Snippet.PublishedAt); err == nil {
					v.Published = t
				}
			}
			if !f.PublishedAfter.IsZero() && v.Published.Before(f.PublishedAfter) {
				continue
			}
			videos = append(videos, v)
		}
		return resp.NextPageToken, nil
	})
	if err != nil {
		return nil, &ListerError{Op: "playlist", Collection: playlistID, Err: err}
	}

	d.logger.Debug("playlist listing complete", "playlist", playlistID, "videos", len(videos))
	return d.enrichAndFilter(ctx, playlistID, videos, f)
}

// enrichAndFilter merges duration and visibility from the videos endpoint
// into the accumulated records, then applies the visibility and duration
// filters. Enrichment happens before any transcript work so excluded videos
// never cost a transcript request.
func (d *Directory) enrichAndFilter(ctx context.Context, collection string, videos []Video, f Filter) ([]Video, error) {
	details, err := d.videoDetails(ctx, videoIDs(videos))
	if err != nil {
		return nil, &ListerError{Op: "details", Collection: collection, Err: err}
	}
	merged := mergeDetails(videos, details)
	filtered := applyFilter(merged, f)
	d.logger.Debug("filtering complete", "collection", collection, "before", len(videos), "after", len(filtered))
	return filtered, nil
}

// videoDetail holds the enrichment fields for one video.
type videoDetail struct {
	duration   time.Duration
	visibility Visibility
}

// videoDetails batch-looks up duration and privacy status, maxBatchIDs ids
// per call.
func (d *Directory) videoDetails(ctx context.Context, ids []string) (map[string]videoDetail, error) {
	details := make(map[string]videoDetail, len(ids))

	for start := 0; start < len(ids); start += maxBatchIDs {
		end := start + maxBatchIDs
		if end > len(ids) {
			end = len(ids)
		}

		call := d.service.Videos.List([]string{"contentDetails", "status"}).
			Id(ids[start:end]...).
			Context(ctx)

		resp, err := call.Do()
		if err != nil {
			return nil, err
		}
		d.quotaUsed += listQuota

		for _, item := range resp.Items {
			detail := videoDetail{}
			if item.ContentDetails != nil {
				detail.duration = ParseISODuration(item.ContentDetails.Duration)
			}
			if item.Status != nil {
				detail.visibility = Visibility(item.Status.PrivacyStatus)
			}
			details[item.Id] = detail
		}
	}

	return details, nil
}

// mergeDetails copies enrichment data into the video records, preserving
// order. Videos the details lookup did not return stay unenriched and fall
// out at the visibility filter.
func mergeDetails(videos []Video, details map[string]videoDetail) []Video {
	merged := make([]Video, len(videos))
	for i, v := range videos {
		if detail, ok := details[v.ID]; ok {
			v.Duration = detail.duration
			v.Visibility = detail.visibility
		}
		merged[i] = v
	}
	return merged
}

func videoIDs(videos []Video) []string {
	ids := make([]string, len(videos))
	for i, v := range videos {
		ids[i] = v.ID
	}
	return ids
}

// pageFunc fetches one page given a continuation token and returns the next
// token, empty when the service reports no further page.
type pageFunc func(ctx context.Context, token string) (next string, err error)

// forEachPage drives token-based pagination until the service returns an
// empty continuation token or a page fails.
func forEachPage(ctx context.Context, fn pageFunc) error {
	token := ""
	for {
		next, err := fn(ctx, token)
		if err != nil {
			return err
		}
		if next == "" {
			return nil
		}
		token = next
	}
}
