// Package podscribe archives YouTube transcripts for a channel or playlist.
//
// It lists recent videos through the YouTube Data API, filters them by
// publish date, duration, and visibility, then fetches each video's
// transcript and writes one text artifact per video plus a CSV index for
// the whole run.
//
// Overview
//
// The entry point is the Runner, which drives one end-to-end run:
//
//	cfg, err := config.Load()
//	if err != nil {
//		log.Fatal(err)
//	}
//	dir, err := youtube.NewDirectory(ctx, cfg.APIKey, logger)
//	if err != nil {
//		log.Fatal(err)
//	}
//	fetcher := transcript.NewFetcher(transcript.NewClient(), cfg.Languages, logger)
//	writer, err := archive.NewWriter(cfg.OutputDir)
//	if err != nil {
//		log.Fatal(err)
//	}
//	runner := podscribe.NewRunner(cfg, dir, fetcher, writer, logger)
//	summary, err := runner.Run(ctx, podscribe.Collection{ChannelRef: "https://www.youtube.com/@somechannel"})
//
// Videos are processed strictly in listing order. Transcript fetches retry
// only on rate limiting, with exponential backoff and jitter; a video with
// no transcript is recorded in the index and the run moves on. Between
// items the runner pauses briefly, with a longer pause after each batch,
// to stay polite to the transcript endpoint.
//
// Configuration
//
// Settings load from three sources, later overriding earlier:
//
//   1. Built-in defaults
//   2. Config file (podscribe.toml in the working directory or ~/.config/podscribe/)
//   3. Environment variables (YOUTUBE_API_KEY, PODSCRIBE_*)
//
// Error Handling
//
// Operations return errors usable with errors.Is and errors.As; see the
// sentinels and wrapper types re-exported in this package.
//
// Sub-packages:
//
//   - youtube: channel resolution, video listing, metadata filtering
//   - transcript: transcript retrieval with retry
//   - archive: artifact and index writing
//   - state: cross-run fetch history
//   - config: configuration management
//   - retry: exponential backoff retry logic
package podscribe
