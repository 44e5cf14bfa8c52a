package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jessevdk/go-flags"
	"github.com/mattn/go-isatty"

	"podscribe"
	"podscribe/archive"
	"podscribe/config"
	"podscribe/state"
	"podscribe/transcript"
	"podscribe/youtube"
)

// Version is set at build time via -ldflags.
var Version = "dev"

type options struct {
	ChannelURL string   `long:"channel-url" short:"c" env:"PODSCRIBE_CHANNEL_URL" description:"Channel URL, @handle, or bare channel ID"`
	PlaylistID string   `long:"playlist-id" short:"p" env:"PODSCRIBE_PLAYLIST_ID" description:"Playlist ID to archive instead of a channel"`
	OutputDir  string   `long:"output-dir" short:"o" description:"Directory for transcript artifacts and the index"`
	MonthsBack int      `long:"months-back" description:"Include videos published within this many calendar months"`
	Languages  []string `long:"lang" description:"Transcript language preference, repeatable, in order"`

	MinDuration int `long:"min-duration" description:"Minimum video duration in seconds"`
	MaxDuration int `long:"max-duration" description:"Maximum video duration in seconds (0 = no limit)"`

	BatchSize  int     `long:"batch-size" description:"Videos per batch before the long pause"`
	BatchPause int     `long:"batch-pause" description:"Seconds to pause between batches"`
	Delay      float64 `long:"delay" description:"Seconds to wait between videos within a batch"`

	SkipFetched bool `long:"skip-fetched" description:"Skip videos already archived in a previous run"`
	Debug       bool `long:"debug" env:"PODSCRIBE_DEBUG" description:"Enable debug logging"`
	Version     bool `long:"version" short:"v" description:"Print version and exit"`
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "podscribe: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var opts options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			return nil
		}
		return fmt.Errorf("parse flags: %w", err)
	}

	if opts.Version {
		fmt.Println("podscribe", Version)
		return nil
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	applyOverrides(cfg, opts)
	if err := cfg.Validate(); err != nil {
		return err
	}

	level := slog.LevelInfo
	if opts.Debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	writer, err := archive.NewWriter(cfg.OutputDir)
	if err != nil {
		return err
	}
	if err := writer.Lock(); err != nil {
		return err
	}
	defer writer.Unlock()

	store, err := state.Open(cfg.HistoryDBPath())
	if err != nil {
		return fmt.Errorf("open history store: %w", err)
	}
	defer store.Close()

	dir, err := youtube.NewDirectory(ctx, cfg.APIKey, logger)
	if err != nil {
		return err
	}

	fetcher := transcript.NewFetcher(transcript.NewClient(), cfg.Languages, logger)
	retryCfg := transcript.DefaultRetryConfig()
	retryCfg.MaxRetries = cfg.MaxRetries
	retryCfg.InitialBackoff = time.Duration(cfg.InitialBackoffSec) * time.Second
	fetcher.SetRetryConfig(retryCfg)

	runner := podscribe.NewRunner(cfg, dir, fetcher, writer, logger)
	runner.History = store

	summary, err := runner.Run(ctx, podscribe.Collection{
		ChannelRef: opts.ChannelURL,
		PlaylistID: opts.PlaylistID,
	})
	if err != nil {
		return err
	}

	printSummary(summary)
	return nil
}

// applyOverrides layers explicitly passed flags over the loaded config.
// Zero values mean the flag was not passed and the config value stands.
func applyOverrides(cfg *config.Config, opts options) {
	if opts.OutputDir != "" {
		cfg.OutputDir = opts.OutputDir
	}
	if opts.MonthsBack > 0 {
		cfg.MonthsBack = opts.MonthsBack
	}
	if len(opts.Languages) > 0 {
		cfg.Languages = opts.Languages
	}
	if opts.MinDuration > 0 {
		cfg.MinDurationSec = opts.MinDuration
	}
	if opts.MaxDuration > 0 {
		cfg.MaxDurationSec = opts.MaxDuration
	}
	if opts.BatchSize > 0 {
		cfg.BatchSize = opts.BatchSize
	}
	if opts.BatchPause > 0 {
		cfg.BatchPauseSec = opts.BatchPause
	}
	if opts.Delay > 0 {
		cfg.DelaySec = opts.Delay
	}
	if opts.SkipFetched {
		cfg.SkipFetched = true
	}
}

func printSummary(s *podscribe.Summary) {
	if s.IndexPath == "" {
		fmt.Println("No videos found.")
		return
	}

	if !isatty.IsTerminal(os.Stdout.Fd()) {
		fmt.Printf("run=%s found=%d archived=%d missing=%d index=%s\n",
			s.RunID, s.Found, s.Succeeded, s.Skipped, s.IndexPath)
		return
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendRows([]table.Row{
		{"Run", s.RunID},
		{"Cutoff", s.Cutoff.Format(time.DateOnly)},
		{"Videos found", s.Found},
		{"Transcripts archived", s.Succeeded},
		{"No transcript", s.Skipped},
		{"Index", s.IndexPath},
	})
	fmt.Println(tw.Render())
}
