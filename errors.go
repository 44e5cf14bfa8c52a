package podscribe

import (
	"podscribe/retry"
	"podscribe/transcript"
	"podscribe/youtube"
)

// Error handling types exported for library users.
//
// All error types support the standard error handling patterns:
//
// Using errors.Is() for sentinel errors:
//
//	if errors.Is(err, podscribe.ErrChannelNotFound) {
//		fmt.Println("Channel not found")
//	}
//
// Using errors.As() for wrapped errors:
//
//	var listerErr *podscribe.ListerError
//	if errors.As(err, &listerErr) {
//		fmt.Printf("Listing failed for %s: %v\n", listerErr.Collection, listerErr.Err)
//	}

// Type aliases for convenient error handling.
type (
	// ListerError wraps errors during video listing.
	ListerError = youtube.ListerError
	// TranscriptError wraps errors during transcript retrieval.
	TranscriptError = transcript.Error
	// RetryableError wraps errors that occurred after retries were exhausted.
	RetryableError = retry.RetryableError
)

// Sentinel errors exported from sub-packages.
var (
	// ErrChannelNotFound indicates the YouTube channel does not exist.
	ErrChannelNotFound = youtube.ErrChannelNotFound
	// ErrInvalidRef indicates the channel reference could not be parsed.
	ErrInvalidRef = youtube.ErrInvalidRef

	// ErrTranscriptsDisabled indicates the video owner disabled transcripts.
	ErrTranscriptsDisabled = transcript.ErrTranscriptsDisabled
	// ErrNoTranscript indicates no transcript exists in a requested language.
	ErrNoTranscript = transcript.ErrNoTranscript
	// ErrVideoUnavailable indicates the video is private, deleted, or blocked.
	ErrVideoUnavailable = transcript.ErrVideoUnavailable
	// ErrRateLimited indicates the transcript service rate limited the run.
	ErrRateLimited = transcript.ErrRateLimited
)
