package youtube

import (
	"fmt"
	"regexp"
	"strings"
)

// RefKind enumerates the recognized collection reference shapes.
type RefKind int

const (
	// RefChannelID is an explicit channel ID, given bare or in a
	// /channel/<id> URL. Needs no resolution.
	RefChannelID RefKind = iota
	// RefHandle is an @handle, resolved via a channel search.
	RefHandle
	// RefCustomName is a /c/<name> or /user/<name> custom URL, resolved
	// via a channel search.
	RefCustomName
)

func (k RefKind) String() string {
	switch k {
	case RefChannelID:
		return "channel-id"
	case RefHandle:
		return "handle"
	case RefCustomName:
		return "custom-name"
	}
	return "unknown"
}

// Ref is a parsed collection reference. Each kind maps to one resolution
// strategy in Directory.ResolveRef.
type Ref struct {
	Kind  RefKind
	Value string
}

var (
	channelIDRe  = regexp.MustCompile(`^UC[0-9A-Za-z_-]{22}$`)
	channelURLRe = regexp.MustCompile(`/channel/([^/?#]+)`)
	handleRe     = regexp.MustCompile(`/@([^/?#]+)`)
	customRe     = regexp.MustCompile(`/(?:c|user)/([^/?#]+)`)
)

// ParseRef classifies a channel URL, handle, or bare channel ID into a Ref.
// Recognized shapes:
//
//	UCxxxxxxxxxxxxxxxxxxxxxx
//	https://www.youtube.com/channel/UCxxxxxxxxxxxxxxxxxxxxxx
//	https://www.youtube.com/@SomeHandle
//	@SomeHandle
//	https://www.youtube.com/c/SomeName
//	https://www.youtube.com/user/SomeName
func ParseRef(input string) (Ref, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return Ref{}, fmt.Errorf("%w: empty input", ErrInvalidRef)
	}

	if channelIDRe.MatchString(input) {
		return Ref{Kind: RefChannelID, Value: input}, nil
	}
	if m := channelURLRe.FindStringSubmatch(input); m != nil {
		return Ref{Kind: RefChannelID, Value: m[1]}, nil
	}
	if strings.HasPrefix(input, "@") {
		return Ref{Kind: RefHandle, Value: strings.TrimPrefix(input, "@")}, nil
	}
	if m := handleRe.FindStringSubmatch(input); m != nil {
		return Ref{Kind: RefHandle, Value: m[1]}, nil
	}
	if m := customRe.FindStringSubmatch(input); m != nil {
		return Ref{Kind: RefCustomName, Value: m[1]}, nil
	}

	return Ref{}, fmt.Errorf("%w: cannot classify %q", ErrInvalidRef, input)
}
