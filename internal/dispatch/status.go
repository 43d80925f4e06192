package dispatch

import (
	"fmt"

	"github.com/dgnsrekt/bolo/internal/script"
)

// previewLen is the number of runes shown for the chunk being spoken.
const previewLen = 40

// Kind identifies a session status.
type Kind int

const (
	// KindReady is the initial status before anything was spoken.
	KindReady Kind = iota

	// KindSpeaking is set optimistically right after submission.
	KindSpeaking

	// KindSpeakingChunk is set when the platform starts playing a chunk.
	KindSpeakingChunk

	// KindFinished is set when the final chunk completes.
	KindFinished

	// KindStopped is set by Stop.
	KindStopped

	// KindError is set when the final chunk fails.
	KindError

	// KindUnsupported is set when there is no speech capability.
	KindUnsupported

	// KindEmpty is set when the input has nothing to speak.
	KindEmpty
)

// String returns the machine name of the kind.
func (k Kind) String() string {
	switch k {
	case KindReady:
		return "ready"
	case KindSpeaking:
		return "speaking"
	case KindSpeakingChunk:
		return "speaking-chunk"
	case KindFinished:
		return "finished"
	case KindStopped:
		return "stopped"
	case KindError:
		return "error"
	case KindUnsupported:
		return "unsupported"
	case KindEmpty:
		return "empty"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transitions follow without a new
// Speak or Stop call.
func (k Kind) Terminal() bool {
	switch k {
	case KindFinished, KindStopped, KindError, KindUnsupported, KindEmpty:
		return true
	default:
		return false
	}
}

// Status is the single observable session value.
type Status struct {
	Kind Kind

	// Lang and Preview are set for KindSpeakingChunk.
	Lang    script.Lang
	Preview string

	// Err is set for KindError.
	Err error
}

// String renders the status for display.
func (s Status) String() string {
	switch s.Kind {
	case KindSpeaking:
		return "speaking..."
	case KindSpeakingChunk:
		return fmt.Sprintf("speaking (%s): %s", s.Lang, s.Preview)
	case KindError:
		return "error during speech"
	case KindUnsupported:
		return "speech synthesis not supported"
	case KindEmpty:
		return "nothing to speak"
	default:
		return s.Kind.String()
	}
}

// Preview truncates text to its first 40 runes, marking the cut with "...".
func Preview(text string) string {
	runes := []rune(text)
	if len(runes) <= previewLen {
		return text
	}
	return string(runes[:previewLen]) + "..."
}
