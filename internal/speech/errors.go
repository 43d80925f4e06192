package speech

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupported indicates the platform has no speech capability.
	ErrUnsupported = errors.New("speech synthesis not supported")

	// ErrCanceled indicates a request was dropped by CancelAll.
	ErrCanceled = errors.New("speech canceled")

	// ErrPlayback indicates the platform failed to play a request.
	ErrPlayback = errors.New("error during speech")

	// ErrInvalidRate indicates a rate outside [0.6, 1.6].
	ErrInvalidRate = errors.New("rate must be between 0.6 and 1.6")

	// ErrInvalidPitch indicates a pitch outside [0.5, 2.0].
	ErrInvalidPitch = errors.New("pitch must be between 0.5 and 2.0")
)

// PlaybackError reports a failed request together with its cause.
type PlaybackError struct {
	Lang  string
	Voice string
	Cause error
}

// Error implements the error interface.
func (e *PlaybackError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s (%s, voice %q): %v", ErrPlayback, e.Lang, e.Voice, e.Cause)
	}
	return fmt.Sprintf("%s (%s, voice %q)", ErrPlayback, e.Lang, e.Voice)
}

// Unwrap returns the underlying error.
func (e *PlaybackError) Unwrap() error {
	return e.Cause
}

// Is makes errors.Is(err, ErrPlayback) true for every PlaybackError.
func (e *PlaybackError) Is(target error) bool {
	return target == ErrPlayback
}

// NewPlaybackError wraps cause for req.
func NewPlaybackError(req Request, cause error) *PlaybackError {
	return &PlaybackError{Lang: req.Lang, Voice: req.VoiceName(), Cause: cause}
}
