package speech

import (
	"fmt"

	"github.com/dgnsrekt/bolo/internal/voice"
)

// Slider bounds for the session configuration.
const (
	MinRate      = 0.6
	MaxRate      = 1.6
	MinPitch     = 0.5
	MaxPitch     = 2.0
	DefaultRate  = 1.0
	DefaultPitch = 1.0
)

// Request is a single utterance handed to an Output. It is built at
// dispatch time and is not retained by the caller.
type Request struct {
	Text  string
	Lang  string // "hi-IN" or "en-US"
	Rate  float64
	Pitch float64

	// Voice is nil when the platform has no voices at all.
	Voice *voice.Voice

	// OnStart runs once when playback of this request begins.
	OnStart func()

	// OnEnd and OnError are only set on the final request of a sequence.
	// Exactly one of them runs for such a request unless it is canceled.
	OnEnd   func()
	OnError func(error)

	// OnChunkError runs when a non-final request fails. Playback of the
	// remaining requests continues.
	OnChunkError func(error)
}

// Final reports whether the request carries completion callbacks.
func (r Request) Final() bool {
	return r.OnEnd != nil || r.OnError != nil
}

// VoiceName returns the selected voice name or "" when none.
func (r Request) VoiceName() string {
	if r.Voice == nil {
		return ""
	}
	return r.Voice.Name
}

// Output is the speech capability provided by the host platform.
//
// Implementations must play enqueued requests one at a time in FIFO order.
// Requests dropped by CancelAll fire no callbacks.
type Output interface {
	// Voices returns the currently installed voices. It may be empty.
	Voices() []voice.Voice

	// OnVoicesChanged registers fn to run whenever the voice list changes.
	OnVoicesChanged(fn func())

	// Enqueue appends a request to the playback queue.
	Enqueue(req Request)

	// CancelAll stops the active request and drops every pending one.
	CancelAll()
}

// ClampRate limits rate to the supported slider range.
func ClampRate(rate float64) float64 {
	return clamp(rate, MinRate, MaxRate)
}

// ClampPitch limits pitch to the supported slider range.
func ClampPitch(pitch float64) float64 {
	return clamp(pitch, MinPitch, MaxPitch)
}

// ValidateRate returns ErrInvalidRate when rate is out of range.
func ValidateRate(rate float64) error {
	if rate < MinRate || rate > MaxRate {
		return fmt.Errorf("%w: got %.2f", ErrInvalidRate, rate)
	}
	return nil
}

// ValidatePitch returns ErrInvalidPitch when pitch is out of range.
func ValidatePitch(pitch float64) error {
	if pitch < MinPitch || pitch > MaxPitch {
		return fmt.Errorf("%w: got %.2f", ErrInvalidPitch, pitch)
	}
	return nil
}

func clamp(v, lo, hi float64) float64 {
	switch {
	case v < lo:
		return lo
	case v > hi:
		return hi
	default:
		return v
	}
}
