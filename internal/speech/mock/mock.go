// Package mock provides a recording speech.Output for tests. Playback
// never happens on its own; tests drive callbacks explicitly.
package mock

import (
	"sync"

	"github.com/dgnsrekt/bolo/internal/speech"
	"github.com/dgnsrekt/bolo/internal/voice"
)

// Output records enqueued requests and replays their callbacks on demand.
type Output struct {
	mu        sync.Mutex
	voices    []voice.Voice
	listeners []func()

	enqueued []speech.Request

	// pending requests have not finished or been canceled.
	pending []speech.Request
	started bool

	cancels int
	played  []speech.Request
}

var _ speech.Output = (*Output)(nil)

// New returns a mock output advertising voices.
func New(voices ...voice.Voice) *Output {
	return &Output{voices: voices}
}

// Voices implements speech.Output.
func (o *Output) Voices() []voice.Voice {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]voice.Voice, len(o.voices))
	copy(out, o.voices)
	return out
}

// OnVoicesChanged implements speech.Output.
func (o *Output) OnVoicesChanged(fn func()) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.listeners = append(o.listeners, fn)
}

// Enqueue implements speech.Output.
func (o *Output) Enqueue(req speech.Request) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.enqueued = append(o.enqueued, req)
	o.pending = append(o.pending, req)
}

// CancelAll implements speech.Output. Pending requests are dropped
// without any callback.
func (o *Output) CancelAll() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.cancels++
	o.pending = nil
	o.started = false
}

// SetVoices replaces the voice list and fires change listeners.
func (o *Output) SetVoices(voices ...voice.Voice) {
	o.mu.Lock()
	o.voices = voices
	listeners := append([]func(){}, o.listeners...)
	o.mu.Unlock()

	for _, fn := range listeners {
		fn()
	}
}

// StartNext fires OnStart for the head of the queue. It returns false when
// nothing is pending or the head already started.
func (o *Output) StartNext() bool {
	o.mu.Lock()
	if len(o.pending) == 0 || o.started {
		o.mu.Unlock()
		return false
	}
	req := o.pending[0]
	o.started = true
	o.played = append(o.played, req)
	o.mu.Unlock()

	if req.OnStart != nil {
		req.OnStart()
	}
	return true
}

// FinishNext completes the head of the queue, starting it first if needed.
func (o *Output) FinishNext() bool {
	return o.complete(nil)
}

// FailNext fails the head of the queue with err, starting it first if
// needed.
func (o *Output) FailNext(err error) bool {
	return o.complete(err)
}

// PlayAll starts and finishes every pending request in order.
func (o *Output) PlayAll() int {
	n := 0
	for o.FinishNext() {
		n++
	}
	return n
}

func (o *Output) complete(err error) bool {
	o.mu.Lock()
	needsStart := len(o.pending) > 0 && !o.started
	o.mu.Unlock()

	if needsStart {
		o.StartNext()
	}

	o.mu.Lock()
	if len(o.pending) == 0 || !o.started {
		o.mu.Unlock()
		return false
	}
	req := o.pending[0]
	o.pending = o.pending[1:]
	o.started = false
	o.mu.Unlock()

	switch {
	case err != nil && req.OnError != nil:
		req.OnError(err)
	case err != nil && req.OnChunkError != nil:
		req.OnChunkError(err)
	case err == nil && req.OnEnd != nil:
		req.OnEnd()
	}
	return true
}

// Enqueued returns a copy of every request submitted so far.
func (o *Output) Enqueued() []speech.Request {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]speech.Request(nil), o.enqueued...)
}

// Pending returns the number of requests still queued.
func (o *Output) Pending() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.pending)
}

// Played returns every request that reached OnStart.
func (o *Output) Played() []speech.Request {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]speech.Request(nil), o.played...)
}

// Cancels returns how many times CancelAll was called.
func (o *Output) Cancels() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.cancels
}

// Reset forgets recorded requests and cancel counts.
func (o *Output) Reset() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.enqueued = nil
	o.pending = nil
	o.played = nil
	o.started = false
	o.cancels = 0
}
