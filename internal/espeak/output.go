package espeak

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/bolo/internal/audio"
	"github.com/dgnsrekt/bolo/internal/speech"
	"github.com/dgnsrekt/bolo/internal/voice"
)

// Synthesizer renders a request to audio and lists the voices it can use.
// *Engine is the production implementation.
type Synthesizer interface {
	Synthesize(ctx context.Context, req speech.Request) (audio.PCM, error)
	Voices(ctx context.Context) ([]voice.Voice, error)
}

// Output is the espeak-ng implementation of speech.Output. A single
// worker plays requests in FIFO order. Callbacks run on the worker
// goroutine with no locks held.
type Output struct {
	synth Synthesizer
	sink  audio.Sink

	mu        sync.Mutex
	queue     []speech.Request
	epoch     uint64
	cancelCur context.CancelFunc
	voices    []voice.Voice
	listeners []func()

	wake   chan struct{}
	ctx    context.Context
	stop   context.CancelFunc
	done   chan struct{}
	closed bool
}

// NewOutput starts the playback worker and loads the initial voice list.
func NewOutput(synth Synthesizer, sink audio.Sink) *Output {
	ctx, stop := context.WithCancel(context.Background())
	o := &Output{
		synth: synth,
		sink:  sink,
		wake:  make(chan struct{}, 1),
		ctx:   ctx,
		stop:  stop,
		done:  make(chan struct{}),
	}
	if err := o.Refresh(ctx); err != nil {
		log.Warn("could not list espeak voices", "error", err)
	}
	go o.run()
	return o
}

// Voices returns the last listed voices.
func (o *Output) Voices() []voice.Voice {
	o.mu.Lock()
	defer o.mu.Unlock()
	return slices.Clone(o.voices)
}

// OnVoicesChanged registers fn to run after the voice list changes.
func (o *Output) OnVoicesChanged(fn func()) {
	if fn == nil {
		return
	}
	o.mu.Lock()
	o.listeners = append(o.listeners, fn)
	o.mu.Unlock()
}

// Refresh re-lists voices and notifies listeners when the list differs.
func (o *Output) Refresh(ctx context.Context) error {
	voices, err := o.synth.Voices(ctx)
	if err != nil {
		return err
	}

	o.mu.Lock()
	changed := !slices.Equal(o.voices, voices)
	o.voices = voices
	fns := slices.Clone(o.listeners)
	o.mu.Unlock()

	if !changed {
		return nil
	}
	log.Debug("espeak voices changed", "count", len(voices))
	for _, fn := range fns {
		fn()
	}
	return nil
}

// Enqueue appends req to the playback queue. It never blocks and never
// runs callbacks.
func (o *Output) Enqueue(req speech.Request) {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return
	}
	o.queue = append(o.queue, req)
	o.mu.Unlock()

	select {
	case o.wake <- struct{}{}:
	default:
	}
}

// CancelAll drops pending requests and aborts the active one. It does not
// wait for the worker.
func (o *Output) CancelAll() {
	o.mu.Lock()
	o.queue = nil
	o.epoch++
	if o.cancelCur != nil {
		o.cancelCur()
		o.cancelCur = nil
	}
	o.mu.Unlock()
}

// Pending returns the number of queued requests, excluding the active one.
func (o *Output) Pending() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.queue)
}

// Close cancels everything and stops the worker.
func (o *Output) Close() error {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return nil
	}
	o.closed = true
	o.mu.Unlock()

	o.CancelAll()
	o.stop()
	<-o.done
	return nil
}

func (o *Output) run() {
	defer close(o.done)
	for {
		req, ctx, epoch, ok := o.next()
		if !ok {
			select {
			case <-o.ctx.Done():
				return
			case <-o.wake:
				continue
			}
		}
		o.play(ctx, epoch, req)
	}
}

// next pops the queue head and binds it to a cancelable context.
func (o *Output) next() (speech.Request, context.Context, uint64, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if len(o.queue) == 0 || o.ctx.Err() != nil {
		return speech.Request{}, nil, 0, false
	}
	req := o.queue[0]
	o.queue = o.queue[1:]

	ctx, cancel := context.WithCancel(o.ctx)
	o.cancelCur = cancel
	return req, ctx, o.epoch, true
}

func (o *Output) play(ctx context.Context, epoch uint64, req speech.Request) {
	defer o.release(epoch)

	start := time.Now()
	pcm, err := o.synth.Synthesize(ctx, req)
	if !o.current(ctx, epoch) {
		return
	}
	if err != nil {
		o.fail(req, err)
		return
	}

	log.Debug("playing", "lang", req.Lang, "voice", req.VoiceName(), "duration", pcm.Duration(), "synth", time.Since(start))
	if req.OnStart != nil {
		req.OnStart()
	}

	err = o.sink.Play(ctx, pcm)
	if !o.current(ctx, epoch) {
		return
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		o.fail(req, err)
		return
	}
	if req.OnEnd != nil {
		req.OnEnd()
	}
}

// current reports whether the request survived any CancelAll.
func (o *Output) current(ctx context.Context, epoch uint64) bool {
	if ctx.Err() != nil {
		return false
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.epoch == epoch
}

func (o *Output) release(epoch uint64) {
	o.mu.Lock()
	if o.epoch == epoch && o.cancelCur != nil {
		o.cancelCur()
		o.cancelCur = nil
	}
	o.mu.Unlock()
}

func (o *Output) fail(req speech.Request, cause error) {
	err := speech.NewPlaybackError(req, cause)
	switch {
	case req.OnError != nil:
		req.OnError(err)
	case req.OnChunkError != nil:
		req.OnChunkError(err)
	default:
		log.Debug("request failed", "error", err)
	}
}

var _ speech.Output = (*Output)(nil)
