// Package dispatch turns text into an ordered sequence of speech requests
// and publishes the resulting session status transitions.
package dispatch

import (
	"context"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/bolo/internal/script"
	"github.com/dgnsrekt/bolo/internal/speech"
	"github.com/dgnsrekt/bolo/internal/voice"
)

// Settings is the session configuration read at Speak time.
type Settings struct {
	Rate  float64
	Pitch float64

	// Voice is a voice name or voice.Auto.
	Voice string
}

// DefaultSettings returns rate 1, pitch 1 and automatic voice selection.
func DefaultSettings() Settings {
	return Settings{
		Rate:  speech.DefaultRate,
		Pitch: speech.DefaultPitch,
		Voice: voice.Auto,
	}
}

// Dispatcher owns one speaking session. At most one utterance sequence is
// active; starting another always supersedes the previous one.
type Dispatcher struct {
	out      speech.Output
	registry *voice.Registry
	logger   *log.Logger

	// Publish non-final chunk failures as KindError.
	intermediateErrors bool

	// mu guards settings, generation and status, and serializes fan-out so
	// subscribers observe transitions in publish order.
	mu         sync.Mutex
	settings   Settings
	generation uint64
	status     Status

	subsMu sync.Mutex
	subs   map[int]chan Status
	nextID int
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithSettings sets the initial session configuration.
func WithSettings(s Settings) Option {
	return func(d *Dispatcher) { d.settings = normalize(s) }
}

// WithRegistry shares a voice registry with other components.
func WithRegistry(r *voice.Registry) Option {
	return func(d *Dispatcher) { d.registry = r }
}

// WithLogger overrides the package logger.
func WithLogger(l *log.Logger) Option {
	return func(d *Dispatcher) { d.logger = l }
}

// WithIntermediateErrors publishes failures of non-final chunks as
// KindError instead of only logging them.
func WithIntermediateErrors(enabled bool) Option {
	return func(d *Dispatcher) { d.intermediateErrors = enabled }
}

// New returns a dispatcher speaking through out. A nil out means the
// platform has no speech capability and every Speak reports
// KindUnsupported.
func New(out speech.Output, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		out:      out,
		settings: DefaultSettings(),
		status:   Status{Kind: KindReady},
		subs:     make(map[int]chan Status),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.registry == nil {
		d.registry = voice.NewRegistry()
	}
	if d.logger == nil {
		d.logger = log.Default().WithPrefix("dispatch")
	}

	if out != nil {
		d.registry.Refresh(out)
		out.OnVoicesChanged(func() { d.registry.Refresh(out) })
	}
	return d
}

// Supported reports whether a speech capability is present.
func (d *Dispatcher) Supported() bool {
	return d.out != nil
}

// Registry returns the voice registry the dispatcher resolves against.
func (d *Dispatcher) Registry() *voice.Registry {
	return d.registry
}

// Settings returns the current session configuration.
func (d *Dispatcher) Settings() Settings {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.settings
}

// SetSettings replaces the session configuration. Rate and pitch are
// clamped to their slider ranges. Requests already submitted keep the
// values they were built with.
func (d *Dispatcher) SetSettings(s Settings) {
	d.mu.Lock()
	d.settings = normalize(s)
	d.mu.Unlock()
}

// SetRate updates the rate for future Speak calls.
func (d *Dispatcher) SetRate(rate float64) {
	d.mu.Lock()
	d.settings.Rate = speech.ClampRate(rate)
	d.mu.Unlock()
}

// SetPitch updates the pitch for future Speak calls.
func (d *Dispatcher) SetPitch(pitch float64) {
	d.mu.Lock()
	d.settings.Pitch = speech.ClampPitch(pitch)
	d.mu.Unlock()
}

// SetVoice updates the voice selection for future Speak calls.
func (d *Dispatcher) SetVoice(selection string) {
	if selection == "" {
		selection = voice.Auto
	}
	d.mu.Lock()
	d.settings.Voice = selection
	d.mu.Unlock()
}

// Status returns the most recent status.
func (d *Dispatcher) Status() Status {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.status
}

// Speak cancels any in-flight speech and submits text chunk by chunk.
func (d *Dispatcher) Speak(text string) {
	gen := d.supersede()

	if d.out == nil {
		d.publish(gen, Status{Kind: KindUnsupported})
		return
	}
	d.out.CancelAll()

	chunks := script.Split(text)
	if len(chunks) == 0 {
		d.publish(gen, Status{Kind: KindEmpty})
		return
	}

	settings := d.Settings()
	voices := d.registry.Snapshot()
	reqs := make([]speech.Request, len(chunks))
	for i, c := range chunks {
		reqs[i] = d.request(gen, c, settings, voices, i == len(chunks)-1)
	}

	// Hold mu across submission so no callback can publish ahead of the
	// optimistic KindSpeaking below. Outputs never invoke callbacks while
	// inside Enqueue.
	d.mu.Lock()
	if gen != d.generation {
		d.mu.Unlock()
		return
	}
	for _, req := range reqs {
		d.logger.Debug("enqueue", "lang", req.Lang, "voice", req.VoiceName(), "text", Preview(req.Text))
		d.out.Enqueue(req)
	}
	d.setLocked(Status{Kind: KindSpeaking})
	d.mu.Unlock()
}

// Stop cancels all pending and active requests. It is safe to call when
// nothing is speaking.
func (d *Dispatcher) Stop() {
	gen := d.supersede()
	if d.out != nil {
		d.out.CancelAll()
	}
	d.publish(gen, Status{Kind: KindStopped})
}

// Subscribe returns a channel of status transitions. When a subscriber
// falls more than buf transitions behind, the oldest undelivered ones are
// dropped. The returned func unsubscribes and closes the channel.
func (d *Dispatcher) Subscribe(buf int) (<-chan Status, func()) {
	if buf < 1 {
		buf = 1
	}
	ch := make(chan Status, buf)

	d.subsMu.Lock()
	id := d.nextID
	d.nextID++
	d.subs[id] = ch
	d.subsMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			d.mu.Lock()
			d.subsMu.Lock()
			delete(d.subs, id)
			close(ch)
			d.subsMu.Unlock()
			d.mu.Unlock()
		})
	}
}

// Wait blocks until ch delivers a terminal status or ctx is done.
func Wait(ctx context.Context, ch <-chan Status) (Status, error) {
	for {
		select {
		case <-ctx.Done():
			return Status{}, ctx.Err()
		case s, ok := <-ch:
			if !ok {
				return Status{}, context.Canceled
			}
			if s.Kind.Terminal() {
				return s, nil
			}
		}
	}
}

func (d *Dispatcher) request(gen uint64, c script.Chunk, s Settings, voices []voice.Voice, final bool) speech.Request {
	req := speech.Request{
		Text:  c.Text,
		Lang:  c.Lang.Locale(),
		Rate:  s.Rate,
		Pitch: s.Pitch,
	}
	if v, ok := voice.Resolve(c.Lang, s.Voice, voices); ok {
		req.Voice = &v
	}

	lang, preview := c.Lang, Preview(c.Text)
	req.OnStart = func() {
		d.publish(gen, Status{Kind: KindSpeakingChunk, Lang: lang, Preview: preview})
	}

	if final {
		req.OnEnd = func() {
			d.publish(gen, Status{Kind: KindFinished})
		}
		req.OnError = func(err error) {
			d.logger.Warn("playback failed", "lang", lang, "error", err)
			d.publish(gen, Status{Kind: KindError, Err: err})
		}
		return req
	}

	req.OnChunkError = func(err error) {
		if d.intermediateErrors {
			d.publish(gen, Status{Kind: KindError, Err: err})
			return
		}
		d.logger.Debug("chunk playback failed", "lang", lang, "text", preview, "error", err)
	}
	return req
}

// supersede starts a new generation; callbacks from older generations are
// ignored from here on.
func (d *Dispatcher) supersede() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.generation++
	return d.generation
}

func (d *Dispatcher) publish(gen uint64, s Status) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if gen != d.generation {
		return
	}
	d.setLocked(s)
}

func (d *Dispatcher) setLocked(s Status) {
	d.status = s
	d.logger.Debug("status", "kind", s.Kind, "lang", s.Lang)

	d.subsMu.Lock()
	defer d.subsMu.Unlock()
	for _, ch := range d.subs {
		for {
			select {
			case ch <- s:
			default:
				select {
				case <-ch:
				default:
				}
				continue
			}
			break
		}
	}
}

func normalize(s Settings) Settings {
	s.Rate = speech.ClampRate(s.Rate)
	s.Pitch = speech.ClampPitch(s.Pitch)
	if s.Voice == "" {
		s.Voice = voice.Auto
	}
	return s
}
