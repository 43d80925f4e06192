package espeak

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dgnsrekt/bolo/internal/audio"
	"github.com/dgnsrekt/bolo/internal/speech"
	"github.com/dgnsrekt/bolo/internal/voice"
)

type fakeSynth struct {
	mu     sync.Mutex
	voices []voice.Voice
	fail   map[string]error
	calls  []string
}

func (f *fakeSynth) Synthesize(ctx context.Context, req speech.Request) (audio.PCM, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req.Text)
	err := f.fail[req.Text]
	f.mu.Unlock()

	if err != nil {
		return audio.PCM{}, err
	}
	if ctx.Err() != nil {
		return audio.PCM{}, ctx.Err()
	}
	return audio.PCM{
		Format: audio.Format{SampleRate: 22050, Channels: 1, BitDepth: 16},
		Data:   []byte(req.Text),
	}, nil
}

func (f *fakeSynth) Voices(context.Context) ([]voice.Voice, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]voice.Voice(nil), f.voices...), nil
}

func (f *fakeSynth) setVoices(v ...voice.Voice) {
	f.mu.Lock()
	f.voices = v
	f.mu.Unlock()
}

// recorder collects callback events in order.
type recorder struct {
	mu     sync.Mutex
	events []string
	done   chan struct{}
}

func newRecorder() *recorder {
	return &recorder{done: make(chan struct{}, 16)}
}

func (r *recorder) add(ev string) {
	r.mu.Lock()
	r.events = append(r.events, ev)
	r.mu.Unlock()
}

func (r *recorder) request(text string, final bool) speech.Request {
	req := speech.Request{
		Text:    text,
		Lang:    "en-US",
		OnStart: func() { r.add("start " + text) },
		OnChunkError: func(error) {
			r.add("chunk-error " + text)
		},
	}
	if final {
		req.OnEnd = func() {
			r.add("end " + text)
			r.done <- struct{}{}
		}
		req.OnError = func(error) {
			r.add("error " + text)
			r.done <- struct{}{}
		}
	}
	return req
}

func (r *recorder) wait(t *testing.T) {
	t.Helper()
	select {
	case <-r.done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for final callback")
	}
}

func (r *recorder) list() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestOutputPlaysInOrder(t *testing.T) {
	synth := &fakeSynth{}
	player := &audio.MockPlayer{}
	out := NewOutput(synth, player)
	defer out.Close()

	rec := newRecorder()
	out.Enqueue(rec.request("one", false))
	out.Enqueue(rec.request("two", false))
	out.Enqueue(rec.request("three", true))
	rec.wait(t)

	want := []string{"start one", "start two", "start three", "end three"}
	if got := rec.list(); !equal(got, want) {
		t.Errorf("events = %v, want %v", got, want)
	}
	if n := len(player.Played()); n != 3 {
		t.Errorf("played %d buffers, want 3", n)
	}
}

func TestOutputFinalError(t *testing.T) {
	boom := errors.New("boom")
	synth := &fakeSynth{fail: map[string]error{"last": boom}}
	out := NewOutput(synth, &audio.MockPlayer{})
	defer out.Close()

	var got error
	rec := newRecorder()
	req := rec.request("last", true)
	onError := req.OnError
	req.OnError = func(err error) {
		got = err
		onError(err)
	}
	out.Enqueue(req)
	rec.wait(t)

	if !errors.Is(got, speech.ErrPlayback) || !errors.Is(got, boom) {
		t.Errorf("error = %v, want playback error wrapping boom", got)
	}
	if events := rec.list(); !equal(events, []string{"error last"}) {
		t.Errorf("events = %v", events)
	}
}

func TestOutputIntermediateErrorContinues(t *testing.T) {
	synth := &fakeSynth{fail: map[string]error{"bad": errors.New("bad chunk")}}
	out := NewOutput(synth, &audio.MockPlayer{})
	defer out.Close()

	rec := newRecorder()
	out.Enqueue(rec.request("bad", false))
	out.Enqueue(rec.request("good", true))
	rec.wait(t)

	want := []string{"chunk-error bad", "start good", "end good"}
	if got := rec.list(); !equal(got, want) {
		t.Errorf("events = %v, want %v", got, want)
	}
}

func TestOutputPlayerError(t *testing.T) {
	player := &audio.MockPlayer{Err: errors.New("device gone")}
	out := NewOutput(&fakeSynth{}, player)
	defer out.Close()

	rec := newRecorder()
	out.Enqueue(rec.request("hello", true))
	rec.wait(t)

	want := []string{"start hello", "error hello"}
	if got := rec.list(); !equal(got, want) {
		t.Errorf("events = %v, want %v", got, want)
	}
}

func TestOutputCancelAll(t *testing.T) {
	player := &audio.MockPlayer{Delay: time.Minute}
	out := NewOutput(&fakeSynth{}, player)
	defer out.Close()

	started := make(chan struct{})
	rec := newRecorder()
	first := rec.request("first", false)
	first.OnStart = func() {
		rec.add("start first")
		close(started)
	}
	out.Enqueue(first)
	out.Enqueue(rec.request("second", true))

	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatal("first request never started")
	}

	out.CancelAll()
	if n := out.Pending(); n != 0 {
		t.Errorf("pending after CancelAll = %d, want 0", n)
	}

	player.SetDelay(0)
	out.Enqueue(rec.request("after", true))
	rec.wait(t)

	want := []string{"start first", "start after", "end after"}
	if got := rec.list(); !equal(got, want) {
		t.Errorf("events = %v, want %v", got, want)
	}
}

func TestOutputVoicesChanged(t *testing.T) {
	synth := &fakeSynth{voices: []voice.Voice{{Name: "Hindi", Lang: "hi"}}}
	out := NewOutput(synth, &audio.MockPlayer{})
	defer out.Close()

	if v := out.Voices(); len(v) != 1 || v[0].Name != "Hindi" {
		t.Fatalf("initial voices = %v", v)
	}

	var calls int
	out.OnVoicesChanged(func() { calls++ })

	if err := out.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}
	if calls != 0 {
		t.Errorf("unchanged refresh fired %d listeners", calls)
	}

	synth.setVoices(voice.Voice{Name: "Hindi", Lang: "hi"}, voice.Voice{Name: "English (America)", Lang: "en-US"})
	if err := out.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}
	if calls != 1 {
		t.Errorf("listeners fired %d times, want 1", calls)
	}
	if n := len(out.Voices()); n != 2 {
		t.Errorf("voices = %d, want 2", n)
	}
}

func TestOutputClose(t *testing.T) {
	out := NewOutput(&fakeSynth{}, &audio.MockPlayer{})
	if err := out.Close(); err != nil {
		t.Fatal(err)
	}
	if err := out.Close(); err != nil {
		t.Fatal(err)
	}

	out.Enqueue(speech.Request{Text: "ignored"})
	if n := out.Pending(); n != 0 {
		t.Errorf("pending after close = %d", n)
	}
}
