package dispatch

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dgnsrekt/bolo/internal/script"
	"github.com/dgnsrekt/bolo/internal/speech"
	"github.com/dgnsrekt/bolo/internal/speech/mock"
	"github.com/dgnsrekt/bolo/internal/voice"
)

var (
	english = voice.Voice{Name: "A", Lang: "en-US"}
	hindi   = voice.Voice{Name: "B", Lang: "hi-IN"}
)

// drain collects every status currently buffered on ch.
func drain(ch <-chan Status) []Kind {
	var kinds []Kind
	for {
		select {
		case s := <-ch:
			kinds = append(kinds, s.Kind)
		default:
			return kinds
		}
	}
}

func equalKinds(a, b []Kind) bool {
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

func TestSpeakBuildsRequestsPerChunk(t *testing.T) {
	out := mock.New(english, hindi)
	d := New(out, WithSettings(Settings{Rate: 1.2, Pitch: 0.8, Voice: voice.Auto}))

	d.Speak("Hello, मेरा नाम Yash है.")

	reqs := out.Enqueued()
	if len(reqs) != 4 {
		t.Fatalf("enqueued %d requests, want 4", len(reqs))
	}

	want := []struct {
		text, lang, voice string
	}{
		{"Hello,", "en-US", "A"},
		{"मेरा नाम", "hi-IN", "B"},
		{"Yash", "en-US", "A"},
		{"है.", "hi-IN", "B"},
	}
	for i, w := range want {
		r := reqs[i]
		if r.Text != w.text || r.Lang != w.lang || r.VoiceName() != w.voice {
			t.Errorf("request %d = {%q %q %q}, want {%q %q %q}", i, r.Text, r.Lang, r.VoiceName(), w.text, w.lang, w.voice)
		}
		if r.Rate != 1.2 || r.Pitch != 0.8 {
			t.Errorf("request %d rate/pitch = %v/%v", i, r.Rate, r.Pitch)
		}
		if r.OnStart == nil {
			t.Errorf("request %d has no OnStart", i)
		}
		final := i == len(want)-1
		if r.Final() != final {
			t.Errorf("request %d Final() = %v, want %v", i, r.Final(), final)
		}
	}

	if got := d.Status().Kind; got != KindSpeaking {
		t.Errorf("status after Speak = %s, want speaking", got)
	}
}

func TestSpeakStatusSequence(t *testing.T) {
	out := mock.New(english, hindi)
	d := New(out)
	ch, unsubscribe := d.Subscribe(16)
	defer unsubscribe()

	d.Speak("Hello मेरा")

	if !out.StartNext() {
		t.Fatal("first chunk did not start")
	}
	if s := d.Status(); s.Kind != KindSpeakingChunk || s.Lang != script.LangEnglish || s.Preview != "Hello" {
		t.Errorf("status = %+v, want speaking-chunk en Hello", s)
	}

	out.PlayAll()

	want := []Kind{KindSpeaking, KindSpeakingChunk, KindSpeakingChunk, KindFinished}
	if got := drain(ch); !equalKinds(got, want) {
		t.Errorf("transitions = %v, want %v", got, want)
	}
	if d.Status().String() != "finished" {
		t.Errorf("final status = %q", d.Status())
	}
}

func TestSpeakFinalChunkError(t *testing.T) {
	out := mock.New(english)
	d := New(out)

	d.Speak("one")
	boom := errors.New("device lost")
	out.FailNext(boom)

	s := d.Status()
	if s.Kind != KindError {
		t.Fatalf("status = %s, want error", s.Kind)
	}
	if !errors.Is(s.Err, boom) {
		t.Errorf("status error = %v", s.Err)
	}

	d.Speak("two")
	if d.Status().Kind != KindSpeaking {
		t.Errorf("error state not overwritten by next Speak")
	}
}

func TestSpeakIntermediateErrorIgnored(t *testing.T) {
	out := mock.New(english, hindi)
	d := New(out)

	d.Speak("one दो three")
	out.FailNext(errors.New("glitch"))

	if got := d.Status().Kind; got != KindSpeakingChunk {
		t.Errorf("status after mid-sequence failure = %s, want speaking-chunk", got)
	}

	out.PlayAll()
	if got := d.Status().Kind; got != KindFinished {
		t.Errorf("status = %s, want finished", got)
	}
}

func TestSpeakIntermediateErrorReported(t *testing.T) {
	out := mock.New(english, hindi)
	d := New(out, WithIntermediateErrors(true))

	d.Speak("one दो")
	out.FailNext(errors.New("glitch"))

	if got := d.Status().Kind; got != KindError {
		t.Errorf("status = %s, want error", got)
	}
}

func TestSpeakEmpty(t *testing.T) {
	for _, text := range []string{"", "   \n\t"} {
		out := mock.New(english)
		d := New(out)

		d.Speak(text)

		if got := d.Status().Kind; got != KindEmpty {
			t.Errorf("Speak(%q) status = %s, want empty", text, got)
		}
		if n := len(out.Enqueued()); n != 0 {
			t.Errorf("Speak(%q) enqueued %d requests", text, n)
		}
	}
}

func TestSpeakUnsupported(t *testing.T) {
	d := New(nil)
	if d.Supported() {
		t.Error("Supported() = true for nil output")
	}

	d.Speak("hello")
	if got := d.Status().Kind; got != KindUnsupported {
		t.Errorf("status = %s, want unsupported", got)
	}

	d.Stop()
	if got := d.Status().Kind; got != KindStopped {
		t.Errorf("status = %s, want stopped", got)
	}
}

func TestSpeakSupersedes(t *testing.T) {
	out := mock.New(english, hindi)
	d := New(out)

	d.Speak("first call मेरा")
	first := out.Enqueued()
	if !out.StartNext() {
		t.Fatal("first call did not start")
	}

	d.Speak("second")

	if out.Cancels() != 2 {
		t.Errorf("Cancels() = %d, want 2", out.Cancels())
	}
	if out.Pending() != 1 {
		t.Fatalf("Pending() = %d, want only the second call", out.Pending())
	}

	// A late callback from the superseded call must not leak into status.
	first[len(first)-1].OnEnd()
	if got := d.Status().Kind; got != KindSpeaking {
		t.Errorf("stale OnEnd changed status to %s", got)
	}

	out.PlayAll()
	for _, r := range out.Played()[1:] {
		if r.Text != "second" {
			t.Errorf("played residual request %q", r.Text)
		}
	}
	if got := d.Status().Kind; got != KindFinished {
		t.Errorf("status = %s, want finished", got)
	}
}

func TestStopBeforeStart(t *testing.T) {
	out := mock.New(english, hindi)
	d := New(out)

	d.Speak("Hello, मेरा नाम Yash है.")
	reqs := out.Enqueued()
	d.Stop()

	if out.StartNext() {
		t.Error("a chunk started after Stop")
	}
	if n := len(out.Played()); n != 0 {
		t.Errorf("%d chunks audible after Stop", n)
	}
	if got := d.Status().Kind; got != KindStopped {
		t.Errorf("status = %s, want stopped", got)
	}

	reqs[0].OnStart()
	reqs[len(reqs)-1].OnError(speech.ErrCanceled)
	if got := d.Status().Kind; got != KindStopped {
		t.Errorf("canceled callbacks changed status to %s", got)
	}
}

func TestStopIdempotent(t *testing.T) {
	out := mock.New()
	d := New(out)

	d.Stop()
	d.Stop()

	if got := d.Status().Kind; got != KindStopped {
		t.Errorf("status = %s", got)
	}
	if out.Cancels() != 2 {
		t.Errorf("Cancels() = %d", out.Cancels())
	}
}

func TestSettingsReadAtSpeakTime(t *testing.T) {
	out := mock.New(english, hindi)
	d := New(out)

	d.SetRate(1.5)
	d.SetPitch(5)
	d.SetVoice("B")
	d.Speak("hello")

	d.SetRate(0.7)

	req := out.Enqueued()[0]
	if req.Rate != 1.5 {
		t.Errorf("rate = %v, want 1.5", req.Rate)
	}
	if req.Pitch != speech.MaxPitch {
		t.Errorf("pitch = %v, want clamped %v", req.Pitch, speech.MaxPitch)
	}
	if req.VoiceName() != "B" {
		t.Errorf("manual voice = %q, want B", req.VoiceName())
	}

	d.SetVoice("")
	if got := d.Settings().Voice; got != voice.Auto {
		t.Errorf("empty voice selection = %q, want auto", got)
	}
}

func TestVoiceListRefresh(t *testing.T) {
	out := mock.New(english)
	d := New(out)

	d.Speak("नमस्ते")
	if got := out.Enqueued()[0].VoiceName(); got != "A" {
		t.Errorf("voice before refresh = %q, want English fallback", got)
	}

	out.SetVoices(english, hindi)
	if d.Registry().Len() != 2 {
		t.Fatalf("registry not refreshed")
	}

	d.Speak("नमस्ते")
	reqs := out.Enqueued()
	if got := reqs[len(reqs)-1].VoiceName(); got != "B" {
		t.Errorf("voice after refresh = %q, want B", got)
	}
}

func TestNoVoices(t *testing.T) {
	out := mock.New()
	d := New(out)

	d.Speak("hello")
	if v := out.Enqueued()[0].Voice; v != nil {
		t.Errorf("voice = %v, want nil", v)
	}
}

func TestWait(t *testing.T) {
	out := mock.New(english)
	d := New(out)
	ch, unsubscribe := d.Subscribe(8)
	defer unsubscribe()

	d.Speak("hello")
	go out.PlayAll()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	s, err := Wait(ctx, ch)
	if err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
	if s.Kind != KindFinished {
		t.Errorf("Wait() = %s, want finished", s.Kind)
	}
}

func TestSubscribeDropsOldest(t *testing.T) {
	d := New(mock.New())
	ch, unsubscribe := d.Subscribe(1)

	d.Stop()
	d.Speak("")

	if got := drain(ch); !equalKinds(got, []Kind{KindEmpty}) {
		t.Errorf("slow subscriber got %v, want only the latest", got)
	}

	unsubscribe()
	unsubscribe()
	if _, ok := <-ch; ok {
		t.Error("channel not closed after unsubscribe")
	}
}
