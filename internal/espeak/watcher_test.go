package espeak

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dgnsrekt/bolo/internal/audio"
	"github.com/dgnsrekt/bolo/internal/voice"
)

func TestFindDataDir(t *testing.T) {
	dir := t.TempDir()

	got, err := FindDataDir(dir)
	if err != nil || got != dir {
		t.Fatalf("FindDataDir(%q) = %q, %v", dir, got, err)
	}

	_, err = FindDataDir(filepath.Join(dir, "missing"))
	if !errors.Is(err, ErrNoDataDir) {
		t.Fatalf("missing dir error = %v, want ErrNoDataDir", err)
	}
}

func TestWatcherRefreshesVoices(t *testing.T) {
	watchDebounce = 20 * time.Millisecond
	t.Cleanup(func() { watchDebounce = 500 * time.Millisecond })

	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "lang", "inc"), 0o755); err != nil {
		t.Fatal(err)
	}

	synth := &fakeSynth{voices: []voice.Voice{{Name: "Hindi", Lang: "hi"}}}
	out := NewOutput(synth, &audio.MockPlayer{})
	defer out.Close()

	changed := make(chan struct{}, 1)
	out.OnVoicesChanged(func() {
		select {
		case changed <- struct{}{}:
		default:
		}
	})

	w, err := Watch(out, dir)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	synth.setVoices(voice.Voice{Name: "Hindi", Lang: "hi"}, voice.Voice{Name: "Marathi", Lang: "mr"})
	if err := os.WriteFile(filepath.Join(dir, "lang", "inc", "mr"), []byte("name Marathi\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case <-changed:
	case <-time.After(3 * time.Second):
		t.Fatal("voice list was not refreshed")
	}
	if n := len(out.Voices()); n != 2 {
		t.Errorf("voices = %d, want 2", n)
	}
}
