package dispatch

import (
	"strings"
	"testing"

	"github.com/dgnsrekt/bolo/internal/script"
)

func TestPreview(t *testing.T) {
	short := "Hello, world"
	if got := Preview(short); got != short {
		t.Errorf("Preview(%q) = %q", short, got)
	}

	exact := strings.Repeat("a", 40)
	if got := Preview(exact); got != exact {
		t.Errorf("40 runes should not be truncated, got %q", got)
	}

	long := strings.Repeat("क", 45)
	want := strings.Repeat("क", 40) + "..."
	if got := Preview(long); got != want {
		t.Errorf("Preview(long) = %q, want %q", got, want)
	}
}

func TestStatusString(t *testing.T) {
	tests := []struct {
		status Status
		want   string
	}{
		{Status{Kind: KindReady}, "ready"},
		{Status{Kind: KindSpeaking}, "speaking..."},
		{Status{Kind: KindSpeakingChunk, Lang: script.LangHindi, Preview: "मेरा नाम"}, "speaking (hi): मेरा नाम"},
		{Status{Kind: KindFinished}, "finished"},
		{Status{Kind: KindStopped}, "stopped"},
		{Status{Kind: KindError}, "error during speech"},
		{Status{Kind: KindUnsupported}, "speech synthesis not supported"},
		{Status{Kind: KindEmpty}, "nothing to speak"},
	}
	for _, tt := range tests {
		if got := tt.status.String(); got != tt.want {
			t.Errorf("%v.String() = %q, want %q", tt.status.Kind, got, tt.want)
		}
	}
}

func TestKindTerminal(t *testing.T) {
	terminal := map[Kind]bool{
		KindReady:         false,
		KindSpeaking:      false,
		KindSpeakingChunk: false,
		KindFinished:      true,
		KindStopped:       true,
		KindError:         true,
		KindUnsupported:   true,
		KindEmpty:         true,
	}
	for k, want := range terminal {
		if got := k.Terminal(); got != want {
			t.Errorf("%s.Terminal() = %v, want %v", k, got, want)
		}
	}
}
