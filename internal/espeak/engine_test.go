package espeak

import (
	"errors"
	"slices"
	"testing"

	"github.com/dgnsrekt/bolo/internal/speech"
	"github.com/dgnsrekt/bolo/internal/voice"
)

const voicesTable = `Pty Language       Age/Gender VoiceName          File                 Other Languages
 5  af              --/M      Afrikaans          gmw/af
 2  en-gb           --/M      English_(Great_Britain) gmw/en            (en 2)
 5  en-us           --/M      English_(America)  gmw/en-US            (en 3)
 5  hi              --/M      Hindi              inc/hi
 5  cmn             --/M      Chinese_(Mandarin) sit/cmn              (zh-cmn 5)(zh 5)
 5  hi              --/F      Hindi              inc/hi-variant
`

func TestParseVoices(t *testing.T) {
	got := ParseVoices([]byte(voicesTable))

	want := []VoiceEntry{
		{Voice: voice.Voice{Name: "Afrikaans", Lang: "af"}, ID: "af"},
		{Voice: voice.Voice{Name: "English (Great Britain)", Lang: "en-GB"}, ID: "en-gb"},
		{Voice: voice.Voice{Name: "English (America)", Lang: "en-US"}, ID: "en-us"},
		{Voice: voice.Voice{Name: "Hindi", Lang: "hi"}, ID: "hi"},
		{Voice: voice.Voice{Name: "Chinese (Mandarin)", Lang: "cmn"}, ID: "cmn"},
	}
	if !slices.Equal(got, want) {
		t.Fatalf("ParseVoices:\n got %+v\nwant %+v", got, want)
	}
}

func TestParseVoicesEmpty(t *testing.T) {
	for _, in := range []string{"", "Pty Language Age/Gender VoiceName File Other Languages\n", "garbage\n"} {
		if got := ParseVoices([]byte(in)); len(got) != 0 {
			t.Errorf("ParseVoices(%q) = %v, want none", in, got)
		}
	}
}

func TestParsedVoicesResolve(t *testing.T) {
	var voices []voice.Voice
	for _, en := range ParseVoices([]byte(voicesTable)) {
		voices = append(voices, en.Voice)
	}

	v, ok := voice.Resolve("hi", voice.Auto, voices)
	if !ok || v.Name != "Hindi" {
		t.Errorf("hi resolved to %+v, %v", v, ok)
	}
	v, ok = voice.Resolve("en", voice.Auto, voices)
	if !ok || v.Name != "English (Great Britain)" {
		t.Errorf("en resolved to %+v, %v", v, ok)
	}
}

func TestArgs(t *testing.T) {
	tests := []struct {
		name        string
		rate, pitch float64
		wpm, p      string
	}{
		{"defaults", 1.0, 1.0, "175", "50"},
		{"slow low", 0.6, 0.5, "105", "25"},
		{"fast high", 1.6, 2.0, "280", "99"},
		{"rounding", 1.1, 1.3, "193", "65"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Args("hi", tt.rate, tt.pitch)
			want := []string{"--stdout", "--stdin", "-v", "hi", "-s", tt.wpm, "-p", tt.p}
			if !slices.Equal(got, want) {
				t.Errorf("Args = %v, want %v", got, want)
			}
		})
	}
}

func TestLocaleVoice(t *testing.T) {
	tests := map[string]string{
		"hi-IN": "hi",
		"en-US": "en-us",
		"en-GB": "en",
		"en":    "en",
		"!!":    "!!",
	}
	for in, want := range tests {
		if got := LocaleVoice(in); got != want {
			t.Errorf("LocaleVoice(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestVoiceID(t *testing.T) {
	e := &Engine{ids: map[string]string{"Hindi": "hi", "English (America)": "en-us"}}

	tests := []struct {
		req  speech.Request
		want string
	}{
		{speech.Request{Lang: "hi-IN", Voice: &voice.Voice{Name: "Hindi"}}, "hi"},
		{speech.Request{Lang: "hi-IN", Voice: &voice.Voice{Name: "English (America)"}}, "en-us"},
		{speech.Request{Lang: "en-US", Voice: &voice.Voice{Name: "Unknown"}}, "en-us"},
		{speech.Request{Lang: "hi-IN"}, "hi"},
	}
	for _, tt := range tests {
		if got := e.voiceID(tt.req); got != tt.want {
			t.Errorf("voiceID(%+v) = %q, want %q", tt.req, got, tt.want)
		}
	}
}

func TestNewEngineMissingBinary(t *testing.T) {
	_, err := NewEngine(Config{Binary: "bolo-no-such-espeak-binary"})
	if !errors.Is(err, speech.ErrUnsupported) {
		t.Fatalf("NewEngine error = %v, want ErrUnsupported", err)
	}
}
