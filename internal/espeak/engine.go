package espeak

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/bolo/internal/audio"
	"github.com/dgnsrekt/bolo/internal/cache"
	"github.com/dgnsrekt/bolo/internal/speech"
	"github.com/dgnsrekt/bolo/internal/voice"
	"golang.org/x/text/language"
	"golang.org/x/time/rate"
)

const (
	// baseWPM is espeak-ng's default speed, used for rate 1.0.
	baseWPM = 175

	// basePitch is espeak-ng's default pitch on its 0-99 scale.
	basePitch = 50

	defaultTimeout = 10 * time.Second
	maxTextSize    = 5000
	maxAudioSize   = 20 * 1024 * 1024
)

// binaries are tried in order when Config.Binary is empty.
var binaries = []string{"espeak-ng", "espeak"}

// Config configures the espeak-ng engine.
type Config struct {
	// Binary overrides the espeak-ng executable.
	Binary string

	// Timeout bounds a single synthesis call.
	Timeout time.Duration

	// SynthesisPerSecond limits how often a new espeak-ng process starts.
	// Zero means unlimited.
	SynthesisPerSecond float64

	// Cache stores synthesized WAV data. Optional.
	Cache *cache.Manager
}

// Engine runs the espeak-ng binary.
type Engine struct {
	binary  string
	timeout time.Duration
	limiter *rate.Limiter
	cache   *cache.Manager

	mu  sync.RWMutex
	ids map[string]string // voice name -> espeak-ng voice identifier
}

// NewEngine locates the espeak-ng binary. It returns an error wrapping
// speech.ErrUnsupported when none is installed.
func NewEngine(cfg Config) (*Engine, error) {
	candidates := binaries
	if cfg.Binary != "" {
		candidates = []string{cfg.Binary}
	}

	var path string
	for _, name := range candidates {
		if p, err := exec.LookPath(name); err == nil {
			path = p
			break
		}
	}
	if path == "" {
		return nil, fmt.Errorf("%w: none of %v found in PATH", speech.ErrUnsupported, candidates)
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.SynthesisPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.SynthesisPerSecond), 1)
	}

	log.Debug("espeak engine", "binary", path)
	return &Engine{
		binary:  path,
		timeout: cfg.Timeout,
		limiter: limiter,
		cache:   cfg.Cache,
		ids:     make(map[string]string),
	}, nil
}

// Binary returns the resolved executable path.
func (e *Engine) Binary() string {
	return e.binary
}

// Voices runs `espeak-ng --voices` and parses the table.
func (e *Engine) Voices(ctx context.Context) ([]voice.Voice, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := e.command(ctx, "--voices")
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("espeak-ng --voices failed: %w, stderr: %s", err, stderr.String())
	}

	entries := ParseVoices(stdout.Bytes())
	voices := make([]voice.Voice, len(entries))
	ids := make(map[string]string, len(entries))
	for i, en := range entries {
		voices[i] = en.Voice
		ids[en.Name] = en.ID
	}

	e.mu.Lock()
	e.ids = ids
	e.mu.Unlock()
	return voices, nil
}

// Synthesize renders req to PCM, consulting the cache first.
func (e *Engine) Synthesize(ctx context.Context, req speech.Request) (audio.PCM, error) {
	if strings.TrimSpace(req.Text) == "" {
		return audio.PCM{}, errors.New("text cannot be empty")
	}
	if len(req.Text) > maxTextSize {
		return audio.PCM{}, fmt.Errorf("text too long: %d bytes (max %d)", len(req.Text), maxTextSize)
	}

	id := e.voiceID(req)
	key := cache.Key(req.Text, id, req.Rate, req.Pitch)
	if e.cache != nil {
		if wav, level, ok := e.cache.Get(key); ok {
			log.Debug("synthesis cache hit", "level", level, "voice", id)
			return audio.ParseWAV(wav)
		}
	}

	if err := e.limiter.Wait(ctx); err != nil {
		return audio.PCM{}, err
	}

	wav, err := e.run(ctx, req.Text, Args(id, req.Rate, req.Pitch))
	if err != nil {
		return audio.PCM{}, err
	}
	pcm, err := audio.ParseWAV(wav)
	if err != nil {
		return audio.PCM{}, fmt.Errorf("espeak-ng produced invalid audio: %w", err)
	}

	if e.cache != nil {
		if err := e.cache.Put(key, wav); err != nil {
			log.Debug("synthesis cache put failed", "error", err)
		}
	}
	return pcm, nil
}

func (e *Engine) run(ctx context.Context, text string, args []string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := e.command(ctx, args...)
	cmd.Stdin = strings.NewReader(text)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("synthesis aborted: %w", ctx.Err())
		}
		return nil, fmt.Errorf("espeak-ng failed: %w, stderr: %s", err, stderr.String())
	}

	out := stdout.Bytes()
	switch {
	case len(out) == 0:
		return nil, fmt.Errorf("espeak-ng produced no audio, stderr: %s", stderr.String())
	case len(out) > maxAudioSize:
		return nil, fmt.Errorf("espeak-ng output too large: %d bytes (max %d)", len(out), maxAudioSize)
	}

	log.Debug("synthesized", "bytes", len(out), "took", time.Since(start))
	return out, nil
}

// command builds an espeak-ng invocation that is interrupted, then
// killed, when ctx ends.
func (e *Engine) command(ctx context.Context, args ...string) *exec.Cmd {
	cmd := exec.CommandContext(ctx, e.binary, args...) //nolint:gosec
	cmd.Cancel = func() error {
		return cmd.Process.Signal(os.Interrupt)
	}
	cmd.WaitDelay = 100 * time.Millisecond
	return cmd
}

// voiceID maps the request voice to an espeak-ng identifier, falling back
// to the request locale.
func (e *Engine) voiceID(req speech.Request) string {
	if req.Voice != nil {
		e.mu.RLock()
		id, ok := e.ids[req.Voice.Name]
		e.mu.RUnlock()
		if ok {
			return id
		}
	}
	return LocaleVoice(req.Lang)
}

// LocaleVoice returns the espeak-ng voice for a locale: the base language,
// except that US English keeps its region.
func LocaleVoice(locale string) string {
	tag, err := language.Parse(locale)
	if err != nil {
		return strings.ToLower(locale)
	}
	base, _ := tag.Base()
	region, conf := tag.Region()
	if base.String() == "en" && conf == language.Exact && region.String() == "US" {
		return "en-us"
	}
	return base.String()
}

// Args returns the espeak-ng arguments for one utterance read from stdin.
// Rate scales the default 175 words per minute; pitch scales the default
// 50 on espeak-ng's 0-99 range.
func Args(voiceID string, rate, pitch float64) []string {
	wpm := int(math.Round(baseWPM * rate))
	p := int(math.Round(basePitch * pitch))
	p = max(0, min(99, p))

	return []string{
		"--stdout",
		"--stdin",
		"-v", voiceID,
		"-s", fmt.Sprint(wpm),
		"-p", fmt.Sprint(p),
	}
}

// VoiceEntry is one row of `espeak-ng --voices`.
type VoiceEntry struct {
	voice.Voice

	// ID is what espeak-ng accepts after -v.
	ID string
}

// ParseVoices parses the `espeak-ng --voices` table:
//
//	Pty Language       Age/Gender VoiceName          File          Other Languages
//	 5  en-us           --/M      English_(America)  gmw/en-US     (en 3)
//
// Language tags are normalized to BCP-47 casing. Duplicate names keep
// their first occurrence.
func ParseVoices(out []byte) []VoiceEntry {
	var (
		entries []VoiceEntry
		seen    = make(map[string]bool)
		sc      = bufio.NewScanner(bytes.NewReader(out))
	)
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) < 4 || fields[0] == "Pty" {
			continue
		}

		id, name := fields[1], strings.ReplaceAll(fields[3], "_", " ")
		if seen[name] {
			continue
		}
		seen[name] = true

		entries = append(entries, VoiceEntry{
			Voice: voice.Voice{Name: name, Lang: normalizeTag(id)},
			ID:    id,
		})
	}
	return entries
}

func normalizeTag(raw string) string {
	tag, err := language.Parse(raw)
	if err != nil {
		return raw
	}
	return tag.String()
}
