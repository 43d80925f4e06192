package audio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/ebitengine/oto/v3"
)

// pollInterval is how often Play checks whether oto drained its buffer.
const pollInterval = 10 * time.Millisecond

// ErrPlayerClosed is returned by Play after Close.
var ErrPlayerClosed = errors.New("player is closed")

// Sink plays decoded PCM, blocking until it finishes or ctx is canceled.
type Sink interface {
	Play(ctx context.Context, pcm PCM) error
}

// Player is a Sink backed by oto. oto allows a single context per
// process, so the device format is fixed by the first Play call and later
// audio is resampled to it.
type Player struct {
	mu      sync.Mutex
	context *oto.Context
	format  Format
	closed  bool
}

var _ Sink = (*Player)(nil)

// NewPlayer returns a player that opens the audio device lazily.
func NewPlayer() *Player {
	return &Player{}
}

// Play writes pcm to the device and waits for it to drain. Canceling ctx
// stops playback immediately and returns ctx.Err().
func (p *Player) Play(ctx context.Context, pcm PCM) error {
	if len(pcm.Data) == 0 {
		return nil
	}

	octx, format, err := p.device(pcm.Format)
	if err != nil {
		return err
	}
	if pcm.Format.Channels != format.Channels {
		return fmt.Errorf("%w: %d channels on a %d channel device", ErrUnsupportedFormat, pcm.Format.Channels, format.Channels)
	}
	pcm = Resample(pcm, format.SampleRate)

	player := octx.NewPlayer(bytes.NewReader(pcm.Data))
	defer player.Close() //nolint:errcheck

	log.Debug("audio play", "bytes", len(pcm.Data), "duration", pcm.Duration())
	player.Play()

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for player.IsPlaying() {
		select {
		case <-ctx.Done():
			player.Pause()
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return octx.Err()
}

// Close releases the player. oto keeps its context for the life of the
// process, so this only blocks further playback.
func (p *Player) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

func (p *Player) device(f Format) (*oto.Context, Format, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil, Format{}, ErrPlayerClosed
	}
	if p.context != nil {
		return p.context, p.format, nil
	}

	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   f.SampleRate,
		ChannelCount: f.Channels,
		Format:       oto.FormatSignedInt16LE,
	})
	if err != nil {
		return nil, Format{}, fmt.Errorf("failed to create oto context: %w", err)
	}
	<-ready

	log.Debug("audio device ready", "sample_rate", f.SampleRate, "channels", f.Channels)
	p.context, p.format = ctx, f
	return ctx, f, nil
}
